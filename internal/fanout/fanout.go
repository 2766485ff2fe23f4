package fanout

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/metaneutrons/snapdog2-sub015/internal/model"
	"github.com/metaneutrons/snapdog2-sub015/internal/store"
)

// coalesceWindow is the 50ms debounce window of spec §4.5.
const coalesceWindow = 50 * time.Millisecond

// Fanout subscribes to every store's change bus, applies per-kind change
// detection, coalesces bursts, and republishes to the bounded AdapterBus
// every HTTP/MQTT/KNX/WebSocket adapter subscribes to.
type Fanout struct {
	zones   *store.ZoneStore
	clients *store.ClientStore
	global  *store.GlobalStore

	bus *AdapterBus

	zoneCh   <-chan store.ZoneChange
	clientCh <-chan store.ClientChange
	globalCh <-chan store.GlobalChange

	mu      sync.Mutex
	pending map[string]*coalesced
}

type coalesced struct {
	timer *time.Timer
	latest StatusEvent
}

// New builds a Fanout over the three stores, publishing to its own
// AdapterBus. It subscribes to the store buses here, so changes made before
// Run starts are queued rather than lost.
func New(zones *store.ZoneStore, clients *store.ClientStore, global *store.GlobalStore) *Fanout {
	return &Fanout{
		zones:    zones,
		clients:  clients,
		global:   global,
		bus:      NewAdapterBus(),
		zoneCh:   zones.Subscribe("fanout"),
		clientCh: clients.Subscribe("fanout"),
		globalCh: global.Subscribe("fanout"),
		pending:  make(map[string]*coalesced),
	}
}

// Subscribe registers an adapter for status delivery.
func (f *Fanout) Subscribe(adapterID string) <-chan StatusEvent { return f.bus.Subscribe(adapterID) }

func (f *Fanout) Unsubscribe(adapterID string) { f.bus.Unsubscribe(adapterID) }

// Seed emits the full unconditional status set for every entity. It is
// called once at startup and again from reportLag when an adapter queue
// overflows; a Snapcast reconnect does not trigger it.
func (f *Fanout) Seed() {
	for _, z := range f.zones.GetAll() {
		for _, ev := range seedZone(z, f.zones.Version(z.ZoneIndex)) {
			f.emit(ev)
		}
	}
	for _, c := range f.clients.GetAll() {
		for _, ev := range seedClient(c, f.clients.Version(c.ClientIndex)) {
			f.emit(ev)
		}
	}
	g := f.global.Get()
	for _, ev := range seedGlobal(g, f.global.Version()) {
		f.emit(ev)
	}
}

// Run drains all three store buses until ctx is cancelled.
func (f *Fanout) Run(ctx context.Context) {
	zoneCh, clientCh, globalCh := f.zoneCh, f.clientCh, f.globalCh
	defer f.zones.Unsubscribe("fanout")
	defer f.clients.Unsubscribe("fanout")
	defer f.global.Unsubscribe("fanout")

	for {
		select {
		case <-ctx.Done():
			return
		case c := <-zoneCh:
			for _, ev := range zoneEvents(c.Old, c.New, c.Version) {
				f.schedule(ev)
			}
		case c := <-clientCh:
			for _, ev := range clientEvents(c.Old, c.New, c.Version) {
				f.schedule(ev)
			}
		case c := <-globalCh:
			for _, ev := range globalEvents(c.Old, c.New, c.Version) {
				f.schedule(ev)
			}
		}
	}
}

// schedule coalesces bursts to the same (kind, entity, target) within a
// 50ms window: only the latest value in the window is emitted (spec §4.5).
func (f *Fanout) schedule(ev StatusEvent) {
	key := fmt.Sprintf("%s:%s:%d", ev.Kind, ev.Entity, ev.TargetIndex)

	f.mu.Lock()
	defer f.mu.Unlock()

	if c, ok := f.pending[key]; ok {
		c.latest = ev
		return
	}

	c := &coalesced{latest: ev}
	c.timer = time.AfterFunc(coalesceWindow, func() {
		f.mu.Lock()
		latest := c.latest
		delete(f.pending, key)
		f.mu.Unlock()
		f.emit(latest)
	})
	f.pending[key] = c
}

func (f *Fanout) emit(ev StatusEvent) {
	f.bus.Publish(ev, func(adapterID string) {
		f.reportLag(adapterID)
	})
}

// reportLag records an ADAPTER_LAG SYSTEM_ERROR to the global store and
// triggers a reseed so the lagging adapter recovers a consistent snapshot.
func (f *Fanout) reportLag(adapterID string) {
	f.global.Mutate(func(g *model.GlobalState) error {
		g.LastError = &model.LastError{
			Code:      model.ErrAdapterLag,
			Message:   "adapter queue full: " + adapterID,
			Component: adapterID,
		}
		return nil
	})
	f.Seed()
}
