package knx

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/vapourismo/knx-go/knx"
	"github.com/vapourismo/knx-go/knx/cemi"

	"github.com/metaneutrons/snapdog2-sub015/internal/config"
	"github.com/metaneutrons/snapdog2-sub015/internal/fanout"
	"github.com/metaneutrons/snapdog2-sub015/internal/model"
)

// Dispatcher is the router surface the adapter submits translated commands
// to.
type Dispatcher interface {
	Dispatch(ctx context.Context, cmd model.Command) *model.AppError
}

// ErrorReporter records adapter-level failures (spec §7).
type ErrorReporter interface {
	ReportError(component string, err *model.AppError)
}

// groupTunnel is the subset of knx.GroupTunnel the adapter needs, narrowed
// for testability (spec §4.7 never requires a real gateway in tests).
type groupTunnel interface {
	Inbound() <-chan knx.GroupEvent
	Send(knx.GroupEvent) error
	Close()
}

// Adapter is the KNX control surface: one group address per configured
// control point, GroupValueWrite translated into router commands,
// GroupValueRead answered from a local cache, and fan-out events re-encoded
// and written out as GroupValueWrite.
type Adapter struct {
	gateway  string
	idx      *gaIndex
	dispatch Dispatcher
	errs     ErrorReporter

	mu    sync.Mutex
	cache map[cemi.GroupAddr][]byte
	tun   groupTunnel

	dial func(gateway string) (groupTunnel, error)
}

// New builds the adapter's group address tables. The gateway connection is
// established by Run.
func New(cfg config.KNXConfig, zones []config.ZoneConfig, clients []config.ClientConfig, dispatch Dispatcher, errs ErrorReporter) *Adapter {
	return &Adapter{
		gateway:  fmt.Sprintf("%s:%d", cfg.Gateway, cfg.Port),
		idx:      newGAIndex(zones, clients),
		dispatch: dispatch,
		errs:     errs,
		cache:    make(map[cemi.GroupAddr][]byte),
		dial:     dialTunnel,
	}
}

func dialTunnel(gateway string) (groupTunnel, error) {
	t, err := knx.NewGroupTunnel(gateway, knx.DefaultTunnelConfig)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Run maintains the gateway connection (reconnecting with backoff on
// failure, mirroring the Snapcast connection supervisor's shape) and pumps
// inbound group events until ctx is cancelled.
func (a *Adapter) Run(ctx context.Context) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 30 * time.Second
	b.RandomizationFactor = 0.25
	b.MaxElapsedTime = 0

	for {
		if ctx.Err() != nil {
			return
		}
		tun, err := a.dial(a.gateway)
		if err != nil {
			a.reportError(fmt.Errorf("connect: %w", err))
			if !a.sleep(ctx, b.NextBackOff()) {
				return
			}
			continue
		}
		b.Reset()
		a.setTunnel(tun)
		slog.Info("knx: connected", "gateway", a.gateway)

		a.pump(ctx, tun)
		a.setTunnel(nil)

		if ctx.Err() != nil {
			return
		}
		slog.Warn("knx: disconnected, reconnecting", "gateway", a.gateway)
		if !a.sleep(ctx, b.NextBackOff()) {
			return
		}
	}
}

func (a *Adapter) pump(ctx context.Context, tun groupTunnel) {
	for {
		select {
		case ev, ok := <-tun.Inbound():
			if !ok {
				return
			}
			a.handleEvent(tun, ev)
		case <-ctx.Done():
			tun.Close()
			return
		}
	}
}

func (a *Adapter) handleEvent(tun groupTunnel, ev knx.GroupEvent) {
	switch ev.Command {
	case knx.GroupRead:
		a.mu.Lock()
		data, ok := a.cache[ev.Destination]
		a.mu.Unlock()
		if !ok {
			return
		}
		if err := tun.Send(knx.GroupEvent{Command: knx.GroupResponse, Destination: ev.Destination, Data: data}); err != nil {
			a.reportError(fmt.Errorf("group response: %w", err))
		}
	case knx.GroupWrite, knx.GroupResponse:
		cp, ok := a.idx.inbound[ev.Destination]
		if !ok {
			return
		}
		cmd, err := commandFromControlPoint(cp, ev.Data)
		if err != nil {
			a.reportError(model.NewErrorf(model.ErrValidation, "KNX_DECODE: %s: %v", ev.Destination, err))
			return
		}
		if aerr := a.dispatch.Dispatch(context.Background(), cmd); aerr != nil {
			slog.Warn("knx: command failed", "ga", ev.Destination, "err", aerr)
		}
	}
}

// PublishStatus re-encodes one fan-out event and writes it out as a
// GroupValueWrite, updating the read cache (spec §4.7).
func (a *Adapter) PublishStatus(ev fanout.StatusEvent) {
	addr, ok := a.idx.outbound[statusKey(ev.Entity, ev.Kind, ev.TargetIndex)]
	if !ok {
		return
	}
	data, err := encodeStatusPayload(ev.Kind, ev.Payload)
	if err != nil {
		return
	}

	a.mu.Lock()
	a.cache[addr] = data
	tun := a.tun
	a.mu.Unlock()

	if tun == nil {
		return
	}
	if err := tun.Send(knx.GroupEvent{Command: knx.GroupWrite, Destination: addr, Data: data}); err != nil {
		a.reportError(fmt.Errorf("group write %s: %w", addr, err))
	}
}

// RunFanout drains the fan-out subscription until ctx is cancelled.
func (a *Adapter) RunFanout(ctx context.Context, statusCh <-chan fanout.StatusEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-statusCh:
			if !ok {
				return
			}
			a.PublishStatus(ev)
		}
	}
}

func (a *Adapter) setTunnel(t groupTunnel) {
	a.mu.Lock()
	a.tun = t
	a.mu.Unlock()
}

func (a *Adapter) sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}

func (a *Adapter) reportError(err error) {
	slog.Error("knx adapter", "err", err)
	if a.errs != nil {
		if aerr, ok := err.(*model.AppError); ok {
			a.errs.ReportError("knx", aerr)
			return
		}
		a.errs.ReportError("knx", model.UpstreamUnavailable(err.Error()))
	}
}
