package knx

import (
	"context"
	"testing"

	"github.com/vapourismo/knx-go/knx"
	"github.com/vapourismo/knx-go/knx/cemi"

	"github.com/metaneutrons/snapdog2-sub015/internal/config"
	"github.com/metaneutrons/snapdog2-sub015/internal/fanout"
	"github.com/metaneutrons/snapdog2-sub015/internal/model"
)

func TestEncodeDecodePercentRoundTrips(t *testing.T) {
	data := encodePercent(42)
	got, err := decodePercent(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got != 42 {
		t.Errorf("got %d, want 42", got)
	}
}

func TestEncodeDecodeBoolRoundTrips(t *testing.T) {
	data := encodeBool(true)
	got, err := decodeBool(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !got {
		t.Error("expected true")
	}
}

func TestEncodePercentClampsAboveByteRange(t *testing.T) {
	data := encodePercent(500)
	got, err := decodePercent(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got != 100 {
		t.Errorf("got %d, want 100 (clamped)", got)
	}
}

func TestGAIndexBindsEnabledZoneVolume(t *testing.T) {
	zones := []config.ZoneConfig{{
		Index: 1,
		KNX:   config.KnxZoneGAs{Enabled: true, Volume: "1/1/1"},
	}}
	idx := newGAIndex(zones, nil)
	addr, err := cemi.NewGroupAddrString("1/1/1")
	if err != nil {
		t.Fatalf("parse GA: %v", err)
	}
	cp, ok := idx.inbound[addr]
	if !ok {
		t.Fatal("expected 1/1/1 to be bound")
	}
	if cp.entity != model.EntityZone || cp.index != 1 || cp.key != "volume" {
		t.Errorf("unexpected control point: %+v", cp)
	}
	if _, ok := idx.outbound[statusKey(model.EntityZone, model.StatusVolume, 1)]; !ok {
		t.Error("expected outbound volume binding")
	}
}

func TestGAIndexSkipsDisabledZone(t *testing.T) {
	zones := []config.ZoneConfig{{
		Index: 1,
		KNX:   config.KnxZoneGAs{Enabled: false, Volume: "1/1/1"},
	}}
	idx := newGAIndex(zones, nil)
	if len(idx.inbound) != 0 {
		t.Errorf("expected no bindings for a disabled zone, got %d", len(idx.inbound))
	}
}

func TestCommandFromControlPointZoneVolume(t *testing.T) {
	cp := controlPoint{entity: model.EntityZone, index: 1, key: "volume"}
	cmd, err := commandFromControlPoint(cp, encodePercent(60))
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	if cmd.Kind != model.CmdSetZoneVolume || cmd.Volume != 60 || cmd.ZoneIndex != 1 {
		t.Errorf("unexpected command: %+v", cmd)
	}
}

func TestCommandFromControlPointClientLatency(t *testing.T) {
	cp := controlPoint{entity: model.EntityClient, index: 2, key: "latency"}
	cmd, err := commandFromControlPoint(cp, encodeLatency(120))
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	if cmd.Kind != model.CmdSetClientLatency || cmd.Ms != 120 || cmd.ClientIndex != 2 {
		t.Errorf("unexpected command: %+v", cmd)
	}
}

type stubDispatcher struct {
	last model.Command
}

func (s *stubDispatcher) Dispatch(ctx context.Context, cmd model.Command) *model.AppError {
	s.last = cmd
	return nil
}

type fakeTunnel struct {
	inbound chan knx.GroupEvent
	sent    []knx.GroupEvent
}

func newFakeTunnel() *fakeTunnel { return &fakeTunnel{inbound: make(chan knx.GroupEvent, 4)} }

func (f *fakeTunnel) Inbound() <-chan knx.GroupEvent { return f.inbound }
func (f *fakeTunnel) Send(ev knx.GroupEvent) error   { f.sent = append(f.sent, ev); return nil }
func (f *fakeTunnel) Close()                         { close(f.inbound) }

func TestHandleEventDispatchesGroupWrite(t *testing.T) {
	addr, _ := cemi.NewGroupAddrString("1/1/1")
	a := &Adapter{
		idx:      newGAIndex([]config.ZoneConfig{{Index: 1, KNX: config.KnxZoneGAs{Enabled: true, Mute: "1/1/1"}}}, nil),
		dispatch: &stubDispatcher{},
		cache:    make(map[cemi.GroupAddr][]byte),
	}
	disp := a.dispatch.(*stubDispatcher)
	tun := newFakeTunnel()

	a.handleEvent(tun, knx.GroupEvent{Command: knx.GroupWrite, Destination: addr, Data: encodeBool(true)})

	if disp.last.Kind != model.CmdSetZoneMute || !disp.last.Bool || disp.last.ZoneIndex != 1 {
		t.Errorf("unexpected dispatched command: %+v", disp.last)
	}
}

func TestHandleEventAnswersGroupReadFromCache(t *testing.T) {
	addr, _ := cemi.NewGroupAddrString("1/1/2")
	a := &Adapter{
		idx:   newGAIndex(nil, nil),
		cache: map[cemi.GroupAddr][]byte{addr: encodePercent(77)},
	}
	tun := newFakeTunnel()

	a.handleEvent(tun, knx.GroupEvent{Command: knx.GroupRead, Destination: addr})

	if len(tun.sent) != 1 || tun.sent[0].Command != knx.GroupResponse {
		t.Fatalf("expected one GroupResponse, got %+v", tun.sent)
	}
	got, _ := decodePercent(tun.sent[0].Data)
	if got != 77 {
		t.Errorf("response payload = %d, want 77", got)
	}
}

func TestPublishStatusUpdatesCacheAndWritesOut(t *testing.T) {
	addr, _ := cemi.NewGroupAddrString("1/1/1")
	a := &Adapter{
		idx:   newGAIndex([]config.ZoneConfig{{Index: 1, KNX: config.KnxZoneGAs{Enabled: true, Volume: "1/1/1"}}}, nil),
		cache: make(map[cemi.GroupAddr][]byte),
	}
	tun := newFakeTunnel()
	a.tun = tun

	a.PublishStatus(fanout.StatusEvent{Kind: model.StatusVolume, Entity: model.EntityZone, TargetIndex: 1, Payload: 55})

	if len(tun.sent) != 1 {
		t.Fatalf("expected one group write, got %d", len(tun.sent))
	}
	got, _ := decodePercent(a.cache[addr])
	if got != 55 {
		t.Errorf("cache = %d, want 55", got)
	}
}
