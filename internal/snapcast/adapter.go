package snapcast

import (
	"context"
	"sync"
)

// Adapter implements zone.SnapcastPort over a live Client. Snapcast has no
// native per-group volume RPC, only per-client volume and per-group mute
// (spec §4.2's "volume set/up/down/mute ... delegated to Snapcast group
// operations" is realized here as one Client.SetVolume call per member,
// with group mute used for the boolean mute flag).
//
// The underlying Client is swapped out on every ConnectionSupervisor
// reconnect (Rebind), so zone.Manager and the router can hold one Adapter
// for the process lifetime instead of re-wiring on every reconnect.
type Adapter struct {
	mu sync.RWMutex
	c  *Client
}

// NewAdapter wraps a connected Client as the zone package's SnapcastPort.
// c may be nil if no connection has been established yet.
func NewAdapter(c *Client) *Adapter { return &Adapter{c: c} }

// Rebind points the adapter at a newly (re)connected Client.
func (a *Adapter) Rebind(c *Client) {
	a.mu.Lock()
	a.c = c
	a.mu.Unlock()
}

func (a *Adapter) client() *Client {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.c
}

func (a *Adapter) SelectStream(ctx context.Context, groupID, streamID string) error {
	return a.client().Call(ctx, MethodGroupSetStream, groupSetStreamParams{ID: groupID, StreamID: streamID}, nil)
}

func (a *Adapter) SetGroupMute(ctx context.Context, groupID string, mute bool) error {
	return a.client().Call(ctx, MethodGroupSetMute, groupSetMuteParams{ID: groupID, Mute: mute}, nil)
}

func (a *Adapter) SetZoneVolume(ctx context.Context, memberClientIDs []string, volume int) error {
	for _, id := range memberClientIDs {
		params := clientSetVolumeParams{ID: id, Volume: Volume{Percent: volume}}
		if err := a.client().Call(ctx, MethodClientSetVolume, params, nil); err != nil {
			return err
		}
	}
	return nil
}

// SetClientVolume is used by the client-scoped command handlers (spec §4.4
// "Client volume/mute/latency"), distinct from the zone-wide SetZoneVolume.
func (a *Adapter) SetClientVolume(ctx context.Context, clientID string, volume int, muted bool) error {
	return a.client().Call(ctx, MethodClientSetVolume, clientSetVolumeParams{ID: clientID, Volume: Volume{Percent: volume, Muted: muted}}, nil)
}

func (a *Adapter) SetClientLatency(ctx context.Context, clientID string, latencyMs int) error {
	return a.client().Call(ctx, MethodClientSetLatency, struct {
		ID      string `json:"id"`
		Latency int    `json:"latency"`
	}{ID: clientID, Latency: latencyMs}, nil)
}

func (a *Adapter) SetClientName(ctx context.Context, clientID, name string) error {
	return a.client().Call(ctx, MethodClientSetName, struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}{ID: clientID, Name: name}, nil)
}

func (a *Adapter) GetStatus(ctx context.Context) (Status, error) {
	var st Status
	err := a.client().Call(ctx, MethodGetStatus, nil, &st)
	return st, err
}

func (a *Adapter) SetGroupClients(ctx context.Context, groupID string, clientIDs []string) error {
	return a.client().Call(ctx, MethodGroupSetClients, groupSetClientsParams{ID: groupID, Clients: clientIDs}, nil)
}
