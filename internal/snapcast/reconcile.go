package snapcast

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"

	"github.com/metaneutrons/snapdog2-sub015/internal/config"
	"github.com/metaneutrons/snapdog2-sub015/internal/model"
	"github.com/metaneutrons/snapdog2-sub015/internal/store"
)

// Reconciler owns the bidirectional Snapcast-id ↔ SnapDog-index maps (spec
// §4.3) and applies Server.GetStatus snapshots and live notifications to the
// stores. Grounded on the teacher's streams.Manager.Sync: a desired-vs-actual
// reconciliation pass driven by a static configuration map, not a dynamic
// discovery protocol.
type Reconciler struct {
	zones   *store.ZoneStore
	clients *store.ClientStore
	adapter *Adapter

	macToClientIndex map[string]int

	mu               sync.Mutex
	clientIDToIndex  map[string]int
	groupIDToZone    map[string]int
	zoneToGroupID    map[int]string
}

// NewReconciler builds the static MAC→ClientIndex binding table from
// configuration (spec §4.3: "the binding key is MAC address from client
// host info; if an unknown MAC appears it is logged and ignored").
func NewReconciler(zones *store.ZoneStore, clients *store.ClientStore, adapter *Adapter, clientConfigs []config.ClientConfig) *Reconciler {
	macToIndex := make(map[string]int, len(clientConfigs))
	for _, c := range clientConfigs {
		macToIndex[strings.ToUpper(c.MAC)] = c.Index
	}
	return &Reconciler{
		zones:            zones,
		clients:          clients,
		adapter:          adapter,
		macToClientIndex: macToIndex,
		clientIDToIndex:  make(map[string]int),
		groupIDToZone:    make(map[string]int),
		zoneToGroupID:    make(map[int]string),
	}
}

// Adapter returns the Reconciler's underlying Adapter so a
// ConnectionSupervisor can rebind it to a fresh Client on every reconnect.
func (r *Reconciler) Adapter() *Adapter { return r.adapter }

// Sync reconciles a fresh Server.GetStatus snapshot into the stores. Called
// on every (re)connect and again on each Server.OnUpdate or Stream.OnUpdate
// notification, per spec §4.3/§7's "after a simulated Snapcast
// disconnect/reconnect, the store converges to the server's reported state".
func (r *Reconciler) Sync(ctx context.Context, st Status) {
	r.mu.Lock()
	defer r.mu.Unlock()

	seenClients := make(map[int]bool)

	for _, g := range st.Server.Groups {
		memberIndices := make([]int, 0, len(g.Clients))
		for _, c := range g.Clients {
			mac := strings.ToUpper(c.Host.MAC)
			idx, known := r.macToClientIndex[mac]
			if !known {
				slog.Warn("snapcast: unknown client MAC, ignoring", "mac", mac, "snapcast_id", c.ID)
				continue
			}
			r.clientIDToIndex[c.ID] = idx
			memberIndices = append(memberIndices, idx)
			seenClients[idx] = true

			r.clients.Mutate(idx, func(cl *model.Client) error {
				cl.Connected = c.Connected
				cl.Volume = c.Config.Volume.Percent
				cl.Mute = c.Config.Volume.Muted
				cl.LatencyMs = c.Config.Latency
				cl.SnapcastClientID = c.ID
				return nil
			})
		}

		zoneIdx := r.zoneForGroup(g.ID, memberIndices)
		if zoneIdx == 0 {
			continue
		}
		r.groupIDToZone[g.ID] = zoneIdx
		r.zoneToGroupID[zoneIdx] = g.ID

		r.zones.Mutate(zoneIdx, func(z *model.Zone) error {
			z.SnapcastGroupID = g.ID
			z.StreamID = g.StreamID
			z.Mute = g.Mute
			z.ClientIndices = append([]int(nil), memberIndices...)
			return nil
		})
	}
}

// zoneForGroup maps a Snapcast group to a ZoneIndex by matching the zone's
// currently-bound group id, falling back to a member-set match against the
// zone's last-known membership or the clients whose ZoneIndex points at the
// zone (must be called with r.mu held).
func (r *Reconciler) zoneForGroup(groupID string, memberIndices []int) int {
	if zoneIdx, ok := r.groupIDToZone[groupID]; ok {
		return zoneIdx
	}
	allClients := r.clients.GetAll()
	for _, z := range r.zones.GetAll() {
		assigned := make([]int, 0, len(allClients))
		for _, c := range allClients {
			if c.ZoneIndex == z.ZoneIndex {
				assigned = append(assigned, c.ClientIndex)
			}
		}
		if sameMembers(z.ClientIndices, memberIndices) || sameMembers(assigned, memberIndices) {
			return z.ZoneIndex
		}
	}
	for zoneIdx, gid := range r.zoneToGroupID {
		if gid == groupID {
			return zoneIdx
		}
	}
	return 0
}

func sameMembers(a, b []int) bool {
	if len(a) != len(b) || len(a) == 0 {
		return false
	}
	set := make(map[int]bool, len(a))
	for _, v := range a {
		set[v] = true
	}
	for _, v := range b {
		if !set[v] {
			return false
		}
	}
	return true
}

// EstablishGroups ensures each configured zone owns exactly one Snapcast
// group containing its configured member clients, per spec §4.3. Run once
// after the first Sync; idempotent.
func (r *Reconciler) EstablishGroups(ctx context.Context, zoneConfigs []config.ZoneConfig, clientConfigs []config.ClientConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()

	desired := make(map[int][]string) // zoneIndex -> desired snapcast client ids
	for _, cc := range clientConfigs {
		cl, ok := r.clients.Get(cc.Index)
		if !ok || cl.SnapcastClientID == "" {
			continue
		}
		desired[cl.ZoneIndex] = append(desired[cl.ZoneIndex], cl.SnapcastClientID)
	}

	for _, zc := range zoneConfigs {
		ids := desired[zc.Index]
		groupID, ok := r.zoneToGroupID[zc.Index]
		if !ok || groupID == "" {
			continue // no group observed yet for this zone; next Sync will pick one up
		}
		if err := r.adapter.SetGroupClients(ctx, groupID, ids); err != nil {
			slog.Error("snapcast: failed to set group clients", "zone", zc.Index, "group", groupID, "err", err)
		}
	}
}

// RebindClientZone moves a client's Snapcast group membership after its
// ZoneIndex changes (spec §4.3/§4.4: AssignClientToZone must be reflected
// in the actual Snapcast group membership, not just the store). Implements
// router.GroupRebinder.
func (r *Reconciler) RebindClientZone(ctx context.Context, clientIndex, oldZoneIndex, newZoneIndex int) {
	cl, ok := r.clients.Get(clientIndex)
	if !ok || cl.SnapcastClientID == "" {
		return
	}

	r.mu.Lock()
	oldGroupID := r.zoneToGroupID[oldZoneIndex]
	newGroupID := r.zoneToGroupID[newZoneIndex]
	r.mu.Unlock()

	if oldGroupID != "" {
		if oldZone, ok := r.zones.Get(oldZoneIndex); ok {
			members := removeString(snapcastIDs(r.clients, oldZone.ClientIndices), cl.SnapcastClientID)
			if err := r.adapter.SetGroupClients(ctx, oldGroupID, members); err != nil {
				slog.Error("snapcast: failed to remove client from old group", "client", clientIndex, "group", oldGroupID, "err", err)
			}
		}
	}
	if newGroupID != "" {
		if newZone, ok := r.zones.Get(newZoneIndex); ok {
			members := appendUnique(snapcastIDs(r.clients, newZone.ClientIndices), cl.SnapcastClientID)
			if err := r.adapter.SetGroupClients(ctx, newGroupID, members); err != nil {
				slog.Error("snapcast: failed to add client to new group", "client", clientIndex, "group", newGroupID, "err", err)
			}
		}
	}
}

func snapcastIDs(clients *store.ClientStore, indices []int) []string {
	ids := make([]string, 0, len(indices))
	for _, idx := range indices {
		if c, ok := clients.Get(idx); ok && c.SnapcastClientID != "" {
			ids = append(ids, c.SnapcastClientID)
		}
	}
	return ids
}

func removeString(ids []string, target string) []string {
	out := ids[:0]
	for _, id := range ids {
		if id != target {
			out = append(out, id)
		}
	}
	return out
}

func appendUnique(ids []string, target string) []string {
	for _, id := range ids {
		if id == target {
			return ids
		}
	}
	return append(ids, target)
}

// GroupIDForZone returns the Snapcast group id bound to a zone, if any.
func (r *Reconciler) GroupIDForZone(zoneIndex int) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.zoneToGroupID[zoneIndex]
	return id, ok
}

// HandleNotification applies one demultiplexed Snapcast notification to the
// stores (spec §4.3: client volume/latency/name/connect/disconnect, group
// mute/stream/name, server update).
func (r *Reconciler) HandleNotification(n Notification) {
	switch n.Method {
	case NotifyClientVolumeChanged:
		var p struct {
			ID     string `json:"id"`
			Volume Volume `json:"volume"`
		}
		if err := json.Unmarshal(n.Params, &p); err != nil {
			return
		}
		r.mutateClientBySnapcastID(p.ID, func(c *model.Client) {
			c.Volume = p.Volume.Percent
			c.Mute = p.Volume.Muted
		})

	case NotifyClientLatencyChanged:
		var p struct {
			ID      string `json:"id"`
			Latency int    `json:"latency"`
		}
		if err := json.Unmarshal(n.Params, &p); err != nil {
			return
		}
		r.mutateClientBySnapcastID(p.ID, func(c *model.Client) { c.LatencyMs = p.Latency })

	case NotifyClientNameChanged:
		var p struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		}
		if err := json.Unmarshal(n.Params, &p); err != nil {
			return
		}
		r.mutateClientBySnapcastID(p.ID, func(c *model.Client) { c.Name = p.Name })

	case NotifyClientConnect:
		var p struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(n.Params, &p); err != nil {
			return
		}
		r.mutateClientBySnapcastID(p.ID, func(c *model.Client) { c.Connected = true })

	case NotifyClientDisconnect:
		var p struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(n.Params, &p); err != nil {
			return
		}
		r.mutateClientBySnapcastID(p.ID, func(c *model.Client) { c.Connected = false })

	case NotifyGroupMute:
		var p struct {
			ID   string `json:"id"`
			Mute bool   `json:"mute"`
		}
		if err := json.Unmarshal(n.Params, &p); err != nil {
			return
		}
		r.mutateZoneByGroupID(p.ID, func(z *model.Zone) { z.Mute = p.Mute })

	case NotifyGroupStreamChanged:
		var p struct {
			ID       string `json:"id"`
			StreamID string `json:"stream_id"`
		}
		if err := json.Unmarshal(n.Params, &p); err != nil {
			return
		}
		r.mutateZoneByGroupID(p.ID, func(z *model.Zone) { z.StreamID = p.StreamID })

	case NotifyGroupNameChanged:
		// Group names are not surfaced on Zone; zones are named from config.

	case NotifyStreamUpdate, NotifyServerUpdate:
		// Handled by a full re-Sync driven by the caller's connect loop.
	}
}

func (r *Reconciler) mutateClientBySnapcastID(snapcastID string, fn func(*model.Client)) {
	r.mu.Lock()
	idx, ok := r.clientIDToIndex[snapcastID]
	r.mu.Unlock()
	if !ok {
		return
	}
	r.clients.Mutate(idx, func(c *model.Client) error { fn(c); return nil })
}

func (r *Reconciler) mutateZoneByGroupID(groupID string, fn func(*model.Zone)) {
	r.mu.Lock()
	idx, ok := r.groupIDToZone[groupID]
	r.mu.Unlock()
	if !ok {
		return
	}
	r.zones.Mutate(idx, func(z *model.Zone) error { fn(z); return nil })
}
