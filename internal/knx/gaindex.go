package knx

import (
	"strconv"

	"github.com/vapourismo/knx-go/knx/cemi"

	"github.com/metaneutrons/snapdog2-sub015/internal/config"
	"github.com/metaneutrons/snapdog2-sub015/internal/model"
)

// controlPoint is one inbound group address's meaning: which entity, which
// index, and which control it carries.
type controlPoint struct {
	entity model.EntityKind
	index  int
	key    string
}

// gaIndex holds the bidirectional mapping between group addresses and the
// zone/client control points configured for them (spec §4.7, §6: KNX_* GA
// fields on ZONE_N_/CLIENT_N_).
type gaIndex struct {
	inbound  map[cemi.GroupAddr]controlPoint
	outbound map[string]cemi.GroupAddr // statusKey(entity,kind,index) -> GA
}

func newGAIndex(zones []config.ZoneConfig, clients []config.ClientConfig) *gaIndex {
	idx := &gaIndex{
		inbound:  make(map[cemi.GroupAddr]controlPoint),
		outbound: make(map[string]cemi.GroupAddr),
	}
	for _, zc := range zones {
		if !zc.KNX.Enabled {
			continue
		}
		idx.bindZoneControl(zc.Index, zc.KNX.Volume, "volume")
		idx.bindZoneControl(zc.Index, zc.KNX.Mute, "mute")
		idx.bindZoneControl(zc.Index, zc.KNX.Play, "play")
		idx.bindZoneControl(zc.Index, zc.KNX.Next, "next")
		idx.bindZoneControl(zc.Index, zc.KNX.Previous, "previous")
		idx.bindZoneControl(zc.Index, zc.KNX.Repeat, "repeat")
		idx.bindZoneControl(zc.Index, zc.KNX.Shuffle, "shuffle")
		idx.bindZoneControl(zc.Index, zc.KNX.Playlist, "playlist")
		idx.bindZoneControl(zc.Index, zc.KNX.Track, "track")

		idx.bindOutbound(model.EntityZone, model.StatusVolume, zc.Index, zc.KNX.Volume)
		idx.bindOutbound(model.EntityZone, model.StatusMute, zc.Index, zc.KNX.Mute)
		idx.bindOutbound(model.EntityZone, model.StatusPlaylist, zc.Index, zc.KNX.Playlist)
	}
	for _, cc := range clients {
		if !cc.KNX.Enabled {
			continue
		}
		idx.bindClientControl(cc.Index, cc.KNX.Volume, "volume")
		idx.bindClientControl(cc.Index, cc.KNX.Mute, "mute")
		idx.bindClientControl(cc.Index, cc.KNX.Latency, "latency")
		idx.bindClientControl(cc.Index, cc.KNX.Zone, "zone")

		idx.bindOutbound(model.EntityClient, model.StatusClientVolume, cc.Index, cc.KNX.Volume)
		idx.bindOutbound(model.EntityClient, model.StatusClientMute, cc.Index, cc.KNX.Mute)
		idx.bindOutbound(model.EntityClient, model.StatusClientLatency, cc.Index, cc.KNX.Latency)
		idx.bindOutbound(model.EntityClient, model.StatusClientZone, cc.Index, cc.KNX.Zone)
	}
	return idx
}

func (idx *gaIndex) bindZoneControl(zoneIndex int, ga, key string) {
	addr, ok := parseGA(ga)
	if !ok {
		return
	}
	idx.inbound[addr] = controlPoint{entity: model.EntityZone, index: zoneIndex, key: key}
}

func (idx *gaIndex) bindClientControl(clientIndex int, ga, key string) {
	addr, ok := parseGA(ga)
	if !ok {
		return
	}
	idx.inbound[addr] = controlPoint{entity: model.EntityClient, index: clientIndex, key: key}
}

func (idx *gaIndex) bindOutbound(entity model.EntityKind, kind model.StatusKind, index int, ga string) {
	addr, ok := parseGA(ga)
	if !ok {
		return
	}
	idx.outbound[statusKey(entity, kind, index)] = addr
}

func parseGA(s string) (cemi.GroupAddr, bool) {
	if s == "" {
		return 0, false
	}
	addr, err := cemi.NewGroupAddrString(s)
	if err != nil {
		return 0, false
	}
	return addr, true
}

func statusKey(entity model.EntityKind, kind model.StatusKind, index int) string {
	return string(entity) + ":" + string(kind) + ":" + strconv.Itoa(index)
}
