package store

import "github.com/metaneutrons/snapdog2-sub015/internal/model"

// ZoneChange is the typed Change published on every successful zone mutation.
type ZoneChange = Change[model.Zone]

// ZoneStore is the authoritative in-memory store for all zones.
type ZoneStore struct {
	core *entityStore[model.Zone]
}

// NewZoneStore creates a ZoneStore seeded with the given zones, keyed by
// ZoneIndex. Zones are fixed at startup and never added/removed at runtime
// (spec §3 Lifecycle).
func NewZoneStore(zones []model.Zone) *ZoneStore {
	initial := make(map[int]model.Zone, len(zones))
	for _, z := range zones {
		initial[z.ZoneIndex] = z
	}
	return &ZoneStore{core: newEntityStore(initial)}
}

func (s *ZoneStore) Get(zoneIndex int) (model.Zone, bool) { return s.core.get(zoneIndex) }

func (s *ZoneStore) GetAll() []model.Zone { return s.core.getAll() }

// Mutate acquires the zone's lock, applies fn, and returns (old, new).
func (s *ZoneStore) Mutate(zoneIndex int, fn func(*model.Zone) error) (model.Zone, model.Zone, error) {
	return s.core.mutate(zoneIndex, fn)
}

// Set overwrites an existing zone wholesale; it does not add new zones.
func (s *ZoneStore) Set(zoneIndex int, next model.Zone) (model.Zone, error) {
	return s.core.set(zoneIndex, next)
}

func (s *ZoneStore) Version(zoneIndex int) uint64 { return s.core.version(zoneIndex) }

func (s *ZoneStore) Subscribe(subscriberID string) <-chan ZoneChange {
	return s.core.bus.Subscribe(subscriberID)
}

func (s *ZoneStore) Unsubscribe(subscriberID string) { s.core.bus.Unsubscribe(subscriberID) }
