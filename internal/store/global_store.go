package store

import "github.com/metaneutrons/snapdog2-sub015/internal/model"

const globalIndex = 0

type GlobalChange = Change[model.GlobalState]

// GlobalStore holds the single process-wide GlobalState.
type GlobalStore struct {
	core *entityStore[model.GlobalState]
}

func NewGlobalStore(initial model.GlobalState) *GlobalStore {
	return &GlobalStore{core: newEntityStore(map[int]model.GlobalState{globalIndex: initial})}
}

func (s *GlobalStore) Get() model.GlobalState {
	v, _ := s.core.get(globalIndex)
	return v
}

func (s *GlobalStore) Mutate(fn func(*model.GlobalState) error) (model.GlobalState, model.GlobalState, error) {
	return s.core.mutate(globalIndex, fn)
}

func (s *GlobalStore) Version() uint64 { return s.core.version(globalIndex) }

func (s *GlobalStore) Subscribe(subscriberID string) <-chan GlobalChange {
	return s.core.bus.Subscribe(subscriberID)
}

func (s *GlobalStore) Unsubscribe(subscriberID string) { s.core.bus.Unsubscribe(subscriberID) }
