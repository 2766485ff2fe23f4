package store

import "github.com/metaneutrons/snapdog2-sub015/internal/model"

type ClientChange = Change[model.Client]

// ClientStore is the authoritative in-memory store for all clients.
type ClientStore struct {
	core *entityStore[model.Client]
}

func NewClientStore(clients []model.Client) *ClientStore {
	initial := make(map[int]model.Client, len(clients))
	for _, c := range clients {
		initial[c.ClientIndex] = c
	}
	return &ClientStore{core: newEntityStore(initial)}
}

func (s *ClientStore) Get(clientIndex int) (model.Client, bool) { return s.core.get(clientIndex) }

func (s *ClientStore) GetAll() []model.Client { return s.core.getAll() }

func (s *ClientStore) Mutate(clientIndex int, fn func(*model.Client) error) (model.Client, model.Client, error) {
	return s.core.mutate(clientIndex, fn)
}

func (s *ClientStore) Set(clientIndex int, next model.Client) (model.Client, error) {
	return s.core.set(clientIndex, next)
}

func (s *ClientStore) Version(clientIndex int) uint64 { return s.core.version(clientIndex) }

func (s *ClientStore) Subscribe(subscriberID string) <-chan ClientChange {
	return s.core.bus.Subscribe(subscriberID)
}

func (s *ClientStore) Unsubscribe(subscriberID string) { s.core.bus.Unsubscribe(subscriberID) }
