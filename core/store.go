package core

import (
	"context"
	"sync"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

type (
	BalanceStore interface {
		FindBalance(ctx context.Context, accountId, assetId uuid.UUID) (*Balance, error)
		UpsertBalance(ctx context.Context, balance *Balance) error
		ListBalances(ctx context.Context, accountId uuid.UUID) ([]*Balance, error)
	}

	DebtStore interface {
		FindDebtPosition(ctx context.Context, accountId uuid.UUID) (*DebtPosition, error)
		UpsertDebtPosition(ctx context.Context, position *DebtPosition) error
	}

	EventStore interface {
		CreateEvent(ctx context.Context, event *Event) error
		ListEvents(ctx context.Context, accountId uuid.UUID) ([]*Event, error)
	}

	LedgerService struct {
		BalanceStore
		DebtStore
		EventStore
	}
)

// MemoryStore is the map-backed ledger store. The engine is a single
// global ledger, so a process-local store is the reference backend;
// absent rows surface as gorm.ErrRecordNotFound like any other store
// implementation would.
type MemoryStore struct {
	mtx sync.Mutex

	balances map[uuid.UUID]map[uuid.UUID]*Balance
	debts    map[uuid.UUID]*DebtPosition
	events   []*Event
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		balances: make(map[uuid.UUID]map[uuid.UUID]*Balance),
		debts:    make(map[uuid.UUID]*DebtPosition),
	}
}

// NewMemoryLedger wires a fresh MemoryStore into a LedgerService.
func NewMemoryLedger() LedgerService {
	store := NewMemoryStore()
	return LedgerService{
		BalanceStore: store,
		DebtStore:    store,
		EventStore:   store,
	}
}

func (s *MemoryStore) FindBalance(ctx context.Context, accountId, assetId uuid.UUID) (*Balance, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	balance, ok := s.balances[accountId][assetId]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return balance.Clone(), nil
}

func (s *MemoryStore) UpsertBalance(ctx context.Context, balance *Balance) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	byAsset, ok := s.balances[balance.AccountId]
	if !ok {
		byAsset = make(map[uuid.UUID]*Balance)
		s.balances[balance.AccountId] = byAsset
	}
	byAsset[balance.AssetId] = balance.Clone()
	return nil
}

func (s *MemoryStore) ListBalances(ctx context.Context, accountId uuid.UUID) ([]*Balance, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	balances := make([]*Balance, 0, len(s.balances[accountId]))
	for _, balance := range s.balances[accountId] {
		balances = append(balances, balance.Clone())
	}
	return balances, nil
}

func (s *MemoryStore) FindDebtPosition(ctx context.Context, accountId uuid.UUID) (*DebtPosition, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	position, ok := s.debts[accountId]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return position.Clone(), nil
}

func (s *MemoryStore) UpsertDebtPosition(ctx context.Context, position *DebtPosition) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.debts[position.AccountId] = position.Clone()
	return nil
}

func (s *MemoryStore) CreateEvent(ctx context.Context, event *Event) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.events = append(s.events, event)
	return nil
}

func (s *MemoryStore) ListEvents(ctx context.Context, accountId uuid.UUID) ([]*Event, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	events := make([]*Event, 0)
	for _, event := range s.events {
		if accountId == uuid.Nil || event.AccountId == accountId || event.CounterpartyId == accountId {
			events = append(events, event)
		}
	}
	return events, nil
}
