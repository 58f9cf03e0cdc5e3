package api

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dealgrid/fitscore/internal/store"
)

// mockStore is an in-memory Store for handler tests.
type mockStore struct {
	mu          sync.Mutex
	universes   map[uuid.UUID]*store.Universe
	deals       map[uuid.UUID]*store.Deal
	buyers      map[uuid.UUID]*store.Buyer
	scores      map[uuid.UUID]*store.Score
	decisions   []*store.Decision
	adjustments map[uuid.UUID]*store.DealAdjustments
}

func newMockStore() *mockStore {
	return &mockStore{
		universes:   make(map[uuid.UUID]*store.Universe),
		deals:       make(map[uuid.UUID]*store.Deal),
		buyers:      make(map[uuid.UUID]*store.Buyer),
		scores:      make(map[uuid.UUID]*store.Score),
		adjustments: make(map[uuid.UUID]*store.DealAdjustments),
	}
}

func (m *mockStore) CreateUniverse(_ context.Context, u *store.Universe) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u.ID = uuid.New()
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	m.universes[u.ID] = u
	return nil
}

func (m *mockStore) GetUniverse(_ context.Context, id uuid.UUID) (*store.Universe, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.universes[id], nil
}

func (m *mockStore) ListUniverses(_ context.Context) ([]*store.Universe, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*store.Universe
	for _, u := range m.universes {
		out = append(out, u)
	}
	return out, nil
}

func (m *mockStore) UpdateUniverse(_ context.Context, u *store.Universe) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u.UpdatedAt = time.Now()
	m.universes[u.ID] = u
	return nil
}

func (m *mockStore) CreateDeal(_ context.Context, d *store.Deal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d.ID = uuid.New()
	d.CreatedAt = time.Now()
	d.UpdatedAt = d.CreatedAt
	m.deals[d.ID] = d
	return nil
}

func (m *mockStore) GetDeal(_ context.Context, id uuid.UUID) (*store.Deal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deals[id], nil
}

func (m *mockStore) ListDeals(_ context.Context, universeID uuid.UUID) ([]*store.Deal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*store.Deal
	for _, d := range m.deals {
		if d.UniverseID == universeID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *mockStore) CreateBuyer(_ context.Context, b *store.Buyer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b.ID = uuid.New()
	b.CreatedAt = time.Now()
	b.UpdatedAt = b.CreatedAt
	m.buyers[b.ID] = b
	return nil
}

func (m *mockStore) GetBuyer(_ context.Context, id uuid.UUID) (*store.Buyer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.buyers[id], nil
}

func (m *mockStore) ListBuyers(_ context.Context, universeID uuid.UUID) ([]*store.Buyer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*store.Buyer
	for _, b := range m.buyers {
		if b.UniverseID == universeID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *mockStore) UpdateBuyer(_ context.Context, b *store.Buyer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b.UpdatedAt = time.Now()
	m.buyers[b.ID] = b
	return nil
}

func (m *mockStore) CreateScore(_ context.Context, s *store.Score) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	m.scores[s.ID] = s
	return nil
}

func (m *mockStore) GetScore(_ context.Context, id uuid.UUID) (*store.Score, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.scores[id], nil
}

func (m *mockStore) ListScores(_ context.Context, filter store.ScoreFilter) ([]*store.Score, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*store.Score
	for _, s := range m.scores {
		if filter.DealID != nil && s.DealID != *filter.DealID {
			continue
		}
		if filter.BuyerID != nil && s.BuyerID != *filter.BuyerID {
			continue
		}
		if filter.Tier != "" && s.Tier != filter.Tier {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (m *mockStore) CreateDecision(_ context.Context, d *store.Decision) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d.ID = uuid.New()
	d.CreatedAt = time.Now()
	m.decisions = append(m.decisions, d)
	return nil
}

func (m *mockStore) ListDecisionsForDeal(_ context.Context, dealID uuid.UUID) ([]*store.Decision, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*store.Decision
	for _, d := range m.decisions {
		if d.DealID == dealID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *mockStore) GetLearningPattern(_ context.Context, universeID, buyerID uuid.UUID) (*store.LearningPattern, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := &store.LearningPattern{
		UniverseID:     universeID,
		BuyerID:        buyerID,
		PassCategories: make(map[store.PassCategory]int),
	}
	var approved int
	for _, d := range m.decisions {
		if d.UniverseID != universeID || d.BuyerID != buyerID {
			continue
		}
		p.TotalActions++
		if d.Action == store.ActionApproved {
			approved++
		} else if d.PassCategory != "" {
			p.PassCategories[d.PassCategory]++
		}
	}
	if p.TotalActions == 0 {
		return nil, nil
	}
	p.ApprovalRate = float64(approved) / float64(p.TotalActions)
	return p, nil
}

func (m *mockStore) GetDealAdjustments(_ context.Context, dealID uuid.UUID) (*store.DealAdjustments, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.adjustments[dealID], nil
}

func (m *mockStore) UpsertDealAdjustments(_ context.Context, adj *store.DealAdjustments) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing := m.adjustments[adj.DealID]
	if existing != nil && existing.Version != adj.Version {
		return store.ErrVersionConflict
	}
	adj.Version++
	adj.UpdatedAt = time.Now()
	m.adjustments[adj.DealID] = adj
	return nil
}

func (m *mockStore) Close() error { return nil }
