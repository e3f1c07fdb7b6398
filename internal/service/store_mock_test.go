package service

import (
	"context"
	"sync"
	"time"

	"github.com/platewise/billing/internal/domain"
	"github.com/platewise/billing/internal/plans"
)

// memProfileStore is an in-memory ProfileStore with the same conditional
// update semantics as the SQL implementation. Errors are injectable per
// test via the err field.
type memProfileStore struct {
	mu       sync.Mutex
	profiles map[string]*domain.Profile

	// err, when set, is returned by every method.
	err error
}

var _ domain.ProfileStore = (*memProfileStore)(nil)

func newMemProfileStore() *memProfileStore {
	return &memProfileStore{profiles: make(map[string]*domain.Profile)}
}

func (s *memProfileStore) seed(p domain.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := p
	s.profiles[p.UserID] = &cp
}

func (s *memProfileStore) Get(_ context.Context, userID string) (*domain.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	p, ok := s.profiles[userID]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (s *memProfileStore) GetBySubscriptionID(_ context.Context, subscriptionID string) (*domain.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	p := s.findBySubscriptionLocked(subscriptionID)
	if p == nil {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (s *memProfileStore) Create(_ context.Context, userID, email string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return false, s.err
	}
	if _, exists := s.profiles[userID]; exists {
		return false, nil
	}
	now := time.Now()
	s.profiles[userID] = &domain.Profile{
		UserID:    userID,
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return true, nil
}

func (s *memProfileStore) Activate(_ context.Context, userID string, tier *domain.PlanType, subscriptionID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return false, s.err
	}
	p, ok := s.profiles[userID]
	if !ok {
		return false, nil
	}
	p.SubscriptionActive = true
	p.SubscriptionTier = tier
	p.SubscriptionID = &subscriptionID
	p.UpdatedAt = time.Now()
	return true, nil
}

func (s *memProfileStore) MarkPaymentFailed(_ context.Context, subscriptionID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return false, s.err
	}
	p := s.findBySubscriptionLocked(subscriptionID)
	if p == nil {
		return false, nil
	}
	p.SubscriptionActive = false
	p.UpdatedAt = time.Now()
	return true, nil
}

func (s *memProfileStore) ClearBySubscriptionID(_ context.Context, subscriptionID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return false, s.err
	}
	p := s.findBySubscriptionLocked(subscriptionID)
	if p == nil {
		return false, nil
	}
	s.clearLocked(p)
	return true, nil
}

func (s *memProfileStore) SetTier(_ context.Context, userID string, tier domain.PlanType, subscriptionID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return false, s.err
	}
	p, ok := s.profiles[userID]
	if !ok || p.SubscriptionID == nil || *p.SubscriptionID != subscriptionID {
		return false, nil
	}
	p.SubscriptionTier = &tier
	p.UpdatedAt = time.Now()
	return true, nil
}

func (s *memProfileStore) findBySubscriptionLocked(subscriptionID string) *domain.Profile {
	for _, p := range s.profiles {
		if p.SubscriptionID != nil && *p.SubscriptionID == subscriptionID {
			return p
		}
	}
	return nil
}

func (s *memProfileStore) clearLocked(p *domain.Profile) {
	p.SubscriptionActive = false
	p.SubscriptionTier = nil
	p.SubscriptionID = nil
	p.UpdatedAt = time.Now()
}

func testCatalog() *plans.Catalog {
	catalog, err := plans.NewCatalog(plans.Config{
		WeekPriceID:  "price_week_test",
		MonthPriceID: "price_month_test",
		YearPriceID:  "price_year_test",
	})
	if err != nil {
		panic(err)
	}
	return catalog
}

func planPtr(t domain.PlanType) *domain.PlanType { return &t }

func strPtr(s string) *string { return &s }
