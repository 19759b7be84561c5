package service

import (
	"context"
	"sync"
	"time"

	"github.com/hima852/expenseflow/internal/domain/entity"
	"github.com/hima852/expenseflow/internal/domain/visibility"
	"github.com/hima852/expenseflow/internal/domain/workflow"
)

// nopLogger discards everything.
type nopLogger struct{}

func (nopLogger) Info(msg string, keysAndValues ...interface{})  {}
func (nopLogger) Error(msg string, keysAndValues ...interface{}) {}

// passthroughTx runs the function directly and counts invocations so
// tests can assert that mutations went through the transaction manager.
type passthroughTx struct {
	calls int
}

func (m *passthroughTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.calls++
	return fn(ctx)
}

// MockClaimRepository is a map-backed in-memory claim store.
type MockClaimRepository struct {
	mu     sync.Mutex
	claims map[int64]*entity.Claim
	nextID int64
}

func NewMockClaimRepository() *MockClaimRepository {
	return &MockClaimRepository{claims: make(map[int64]*entity.Claim)}
}

func copyClaim(c *entity.Claim) *entity.Claim {
	cp := *c
	return &cp
}

func (m *MockClaimRepository) Create(ctx context.Context, claim *entity.Claim) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	claim.ID = m.nextID
	if claim.CreatedAt.IsZero() {
		claim.CreatedAt = time.Now()
	}
	if claim.UpdatedAt.IsZero() {
		claim.UpdatedAt = claim.CreatedAt
	}
	m.claims[claim.ID] = copyClaim(claim)
	return nil
}

func (m *MockClaimRepository) GetByID(ctx context.Context, id int64) (*entity.Claim, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.claims[id]
	if !ok {
		return nil, nil
	}
	return copyClaim(c), nil
}

func (m *MockClaimRepository) FindOverlapping(ctx context.Context, userID int64, start, end time.Time, excludeID int64) ([]*entity.Claim, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	probe := &entity.Claim{JourneyDate: start, ReturnDate: &end}
	var out []*entity.Claim
	for _, c := range m.claims {
		if c.UserID != userID || c.ID == excludeID {
			continue
		}
		if workflow.Status(c.Status).IsRejected() {
			continue
		}
		if c.Overlaps(probe) {
			out = append(out, copyClaim(c))
		}
	}
	return out, nil
}

func (m *MockClaimRepository) ApplyReview(ctx context.Context, id int64, stage string, reviewerID int64, comment, fromStatus, toStatus string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.claims[id]
	if !ok || c.Status != fromStatus {
		return false, nil
	}

	now := time.Now()
	triple := entity.ReviewTriple{ReviewerID: &reviewerID, Comment: comment, ReviewedAt: &now}
	switch stage {
	case workflow.StageCoordinator.String():
		c.Coordinator = triple
	case workflow.StageHR.String():
		c.HR = triple
	case workflow.StageAccounts.String():
		c.Accounts = triple
	}
	c.Status = toStatus
	c.UpdatedAt = now
	c.UpdatedBy = reviewerID
	return true, nil
}

func (m *MockClaimRepository) Update(ctx context.Context, claim *entity.Claim) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.claims[claim.ID] = copyClaim(claim)
	return nil
}

func (m *MockClaimRepository) List(ctx context.Context, q visibility.Query) ([]*entity.Claim, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entity.Claim
	for _, c := range m.claims {
		if q.Matches(c) {
			out = append(out, copyClaim(c))
		}
	}
	return out, nil
}

// MockHistoryRepository is an append-only in-memory trail.
type MockHistoryRepository struct {
	mu      sync.Mutex
	entries []*entity.HistoryEntry
	nextID  int64
}

func NewMockHistoryRepository() *MockHistoryRepository {
	return &MockHistoryRepository{}
}

func (m *MockHistoryRepository) Append(ctx context.Context, entry *entity.HistoryEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	entry.ID = m.nextID
	cp := *entry
	m.entries = append(m.entries, &cp)
	return nil
}

func (m *MockHistoryRepository) ListByClaimID(ctx context.Context, claimID int64) ([]*entity.HistoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entity.HistoryEntry
	for i := len(m.entries) - 1; i >= 0; i-- {
		if m.entries[i].ClaimID == claimID {
			cp := *m.entries[i]
			out = append(out, &cp)
		}
	}
	return out, nil
}

// MockUserRepository resolves users from a fixed map.
type MockUserRepository struct {
	users map[int64]*entity.User
}

func NewMockUserRepository(users ...*entity.User) *MockUserRepository {
	m := &MockUserRepository{users: make(map[int64]*entity.User)}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	return m.users[id], nil
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

// MockLookupRepository records upserts and serves seeded departments.
type MockLookupRepository struct {
	mu          sync.Mutex
	projects    map[string]string
	modes       map[string]bool
	departments map[string]*entity.Department
}

func NewMockLookupRepository() *MockLookupRepository {
	return &MockLookupRepository{
		projects:    make(map[string]string),
		modes:       make(map[string]bool),
		departments: make(map[string]*entity.Department),
	}
}

func (m *MockLookupRepository) UpsertProject(ctx context.Context, projectID, projectName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.projects[projectID]; !exists {
		m.projects[projectID] = projectName
	}
	return nil
}

func (m *MockLookupRepository) UpsertTransportMode(ctx context.Context, modeName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.modes[modeName] = true
	return nil
}

func (m *MockLookupRepository) GetDepartmentByName(ctx context.Context, name string) (*entity.Department, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.departments[name], nil
}
