package users

import (
	"context"
	"sync"
	"time"

	"github.com/syncboard/syncboard/internal/models"
)

// MemoryRepository is an in-memory UserRepository used by unit tests and by
// handler tests that don't want a running MongoDB.
type MemoryRepository struct {
	mu    sync.RWMutex
	byID  map[string]*models.User
	byEml map[string]string // email -> id
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byID: make(map[string]*models.User), byEml: make(map[string]string)}
}

func (m *MemoryRepository) Create(ctx context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	cp := *u
	m.byID[u.ID] = &cp
	m.byEml[u.Email] = u.ID
	return nil
}

func (m *MemoryRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if u, ok := m.byID[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (m *MemoryRepository) GetByIDs(ctx context.Context, ids []string) ([]*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*models.User
	for _, id := range ids {
		if u, ok := m.byID[id]; ok {
			cp := *u
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MemoryRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if id, ok := m.byEml[email]; ok {
		cp := *m.byID[id]
		return &cp, nil
	}
	return nil, nil
}

func (m *MemoryRepository) SetResetOTP(ctx context.Context, id, otp string, expires time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.byID[id]; ok {
		u.ResetOTP = otp
		u.ResetOTPExpires = expires
		u.UpdatedAt = time.Now().UTC()
	}
	return nil
}

func (m *MemoryRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.byID[id]; ok {
		u.PasswordHash = passwordHash
		u.ResetOTP = ""
		u.ResetOTPExpires = time.Time{}
		u.UpdatedAt = time.Now().UTC()
	}
	return nil
}
