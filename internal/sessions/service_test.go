package sessions

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type memRepo struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

func newMemRepo() *memRepo { return &memRepo{sessions: map[string]*Session{}} }

func (m *memRepo) Create(ctx context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.sessions[s.RefreshToken] = &cp
	return nil
}

func (m *memRepo) GetByRefresh(ctx context.Context, refresh string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[refresh]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, nil
}

func (m *memRepo) DeleteByRefresh(ctx context.Context, refresh string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, refresh)
	return nil
}

func TestCreateAndValidate(t *testing.T) {
	svc := NewService(newMemRepo())
	ctx := context.Background()

	token, err := svc.CreateSession(ctx, "user-1", time.Hour)
	require.NoError(t, err)
	require.Len(t, token, 64) // 32 random bytes, hex-encoded

	sess, err := svc.ValidateRefresh(ctx, token)
	require.NoError(t, err)
	require.NotNil(t, sess)
	require.Equal(t, "user-1", sess.UserID)

	// unknown token
	sess2, err := svc.ValidateRefresh(ctx, "bogus")
	require.NoError(t, err)
	require.Nil(t, sess2)
}

func TestValidateExpiredSessionIsCleanedUp(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo)
	ctx := context.Background()

	token, err := svc.CreateSession(ctx, "user-1", -time.Minute)
	require.NoError(t, err)

	sess, err := svc.ValidateRefresh(ctx, token)
	require.NoError(t, err)
	require.Nil(t, sess)

	// expired session must be removed from the store
	stored, _ := repo.GetByRefresh(ctx, token)
	require.Nil(t, stored)
}

func TestDeleteRefresh(t *testing.T) {
	svc := NewService(newMemRepo())
	ctx := context.Background()

	token, err := svc.CreateSession(ctx, "user-1", time.Hour)
	require.NoError(t, err)
	require.NoError(t, svc.DeleteRefresh(ctx, token))

	sess, err := svc.ValidateRefresh(ctx, token)
	require.NoError(t, err)
	require.Nil(t, sess)
}
