package identity

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/hima852/expenseflow/internal/domain/entity"
)

type fakeUserRepo struct {
	users map[string]*entity.User
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return f.users[email], nil
}

func newIdentity(t *testing.T, ttl time.Duration) (*JWTIdentity, *fakeUserRepo) {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	repo := &fakeUserRepo{users: map[string]*entity.User{
		"asha@example.com": {
			ID:           1,
			Name:         "Asha Verma",
			Email:        "asha@example.com",
			Role:         entity.RoleCoordinator,
			Department:   "Engineering",
			PasswordHash: string(hash),
		},
	}}

	return NewJWTIdentity("test-secret", ttl, repo, zap.NewNop()), repo
}

func TestIssueAndAuthenticate_RoundTrip(t *testing.T) {
	svc, _ := newIdentity(t, time.Hour)

	actor := entity.Actor{UserID: 1, Role: entity.RoleCoordinator, Department: "Engineering"}
	token, err := svc.IssueToken(actor)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	got, err := svc.Authenticate(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, actor, got)
}

func TestAuthenticate_Rejections(t *testing.T) {
	svc, _ := newIdentity(t, time.Hour)

	tests := []struct {
		name  string
		token string
	}{
		{"empty token", ""},
		{"garbage token", "not.a.jwt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Authenticate(context.Background(), tt.token)
			assert.ErrorIs(t, err, ErrUnauthenticated)
		})
	}

	t.Run("token signed with another secret", func(t *testing.T) {
		other := NewJWTIdentity("other-secret", time.Hour, nil, zap.NewNop())
		token, err := other.IssueToken(entity.Actor{UserID: 1})
		require.NoError(t, err)

		_, err = svc.Authenticate(context.Background(), token)
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})

	t.Run("expired token", func(t *testing.T) {
		expired, _ := newIdentity(t, -time.Minute)
		token, err := expired.IssueToken(entity.Actor{UserID: 1})
		require.NoError(t, err)

		_, err = svc.Authenticate(context.Background(), token)
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})
}

func TestCheckCredentials(t *testing.T) {
	svc, _ := newIdentity(t, time.Hour)
	ctx := context.Background()

	t.Run("valid credentials", func(t *testing.T) {
		actor, err := svc.CheckCredentials(ctx, "asha@example.com", "s3cret")
		require.NoError(t, err)
		assert.Equal(t, int64(1), actor.UserID)
		assert.Equal(t, entity.RoleCoordinator, actor.Role)
	})

	// Wrong password, unknown user, and malformed email all fail the
	// same way; nothing distinguishes which check tripped.
	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.CheckCredentials(ctx, "asha@example.com", "wrong")
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})
	t.Run("unknown user", func(t *testing.T) {
		_, err := svc.CheckCredentials(ctx, "nobody@example.com", "s3cret")
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})
	t.Run("malformed email", func(t *testing.T) {
		_, err := svc.CheckCredentials(ctx, "not-an-email", "s3cret")
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})
}
