package query

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/eaglebank/auth-api/internal/repository"
	"github.com/eaglebank/auth-api/shared/cqrs"
	"github.com/eaglebank/auth-api/shared/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockTokenIssuer struct {
	mock.Mock
}

func (m *mockTokenIssuer) Issue(userID int64, email string) (string, error) {
	args := m.Called(userID, email)
	return args.String(0), args.Error(1)
}

var errSign = errors.New("sign failed")

func newSeededStore(t *testing.T) *repository.MemoryUserStore {
	t.Helper()
	store := repository.NewMemoryUserStore()
	require.NoError(t, repository.Seed(context.Background(), store, []repository.SeedUser{
		{ID: 1, Name: "user1", Email: "a@x.com", Password: "pw1"},
		{ID: 2, Name: "user2", Email: "b@x.com", Password: "pw2"},
	}))
	return store
}

func TestAuthQueryService_Login(t *testing.T) {
	store := newSeededStore(t)

	tests := []struct {
		name      string
		cmd       cqrs.LoginCommand
		mockSetup func(*mockTokenIssuer)
		wantToken string
		wantErr   error
	}{
		{
			name: "success",
			cmd:  cqrs.LoginCommand{Email: "a@x.com", Password: "pw1"},
			mockSetup: func(m *mockTokenIssuer) {
				m.On("Issue", int64(1), "a@x.com").Return("signed.token", nil)
			},
			wantToken: "signed.token",
		},
		{
			name:    "unknown email",
			cmd:     cqrs.LoginCommand{Email: "nobody@x.com", Password: "pw1"},
			wantErr: repository.ErrUserNotFound,
		},
		{
			name:    "wrong password",
			cmd:     cqrs.LoginCommand{Email: "a@x.com", Password: "pw2"},
			wantErr: ErrInvalidCredentials,
		},
		{
			name: "issuer failure",
			cmd:  cqrs.LoginCommand{Email: "b@x.com", Password: "pw2"},
			mockSetup: func(m *mockTokenIssuer) {
				m.On("Issue", int64(2), "b@x.com").Return("", errSign)
			},
			wantErr: errSign,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issuer := &mockTokenIssuer{}
			if tt.mockSetup != nil {
				tt.mockSetup(issuer)
			}
			svc := NewAuthQueryService(store, issuer)

			tok, err := svc.Login(context.Background(), tt.cmd)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, tok)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantToken, tok)
			}
			issuer.AssertExpectations(t)
		})
	}
}

func TestAuthQueryService_LoginClaims(t *testing.T) {
	store := newSeededStore(t)
	tokens := token.NewManager("test-secret", time.Hour)
	svc := NewAuthQueryService(store, tokens)

	for _, u := range []struct {
		id       int64
		email    string
		password string
	}{{1, "a@x.com", "pw1"}, {2, "b@x.com", "pw2"}} {
		tok, err := svc.Login(context.Background(), cqrs.LoginCommand{Email: u.email, Password: u.password})
		require.NoError(t, err)

		claims, err := tokens.Parse(tok)
		require.NoError(t, err)
		assert.Equal(t, u.id, claims.UserID)
		assert.Equal(t, u.email, claims.Email)
	}
}

func TestAuthQueryService_RefreshToken(t *testing.T) {
	tokens := token.NewManager("test-secret", time.Hour)

	tests := []struct {
		name      string
		cmd       cqrs.RefreshTokenCommand
		mutate    func(*testing.T, *repository.MemoryUserStore)
		wantEmail string
		wantErr   error
	}{
		{
			name:      "same identity",
			cmd:       cqrs.RefreshTokenCommand{UserID: 1, Email: "a@x.com"},
			wantEmail: "a@x.com",
		},
		{
			name: "email changed since issue",
			cmd:  cqrs.RefreshTokenCommand{UserID: 1, Email: "a@x.com"},
			mutate: func(t *testing.T, store *repository.MemoryUserStore) {
				u, err := store.FindByID(context.Background(), 1)
				require.NoError(t, err)
				u.Email = "new@x.com"
				require.NoError(t, store.Update(context.Background(), u))
			},
			wantEmail: "new@x.com",
		},
		{
			name: "account deleted",
			cmd:  cqrs.RefreshTokenCommand{UserID: 2, Email: "b@x.com"},
			mutate: func(t *testing.T, store *repository.MemoryUserStore) {
				require.NoError(t, store.Remove(context.Background(), 2))
			},
			wantErr: repository.ErrUserNotFound,
		},
		{
			name:    "unknown id",
			cmd:     cqrs.RefreshTokenCommand{UserID: 9, Email: "z@x.com"},
			wantErr: repository.ErrUserNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newSeededStore(t)
			if tt.mutate != nil {
				tt.mutate(t, store)
			}
			svc := NewAuthQueryService(store, tokens)

			tok, err := svc.RefreshToken(context.Background(), tt.cmd)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, tok)
				return
			}
			require.NoError(t, err)

			claims, err := tokens.Parse(tok)
			require.NoError(t, err)
			assert.Equal(t, tt.cmd.UserID, claims.UserID)
			assert.Equal(t, tt.wantEmail, claims.Email)
		})
	}
}
