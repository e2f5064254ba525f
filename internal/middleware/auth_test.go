package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/promanage/taskboard/internal/database"
	"github.com/promanage/taskboard/internal/models"
	"github.com/promanage/taskboard/internal/request"
	"go.uber.org/zap"
)

type stubUserStore struct {
	users map[uuid.UUID]*models.User
}

func (s *stubUserStore) Create(ctx context.Context, user *models.User) error { return nil }

func (s *stubUserStore) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return nil, database.ErrNotFound
}

func (s *stubUserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return nil, database.ErrNotFound
}

func (s *stubUserStore) List(ctx context.Context) ([]*models.User, error) { return nil, nil }

const testIssuer = "taskboard"

var testSecret = []byte("auth-middleware-test-secret")

func signToken(t *testing.T, subject, issuer string, ttl time.Duration, key []byte) string {
	t.Helper()

	now := time.Now()
	tok, err := jwt.NewBuilder().
		Subject(subject).
		Issuer(issuer).
		IssuedAt(now).
		Expiration(now.Add(ttl)).
		Build()
	if err != nil {
		t.Fatal(err)
	}
	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.HS256, key))
	if err != nil {
		t.Fatal(err)
	}
	return string(signed)
}

func TestAuth(t *testing.T) {
	t.Parallel()

	user := &models.User{ID: uuid.New(), Email: "kai@example.com"}
	store := &stubUserStore{users: map[uuid.UUID]*models.User{user.ID: user}}

	tests := []struct {
		name       string
		authHeader string
		wantStatus int
		wantUser   bool
	}{
		{
			name:       "valid token",
			authHeader: "Bearer " + signToken(t, user.ID.String(), testIssuer, time.Hour, testSecret),
			wantStatus: http.StatusOK,
			wantUser:   true,
		},
		{
			name:       "missing header",
			authHeader: "",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "not a bearer token",
			authHeader: "Basic dXNlcjpwYXNz",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "wrong signing key",
			authHeader: "Bearer " + signToken(t, user.ID.String(), testIssuer, time.Hour, []byte("wrong-key")),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "expired token",
			authHeader: "Bearer " + signToken(t, user.ID.String(), testIssuer, -time.Minute, testSecret),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "wrong issuer",
			authHeader: "Bearer " + signToken(t, user.ID.String(), "someone-else", time.Hour, testSecret),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "non-uuid subject",
			authHeader: "Bearer " + signToken(t, "admin", testIssuer, time.Hour, testSecret),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "unknown user",
			authHeader: "Bearer " + signToken(t, uuid.NewString(), testIssuer, time.Hour, testSecret),
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var gotUser *models.User
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotUser = request.UserFromContext(r)
				w.WriteHeader(http.StatusOK)
			})

			handler := Auth(store, testSecret, testIssuer, zap.NewNop())(next)

			req := httptest.NewRequest("GET", "/todos", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantUser {
				if gotUser == nil || gotUser.ID != user.ID {
					t.Errorf("context user = %+v, want %s", gotUser, user.ID)
				}
			} else if gotUser != nil {
				t.Error("handler must not run with a user on rejected requests")
			}
		})
	}
}
