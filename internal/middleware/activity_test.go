package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/promanage/taskboard/internal/models"
	"github.com/promanage/taskboard/internal/request"
	"go.uber.org/zap"
)

type countingActivityStore struct {
	mu      sync.Mutex
	touched []uuid.UUID
	err     error
}

func (s *countingActivityStore) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.UserActivity, error) {
	return nil, nil
}

func (s *countingActivityStore) RecordEvent(ctx context.Context, userID uuid.UUID, event string, at time.Time) error {
	return nil
}

func (s *countingActivityStore) TouchLastSeen(ctx context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touched = append(s.touched, userID)
	return s.err
}

func (s *countingActivityStore) touchedIDs() []uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]uuid.UUID(nil), s.touched...)
}

func injectUser(user *models.User) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(request.WithUser(r.Context(), user)))
		})
	}
}

func TestActivityTrackingStampsAuthenticatedUser(t *testing.T) {
	t.Parallel()

	user := &models.User{ID: uuid.New(), Email: "kai@example.com"}
	store := &countingActivityStore{}

	// Mirror the server wiring: the session middleware runs on the
	// subrouter first, then last-seen stamping.
	router := mux.NewRouter()
	sub := router.PathPrefix("/todos").Subrouter()
	sub.Use(injectUser(user))
	sub.Use(ActivityTracking(store, zap.NewNop()))
	sub.HandleFunc("", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods("GET")

	req := httptest.NewRequest("GET", "/todos", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	touched := store.touchedIDs()
	if len(touched) != 1 || touched[0] != user.ID {
		t.Errorf("touched = %v, want exactly one stamp for %s", touched, user.ID)
	}
}

func TestActivityTrackingSkipsAnonymousRequests(t *testing.T) {
	t.Parallel()

	store := &countingActivityStore{}
	handler := ActivityTracking(store, zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/healthz", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if touched := store.touchedIDs(); len(touched) != 0 {
		t.Errorf("anonymous request stamped last seen: %v", touched)
	}
}

func TestActivityTrackingFailureDoesNotFailRequest(t *testing.T) {
	t.Parallel()

	user := &models.User{ID: uuid.New()}
	store := &countingActivityStore{err: errors.New("db down")}
	handler := injectUser(user)(ActivityTracking(store, zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))

	req := httptest.NewRequest("GET", "/todos", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 despite stamp failure", rec.Code)
	}
}
