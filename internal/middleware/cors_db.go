package middleware

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/promanage/taskboard/internal/database"
	"github.com/promanage/taskboard/internal/models"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

// CorsConfigSource yields the stored CORS configuration. Satisfied by
// *database.CorsConfigRepository.
type CorsConfigSource interface {
	Get(ctx context.Context) (*models.CorsConfig, error)
}

// CORSReloader owns an rs/cors policy rebuilt from the database on a
// fixed interval. Only the policy is shared; each wrapped route chain
// keeps its own next handler, so any number of routers can apply the
// same reloader concurrently. Config is read once at construction and
// then only by the Start loop, never per request.
type CORSReloader struct {
	repo     CorsConfigSource
	fallback string // e.g. FRONTEND_URL
	log      *zap.Logger
	interval time.Duration

	mu     sync.RWMutex
	policy *cors.Cors
}

// NewCORSReloader builds the reloader and loads the initial policy.
func NewCORSReloader(repo CorsConfigSource, frontendURLFallback string, log *zap.Logger, reloadInterval time.Duration) *CORSReloader {
	r := &CORSReloader{
		repo:     repo,
		fallback: strings.TrimSpace(frontendURLFallback),
		log:      log,
		interval: reloadInterval,
	}
	r.load(context.Background())
	return r
}

// Middleware wraps next with whatever policy is current at request
// time. The closure captures next per wrap and mutates nothing on the
// reloader.
func (r *CORSReloader) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			r.mu.RLock()
			policy := r.policy
			r.mu.RUnlock()
			if policy == nil {
				next.ServeHTTP(w, req)
				return
			}
			policy.Handler(next).ServeHTTP(w, req)
		})
	}
}

// Start runs the reload loop until ctx is cancelled.
func (r *CORSReloader) Start(ctx context.Context) {
	if r.interval <= 0 {
		return
	}
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.load(ctx)
		}
	}
}

func (r *CORSReloader) load(ctx context.Context) {
	cfg, err := r.repo.Get(ctx)
	var origins []string
	var allowCreds bool
	var maxAge int
	if err != nil || cfg == nil {
		if err != nil {
			r.log.Warn("failed_to_load_cors_config_from_db_using_fallback",
				zap.Error(err),
			)
		}
		origins = database.AllowedOriginsSlice(r.fallback)
		allowCreds = true
		maxAge = 86400
	} else {
		origins = database.AllowedOriginsSlice(cfg.AllowedOrigins)
		allowCreds = cfg.AllowCredentials
		maxAge = cfg.MaxAge
	}
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	opts := cors.Options{
		AllowedOrigins:   origins,
		AllowCredentials: allowCreds,
		MaxAge:           maxAge,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
	}
	p := cors.New(opts)
	r.mu.Lock()
	r.policy = p
	r.mu.Unlock()
}
