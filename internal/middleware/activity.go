package middleware

import (
	"net/http"

	"github.com/promanage/taskboard/internal/database"
	"github.com/promanage/taskboard/internal/request"
	"go.uber.org/zap"
)

// ActivityTracking stamps the last-seen time for authenticated requests.
// Mutation events are recorded separately through the job queue; this
// only keeps the "seen" timestamp fresh for read-only traffic, and a
// failure here never fails the request.
func ActivityTracking(activityRepo database.UserActivityStore, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if user := request.UserFromContext(r); user != nil {
				if err := activityRepo.TouchLastSeen(r.Context(), user.ID); err != nil {
					logger.Warn("failed_to_touch_last_seen",
						zap.String("user_id", user.ID.String()),
						zap.Error(err),
					)
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}
