package middleware

import (
	"fmt"
	"go-success-stories/internal/logger"
	"go-success-stories/internal/session"
	"net/http"

	"github.com/casbin/casbin/v2"
)

// Authorizer creates a new middleware for authorization.
// It checks the subject's permissions using Casbin based on session data.
func Authorizer(e casbin.IEnforcer, sm session.Manager, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			subject := sm.GetString(r.Context(), session.SubjectKey)
			if subject == "" {
				subject = AnonymousSubject
			}
			r = r.WithContext(SetUserInfo(r.Context(), &UserInfo{Subject: subject}))

			allowed, err := e.Enforce(subject, r.URL.Path, r.Method)
			if err != nil {
				log.Error(err, fmt.Sprintf("Failed to enforce policy for %s %s", r.Method, r.URL.Path))
				http.Error(w, "Authorization error", http.StatusInternalServerError)
				return
			}

			if !allowed {
				log.Debug(fmt.Sprintf("Denied %s %s to %q", r.Method, r.URL.Path, subject))
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
