package api

import (
	"context"
	"time"

	"github.com/extortion-watch/extortion-report-api/models"
)

// QueryTimeout is the default timeout for database queries
const QueryTimeout = 10 * time.Second

type contextKey int

const sessionContextKey contextKey = iota

// WithQueryTimeout creates a context with query timeout
func WithQueryTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, QueryTimeout)
}

// WithSession stores the authenticated session on the context
func WithSession(parent context.Context, sess models.Session) context.Context {
	return context.WithValue(parent, sessionContextKey, sess)
}

// SessionFromContext returns the session stored by the auth middleware
func SessionFromContext(ctx context.Context) (models.Session, bool) {
	sess, ok := ctx.Value(sessionContextKey).(models.Session)
	return sess, ok
}
