package api

import (
	"context"
	"time"
)

// QueryTimeout bounds a single store call, overridden from REQUEST_TIMEOUT at startup
var QueryTimeout = 10 * time.Second

// WithQueryTimeout creates a context with query timeout
func WithQueryTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, QueryTimeout)
}
