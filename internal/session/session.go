package session

import (
	"context"
	"net/http"
)

// SubjectKey is the session key holding the authenticated subject. It is
// written by the upstream sign-in flow and read by the authorizer.
const SubjectKey = "user_subject"

// Manager is an interface that abstracts the session management implementation.
// This allows for easier testing and dependency injection.
type Manager interface {
	LoadAndSave(next http.Handler) http.Handler
	Put(ctx context.Context, key string, val interface{})
	GetString(ctx context.Context, key string) string
	Remove(ctx context.Context, key string)
}
