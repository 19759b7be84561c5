package port

import (
	"context"
	"io"

	"github.com/hima852/expenseflow/internal/domain/entity"
)

// IdentityService is the external identity collaborator: it resolves a
// bearer token into an actor or fails, and checks credentials.
type IdentityService interface {
	// Authenticate resolves a token to the acting principal.
	Authenticate(ctx context.Context, token string) (entity.Actor, error)

	// CheckCredentials verifies an email/password pair and returns the
	// matching actor.
	CheckCredentials(ctx context.Context, email, password string) (entity.Actor, error)

	// IssueToken mints a token for an actor. Used by the login
	// endpoint and by tests; token mechanics are not core behavior.
	IssueToken(actor entity.Actor) (string, error)
}

// FileStore accepts receipt uploads and resolves opaque keys back to
// byte streams.
type FileStore interface {
	// Save stores content under a fresh opaque key. filename carries
	// the original extension for type validation.
	Save(ctx context.Context, filename string, content []byte) (key string, err error)

	// Open resolves a key to a readable stream, its size, and content
	// type. Fails with entity.NotFoundError for unknown keys.
	Open(ctx context.Context, key string) (io.ReadCloser, int64, string, error)
}
