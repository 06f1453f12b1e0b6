package repository

import (
	"context"
	"errors"

	"github.com/syncboard/syncboard/internal/document"
)

var (
	ErrNotFound = errors.New("document not found")
)

// Repository defines the document-store operations the service layer depends
// on. Field-level updates are atomic at the granularity of a single call.
type Repository interface {
	Create(ctx context.Context, doc *document.Document) error
	FindByID(ctx context.Context, id string) (*document.Document, error)
	ListForUser(ctx context.Context, userID string) ([]*document.Document, error)
	// UpdateFields applies the given field set atomically, refreshes
	// updatedAt, and returns the post-update document.
	UpdateFields(ctx context.Context, id string, fields map[string]interface{}) (*document.Document, error)
	AddCollaborator(ctx context.Context, id, userID string) (*document.Document, error)
	Delete(ctx context.Context, id string) error

	InsertVersion(ctx context.Context, v *document.Version) error
	FindLatestVersion(ctx context.Context, documentID string) (*document.Version, error)
	ListVersions(ctx context.Context, documentID string, limit int) ([]*document.Version, error)
	DeleteVersions(ctx context.Context, documentID string) error
}
