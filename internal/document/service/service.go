package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/syncboard/syncboard/internal/document"
	"github.com/syncboard/syncboard/internal/document/repository"
	"github.com/syncboard/syncboard/internal/models"
	"github.com/syncboard/syncboard/internal/realtime"
	"github.com/syncboard/syncboard/pkg/metrics"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("access denied")
	ErrValidation = errors.New("invalid request")
)

const versionHistoryLimit = 50

// Identity is the authenticated caller as supplied by the session layer.
// The service trusts it without re-verifying credentials.
type Identity struct {
	ID   string
	Name string
}

// UserDirectory resolves user references at the service boundary; the
// document model itself only carries raw ids.
type UserDirectory interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Resolve(ctx context.Context, ids []string) (map[string]models.PublicUser, error)
}

// Service is the authoritative entry point for reading and mutating
// documents. All state lives in the repository; nothing is cached across
// requests.
type Service struct {
	repo     repository.Repository
	users    UserDirectory
	notifier realtime.Notifier
	now      func() time.Time
}

func New(repo repository.Repository, users UserDirectory, notifier realtime.Notifier) *Service {
	if notifier == nil {
		notifier = realtime.NopNotifier{}
	}
	return &Service{repo: repo, users: users, notifier: notifier, now: time.Now}
}

// Create inserts a new document owned by the caller, with empty content and
// defaults for omitted metadata.
func (s *Service) Create(ctx context.Context, ownerID, title, content, emoji string) (*document.View, error) {
	if title == "" {
		title = "Untitled Document"
	}
	if emoji == "" {
		emoji = "📄"
	}
	doc := &document.Document{
		ID:            uuid.NewString(),
		Title:         title,
		Content:       content,
		Emoji:         emoji,
		Owner:         ownerID,
		Collaborators: []string{},
		LastEditedBy:  ownerID,
	}
	if err := s.repo.Create(ctx, doc); err != nil {
		return nil, err
	}
	return s.populateOne(ctx, doc)
}

// Get returns a populated document, enforcing read access.
func (s *Service) Get(ctx context.Context, id string, callerID string) (*document.View, error) {
	doc, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !document.CanRead(doc, callerID) {
		return nil, ErrForbidden
	}
	return s.populateOne(ctx, doc)
}

// List returns every document the caller owns or collaborates on, most
// recently updated first.
func (s *Service) List(ctx context.Context, callerID string) ([]*document.View, error) {
	docs, err := s.repo.ListForUser(ctx, callerID)
	if err != nil {
		return nil, err
	}
	return s.populate(ctx, docs)
}

// Update is the document mutation coordinator: authorize, conditionally
// snapshot the pre-image, persist the partial field set atomically, then
// notify other viewers best-effort. Concurrent writers are resolved
// last-write-wins; no merge is attempted.
func (s *Service) Update(ctx context.Context, id string, editor Identity, patch document.Patch) (*document.View, error) {
	doc, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !document.CanWrite(doc, editor.ID) {
		return nil, ErrForbidden
	}

	// Version capture is best-effort and must never block the primary save.
	s.maybeSnapshot(ctx, doc, patch.Content, editor.ID)

	fields := patch.Fields()
	fields["lastEditedBy"] = editor.ID
	updated, err := s.repo.UpdateFields(ctx, id, fields)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	metrics.DocumentsUpdated.Inc()

	realtime.Fire(s.notifier, realtime.ChannelForDocument(id), realtime.EventDocumentUpdated, map[string]interface{}{
		"documentId": id,
		"updates":    fields,
		"updatedBy":  map[string]string{"id": editor.ID, "name": editor.Name},
	})

	return s.populateOne(ctx, updated)
}

// Delete removes a document and all of its version history. Owner only.
func (s *Service) Delete(ctx context.Context, id string, callerID string) error {
	doc, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if !document.IsOwner(doc, callerID) {
		return ErrForbidden
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return s.repo.DeleteVersions(ctx, id)
}

// Versions lists up to 50 snapshots, newest first, with editors dereferenced.
func (s *Service) Versions(ctx context.Context, id string, callerID string) ([]*document.VersionView, error) {
	doc, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !document.CanRead(doc, callerID) {
		return nil, ErrForbidden
	}
	versions, err := s.repo.ListVersions(ctx, id, versionHistoryLimit)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(versions))
	for _, v := range versions {
		ids = append(ids, v.EditedBy)
	}
	resolved, err := s.users.Resolve(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]*document.VersionView, 0, len(versions))
	for _, v := range versions {
		out = append(out, &document.VersionView{
			ID:         v.ID,
			DocumentID: v.DocumentID,
			Content:    v.Content,
			Title:      v.Title,
			EditedBy:   resolved[v.EditedBy],
			CreatedAt:  v.CreatedAt,
		})
	}
	return out, nil
}

// AddCollaborator grants another account write access. Owner only; the
// collaborator is looked up by email (case-insensitive). Returns the
// refreshed collaborator list.
func (s *Service) AddCollaborator(ctx context.Context, id string, callerID, email string) ([]models.PublicUser, error) {
	doc, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !document.IsOwner(doc, callerID) {
		return nil, fmt.Errorf("%w: only the owner can add collaborators", ErrForbidden)
	}
	collaborator, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if collaborator == nil {
		return nil, fmt.Errorf("%w: no user found with that email", ErrNotFound)
	}
	if collaborator.ID == callerID {
		return nil, fmt.Errorf("%w: you cannot add yourself as a collaborator", ErrValidation)
	}
	for _, c := range doc.Collaborators {
		if c == collaborator.ID {
			return nil, fmt.Errorf("%w: user is already a collaborator", ErrValidation)
		}
	}
	updated, err := s.repo.AddCollaborator(ctx, id, collaborator.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	resolved, err := s.users.Resolve(ctx, updated.Collaborators)
	if err != nil {
		return nil, err
	}
	out := make([]models.PublicUser, 0, len(updated.Collaborators))
	for _, cid := range updated.Collaborators {
		if u, ok := resolved[cid]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (s *Service) load(ctx context.Context, id string) (*document.Document, error) {
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return doc, nil
}

func (s *Service) populateOne(ctx context.Context, doc *document.Document) (*document.View, error) {
	views, err := s.populate(ctx, []*document.Document{doc})
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

// populate dereferences owner/collaborator/lastEditedBy ids for a batch of
// documents with a single directory lookup.
func (s *Service) populate(ctx context.Context, docs []*document.Document) ([]*document.View, error) {
	var ids []string
	for _, d := range docs {
		ids = append(ids, d.Owner)
		ids = append(ids, d.Collaborators...)
		if d.LastEditedBy != "" {
			ids = append(ids, d.LastEditedBy)
		}
	}
	resolved, err := s.users.Resolve(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]*document.View, 0, len(docs))
	for _, d := range docs {
		v := &document.View{
			ID:            d.ID,
			Title:         d.Title,
			Content:       d.Content,
			Emoji:         d.Emoji,
			IsPublic:      d.IsPublic,
			Owner:         resolved[d.Owner],
			Collaborators: []models.PublicUser{},
			CreatedAt:     d.CreatedAt,
			UpdatedAt:     d.UpdatedAt,
		}
		for _, cid := range d.Collaborators {
			if u, ok := resolved[cid]; ok {
				v.Collaborators = append(v.Collaborators, u)
			}
		}
		if d.LastEditedBy != "" {
			if u, ok := resolved[d.LastEditedBy]; ok {
				v.LastEditedBy = &u
			}
		}
		out = append(out, v)
	}
	return out, nil
}
