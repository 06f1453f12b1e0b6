package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/syncboard/syncboard/internal/document"
)

// MemoryRepo is an in-memory Repository used by unit tests and local
// development without a running MongoDB.
type MemoryRepo struct {
	mu       sync.RWMutex
	docs     map[string]*document.Document
	versions map[string][]*document.Version
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		docs:     make(map[string]*document.Document),
		versions: make(map[string][]*document.Version),
	}
}

func (m *MemoryRepo) Create(ctx context.Context, doc *document.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	doc.CreatedAt = now
	doc.UpdatedAt = now
	if doc.Collaborators == nil {
		doc.Collaborators = []string{}
	}
	cp := cloneDoc(doc)
	m.docs[doc.ID] = cp
	return nil
}

func (m *MemoryRepo) FindByID(ctx context.Context, id string) (*document.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneDoc(d), nil
}

func (m *MemoryRepo) ListForUser(ctx context.Context, userID string) ([]*document.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []*document.Document{}
	for _, d := range m.docs {
		if d.Owner == userID || contains(d.Collaborators, userID) {
			out = append(out, cloneDoc(d))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (m *MemoryRepo) UpdateFields(ctx context.Context, id string, fields map[string]interface{}) (*document.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	for k, v := range fields {
		switch k {
		case "title":
			d.Title = v.(string)
		case "content":
			d.Content = v.(string)
		case "emoji":
			d.Emoji = v.(string)
		case "isPublic":
			d.IsPublic = v.(bool)
		case "lastEditedBy":
			d.LastEditedBy = v.(string)
		}
	}
	d.UpdatedAt = time.Now().UTC()
	return cloneDoc(d), nil
}

func (m *MemoryRepo) AddCollaborator(ctx context.Context, id, userID string) (*document.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	if !contains(d.Collaborators, userID) {
		d.Collaborators = append(d.Collaborators, userID)
	}
	d.UpdatedAt = time.Now().UTC()
	return cloneDoc(d), nil
}

func (m *MemoryRepo) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[id]; !ok {
		return ErrNotFound
	}
	delete(m.docs, id)
	return nil
}

func (m *MemoryRepo) InsertVersion(ctx context.Context, v *document.Version) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now().UTC()
	}
	cp := *v
	m.versions[v.DocumentID] = append(m.versions[v.DocumentID], &cp)
	return nil
}

func (m *MemoryRepo) FindLatestVersion(ctx context.Context, documentID string) (*document.Version, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	vs := m.versions[documentID]
	if len(vs) == 0 {
		return nil, nil
	}
	latest := vs[0]
	for _, v := range vs[1:] {
		if v.CreatedAt.After(latest.CreatedAt) {
			latest = v
		}
	}
	cp := *latest
	return &cp, nil
}

func (m *MemoryRepo) ListVersions(ctx context.Context, documentID string, limit int) ([]*document.Version, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	vs := m.versions[documentID]
	out := make([]*document.Version, 0, len(vs))
	for _, v := range vs {
		cp := *v
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemoryRepo) DeleteVersions(ctx context.Context, documentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.versions, documentID)
	return nil
}

// VersionCount reports the number of stored snapshots for a document.
// Test helper.
func (m *MemoryRepo) VersionCount(documentID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.versions[documentID])
}

func cloneDoc(d *document.Document) *document.Document {
	cp := *d
	cp.Collaborators = append([]string{}, d.Collaborators...)
	return &cp
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
