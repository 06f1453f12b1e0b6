package document

import (
	"time"

	"github.com/syncboard/syncboard/internal/models"
)

// Document is the persistent document model. Owner, collaborators and
// lastEditedBy hold raw user ids; API responses carry the dereferenced View.
type Document struct {
	ID            string    `json:"id" bson:"id"`
	Title         string    `json:"title" bson:"title"`
	Content       string    `json:"content" bson:"content"`
	Emoji         string    `json:"emoji" bson:"emoji"`
	IsPublic      bool      `json:"isPublic" bson:"isPublic"`
	Owner         string    `json:"owner" bson:"owner"`
	Collaborators []string  `json:"collaborators" bson:"collaborators"`
	LastEditedBy  string    `json:"lastEditedBy,omitempty" bson:"lastEditedBy,omitempty"`
	CreatedAt     time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt" bson:"updatedAt"`
}

// Version is an append-only snapshot of a document's state immediately before
// a content-changing write (the pre-image, never the post-image).
type Version struct {
	ID         string    `json:"id" bson:"id"`
	DocumentID string    `json:"documentId" bson:"documentId"`
	Content    string    `json:"content" bson:"content"`
	Title      string    `json:"title" bson:"title"`
	EditedBy   string    `json:"editedBy" bson:"editedBy"`
	CreatedAt  time.Time `json:"createdAt" bson:"createdAt"`
}

// Patch is a partial document update. Nil fields are left untouched by the
// write (PATCH semantics, not full replacement).
type Patch struct {
	Title    *string `json:"title"`
	Content  *string `json:"content"`
	Emoji    *string `json:"emoji"`
	IsPublic *bool   `json:"isPublic"`
}

// Fields returns the field-level update set containing only the keys
// explicitly present in the patch.
func (p Patch) Fields() map[string]interface{} {
	set := map[string]interface{}{}
	if p.Title != nil {
		set["title"] = *p.Title
	}
	if p.Content != nil {
		set["content"] = *p.Content
	}
	if p.Emoji != nil {
		set["emoji"] = *p.Emoji
	}
	if p.IsPublic != nil {
		set["isPublic"] = *p.IsPublic
	}
	return set
}

// View is a document with its user references dereferenced for API responses.
type View struct {
	ID            string              `json:"id"`
	Title         string              `json:"title"`
	Content       string              `json:"content"`
	Emoji         string              `json:"emoji"`
	IsPublic      bool                `json:"isPublic"`
	Owner         models.PublicUser   `json:"owner"`
	Collaborators []models.PublicUser `json:"collaborators"`
	LastEditedBy  *models.PublicUser  `json:"lastEditedBy,omitempty"`
	CreatedAt     time.Time           `json:"createdAt"`
	UpdatedAt     time.Time           `json:"updatedAt"`
}

// VersionView is a version snapshot with its editor dereferenced.
type VersionView struct {
	ID         string            `json:"id"`
	DocumentID string            `json:"documentId"`
	Content    string            `json:"content"`
	Title      string            `json:"title"`
	EditedBy   models.PublicUser `json:"editedBy"`
	CreatedAt  time.Time         `json:"createdAt"`
}
