package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/syncboard/syncboard/internal/document"
	"github.com/syncboard/syncboard/pkg/logger"
	"github.com/syncboard/syncboard/pkg/metrics"
)

// snapshotWindow is the minimum interval between consecutive version
// checkpoints. Saves arriving closer together than this belong to the same
// editing session and are coalesced into the existing checkpoint, which
// bounds history growth from keystroke-level autosave.
const snapshotWindow = 5 * time.Minute

// maybeSnapshot records the document's pre-write state as a version before a
// content-changing update. incomingContent nil means the update does not
// touch content. Errors are logged and swallowed: history capture is
// best-effort and must never block the primary save.
func (s *Service) maybeSnapshot(ctx context.Context, doc *document.Document, incomingContent *string, editorID string) {
	if incomingContent == nil || *incomingContent == doc.Content {
		return
	}

	last, err := s.repo.FindLatestVersion(ctx, doc.ID)
	if err != nil {
		logger.Errorf("version lookup failed for doc %s (non-blocking): %v", doc.ID, err)
		return
	}
	if last != nil && s.now().Sub(last.CreatedAt) <= snapshotWindow {
		return
	}

	title := doc.Title
	if title == "" {
		title = "Untitled"
	}
	v := &document.Version{
		ID:         uuid.NewString(),
		DocumentID: doc.ID,
		Content:    doc.Content,
		Title:      title,
		EditedBy:   editorID,
	}
	if err := s.repo.InsertVersion(ctx, v); err != nil {
		logger.Errorf("version capture failed for doc %s (non-blocking): %v", doc.ID, err)
		return
	}
	metrics.VersionsCreated.Inc()
}
