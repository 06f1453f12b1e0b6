package document

// Access control predicates over already-loaded document state. Pure; callers
// translate false into an authorization error.

// IsOwner reports strict ownership. Required for delete and for managing the
// collaborator set.
func IsOwner(d *Document, userID string) bool {
	return userID != "" && d.Owner == userID
}

// isCollaborator reports collaborator-set membership.
func isCollaborator(d *Document, userID string) bool {
	for _, c := range d.Collaborators {
		if c == userID {
			return true
		}
	}
	return false
}

// CanWrite reports whether the user may edit the document: the owner and
// every collaborator may write.
func CanWrite(d *Document, userID string) bool {
	if userID == "" {
		return false
	}
	return d.Owner == userID || isCollaborator(d, userID)
}

// CanRead reports whether the user may view the document: anyone with write
// access, plus everyone when the document is public.
func CanRead(d *Document, userID string) bool {
	return d.IsPublic || CanWrite(d, userID)
}
