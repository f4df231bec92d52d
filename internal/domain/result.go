package domain

// UpsertResult is the outcome of upserting one remote record. A failed
// upsert carries Err and is counted, it never aborts the page.
type UpsertResult struct {
	ExternalID string
	LocalID    int64
	Created    bool
	Err        error
}

// Upserted builds a successful result
func Upserted(externalID string, localID int64, created bool) UpsertResult {
	return UpsertResult{ExternalID: externalID, LocalID: localID, Created: created}
}

// UpsertFailed builds a failed result
func UpsertFailed(externalID string, err error) UpsertResult {
	return UpsertResult{ExternalID: externalID, Err: err}
}

// OK reports whether the record was written
func (r UpsertResult) OK() bool {
	return r.Err == nil
}

// Reference is a resolved cross-entity link. The zero value is absent.
type Reference struct {
	ID      int64
	Present bool
}

// AbsentReference marks a link whose target is not stored locally
var AbsentReference = Reference{}

// ResolvedReference wraps a local id
func ResolvedReference(id int64) Reference {
	return Reference{ID: id, Present: true}
}

// Ptr returns the id for a nullable foreign key column
func (r Reference) Ptr() *int64 {
	if !r.Present {
		return nil
	}
	id := r.ID
	return &id
}
