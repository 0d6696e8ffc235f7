package domain

import "time"

// TrackingRecord is the last-synced state of one document.
// A record exists iff the document has been uploaded and committed at
// least once; the manifest is the single source of truth for what the
// remote store currently holds.
type TrackingRecord struct {
	// DocumentID is the document this record tracks.
	DocumentID string `json:"document_id"`

	// ContentHash is the SHA-256 digest (hex) of the content at the last
	// successful upload.
	ContentHash string `json:"content_hash"`

	// RemoteFileID is the identifier returned by the remote store on the
	// last successful upload.
	RemoteFileID string `json:"remote_file_id"`

	// Indexed is true once the remote file is attached to the index.
	Indexed bool `json:"indexed"`

	// LastSyncedAt is the time of the last successful commit.
	LastSyncedAt time.Time `json:"last_synced_at"`
}

// Manifest maps document IDs to their tracking records. All mutation
// happens in memory during a run; the orchestrator flushes it once at
// finalize.
type Manifest struct {
	records map[string]TrackingRecord
}

// NewManifest creates an empty manifest.
func NewManifest() *Manifest {
	return &Manifest{records: make(map[string]TrackingRecord)}
}

// Get returns the record for a document ID.
func (m *Manifest) Get(documentID string) (TrackingRecord, bool) {
	rec, ok := m.records[documentID]
	return rec, ok
}

// Put creates or overwrites a record.
func (m *Manifest) Put(rec TrackingRecord) {
	m.records[rec.DocumentID] = rec
}

// Remove deletes the record for a document ID.
func (m *Manifest) Remove(documentID string) {
	delete(m.records, documentID)
}

// IDs returns the document IDs of all records, in no particular order.
func (m *Manifest) IDs() []string {
	ids := make([]string, 0, len(m.records))
	for id := range m.records {
		ids = append(ids, id)
	}
	return ids
}

// Len returns the number of records.
func (m *Manifest) Len() int {
	return len(m.records)
}

// Records returns a copy of the underlying record map.
func (m *Manifest) Records() map[string]TrackingRecord {
	out := make(map[string]TrackingRecord, len(m.records))
	for id, rec := range m.records {
		out[id] = rec
	}
	return out
}

// FromRecords builds a manifest from a record map, keyed by document ID.
func FromRecords(records map[string]TrackingRecord) *Manifest {
	m := NewManifest()
	for id, rec := range records {
		rec.DocumentID = id
		m.records[id] = rec
	}
	return m
}
