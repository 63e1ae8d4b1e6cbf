// Package vectorstore persists vector index snapshots as single SQLite files
// and answers brute-force similarity queries over them.
//
// A snapshot on disk is either fully written or absent: Save builds the new
// index in a temporary file and renames it over the published path only after
// a successful commit, so concurrent readers never observe a partial index.
// Readers load the whole snapshot at open time and are unaffected by later
// replacements.
package vectorstore

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	_ "modernc.org/sqlite" // SQLite driver

	"docuchat/internal/apperr"
	"docuchat/internal/rag/interfaces"
	"docuchat/internal/rag/schema"
	"docuchat/pkg/logger"
)

const snapshotSchema = `
CREATE TABLE chunks (
	seq           INTEGER PRIMARY KEY,
	id            TEXT    NOT NULL,
	text          TEXT    NOT NULL,
	source_offset INTEGER NOT NULL,
	embedding     BLOB    NOT NULL
);`

// SnapshotStore owns the on-disk index artifacts under one directory. It is
// the only writer; retrieval obtains read-only snapshots through Open.
type SnapshotStore struct {
	dir string
	log *logger.Logger

	// mu serializes writers within the process. Readers never take it:
	// atomic rename publication keeps them safe on its own.
	mu sync.Mutex
}

// NewSnapshotStore creates a store rooted at dir.
func NewSnapshotStore(dir string, log *logger.Logger) *SnapshotStore {
	return &SnapshotStore{dir: dir, log: log}
}

func (s *SnapshotStore) path(name string) string {
	return filepath.Join(s.dir, name+".db")
}

// Save persists all chunks (with embeddings) as a new snapshot under name,
// atomically replacing any prior snapshot. On any failure nothing is
// published and a prior snapshot, if present, stays intact.
func (s *SnapshotStore) Save(ctx context.Context, name string, chunks []schema.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create index directory: %w", err)
	}

	final := s.path(name)
	tmp := final + ".tmp"
	if err := s.writeSnapshot(ctx, tmp, chunks); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, final); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to publish index snapshot: %w", err)
	}

	s.log.Info(fmt.Sprintf("Published index snapshot '%s' with %d chunks", name, len(chunks)))
	return nil
}

func (s *SnapshotStore) writeSnapshot(ctx context.Context, path string, chunks []schema.Chunk) error {
	os.Remove(path) // leftover from a crashed earlier write

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("failed to create snapshot file: %w", err)
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, snapshotSchema); err != nil {
		return fmt.Errorf("failed to create snapshot schema: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin snapshot transaction: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO chunks (seq, id, text, source_offset, embedding) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to prepare snapshot insert: %w", err)
	}
	defer stmt.Close()

	for seq, c := range chunks {
		if _, err := stmt.ExecContext(ctx, seq, c.ID, c.Text, c.SourceOffset, encodeVector(c.Embedding)); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to insert chunk %d: %w", seq, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}
	return nil
}

// Open loads the snapshot published under name into memory and returns an
// immutable view of it. ErrIndexNotFound is returned when no snapshot exists,
// which is the expected state before any ingestion.
func (s *SnapshotStore) Open(ctx context.Context, name string) (interfaces.Snapshot, error) {
	path := s.path(name)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: no snapshot named '%s'", apperr.ErrIndexNotFound, name)
		}
		return nil, fmt.Errorf("failed to stat index snapshot: %w", err)
	}

	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("failed to open index snapshot: %w", err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx,
		"SELECT id, text, source_offset, embedding FROM chunks ORDER BY seq")
	if err != nil {
		return nil, fmt.Errorf("failed to read index snapshot: %w", err)
	}
	defer rows.Close()

	var chunks []schema.Chunk
	for rows.Next() {
		var c schema.Chunk
		var blob []byte
		if err := rows.Scan(&c.ID, &c.Text, &c.SourceOffset, &blob); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot row: %w", err)
		}
		if c.Embedding, err = decodeVector(blob); err != nil {
			return nil, fmt.Errorf("failed to decode embedding: %w", err)
		}
		chunks = append(chunks, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate snapshot rows: %w", err)
	}

	return &memorySnapshot{chunks: chunks}, nil
}

// memorySnapshot is a fully loaded, immutable index snapshot.
type memorySnapshot struct {
	chunks []schema.Chunk
}

// Search scores every stored chunk against vec and returns the top k by
// cosine similarity, highest first. The sort is stable, so exactly-equal
// similarities keep insertion order. k larger than the snapshot returns
// everything.
func (m *memorySnapshot) Search(vec []float32, k int) []schema.ScoredChunk {
	if k <= 0 || len(m.chunks) == 0 {
		return nil
	}

	scored := make([]schema.ScoredChunk, len(m.chunks))
	for i, c := range m.chunks {
		scored[i] = schema.ScoredChunk{Chunk: c, Score: cosine(vec, c.Embedding)}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if k > len(scored) {
		k = len(scored)
	}
	return scored[:k]
}

// Len reports the number of stored chunks.
func (m *memorySnapshot) Len() int {
	return len(m.chunks)
}

var (
	_ interfaces.IndexWriter = (*SnapshotStore)(nil)
	_ interfaces.IndexReader = (*SnapshotStore)(nil)
	_ interfaces.Snapshot    = (*memorySnapshot)(nil)
)
