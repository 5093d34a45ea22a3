package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/mediamind/mediamind/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS files (
	id   INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	kind TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS chunks (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	file_id     INTEGER NOT NULL REFERENCES files(id) ON DELETE CASCADE,
	chunk_index INTEGER NOT NULL,
	text        TEXT NOT NULL,
	char_start  INTEGER NOT NULL,
	char_end    INTEGER NOT NULL,
	page        INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_chunks_file ON chunks(file_id, chunk_index);

CREATE TABLE IF NOT EXISTS embeddings (
	chunk_id INTEGER PRIMARY KEY REFERENCES chunks(id) ON DELETE CASCADE,
	model    TEXT NOT NULL,
	dim      INTEGER NOT NULL,
	vector   BLOB NOT NULL
);

CREATE TABLE IF NOT EXISTS segments (
	id      INTEGER PRIMARY KEY AUTOINCREMENT,
	file_id INTEGER NOT NULL REFERENCES files(id) ON DELETE CASCADE,
	seq       INTEGER NOT NULL,
	start_sec REAL NOT NULL,
	end_sec   REAL NOT NULL,
	text    TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_segments_file ON segments(file_id, seq);
`

// SQLiteStore implements Store on a local SQLite database (pure-Go driver)
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if necessary) the database at path
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// Single writer; modernc/sqlite serializes anyway, this avoids
	// SQLITE_BUSY churn under the ingestion worker pool.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("set pragma: %w", err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateFile inserts a new file record
func (s *SQLiteStore) CreateFile(ctx context.Context, name string, kind model.FileKind) (*model.File, error) {
	res, err := s.db.ExecContext(ctx, "INSERT INTO files (name, kind) VALUES (?, ?)", name, string(kind))
	if err != nil {
		return nil, fmt.Errorf("insert file: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("file id: %w", err)
	}
	return &model.File{ID: id, Name: name, Kind: kind}, nil
}

// GetFile fetches a file by id
func (s *SQLiteStore) GetFile(ctx context.Context, id int64) (*model.File, error) {
	var f model.File
	var kind string
	err := s.db.QueryRowContext(ctx, "SELECT id, name, kind FROM files WHERE id = ?", id).
		Scan(&f.ID, &f.Name, &kind)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select file: %w", err)
	}
	f.Kind = model.FileKind(kind)
	return &f, nil
}

// ListFiles returns all files ordered by id
func (s *SQLiteStore) ListFiles(ctx context.Context) ([]model.File, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name, kind FROM files ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("select files: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var files []model.File
	for rows.Next() {
		var f model.File
		var kind string
		if err := rows.Scan(&f.ID, &f.Name, &kind); err != nil {
			return nil, fmt.Errorf("scan file: %w", err)
		}
		f.Kind = model.FileKind(kind)
		files = append(files, f)
	}
	return files, rows.Err()
}

// DeleteFile removes a file; chunks, embeddings and segments cascade
func (s *SQLiteStore) DeleteFile(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM files WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete file: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// InsertChunks replaces the chunk set of a file and assigns fresh ids
func (s *SQLiteStore) InsertChunks(ctx context.Context, fileID int64, chunks []model.Chunk) ([]model.Chunk, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM chunks WHERE file_id = ?", fileID); err != nil {
		return nil, fmt.Errorf("delete old chunks: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO chunks (file_id, chunk_index, text, char_start, char_end, page) VALUES (?, ?, ?, ?, ?, ?)")
	if err != nil {
		return nil, fmt.Errorf("prepare: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	stored := make([]model.Chunk, 0, len(chunks))
	for _, c := range chunks {
		res, err := stmt.ExecContext(ctx, fileID, c.Index, c.Text, c.CharStart, c.CharEnd, c.Page)
		if err != nil {
			return nil, fmt.Errorf("insert chunk %d: %w", c.Index, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("chunk id: %w", err)
		}
		c.ID = id
		c.FileID = fileID
		stored = append(stored, c)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return stored, nil
}

// GetChunk fetches one chunk by id
func (s *SQLiteStore) GetChunk(ctx context.Context, id int64) (*model.Chunk, error) {
	var c model.Chunk
	err := s.db.QueryRowContext(ctx,
		"SELECT id, file_id, chunk_index, text, char_start, char_end, page FROM chunks WHERE id = ?", id).
		Scan(&c.ID, &c.FileID, &c.Index, &c.Text, &c.CharStart, &c.CharEnd, &c.Page)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select chunk: %w", err)
	}
	return &c, nil
}

// ChunksByFile returns a file's chunks in sequence order
func (s *SQLiteStore) ChunksByFile(ctx context.Context, fileID int64) ([]model.Chunk, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, file_id, chunk_index, text, char_start, char_end, page FROM chunks WHERE file_id = ? ORDER BY chunk_index",
		fileID)
	if err != nil {
		return nil, fmt.Errorf("select chunks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var chunks []model.Chunk
	for rows.Next() {
		var c model.Chunk
		if err := rows.Scan(&c.ID, &c.FileID, &c.Index, &c.Text, &c.CharStart, &c.CharEnd, &c.Page); err != nil {
			return nil, fmt.Errorf("scan chunk: %w", err)
		}
		chunks = append(chunks, c)
	}
	return chunks, rows.Err()
}

// CountChunks counts chunks, optionally scoped to one file
func (s *SQLiteStore) CountChunks(ctx context.Context, fileScope int64) (int, error) {
	query := "SELECT COUNT(*) FROM chunks"
	args := []any{}
	if fileScope > 0 {
		query += " WHERE file_id = ?"
		args = append(args, fileScope)
	}
	var n int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count chunks: %w", err)
	}
	return n, nil
}

// PutEmbedding stores or replaces the vector for a chunk
func (s *SQLiteStore) PutEmbedding(ctx context.Context, chunkID int64, embeddingModel string, vector []float32) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO embeddings (chunk_id, model, dim, vector) VALUES (?, ?, ?, ?)
		 ON CONFLICT(chunk_id) DO UPDATE SET model = excluded.model, dim = excluded.dim, vector = excluded.vector`,
		chunkID, embeddingModel, len(vector), encodeVector(vector))
	if err != nil {
		return fmt.Errorf("put embedding: %w", err)
	}
	return nil
}

// AllEmbeddings returns every stored vector joined with its chunk metadata,
// in the shape the vector index rebuilds from
func (s *SQLiteStore) AllEmbeddings(ctx context.Context) ([]Embedding, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT e.chunk_id, c.file_id, c.chunk_index, e.model, e.vector
		 FROM embeddings e JOIN chunks c ON c.id = e.chunk_id
		 ORDER BY e.chunk_id`)
	if err != nil {
		return nil, fmt.Errorf("select embeddings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Embedding
	for rows.Next() {
		var e Embedding
		var blob []byte
		if err := rows.Scan(&e.ChunkID, &e.FileID, &e.ChunkIndex, &e.Model, &blob); err != nil {
			return nil, fmt.Errorf("scan embedding: %w", err)
		}
		e.Vector = decodeVector(blob)
		out = append(out, e)
	}
	return out, rows.Err()
}

// CountEmbeddings counts stored vectors, optionally scoped to one file
func (s *SQLiteStore) CountEmbeddings(ctx context.Context, fileScope int64) (int, error) {
	query := "SELECT COUNT(*) FROM embeddings e JOIN chunks c ON c.id = e.chunk_id"
	args := []any{}
	if fileScope > 0 {
		query += " WHERE c.file_id = ?"
		args = append(args, fileScope)
	}
	var n int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count embeddings: %w", err)
	}
	return n, nil
}

// ReplaceSegments replaces a file's transcript segments
func (s *SQLiteStore) ReplaceSegments(ctx context.Context, fileID int64, segments []model.TranscriptSegment) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM segments WHERE file_id = ?", fileID); err != nil {
		return fmt.Errorf("delete old segments: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO segments (file_id, seq, start_sec, end_sec, text) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, seg := range segments {
		if _, err := stmt.ExecContext(ctx, fileID, i, seg.Start, seg.End, seg.Text); err != nil {
			return fmt.Errorf("insert segment %d: %w", i, err)
		}
	}
	return tx.Commit()
}

// SegmentsByFile returns a file's transcript in time order
func (s *SQLiteStore) SegmentsByFile(ctx context.Context, fileID int64) ([]model.TranscriptSegment, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT start_sec, end_sec, text FROM segments WHERE file_id = ? ORDER BY seq", fileID)
	if err != nil {
		return nil, fmt.Errorf("select segments: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var segs []model.TranscriptSegment
	for rows.Next() {
		var s model.TranscriptSegment
		if err := rows.Scan(&s.Start, &s.End, &s.Text); err != nil {
			return nil, fmt.Errorf("scan segment: %w", err)
		}
		segs = append(segs, s)
	}
	return segs, rows.Err()
}
