package vectorstore

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/marcus/story-validator/internal/types"
)

// PostgresStore implements Store over a Postgres table with a pgvector
// embedding column.
//
// Expected schema:
//
//	CREATE TABLE cr_chunks (
//	    chunk_id    TEXT PRIMARY KEY,
//	    doc_id      TEXT NOT NULL,
//	    doc_version INT NOT NULL,
//	    section_id  TEXT NOT NULL,
//	    project_id  TEXT,
//	    source_type TEXT NOT NULL,
//	    content     TEXT NOT NULL,
//	    checksum    TEXT NOT NULL,
//	    links       TEXT[],
//	    embedding   vector NOT NULL
//	);
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore wraps an existing connection pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Connect establishes a connection pool and wraps it in a store.
func Connect(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to vector store: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping vector store: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

// Close closes the connection pool.
func (s *PostgresStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Search returns up to topK chunks ranked by cosine similarity. The
// allowed-doc filter is applied in the query itself so out-of-selection
// chunks never leave the database.
func (s *PostgresStore) Search(ctx context.Context, vector []float32, topK int, filter Filter) ([]types.CRChunk, error) {
	if len(filter.AllowedDocIDs) == 0 {
		return nil, nil
	}

	query := `SELECT chunk_id, doc_id, doc_version, section_id, COALESCE(project_id, ''), source_type,
	                 content, checksum, COALESCE(links, '{}'),
	                 1 - (embedding <=> $1::vector) AS relevance
	          FROM cr_chunks
	          WHERE doc_id = ANY($2)`
	args := []any{VectorLiteral(vector), filter.AllowedDocIDs}
	if filter.ProjectID != "" {
		query += ` AND project_id = $4`
		args = append(args, topK, filter.ProjectID)
	} else {
		args = append(args, topK)
	}
	query += ` ORDER BY embedding <=> $1::vector, doc_id, section_id LIMIT $3`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}
	defer rows.Close()

	var chunks []types.CRChunk
	for rows.Next() {
		var ch types.CRChunk
		if err := rows.Scan(&ch.ID, &ch.DocID, &ch.DocVersion, &ch.SectionID, &ch.ProjectID,
			&ch.Source, &ch.Content, &ch.Checksum, &ch.Links, &ch.Relevance); err != nil {
			return nil, fmt.Errorf("failed to scan chunk: %w", err)
		}
		chunks = append(chunks, ch)
	}
	return chunks, rows.Err()
}

// FetchByDocID returns all chunks of one document ordered by section.
func (s *PostgresStore) FetchByDocID(ctx context.Context, docID string) ([]types.CRChunk, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT chunk_id, doc_id, doc_version, section_id, COALESCE(project_id, ''), source_type,
		        content, checksum, COALESCE(links, '{}')
		 FROM cr_chunks WHERE doc_id = $1 ORDER BY section_id`,
		docID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch document %s: %w", docID, err)
	}
	defer rows.Close()

	var chunks []types.CRChunk
	for rows.Next() {
		var ch types.CRChunk
		if err := rows.Scan(&ch.ID, &ch.DocID, &ch.DocVersion, &ch.SectionID, &ch.ProjectID,
			&ch.Source, &ch.Content, &ch.Checksum, &ch.Links); err != nil {
			return nil, fmt.Errorf("failed to scan chunk: %w", err)
		}
		chunks = append(chunks, ch)
	}
	return chunks, rows.Err()
}

// IndexDocument stores chunks with their vectors for a document.
func (s *PostgresStore) IndexDocument(ctx context.Context, docID string, chunks []types.CRChunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("chunk/vector count mismatch: %d vs %d", len(chunks), len(vectors))
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin index transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for i, ch := range chunks {
		_, err := tx.Exec(ctx,
			`INSERT INTO cr_chunks (chunk_id, doc_id, doc_version, section_id, project_id,
			                        source_type, content, checksum, links, embedding)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10::vector)
			 ON CONFLICT (chunk_id) DO UPDATE SET
			     doc_version = $3, content = $7, checksum = $8, links = $9, embedding = $10::vector`,
			ch.ID, docID, ch.DocVersion, ch.SectionID, ch.ProjectID,
			ch.Source, ch.Content, ch.Checksum, ch.Links, VectorLiteral(vectors[i]),
		)
		if err != nil {
			return fmt.Errorf("failed to index chunk %s: %w", ch.ID, err)
		}
	}
	return tx.Commit(ctx)
}

// UpdateDocument replaces a document's chunks with a new version.
func (s *PostgresStore) UpdateDocument(ctx context.Context, docID string, chunks []types.CRChunk, vectors [][]float32) error {
	if err := s.DeleteByDocID(ctx, docID); err != nil {
		return err
	}
	return s.IndexDocument(ctx, docID, chunks, vectors)
}

// DeleteByDocID removes every chunk of a document.
func (s *PostgresStore) DeleteByDocID(ctx context.Context, docID string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM cr_chunks WHERE doc_id = $1`, docID)
	if err != nil {
		return fmt.Errorf("failed to delete document %s: %w", docID, err)
	}
	return nil
}
