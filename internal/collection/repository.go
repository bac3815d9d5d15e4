package collection

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	apperrors "github.com/avdeevsm/tfidf-analyzer/pkg/errors"
	"github.com/avdeevsm/tfidf-analyzer/pkg/postgres"
)

// Repository persists collections and their document membership.
type Repository struct {
	db *postgres.Client
}

// NewRepository creates a PostgreSQL-backed collection repository.
func NewRepository(db *postgres.Client) *Repository {
	return &Repository{db: db}
}

// Create inserts a collection owned by ownerID.
func (r *Repository) Create(ctx context.Context, c *Collection) error {
	err := r.db.DB.QueryRowContext(ctx,
		`INSERT INTO collections (id, owner_id, name) VALUES ($1, $2, $3) RETURNING created_at`,
		c.ID, c.OwnerID, c.Name,
	).Scan(&c.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting collection: %w", err)
	}
	return nil
}

// Get returns a collection with its document count. Ownership is enforced
// in the query.
func (r *Repository) Get(ctx context.Context, id, ownerID string) (*Collection, error) {
	var c Collection
	err := r.db.DB.QueryRowContext(ctx,
		`SELECT c.id, c.owner_id, c.name, c.created_at,
		        (SELECT COUNT(*) FROM collection_documents cd WHERE cd.collection_id = c.id)
		 FROM collections c
		 WHERE c.id = $1 AND c.owner_id = $2`,
		id, ownerID,
	).Scan(&c.ID, &c.OwnerID, &c.Name, &c.CreatedAt, &c.DocumentCount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrCollectionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying collection: %w", err)
	}
	return &c, nil
}

// List returns the owner's collections with document counts.
func (r *Repository) List(ctx context.Context, ownerID string, limit, offset int) ([]Collection, error) {
	rows, err := r.db.DB.QueryContext(ctx,
		`SELECT c.id, c.owner_id, c.name, c.created_at,
		        (SELECT COUNT(*) FROM collection_documents cd WHERE cd.collection_id = c.id)
		 FROM collections c
		 WHERE c.owner_id = $1
		 ORDER BY c.created_at DESC
		 LIMIT $2 OFFSET $3`,
		ownerID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("listing collections: %w", err)
	}
	defer rows.Close()

	var collections []Collection
	for rows.Next() {
		var c Collection
		if err := rows.Scan(&c.ID, &c.OwnerID, &c.Name, &c.CreatedAt, &c.DocumentCount); err != nil {
			return nil, fmt.Errorf("scanning collection row: %w", err)
		}
		collections = append(collections, c)
	}
	return collections, rows.Err()
}

// Delete removes a collection and its membership rows. Documents are left
// untouched.
func (r *Repository) Delete(ctx context.Context, id, ownerID string) error {
	return r.db.InTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM collection_documents WHERE collection_id = $1`, id,
		); err != nil {
			return fmt.Errorf("deleting collection membership: %w", err)
		}
		result, err := tx.ExecContext(ctx,
			`DELETE FROM collections WHERE id = $1 AND owner_id = $2`, id, ownerID,
		)
		if err != nil {
			return fmt.Errorf("deleting collection: %w", err)
		}
		rows, _ := result.RowsAffected()
		if rows == 0 {
			return apperrors.ErrCollectionNotFound
		}
		return nil
	})
}

// AddDocument links a document into a collection. Adding an already-linked
// document is a no-op.
func (r *Repository) AddDocument(ctx context.Context, collectionID, documentID, ownerID string) error {
	return r.db.InTx(ctx, func(tx *sql.Tx) error {
		var exists bool
		err := tx.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM collections WHERE id = $1 AND owner_id = $2)`,
			collectionID, ownerID,
		).Scan(&exists)
		if err != nil {
			return fmt.Errorf("checking collection: %w", err)
		}
		if !exists {
			return apperrors.ErrCollectionNotFound
		}

		err = tx.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM documents WHERE id = $1 AND owner_id = $2)`,
			documentID, ownerID,
		).Scan(&exists)
		if err != nil {
			return fmt.Errorf("checking document: %w", err)
		}
		if !exists {
			return apperrors.ErrDocumentNotFound
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO collection_documents (collection_id, document_id)
			 VALUES ($1, $2)
			 ON CONFLICT (collection_id, document_id) DO NOTHING`,
			collectionID, documentID,
		)
		if err != nil {
			return fmt.Errorf("linking document: %w", err)
		}
		return nil
	})
}

// RemoveDocument unlinks a document from a collection.
func (r *Repository) RemoveDocument(ctx context.Context, collectionID, documentID, ownerID string) error {
	result, err := r.db.DB.ExecContext(ctx,
		`DELETE FROM collection_documents cd
		 USING collections c
		 WHERE cd.collection_id = c.id
		   AND cd.collection_id = $1 AND cd.document_id = $2 AND c.owner_id = $3`,
		collectionID, documentID, ownerID,
	)
	if err != nil {
		return fmt.Errorf("unlinking document: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return apperrors.ErrDocumentNotFound
	}
	return nil
}

// DocumentContents returns the contents of every document in a collection,
// in insertion order.
func (r *Repository) DocumentContents(ctx context.Context, collectionID, ownerID string) ([]string, error) {
	var exists bool
	err := r.db.DB.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM collections WHERE id = $1 AND owner_id = $2)`,
		collectionID, ownerID,
	).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("checking collection: %w", err)
	}
	if !exists {
		return nil, apperrors.ErrCollectionNotFound
	}

	rows, err := r.db.DB.QueryContext(ctx,
		`SELECT d.content
		 FROM collection_documents cd
		 JOIN documents d ON d.id = cd.document_id
		 WHERE cd.collection_id = $1
		 ORDER BY cd.added_at, d.id`,
		collectionID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying collection documents: %w", err)
	}
	defer rows.Close()

	var contents []string
	for rows.Next() {
		var content string
		if err := rows.Scan(&content); err != nil {
			return nil, fmt.Errorf("scanning document content: %w", err)
		}
		contents = append(contents, content)
	}
	return contents, rows.Err()
}
