package sop

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// PostgresSOPStore implements SOPStore backed by PostgreSQL. The rule list
// is stored as a JSONB column; the order-preserving JSON codec on Config
// keeps action key order intact through the round trip.
type PostgresSOPStore struct {
	db *sql.DB
}

// NewPostgresSOPStore creates a new PostgreSQL-backed SOPStore.
func NewPostgresSOPStore(db *sql.DB) *PostgresSOPStore {
	return &PostgresSOPStore{db: db}
}

// Add inserts a new SOP into the database.
func (s *PostgresSOPStore) Add(doc *SOP) error {
	var exists bool
	err := s.db.QueryRow(`
		SELECT EXISTS(SELECT 1 FROM sops WHERE id = $1)
	`, doc.ID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check sop existence: %w", err)
	}
	if exists {
		return fmt.Errorf("sop with ID %s already exists", doc.ID)
	}

	rulesJSON, err := json.Marshal(doc.Rules)
	if err != nil {
		return fmt.Errorf("failed to encode rules: %w", err)
	}

	now := time.Now()
	doc.CreatedAt = now
	doc.UpdatedAt = now

	_, err = s.db.Exec(`
		INSERT INTO sops (id, name, version, rules, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, doc.ID, doc.Name, doc.Version, rulesJSON, doc.CreatedAt, doc.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to insert sop: %w", err)
	}

	return nil
}

// Get retrieves a SOP by ID.
func (s *PostgresSOPStore) Get(id string) (*SOP, error) {
	var doc SOP
	var rulesJSON []byte
	err := s.db.QueryRow(`
		SELECT id, name, version, rules, created_at, updated_at
		FROM sops
		WHERE id = $1
	`, id).Scan(
		&doc.ID,
		&doc.Name,
		&doc.Version,
		&rulesJSON,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("sop %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get sop: %w", err)
	}

	if err := json.Unmarshal(rulesJSON, &doc.Rules); err != nil {
		return nil, fmt.Errorf("failed to decode rules: %w", err)
	}

	return &doc, nil
}

// List returns all SOPs ordered by creation time, oldest first.
func (s *PostgresSOPStore) List() ([]*SOP, error) {
	rows, err := s.db.Query(`
		SELECT id, name, version, rules, created_at, updated_at
		FROM sops
		ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sops: %w", err)
	}
	defer rows.Close()

	var docs []*SOP
	for rows.Next() {
		var doc SOP
		var rulesJSON []byte
		if err := rows.Scan(&doc.ID, &doc.Name, &doc.Version, &rulesJSON,
			&doc.CreatedAt, &doc.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan sop: %w", err)
		}
		if err := json.Unmarshal(rulesJSON, &doc.Rules); err != nil {
			return nil, fmt.Errorf("failed to decode rules for sop %s: %w", doc.ID, err)
		}
		docs = append(docs, &doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sops: %w", err)
	}

	return docs, nil
}

// Update modifies an existing SOP.
func (s *PostgresSOPStore) Update(doc *SOP) error {
	rulesJSON, err := json.Marshal(doc.Rules)
	if err != nil {
		return fmt.Errorf("failed to encode rules: %w", err)
	}

	doc.UpdatedAt = time.Now()

	result, err := s.db.Exec(`
		UPDATE sops
		SET name = $1, version = $2, rules = $3, updated_at = $4
		WHERE id = $5
	`, doc.Name, doc.Version, rulesJSON, doc.UpdatedAt, doc.ID)

	if err != nil {
		return fmt.Errorf("failed to update sop: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("sop %s not found", doc.ID)
	}

	return nil
}

// Delete removes a SOP from the database.
func (s *PostgresSOPStore) Delete(id string) error {
	result, err := s.db.Exec(`
		DELETE FROM sops
		WHERE id = $1
	`, id)

	if err != nil {
		return fmt.Errorf("failed to delete sop: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("sop %s not found", id)
	}

	return nil
}
