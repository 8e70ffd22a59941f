package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/rekordsync/internal/models"
	"github.com/desertthunder/rekordsync/internal/shared"
)

// MappingRepository implements models.Repository[*models.PersistedMapping].
//
// One row per source track: source_id is unique, so re-matching a track replaces its
// previous mapping instead of accumulating history.
type MappingRepository struct {
	db *sql.DB
}

// NewMappingRepository creates a new MappingRepository with the given database connection
func NewMappingRepository(db *sql.DB) *MappingRepository {
	return &MappingRepository{db: db}
}

// Create inserts a new [models.PersistedMapping] with generated ID and sequence
func (r *MappingRepository) Create(mapping *models.PersistedMapping) error {
	sequence, err := NextSequence(r.db, "mappings")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	mapping.SetID(id)

	if err := mapping.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO mappings (id, sequence, source_id, target_id, algorithm, confidence, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		id,
		sequence,
		mapping.SourceID(),
		mapping.TargetID(),
		mapping.Algorithm(),
		mapping.Confidence(),
		mapping.CreatedAt(),
		mapping.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert mapping: %w", err)
	}

	return nil
}

// Get retrieves a mapping by ID
func (r *MappingRepository) Get(id string) (*models.PersistedMapping, error) {
	query := `
		SELECT id, sequence, source_id, target_id, algorithm, confidence, created_at, updated_at
		FROM mappings
		WHERE id = ?
	`

	return r.scanOne(r.db.QueryRow(query, id))
}

// GetBySourceID retrieves the mapping for a source-library track id
func (r *MappingRepository) GetBySourceID(sourceID string) (*models.PersistedMapping, error) {
	query := `
		SELECT id, sequence, source_id, target_id, algorithm, confidence, created_at, updated_at
		FROM mappings
		WHERE source_id = ?
	`

	return r.scanOne(r.db.QueryRow(query, sourceID))
}

// Update modifies an existing mapping
func (r *MappingRepository) Update(mapping *models.PersistedMapping) error {
	if err := mapping.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	mapping.SetUpdatedAt(now)

	query := `
		UPDATE mappings
		SET target_id = ?, algorithm = ?, confidence = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.Exec(query,
		mapping.TargetID(),
		mapping.Algorithm(),
		mapping.Confidence(),
		now,
		mapping.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update mapping: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("mapping not found: %s", mapping.ID())
	}

	return nil
}

// Delete removes a mapping by ID
func (r *MappingRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM mappings WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete mapping: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("mapping not found: %s", id)
	}

	return nil
}

// List retrieves all mappings matching the given criteria
func (r *MappingRepository) List(criteria map[string]any) ([]*models.PersistedMapping, error) {
	query := `
		SELECT id, sequence, source_id, target_id, algorithm, confidence, created_at, updated_at
		FROM mappings
		WHERE 1=1
	`

	args := []any{}

	if algorithm, ok := criteria["algorithm"].(string); ok && algorithm != "" {
		query += " AND algorithm = ?"
		args = append(args, algorithm)
	}

	if matched, ok := criteria["matched"].(bool); ok {
		if matched {
			query += " AND target_id != ''"
		} else {
			query += " AND target_id = ''"
		}
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query mappings: %w", err)
	}
	defer rows.Close()

	var mappings []*models.PersistedMapping
	for rows.Next() {
		mapping, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		mappings = append(mappings, mapping)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return mappings, nil
}

// Count returns the total number of cached mappings
func (r *MappingRepository) Count() (int, error) {
	var count int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM mappings`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count mappings: %w", err)
	}
	return count, nil
}

// ClearAll removes every cached mapping and returns how many were removed
func (r *MappingRepository) ClearAll() (int, error) {
	result, err := r.db.Exec(`DELETE FROM mappings`)
	if err != nil {
		return 0, fmt.Errorf("failed to clear mappings: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return int(rows), nil
}

// ClearByAlgorithm removes mappings produced by one algorithm version, leaving the rest
// (in particular manual selections) untouched
func (r *MappingRepository) ClearByAlgorithm(algorithm string) (int, error) {
	result, err := r.db.Exec(`DELETE FROM mappings WHERE algorithm = ?`, algorithm)
	if err != nil {
		return 0, fmt.Errorf("failed to clear mappings for algorithm %s: %w", algorithm, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return int(rows), nil
}

// scanOne scans a single [sql.Row] into a [models.PersistedMapping]
func (r *MappingRepository) scanOne(row *sql.Row) (*models.PersistedMapping, error) {
	var (
		id         string
		sequence   int
		sourceID   string
		targetID   string
		algorithm  string
		confidence float64
		createdAt  time.Time
		updatedAt  time.Time
	)

	err := row.Scan(&id, &sequence, &sourceID, &targetID, &algorithm, &confidence, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, shared.ErrMappingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan mapping: %w", err)
	}

	mapping := models.NewPersistedMapping(sequence, sourceID, targetID, algorithm, confidence)
	mapping.SetID(id)
	mapping.SetCreatedAt(createdAt)
	mapping.SetUpdatedAt(updatedAt)

	return mapping, nil
}

// scanRow scans a row from [sql.Rows] into a [models.PersistedMapping]
func (r *MappingRepository) scanRow(rows *sql.Rows) (*models.PersistedMapping, error) {
	var (
		id         string
		sequence   int
		sourceID   string
		targetID   string
		algorithm  string
		confidence float64
		createdAt  time.Time
		updatedAt  time.Time
	)

	err := rows.Scan(&id, &sequence, &sourceID, &targetID, &algorithm, &confidence, &createdAt, &updatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to scan mapping: %w", err)
	}

	mapping := models.NewPersistedMapping(sequence, sourceID, targetID, algorithm, confidence)
	mapping.SetID(id)
	mapping.SetCreatedAt(createdAt)
	mapping.SetUpdatedAt(updatedAt)

	return mapping, nil
}
