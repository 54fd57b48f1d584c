// Package roomstate stores room presets in SQLite.
//
// A room state is a schema-described object (see Schema) persisted as its
// encoded JSON payload, so adding a field to the schema needs no migration.
// The name and room_name columns are copied out of the payload for ordering
// and indexing.
package roomstate

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nerrad567/homecontrol-core/internal/mapping"
)

// Domain-specific errors.
var (
	// ErrNotFound is returned when no room state has the requested ID.
	ErrNotFound = errors.New("roomstate: not found")

	// ErrNameRequired is returned when creating a room state without a name.
	ErrNameRequired = errors.New("roomstate: name is required")

	// ErrWrongSchema is returned when an object is not a RoomState.
	ErrWrongSchema = errors.New("roomstate: object is not a RoomState")
)

// Repository persists room states.
type Repository interface {
	Create(ctx context.Context, obj *mapping.Object) (*mapping.Object, error)
	Get(ctx context.Context, id string) (*mapping.Object, error)
	List(ctx context.Context) ([]*mapping.Object, error)
	Delete(ctx context.Context, id string) error
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db      *sql.DB
	decoder mapping.Decoder
}

// NewRepository creates a new SQLite-backed room state repository.
func NewRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Create stores a copy of obj under a newly generated ID and returns the
// stored copy. Any id already set on obj is replaced.
func (r *SQLiteRepository) Create(ctx context.Context, obj *mapping.Object) (*mapping.Object, error) {
	if obj == nil || obj.Schema() != Schema {
		return nil, ErrWrongSchema
	}
	name, ok := obj.String("name")
	if !ok || name == "" {
		return nil, ErrNameRequired
	}

	stored := obj.Clone()
	id := uuid.NewString()
	if err := stored.Set("id", id); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(mapping.Encode(stored))
	if err != nil {
		return nil, fmt.Errorf("encoding room state: %w", err)
	}

	roomName, _ := stored.String("room_name")
	now := time.Now().UTC().Format(time.RFC3339)

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO room_states (id, name, room_name, payload, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		id, name, nullString(roomName), string(payload), now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("creating room state: %w", err)
	}
	return stored, nil
}

// Get retrieves a room state by ID.
func (r *SQLiteRepository) Get(ctx context.Context, id string) (*mapping.Object, error) {
	var payload string
	err := r.db.QueryRowContext(ctx,
		"SELECT payload FROM room_states WHERE id = ?", id,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting room state: %w", err)
	}
	return r.decode(payload)
}

// List returns all room states ordered by name.
func (r *SQLiteRepository) List(ctx context.Context) ([]*mapping.Object, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT payload FROM room_states ORDER BY name ASC, created_at ASC")
	if err != nil {
		return nil, fmt.Errorf("listing room states: %w", err)
	}
	defer rows.Close()

	states := []*mapping.Object{}
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scanning room state: %w", err)
		}
		obj, err := r.decode(payload)
		if err != nil {
			return nil, err
		}
		states = append(states, obj)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating room states: %w", err)
	}
	return states, nil
}

// Delete removes a room state by ID.
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM room_states WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting room state: %w", err)
	}

	rows, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) decode(payload string) (*mapping.Object, error) {
	obj, err := r.decoder.DecodeJSON([]byte(payload), Schema)
	if err != nil {
		return nil, fmt.Errorf("decoding stored room state: %w", err)
	}
	return obj, nil
}

// nullString converts an empty string to a SQL NULL.
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
