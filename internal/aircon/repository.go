package aircon

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nerrad567/homecontrol-core/internal/mapping"
)

// Domain-specific errors.
var (
	// ErrNotFound is returned when no saved state has the requested ID.
	ErrNotFound = errors.New("aircon: state not found")

	// ErrNameRequired is returned when saving a state without a name.
	ErrNameRequired = errors.New("aircon: name is required")

	// ErrInvalidState is returned when settings are missing or out of range.
	ErrInvalidState = errors.New("aircon: invalid state")

	// ErrWrongSchema is returned when an object is not an ACSavedState.
	ErrWrongSchema = errors.New("aircon: object is not an ACSavedState")
)

// Repository persists saved air-conditioning states.
type Repository interface {
	Create(ctx context.Context, obj *mapping.Object) (*mapping.Object, error)
	Get(ctx context.Context, id string) (*mapping.Object, error)
	List(ctx context.Context) ([]*mapping.Object, error)
	Delete(ctx context.Context, id string) error
}

// SQLiteRepository implements Repository using SQLite. Each setting has its
// own column.
type SQLiteRepository struct {
	db *sql.DB
}

// NewRepository creates a new SQLite-backed saved state repository.
func NewRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const selectColumns = `id, name, power, prompt_tone, target, mode, fan, swing, eco, turbo, fahrenheit`

// Create validates obj, stores it under a newly generated ID and returns the
// stored form. Any id already set on obj is replaced.
func (r *SQLiteRepository) Create(ctx context.Context, obj *mapping.Object) (*mapping.Object, error) {
	if obj == nil || obj.Schema() != SavedState {
		return nil, ErrWrongSchema
	}
	name, ok := obj.String("name")
	if !ok || name == "" {
		return nil, ErrNameRequired
	}
	stateObj, _ := obj.Object("state")
	s, err := SettingsFrom(stateObj)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	now := time.Now().UTC().Format(time.RFC3339)
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO aircon_states (`+selectColumns+`, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, name, s.Power, s.PromptTone, s.Target, int64(s.Mode), int64(s.Fan), int64(s.Swing),
		s.Eco, s.Turbo, s.Fahrenheit, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("creating aircon state: %w", err)
	}
	return savedObject(id, name, s), nil
}

// Get retrieves a saved state by ID.
func (r *SQLiteRepository) Get(ctx context.Context, id string) (*mapping.Object, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+selectColumns+" FROM aircon_states WHERE id = ?", id)
	obj, err := scanSaved(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting aircon state: %w", err)
	}
	return obj, nil
}

// Settings returns the typed settings of a saved state.
func (r *SQLiteRepository) Settings(ctx context.Context, id string) (Settings, error) {
	obj, err := r.Get(ctx, id)
	if err != nil {
		return Settings{}, err
	}
	stateObj, _ := obj.Object("state")
	return SettingsFrom(stateObj)
}

// List returns all saved states ordered by name.
func (r *SQLiteRepository) List(ctx context.Context) ([]*mapping.Object, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+selectColumns+" FROM aircon_states ORDER BY name ASC, created_at ASC")
	if err != nil {
		return nil, fmt.Errorf("listing aircon states: %w", err)
	}
	defer rows.Close()

	states := []*mapping.Object{}
	for rows.Next() {
		obj, err := scanSaved(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning aircon state: %w", err)
		}
		states = append(states, obj)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating aircon states: %w", err)
	}
	return states, nil
}

// Delete removes a saved state by ID.
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM aircon_states WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting aircon state: %w", err)
	}

	rows, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSaved(row scanner) (*mapping.Object, error) {
	var (
		id, name         string
		s                Settings
		mode, fan, swing int64
	)
	err := row.Scan(&id, &name, &s.Power, &s.PromptTone, &s.Target, &mode, &fan, &swing,
		&s.Eco, &s.Turbo, &s.Fahrenheit)
	if err != nil {
		return nil, err
	}
	s.Mode, s.Fan, s.Swing = Mode(mode), FanSpeed(fan), SwingMode(swing)
	return savedObject(id, name, s), nil
}

func savedObject(id, name string, s Settings) *mapping.Object {
	obj := mapping.New(SavedState)
	obj.MustSet("id", id)
	obj.MustSet("name", name)
	obj.MustSet("state", s.Object())
	return obj
}
