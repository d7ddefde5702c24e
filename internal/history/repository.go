package history

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wassimk/elgato-light/internal/infrastructure/database"
	"github.com/wassimk/elgato-light/migrations"
)

// List limits.
const (
	DefaultLimit = 20
	MaxLimit     = 500
)

// timeLayout is fixed-width so created_at sorts correctly as text.
const timeLayout = "2006-01-02T15:04:05.000000Z"

// Record is the outcome of one operation on one light.
type Record struct {
	ID           string
	InvocationID string
	Operation    string
	Argument     string
	TargetName   string
	Address      string
	Success      bool
	Error        string

	// State after the operation; zero when Success is false.
	On                bool
	Brightness        int
	TemperatureKelvin int

	CreatedAt time.Time
}

// Filter controls which records List returns.
type Filter struct {
	TargetName string // optional: exact light name
	Limit      int    // default 20, max 500
}

// Repository defines the history operations the CLI needs.
type Repository interface {
	Create(ctx context.Context, records ...*Record) error
	List(ctx context.Context, filter Filter) ([]Record, error)
}

// SQLiteRepository reads and writes command history in SQLite.
type SQLiteRepository struct {
	db    *sql.DB
	owned *database.DB
}

// Open opens the history database at path, applies pending migrations and
// returns a repository that owns the connection.
func Open(ctx context.Context, path string) (*SQLiteRepository, error) {
	db, err := database.Open(ctx, database.Config{
		Path:        path,
		WALMode:     true,
		BusyTimeout: 5,
	})
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}

	if err := db.Migrate(ctx, migrations.FS); err != nil {
		db.Close() //nolint:errcheck // Best effort cleanup on error path
		return nil, fmt.Errorf("migrating history database: %w", err)
	}

	if err := db.HealthCheck(ctx); err != nil {
		db.Close() //nolint:errcheck // Best effort cleanup on error path
		return nil, fmt.Errorf("history database %s: %w", db.Path(), err)
	}

	return &SQLiteRepository{db: db.DB, owned: db}, nil
}

// Close closes the database when the repository opened it.
func (r *SQLiteRepository) Close() error {
	if r == nil || r.owned == nil {
		return nil
	}
	return r.owned.Close()
}

// Create inserts records in one transaction. IDs and CreatedAt are generated
// when empty.
func (r *SQLiteRepository) Create(ctx context.Context, records ...*Record) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting history transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // No-op after commit

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO command_history (id, invocation, operation, argument, target_name, target_addr,
		 success, error, power_on, brightness, temperature, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing history insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		if rec.ID == "" {
			rec.ID = uuid.NewString()
		}
		if rec.CreatedAt.IsZero() {
			rec.CreatedAt = time.Now()
		}

		var powerOn, brightness, temperature any
		if rec.Success {
			powerOn, brightness, temperature = boolToInt(rec.On), rec.Brightness, rec.TemperatureKelvin
		}

		_, err := stmt.ExecContext(ctx,
			rec.ID, rec.InvocationID, rec.Operation, nullableString(rec.Argument),
			rec.TargetName, rec.Address,
			boolToInt(rec.Success), nullableString(rec.Error),
			powerOn, brightness, temperature,
			rec.CreatedAt.UTC().Format(timeLayout),
		)
		if err != nil {
			return fmt.Errorf("inserting history record for %s: %w", rec.TargetName, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing history records: %w", err)
	}
	return nil
}

// List returns records matching the filter, most recent first.
func (r *SQLiteRepository) List(ctx context.Context, filter Filter) ([]Record, error) {
	if filter.Limit <= 0 {
		filter.Limit = DefaultLimit
	}
	if filter.Limit > MaxLimit {
		filter.Limit = MaxLimit
	}

	var conditions []string
	var args []any
	if filter.TargetName != "" {
		conditions = append(conditions, "target_name = ?")
		args = append(args, filter.TargetName)
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf( //nolint:gosec // WHERE built from parameterised conditions, not user input
		`SELECT id, invocation, operation, argument, target_name, target_addr, success, error,
		 power_on, brightness, temperature, created_at
		 FROM command_history %s ORDER BY created_at DESC, rowid DESC LIMIT ?`,
		where,
	)
	args = append(args, filter.Limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		var rec Record
		var argument, errText sql.NullString
		var powerOn, brightness, temperature sql.NullInt64
		var success int
		var createdAt string

		if err := rows.Scan(&rec.ID, &rec.InvocationID, &rec.Operation, &argument,
			&rec.TargetName, &rec.Address, &success, &errText,
			&powerOn, &brightness, &temperature, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning history record: %w", err)
		}

		rec.Argument = argument.String
		rec.Error = errText.String
		rec.Success = success != 0
		rec.On = powerOn.Valid && powerOn.Int64 != 0
		rec.Brightness = int(brightness.Int64)
		rec.TemperatureKelvin = int(temperature.Int64)

		t, err := time.Parse(timeLayout, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing history timestamp %q: %w", createdAt, err)
		}
		rec.CreatedAt = t

		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating history: %w", err)
	}
	return records, nil
}

// nullableString returns nil for empty strings so TEXT columns store NULL.
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
