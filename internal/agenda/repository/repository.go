package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"evntly_backend/platform/apperr"
)

const eventNotFoundMessage = "event not found"

const eventColumns = `id, owner_id, name, starts_at, price::float8, description, location, latitude, longitude, created_at`

// Repo implements the Repository interface with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new events repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// Create inserts a new event.
func (r *Repo) Create(ctx context.Context, params CreateParams) (Event, error) {
	query := `
		INSERT INTO events (owner_id, name, starts_at, price, description, location, latitude, longitude)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + eventColumns

	event, err := scanEvent(r.pool.QueryRow(ctx, query,
		params.OwnerID, params.Name, params.StartsAt, params.Price,
		params.Description, params.Location, params.Latitude, params.Longitude,
	))
	if err != nil {
		return Event{}, fmt.Errorf("create event: %w", err)
	}
	return event, nil
}

// GetByID retrieves an event by its ID.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`

	event, err := scanEvent(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Event{}, apperr.NotFound(eventNotFoundMessage)
		}
		return Event{}, fmt.Errorf("get event by id: %w", err)
	}
	return event, nil
}

// ListByOwner returns the owner's events, soonest first.
func (r *Repo) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE owner_id = $1
		ORDER BY starts_at ASC, created_at ASC`

	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// ListMissingCoordinates returns the oldest events saved without coordinates.
func (r *Repo) ListMissingCoordinates(ctx context.Context, limit int) ([]Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE latitude IS NULL OR longitude IS NULL
		ORDER BY created_at ASC
		LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list events missing coordinates: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// Delete removes an event owned by ownerID.
func (r *Repo) Delete(ctx context.Context, id, ownerID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM events WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(eventNotFoundMessage)
	}
	return nil
}

// SetCoordinates stores geocoded coordinates.
func (r *Repo) SetCoordinates(ctx context.Context, id uuid.UUID, latitude, longitude float64) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE events
		SET latitude = $2, longitude = $3
		WHERE id = $1`, id, latitude, longitude)
	if err != nil {
		return fmt.Errorf("set event coordinates: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(eventNotFoundMessage)
	}
	return nil
}

func scanEvent(row pgx.Row) (Event, error) {
	var e Event
	err := row.Scan(
		&e.ID, &e.OwnerID, &e.Name, &e.StartsAt, &e.Price, &e.Description,
		&e.Location, &e.Latitude, &e.Longitude, &e.CreatedAt,
	)
	return e, err
}

func scanEvents(rows pgx.Rows) ([]Event, error) {
	events := make([]Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}
