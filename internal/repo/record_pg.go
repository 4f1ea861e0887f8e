package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/wayfarer/internal/domain"
)

// pgTripRecordStore is the Postgres implementation of TripRecordStore.
// trip_data, analysis and preferences are stored as JSONB snapshots.
type pgTripRecordStore struct {
	db db
}

// NewPgTripRecordStore constructs a TripRecordStore backed by the provided db
// connection. In production pass *pgxpool.Pool; in tests pass a pgx.Tx.
func NewPgTripRecordStore(db db) TripRecordStore {
	return &pgTripRecordStore{db: db}
}

const recordColumns = `id, trip_id, user_id, trip_data, analysis, preferences, created_at`

// Append inserts a new record row and returns it as stored.
func (r *pgTripRecordStore) Append(ctx context.Context, rec domain.TripRecord) (domain.TripRecord, error) {
	if rec.TripID == "" || rec.UserID == "" {
		return domain.TripRecord{}, fmt.Errorf("repo.TripRecordStore.Append: trip id and user id are required: %w", domain.ErrValidation)
	}
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	const q = `
		INSERT INTO trip_records (id, trip_id, user_id, trip_data, analysis, preferences, created_at)
		VALUES (@id, @trip_id, @user_id, @trip_data, @analysis, @preferences, @created_at)
		RETURNING ` + recordColumns

	args := pgx.NamedArgs{
		"id":          rec.ID,
		"trip_id":     rec.TripID,
		"user_id":     rec.UserID,
		"trip_data":   rec.TripData,
		"analysis":    rec.Analysis,
		"preferences": rec.Preferences,
		"created_at":  rec.CreatedAt,
	}

	result, err := scanRecord(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.TripRecord{}, fmt.Errorf("repo.TripRecordStore.Append: %w", err)
	}
	return result, nil
}

// LatestForTrip returns the newest record for tripID.
func (r *pgTripRecordStore) LatestForTrip(ctx context.Context, tripID string) (domain.TripRecord, error) {
	const q = `
		SELECT ` + recordColumns + `
		FROM trip_records
		WHERE trip_id = @trip_id
		ORDER BY created_at DESC, seq DESC
		LIMIT 1`

	result, err := scanRecord(r.db.QueryRow(ctx, q, pgx.NamedArgs{"trip_id": tripID}))
	if err != nil {
		return domain.TripRecord{}, fmt.Errorf("repo.TripRecordStore.LatestForTrip: %w", err)
	}
	return result, nil
}

// ListByUser returns one page of a user's records, newest first.
func (r *pgTripRecordStore) ListByUser(ctx context.Context, userID string, p domain.PaginationParams) ([]domain.TripRecord, int64, error) {
	const countQ = `SELECT count(*) FROM trip_records WHERE user_id = @user_id`

	var total int64
	if err := r.db.QueryRow(ctx, countQ, pgx.NamedArgs{"user_id": userID}).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.TripRecordStore.ListByUser: count: %w", err)
	}

	const q = `
		SELECT ` + recordColumns + `
		FROM trip_records
		WHERE user_id = @user_id
		ORDER BY created_at DESC, seq DESC
		LIMIT @limit OFFSET @offset`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{
		"user_id": userID,
		"limit":   p.Limit,
		"offset":  p.Offset(),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("repo.TripRecordStore.ListByUser: %w", err)
	}
	defer rows.Close()

	records := []domain.TripRecord{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("repo.TripRecordStore.ListByUser: scan: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("repo.TripRecordStore.ListByUser: rows: %w", err)
	}
	return records, total, nil
}

// scanRecord maps a single database row into a domain.TripRecord.
// The JSONB columns decode straight into their domain structs.
func scanRecord(s scanner) (domain.TripRecord, error) {
	var (
		rec domain.TripRecord
		id  pgtype.UUID
	)

	err := s.Scan(&id, &rec.TripID, &rec.UserID, &rec.TripData, &rec.Analysis, &rec.Preferences, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.TripRecord{}, domain.ErrNotFound
		}
		return domain.TripRecord{}, err
	}

	rec.ID = uuid.UUID(id.Bytes)
	rec.CreatedAt = rec.CreatedAt.UTC()
	return rec, nil
}
