package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nagarik-sewa/backend/internal/models"
	"github.com/nagarik-sewa/backend/internal/store"
)

// Store implements store.VisitStore on postgres. Optimistic concurrency is
// carried by the visits.version column: updates match on (id, version) and
// report store.ErrVersionConflict when no row was touched.
type Store struct {
	Pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &Store{Pool: pool}, nil
}

func (s *Store) Close() {
	s.Pool.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.Pool.Ping(ctx)
}

func (s *Store) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *Store) CreateVisit(ctx context.Context, v models.Visit) error {
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO visits (id, office_id, service_id, user_id, start_time, state, version, created_at, updated_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, 1, $7, $8)
	`, v.ID, v.OfficeID, v.ServiceID, v.UserID, v.StartTime, v.State, v.CreatedAt, v.UpdatedAt)
	return err
}

const visitColumns = `id, office_id, service_id, COALESCE(user_id, ''), start_time, end_time,
	wait_duration_minutes, COALESCE(service_status, ''), state, version, created_at, updated_at`

func scanVisit(row pgx.Row) (models.Visit, error) {
	var v models.Visit
	err := row.Scan(
		&v.ID, &v.OfficeID, &v.ServiceID, &v.UserID, &v.StartTime, &v.EndTime,
		&v.WaitDurationMinutes, &v.ServiceStatus, &v.State, &v.Version, &v.CreatedAt, &v.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Visit{}, store.ErrNotFound
	}
	return v, err
}

func (s *Store) GetVisit(ctx context.Context, id string) (models.Visit, error) {
	row := s.Pool.QueryRow(ctx, `SELECT `+visitColumns+` FROM visits WHERE id = $1`, id)
	return scanVisit(row)
}

func (s *Store) UpdateVisit(ctx context.Context, v models.Visit) (models.Visit, error) {
	var updated models.Visit
	err := s.WithTx(ctx, func(tx pgx.Tx) error {
		var err error
		updated, err = updateVisitTx(ctx, tx, v)
		return err
	})
	if err != nil {
		return models.Visit{}, err
	}
	return updated, nil
}

func updateVisitTx(ctx context.Context, tx pgx.Tx, v models.Visit) (models.Visit, error) {
	tag, err := tx.Exec(ctx, `
		UPDATE visits
		SET end_time = $1, wait_duration_minutes = $2, service_status = NULLIF($3, ''),
			state = $4, version = version + 1, updated_at = $5
		WHERE id = $6 AND version = $7
	`, v.EndTime, v.WaitDurationMinutes, string(v.ServiceStatus), v.State, v.UpdatedAt, v.ID, v.Version)
	if err != nil {
		return models.Visit{}, err
	}
	if tag.RowsAffected() == 0 {
		// Distinguish a missing row from a lost race.
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM visits WHERE id = $1)`, v.ID).Scan(&exists); err != nil {
			return models.Visit{}, err
		}
		if !exists {
			return models.Visit{}, store.ErrNotFound
		}
		return models.Visit{}, store.ErrVersionConflict
	}
	v.Version++
	return v, nil
}

func (s *Store) SaveRating(ctx context.Context, v models.Visit, r models.Rating) (models.Visit, error) {
	var updated models.Visit
	err := s.WithTx(ctx, func(tx pgx.Tx) error {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM ratings WHERE visit_id = $1)`, v.ID).Scan(&exists); err != nil {
			return err
		}
		if exists {
			return store.ErrRatingExists
		}
		var err error
		updated, err = updateVisitTx(ctx, tx, v)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO ratings (visit_id, overall_rating, staff_behavior_rating, office_cleanliness_rating,
				process_efficiency_rating, information_clarity_rating, asked_for_bribe, staff_helpful,
				process_clear, documents_sufficient, would_recommend, wait_reason, suggestions, complaints, created_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,NULLIF($12,''),$13,$14,$15)
		`, r.VisitID, r.OverallRating, r.StaffBehaviorRating, r.CleanlinessRating,
			r.ProcessEfficiencyRating, r.InformationClarityRating, r.AskedForBribe, r.StaffHelpful,
			r.ProcessClear, r.DocumentsSufficient, r.WouldRecommend, r.WaitReason, r.Suggestions, r.Complaints, r.CreatedAt)
		return err
	})
	if err != nil {
		return models.Visit{}, err
	}
	return updated, nil
}

const ratingColumns = `visit_id, overall_rating, staff_behavior_rating, office_cleanliness_rating,
	process_efficiency_rating, information_clarity_rating, asked_for_bribe, staff_helpful,
	process_clear, documents_sufficient, would_recommend, COALESCE(wait_reason, ''),
	COALESCE(suggestions, ''), COALESCE(complaints, ''), created_at`

func scanRating(row pgx.Row) (models.Rating, error) {
	var r models.Rating
	err := row.Scan(
		&r.VisitID, &r.OverallRating, &r.StaffBehaviorRating, &r.CleanlinessRating,
		&r.ProcessEfficiencyRating, &r.InformationClarityRating, &r.AskedForBribe, &r.StaffHelpful,
		&r.ProcessClear, &r.DocumentsSufficient, &r.WouldRecommend, &r.WaitReason,
		&r.Suggestions, &r.Complaints, &r.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Rating{}, store.ErrNotFound
	}
	return r, err
}

func (s *Store) GetRating(ctx context.Context, visitID string) (models.Rating, error) {
	row := s.Pool.QueryRow(ctx, `SELECT `+ratingColumns+` FROM ratings WHERE visit_id = $1`, visitID)
	return scanRating(row)
}

func (s *Store) OfficeRecords(ctx context.Context, officeID string) ([]store.VisitRecord, error) {
	// Repeatable read keeps the visit+rating join consistent against
	// transitions committing mid-scan.
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	rows, err := tx.Query(ctx, `
		SELECT v.id, v.office_id, v.service_id, COALESCE(v.user_id, ''), v.start_time, v.end_time,
			v.wait_duration_minutes, COALESCE(v.service_status, ''), v.state, v.version, v.created_at, v.updated_at,
			r.visit_id, r.overall_rating, r.staff_behavior_rating, r.office_cleanliness_rating,
			r.process_efficiency_rating, r.information_clarity_rating, r.asked_for_bribe, r.staff_helpful,
			r.process_clear, r.documents_sufficient, r.would_recommend, r.wait_reason, r.suggestions, r.complaints, r.created_at
		FROM visits v
		LEFT JOIN ratings r ON r.visit_id = v.id
		WHERE v.office_id = $1
		ORDER BY v.id ASC
	`, officeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []store.VisitRecord
	for rows.Next() {
		var (
			v          models.Visit
			ratingID   *string
			overall    *int
			staff      *int
			clean      *int
			efficiency *int
			clarity    *int
			bribe      *bool
			helpful    *bool
			clear      *bool
			docs       *bool
			recommend  *bool
			waitReason *string
			sugg       *string
			compl      *string
			createdAt  *time.Time
		)
		if err := rows.Scan(
			&v.ID, &v.OfficeID, &v.ServiceID, &v.UserID, &v.StartTime, &v.EndTime,
			&v.WaitDurationMinutes, &v.ServiceStatus, &v.State, &v.Version, &v.CreatedAt, &v.UpdatedAt,
			&ratingID, &overall, &staff, &clean, &efficiency, &clarity,
			&bribe, &helpful, &clear, &docs, &recommend, &waitReason, &sugg, &compl, &createdAt,
		); err != nil {
			return nil, err
		}
		record := store.VisitRecord{Visit: v}
		if ratingID != nil {
			record.Rating = &models.Rating{
				VisitID:                  *ratingID,
				OverallRating:            *overall,
				StaffBehaviorRating:      *staff,
				CleanlinessRating:        *clean,
				ProcessEfficiencyRating:  *efficiency,
				InformationClarityRating: *clarity,
				AskedForBribe:            bribe,
				StaffHelpful:             helpful,
				ProcessClear:             clear,
				DocumentsSufficient:      docs,
				WouldRecommend:           recommend,
				WaitReason:               derefString(waitReason),
				Suggestions:              derefString(sugg),
				Complaints:               derefString(compl),
				CreatedAt:                derefTime(createdAt),
			}
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, tx.Commit(ctx)
}

func (s *Store) ActiveVisits(ctx context.Context) ([]models.Visit, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT `+visitColumns+`
		FROM visits
		WHERE state = $1
		ORDER BY start_time ASC
	`, models.VisitRunning)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var visits []models.Visit
	for rows.Next() {
		var v models.Visit
		if err := rows.Scan(
			&v.ID, &v.OfficeID, &v.ServiceID, &v.UserID, &v.StartTime, &v.EndTime,
			&v.WaitDurationMinutes, &v.ServiceStatus, &v.State, &v.Version, &v.CreatedAt, &v.UpdatedAt,
		); err != nil {
			return nil, err
		}
		visits = append(visits, v)
	}
	return visits, rows.Err()
}

func derefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func derefTime(v *time.Time) time.Time {
	if v == nil {
		return time.Time{}
	}
	return *v
}
