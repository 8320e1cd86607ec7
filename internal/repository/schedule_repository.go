package repository

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lapakkirim/backend/pkg/errors"
)

// Schedule statuses.
const (
	ScheduleStatusScheduled  = "scheduled"
	ScheduleStatusPending    = "pending"
	ScheduleStatusInProgress = "in_progress"
	ScheduleStatusCompleted  = "completed"
	ScheduleStatusFailed     = "failed"
	ScheduleStatusCanceled   = "canceled"
)

// JobSchedule represents a row in the job_schedules table.
type JobSchedule struct {
	ID                   uuid.UUID
	JobType              string
	JobData              []byte // JSON payload
	RunAt                time.Time
	RepeatIntervalSecond *int64
	RepeatCount          *int64
	Remaining            *int64
	Status               string
	RetryCount           *int
	RetryInterval        *int64
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// ScheduleRepository handles job_schedules database operations (C5).
type ScheduleRepository struct {
	pool *pgxpool.Pool
}

// NewScheduleRepository creates a new ScheduleRepository.
func NewScheduleRepository(pool *pgxpool.Pool) *ScheduleRepository {
	return &ScheduleRepository{pool: pool}
}

const scheduleColumns = `id, job_type, job_data, run_at, repeat_interval_seconds, repeat_count, remaining, status, retry_count, retry_interval, created_at, updated_at`

func scanSchedule(row pgx.Row) (*JobSchedule, error) {
	var s JobSchedule
	err := row.Scan(&s.ID, &s.JobType, &s.JobData, &s.RunAt, &s.RepeatIntervalSecond, &s.RepeatCount, &s.Remaining,
		&s.Status, &s.RetryCount, &s.RetryInterval, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, errors.ErrScheduleNotFound
		}
		return nil, errors.Wrap(err, errors.ErrDatabase)
	}
	return &s, nil
}

// dbtx is satisfied by both *pgxpool.Pool and pgx.Tx, so Create can run
// either standalone or inside a caller's transaction.
type dbtx interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Create inserts a new schedule with status="scheduled". db may
// be the pool directly, or a transaction the caller controls.
func (r *ScheduleRepository) Create(ctx context.Context, db dbtx, s *JobSchedule) error {
	query := `
		INSERT INTO job_schedules (id, job_type, job_data, run_at, repeat_interval_seconds, repeat_count, remaining, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.Status == "" {
		s.Status = ScheduleStatusScheduled
	}
	return db.QueryRow(ctx, query, s.ID, s.JobType, s.JobData, s.RunAt, s.RepeatIntervalSecond, s.RepeatCount,
		s.Remaining, s.Status).Scan(&s.CreatedAt, &s.UpdatedAt)
}

// CreateStandalone inserts a schedule directly against the pool, for callers
// (like the Admission API) that don't need a surrounding transaction.
func (r *ScheduleRepository) CreateStandalone(ctx context.Context, s *JobSchedule) error {
	return r.Create(ctx, r.pool, s)
}

// GetByID retrieves a schedule by ID.
func (r *ScheduleRepository) GetByID(ctx context.Context, id uuid.UUID) (*JobSchedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM job_schedules WHERE id = $1`
	return scanSchedule(r.pool.QueryRow(ctx, query, id))
}

// ScanDue returns every schedule with status in {scheduled, pending,
// in_progress} and run_at <= now, ordered by run_at so the promoter
// processes the oldest-due schedules first.
func (r *ScheduleRepository) ScanDue(ctx context.Context, now time.Time) ([]*JobSchedule, error) {
	q, args, err := psql.Select(scheduleColumns).
		From("job_schedules").
		Where(sq.Eq{"status": []string{ScheduleStatusScheduled, ScheduleStatusPending, ScheduleStatusInProgress}}).
		Where(sq.LtOrEq{"run_at": now}).
		OrderBy("run_at ASC").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal)
	}

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrDatabase)
	}
	defer rows.Close()

	var out []*JobSchedule
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Transition performs a conditional status update (fromStatus -> toStatus),
// serializing the scan_due -> pending step if two promoters ever race.
func (r *ScheduleRepository) Transition(ctx context.Context, id uuid.UUID, fromStatus, toStatus string) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE job_schedules SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3`,
		toStatus, id, fromStatus)
	if err != nil {
		return false, errors.Wrap(err, errors.ErrDatabase)
	}
	return tag.RowsAffected() > 0, nil
}

// TransitionAny moves a schedule to toStatus regardless of its current
// status; ScheduleService.Cancel checks for a terminal status before
// calling it.
func (r *ScheduleRepository) TransitionAny(ctx context.Context, id uuid.UUID, toStatus string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE job_schedules SET status = $1, updated_at = NOW() WHERE id = $2`, toStatus, id)
	if err != nil {
		return errors.Wrap(err, errors.ErrDatabase)
	}
	if tag.RowsAffected() == 0 {
		return errors.ErrScheduleNotFound
	}
	return nil
}

// AdvanceRecurrence sets run_at and decrements remaining in one statement,
// the step the dispatcher performs after a successful recurring dispatch.
func (r *ScheduleRepository) AdvanceRecurrence(ctx context.Context, id uuid.UUID, runAt time.Time, remaining int64) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE job_schedules SET run_at = $1, remaining = $2, status = $3, updated_at = NOW() WHERE id = $4`,
		runAt, remaining, ScheduleStatusScheduled, id)
	if err != nil {
		return errors.Wrap(err, errors.ErrDatabase)
	}
	return nil
}

// SetRunAt updates only run_at.
func (r *ScheduleRepository) SetRunAt(ctx context.Context, id uuid.UUID, runAt time.Time) error {
	_, err := r.pool.Exec(ctx, `UPDATE job_schedules SET run_at = $1, updated_at = NOW() WHERE id = $2`, runAt, id)
	return errors.Wrap(err, errors.ErrDatabase)
}

// SetRemaining updates only remaining.
func (r *ScheduleRepository) SetRemaining(ctx context.Context, id uuid.UUID, remaining int64) error {
	_, err := r.pool.Exec(ctx, `UPDATE job_schedules SET remaining = $1, updated_at = NOW() WHERE id = $2`, remaining, id)
	return errors.Wrap(err, errors.ErrDatabase)
}

// SetJobData overwrites job_data, used by the promoter to patch in the
// refreshed invoice date before enqueuing.
func (r *ScheduleRepository) SetJobData(ctx context.Context, id uuid.UUID, jobData []byte) error {
	_, err := r.pool.Exec(ctx, `UPDATE job_schedules SET job_data = $1, updated_at = NOW() WHERE id = $2`, jobData, id)
	return errors.Wrap(err, errors.ErrDatabase)
}

// LookupByJobData finds an active (non-terminal) schedule whose job_data
// references the given invoice, used to enforce the "already scheduled"
// invariant.
func (r *ScheduleRepository) LookupByJobData(ctx context.Context, invoiceID uuid.UUID) (*JobSchedule, error) {
	q, args, err := psql.Select(scheduleColumns).
		From("job_schedules").
		Where(sq.Eq{"status": []string{ScheduleStatusScheduled, ScheduleStatusPending, ScheduleStatusInProgress}}).
		Where(sq.Expr("job_data->>'invoice_id' = ?", invoiceID.String())).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal)
	}
	return scanSchedule(r.pool.QueryRow(ctx, q, args...))
}
