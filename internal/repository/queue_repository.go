package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lapakkirim/backend/pkg/errors"
)

// Queue statuses.
const (
	QueueStatusPending    = "pending"
	QueueStatusInProgress = "in_progress"
	QueueStatusCompleted  = "completed"
	QueueStatusFailed     = "failed"
	QueueStatusCanceled   = "canceled"
)

// Priority values per job type.
const (
	PriorityInvoice  = 0
	PriorityReminder = 1
	PriorityDefault  = 10
)

// PriorityFor maps a job_type to its queue priority.
func PriorityFor(jobType string) int {
	switch jobType {
	case "send_invoice":
		return PriorityInvoice
	case "send_reminder":
		return PriorityReminder
	default:
		return PriorityDefault
	}
}

// JobQueue represents a row in the job_queue table.
type JobQueue struct {
	ID            uuid.UUID
	JobType       string
	JobData       []byte
	JobScheduleID *uuid.UUID
	Priority      int
	Status        string
	CreatedAt     time.Time
}

// QueueRepository handles job_queue database operations (C6).
type QueueRepository struct {
	pool *pgxpool.Pool
}

// NewQueueRepository creates a new QueueRepository.
func NewQueueRepository(pool *pgxpool.Pool) *QueueRepository {
	return &QueueRepository{pool: pool}
}

const queueColumns = `id, job_type, job_data, job_schedule_id, priority, status, created_at`

func scanQueue(row pgx.Row) (*JobQueue, error) {
	var q JobQueue
	err := row.Scan(&q.ID, &q.JobType, &q.JobData, &q.JobScheduleID, &q.Priority, &q.Status, &q.CreatedAt)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrDatabase)
	}
	return &q, nil
}

// Create inserts a new queue row with priority derived from job_type.
func (r *QueueRepository) Create(ctx context.Context, tx pgx.Tx, q *JobQueue) error {
	query := `
		INSERT INTO job_queue (id, job_type, job_data, job_schedule_id, priority, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	if q.Status == "" {
		q.Status = QueueStatusPending
	}
	if q.Priority == 0 && q.JobType != "send_invoice" {
		q.Priority = PriorityFor(q.JobType)
	}
	return tx.QueryRow(ctx, query, q.ID, q.JobType, q.JobData, q.JobScheduleID, q.Priority, q.Status).Scan(&q.CreatedAt)
}

// ClaimTop claims the row with the smallest priority, ties broken by oldest
// created_at, among {pending, failed, in_progress} rows, transitioning it to
// in_progress. FOR UPDATE SKIP LOCKED plus the status predicate lets multiple
// dispatcher instances run without double-claiming a row.
func (r *QueueRepository) ClaimTop(ctx context.Context) (*JobQueue, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrDatabase)
	}
	defer tx.Rollback(ctx)

	selectQuery := `
		SELECT ` + queueColumns + `
		FROM job_queue
		WHERE status IN ('pending', 'failed', 'in_progress')
		ORDER BY priority ASC, created_at ASC
		LIMIT 1
		FOR UPDATE SKIP LOCKED
	`
	row, err := scanQueue(tx.QueryRow(ctx, selectQuery))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	tag, err := tx.Exec(ctx, `UPDATE job_queue SET status = $1 WHERE id = $2 AND status = $3`,
		QueueStatusInProgress, row.ID, row.Status)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrDatabase)
	}
	if tag.RowsAffected() == 0 {
		// Raced with another claimant between SELECT and UPDATE; report NoWork
		// rather than returning a stale row.
		return nil, nil
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, errors.Wrap(err, errors.ErrDatabase)
	}

	row.Status = QueueStatusInProgress
	return row, nil
}

// Transition updates a queue row's status unconditionally.
func (r *QueueRepository) Transition(ctx context.Context, id uuid.UUID, toStatus string) error {
	_, err := r.pool.Exec(ctx, `UPDATE job_queue SET status = $1 WHERE id = $2`, toStatus, id)
	return errors.Wrap(err, errors.ErrDatabase)
}

// OpenCountForSchedule counts non-terminal queue rows tied to a schedule.
func (r *QueueRepository) OpenCountForSchedule(ctx context.Context, scheduleID uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM job_queue WHERE job_schedule_id = $1 AND status IN ('pending', 'in_progress')`,
		scheduleID).Scan(&n)
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrDatabase)
	}
	return n, nil
}

// CancelBySchedule cancels every queue row created under the given schedule,
// including one currently in_progress, regardless of its current status.
func (r *QueueRepository) CancelBySchedule(ctx context.Context, scheduleID uuid.UUID) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE job_queue SET status = $1 WHERE job_schedule_id = $2`,
		QueueStatusCanceled, scheduleID)
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrDatabase)
	}
	return tag.RowsAffected(), nil
}

// WithTx runs fn inside a transaction, committing on success.
func (r *QueueRepository) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return errors.Wrap(err, errors.ErrDatabase)
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return errors.Wrap(err, errors.ErrDatabase)
	}
	return nil
}
