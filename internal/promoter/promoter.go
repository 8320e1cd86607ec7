// Package promoter implements the Enqueuer (C7): a ticking worker that scans
// due schedules, prepares send_invoice jobs (refreshing the payment link),
// and inserts queue rows.
package promoter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/lapakkirim/backend/internal/metrics"
	"github.com/lapakkirim/backend/internal/repository"
	"github.com/lapakkirim/backend/internal/service"
)

const tickInterval = 15 * time.Second

// Promoter ticks scan_due -> pending -> enqueue on a fixed interval. A
// single cooperative task; per-schedule errors are logged and swallowed so
// one bad row does not starve the rest.
type Promoter struct {
	schedules *repository.ScheduleRepository
	queue     *repository.QueueRepository
	invoices  *service.InvoiceService
	logger    *slog.Logger

	done chan struct{}
	wg   sync.WaitGroup
}

// New creates a new Promoter.
func New(schedules *repository.ScheduleRepository, queue *repository.QueueRepository, invoices *service.InvoiceService, logger *slog.Logger) *Promoter {
	return &Promoter{schedules: schedules, queue: queue, invoices: invoices, logger: logger, done: make(chan struct{})}
}

// Run starts the tick loop; it returns once ctx is canceled or Stop is called.
func (p *Promoter) Run(ctx context.Context) {
	p.wg.Add(1)
	defer p.wg.Done()

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.done:
			return
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

// Stop signals the tick loop to exit and waits for it to finish.
func (p *Promoter) Stop() {
	close(p.done)
	p.wg.Wait()
}

func (p *Promoter) tick(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("promoter tick panicked", slog.Any("recover", r))
		}
	}()

	schedules, err := p.schedules.ScanDue(ctx, time.Now())
	if err != nil {
		p.logger.Error("scan due schedules failed", slog.String("error", err.Error()))
		return
	}

	for _, sched := range schedules {
		if err := p.processSchedule(ctx, sched); err != nil {
			metrics.SchedulesPromoted.WithLabelValues("error").Inc()
			p.logger.Error("process schedule failed",
				slog.String("schedule_id", sched.ID.String()),
				slog.String("error", err.Error()))
			continue
		}
		metrics.SchedulesPromoted.WithLabelValues("ok").Inc()
	}
}

func (p *Promoter) processSchedule(ctx context.Context, sched *repository.JobSchedule) error {
	moved, err := p.schedules.Transition(ctx, sched.ID, sched.Status, repository.ScheduleStatusPending)
	if err != nil {
		return err
	}
	if !moved {
		// Raced with another tick or the dispatcher; nothing to do this round.
		return nil
	}

	openCount, err := p.queue.OpenCountForSchedule(ctx, sched.ID)
	if err != nil {
		return err
	}
	if openCount > 0 {
		return nil
	}

	jobData := sched.JobData
	if sched.JobType == "send_invoice" {
		patched, err := p.prepareInvoice(ctx, sched)
		if err != nil {
			// Leave status pending so a later tick retries.
			return err
		}
		jobData = patched
	}

	qrow := &repository.JobQueue{
		JobType:       sched.JobType,
		JobData:       jobData,
		JobScheduleID: &sched.ID,
		Priority:      repository.PriorityFor(sched.JobType),
		Status:        repository.QueueStatusPending,
	}
	return p.queue.WithTx(ctx, func(tx pgx.Tx) error {
		return p.queue.Create(ctx, tx, qrow)
	})
}

func (p *Promoter) prepareInvoice(ctx context.Context, sched *repository.JobSchedule) ([]byte, error) {
	var data service.JobData
	if err := json.Unmarshal(sched.JobData, &data); err != nil || data.InvoiceID == nil {
		return nil, fmt.Errorf("malformed job_data for send_invoice schedule %s", sched.ID)
	}

	inv, err := p.invoices.Get(ctx, *data.InvoiceID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if err := p.invoices.SetInvoiceDate(ctx, inv.ID, now); err != nil {
		return nil, err
	}

	summary := fmt.Sprintf("Invoice %s for %s", inv.InvoiceNumber, data.MerchantName)
	if _, err := p.invoices.RefreshPaymentLink(ctx, inv, summary); err != nil {
		return nil, err
	}

	data.InvoiceDate = &now
	patched, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	if err := p.schedules.SetJobData(ctx, sched.ID, patched); err != nil {
		return nil, err
	}
	return patched, nil
}
