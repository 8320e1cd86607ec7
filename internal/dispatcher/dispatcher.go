// Package dispatcher implements the Dispatcher (C8): a 1s-ticking worker
// that claims the top queue row, resolves contact channels, composes a
// message, and fans it out across every bound channel.
package dispatcher

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/lapakkirim/backend/internal/channel"
	"github.com/lapakkirim/backend/internal/composer"
	"github.com/lapakkirim/backend/internal/metrics"
	"github.com/lapakkirim/backend/internal/payment"
	"github.com/lapakkirim/backend/internal/repository"
	"github.com/lapakkirim/backend/internal/service"
	appErrors "github.com/lapakkirim/backend/pkg/errors"
	"github.com/robfig/cron/v3"
	"github.com/samber/lo"
)

const tickInterval = 1 * time.Second

// Dispatcher claims queue rows and dispatches them through channel adapters,
// advancing the owning schedule's recurrence on success.
type Dispatcher struct {
	schedules *repository.ScheduleRepository
	queue     *repository.QueueRepository
	customers *service.CustomerService
	invoices  *service.InvoiceService
	channels  *channel.Registry
	composer  *composer.Composer
	logger    *slog.Logger

	// rateGate, when non-nil, gates whether dispatch is allowed to run right
	// now so operators can restrict sends to business hours.
	rateGate *cron.Cron
	allowed  bool
	mu       sync.Mutex

	done chan struct{}
	wg   sync.WaitGroup
}

// New creates a new Dispatcher. cronSpec is a 6-field, seconds-enabled cron
// expression naming the moments dispatch reopens; an empty string means
// "always allowed".
func New(
	schedules *repository.ScheduleRepository,
	queue *repository.QueueRepository,
	customers *service.CustomerService,
	invoices *service.InvoiceService,
	channels *channel.Registry,
	comp *composer.Composer,
	logger *slog.Logger,
	cronSpec string,
) (*Dispatcher, error) {
	d := &Dispatcher{
		schedules: schedules,
		queue:     queue,
		customers: customers,
		invoices:  invoices,
		channels:  channels,
		composer:  comp,
		logger:    logger,
		done:      make(chan struct{}),
		allowed:   true,
	}
	if cronSpec == "" {
		return d, nil
	}

	d.allowed = false
	c := cron.New(cron.WithSeconds())
	if _, err := c.AddFunc(cronSpec, d.open); err != nil {
		return nil, err
	}
	d.rateGate = c
	return d, nil
}

func (d *Dispatcher) open() {
	d.mu.Lock()
	d.allowed = true
	d.mu.Unlock()
}

// consumeWindow reports whether dispatch may proceed right now and, when the
// gate is active, closes it again immediately: each cron fire buys exactly
// one tick's worth of dispatch before the gate must reopen (config's
// DISPATCH_CRON_EXPR "gates ... to at most one tick per window").
func (d *Dispatcher) consumeWindow() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.allowed {
		return false
	}
	if d.rateGate != nil {
		d.allowed = false
	}
	return true
}

// Run starts the tick loop and, if configured, the cron rate gate.
func (d *Dispatcher) Run(ctx context.Context) {
	if d.rateGate != nil {
		d.rateGate.Start()
		defer d.rateGate.Stop()
	}

	d.wg.Add(1)
	defer d.wg.Done()

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-d.done:
			return
		case <-ticker.C:
			d.tick(ctx)
		}
	}
}

// Stop signals the tick loop to exit and waits for it to finish.
func (d *Dispatcher) Stop() {
	close(d.done)
	d.wg.Wait()
}

func (d *Dispatcher) tick(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("dispatcher tick panicked", slog.Any("recover", r))
		}
	}()

	if !d.consumeWindow() {
		return
	}

	row, err := d.queue.ClaimTop(ctx)
	if err != nil {
		d.logger.Error("claim top failed", slog.String("error", err.Error()))
		return
	}
	if row == nil {
		return
	}

	if err := d.process(ctx, row); err != nil {
		d.logger.Error("process queue row failed",
			slog.String("queue_id", row.ID.String()),
			slog.String("error", err.Error()))
	}
}

func (d *Dispatcher) process(ctx context.Context, row *repository.JobQueue) error {
	var data service.JobData
	if err := json.Unmarshal(row.JobData, &data); err != nil {
		return d.queue.Transition(ctx, row.ID, repository.QueueStatusFailed)
	}

	var sched *repository.JobSchedule
	if row.JobScheduleID != nil {
		s, err := d.schedules.GetByID(ctx, *row.JobScheduleID)
		if err != nil {
			return d.queue.Transition(ctx, row.ID, repository.QueueStatusFailed)
		}
		sched = s
		ok, err := d.schedules.Transition(ctx, sched.ID, sched.Status, repository.ScheduleStatusInProgress)
		if err != nil {
			return err
		}
		if !ok {
			// Another worker already moved this schedule on; don't double-dispatch.
			return d.queue.Transition(ctx, row.ID, repository.QueueStatusCanceled)
		}
	}

	sendErr := d.sendViaChannels(ctx, row.JobType, data)

	if sendErr != nil {
		metrics.QueueRowsDispatched.WithLabelValues(row.JobType, "failed").Inc()
		d.logger.Warn("dispatch failed on every channel",
			slog.String("queue_id", row.ID.String()), slog.String("error", sendErr.Error()))
		if err := d.queue.Transition(ctx, row.ID, repository.QueueStatusFailed); err != nil {
			return err
		}
		if sched != nil {
			return d.schedules.TransitionAny(ctx, sched.ID, repository.ScheduleStatusFailed)
		}
		return nil
	}

	metrics.QueueRowsDispatched.WithLabelValues(row.JobType, "completed").Inc()
	if err := d.queue.Transition(ctx, row.ID, repository.QueueStatusCompleted); err != nil {
		return err
	}
	if sched == nil {
		return nil
	}
	return d.advanceSchedule(ctx, sched)
}

// advanceSchedule either reschedules a recurring job for its next run or
// marks it completed once remaining reaches zero.
func (d *Dispatcher) advanceSchedule(ctx context.Context, sched *repository.JobSchedule) error {
	if sched.Remaining == nil || sched.RepeatIntervalSecond == nil {
		return d.schedules.TransitionAny(ctx, sched.ID, repository.ScheduleStatusCompleted)
	}

	remaining := *sched.Remaining - 1
	if remaining <= 0 {
		return d.schedules.TransitionAny(ctx, sched.ID, repository.ScheduleStatusCompleted)
	}

	nextRunAt := sched.RunAt.Add(time.Duration(*sched.RepeatIntervalSecond) * time.Second)
	return d.schedules.AdvanceRecurrence(ctx, sched.ID, nextRunAt, remaining)
}

// sendViaChannels resolves every contact channel bound to the customer and
// dispatches through each. It continues past a per-channel failure and only reports
// overall failure when every channel failed.
func (d *Dispatcher) sendViaChannels(ctx context.Context, jobType string, data service.JobData) error {
	bodies, err := d.bodiesByJobType(ctx, jobType, data)
	if err != nil {
		return err
	}

	channels, err := d.customers.ContactChannels(ctx, data.CustomerID)
	if err != nil {
		return err
	}
	if len(channels) == 0 {
		return appErrors.ErrChannelFailed.WithMessage("no contact channels bound to customer")
	}

	var lastErr error
	var failedChannels []string
	successes := 0
	for _, cc := range channels {
		adapter, err := d.channels.Get(cc.ChannelName)
		if err != nil {
			lastErr = err
			failedChannels = append(failedChannels, cc.ChannelName)
			continue
		}

		additionalValue := ""
		if cc.ChannelName == channel.NameTelegram {
			// A Telegram binding with no resolved chat_id means onboarding
			// never completed; that is a per-channel failure, not an
			// overall dispatch failure.
			if cc.AdditionalValue == nil || *cc.AdditionalValue == "" {
				lastErr = appErrors.ErrChannelFailed.WithMessage("no chat_id bound: onboarding not completed")
				failedChannels = append(failedChannels, cc.ChannelName)
				continue
			}
			additionalValue = *cc.AdditionalValue
		}

		start := time.Now()
		sendErr := adapter.Send(ctx, cc.Value, additionalValue, bodies)
		outcome := "ok"
		if sendErr != nil {
			outcome = "error"
			lastErr = sendErr
			failedChannels = append(failedChannels, cc.ChannelName)
		} else {
			successes++
		}
		metrics.ChannelSendDuration.WithLabelValues(cc.ChannelName, outcome).Observe(time.Since(start).Seconds())
	}

	if successes == 0 {
		return lastErr
	}
	if len(failedChannels) > 0 {
		d.logger.Warn("some channels failed but dispatch still succeeded",
			slog.Any("failed_channels", lo.Uniq(failedChannels)))
	}
	return nil
}

// bodiesByJobType composes the message body once per dispatch.
func (d *Dispatcher) bodiesByJobType(ctx context.Context, jobType string, data service.JobData) (string, error) {
	if jobType != "send_invoice" {
		return d.composer.ReminderBody(data.MerchantName, data.Title, data.Description), nil
	}

	if data.InvoiceID == nil {
		return "", appErrors.ErrInvalidInput.WithMessage("send_invoice job_data missing invoice_id")
	}
	inv, err := d.invoices.Get(ctx, *data.InvoiceID)
	if err != nil {
		return "", err
	}

	var payload payment.Payload
	paymentURL := ""
	if len(inv.PaymentPayload) > 0 {
		if err := json.Unmarshal(inv.PaymentPayload, &payload); err == nil {
			paymentURL = payload.InvoiceURL()
		}
	}

	dueAt := inv.InvoiceDate.Add(24 * time.Hour)
	return d.composer.InvoiceBody(data.MerchantName, inv.TotalAmount, paymentURL, dueAt), nil
}
