package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/lapakkirim/backend/internal/repository"
	"github.com/lapakkirim/backend/pkg/errors"
)

// JobData is the structured payload carried by a schedule/queue row,
// serialized as the job_data JSON column.
type JobData struct {
	CustomerID   uuid.UUID  `json:"customer_id"`
	MerchantID   uuid.UUID  `json:"merchant_id"`
	MerchantName string     `json:"merchant_name"`
	InvoiceID    *uuid.UUID `json:"invoice_id,omitempty"`
	InvoiceDate  *time.Time `json:"invoice_date,omitempty"`
	Title        string     `json:"title,omitempty"`
	Description  string     `json:"description,omitempty"`
}

// ScheduleService implements the set-schedule and cancel operations for
// both invoice and generic job schedules.
type ScheduleService struct {
	schedules *repository.ScheduleRepository
	queue     *repository.QueueRepository
	customers *repository.CustomerRepository
	merchants *repository.MerchantRepository
}

// NewScheduleService creates a new ScheduleService.
func NewScheduleService(
	schedules *repository.ScheduleRepository,
	queue *repository.QueueRepository,
	customers *repository.CustomerRepository,
	merchants *repository.MerchantRepository,
) *ScheduleService {
	return &ScheduleService{schedules: schedules, queue: queue, customers: customers, merchants: merchants}
}

// SetInvoiceScheduleInput groups the fields for PUT …/invoices/:invoiceID/set-schedule.
type SetInvoiceScheduleInput struct {
	MerchantID         uuid.UUID
	InvoiceID          uuid.UUID
	CustomerID         uuid.UUID
	IsRecurring        bool
	RepeatIntervalType string
	StartAt            *time.Time
	EndAt              *time.Time
}

// SetInvoiceSchedule creates a send_invoice schedule for one invoice,
// enforcing the "one open schedule per invoice" invariant.
func (s *ScheduleService) SetInvoiceSchedule(ctx context.Context, in SetInvoiceScheduleInput) (*repository.JobSchedule, error) {
	if existing, err := s.schedules.LookupByJobData(ctx, in.InvoiceID); err == nil && existing != nil {
		return nil, errors.ErrAlreadyScheduled
	} else if err != nil && !errors.Is(err, errors.ErrScheduleNotFound) {
		return nil, err
	}

	merchant, err := s.merchants.GetByID(ctx, in.MerchantID)
	if err != nil {
		return nil, err
	}

	data := JobData{
		CustomerID:   in.CustomerID,
		MerchantID:   in.MerchantID,
		MerchantName: merchant.Name,
		InvoiceID:    &in.InvoiceID,
	}
	return s.create(ctx, "send_invoice", data, in.IsRecurring, in.RepeatIntervalType, in.StartAt, in.EndAt)
}

// SetGenericScheduleInput groups the fields for PUT /api/v1/merchants/:merchantID/set-schedule.
type SetGenericScheduleInput struct {
	MerchantID         uuid.UUID
	JobType            string // "send_invoice" or "send_reminder"
	Tag                string
	Title              string
	Description        string
	IsRecurring        bool
	RepeatIntervalType string
	StartAt            *time.Time
	EndAt              *time.Time
}

// SetGenericSchedule fans a schedule out to every customer tagged with Tag,
// one schedule per customer.
func (s *ScheduleService) SetGenericSchedule(ctx context.Context, in SetGenericScheduleInput) ([]*repository.JobSchedule, error) {
	merchant, err := s.merchants.GetByID(ctx, in.MerchantID)
	if err != nil {
		return nil, err
	}

	var tags []string
	if in.Tag != "" {
		tags = []string{in.Tag}
	}
	customers, err := s.customers.List(ctx, repository.ListCriteria{MerchantID: in.MerchantID, Tags: tags})
	if err != nil {
		return nil, err
	}

	var out []*repository.JobSchedule
	for _, cust := range customers {
		data := JobData{
			CustomerID:   cust.ID,
			MerchantID:   in.MerchantID,
			MerchantName: merchant.Name,
			Title:        in.Title,
			Description:  in.Description,
		}
		sched, err := s.create(ctx, in.JobType, data, in.IsRecurring, in.RepeatIntervalType, in.StartAt, in.EndAt)
		if err != nil {
			return nil, err
		}
		out = append(out, sched)
	}
	return out, nil
}

func (s *ScheduleService) create(ctx context.Context, jobType string, data JobData, isRecurring bool, repeatIntervalType string, startAt, endAt *time.Time) (*repository.JobSchedule, error) {
	runAt, remaining, intervalSeconds, err := ScheduleWindow(time.Now(), isRecurring, repeatIntervalType, startAt, endAt)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(data)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal)
	}

	sched := &repository.JobSchedule{
		JobType:              jobType,
		JobData:              payload,
		RunAt:                runAt,
		RepeatIntervalSecond: intervalSeconds,
		Remaining:            remaining,
		Status:               repository.ScheduleStatusScheduled,
	}

	if err := s.schedules.CreateStandalone(ctx, sched); err != nil {
		return nil, err
	}
	return sched, nil
}

// Cancel transitions a schedule to canceled from any non-terminal state and
// cancels every queue row created under it, including one currently
// in_progress.
func (s *ScheduleService) Cancel(ctx context.Context, scheduleID uuid.UUID) error {
	sched, err := s.schedules.GetByID(ctx, scheduleID)
	if err != nil {
		return err
	}
	if sched.Status == repository.ScheduleStatusCompleted || sched.Status == repository.ScheduleStatusCanceled {
		return errors.ErrInvalidInput.WithMessage("schedule is already " + sched.Status)
	}
	if err := s.schedules.TransitionAny(ctx, scheduleID, repository.ScheduleStatusCanceled); err != nil {
		return err
	}
	_, err = s.queue.CancelBySchedule(ctx, scheduleID)
	return err
}

// Get retrieves a schedule by ID.
func (s *ScheduleService) Get(ctx context.Context, id uuid.UUID) (*repository.JobSchedule, error) {
	return s.schedules.GetByID(ctx, id)
}

// MerchantIDFor reports the merchant that owns the given schedule, decoded
// from its job_data. Used by the ownership middleware guarding Get/Cancel,
// which are routed by schedule id alone with no merchant id in the path.
func (s *ScheduleService) MerchantIDFor(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	sched, err := s.schedules.GetByID(ctx, id)
	if err != nil {
		return uuid.Nil, err
	}
	var data JobData
	if err := json.Unmarshal(sched.JobData, &data); err != nil {
		return uuid.Nil, errors.Wrap(err, errors.ErrInternal)
	}
	return data.MerchantID, nil
}
