// README: Booking service implements admin-driven status transitions.
package booking

import (
	"context"
	"errors"
	"time"

	"luba/internal/logger"
	"luba/internal/modules/audit"
	"luba/internal/types"
)

var (
	ErrInvalidState = errors.New("invalid state transition")
	ErrNotFound     = errors.New("booking not found")
	ErrTimeout      = errors.New("store operation timed out")
	ErrPersistence  = errors.New("store operation failed")
)

// Estimator supplies a driving estimate for the booking detail view.
type Estimator interface {
	EstimateBetween(ctx context.Context, origin, dest types.Point) (time.Duration, string, error)
}

type AuditLog interface {
	Append(ctx context.Context, e audit.Event) error
}

type Service struct {
	store     *Store
	estimator Estimator
	audit     AuditLog
	log       logger.ILogger
	now       func() time.Time
}

func NewService(store *Store, estimator Estimator, auditLog AuditLog, log logger.ILogger) *Service {
	return &Service{store: store, estimator: estimator, audit: auditLog, log: log, now: time.Now}
}

type TransitionCommand struct {
	BookingID types.ID
	Actor     string
}

func (s *Service) Accept(ctx context.Context, cmd TransitionCommand) error {
	return s.transition(ctx, cmd, StatusAccepted)
}

// Reject cancels a booking that is still pending.
func (s *Service) Reject(ctx context.Context, cmd TransitionCommand) error {
	return s.transition(ctx, cmd, StatusCancelled)
}

func (s *Service) Start(ctx context.Context, cmd TransitionCommand) error {
	return s.transition(ctx, cmd, StatusOnTheWay)
}

func (s *Service) MarkArrived(ctx context.Context, cmd TransitionCommand) error {
	return s.transition(ctx, cmd, StatusArrived)
}

func (s *Service) Complete(ctx context.Context, cmd TransitionCommand) error {
	return s.transition(ctx, cmd, StatusCompleted)
}

func (s *Service) Cancel(ctx context.Context, cmd TransitionCommand) error {
	return s.transition(ctx, cmd, StatusCancelled)
}

func (s *Service) transition(ctx context.Context, cmd TransitionCommand, to Status) error {
	now := s.now()
	before, err := s.store.Get(ctx, cmd.BookingID)
	if err != nil {
		return s.storeErr("get booking", cmd.BookingID, err)
	}
	if !CanTransition(before.Status, to) {
		return ErrInvalidState
	}

	b, err := s.store.UpdateStatus(ctx, cmd.BookingID, to, now)
	if err != nil {
		return s.storeErr("update status", cmd.BookingID, err)
	}

	s.record(ctx, audit.Event{
		EntityType: "booking",
		EntityID:   string(b.ID),
		FromStatus: string(before.Status),
		ToStatus:   string(to),
		Actor:      cmd.Actor,
		CreatedAt:  now.UTC(),
	})
	s.log.Info("booking status updated",
		logger.String("bookingId", string(b.ID)),
		logger.String("from", string(before.Status)),
		logger.String("to", string(to)),
		logger.String("actor", cmd.Actor))
	return nil
}

func (s *Service) Get(ctx context.Context, id types.ID) (*Booking, error) {
	b, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, s.storeErr("get booking", id, err)
	}
	return b, nil
}

// Detail is a booking plus an optional driving estimate.
type Detail struct {
	Booking
	EstimatedDuration string `json:"estimatedDuration,omitempty"`
	EstimatedDistance string `json:"estimatedDistance,omitempty"`
}

// GetDetail enriches the booking with a pickup→dropoff driving estimate when
// an estimator is configured. Estimate failures degrade to the bare record.
func (s *Service) GetDetail(ctx context.Context, id types.ID) (*Detail, error) {
	b, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	d := &Detail{Booking: *b}
	if s.estimator == nil {
		return d, nil
	}
	dur, dist, err := s.estimator.EstimateBetween(ctx, b.PickupPos, b.DropoffPos)
	if err != nil {
		s.log.Warning("travel estimate failed",
			logger.String("bookingId", string(id)), logger.Error(err))
		return d, nil
	}
	d.EstimatedDuration = dur.Round(time.Minute).String()
	d.EstimatedDistance = dist
	return d, nil
}

func (s *Service) List(ctx context.Context, status Status) ([]Booking, error) {
	var (
		bookings []Booking
		err      error
	)
	if status == "" {
		bookings, err = s.store.List(ctx)
	} else {
		bookings, err = s.store.ListByStatus(ctx, status)
	}
	if err != nil {
		return nil, s.storeErr("list bookings", "", err)
	}
	return bookings, nil
}

func (s *Service) record(ctx context.Context, e audit.Event) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Append(ctx, e); err != nil {
		s.log.Warning("audit append failed",
			logger.String("entityId", e.EntityID), logger.Error(err))
	}
}

func (s *Service) storeErr(op string, id types.ID, err error) error {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrInvalidState):
		return err
	case errors.Is(err, context.DeadlineExceeded):
		s.log.Error("store deadline exceeded",
			logger.String("op", op), logger.String("bookingId", string(id)))
		return ErrTimeout
	default:
		s.log.Error("store operation failed",
			logger.String("op", op), logger.String("bookingId", string(id)), logger.Error(err))
		return ErrPersistence
	}
}
