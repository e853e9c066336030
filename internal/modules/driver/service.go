// README: Driver lifecycle service: approval, rejection, manual onboarding.
package driver

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"luba/internal/logger"
	"luba/internal/modules/audit"
	"luba/internal/types"
)

var (
	ErrValidation   = errors.New("missing required field")
	ErrInvalidState = errors.New("invalid state transition")
	ErrNotFound     = errors.New("application not found")
	ErrTimeout      = errors.New("store operation timed out")
	ErrPersistence  = errors.New("store operation failed")
)

// AuditLog records status transitions; appends are best-effort.
type AuditLog interface {
	Append(ctx context.Context, e audit.Event) error
}

type Service struct {
	store *Store
	audit AuditLog
	log   logger.ILogger
	now   func() time.Time
}

func NewService(store *Store, auditLog AuditLog, log logger.ILogger) *Service {
	return &Service{store: store, audit: auditLog, log: log, now: time.Now}
}

type ApproveCommand struct {
	ApplicationID types.ID
	Actor         string
}

type RejectCommand struct {
	ApplicationID types.ID
	Actor         string
}

type AddCommand struct {
	FullName     string
	Email        string
	Phone        string
	Address      string
	IDNumber     string
	VehicleType  string
	Registration string
	Helpers      int
	Actor        string
}

// Approve moves a Pending application to Approved and fans out the side
// effects that make the applicant an operational driver: profile projection,
// fresh offline status record, driver role grant, approval notification.
// The status flip is a CAS transaction; the four side-effect writes land as
// one atomic update, and a failed fan-out rolls the flip back.
func (s *Service) Approve(ctx context.Context, cmd ApproveCommand) error {
	now := s.now().UTC()
	stamp := now.Format(time.RFC3339)

	app, err := s.store.CASStatus(ctx, cmd.ApplicationID, StatusPending, StatusApproved, func(a *Application) {
		a.ApprovedAt = stamp
	})
	if err != nil {
		return s.storeErr("approve", cmd.ApplicationID, err)
	}

	profile := NewProfile(app, stamp)
	status := &Status{IsOnline: false, Status: "available", LastStatusChange: types.MillisFrom(now)}
	notif := &Notification{
		Message:   "Your driver application has been approved. Welcome to Luba!",
		Type:      NotificationApproval,
		CreatedAt: types.MillisFrom(now),
	}

	if err := s.store.ApplyApprovalEffects(ctx, app.ID, profile, status, notif); err != nil {
		if rbErr := s.store.RevertApproval(ctx, app.ID); rbErr != nil {
			s.log.Error("approval rollback failed; application left approved without profile",
				logger.String("applicationId", string(app.ID)), logger.Error(rbErr))
		}
		return s.storeErr("approve", cmd.ApplicationID, err)
	}

	s.record(ctx, audit.Event{
		EntityType: "driverApplication",
		EntityID:   string(app.ID),
		FromStatus: string(StatusPending),
		ToStatus:   string(StatusApproved),
		Actor:      cmd.Actor,
		CreatedAt:  now,
	})
	s.log.Info("driver application approved",
		logger.String("applicationId", string(app.ID)), logger.String("actor", cmd.Actor))
	return nil
}

// Reject moves a Pending application to Rejected and notifies the applicant.
// Profile and status paths are never touched.
func (s *Service) Reject(ctx context.Context, cmd RejectCommand) error {
	now := s.now().UTC()

	app, err := s.store.CASStatus(ctx, cmd.ApplicationID, StatusPending, StatusRejected, func(a *Application) {
		a.RejectedAt = now.Format(time.RFC3339)
	})
	if err != nil {
		return s.storeErr("reject", cmd.ApplicationID, err)
	}

	notif := &Notification{
		Message:   "Your driver application has been rejected.",
		Type:      NotificationRejection,
		CreatedAt: types.MillisFrom(now),
	}
	if err := s.store.PushNotification(ctx, app.ID, notif); err != nil {
		if rbErr := s.store.RevertRejection(ctx, app.ID); rbErr != nil {
			s.log.Error("rejection rollback failed",
				logger.String("applicationId", string(app.ID)), logger.Error(rbErr))
		}
		return s.storeErr("reject", cmd.ApplicationID, err)
	}

	s.record(ctx, audit.Event{
		EntityType: "driverApplication",
		EntityID:   string(app.ID),
		FromStatus: string(StatusPending),
		ToStatus:   string(StatusRejected),
		Actor:      cmd.Actor,
		CreatedAt:  now,
	})
	s.log.Info("driver application rejected",
		logger.String("applicationId", string(app.ID)), logger.String("actor", cmd.Actor))
	return nil
}

// AddManual creates a driver directly in Approved state across the
// application, profile, status, and role paths. Every field is required;
// validation failures block all writes.
func (s *Service) AddManual(ctx context.Context, cmd AddCommand) (types.ID, error) {
	if cmd.FullName == "" || cmd.Email == "" || cmd.Phone == "" || cmd.Address == "" ||
		cmd.IDNumber == "" || cmd.VehicleType == "" || cmd.Registration == "" || cmd.Helpers < 0 {
		return "", ErrValidation
	}

	now := s.now().UTC()
	stamp := now.Format(time.RFC3339)
	id := newID()

	app := &Application{
		ID:           id,
		FullName:     cmd.FullName,
		Email:        cmd.Email,
		Phone:        cmd.Phone,
		Address:      cmd.Address,
		IDNumber:     cmd.IDNumber,
		VehicleType:  cmd.VehicleType,
		Registration: cmd.Registration,
		Helpers:      cmd.Helpers,
		Status:       StatusApproved,
		CreatedAt:    stamp,
		ApprovedAt:   stamp,
	}
	profile := NewProfile(app, stamp)
	status := &Status{IsOnline: false, Status: "available", LastStatusChange: types.MillisFrom(now)}

	if err := s.store.CreateManual(ctx, app, profile, status); err != nil {
		return "", s.storeErr("add manual", id, err)
	}

	s.record(ctx, audit.Event{
		EntityType: "driverApplication",
		EntityID:   string(id),
		ToStatus:   string(StatusApproved),
		Actor:      cmd.Actor,
		CreatedAt:  now,
	})
	s.log.Info("driver added manually",
		logger.String("applicationId", string(id)), logger.String("actor", cmd.Actor))
	return id, nil
}

func (s *Service) GetApplication(ctx context.Context, id types.ID) (*Application, error) {
	app, err := s.store.GetApplication(ctx, id)
	if err != nil {
		return nil, s.storeErr("get application", id, err)
	}
	return app, nil
}

// ListApplications returns applications, optionally filtered by status.
func (s *Service) ListApplications(ctx context.Context, status ApplicationStatus) ([]Application, error) {
	var (
		apps []Application
		err  error
	)
	if status == "" {
		apps, err = s.store.ListApplications(ctx)
	} else {
		apps, err = s.store.ListApplicationsByStatus(ctx, status)
	}
	if err != nil {
		return nil, s.storeErr("list applications", "", err)
	}
	return apps, nil
}

// ListNotifications returns the messages pushed to one applicant, keyed by
// the epoch-millis push key. Unknown applicants yield ErrNotFound; an
// applicant with no messages yields an empty map.
func (s *Service) ListNotifications(ctx context.Context, id types.ID) (map[string]Notification, error) {
	if _, err := s.store.GetApplication(ctx, id); err != nil {
		return nil, s.storeErr("get application", id, err)
	}
	notifs, err := s.store.GetNotifications(ctx, id)
	if err != nil {
		return nil, s.storeErr("list notifications", id, err)
	}
	if notifs == nil {
		notifs = map[string]Notification{}
	}
	return notifs, nil
}

func (s *Service) ListProfiles(ctx context.Context) ([]Profile, error) {
	profiles, err := s.store.ListProfiles(ctx)
	if err != nil {
		return nil, s.storeErr("list profiles", "", err)
	}
	return profiles, nil
}

// ClearApplications is the administrative bulk wipe of the collection.
func (s *Service) ClearApplications(ctx context.Context, actor string) error {
	if err := s.store.ClearApplications(ctx); err != nil {
		return s.storeErr("clear applications", "", err)
	}
	s.log.Warning("driver applications cleared", logger.String("actor", actor))
	return nil
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

// storeErr maps raw store failures onto the service taxonomy. Domain
// sentinels pass through; deadline expiry becomes ErrTimeout; anything else
// is a persistence failure, logged with its cause.
func (s *Service) storeErr(op string, id types.ID, err error) error {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrInvalidState):
		return err
	case errors.Is(err, context.DeadlineExceeded):
		s.log.Error("store deadline exceeded",
			logger.String("op", op), logger.String("applicationId", string(id)))
		return ErrTimeout
	default:
		s.log.Error("store operation failed",
			logger.String("op", op), logger.String("applicationId", string(id)), logger.Error(err))
		return ErrPersistence
	}
}

func newID() types.ID {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return types.ID(hex.EncodeToString(b[:]))
}
