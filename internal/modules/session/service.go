// README: Active-session monitor: hours-online policy and forced offline.
package session

import (
	"context"
	"errors"
	"sort"
	"time"

	"luba/internal/config"
	"luba/internal/logger"
	"luba/internal/modules/audit"
	"luba/internal/types"
)

var (
	ErrNotFound    = errors.New("driver status not found")
	ErrTimeout     = errors.New("store operation timed out")
	ErrPersistence = errors.New("store operation failed")
)

type AuditLog interface {
	Append(ctx context.Context, e audit.Event) error
}

type Service struct {
	store *Store
	audit AuditLog
	log   logger.ILogger
	tick  time.Duration
	now   func() time.Time
}

func NewService(store *Store, auditLog AuditLog, log logger.ILogger, cfg config.SessionConfig) *Service {
	tick := time.Duration(cfg.TickSeconds) * time.Second
	if tick <= 0 {
		tick = time.Minute
	}
	return &Service{store: store, audit: auditLog, log: log, tick: tick, now: time.Now}
}

type ForceOfflineCommand struct {
	DriverID types.ID
	Reason   string
	Actor    string
}

// Evaluate applies the session policy to the current status snapshot and
// returns the active set: approved drivers online after enforcement, each
// with hoursOnline and the approaching-limit flag. Drivers past the limit
// are forced offline and excluded.
func (s *Service) Evaluate(ctx context.Context) ([]ActiveDriver, error) {
	now := s.now()

	statuses, err := s.store.ListOnline(ctx)
	if err != nil {
		return nil, s.storeErr("list online", "", err)
	}
	profiles, err := s.store.ApprovedProfiles(ctx)
	if err != nil {
		return nil, s.storeErr("list profiles", "", err)
	}

	active := make([]ActiveDriver, 0, len(statuses))
	for id, st := range statuses {
		elapsed := now.Sub(st.LastStatusChange.Time())

		if elapsed > OnlineLimit {
			if err := s.store.SetForcedOffline(ctx, id, ForcedOfflineReason, now); err != nil {
				s.log.Error("cutoff enforcement failed",
					logger.String("driverId", string(id)), logger.Error(err))
				continue
			}
			s.record(ctx, audit.Event{
				EntityType: "driverStatus",
				EntityID:   string(id),
				FromStatus: "online",
				ToStatus:   "forced_offline",
				Actor:      "session-monitor",
				CreatedAt:  now.UTC(),
			})
			s.log.Warning("driver forced offline after session limit",
				logger.String("driverId", string(id)),
				logger.Float64("hoursOnline", elapsed.Hours()))
			continue
		}

		p, ok := profiles[id]
		if !ok {
			// Online status without an approved profile; never surfaced.
			continue
		}
		active = append(active, ActiveDriver{
			ID:               id,
			FullName:         p.FullName,
			VehicleType:      p.VehicleType,
			HoursOnline:      elapsed.Hours(),
			ApproachingLimit: elapsed > ApproachWindow,
		})
	}

	sort.Slice(active, func(i, j int) bool { return active[i].ID < active[j].ID })
	return active, nil
}

// ForcedOfflineCount reports how many drivers currently carry a forced
// sign-off.
func (s *Service) ForcedOfflineCount(ctx context.Context) (int, error) {
	forced, err := s.store.ListForcedOffline(ctx)
	if err != nil {
		return 0, s.storeErr("list forced offline", "", err)
	}
	return len(forced), nil
}

// ForceOffline is the admin override; unlike the automatic cutoff it is
// always permitted, whatever the current session duration.
func (s *Service) ForceOffline(ctx context.Context, cmd ForceOfflineCommand) error {
	if _, err := s.store.GetStatus(ctx, cmd.DriverID); err != nil {
		return s.storeErr("force offline", cmd.DriverID, err)
	}

	now := s.now()
	if err := s.store.SetForcedOffline(ctx, cmd.DriverID, cmd.Reason, now); err != nil {
		return s.storeErr("force offline", cmd.DriverID, err)
	}

	s.record(ctx, audit.Event{
		EntityType: "driverStatus",
		EntityID:   string(cmd.DriverID),
		FromStatus: "online",
		ToStatus:   "forced_offline",
		Actor:      cmd.Actor,
		CreatedAt:  now.UTC(),
	})
	s.log.Info("driver forced offline by admin",
		logger.String("driverId", string(cmd.DriverID)),
		logger.String("reason", cmd.Reason),
		logger.String("actor", cmd.Actor))
	return nil
}

// Run polls the status subtree on every tick and enforces the policy. Each
// tick consumes a full snapshot, per the store's subscribe contract.
func (s *Service) Run(ctx context.Context) {
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Evaluate(ctx); err != nil {
				s.log.Error("session evaluation failed", logger.Error(err))
			}
		}
	}
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
	case errors.Is(err, ErrNotFound):
		return err
	case errors.Is(err, context.DeadlineExceeded):
		s.log.Error("store deadline exceeded",
			logger.String("op", op), logger.String("driverId", string(id)))
		return ErrTimeout
	default:
		s.log.Error("store operation failed",
			logger.String("op", op), logger.String("driverId", string(id)), logger.Error(err))
		return ErrPersistence
	}
}
