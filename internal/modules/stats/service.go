// README: Dashboard statistics with a short-lived Redis cache.
package stats

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"luba/internal/logger"
	"luba/internal/modules/booking"
	"luba/internal/modules/driver"
	"luba/internal/modules/session"
)

const (
	cacheKey = "stats:dashboard"
	// Counts drive an admin landing page; a minute of staleness is acceptable.
	cacheTTL = time.Minute
)

var ErrPersistence = errors.New("stats collection failed")

// Dashboard is the headline counters for the admin landing page.
type Dashboard struct {
	ApplicationsByStatus map[string]int `json:"applicationsByStatus"`
	ApprovedDrivers      int            `json:"approvedDrivers"`
	OnlineDrivers        int            `json:"onlineDrivers"`
	ApproachingLimit     int            `json:"approachingLimit"`
	ForcedOffline        int            `json:"forcedOffline"`
	BookingsByStatus     map[string]int `json:"bookingsByStatus"`
	GeneratedAt          string         `json:"generatedAt"`
}

type Service struct {
	drivers  *driver.Service
	sessions *session.Service
	bookings *booking.Service
	redis    *redis.Client
	log      logger.ILogger
	now      func() time.Time
}

// NewService builds the stats service. A nil redis client disables caching;
// every call then recomputes from the live trees.
func NewService(drivers *driver.Service, sessions *session.Service, bookings *booking.Service, redis *redis.Client, log logger.ILogger) *Service {
	return &Service{
		drivers:  drivers,
		sessions: sessions,
		bookings: bookings,
		redis:    redis,
		log:      log,
		now:      time.Now,
	}
}

func (s *Service) Dashboard(ctx context.Context) (*Dashboard, error) {
	if cached := s.fromCache(ctx); cached != nil {
		return cached, nil
	}

	d, err := s.compute(ctx)
	if err != nil {
		return nil, err
	}
	s.toCache(ctx, d)
	return d, nil
}

func (s *Service) compute(ctx context.Context) (*Dashboard, error) {
	apps, err := s.drivers.ListApplications(ctx, "")
	if err != nil {
		return nil, ErrPersistence
	}
	profiles, err := s.drivers.ListProfiles(ctx)
	if err != nil {
		return nil, ErrPersistence
	}
	active, err := s.sessions.Evaluate(ctx)
	if err != nil {
		return nil, ErrPersistence
	}
	forced, err := s.sessions.ForcedOfflineCount(ctx)
	if err != nil {
		return nil, ErrPersistence
	}
	bookings, err := s.bookings.List(ctx, "")
	if err != nil {
		return nil, ErrPersistence
	}

	appsByStatus := make(map[string]int)
	for _, a := range apps {
		appsByStatus[string(a.Status)]++
	}
	bookingsByStatus := make(map[string]int)
	for _, b := range bookings {
		bookingsByStatus[string(b.Status)]++
	}
	approaching := 0
	for _, a := range active {
		if a.ApproachingLimit {
			approaching++
		}
	}

	return &Dashboard{
		ApplicationsByStatus: appsByStatus,
		ApprovedDrivers:      len(profiles),
		OnlineDrivers:        len(active),
		ApproachingLimit:     approaching,
		ForcedOffline:        forced,
		BookingsByStatus:     bookingsByStatus,
		GeneratedAt:          s.now().UTC().Format(time.RFC3339),
	}, nil
}

func (s *Service) fromCache(ctx context.Context) *Dashboard {
	if s.redis == nil {
		return nil
	}
	raw, err := s.redis.Get(ctx, cacheKey).Bytes()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		s.log.Warning("stats cache read failed", logger.Error(err))
		return nil
	}
	var d Dashboard
	if err := json.Unmarshal(raw, &d); err != nil {
		s.log.Warning("stats cache decode failed", logger.Error(err))
		return nil
	}
	return &d
}

func (s *Service) toCache(ctx context.Context, d *Dashboard) {
	if s.redis == nil {
		return
	}
	raw, err := json.Marshal(d)
	if err != nil {
		return
	}
	if err := s.redis.Set(ctx, cacheKey, raw, cacheTTL).Err(); err != nil {
		s.log.Warning("stats cache write failed", logger.Error(err))
	}
}
