// README: Session store: online-status snapshots and offline transitions.
package session

import (
	"context"
	"time"

	"luba/internal/modules/driver"
	"luba/internal/rtdb"
	"luba/internal/types"
)

// Shared tree paths; the driver module owns the record shapes.
const (
	statusPath   = "driverStatus"
	profilesPath = "drivers"
)

type Store struct {
	db      rtdb.Database
	timeout time.Duration
}

func NewStore(db rtdb.Database, timeout time.Duration) *Store {
	return &Store{db: db, timeout: timeout}
}

func (s *Store) deadline(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

// ListOnline returns the snapshot of status records with isOnline == true.
func (s *Store) ListOnline(ctx context.Context) (map[types.ID]driver.Status, error) {
	var nodes map[string]driver.Status
	if err := s.db.GetByChildValue(ctx, statusPath, "isOnline", true, &nodes); err != nil {
		return nil, err
	}
	out := make(map[types.ID]driver.Status, len(nodes))
	for id, st := range nodes {
		out[types.ID(id)] = st
	}
	return out, nil
}

// ApprovedProfiles returns every driver profile; a profile exists only for
// approved drivers.
func (s *Store) ApprovedProfiles(ctx context.Context) (map[types.ID]driver.Profile, error) {
	var nodes map[string]driver.Profile
	if err := s.db.Get(ctx, profilesPath, &nodes); err != nil {
		return nil, err
	}
	out := make(map[types.ID]driver.Profile, len(nodes))
	for id, p := range nodes {
		p.ID = types.ID(id)
		out[types.ID(id)] = p
	}
	return out, nil
}

// ListForcedOffline returns the status records currently carrying a forced
// sign-off, keyed by driver id.
func (s *Store) ListForcedOffline(ctx context.Context) (map[types.ID]driver.Status, error) {
	var nodes map[string]driver.Status
	if err := s.db.GetByChildValue(ctx, statusPath, "forcedOffline", true, &nodes); err != nil {
		return nil, err
	}
	out := make(map[types.ID]driver.Status, len(nodes))
	for id, st := range nodes {
		out[types.ID(id)] = st
	}
	return out, nil
}

func (s *Store) GetStatus(ctx context.Context, id types.ID) (*driver.Status, error) {
	var st *driver.Status
	if err := s.db.Get(ctx, statusPath+"/"+string(id), &st); err != nil {
		return nil, err
	}
	if st == nil {
		return nil, ErrNotFound
	}
	return st, nil
}

// SetForcedOffline ends the driver's session. lastStatusChange moves to now
// so a later sign-on starts a fresh session clock.
func (s *Store) SetForcedOffline(ctx context.Context, id types.ID, reason string, at time.Time) error {
	ctx, cancel := s.deadline(ctx)
	defer cancel()
	return s.db.Update(ctx, statusPath+"/"+string(id), map[string]any{
		"isOnline":            false,
		"lastStatusChange":    int64(types.MillisFrom(at)),
		"forcedOffline":       true,
		"forcedOfflineReason": reason,
	})
}
