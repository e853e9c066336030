// README: Driver store over the realtime database tree.
package driver

import (
	"context"
	"sort"
	"strconv"
	"time"

	"luba/internal/rtdb"
	"luba/internal/types"
)

const (
	applicationsPath  = "driverApplications"
	profilesPath      = "drivers"
	statusPath        = "driverStatus"
	notificationsPath = "notifications"
	rolesPath         = "roles"
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

func (s *Store) GetApplication(ctx context.Context, id types.ID) (*Application, error) {
	var app *Application
	if err := s.db.Get(ctx, applicationsPath+"/"+string(id), &app); err != nil {
		return nil, err
	}
	if app == nil {
		return nil, ErrNotFound
	}
	app.ID = id
	return app, nil
}

func (s *Store) ListApplications(ctx context.Context) ([]Application, error) {
	var nodes map[string]Application
	if err := s.db.Get(ctx, applicationsPath, &nodes); err != nil {
		return nil, err
	}
	return sortedApplications(nodes), nil
}

func (s *Store) ListApplicationsByStatus(ctx context.Context, status ApplicationStatus) ([]Application, error) {
	var nodes map[string]Application
	if err := s.db.GetByChildValue(ctx, applicationsPath, "status", string(status), &nodes); err != nil {
		return nil, err
	}
	return sortedApplications(nodes), nil
}

func (s *Store) ListProfiles(ctx context.Context) ([]Profile, error) {
	var nodes map[string]Profile
	if err := s.db.Get(ctx, profilesPath, &nodes); err != nil {
		return nil, err
	}
	out := make([]Profile, 0, len(nodes))
	for id, p := range nodes {
		p.ID = types.ID(id)
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// CASStatus transitions an application's status inside a store transaction,
// so two admins racing on the same application cannot both win. mutate runs
// on the post-transition record before it is written back.
func (s *Store) CASStatus(ctx context.Context, id types.ID, from, to ApplicationStatus, mutate func(*Application)) (*Application, error) {
	ctx, cancel := s.deadline(ctx)
	defer cancel()

	var out *Application
	err := s.db.Transaction(ctx, applicationsPath+"/"+string(id), func(decode func(v any) error) (any, error) {
		var app *Application
		if err := decode(&app); err != nil {
			return nil, err
		}
		if app == nil {
			return nil, ErrNotFound
		}
		if app.Status != from || !CanTransition(from, to) {
			return nil, ErrInvalidState
		}
		app.Status = to
		if mutate != nil {
			mutate(app)
		}
		app.ID = id
		out = app
		return app, nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ApplyApprovalEffects lands the four approval side effects as one atomic
// multi-location update: profile, status record, role grant, notification.
func (s *Store) ApplyApprovalEffects(ctx context.Context, id types.ID, profile *Profile, status *Status, notif *Notification) error {
	ctx, cancel := s.deadline(ctx)
	defer cancel()

	return s.db.Update(ctx, "/", map[string]any{
		profilesPath + "/" + string(id):                              profile,
		statusPath + "/" + string(id):                                status,
		rolesPath + "/" + string(id) + "/driver":                     true,
		notificationsPath + "/" + string(id) + "/" + notifKey(notif): notif,
	})
}

// RevertApproval undoes the Pending→Approved flip after a failed fan-out.
func (s *Store) RevertApproval(ctx context.Context, id types.ID) error {
	ctx, cancel := s.deadline(ctx)
	defer cancel()
	return s.db.Update(ctx, applicationsPath+"/"+string(id), map[string]any{
		"status":     string(StatusPending),
		"approvedAt": nil,
	})
}

// RevertRejection undoes the Pending→Rejected flip after a failed notification.
func (s *Store) RevertRejection(ctx context.Context, id types.ID) error {
	ctx, cancel := s.deadline(ctx)
	defer cancel()
	return s.db.Update(ctx, applicationsPath+"/"+string(id), map[string]any{
		"status":     string(StatusPending),
		"rejectedAt": nil,
	})
}

func (s *Store) PushNotification(ctx context.Context, id types.ID, notif *Notification) error {
	ctx, cancel := s.deadline(ctx)
	defer cancel()
	return s.db.Set(ctx, notificationsPath+"/"+string(id)+"/"+notifKey(notif), notif)
}

// CreateManual writes an admin-created driver across all four paths at once,
// already in Approved state.
func (s *Store) CreateManual(ctx context.Context, app *Application, profile *Profile, status *Status) error {
	ctx, cancel := s.deadline(ctx)
	defer cancel()

	id := string(app.ID)
	return s.db.Update(ctx, "/", map[string]any{
		applicationsPath + "/" + id:      app,
		profilesPath + "/" + id:          profile,
		statusPath + "/" + id:            status,
		rolesPath + "/" + id + "/driver": true,
	})
}

// ClearApplications empties the whole application collection.
func (s *Store) ClearApplications(ctx context.Context) error {
	ctx, cancel := s.deadline(ctx)
	defer cancel()
	return s.db.Set(ctx, applicationsPath, nil)
}

func (s *Store) GetNotifications(ctx context.Context, id types.ID) (map[string]Notification, error) {
	var nodes map[string]Notification
	if err := s.db.Get(ctx, notificationsPath+"/"+string(id), &nodes); err != nil {
		return nil, err
	}
	return nodes, nil
}

func (s *Store) HasRole(ctx context.Context, id types.ID, role string) (bool, error) {
	var ok bool
	if err := s.db.Get(ctx, rolesPath+"/"+string(id)+"/"+role, &ok); err != nil {
		return false, err
	}
	return ok, nil
}

func notifKey(n *Notification) string {
	return strconv.FormatInt(int64(n.CreatedAt), 10)
}

func sortedApplications(nodes map[string]Application) []Application {
	out := make([]Application, 0, len(nodes))
	for id, app := range nodes {
		app.ID = types.ID(id)
		out = append(out, app)
	}
	// Newest submissions first; the key breaks ties deterministically.
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt != out[j].CreatedAt {
			return out[i].CreatedAt > out[j].CreatedAt
		}
		return out[i].ID < out[j].ID
	})
	return out
}
