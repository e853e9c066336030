// README: Session monitor tests: cutoff, boundaries, manual override.
package session

import (
	"context"
	"testing"
	"time"

	"luba/internal/config"
	"luba/internal/logger"
	"luba/internal/modules/driver"
	"luba/internal/rtdb"
	"luba/internal/types"
)

func TestEvaluateForcesOfflinePastLimit(t *testing.T) {
	db := rtdb.NewMemory()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestService(db, now)
	ctx := context.Background()

	seedDriver(t, db, "d1", "Sam Wilson")
	seedOnline(t, db, "d1", now.Add(-21*time.Hour))

	active, err := svc.Evaluate(ctx)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if len(active) != 0 {
		t.Fatalf("expected empty active set, got %+v", active)
	}

	st := mustGetStatus(t, db, "d1")
	if st.IsOnline {
		t.Fatal("expected isOnline false after cutoff")
	}
	if !st.ForcedOffline {
		t.Fatal("expected forcedOffline true")
	}
	if st.ForcedOfflineReason != "Exceeded 20 hours of continuous driving" {
		t.Fatalf("unexpected reason: %q", st.ForcedOfflineReason)
	}
	if st.LastStatusChange != types.MillisFrom(now) {
		t.Fatalf("expected lastStatusChange reset to now, got %d", st.LastStatusChange)
	}

	// Next evaluation must not resurface the driver.
	active, err = svc.Evaluate(ctx)
	if err != nil {
		t.Fatalf("second evaluate: %v", err)
	}
	if len(active) != 0 {
		t.Fatalf("expected driver excluded after cutoff, got %+v", active)
	}
}

func TestEvaluateBoundaries(t *testing.T) {
	db := rtdb.NewMemory()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestService(db, now)
	ctx := context.Background()

	cases := []struct {
		id      types.ID
		hours   float64
		active  bool
		flagged bool
	}{
		{"d1", 17.99, true, false},
		{"d2", 18.00, true, false},
		{"d3", 20.00, true, true},
		{"d4", 20.01, false, false},
	}
	for _, tc := range cases {
		seedDriver(t, db, tc.id, "Driver "+string(tc.id))
		seedOnline(t, db, tc.id, now.Add(-time.Duration(tc.hours*float64(time.Hour))))
	}

	active, err := svc.Evaluate(ctx)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}

	byID := map[types.ID]ActiveDriver{}
	for _, a := range active {
		byID[a.ID] = a
	}
	for _, tc := range cases {
		a, ok := byID[tc.id]
		if ok != tc.active {
			t.Errorf("%s at %.2fh: active=%v, want %v", tc.id, tc.hours, ok, tc.active)
			continue
		}
		if ok && a.ApproachingLimit != tc.flagged {
			t.Errorf("%s at %.2fh: approachingLimit=%v, want %v", tc.id, tc.hours, a.ApproachingLimit, tc.flagged)
		}
	}

	if st := mustGetStatus(t, db, "d4"); !st.ForcedOffline {
		t.Error("expected d4 forced offline past the limit")
	}
}

func TestEvaluateReportsHoursOnline(t *testing.T) {
	db := rtdb.NewMemory()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestService(db, now)

	seedDriver(t, db, "d1", "Alex Morgan")
	seedOnline(t, db, "d1", now.Add(-5*time.Hour))

	active, err := svc.Evaluate(context.Background())
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if len(active) != 1 {
		t.Fatalf("expected 1 active driver, got %d", len(active))
	}
	a := active[0]
	if a.FullName != "Alex Morgan" {
		t.Errorf("expected profile join, got %+v", a)
	}
	if a.HoursOnline < 4.999 || a.HoursOnline > 5.001 {
		t.Errorf("hoursOnline = %v, want ~5", a.HoursOnline)
	}
	if a.ApproachingLimit {
		t.Error("unexpected approaching-limit flag at 5h")
	}
}

func TestEvaluateExcludesUnapprovedDrivers(t *testing.T) {
	db := rtdb.NewMemory()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestService(db, now)

	// Online status but no profile under drivers/ (never approved).
	seedOnline(t, db, "ghost", now.Add(-2*time.Hour))

	active, err := svc.Evaluate(context.Background())
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if len(active) != 0 {
		t.Fatalf("expected empty active set, got %+v", active)
	}
}

func TestEvaluateIgnoresOfflineDrivers(t *testing.T) {
	db := rtdb.NewMemory()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestService(db, now)
	ctx := context.Background()

	seedDriver(t, db, "d1", "Offline Olive")
	st := driver.Status{IsOnline: false, LastStatusChange: types.MillisFrom(now.Add(-30 * time.Hour))}
	if err := db.Set(ctx, "driverStatus/d1", st); err != nil {
		t.Fatalf("seed status: %v", err)
	}

	active, err := svc.Evaluate(ctx)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if len(active) != 0 {
		t.Fatalf("expected empty active set, got %+v", active)
	}
	// An offline driver is never force-transitioned, however stale the stamp.
	if got := mustGetStatus(t, db, "d1"); got.ForcedOffline {
		t.Error("offline driver must not be forced offline")
	}
}

func TestForceOfflineManual(t *testing.T) {
	db := rtdb.NewMemory()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestService(db, now)
	ctx := context.Background()

	seedDriver(t, db, "d1", "Sam Wilson")
	seedOnline(t, db, "d1", now.Add(-2*time.Hour))

	cmd := ForceOfflineCommand{DriverID: "d1", Reason: "Vehicle inspection overdue", Actor: "admin1"}
	if err := svc.ForceOffline(ctx, cmd); err != nil {
		t.Fatalf("force offline: %v", err)
	}

	st := mustGetStatus(t, db, "d1")
	if st.IsOnline || !st.ForcedOffline {
		t.Fatalf("expected forced offline, got %+v", st)
	}
	if st.ForcedOfflineReason != "Vehicle inspection overdue" {
		t.Fatalf("unexpected reason: %q", st.ForcedOfflineReason)
	}

	if err := svc.ForceOffline(ctx, ForceOfflineCommand{DriverID: "missing"}); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

// --- helpers ---

func newTestService(db rtdb.Database, now time.Time) *Service {
	svc := NewService(NewStore(db, time.Second), nil, logger.Nop(), config.SessionConfig{TickSeconds: 1})
	svc.now = func() time.Time { return now }
	return svc
}

func seedDriver(t *testing.T, db rtdb.Database, id types.ID, name string) {
	t.Helper()
	p := driver.Profile{FullName: name, VehicleType: "Toyota Hilux"}
	if err := db.Set(context.Background(), "drivers/"+string(id), p); err != nil {
		t.Fatalf("seed profile: %v", err)
	}
}

func seedOnline(t *testing.T, db rtdb.Database, id types.ID, since time.Time) {
	t.Helper()
	st := driver.Status{IsOnline: true, Status: "available", LastStatusChange: types.MillisFrom(since)}
	if err := db.Set(context.Background(), "driverStatus/"+string(id), st); err != nil {
		t.Fatalf("seed status: %v", err)
	}
}

func mustGetStatus(t *testing.T, db rtdb.Database, id types.ID) *driver.Status {
	t.Helper()
	var st *driver.Status
	if err := db.Get(context.Background(), "driverStatus/"+string(id), &st); err != nil {
		t.Fatalf("get status: %v", err)
	}
	if st == nil {
		t.Fatalf("status %s missing", id)
	}
	return st
}
