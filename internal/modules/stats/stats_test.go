// README: Dashboard counter tests over the in-memory tree.
package stats

import (
	"context"
	"testing"
	"time"

	"luba/internal/config"
	"luba/internal/logger"
	"luba/internal/modules/booking"
	"luba/internal/modules/driver"
	"luba/internal/modules/session"
	"luba/internal/rtdb"
	"luba/internal/types"
)

func TestDashboardCounts(t *testing.T) {
	db := rtdb.NewMemory()
	svc := newTestService(db)
	ctx := context.Background()

	seedApplication(t, db, "app1", driver.StatusPending)
	seedApplication(t, db, "app2", driver.StatusPending)
	seedApplication(t, db, "app3", driver.StatusRejected)
	seedDriver(t, db, "drv1", true, 19*time.Hour)
	seedDriver(t, db, "drv2", true, 2*time.Hour)
	seedDriver(t, db, "drv3", false, 0)
	seedDriver(t, db, "drv4", true, 21*time.Hour)
	seedBooking(t, db, "b1", booking.StatusPending)
	seedBooking(t, db, "b2", booking.StatusPending)
	seedBooking(t, db, "b3", booking.StatusCompleted)

	d, err := svc.Dashboard(ctx)
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if d.ApplicationsByStatus["Pending"] != 2 || d.ApplicationsByStatus["Rejected"] != 1 {
		t.Errorf("unexpected application counts: %v", d.ApplicationsByStatus)
	}
	if d.ApprovedDrivers != 4 {
		t.Errorf("approved drivers = %d, want 4", d.ApprovedDrivers)
	}
	if d.OnlineDrivers != 2 {
		t.Errorf("online drivers = %d, want 2", d.OnlineDrivers)
	}
	if d.ApproachingLimit != 1 {
		t.Errorf("approaching limit = %d, want 1", d.ApproachingLimit)
	}
	if d.BookingsByStatus["pending"] != 2 || d.BookingsByStatus["completed"] != 1 {
		t.Errorf("unexpected booking counts: %v", d.BookingsByStatus)
	}
	// drv4 crossed the cutoff and was forced offline during evaluation
	if d.ForcedOffline != 1 {
		t.Errorf("forced offline = %d, want 1", d.ForcedOffline)
	}
	if d.GeneratedAt == "" {
		t.Error("expected generatedAt stamp")
	}
}

func TestDashboardEmptyTrees(t *testing.T) {
	db := rtdb.NewMemory()
	svc := newTestService(db)

	d, err := svc.Dashboard(context.Background())
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if len(d.ApplicationsByStatus) != 0 || d.ApprovedDrivers != 0 || d.OnlineDrivers != 0 {
		t.Fatalf("expected zero counters, got %+v", d)
	}
	if len(d.BookingsByStatus) != 0 {
		t.Fatalf("expected empty booking counts, got %v", d.BookingsByStatus)
	}
}

// newTestService wires real services over the in-memory tree with caching
// disabled (nil redis).
func newTestService(db rtdb.Database) *Service {
	log := logger.Nop()
	drivers := driver.NewService(driver.NewStore(db, 0), nil, log)
	sessions := session.NewService(session.NewStore(db, 0), nil, log, config.SessionConfig{})
	bookings := booking.NewService(booking.NewStore(db, 0), nil, nil, log)
	return NewService(drivers, sessions, bookings, nil, log)
}

func seedApplication(t *testing.T, db rtdb.Database, id types.ID, status driver.ApplicationStatus) {
	t.Helper()
	err := db.Set(context.Background(), "driverApplications/"+string(id), map[string]any{
		"fullName":  "Driver " + string(id),
		"status":    string(status),
		"createdAt": "2025-06-01T10:00:00Z",
	})
	if err != nil {
		t.Fatalf("seed application: %v", err)
	}
}

func seedDriver(t *testing.T, db rtdb.Database, id types.ID, online bool, elapsed time.Duration) {
	t.Helper()
	ctx := context.Background()
	if err := db.Set(ctx, "drivers/"+string(id), map[string]any{
		"fullName":    "Driver " + string(id),
		"vehicleType": "Toyota Hilux",
	}); err != nil {
		t.Fatalf("seed profile: %v", err)
	}
	if err := db.Set(ctx, "driverStatus/"+string(id), map[string]any{
		"isOnline":         online,
		"status":           "available",
		"lastStatusChange": time.Now().Add(-elapsed).UnixMilli(),
	}); err != nil {
		t.Fatalf("seed status: %v", err)
	}
}

func seedBooking(t *testing.T, db rtdb.Database, id types.ID, status booking.Status) {
	t.Helper()
	err := db.Set(context.Background(), "bookings/"+string(id), map[string]any{
		"customerId": "cust1",
		"pickup":     "12 Long St, Cape Town",
		"dropoff":    "1 Beach Rd, Sea Point",
		"status":     string(status),
		"createdAt":  "2025-06-01T10:00:00Z",
	})
	if err != nil {
		t.Fatalf("seed booking: %v", err)
	}
}
