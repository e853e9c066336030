// README: Entry point; loads config, wires services, starts HTTP server and the session monitor.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"luba/internal/config"
	httptransport "luba/internal/http"
	"luba/internal/infra"
	"luba/internal/logger"
	"luba/internal/maps"
	"luba/internal/modules/audit"
	"luba/internal/modules/booking"
	"luba/internal/modules/driver"
	"luba/internal/modules/session"
	"luba/internal/modules/stats"
	"luba/internal/rtdb"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	appLog := logger.New("luba-admin")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Firebase.ProjectID == "" {
		log.Fatal("LUBA_FIREBASE_PROJECT_ID is required")
	}
	app, err := infra.NewFirebaseApp(ctx, cfg.Firebase.ProjectID, cfg.Firebase.CredentialsFile, cfg.Firebase.DatabaseURL)
	if err != nil {
		log.Fatalf("firebase init: %v", err)
	}
	verifier, err := infra.NewFirebaseVerifier(ctx, app)
	if err != nil {
		log.Fatalf("firebase auth init: %v", err)
	}
	rtdbClient, err := infra.NewRTDBClient(ctx, app)
	if err != nil {
		log.Fatalf("realtime database init: %v", err)
	}
	database := rtdb.NewFirebase(rtdbClient)

	var auditStore *audit.Store
	if cfg.DB.DSN != "" {
		if err := infra.Migrate(cfg.DB.DSN); err != nil {
			log.Fatalf("migrate: %v", err)
		}
		dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
		if err != nil {
			log.Fatal(err)
		}
		defer dbPool.Close()
		auditStore = audit.NewStore(dbPool)
	}

	redisClient := infra.NewRedis(cfg.Redis.Addr)

	var estimator booking.Estimator
	if cfg.Maps.APIKey != "" {
		routeSvc, err := maps.NewRouteService(cfg.Maps.APIKey)
		if err != nil {
			log.Fatalf("maps init: %v", err)
		}
		estimator = routeSvc
	}

	// a nil sink disables auditing in every service
	var (
		driverAudit  driver.AuditLog
		sessionAudit session.AuditLog
		bookingAudit booking.AuditLog
	)
	if auditStore != nil {
		driverAudit, sessionAudit, bookingAudit = auditStore, auditStore, auditStore
	}

	driverStore := driver.NewStore(database, cfg.Store.WriteTimeout)
	driverSvc := driver.NewService(driverStore, driverAudit, logger.New("driver"))

	sessionStore := session.NewStore(database, cfg.Store.WriteTimeout)
	sessionSvc := session.NewService(sessionStore, sessionAudit, logger.New("session"), cfg.Session)

	bookingStore := booking.NewStore(database, cfg.Store.WriteTimeout)
	bookingSvc := booking.NewService(bookingStore, estimator, bookingAudit, logger.New("booking"))

	statsSvc := stats.NewService(driverSvc, sessionSvc, bookingSvc, redisClient, logger.New("stats"))

	handler := httptransport.NewRouter(httptransport.RouterDeps{
		Driver:   driverSvc,
		Session:  sessionSvc,
		Booking:  bookingSvc,
		Stats:    statsSvc,
		Audit:    auditStore,
		Verifier: verifier,
		Log:      appLog,
	})

	server := &http.Server{Addr: cfg.HTTP.Addr, Handler: handler}

	go sessionSvc.Run(ctx)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	appLog.Info("listening", logger.String("addr", cfg.HTTP.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}
