package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/chandamvula/pharmalink-backend/internal/modules/auth"
	"github.com/chandamvula/pharmalink-backend/internal/modules/medicine"
	"github.com/chandamvula/pharmalink-backend/internal/modules/notification"
	"github.com/chandamvula/pharmalink-backend/internal/modules/order"
	"github.com/chandamvula/pharmalink-backend/internal/modules/pharmacy"
	"github.com/chandamvula/pharmalink-backend/internal/modules/prescription"
	"github.com/chandamvula/pharmalink-backend/internal/modules/rating"
	"github.com/chandamvula/pharmalink-backend/internal/modules/user"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	if err := godotenv.Load(); err != nil {
		logger.Warn("no .env file found, relying on the environment")
	}

	db, err := sql.Open("postgres", os.Getenv("DATABASE_URL"))
	if err != nil {
		logger.WithError(err).Fatal("opening database")
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.WithError(err).Fatal("pinging database")
	}
	logger.Info("connected to the database")

	// ── Router ──────────────────────────────────────────────
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	// ── Phase 1: Notifications ──────────────────────────────
	userRepo := user.NewPostgresRepository(db)
	pharmacyRepo := pharmacy.NewPostgresRepository(db)

	notificationRepo := notification.NewPostgresRepository(db)
	dispatcher := notification.NewDispatcher(notificationRepo, buildMailer(logger), addressBook{
		users:      userRepo,
		pharmacies: pharmacyRepo,
	}, logger)
	go dispatcher.Run(context.Background())

	notificationService := notification.NewService(notificationRepo)
	notification.NewHandler(notificationService).RegisterRoutes(router)

	// ── Phase 2: Identity & Catalog ─────────────────────────
	medicineRepo := medicine.NewPostgresRepository(db)

	medicineService := medicine.NewService(medicineRepo, userRepo, dispatcher)
	userService := user.NewService(userRepo, medicineService)
	user.NewHandler(userService).RegisterRoutes(router)

	pharmacyService := pharmacy.NewService(pharmacyRepo, medicineService, userRepo)
	pharmacy.NewHandler(pharmacyService).RegisterRoutes(router)
	medicine.NewHandler(medicineService).RegisterRoutes(router)

	authService := auth.NewService(user.Directory{Repo: userRepo}, pharmacy.Directory{Repo: pharmacyRepo})
	auth.NewHandler(authService).RegisterRoutes(router)

	// ── Phase 3: Order Lifecycle ────────────────────────────
	orderRepo := order.NewPostgresRepository(db)
	orderService := order.NewService(orderRepo, medicineService, userService, dispatcher)
	order.NewHandler(orderService).RegisterRoutes(router)

	// ── Phase 4: Prescription Requests ──────────────────────
	prescriptionRepo := prescription.NewPostgresRepository(db)
	prescriptionService := prescription.NewService(prescriptionRepo, medicineService, pharmacyService, orderService, dispatcher)
	prescription.NewHandler(prescriptionService).RegisterRoutes(router)

	// ── Phase 5: Ratings ────────────────────────────────────
	ratingRepo := rating.NewPostgresRepository(db)
	ratingService := rating.NewService(ratingRepo, orderService, pharmacyService)
	rating.NewHandler(ratingService).RegisterRoutes(router)

	// ── Expiry sweep ────────────────────────────────────────
	scheduler := cron.New()
	if _, err := scheduler.AddFunc("0 9 * * *", func() {
		n, err := medicineService.SweepExpired(context.Background())
		if err != nil {
			logger.WithError(err).Error("expiry sweep failed")
			return
		}
		logger.WithField("expired", n).Info("expiry sweep complete")
	}); err != nil {
		logger.WithError(err).Fatal("scheduling expiry sweep")
	}
	scheduler.Start()
	defer scheduler.Stop()

	// ── Start Server ────────────────────────────────────────
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}
	logger.WithField("port", port).Info("pharmalink API server starting")
	logger.Fatal(http.ListenAndServe(":"+port, router))
}

// addressBook resolves notification targets to email addresses across the two
// account populations.
type addressBook struct {
	users      user.Repository
	pharmacies pharmacy.Repository
}

func (b addressBook) EmailForTarget(ctx context.Context, role, targetID string) (string, error) {
	if role == "pharmacy" {
		p, err := b.pharmacies.GetPharmacyByID(ctx, targetID)
		if err != nil {
			return "", err
		}
		return p.Email, nil
	}
	u, err := b.users.GetUserByID(ctx, targetID)
	if err != nil {
		return "", err
	}
	return u.Email, nil
}

func buildMailer(logger *logrus.Logger) notification.Mailer {
	host := os.Getenv("SMTP_HOST")
	if host == "" {
		logger.Warn("SMTP_HOST not set, email delivery disabled")
		return nil
	}
	port, err := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if err != nil {
		port = 587
	}
	return notification.NewSMTPMailer(host, port, os.Getenv("SMTP_USERNAME"), os.Getenv("SMTP_PASSWORD"))
}
