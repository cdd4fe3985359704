package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/EltunLTN/autoparts-api/auth"
	"github.com/EltunLTN/autoparts-api/config"
	"github.com/EltunLTN/autoparts-api/database"
	"github.com/EltunLTN/autoparts-api/events"
	"github.com/EltunLTN/autoparts-api/middleware"
	"github.com/EltunLTN/autoparts-api/notify"
	"github.com/EltunLTN/autoparts-api/payment"
	"github.com/EltunLTN/autoparts-api/routes"
	"github.com/EltunLTN/autoparts-api/uploads"
	"github.com/EltunLTN/autoparts-api/valuation"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

const (
	backupHour      = 2
	guestPurgeEvery = 6 * time.Hour
)

func main() {
	log.Println("✅ Starting application...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("❌ DB connection failed: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("❌ AutoMigrate failed: %v", err)
	}
	if cfg.CreateAdmin {
		if err := database.SeedAdmin(db, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			log.Fatalf("❌ Admin seed failed: %v", err)
		}
	}

	auth.Configure(cfg.JWTSecret, cfg.JWTTTL())
	if err := middleware.RegisterValidators(); err != nil {
		log.Fatalf("❌ Validator setup failed: %v", err)
	}

	deps := routes.Deps{DB: db, Config: cfg, Hub: events.NewHub()}
	publishers := events.Multi{deps.Hub}

	if cfg.StripeEnabled() {
		deps.Stripe = payment.NewStripeGateway(cfg.StripeSecretKey, cfg.Currency, cfg.AppURL)
		log.Println("💳 Stripe checkout enabled")
	}
	if cfg.PayTREnabled() {
		deps.PayTR = payment.NewPayTRClient(payment.PayTRConfig{
			MerchantID: cfg.PayTRMerchantID,
			Key:        cfg.PayTRKey,
			Salt:       cfg.PayTRSalt,
			APIURL:     cfg.PayTRAPIURL,
			TestMode:   cfg.PayTRTestMode,
			Currency:   cfg.Currency,
			AppURL:     cfg.AppURL,
		}, &http.Client{Timeout: 20 * time.Second})
		log.Println("💳 PayTR checkout enabled")
	}
	if cfg.RabbitURL != "" {
		rabbit, err := events.NewRabbitPublisher(cfg.RabbitURL, cfg.EventsExchange)
		if err != nil {
			log.Printf("⚠️ RabbitMQ unavailable, events stay local: %v", err)
		} else {
			defer rabbit.Close()
			publishers = append(publishers, rabbit)
			log.Printf("📨 Publishing events to exchange %s", cfg.EventsExchange)
		}
	}
	deps.Events = publishers
	if cfg.ResendAPIKey != "" && cfg.ContactInbox != "" {
		deps.Mailer = notify.NewResendMailer(cfg.ResendAPIKey, cfg.MailFrom, cfg.ContactInbox)
	}
	if cfg.FirebaseCredentialsJSON != "" {
		client, err := auth.NewFirebaseVerifier(ctx, cfg.FirebaseCredentialsJSON, cfg.FirebaseProjectID)
		if err != nil {
			log.Printf("⚠️ Google sign-in disabled: %v", err)
		} else {
			deps.Google = client
		}
	}

	tables, err := valuation.LoadTables(cfg.ValuationTables)
	if err != nil {
		log.Fatalf("❌ Valuation tables: %v", err)
	}
	var predictor valuation.Predictor
	if cfg.ValuationScript != "" {
		predictor = valuation.Script{Interpreter: cfg.ValuationPython, Path: cfg.ValuationScript, Timeout: cfg.ValuationTimeout()}
	}
	deps.Estimator = valuation.NewEstimator(tables, predictor)

	r := gin.Default()
	r.MaxMultipartMemory = 32 << 20

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: cfg.CORSCredentials(),
		MaxAge:           12 * time.Hour,
	}))

	// Serve uploaded images
	r.Static("/uploads", cfg.UploadDir)

	routes.SetupRoutes(r, deps)

	if cfg.BackupDir != "" {
		go uploads.StartDailyBackup(ctx, cfg.UploadDir, cfg.BackupDir, time.Duration(cfg.BackupKeepDay)*24*time.Hour, backupHour, 0)
	}
	go purgeGuests(ctx, deps)

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Printf("🚀 Server running on port %s...", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
	log.Println("👋 Server stopped")
}

// purgeGuests drops expired guest sessions and their carts.
func purgeGuests(ctx context.Context, d routes.Deps) {
	ticker := time.NewTicker(guestPurgeEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n, err := auth.PurgeExpiredGuests(d.DB, now); err != nil {
				log.Printf("❌ Guest purge failed: %v", err)
			} else if n > 0 {
				log.Printf("🧹 Removed %d expired guests", n)
			}
		}
	}
}
