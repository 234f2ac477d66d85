package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/roshini1406/job-tracker1/internal/analytics"
	"github.com/roshini1406/job-tracker1/internal/api"
	"github.com/roshini1406/job-tracker1/internal/auth"
	"github.com/roshini1406/job-tracker1/internal/circuitbreaker"
	"github.com/roshini1406/job-tracker1/internal/config"
	"github.com/roshini1406/job-tracker1/internal/cron"
	"github.com/roshini1406/job-tracker1/internal/mailer"
	"github.com/roshini1406/job-tracker1/internal/metrics"
	"github.com/roshini1406/job-tracker1/internal/notify"
	"github.com/roshini1406/job-tracker1/internal/scanner"
	"github.com/roshini1406/job-tracker1/internal/store/postgres"
	"github.com/roshini1406/job-tracker1/internal/transport/channel"

	_ "github.com/lib/pq"
)

// Build-time variables set via -ldflags
var (
	version = "dev"
	commit  = "unknown"
)

const (
	exitSuccess       = 0
	exitRuntimeError  = 1
	exitInvalidConfig = 2
)

func main() {
	// Missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(exitRuntimeError)
	}

	cmd := os.Args[1]

	switch cmd {
	case "serve":
		os.Exit(runServe())
	case "validate":
		os.Exit(runValidate())
	case "config":
		os.Exit(runConfig())
	case "version":
		os.Exit(runVersion())
	case "--help", "-h", "help":
		printUsage()
		os.Exit(exitSuccess)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", cmd)
		printUsage()
		os.Exit(exitRuntimeError)
	}
}

func printUsage() {
	fmt.Println(`jobtracker - job application tracker with reminder mail

Usage:
  jobtracker <command>

Commands:
  serve      Start the API server and reminder scanner
  validate   Validate configuration (no connections made)
  config     Print effective configuration as JSON (secrets masked)
  version    Print version information

Environment Variables:
  DATABASE_URL              PostgreSQL connection string (required)
  REDIS_ADDR                Redis address for auth sessions and analytics
  AUTH_STATIC_TOKENS        Dev token table "token:user_uuid:email,..." (used when REDIS_ADDR is unset)
  HTTP_ADDR                 HTTP server address (default: ":8080", PORT honored)

  REMINDER_CRON             Reminder scan schedule (default: "0 9 * * *")
  REMINDER_TZ               Timezone for the scan window (default: "Local")

  SMTP_ADDR                 SMTP relay host:port (unset = log-only sender)
  SMTP_USER                 SMTP username
  SMTP_PASS                 SMTP password
  SMTP_FROM                 From address for reminder mail
  MAIL_TIMEOUT              Per-send timeout (default: "30s")
  MAILER_WORKERS            Concurrent mail workers (default: "4")
  MAILER_DRAIN_TIMEOUT      Mailer event drain timeout (default: "30s")
  EVENTBUS_BUFFER_SIZE      Reminder event buffer size (default: "100")
  CIRCUIT_BREAKER_THRESHOLD Failures before the relay circuit opens, 0 disables (default: "5")
  CIRCUIT_BREAKER_COOLDOWN  Open-circuit cooldown (default: "2m")

  DB_OP_TIMEOUT             Database operation timeout (default: "5s")
  DB_MAX_OPEN_CONNS         Max open database connections (default: "25")
  DB_MAX_IDLE_CONNS         Max idle database connections (default: "5")
  DB_CONN_MAX_LIFETIME      Max connection lifetime (default: "30m")
  DB_CONN_MAX_IDLE_TIME     Max connection idle time (default: "5m")

  HTTP_SHUTDOWN_TIMEOUT     Graceful HTTP shutdown timeout (default: "10s")

  METRICS_ENABLED           Enable Prometheus metrics (default: "false")
  METRICS_PATH              Metrics endpoint path (default: "/metrics")
  METRICS_PORT              Metrics server port (default: "9090")
  ANALYTICS_RETENTION       Reminder counter retention (default: "720h")`)
}

func runServe() int {
	cfg := config.Load()

	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		return exitInvalidConfig
	}

	// Connect to PostgreSQL
	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open database: %v\n", err)
		return exitRuntimeError
	}
	defer db.Close()

	// Configure connection pool
	db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	db.SetMaxIdleConns(cfg.DBMaxIdleConns)
	db.SetConnMaxLifetime(cfg.DBConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.DBConnMaxIdleTime)

	log.Printf("jobtracker: db pool configured (max_open=%d, max_idle=%d, max_lifetime=%s, max_idle_time=%s)",
		cfg.DBMaxOpenConns, cfg.DBMaxIdleConns, cfg.DBConnMaxLifetime, cfg.DBConnMaxIdleTime)

	if err := db.Ping(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect to database: %v\n", err)
		return exitRuntimeError
	}

	store := postgres.New(db, cfg.DBOpTimeout)

	migrateCtx, migrateCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer migrateCancel()
	if err := store.Migrate(migrateCtx); err != nil {
		fmt.Fprintf(os.Stderr, "failed to migrate schema: %v\n", err)
		return exitRuntimeError
	}

	schedule, err := cron.ParseSchedule(cfg.ReminderCron, cfg.ReminderTZ)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid reminder schedule: %v\n", err)
		return exitInvalidConfig
	}
	loc, err := time.LoadLocation(cfg.ReminderTZ)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid reminder timezone: %v\n", err)
		return exitInvalidConfig
	}

	// Shared Redis client for auth sessions and analytics counters
	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr: cfg.RedisAddr,
		})
		defer redisClient.Close()
	}

	// Initialize metrics sink (optional)
	var metricsSink *metrics.PrometheusSink
	var metricsServer *http.Server

	if cfg.MetricsEnabled {
		metricsSink = metrics.NewPrometheusSink(prometheus.DefaultRegisterer)
		log.Printf("jobtracker: metrics enabled (port=%s, path=%s)", cfg.MetricsPort, cfg.MetricsPath)

		// Start metrics HTTP server on separate port
		metricsMux := http.NewServeMux()
		metricsMux.Handle(cfg.MetricsPath, promhttp.Handler())
		metricsServer = &http.Server{
			Addr:    ":" + cfg.MetricsPort,
			Handler: metricsMux,
		}
		go func() {
			log.Printf("jobtracker: metrics server listening on :%s", cfg.MetricsPort)
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("jobtracker: metrics server error: %v", err)
			}
		}()
	} else {
		log.Println("jobtracker: METRICS_ENABLED not set; metrics disabled")
	}

	// Create event bus with optional metrics
	var busOpts []channel.Option
	if metricsSink != nil {
		busOpts = append(busOpts, channel.WithMetrics(metricsSink))
	}
	bus := channel.NewEventBus(cfg.EventBusBufferSize, busOpts...)

	scan := scanner.New(scanner.Config{}, store, bus, schedule, loc)
	if metricsSink != nil {
		scan = scan.WithMetrics(metricsSink)
	}
	if redisClient != nil {
		scan = scan.WithAnalytics(analytics.NewRedisSink(redisClient, cfg.AnalyticsRetention))
		log.Printf("jobtracker: analytics enabled (redis=%s)", cfg.RedisAddr)
	} else {
		log.Println("jobtracker: REDIS_ADDR not set; analytics disabled")
	}

	// SMTP sender, or a log-only sender when no relay is configured.
	var sender notify.Sender
	if cfg.SMTPAddr != "" {
		smtpSender, err := notify.NewSMTPSender(cfg.SMTPAddr, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid smtp config: %v\n", err)
			return exitInvalidConfig
		}
		sender = smtpSender
		log.Printf("jobtracker: smtp sender configured (addr=%s, from=%s)", cfg.SMTPAddr, cfg.SMTPFrom)
	} else {
		sender = notify.NewLogSender()
		log.Println("jobtracker: SMTP_ADDR not set; reminder mail is logged, not sent")
	}

	mail := mailer.New(mailer.Config{
		Workers:      cfg.MailerWorkers,
		SendTimeout:  cfg.MailTimeout,
		DrainTimeout: cfg.MailerDrainTimeout,
	}, store, sender)
	if cfg.CircuitBreakerThreshold > 0 {
		mail = mail.WithBreaker(circuitbreaker.New(cfg.CircuitBreakerThreshold, cfg.CircuitBreakerCooldown))
	}
	if metricsSink != nil {
		mail = mail.WithMetrics(metricsSink)
	}

	// Token validation against Redis sessions, or the static dev table.
	var validator auth.TokenValidator
	if redisClient != nil {
		validator = auth.NewRedisTokenValidator(redisClient)
	} else {
		validator, err = auth.NewStaticTokenValidator(cfg.AuthStaticTokens)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid AUTH_STATIC_TOKENS: %v\n", err)
			return exitInvalidConfig
		}
		log.Println("jobtracker: REDIS_ADDR not set; using static dev tokens")
	}

	apiHandler := api.NewHandler(store, validator).WithHealthChecker(db)

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: apiHandler,
	}

	go func() {
		log.Printf("jobtracker: http server listening on %s", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("jobtracker: http server error: %v", err)
		}
	}()

	// Separate contexts for scanner and mailer to enable ordered shutdown.
	scannerCtx, cancelScanner := context.WithCancel(context.Background())
	mailerCtx, cancelMailer := context.WithCancel(context.Background())

	var scannerWg sync.WaitGroup
	var mailerWg sync.WaitGroup

	scannerWg.Add(1)
	go func() {
		defer scannerWg.Done()
		scan.Run(scannerCtx)
	}()

	mailerWg.Add(1)
	go func() {
		defer mailerWg.Done()
		mail.Run(mailerCtx, bus.Channel())
	}()

	log.Printf("jobtracker: started (cron=%q, tz=%s, http=%s)", cfg.ReminderCron, cfg.ReminderTZ, cfg.HTTPAddr)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	received := <-sig

	log.Printf("jobtracker: received signal %v, shutting down", received)

	// Phase 1: Stop scanner (no new events emitted)
	log.Println("jobtracker: stopping scanner...")
	cancelScanner()
	scannerWg.Wait()
	log.Println("jobtracker: scanner stopped")

	// Phase 2: Stop mailer (will drain buffered events before returning)
	log.Println("jobtracker: stopping mailer (draining events)...")
	cancelMailer()
	mailerWg.Wait()
	log.Println("jobtracker: mailer stopped")

	// Phase 3: Stop HTTP server with graceful shutdown
	log.Println("jobtracker: stopping http server...")
	httpShutdownCtx, httpShutdownCancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer httpShutdownCancel()
	if err := httpServer.Shutdown(httpShutdownCtx); err != nil {
		log.Printf("jobtracker: http server shutdown error: %v", err)
	}
	log.Println("jobtracker: http server stopped")

	// Phase 4: Stop metrics server if running (with same timeout)
	if metricsServer != nil {
		log.Println("jobtracker: stopping metrics server...")
		metricsShutdownCtx, metricsShutdownCancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
		defer metricsShutdownCancel()
		if err := metricsServer.Shutdown(metricsShutdownCtx); err != nil {
			log.Printf("jobtracker: metrics server shutdown error: %v", err)
		}
		log.Println("jobtracker: metrics server stopped")
	}

	log.Println("jobtracker: stopped")
	return exitSuccess
}

func runValidate() int {
	cfg := config.Load()

	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return exitInvalidConfig
	}

	fmt.Println("configuration valid")
	return exitSuccess
}

func runConfig() int {
	cfg := config.Load()

	data, err := cfg.MaskedJSON()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to marshal config: %v\n", err)
		return exitRuntimeError
	}

	fmt.Println(string(data))
	return exitSuccess
}

func runVersion() int {
	fmt.Printf("jobtracker version %s (commit: %s)\n", version, commit)
	return exitSuccess
}
