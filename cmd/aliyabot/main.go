// Command aliyabot runs the Aliya WhatsApp health assistant: a transport
// (whatsmeow or Twilio), the conversation engine, the reminder scheduler
// and the record store, wired together with startup reminder recovery.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/aliya-health/aliyabot/internal/flow"
	"github.com/aliya-health/aliyabot/internal/genai"
	"github.com/aliya-health/aliyabot/internal/messaging"
	"github.com/aliya-health/aliyabot/internal/recovery"
	"github.com/aliya-health/aliyabot/internal/reminder"
	"github.com/aliya-health/aliyabot/internal/session"
	"github.com/aliya-health/aliyabot/internal/store"
	"github.com/aliya-health/aliyabot/internal/twiliowhatsapp"
	"github.com/aliya-health/aliyabot/internal/util"
	"github.com/aliya-health/aliyabot/internal/whatsapp"
)

const (
	// DefaultStateDir is the default directory for aliyabot state data.
	DefaultStateDir = "/var/lib/aliyabot"
	// DefaultDBFileName is the default SQLite database filename.
	DefaultDBFileName = "aliyabot.db"
	// DefaultWebhookAddr is the default Twilio webhook listen address.
	DefaultWebhookAddr = ":8080"

	// TransportWhatsmeow selects the direct whatsmeow connection.
	TransportWhatsmeow = "whatsmeow"
	// TransportTwilio selects the Twilio REST API plus webhook.
	TransportTwilio = "twilio"
)

func main() {
	initializeLogger()

	config := loadEnvironmentConfig()
	flags := parseCommandLineFlags(config)

	if err := ensureDirectoriesExist(flags); err != nil {
		slog.Error("Failed to create required directories", "error", err)
		os.Exit(1)
	}

	if err := run(flags); err != nil {
		slog.Error("aliyabot failed to run", "error", err)
		os.Exit(1)
	}
	slog.Info("aliyabot exited successfully")
}

// Config holds environment configuration.
type Config struct {
	DatabaseURL string
	StateDir    string
	OpenAIKey   string
	Transport   string
	WebhookAddr string
	NumericCode bool
}

// Flags holds command line flag values.
type Flags struct {
	qrOutput    *string
	numeric     *bool
	stateDir    *string
	dbDSN       *string
	openaiKey   *string
	transport   *string
	webhookAddr *string
}

func initializeLogger() {
	level := slog.LevelInfo
	if util.ParseBoolEnv("ALIYABOT_DEBUG", false) {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

// loadEnvironmentConfig loads configuration from the environment and an
// optional .env file.
func loadEnvironmentConfig() Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	} else {
		slog.Debug("successfully loaded .env file")
	}

	config := Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),
		StateDir:    os.Getenv("ALIYABOT_STATE_DIR"),
		OpenAIKey:   os.Getenv("OPENAI_API_KEY"),
		Transport:   os.Getenv("TRANSPORT"),
		WebhookAddr: os.Getenv("WEBHOOK_ADDR"),
		NumericCode: util.ParseBoolEnv("WHATSAPP_NUMERIC_CODE", false),
	}

	if config.StateDir == "" {
		config.StateDir = DefaultStateDir
		slog.Debug("No ALIYABOT_STATE_DIR set, using default", "default_state_dir", config.StateDir)
	}
	if config.DatabaseURL == "" {
		config.DatabaseURL = filepath.Join(config.StateDir, DefaultDBFileName)
		slog.Debug("No database DSN provided, defaulting to SQLite", "sqlite_path", config.DatabaseURL)
	}
	if config.Transport == "" {
		config.Transport = TransportWhatsmeow
	}
	if config.WebhookAddr == "" {
		config.WebhookAddr = DefaultWebhookAddr
	}

	slog.Debug("environment variables loaded",
		"DATABASE_URL_SET", config.DatabaseURL != "",
		"ALIYABOT_STATE_DIR", config.StateDir,
		"OPENAI_API_KEY_SET", config.OpenAIKey != "",
		"TRANSPORT", config.Transport,
		"WEBHOOK_ADDR", config.WebhookAddr)

	return config
}

// parseCommandLineFlags parses command line arguments with environment
// defaults.
func parseCommandLineFlags(config Config) Flags {
	flags := Flags{
		qrOutput:    flag.String("qr-output", "", "path to write login QR code"),
		numeric:     flag.Bool("numeric-code", config.NumericCode, "use numeric login code instead of QR code (overrides $WHATSAPP_NUMERIC_CODE)"),
		stateDir:    flag.String("state-dir", config.StateDir, "state directory for aliyabot data (overrides $ALIYABOT_STATE_DIR)"),
		dbDSN:       flag.String("db-dsn", config.DatabaseURL, "database DSN for the record store (overrides $DATABASE_URL)"),
		openaiKey:   flag.String("openai-api-key", config.OpenAIKey, "OpenAI API key (overrides $OPENAI_API_KEY)"),
		transport:   flag.String("transport", config.Transport, "message transport: whatsmeow or twilio (overrides $TRANSPORT)"),
		webhookAddr: flag.String("webhook-addr", config.WebhookAddr, "Twilio webhook listen address (overrides $WEBHOOK_ADDR)"),
	}

	flag.Parse()

	// Moving the state dir moves the default SQLite file with it.
	if *flags.dbDSN == filepath.Join(config.StateDir, DefaultDBFileName) && *flags.stateDir != config.StateDir {
		*flags.dbDSN = filepath.Join(*flags.stateDir, DefaultDBFileName)
		slog.Debug("Updated dbDSN based on state directory", "new_state_dir", *flags.stateDir)
	}

	slog.Debug("flags parsed",
		"qrOutput", *flags.qrOutput,
		"numeric", *flags.numeric,
		"stateDir", *flags.stateDir,
		"dbDSN_set", *flags.dbDSN != "",
		"openaiKeySet", *flags.openaiKey != "",
		"transport", *flags.transport,
		"webhookAddr", *flags.webhookAddr)

	return flags
}

// ensureDirectoriesExist creates the state directory when a file-based DSN
// is in use.
func ensureDirectoriesExist(flags Flags) error {
	if store.DetectDSNType(*flags.dbDSN) == store.DSNTypeSQLite {
		stateDir := filepath.Dir(*flags.dbDSN)
		if err := os.MkdirAll(stateDir, 0755); err != nil {
			return fmt.Errorf("failed to create state directory %s: %w", stateDir, err)
		}
	}
	return nil
}

// buildStore selects the store backend from the DSN.
func buildStore(flags Flags) (store.Store, error) {
	dsn := *flags.dbDSN
	if dsn == "" {
		slog.Info("No database DSN provided, using in-memory store")
		return store.NewInMemoryStore(), nil
	}
	if store.DetectDSNType(dsn) == store.DSNTypePostgres {
		slog.Info("Using PostgreSQL store")
		return store.NewPostgresStore(store.WithDSN(dsn))
	}
	slog.Info("Using SQLite store", "db_path", dsn)
	return store.NewSQLiteStore(store.WithDSN(dsn))
}

// buildTransport constructs the messaging service for the selected transport.
func buildTransport(flags Flags) (messaging.Service, error) {
	switch *flags.transport {
	case TransportTwilio:
		client, err := twiliowhatsapp.NewClient()
		if err != nil {
			return nil, fmt.Errorf("failed to create Twilio client: %w", err)
		}
		return messaging.NewTwilioService(client), nil
	case TransportWhatsmeow:
		var waOpts []whatsapp.Option
		waOpts = append(waOpts, whatsapp.WithDBDSN("file:"+filepath.Join(*flags.stateDir, "whatsmeow.db")+"?_foreign_keys=on"))
		if *flags.qrOutput != "" {
			waOpts = append(waOpts, whatsapp.WithQRCodeOutput(*flags.qrOutput))
		}
		if *flags.numeric {
			waOpts = append(waOpts, whatsapp.WithNumericCode())
		}
		client, err := whatsapp.NewClient(waOpts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create WhatsApp client: %w", err)
		}
		return messaging.NewWhatsAppService(client), nil
	default:
		return nil, fmt.Errorf("unknown transport %q (want %s or %s)", *flags.transport, TransportWhatsmeow, TransportTwilio)
	}
}

func run(flags Flags) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := buildStore(flags)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	defer st.Close()

	var genaiOpts []genai.Option
	if *flags.openaiKey != "" {
		genaiOpts = append(genaiOpts, genai.WithAPIKey(*flags.openaiKey))
	}
	gen, err := genai.NewClient(genaiOpts...)
	if err != nil {
		return fmt.Errorf("failed to initialize GenAI client: %w", err)
	}

	svc, err := buildTransport(flags)
	if err != nil {
		return err
	}

	scheduler := reminder.NewScheduler(svc)
	sessions := session.NewManager()
	engine := flow.NewEngine(st, sessions, svc, gen, scheduler)
	dispatcher := messaging.NewDispatcher(svc, engine, st)

	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("failed to start messaging service: %w", err)
	}
	dispatcher.Start(ctx)

	// Timers are in-memory only; rebuild reminder chains from the store.
	rec := recovery.NewManager(st, scheduler, gen)
	if err := rec.RecoverAll(ctx); err != nil {
		slog.Warn("Reminder recovery finished with errors", "error", err)
	}

	// The Twilio transport needs an HTTP listener for inbound messages.
	var webhookServer *http.Server
	if tw, ok := svc.(*messaging.TwilioService); ok {
		mux := http.NewServeMux()
		mux.HandleFunc("/webhook/twilio", tw.TwilioWebhookHandler)
		webhookServer = &http.Server{Addr: *flags.webhookAddr, Handler: mux}
		go func() {
			slog.Info("Twilio webhook server listening", "addr", *flags.webhookAddr)
			if err := webhookServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				slog.Error("Webhook server failed", "error", err)
				stop()
			}
		}()
	}

	slog.Info("aliyabot running", "transport", *flags.transport)
	<-ctx.Done()
	slog.Info("Shutdown signal received")

	if webhookServer != nil {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := webhookServer.Shutdown(sctx); err != nil {
			slog.Warn("Webhook server shutdown failed", "error", err)
		}
		cancel()
	}
	dispatcher.Stop()
	scheduler.Stop()
	if err := svc.Stop(); err != nil {
		slog.Warn("Messaging service shutdown failed", "error", err)
	}
	return nil
}
