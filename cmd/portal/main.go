// Package main is the entry point for the Sarkari Results portal server.
//
// The server stores job notifications and schemes in a JSON document inside
// the data directory, keeps its history in git and exposes a JSON API for the
// public pages and the admin panel. Configuration is read from CLI flags, a
// .env file (for secrets) and server_config.json (for the JWT secret, quotas
// and rate limits).
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"

	"github.com/sarkari/portal/internal/backup"
	"github.com/sarkari/portal/internal/content"
	"github.com/sarkari/portal/internal/detail"
	"github.com/sarkari/portal/internal/listing"
	"github.com/sarkari/portal/internal/notify"
	"github.com/sarkari/portal/internal/server"
	"github.com/sarkari/portal/internal/server/handlers"
	"github.com/sarkari/portal/internal/server/ipgeo"
	"github.com/sarkari/portal/internal/storage"
	"github.com/sarkari/portal/internal/storage/git"
)

func main() {
	if err := mainImpl(); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "portal: %v\n", err)
		os.Exit(1)
	}
}

func mainImpl() error {
	version := flag.Bool("version", false, "Print version and exit")
	httpAddr := flag.String("http", "localhost:8080", "Address to listen on (e.g., localhost:8080, :8080, 0.0.0.0:8080)")
	dataDir := flag.String("data-dir", "./data", "Data directory")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	geoDB := flag.String("geo-db", "", "Path to MaxMind MMDB file for IP geolocation (optional)")
	pgURL := flag.String("postgres", "", "PostgreSQL connection string; stores records in Postgres instead of data.json (optional)")
	flag.Parse()
	if len(flag.Args()) > 0 {
		return fmt.Errorf("unknown arguments: %v", flag.Args())
	}

	if *version {
		printVersion()
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	defer stop()
	ll := &slog.LevelVar{}
	ll.Set(slog.LevelInfo)
	slog.SetDefault(newLogger(ll))

	if err := os.MkdirAll(*dataDir, 0o755); err != nil { //nolint:gosec // G301: 0o755 is intentional for data directories
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	env, err := loadDotEnv(*dataDir)
	if err != nil {
		return err
	}

	// Override with .env file values if not explicitly set via flags
	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) {
		set[f.Name] = true
	})
	for name, key := range map[string]string{
		"http":      "HTTP",
		"log-level": "LOG_LEVEL",
		"geo-db":    "GEO_DB",
		"postgres":  "DATABASE_URL",
	} {
		if v := env[key]; !set[name] && v != "" {
			if err := flag.Set(name, v); err != nil {
				return fmt.Errorf("invalid %s in .env: %w", key, err)
			}
		}
	}

	switch *logLevel {
	case "debug":
		ll.Set(slog.LevelDebug)
	case "info":
	case "warn":
		ll.Set(slog.LevelWarn)
	case "error":
		ll.Set(slog.LevelError)
	default:
		return fmt.Errorf("unknown log level: %q", *logLevel)
	}

	serverCfg, err := storage.LoadServerConfig(*dataDir)
	if err != nil {
		return fmt.Errorf("failed to load server_config.json: %w", err)
	}
	serverCfg.ApplyEnv(env)
	if serverCfg.Admin.Username == "" {
		slog.WarnContext(ctx, "No admin configured, set ADMIN_USERNAME and ADMIN_PASSWORD_HASH to enable the admin API")
	}

	// Normalize addr: ":8080" becomes "localhost:8080"
	addr := *httpAddr
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}

	var backend storage.Backend
	if *pgURL != "" {
		pg, err := storage.NewPostgresBackend(ctx, *pgURL)
		if err != nil {
			return fmt.Errorf("failed to connect to postgres: %w", err)
		}
		backend = pg
		slog.InfoContext(ctx, "Using postgres backend")
	} else {
		fb, err := storage.NewFileBackend(*dataDir)
		if err != nil {
			return fmt.Errorf("failed to initialize file backend: %w", err)
		}
		backend = fb
	}
	store := storage.NewStore(backend)
	defer func() { _ = store.Close() }()

	subs, err := notify.NewStore(filepath.Join(*dataDir, "db", "push_subscriptions.jsonl"))
	if err != nil {
		return fmt.Errorf("failed to initialize subscription store: %w", err)
	}
	sender := notify.NewSender(subs, notify.Keys{
		Public:     serverCfg.VAPID.PublicKey,
		Private:    serverCfg.VAPID.PrivateKey,
		Subscriber: serverCfg.VAPID.Subscriber,
	})
	if !sender.Enabled() {
		slog.InfoContext(ctx, "Web push disabled, VAPID keys are not configured")
	}

	history, err := git.Open(*dataDir, "portal", "portal@localhost")
	if err != nil {
		return fmt.Errorf("failed to open data history: %w", err)
	}

	// Watch own executable for modifications (for development restarts)
	if err := watchExecutable(ctx, stop); err != nil {
		return fmt.Errorf("failed to watch executable: %w", err)
	}

	if serverCfg.Backup.Enabled() {
		uploader, err := backup.NewUploader(ctx, &serverCfg.Backup)
		if err != nil {
			return err
		}
		sched := backup.NewScheduler(uploader, store, serverCfg.Backup.Schedule, nil)
		if err := sched.Start(ctx); err != nil {
			return err
		}
		defer sched.Stop()
	}

	var geoChecker *ipgeo.Checker
	if *geoDB != "" {
		geoChecker, err = ipgeo.Open(*geoDB)
		if err != nil {
			return fmt.Errorf("failed to open geo database: %w", err)
		}
		defer func() { _ = geoChecker.Close() }()
		slog.InfoContext(ctx, "IP geolocation enabled", "db", *geoDB)
	}

	svc := &handlers.Services{
		Repo:          store,
		Content:       content.New(store, sender, nil),
		Detail:        detail.NewProjector(store, nil),
		Listing:       listing.New(store),
		Subscriptions: subs,
		Sender:        sender,
	}
	buildVersion, _, _, _ := getBuildInfo()
	router := server.NewRouter(svc, &server.Config{
		ServerConfig: serverCfg,
		Version:      buildVersion,
		IPGeo:        geoChecker,
		History:      history,
	})
	defer func() { _ = router.Close() }()

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           router,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Run server in goroutine
	serverErr := make(chan error, 1)
	go func() {
		slog.InfoContext(ctx, "Starting server", "addr", addr, "dataDir", *dataDir, "version", buildVersion)
		serverErr <- httpServer.ListenAndServe()
	}()

	// Wait for either context cancellation or server error
	select {
	case err := <-serverErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
		slog.InfoContext(ctx, "Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
		slog.InfoContext(ctx, "Server stopped")
	}
	return nil
}

// newLogger returns a tint logger on stderr that drops empty attributes.
func newLogger(ll *slog.LevelVar) *slog.Logger {
	// Skip timestamps when running under systemd (it adds its own).
	underSystemd := os.Getenv("JOURNAL_STREAM") != ""
	return slog.New(tint.NewHandler(colorable.NewColorable(os.Stderr), &tint.Options{
		Level:      ll,
		TimeFormat: "15:04:05.000",
		NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if underSystemd && a.Key == slog.TimeKey && len(groups) == 0 {
				return slog.Attr{}
			}
			if a.Key == "ip" {
				if v := a.Value.String(); v == "127.0.0.1" || v == "::1" {
					return slog.Attr{}
				}
			}
			skip := false
			switch t := a.Value.Any().(type) {
			case string:
				skip = t == ""
			case bool:
				skip = !t
			case int64:
				skip = t == 0
			case uint64:
				skip = t == 0
			case time.Duration:
				skip = t == 0
			case time.Time:
				skip = t.IsZero()
			case nil:
				skip = true
			}
			if skip {
				return slog.Attr{}
			}
			return a
		},
	}))
}

func printVersion() {
	version, goVersion, revision, dirty := getBuildInfo()
	fmt.Printf("portal %s\n", version)
	fmt.Printf("  Go version: %s\n", goVersion)
	fmt.Printf("  Revision:   %s\n", revision)
	if dirty {
		fmt.Printf("  Modified:   true\n")
	}
}

func getBuildInfo() (version, goVersion, revision string, dirty bool) {
	version = "unknown"
	goVersion = "unknown"
	revision = "unknown"
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	version = info.Main.Version
	if version == "" || version == "(devel)" {
		version = "dev"
	}
	goVersion = info.GoVersion
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			revision = setting.Value
		case "vcs.modified":
			dirty = setting.Value == "true"
		}
	}
	return
}

// loadDotEnv reads dataDir/.env. A missing file is an empty environment.
func loadDotEnv(dataDir string) (map[string]string, error) {
	env, err := godotenv.Read(filepath.Join(dataDir, ".env"))
	if errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}
	return env, nil
}

// watchExecutable watches the current executable for modifications and calls
// stop to trigger graceful shutdown when detected. This enables seamless
// restarts during development.
func watchExecutable(ctx context.Context, stop context.CancelFunc) error {
	exe, err := os.Executable()
	if err != nil {
		return err
	}
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := w.Add(exe); err != nil {
		_ = w.Close()
		return err
	}
	go func() {
		defer func() { _ = w.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.Events:
				if !ok {
					return
				}
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Chmod) {
					slog.InfoContext(ctx, "Executable modified, initiating shutdown")
					stop()
					return
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				slog.WarnContext(ctx, "Error watching executable", "err", err)
			}
		}
	}()
	return nil
}
