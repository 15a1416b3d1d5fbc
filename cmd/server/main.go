package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/rpggio/sciledger/internal/config"
	"github.com/rpggio/sciledger/internal/domain/funding"
	"github.com/rpggio/sciledger/internal/domain/journal"
	"github.com/rpggio/sciledger/internal/domain/project"
	"github.com/rpggio/sciledger/internal/domain/provenance"
	"github.com/rpggio/sciledger/internal/domain/review"
	"github.com/rpggio/sciledger/internal/ledger"
	"github.com/rpggio/sciledger/internal/leveldb"
	"github.com/rpggio/sciledger/internal/mcp"
	"github.com/rpggio/sciledger/internal/metrics"
	"github.com/rpggio/sciledger/internal/sqlite"
	"github.com/rpggio/sciledger/internal/transport"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	// Use stderr for logs in stdio mode to keep stdout clean for JSON-RPC.
	logWriter := io.Writer(os.Stdout)
	if cfg.Transport.Mode == config.TransportStdio {
		logWriter = os.Stderr
	}
	if cfg.Log.Path != "" {
		logFile, err := openLedgerLog(cfg.Log.Path, maxLedgerLogBytes)
		if err != nil {
			fmt.Fprintf(os.Stderr, "log file error: %v\n", err)
		} else {
			defer logFile.Close()
			logWriter = logFile
		}
	}
	logger := slog.New(slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := ensureDBDir(cfg.DB.Path); err != nil {
		return fmt.Errorf("prepare database path: %w", err)
	}
	db, err := sqlite.New(cfg.DB.Path)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := db.RunMigrations(); err != nil {
		return err
	}

	journalDB, err := leveldb.Open(cfg.Journal.Path)
	if err != nil {
		return err
	}
	defer journalDB.Close()

	apiKeys := sqlite.NewAPIKeyRepository(db)
	for _, key := range cfg.Auth.APIKeys {
		if err := apiKeys.Put(ctx, key.Token, ledger.Principal(key.Principal), key.Description); err != nil {
			return fmt.Errorf("seed api key for %s: %w", key.Principal, err)
		}
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New(registry)
	}

	journalSvc := journal.NewService(leveldb.NewJournalStore(journalDB, cfg.Journal.SyncWrites), logger)
	head, err := journalSvc.Head(ctx)
	if err != nil {
		return fmt.Errorf("read journal head: %w", err)
	}
	logger.Info("journal opened", "path", cfg.Journal.Path, "length", head.Length)

	projectRepo := sqlite.NewProjectRepository(db)
	handler := mcp.NewHandler(mcp.Services{
		Projects:   project.NewService(projectRepo, journalSvc, logger),
		Reviews:    review.NewService(sqlite.NewReviewRepository(db), projectRepo, journalSvc, logger),
		Funding:    funding.NewService(sqlite.NewCampaignRepository(db), projectRepo, journalSvc, logger),
		Provenance: provenance.NewService(sqlite.NewDataRepository(db), journalSvc, logger),
		Journal:    journalSvc,
	}, m, logger)

	resolver := transport.ChainResolver{transport.APIKeyResolver{Store: apiKeys}}
	if cfg.Auth.JWTSecret != "" {
		resolver = append(resolver, transport.NewJWTResolver(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer))
	}

	clock := ledger.SystemClock{}
	principal := ledger.Principal(cfg.Identity.DefaultPrincipal)
	mcpServer := mcp.NewServer(mcp.Config{
		Handler:          handler,
		Resolver:         resolver,
		AuthEnabled:      cfg.Auth.Enabled,
		TransportMode:    cfg.Transport.Mode,
		DefaultPrincipal: principal,
		Clock:            clock,
		Logger:           logger,
	})

	if cfg.Transport.Mode == config.TransportStdio {
		return runStdioMode(ctx, logger, mcpServer, principal)
	}

	identity := transport.DefaultPrincipalMiddleware(principal, clock)
	if cfg.Auth.Enabled {
		identity = transport.AuthMiddleware(resolver, clock)
	}
	var metricsHandler http.Handler
	if cfg.Metrics.Enabled {
		metricsHandler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})
	}
	router := transport.NewServer(handler, transport.Options{
		Identity: identity,
		MCP: sdkmcp.NewStreamableHTTPHandler(
			func(r *http.Request) *sdkmcp.Server { return mcpServer },
			&sdkmcp.StreamableHTTPOptions{
				Stateless:      false,
				SessionTimeout: 30 * time.Minute,
			},
		),
		Metrics: metricsHandler,
		Logger:  logger,
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	return runHTTPMode(ctx, logger, transport.NewHTTPServer(addr, router), cfg.Auth.Enabled)
}

func runStdioMode(ctx context.Context, logger *slog.Logger, mcpServer *sdkmcp.Server, principal ledger.Principal) error {
	logger.Info("starting stdio transport", "auth", "disabled", "principal", principal)

	// Run blocks until stdin closes or context is canceled
	if err := mcpServer.Run(ctx, &sdkmcp.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("stdio server: %w", err)
	}
	logger.Info("shutting down")
	return nil
}

func runHTTPMode(ctx context.Context, logger *slog.Logger, httpServer *http.Server, authEnabled bool) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("server listening", "addr", httpServer.Addr, "auth", authEnabled)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func ensureDBDir(path string) error {
	if path == ":memory:" || path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
