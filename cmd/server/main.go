package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/redis/go-redis/v9"

	"github.com/ignite/jtbd-explorer/internal/api"
	"github.com/ignite/jtbd-explorer/internal/config"
	"github.com/ignite/jtbd-explorer/internal/pkg/distlock"
	"github.com/ignite/jtbd-explorer/internal/pkg/logger"
	"github.com/ignite/jtbd-explorer/internal/repository/postgres"
	"github.com/ignite/jtbd-explorer/internal/service/importer"
	"github.com/ignite/jtbd-explorer/internal/service/jtbd"
	"github.com/ignite/jtbd-explorer/internal/service/members"
	"github.com/ignite/jtbd-explorer/internal/ses"
	"github.com/ignite/jtbd-explorer/internal/storage"
)

// checkPortAvailable verifies that the target port is not already in use.
func checkPortAvailable(host string, port int) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("port %d is already in use (addr %s): %v\n"+
			"  Hint: Run 'lsof -i :%d' to find the blocking process", port, addr, err, port)
	}
	ln.Close()
	return nil
}

// extractHost returns the host part of a postgres URL for log lines, without
// credentials.
func extractHost(dsn string) string {
	at := strings.Index(dsn, "@")
	if at < 0 {
		return "(unknown)"
	}
	rest := dsn[at+1:]
	if slash := strings.Index(rest, "/"); slash >= 0 {
		rest = rest[:slash]
	}
	return rest
}

func openDB(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("database url is required (set DATABASE_URL)")
	}
	db, err := sql.Open("postgres", cfg.URL)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime())
	db.SetConnMaxIdleTime(30 * time.Second)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", extractHost(cfg.URL), err)
	}
	return db, nil
}

// openRedis returns nil when Redis is not configured or unreachable; the
// caller falls back to in-memory sessions and PG advisory locks.
func openRedis(ctx context.Context, url string) *redis.Client {
	if url == "" {
		return nil
	}
	opts, err := redis.ParseURL(url)
	var client *redis.Client
	if err != nil {
		client = redis.NewClient(&redis.Options{Addr: url})
	} else {
		client = redis.NewClient(opts)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis unavailable, falling back to in-memory sessions and advisory locks", "error", err)
		client.Close()
		return nil
	}
	return client
}

// newInviter returns nil when SES is disabled or cannot be configured; new
// members are then added without an invitation email.
func newInviter(ctx context.Context, cfg config.SESConfig) members.Inviter {
	if !cfg.Enabled {
		logger.Info("ses disabled, member invitations will not be emailed")
		return nil
	}
	client, err := ses.NewClient(ctx, cfg)
	if err != nil {
		logger.Warn("ses unavailable, member invitations will not be emailed", "error", err)
		return nil
	}
	logger.Info("member invitations sent through ses", "region", cfg.Region)
	return client
}

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to the YAML config file")
	flag.Parse()

	cfg, err := config.LoadFromEnv(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger.SetLevel(logger.ParseLevel(cfg.LogLevel))

	host := cfg.Server.GetHost()
	if err := checkPortAvailable(host, cfg.Server.Port); err != nil {
		log.Fatalf("Pre-flight check FAILED: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := openDB(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	logger.Info("database connected", "host", extractHost(cfg.Database.URL))

	redisClient := openRedis(ctx, cfg.Redis.URL)
	var sessions importer.SessionStore
	if redisClient != nil {
		defer redisClient.Close()
		sessions = importer.NewRedisSessionStore(redisClient, cfg.Import.SessionTTL())
		logger.Info("import sessions stored in redis")
	} else {
		sessions = importer.NewMemorySessionStore(cfg.Import.SessionTTL())
		logger.Info("import sessions stored in memory")
	}

	archive, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	locks := distlock.NewFactory(redisClient, db, cfg.Import.LockTTL())

	catalog := postgres.NewCatalogRepo(db)
	jtbdSvc := jtbd.NewService(postgres.NewHierarchyRepo(db), catalog)
	importSvc := importer.NewService(catalog, postgres.NewImportRepo(db), sessions, archive, locks)
	memberSvc := members.NewService(postgres.NewMemberRepo(db), newInviter(ctx, cfg.SES))

	handlers := api.NewHandlers(api.Deps{
		JTBD:           jtbdSvc,
		Imports:        importSvc,
		Members:        memberSvc,
		Slugs:          catalog,
		MaxUploadBytes: cfg.Import.MaxUploadBytes(),
	})
	server := api.NewServer(cfg.Server, handlers,
		api.NewHealthChecker(db, redisClient, archive),
		api.NewOrgContextProvider(cfg.Dev))
	if cfg.Dev.Enabled {
		logger.Warn("dev mode enabled: requests without an organization use the default org",
			"default_org_id", cfg.Dev.DefaultOrgID)
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		addr := fmt.Sprintf("%s:%d", host, cfg.Server.Port)
		logger.Info("starting server", "addr", addr)
		if err := server.ListenAndServe(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-done
	logger.Info("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}
	logger.Info("server stopped")
}
