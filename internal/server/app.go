// Package server wires the GophNotes server together: Postgres storage with
// migrations, the change feed (in process or relayed through Redis), the
// account, note and backup services, and the gRPC endpoint.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/gophnotes/internal/logging"
	"github.com/dmitrijs2005/gophnotes/internal/server/config"
	"github.com/dmitrijs2005/gophnotes/internal/server/feed"
	"github.com/dmitrijs2005/gophnotes/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophnotes/internal/server/services"
	"github.com/redis/go-redis/v9"

	gs "github.com/dmitrijs2005/gophnotes/internal/server/grpc"
)

const tokenPurgeInterval = time.Hour

type feedStarter interface {
	Start(ctx context.Context) error
}

type App struct {
	config        *config.Config
	logger        logging.Logger
	db            *sql.DB
	redis         *redis.Client
	feed          feed.Feed
	userService   *services.UserService
	noteService   *services.NoteService
	backupService gs.BackupService
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger := logging.NewJSON(os.Stdout, logging.ParseLevel(c.LogLevel))

	db, err := repomanager.OpenPostgres(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	app := &App{config: c, logger: logger, db: db}

	if c.RedisURL != "" {
		rc, err := feed.NewRedisClient(c.RedisURL)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		app.redis = rc
		app.feed = feed.NewRedisRelay(rc, c.RedisChannel, logger)
	} else {
		app.feed = feed.NewBroker()
	}

	app.userService = services.NewUserService(db, rm, c)
	app.noteService = services.NewNoteService(db, rm, app.feed, logger)

	if c.S3Bucket != "" {
		uploader, err := services.NewS3Uploader(ctx, c)
		if err != nil {
			logger.Warn(ctx, "backups disabled", "error", err)
		} else {
			app.backupService = services.NewBackupService(app.noteService, uploader, c.S3Bucket)
		}
	}

	return app, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.userService, app.noteService, app.backupService, app.feed, app.config.SecretKey)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// purgeTokens periodically removes expired refresh tokens.
func (app *App) purgeTokens(ctx context.Context) {
	ticker := time.NewTicker(tokenPurgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := app.userService.PurgeExpiredTokens(ctx)
			if err != nil {
				app.logger.Error(ctx, "token purge failed", "error", err)
				continue
			}
			if n > 0 {
				app.logger.Info(ctx, "Purged expired refresh tokens", "count", n)
			}
		}
	}
}

func (app *App) close() {
	if app.redis != nil {
		_ = app.redis.Close()
	}
	_ = app.db.Close()
}

func (app *App) Run(ctx context.Context) error {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()
	defer app.close()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	if s, ok := app.feed.(feedStarter); ok {
		if err := s.Start(ctx); err != nil {
			return fmt.Errorf("feed start error: %w", err)
		}
	}

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.purgeTokens(ctx)
	}()

	wg.Wait()

	app.logger.Info(context.Background(), "App stopped")
	return nil
}
