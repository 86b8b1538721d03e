// Package server wires configuration, storage, the session manager and the
// gRPC and metrics listeners into a runnable application.
package server

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/accountkeeper/internal/cryptox"
	"github.com/dmitrijs2005/accountkeeper/internal/filex"
	"github.com/dmitrijs2005/accountkeeper/internal/logging"
	"github.com/dmitrijs2005/accountkeeper/internal/server/auth"
	"github.com/dmitrijs2005/accountkeeper/internal/server/config"
	"github.com/dmitrijs2005/accountkeeper/internal/server/media"
	"github.com/dmitrijs2005/accountkeeper/internal/server/metrics"
	"github.com/dmitrijs2005/accountkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/accountkeeper/internal/server/services"
	"github.com/samber/oops"

	gs "github.com/dmitrijs2005/accountkeeper/internal/server/grpc"
)

const shutdownTimeout = 5 * time.Second

// newUploader is a seam for tests.
var newUploader = func(ctx context.Context, cfg media.S3Config, log logging.Logger) (media.Uploader, error) {
	return media.NewS3Uploader(ctx, cfg, log)
}

type App struct {
	config   *config.Config
	logger   logging.Logger
	db       *sql.DB
	sessions *services.SessionManager
	grpc     *gs.GRPCServer
	metrics  *metrics.Server
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.New(os.Stdout, c.LogFormat, c.LogLevel)

	if _, err := filex.EnsureSubdDir(c.UploadTempDir); err != nil {
		return nil, oops.Code("APP_INIT").With("dir", c.UploadTempDir).Wrap(err)
	}

	db, rm, err := repomanager.Open(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, oops.Code("APP_INIT").With("operation", "open database").Wrap(err)
	}
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, oops.Code("APP_INIT").With("operation", "migrate").Wrap(err)
	}

	uploader, err := newUploader(ctx, media.S3Config{
		Region:       c.S3Region,
		AccessKey:    c.S3RootUser,
		SecretKey:    c.S3RootPassword,
		Bucket:       c.S3Bucket,
		BaseEndpoint: c.S3BaseEndpoint,
		PublicURL:    c.S3PublicURL,
		Retries:      c.UploadRetries,
	}, logger)
	if err != nil {
		_ = db.Close()
		return nil, oops.Code("APP_INIT").With("operation", "media uploader").Wrap(err)
	}

	params := cryptox.DefaultArgon2Params()
	params.Time = c.Argon2Time
	params.Memory = c.Argon2Memory
	params.Threads = c.Argon2Threads

	issuer := auth.NewIssuer(c.AccessTokenSecret, c.RefreshTokenSecret,
		c.AccessTokenValidityDuration, c.RefreshTokenValidityDuration)

	ms := metrics.NewServer(c.MetricsAddr, logger)

	sessions := services.NewSessionManager(db, rm, cryptox.NewArgon2idHasher(params), issuer, uploader, logger,
		services.WithRecorder(ms.Auth()))

	return &App{
		config:   c,
		logger:   logger,
		db:       db,
		sessions: sessions,
		grpc:     gs.NewGRPCServer(c.EndpointAddrGRPC, logger, sessions),
		metrics:  ms,
	}, nil
}

// Sessions exposes the session manager to routing layers built on top of App.
func (app *App) Sessions() *services.SessionManager {
	return app.sessions
}

// Run serves until ctx is cancelled or a listener fails, then shuts both
// listeners down and closes the database.
func (app *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	app.logger.Info(ctx, "Starting app...")

	defer func() {
		if err := app.db.Close(); err != nil {
			app.logger.Error(ctx, "db close error", "error", err)
		}
	}()

	metricsErr, err := app.metrics.Start(ctx)
	if err != nil {
		return err
	}

	var (
		wg      sync.WaitGroup
		grpcErr error
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.grpc.Run(ctx); err != nil {
			app.logger.Error(ctx, "grpc server error", "error", err)
			grpcErr = err
			cancel()
		}
	}()

	var serveErr error
	select {
	case <-ctx.Done():
	case err, ok := <-metricsErr:
		if ok {
			serveErr = err
		}
		cancel()
	}

	wg.Wait()

	stopCtx, stopCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stopCancel()
	if err := app.metrics.Stop(stopCtx); err != nil {
		app.logger.Error(ctx, "metrics shutdown error", "error", err)
	}

	app.logger.Info(ctx, "App stopped")
	return errors.Join(serveErr, grpcErr)
}
