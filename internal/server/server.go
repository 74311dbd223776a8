// Package server assembles the process: the Postgres pool, the HTTP
// listener with its drain-on-signal shutdown, and the internal pprof
// listener.
package server

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	database "github.com/FACorreiaa/go-globetrotters/internal/db"
	"github.com/FACorreiaa/go-globetrotters/internal/pkg/config"
)

// Server owns the process-level resources shared by every request: the
// Postgres pool and the assembled handler stack.
type Server struct {
	cfg    *config.Config
	logger *zap.Logger
	dbPool *pgxpool.Pool
	router http.Handler
}

// New connects to Postgres and runs migrations. The router is attached
// afterwards via SetRouter, once the pool exists to wire handlers against.
func New(cfg *config.Config, logger *zap.Logger) (*Server, error) {
	s := &Server{
		cfg:    cfg,
		logger: logger,
	}

	pool, err := s.connectDatabase(context.Background())
	if err != nil {
		return nil, fmt.Errorf("database setup: %w", err)
	}
	s.dbPool = pool

	return s, nil
}

func (s *Server) connectDatabase(ctx context.Context) (*pgxpool.Pool, error) {
	dbConfig, err := database.NewDatabaseConfig(s.cfg, s.logger)
	if err != nil {
		return nil, fmt.Errorf("building database config: %w", err)
	}

	pool, err := database.Init(dbConfig.ConnectionURL, s.logger)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	database.WaitForDB(ctx, pool, s.logger)
	s.logger.Info("Connected to Postgres",
		zap.String("host", s.cfg.Repositories.Postgres.Host),
		zap.String("database", s.cfg.Repositories.Postgres.DB))

	if err := database.RunMigrations(dbConfig.ConnectionURL, s.logger); err != nil {
		pool.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return pool, nil
}

// HTTPServer builds the public listener around the attached router.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         ":" + s.cfg.ServerPort,
		Handler:      s.router,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

func (s *Server) SetRouter(router http.Handler) {
	s.router = router
}

func (s *Server) GetDBPool() *pgxpool.Pool {
	return s.dbPool
}

// Close releases the database pool.
func (s *Server) Close() {
	if s.dbPool != nil {
		s.dbPool.Close()
	}
}

// StartPprofServer serves the profiling endpoints on their own listener.
// The addr is never exposed publicly; reach it over an SSH tunnel.
func StartPprofServer(addr string, logger *zap.Logger) {
	pprofRouter := gin.New()
	pprof.Register(pprofRouter)

	go func() {
		logger.Info("pprof listening", zap.String("addr", addr))
		if err := pprofRouter.Run(addr); err != nil {
			logger.Error("pprof server stopped", zap.Error(err))
		}
	}()
}

// AwaitShutdown blocks until SIGINT or SIGTERM, drains in-flight requests
// within timeout, then closes done so main can exit.
func AwaitShutdown(srv *http.Server, timeout time.Duration, logger *zap.Logger, done chan struct{}) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	logger.Info("Shutdown signal received, draining connections", zap.Duration("timeout", timeout))

	drainCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(drainCtx); err != nil {
		logger.Error("Drain incomplete, closing anyway", zap.Error(err))
	}

	close(done)
}
