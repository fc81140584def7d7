package main

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"gamefilter/internal/adapters/api"
	"gamefilter/internal/adapters/db/file"
	ldbrepo "gamefilter/internal/adapters/db/leveldb"
	"gamefilter/internal/adapters/db/memory"
	pgrepo "gamefilter/internal/adapters/db/postgres"
	"gamefilter/internal/application/admission"
	appauth "gamefilter/internal/application/auth"
	"gamefilter/internal/application/console"
	"gamefilter/internal/config"
	"gamefilter/internal/domain/filter"
	"gamefilter/internal/metrics"
)

//	@title			Game Filter API
//	@version		1.0
//	@description	Ban, mute and address filter administration for a game server

//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Type "Bearer" followed by a space and JWT token.

func main() {
	cfg := config.LoadConfig()
	closeLog := configureLogging(cfg)
	defer closeLog()

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	log.Info().
		Str("http_port", cfg.HTTPPort).
		Str("filter_store", cfg.Filter.Store).
		Bool("auth_enabled", cfg.Auth.Enabled).
		Msg("Starting game filter server")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, closeRepo, err := openScriptRepository(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("store", cfg.Filter.Store).Msg("open filter store")
	}
	defer closeRepo()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	service := admission.NewService(repo, filter.NewServerClock())
	service.SetMetrics(metrics.NewFilter(reg))
	con := console.New(service)

	if err := service.Reload(ctx, con); err != nil {
		log.Error().Err(err).Msg("could not load saved filter list, starting empty")
	}

	authService := appauth.NewService(&cfg.Auth)
	if !cfg.Auth.Enabled {
		log.Warn().Msg("Authentication disabled - running in open mode with admin permissions")
	}

	handler := api.NewHandler(service, con, authService, reg)
	service.SetNotifier(handler.Hub())

	gin.SetMode(gin.ReleaseMode)
	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.AllowedOrigin},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
	}))
	handler.RegisterRoutes(r)

	if cfg.ConsoleEnabled {
		go func() {
			if err := con.Serve(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("console stopped")
			}
		}()
	}

	srv := &http.Server{Addr: ":" + cfg.HTTPPort, Handler: r}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("http shutdown")
		}
	}()

	log.Info().Msgf("Starting game filter server on port %s", cfg.HTTPPort)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("Failed to start server")
	}

	if err := service.WriteIP(context.Background()); err != nil {
		log.Error().Err(err).Msg("final filter list write failed")
	}
	log.Info().Msg("server stopped")
}

// configureLogging sets the global zerolog logger: console output on stderr,
// teed to a rotating file when LOG_FILE is set.
func configureLogging(cfg *config.Config) func() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	var out io.Writer = zerolog.ConsoleWriter{Out: os.Stderr}
	if cfg.LogFile == "" {
		log.Logger = log.Output(out)
		return func() {}
	}
	rotating := &lumberjack.Logger{
		Filename:   cfg.LogFile,
		MaxSize:    50, // megabytes
		MaxBackups: 5,
		MaxAge:     28, // days
		Compress:   true,
	}
	log.Logger = log.Output(zerolog.MultiLevelWriter(out, rotating))
	return func() { _ = rotating.Close() }
}

// openScriptRepository builds the configured filter store and a func that
// releases it.
func openScriptRepository(ctx context.Context, cfg *config.Config) (filter.ScriptRepository, func(), error) {
	switch cfg.Filter.Store {
	case "memory":
		log.Warn().Msg("memory filter store - bans are lost on restart")
		return memory.NewScriptRepository(), func() {}, nil
	case "leveldb":
		repo, err := ldbrepo.NewScriptRepository(cfg.Filter.LevelDBPath)
		if err != nil {
			return nil, nil, err
		}
		return repo, func() { _ = repo.Close() }, nil
	case "postgres":
		return openPostgres(ctx, cfg)
	default:
		log.Info().Str("path", cfg.Filter.ListPath).Msg("file filter store")
		return file.NewScriptRepository(cfg.Filter.ListPath), func() {}, nil
	}
}

func openPostgres(ctx context.Context, cfg *config.Config) (filter.ScriptRepository, func(), error) {
	log.Info().Msg("Initializing Postgres filter store")
	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		return nil, nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	if err := pgrepo.RunMigrations(pingCtx, db, cfg.Database.Migrations); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	pool, err := pgxpool.New(ctx, cfg.Database.DSN)
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	repo := pgrepo.NewScriptRepository(db, cfg.Filter.ScriptName, pgrepo.NewLockManager(pool))
	return repo, func() {
		pool.Close()
		_ = db.Close()
	}, nil
}
