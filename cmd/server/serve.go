package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sidago/crm-api/internal/config"
	"github.com/sidago/crm-api/internal/database"
	"github.com/sidago/crm-api/internal/handler"
	"github.com/sidago/crm-api/internal/middleware"
	"github.com/sidago/crm-api/internal/queue"
	"github.com/sidago/crm-api/internal/repository"
	"github.com/sidago/crm-api/internal/router"
	"github.com/sidago/crm-api/internal/seed"
	"github.com/sidago/crm-api/internal/service"
	"github.com/sidago/crm-api/internal/utils"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, db, err := bootstrap()
		if err != nil {
			return err
		}
		defer db.Close()
		defer log.Sync()

		ctx := cmd.Context()
		if cfg.DBAutoMigrate {
			if err := database.Migrate(ctx, db); err != nil {
				return err
			}
			if err := seed.New(db, cfg.BcryptCost, log).Reference(ctx); err != nil {
				return err
			}
		}

		rdb := config.NewRedisClient()
		if rdb == nil {
			log.Warn("redis unreachable, rate limiting disabled")
		} else {
			defer rdb.Close()
		}

		e, err := newServer(cfg, db, rdb, log)
		if err != nil {
			return err
		}

		errc := make(chan error, 1)
		go func() {
			log.Info("listening", zap.String("addr", ":"+cfg.Port), zap.String("env", cfg.Env))
			errc <- e.Start(":" + cfg.Port)
		}()

		select {
		case err := <-errc:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-ctx.Done():
		}
		log.Info("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return e.Shutdown(sctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

// newServer wires repositories, services, handlers and middleware into an
// echo instance. rdb may be nil.
func newServer(cfg config.Config, db *sql.DB, rdb *redis.Client, log *zap.Logger) (*echo.Echo, error) {
	signer, err := utils.NewSigner(cfg.JWTSecret, cfg.JWTAlgorithm)
	if err != nil {
		return nil, fmt.Errorf("jwt: %w", err)
	}

	var events queue.Publisher = queue.NopPublisher{}
	if cfg.AMQPURL != "" {
		events = queue.NewRabbitPublisher(cfg.AMQPURL, cfg.EventsQueue, log)
	}

	tx := database.TxRunner{DB: db}
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	companies := repository.NewCompanyRepo(db)
	histories := repository.NewHistoryRepo(db)
	comments := repository.NewCommentRepo(db)
	leads := repository.NewLeadRepo(db)
	lookups := repository.NewLookupRepo(db)

	auth := service.NewAuthService(users, tokens, signer,
		time.Duration(cfg.AccessTTLMin)*time.Minute,
		time.Duration(cfg.RefreshTTLDays)*24*time.Hour, log)
	companySvc := service.NewCompanyService(tx, companies, histories, lookups, events, log)
	commentSvc := service.NewCommentService(tx, comments, companies, log)
	leadSvc := service.NewLeadService(tx, leads, companies, users, lookups, events, log, cfg.CreateCompanyIfMissing)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomw.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLog(log))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	router.RegisterRoutes(e, db)
	router.Register(e, router.Handlers{
		Auth:      handler.NewAuthHandler(auth, log),
		Users:     handler.NewUserHandler(users, log),
		Lookups:   handler.NewLookupHandler(lookups, log),
		Companies: handler.NewCompanyHandler(companySvc, log),
		Comments:  handler.NewCommentHandler(commentSvc, log),
		Leads:     handler.NewLeadHandler(leadSvc, log),
	}, router.Guards{
		Authn: middleware.Authenticate(auth, log),
		Limit: middleware.RateLimit(config.LoadRateLimitConfig(), rdb, log),
	})
	return e, nil
}
