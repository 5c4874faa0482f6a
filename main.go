package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Rahel786/QuickHire-sub000/config"
	"github.com/Rahel786/QuickHire-sub000/controllers"
	"github.com/Rahel786/QuickHire-sub000/middleware"
	"github.com/Rahel786/QuickHire-sub000/services"
	"github.com/Rahel786/QuickHire-sub000/store/memstore"
	"github.com/Rahel786/QuickHire-sub000/store/mongostore"
	"github.com/Rahel786/QuickHire-sub000/utils"
)

type repositories struct {
	users       services.UserRepository
	otps        services.OTPRepository
	colleges    services.CollegeRepository
	experiences services.ExperienceRepository
	plans       services.PlanRepository
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config error", "error", err)
		os.Exit(1)
	}

	logger := utils.NewLogger(os.Stdout, cfg.Production(), parseLevel(cfg.LogLevel))
	slog.SetDefault(logger)
	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repos, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("store error", "error", err)
		os.Exit(1)
	}
	defer closeStore()

	router, err := buildRouter(cfg, repos, logger)
	if err != nil {
		logger.Error("wiring error", "error", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server started", "addr", srv.Addr, "env", cfg.AppEnv, "store", cfg.StoreDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}
	logger.Info("server exited")
}

// openStore connects the configured store and returns its repositories and
// a function releasing it.
func openStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (repositories, func(), error) {
	if cfg.StoreDriver == config.DriverMemory {
		logger.Warn("using in-memory store, data is lost on restart")
		s := memstore.New(nil)
		return repositories{s.Users, s.OTPs, s.Colleges, s.Experiences, s.Plans}, func() {}, nil
	}

	client, db, err := config.ConnectDB(ctx, cfg, logger)
	if err != nil {
		return repositories{}, nil, err
	}
	if err := mongostore.EnsureIndexes(ctx, db); err != nil {
		_ = client.Disconnect(context.Background())
		return repositories{}, nil, err
	}

	s := mongostore.New(db)
	closeFn := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := client.Disconnect(ctx); err != nil {
			logger.Error("error disconnecting MongoDB", "error", err)
			return
		}
		logger.Info("MongoDB disconnected")
	}
	return repositories{s.Users, s.OTPs, s.Colleges, s.Experiences, s.Plans}, closeFn, nil
}

func buildRouter(cfg config.Config, repos repositories, logger *slog.Logger) (*gin.Engine, error) {
	metrics := middleware.NewMetrics()

	tokens, err := utils.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		return nil, err
	}

	creds, err := services.NewCredentials(repos.users)
	if err != nil {
		return nil, err
	}
	otps, err := services.NewOTPManager(repos.otps,
		services.WithOTPTTL(cfg.OTPTTL),
		services.WithOTPObserver(metrics.ObserveOTP),
	)
	if err != nil {
		return nil, err
	}

	var mailer services.Mailer = utils.LogMailer{Logger: logger}
	smtpCfg := utils.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUser,
		Password: cfg.SMTPPass,
		From:     cfg.SMTPFrom,
	}
	if smtpCfg.Configured() {
		mailer = utils.NewSMTPMailer(smtpCfg)
	}

	demo := make([]services.DemoAccount, 0, len(cfg.DemoAccounts))
	for _, a := range cfg.DemoAccounts {
		demo = append(demo, services.DemoAccount(a))
	}

	auth, err := services.NewAuthService(creds, otps, mailer, tokens, services.AuthOptions{
		Production:                   cfg.Production(),
		DemoAccounts:                 demo,
		ForceOnboardingOnEmptyUpdate: cfg.ForceOnboardingOnEmptyUpdate,
		Logger:                       logger,
	})
	if err != nil {
		return nil, err
	}

	colleges, err := services.NewCollegeService(repos.colleges)
	if err != nil {
		return nil, err
	}
	experiences, err := services.NewExperienceService(repos.experiences, creds)
	if err != nil {
		return nil, err
	}

	var generator services.PlanGenerator
	if cfg.AIAPIKey != "" {
		generator = services.NewOpenAIPlanner(cfg.AIAPIKey, cfg.AIBaseURL, cfg.AIModel)
	}
	plans, err := services.NewPlanService(repos.plans, generator, logger)
	if err != nil {
		return nil, err
	}

	return controllers.NewRouter(controllers.Deps{
		Auth:           auth,
		Credentials:    creds,
		Colleges:       colleges,
		Experiences:    experiences,
		Plans:          plans,
		Tokens:         tokens,
		Metrics:        metrics,
		Logger:         logger,
		AllowedOrigins: cfg.AllowedOrigins,
	}), nil
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
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
