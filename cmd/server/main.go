package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/wa-relay/internal/config"
	"github.com/mamadbah2/wa-relay/internal/repository/mongodb"
	redisrepo "github.com/mamadbah2/wa-relay/internal/repository/redis"
	"github.com/mamadbah2/wa-relay/internal/repository/sheets"
	"github.com/mamadbah2/wa-relay/internal/scheduler"
	"github.com/mamadbah2/wa-relay/internal/server/handlers"
	"github.com/mamadbah2/wa-relay/internal/server/router"
	"github.com/mamadbah2/wa-relay/internal/service/businesses"
	"github.com/mamadbah2/wa-relay/internal/service/inbound"
	"github.com/mamadbah2/wa-relay/internal/service/outbound"
	"github.com/mamadbah2/wa-relay/internal/service/screening"
	"github.com/mamadbah2/wa-relay/internal/service/surveys"
	"github.com/mamadbah2/wa-relay/pkg/clients/mailer"
	"github.com/mamadbah2/wa-relay/pkg/clients/pangea"
	"github.com/mamadbah2/wa-relay/pkg/clients/rapidpro"
	whatsappclient "github.com/mamadbah2/wa-relay/pkg/clients/whatsapp"
	"github.com/mamadbah2/wa-relay/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Server.LogLevel))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	mongoRepo, err := mongodb.NewMongoDBRepository(context.Background(), cfg.MongoDB.URI, cfg.MongoDB.DBName)
	if err != nil {
		baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
	}
	defer func() {
		if err := mongoRepo.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close mongodb connection", zap.Error(err))
		}
	}()

	businessSvc := businesses.NewService(mongoRepo, baseLogger.Named("svc.businesses"))
	whatsClient := whatsappclient.NewClient(cfg.WhatsApp)
	rapidClient := rapidpro.NewClient(cfg.RapidPro)

	inboundOpts := []inbound.Option{inbound.WithExtendedTypes(cfg.WhatsApp.ForwardExtendedTypes)}

	if cfg.Redis.URL != "" {
		guard, err := redisrepo.NewDeliveryGuard(context.Background(), cfg.Redis.URL, cfg.Redis.DedupTTL)
		if err != nil {
			baseLogger.Fatal("failed to init redis delivery guard", zap.Error(err))
		}
		defer func() { _ = guard.Close() }()
		inboundOpts = append(inboundOpts, inbound.WithDeliveryGuard(guard))
		baseLogger.Info("redelivery guard enabled", zap.Duration("ttl", cfg.Redis.DedupTTL))
	}

	if cfg.ScreeningEnabled() {
		screener := screening.NewService(pangea.NewClient(cfg.Screening), cfg.Screening.Threshold, baseLogger.Named("svc.screening"))
		inboundOpts = append(inboundOpts, inbound.WithScreener(screener))
		baseLogger.Info("url screening enabled", zap.Int("threshold", cfg.Screening.Threshold))
	} else {
		baseLogger.Warn("pangea token missing, url screening disabled")
	}

	var mail mailer.Sender
	if cfg.SMTPEnabled() {
		mail = mailer.New(cfg.SMTP)
	} else {
		baseLogger.Warn("smtp not configured, survey e-mails disabled")
	}

	var sheet sheets.Repository
	if cfg.SheetsEnabled() {
		sheetsRepo, err := sheets.NewGoogleSheetRepository(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
		sheet = sheetsRepo
	} else {
		baseLogger.Warn("google sheets not configured, survey rows disabled")
	}

	inboundSvc := inbound.NewService(businessSvc, rapidClient, whatsClient, baseLogger.Named("svc.inbound"), inboundOpts...)
	outboundSvc := outbound.NewService(businessSvc, whatsClient, baseLogger.Named("svc.outbound"))
	surveySvc := surveys.NewService(mail, sheet, cfg.Sheets.Columns, baseLogger.Named("svc.surveys"))

	engine := router.New(router.Handlers{
		Webhook:  handlers.NewWebhookHandler(cfg.WhatsApp.VerifyToken, inboundSvc, baseLogger.Named("handlers.webhook")),
		RapidPro: handlers.NewRapidProHandler(outboundSvc, surveySvc, baseLogger.Named("handlers.rapidpro")),
		Business: handlers.NewBusinessHandler(businessSvc, baseLogger.Named("handlers.business")),
	}, cfg.WhatsApp.AppSecret, baseLogger.Named("router"))

	sched := scheduler.NewScheduler(cfg.Scheduler, businessSvc, whatsClient, baseLogger.Named("scheduler"))
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
