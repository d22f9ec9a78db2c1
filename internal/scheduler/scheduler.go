package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/wa-relay/internal/config"
	"github.com/mamadbah2/wa-relay/internal/domain/models"
	"github.com/mamadbah2/wa-relay/pkg/clients/whatsapp"
)

// BusinessLister returns the businesses whose numbers should be checked.
type BusinessLister interface {
	List(ctx context.Context) ([]models.Business, error)
}

// PhoneNumberChecker fetches a phone number node from the Graph API.
type PhoneNumberChecker interface {
	GetPhoneNumber(ctx context.Context, phoneNumberID string) (*whatsapp.PhoneNumber, error)
}

// HealthReport summarizes one token health run.
type HealthReport struct {
	Checked int
	Failed  map[string]error
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron       *cron.Cron
	businesses BusinessLister
	graph      PhoneNumberChecker
	cfg        config.SchedulerConfig
	logger     *zap.Logger
}

// NewScheduler creates a new scheduler instance.
func NewScheduler(cfg config.SchedulerConfig, businesses BusinessLister, graph PhoneNumberChecker, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}

	// robfig/cron/v3 default parser is standard cron (5 fields: min, hour, dom, month, dow).
	c := cron.New()

	return &Scheduler{
		cron:       c,
		businesses: businesses,
		graph:      graph,
		cfg:        cfg,
		logger:     logger,
	}
}

// Start registers the jobs and starts the scheduler.
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler", zap.String("health_cron", s.cfg.HealthCron))

	if _, err := s.cron.AddFunc(s.cfg.HealthCron, s.runTokenHealth); err != nil {
		return fmt.Errorf("schedule token health check %q: %w", s.cfg.HealthCron, err)
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) runTokenHealth() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if _, err := s.CheckTokens(ctx); err != nil {
		s.logger.Error("token health check failed", zap.Error(err))
	}
}

// CheckTokens asks the Graph API for every registered phone number. Failures
// usually mean an expired access token or a number removed from the account.
func (s *Scheduler) CheckTokens(ctx context.Context) (HealthReport, error) {
	report := HealthReport{Failed: map[string]error{}}

	businesses, err := s.businesses.List(ctx)
	if err != nil {
		return report, fmt.Errorf("list businesses: %w", err)
	}

	for _, business := range businesses {
		report.Checked++
		number, err := s.graph.GetPhoneNumber(ctx, business.BusinessID)
		if err != nil {
			report.Failed[business.ID] = err
			s.logger.Error("whatsapp phone number unreachable",
				zap.String("business", business.ID),
				zap.String("phone_number_id", business.BusinessID),
				zap.Error(err))
			continue
		}
		s.logger.Debug("whatsapp phone number healthy",
			zap.String("business", business.ID),
			zap.String("quality_rating", number.QualityRating))
	}

	s.logger.Info("token health check completed", zap.Int("checked", report.Checked), zap.Int("failed", len(report.Failed)))
	return report, nil
}
