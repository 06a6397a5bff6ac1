package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/kisanpay/milkledger/internal/config"
	"github.com/kisanpay/milkledger/internal/domain/models"
	"github.com/kisanpay/milkledger/internal/repository/sheets"
	"github.com/kisanpay/milkledger/internal/service/reporting"
	"github.com/kisanpay/milkledger/pkg/clients/sms"
)

// DigestArchive stores the nightly digest documents.
type DigestArchive interface {
	Save(ctx context.Context, digest models.CollectionDigest) error
}

// Scheduler runs the nightly collection-digest job. The job only calls the
// same read-side projections the API serves and archives their output; the
// ledgers themselves are never written from here.
type Scheduler struct {
	cron         *cron.Cron
	reportingSvc *reporting.Service
	archive      DigestArchive
	exporter     sheets.Exporter
	smsClient    sms.Client
	cfg          config.Config
	logger       *zap.Logger
}

// NewScheduler creates a new scheduler instance. Exporter and smsClient may
// be nil; the corresponding steps are skipped.
func NewScheduler(cfg config.Config, reportingSvc *reporting.Service, archive DigestArchive, exporter sheets.Exporter, smsClient sms.Client, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := []cron.Option{}
	if loc, err := time.LoadLocation(cfg.Digest.Timezone); err == nil {
		opts = append(opts, cron.WithLocation(loc))
	} else {
		logger.Warn("invalid digest timezone, using local", zap.String("timezone", cfg.Digest.Timezone), zap.Error(err))
	}

	return &Scheduler{
		cron:         cron.New(opts...),
		reportingSvc: reportingSvc,
		archive:      archive,
		exporter:     exporter,
		smsClient:    smsClient,
		cfg:          cfg,
		logger:       logger,
	}
}

// Start starts the scheduler.
func (s *Scheduler) Start() {
	s.logger.Info("starting scheduler", zap.String("schedule", s.cfg.Digest.CronSchedule))

	if _, err := s.cron.AddFunc(s.cfg.Digest.CronSchedule, s.runDailyDigest); err != nil {
		s.logger.Error("failed to schedule daily digest", zap.Error(err))
	}

	s.cron.Start()
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	s.cron.Stop()
}

func (s *Scheduler) runDailyDigest() {
	s.logger.Info("generating daily collection digest")
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	digest, err := s.reportingSvc.BuildDailyDigest(ctx, time.Now())
	if err != nil {
		s.logger.Error("failed to build daily digest", zap.Error(err))
		return
	}

	if err := s.archive.Save(ctx, digest); err != nil {
		s.logger.Error("failed to archive daily digest", zap.Error(err))
	}

	if s.exporter != nil {
		if err := s.exporter.ExportDigest(ctx, digest); err != nil {
			s.logger.Error("failed to export daily digest", zap.Error(err))
		}
	}

	if s.smsClient != nil {
		message := digestMessage(digest)
		if _, err := s.smsClient.SendText(ctx, sms.SendTextRequest{
			To:   s.cfg.SMS.OperatorPhone,
			Body: message,
		}); err != nil {
			s.logger.Error("failed to send digest sms", zap.Error(err))
		} else {
			s.logger.Info("daily digest sms sent")
		}
	}
}

func digestMessage(digest models.CollectionDigest) string {
	return fmt.Sprintf("Collection %s: morning %.2f L / %.2f, evening %.2f L / %.2f across %d entries.",
		digest.Date.Format("2006-01-02"),
		digest.Morning.TotalMilkQuantity, digest.Morning.TotalAmount,
		digest.Evening.TotalMilkQuantity, digest.Evening.TotalAmount,
		digest.Morning.TotalEntries+digest.Evening.TotalEntries)
}
