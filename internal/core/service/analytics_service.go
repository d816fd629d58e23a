package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/ledgerbook/bookkeeper/internal/core/analytics"
	"github.com/ledgerbook/bookkeeper/internal/core/domain"
	"github.com/ledgerbook/bookkeeper/internal/core/ports"
	"github.com/ledgerbook/bookkeeper/internal/core/report"
)

const (
	maxStatDays     = 90
	maxForecastDays = 365
)

// AnalyticsService loads one snapshot per call and runs the analytics engine
// over it. Calendar days are cut in the configured location.
type AnalyticsService struct {
	repo   ports.LedgerRepository
	opts   analytics.Options
	loc    *time.Location
	now    func() time.Time
	logger zerolog.Logger
}

var _ ports.AnalyticsService = (*AnalyticsService)(nil)

// NewAnalyticsService returns an AnalyticsService. Zero option fields take
// the engine defaults and a nil loc means UTC.
func NewAnalyticsService(repo ports.LedgerRepository, opts analytics.Options, loc *time.Location, logger zerolog.Logger) *AnalyticsService {
	if loc == nil {
		loc = time.UTC
	}
	return &AnalyticsService{repo: repo, opts: opts.WithDefaults(), loc: loc, now: time.Now, logger: logger}
}

func (s *AnalyticsService) snapshot(ctx context.Context, actor ports.Actor, sessionID int64) (*domain.Snapshot, error) {
	if _, err := authorizeSession(ctx, s.repo, actor, sessionID); err != nil {
		return nil, err
	}
	return s.repo.Snapshot(ctx, sessionID)
}

func (s *AnalyticsService) clock() time.Time {
	return s.now().In(s.loc)
}

// Summary returns every metric for the session.
func (s *AnalyticsService) Summary(ctx context.Context, actor ports.Actor, sessionID int64) (*analytics.Summary, error) {
	snap, err := s.snapshot(ctx, actor, sessionID)
	if err != nil {
		return nil, err
	}
	sum := analytics.Summarize(snap, s.clock(), s.opts)
	return &sum, nil
}

// DailyStatistics returns one entry per day for the last days days, newest first.
func (s *AnalyticsService) DailyStatistics(ctx context.Context, actor ports.Actor, sessionID int64, days int) ([]analytics.DailyStat, error) {
	if days <= 0 || days > maxStatDays {
		return nil, fmt.Errorf("%w: days must be between 1 and %d", domain.ErrInvalidInput, maxStatDays)
	}
	snap, err := s.snapshot(ctx, actor, sessionID)
	if err != nil {
		return nil, err
	}
	return analytics.DailyStatistics(snap, s.clock(), days), nil
}

// Velocity returns how fast the session sells.
func (s *AnalyticsService) Velocity(ctx context.Context, actor ports.Actor, sessionID int64) (*analytics.Velocity, error) {
	snap, err := s.snapshot(ctx, actor, sessionID)
	if err != nil {
		return nil, err
	}
	v := analytics.SalesVelocity(snap)
	return &v, nil
}

// Profitability partitions sales by profit.
func (s *AnalyticsService) Profitability(ctx context.Context, actor ports.Actor, sessionID int64) (*analytics.Profitability, error) {
	snap, err := s.snapshot(ctx, actor, sessionID)
	if err != nil {
		return nil, err
	}
	p := analytics.ProfitabilityAnalysis(snap)
	return &p, nil
}

// ROI returns return-on-investment metrics for the session.
func (s *AnalyticsService) ROI(ctx context.Context, actor ports.Actor, sessionID int64) (*analytics.ROI, error) {
	snap, err := s.snapshot(ctx, actor, sessionID)
	if err != nil {
		return nil, err
	}
	r := analytics.ROIAnalysis(snap, s.opts.AdMatcher, s.opts.LTVMultiplier)
	return &r, nil
}

// ExpenseBreakdown groups expenses by category.
func (s *AnalyticsService) ExpenseBreakdown(ctx context.Context, actor ports.Actor, sessionID int64) ([]analytics.CategoryTotal, error) {
	snap, err := s.snapshot(ctx, actor, sessionID)
	if err != nil {
		return nil, err
	}
	return analytics.ExpenseBreakdown(snap, s.opts.Classifier), nil
}

// Forecast projects revenue and profit for the next days days.
func (s *AnalyticsService) Forecast(ctx context.Context, actor ports.Actor, sessionID int64, days int) (*analytics.Forecast, error) {
	if days <= 0 || days > maxForecastDays {
		return nil, fmt.Errorf("%w: days must be between 1 and %d", domain.ErrInvalidInput, maxForecastDays)
	}
	snap, err := s.snapshot(ctx, actor, sessionID)
	if err != nil {
		return nil, err
	}
	f := analytics.SalesForecast(snap, s.clock(), days)
	return &f, nil
}

// Report renders the session summary as plain text.
func (s *AnalyticsService) Report(ctx context.Context, actor ports.Actor, sessionID int64) (string, error) {
	sum, err := s.Summary(ctx, actor, sessionID)
	if err != nil {
		return "", err
	}
	return report.Text(*sum, s.loc), nil
}

// Export renders the session's records of one kind as CSV.
func (s *AnalyticsService) Export(ctx context.Context, actor ports.Actor, sessionID int64, kind report.ExportKind) ([]byte, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: unknown export %q", domain.ErrInvalidInput, kind)
	}
	snap, err := s.snapshot(ctx, actor, sessionID)
	if err != nil {
		return nil, err
	}
	data, err := report.CSV(kind, snap, s.loc)
	if err != nil {
		s.logger.Error().Err(err).Int64("session_id", sessionID).Str("kind", string(kind)).Msg("export failed")
		return nil, err
	}
	return data, nil
}

