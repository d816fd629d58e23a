package ports

import (
	"context"

	"github.com/ledgerbook/bookkeeper/internal/core/analytics"
	"github.com/ledgerbook/bookkeeper/internal/core/report"
)

// AnalyticsService runs the analytics engine over one session snapshot.
type AnalyticsService interface {
	Summary(ctx context.Context, actor Actor, sessionID int64) (*analytics.Summary, error)
	DailyStatistics(ctx context.Context, actor Actor, sessionID int64, days int) ([]analytics.DailyStat, error)
	Velocity(ctx context.Context, actor Actor, sessionID int64) (*analytics.Velocity, error)
	Profitability(ctx context.Context, actor Actor, sessionID int64) (*analytics.Profitability, error)
	ROI(ctx context.Context, actor Actor, sessionID int64) (*analytics.ROI, error)
	ExpenseBreakdown(ctx context.Context, actor Actor, sessionID int64) ([]analytics.CategoryTotal, error)
	Forecast(ctx context.Context, actor Actor, sessionID int64, days int) (*analytics.Forecast, error)
	// Report renders the summary as plain text.
	Report(ctx context.Context, actor Actor, sessionID int64) (string, error)
	// Export renders one kind of record as CSV.
	Export(ctx context.Context, actor Actor, sessionID int64, kind report.ExportKind) ([]byte, error)
}
