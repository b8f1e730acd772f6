package reporting

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/shopledger/internal/domain/models"
)

const dateLayout = "2006-01-02"

// BillSource provides the bills a report aggregates over.
type BillSource interface {
	ListBillsBetween(ctx context.Context, start, end time.Time) ([]models.Bill, error)
}

// ReportSink persists the finished roll-up.
type ReportSink interface {
	SaveDailyReport(ctx context.Context, report models.DailyReport) error
}

// Exporter mirrors the report to an external spreadsheet. Optional.
type Exporter interface {
	AppendReportRow(ctx context.Context, report models.DailyReport) error
}

// Service rolls the day's ledger activity into a DailyReport.
type Service struct {
	bills    BillSource
	sink     ReportSink
	exporter Exporter
	logger   *zap.Logger
}

// NewService wires a new reporting service instance. exporter may be nil,
// in which case spreadsheet export is skipped.
func NewService(bills BillSource, sink ReportSink, exporter Exporter, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{bills: bills, sink: sink, exporter: exporter, logger: logger}
}

// GenerateDailyReport aggregates every bill created on the given calendar
// day, persists the roll-up and optionally exports it.
func (s *Service) GenerateDailyReport(ctx context.Context, day time.Time) (*models.DailyReport, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.AddDate(0, 0, 1)

	bills, err := s.bills.ListBillsBetween(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("load bills for %s: %w", start.Format(dateLayout), err)
	}

	report := models.DailyReport{
		Date:      start,
		CreatedAt: time.Now().UTC(),
	}
	for _, b := range bills {
		report.BillCount++
		report.SalesAmount += b.TotalAmount
		report.CollectedAmount += b.PaidAmount
		report.OutstandingAmount += b.PendingAmount
	}

	if err := s.sink.SaveDailyReport(ctx, report); err != nil {
		return nil, fmt.Errorf("save daily report: %w", err)
	}

	if s.exporter != nil {
		if err := s.exporter.AppendReportRow(ctx, report); err != nil {
			s.logger.Warn("report export failed", zap.Error(err))
		}
	}

	s.logger.Info("daily report generated",
		zap.String("date", start.Format(dateLayout)),
		zap.Int("bills", report.BillCount),
		zap.Float64("sales", report.SalesAmount),
		zap.Float64("outstanding", report.OutstandingAmount))

	return &report, nil
}
