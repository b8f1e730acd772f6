package mongodb

import (
	"context"
	"fmt"

	"github.com/mamadbah2/shopledger/internal/domain/models"
)

// SaveDailyReport saves a daily ledger report to the database.
func (r *Repository) SaveDailyReport(ctx context.Context, report models.DailyReport) error {
	_, err := r.db.Collection(reportsColl).InsertOne(ctx, report)
	if err != nil {
		return fmt.Errorf("failed to insert daily report: %w", err)
	}
	return nil
}
