package models

import "time"

// DailyReport represents the aggregated daily ledger activity stored in MongoDB.
type DailyReport struct {
	Date              time.Time `bson:"date" json:"date"`
	BillCount         int       `bson:"bill_count" json:"bill_count"`
	SalesAmount       float64   `bson:"sales_amount" json:"sales_amount"`
	CollectedAmount   float64   `bson:"collected_amount" json:"collected_amount"`
	OutstandingAmount float64   `bson:"outstanding_amount" json:"outstanding_amount"`
	CreatedAt         time.Time `bson:"created_at" json:"created_at"`
}
