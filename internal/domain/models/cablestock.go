package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// monthLayout is the snapshot key format, MM/YYYY.
const monthLayout = "01/2006"

// StockItem is one normalized cable stock row: the type is the
// "category-subtype" concatenation from the source sheet, LinNo the LINNO
// identifier text.
type StockItem struct {
	Type     string `bson:"type" json:"type"`
	LinNo    string `bson:"linno" json:"linno"`
	Quantity int    `bson:"quantity" json:"quantity"`
}

// CableStockSnapshot holds one calendar month of cable stock. Re-uploading
// a month replaces the document wholesale.
type CableStockSnapshot struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	Month      string             `bson:"month" json:"month"`
	Items      []StockItem        `bson:"items" json:"items"`
	UploadDate time.Time          `bson:"uploadDate" json:"uploadDate"`
}

// ConsumptionRecord is the per-type result of diffing two monthly snapshots.
type ConsumptionRecord struct {
	Type            string `json:"type"`
	FromQuantity    int    `json:"fromQuantity"`
	ToQuantity      int    `json:"toQuantity"`
	UsedQuantity    int    `json:"usedQuantity"`
	UsedLinNo       string `json:"usedLinno"`
	InstockQuantity int    `json:"instockQuantity"`
	InstockLinNo    string `json:"instockLinno"`
}

// MonthKey formats a time as a snapshot month key.
func MonthKey(t time.Time) string {
	return t.Format(monthLayout)
}

// RecentMonths returns the month keys for now and the n-1 months before it,
// newest first. Months are anchored to their first day to avoid end-of-month
// rollover when stepping back.
func RecentMonths(now time.Time, n int) []string {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	keys := make([]string, 0, n)
	for i := 0; i < n; i++ {
		keys = append(keys, MonthKey(first.AddDate(0, -i, 0)))
	}
	return keys
}
