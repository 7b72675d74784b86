package cablestock

import (
	"context"
	"sort"

	"github.com/hanbit-systems/netstock/internal/domain/models"
)

// Compare diffs two monthly snapshots and classifies each per-type change as
// used or restocked. Both snapshots must already exist.
func (s *Service) Compare(ctx context.Context, fromMonth, toMonth string) ([]models.ConsumptionRecord, error) {
	from, err := s.store.GetByMonth(ctx, fromMonth)
	if err != nil {
		return nil, err
	}
	to, err := s.store.GetByMonth(ctx, toMonth)
	if err != nil {
		return nil, err
	}

	records := diffSnapshots(from, to)
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].UsedQuantity != records[j].UsedQuantity {
			return records[i].UsedQuantity > records[j].UsedQuantity
		}
		return records[i].InstockQuantity > records[j].InstockQuantity
	})
	return records, nil
}

// diffSnapshots walks every type in from (plus types new in to) and applies
// the ledger's classification conventions: the sign of the raw quantity
// delta decides used vs instock, and identifier changes are split by plain
// lexicographic string comparison. Both are preserved source behavior, not a
// physical consumption model.
func diffSnapshots(from, to *models.CableStockSnapshot) []models.ConsumptionRecord {
	toByType := make(map[string]models.StockItem, len(to.Items))
	for _, item := range to.Items {
		if _, ok := toByType[item.Type]; !ok {
			toByType[item.Type] = item
		}
	}

	records := make([]models.ConsumptionRecord, 0, len(from.Items)+len(to.Items))
	covered := make(map[string]bool, len(from.Items))

	for _, fromItem := range from.Items {
		if covered[fromItem.Type] {
			continue
		}
		covered[fromItem.Type] = true
		records = append(records, classify(fromItem, toByType[fromItem.Type]))
	}

	// Types appearing for the first time in the to month count as fully
	// used, whatever the sign rule would say.
	for _, toItem := range to.Items {
		if covered[toItem.Type] {
			continue
		}
		covered[toItem.Type] = true
		record := classify(models.StockItem{Type: toItem.Type}, toItem)
		record.UsedQuantity = toItem.Quantity
		record.InstockQuantity = 0
		records = append(records, record)
	}

	return records
}

func classify(fromItem, toItem models.StockItem) models.ConsumptionRecord {
	record := models.ConsumptionRecord{
		Type:         fromItem.Type,
		FromQuantity: fromItem.Quantity,
		ToQuantity:   toItem.Quantity,
	}
	if record.Type == "" {
		record.Type = toItem.Type
	}

	// A quantity drop is consumption, a rise is a restock.
	delta := fromItem.Quantity - toItem.Quantity
	if delta >= 0 {
		record.UsedQuantity = delta
	} else {
		record.InstockQuantity = -delta
	}

	switch {
	case fromItem.LinNo == toItem.LinNo:
		record.UsedLinNo = toItem.LinNo
	case toItem.LinNo >= fromItem.LinNo:
		record.UsedLinNo = toItem.LinNo
		record.InstockLinNo = fromItem.LinNo
	default:
		record.UsedLinNo = fromItem.LinNo
		record.InstockLinNo = toItem.LinNo
	}

	return record
}
