package repository

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ivanoskov/civic_bot/internal/model"
)

// SampleTaxRecords — демонстрационные начисления, которые загружаются в пустую базу
func SampleTaxRecords() []model.PropertyTaxRecord {
	return []model.PropertyTaxRecord{
		{
			PropertyID: "PROP-001",
			OwnerName:  "John Doe",
			Address:    "123 Main Street, Ward 1",
			Amount:     15000,
			Status:     model.TaxPaid,
			Year:       2025,
			ReceiptNo:  "REC-2025-001",
			BillNo:     "BILL-2025-001",
		},
		{
			PropertyID: "PROP-002",
			OwnerName:  "Jane Smith",
			Address:    "456 Oak Avenue, Ward 2",
			Amount:     20000,
			Status:     model.TaxDue,
			Year:       2025,
			BillNo:     "BILL-2025-002",
		},
		{
			PropertyID: "PROP-003",
			OwnerName:  "Bob Johnson",
			Address:    "789 Pine Road, Ward 3",
			Amount:     18000,
			Status:     model.TaxPending,
			Year:       2025,
			BillNo:     "BILL-2025-003",
		},
	}
}

// Seed добавляет демонстрационные записи, если таблица налогов пуста.
// Возвращает число вставленных записей.
func Seed(ctx context.Context, repo Repository) (int, error) {
	existing, err := repo.GetTaxRecords(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to check tax records: %w", err)
	}
	if len(existing) > 0 {
		slog.Info("tax records already present, skipping seed", "count", len(existing))
		return 0, nil
	}

	inserted := 0
	for _, rec := range SampleTaxRecords() {
		rec := rec
		if err := repo.CreateTaxRecord(ctx, &rec); err != nil {
			return inserted, fmt.Errorf("failed to seed %s: %w", rec.PropertyID, err)
		}
		inserted++
	}
	slog.Info("seeded tax records", "count", inserted)
	return inserted, nil
}
