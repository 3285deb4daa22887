package model

import (
	"fmt"
	"strings"
	"time"
)

type TaxStatus string

const (
	TaxPaid    TaxStatus = "paid"
	TaxDue     TaxStatus = "due"
	TaxPending TaxStatus = "pending"
)

func ParseTaxStatus(raw string) (TaxStatus, error) {
	switch s := TaxStatus(strings.ToLower(strings.TrimSpace(raw))); s {
	case TaxPaid, TaxDue, TaxPending:
		return s, nil
	default:
		return "", fmt.Errorf("unknown tax status %q", raw)
	}
}

// PropertyTaxRecord — начисление налога на недвижимость (только чтение для диалога)
type PropertyTaxRecord struct {
	ID         string    `json:"id"`
	PropertyID string    `json:"property_id"`
	OwnerName  string    `json:"owner_name"`
	Address    string    `json:"address"`
	Amount     float64   `json:"amount"`
	Status     TaxStatus `json:"status"`
	Year       int       `json:"year"`
	ReceiptNo  string    `json:"receipt_no,omitempty"`
	BillNo     string    `json:"bill_no,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

func (r *PropertyTaxRecord) GenerateID() {
	if r.ID == "" {
		r.ID = NewRowID()
	}
}

// NormalizePropertyID приводит идентификатор объекта к виду, в котором он хранится
func NormalizePropertyID(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}
