package repository

import (
	"context"
	"errors"

	"github.com/ivanoskov/civic_bot/internal/model"
)

// ErrNotFound — запрошенная запись отсутствует
var ErrNotFound = errors.New("not found")

type Repository interface {
	// Пользователи
	RegisterUser(ctx context.Context, user *model.User, record *model.SessionRecord) error
	GetUserByLoginID(ctx context.Context, loginID string) (*model.User, error)

	// Жалобы
	CreateComplaint(ctx context.Context, complaint *model.Complaint) error
	GetComplaintsByLoginID(ctx context.Context, loginID string) ([]model.Complaint, error)
	GetComplaints(ctx context.Context, filter ComplaintFilter) ([]model.ComplaintView, error)
	UpdateComplaintStatus(ctx context.Context, complaintID string, status model.ComplaintStatus) (*model.Complaint, error)

	// Налог на недвижимость
	CreateTaxRecord(ctx context.Context, record *model.PropertyTaxRecord) error
	GetTaxRecord(ctx context.Context, propertyID string) (*model.PropertyTaxRecord, error)
	GetTaxRecords(ctx context.Context) ([]model.PropertyTaxRecord, error)

	Close() error
}

type ComplaintFilter struct {
	LoginID string
	Status  model.ComplaintStatus // пустая строка — любой статус
	Limit   int
}
