package dialog

import (
	"context"

	"github.com/ivanoskov/civic_bot/internal/model"
)

// Registration — данные, собранные на шагах регистрации
type Registration struct {
	Name      string
	Mobile    string
	Area      string
	Ward      string
	ChannelID string
}

// Gateway — хранилище пользователей, жалоб и налоговых записей.
// Отсутствие записи сообщается через ErrNotFound, любые другие ошибки считаются сбоем хранилища.
type Gateway interface {
	// RegisterUser атомарно создает пользователя и запись о сессии канала
	RegisterUser(ctx context.Context, reg Registration) (model.User, error)
	CreateComplaint(ctx context.Context, c model.Complaint) (model.Complaint, error)
	ListComplaints(ctx context.Context, loginID string) ([]model.Complaint, error)
	FindUserByLoginID(ctx context.Context, loginID string) (model.User, error)
	FindTaxRecord(ctx context.Context, propertyID string) (model.PropertyTaxRecord, error)
}

// Receipts выпускает квитанцию по налоговой записи и отдает ссылку на нее
type Receipts interface {
	URL(propertyID string) string
	Render(ctx context.Context, rec model.PropertyTaxRecord) error
}
