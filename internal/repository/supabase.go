package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/supabase-community/supabase-go"

	"github.com/ivanoskov/civic_bot/internal/model"
)

const (
	tableUsers       = "users"
	tableSessions    = "sessions"
	tableComplaints  = "complaints"
	tablePropertyTax = "property_tax"
)

// SupabaseRepository хранит данные в Postgres через PostgREST.
// Таблицы и колонки совпадают со схемой SQLite.
type SupabaseRepository struct {
	client *supabase.Client
}

func NewSupabaseRepository(url, key string) (*SupabaseRepository, error) {
	client, err := supabase.NewClient(url, key, &supabase.ClientOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to create supabase client: %w", err)
	}

	return &SupabaseRepository{
		client: client,
	}, nil
}

func (r *SupabaseRepository) Close() error {
	return nil
}

// RegisterUser создает пользователя и запись о сессии.
// PostgREST не дает транзакций между запросами, поэтому при ошибке второй вставки пользователь удаляется.
func (r *SupabaseRepository) RegisterUser(ctx context.Context, user *model.User, record *model.SessionRecord) error {
	user.GenerateID()
	record.GenerateID()
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UserID = user.ID
	record.LoginID = user.LoginID

	if _, _, err := r.client.From(tableUsers).Insert(user, false, "", "", "").Execute(); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	if _, _, err := r.client.From(tableSessions).Insert(record, false, "", "", "").Execute(); err != nil {
		if _, _, delErr := r.client.From(tableUsers).Delete("", "").Eq("id", user.ID).Execute(); delErr != nil {
			slog.Error("failed to remove orphaned user", "login_id", user.LoginID, "error", delErr)
		}
		return fmt.Errorf("failed to create session record: %w", err)
	}
	return nil
}

func (r *SupabaseRepository) GetUserByLoginID(ctx context.Context, loginID string) (*model.User, error) {
	data, _, err := r.client.From(tableUsers).
		Select("*", "", false).
		Eq("login_id", loginID).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	var users []model.User
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, fmt.Errorf("failed to parse users: %w", err)
	}
	if len(users) == 0 {
		return nil, ErrNotFound
	}
	return &users[0], nil
}

func (r *SupabaseRepository) CreateComplaint(ctx context.Context, complaint *model.Complaint) error {
	complaint.GenerateID()
	now := time.Now().UTC()
	complaint.CreatedAt = now
	complaint.UpdatedAt = now

	data, _, err := r.client.From(tableComplaints).Insert(complaint, false, "", "", "").Execute()
	if err != nil {
		return fmt.Errorf("failed to create complaint: %w", err)
	}

	// Парсим ответ, чтобы взять значения, выставленные базой
	var created []model.Complaint
	if err := json.Unmarshal(data, &created); err != nil {
		return fmt.Errorf("failed to parse created complaint: %w", err)
	}
	if len(created) > 0 {
		complaint.CreatedAt = created[0].CreatedAt
		complaint.UpdatedAt = created[0].UpdatedAt
	}
	return nil
}

func (r *SupabaseRepository) GetComplaintsByLoginID(ctx context.Context, loginID string) ([]model.Complaint, error) {
	data, _, err := r.client.From(tableComplaints).
		Select("*", "", false).
		Eq("login_id", loginID).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to get complaints: %w", err)
	}

	var complaints []model.Complaint
	if err := json.Unmarshal(data, &complaints); err != nil {
		return nil, fmt.Errorf("failed to parse complaints: %w", err)
	}
	return complaints, nil
}

func (r *SupabaseRepository) GetComplaints(ctx context.Context, filter ComplaintFilter) ([]model.ComplaintView, error) {
	query := r.client.From(tableComplaints).Select("*", "", false)
	if filter.LoginID != "" {
		query = query.Eq("login_id", filter.LoginID)
	}
	if filter.Status != "" {
		query = query.Eq("status", string(filter.Status))
	}

	// Сначала новые
	query = query.Order("created_at", nil)
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit, "")
	}

	data, count, err := query.Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to get complaints: %w", err)
	}
	slog.Debug("fetched complaints", "count", count)

	var complaints []model.Complaint
	if err := json.Unmarshal(data, &complaints); err != nil {
		return nil, fmt.Errorf("failed to parse complaints: %w", err)
	}

	users, err := r.usersByLoginID(complaints)
	if err != nil {
		return nil, err
	}

	views := make([]model.ComplaintView, 0, len(complaints))
	for _, c := range complaints {
		v := model.ComplaintView{Complaint: c}
		if u, ok := users[c.LoginID]; ok {
			v.UserName, v.UserMobile, v.UserArea, v.UserWard = u.Name, u.Mobile, u.Area, u.Ward
		}
		views = append(views, v)
	}
	return views, nil
}

func (r *SupabaseRepository) usersByLoginID(complaints []model.Complaint) (map[string]model.User, error) {
	seen := make(map[string]bool)
	var ids []string
	for _, c := range complaints {
		if !seen[c.LoginID] {
			seen[c.LoginID] = true
			ids = append(ids, c.LoginID)
		}
	}
	if len(ids) == 0 {
		return map[string]model.User{}, nil
	}

	data, _, err := r.client.From(tableUsers).
		Select("*", "", false).
		In("login_id", ids).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to get complaint owners: %w", err)
	}

	var users []model.User
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, fmt.Errorf("failed to parse users: %w", err)
	}
	out := make(map[string]model.User, len(users))
	for _, u := range users {
		out[u.LoginID] = u
	}
	return out, nil
}

func (r *SupabaseRepository) UpdateComplaintStatus(ctx context.Context, complaintID string, status model.ComplaintStatus) (*model.Complaint, error) {
	update := map[string]interface{}{
		"status":     string(status),
		"updated_at": time.Now().UTC(),
	}
	data, _, err := r.client.From(tableComplaints).
		Update(update, "representation", "").
		Eq("complaint_id", complaintID).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to update complaint status: %w", err)
	}

	var updated []model.Complaint
	if err := json.Unmarshal(data, &updated); err != nil {
		return nil, fmt.Errorf("failed to parse updated complaint: %w", err)
	}
	if len(updated) == 0 {
		return nil, ErrNotFound
	}
	return &updated[0], nil
}

func (r *SupabaseRepository) CreateTaxRecord(ctx context.Context, record *model.PropertyTaxRecord) error {
	record.GenerateID()
	record.PropertyID = model.NormalizePropertyID(record.PropertyID)
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	if _, _, err := r.client.From(tablePropertyTax).Insert(record, false, "", "", "").Execute(); err != nil {
		return fmt.Errorf("failed to create tax record: %w", err)
	}
	return nil
}

func (r *SupabaseRepository) GetTaxRecord(ctx context.Context, propertyID string) (*model.PropertyTaxRecord, error) {
	data, _, err := r.client.From(tablePropertyTax).
		Select("*", "", false).
		Eq("property_id", model.NormalizePropertyID(propertyID)).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to get tax record: %w", err)
	}

	var records []model.PropertyTaxRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse tax records: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrNotFound
	}
	return &records[0], nil
}

func (r *SupabaseRepository) GetTaxRecords(ctx context.Context) ([]model.PropertyTaxRecord, error) {
	data, count, err := r.client.From(tablePropertyTax).
		Select("*", "exact", false).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to get tax records: %w", err)
	}
	slog.Debug("fetched tax records", "count", count)

	var records []model.PropertyTaxRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse tax records: %w", err)
	}
	return records, nil
}
