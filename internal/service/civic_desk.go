package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/ivanoskov/civic_bot/internal/dialog"
	"github.com/ivanoskov/civic_bot/internal/model"
	"github.com/ivanoskov/civic_bot/internal/repository"
)

// ComplaintNotifier получает уведомление о каждой новой жалобе
type ComplaintNotifier interface {
	ComplaintFiled(ctx context.Context, complaint model.Complaint) error
}

// CivicDesk — прикладной слой над хранилищем: регистрация, жалобы, налоговые записи.
// Для движка диалога он реализует dialog.Gateway.
type CivicDesk struct {
	repo     repository.Repository
	notifier ComplaintNotifier
	logger   *slog.Logger
	alerts   sync.WaitGroup
}

// NewCivicDesk создает новый экземпляр CivicDesk; notifier может быть nil
func NewCivicDesk(repo repository.Repository, notifier ComplaintNotifier) *CivicDesk {
	return &CivicDesk{
		repo:     repo,
		notifier: notifier,
		logger:   slog.Default(),
	}
}

var _ dialog.Gateway = (*CivicDesk)(nil)

func (s *CivicDesk) RegisterUser(ctx context.Context, reg dialog.Registration) (model.User, error) {
	user := &model.User{
		Name:   reg.Name,
		Mobile: reg.Mobile,
		Area:   reg.Area,
		Ward:   reg.Ward,
	}
	record := &model.SessionRecord{
		PhoneNumber: reg.ChannelID,
		State:       model.StateMainMenu,
	}
	if err := s.repo.RegisterUser(ctx, user, record); err != nil {
		return model.User{}, translate("register user", err)
	}
	return *user, nil
}

func (s *CivicDesk) CreateComplaint(ctx context.Context, c model.Complaint) (model.Complaint, error) {
	if err := s.repo.CreateComplaint(ctx, &c); err != nil {
		return model.Complaint{}, translate("create complaint", err)
	}

	if s.notifier != nil {
		s.alerts.Add(1)
		go func(c model.Complaint) {
			defer s.alerts.Done()
			if err := s.notifier.ComplaintFiled(context.WithoutCancel(ctx), c); err != nil {
				s.logger.Warn("failed to notify about complaint", "complaint_id", c.ComplaintID, "error", err)
			}
		}(c)
	}
	return c, nil
}

// Wait дожидается отправки уведомлений о жалобах
func (s *CivicDesk) Wait() {
	s.alerts.Wait()
}

func (s *CivicDesk) ListComplaints(ctx context.Context, loginID string) ([]model.Complaint, error) {
	complaints, err := s.repo.GetComplaintsByLoginID(ctx, loginID)
	if err != nil {
		return nil, translate("list complaints", err)
	}
	return complaints, nil
}

func (s *CivicDesk) FindUserByLoginID(ctx context.Context, loginID string) (model.User, error) {
	user, err := s.repo.GetUserByLoginID(ctx, strings.ToUpper(strings.TrimSpace(loginID)))
	if err != nil {
		return model.User{}, translate("find user", err)
	}
	return *user, nil
}

func (s *CivicDesk) FindTaxRecord(ctx context.Context, propertyID string) (model.PropertyTaxRecord, error) {
	rec, err := s.repo.GetTaxRecord(ctx, model.NormalizePropertyID(propertyID))
	if err != nil {
		return model.PropertyTaxRecord{}, translate("find tax record", err)
	}
	return *rec, nil
}

// Complaints — список жалоб для бэк-офиса
func (s *CivicDesk) Complaints(ctx context.Context, filter repository.ComplaintFilter) ([]model.ComplaintView, error) {
	views, err := s.repo.GetComplaints(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to get complaints: %w", err)
	}
	return views, nil
}

// SetComplaintStatus меняет статус жалобы по запросу бэк-офиса
func (s *CivicDesk) SetComplaintStatus(ctx context.Context, complaintID, requested string) (*model.Complaint, error) {
	status := AdminStatus(requested)
	updated, err := s.repo.UpdateComplaintStatus(ctx, strings.TrimSpace(complaintID), status)
	if err != nil {
		return nil, translate("update complaint status", err)
	}
	s.logger.Info("complaint status changed", "complaint_id", updated.ComplaintID, "status", string(status))
	return updated, nil
}

// AdminStatus переводит статус из панели бэк-офиса: completed и resolved -> resolved,
// in_progress -> in_progress, все остальное -> pending
func AdminStatus(raw string) model.ComplaintStatus {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "completed", "resolved":
		return model.ComplaintResolved
	case "in_progress":
		return model.ComplaintInProgress
	default:
		return model.ComplaintPending
	}
}

func (s *CivicDesk) Properties(ctx context.Context) ([]model.PropertyTaxRecord, error) {
	records, err := s.repo.GetTaxRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get tax records: %w", err)
	}
	return records, nil
}

// translate приводит ошибки хранилища к таксономии движка диалога
func translate(op string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: %w", dialog.ErrNotFound, err)
	}
	return &dialog.PersistenceError{Op: op, Err: err}
}
