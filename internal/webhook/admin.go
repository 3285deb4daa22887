package webhook

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/ivanoskov/civic_bot/internal/chatlog"
	"github.com/ivanoskov/civic_bot/internal/dialog"
	"github.com/ivanoskov/civic_bot/internal/model"
	"github.com/ivanoskov/civic_bot/internal/receipt"
	"github.com/ivanoskov/civic_bot/internal/repository"
)

// BackOffice — операции бэк-офиса над жалобами и налоговыми записями
type BackOffice interface {
	Complaints(ctx context.Context, filter repository.ComplaintFilter) ([]model.ComplaintView, error)
	SetComplaintStatus(ctx context.Context, complaintID, requested string) (*model.Complaint, error)
	Properties(ctx context.Context) ([]model.PropertyTaxRecord, error)
	FindTaxRecord(ctx context.Context, propertyID string) (model.PropertyTaxRecord, error)
}

type Admin struct {
	desk   BackOffice
	chats  *chatlog.Store
	logger *slog.Logger
}

func NewAdmin(desk BackOffice, chats *chatlog.Store, logger *slog.Logger) *Admin {
	if logger == nil {
		logger = slog.Default()
	}
	return &Admin{desk: desk, chats: chats, logger: logger}
}

func (a *Admin) RegisterRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/complaints", a.ListComplaints)
		r.Patch("/complaints/{complaint_id}/status", a.UpdateComplaintStatus)
		r.Get("/properties", a.ListProperties)
		r.Get("/property-tax/receipt/{property_id}", a.Receipt)
		r.Get("/chatlogs", a.ListChatLogs)
		r.Get("/chatlogs/{user_id}", a.GetChatLog)
	})
}

// ListComplaints отдает жалобы вместе с данными заявителей.
// Фильтры: ?login=, ?status=, ?limit=
func (a *Admin) ListComplaints(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := repository.ComplaintFilter{LoginID: q.Get("login")}
	if raw := q.Get("status"); raw != "" {
		status, err := model.ParseComplaintStatus(raw)
		if err != nil {
			Error(w, http.StatusBadRequest, err.Error())
			return
		}
		filter.Status = status
	}
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			Error(w, http.StatusBadRequest, "invalid limit")
			return
		}
		filter.Limit = n
	}

	views, err := a.desk.Complaints(r.Context(), filter)
	if err != nil {
		a.logger.Error("failed to list complaints", "error", err)
		Error(w, http.StatusInternalServerError, "failed to list complaints")
		return
	}
	if views == nil {
		views = []model.ComplaintView{}
	}
	JSON(w, http.StatusOK, views)
}

func (a *Admin) UpdateComplaintStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "complaint_id")
	requested := r.URL.Query().Get("status")
	if requested == "" {
		Error(w, http.StatusBadRequest, "status is required")
		return
	}

	updated, err := a.desk.SetComplaintStatus(r.Context(), id, requested)
	switch {
	case errors.Is(err, dialog.ErrNotFound):
		Error(w, http.StatusNotFound, "complaint not found")
		return
	case err != nil:
		a.logger.Error("failed to update complaint status", "complaint_id", id, "error", err)
		Error(w, http.StatusInternalServerError, "failed to update status")
		return
	}

	JSON(w, http.StatusOK, map[string]string{
		"message": "Status updated successfully",
		"status":  string(updated.Status),
	})
}

func (a *Admin) ListProperties(w http.ResponseWriter, r *http.Request) {
	records, err := a.desk.Properties(r.Context())
	if err != nil {
		a.logger.Error("failed to list properties", "error", err)
		Error(w, http.StatusInternalServerError, "failed to list properties")
		return
	}
	if records == nil {
		records = []model.PropertyTaxRecord{}
	}
	JSON(w, http.StatusOK, records)
}

// Receipt рисует квитанцию по записи и отдает ее как PNG
func (a *Admin) Receipt(w http.ResponseWriter, r *http.Request) {
	id := model.NormalizePropertyID(chi.URLParam(r, "property_id"))

	rec, err := a.desk.FindTaxRecord(r.Context(), id)
	switch {
	case errors.Is(err, dialog.ErrNotFound):
		Error(w, http.StatusNotFound, "property not found")
		return
	case err != nil:
		a.logger.Error("failed to find tax record", "property_id", id, "error", err)
		Error(w, http.StatusInternalServerError, "failed to load property")
		return
	}

	data, err := receipt.RenderPNG(rec)
	if err != nil {
		a.logger.Error("failed to render receipt", "property_id", id, "error", err)
		Error(w, http.StatusInternalServerError, "failed to render receipt")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", `inline; filename="`+receipt.FileName(id)+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (a *Admin) ListChatLogs(w http.ResponseWriter, r *http.Request) {
	if a.chats == nil {
		JSON(w, http.StatusOK, []chatlog.Log{})
		return
	}
	JSON(w, http.StatusOK, a.chats.All())
}

func (a *Admin) GetChatLog(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")
	if a.chats == nil {
		Error(w, http.StatusNotFound, "chat log not found")
		return
	}
	l, ok := a.chats.Get(userID)
	if !ok {
		Error(w, http.StatusNotFound, "chat log not found")
		return
	}
	JSON(w, http.StatusOK, l)
}
