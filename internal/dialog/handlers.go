package dialog

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ivanoskov/civic_bot/internal/catalog"
	"github.com/ivanoskov/civic_bot/internal/i18n"
	"github.com/ivanoskov/civic_bot/internal/model"
	"github.com/ivanoskov/civic_bot/internal/session"
)

func (e *Engine) handleLogin(_ context.Context, s *session.Session, _ string) (model.Outbound, error) {
	if err := e.moveTo(s, model.StateLanguageSelection); err != nil {
		return model.Outbound{}, err
	}
	return e.Prompt(*s), nil
}

func (e *Engine) handleLanguage(_ context.Context, s *session.Session, text string) (model.Outbound, error) {
	n, ok := ParseChoice(text, len(i18n.Languages))
	if !ok {
		out := e.Prompt(*s)
		out.Body = e.text("language_invalid", s.Lang, nil)
		return out, nil
	}
	s.Lang = i18n.Languages[n-1]
	if err := e.moveTo(s, model.StateWelcomeSelection); err != nil {
		return model.Outbound{}, err
	}
	return e.Prompt(*s), nil
}

func (e *Engine) handleWelcome(_ context.Context, s *session.Session, text string) (model.Outbound, error) {
	var next model.State
	switch strings.TrimSpace(text) {
	case "1":
		next = model.StateLoginName
	case "2":
		next = model.StateTrackingLoginID
	default:
		return e.withNote(s, e.text("invalid_choice", s.Lang, nil)), nil
	}
	if err := e.moveTo(s, next); err != nil {
		return model.Outbound{}, err
	}
	return e.Prompt(*s), nil
}

func (e *Engine) handleTracking(ctx context.Context, s *session.Session, text string) (model.Outbound, error) {
	loginID := strings.ToUpper(strings.TrimSpace(text))
	if loginID == "" {
		return e.Prompt(*s), nil
	}

	user, err := e.gateway.FindUserByLoginID(ctx, loginID)
	if errors.Is(err, ErrNotFound) {
		s.FailedAttempts++
		if s.FailedAttempts >= MaxLoginAttempts {
			e.logger.Warn("login id lookup locked out", "user_id", s.UserID, "attempts", s.FailedAttempts)
			if err := e.moveTo(s, model.StateTerminated); err != nil {
				return model.Outbound{}, err
			}
			return model.Text(e.text("too_many_attempts", s.Lang, nil)), nil
		}
		remaining := strconv.Itoa(MaxLoginAttempts - s.FailedAttempts)
		return model.Text(e.text("login_id_not_found", s.Lang, i18n.Params{"remaining": remaining})), nil
	}
	if err != nil {
		return model.Outbound{}, persistenceErr("find user by login id", err)
	}

	complaints, err := e.gateway.ListComplaints(ctx, user.LoginID)
	if err != nil {
		return model.Outbound{}, persistenceErr("list complaints", err)
	}

	s.FailedAttempts = 0
	adopt(s, user)
	if err := e.moveTo(s, model.StateOtherIssues); err != nil {
		return model.Outbound{}, err
	}

	list := e.text("no_complaints", s.Lang, nil)
	if len(complaints) > 0 {
		list = FormatComplaintStatus(complaints)
	}
	return e.withNote(s, e.text("track_status_result", s.Lang, i18n.Params{"status_list": list})), nil
}

// adopt переносит в сессию данные найденного пользователя
func adopt(s *session.Session, u model.User) {
	s.AccountID = u.ID
	s.LoginID = u.LoginID
	s.Name = u.Name
	s.Mobile = u.Mobile
	s.Area = u.Area
	s.Ward = u.Ward
}

// FormatComplaintStatus — по строке на жалобу: "🆔 CMP-1A2B3C4D: ⏳ Pending (Power Cut)"
func FormatComplaintStatus(complaints []model.Complaint) string {
	lines := make([]string, 0, len(complaints))
	for _, c := range complaints {
		lines = append(lines, fmt.Sprintf("🆔 %s: %s %s (%s)",
			c.ComplaintID, complaintEmoji(c.Status), c.Status.Title(), c.SubIssue))
	}
	return strings.Join(lines, "\n")
}

func complaintEmoji(s model.ComplaintStatus) string {
	switch s {
	case model.ComplaintPending:
		return "⏳"
	case model.ComplaintResolved:
		return "✅"
	default:
		return "🔧"
	}
}

func (e *Engine) handleName(_ context.Context, s *session.Session, text string) (model.Outbound, error) {
	if text == "" {
		return e.Prompt(*s), nil
	}
	s.Name = text
	if err := e.moveTo(s, model.StateLoginMobile); err != nil {
		return model.Outbound{}, err
	}
	return e.Prompt(*s), nil
}

func (e *Engine) handleMobile(_ context.Context, s *session.Session, text string) (model.Outbound, error) {
	if !ValidMobile(text) {
		return model.Text(e.text("invalid_mobile", s.Lang, nil)), nil
	}
	s.Mobile = text
	if err := e.moveTo(s, model.StateLoginAreaWard); err != nil {
		return model.Outbound{}, err
	}
	return e.Prompt(*s), nil
}

func (e *Engine) handleAreaWard(ctx context.Context, s *session.Session, text string) (model.Outbound, error) {
	area, ward, ok := ParseAreaWard(text)
	if !ok {
		return model.Text(e.text("invalid_area_ward", s.Lang, nil)), nil
	}

	user, err := e.gateway.RegisterUser(ctx, Registration{
		Name:      s.Name,
		Mobile:    s.Mobile,
		Area:      area,
		Ward:      ward,
		ChannelID: s.UserID,
	})
	if err != nil {
		return model.Outbound{}, persistenceErr("register user", err)
	}

	adopt(s, user)
	if err := e.moveTo(s, model.StateMainMenu); err != nil {
		return model.Outbound{}, err
	}
	e.logger.Info("user registered", "user_id", s.UserID, "login_id", s.LoginID)
	return e.Prompt(*s), nil
}

func (e *Engine) handleMainMenu(_ context.Context, s *session.Session, text string) (model.Outbound, error) {
	n, ok := ParseChoice(text, e.catalog.Len()+1)
	if !ok {
		return e.withNote(s, e.text("invalid_choice", s.Lang, nil)), nil
	}

	if cat, isCategory := e.catalog.ByIndex(n); isCategory {
		s.ClearComplaint()
		s.Category = cat.Key
		if err := e.moveTo(s, model.StateCategorySelected); err != nil {
			return model.Outbound{}, err
		}
		return e.Prompt(*s), nil
	}

	s.PropertyID = ""
	if err := e.moveTo(s, model.StatePropertyTaxInput); err != nil {
		return model.Outbound{}, err
	}
	return e.Prompt(*s), nil
}

// handleSubIssue выбирает подтип; из SUB_ISSUE_SELECTED (после "назад") выбор можно повторить
func (e *Engine) handleSubIssue(_ context.Context, s *session.Session, text string) (model.Outbound, error) {
	issue, ok := e.catalog.SubIssueByIndex(s.Category, parseIndex(text))
	if !ok {
		return e.withNote(s, e.text("invalid_choice", s.Lang, nil)), nil
	}

	s.SubIssue = issue
	s.ImageRef = ""
	s.Location = nil
	s.Description = ""
	if err := e.moveTo(s, model.StateSubIssueSelected); err != nil {
		return model.Outbound{}, err
	}

	next := model.StateWaitingImage
	if catalog.IsOther(issue) {
		next = model.StateWaitingDescription
	}
	if err := e.moveTo(s, next); err != nil {
		return model.Outbound{}, err
	}
	return e.Prompt(*s), nil
}

func parseIndex(text string) int {
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return 0
	}
	return n
}

func (e *Engine) handleImage(s *session.Session, ref string) (model.Outbound, error) {
	if s.State != model.StateWaitingImage {
		return e.withNote(s, e.text("image_unexpected", s.Lang, nil)), nil
	}
	s.ImageRef = ref
	if err := e.moveTo(s, model.StateWaitingLocation); err != nil {
		return model.Outbound{}, err
	}
	return e.Prompt(*s), nil
}

func (e *Engine) handleLocation(s *session.Session, geo *model.GeoPoint) (model.Outbound, error) {
	if s.State != model.StateWaitingLocation {
		return e.withNote(s, e.text("location_unexpected", s.Lang, nil)), nil
	}
	s.Location = geo
	if err := e.moveTo(s, model.StateWaitingSolutionConfirmation); err != nil {
		return model.Outbound{}, err
	}
	return e.Prompt(*s), nil
}

func (e *Engine) handleDescription(ctx context.Context, s *session.Session, text string) (model.Outbound, error) {
	if text == "" {
		return e.Prompt(*s), nil
	}
	s.Description = text
	return e.fileComplaint(ctx, s, model.ComplaintPending)
}

func (e *Engine) handleSolution(ctx context.Context, s *session.Session, text string) (model.Outbound, error) {
	switch ParseYesNo(text) {
	case AnswerYes:
		if err := e.moveTo(s, model.StateWaitingResolutionConfirmation); err != nil {
			return model.Outbound{}, err
		}
		return e.Prompt(*s), nil
	case AnswerNo:
		return e.fileComplaint(ctx, s, model.ComplaintPending)
	default:
		return e.withNote(s, e.text("yes_no_invalid", s.Lang, nil)), nil
	}
}

func (e *Engine) handleResolution(ctx context.Context, s *session.Session, text string) (model.Outbound, error) {
	switch ParseYesNo(text) {
	case AnswerYes:
		return e.fileComplaint(ctx, s, model.ComplaintResolved)
	case AnswerNo:
		return e.fileComplaint(ctx, s, model.ComplaintPending)
	default:
		return e.withNote(s, e.text("yes_no_invalid", s.Lang, nil)), nil
	}
}

// fileComplaint создает ровно одну жалобу по собранным полям и переходит к OTHER_ISSUES
func (e *Engine) fileComplaint(ctx context.Context, s *session.Session, status model.ComplaintStatus) (model.Outbound, error) {
	draft := model.Complaint{
		UserID:      s.AccountID,
		LoginID:     s.LoginID,
		Category:    s.Category,
		SubIssue:    s.SubIssue,
		Description: s.Description,
		ImageURL:    s.ImageRef,
		Status:      status,
	}
	draft.SetLocation(s.Location)

	created, err := e.gateway.CreateComplaint(ctx, draft)
	if err != nil {
		return model.Outbound{}, persistenceErr("create complaint", err)
	}
	s.ComplaintID = created.ComplaintID
	if err := e.moveTo(s, model.StateOtherIssues); err != nil {
		return model.Outbound{}, err
	}
	e.logger.Info("complaint filed", "user_id", s.UserID, "complaint_id", created.ComplaintID, "status", string(status))

	key := "pending_msg"
	if status == model.ComplaintResolved {
		key = "resolved_msg"
	}
	return e.withNote(s, e.text(key, s.Lang, i18n.Params{"complaint_id": created.ComplaintID})), nil
}

// handlePropertyTax ищет запись по идентификатору объекта (PROP-001), регистр не важен
func (e *Engine) handlePropertyTax(ctx context.Context, s *session.Session, text string) (model.Outbound, error) {
	propertyID := model.NormalizePropertyID(text)
	if propertyID == "" {
		return e.Prompt(*s), nil
	}

	rec, err := e.gateway.FindTaxRecord(ctx, propertyID)
	if errors.Is(err, ErrNotFound) {
		if err := e.moveTo(s, model.StateOtherIssues); err != nil {
			return model.Outbound{}, err
		}
		return e.withNote(s, e.text("property_not_found", s.Lang, i18n.Params{"property_id": propertyID})), nil
	}
	if err != nil {
		return model.Outbound{}, persistenceErr("find tax record", err)
	}

	s.PropertyID = rec.PropertyID
	if err := e.moveTo(s, model.StateOtherIssues); err != nil {
		return model.Outbound{}, err
	}

	note := e.text("property_details", s.Lang, i18n.Params{
		"property_id":  rec.PropertyID,
		"owner":        rec.OwnerName,
		"year":         strconv.Itoa(rec.Year),
		"amount":       strconv.FormatFloat(rec.Amount, 'f', 2, 64),
		"status_emoji": taxEmoji(rec.Status),
		"status":       strings.ToUpper(string(rec.Status)),
		"receipt_url":  e.receiptURL(ctx, rec),
	})
	return e.withNote(s, note), nil
}

// receiptURL запрашивает квитанцию; ошибка рендера только логируется
func (e *Engine) receiptURL(ctx context.Context, rec model.PropertyTaxRecord) string {
	if e.receipts == nil {
		return "-"
	}
	if err := e.receipts.Render(ctx, rec); err != nil {
		e.logger.Warn("failed to render receipt", "property_id", rec.PropertyID, "error", err)
	}
	return e.receipts.URL(rec.PropertyID)
}

func taxEmoji(s model.TaxStatus) string {
	switch s {
	case model.TaxPaid:
		return "✅"
	case model.TaxDue:
		return "⚠️"
	default:
		return "⏳"
	}
}

func (e *Engine) handleOtherIssues(_ context.Context, s *session.Session, text string) (model.Outbound, error) {
	switch ParseYesNo(text) {
	case AnswerYes:
		s.ClearComplaint()
		if err := e.moveTo(s, model.StateMainMenu); err != nil {
			return model.Outbound{}, err
		}
		return e.Prompt(*s), nil
	case AnswerNo:
		if err := e.moveTo(s, model.StateTerminated); err != nil {
			return model.Outbound{}, err
		}
		return model.Text(e.text("terminate", s.Lang, nil)), nil
	default:
		return e.withNote(s, e.text("yes_no_invalid", s.Lang, nil)), nil
	}
}

func (e *Engine) handleTerminated(_ context.Context, s *session.Session, _ string) (model.Outbound, error) {
	return e.Prompt(*s), nil
}
