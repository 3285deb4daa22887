package dialog

import (
	"strconv"

	"github.com/ivanoskov/civic_bot/internal/i18n"
	"github.com/ivanoskov/civic_bot/internal/model"
	"github.com/ivanoskov/civic_bot/internal/session"
)

// Ограничение WhatsApp на длину заголовка строки списка
const rowTitleLimit = 24

// Prompt строит приглашение для текущего состояния сессии.
// Зависит только от снимка сессии, поэтому повторный вызов дает тот же результат.
func (e *Engine) Prompt(s session.Session) model.Outbound {
	lang := s.Lang
	switch s.State {
	case model.StateLogin, model.StateLanguageSelection:
		return model.Outbound{
			Kind: model.OutboundButtons,
			Body: e.text("select_language", lang, nil),
			Buttons: []model.Button{
				{ID: "1", Label: "English"},
				{ID: "2", Label: "हिंदी"},
				{ID: "3", Label: "ગુજરાતી"},
			},
		}

	case model.StateWelcomeSelection:
		return model.Outbound{
			Kind: model.OutboundButtons,
			Body: e.text("welcome", lang, nil),
			Buttons: []model.Button{
				{ID: "1", Label: e.text("btn_new_complaint", lang, nil)},
				{ID: "2", Label: e.text("btn_track_status", lang, nil)},
				{ID: BackToken, Label: e.text("btn_back", lang, nil)},
			},
		}

	case model.StateTrackingLoginID:
		return model.Text(e.text("ask_login_id_track", lang, nil))
	case model.StateLoginName:
		return model.Text(e.text("ask_name", lang, nil))
	case model.StateLoginMobile:
		return model.Text(e.text("ask_mobile", lang, i18n.Params{"name": s.Name}))
	case model.StateLoginAreaWard:
		return model.Text(e.text("ask_area_ward", lang, nil))

	case model.StateMainMenu:
		return e.mainMenu(s)

	case model.StateCategorySelected:
		body := e.text("sub_issue_body", lang, i18n.Params{"category": e.categoryName(s)})
		return e.subIssueList(s, body)
	case model.StateSubIssueSelected:
		body := e.text("sub_issue_selected_body", lang, i18n.Params{
			"category": e.categoryName(s),
			"issue":    s.SubIssue,
		})
		return e.subIssueList(s, body)

	case model.StateWaitingImage:
		return model.Text(e.text("ask_image", lang, i18n.Params{"issue": s.SubIssue}))
	case model.StateWaitingLocation:
		return model.Text(e.text("ask_gps", lang, nil))
	case model.StateWaitingDescription:
		return model.Text(e.text("ask_description", lang, nil))

	case model.StateWaitingSolutionConfirmation:
		body := e.text("solution_body", lang, i18n.Params{
			"solution": e.catalog.Solution(s.Category, s.SubIssue),
		})
		return e.yesNo(lang, body, model.Button{ID: BackToken, Label: e.text("btn_back", lang, nil)})
	case model.StateWaitingResolutionConfirmation:
		return e.yesNo(lang, e.text("resolution_body", lang, nil),
			model.Button{ID: BackToken, Label: e.text("btn_back", lang, nil)})

	case model.StatePropertyTaxInput:
		return model.Text(e.text("ask_property_id", lang, nil))
	case model.StateOtherIssues:
		return e.yesNo(lang, e.text("other_issues_body", lang, nil))
	case model.StateTerminated:
		return model.Text(e.text("session_ended", lang, nil))
	}
	return model.Text(e.text("restart_hint", lang, nil))
}

// withNote ставит сообщение перед приглашением текущего состояния
func (e *Engine) withNote(s *session.Session, note string) model.Outbound {
	out := e.Prompt(*s)
	out.Body = note + "\n\n" + out.Body
	return out
}

func (e *Engine) mainMenu(s session.Session) model.Outbound {
	lang := s.Lang
	rows := make([]model.ListRow, 0, e.catalog.Len()+1)
	for i, cat := range e.catalog.Categories() {
		rows = append(rows, model.ListRow{
			ID:          strconv.Itoa(i + 1),
			Title:       cat.Title(string(lang)),
			Description: cat.MenuDescription,
		})
	}
	rows = append(rows, model.ListRow{
		ID:          strconv.Itoa(e.catalog.Len() + 1),
		Title:       e.text("menu_property_tax", lang, nil),
		Description: e.text("menu_property_tax_desc", lang, nil),
	})

	return model.Outbound{
		Kind:        model.OutboundList,
		Body:        e.text("main_menu_body", lang, i18n.Params{"login_id": s.LoginID}),
		ButtonLabel: e.text("main_menu_button", lang, nil),
		Sections:    []model.ListSection{{Title: e.text("main_menu_section", lang, nil), Rows: rows}},
		Footer:      e.text("footer_restart", lang, nil),
	}
}

func (e *Engine) subIssueList(s session.Session, body string) model.Outbound {
	lang := s.Lang
	issues := e.catalog.SubIssues(s.Category)
	rows := make([]model.ListRow, 0, len(issues))
	for i, issue := range issues {
		title, rest := splitRunes(issue, rowTitleLimit)
		desc, _ := splitRunes(rest, rowTitleLimit)
		rows = append(rows, model.ListRow{ID: strconv.Itoa(i + 1), Title: title, Description: desc})
	}

	return model.Outbound{
		Kind:        model.OutboundList,
		Body:        body,
		ButtonLabel: e.text("sub_issue_button", lang, nil),
		Sections:    []model.ListSection{{Title: e.text("sub_issue_section", lang, nil), Rows: rows}},
		Footer:      e.text("footer_restart", lang, nil),
	}
}

func (e *Engine) yesNo(lang i18n.Lang, body string, extra ...model.Button) model.Outbound {
	buttons := []model.Button{
		{ID: "yes", Label: e.text("btn_yes", lang, nil)},
		{ID: "no", Label: e.text("btn_no", lang, nil)},
	}
	return model.Outbound{
		Kind:    model.OutboundButtons,
		Body:    body,
		Buttons: append(buttons, extra...),
	}
}

func (e *Engine) categoryName(s session.Session) string {
	cat, ok := e.catalog.Category(s.Category)
	if !ok {
		return s.Category
	}
	return cat.DisplayName(string(s.Lang))
}

func (e *Engine) text(key string, lang i18n.Lang, params i18n.Params) string {
	return e.texts.Text(key, lang, params)
}

// splitRunes делит строку после n символов
func splitRunes(s string, n int) (head, tail string) {
	r := []rune(s)
	if len(r) <= n {
		return s, ""
	}
	return string(r[:n]), string(r[n:])
}
