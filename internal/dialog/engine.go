// Package dialog — движок диалога: по одному входящему событию и сессии пользователя
// выбирает обработчик, меняет сессию и возвращает локализованный ответ.
package dialog

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/ivanoskov/civic_bot/internal/catalog"
	"github.com/ivanoskov/civic_bot/internal/i18n"
	"github.com/ivanoskov/civic_bot/internal/model"
	"github.com/ivanoskov/civic_bot/internal/session"
)

const (
	// RestartKeyword сбрасывает сессию из любого состояния
	RestartKeyword = "hi"
	// BackToken возвращает к родительскому состоянию
	BackToken = "0"
	// MaxLoginAttempts — число неудачных попыток ввода login id до блокировки
	MaxLoginAttempts = 3
)

type handlerFunc func(ctx context.Context, s *session.Session, text string) (model.Outbound, error)

type Engine struct {
	sessions *session.Store
	gateway  Gateway
	receipts Receipts
	texts    *i18n.Bundle
	catalog  *catalog.Catalog
	graph    *graph
	handlers map[model.State]handlerFunc
	logger   *slog.Logger
	now      func() time.Time
}

type Option func(*Engine)

func WithReceipts(r Receipts) Option {
	return func(e *Engine) { e.receipts = r }
}

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

func WithBundle(b *i18n.Bundle) Option {
	return func(e *Engine) { e.texts = b }
}

func WithCatalog(c *catalog.Catalog) Option {
	return func(e *Engine) { e.catalog = c }
}

func NewEngine(sessions *session.Store, gateway Gateway, opts ...Option) *Engine {
	e := &Engine{
		sessions: sessions,
		gateway:  gateway,
		graph:    newGraph(),
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.texts == nil {
		e.texts = i18n.MustLoad()
	}
	if e.catalog == nil {
		e.catalog = catalog.MustLoad()
	}

	e.handlers = map[model.State]handlerFunc{
		model.StateLogin:                         e.handleLogin,
		model.StateLanguageSelection:             e.handleLanguage,
		model.StateWelcomeSelection:              e.handleWelcome,
		model.StateTrackingLoginID:               e.handleTracking,
		model.StateLoginName:                     e.handleName,
		model.StateLoginMobile:                   e.handleMobile,
		model.StateLoginAreaWard:                 e.handleAreaWard,
		model.StateMainMenu:                      e.handleMainMenu,
		model.StateCategorySelected:              e.handleSubIssue,
		model.StateSubIssueSelected:              e.handleSubIssue,
		model.StateWaitingImage:                  e.repeatPrompt,
		model.StateWaitingLocation:               e.repeatPrompt,
		model.StateWaitingDescription:            e.handleDescription,
		model.StateWaitingSolutionConfirmation:   e.handleSolution,
		model.StateWaitingResolutionConfirmation: e.handleResolution,
		model.StatePropertyTaxInput:              e.handlePropertyTax,
		model.StateOtherIssues:                   e.handleOtherIssues,
		model.StateTerminated:                    e.handleTerminated,
	}
	return e
}

// Handle применяет одно входящее событие к сессии пользователя.
// События одного пользователя обрабатываются строго по очереди.
// При сбое хранилища сессия остается в состоянии до перехода.
func (e *Engine) Handle(ctx context.Context, userID string, in model.Inbound) model.Outbound {
	var out model.Outbound
	err := e.sessions.WithLock(userID, func(s *session.Session) error {
		lang, before := s.Lang, s.State
		reply, err := e.dispatch(ctx, s, in)
		switch {
		case errors.Is(err, ErrUnknownState):
			e.logger.Warn("unknown session state, asking to restart",
				"user_id", userID, "state", string(before))
			out = model.Text(e.text("restart_hint", lang, nil))
			return err
		case err != nil:
			e.logger.Error("transition failed, session rolled back",
				"user_id", userID, "state", string(before), "error", err)
			out = model.Text(e.text("error", lang, nil))
			return err
		}
		out = reply
		return nil
	})
	if err != nil && out.Body == "" {
		e.logger.Error("failed to store session", "user_id", userID, "error", err)
		out = model.Text(e.text("error", i18n.DefaultLang, nil))
	}
	return out
}

// Session возвращает снимок сессии пользователя
func (e *Engine) Session(userID string) session.Session {
	return e.sessions.GetOrCreate(userID)
}

func (e *Engine) dispatch(ctx context.Context, s *session.Session, in model.Inbound) (model.Outbound, error) {
	if !s.State.Valid() && !isRestart(in) {
		return model.Outbound{}, ErrUnknownState
	}

	if geo, ok := in.Geo(); ok {
		return e.handleLocation(s, geo)
	}
	if ref, ok := in.ImageRef(); ok {
		return e.handleImage(s, ref)
	}

	text := strings.TrimSpace(in.Text())
	switch {
	case isRestart(in):
		return e.restart(s)
	case text == BackToken:
		return e.back(s)
	}

	h, ok := e.handlers[s.State]
	if !ok {
		return model.Outbound{}, ErrUnknownState
	}
	return h(ctx, s, text)
}

func isRestart(in model.Inbound) bool {
	return strings.EqualFold(strings.TrimSpace(in.Text()), RestartKeyword)
}

// moveTo переводит сессию в новое состояние, если граф это разрешает
func (e *Engine) moveTo(s *session.Session, next model.State) error {
	if err := e.graph.check(s.State, next); err != nil {
		return err
	}
	s.State = next
	return nil
}

func (e *Engine) restart(s *session.Session) (model.Outbound, error) {
	*s = *session.New(s.UserID, e.now())
	if err := e.moveTo(s, model.StateLanguageSelection); err != nil {
		return model.Outbound{}, err
	}
	return e.Prompt(*s), nil
}

// back только меняет состояние: накопленные поля остаются как были
func (e *Engine) back(s *session.Session) (model.Outbound, error) {
	parent, ok := Parent(s.State)
	if !ok {
		return model.Text(e.text("cannot_go_back", s.Lang, nil)), nil
	}
	if err := e.moveTo(s, parent); err != nil {
		return model.Outbound{}, err
	}
	return e.Prompt(*s), nil
}

func (e *Engine) repeatPrompt(_ context.Context, s *session.Session, _ string) (model.Outbound, error) {
	return e.Prompt(*s), nil
}
