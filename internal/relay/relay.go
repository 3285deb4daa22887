// Package relay связывает транспорт, журнал переписки, движок диалога и доставку ответа.
package relay

import (
	"context"
	"log/slog"
	"sync"

	"github.com/ivanoskov/civic_bot/internal/chatlog"
	"github.com/ivanoskov/civic_bot/internal/dialog"
	"github.com/ivanoskov/civic_bot/internal/i18n"
	"github.com/ivanoskov/civic_bot/internal/model"
	"github.com/ivanoskov/civic_bot/internal/notify"
)

type Relay struct {
	engine   *dialog.Engine
	notifier notify.Notifier
	chats    *chatlog.Store
	logger   *slog.Logger
	wg       sync.WaitGroup

	mu    sync.Mutex
	lanes map[string]*lane
}

// lane — очередь одного пользователя: события и ответы идут строго по порядку
type lane struct {
	turn sync.Mutex

	mu      sync.Mutex
	pending []delivery
	busy    bool
}

type delivery struct {
	ctx context.Context
	out model.Outbound
}

// New создает релей; notifier и chats могут быть nil
func New(engine *dialog.Engine, notifier notify.Notifier, chats *chatlog.Store, logger *slog.Logger) *Relay {
	if logger == nil {
		logger = slog.Default()
	}
	return &Relay{
		engine:   engine,
		notifier: notifier,
		chats:    chats,
		logger:   logger,
		lanes:    make(map[string]*lane),
	}
}

// Process обрабатывает входящее событие и ставит ответ в очередь отправки.
// Ошибка доставки только логируется: состояние сессии уже зафиксировано.
func (r *Relay) Process(ctx context.Context, userID string, in model.Inbound) model.Outbound {
	l := r.lane(userID)
	l.turn.Lock()
	defer l.turn.Unlock()

	r.record(userID, chatlog.RoleUser, in.Describe())

	out := r.engine.Handle(ctx, userID, in)

	r.record(userID, chatlog.RoleBot, out.Body)
	if r.chats != nil {
		r.chats.SetLanguage(userID, string(r.engine.Session(userID).Lang))
	}

	r.enqueue(ctx, userID, l, out)
	return out
}

// Notice отправляет служебный текст в обход движка
func (r *Relay) Notice(ctx context.Context, userID, text string) {
	l := r.lane(userID)
	l.turn.Lock()
	defer l.turn.Unlock()

	r.record(userID, chatlog.RoleBot, text)
	r.enqueue(ctx, userID, l, model.Outbound{Kind: model.OutboundText, Body: text})
}

// Language — язык, выбранный пользователем в диалоге
func (r *Relay) Language(userID string) i18n.Lang {
	return r.engine.Session(userID).Lang
}

// Wait дожидается завершения фоновых отправок
func (r *Relay) Wait() {
	r.wg.Wait()
}

func (r *Relay) lane(userID string) *lane {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.lanes[userID]
	if !ok {
		l = &lane{}
		r.lanes[userID] = l
	}
	return l
}

func (r *Relay) record(userID, role, content string) {
	if r.chats != nil {
		r.chats.Record(userID, role, content)
	}
}

// enqueue добавляет ответ в очередь пользователя и при необходимости запускает отправителя.
// На пользователя работает не больше одного отправителя.
func (r *Relay) enqueue(ctx context.Context, userID string, l *lane, out model.Outbound) {
	if r.notifier == nil {
		return
	}

	l.mu.Lock()
	l.pending = append(l.pending, delivery{ctx: context.WithoutCancel(ctx), out: out})
	if l.busy {
		l.mu.Unlock()
		return
	}
	l.busy = true
	l.mu.Unlock()

	r.wg.Add(1)
	go r.drain(userID, l)
}

func (r *Relay) drain(userID string, l *lane) {
	defer r.wg.Done()
	for {
		l.mu.Lock()
		if len(l.pending) == 0 {
			l.busy = false
			l.mu.Unlock()
			return
		}
		next := l.pending[0]
		l.pending = l.pending[1:]
		l.mu.Unlock()

		if err := notify.Deliver(next.ctx, r.notifier, userID, next.out); err != nil {
			r.logger.Error("failed to deliver reply",
				slog.String("user_id", userID),
				slog.String("kind", string(next.out.Kind)),
				slog.Any("error", err))
		}
	}
}
