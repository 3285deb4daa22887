package relay

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ivanoskov/civic_bot/internal/chatlog"
	"github.com/ivanoskov/civic_bot/internal/dialog"
	"github.com/ivanoskov/civic_bot/internal/model"
	"github.com/ivanoskov/civic_bot/internal/session"
)

type nopGateway struct{}

func (nopGateway) RegisterUser(context.Context, dialog.Registration) (model.User, error) {
	return model.User{}, errors.New("not used")
}

func (nopGateway) CreateComplaint(context.Context, model.Complaint) (model.Complaint, error) {
	return model.Complaint{}, errors.New("not used")
}

func (nopGateway) ListComplaints(context.Context, string) ([]model.Complaint, error) {
	return nil, nil
}

func (nopGateway) FindUserByLoginID(context.Context, string) (model.User, error) {
	return model.User{}, dialog.ErrNotFound
}

func (nopGateway) FindTaxRecord(context.Context, string) (model.PropertyTaxRecord, error) {
	return model.PropertyTaxRecord{}, dialog.ErrNotFound
}

type sent struct {
	to   string
	kind string
	body string
}

type captureNotifier struct {
	mu   sync.Mutex
	msgs []sent
	err  error
}

func (n *captureNotifier) add(to, kind, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.msgs = append(n.msgs, sent{to: to, kind: kind, body: body})
	return n.err
}

func (n *captureNotifier) SendText(_ context.Context, to, text string) error {
	return n.add(to, "text", text)
}

func (n *captureNotifier) SendButtons(_ context.Context, to, body string, _ []model.Button, _ string) error {
	return n.add(to, "buttons", body)
}

func (n *captureNotifier) SendList(_ context.Context, to, body, _ string, _ []model.ListSection, _ string) error {
	return n.add(to, "list", body)
}

func (n *captureNotifier) all() []sent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]sent(nil), n.msgs...)
}

func newRelay(n *captureNotifier) (*Relay, *chatlog.Store) {
	engine := dialog.NewEngine(session.NewStore(), nopGateway{})
	chats := chatlog.NewStore(time.Hour, 10)
	return New(engine, n, chats, nil), chats
}

func TestProcessRecordsAndDelivers(t *testing.T) {
	t.Parallel()

	n := &captureNotifier{}
	r, chats := newRelay(n)

	out := r.Process(context.Background(), "919800000001", model.TextEvent("Hi"))
	r.Wait()

	msgs := n.all()
	if len(msgs) != 1 {
		t.Fatalf("expected 1 delivery, got %d", len(msgs))
	}
	if msgs[0].to != "919800000001" || msgs[0].kind != string(out.Kind) || msgs[0].body != out.Body {
		t.Fatalf("unexpected delivery: %+v", msgs[0])
	}

	l, ok := chats.Get("919800000001")
	if !ok || len(l.History) != 2 {
		t.Fatalf("expected 2 log entries, got %+v", l)
	}
	if l.History[0].Role != chatlog.RoleUser || l.History[0].Content != "Hi" {
		t.Errorf("unexpected inbound entry: %+v", l.History[0])
	}
	if l.History[1].Role != chatlog.RoleBot {
		t.Errorf("unexpected outbound entry: %+v", l.History[1])
	}
}

func TestProcessLanguageTracked(t *testing.T) {
	t.Parallel()

	r, chats := newRelay(&captureNotifier{})
	ctx := context.Background()
	r.Process(ctx, "u1", model.TextEvent("Hi"))
	r.Process(ctx, "u1", model.SelectionEvent("2"))
	r.Wait()

	l, _ := chats.Get("u1")
	if l.Language != "hi" {
		t.Fatalf("language = %q, want hi", l.Language)
	}
}

func TestDeliveryFailureDoesNotRollBack(t *testing.T) {
	t.Parallel()

	n := &captureNotifier{err: errors.New("provider down")}
	r, _ := newRelay(n)

	r.Process(context.Background(), "u1", model.TextEvent("Hi"))
	r.Wait()

	if got := r.engine.Session("u1").State; got != model.StateLanguageSelection {
		t.Fatalf("state = %s, want %s", got, model.StateLanguageSelection)
	}
}

func TestNilNotifier(t *testing.T) {
	t.Parallel()

	engine := dialog.NewEngine(session.NewStore(), nopGateway{})
	r := New(engine, nil, nil, nil)

	out := r.Process(context.Background(), "u1", model.TextEvent("Hi"))
	r.Wait()
	if out.Body == "" {
		t.Fatal("expected a reply even without a notifier")
	}
}

func TestNotice(t *testing.T) {
	t.Parallel()

	n := &captureNotifier{}
	r, chats := newRelay(n)

	r.Notice(context.Background(), "u1", "unsupported")
	r.Wait()

	msgs := n.all()
	if len(msgs) != 1 || msgs[0].kind != "text" || msgs[0].body != "unsupported" {
		t.Fatalf("unexpected deliveries: %+v", msgs)
	}
	if l, _ := chats.Get("u1"); len(l.History) != 1 {
		t.Fatalf("notice must be logged: %+v", l)
	}
}

// stallNotifier задерживает первую отправку получателю stallTo, пока тест не закроет release
type stallNotifier struct {
	captureNotifier
	stallTo string
	release chan struct{}
	stalled atomic.Bool
}

func (n *stallNotifier) wait(to string) {
	if to == n.stallTo && n.stalled.CompareAndSwap(false, true) {
		<-n.release
	}
}

func (n *stallNotifier) SendText(ctx context.Context, to, text string) error {
	n.wait(to)
	return n.captureNotifier.SendText(ctx, to, text)
}

func (n *stallNotifier) SendButtons(ctx context.Context, to, body string, b []model.Button, footer string) error {
	n.wait(to)
	return n.captureNotifier.SendButtons(ctx, to, body, b, footer)
}

func (n *stallNotifier) SendList(ctx context.Context, to, body, label string, s []model.ListSection, footer string) error {
	n.wait(to)
	return n.captureNotifier.SendList(ctx, to, body, label, s, footer)
}

func TestSlowDeliveryKeepsReplyOrder(t *testing.T) {
	t.Parallel()

	n := &stallNotifier{stallTo: "u", release: make(chan struct{})}
	engine := dialog.NewEngine(session.NewStore(), nopGateway{})
	r := New(engine, n, nil, nil)

	ctx := context.Background()
	first := r.Process(ctx, "u", model.TextEvent("Hi"))
	second := r.Process(ctx, "u", model.TextEvent("1"))
	close(n.release)
	r.Wait()

	msgs := n.all()
	if len(msgs) != 2 {
		t.Fatalf("expected 2 deliveries, got %d", len(msgs))
	}
	if msgs[0].body != first.Body || msgs[1].body != second.Body {
		t.Fatalf("delivered out of order: %q then %q, want %q then %q",
			msgs[0].body, msgs[1].body, first.Body, second.Body)
	}
}

func TestSlowUserDoesNotDelayOthers(t *testing.T) {
	t.Parallel()

	n := &stallNotifier{stallTo: "slow", release: make(chan struct{})}
	engine := dialog.NewEngine(session.NewStore(), nopGateway{})
	r := New(engine, n, nil, nil)

	ctx := context.Background()
	r.Process(ctx, "slow", model.TextEvent("Hi"))
	r.Process(ctx, "fast", model.TextEvent("Hi"))

	deadline := time.After(2 * time.Second)
	for {
		msgs := n.all()
		if len(msgs) == 1 && msgs[0].to == "fast" {
			break
		}
		select {
		case <-deadline:
			close(n.release)
			t.Fatalf("reply for another user was blocked: %+v", msgs)
		case <-time.After(5 * time.Millisecond):
		}
	}
	close(n.release)
	r.Wait()
}

func TestConcurrentEventsKeepLogTurnsPaired(t *testing.T) {
	t.Parallel()

	r, chats := newRelay(&captureNotifier{})

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Process(context.Background(), "u1", model.TextEvent("Hi"))
		}()
	}
	wg.Wait()
	r.Wait()

	l, _ := chats.Get("u1")
	if len(l.History) != 10 {
		t.Fatalf("expected 10 log entries, got %d", len(l.History))
	}
	for i, m := range l.History {
		want := chatlog.RoleUser
		if i%2 == 1 {
			want = chatlog.RoleBot
		}
		if m.Role != want {
			t.Fatalf("entry %d has role %s, want %s: %+v", i, m.Role, want, l.History)
		}
	}
}
