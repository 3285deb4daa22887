package webhook

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ivanoskov/civic_bot/internal/chatlog"
	"github.com/ivanoskov/civic_bot/internal/dialog"
	"github.com/ivanoskov/civic_bot/internal/i18n"
	"github.com/ivanoskov/civic_bot/internal/model"
	"github.com/ivanoskov/civic_bot/internal/relay"
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

type outgoing struct {
	to, kind, body string
}

type captureNotifier struct {
	mu   sync.Mutex
	msgs []outgoing
}

func (n *captureNotifier) add(to, kind, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.msgs = append(n.msgs, outgoing{to, kind, body})
	return nil
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

func (n *captureNotifier) all() []outgoing {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]outgoing(nil), n.msgs...)
}

type fakeMedia struct {
	data []byte
	err  error
}

func (m fakeMedia) MediaURL(_ context.Context, id string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return "https://media.example/" + id, nil
}

func (m fakeMedia) DownloadMedia(context.Context, string) ([]byte, error) {
	return m.data, nil
}

type fixture struct {
	handler  *Handler
	relay    *relay.Relay
	engine   *dialog.Engine
	notifier *captureNotifier
	chats    *chatlog.Store
	server   *httptest.Server
	uploads  string
}

func newFixture(t *testing.T, media MediaSource) *fixture {
	t.Helper()
	f := &fixture{notifier: &captureNotifier{}, uploads: t.TempDir()}
	f.engine = dialog.NewEngine(session.NewStore(), nopGateway{})
	f.chats = chatlog.NewStore(time.Hour, 10)
	f.relay = relay.New(f.engine, f.notifier, f.chats, nil)
	f.handler = NewHandler(f.relay, media, i18n.MustLoad(), "secret", f.uploads, nil)
	f.server = httptest.NewServer(NewRouter(f.handler, nil, Static{UploadDir: f.uploads}))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fixture) post(t *testing.T, body string) string {
	t.Helper()
	resp, err := http.Post(f.server.URL+"/webhook", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	f.relay.Wait()
	return string(data)
}

func envelope(msg string) string {
	return `{"object":"whatsapp_business_account","entry":[{"id":"1","changes":[{"field":"messages","value":{"messages":[` + msg + `]}}]}]}`
}

func TestVerify(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)

	tests := []struct {
		name   string
		query  string
		status int
		body   string
	}{
		{"ok", "hub.mode=subscribe&hub.verify_token=secret&hub.challenge=123456789", http.StatusOK, "123456789"},
		{"wrong token", "hub.mode=subscribe&hub.verify_token=nope&hub.challenge=1", http.StatusForbidden, ""},
		{"wrong mode", "hub.mode=unsubscribe&hub.verify_token=secret&hub.challenge=1", http.StatusForbidden, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Get(f.server.URL + "/webhook?" + tt.query)
			if err != nil {
				t.Fatal(err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != tt.status {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			if tt.body != "" {
				data, _ := io.ReadAll(resp.Body)
				if string(data) != tt.body {
					t.Fatalf("body = %q, want %q", data, tt.body)
				}
			}
		})
	}
}

func TestReceiveTextAndButtonReply(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)

	body := f.post(t, envelope(`{"from":"919800000001","id":"m1","type":"text","text":{"body":"Hi"}}`))
	if !strings.Contains(body, `"success"`) {
		t.Fatalf("unexpected body: %s", body)
	}
	f.post(t, envelope(`{"from":"919800000001","id":"m2","type":"interactive","interactive":{"type":"button_reply","button_reply":{"id":"2","title":"हिंदी"}}}`))

	s := f.engine.Session("919800000001")
	if s.State != model.StateWelcomeSelection || s.Lang != i18n.Hindi {
		t.Fatalf("unexpected session: state=%s lang=%s", s.State, s.Lang)
	}
	if got := len(f.notifier.all()); got != 2 {
		t.Fatalf("expected 2 replies, got %d", got)
	}
	if l, ok := f.chats.Get("919800000001"); !ok || len(l.History) != 4 {
		t.Fatalf("expected 4 chat log entries, got %+v", l)
	}
}

func TestReceiveMalformedPayload(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)

	body := f.post(t, `{"entry":`)
	if !strings.Contains(body, `"error"`) {
		t.Fatalf("unexpected body: %s", body)
	}
}

func TestReceiveStatusUpdateOnly(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)

	f.post(t, `{"entry":[{"changes":[{"value":{"statuses":[{"id":"x","status":"read","recipient_id":"1"}]}}]}]}`)
	if got := len(f.notifier.all()); got != 0 {
		t.Fatalf("status updates must not produce replies, got %d", got)
	}
}

func TestReceiveImageIsDownloaded(t *testing.T) {
	t.Parallel()
	f := newFixture(t, fakeMedia{data: []byte("jpeg-bytes")})

	f.post(t, envelope(`{"from":"u1","id":"m1","type":"image","image":{"id":"MEDIA123","mime_type":"image/jpeg"}}`))

	data, err := os.ReadFile(filepath.Join(f.uploads, "MEDIA123.jpg"))
	if err != nil {
		t.Fatalf("image not saved: %v", err)
	}
	if string(data) != "jpeg-bytes" {
		t.Fatalf("unexpected file content %q", data)
	}

	resp, err := http.Get(f.server.URL + "/uploads/MEDIA123.jpg")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("uploads not served: %d", resp.StatusCode)
	}

	l, _ := f.chats.Get("u1")
	if len(l.History) == 0 || l.History[0].Content != "[image] /uploads/MEDIA123.jpg" {
		t.Fatalf("unexpected log: %+v", l.History)
	}
}

func TestReceiveImageFailure(t *testing.T) {
	t.Parallel()
	f := newFixture(t, fakeMedia{err: errors.New("graph down")})

	f.post(t, envelope(`{"from":"u1","id":"m1","type":"image","image":{"id":"MEDIA123"}}`))

	msgs := f.notifier.all()
	want := i18n.MustLoad().Text("image_failed", i18n.English, nil)
	if len(msgs) != 1 || msgs[0].body != want {
		t.Fatalf("unexpected replies: %+v", msgs)
	}
	if got := f.engine.Session("u1").State; got != model.InitialState {
		t.Fatalf("engine must not be called, state = %s", got)
	}
}

func TestReceiveUnsupportedType(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)

	f.post(t, envelope(`{"from":"u1","id":"m1","type":"sticker"}`))

	msgs := f.notifier.all()
	want := i18n.MustLoad().Text("unsupported_message", i18n.English, nil)
	if len(msgs) != 1 || msgs[0].kind != "text" || msgs[0].body != want {
		t.Fatalf("unexpected replies: %+v", msgs)
	}
}

func TestReceiveLocation(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)

	f.post(t, envelope(`{"from":"u1","id":"m1","type":"location","location":{"latitude":22.3,"longitude":73.18}}`))

	l, _ := f.chats.Get("u1")
	if len(l.History) == 0 || !strings.HasPrefix(l.History[0].Content, "[location] 22.300000,73.180000") {
		t.Fatalf("unexpected log: %+v", l.History)
	}
}

func TestHealthAndNotFound(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)

	resp, err := http.Get(f.server.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("health = %d", resp.StatusCode)
	}

	resp, err = http.Get(f.server.URL + "/nope")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown path = %d", resp.StatusCode)
	}
}

func TestSafeName(t *testing.T) {
	t.Parallel()
	if got := safeName("../../etc/passwd"); got != "etcpasswd" {
		t.Fatalf("safeName = %q", got)
	}
}
