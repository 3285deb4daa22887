package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ivanoskov/civic_bot/internal/chatlog"
	"github.com/ivanoskov/civic_bot/internal/dialog"
	"github.com/ivanoskov/civic_bot/internal/model"
	"github.com/ivanoskov/civic_bot/internal/repository"
	"github.com/ivanoskov/civic_bot/internal/service"
)

type fakeDesk struct {
	lastFilter repository.ComplaintFilter
	complaints []model.ComplaintView
	records    map[string]model.PropertyTaxRecord
}

func (d *fakeDesk) Complaints(_ context.Context, filter repository.ComplaintFilter) ([]model.ComplaintView, error) {
	d.lastFilter = filter
	return d.complaints, nil
}

func (d *fakeDesk) SetComplaintStatus(_ context.Context, id, requested string) (*model.Complaint, error) {
	for i := range d.complaints {
		if d.complaints[i].ComplaintID == id {
			d.complaints[i].Status = service.AdminStatus(requested)
			c := d.complaints[i].Complaint
			return &c, nil
		}
	}
	return nil, fmt.Errorf("%w: complaint %s", dialog.ErrNotFound, id)
}

func (d *fakeDesk) Properties(context.Context) ([]model.PropertyTaxRecord, error) {
	out := make([]model.PropertyTaxRecord, 0, len(d.records))
	for _, r := range d.records {
		out = append(out, r)
	}
	return out, nil
}

func (d *fakeDesk) FindTaxRecord(_ context.Context, id string) (model.PropertyTaxRecord, error) {
	r, ok := d.records[id]
	if !ok {
		return model.PropertyTaxRecord{}, dialog.ErrNotFound
	}
	return r, nil
}

func newAdminServer(t *testing.T) (*httptest.Server, *fakeDesk, *chatlog.Store) {
	t.Helper()
	desk := &fakeDesk{
		complaints: []model.ComplaintView{{
			Complaint: model.Complaint{ComplaintID: "CMP-00000001", LoginID: "LOGIN-AAAA0001", Status: model.ComplaintPending},
			UserName:  "Rahul",
		}},
		records: map[string]model.PropertyTaxRecord{
			"PROP-001": {PropertyID: "PROP-001", OwnerName: "John Doe", Amount: 15000, Status: model.TaxPaid, Year: 2025},
		},
	}
	chats := chatlog.NewStore(time.Hour, 10)
	srv := httptest.NewServer(NewRouter(nil, NewAdmin(desk, chats, nil), Static{}))
	t.Cleanup(srv.Close)
	return srv, desk, chats
}

func do(t *testing.T, method, url string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestListComplaints(t *testing.T) {
	t.Parallel()
	srv, desk, _ := newAdminServer(t)

	resp := do(t, http.MethodGet, srv.URL+"/api/complaints?login=LOGIN-AAAA0001&status=pending&limit=5")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var views []model.ComplaintView
	if err := json.NewDecoder(resp.Body).Decode(&views); err != nil {
		t.Fatal(err)
	}
	if len(views) != 1 || views[0].UserName != "Rahul" {
		t.Fatalf("unexpected views: %+v", views)
	}
	want := repository.ComplaintFilter{LoginID: "LOGIN-AAAA0001", Status: model.ComplaintPending, Limit: 5}
	if desk.lastFilter != want {
		t.Fatalf("filter = %+v, want %+v", desk.lastFilter, want)
	}

	if resp := do(t, http.MethodGet, srv.URL+"/api/complaints?status=bogus"); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad status filter = %d", resp.StatusCode)
	}
	if resp := do(t, http.MethodGet, srv.URL+"/api/complaints?limit=x"); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad limit = %d", resp.StatusCode)
	}
}

func TestUpdateComplaintStatus(t *testing.T) {
	t.Parallel()
	srv, desk, _ := newAdminServer(t)

	resp := do(t, http.MethodPatch, srv.URL+"/api/complaints/CMP-00000001/status?status=completed")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "resolved" || desk.complaints[0].Status != model.ComplaintResolved {
		t.Fatalf("unexpected result: %v", body)
	}

	if resp := do(t, http.MethodPatch, srv.URL+"/api/complaints/CMP-FFFFFFFF/status?status=completed"); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown complaint = %d", resp.StatusCode)
	}
	if resp := do(t, http.MethodPatch, srv.URL+"/api/complaints/CMP-00000001/status"); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("missing status = %d", resp.StatusCode)
	}
}

func TestPropertiesAndReceipt(t *testing.T) {
	t.Parallel()
	srv, _, _ := newAdminServer(t)

	resp := do(t, http.MethodGet, srv.URL+"/api/properties")
	var records []model.PropertyTaxRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Fatalf("unexpected records: %+v", records)
	}

	resp = do(t, http.MethodGet, srv.URL+"/api/property-tax/receipt/prop-001")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("receipt status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Fatalf("content type = %q", ct)
	}
	if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, "property_tax_PROP-001.png") {
		t.Fatalf("content disposition = %q", cd)
	}

	if resp := do(t, http.MethodGet, srv.URL+"/api/property-tax/receipt/PROP-404"); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("missing receipt = %d", resp.StatusCode)
	}
}

func TestChatLogs(t *testing.T) {
	t.Parallel()
	srv, _, chats := newAdminServer(t)
	chats.Record("u1", chatlog.RoleUser, "Hi")

	resp := do(t, http.MethodGet, srv.URL+"/api/chatlogs")
	var logs []chatlog.Log
	if err := json.NewDecoder(resp.Body).Decode(&logs); err != nil {
		t.Fatal(err)
	}
	if len(logs) != 1 || logs[0].UserID != "u1" {
		t.Fatalf("unexpected logs: %+v", logs)
	}

	if resp := do(t, http.MethodGet, srv.URL+"/api/chatlogs/u1"); resp.StatusCode != http.StatusOK {
		t.Fatalf("chat log = %d", resp.StatusCode)
	}
	if resp := do(t, http.MethodGet, srv.URL+"/api/chatlogs/ghost"); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("missing chat log = %d", resp.StatusCode)
	}
}
