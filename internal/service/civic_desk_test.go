package service

import (
	"context"
	"errors"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ivanoskov/civic_bot/internal/dialog"
	"github.com/ivanoskov/civic_bot/internal/model"
	"github.com/ivanoskov/civic_bot/internal/repository"
)

type notifierFunc func(ctx context.Context, c model.Complaint) error

func (f notifierFunc) ComplaintFiled(ctx context.Context, c model.Complaint) error {
	return f(ctx, c)
}

func newTestDesk(t *testing.T, notifier ComplaintNotifier) *CivicDesk {
	t.Helper()
	repo, err := repository.NewSQLiteRepository(filepath.Join(t.TempDir(), "civic.db"))
	if err != nil {
		t.Fatalf("failed to open repository: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	if _, err := repository.Seed(context.Background(), repo); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	return NewCivicDesk(repo, notifier)
}

func TestRegisterAndTrack(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	filed := make(chan model.Complaint, 1)
	desk := newTestDesk(t, notifierFunc(func(_ context.Context, c model.Complaint) error {
		filed <- c
		return nil
	}))

	user, err := desk.RegisterUser(ctx, dialog.Registration{
		Name: "Rahul", Mobile: "9876543210", Area: "Ring Road", Ward: "Ward 5", ChannelID: "919876543210",
	})
	if err != nil {
		t.Fatalf("RegisterUser failed: %v", err)
	}

	found, err := desk.FindUserByLoginID(ctx, " "+user.LoginID+" ")
	if err != nil || found.ID != user.ID {
		t.Fatalf("FindUserByLoginID: %+v %v", found, err)
	}

	created, err := desk.CreateComplaint(ctx, model.Complaint{
		UserID: user.ID, LoginID: user.LoginID, Category: "garbage_cleanliness",
		SubIssue: "Dirty Streets", Status: model.ComplaintPending,
	})
	if err != nil {
		t.Fatalf("CreateComplaint failed: %v", err)
	}

	select {
	case c := <-filed:
		if c.ComplaintID != created.ComplaintID {
			t.Fatalf("notifier got %s, want %s", c.ComplaintID, created.ComplaintID)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("notifier was not called")
	}

	list, err := desk.ListComplaints(ctx, user.LoginID)
	if err != nil || len(list) != 1 {
		t.Fatalf("ListComplaints: %v %v", list, err)
	}
}

func TestWaitCoversComplaintAlerts(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())

	var sent atomic.Bool
	desk := newTestDesk(t, notifierFunc(func(ctx context.Context, _ model.Complaint) error {
		time.Sleep(50 * time.Millisecond)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		sent.Store(true)
		return nil
	}))

	if _, err := desk.CreateComplaint(ctx, model.Complaint{
		UserID: "u1", LoginID: "LOGIN-0000000A", Category: "garbage_cleanliness",
		SubIssue: "Other", Status: model.ComplaintPending,
	}); err != nil {
		t.Fatalf("CreateComplaint failed: %v", err)
	}
	cancel()
	desk.Wait()

	if !sent.Load() {
		t.Fatal("alert in flight was not awaited")
	}
}

func TestNotFoundIsTranslated(t *testing.T) {
	t.Parallel()
	desk := newTestDesk(t, nil)
	ctx := context.Background()

	_, err := desk.FindUserByLoginID(ctx, "LOGIN-FFFFFFFF")
	if !errors.Is(err, dialog.ErrNotFound) || !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	_, err = desk.FindTaxRecord(ctx, "PROP-404")
	if !errors.Is(err, dialog.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	rec, err := desk.FindTaxRecord(ctx, "prop-001")
	if err != nil || rec.OwnerName != "John Doe" {
		t.Fatalf("FindTaxRecord: %+v %v", rec, err)
	}
}

func TestStorageFailureIsPersistenceError(t *testing.T) {
	t.Parallel()
	repo, err := repository.NewSQLiteRepository(filepath.Join(t.TempDir(), "civic.db"))
	if err != nil {
		t.Fatalf("failed to open repository: %v", err)
	}
	desk := NewCivicDesk(repo, nil)
	_ = repo.Close()

	_, err = desk.ListComplaints(context.Background(), "LOGIN-00000000")
	var pe *dialog.PersistenceError
	if !errors.As(err, &pe) {
		t.Fatalf("expected PersistenceError, got %v", err)
	}
}

func TestSetComplaintStatus(t *testing.T) {
	t.Parallel()
	desk := newTestDesk(t, nil)
	ctx := context.Background()

	user, _ := desk.RegisterUser(ctx, dialog.Registration{Name: "A", Mobile: "9876543210", Area: "X", Ward: "Ward 1"})
	c, _ := desk.CreateComplaint(ctx, model.Complaint{UserID: user.ID, LoginID: user.LoginID,
		Category: "electricity_issues", SubIssue: "Power Cut", Status: model.ComplaintPending})

	updated, err := desk.SetComplaintStatus(ctx, c.ComplaintID, "completed")
	if err != nil || updated.Status != model.ComplaintResolved {
		t.Fatalf("SetComplaintStatus: %+v %v", updated, err)
	}

	views, err := desk.Complaints(ctx, repository.ComplaintFilter{LoginID: user.LoginID})
	if err != nil || len(views) != 1 || views[0].Status != model.ComplaintResolved {
		t.Fatalf("Complaints: %+v %v", views, err)
	}

	if _, err := desk.SetComplaintStatus(ctx, "CMP-00000000", "pending"); !errors.Is(err, dialog.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestAdminStatus(t *testing.T) {
	tests := map[string]model.ComplaintStatus{
		"completed":   model.ComplaintResolved,
		"Resolved":    model.ComplaintResolved,
		"in_progress": model.ComplaintInProgress,
		"pending":     model.ComplaintPending,
		"whatever":    model.ComplaintPending,
	}
	for input, want := range tests {
		if got := AdminStatus(input); got != want {
			t.Errorf("AdminStatus(%q) = %s, want %s", input, got, want)
		}
	}
}
