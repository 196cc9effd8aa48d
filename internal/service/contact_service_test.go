package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/portfolio/backend/internal/model"
	"github.com/portfolio/backend/internal/repository"
)

// ---------------------------------------------------------------------------
// memContactRepository is an in-memory ContactRepository for unit tests
// ---------------------------------------------------------------------------

type memContactRepository struct {
	mu       sync.Mutex
	messages []*model.ContactMessage
	saveErr  error
	listErr  error
	countErr error

	saveCalls int
	lastOpts  model.ContactListOptions
}

func (r *memContactRepository) Save(ctx context.Context, msg *model.ContactMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saveCalls++
	if r.saveErr != nil {
		return r.saveErr
	}
	cp := *msg
	r.messages = append(r.messages, &cp)
	return nil
}

func (r *memContactRepository) FindByID(ctx context.Context, id string) (*model.ContactMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.messages {
		if m.ID == id {
			cp := *m
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memContactRepository) List(ctx context.Context, opts model.ContactListOptions) ([]*model.ContactMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastOpts = opts
	if r.listErr != nil {
		return nil, r.listErr
	}
	sorted := append([]*model.ContactMessage(nil), r.messages...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].CreatedAt.After(sorted[j].CreatedAt) })
	if opts.Offset >= len(sorted) {
		return nil, nil
	}
	end := opts.Offset + opts.Limit
	if end > len(sorted) {
		end = len(sorted)
	}
	return sorted[opts.Offset:end], nil
}

func (r *memContactRepository) Count(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.countErr != nil {
		return 0, r.countErr
	}
	return int64(len(r.messages)), nil
}

// ---------------------------------------------------------------------------
// mockNotifier
// ---------------------------------------------------------------------------

type mockNotifier struct {
	mu    sync.Mutex
	err   error
	calls []*model.ContactMessage
}

func (n *mockNotifier) Notify(ctx context.Context, msg *model.ContactMessage) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, msg)
	return n.err
}

func (n *mockNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.calls)
}

func newTestContactService(repo *memContactRepository, notifier *mockNotifier) *contactServiceImpl {
	svc := NewContactService(repo, notifier, nil).(*contactServiceImpl)
	svc.now = func() time.Time { return time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC) }
	return svc
}

// ---------------------------------------------------------------------------
// Submit tests
// ---------------------------------------------------------------------------

func TestContactService_Submit_Success(t *testing.T) {
	repo := &memContactRepository{}
	notifier := &mockNotifier{}
	svc := newTestContactService(repo, notifier)

	msg, err := svc.Submit(context.Background(), model.ContactSubmission{
		Name:    "Ann",
		Email:   "ann@example.com",
		Message: "Hi",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg.ID == "" {
		t.Error("expected ID to be assigned")
	}
	if !msg.CreatedAt.Equal(time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)) {
		t.Errorf("expected server-assigned CreatedAt, got %v", msg.CreatedAt)
	}
	if len(repo.messages) != 1 {
		t.Fatalf("expected exactly 1 stored message, got %d", len(repo.messages))
	}
	if notifier.count() != 1 {
		t.Errorf("expected 1 notification, got %d", notifier.count())
	}
}

func TestContactService_Submit_NormalizesFields(t *testing.T) {
	repo := &memContactRepository{}
	svc := newTestContactService(repo, &mockNotifier{})

	_, err := svc.Submit(context.Background(), model.ContactSubmission{
		Name:    "  Ann Lee \n",
		Email:   "  Ann.Lee@Example.COM ",
		Message: "\tHello there  ",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	saved := repo.messages[0]
	if saved.Name != "Ann Lee" {
		t.Errorf("expected trimmed name, got %q", saved.Name)
	}
	if saved.Email != "ann.lee@example.com" {
		t.Errorf("expected lower-cased email, got %q", saved.Email)
	}
	if saved.Message != "Hello there" {
		t.Errorf("expected trimmed message, got %q", saved.Message)
	}
}

func TestContactService_Submit_MissingFields(t *testing.T) {
	tests := []struct {
		name  string
		sub   model.ContactSubmission
		field string
	}{
		{"empty name", model.ContactSubmission{Name: "", Email: "ann@example.com", Message: "Hi"}, "name"},
		{"blank name", model.ContactSubmission{Name: "   ", Email: "ann@example.com", Message: "Hi"}, "name"},
		{"empty email", model.ContactSubmission{Name: "Ann", Email: "", Message: "Hi"}, "email"},
		{"empty message", model.ContactSubmission{Name: "Ann", Email: "ann@example.com", Message: ""}, "message"},
		{"all empty", model.ContactSubmission{}, "name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &memContactRepository{}
			notifier := &mockNotifier{}
			svc := newTestContactService(repo, notifier)

			msg, err := svc.Submit(context.Background(), tt.sub)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Reason != ReasonMissing {
				t.Errorf("expected reason=%s, got %s", ReasonMissing, verr.Reason)
			}
			if verr.Field != tt.field {
				t.Errorf("expected field=%s, got %s", tt.field, verr.Field)
			}
			if msg != nil {
				t.Error("expected no message on validation failure")
			}
			if repo.saveCalls != 0 {
				t.Errorf("expected no persistence, got %d Save calls", repo.saveCalls)
			}
			if notifier.count() != 0 {
				t.Errorf("expected no notification, got %d", notifier.count())
			}
		})
	}
}

func TestContactService_Submit_InvalidEmail(t *testing.T) {
	for _, email := range []string{"ann", "ann@", "@example.com", "ann@example", "ann example@x.com", "a@b@c.com"} {
		t.Run(email, func(t *testing.T) {
			repo := &memContactRepository{}
			notifier := &mockNotifier{}
			svc := newTestContactService(repo, notifier)

			_, err := svc.Submit(context.Background(), model.ContactSubmission{Name: "Ann", Email: email, Message: "Hi"})
			var verr *ValidationError
			if !errors.As(err, &verr) || verr.Reason != ReasonInvalidEmail {
				t.Fatalf("expected invalid email ValidationError, got %v", err)
			}
			if repo.saveCalls != 0 || notifier.count() != 0 {
				t.Error("expected no side effects for invalid email")
			}
		})
	}
}

func TestContactService_Submit_MessageTooLong(t *testing.T) {
	repo := &memContactRepository{}
	svc := newTestContactService(repo, &mockNotifier{})

	_, err := svc.Submit(context.Background(), model.ContactSubmission{
		Name:    "Ann",
		Email:   "ann@example.com",
		Message: strings.Repeat("あ", 5001),
	})
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Reason != ReasonTooLong {
		t.Fatalf("expected too_long ValidationError, got %v", err)
	}
	if repo.saveCalls != 0 {
		t.Error("expected no persistence")
	}
}

func TestContactService_Submit_MessageAtMaxLength(t *testing.T) {
	repo := &memContactRepository{}
	svc := newTestContactService(repo, &mockNotifier{})

	_, err := svc.Submit(context.Background(), model.ContactSubmission{
		Name:    "Ann",
		Email:   "ann@example.com",
		Message: strings.Repeat("x", 5000),
	})
	if err != nil {
		t.Fatalf("expected 5000 chars to be accepted, got %v", err)
	}
}

func TestContactService_Submit_PersistenceFailure(t *testing.T) {
	repo := &memContactRepository{saveErr: errors.New("db connection lost")}
	notifier := &mockNotifier{}
	svc := newTestContactService(repo, notifier)

	_, err := svc.Submit(context.Background(), model.ContactSubmission{Name: "Ann", Email: "ann@example.com", Message: "Hi"})
	var perr *PersistenceError
	if !errors.As(err, &perr) {
		t.Fatalf("expected PersistenceError, got %v", err)
	}
	if notifier.count() != 0 {
		t.Error("expected no notification when persistence fails")
	}
}

func TestContactService_Submit_NotificationFailureKeepsRecord(t *testing.T) {
	repo := &memContactRepository{}
	notifier := &mockNotifier{err: errors.New("smtp: 421 service not available")}
	svc := newTestContactService(repo, notifier)

	msg, err := svc.Submit(context.Background(), model.ContactSubmission{Name: "Ann", Email: "ann@example.com", Message: "Hi"})
	var nerr *NotificationError
	if !errors.As(err, &nerr) {
		t.Fatalf("expected NotificationError, got %v", err)
	}
	if msg == nil || nerr.MessageID != msg.ID {
		t.Fatalf("expected stored message to be returned with matching id")
	}

	stored, err := svc.Get(context.Background(), msg.ID)
	if err != nil {
		t.Fatalf("expected stored message to remain retrievable, got %v", err)
	}
	if stored.Email != "ann@example.com" {
		t.Errorf("unexpected stored email %q", stored.Email)
	}
}

// ---------------------------------------------------------------------------
// List / Get tests
// ---------------------------------------------------------------------------

func seedMessages(repo *memContactRepository, n int) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		repo.messages = append(repo.messages, &model.ContactMessage{
			ID:        fmt.Sprintf("msg-%02d", i),
			Name:      "Sender",
			Email:     "s@example.com",
			Message:   "hello",
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		})
	}
}

func TestContactService_List_SecondPage(t *testing.T) {
	repo := &memContactRepository{}
	seedMessages(repo, 25)
	svc := newTestContactService(repo, &mockNotifier{})

	page, err := svc.List(context.Background(), 2, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page.Messages) != 10 {
		t.Errorf("expected 10 messages, got %d", len(page.Messages))
	}
	p := page.Pagination
	if p.Current != 2 || p.Total != 3 || p.Count != 10 || p.TotalMessages != 25 {
		t.Errorf("unexpected pagination %+v", p)
	}
	if repo.lastOpts.Offset != 10 || repo.lastOpts.Limit != 10 {
		t.Errorf("expected limit=10 offset=10, got %+v", repo.lastOpts)
	}
	if !page.Messages[0].CreatedAt.After(page.Messages[9].CreatedAt) {
		t.Error("expected newest first")
	}
}

func TestContactService_List_Defaults(t *testing.T) {
	repo := &memContactRepository{}
	svc := newTestContactService(repo, &mockNotifier{})

	page, err := svc.List(context.Background(), 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.Pagination.Current != 1 {
		t.Errorf("expected page 1, got %d", page.Pagination.Current)
	}
	if repo.lastOpts.Limit != 10 {
		t.Errorf("expected default limit 10, got %d", repo.lastOpts.Limit)
	}
	if page.Messages == nil {
		t.Error("expected empty slice, got nil")
	}
}

func TestContactService_List_ClampsLimit(t *testing.T) {
	repo := &memContactRepository{}
	svc := newTestContactService(repo, &mockNotifier{})

	if _, err := svc.List(context.Background(), 1, 5000); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.lastOpts.Limit != 100 {
		t.Errorf("expected limit clamped to 100, got %d", repo.lastOpts.Limit)
	}
	if _, err := svc.List(context.Background(), 1, -3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.lastOpts.Limit != 1 {
		t.Errorf("expected limit clamped to 1, got %d", repo.lastOpts.Limit)
	}
}

func TestContactService_List_HugePageDoesNotOverflow(t *testing.T) {
	repo := &memContactRepository{}
	seedMessages(repo, 3)
	svc := newTestContactService(repo, &mockNotifier{})

	page, err := svc.List(context.Background(), math.MaxInt/5, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.lastOpts.Offset < 0 {
		t.Fatalf("offset overflowed: %d", repo.lastOpts.Offset)
	}
	if len(page.Messages) != 0 || page.Pagination.Count != 0 {
		t.Errorf("expected an empty page, got %d messages", len(page.Messages))
	}
	if page.Pagination.Current != math.MaxInt/10 {
		t.Errorf("expected page capped to %d, got %d", math.MaxInt/10, page.Pagination.Current)
	}
	if page.Pagination.TotalMessages != 3 {
		t.Errorf("expected total 3, got %d", page.Pagination.TotalMessages)
	}
}

func TestContactService_List_RepositoryError(t *testing.T) {
	repo := &memContactRepository{countErr: errors.New("timeout")}
	svc := newTestContactService(repo, &mockNotifier{})

	_, err := svc.List(context.Background(), 1, 10)
	var perr *PersistenceError
	if !errors.As(err, &perr) {
		t.Fatalf("expected PersistenceError, got %v", err)
	}
}

func TestContactService_Get_NotFound(t *testing.T) {
	svc := newTestContactService(&memContactRepository{}, &mockNotifier{})

	_, err := svc.Get(context.Background(), "missing")
	if !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
