package notification

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/chandamvula/pharmalink-backend/internal/apperr"
)

type memRepo struct{ stored []*Notification }

func (r *memRepo) Create(_ context.Context, n *Notification) error {
	cp := *n
	r.stored = append(r.stored, &cp)
	return nil
}

func (r *memRepo) ListForTarget(_ context.Context, role, targetID string) ([]*Notification, error) {
	var out []*Notification
	for _, n := range r.stored {
		if n.Role == role && matchesTarget(n, role, targetID) {
			out = append(out, n)
		}
	}
	return out, nil
}

func (r *memRepo) GetForTarget(_ context.Context, id, role, targetID string) (*Notification, error) {
	for _, n := range r.stored {
		if n.ID.String() == id && n.Role == role && matchesTarget(n, role, targetID) {
			cp := *n
			return &cp, nil
		}
	}
	return nil, apperr.NotFound("notification not found")
}

func (r *memRepo) MarkRead(_ context.Context, id string) error {
	for _, n := range r.stored {
		if n.ID.String() == id {
			n.Read = true
			return nil
		}
	}
	return apperr.NotFound("notification not found")
}

func (r *memRepo) Delete(_ context.Context, id string) error {
	for i, n := range r.stored {
		if n.ID.String() == id {
			r.stored = append(r.stored[:i], r.stored[i+1:]...)
			return nil
		}
	}
	return apperr.NotFound("notification not found")
}

func matchesTarget(n *Notification, role, targetID string) bool {
	if role == "pharmacy" {
		return n.PharmacyID != nil && n.PharmacyID.String() == targetID
	}
	return n.UserID != nil && n.UserID.String() == targetID
}

type stubBook struct {
	addr string
	err  error
}

func (b stubBook) EmailForTarget(context.Context, string, string) (string, error) {
	return b.addr, b.err
}

type stubMailer struct {
	sent []string
	err  error
}

func (m *stubMailer) Send(_ context.Context, to, _, _ string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, to)
	return nil
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestDispatch_PersistsAndEmails(t *testing.T) {
	repo := &memRepo{}
	mailer := &stubMailer{}
	d := NewDispatcher(repo, mailer, stubBook{addr: "owner@pharmacy.test"}, quietLogger())

	target := uuid.New()
	d.dispatch(context.Background(), Event{
		Role:     "pharmacy",
		TargetID: target.String(),
		Title:    "New order received",
		Message:  "Order #7 is awaiting your approval",
	})

	if len(repo.stored) != 1 {
		t.Fatalf("stored = %d, want 1", len(repo.stored))
	}
	n := repo.stored[0]
	if n.PharmacyID == nil || *n.PharmacyID != target || n.UserID != nil {
		t.Fatalf("target columns wrong: %+v", n)
	}
	if len(mailer.sent) != 1 || mailer.sent[0] != "owner@pharmacy.test" {
		t.Fatalf("sent = %v", mailer.sent)
	}
}

func TestDispatch_DeliveryFailuresAreSwallowed(t *testing.T) {
	repo := &memRepo{}
	d := NewDispatcher(repo, &stubMailer{err: errors.New("relay down")},
		stubBook{addr: "a@b.test"}, quietLogger())

	d.dispatch(context.Background(), Event{Role: "user", TargetID: uuid.New().String(), Title: "t"})
	if len(repo.stored) != 1 {
		t.Fatalf("record must persist even when the email fails")
	}

	d = NewDispatcher(repo, &stubMailer{}, stubBook{err: errors.New("no such account")}, quietLogger())
	d.dispatch(context.Background(), Event{Role: "user", TargetID: uuid.New().String(), Title: "t"})
	if len(repo.stored) != 2 {
		t.Fatalf("record must persist even when the recipient is unknown")
	}
}

func TestPublish_NeverBlocks(t *testing.T) {
	d := NewDispatcher(&memRepo{}, &stubMailer{}, stubBook{}, quietLogger())

	done := make(chan struct{})
	go func() {
		// nobody is consuming; overflow past the buffer must drop, not stall
		for i := 0; i < 1000; i++ {
			d.Publish(Event{Role: "user", Title: "t"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a full buffer")
	}
}

func TestRun_ConsumesUntilCancelled(t *testing.T) {
	repo := &memRepo{}
	d := NewDispatcher(repo, &stubMailer{}, stubBook{addr: "a@b.test"}, quietLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go d.Run(ctx)

	target := uuid.New()
	d.Publish(Event{Role: "user", TargetID: target.String(), Title: "t", Message: "m"})

	deadline := time.After(2 * time.Second)
	for len(repo.stored) == 0 {
		select {
		case <-deadline:
			t.Fatal("event never dispatched")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestInbox_ScopedToTarget(t *testing.T) {
	repo := &memRepo{}
	svc := NewService(repo)
	ctx := context.Background()

	me, other := uuid.New(), uuid.New()
	mine := &Notification{ID: uuid.New(), Role: "user", UserID: &me, Title: "a"}
	theirs := &Notification{ID: uuid.New(), Role: "user", UserID: &other, Title: "b"}
	if err := repo.Create(ctx, mine); err != nil {
		t.Fatal(err)
	}
	if err := repo.Create(ctx, theirs); err != nil {
		t.Fatal(err)
	}

	list, err := svc.ListMine(ctx, "user", me.String())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].Title != "a" {
		t.Fatalf("list = %+v", list)
	}

	if _, err := svc.MarkRead(ctx, theirs.ID.String(), "user", me.String()); apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("foreign mark read: err = %v, want not found", err)
	}
	n, err := svc.MarkRead(ctx, mine.ID.String(), "user", me.String())
	if err != nil || !n.Read {
		t.Fatalf("mark read: %v %+v", err, n)
	}

	if err := svc.Delete(ctx, mine.ID.String(), "user", me.String()); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(repo.stored) != 1 {
		t.Fatalf("stored = %d, want 1 left", len(repo.stored))
	}
}
