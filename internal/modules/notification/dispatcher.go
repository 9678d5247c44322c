package notification

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// AddressBook resolves the email address of an event target so the dispatcher
// can deliver mail. Implemented by the user and pharmacy modules.
type AddressBook interface {
	EmailForTarget(ctx context.Context, role, targetID string) (string, error)
}

// Dispatcher decouples lifecycle transitions from notification delivery.
// Publish never blocks and never fails the caller; a background goroutine
// persists each event and attempts email delivery under a bounded timeout.
type Dispatcher struct {
	repo    Repository
	mailer  Mailer
	book    AddressBook
	logger  *logrus.Logger
	events  chan Event
	timeout time.Duration
}

func NewDispatcher(repo Repository, mailer Mailer, book AddressBook, logger *logrus.Logger) *Dispatcher {
	return &Dispatcher{
		repo:    repo,
		mailer:  mailer,
		book:    book,
		logger:  logger,
		events:  make(chan Event, 256),
		timeout: 10 * time.Second,
	}
}

// Publish enqueues an event. If the buffer is full the event is dropped with
// a log line; delivery is fire-and-forget and must not stall a transition.
func (d *Dispatcher) Publish(e Event) {
	select {
	case d.events <- e:
	default:
		d.logger.WithFields(logrus.Fields{
			"role":  e.Role,
			"title": e.Title,
		}).Warn("notification buffer full, event dropped")
	}
}

// Run consumes published events until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case e := <-d.events:
			d.dispatch(ctx, e)
		}
	}
}

func (d *Dispatcher) dispatch(ctx context.Context, e Event) {
	n := &Notification{
		ID:        uuid.New(),
		Role:      e.Role,
		Title:     e.Title,
		Message:   e.Message,
		CreatedAt: time.Now().UTC(),
	}
	if target, err := uuid.Parse(e.TargetID); err == nil {
		if e.Role == "pharmacy" {
			n.PharmacyID = &target
		} else {
			n.UserID = &target
		}
	}
	if mid, err := uuid.Parse(e.MedicineID); err == nil {
		n.MedicineID = &mid
	}

	if err := d.repo.Create(ctx, n); err != nil {
		d.logger.WithError(err).Warn("could not persist notification")
	}

	if d.mailer == nil {
		return
	}

	sendCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	addr, err := d.book.EmailForTarget(sendCtx, e.Role, e.TargetID)
	if err != nil {
		d.logger.WithError(err).Warn("could not resolve notification recipient")
		return
	}
	if err := d.mailer.Send(sendCtx, addr, e.Title, e.Message); err != nil {
		d.logger.WithError(err).WithField("to", addr).Warn("notification email failed")
	}
}
