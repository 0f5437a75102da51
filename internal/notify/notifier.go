package notify

import (
	"context"
	"sync"
	"time"

	"github.com/jonathan/hiring-pipeline/internal/logging"
	"github.com/jonathan/hiring-pipeline/internal/observability"
)

const defaultTimeout = 10 * time.Second

// Notification is an email waiting to be rendered and sent.
type Notification struct {
	Template Template
	To       string
	Data     any
}

// InterviewScheduledData fills the interview_scheduled template.
type InterviewScheduledData struct {
	CandidateName   string
	JobTitle        string
	Title           string
	Type            string
	ScheduledAt     time.Time
	DurationMinutes int
	Location        string
	MeetingLink     string
}

// TaskAssignedData fills the task_assigned template.
type TaskAssignedData struct {
	CandidateName string
	JobTitle      string
	Title         string
	Description   string
	DueDate       *time.Time
}

// OfferSentData fills the offer_sent template.
type OfferSentData struct {
	CandidateName string
	JobTitle      string
	OfferAmount   *float64
	Currency      string
}

// ApplicationRejectedData fills the application_rejected template.
type ApplicationRejectedData struct {
	CandidateName string
	JobTitle      string
	Reason        string
}

// MeetingScheduledData fills the compensation_meeting_scheduled template.
type MeetingScheduledData struct {
	CandidateName string
	JobTitle      string
	Mode          string
	ScheduledAt   time.Time
	Location      string
	MeetingLink   string
	Notes         string
}

// Sender queues notifications. Dispatch never blocks on delivery.
type Sender interface {
	Dispatch(ctx context.Context, n Notification)
}

// Notifier renders and sends notifications in the background. Delivery failures
// are logged and counted, never returned to the caller.
type Notifier struct {
	mailer   Mailer
	renderer *Renderer
	log      *logging.Logger
	timeout  time.Duration
	wg       sync.WaitGroup
}

// NewNotifier creates a notifier. timeout bounds each delivery; zero selects a default.
func NewNotifier(mailer Mailer, renderer *Renderer, log *logging.Logger, timeout time.Duration) *Notifier {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if log == nil {
		log = logging.NewNop()
	}
	return &Notifier{mailer: mailer, renderer: renderer, log: log, timeout: timeout}
}

// Dispatch sends n asynchronously. The request context only contributes its values;
// delivery continues after the request that triggered it has finished.
func (n *Notifier) Dispatch(ctx context.Context, note Notification) {
	if note.To == "" {
		observability.NotificationsSent.WithLabelValues(string(note.Template), "skipped").Inc()
		n.log.Debug("notification skipped, no recipient", "template", note.Template)
		return
	}

	detached := context.WithoutCancel(ctx)
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()

		sendCtx, cancel := context.WithTimeout(detached, n.timeout)
		defer cancel()

		if err := n.Send(sendCtx, note); err != nil {
			observability.NotificationsSent.WithLabelValues(string(note.Template), "failed").Inc()
			n.log.Warn("notification failed", "template", note.Template, "to", note.To, "error", err)
			return
		}
		observability.NotificationsSent.WithLabelValues(string(note.Template), "sent").Inc()
	}()
}

// Send renders and delivers a notification synchronously.
func (n *Notifier) Send(ctx context.Context, note Notification) error {
	subject, body, err := n.renderer.Render(note.Template, note.Data)
	if err != nil {
		return err
	}
	return n.mailer.Send(ctx, Message{To: note.To, Subject: subject, Body: body})
}

// Wait blocks until every dispatched notification has finished.
func (n *Notifier) Wait() {
	n.wg.Wait()
}
