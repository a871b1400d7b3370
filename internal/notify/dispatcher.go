package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"servicepulse/internal/domain"
	"servicepulse/internal/metrics"
	"servicepulse/internal/pubsub"
	"servicepulse/internal/repo"
)

// Dispatcher fans a notify-worthy transition out across the three delivery
// channels: durable notification rows, the real-time broadcast, and email.
// Channel failures are isolated — each is attempted regardless of the
// others' outcome.
type Dispatcher struct {
	notifications repo.NotificationStore
	publisher     pubsub.Publisher
	mailer        Mailer
	logger        *zap.Logger
}

func NewDispatcher(notifications repo.NotificationStore, publisher pubsub.Publisher, mailer Mailer, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		notifications: notifications,
		publisher:     publisher,
		mailer:        mailer,
		logger:        logger,
	}
}

// Broadcast publishes a status update for every probe result, notify-worthy
// or not; the dashboards' live view depends on it.
func (d *Dispatcher) Broadcast(ctx context.Context, rec domain.StatusRecord) error {
	payload := pubsub.StatusUpdate{
		ServiceID: rec.ServiceID,
		Status:    rec,
		Timestamp: pubsub.ISOTime(rec.CheckedAt),
	}
	if err := d.publisher.Publish(ctx, pubsub.ChannelStatusUpdate, payload); err != nil {
		metrics.DispatchErrors.WithLabelValues("broadcast").Inc()
		return fmt.Errorf("broadcast status update: %w", err)
	}
	return nil
}

// Dispatch delivers one transition to the resolved recipients. It never
// returns an error: every channel failure is logged and counted, and the
// remaining channels still run.
func (d *Dispatcher) Dispatch(ctx context.Context, tr domain.Transition, recipients []domain.User) {
	title, message := renderNotification(tr)
	priority := domain.PriorityNormal
	if tr.Category == domain.CategoryDegradation || tr.Category == domain.CategoryErrorAlert {
		priority = domain.PriorityHigh
	}

	// Channel 1: durable in-app rows, one per recipient.
	for _, u := range recipients {
		serviceID := tr.Service.ID
		n := &domain.Notification{
			ID:        uuid.NewString(),
			UserID:    u.ID,
			Type:      string(tr.Category),
			Title:     title,
			Message:   message,
			ServiceID: &serviceID,
			Priority:  priority,
		}
		if err := d.notifications.InsertNotification(ctx, n); err != nil {
			metrics.DispatchErrors.WithLabelValues("durable").Inc()
			d.logger.Warn("notification_insert_failed",
				zap.String("service", tr.Service.Name),
				zap.String("user", string(u.ID)),
				zap.Error(err),
			)
		}
	}

	// Channel 2: real-time broadcast of the transition record.
	if err := d.Broadcast(ctx, tr.Record); err != nil {
		d.logger.Warn("broadcast_failed",
			zap.String("service", tr.Service.Name),
			zap.Error(err),
		)
	}

	// Channel 3: one batched email.
	addrs := make([]string, 0, len(recipients))
	for _, u := range recipients {
		if u.Email != "" {
			addrs = append(addrs, u.Email)
		}
	}
	if len(addrs) > 0 && d.mailer != nil {
		subject, body := RenderEmail(tr)
		if err := d.mailer.Send(ctx, addrs, subject, body); err != nil {
			metrics.DispatchErrors.WithLabelValues("email").Inc()
			d.logger.Warn("email_send_failed",
				zap.String("service", tr.Service.Name),
				zap.Int("recipients", len(addrs)),
				zap.Error(err),
			)
		}
	}

	metrics.NotificationsSent.Add(float64(len(recipients)))
	d.logger.Info("transition_dispatched",
		zap.String("service", tr.Service.Name),
		zap.String("from", string(tr.Old)),
		zap.String("to", string(tr.New)),
		zap.String("category", string(tr.Category)),
		zap.Int("recipients", len(recipients)),
	)
}

func renderNotification(tr domain.Transition) (title, message string) {
	title = fmt.Sprintf("%s %s is %s", tr.New.Emoji(), tr.Service.Name, strings.ToUpper(string(tr.New)))
	message = fmt.Sprintf("%s changed from %s to %s", tr.Service.Name, tr.Old, tr.New)
	if tr.Record.Message != "" {
		message += " (" + tr.Record.Message + ")"
	}
	return title, message
}
