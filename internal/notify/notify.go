// Package notify delivers user-facing messages. The reminder engine and the
// garden service depend only on the Notifier interface; the SMTP
// implementation lives in mailer.go and tests substitute fakes.
//
// Delivery is best-effort by contract: a failed send is logged by the
// caller and never blocks scheduling or other recipients.
package notify

import (
	"context"

	"github.com/sakif/plantcare/internal/model"
)

type Notifier interface {
	// SendWateringReminder tells the target their plant is due for water.
	SendWateringReminder(ctx context.Context, target model.NotificationTarget, entry *model.GardenEntry) error
	// SendGardenAddition confirms a plant was added to the target's garden.
	SendGardenAddition(ctx context.Context, target model.NotificationTarget, entry *model.GardenEntry) error
}

// Discard is a Notifier that drops every message. Useful when SMTP is not
// configured — the scheduling machinery keeps working, just silently.
type Discard struct{}

func (Discard) SendWateringReminder(context.Context, model.NotificationTarget, *model.GardenEntry) error {
	return nil
}

func (Discard) SendGardenAddition(context.Context, model.NotificationTarget, *model.GardenEntry) error {
	return nil
}
