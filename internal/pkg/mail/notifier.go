package mail

import (
	"context"
	"fmt"
	"html"
	"net/url"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/crrelabs/HireAnyPro/internal/pkg/env"
)

const sendTimeout = 15 * time.Second

// Notifier sends claim links to owners and event notices to the operator.
// Delivery failures are logged and never returned.
type Notifier struct {
	sender      Sender
	operator    string
	appURL      string
	sendTimeout time.Duration
}

func NewNotifier(sender Sender, operatorEmail, appURL string) *Notifier {
	if sender == nil {
		sender = LogSender{}
	}
	return &Notifier{sender: sender, operator: operatorEmail, appURL: appURL, sendTimeout: sendTimeout}
}

// NewNotifierFromEnv wires the SMTP sender when SMTP_HOST is set and the log
// sender otherwise.
func NewNotifierFromEnv() *Notifier {
	var sender Sender = LogSender{}
	if s := NewSMTPSenderFromEnv(); s != nil {
		sender = s
	}
	return NewNotifier(sender, env.GetEnv("NOTIFY_EMAIL", ""), env.AppURL())
}

// VerificationLink builds the link embedded in claim emails.
func (n *Notifier) VerificationLink(token, listingID string) string {
	q := url.Values{}
	q.Set("token", token)
	q.Set("listing", listingID)
	return n.appURL + "/verify-claim?" + q.Encode()
}

// SendClaimVerification mails the verification link to the claimant.
func (n *Notifier) SendClaimVerification(ctx context.Context, to, listingName, token, listingID string) {
	link := n.VerificationLink(token, listingID)
	body := fmt.Sprintf(
		`<p>Someone (hopefully you) asked to claim <strong>%s</strong> on HireAnyPro.</p>`+
			`<p><a href="%s">Verify your claim</a></p>`+
			`<p>This link expires in 24 hours. If you did not request this, ignore this email.</p>`,
		html.EscapeString(listingName), html.EscapeString(link))
	n.deliver(ctx, to, "Verify your HireAnyPro listing claim", body)
}

// NotifyNewClaim tells the operator a listing was claimed.
func (n *Notifier) NotifyNewClaim(ctx context.Context, listingName, listingID, email string) {
	body := fmt.Sprintf(`<p>Listing <strong>%s</strong> (%s) was claimed by %s.</p>`,
		html.EscapeString(listingName), html.EscapeString(listingID), html.EscapeString(email))
	n.notifyOperator(ctx, "New listing claim: "+listingName, body)
}

// NotifyUpgrade tells the operator a listing moved to a paid plan.
func (n *Notifier) NotifyUpgrade(ctx context.Context, listingID, email, plan string) {
	body := fmt.Sprintf(`<p>Listing %s upgraded to <strong>%s</strong> by %s.</p>`,
		html.EscapeString(listingID), html.EscapeString(plan), html.EscapeString(email))
	n.notifyOperator(ctx, "Listing upgraded to "+plan, body)
}

// NotifyUnlinkedPayment flags a paid checkout that could not be tied to a listing.
func (n *Notifier) NotifyUnlinkedPayment(ctx context.Context, email, plan, subscriptionID string) {
	body := fmt.Sprintf(`<p>A %s checkout by %s (subscription %s) could not be linked to a listing. `+
		`Replay the webhook from the admin console once the listing is known.</p>`,
		html.EscapeString(plan), html.EscapeString(email), html.EscapeString(subscriptionID))
	n.notifyOperator(ctx, "Unlinked payment needs attention", body)
}

func (n *Notifier) notifyOperator(ctx context.Context, subject, body string) {
	if n.operator == "" {
		log.Infof("[Mail] NOTIFY_EMAIL not set, skipping operator notice %q", subject)
		return
	}
	n.deliver(ctx, n.operator, subject, body)
}

func (n *Notifier) deliver(ctx context.Context, to, subject, body string) {
	ctx, cancel := context.WithTimeout(ctx, n.sendTimeout)
	defer cancel()
	if err := n.sender.Send(ctx, to, subject, body); err != nil {
		log.Errorf("[Mail] failed to send %q to %s: %v", subject, to, err)
	}
}
