package mail

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentMail struct {
	to, subject, body string
}

type recordingSender struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (r *recordingSender) Send(_ context.Context, to, subject, body string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, sentMail{to, subject, body})
	return r.err
}

func TestVerificationLinkEmbedsTokenAndListing(t *testing.T) {
	n := NewNotifier(&recordingSender{}, "", "https://hireanypro.test")

	link := n.VerificationLink("tok123", "listing-1")
	u, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "/verify-claim", u.Path)
	assert.Equal(t, "tok123", u.Query().Get("token"))
	assert.Equal(t, "listing-1", u.Query().Get("listing"))
}

func TestSendClaimVerificationSwallowsErrors(t *testing.T) {
	sender := &recordingSender{err: errors.New("smtp down")}
	n := NewNotifier(sender, "ops@example.com", "https://hireanypro.test")

	assert.NotPanics(t, func() {
		n.SendClaimVerification(context.Background(), "owner@example.com", "Acme <Plumbing>", "tok", "l1")
	})
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "owner@example.com", sender.sent[0].to)
	assert.Contains(t, sender.sent[0].body, "Acme &lt;Plumbing&gt;")
	assert.Contains(t, sender.sent[0].body, "token=tok")
}

func TestOperatorNoticesRequireNotifyEmail(t *testing.T) {
	sender := &recordingSender{}
	n := NewNotifier(sender, "", "https://hireanypro.test")
	n.NotifyUpgrade(context.Background(), "l1", "a@x.com", "pro")
	assert.Empty(t, sender.sent)

	n = NewNotifier(sender, "ops@example.com", "https://hireanypro.test")
	n.NotifyNewClaim(context.Background(), "Acme", "l1", "a@x.com")
	n.NotifyUpgrade(context.Background(), "l1", "a@x.com", "pro")
	n.NotifyUnlinkedPayment(context.Background(), "a@x.com", "pro", "sub_1")
	require.Len(t, sender.sent, 3)
	for _, m := range sender.sent {
		assert.Equal(t, "ops@example.com", m.to)
	}
	assert.Contains(t, sender.sent[2].body, "sub_1")
}

func TestNilSenderFallsBackToLog(t *testing.T) {
	n := NewNotifier(nil, "ops@example.com", "https://hireanypro.test")
	assert.NotPanics(t, func() {
		n.NotifyNewClaim(context.Background(), "Acme", "l1", "a@x.com")
	})
}
