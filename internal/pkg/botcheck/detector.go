package botcheck

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2/log"
)

// HoneypotField is the hidden form field real users leave empty.
const HoneypotField = "website"

// Honeypot reports whether the hidden field was filled in.
func Honeypot(value string) bool {
	return strings.TrimSpace(value) != ""
}

// Signals are the request attributes used to judge a submission.
type Signals struct {
	Honeypot     string
	CaptchaToken string
	RemoteIP     string
}

// Detector combines the honeypot and captcha checks.
type Detector struct {
	verifier *Verifier
}

func NewDetector(verifier *Verifier) *Detector {
	return &Detector{verifier: verifier}
}

// IsLikelyBot is true for a filled honeypot or a failed captcha.
func (d *Detector) IsLikelyBot(ctx context.Context, s Signals) bool {
	if Honeypot(s.Honeypot) {
		log.Infof("[BotCheck] honeypot triggered from %s", s.RemoteIP)
		return true
	}
	if d == nil || d.verifier == nil {
		return false
	}
	ok, err := d.verifier.Verify(ctx, s.CaptchaToken, s.RemoteIP)
	if !ok {
		log.Infof("[BotCheck] captcha rejected from %s: %v", s.RemoteIP, err)
		return true
	}
	return false
}

// CaptchaPassed runs only the captcha check.
func (d *Detector) CaptchaPassed(ctx context.Context, token, remoteIP string) bool {
	if d == nil || d.verifier == nil {
		return true
	}
	ok, _ := d.verifier.Verify(ctx, token, remoteIP)
	return ok
}
