package botcheck

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/crrelabs/HireAnyPro/internal/pkg/env"
)

const (
	TurnstileVerifyURL = "https://challenges.cloudflare.com/turnstile/v0/siteverify"
	HCaptchaVerifyURL  = "https://hcaptcha.com/siteverify"
)

type Response struct {
	Success     bool     `json:"success"`
	ChallengeTS string   `json:"challenge_ts"`
	Hostname    string   `json:"hostname"`
	ErrorCodes  []string `json:"error-codes"`
}

// Verifier checks a captcha token against a siteverify endpoint.
type Verifier struct {
	secret    string
	verifyURL string
	client    *http.Client
}

func NewVerifier(secret, verifyURL string) *Verifier {
	return &Verifier{
		secret:    strings.TrimSpace(secret),
		verifyURL: verifyURL,
		client:    &http.Client{Timeout: 10 * time.Second},
	}
}

// NewVerifierFromEnv picks the endpoint from CAPTCHA_PROVIDER (turnstile or hcaptcha).
func NewVerifierFromEnv() *Verifier {
	verifyURL := TurnstileVerifyURL
	if strings.EqualFold(env.GetEnv("CAPTCHA_PROVIDER", "turnstile"), "hcaptcha") {
		verifyURL = HCaptchaVerifyURL
	}
	return NewVerifier(env.GetEnv("CAPTCHA_SECRET", ""), verifyURL)
}

// Enabled is false without a secret or with a Turnstile test secret (1x000...).
func (v *Verifier) Enabled() bool {
	return v.secret != "" && !strings.HasPrefix(v.secret, "1x000")
}

// Verify returns true when the token passes. A disabled verifier accepts everything.
func (v *Verifier) Verify(ctx context.Context, token, remoteIP string) (bool, error) {
	if !v.Enabled() {
		return true, nil
	}
	if token == "" {
		return false, fmt.Errorf("captcha token is empty")
	}

	formData := url.Values{
		"secret":   {v.secret},
		"response": {token},
	}
	if remoteIP != "" {
		formData.Set("remoteip", remoteIP)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.verifyURL, strings.NewReader(formData.Encode()))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("failed to send request to captcha API: %w", err)
	}
	defer resp.Body.Close()

	var response Response
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return false, fmt.Errorf("failed to decode captcha API response: %w", err)
	}

	if !response.Success {
		errorMsg := "captcha validation failed"
		if len(response.ErrorCodes) > 0 {
			errorMsg = errorMsg + ": " + strings.Join(response.ErrorCodes, ", ")
		}
		return false, fmt.Errorf("%s", errorMsg)
	}

	return true, nil
}
