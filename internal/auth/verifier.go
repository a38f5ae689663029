package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrInvalidCredentials is returned when the verification endpoint
// rejects the service header pair.
var ErrInvalidCredentials = errors.New("service credentials rejected")

const defaultVerifyTimeout = 5 * time.Second

// Verifier checks a caller's service credentials.
type Verifier interface {
	Verify(ctx context.Context, serviceName, serviceKey string) error
}

// httpVerifier delegates verification to a remote endpoint.
type httpVerifier struct {
	client    *http.Client
	verifyURL string
}

// NewHTTPVerifier creates a Verifier that POSTs the credential pair to
// verifyURL and treats any 2xx response as approval.
func NewHTTPVerifier(verifyURL string, timeout time.Duration) Verifier {
	if timeout <= 0 {
		timeout = defaultVerifyTimeout
	}
	return &httpVerifier{
		client:    &http.Client{Timeout: timeout},
		verifyURL: verifyURL,
	}
}

type verifyRequest struct {
	ServiceName string `json:"serviceName"`
	ServiceKey  string `json:"serviceKey"`
}

func (v *httpVerifier) Verify(ctx context.Context, serviceName, serviceKey string) error {
	body, err := json.Marshal(verifyRequest{ServiceName: serviceName, ServiceKey: serviceKey})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.verifyURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := v.client.Do(req)
	if err != nil {
		return fmt.Errorf("auth service unreachable: %w", err)
	}
	defer resp.Body.Close()
	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return ErrInvalidCredentials
	default:
		return fmt.Errorf("auth service returned status %d", resp.StatusCode)
	}
}
