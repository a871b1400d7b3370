package probe

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"time"

	"servicepulse/internal/domain"
)

const (
	userAgent      = "ServicePulse-Monitor/1.0"
	DefaultTimeout = 10 * time.Second
)

type HTTPChecker struct {
	Client         *http.Client
	DefaultTimeout time.Duration
}

// NewHTTPChecker builds the probe client. Certificate verification is
// intentionally disabled for this client only: monitored endpoints on
// private infrastructure commonly run self-signed TLS, and a probe that
// refuses them would report every such service offline.
func NewHTTPChecker(defaultTimeout time.Duration) *HTTPChecker {
	if defaultTimeout <= 0 {
		defaultTimeout = DefaultTimeout
	}
	return &HTTPChecker{
		Client: &http.Client{
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, //nolint:gosec
			},
		},
		DefaultTimeout: defaultTimeout,
	}
}

func (h *HTTPChecker) Check(ctx context.Context, svc domain.Service) domain.HealthResult {
	timeout := svc.Timeout
	if timeout <= 0 {
		timeout = h.DefaultTimeout
	}
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	res := domain.HealthResult{CheckedAt: start.UTC()}

	req, err := http.NewRequestWithContext(cctx, http.MethodGet, svc.URL(), nil)
	if err != nil {
		res.Status = domain.StatusOffline
		res.Message = err.Error()
		res.ResponseTimeMS = time.Since(start).Milliseconds()
		return res
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "*/*")

	resp, err := h.Client.Do(req)
	res.ResponseTimeMS = time.Since(start).Milliseconds()
	if err != nil {
		res.Status, res.Message = classifyTransportError(err, timeout)
		return res
	}
	defer resp.Body.Close()

	res.HTTPStatus = resp.StatusCode
	if resp.StatusCode >= 200 && resp.StatusCode < 400 {
		res.Status = domain.StatusOnline
	} else {
		res.Status = domain.StatusError
		res.Message = fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}
	return res
}

// classifyTransportError maps a failed round trip to a status. Deadline
// expiry is its own state; refused connections and resolution failures are
// OFFLINE with the underlying error code in the message.
func classifyTransportError(err error, timeout time.Duration) (domain.Status, string) {
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.StatusTimeout, fmt.Sprintf("Request timed out after %ds", int(timeout.Seconds()))
	}
	if code := netErrorCode(err); code != "" {
		return domain.StatusOffline, fmt.Sprintf("Connection failed: %s", code)
	}
	if isTimeout(err) {
		return domain.StatusTimeout, fmt.Sprintf("Request timed out after %ds", int(timeout.Seconds()))
	}
	return domain.StatusOffline, err.Error()
}
