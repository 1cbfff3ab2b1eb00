package messenger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// HTTPMessenger delivers messages through a configurable WhatsApp
// provider endpoint. Retry policy lives entirely here: callers only see
// the final outcome after all attempts.
type HTTPMessenger struct {
	httpClient *http.Client
	apiURL     string
	auth       string
	provider   string
	attempts   int
	retryDelay time.Duration
	log        *logrus.Entry
}

func NewHTTPMessenger(apiURL, auth, provider string, attempts int, retryDelay time.Duration, log *logrus.Entry) *HTTPMessenger {
	if attempts < 1 {
		attempts = 1
	}
	return &HTTPMessenger{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		apiURL:     apiURL,
		auth:       auth,
		provider:   provider,
		attempts:   attempts,
		retryDelay: retryDelay,
		log:        log,
	}
}

// Send posts one message, retrying transport and status failures up to
// the configured attempt count.
func (m *HTTPMessenger) Send(ctx context.Context, phone, text string) error {
	if phone == "" || text == "" {
		return fmt.Errorf("refusing to send with empty phone or text")
	}

	body, err := json.Marshal(buildPayload(m.provider, phone, text))
	if err != nil {
		return fmt.Errorf("marshaling %s payload: %w", m.provider, err)
	}

	var lastErr error
	for attempt := 1; attempt <= m.attempts; attempt++ {
		lastErr = m.post(ctx, body)
		if lastErr == nil {
			return nil
		}
		m.log.WithFields(logrus.Fields{
			"phone":   phone,
			"attempt": attempt,
		}).WithError(lastErr).Warn("message delivery attempt failed")

		if attempt < m.attempts {
			select {
			case <-ctx.Done():
				return fmt.Errorf("send to %s interrupted: %w", phone, ctx.Err())
			case <-time.After(m.retryDelay):
			}
		}
	}
	return fmt.Errorf("send to %s failed after %d attempts: %w", phone, m.attempts, lastErr)
}

func (m *HTTPMessenger) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.apiURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building send request: %w", err)
	}
	for k, v := range buildHeaders(m.provider, m.auth) {
		req.Header.Set(k, v)
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusAccepted:
		return nil
	default:
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("provider returned status %d: %s", resp.StatusCode, detail)
	}
}
