package sheets

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"orderform-backend/internal/domain"
	"orderform-backend/pkg/logger"
)

const (
	opSubmit = "submit order"

	// Apps Script answers with small JSON documents; anything bigger is not ours.
	maxResponseBytes = 1 << 20
)

// Client posts orders to a spreadsheet-backed Google Apps Script web app.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// NewClient creates a client for the given web app URL. A zero timeout
// leaves requests unbounded; cancellation then comes from the caller's
// context only.
func NewClient(endpoint string, timeout time.Duration) *Client {
	return &Client{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// NewClientWithHTTP lets callers supply their own *http.Client.
func NewClientWithHTTP(endpoint string, hc *http.Client) *Client {
	return &Client{endpoint: endpoint, httpClient: hc}
}

// Submit sends the order as multipart form fields and decodes the JSON reply.
// Request-level failures come back as *domain.NetworkError; interpreting the
// reply's status is left to the caller. A non-2xx reply carrying a JSON
// failure report is returned like a 200 one; any other non-2xx reply is a
// *domain.NetworkError.
func (c *Client) Submit(ctx context.Context, order domain.Order) (*domain.EndpointResponse, error) {
	body, contentType, err := encodeOrder(order)
	if err != nil {
		return nil, &domain.NetworkError{Op: opSubmit, Err: fmt.Errorf("failed to encode form: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, body)
	if err != nil {
		return nil, &domain.NetworkError{Op: opSubmit, Err: err}
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	log := logger.WithContext(ctx)
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &domain.NetworkError{Op: opSubmit, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &domain.NetworkError{Op: opSubmit, StatusCode: resp.StatusCode, Err: err}
	}

	log.Debug().
		Int("status", resp.StatusCode).
		Dur("duration_ms", time.Since(start)).
		Int("bytes", len(raw)).
		Msg("Sheets endpoint replied")

	var out domain.EndpointResponse
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// A JSON failure report is passed through so its message reaches the
		// visitor. A success status on an error code is not trusted.
		if err := json.Unmarshal(raw, &out); err == nil && (out.Status != "" || out.Message != "") && !out.IsSuccess() {
			return &out, nil
		}
		return nil, &domain.NetworkError{
			Op:         opSubmit,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected response: %s", snippet(raw)),
		}
	}

	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, &domain.NetworkError{
			Op:         opSubmit,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("malformed response: %w", err),
		}
	}
	return &out, nil
}

func encodeOrder(order domain.Order) (io.Reader, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, kv := range order.FormFields() {
		if err := mw.WriteField(kv[0], kv[1]); err != nil {
			return nil, "", err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return &buf, mw.FormDataContentType(), nil
}

func snippet(raw []byte) string {
	const n = 120
	if len(raw) == 0 {
		return "empty body"
	}
	if len(raw) > n {
		return string(raw[:n]) + "..."
	}
	return string(raw)
}

// IsTimeout reports whether err came from an expired deadline.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var te interface{ Timeout() bool }
	return errors.As(err, &te) && te.Timeout()
}
