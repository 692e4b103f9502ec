package facebook

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"orderform-backend/internal/domain"
	"orderform-backend/pkg/logger"
)

const defaultGraphURL = "https://graph.facebook.com"

// HashSHA256 returns a hex-encoded SHA256 hash of the normalized input string.
func HashSHA256(input string) string {
	if input == "" {
		return ""
	}
	// Normalize: trim whitespace and lowercase
	normalized := strings.ToLower(strings.TrimSpace(input))
	hash := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(hash[:])
}

// NormalizePhone turns a local Bangladesh number into E.164 digits without
// the plus sign, which is what Meta expects before hashing.
// e.g. "01712345678" -> "8801712345678"
func NormalizePhone(mobile string) string {
	if strings.HasPrefix(mobile, "01") && len(mobile) == domain.MobileDigits {
		return "88" + mobile
	}
	return mobile
}

// CAPIClient handles server-side event tracking to Facebook Conversions API
type CAPIClient struct {
	pixelID     string
	accessToken string
	apiVersion  string
	baseURL     string
	httpClient  *http.Client
	retryDelay  time.Duration
	wg          sync.WaitGroup
}

// NewCAPIClient creates a new Facebook CAPI client. Returns nil when not
// configured; every method is a no-op on a nil client.
func NewCAPIClient(pixelID, accessToken, apiVersion string) *CAPIClient {
	if pixelID == "" || accessToken == "" {
		logger.Get().Info().Msg("[CAPI] Facebook Pixel ID or Access Token not configured. CAPI disabled.")
		return nil
	}
	return &CAPIClient{
		pixelID:     pixelID,
		accessToken: accessToken,
		apiVersion:  apiVersion,
		baseURL:     defaultGraphURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		retryDelay: time.Second,
	}
}

// UserData represents the user information for event matching
type UserData struct {
	Phone      string `json:"ph,omitempty"`          // SHA256 hashed phone
	FirstName  string `json:"fn,omitempty"`          // SHA256 hashed first name
	Country    string `json:"country,omitempty"`     // SHA256 hashed ISO 2-letter country code
	ExternalID string `json:"external_id,omitempty"` // Any unique ID from your system
	ClientIP   string `json:"client_ip_address,omitempty"`
	UserAgent  string `json:"client_user_agent,omitempty"`
}

// CustomData represents lead-specific data
type CustomData struct {
	ContentName string `json:"content_name,omitempty"`
	Currency    string `json:"currency,omitempty"`
}

// Event represents a single CAPI event
type Event struct {
	EventName      string     `json:"event_name"`
	EventTime      int64      `json:"event_time"`
	ActionSource   string     `json:"action_source"`
	EventSourceURL string     `json:"event_source_url,omitempty"`
	UserData       UserData   `json:"user_data"`
	CustomData     CustomData `json:"custom_data,omitempty"`
	EventID        string     `json:"event_id,omitempty"` // For deduplication with browser events
}

// EventPayload is the request body for CAPI
type EventPayload struct {
	Data []Event `json:"data"`
}

// SendEvent sends a single event to Facebook CAPI with simple retry logic
func (c *CAPIClient) SendEvent(ctx context.Context, event Event) error {
	if c == nil {
		return nil // CAPI disabled
	}

	payload := EventPayload{
		Data: []Event{event},
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	url := fmt.Sprintf("%s/%s/%s/events?access_token=%s",
		c.baseURL, c.apiVersion, c.pixelID, c.accessToken)

	var lastErr error
	for i := 0; i < 3; i++ { // Retry up to 3 times
		if i > 0 {
			select {
			case <-time.After(time.Duration(i) * c.retryDelay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		status, body, err := c.post(ctx, url, jsonData)
		if err != nil {
			lastErr = fmt.Errorf("CAPI request failed: %w", err)
			continue
		}
		if status == http.StatusOK {
			logger.WithContext(ctx).Debug().Str("event", event.EventName).Msg("[CAPI] Event sent")
			return nil
		}

		lastErr = fmt.Errorf("CAPI error (status %d): %s", status, string(body))

		// If it's a 4xx error (other than 429), don't retry as it's likely a permanent error in payload
		if status >= 400 && status < 500 && status != http.StatusTooManyRequests {
			break
		}
	}

	return lastErr
}

func (c *CAPIClient) post(ctx context.Context, url string, data []byte) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return resp.StatusCode, body, nil
}

// SendLeadEvent reports a placed landing-page order. PII is hashed before it
// leaves the process, and the event is sent in the background so the order
// flow never waits on it.
func (c *CAPIClient) SendLeadEvent(ctx context.Context, order domain.Order, eventID string, meta domain.ClientMeta) {
	if c == nil {
		return
	}

	event := Event{
		EventName:      "Lead",
		EventTime:      time.Now().Unix(),
		ActionSource:   "website",
		EventSourceURL: meta.SourceURL,
		UserData: UserData{
			Phone:      HashSHA256(NormalizePhone(order.Mobile)),
			FirstName:  HashSHA256(firstWord(order.Name)),
			Country:    HashSHA256("bd"),
			ExternalID: HashSHA256(order.Mobile),
			ClientIP:   meta.IP,
			UserAgent:  meta.UserAgent,
		},
		CustomData: CustomData{
			ContentName: order.Product,
			Currency:    "BDT",
		},
		EventID: eventID,
	}

	log := logger.WithContext(ctx)
	// Detached from the request: it ends as soon as the response is written.
	bg := context.WithoutCancel(ctx)

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		if err := c.SendEvent(bg, event); err != nil {
			log.Warn().Err(err).Str("event_id", eventID).Msg("[CAPI] Failed to send Lead event")
		}
	}()
}

// Wait blocks until in-flight background events finish. Used at shutdown.
func (c *CAPIClient) Wait() {
	if c == nil {
		return
	}
	c.wg.Wait()
}

func firstWord(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
