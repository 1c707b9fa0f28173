package delivery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/joao-fontenele/rkeeper-whatsapp-relay/internal/domain"
)

const (
	DefaultBaseURL = "https://api.twilio.com"
	DefaultTimeout = 10 * time.Second

	maxResponseBytes = 1 << 20
)

var ErrTimeout = errors.New("delivery timed out")

var tracer = otel.Tracer("delivery/twilio")

// ProviderError is a non-2xx answer from the messaging API.
type ProviderError struct {
	Status   int
	Code     int
	Message  string
	MoreInfo string
}

func (e *ProviderError) Error() string {
	msg := fmt.Sprintf("HTTP %d error: unable to create message: %s", e.Status, e.Message)
	if e.Code != 0 {
		msg += fmt.Sprintf(" (code %d)", e.Code)
	}
	return msg
}

// Client sends messages through the Twilio Messages API. Each Send is a
// single attempt bounded by the configured timeout.
type Client struct {
	baseURL    string
	accountSID string
	authToken  string
	timeout    time.Duration
	httpClient *http.Client
}

func NewClient(baseURL, accountSID, authToken string, timeout time.Duration, client *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		accountSID: accountSID,
		authToken:  authToken,
		timeout:    timeout,
		httpClient: client,
	}
}

type messageResponse struct {
	SID    string `json:"sid"`
	Status string `json:"status"`
}

type errorResponse struct {
	Code     int    `json:"code"`
	Message  string `json:"message"`
	MoreInfo string `json:"more_info"`
	Status   int    `json:"status"`
}

// Send delivers msg and returns the provider's message SID.
func (c *Client) Send(ctx context.Context, msg domain.OutboundMessage) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	ctx, span := tracer.Start(ctx, "send message",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("messaging.system", "twilio"),
			attribute.Int("message.body_length", len(msg.Body)),
		),
	)
	defer span.End()

	sid, err := c.send(ctx, msg)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("%w after %s: %w", ErrTimeout, c.timeout, err)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	span.SetAttributes(attribute.String("message.sid", sid))
	return sid, nil
}

func (c *Client) send(ctx context.Context, msg domain.OutboundMessage) (string, error) {
	form := url.Values{}
	form.Set("Body", msg.Body)
	form.Set("From", msg.From)
	form.Set("To", msg.To)

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", c.baseURL, url.PathEscape(c.accountSID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("create message request: %w", err)
	}
	req.SetBasicAuth(c.accountSID, c.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("read provider response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", parseError(resp.StatusCode, data)
	}

	var out messageResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return "", fmt.Errorf("decode provider response: %w", err)
	}
	if out.SID == "" {
		return "", errors.New("provider response is missing the message sid")
	}

	return out.SID, nil
}

func parseError(status int, data []byte) error {
	perr := &ProviderError{Status: status}

	var body errorResponse
	if err := json.Unmarshal(data, &body); err == nil && body.Message != "" {
		perr.Code = body.Code
		perr.Message = body.Message
		perr.MoreInfo = body.MoreInfo
		return perr
	}

	perr.Message = strings.TrimSpace(string(data))
	if perr.Message == "" {
		perr.Message = http.StatusText(status)
	}
	return perr
}
