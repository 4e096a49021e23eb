// Package sheets is the request/response boundary to the spreadsheet-backed
// record store (an Apps Script web app, one deployment URL per record kind).
// Every operation is a form-encoded POST carrying an action, a module selector
// and a flat field payload; every response is a JSON envelope with at least a
// success boolean.
package sheets

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"kojen-data/internal/domain"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Envelope is the store's response shape. Error is always present on failure;
// DuplicateFound and LockActive qualify save failures; Data/Count accompany
// get responses.
type Envelope struct {
	Success        bool             `json:"success"`
	Message        string           `json:"message,omitempty"`
	Error          string           `json:"error,omitempty"`
	RecordID       string           `json:"recordId,omitempty"`
	Timestamp      string           `json:"timestamp,omitempty"`
	Data           []map[string]any `json:"data,omitempty"`
	Count          int              `json:"count,omitempty"`
	DuplicateFound bool             `json:"duplicateFound,omitempty"`
	LockActive     bool             `json:"lockActive,omitempty"`
}

// Rows converts the header-keyed result rows to plain string cells. The sheet
// engine returns a mix of strings and numbers; everything downstream works on
// strings and re-parses leniently.
func (e *Envelope) Rows() []map[string]string {
	rows := make([]map[string]string, 0, len(e.Data))
	for _, raw := range e.Data {
		row := make(map[string]string, len(raw))
		for k, v := range raw {
			row[k] = cellString(v)
		}
		rows = append(rows, row)
	}
	return rows
}

func cellString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// Client talks to the per-kind web app deployments. Writes go through a
// no-retry client: the store's advisory lock makes a blind resubmit worse than
// a surfaced failure, and the operator is the retry policy. Reads are
// idempotent and get a short retry.
type Client struct {
	urls   map[domain.Kind]string
	write  *resty.Client
	read   *resty.Client
	logger *zap.Logger
}

func NewClient(urls map[domain.Kind]string, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	// Apps Script deployments answer through redirects and do not always set a
	// JSON content type, so the body is decoded as JSON regardless.
	write := resty.New().
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	read := resty.New().
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		SetHeader("Accept", "application/json")

	return &Client{urls: urls, write: write, read: read, logger: logger}
}

// Save appends one record. payload is the flat internal-field view.
func (c *Client) Save(ctx context.Context, kind domain.Kind, payload map[string]string) (*Envelope, error) {
	return c.post(ctx, c.write, kind, "save", payload)
}

// Update rewrites the changed fields of an existing record, addressed by ID.
func (c *Client) Update(ctx context.Context, kind domain.Kind, id string, payload map[string]string) (*Envelope, error) {
	merged := make(map[string]string, len(payload)+1)
	for k, v := range payload {
		merged[k] = v
	}
	merged["id"] = id
	return c.post(ctx, c.write, kind, "update", merged)
}

// Delete removes one record by ID.
func (c *Client) Delete(ctx context.Context, kind domain.Kind, id string) (*Envelope, error) {
	return c.post(ctx, c.write, kind, "delete", map[string]string{"id": id})
}

// Get fetches rows, optionally filtered (date, shift, hour, date range,
// recent-N). Rows come back keyed by whatever headers the sheet currently has.
func (c *Client) Get(ctx context.Context, kind domain.Kind, filters map[string]string) (*Envelope, error) {
	return c.post(ctx, c.read, kind, "get", filters)
}

// Ping runs the store's test action for health checks.
func (c *Client) Ping(ctx context.Context, kind domain.Kind) error {
	_, err := c.post(ctx, c.read, kind, "test", nil)
	return err
}

func (c *Client) post(ctx context.Context, rc *resty.Client, kind domain.Kind, action string, payload map[string]string) (*Envelope, error) {
	url, ok := c.urls[kind]
	if !ok || url == "" {
		return nil, fmt.Errorf("%w: no web app URL configured for module %s", domain.ErrRemoteUnavailable, kind)
	}

	form := map[string]string{
		"action":    action,
		"module":    string(kind),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	for k, v := range payload {
		form[k] = v
	}

	reqID := uuid.NewString()
	var envelope Envelope
	resp, err := rc.R().
		SetContext(ctx).
		SetFormData(form).
		SetResult(&envelope).
		ForceContentType("application/json").
		Post(url)
	if err != nil {
		c.logger.Error("sheets request failed",
			zap.String("request_id", reqID),
			zap.String("module", string(kind)),
			zap.String("action", action),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %v", domain.ErrRemoteUnavailable, err)
	}
	if resp.StatusCode() != 200 {
		c.logger.Error("sheets request returned non-200",
			zap.String("request_id", reqID),
			zap.String("module", string(kind)),
			zap.String("action", action),
			zap.Int("status", resp.StatusCode()),
		)
		return nil, fmt.Errorf("%w: status %d", domain.ErrRemoteUnavailable, resp.StatusCode())
	}

	if !envelope.Success && envelope.LockActive {
		c.logger.Warn("sheets save lock active",
			zap.String("request_id", reqID),
			zap.String("module", string(kind)),
		)
		return &envelope, &domain.LockContentionError{Detail: envelope.Error}
	}

	c.logger.Debug("sheets request done",
		zap.String("request_id", reqID),
		zap.String("module", string(kind)),
		zap.String("action", action),
		zap.Bool("success", envelope.Success),
		zap.Int("count", envelope.Count),
	)
	return &envelope, nil
}
