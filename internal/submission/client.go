package submission

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/alf-academy/enroll/internal/auth"
	"github.com/alf-academy/enroll/internal/enrollment"
	"github.com/alf-academy/enroll/internal/logger"
)

// studentPath is appended to the configured endpoint.
const studentPath = "/student"

// maxErrorBody bounds how much of an error response is read.
const maxErrorBody = 64 << 10

// Event types passed to a Recorder.
const (
	EventAttempt = "attempt"
	EventSuccess = "success"
	EventFailure = "failure"
)

// Event describes one step of a submission for the history log.
type Event struct {
	Type       string    `json:"type"`
	PayloadID  string    `json:"payload_id"`
	Name       string    `json:"name,omitempty"`
	Email      string    `json:"email,omitempty"`
	TrialStart string    `json:"trial_start,omitempty"`
	StatusCode int       `json:"status_code,omitempty"`
	Message    string    `json:"message,omitempty"`
	ReceiptID  string    `json:"receipt_id,omitempty"`
	At         time.Time `json:"at"`
}

// Recorder receives submission events. Recording failures are logged and
// never fail the submission.
type Recorder interface {
	Record(ctx context.Context, e Event) error
}

// Recorders fans an event out to every recorder in order and returns the
// first error after all have run.
type Recorders []Recorder

// Record implements Recorder.
func (rs Recorders) Record(ctx context.Context, e Event) error {
	var first error
	for _, r := range rs {
		if err := r.Record(ctx, e); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Receipt is the accepted response of the student API.
type Receipt struct {
	ID         string          `json:"id,omitempty"`
	Status     string          `json:"status,omitempty"`
	StatusCode int             `json:"statusCode"`
	PayloadID  string          `json:"payloadId"`
	Body       json.RawMessage `json:"body,omitempty"`
}

// Options configures a Client.
type Options struct {
	// Endpoint is the API base URL, e.g. http://localhost:5001.
	Endpoint   string
	HTTPClient *http.Client
	Tokens     auth.TokenSource
	Validator  *enrollment.Validator
	// Location and TimeZone place the chosen date and slot in time. A nil
	// Location is resolved from TimeZone.
	Location *time.Location
	TimeZone string
	Clock    func() time.Time
	NewID    func() string
	Recorder Recorder
}

// Client submits enrollment forms to the student API.
type Client struct {
	endpoint string
	http     *http.Client
	tokens   auth.TokenSource
	validate *enrollment.Validator
	loc      *time.Location
	zone     string
	clock    func() time.Time
	newID    func() string
	recorder Recorder
}

// NewClient creates a client. Endpoint, Tokens and Validator are required.
func NewClient(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.Endpoint) == "" {
		return nil, errors.New("endpoint is required")
	}
	if opts.Tokens == nil {
		return nil, errors.New("token source is required")
	}
	if opts.Validator == nil {
		return nil, errors.New("validator is required")
	}

	c := &Client{
		endpoint: strings.TrimRight(opts.Endpoint, "/"),
		http:     opts.HTTPClient,
		tokens:   opts.Tokens,
		validate: opts.Validator,
		loc:      opts.Location,
		zone:     opts.TimeZone,
		clock:    opts.Clock,
		newID:    opts.NewID,
		recorder: opts.Recorder,
	}
	if c.http == nil {
		c.http = http.DefaultClient
	}
	if c.loc == nil {
		c.loc, c.zone = enrollment.ResolveZone(opts.TimeZone)
	}
	if c.zone == "" {
		c.zone = c.loc.String()
	}
	if c.clock == nil {
		c.clock = time.Now
	}
	if c.newID == nil {
		c.newID = uuid.NewString
	}
	return c, nil
}

// URL returns the address forms are posted to.
func (c *Client) URL() string {
	return c.endpoint + studentPath
}

// Payload validates the form and builds its payload with a fresh id.
func (c *Client) Payload(f *enrollment.Form) (*Payload, error) {
	if res := c.validate.ValidateAll(f); !res.Valid {
		return nil, res.Err()
	}
	return BuildPayload(f, c.newID(), c.loc, c.zone)
}

// DryRun returns the indented JSON that Submit would send.
func (c *Client) DryRun(f *enrollment.Form) ([]byte, error) {
	p, err := c.Payload(f)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(p, "", "  ")
}

// Submit validates f and posts it once. There is no retry: a transport
// failure after the request was sent may still have created the student,
// and the payload id is the only duplicate hint the server gets.
func (c *Client) Submit(ctx context.Context, f *enrollment.Form) (*Receipt, error) {
	p, err := c.Payload(f)
	if err != nil {
		logger.Debug("Submission rejected locally: %v", err)
		return nil, err
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting auth token: %w", err)
	}

	body, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshaling payload: %w", err)
	}

	c.record(ctx, p, Event{Type: EventAttempt})
	logger.Info("Submitting enrollment %s to %s", p.ID, c.URL())

	receipt, err := c.post(ctx, body, token)
	if err != nil {
		e := Event{Type: EventFailure, Message: err.Error()}
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			e.StatusCode = apiErr.StatusCode
		}
		c.record(ctx, p, e)
		logger.Warn("Enrollment %s failed: %v", p.ID, err)
		return nil, err
	}

	receipt.PayloadID = p.ID
	c.record(ctx, p, Event{Type: EventSuccess, StatusCode: receipt.StatusCode, ReceiptID: receipt.ID})
	logger.Info("Enrollment %s accepted (status %d)", p.ID, receipt.StatusCode)
	return receipt, nil
}

// SubmitWizard submits the navigator's form. The navigator's in-flight slot
// is held for the duration; on success the form is reset and the wizard
// moves to StepSubmitted, on failure the input is kept.
func (c *Client) SubmitWizard(ctx context.Context, nav *enrollment.Navigator) (*Receipt, error) {
	snapshot, err := nav.BeginSubmit()
	if err != nil {
		return nil, err
	}
	receipt, err := c.Submit(ctx, snapshot)
	nav.EndSubmit(err)
	return receipt, err
}

func (c *Client) post(ctx context.Context, body []byte, token string) (*Receipt, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return nil, &TransportError{Err: fmt.Errorf("reading response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: errorMessage(resp.StatusCode, data)}
	}
	return parseReceipt(resp.StatusCode, data)
}

func (c *Client) record(ctx context.Context, p *Payload, e Event) {
	if c.recorder == nil {
		return
	}
	e.PayloadID = p.ID
	e.Name = p.FirstName + " " + p.LastName
	e.Email = p.Email
	e.TrialStart = p.StartDate
	e.At = c.clock().UTC()
	if err := c.recorder.Record(ctx, e); err != nil {
		logger.Warn("Failed to record %s event for %s: %v", e.Type, p.ID, err)
	}
}

// errorMessage extracts the server's "message" field.
func errorMessage(code int, body []byte) string {
	var resp struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &resp) == nil && strings.TrimSpace(resp.Message) != "" {
		return resp.Message
	}
	return fmt.Sprintf("Server returned %d", code)
}

// parseReceipt accepts a 2xx response only when its body is JSON. Anything
// else, such as a proxy login page, is reported as a failed submission.
func parseReceipt(code int, body []byte) (*Receipt, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || !json.Valid(trimmed) {
		return nil, &TransportError{Err: fmt.Errorf("%w (HTTP %d)", ErrNotJSON, code)}
	}
	r := &Receipt{StatusCode: code, Body: json.RawMessage(trimmed)}

	var fields struct {
		ID      string `json:"id"`
		MongoID string `json:"_id"`
		Status  string `json:"status"`
	}
	if json.Unmarshal(trimmed, &fields) == nil {
		r.ID = fields.ID
		if r.ID == "" {
			r.ID = fields.MongoID
		}
		r.Status = fields.Status
	}
	return r, nil
}
