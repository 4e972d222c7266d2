package contact

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

const defaultTimeout = 8 * time.Second

// Message is a visitor submission from the contact form.
type Message struct {
	Name    string
	Email   string
	Subject string
	Body    string
}

// Receipt is returned after a successful relay.
type Receipt struct {
	Reference string
}

// ErrMissingEndpoint is returned when the submitter has no relay endpoint configured.
var ErrMissingEndpoint = errors.New("contact: missing endpoint")

// ErrUnreachable indicates the relay endpoint could not be contacted at all.
var ErrUnreachable = errors.New("contact: endpoint unreachable")

// ErrRejected indicates the relay endpoint answered with a non-success status.
var ErrRejected = errors.New("contact: submission rejected")

// Submitter relays contact form submissions to an external form endpoint.
type Submitter struct {
	endpoint string
	http     *http.Client
}

// NewSubmitter constructs a Submitter for the given endpoint URL.
func NewSubmitter(endpoint string) *Submitter {
	return &Submitter{
		endpoint: strings.TrimSpace(endpoint),
		http: &http.Client{
			Timeout: defaultTimeout,
		},
	}
}

// Submit relays the message as a form-encoded POST. The endpoint is expected
// to answer JSON, so the request advertises that. Any 2xx status counts as
// accepted; everything else is a rejection. Submissions are fire-and-forget,
// there is no retry.
func (s *Submitter) Submit(ctx context.Context, msg Message) (Receipt, error) {
	if s == nil || s.endpoint == "" {
		return Receipt{}, ErrMissingEndpoint
	}

	form := url.Values{}
	form.Set("name", strings.TrimSpace(msg.Name))
	form.Set("email", strings.TrimSpace(msg.Email))
	if subject := strings.TrimSpace(msg.Subject); subject != "" {
		form.Set("subject", subject)
	}
	form.Set("message", strings.TrimSpace(msg.Body))

	reference := uuid.NewString()
	form.Set("reference", reference)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return Receipt{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return Receipt{}, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Receipt{}, fmt.Errorf("%w: status %d: %s", ErrRejected, resp.StatusCode, drainBody(resp.Body))
	}
	return Receipt{Reference: reference}, nil
}

func drainBody(r io.Reader) string {
	if r == nil {
		return ""
	}
	b, _ := io.ReadAll(io.LimitReader(r, 256))
	return strings.TrimSpace(string(b))
}
