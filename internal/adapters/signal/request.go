package signal

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/dkeye/VoiceClient/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const maxBodySize = 1 << 20

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Op     string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: unexpected status %d", e.Op, e.Status)
	}
	return fmt.Sprintf("%s: unexpected status %d: %s", e.Op, e.Status, e.Body)
}

// EndpointURL builds the resource URL for p. Options are only sent on join.
func EndpointURL(p domain.ConnectionParameters, withOptions bool) (string, error) {
	base, err := url.Parse(p.BaseURL)
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return "", fmt.Errorf("base url %q is not absolute", p.BaseURL)
	}
	u := base.JoinPath("conferenceGid", string(p.Room), "endpoint", string(p.Identity))
	if withOptions && len(p.Options) > 0 {
		q := u.Query()
		for k, v := range p.Options {
			q.Set(k, v)
		}
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

func (c *HTTPChannel) do(r request, p domain.ConnectionParameters) (string, error) {
	ctx, cancel := context.WithTimeout(c.ctx, c.conf.Timeout)
	defer cancel()

	req, err := c.newRequest(ctx, r, p)
	if err != nil {
		return "", fmt.Errorf("%s: %w", r.op, err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s: %w", r.op, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return "", fmt.Errorf("%s: read body: %w", r.op, err)
	}
	body := strings.TrimSpace(string(raw))
	log.Debug().
		Str("module", "signal").
		Str("op", r.op.String()).
		Str("request_id", req.Header.Get(RequestIDHeader)).
		Int("status", resp.StatusCode).
		Int("bytes", len(raw)).
		Msg("signaling response")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &StatusError{Op: r.op.String(), Status: resp.StatusCode, Body: truncate(body, 256)}
	}
	return string(raw), nil
}

const RequestIDHeader = "X-Request-ID"

func (c *HTTPChannel) newRequest(ctx context.Context, r request, p domain.ConnectionParameters) (*http.Request, error) {
	target, err := EndpointURL(p, r.op == opJoin)
	if err != nil {
		return nil, err
	}
	var body io.Reader
	if r.sdp != "" {
		body = strings.NewReader(r.sdp)
	}
	req, err := http.NewRequestWithContext(ctx, r.op.method(), target, body)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	}
	req.Header.Set(RequestIDHeader, uuid.NewString())
	if p.Secret != "" {
		token, err := SignToken(p)
		if err != nil {
			return nil, fmt.Errorf("sign token: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
