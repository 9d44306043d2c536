package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	contentTypeJSON = "application/json"
	headerRequestID = "X-Request-ID"
)

var emptyObject = json.RawMessage(`{}`)

// RequestOptions describes a single call. The zero value is an
// unauthenticated GET with the client's default timeout.
type RequestOptions struct {
	Method  string         // defaults to GET
	Token   string         // sent as a bearer token when non-empty
	Payload any            // JSON-encoded request body; nil sends no body
	Params  map[string]any // query parameters; nil values are dropped
	Timeout time.Duration  // defaults to the client's timeout
}

// Request performs one HTTP call and returns the response body as JSON. A
// successful response with no body yields {}. Failures are always *APIError,
// except for malformed input (bad path or unencodable payload), which is
// reported before anything is sent.
func (c *Client) Request(ctx context.Context, path string, opts RequestOptions) (json.RawMessage, error) {
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = c.timeout
	}

	target, err := c.buildURL(path, opts.Params)
	if err != nil {
		return nil, err
	}

	var body io.Reader
	if opts.Payload != nil {
		b, err := json.Marshal(opts.Payload)
		if err != nil {
			return nil, fmt.Errorf("[Client Request] encode payload for %s: %w", path, err)
		}
		body = bytes.NewReader(b)
	}

	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("[Client Request] build request for %s: %w", path, err)
	}

	requestID := c.requestID()
	req.Header.Set("Accept", contentTypeJSON)
	req.Header.Set(headerRequestID, requestID)
	if opts.Token != "" {
		req.Header.Set("Authorization", "Bearer "+opts.Token)
	}
	if body != nil {
		req.Header.Set("Content-Type", contentTypeJSON)
	}

	start := time.Now()
	resp, err := c.send(req)
	if err != nil {
		apiErr := classifyTransportError(ctx, reqCtx, err)
		c.finish(method, path, requestID, apiErr.Kind, 0, start)
		return nil, apiErr
	}
	raw := resp.body

	parsed, isJSON := parseBody(resp.contentType, raw)
	if resp.status < 200 || resp.status > 299 {
		apiErr := httpError(resp.status, parsed)
		c.finish(method, path, requestID, KindHTTP, resp.status, start)
		return nil, apiErr
	}
	c.finish(method, path, requestID, KindNone, resp.status, start)

	if parsed == nil {
		return emptyObject, nil
	}
	if isJSON {
		return json.RawMessage(bytes.TrimSpace(raw)), nil
	}
	b, err := json.Marshal(parsed)
	if err != nil {
		return nil, fmt.Errorf("[Client Request] re-encode body for %s: %w", path, err)
	}
	return b, nil
}

type response struct {
	status      int
	contentType string
	body        []byte
}

// send performs the round trip and reads the whole body while the request
// context is still live, so the deadline also covers slow bodies. A body that
// breaks off for any other reason reads as empty and the status is kept.
func (c *Client) send(req *http.Request) (*response, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	out := &response{
		status:      resp.StatusCode,
		contentType: resp.Header.Get("Content-Type"),
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		if req.Context().Err() != nil {
			return nil, err
		}
		log.Debug().Err(err).Int("status", resp.StatusCode).Str("path", req.URL.Path).Msg("discarding unreadable response body")
		return out, nil
	}
	out.body = raw
	return out, nil
}

func (c *Client) finish(method, path, requestID string, outcome Kind, status int, start time.Time) {
	elapsed := time.Since(start)
	c.observer.ObserveRequest(method, path, outcome, status, elapsed)
	log.Debug().
		Str("method", method).
		Str("path", path).
		Str("outcome", outcome.String()).
		Int("status", status).
		Dur("elapsed", elapsed).
		Str("request_id", requestID).
		Msg("api request")
}

func (c *Client) buildURL(path string, params map[string]any) (string, error) {
	if !strings.HasPrefix(path, "/") {
		return "", fmt.Errorf("[Client buildURL] path %q must start with /", path)
	}
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return "", fmt.Errorf("[Client buildURL] parse %q: %w", path, err)
	}
	if len(params) == 0 {
		return u.String(), nil
	}

	q := u.Query()
	for k, v := range params {
		s, ok := formatParam(v)
		if !ok {
			continue
		}
		q.Set(k, s)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// formatParam renders a query value; ok is false for nil values, which are dropped.
func formatParam(v any) (string, bool) {
	if v == nil {
		return "", false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return "", false
		}
		v = rv.Elem().Interface()
	}

	switch t := v.(type) {
	case string:
		return t, true
	case bool:
		return strconv.FormatBool(t), true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32), true
	case fmt.Stringer:
		return t.String(), true
	default:
		return fmt.Sprint(t), true
	}
}

// parseBody decodes JSON bodies and wraps any other non-empty body as
// {"error": text}. A JSON body that fails to decode counts as empty.
func parseBody(contentType string, raw []byte) (any, bool) {
	if strings.Contains(strings.ToLower(contentType), contentTypeJSON) {
		if len(bytes.TrimSpace(raw)) == 0 {
			return nil, true
		}
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, true
		}
		return v, true
	}
	if len(raw) == 0 {
		return nil, false
	}
	return map[string]any{"error": string(raw)}, false
}

func classifyTransportError(parent, reqCtx context.Context, err error) *APIError {
	switch {
	case errors.Is(parent.Err(), context.Canceled):
		return &APIError{Kind: KindCanceled, Message: MsgCanceled, Err: err}
	case errors.Is(reqCtx.Err(), context.DeadlineExceeded), isTimeout(err):
		return &APIError{Kind: KindTimeout, Message: MsgTimeout, Err: err}
	default:
		return &APIError{Kind: KindNetwork, Message: MsgNetwork, Err: err}
	}
}

func isTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
