// Copyright (C) 2016-2025, KBase. All rights reserved.
// See the file LICENSE for licensing terms.

package taxonapi

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	rpc "github.com/gorilla/rpc/v2/json2"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/kbase/taxon-api/internal/logging"
)

// protocolVersion is the JSON-RPC dialect spoken by KBase services.
const protocolVersion = "1.1"

const retryBaseWait = 500 * time.Millisecond

// rpcRequest is the request envelope. Params is always a list, even for a
// single argument.
type rpcRequest struct {
	Version string        `json:"version"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
	ID      string        `json:"id"`
	Context *rpcContext   `json:"context,omitempty"`
}

type rpcContext struct {
	ServiceVersion string `json:"service_ver,omitempty"`
}

// HTTPCaller sends JSON-RPC calls as HTTP POST requests. It is the default
// Caller and is safe for concurrent use.
type HTTPCaller struct {
	url           *url.URL
	token         string
	client        *http.Client
	codec         Codec
	allowInsecure bool
	streaming     bool
	maxRetries    int
	request       *Options
	log           *logging.Logger
}

// CallerOption configures an HTTPCaller
type CallerOption func(*callerOptions)

type callerOptions struct {
	token         string
	readTimeout   time.Duration
	allowInsecure bool
	trustAll      bool
	streaming     bool
	maxRetries    int
	codec         Codec
	request       []Option
	httpClient    *http.Client
	logger        *zap.Logger
}

// WithToken attaches token to every call that requires authentication
func WithToken(token string) CallerOption {
	return func(o *callerOptions) { o.token = token }
}

// WithReadTimeout bounds each round trip; zero means no timeout
func WithReadTimeout(d time.Duration) CallerOption {
	return func(o *callerOptions) { o.readTimeout = d }
}

// WithInsecureHTTP allows credentials to be sent over plain http
func WithInsecureHTTP(allowed bool) CallerOption {
	return func(o *callerOptions) { o.allowInsecure = allowed }
}

// WithTrustAllCertificates disables TLS certificate verification
func WithTrustAllCertificates(trustAll bool) CallerOption {
	return func(o *callerOptions) { o.trustAll = trustAll }
}

// WithStreamingMode streams request bodies instead of buffering them
func WithStreamingMode(on bool) CallerOption {
	return func(o *callerOptions) { o.streaming = on }
}

// WithMaxRetries retries transient network failures up to n times
func WithMaxRetries(n int) CallerOption {
	return func(o *callerOptions) { o.maxRetries = n }
}

// WithCodec sets a custom codec for the request envelope
func WithCodec(c Codec) CallerOption {
	return func(o *callerOptions) { o.codec = c }
}

// WithRequestOptions adds headers or query parameters to every request
func WithRequestOptions(ops ...Option) CallerOption {
	return func(o *callerOptions) { o.request = append(o.request, ops...) }
}

// WithHTTPClient replaces the HTTP client; timeout and TLS options are then ignored
func WithHTTPClient(c *http.Client) CallerOption {
	return func(o *callerOptions) { o.httpClient = c }
}

// WithCallerLogger sets the transport logger
func WithCallerLogger(l *zap.Logger) CallerOption {
	return func(o *callerOptions) { o.logger = l }
}

// NewHTTPCaller returns a caller for the service at endpoint.
func NewHTTPCaller(endpoint string, opts ...CallerOption) (*HTTPCaller, error) {
	uri, err := url.Parse(endpoint)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid service url %q", endpoint)
	}
	if uri.Scheme != "http" && uri.Scheme != "https" {
		return nil, fmt.Errorf("unsupported url scheme %q: use http or https", uri.Scheme)
	}

	o := &callerOptions{codec: defaultCodec}
	for _, opt := range opts {
		opt(o)
	}
	if o.maxRetries < 0 {
		return nil, fmt.Errorf("max retries must not be negative, got %d", o.maxRetries)
	}

	client := o.httpClient
	if client == nil {
		client = newHTTPClient(o.readTimeout, o.trustAll)
	}
	log := logging.NewNop()
	if o.logger != nil {
		log = logging.Wrap(o.logger)
	}

	request := NewOptions(o.request)
	if len(request.QueryParams()) > 0 {
		q := uri.Query()
		for k, vs := range request.QueryParams() {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		uri.RawQuery = q.Encode()
	}

	return &HTTPCaller{
		url:           uri,
		token:         o.token,
		client:        client,
		codec:         o.codec,
		allowInsecure: o.allowInsecure,
		streaming:     o.streaming,
		maxRetries:    o.maxRetries,
		request:       request,
		log:           log.Named("http"),
	}, nil
}

func newHTTPClient(timeout time.Duration, trustAll bool) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if trustAll {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}

// URL returns the service endpoint.
func (c *HTTPCaller) URL() *url.URL {
	u := *c.url
	return &u
}

// Token returns the token attached to authenticated calls.
func (c *HTTPCaller) Token() string {
	return c.token
}

func (c *HTTPCaller) Close() error {
	c.client.CloseIdleConnections()
	return nil
}

// CleanlyCloseBody drains and closes an HTTP response body to prevent
// HTTP/2 GOAWAY errors caused by closing bodies with unread data.
// See: https://github.com/golang/go/issues/46071
func CleanlyCloseBody(body io.ReadCloser) error {
	if body == nil {
		return nil
	}
	_, _ = io.Copy(io.Discard, body)
	return body.Close()
}

// isRetryableError checks if an error is transient and worth retrying
func isRetryableError(err error) bool {
	var te *TransportError
	if !errors.As(err, &te) {
		return false
	}
	errStr := err.Error()
	if errors.Is(err, io.EOF) || strings.Contains(errStr, "EOF") {
		return true
	}
	return strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "broken pipe")
}

func (c *HTTPCaller) Call(ctx context.Context, method string, params []interface{}, opts CallOptions) ([]json.RawMessage, error) {
	if opts.AuthRequired {
		if err := checkCredentials(method, c.token, c.url.Scheme == "https", c.allowInsecure); err != nil {
			return nil, err
		}
	}
	if params == nil {
		params = []interface{}{}
	}

	env := &rpcRequest{
		Version: protocolVersion,
		Method:  method,
		Params:  params,
		ID:      uuid.NewString(),
	}
	if opts.ServiceVersion != "" {
		env.Context = &rpcContext{ServiceVersion: opts.ServiceVersion}
	}

	var buffered []byte
	if !c.streaming {
		var err error
		if buffered, err = c.codec.Encode(env); err != nil {
			return nil, &ProtocolError{Method: method, Reason: "failed to encode request", Err: err}
		}
	}

	c.log.Debug("sending JSON-RPC request",
		zap.String("method", method),
		zap.String("uri", c.url.String()),
		zap.Bool("authenticated", opts.AuthRequired))

	var results []json.RawMessage
	operation := func() error {
		res, err := c.roundTrip(ctx, env, buffered, opts.AuthRequired)
		if err != nil {
			if isRetryableError(err) {
				return err
			}
			return backoff.Permanent(err)
		}
		results = res
		return nil
	}
	notify := func(err error, wait time.Duration) {
		c.log.Warn("request attempt failed, retrying",
			zap.String("method", method),
			zap.Duration("wait", wait),
			zap.Error(err))
	}

	if err := backoff.RetryNotify(operation, c.backOff(ctx), notify); err != nil {
		return nil, asCallError(method, err)
	}
	return results, nil
}

// checkCredentials fails an authenticated call locally when there is no
// token, or when the token would travel in clear text without opt-in.
func checkCredentials(method, token string, secure, allowInsecure bool) error {
	if token == "" {
		return &AuthError{
			Method:  method,
			Message: "method requires authentication but no credentials were provided",
		}
	}
	if !secure && !allowInsecure {
		return &AuthError{
			Method:  method,
			Message: "refusing to send credentials over insecure http; use https or allow insecure http",
		}
	}
	return nil
}

func (c *HTTPCaller) backOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = retryBaseWait
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(c.maxRetries)), ctx)
}

// asCallError keeps typed errors and classifies anything else, such as a
// context error surfaced by the retry loop, as a transport failure.
func asCallError(method string, err error) error {
	var (
		te *TransportError
		ae *AuthError
		pe *ProtocolError
		sv *SchemaViolation
	)
	switch {
	case errors.As(err, &te), errors.As(err, &ae), errors.As(err, &pe), errors.As(err, &sv):
		return err
	default:
		return &TransportError{Method: method, Err: err}
	}
}

func (c *HTTPCaller) roundTrip(ctx context.Context, env *rpcRequest, buffered []byte, auth bool) ([]json.RawMessage, error) {
	method := env.Method
	body, abort := c.requestBody(env, buffered)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url.String(), body)
	if err != nil {
		abort()
		return nil, &TransportError{Method: method, Err: errors.Wrap(err, "failed to create request")}
	}
	req.Header = c.request.Headers().Clone()
	req.Header.Set("Content-Type", "application/json")
	if auth {
		req.Header.Set("Authorization", c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &TransportError{Method: method, Err: errors.Wrap(err, "failed to issue request")}
	}
	defer CleanlyCloseBody(resp.Body)

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Method: method, Err: errors.Wrap(err, "failed to read response")}
	}
	return decodeResponse(method, resp.StatusCode, data)
}

// requestBody returns the body to send and a func that releases the
// streaming encoder when the body is never handed to the transport.
func (c *HTTPCaller) requestBody(env *rpcRequest, buffered []byte) (io.Reader, func()) {
	if !c.streaming {
		return bytes.NewReader(buffered), func() {}
	}
	pr, pw := io.Pipe()
	go func() {
		var err error
		if sc, ok := c.codec.(StreamCodec); ok {
			err = sc.EncodeTo(pw, env)
		} else {
			var data []byte
			if data, err = c.codec.Encode(env); err == nil {
				_, err = pw.Write(data)
			}
		}
		pw.CloseWithError(err)
	}()
	return pr, func() { _ = pr.CloseWithError(errRequestAborted) }
}

var errRequestAborted = errors.New("request aborted before sending")

// decodeResponse maps an HTTP reply onto a result array or a typed error.
func decodeResponse(method string, status int, data []byte) ([]json.RawMessage, error) {
	unauthorized := status == http.StatusUnauthorized || status == http.StatusForbidden

	var results []json.RawMessage
	err := rpc.DecodeClientResponse(bytes.NewReader(data), &results)
	if err == nil {
		if unauthorized {
			return nil, &AuthError{Method: method, Message: http.StatusText(status)}
		}
		return results, nil
	}

	var rpcErr *rpc.Error
	if errors.As(err, &rpcErr) {
		return nil, classifyServerError(method, unauthorized, rpcErr)
	}
	if unauthorized {
		return nil, &AuthError{Method: method, Message: http.StatusText(status)}
	}
	if status < 200 || status > 299 {
		return nil, &TransportError{Method: method, Err: fmt.Errorf("received status code: %d", status)}
	}
	if errors.Is(err, rpc.ErrNullResult) {
		return nil, &ProtocolError{Method: method, Reason: "response carries neither result nor error"}
	}
	return nil, &ProtocolError{Method: method, Reason: "malformed response", Err: err}
}

var authFailureMarkers = []string{
	"authentication required",
	"token validation failed",
	"invalid token",
	"unauthorized",
}

func classifyServerError(method string, unauthorized bool, e *rpc.Error) error {
	detail := strings.ToLower(e.Message)
	if e.Data != nil {
		detail += " " + strings.ToLower(fmt.Sprint(e.Data))
	}
	if !unauthorized {
		for _, marker := range authFailureMarkers {
			if strings.Contains(detail, marker) {
				unauthorized = true
				break
			}
		}
	}
	if unauthorized {
		msg := e.Message
		if e.Data != nil {
			msg = fmt.Sprintf("%s: %v", e.Message, e.Data)
		}
		return &AuthError{Method: method, Message: msg, Err: e}
	}
	return &ProtocolError{
		Method: method,
		Reason: "server returned an error",
		Code:   int(e.Code),
		Data:   e.Data,
		Err:    e,
	}
}
