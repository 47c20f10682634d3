package marketplace

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Jeffail/gabs/v2"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const userAgent = "sflowg-marketplace/1.0"

// Request is one fully prepared call for Client.Send.
type Request struct {
	Operation   Operation
	BaseURL     string
	Spec        RequestSpec
	Credentials *Credentials
	Retry       RetryPolicy
	// Timeout bounds each attempt separately. Zero means no per-attempt limit.
	Timeout time.Duration
	Format  Format
	Headers []NameValue
}

// Call is the input of Client.Execute: an operation and its parameters plus
// the settings needed to send it.
type Call struct {
	Operation   Operation
	Params      Params
	Builder     Builder
	BaseURL     string
	Credentials *Credentials
	Retry       RetryPolicy
	Timeout     time.Duration
	Format      Format
	Headers     []NameValue
}

// Client sends marketplace requests. It holds only configuration and the
// underlying resty client, so one Client may serve concurrent calls.
type Client struct {
	http       *resty.Client
	httpClient *http.Client
	logger     *slog.Logger
	sleep      Sleeper
	limiter    *rate.Limiter
	debug      bool
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sends requests through hc instead of a default client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the logger used for retry and debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithSleeper replaces the backoff wait. Tests use it to record delays.
func WithSleeper(s Sleeper) Option {
	return func(c *Client) { c.sleep = s }
}

// WithRateLimit caps outgoing attempts per second. Zero disables the limit.
func WithRateLimit(perSecond float64) Option {
	return func(c *Client) {
		if perSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		}
	}
}

// WithDebug turns on resty request/response dumps through the logger.
func WithDebug(debug bool) Option {
	return func(c *Client) { c.debug = debug }
}

// NewClient builds a Client. Resty's own retry is left disabled; retries are
// driven by the RetryPolicy of each request.
func NewClient(opts ...Option) *Client {
	c := &Client{
		logger: slog.Default(),
		sleep:  sleepContext,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient != nil {
		c.http = resty.NewWithClient(c.httpClient)
	} else {
		c.http = resty.New()
	}
	c.http.
		SetHeader("User-Agent", userAgent).
		SetLogger(restyLogger{c.logger}).
		SetDebug(c.debug)

	return c
}

// Execute builds the request for call, sends it and post-processes the
// payload.
func (c *Client) Execute(ctx context.Context, call Call) (any, error) {
	spec, err := call.Builder.Build(call.Operation, call.Params)
	if err != nil {
		return nil, err
	}

	payload, err := c.Send(ctx, Request{
		Operation:   call.Operation,
		BaseURL:     call.BaseURL,
		Spec:        spec,
		Credentials: call.Credentials,
		Retry:       call.Retry,
		Timeout:     call.Timeout,
		Format:      call.Format,
		Headers:     call.Headers,
	})
	if err != nil {
		return nil, err
	}

	return PostProcess(call.Operation, call.Params, call.Format, payload)
}

// Send performs req, retrying 5xx responses according to req.Retry. An
// operation that needs authentication fails before any network call when no
// ID token is configured.
func (c *Client) Send(ctx context.Context, req Request) (payload any, err error) {
	spec := req.Spec
	if spec.RequiresAuth && !req.Credentials.HasToken() {
		return nil, &AuthenticationRequiredError{Operation: req.Operation}
	}

	target := strings.TrimRight(req.BaseURL, "/") + spec.Endpoint()

	ctx, span := startSendSpan(ctx, spec.Method, spec.Path)
	attempts := 0
	defer func() { endSendSpan(span, attempts, err) }()

	for retries := 0; ; retries++ {
		attempts++

		start := time.Now()
		resp, err := c.attempt(ctx, req, target)
		if err != nil {
			return nil, c.transportFailure(ctx, req, attempts, err)
		}
		recordAttempt(ctx, spec.Method, resp.StatusCode(), time.Since(start))

		status := resp.StatusCode()
		if status >= 200 && status < 300 {
			return decodeBody(resp.Body(), req.Format), nil
		}

		terr := statusError(spec, status, resp.Body())
		terr.Attempts = attempts
		if !req.Retry.shouldRetry(status, retries) {
			return nil, terr
		}

		delay := req.Retry.Delay(retries + 1)
		c.logger.WarnContext(ctx, "Marketplace request failed, retrying",
			"method", spec.Method,
			"path", spec.Path,
			"status", status,
			"retry", retries+1,
			"max_retries", req.Retry.MaxRetries,
			"delay", delay)
		recordRetry(ctx, spec.Method, status)

		if err := c.sleep(ctx, delay); err != nil {
			return nil, &TransportError{
				Method:     spec.Method,
				Path:       spec.Path,
				HTTPStatus: status,
				Message:    "retry wait interrupted: " + err.Error(),
				RawBody:    terr.RawBody,
				Attempts:   attempts,
				Err:        err,
			}
		}
	}
}

func (c *Client) attempt(ctx context.Context, req Request, target string) (*resty.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	attemptCtx := ctx
	cancel := func() {}
	if req.Timeout > 0 {
		attemptCtx, cancel = context.WithTimeout(ctx, req.Timeout)
	}
	defer cancel()

	r := c.http.R().
		SetContext(attemptCtx).
		SetHeader("X-Request-Id", uuid.NewString())

	for _, h := range req.Headers {
		if h.Name == "" || h.Value == "" {
			continue
		}
		r.SetHeader(h.Name, h.Value)
	}
	r.SetHeader("Content-Type", "application/json")
	if req.Spec.RequiresAuth {
		r.SetHeader("Authorization", req.Credentials.AuthorizationHeader())
	}

	if req.Spec.Body != nil && methodHasBody(req.Spec.Method) {
		if req.Format == FormatRaw {
			raw, err := json.Marshal(req.Spec.Body)
			if err != nil {
				return nil, fmt.Errorf("failed to encode request body: %w", err)
			}
			r.SetBody(string(raw))
		} else {
			r.SetBody(req.Spec.Body)
		}
	}

	c.logger.DebugContext(ctx, "Marketplace request",
		"method", req.Spec.Method,
		"url", target,
		"auth", req.Spec.RequiresAuth)

	return r.Execute(req.Spec.Method, target)
}

func (c *Client) transportFailure(ctx context.Context, req Request, attempts int, err error) *TransportError {
	terr := &TransportError{
		Method:   req.Spec.Method,
		Path:     req.Spec.Path,
		Message:  err.Error(),
		Attempts: attempts,
		Err:      err,
	}
	if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
		terr.Timeout = true
		terr.Message = fmt.Sprintf("request timed out after %s", req.Timeout)
	}
	c.logger.ErrorContext(ctx, "Marketplace request failed",
		"method", req.Spec.Method,
		"path", req.Spec.Path,
		"attempts", attempts,
		"error", err)
	return terr
}

// statusError turns a non-2xx response into a TransportError, taking the
// message from the JSON body when the API provides one.
func statusError(spec RequestSpec, status int, body []byte) *TransportError {
	terr := &TransportError{
		Method:     spec.Method,
		Path:       spec.Path,
		HTTPStatus: status,
	}

	text := strings.TrimSpace(string(body))
	if parsed, err := gabs.ParseJSON(body); err == nil {
		terr.RawBody = parsed.Data()
		for _, key := range []string{"message", "error"} {
			if msg, ok := parsed.Path(key).Data().(string); ok && msg != "" {
				terr.Message = msg
				break
			}
		}
	} else if text != "" {
		terr.RawBody = text
	}

	if terr.Message == "" {
		terr.Message = text
	}
	if terr.Message == "" {
		terr.Message = http.StatusText(status)
	}
	return terr
}

// decodeBody turns a 2xx body into the payload for the requested format.
func decodeBody(body []byte, format Format) any {
	if format == FormatRaw {
		return map[string]any{"data": string(body)}
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return map[string]any{}
	}
	parsed, err := gabs.ParseJSON(body)
	if err != nil {
		return string(body)
	}
	return parsed.Data()
}

// restyLogger routes resty's debug output to slog.
type restyLogger struct {
	logger *slog.Logger
}

func (l restyLogger) Errorf(format string, v ...any) {
	l.logger.Error(fmt.Sprintf(format, v...), "component", "resty")
}

func (l restyLogger) Warnf(format string, v ...any) {
	l.logger.Warn(fmt.Sprintf(format, v...), "component", "resty")
}

func (l restyLogger) Debugf(format string, v ...any) {
	l.logger.Debug(fmt.Sprintf(format, v...), "component", "resty")
}
