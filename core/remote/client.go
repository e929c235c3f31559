package remote

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"postcard-sync/core/reconcile"

	backoff "github.com/cenkalti/backoff/v4"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// StatusError is returned for a non-2xx response.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Code, e.Body)
}

// Temporary reports whether retrying the request may succeed.
func (e *StatusError) Temporary() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= 500
}

// Client talks to the remote record API. It implements reconcile.Remote.
type Client struct {
	http       *resty.Client
	collection string
	cfg        Config
	logger     *zap.Logger
}

// NewClient creates a client for records published under collection (e.g. "cards").
func NewClient(cfg Config, collection string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 30
	}

	c := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/json").
		SetTimeout(time.Duration(timeout) * time.Second)
	if cfg.Token != "" {
		c.SetAuthToken(cfg.Token)
	}

	return &Client{http: c, collection: strings.Trim(collection, "/"), cfg: cfg, logger: logger}
}

// DocumentPath returns the API path of the record identified by uuid.
func (c *Client) DocumentPath(uuid string) string {
	return "/" + c.collection + "/" + url.PathEscape(uuid) + "/"
}

// FetchDocument retrieves the current remote representation of uuid.
func (c *Client) FetchDocument(ctx context.Context, uuid string) (reconcile.Document, error) {
	var doc reconcile.Document
	err := c.do(ctx, http.MethodGet, c.DocumentPath(uuid), nil, func(resp *resty.Response) error {
		parsed, err := reconcile.ParseDocument(resp.Body())
		if err != nil {
			return backoff.Permanent(err)
		}
		doc = parsed
		return nil
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// SubmitDocument publishes doc as the new remote state of uuid.
func (c *Client) SubmitDocument(ctx context.Context, uuid string, doc reconcile.Document) error {
	return c.do(ctx, http.MethodPut, c.DocumentPath(uuid), doc, nil)
}

// do sends one request, retrying transport failures and temporary statuses.
func (c *Client) do(ctx context.Context, method, path string, body any, onSuccess func(*resty.Response) error) error {
	attempt := 0
	op := func() error {
		attempt++
		req := c.http.R().SetContext(ctx)
		if body != nil {
			req.SetBody(body)
		}
		resp, err := req.Execute(method, path)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			return err
		}
		if resp.IsError() {
			statusErr := &StatusError{Method: method, Path: path, Code: resp.StatusCode(), Body: truncate(resp.String(), 256)}
			if !statusErr.Temporary() {
				return backoff.Permanent(statusErr)
			}
			return statusErr
		}
		if onSuccess != nil {
			return onSuccess(resp)
		}
		return nil
	}

	notify := func(err error, wait time.Duration) {
		c.logger.Debug("Retrying remote request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("attempt", attempt),
			zap.Duration("wait", wait),
			zap.Error(err),
		)
	}

	err := backoff.RetryNotify(op, c.policy(ctx), notify)
	if err != nil {
		var perm *backoff.PermanentError
		if errors.As(err, &perm) {
			return perm.Err
		}
		return err
	}
	return nil
}

func (c *Client) policy(ctx context.Context) backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	initial := time.Duration(c.cfg.BackoffMillis) * time.Millisecond
	if initial <= 0 {
		initial = 250 * time.Millisecond
	}
	exp.InitialInterval = initial
	exp.Multiplier = 2
	exp.MaxInterval = 8 * initial
	exp.MaxElapsedTime = 0
	exp.Reset()

	retries := c.cfg.MaxRetries
	if retries < 0 {
		retries = 0
	}
	return backoff.WithContext(backoff.WithMaxRetries(exp, uint64(retries)), ctx)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
