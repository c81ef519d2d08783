package routing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"
)

// Upper bound on a response body; full-overview geometries stay well below.
const maxResponseBytes = 16 << 20

type httpStatusError struct {
	Code int
	Body string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("Code %d: %s", e.Code, e.Body)
}

// transient reports whether the failure is worth retrying and should count
// against engine health.
func transient(err error) bool {
	var he *httpStatusError
	if errors.As(err, &he) {
		switch he.Code {
		case 429, 500, 502, 503, 504:
			return true
		}
		return false
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}

func (o *OSRMEngine) newRequest(
	ctx context.Context,
	method string,
	url string,
	body io.Reader,
) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return req, nil
}

// do executes req. OSRM reports semantic failures such as NoRoute with a 400
// and a JSON body, so 4xx bodies are returned alongside the status error.
func (o *OSRMEngine) do(req *http.Request) ([]byte, error) {
	resp, err := o.session.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return b, &httpStatusError{
			Code: resp.StatusCode,
			Body: strings.TrimSpace(string(b)),
		}
	}
	return b, nil
}

// doWithRetry retries transient failures (network errors, 429 and 5xx
// responses) using exponential backoff while respecting context cancellation.
func (o *OSRMEngine) doWithRetry(
	ctx context.Context,
	makeReq func() (*http.Request, error),
) ([]byte, error) {
	backoff := o.backoff

	var lastErr error

	for attempt := 1; attempt <= o.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		req, err := makeReq()
		if err != nil {
			return nil, fmt.Errorf("make request: %w", err)
		}

		body, err := o.do(req)
		if err == nil {
			return body, nil
		}
		lastErr = err

		if !transient(err) || attempt == o.maxAttempts {
			return body, lastErr
		}

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}

		backoff *= 2
	}

	return nil, lastErr
}

// fetchResult carries non-transient failures through the breaker so that a
// bad request does not count against engine health.
type fetchResult struct {
	body []byte
	err  error
}

// getJSON issues a GET through the circuit breaker and decodes the body
// into out. A 4xx body with an OSRM status code is still decoded so the
// caller can report the engine's own reason.
func (o *OSRMEngine) getJSON(ctx context.Context, kind, url string, out any) error {
	start := time.Now()

	res, err := o.breaker.Execute(func() (interface{}, error) {
		body, err := o.doWithRetry(ctx, func() (*http.Request, error) {
			return o.newRequest(ctx, http.MethodGet, url, nil)
		})
		if err != nil && (transient(err) || ctx.Err() != nil || body == nil) {
			return nil, err
		}
		return fetchResult{body: body, err: err}, nil
	})
	o.metrics.ObserveEngine(kind, time.Since(start), err)

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("service unavailable: circuit breaker open for %s: %w", kind, err)
	}
	if err != nil {
		return err
	}

	fr := res.(fetchResult)
	if decodeErr := json.Unmarshal(fr.body, out); decodeErr != nil {
		if fr.err != nil {
			return fr.err
		}
		return fmt.Errorf("decode %s response: %w", kind, decodeErr)
	}

	// A decoded 4xx is surfaced through the status code check unless the
	// body carried no failure code of its own.
	if fr.err != nil {
		if code := statusCode(out); code == "" || code == "Ok" {
			return fr.err
		}
	}
	return nil
}

func statusCode(v any) string {
	switch r := v.(type) {
	case *routeResponse:
		return r.Code
	case *tripResponse:
		return r.Code
	case *tableResponse:
		return r.Code
	}
	return ""
}
