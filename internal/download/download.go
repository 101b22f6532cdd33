// Package download acquires the raw BMF Scheinfirmen extract over HTTP.
package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"
)

// BMFURL is the published location of the Scheinfirmen CSV extract.
const BMFURL = "https://service.bmf.gv.at/service/allg/lsu/__Gen_Csv.asp"

const userAgent = "scheinfirmen-at/0.1 (https://github.com/arjoma/scheinfirmen-at)"

// Options controls the retry behavior of Fetch.
type Options struct {
	Retries uint          // additional attempts after the first (default 2)
	Delay   time.Duration // initial backoff, doubled per attempt (default 5s)
	Timeout time.Duration // per-request timeout (default 30s)
}

func (o Options) withDefaults() Options {
	if o.Retries == 0 {
		o.Retries = 2
	}
	if o.Delay == 0 {
		o.Delay = 5 * time.Second
	}
	if o.Timeout == 0 {
		o.Timeout = 30 * time.Second
	}
	return o
}

// Fetch downloads the raw extract bytes from url. Transport errors and
// non-2xx responses are retried with exponential backoff; the bytes are
// returned untouched (the BMF serves ISO-8859-1, decoding is the parser's
// job).
func Fetch(ctx context.Context, url string, opts Options) ([]byte, error) {
	opts = opts.withDefaults()

	client := &http.Client{Timeout: opts.Timeout}
	var body []byte

	backoff := retry.WithMaxRetries(uint64(opts.Retries), retry.NewExponential(opts.Delay))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err // malformed URL, retrying won't help
		}
		req.Header.Set("User-Agent", userAgent)

		resp, err := client.Do(req)
		if err != nil {
			return retry.RetryableError(err)
		}
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return retry.RetryableError(errors.New("unexpected status " + resp.Status))
		}

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", url, err)
	}

	return body, nil
}
