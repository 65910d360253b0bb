// Package network fetches remote org-social documents over HTTP with
// retries, a shared rate limit and bounded concurrency.
package network

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/AdsanTheGreat/org-social-go/parser"
	"github.com/AdsanTheGreat/org-social-go/profile"
	"github.com/AdsanTheGreat/org-social-go/util"
)

// maxDocumentSize caps a fetched document at 4 MiB. Feeds are plain
// text; anything bigger is a misconfigured URL.
const maxDocumentSize = 4 << 20

// Config tunes the fetcher. Zero values fall back to the defaults used
// by util.ReadConf.
type Config struct {
	Timeout        time.Duration
	Retries        int
	MaxConcurrent  int
	RequestsPerSec int
}

// FetchError describes a failed fetch of one URL.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Result is the outcome of fetching one URL. Either Doc or Err is set;
// Warnings carries non-fatal profile parse problems.
type Result struct {
	URL      string
	Doc      *parser.Document
	Warnings []profile.ParseError
	Err      error
}

// Fetcher downloads and parses org-social documents.
type Fetcher struct {
	client  *http.Client
	limiter *rate.Limiter
	retries int
	workers int
	log     *logrus.Logger
}

// NewFetcher builds a fetcher from cfg. A nil log disables logging
// output but not fetching.
func NewFetcher(cfg Config, log *logrus.Logger) *Fetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Retries < 0 {
		cfg.Retries = 0
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 8
	}
	if cfg.RequestsPerSec <= 0 {
		cfg.RequestsPerSec = 10
	}
	if log == nil {
		log = logrus.New()
		log.SetOutput(io.Discard)
	}

	return &Fetcher{
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSec), cfg.RequestsPerSec),
		retries: cfg.Retries,
		workers: cfg.MaxConcurrent,
		log:     log,
	}
}

// Fetch downloads one document and parses it, stamping posts with the
// URL they came from. Transport errors and 5xx responses are retried,
// client errors are not.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*parser.Document, []profile.ParseError, error) {
	var lastErr error

	for attempt := 0; attempt <= f.retries; attempt++ {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, nil, err
		}
		if attempt > 0 {
			f.log.WithFields(logrus.Fields{"url": url, "attempt": attempt}).Debug("retrying fetch")
		}

		body, err := f.get(ctx, url)
		if err == nil {
			doc, warnings := parser.ParseWithSource(body, url)
			return doc, warnings, nil
		}

		lastErr = err
		var fe *FetchError
		if errors.As(err, &fe) && fe.StatusCode >= 400 && fe.StatusCode < 500 {
			break
		}
		if ctx.Err() != nil {
			break
		}
	}

	f.log.WithField("url", url).WithError(lastErr).Warn("fetch failed")
	return nil, nil, lastErr
}

func (f *Fetcher) get(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", &FetchError{URL: url, Err: err}
	}
	req.Header.Set("User-Agent", util.Name)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", &FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &FetchError{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
	if err != nil {
		return "", &FetchError{URL: url, Err: err}
	}
	return string(body), nil
}

// FetchAll downloads every URL concurrently, bounded by the configured
// worker count. Results come back in input order; individual failures
// fill the Err field instead of aborting the batch.
func (f *Fetcher) FetchAll(ctx context.Context, urls []string) []Result {
	results := make([]Result, len(urls))
	sem := make(chan struct{}, f.workers)
	var wg sync.WaitGroup

	for i, url := range urls {
		wg.Add(1)
		go func(i int, url string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			doc, warnings, err := f.Fetch(ctx, url)
			results[i] = Result{URL: url, Doc: doc, Warnings: warnings, Err: err}
		}(i, url)
	}
	wg.Wait()

	return results
}

// FetchFollows downloads the documents of everyone a profile follows.
func (f *Fetcher) FetchFollows(ctx context.Context, prof *profile.Profile) []Result {
	urls := make([]string, 0, len(prof.Follows()))
	for _, follow := range prof.Follows() {
		urls = append(urls, follow.URL)
	}
	return f.FetchAll(ctx, urls)
}
