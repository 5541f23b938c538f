// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package stages

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/flightdesk/flightdeploy/pkg/defaults"
	"github.com/flightdesk/flightdeploy/pkg/errors"
)

const (
	healthPath = "/health"
	addPath    = "/flights/add"
	resetPath  = "/flights/reset"
	countPath  = "/flights/count"
	searchPath = "/flights/search"

	searchResults = 3
)

// DefaultSearchQueries are run against the database after loading to confirm
// the records are searchable.
var DefaultSearchQueries = []string{
	"flights from New York to Los Angeles",
	"cheap flights to Paris",
	"American Airlines flights",
	"flights under $300",
	"international flights",
}

// SearchCheck is the outcome of one sample search.
type SearchCheck struct {
	Query   string `json:"query" yaml:"query"`
	Results int    `json:"results" yaml:"results"`
	Error   string `json:"error,omitempty" yaml:"error,omitempty"`
}

// SeedSummary counts the outcome of one seeding run.
type SeedSummary struct {
	Attempted int `json:"attempted" yaml:"attempted"`
	Succeeded int `json:"succeeded" yaml:"succeeded"`
	Failed    int `json:"failed" yaml:"failed"`
	// Stored is the record count reported by the database afterwards,
	// or -1 when it could not be read.
	Stored int `json:"stored" yaml:"stored"`
	// Searches holds the sample searches run after loading.
	Searches []SearchCheck `json:"searches,omitempty" yaml:"searches,omitempty"`
}

// FailedSearches returns how many sample searches failed.
func (s *SeedSummary) FailedSearches() int {
	n := 0
	for _, c := range s.Searches {
		if c.Error != "" {
			n++
		}
	}
	return n
}

// Loader posts flight records to the vector database one at a time.
type Loader struct {
	client        *http.Client
	limit         int
	limiter       *rate.Limiter
	reset         bool
	queries       []string
	progressEvery int
	recordTimeout time.Duration
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithLimit caps the number of records loaded. Zero means no cap.
func WithLimit(n int) LoaderOption {
	return func(l *Loader) {
		if n >= 0 {
			l.limit = n
		}
	}
}

// WithRate paces record posts to perSecond. Zero disables pacing.
func WithRate(perSecond float64) LoaderOption {
	return func(l *Loader) {
		if perSecond > 0 {
			l.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		} else {
			l.limiter = nil
		}
	}
}

// WithReset clears existing records before loading.
func WithReset(reset bool) LoaderOption {
	return func(l *Loader) { l.reset = reset }
}

// WithSearchQueries replaces the sample searches run after loading. No
// queries disables the check.
func WithSearchQueries(queries ...string) LoaderOption {
	return func(l *Loader) { l.queries = queries }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(c *http.Client) LoaderOption {
	return func(l *Loader) {
		if c != nil {
			l.client = c
		}
	}
}

// NewLoader creates a Loader with the default record limit.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		client:        NewHTTPClient(),
		limit:         defaults.SeedRecordLimit,
		queries:       DefaultSearchQueries,
		progressEvery: defaults.SeedProgressEvery,
		recordTimeout: defaults.SeedRecordTimeout,
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Limit returns the configured record cap.
func (l *Loader) Limit() int {
	return l.limit
}

// ParseRecords returns the first limit elements of a JSON array without
// decoding the rest. A limit of zero returns every element.
func ParseRecords(r io.Reader, limit int) ([]json.RawMessage, error) {
	dec := json.NewDecoder(r)
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '[' {
		return nil, fmt.Errorf("dataset must be a JSON array")
	}

	var records []json.RawMessage
	for dec.More() {
		if limit > 0 && len(records) >= limit {
			break
		}
		var rec json.RawMessage
		if err := dec.Decode(&rec); err != nil {
			return nil, fmt.Errorf("failed to decode record %d: %w", len(records), err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// Health checks that the database at baseURL answers GET /health.
func (l *Loader) Health(ctx context.Context, baseURL string) error {
	return l.do(ctx, http.MethodGet, strings.TrimSuffix(baseURL, "/")+healthPath, nil, nil)
}

// Load posts each record to baseURL. Individual failures are counted and
// skipped; only context cancellation stops the run early.
func (l *Loader) Load(ctx context.Context, baseURL string, records []json.RawMessage) (*SeedSummary, error) {
	baseURL = strings.TrimSuffix(baseURL, "/")
	if l.limit > 0 && len(records) > l.limit {
		records = records[:l.limit]
	}

	if l.reset {
		if err := l.do(ctx, http.MethodDelete, baseURL+resetPath, nil, nil); err != nil {
			slog.Warn("failed to reset flight records", "error", err)
		} else {
			slog.Info("existing flight records cleared")
		}
	}

	summary := &SeedSummary{Stored: -1}
	for i, rec := range records {
		if l.limiter != nil {
			if err := l.limiter.Wait(ctx); err != nil {
				return summary, err
			}
		}
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		summary.Attempted++
		if err := l.do(ctx, http.MethodPost, baseURL+addPath, rec, nil); err != nil {
			summary.Failed++
			slog.Warn("failed to add flight record", "index", i, "error", err)
		} else {
			summary.Succeeded++
		}

		if l.progressEvery > 0 && (i+1)%l.progressEvery == 0 {
			slog.Info("seeding progress", "processed", i+1, "total", len(records), "failed", summary.Failed)
		}
	}

	var count struct {
		Count int `json:"count"`
	}
	if err := l.do(ctx, http.MethodGet, baseURL+countPath, nil, &count); err != nil {
		slog.Warn("failed to read flight record count", "error", err)
	} else {
		summary.Stored = count.Count
	}
	summary.Searches = l.search(ctx, baseURL)

	slog.Info("seeding finished", "attempted", summary.Attempted, "succeeded", summary.Succeeded,
		"failed", summary.Failed, "stored", summary.Stored, "failedSearches", summary.FailedSearches())
	return summary, nil
}

// search runs the sample queries and counts the results of each. Failures
// are recorded, not returned.
func (l *Loader) search(ctx context.Context, baseURL string) []SearchCheck {
	checks := make([]SearchCheck, 0, len(l.queries))
	for _, q := range l.queries {
		if ctx.Err() != nil {
			break
		}
		check := SearchCheck{Query: q}
		body, err := json.Marshal(map[string]any{"query": q, "n_results": searchResults})
		if err == nil {
			var results []json.RawMessage
			if err = l.do(ctx, http.MethodPost, baseURL+searchPath, body, &results); err == nil {
				check.Results = len(results)
			}
		}
		if err != nil {
			check.Error = err.Error()
			slog.Warn("sample search failed", "query", q, "error", err)
		} else {
			slog.Debug("sample search", "query", q, "results", check.Results)
		}
		checks = append(checks, check)
	}
	return checks
}

func (l *Loader) do(ctx context.Context, method, url string, body []byte, out any) error {
	ctx, cancel := context.WithTimeout(ctx, l.recordTimeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidRequest, "failed to build request", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("%s %s: HTTP %d", method, url, resp.StatusCode)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", url, err)
	}
	return nil
}
