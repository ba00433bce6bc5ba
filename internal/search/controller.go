// Package search owns the query-to-results pipeline: debounced input, the
// remote catalog call, last-query-wins response ordering, and the paginated
// result set.
package search

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/nadeeshan/labelpress/internal/catalog"
	"github.com/nadeeshan/labelpress/internal/metrics"
	"github.com/nadeeshan/labelpress/internal/models"
)

// DefaultDebounce is how long the query must sit unchanged before a remote
// search fires. Trailing-edge: every keystroke restarts the timer.
const DefaultDebounce = 500 * time.Millisecond

// State is the controller's position in its lifecycle.
type State int

const (
	StateIdle State = iota
	StateDebouncing
	StateSearching
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDebouncing:
		return "debouncing"
	case StateSearching:
		return "searching"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Searcher is the slice of the backend the controller needs.
type Searcher interface {
	SearchProducts(ctx context.Context, term, token string) ([]models.RawProductRecord, error)
}

// TokenSource supplies the current credential. No token means the query is
// stored but never triggers a remote call.
type TokenSource interface {
	Token() (string, bool)
}

// Controller owns the search state. All transitions happen under one lock;
// the remote call itself runs outside it and its result is re-validated
// against a sequence number before being applied, so a response from a
// superseded query can never overwrite newer results.
type Controller struct {
	searcher Searcher
	tokens   TokenSource
	metrics  *metrics.Registry
	log      *slog.Logger

	mu        sync.Mutex
	query     string
	results   []models.NormalizedProduct
	page      int
	state     State
	err       error
	seq       uint64
	timer     *time.Timer
	timerGen  uint64
	debounce  time.Duration
	listeners []func()
}

// NewController creates a search controller with the default debounce.
func NewController(searcher Searcher, tokens TokenSource, reg *metrics.Registry, log *slog.Logger) *Controller {
	if log == nil {
		log = slog.Default()
	}
	return &Controller{
		searcher: searcher,
		tokens:   tokens,
		metrics:  reg,
		log:      log,
		page:     1,
		debounce: DefaultDebounce,
	}
}

// SubscribeFunc registers a listener invoked after every externally visible
// state change. The presentation layer subscribes here instead of sharing
// mutable fields.
func (c *Controller) SubscribeFunc(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

func (c *Controller) notify() {
	c.mu.Lock()
	listeners := make([]func(), len(c.listeners))
	copy(listeners, c.listeners)
	c.mu.Unlock()
	for _, fn := range listeners {
		fn()
	}
}

// SetQuery records the pending query and restarts the debounce timer.
// While unauthenticated the query is stored but nothing is scheduled.
// A blank query clears the results immediately without a backend call.
func (c *Controller) SetQuery(text string) {
	c.mu.Lock()
	c.query = text
	c.stopTimerLocked()

	if _, ok := c.tokens.Token(); !ok {
		c.mu.Unlock()
		c.notify()
		return
	}

	if strings.TrimSpace(text) == "" {
		c.clearResultsLocked()
		c.mu.Unlock()
		c.notify()
		return
	}

	c.state = StateDebouncing
	c.timerGen++
	gen := c.timerGen
	c.timer = time.AfterFunc(c.debounce, func() { c.debounceFire(gen) })
	c.mu.Unlock()
	c.notify()
}

// debounceFire runs when the timer elapses. A timer that fired while being
// replaced must not search for a stale query, so the generation is checked
// before anything happens.
func (c *Controller) debounceFire(gen uint64) {
	c.mu.Lock()
	if gen != c.timerGen {
		c.mu.Unlock()
		return
	}
	c.timer = nil
	c.mu.Unlock()

	if err := c.Submit(context.Background()); err != nil {
		c.log.Warn("debounced search failed", "error", err)
	}
}

// Submit issues the search immediately, cancelling any pending debounce.
// This is the explicit "press search" path; the debounce timer funnels into
// it as well. A blank query clears results; a missing token is a no-op.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	c.stopTimerLocked()

	query := strings.TrimSpace(c.query)
	if query == "" {
		c.clearResultsLocked()
		c.mu.Unlock()
		c.notify()
		return nil
	}

	token, ok := c.tokens.Token()
	if !ok {
		c.mu.Unlock()
		return nil
	}

	c.seq++
	seq := c.seq
	c.state = StateSearching
	c.mu.Unlock()
	c.notify()

	if c.metrics != nil {
		c.metrics.SearchesIssued.Inc()
	}
	raw, err := c.searcher.SearchProducts(ctx, query, token)

	c.mu.Lock()
	if seq != c.seq {
		// A newer query was issued while this one was in flight.
		c.mu.Unlock()
		if c.metrics != nil {
			c.metrics.StaleDropped.Inc()
		}
		c.log.Debug("discarded stale search response", "query", query)
		return nil
	}

	if err != nil {
		// Stale-but-visible: the previous result set stays on screen,
		// only this attempt is abandoned.
		c.state = StateFailed
		c.err = err
		c.mu.Unlock()
		if c.metrics != nil {
			c.metrics.SearchFailures.Inc()
		}
		c.log.Warn("search failed", "query", query, "error", err)
		c.notify()
		return err
	}

	c.results = catalog.NormalizeAll(raw)
	c.page = 1
	c.state = StateReady
	c.err = nil
	count := len(c.results)
	c.mu.Unlock()

	c.log.Debug("search completed", "query", query, "results", count)
	c.notify()
	return nil
}

// Reset drops the query, results, pagination, and any pending debounce,
// and invalidates in-flight responses. Used by logout and "start over".
func (c *Controller) Reset() {
	c.mu.Lock()
	c.stopTimerLocked()
	c.query = ""
	c.clearResultsLocked()
	c.mu.Unlock()
	c.notify()
}

// stopTimerLocked cancels any pending debounce. The generation bump also
// invalidates a callback that already fired and is waiting on the lock.
func (c *Controller) stopTimerLocked() {
	c.timerGen++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

// clearResultsLocked empties the result set and marks anything still in
// flight as stale, so a superseded response cannot repopulate results the
// operator just cleared.
func (c *Controller) clearResultsLocked() {
	c.seq++
	c.results = nil
	c.page = 1
	c.state = StateIdle
	c.err = nil
}

// Query returns the pending query text.
func (c *Controller) Query() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.query
}

// State returns the controller's current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Err returns the error from the most recent failed search, if the
// controller is in StateFailed.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Results returns a copy of the full result set in the order received.
func (c *Controller) Results() []models.NormalizedProduct {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.NormalizedProduct, len(c.results))
	copy(out, c.results)
	return out
}

// VisiblePage returns the slice of results on the current page.
func (c *Controller) VisiblePage() []models.NormalizedProduct {
	c.mu.Lock()
	defer c.mu.Unlock()
	return catalog.Paginate(c.results, c.page)
}

// Page returns the current page number.
func (c *Controller) Page() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.page
}

// TotalPages returns the page count for the current result set.
func (c *Controller) TotalPages() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return catalog.TotalPages(len(c.results))
}

// NextPage advances one page; a no-op at the last page.
func (c *Controller) NextPage() {
	c.setPage(func(p int) int { return p + 1 })
}

// PrevPage goes back one page; a no-op at page 1.
func (c *Controller) PrevPage() {
	c.setPage(func(p int) int { return p - 1 })
}

func (c *Controller) setPage(step func(int) int) {
	c.mu.Lock()
	next := catalog.ClampPage(step(c.page), len(c.results))
	changed := next != c.page
	c.page = next
	c.mu.Unlock()
	if changed {
		c.notify()
	}
}
