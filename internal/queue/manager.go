// Package queue owns the transient print queue: an ordered sequence of add
// events with validated quantities, and the atomic print-then-clear
// transition that is the only side effect this client produces.
package queue

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/nadeeshan/labelpress/internal/metrics"
	"github.com/nadeeshan/labelpress/internal/models"
)

var (
	// ErrQueueEmpty is returned by Print when there is nothing to print.
	ErrQueueEmpty = errors.New("print queue is empty")
	// ErrPrintInFlight is returned when a print is already running; the
	// call is rejected rather than interleaved.
	ErrPrintInFlight = errors.New("a print is already in progress")
)

// Printer is the slice of the print collaborator the queue needs. Both the
// remote print endpoint and the local label data-file writer satisfy it.
type Printer interface {
	PrintLabels(ctx context.Context, items []models.QueueLineItem) error
}

// Manager owns the queue and the pending-quantity inputs awaiting
// validation.
type Manager struct {
	printer Printer
	metrics *metrics.Registry
	log     *slog.Logger

	mu        sync.Mutex
	items     []models.QueueLineItem
	pending   map[string]string
	printing  bool
	listeners []func()
}

// NewManager creates a queue manager that submits to the given printer.
func NewManager(printer Printer, reg *metrics.Registry, log *slog.Logger) *Manager {
	if log == nil {
		log = slog.Default()
	}
	return &Manager{
		printer: printer,
		metrics: reg,
		log:     log,
		pending: make(map[string]string),
	}
}

// SubscribeFunc registers a listener invoked after every change to the
// queue or the pending quantities.
func (m *Manager) SubscribeFunc(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}

func (m *Manager) notify() {
	m.mu.Lock()
	listeners := make([]func(), len(m.listeners))
	copy(listeners, m.listeners)
	m.mu.Unlock()
	for _, fn := range listeners {
		fn()
	}
}

// Add appends a line item for the product with the given quantity input.
// A non-integer or non-positive quantity is rejected silently: the queue is
// untouched and no error is surfaced. Every accepted add is its own line:
// adding the same product twice yields two independent lines, which is what
// lets an operator print distinct batches of the same item.
func (m *Manager) Add(product models.NormalizedProduct, quantityInput string) {
	qty, err := strconv.Atoi(strings.TrimSpace(quantityInput))
	if err != nil || qty <= 0 {
		m.log.Debug("rejected quantity input", "product", product.ID, "input", quantityInput)
		return
	}

	m.mu.Lock()
	m.items = append(m.items, models.QueueLineItem{
		ID:      product.ID,
		Code:    product.Code,
		Name:    product.Name,
		Price:   product.Price,
		Barcode: product.Barcode,
		Qty:     qty,
	})
	delete(m.pending, product.ID)
	m.mu.Unlock()
	m.notify()
}

// Remove deletes the line item at the given position; later items shift
// down by one. Out-of-range indices are a silent no-op.
func (m *Manager) Remove(index int) {
	m.mu.Lock()
	if index < 0 || index >= len(m.items) {
		m.mu.Unlock()
		return
	}
	m.items = append(m.items[:index], m.items[index+1:]...)
	m.mu.Unlock()
	m.notify()
}

// Items returns a copy of the queue in add order.
func (m *Manager) Items() []models.QueueLineItem {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.QueueLineItem, len(m.items))
	copy(out, m.items)
	return out
}

// Len returns the number of line items.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// TotalLabelCount returns the sum of quantities across all line items.
func (m *Manager) TotalLabelCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0
	for _, item := range m.items {
		total += item.Qty
	}
	return total
}

// SetPending records a quantity input for a product awaiting validation.
func (m *Manager) SetPending(productID, raw string) {
	m.mu.Lock()
	m.pending[productID] = raw
	m.mu.Unlock()
	m.notify()
}

// Pending returns the recorded quantity input for a product, if any.
func (m *Manager) Pending(productID string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.pending[productID]
	return raw, ok
}

// Print submits the full ordered queue to the printer. On success every
// printed line is cleared (lines added while the print was in flight stay
// queued); on failure the queue is left completely unchanged and the error
// is surfaced. A second Print while one is in flight is rejected with
// ErrPrintInFlight, never interleaved.
func (m *Manager) Print(ctx context.Context) error {
	m.mu.Lock()
	if m.printing {
		m.mu.Unlock()
		return ErrPrintInFlight
	}
	if len(m.items) == 0 {
		m.mu.Unlock()
		return ErrQueueEmpty
	}
	m.printing = true
	items := make([]models.QueueLineItem, len(m.items))
	copy(items, m.items)
	m.mu.Unlock()

	if m.metrics != nil {
		m.metrics.PrintsIssued.Inc()
	}
	err := m.printer.PrintLabels(ctx, items)

	m.mu.Lock()
	m.printing = false
	if err != nil {
		m.mu.Unlock()
		if m.metrics != nil {
			m.metrics.PrintFailures.Inc()
		}
		m.log.Warn("print failed, queue preserved", "items", len(items), "error", err)
		return err
	}
	// Only the snapshot was printed; lines added while the print was in
	// flight stay queued.
	m.items = m.items[len(items):]
	m.mu.Unlock()

	if m.metrics != nil {
		labels := 0
		for _, item := range items {
			labels += item.Qty
		}
		m.metrics.LabelsPrinted.Add(float64(labels))
	}
	m.log.Info("printed labels", "lines", len(items))
	m.notify()
	return nil
}

// Reset clears the queue and every pending quantity. It never touches the
// session.
func (m *Manager) Reset() {
	m.mu.Lock()
	m.items = nil
	m.pending = make(map[string]string)
	m.mu.Unlock()
	m.notify()
}
