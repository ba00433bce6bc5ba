package queue

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/nadeeshan/labelpress/internal/models"
)

// fakePrinter records what it was asked to print.
type fakePrinter struct {
	mu    sync.Mutex
	err   error
	got   [][]models.QueueLineItem
	block chan struct{} // when set, PrintLabels waits here
}

func (f *fakePrinter) PrintLabels(ctx context.Context, items []models.QueueLineItem) error {
	f.mu.Lock()
	f.got = append(f.got, items)
	block := f.block
	f.mu.Unlock()
	if block != nil {
		<-block
	}
	return f.err
}

func (f *fakePrinter) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.got)
}

var sampleProduct = models.NormalizedProduct{
	ID:      "p1",
	Code:    "GT-1",
	Name:    "Green Tea",
	Price:   "4.50",
	Barcode: "4791234567890",
}

func TestAddAppendsIndependentLines(t *testing.T) {
	m := NewManager(&fakePrinter{}, nil, nil)

	m.Add(sampleProduct, "3")
	m.Add(sampleProduct, "2")

	items := m.Items()
	if len(items) != 2 {
		t.Fatalf("expected two independent lines, got %d", len(items))
	}
	if items[0].Qty != 3 || items[1].Qty != 2 {
		t.Errorf("quantities = %d, %d; want 3, 2", items[0].Qty, items[1].Qty)
	}
	if got := m.TotalLabelCount(); got != 5 {
		t.Errorf("TotalLabelCount = %d, want 5", got)
	}
}

func TestAddRejectsInvalidQuantities(t *testing.T) {
	inputs := []string{"0", "-1", "abc", "", "1.5", "  ", "2x"}
	m := NewManager(&fakePrinter{}, nil, nil)

	for _, input := range inputs {
		m.Add(sampleProduct, input)
	}

	if got := m.Len(); got != 0 {
		t.Errorf("invalid quantities must leave the queue unchanged, got %d items", got)
	}
}

func TestAddTrimsQuantityInput(t *testing.T) {
	m := NewManager(&fakePrinter{}, nil, nil)
	m.Add(sampleProduct, " 4 ")
	if got := m.TotalLabelCount(); got != 4 {
		t.Errorf("TotalLabelCount = %d, want 4", got)
	}
}

func TestRemoveShiftsLaterItems(t *testing.T) {
	m := NewManager(&fakePrinter{}, nil, nil)
	for _, name := range []string{"a", "b", "c"} {
		p := sampleProduct
		p.ID, p.Name = name, name
		m.Add(p, "1")
	}

	m.Remove(1)

	items := m.Items()
	if len(items) != 2 || items[0].Name != "a" || items[1].Name != "c" {
		t.Errorf("queue after remove = %+v", items)
	}

	// Out-of-range indices are silent no-ops.
	m.Remove(-1)
	m.Remove(99)
	if got := m.Len(); got != 2 {
		t.Errorf("out-of-range remove changed the queue: %d items", got)
	}
}

func TestPendingQuantities(t *testing.T) {
	m := NewManager(&fakePrinter{}, nil, nil)

	m.SetPending("p1", "7")
	if raw, ok := m.Pending("p1"); !ok || raw != "7" {
		t.Fatalf("Pending = %q, %v", raw, ok)
	}

	// Adding the product consumes its pending entry.
	m.Add(sampleProduct, "7")
	if _, ok := m.Pending("p1"); ok {
		t.Error("pending entry must be removed once the product is queued")
	}
}

func TestPrintSuccessClearsQueue(t *testing.T) {
	printer := &fakePrinter{}
	m := NewManager(printer, nil, nil)
	m.Add(sampleProduct, "3")
	m.Add(sampleProduct, "2")

	if err := m.Print(context.Background()); err != nil {
		t.Fatalf("Print failed: %v", err)
	}

	if got := m.Len(); got != 0 {
		t.Errorf("queue must be cleared in full on success, %d items left", got)
	}
	if printer.calls() != 1 {
		t.Fatalf("printer called %d times", printer.calls())
	}
	if got := printer.got[0]; len(got) != 2 || got[0].Qty != 3 || got[1].Qty != 2 {
		t.Errorf("printer received %+v", got)
	}
}

func TestPrintFailureLeavesQueueUntouched(t *testing.T) {
	printer := &fakePrinter{err: errors.New("printer offline")}
	m := NewManager(printer, nil, nil)
	m.Add(sampleProduct, "3")
	m.Add(sampleProduct, "2")

	before := m.Items()
	err := m.Print(context.Background())
	if err == nil {
		t.Fatal("expected the print failure to surface")
	}

	after := m.Items()
	if !reflect.DeepEqual(before, after) {
		t.Errorf("queue changed across a failed print:\nbefore %+v\nafter  %+v", before, after)
	}
}

func TestPrintEmptyQueueRejected(t *testing.T) {
	m := NewManager(&fakePrinter{}, nil, nil)
	if err := m.Print(context.Background()); !errors.Is(err, ErrQueueEmpty) {
		t.Errorf("Print on empty queue = %v, want ErrQueueEmpty", err)
	}
}

func TestPrintRejectsConcurrentCall(t *testing.T) {
	block := make(chan struct{})
	printer := &fakePrinter{block: block}
	m := NewManager(printer, nil, nil)
	m.Add(sampleProduct, "1")

	firstDone := make(chan error, 1)
	go func() { firstDone <- m.Print(context.Background()) }()

	// Wait until the first print is inside the printer.
	for printer.calls() == 0 {
		time.Sleep(time.Millisecond)
	}

	if err := m.Print(context.Background()); !errors.Is(err, ErrPrintInFlight) {
		t.Errorf("second Print = %v, want ErrPrintInFlight", err)
	}

	close(block)
	if err := <-firstDone; err != nil {
		t.Fatalf("first Print failed: %v", err)
	}
	if got := m.Len(); got != 0 {
		t.Errorf("queue not cleared after the in-flight print finished: %d items", got)
	}
}

func TestPrintKeepsLinesAddedWhileInFlight(t *testing.T) {
	block := make(chan struct{})
	printer := &fakePrinter{block: block}
	m := NewManager(printer, nil, nil)
	m.Add(sampleProduct, "3")

	firstDone := make(chan error, 1)
	go func() { firstDone <- m.Print(context.Background()) }()
	for printer.calls() == 0 {
		time.Sleep(time.Millisecond)
	}

	// A line queued mid-print was not part of the snapshot and must
	// survive the clear.
	late := sampleProduct
	late.ID, late.Name = "p2", "Late Addition"
	m.Add(late, "2")

	close(block)
	if err := <-firstDone; err != nil {
		t.Fatalf("Print failed: %v", err)
	}

	items := m.Items()
	if len(items) != 1 || items[0].Name != "Late Addition" || items[0].Qty != 2 {
		t.Errorf("queue after print = %+v, want only the late line", items)
	}
	if got := printer.got[0]; len(got) != 1 || got[0].Qty != 3 {
		t.Errorf("printer received %+v, want only the snapshot", got)
	}
}

func TestResetClearsQueueAndPending(t *testing.T) {
	m := NewManager(&fakePrinter{}, nil, nil)
	m.Add(sampleProduct, "2")
	m.SetPending("p9", "3")

	m.Reset()

	if m.Len() != 0 || m.TotalLabelCount() != 0 {
		t.Error("Reset must empty the queue")
	}
	if _, ok := m.Pending("p9"); ok {
		t.Error("Reset must clear pending quantities")
	}
}

func TestSubscribeFuncFiresOnQueueChanges(t *testing.T) {
	m := NewManager(&fakePrinter{}, nil, nil)

	var mu sync.Mutex
	notified := 0
	m.SubscribeFunc(func() {
		mu.Lock()
		notified++
		mu.Unlock()
	})

	m.Add(sampleProduct, "1")
	m.Remove(0)

	mu.Lock()
	defer mu.Unlock()
	if notified < 2 {
		t.Errorf("expected notifications for add and remove, got %d", notified)
	}
}
