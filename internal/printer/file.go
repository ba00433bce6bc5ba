// Package printer writes label data files the way the desktop printing
// setup consumes them: one CSV row per label copy, handed to a BarTender
// template. It satisfies the same contract as the remote print endpoint,
// so the queue manager does not care which one it talks to.
package printer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/nadeeshan/labelpress/internal/models"
)

// maxNameLen is the widest product name the label template renders cleanly.
const maxNameLen = 20

// FileWriter writes the queue as CSV label data and optionally launches the
// label template afterwards.
type FileWriter struct {
	// DataPath is where the label data file is written. The file is
	// replaced wholesale on every print.
	DataPath string
	// TemplatePath, when set, is opened after a successful write so the
	// label software picks up the fresh data.
	TemplatePath string

	log *slog.Logger

	// launch is swappable in tests; the default opens TemplatePath with
	// the platform's file opener.
	launch func(path string) error
}

// NewFileWriter creates a label data-file printer.
func NewFileWriter(dataPath, templatePath string, log *slog.Logger) *FileWriter {
	if log == nil {
		log = slog.Default()
	}
	return &FileWriter{
		DataPath:     dataPath,
		TemplatePath: templatePath,
		log:          log,
		launch:       openFile,
	}
}

// PrintLabels writes one CSV row per label copy: a line item with Qty 3
// becomes three identical rows, because the template prints one label per
// row. Names longer than 20 characters are truncated with an ellipsis to
// fit the label. The data file is only considered printed once fully
// written, so a failure leaves the queue intact upstream.
func (w *FileWriter) PrintLabels(ctx context.Context, items []models.QueueLineItem) error {
	if dir := filepath.Dir(w.DataPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create label data directory: %w", err)
		}
	}

	f, err := os.Create(w.DataPath)
	if err != nil {
		return fmt.Errorf("create label data file: %w", err)
	}

	for _, item := range items {
		if err := ctx.Err(); err != nil {
			f.Close()
			return err
		}
		name := truncateName(item.Name)
		for i := 0; i < item.Qty; i++ {
			if _, err := fmt.Fprintf(f, "%s,%s,%s,%s\n", item.Code, name, item.Price, item.Barcode); err != nil {
				f.Close()
				return fmt.Errorf("write label row: %w", err)
			}
		}
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("flush label data file: %w", err)
	}

	if w.TemplatePath != "" {
		if err := w.launch(w.TemplatePath); err != nil {
			return fmt.Errorf("open label template: %w", err)
		}
	}

	w.log.Info("label data written", "path", w.DataPath, "lines", len(items))
	return nil
}

// truncateName keeps names within what the label template renders. The cut
// is rune-aware so multi-byte names are never split mid-character.
func truncateName(name string) string {
	runes := []rune(name)
	if len(runes) <= maxNameLen {
		return name
	}
	return string(runes[:maxNameLen]) + "..."
}

// openFile hands the path to the OS file opener so the label software
// associated with the template picks it up.
func openFile(path string) error {
	return exec.Command(openCommand, append(openArgs, path)...).Start()
}
