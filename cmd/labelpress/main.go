package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/nadeeshan/labelpress/internal/backend"
	"github.com/nadeeshan/labelpress/internal/catalog"
	"github.com/nadeeshan/labelpress/internal/config"
	"github.com/nadeeshan/labelpress/internal/metrics"
	"github.com/nadeeshan/labelpress/internal/printer"
	"github.com/nadeeshan/labelpress/internal/queue"
	"github.com/nadeeshan/labelpress/internal/search"
	"github.com/nadeeshan/labelpress/internal/session"
	"github.com/nadeeshan/labelpress/internal/storage/sqlite"
	"github.com/nadeeshan/labelpress/pkg/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}
	logging.SetupWithLevelName(cfg.LogLevel)

	store, err := sqlite.New(cfg.SessionDBPath)
	if err != nil {
		slog.Error("Failed to open session store", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Session store ready", "path", cfg.SessionDBPath)

	reg := metrics.NewRegistry()
	client := backend.New(backend.Endpoints{
		Login:     cfg.LoginAPIURL,
		Search:    cfg.SearchAPIURL,
		Locations: cfg.LocationsAPIURL,
		Print:     cfg.PrintAPIURL,
	}, cfg.HTTPTimeout(), slog.Default())

	sessions := session.NewManager(store, client, reg, slog.Default())
	controller := search.NewController(client, sessions, reg, slog.Default())

	// Local data-file printing takes precedence when configured; otherwise
	// the queue goes to the remote print endpoint.
	var device queue.Printer = client
	if cfg.DataFilePath != "" {
		device = printer.NewFileWriter(cfg.DataFilePath, cfg.TemplateFilePath, slog.Default())
		slog.Info("Printing to label data file", "path", cfg.DataFilePath)
	}
	printQueue := queue.NewManager(device, reg, slog.Default())

	// Logout wipes both: no residual results or queue items survive it.
	sessions.OnLogout(controller)
	sessions.OnLogout(printQueue)

	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", reg.Handler())
		go func() {
			slog.Info("Metrics listener starting", "address", cfg.MetricsAddr)
			if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
				slog.Error("Metrics listener failed", "error", err)
			}
		}()
	}

	ctx := context.Background()
	if err := sessions.Restore(ctx); err != nil {
		slog.Warn("Could not restore previous session", "error", err)
	}

	app := &app{
		sessions:   sessions,
		controller: controller,
		queue:      printQueue,
		client:     client,
		out:        os.Stdout,
	}

	// Debounced searches complete in the background; re-render when they do.
	controller.SubscribeFunc(app.onSearchChange)

	app.run(ctx, bufio.NewScanner(os.Stdin))
}

// app is the thin presentation layer: it subscribes to component change
// notifications and owns no domain state of its own.
type app struct {
	sessions   *session.Manager
	controller *search.Controller
	queue      *queue.Manager
	client     *backend.HTTPClient
	out        *os.File
}

func (a *app) onSearchChange() {
	if a.controller.State() == search.StateReady {
		a.renderResults()
	}
}

func (a *app) run(ctx context.Context, in *bufio.Scanner) {
	fmt.Fprintln(a.out, "labelpress: type 'help' for commands")
	a.prompt()
	for in.Scan() {
		line := strings.TrimSpace(in.Text())
		if line == "" {
			a.prompt()
			continue
		}
		fields := strings.Fields(line)
		cmd, args := fields[0], fields[1:]
		if cmd == "quit" || cmd == "exit" {
			return
		}
		a.dispatch(ctx, cmd, args, line)
		a.prompt()
	}
}

func (a *app) prompt() {
	who := "logged out"
	if s := a.sessions.Current(); s != nil {
		who = "logged in"
		if s.Location != "" {
			who += " @ " + s.Location
		}
	}
	fmt.Fprintf(a.out, "[%s | queue: %d labels] > ", who, a.queue.TotalLabelCount())
}

func (a *app) dispatch(ctx context.Context, cmd string, args []string, line string) {
	switch cmd {
	case "help":
		a.help()
	case "locations":
		a.locations(ctx)
	case "login":
		a.login(ctx, args)
	case "logout":
		if err := a.sessions.Logout(ctx); err != nil {
			fmt.Fprintf(a.out, "logout: %v\n", err)
		}
	case "type":
		// Simulates typing into the search box: debounced.
		a.controller.SetQuery(strings.TrimSpace(strings.TrimPrefix(line, "type")))
	case "search":
		if term := strings.TrimSpace(strings.TrimPrefix(line, "search")); term != "" {
			a.controller.SetQuery(term)
		}
		if err := a.controller.Submit(ctx); err != nil {
			fmt.Fprintf(a.out, "search failed: %v\n", err)
			return
		}
		a.renderResults()
	case "next":
		a.controller.NextPage()
		a.renderResults()
	case "prev":
		a.controller.PrevPage()
		a.renderResults()
	case "add":
		a.add(args)
	case "remove":
		a.remove(args)
	case "queue":
		a.renderQueue()
	case "print":
		if err := a.queue.Print(ctx); err != nil {
			fmt.Fprintf(a.out, "print failed: %v\n", err)
			return
		}
		fmt.Fprintln(a.out, "printed")
	case "reset":
		a.controller.Reset()
		a.queue.Reset()
	default:
		fmt.Fprintf(a.out, "unknown command %q, try 'help'\n", cmd)
	}
}

func (a *app) help() {
	fmt.Fprint(a.out, `commands:
  locations                list sites
  login <user> <pass> [location]
  type <text...>           debounced search-as-you-type
  search [text...]         immediate search
  next | prev              page through results
  add <row> <qty>          queue the row shown on the current page
  remove <line>            drop a queue line
  queue                    show the print queue
  print                    submit the queue
  reset                    clear search and queue (keeps session)
  logout | quit
`)
}

func (a *app) locations(ctx context.Context) {
	raw, err := a.client.FetchLocations(ctx)
	if err != nil {
		fmt.Fprintf(a.out, "locations: %v\n", err)
		return
	}
	for _, loc := range catalog.NormalizeLocations(raw) {
		fmt.Fprintf(a.out, "  %-12s %s\n", loc.Code, loc.Name)
	}
}

func (a *app) login(ctx context.Context, args []string) {
	if len(args) < 2 {
		fmt.Fprintln(a.out, "usage: login <user> <pass> [location]")
		return
	}
	location := ""
	if len(args) > 2 {
		location = args[2]
	}
	if err := a.sessions.Login(ctx, args[0], args[1], location); err != nil {
		fmt.Fprintf(a.out, "login failed: %v\n", err)
		return
	}
	fmt.Fprintln(a.out, "logged in")
}

func (a *app) add(args []string) {
	if len(args) != 2 {
		fmt.Fprintln(a.out, "usage: add <row> <qty>")
		return
	}
	row, err := strconv.Atoi(args[0])
	page := a.controller.VisiblePage()
	if err != nil || row < 1 || row > len(page) {
		fmt.Fprintln(a.out, "no such row on this page")
		return
	}
	before := a.queue.Len()
	a.queue.Add(page[row-1], args[1])
	if a.queue.Len() == before {
		// Validation rejections are silent in the core; the operator
		// still deserves a hint.
		fmt.Fprintln(a.out, "quantity must be a positive integer")
	}
}

func (a *app) remove(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(a.out, "usage: remove <line>")
		return
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 {
		fmt.Fprintln(a.out, "usage: remove <line>")
		return
	}
	a.queue.Remove(n - 1)
}

func (a *app) renderResults() {
	page := a.controller.VisiblePage()
	if len(page) == 0 {
		fmt.Fprintln(a.out, "no results")
		return
	}
	fmt.Fprintf(a.out, "page %d/%d\n", a.controller.Page(), a.controller.TotalPages())
	for i, p := range page {
		fmt.Fprintf(a.out, "  %d. %-12s %-30s %10s\n", i+1, p.Code, p.Name, p.Price)
	}
}

func (a *app) renderQueue() {
	items := a.queue.Items()
	if len(items) == 0 {
		fmt.Fprintln(a.out, "print queue is empty")
		return
	}
	for i, item := range items {
		fmt.Fprintf(a.out, "  %d. %-30s x%d\n", i+1, item.Name, item.Qty)
	}
	fmt.Fprintf(a.out, "total: %d labels\n", a.queue.TotalLabelCount())
}
