package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/Strob0t/VoyageMind/internal/config"
	"github.com/Strob0t/VoyageMind/internal/domain/trip"
	"github.com/Strob0t/VoyageMind/internal/logger"
)

// runPlan plans a single trip from the command line and prints the result.
func runPlan(args []string) error {
	fs := flag.NewFlagSet("plan", flag.ContinueOnError)
	session := fs.String("session", "", "session id to correlate traces (generated when empty)")
	asJSON := fs.Bool("json", false, "print the full result as JSON")
	fs.Usage = printPlanHelp
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		printPlanHelp()
		return fmt.Errorf("expected exactly one country, got %d arguments", fs.NArg())
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	// Logs go to stderr, synchronously; stdout carries the plan.
	cfg.Logging.Async = false
	log, closer := logger.NewWithWriter(cfg.Logging, os.Stderr)
	defer closer.Close()
	slog.SetDefault(log)

	c, err := newCore(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, cfg.Server.RequestTimeout)
	defer cancel()

	req := trip.Request{Country: fs.Arg(0), SessionID: *session}
	sessionID := req.EnsureSession()

	result, err := c.planner.Plan(ctx, req)
	if err != nil {
		return planFailure(sessionID, c.vault.RedactString(err.Error()))
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	return printPlan(os.Stdout, result)
}

func planFailure(sessionID, msg string) error {
	return errors.New("Error planning travel: " + msg + " (session " + sessionID + ")") //nolint:staticcheck // user-facing message
}

func printPlan(out io.Writer, result *trip.Result) error {
	fmt.Fprintf(out, "%s (session %s)\n\n", result.Country, result.SessionID)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tCITY\tWHY")
	for i, rec := range result.FinalRecommendations {
		fmt.Fprintf(w, "%d\t%s\t%s\n", i+1, rec.City, rec.Reason)
	}
	return w.Flush()
}

func printPlanHelp() {
	fmt.Fprintf(os.Stderr, `Usage: voyagemind plan [options] <country>

Asks the three specialists and the aggregator for two cities to visit.

Options:
  --session <id>   Session id to correlate traces (generated when empty)
  --json           Print the full result, including per-specialist picks

Examples:
  voyagemind plan Japan
  voyagemind plan --json --session demo-1 "New Zealand"
`)
}
