package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"

	"github.com/ghalamif/mtcflow"
)

func main() {
	if len(os.Args) < 2 {
		printUsage(os.Stderr)
		os.Exit(1)
	}

	cmd := os.Args[1]
	var err error

	switch cmd {
	case "run":
		err = runCommand(os.Args[2:])
	case "validate":
		err = validateCommand(os.Args[2:])
	case "stats":
		err = statsCommand(os.Args[2:])
	case "help", "-h", "--help":
		printUsage(os.Stdout)
		return
	default:
		printUsage(os.Stderr)
		err = fmt.Errorf("unknown command %q", cmd)
	}

	if err != nil {
		log.Fatal().Err(err).Str("command", cmd).Msg("mtc-bridge failed")
	}
}

func runCommand(args []string) error {
	fs := pflag.NewFlagSet("run", pflag.ExitOnError)
	cfgPath := fs.StringP("config", "c", "", "Path to bridge configuration file (built-in defaults when empty)")
	level := fs.String("log-level", "", "Override log.level from the config")
	jsonLogs := fs.Bool("json", false, "Write JSON logs instead of console output")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := mtcflow.LoadConfig(*cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if *level != "" {
		cfg.Log.Level = *level
	}
	if err := setupLogging(cfg.Log.Level, *jsonLogs); err != nil {
		return err
	}

	log.Info().
		Str("agent", cfg.Agent.BaseURL).
		Str("store", cfg.Store.Kind).
		Dur("interval", cfg.Poll.Interval).
		Msg("starting bridge")

	flow, err := mtcflow.ConfFromConfig(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return flow.Run(ctx)
}

func setupLogging(level string, jsonLogs bool) error {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	zerolog.SetGlobalLevel(lvl)

	var out io.Writer = os.Stderr
	if !jsonLogs {
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	}
	log.Logger = zerolog.New(out).With().Timestamp().Logger()
	return nil
}

func validateCommand(args []string) error {
	fs := pflag.NewFlagSet("validate", pflag.ExitOnError)
	cfgPath := fs.StringP("config", "c", "./data/config.yaml", "Path to configuration file to validate")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := mtcflow.LoadConfig(*cfgPath)
	if err != nil {
		return err
	}
	fmt.Printf("config %s looks good: agent=%s store=%s interval=%s\n",
		*cfgPath, cfg.Agent.BaseURL, cfg.Store.Kind, cfg.Poll.Interval)
	return nil
}

func statsCommand(args []string) error {
	fs := pflag.NewFlagSet("stats", pflag.ExitOnError)
	url := fs.String("url", "http://localhost:9100/metrics", "Prometheus metrics endpoint")
	interval := fs.Duration("interval", 2*time.Second, "Refresh interval")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	fmt.Printf("Streaming metrics from %s (Ctrl+C to stop)\n", *url)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := printMetricsSnapshot(ctx, *url); err != nil {
				fmt.Fprintf(os.Stderr, "stats error: %v\n", err)
			}
		}
	}
}

func printMetricsSnapshot(ctx context.Context, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	snap, err := scanMetrics(resp.Body)
	if err != nil {
		return err
	}

	fmt.Printf("[%s] polls=%.0f failures=%.0f forwarded=%.0f skipped=%.0f rejected_writes=%.0f cursor=%.0f\n",
		time.Now().Format(time.RFC3339),
		snap.values["mtc_polls_total"],
		snap.values["mtc_poll_failures_total"],
		snap.values["mtc_records_forwarded_total"],
		snap.values["mtc_records_skipped_total"],
		snap.rejected,
		snap.values["mtc_cursor"],
	)
	return nil
}

type metricsSnapshot struct {
	values   map[string]float64
	rejected float64
}

// scanMetrics reads the handful of bridge series printed by stats from a
// text exposition.
func scanMetrics(r io.Reader) (metricsSnapshot, error) {
	snap := metricsSnapshot{values: map[string]float64{
		"mtc_polls_total":             0,
		"mtc_poll_failures_total":     0,
		"mtc_records_forwarded_total": 0,
		"mtc_records_skipped_total":   0,
		"mtc_cursor":                  0,
	}}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "mtc_write_outcomes_total{") && !strings.Contains(line, `outcome="ok"`) {
			if i := strings.LastIndexByte(line, ' '); i > 0 {
				var value float64
				if _, err := fmt.Sscanf(line[i+1:], "%g", &value); err == nil {
					snap.rejected += value
				}
			}
			continue
		}
		for key := range snap.values {
			if strings.HasPrefix(line, key+" ") {
				var value float64
				if _, err := fmt.Sscanf(line, key+" %g", &value); err == nil {
					snap.values[key] = value
				}
			}
		}
	}
	return snap, scanner.Err()
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `mtc-bridge

Usage:
  mtc-bridge <command> [flags]

Commands:
  run        Poll the MTConnect agent and forward records to the store
  validate   Load and validate a config file without starting the bridge
  stats      Poll the Prometheus metrics endpoint and print live counters

Examples:
  mtc-bridge run
  mtc-bridge run --config ./data/config.yaml --log-level debug
  mtc-bridge validate --config ./data/config.yaml
  mtc-bridge stats --url http://localhost:9100/metrics --interval 1s
`)
}
