package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/username/traffic-heatmap-planner/internal/config"
	"github.com/username/traffic-heatmap-planner/internal/heatmap"
	"github.com/username/traffic-heatmap-planner/internal/maps"
	"github.com/username/traffic-heatmap-planner/internal/schedule"
	"go.uber.org/zap"
)

// gridFlags override the grid section of the config file
type gridFlags struct {
	days      []string
	startHour int
	endHour   int
	step      int
	timezone  string
}

func (g *gridFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&g.days, "days", nil, "Days of week, e.g. Mon,Tue,Fri (default: grid.days)")
	cmd.Flags().IntVar(&g.startHour, "start-hour", 7, "First hour of the grid, 0-23")
	cmd.Flags().IntVar(&g.endHour, "end-hour", 19, "Last hour of the grid, 0-23 (inclusive)")
	cmd.Flags().IntVar(&g.step, "step", 60, "Minutes between slots (15, 30, 60...)")
	cmd.Flags().StringVar(&g.timezone, "timezone", "", "IANA timezone for departure times (default: grid.timezone)")
}

func (g *gridFlags) apply(cmd *cobra.Command, grid *config.GridConfig) {
	if cmd.Flags().Changed("days") {
		grid.Days = g.days
	}
	if cmd.Flags().Changed("start-hour") {
		grid.StartHour = g.startHour
	}
	if cmd.Flags().Changed("end-hour") {
		grid.EndHour = g.endHour
	}
	if cmd.Flags().Changed("step") {
		grid.StepMinutes = g.step
	}
	if cmd.Flags().Changed("timezone") {
		grid.Timezone = g.timezone
	}
}

func buildCmd() *cobra.Command {
	var (
		g            gridFlags
		origin       string
		destination  string
		mode         string
		trafficModel string
		pause        time.Duration
		swap         bool
		csvPath      string
		teeOutput    string
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Query every day × time slot and print the travel time heatmap",
		RunE: func(cmd *cobra.Command, args []string) error {
			out = os.Stdout
			if teeOutput != "" {
				if err := os.MkdirAll(filepath.Dir(teeOutput), 0o755); err != nil {
					return fmt.Errorf("failed to create tee path: %w", err)
				}
				f, err := os.OpenFile(teeOutput, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
				if err != nil {
					return fmt.Errorf("failed to open tee-output file: %w", err)
				}
				defer f.Close()
				out = io.MultiWriter(os.Stdout, f)
				outPrintf("📝 Output is mirrored to %s\n", teeOutput)
			}
			defer func() {
				out = os.Stdout
			}()

			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			g.apply(cmd, &cfg.Grid)
			if cmd.Flags().Changed("origin") {
				cfg.Route.Origin = origin
			}
			if cmd.Flags().Changed("destination") {
				cfg.Route.Destination = destination
			}
			if cmd.Flags().Changed("mode") {
				cfg.Route.Mode = mode
			}
			if cmd.Flags().Changed("traffic-model") {
				cfg.Route.TrafficModel = trafficModel
			}
			if cmd.Flags().Changed("pause") {
				cfg.Grid.Pause = pause.String()
			}
			if swap {
				cfg.Route.Origin, cfg.Route.Destination = cfg.Route.Destination, cfg.Route.Origin
			}

			if err := cfg.Validate(); err != nil {
				return err
			}

			// Ctrl-C abandons the whole build
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runBuild(ctx, cfg, csvPath)
		},
	}

	g.register(cmd)
	cmd.Flags().StringVar(&origin, "origin", "", "Origin address (default: route.origin)")
	cmd.Flags().StringVar(&destination, "destination", "", "Destination address (default: route.destination)")
	cmd.Flags().StringVar(&mode, "mode", "driving", "Travel mode: "+strings.Join(maps.Modes, ", "))
	cmd.Flags().StringVar(&trafficModel, "traffic-model", "best_guess", "Traffic model: "+strings.Join(maps.TrafficModels, ", "))
	cmd.Flags().DurationVar(&pause, "pause", 100*time.Millisecond, "Pause between API calls (0-1s)")
	cmd.Flags().BoolVar(&swap, "swap", false, "Swap origin and destination")
	cmd.Flags().StringVar(&csvPath, "csv", "", "Write the heatmap data to this CSV file")
	cmd.Flags().StringVar(&teeOutput, "tee-output", "", "Mirror output to file")

	return cmd
}

func runBuild(ctx context.Context, cfg *config.Config, csvPath string) error {
	days, err := cfg.Grid.Weekdays()
	if err != nil {
		return err
	}
	slots := cfg.Grid.Slots()

	dayNames := make([]string, len(days))
	for i, d := range days {
		dayNames[i] = d.String()
	}

	outPrintln("### Configuration summary")
	outPrintf("- Origin: %s\n", cfg.Route.Origin)
	outPrintf("- Destination: %s\n", cfg.Route.Destination)
	outPrintf("- Days: %s\n", strings.Join(dayNames, ", "))
	outPrintf("- Time slots: %d\n", len(slots))
	outPrintf("- Mode: %s, Traffic model: %s\n", cfg.Route.Mode, cfg.Route.TrafficModel)
	outPrintf("- Timezone: %s\n", cfg.Grid.Timezone)

	total := len(schedule.UniqueWeekdays(days)) * len(slots)
	outPrintf("\nQuerying %d time slots...\n", total)

	client := maps.NewClient(cfg.Google.BaseURL, cfg.Google.APIKey, cfg.Google.MaxQPS, logger)
	builder := heatmap.NewBuilder(client, cfg.Grid.GetPause(), logger)
	builder.OnProgress(func(done, total int, day schedule.Weekday, slot schedule.TimeSlot) {
		outPrintf("\r⏳ Completed %d of %d API calls (%s %s)%s", done, total, day, slot.Label, strings.Repeat(" ", 8))
		if done == total {
			outPrintln()
		}
	})

	matrix, err := builder.Build(ctx, heatmap.Request{
		Origin:       cfg.Route.Origin,
		Destination:  cfg.Route.Destination,
		Mode:         cfg.Route.Mode,
		TrafficModel: cfg.Route.TrafficModel,
		Timezone:     cfg.Grid.Timezone,
		Days:         days,
		Slots:        slots,
	})
	if err != nil {
		outPrintln()
		return fmt.Errorf("failed to build heatmap: %w", err)
	}

	if matrix.Empty() {
		return fmt.Errorf("no data returned from Distance Matrix API, check inputs or quotas")
	}

	outPrintln("\n🚗 Travel time heatmap (minutes)")
	outPrintln("═══════════════════════════════════════════════════════")
	if err := matrix.WriteTable(out); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}
	if matrix.Absent() > 0 {
		outPrintf("('-' = no data, %d of %d cells)\n", matrix.Absent(), matrix.Len())
	}

	if summary, ok := matrix.Summarize(); ok {
		outPrintln("\n📊 Summary")
		outPrintf("  Fastest:  %s %s (%.1f min)\n", summary.Fastest.Day, summary.Fastest.Slot.Label, summary.Fastest.Minutes)
		outPrintf("  Slowest:  %s %s (%.1f min)\n", summary.Slowest.Day, summary.Slowest.Slot.Label, summary.Slowest.Minutes)
		outPrintf("  Mean:     %.1f min (σ %.1f)\n", summary.Mean, summary.StdDev)
		outPrintln("\n  Best departure per day:")
		for _, best := range matrix.FastestByDay() {
			outPrintf("    %-10s %-9s %.1f min\n", best.Day, best.Slot.Label, best.Minutes)
		}
	}

	outPrintf("\nOpen this route in Google Maps: %s\n", maps.DirectionsURL(cfg.Route.Origin, cfg.Route.Destination, cfg.Route.Mode))
	outPrintln("Estimates are based on Google's predicted traffic for future departure times.")

	if csvPath != "" {
		if err := writeCSV(matrix, csvPath); err != nil {
			return err
		}
		outPrintf("\n💾 Heatmap data written to %s\n", csvPath)
		logger.Info("Heatmap exported", zap.String("path", csvPath))
	}

	return nil
}

func writeCSV(matrix *heatmap.Matrix, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create csv directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create csv file: %w", err)
	}
	defer f.Close()

	if err := matrix.WriteCSV(f); err != nil {
		return err
	}
	return f.Close()
}
