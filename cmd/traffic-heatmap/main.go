package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/username/traffic-heatmap-planner/internal/config"
	"github.com/username/traffic-heatmap-planner/internal/maps"
	"github.com/username/traffic-heatmap-planner/internal/schedule"
	"github.com/username/traffic-heatmap-planner/pkg/dateutil"
	"go.uber.org/zap"
)

var (
	configPath string
	logger     *zap.Logger
	out        io.Writer = os.Stdout
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "traffic-heatmap",
		Short: "Traffic Heatmap Planner",
		Long: "Estimate typical travel times for different days of the week and times of day " +
			"using the Google Distance Matrix API, and lay them out as a day × time heatmap",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Commands report config errors themselves; logging falls back to defaults
			var logCfg config.LogConfig
			if cfg, err := config.Load(configPath); err == nil {
				logCfg = cfg.Log
			}
			logger = newLogger(logCfg, os.Stderr)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path (default: ./config.yaml, $HOME/.traffic-heatmap, /etc/traffic-heatmap)")

	rootCmd.AddCommand(buildCmd())
	rootCmd.AddCommand(slotsCmd())
	rootCmd.AddCommand(nextCmd())
	rootCmd.AddCommand(suggestCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func slotsCmd() *cobra.Command {
	var g gridFlags

	cmd := &cobra.Command{
		Use:   "slots",
		Short: "Print the time slots of the configured grid",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			g.apply(cmd, &cfg.Grid)
			if err := cfg.Grid.Validate(); err != nil {
				return err
			}

			slots := cfg.Grid.Slots()
			selected, err := cfg.Grid.Weekdays()
			if err != nil {
				return err
			}
			days := schedule.UniqueWeekdays(selected)

			outPrintf("%d slot(s) from %s to %s every %d min\n",
				len(slots),
				schedule.FormatHour12(cfg.Grid.StartHour),
				schedule.FormatHour12(cfg.Grid.EndHour),
				cfg.Grid.StepMinutes)
			for i, slot := range slots {
				outPrintf("  %2d. %-9s (%02d:%02d)\n", i+1, slot.Label, slot.Time.Hour, slot.Time.Minute)
			}
			outPrintf("\n⚠️  %d day(s) × %d slot(s) = %d API calls\n", len(days), len(slots), len(days)*len(slots))
			return nil
		},
	}

	g.register(cmd)
	return cmd
}

func nextCmd() *cobra.Command {
	var (
		day      string
		clock    string
		timezone string
	)

	cmd := &cobra.Command{
		Use:   "next",
		Short: "Show the next departure timestamp for a weekday and time",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if timezone == "" {
				timezone = cfg.Grid.Timezone
			}

			weekday, err := schedule.ParseWeekday(day)
			if err != nil {
				return err
			}
			tod, err := schedule.ParseTimeOfDay(clock)
			if err != nil {
				return err
			}
			resolver, err := schedule.NewResolver(timezone)
			if err != nil {
				return err
			}

			next, err := resolver.Next(weekday, tod)
			if err != nil {
				return err
			}

			outPrintf("Next %s at %s (%s):\n", weekday, tod, timezone)
			outPrintf("  %s\n", dateutil.FormatISO8601(next))
			outPrintf("  departure_time=%d (in %s)\n", next.Unix(), time.Until(next).Round(time.Minute))
			return nil
		},
	}

	cmd.Flags().StringVar(&day, "day", "Monday", "Weekday (name or 3-letter abbreviation)")
	cmd.Flags().StringVar(&clock, "time", "08:00", "Time of day, HH:MM (24-hour)")
	cmd.Flags().StringVar(&timezone, "timezone", "", "IANA timezone (default: grid.timezone)")
	return cmd
}

func suggestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "suggest <address>",
		Short: "Suggest addresses via Google Places autocomplete",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if cfg.Google.APIKey == "" {
				return fmt.Errorf("google.api_key is required (or set GOOGLE_MAPS_API_KEY)")
			}

			client := maps.NewClient(cfg.Google.BaseURL, cfg.Google.APIKey, cfg.Google.MaxQPS, logger)
			input := strings.Join(args, " ")

			suggestions, err := client.Autocomplete(context.Background(), input)
			if err != nil {
				return err
			}
			if len(suggestions) == 0 {
				outPrintf("No suggestions for %q\n", input)
				return nil
			}

			outPrintf("💡 Suggestions:\n")
			for _, s := range suggestions {
				outPrintf("  • %s\n", s)
			}
			return nil
		},
	}
	return cmd
}

func outPrintf(format string, a ...interface{}) {
	if out == nil {
		out = os.Stdout
	}
	fmt.Fprintf(out, format, a...)
}

func outPrintln(a ...interface{}) {
	if out == nil {
		out = os.Stdout
	}
	fmt.Fprintln(out, a...)
}
