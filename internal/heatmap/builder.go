package heatmap

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/username/traffic-heatmap-planner/internal/schedule"
	"go.uber.org/zap"
)

// Query is a single travel-time lookup
type Query struct {
	Origin       string
	Destination  string
	Departure    time.Time
	Mode         string
	TrafficModel string
}

// Querier fetches the travel time for one departure. Any error marks the
// corresponding cell as absent.
type Querier interface {
	TravelTime(ctx context.Context, q Query) (time.Duration, error)
}

// Request describes one matrix build
type Request struct {
	Origin       string
	Destination  string
	Mode         string
	TrafficModel string
	Timezone     string
	Days         []schedule.Weekday
	Slots        []schedule.TimeSlot
}

// ProgressFunc is called after every cell with the number of completed and total cells
type ProgressFunc func(done, total int, day schedule.Weekday, slot schedule.TimeSlot)

// Builder assembles matrices one query at a time
type Builder struct {
	querier  Querier
	pause    time.Duration
	logger   *zap.Logger
	progress ProgressFunc

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewBuilder creates a Builder that waits pause between consecutive queries
func NewBuilder(querier Querier, pause time.Duration, logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{
		querier: querier,
		pause:   pause,
		logger:  logger,
		now:     time.Now,
		sleep:   sleepContext,
	}
}

// OnProgress registers a progress callback
func (b *Builder) OnProgress(fn ProgressFunc) {
	b.progress = fn
}

// Build queries every day×slot pair sequentially and returns the matrix.
//
// Invalid input (timezone, slot times, empty selection) fails before any
// query is issued. A failed query leaves its cell absent and the build goes
// on; there is a single attempt per cell. Cancelling ctx abandons the whole
// build and no partial matrix is returned.
func (b *Builder) Build(ctx context.Context, req Request) (*Matrix, error) {
	loc, err := schedule.LoadLocation(req.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve timezone: %w", err)
	}

	days := schedule.UniqueWeekdays(req.Days)
	if err := validateRequest(days, req.Slots); err != nil {
		return nil, err
	}

	matrix := newMatrix(days, req.Slots)
	matrix.origin = req.Origin
	matrix.dest = req.Destination

	logger := b.logger.With(zap.String("run_id", uuid.NewString()))
	total := len(days) * len(req.Slots)
	started := time.Now()

	logger.Info("Building traffic matrix",
		zap.String("origin", req.Origin),
		zap.String("destination", req.Destination),
		zap.String("mode", req.Mode),
		zap.String("traffic_model", req.TrafficModel),
		zap.String("timezone", loc.String()),
		zap.Int("days", len(days)),
		zap.Int("slots", len(req.Slots)),
		zap.Int("queries", total),
		zap.Duration("pause", b.pause))

	done, failed := 0, 0
	for _, day := range days {
		for i, slot := range req.Slots {
			if done > 0 {
				if err := b.sleep(ctx, b.pause); err != nil {
					return nil, fmt.Errorf("build abandoned after %d of %d queries: %w", done, total, err)
				}
			}

			departure, err := schedule.NextOccurrence(b.now(), day, slot.Time.Hour, slot.Time.Minute, loc)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve departure for %s %s: %w", day, slot.Label, err)
			}

			travel, err := b.querier.TravelTime(ctx, Query{
				Origin:       req.Origin,
				Destination:  req.Destination,
				Departure:    departure,
				Mode:         req.Mode,
				TrafficModel: req.TrafficModel,
			})
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, fmt.Errorf("build abandoned after %d of %d queries: %w", done, total, ctxErr)
			}
			if err != nil {
				failed++
				logger.Warn("Travel time query failed",
					zap.String("day", day.String()),
					zap.String("slot", slot.Label),
					zap.Time("departure", departure),
					zap.Error(err))
			} else {
				matrix.set(day, i, travel.Minutes())
				logger.Debug("Travel time received",
					zap.String("day", day.String()),
					zap.String("slot", slot.Label),
					zap.Float64("minutes", travel.Minutes()))
			}

			done++
			if b.progress != nil {
				b.progress(done, total, day, slot)
			}
		}
	}

	logger.Info("Traffic matrix built",
		zap.Int("queries", total),
		zap.Int("failed", failed),
		zap.Duration("took", time.Since(started)))

	return matrix, nil
}

func validateRequest(days []schedule.Weekday, slots []schedule.TimeSlot) error {
	if len(days) == 0 {
		return fmt.Errorf("%w: no days selected", schedule.ErrInvalidInput)
	}
	for _, day := range days {
		if !day.Valid() {
			return fmt.Errorf("%w: weekday %d out of range", schedule.ErrInvalidInput, int(day))
		}
	}
	if len(slots) == 0 {
		return fmt.Errorf("%w: no time slots", schedule.ErrInvalidInput)
	}
	for _, slot := range slots {
		if !slot.Time.Valid() {
			return fmt.Errorf("%w: slot %q has invalid time %02d:%02d",
				schedule.ErrInvalidInput, slot.Label, slot.Time.Hour, slot.Time.Minute)
		}
	}
	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
