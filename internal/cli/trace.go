package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"deskpet/internal/clickthrough"
	"deskpet/internal/config"
	"deskpet/internal/logging"
	"deskpet/internal/platform"
)

// traceOptions configure a trace run
type traceOptions struct {
	duration time.Duration
	interval time.Duration
	region   clickthrough.HitRegion
	samples  bool
}

// newTraceCmd creates the trace command
func newTraceCmd(root *rootOptions) *cobra.Command {
	var (
		duration time.Duration
		region   string
		samples  bool
	)

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Poll the cursor and report hit-test transitions without a window",
		Long: "Runs the click-through watcher against a fixed region for a while and prints every\n" +
			"state change it would apply. Useful for checking cursor access on this desktop.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := config.NewManager(root.configPath)
			if err != nil {
				return err
			}
			if err := m.Load(); err != nil {
				return err
			}
			cfg := m.Get()

			logCfg := cfg.Log
			if root.logLevel != "" {
				logCfg.Level = root.logLevel
			}
			logger, err := logging.New(logCfg)
			if err != nil {
				return err
			}
			defer logger.InstallGlobal()()

			opts := traceOptions{
				duration: duration,
				interval: time.Duration(cfg.PollIntervalMs) * time.Millisecond,
				samples:  samples,
			}
			if root.pollInterval > 0 {
				opts.interval = root.pollInterval
			}

			if region == "" {
				opts.region = traceDefaultRegion(cfg)
			} else if opts.region, err = parseRegion(region); err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), opts.duration)
			defer cancel()
			return runTrace(ctx, cmd.OutOrStdout(), platform.Features, opts)
		},
	}

	cmd.Flags().DurationVarP(&duration, "duration", "d", 10*time.Second, "how long to trace")
	cmd.Flags().StringVarP(&region, "region", "r", "", "hit region as centerX,centerY,width,height (default: config default_region centered on the work area)")
	cmd.Flags().BoolVar(&samples, "samples", false, "print every cursor sample")
	return cmd
}

// traceDefaultRegion centers the configured default region on the work area
func traceDefaultRegion(cfg *config.Config) clickthrough.HitRegion {
	x, y, w, h := platform.Features.GetWorkArea()
	return clickthrough.HitRegion{
		X:      float64(x) + float64(w)/2,
		Y:      float64(y) + float64(h)/2,
		Width:  cfg.DefaultRegion.Width,
		Height: cfg.DefaultRegion.Height,
	}
}

// parseRegion reads "x,y,w,h"
func parseRegion(s string) (clickthrough.HitRegion, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return clickthrough.HitRegion{}, fmt.Errorf("region %q: want centerX,centerY,width,height", s)
	}
	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return clickthrough.HitRegion{}, fmt.Errorf("region %q: %w", s, err)
		}
		v[i] = f
	}
	return clickthrough.HitRegion{X: v[0], Y: v[1], Width: v[2], Height: v[3]}, nil
}

// sampleWriter prints each cursor sample it passes through
type sampleWriter struct {
	src    clickthrough.CursorSource
	out    io.Writer
	region clickthrough.HitRegion
}

func (s *sampleWriter) CursorPosition() (x, y float64, ok bool) {
	x, y, ok = s.src.CursorPosition()
	if !ok {
		fmt.Fprintln(s.out, "sample   unavailable")
		return x, y, ok
	}
	fmt.Fprintf(s.out, "sample   %8.1f %8.1f inside=%t\n", x, y, s.region.Contains(x, y))
	return x, y, ok
}

// runTrace drives a watcher with a printing toggler until ctx is done
func runTrace(ctx context.Context, out io.Writer, cursor clickthrough.CursorSource, opts traceOptions) error {
	var src clickthrough.CursorSource = cursor
	if opts.samples {
		src = &sampleWriter{src: cursor, out: out, region: opts.region}
	}

	start := time.Now()
	transitions := 0
	toggle := clickthrough.ToggleFunc(func(ignore bool) error {
		transitions++
		state := clickthrough.Intercept
		if ignore {
			state = clickthrough.Passthrough
		}
		fmt.Fprintf(out, "%7.3fs  -> %s\n", time.Since(start).Seconds(), state)
		return nil
	})

	fmt.Fprintf(out, "probing region center=(%.1f, %.1f) size=%.0fx%.0f every %s\n",
		opts.region.X, opts.region.Y, opts.region.Width, opts.region.Height, opts.interval)

	w := clickthrough.NewWatcher(clickthrough.NewBoundsStoreWith(opts.region), src, toggle,
		clickthrough.Options{Interval: opts.interval, Logger: zap.L().Named("trace")})
	if err := w.Run(ctx); err != nil {
		return err
	}

	fmt.Fprintf(out, "%d transitions, final state %s\n", transitions, w.State())
	return nil
}
