// Command glowvj runs the audio-reactive visual engine in a desktop window,
// listening to the default microphone.
//
// Usage:
//
//	glowvj [flags]
//
// Examples:
//
//	glowvj -list
//	glowvj -pattern flock
//	glowvj -layers flow,burst -width 1280 -height 720
//	glowvj -no-audio -log-level debug
package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/cwbudde/algo-glow/analysis"
	"github.com/cwbudde/algo-glow/analysis/mic"
	"github.com/cwbudde/algo-glow/composite"
	"github.com/cwbudde/algo-glow/engine"
	"github.com/cwbudde/algo-glow/input"
	"github.com/cwbudde/algo-glow/internal/ebitenhost"
	"github.com/cwbudde/algo-glow/patterns"
	"github.com/cwbudde/algo-glow/scene"
)

var logger = slog.Default()

type options struct {
	width      int
	height     int
	pattern    string
	layers     string
	seed       int64
	noAudio    bool
	sampleRate float64
	fftSize    int
	logLevel   string
	list       bool
}

func main() {
	var o options
	flag.IntVar(&o.width, "width", 960, "canvas width in pixels")
	flag.IntVar(&o.height, "height", 540, "canvas height in pixels")
	flag.StringVar(&o.pattern, "pattern", patterns.NameFlow, "initial pattern")
	flag.StringVar(&o.layers, "layers", "", "comma-separated patterns to run together (overrides -pattern)")
	flag.Int64Var(&o.seed, "seed", 1, "random seed for the patterns")
	flag.BoolVar(&o.noAudio, "no-audio", false, "do not open the microphone")
	flag.Float64Var(&o.sampleRate, "sample-rate", 48000, "capture sample rate in Hz")
	flag.IntVar(&o.fftSize, "fft", 2048, "analysis FFT size (power of two, 256..8192)")
	flag.StringVar(&o.logLevel, "log-level", "info", "log level: debug, info, warn, error")
	flag.BoolVar(&o.list, "list", false, "list available patterns and exit")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: glowvj [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Audio-reactive generative visuals.\n\nFlags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if err := initLogger(o.logLevel); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	if o.list {
		for i, name := range patterns.Names() {
			fmt.Printf("%d  %s\n", i+1, name)
		}
		return
	}

	if err := run(o); err != nil {
		logger.Error("glowvj failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func initLogger(level string) error {
	var lv slog.Level
	if err := lv.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("invalid -log-level %q", level)
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lv}))
	slog.SetDefault(logger)
	return nil
}

func run(o options) error {
	analyzer, err := analysis.New(
		analysis.WithSampleRate(o.sampleRate),
		analysis.WithFFTSize(o.fftSize),
	)
	if err != nil {
		return err
	}
	if !o.noAudio {
		if err := analyzer.Start(mic.New()); err != nil {
			if !errors.Is(err, analysis.ErrDeviceUnavailable) {
				return err
			}
			logger.Warn("microphone unavailable, running silent", slog.Any("error", err))
		} else {
			defer func() {
				if err := analyzer.Stop(); err != nil {
					logger.Warn("closing microphone", slog.Any("error", err))
				}
			}()
		}
	}

	reg := scene.NewRegistry()
	if err := patterns.Register(reg); err != nil {
		return err
	}
	mgr := scene.NewManager(scene.WithRegistry(reg), scene.WithLogger(logger))

	index, err := mgr.AddAll(scene.Context{Width: o.width, Height: o.height, Seed: o.seed})
	if err != nil {
		return err
	}

	if err := selectPatterns(mgr, index, o); err != nil {
		return err
	}

	comp, err := composite.New(o.width, o.height)
	if err != nil {
		return err
	}
	tracker := input.NewTracker()
	eng, err := engine.New(analyzer, tracker, mgr, comp, engine.WithLogger(logger))
	if err != nil {
		return err
	}
	defer eng.Close()

	logger.Info("starting",
		slog.Int("width", o.width),
		slog.Int("height", o.height),
		slog.Bool("audio", analyzer.Running()))

	host := ebitenhost.New(eng, tracker, o.width, o.height, logger)
	return host.Run("glowvj")
}

func selectPatterns(mgr *scene.Manager, index map[string]int, o options) error {
	lookup := func(name string) (int, error) {
		i, ok := index[strings.TrimSpace(name)]
		if !ok {
			return 0, fmt.Errorf("%w: %q (try -list)", scene.ErrUnknownPattern, name)
		}
		return i, nil
	}

	if o.layers == "" {
		i, err := lookup(o.pattern)
		if err != nil {
			return err
		}
		return mgr.SetActivePattern(i)
	}

	var set []int
	for _, name := range strings.Split(o.layers, ",") {
		i, err := lookup(name)
		if err != nil {
			return err
		}
		set = append(set, i)
	}
	return mgr.SetLayers(set)
}
