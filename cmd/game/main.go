package main

import (
	"flag"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/Garsondee/Pack-Sense/internal/game"
	"github.com/Garsondee/Pack-Sense/internal/tuning"
	"github.com/Garsondee/Pack-Sense/internal/view"
)

func main() {
	seed := flag.Int64("seed", time.Now().UnixNano(), "world seed")
	config := flag.String("config", "", "tuning YAML (default: embedded)")
	level := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	logger := newLogger(*level)

	t, err := loadTuning(*config)
	if err != nil {
		logger.Fatal("load tuning", "err", err)
	}
	w, err := game.NewDemoWorld(*seed, t, game.WithLogger(logger))
	if err != nil {
		logger.Fatal("build world", "err", err)
	}
	logger.Info("world ready", "seed", *seed, "agents", len(w.Units()), "dt", t.TickSeconds())

	v := view.New(w, logger)
	ebiten.SetWindowTitle("Pack Sense")
	ebiten.SetWindowSize(v.WindowSize())
	ebiten.SetTPS(int(1/t.TickSeconds() + 0.5))
	if err := ebiten.RunGame(v); err != nil {
		logger.Fatal("run", "err", err)
	}
}

func newLogger(level string) *log.Logger {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	return log.NewWithOptions(os.Stderr, log.Options{
		Level:           lvl,
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
		Prefix:          "pack-sense",
	})
}

func loadTuning(path string) (*tuning.Tuning, error) {
	if path == "" {
		return tuning.Default()
	}
	return tuning.Load(path)
}
