// Tilequest plays tile-puzzle worlds in the terminal and serves them to the
// level editor.
// Usage: tilequest [--config <file>] [--plain] [--script <file>] [--trace] [--serve] [--analyze <board.json>] [--generate] [--version] [<world_directory>]
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/nathoo/tilequest/cli"
	"github.com/nathoo/tilequest/config"
	"github.com/nathoo/tilequest/engine"
	"github.com/nathoo/tilequest/engine/analyzer"
	"github.com/nathoo/tilequest/engine/generate"
	"github.com/nathoo/tilequest/engine/grid"
	"github.com/nathoo/tilequest/loader"
	"github.com/nathoo/tilequest/logger"
	"github.com/nathoo/tilequest/server"
	"github.com/nathoo/tilequest/tui"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const usage = "Usage: tilequest [--config <file>] [--plain] [--script <file>] [--trace] [--serve] [--analyze <board.json>] [--generate] [--version] [<world_directory>]"

func main() {
	plain := false
	trace := false
	serve := false
	gen := false
	var configFile, scriptFile, analyzeFile, worldDir string

	args := os.Args[1:]
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--version":
			fmt.Printf("tilequest %s (commit %s, built %s)\n", version, commit, date)
			return
		case "--plain":
			plain = true
		case "--trace":
			trace = true
		case "--serve":
			serve = true
		case "--generate":
			gen = true
		case "--config", "--script", "--analyze":
			if i+1 >= len(args) {
				fmt.Fprintf(os.Stderr, "%s requires a file path\n", args[i])
				os.Exit(1)
			}
			switch args[i] {
			case "--config":
				configFile = args[i+1]
			case "--script":
				scriptFile = args[i+1]
			case "--analyze":
				analyzeFile = args[i+1]
			}
			i++
		default:
			if worldDir == "" {
				worldDir = args[i]
			}
		}
	}

	cfg, err := config.Load(configFile)
	if err != nil {
		fatal(err)
	}
	cfg.ConfigureLocale()

	interactive := scriptFile == "" && !plain && !serve && analyzeFile == "" && !gen && term.IsTerminal(int(os.Stdout.Fd()))
	logOut, closeLog := logOutput(cfg, interactive)
	defer closeLog()
	logger.Init(cfg.Log.Level, cfg.Log.Format, logOut)

	opts := analyzer.Options{BudgetFactor: cfg.Analyzer.BudgetFactor, HoleBridging: cfg.Analyzer.HoleBridging}

	switch {
	case analyzeFile != "":
		os.Exit(analyzeBoard(analyzeFile, opts))
	case gen:
		if err := generateBoard(cfg); err != nil {
			fatal(err)
		}
		return
	}

	if worldDir == "" {
		worldDir = cfg.World
	}
	if worldDir == "" {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(1)
	}

	w, err := loader.Load(worldDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading world: %v\n", err)
		os.Exit(1)
	}
	for _, warn := range w.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", warn)
	}

	s := engine.NewSession(w.Graph, w.Quests, w.Triggers, engine.Options{Analyzer: opts})

	switch {
	case serve:
		if _, err := s.Start(); err != nil {
			fatal(err)
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		if err := server.New(s, cfg).Run(ctx); err != nil {
			fatal(err)
		}

	case scriptFile != "":
		// Script mode: open file, force plain, echo commands.
		f, err := os.Open(scriptFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening script: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		c := cli.New(s, cfg.SaveDir)
		c.In = f
		c.EchoInput = true
		c.Trace = trace
		c.Run()

	case !interactive:
		c := cli.New(s, cfg.SaveDir)
		c.Trace = trace
		c.Run()

	default:
		if err := tui.Run(s, cfg.SaveDir); err != nil {
			fatal(err)
		}
	}
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

// logOutput keeps logs off the screen while the TUI owns it.
func logOutput(cfg config.Config, interactive bool) (io.Writer, func()) {
	if !interactive {
		return os.Stderr, func() {}
	}
	dir := filepath.Dir(cfg.SaveDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return io.Discard, func() {}
	}
	f, err := os.OpenFile(filepath.Join(dir, "tilequest.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return io.Discard, func() {}
	}
	return f, func() { f.Close() }
}

// analyzeBoard prints the verdict for one board file. The exit code is 0
// for a playable board, 2 for an unplayable one.
func analyzeBoard(path string, opts analyzer.Options) int {
	def, err := loader.LoadBoardFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	b, err := grid.NewBoard(def)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s: %v\n", path, err)
		return 1
	}

	a := analyzer.New(opts)
	res := a.Analyze(b)
	if res.Playable {
		fmt.Println("Board is playable.")
	} else {
		fmt.Println("Board is NOT playable:")
		for _, r := range res.Reasons {
			fmt.Printf("  %s\n", r)
		}
	}
	fmt.Println()
	for _, f := range a.SuggestFixes(b) {
		fmt.Println(f)
	}
	if !res.Playable {
		return 2
	}
	return 0
}

// generateBoard writes a solvable random board as JSON to stdout.
func generateBoard(cfg config.Config) error {
	seed := cfg.Generator.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	opts := generate.DefaultOptions()
	opts.Width = cfg.Generator.Width
	opts.Height = cfg.Generator.Height
	opts.Passes = cfg.Generator.Passes
	opts.BudgetFactor = cfg.Analyzer.BudgetFactor

	def, err := generate.Generate(opts, engine.NewRNG(seed))
	if err != nil {
		return err
	}
	logger.Log.WithField("seed", seed).Info("board generated")
	out, err := json.MarshalIndent(def, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
