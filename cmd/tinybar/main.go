package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/term"

	"github.com/tinybar/tinybar/internal/block"
	"github.com/tinybar/tinybar/internal/model"
	"github.com/tinybar/tinybar/internal/protocol"
	"github.com/tinybar/tinybar/internal/sched"
)

// Build variables - set by ldflags during build.
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	var configPath string
	var showVersion, verbose bool

	flag.StringVar(&configPath, "config", "", "config file (default is $HOME/.config/tinybar/config.yml)")
	flag.BoolVar(&verbose, "verbose", false, "log scheduling decisions to stderr")
	flag.BoolVar(&showVersion, "version", false, "print version information")
	flag.Parse()

	if showVersion {
		fmt.Printf("tinybar %s (%s)\n", version, commit)
		return
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if verbose {
		cfg.Verbose = true
	}

	if err := run(cfg); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg appConfig) error {
	log.SetFlags(0)
	log.SetPrefix("tinybar: ")

	status := model.NewStatusLine(cfg.modelBlocks())

	// Click notifications only make sense when stdin is the bar's
	// event pipe, not a terminal.
	clicks := !term.IsTerminal(int(os.Stdin.Fd()))

	wake := sched.NewWakeSource()
	if err := wake.Install(clicks); err != nil {
		return err
	}
	defer wake.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler := sched.New(
		status,
		block.NewRunner(cfg.CommandTimeout),
		protocol.NewWriter(os.Stdout, clicks),
		wake,
		sched.WithVerbose(cfg.Verbose),
	)
	return scheduler.Run(ctx)
}
