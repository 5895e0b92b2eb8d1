package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog"

	"chronolink/internal/config"
	"chronolink/internal/logging"
	"chronolink/internal/pps"
	"chronolink/internal/serialport"
	"chronolink/internal/session"
)

func main() {
	var (
		configPath string
		portName   string
		execLine   string
	)
	flag.StringVar(&configPath, "config", "./chronolink.yaml", "Path to YAML or TOML config")
	flag.StringVar(&portName, "port", "", "Port to select (name or index); defaults to the first")
	flag.StringVar(&execLine, "exec", "", "Run ';'-separated console commands and exit")
	flag.Parse()

	if err := run(configPath, portName, execLine); err != nil {
		fmt.Fprintf(os.Stderr, "chronoctl: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, portName, execLine string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}

	log := logging.New(logging.Options{Level: cfg.Log.Level, NoColor: cfg.Log.NoColor, App: "chronoctl"})

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	s, err := session.Open(cfg, serialport.Open, log)
	if err != nil {
		return fmt.Errorf("session open failed: %w", err)
	}
	defer func() {
		if err := s.Close(); err != nil {
			log.Error().Err(err).Msg("session close")
		}
	}()

	mon := startPPS(ctx, cfg.PPS, log)
	if mon != nil {
		defer mon.Close()
	}

	cur, err := s.Port(0)
	if err != nil {
		return err
	}
	c := newConsole(s, cur, mon, os.Stdout)
	if portName != "" {
		if err := c.use([]string{portName}); err != nil {
			return err
		}
	}

	if execLine != "" {
		for _, line := range strings.Split(execLine, ";") {
			if err := c.exec(line); err != nil {
				if errors.Is(err, errQuit) {
					return nil
				}
				return err
			}
		}
		return nil
	}

	ed := newLineEditor(os.Stdin, os.Stdout)
	defer ed.Close()

	// Ctrl-C is handled by readline; SIGTERM ends the session through ctx.
	done := make(chan error, 1)
	go func() { done <- runConsole(c, ed, os.Stderr) }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		log.Info().Msg("chronoctl stopping")
		return nil
	}
}

func startPPS(ctx context.Context, cfg config.PPSConfig, log zerolog.Logger) *pps.Monitor {
	if !cfg.Enable {
		return nil
	}
	mon := pps.New(pps.Config{Enable: true, Chip: cfg.Chip, Line: cfg.Line})
	if err := mon.Start(ctx); err != nil {
		log.Warn().Err(err).Str("chip", cfg.Chip).Int("line", cfg.Line).Msg("pps monitor disabled")
		return nil
	}
	log.Info().Str("chip", cfg.Chip).Int("line", cfg.Line).Str("port", cfg.Port).Msg("pps monitor started")
	return mon
}
