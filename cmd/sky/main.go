// Command sky shows an animated night sky in the local terminal.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/tomz197/nightsky/internal/client"
	"github.com/tomz197/nightsky/internal/config"
	"github.com/tomz197/nightsky/internal/draw"
	"github.com/tomz197/nightsky/internal/sky"
	"github.com/tomz197/nightsky/internal/tui"
)

func main() {
	configPath := flag.String("config", config.GetEnv("SKY_CONFIG", ""), "TOML option file")
	profile := flag.String("profile", "", "Profile (classic, realistic, interactive); overrides the option file")
	stars := flag.Int("stars", -1, "Stars at the 1920x1080 reference area")
	fps := flag.Int("fps", 0, "Target frame rate (0 = default)")
	raw := flag.Bool("raw", false, "Drive the terminal directly instead of through Bubble Tea")
	logLevel := flag.String("log-level", config.GetEnv("LOG_LEVEL", "info"), "Log level (debug, info, warn, error)")
	logFile := flag.String("log-file", "", "Write logs to this file while the sky is shown")
	flag.Parse()

	// The sky owns the screen, so logs go to a file or nowhere.
	logOut := io.Discard
	if *logFile != "" {
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "open log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		logOut = f
	}
	logger, err := config.NewLogger(logOut, *logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "log level: %v\n", err)
		os.Exit(1)
	}

	opts, file, err := config.LoadOptions(*configPath, *profile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "options: %v\n", err)
		os.Exit(1)
	}
	if *stars >= 0 {
		opts.StarCount = *stars
	}
	if len(file.Undecoded) > 0 {
		logger.Warn("unknown option keys", "keys", file.Undecoded)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *raw {
		err = runRaw(ctx, opts, file, *fps, logger)
	} else {
		err = runTUI(ctx, opts, file, *fps, logger)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "sky error: %v\n", err)
		os.Exit(1)
	}
}

// runTUI shows the sky through Bubble Tea.
func runTUI(ctx context.Context, opts sky.Options, file config.File, fps int, logger *log.Logger) error {
	width, height, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		logger.Warn("terminal size", "err", err)
	}
	model, err := tui.New(tui.Options{
		Sky:      opts,
		FPS:      fps,
		Width:    width,
		Height:   height,
		Rand:     file.Rand(),
		Logger:   logger,
		Renderer: lipgloss.NewRenderer(os.Stdout),
	})
	if err != nil {
		return err
	}

	p := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
		tea.WithReportFocus(),
		tea.WithContext(ctx),
	)
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

// runRaw puts the terminal in raw mode and drives it with a client session.
func runRaw(ctx context.Context, opts sky.Options, file config.File, fps int, logger *log.Logger) error {
	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("enable raw mode: %w", err)
	}
	defer func() {
		_ = term.Restore(fd, oldState)
	}()

	s, err := client.New(bufio.NewReader(os.Stdin), os.Stdout, client.Options{
		Sky:          opts,
		Rand:         file.Rand(),
		FPS:          fps,
		ColorProfile: termenv.NewOutput(os.Stdout).EnvColorProfile(),
		Logger:       logger,
	})
	if err != nil {
		return err
	}

	draw.EnterAltScreen(os.Stdout)
	defer draw.ExitAltScreen(os.Stdout)
	return s.Run(ctx)
}
