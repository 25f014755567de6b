package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"mediasweep/internal/adapters/tui"
	"mediasweep/internal/adapters/tui/views"
	"mediasweep/internal/adapters/viewer"
	"mediasweep/internal/bootstrap"
	"mediasweep/internal/config"
)

func main() {
	configFlag := flag.String("config", "", "path to the config file")
	flag.Parse()

	load := config.Load
	if *configFlag != "" {
		load = func() (*config.Config, error) { return config.LoadFile(*configFlag) }
	}
	cfg, err := load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// The alternate screen owns the terminal: log to a file or not at all
	if cfg.Log.File == "" {
		cfg.Log.Level = "disabled"
	}
	bootstrap.InitLogging(cfg)

	rt, err := bootstrap.Open(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	app := tui.NewApp(rt.Services, viewer.NewOpener(rt.Storage), views.ScanConfig{
		Workers: cfg.Scan.Workers,
		Timeout: cfg.Scan.Timeout,
	})

	p := tea.NewProgram(app, tea.WithAltScreen())

	_, err = p.Run()
	rt.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
