package main

import (
	"flag"
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/xlab/closer"

	"github.com/s0wingseason/Digital-Patchbay/internal/config"
	"github.com/s0wingseason/Digital-Patchbay/internal/midi"
	"github.com/s0wingseason/Digital-Patchbay/internal/preset"
	"github.com/s0wingseason/Digital-Patchbay/internal/routing"
	"github.com/s0wingseason/Digital-Patchbay/internal/server"
)

func main() {
	dataDir := flag.String("data", "", "data directory (default: user config dir)")
	debug := flag.Bool("debug", false, "enable debug logging")
	seedPresets := flag.Bool("seed-presets", false, "create one default preset per bank if the store is empty")
	flag.Parse()

	logrus.SetLevel(logrus.InfoLevel)
	if *debug {
		logrus.SetLevel(logrus.DebugLevel)
	}

	dir := *dataDir
	if dir == "" {
		var err error
		dir, err = config.DefaultDir()
		if err != nil {
			logrus.Fatalf("Failed to locate config directory: %v", err)
		}
	}

	// Load configuration
	cfgStore, err := config.NewStore(filepath.Join(dir, "config.json"))
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}
	cfg := cfgStore.Snapshot()

	// Wire up the core: transport, recall engine, routing model, presets
	transport := midi.NewTransport()
	engine := midi.NewEngine(transport, cfg.MIDI.Channel)
	model := routing.NewModel()

	presets, err := preset.NewStore(filepath.Join(dir, "presets"), engine, model)
	if err != nil {
		logrus.Fatalf("Failed to open preset store: %v", err)
	}
	if *seedPresets {
		if err := presets.EnsureDefaults(); err != nil {
			logrus.Fatalf("Failed to seed default presets: %v", err)
		}
	}

	defer closer.Close()
	closer.Bind(func() {
		transport.Close()
		if err := cfgStore.Flush(); err != nil {
			logrus.Warnf("Flushing config: %v", err)
		}
	})

	// Reconnect to the device from the last session, if any. Failure is
	// not fatal: the device may simply be off.
	if cfg.MIDI.Device != "" {
		if err := transport.Connect(cfg.MIDI.Device); err != nil {
			logrus.Warnf("Could not connect to %q: %v", cfg.MIDI.Device, err)
		}
	}

	srv := server.New(cfgStore, transport, engine, model, presets)
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logrus.Infof("%s %s listening on http://%s", cfg.AppName, cfg.Version, addr)

	go func() {
		if err := http.ListenAndServe(addr, srv.Handler()); err != nil {
			closer.Fatalln("HTTP server failed:", err)
		}
	}()

	closer.Hold()
}
