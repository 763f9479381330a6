package main

import (
	"flag"
	"fmt"
	"os"

	"tanya-chat/internal/chat"
	"tanya-chat/internal/config"
	"tanya-chat/internal/logger"
	"tanya-chat/internal/relayclient"
	"tanya-chat/internal/render"
	"tanya-chat/internal/speech"
)

func main() {
	cfgPath := flag.String("config", config.ClientConfigPath(), "path to the TOML config file")
	relayURL := flag.String("relay", "", "relay endpoint URL (overrides the config file)")
	verbose := flag.Bool("v", false, "log exchanges to stderr")
	flag.Parse()

	cfg, err := config.LoadClient(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v; using defaults\n", err)
	}
	if *relayURL != "" {
		cfg.RelayURL = *relayURL
	}
	overlap, err := chat.ParseOverlapPolicy(cfg.Overlap)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v; allowing overlapping submissions\n", err)
	}

	log := logger.Discard()
	if *verbose {
		log = logger.New("debug", false)
		log.SetOutput(os.Stderr)
	}

	var engine speech.Engine = speech.NopEngine{}
	if cfg.Speech.Enabled {
		e := speech.NewExecEngine(cfg.Speech.Command, cfg.Speech.VoiceFlag, cfg.Speech.RateFlag, cfg.Speech.ListVoices)
		if e.Available() {
			engine = e
		} else {
			fmt.Fprintf(os.Stderr, "Warning: %s not found; speech disabled\n", cfg.Speech.Command)
		}
	}

	session := chat.NewSession(chat.Options{
		Relay:        relayclient.New(cfg.RelayURL, cfg.Timeout.Duration),
		SpeechEngine: engine,
		Clipboard:    chat.SystemClipboard{},
		Messages:     chat.LoadMessages(cfg.Locale),
		Overlap:      overlap,
		CopyFeedback: cfg.CopyFeedback.Duration,
		MaxTurns:     cfg.MaxTurns,
		Logger:       log,
	})
	defer session.Close()

	r := newREPL(session, render.NewTerminalRenderer(80), os.Stdout, cfg.Timeout.Duration)
	if err := r.run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
