package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/coreman2200/scenereel/internal/app"
	"github.com/coreman2200/scenereel/internal/config"
)

func main() {
	// ---- Flags (config file values are the defaults; flags set explicitly win) ----
	var (
		configPath = flag.String("config", "scenereel.yaml", "path to the YAML config")
		addr       = flag.String("addr", "", "HTTP listen address")
		scenes     = flag.String("scenes", "", "scene catalog (JSON)")
		framesRoot = flag.String("frames", "", "directory frame paths are relative to")
		baseURL    = flag.String("frames-url", "", "base URL frame paths are relative to")
		cloudType  = flag.String("cloud-type", "", "default cloud type")
		driver     = flag.String("driver", "", "LED driver: spi | sim")
		watch      = flag.Bool("watch", false, "reload the scene catalog when it changes")
		level      = flag.String("log-level", "", "debug | info | warn | error")
		initial    = flag.String("scene", "", "scene to load on start")
	)
	flag.Parse()

	// ---- Logging ----
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})

	// ---- Config ----
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Warn().Err(err).Str("path", *configPath).Msg("config load failed; proceeding with defaults and flags")
		cfg = config.Default()
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "addr":
			cfg.Addr = *addr
		case "scenes":
			cfg.Scenes = *scenes
		case "frames":
			cfg.Frames.Root = *framesRoot
		case "frames-url":
			cfg.Frames.BaseURL = *baseURL
		case "cloud-type":
			cfg.CloudType = *cloudType
		case "driver":
			cfg.Cube.Driver = *driver
		case "watch":
			cfg.WatchScenes = *watch
		case "log-level":
			cfg.LogLevel = *level
		}
	})
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil && cfg.LogLevel != "" {
		zerolog.SetGlobalLevel(lvl)
	}

	core, err := app.New(cfg, log.Logger, app.Options{})
	if err != nil && cfg.Cube.Driver == "spi" {
		log.Warn().Err(err).Msg("SPI init failed; falling back to SIM")
		cfg.Cube.Driver = "sim"
		core, err = app.New(cfg, log.Logger, app.Options{})
	}
	if err != nil {
		log.Fatal().Err(err).Msg("startup failed")
	}

	// ---- HTTP routes ----
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", core.Hub.HandleFramesWS)
	mux.HandleFunc("/status", core.Hub.HandleStatusWS)
	mux.HandleFunc("/control", core.Hub.HandleControlWS)
	mux.HandleFunc("/health", core.Hub.HandleHealth)
	mux.HandleFunc("/scenes", core.Hub.HandleScenes)

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      withCORS(mux),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return core.Run(ctx) })
	g.Go(func() error {
		log.Info().Str("addr", cfg.Addr).Str("driver", cfg.Cube.Driver).Msg("HTTP server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info().Msg("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		return srv.Shutdown(sctx)
	})

	if *initial != "" {
		if err := core.LoadScene(*initial, ""); err != nil {
			log.Warn().Err(err).Str("scene", *initial).Msg("initial scene not loaded")
		}
	}

	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("exited with error")
	}
}

func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		h.ServeHTTP(w, r)
	})
}
