package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/scenereel/internal/app"
	"github.com/coreman2200/scenereel/internal/config"
	"github.com/coreman2200/scenereel/internal/driver/fake"
	"github.com/coreman2200/scenereel/internal/render"
)

func main() {
	var (
		scenes    string
		frames    string
		sceneID   string
		cloudType string
		shader    string
		dur       time.Duration
	)
	flag.StringVar(&scenes, "scenes", "scenes.json", "scene catalog (JSON)")
	flag.StringVar(&frames, "frames", "frames", "directory frame paths are relative to")
	flag.StringVar(&sceneID, "scene", "", "scene id to play")
	flag.StringVar(&cloudType, "type", "", "cloud type (default: first of frame 0)")
	flag.StringVar(&shader, "shader", "points", "shader: points | height")
	flag.DurationVar(&dur, "for", 10*time.Second, "how long to play")
	flag.Parse()

	if sceneID == "" {
		fmt.Fprintln(os.Stderr, "Provide -scene id")
		os.Exit(2)
	}

	zerolog.SetGlobalLevel(zerolog.WarnLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	cfg := config.Default()
	cfg.Scenes = scenes
	cfg.Frames.Root = frames
	cfg.Cube.Shader = shader

	core, err := app.New(cfg, log.Logger, app.Options{
		Drivers:  []render.Driver{&fake.Driver{}},
		OnStatus: func(s string) { fmt.Printf("[status] %s\n", s) },
	})
	if err != nil {
		log.Fatal().Err(err).Msg("setup")
	}

	ctx, cancel := context.WithTimeout(context.Background(), dur)
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- core.Run(ctx) }()

	if err := core.LoadScene(sceneID, cloudType); err != nil {
		log.Fatal().Err(err).Msg("load")
	}

	// Play once the whole scene is in.
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case <-tick.C:
			if core.Snapshot().Loaded {
				if !core.Play() {
					fmt.Println("Scene has a single frame; nothing to play")
				}
				tick.Stop()
			}
		case err := <-done:
			if err != nil {
				log.Fatal().Err(err).Msg("run")
			}
			fmt.Println("Done")
			return
		}
	}
}
