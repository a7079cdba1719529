//go:build ebiten

package main

import (
	"errors"
	"flag"
	"log"

	"gridflow/internal/app"
	"gridflow/internal/scenario"

	"github.com/hajimehoshi/ebiten/v2"
)

func main() {
	cfg := app.NewConfig()
	cfg.Bind(flag.CommandLine)
	flag.Parse()

	scn := scenario.Default()
	if cfg.Scenario != "" {
		loaded, err := scenario.Load(cfg.Scenario)
		if err != nil {
			log.Fatalf("load scenario: %v", err)
		}
		scn = loaded
	}

	game, err := app.New(scn, cfg.Scale, cfg.TPS)
	if err != nil {
		log.Fatalf("set up game: %v", err)
	}

	w, h := game.Layout(0, 0)
	ebiten.SetWindowTitle("gridflow — smoke")
	ebiten.SetTPS(cfg.TPS)
	ebiten.SetWindowSize(w, h)

	if err := ebiten.RunGame(game); err != nil && !errors.Is(err, ebiten.Termination) {
		log.Fatal(err)
	}
}
