package main

import (
	"flag"
	"image"
	"image/gif"
	"log"
	"math"
	"os"

	"gridflow/internal/fluid"
	"gridflow/internal/render"
	"gridflow/internal/scenario"
	"gridflow/pkg/field"

	"github.com/mazznoer/colorgrad"
)

func main() {
	scenarioPath := flag.String("scenario", "", "scenario file to load (defaults to the built-in smoke box)")
	out := flag.String("out", "smoke.gif", "output GIF path")
	frames := flag.Int("frames", 240, "number of frames to render")
	dt := flag.Float64("dt", 1.0/30, "simulated time per frame in seconds")
	which := flag.String("field", "density", "field to render: density or speed")
	flag.Parse()

	scn := scenario.Default()
	if *scenarioPath != "" {
		loaded, err := scenario.Load(*scenarioPath)
		if err != nil {
			log.Fatalf("load scenario: %v", err)
		}
		scn = loaded
	}

	var sample func(solver *fluid.Solver, i field.Index2) float64
	var grad colorgrad.Gradient
	switch *which {
	case "density":
		grad = colorgrad.Inferno()
		sample = func(solver *fluid.Solver, i field.Index2) float64 {
			return solver.Density().At(i)
		}
	case "speed":
		grad = colorgrad.Viridis()
		sample = func(solver *fluid.Solver, i field.Index2) float64 {
			return solver.Velocity().ValueAtCellCenter(i).Length()
		}
	default:
		log.Fatalf("unknown field %q", *which)
	}

	solver, err := scn.Build()
	if err != nil {
		log.Fatalf("build scenario: %v", err)
	}
	solver.Initialize()

	size := solver.Size()
	pal := render.Palette(grad, 256)
	rect := image.Rect(0, 0, size.X, size.Y)
	delay := int(math.Round(*dt * 100))
	if delay < 2 {
		delay = 2
	}

	values := make([]float64, size.X*size.Y)
	maxValue := 1.0 // density is already in [0, 1]; speed rescales below

	anim := gif.GIF{LoopCount: 0}
	for frame := 0; frame < *frames; frame++ {
		solver.Advance(*dt)

		for y := 0; y < size.Y; y++ {
			srcRow := size.Y - y
			for x := 0; x < size.X; x++ {
				v := sample(solver, field.Index2{X: x + 1, Y: srcRow})
				values[y*size.X+x] = v
				if *which == "speed" && v > maxValue {
					maxValue = v
				}
			}
		}

		img := image.NewPaletted(rect, pal)
		for i, v := range values {
			t := v / maxValue
			if t < 0 {
				t = 0
			}
			if t > 1 {
				t = 1
			}
			img.SetColorIndex(i%size.X, i/size.X, uint8(math.Round(t*255)))
		}
		anim.Image = append(anim.Image, img)
		anim.Delay = append(anim.Delay, delay)

		if (frame+1)%30 == 0 {
			log.Printf("rendered %d/%d frames (t=%.2fs, substeps=%d)",
				frame+1, *frames, solver.CurrentTime(), solver.SubSteps(*dt))
		}
	}

	f, err := os.Create(*out)
	if err != nil {
		log.Fatalf("create output: %v", err)
	}
	defer f.Close()
	if err := gif.EncodeAll(f, &anim); err != nil {
		log.Fatalf("encode gif: %v", err)
	}
	log.Printf("wrote %s (%d frames, %dx%d, field=%s)", *out, *frames, size.X, size.Y, *which)
}
