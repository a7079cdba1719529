package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"image/color"
	"log"
	"math"
	"os"
	"runtime"
	"sort"
	"strconv"
	"sync"
	"time"

	"gridflow/internal/scenario"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

type paramSet struct {
	dt     float64
	maxCfl float64
}

func (p paramSet) String() string {
	return fmt.Sprintf("dt=%.4f maxCfl=%.1f", p.dt, p.maxCfl)
}

type sweepResult struct {
	params paramSet

	subSteps      int
	maxDivergence float64
	densityDrift  float64
	elapsed       time.Duration
}

func main() {
	scenarioPath := flag.String("scenario", "", "scenario file to sweep (defaults to the built-in smoke box)")
	duration := flag.Float64("duration", 4.0, "simulated seconds per configuration")
	workers := flag.Int("workers", runtime.NumCPU(), "number of worker goroutines")
	csvOut := flag.String("csv", "cfl_sweep.csv", "CSV output path")
	plotOut := flag.String("plot", "cfl_sweep.png", "plot output path (empty to skip)")
	flag.Parse()

	base := scenario.Default()
	if *scenarioPath != "" {
		loaded, err := scenario.Load(*scenarioPath)
		if err != nil {
			log.Fatalf("load scenario: %v", err)
		}
		base = loaded
	}

	dtOptions := []float64{1.0 / 120, 1.0 / 60, 1.0 / 30, 1.0 / 15}
	maxCflOptions := []float64{1, 2.5, 5, 10}

	var sets []paramSet
	for _, dt := range dtOptions {
		for _, maxCfl := range maxCflOptions {
			sets = append(sets, paramSet{dt: dt, maxCfl: maxCfl})
		}
	}

	fmt.Printf("Sweeping %d configurations (%d workers, %.1fs simulated each)\n",
		len(sets), *workers, *duration)

	jobs := make(chan paramSet)
	results := make(chan sweepResult)
	var wg sync.WaitGroup

	for i := 0; i < *workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for params := range jobs {
				res, err := runSweep(base, params, *duration)
				if err != nil {
					log.Printf("%s failed: %v", params, err)
					continue
				}
				results <- res
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	go func() {
		for _, params := range sets {
			jobs <- params
		}
		close(jobs)
	}()

	start := time.Now()
	var all []sweepResult
	for res := range results {
		all = append(all, res)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].params.dt != all[j].params.dt {
			return all[i].params.dt < all[j].params.dt
		}
		return all[i].params.maxCfl < all[j].params.maxCfl
	})

	fmt.Printf("\nResults (elapsed %s):\n", time.Since(start).Round(time.Millisecond))
	for _, res := range all {
		fmt.Printf("%-22s substeps=%-5d maxDiv=%.3e drift=%.3e wall=%s\n",
			res.params, res.subSteps, res.maxDivergence, res.densityDrift,
			res.elapsed.Round(time.Millisecond))
	}

	if err := writeCSV(*csvOut, all); err != nil {
		log.Fatalf("write csv: %v", err)
	}
	fmt.Printf("wrote %s\n", *csvOut)

	if *plotOut != "" {
		if err := writePlot(*plotOut, all, maxCflOptions); err != nil {
			log.Fatalf("write plot: %v", err)
		}
		fmt.Printf("wrote %s\n", *plotOut)
	}
}

// runSweep advances a fresh solver through the requested duration and
// reports stability diagnostics.
func runSweep(base scenario.Config, params paramSet, duration float64) (sweepResult, error) {
	cfg := base
	cfg.Fluid.MaxCfl = params.maxCfl

	solver, err := cfg.Build()
	if err != nil {
		return sweepResult{}, err
	}
	solver.Initialize()
	initialDensity := solver.TotalDensity()

	start := time.Now()
	totalSubSteps := 0
	steps := int(math.Ceil(duration / params.dt))
	for i := 0; i < steps; i++ {
		totalSubSteps += solver.SubSteps(params.dt)
		solver.Advance(params.dt)
	}

	drift := 0.0
	if initialDensity > 0 {
		drift = math.Abs(solver.TotalDensity()-initialDensity) / initialDensity
	}

	return sweepResult{
		params:        params,
		subSteps:      totalSubSteps,
		maxDivergence: solver.MaxDivergence(),
		densityDrift:  drift,
		elapsed:       time.Since(start),
	}, nil
}

func writeCSV(path string, results []sweepResult) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"dt", "max_cfl", "substeps", "max_divergence", "density_drift", "wall_seconds"}); err != nil {
		return err
	}
	for _, res := range results {
		record := []string{
			strconv.FormatFloat(res.params.dt, 'g', -1, 64),
			strconv.FormatFloat(res.params.maxCfl, 'g', -1, 64),
			strconv.Itoa(res.subSteps),
			strconv.FormatFloat(res.maxDivergence, 'e', 6, 64),
			strconv.FormatFloat(res.densityDrift, 'e', 6, 64),
			strconv.FormatFloat(res.elapsed.Seconds(), 'f', 3, 64),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// writePlot draws total sub-step count against the frame interval, one line
// per CFL limit.
func writePlot(path string, results []sweepResult, maxCflOptions []float64) error {
	p := plot.New()
	p.Title.Text = "Sub-steps per simulated run"
	p.X.Label.Text = "frame dt (s)"
	p.Y.Label.Text = "total sub-steps"

	palette := []color.RGBA{
		{R: 214, G: 69, B: 65, A: 255},
		{R: 65, G: 131, B: 215, A: 255},
		{R: 38, G: 166, B: 91, A: 255},
		{R: 243, G: 156, B: 18, A: 255},
	}

	for i, maxCfl := range maxCflOptions {
		var pts plotter.XYs
		for _, res := range results {
			if res.params.maxCfl == maxCfl {
				pts = append(pts, plotter.XY{X: res.params.dt, Y: float64(res.subSteps)})
			}
		}
		if len(pts) == 0 {
			continue
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return err
		}
		line.Color = palette[i%len(palette)]
		p.Add(line)
		p.Legend.Add(fmt.Sprintf("maxCfl=%g", maxCfl), line)
	}
	p.Legend.Top = true

	return p.Save(6*vg.Inch, 4*vg.Inch, path)
}
