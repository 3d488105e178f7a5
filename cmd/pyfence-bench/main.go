package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"time"

	"github.com/pyfence-ai/pyfence/internal/config"
	"github.com/pyfence-ai/pyfence/internal/detector"
)

const defaultSample = `Some explanation first.
def fib(n):
    if n < 2:
        return n
    return fib(n - 1) + fib(n - 2)
And a closing remark after the code.
`

func main() {
	cfgPath := flag.String("config", "", "path to config yaml (optional, defaults apply)")
	filePath := flag.String("file", "", "file with the input to scan (defaults to a built-in sample)")
	mode := flag.String("mode", "text", "detection mode: text or json")
	n := flag.Int("n", 1000, "number of iterations")
	parallel := flag.Bool("parallel", false, "process JSON arrays in parallel")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	input := defaultSample
	if *filePath != "" {
		data, err := os.ReadFile(*filePath)
		if err != nil {
			log.Fatalf("read input file: %v", err)
		}
		input = string(data)
	}

	det, err := detector.New(cfg.Detector)
	if err != nil {
		log.Fatalf("build detector: %v", err)
	}

	run := func() error {
		var err error
		switch *mode {
		case "json":
			_, err = det.DetectJSON(context.Background(), input, "", "", *parallel)
		default:
			_, err = det.DetectText(context.Background(), input, "", "")
		}
		return err
	}

	// Warmup
	for i := 0; i < 5; i++ {
		if err := run(); err != nil {
			log.Fatalf("warmup failed: %v", err)
		}
	}

	if *n <= 0 {
		*n = 1
	}

	durations := make([]time.Duration, 0, *n)
	for i := 0; i < *n; i++ {
		start := time.Now()
		if err := run(); err != nil {
			log.Fatalf("detect failed: %v", err)
		}
		durations = append(durations, time.Since(start))
	}

	sort.Slice(durations, func(i, j int) bool { return durations[i] < durations[j] })

	var total time.Duration
	for _, d := range durations {
		total += d
	}

	ms := func(d time.Duration) float64 { return float64(d.Microseconds()) / 1000.0 }
	avg := ms(total) / float64(len(durations))
	p50 := ms(durations[len(durations)/2])
	p95 := ms(durations[int(float64(len(durations))*0.95)])
	p99 := ms(durations[int(float64(len(durations))*0.99)])

	fmt.Printf("bench: mode=%s n=%d input_bytes=%d avg_ms=%.3f p50_ms=%.3f p95_ms=%.3f p99_ms=%.3f\n",
		*mode, len(durations), len(input), avg, p50, p95, p99)
}
