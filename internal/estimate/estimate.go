// Package estimate runs the headless bot-only duration-estimation harness:
// a batch of "cmd/simulate" subprocesses play out a game entirely with
// bots, and the spread of tick counts they report back is reduced to a
// single duration estimate.
package estimate

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"os/exec"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	sampleCount    = 10
	perRunTimeout  = 10 * time.Minute
	binaryPath     = "./simulate"
)

// simResult is the one-line JSON a cmd/simulate subprocess prints to stdout
// on completion.
type simResult struct {
	Ticks int    `json:"ticks"`
	Error string `json:"error,omitempty"`
}

// run tracks one in-flight or completed estimation batch.
type run struct {
	mu       sync.Mutex
	done     bool
	ticks    []int
	failures int
	median   int
	err      error
}

// Harness runs and tracks estimation batches; implements
// gameframework.Estimator.
type Harness struct {
	mu   sync.Mutex
	runs map[string]*run
}

func New() *Harness {
	return &Harness{runs: make(map[string]*run)}
}

// Start launches sampleCount subprocesses playing gameType to completion
// with botCount bots under optionsSnapshot, returning a run id to Poll.
func (h *Harness) Start(gameType string, optionsSnapshot map[string]any, botCount int) (string, error) {
	optionsJSON, err := json.Marshal(optionsSnapshot)
	if err != nil {
		return "", fmt.Errorf("marshal options: %w", err)
	}

	id := uuid.NewString()
	r := &run{}
	h.mu.Lock()
	h.runs[id] = r
	h.mu.Unlock()

	go h.runBatch(r, gameType, string(optionsJSON), botCount)
	return id, nil
}

func (h *Harness) runBatch(r *run, gameType, optionsJSON string, botCount int) {
	var wg sync.WaitGroup
	results := make(chan int, sampleCount)

	for i := 0; i < sampleCount; i++ {
		wg.Add(1)
		go func(seed int) {
			defer wg.Done()
			ticks, err := runOneSimulation(gameType, optionsJSON, botCount, seed)
			if err != nil {
				log.Printf("estimate: simulation run failed: %v", err)
				return
			}
			results <- ticks
		}(i)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	var ticks []int
	for t := range results {
		ticks = append(ticks, t)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.ticks = ticks
	r.failures = sampleCount - len(ticks)
	if len(ticks) == 0 {
		r.err = fmt.Errorf("every simulation run failed")
	} else {
		r.median = trimmedMedian(ticks)
	}
	r.done = true
}

func runOneSimulation(gameType, optionsJSON string, botCount, seed int) (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), perRunTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, binaryPath,
		"-game", gameType,
		"-options", optionsJSON,
		"-bots", fmt.Sprint(botCount),
		"-seed", fmt.Sprint(seed),
	)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return 0, err
	}
	if err := cmd.Start(); err != nil {
		return 0, err
	}

	scanner := bufio.NewScanner(stdout)
	var last simResult
	for scanner.Scan() {
		var r simResult
		if err := json.Unmarshal(scanner.Bytes(), &r); err == nil {
			last = r
		}
	}
	waitErr := cmd.Wait()
	if waitErr != nil {
		return 0, fmt.Errorf("simulate subprocess: %w", waitErr)
	}
	if last.Error != "" {
		return 0, fmt.Errorf("simulate subprocess reported: %s", last.Error)
	}
	return last.Ticks, nil
}

// trimmedMedian discards samples outside 1.5*IQR of the sample and returns
// the median of what remains, so one hung or pathological bot-vs-bot game
// doesn't skew the estimate.
func trimmedMedian(samples []int) int {
	sorted := append([]int(nil), samples...)
	sort.Ints(sorted)
	if len(sorted) < 4 {
		return sorted[len(sorted)/2]
	}

	q1 := percentile(sorted, 0.25)
	q3 := percentile(sorted, 0.75)
	iqr := q3 - q1
	lo := q1 - 1.5*iqr
	hi := q3 + 1.5*iqr

	var kept []int
	for _, v := range sorted {
		if float64(v) >= lo && float64(v) <= hi {
			kept = append(kept, v)
		}
	}
	if len(kept) == 0 {
		kept = sorted
	}
	return kept[len(kept)/2]
}

func percentile(sorted []int, p float64) float64 {
	if len(sorted) == 1 {
		return float64(sorted[0])
	}
	idx := p * float64(len(sorted)-1)
	lo := int(math.Floor(idx))
	hi := int(math.Ceil(idx))
	if lo == hi {
		return float64(sorted[lo])
	}
	frac := idx - float64(lo)
	return float64(sorted[lo])*(1-frac) + float64(sorted[hi])*frac
}

// Poll reports whether the batch has finished and, if so, its trimmed
// median tick count.
func (h *Harness) Poll(runID string) (done bool, medianTicks int, err error) {
	h.mu.Lock()
	r, ok := h.runs[runID]
	h.mu.Unlock()
	if !ok {
		return true, 0, fmt.Errorf("unknown estimation run %q", runID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.done {
		return false, 0, nil
	}

	h.mu.Lock()
	delete(h.runs, runID)
	h.mu.Unlock()

	return true, r.median, r.err
}
