package stats

import (
	"fmt"
	"math"
	"sync"
	"testing"
)

func TestZScore_ColdWindow(t *testing.T) {
	e := NewEngine(DefaultConfig())

	// Fewer than 10 observations: always exactly 0.
	for i := 0; i < 9; i++ {
		e.Observe("0xm", float64(i*1000))
	}
	if z := e.ZScore(StreamGlobal, 50000); z != 0 {
		t.Errorf("ZScore on cold window = %f, want 0", z)
	}
	if z := e.ZScore("0xm", 50000); z != 0 {
		t.Errorf("market ZScore on cold window = %f, want 0", z)
	}
}

func TestZScore_ConstantWindow(t *testing.T) {
	e := NewEngine(DefaultConfig())

	for i := 0; i < 100; i++ {
		e.Observe("0xm", 42)
	}
	if z := e.ZScore(StreamGlobal, 42); z != 0 {
		t.Errorf("ZScore on constant window = %f, want 0", z)
	}
	if z := e.ZScore(StreamGlobal, 99999); z != 0 {
		t.Errorf("ZScore on constant window = %f, want 0", z)
	}
}

func TestZScore_PopulationStddev(t *testing.T) {
	e := NewEngine(DefaultConfig())

	// Ten observations: five 100s and five 300s. Mean 200, population
	// stddev 100.
	for i := 0; i < 5; i++ {
		e.Observe("0xm", 100)
		e.Observe("0xm", 300)
	}

	z := e.ZScore(StreamGlobal, 400)
	if math.Abs(z-2.0) > 1e-9 {
		t.Errorf("ZScore(400) = %f, want 2.0", z)
	}

	z = e.ZScore(StreamGlobal, 100)
	if math.Abs(z-(-1.0)) > 1e-9 {
		t.Errorf("ZScore(100) = %f, want -1.0", z)
	}
}

func TestPercentile(t *testing.T) {
	e := NewEngine(DefaultConfig())

	// Empty window: 50.
	if p := e.Percentile(StreamGlobal, 10); p != 50 {
		t.Errorf("Percentile on empty window = %f, want 50", p)
	}
	if p := e.Percentile("0xnever", 10); p != 50 {
		t.Errorf("Percentile on missing market = %f, want 50", p)
	}

	e.Observe("0xm", 10)
	e.Observe("0xm", 20)
	e.Observe("0xm", 30)

	// First index with value >= 25 is 2 (the 30), so 100*2/3.
	p := e.Percentile(StreamGlobal, 25)
	if math.Abs(p-200.0/3.0) > 1e-9 {
		t.Errorf("Percentile(25) = %f, want %f", p, 200.0/3.0)
	}

	// Larger than everything: 100.
	if p := e.Percentile(StreamGlobal, 1000); p != 100 {
		t.Errorf("Percentile(1000) = %f, want 100", p)
	}

	// Smaller than everything: 0.
	if p := e.Percentile(StreamGlobal, 1); p != 0 {
		t.Errorf("Percentile(1) = %f, want 0", p)
	}
}

func TestObserve_MarketWindowEviction(t *testing.T) {
	e := NewEngine(Config{GlobalWindow: 5000, MarketWindow: 500, MinSamples: 10})

	for i := 0; i < 600; i++ {
		e.Observe("0xm", float64(i))
	}

	if got := e.Len("0xm"); got != 500 {
		t.Fatalf("market window length = %d, want 500", got)
	}

	// Oldest 100 evicted: values 100..599 remain, in insertion order,
	// so anything below 100 ranks at percentile 0.
	if p := e.Percentile("0xm", 99); p != 0 {
		t.Errorf("Percentile(99) = %f, want 0 after eviction", p)
	}
	if p := e.Percentile("0xm", 600); p != 100 {
		t.Errorf("Percentile(600) = %f, want 100", p)
	}
}

func TestObserve_GlobalWindowBound(t *testing.T) {
	e := NewEngine(Config{GlobalWindow: 5000, MarketWindow: 500, MinSamples: 10})

	for i := 0; i < 6000; i++ {
		e.Observe(fmt.Sprintf("0xm%d", i%7), float64(i))
	}

	if got := e.Len(StreamGlobal); got != 5000 {
		t.Errorf("global window length = %d, want 5000", got)
	}
	if got := e.MarketCount(); got != 7 {
		t.Errorf("MarketCount = %d, want 7", got)
	}
}

func TestEngine_ConcurrentObservers(t *testing.T) {
	e := NewEngine(DefaultConfig())

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			market := fmt.Sprintf("0xm%d", g%4)
			for i := 0; i < 500; i++ {
				e.Observe(market, float64(i))
				e.ZScore(market, float64(i))
				e.Percentile(StreamGlobal, float64(i))
			}
		}(g)
	}
	wg.Wait()

	if got := e.Len(StreamGlobal); got != 4000 {
		t.Errorf("global window length = %d, want 4000", got)
	}
}
