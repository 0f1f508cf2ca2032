package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/neox5/motion/internal/config"
)

// syncBuffer tolerates jitter streams that are still winding down when run returns.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return bytes.Clone(b.buf.Bytes())
}

func TestRun(t *testing.T) {
	cfg := &config.Config{
		Seed:          3,
		FrameInterval: config.Duration(time.Millisecond),
		Jitter:        1,
		Animations: []config.AnimationConfig{
			{Name: "shared", From: 0, To: 1, Frames: 3, Subscribers: 3, Multicast: true},
			{Name: "cold", From: 10, To: 0, Frames: 3, Subscribers: 2, Easing: "ease-in-out"},
		},
	}
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	out := &syncBuffer{}
	if err := run(ctx, cfg, out); err != nil {
		t.Fatalf("run: %v", err)
	}

	final := map[string]float64{}
	rested := map[string]bool{}
	sc := bufio.NewScanner(bytes.NewReader(out.Bytes()))
	for sc.Scan() {
		var line struct {
			Stream string   `json:"stream"`
			Kind   string   `json:"kind"`
			Value  *float64 `json:"value"`
			State  string   `json:"state"`
		}
		if err := json.Unmarshal(sc.Bytes(), &line); err != nil {
			t.Fatalf("bad trace line %q: %v", sc.Text(), err)
		}
		if line.Kind == "next" && line.Value != nil {
			final[line.Stream] = *line.Value
		}
		if line.Kind == "state" && line.State == "at_rest" {
			rested[line.Stream] = true
		}
	}

	if final["shared"] != 1 || !rested["shared"] {
		t.Errorf("shared: final=%v rested=%v", final["shared"], rested["shared"])
	}
	if final["cold"] != 0 || !rested["cold"] {
		t.Errorf("cold: final=%v rested=%v", final["cold"], rested["cold"])
	}
}

func TestRun_Repeatable(t *testing.T) {
	cfg := &config.Config{
		Seed:          7,
		FrameInterval: config.Duration(time.Millisecond),
		Jitter:        0.5,
		Animations: []config.AnimationConfig{
			{Name: "fade", From: 0, To: 1, Frames: 2, Subscribers: 1, Multicast: true},
		},
	}

	for i := range 2 {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err := run(ctx, cfg, &syncBuffer{})
		cancel()
		if err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
	}
}
