// Command motiondemo runs a scenario of tweens, writes them into properties and
// traces every event as JSON lines on stdout.
//
// Usage:
//
//	motiondemo [-config scenario.yaml] [-timeout 30s]
package main

import (
	"context"
	"flag"
	"io"
	"log"
	"math/rand/v2"
	"os"
	"sync"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/neox5/motion/clock"
	"github.com/neox5/motion/fanout"
	"github.com/neox5/motion/internal/config"
	"github.com/neox5/motion/observable"
	"github.com/neox5/motion/property"
	"github.com/neox5/motion/seed"
	"github.com/neox5/motion/source"
	"github.com/neox5/motion/trace"
	"github.com/neox5/motion/value"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("motiondemo: ")

	configPath := flag.String("config", "", "scenario YAML file (built-in scenario when empty)")
	timeout := flag.Duration("timeout", 30*time.Second, "give up if the scenario has not come to rest by then")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			log.Fatal(err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if err := run(ctx, cfg, os.Stdout); err != nil {
		log.Fatal(err)
	}
}

// lockedWriter serializes whole-line writes from several tracers.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

type animation struct {
	cfg     config.AnimationConfig
	clk     *clock.PeriodicClock
	stream  observable.Observable[float64]
	views   []*value.Value[float64]
	tracer  *trace.Tracer[float64]
	bridge  *fanout.Bridge[float64]
	traced  *fanout.Reader[float64]
	waited  *fanout.Reader[float64]
	cleanup []observable.Disconnect
}

func run(ctx context.Context, cfg *config.Config, stdout io.Writer) error {
	rngs := seed.NewRegistry(cfg.Seed)
	out := &lockedWriter{w: stdout}
	interval := time.Duration(cfg.FrameInterval)

	rest := make(chan struct{}, 1)
	agg := property.NewAggregator().OnStateChange(func(s observable.State) {
		if s == observable.AtRest {
			select {
			case rest <- struct{}{}:
			default:
			}
		}
	})
	defer agg.Stop()

	anims := make([]*animation, 0, len(cfg.Animations))
	for _, ac := range cfg.Animations {
		a := setup(ac, interval, agg, out)
		defer a.close()
		if cfg.Jitter > 0 {
			a.addJitter(interval, cfg.Jitter, rngs.NewRand(), out)
		}
		anims = append(anims, a)
	}

	// Clocks start only once every subscriber is attached, so no stream can
	// come to rest before the others have joined.
	for _, a := range anims {
		a.clk.Start()
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, a := range anims {
		g.Go(func() error {
			return a.trace(gctx)
		})
		g.Go(func() error {
			last, err := fanout.WaitAtRest(gctx, a.waited)
			if err != nil {
				return errors.Wrapf(err, "animation %q", a.cfg.Name)
			}
			log.Printf("%s: at rest at %g", a.cfg.Name, last)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	// Cold streams run one driver per subscriber on a shared clock, so views
	// can trail the traced driver.
	if agg.Active() {
		select {
		case <-rest:
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), "waiting for views to come to rest")
		}
	}

	for _, a := range anims {
		for i, v := range a.views {
			stats := v.Stats()
			log.Printf("%s view %d: value=%g writes=%d", a.cfg.Name, i, stats.CurrentValue, stats.WriteCount)
		}
		if err := a.tracer.Err(); err != nil {
			return errors.Wrapf(err, "tracing %q", a.cfg.Name)
		}
	}
	return nil
}

func setup(ac config.AnimationConfig, interval time.Duration, agg *property.Aggregator, out io.Writer) *animation {
	a := &animation{
		cfg: ac,
		clk: clock.NewPeriodicClock(interval),
	}

	var opts []source.TweenOption
	if ac.Easing == "ease-in-out" {
		opts = append(opts, source.WithEasing(source.EaseInOutQuad))
	}
	a.stream = source.Tween(a.clk, ac.From, ac.To, ac.Frames, opts...)
	if ac.Multicast {
		a.stream = observable.Multicast(a.stream)
	}

	a.tracer = trace.New(out, ac.Name, trace.Float64)

	for range ac.Subscribers {
		v := value.New(ac.From)
		property.Write(agg, a.stream, v)
		a.views = append(a.views, v)
	}

	// The tracer and the rest detector share the bridge's subscription, so in
	// cold mode they follow the same driver.
	a.bridge = fanout.New(a.stream)
	a.traced = a.bridge.Reader()
	a.waited = a.bridge.Reader()
	a.bridge.Start()

	log.Printf("%s: %d subscribers, multicast=%t", ac.Name, ac.Subscribers, ac.Multicast)
	return a
}

// addJitter attaches a random wobble stream on its own clock. It never comes
// to rest on its own and is stopped with the animation.
func (a *animation) addJitter(interval time.Duration, amount float64, rng *rand.Rand, out io.Writer) {
	clk := clock.NewPeriodicClock(interval)
	wobble := value.New(0.0)
	stream := source.Jitter(clk, rng, -amount, amount)

	a.cleanup = append(a.cleanup,
		observable.SubscribeNext(stream, wobble.Write),
		stream.Subscribe(trace.New(out, a.cfg.Name+".jitter", trace.Float64)),
		clk.Stop,
	)
	clk.Start()
}

// trace copies bridge events to the tracer until the stream comes to rest.
func (a *animation) trace(ctx context.Context) error {
	for {
		e, ok := a.traced.Read(ctx)
		if !ok {
			if err := ctx.Err(); err != nil {
				return errors.Wrapf(err, "tracing %q", a.cfg.Name)
			}
			return fanout.ErrClosed
		}
		e.Deliver(a.tracer)
		if e.Kind == observable.StateEvent && e.State == observable.AtRest {
			return nil
		}
	}
}

func (a *animation) close() {
	a.bridge.Close()
	for _, d := range a.cleanup {
		d()
	}
	a.clk.Stop()
}
