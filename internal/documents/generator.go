package documents

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrBusy is returned when the same document is already being generated.
var ErrBusy = errors.New("document generation already in progress")

type Exporter interface {
	Export(doc Document) ([]byte, error)
}

type Notifier interface {
	Success(msg string)
	Error(msg string)
}

// Observer receives one call per finished generation.
type Observer interface {
	ObserveGeneration(kind string, elapsed time.Duration, err error)
}

// RenderFunc builds the document to export. It may fail, for example when
// the record behind it could not be loaded.
type RenderFunc func(ctx context.Context) (Document, error)

// Generator runs render+export under a per-key "generating" flag.
type Generator struct {
	exporter Exporter
	notifier Notifier
	observer Observer
	logger   *zap.Logger

	mu       sync.Mutex
	inFlight map[string]struct{}
}

// NewGenerator wires the export collaborator. notifier and observer may be nil.
func NewGenerator(exporter Exporter, notifier Notifier, observer Observer, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{
		exporter: exporter,
		notifier: notifier,
		observer: observer,
		logger:   logger,
		inFlight: make(map[string]struct{}),
	}
}

func (g *Generator) IsGenerating(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.inFlight[key]
	return ok
}

func (g *Generator) acquire(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.inFlight[key]; ok {
		return false
	}
	g.inFlight[key] = struct{}{}
	return true
}

func (g *Generator) release(key string) {
	g.mu.Lock()
	delete(g.inFlight, key)
	g.mu.Unlock()
}

// Generate renders and exports the document for key. On failure the error is
// reported once through the notifier and no bytes are returned. The flag for
// key is cleared on every exit path, including panics in render or export.
func (g *Generator) Generate(ctx context.Context, key, kind string, render RenderFunc) (out []byte, err error) {
	if !g.acquire(key) {
		return nil, ErrBusy
	}
	start := time.Now()
	defer g.release(key)
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("generate %s: panic: %v", kind, r)
			out = nil
		}
		if err != nil {
			out = nil
			g.logger.Error("document generation failed", zap.String("key", key), zap.String("kind", kind), zap.Error(err))
			if g.notifier != nil {
				g.notifier.Error("Failed to generate PDF: " + err.Error())
			}
		}
		if g.observer != nil {
			g.observer.ObserveGeneration(kind, time.Since(start), err)
		}
	}()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	doc, err := render(ctx)
	if err != nil {
		return nil, err
	}
	out, err = g.exporter.Export(doc)
	if err != nil {
		return nil, err
	}
	if g.notifier != nil {
		g.notifier.Success("PDF generated successfully")
	}
	return out, nil
}

// PrintWhenReady hands the exported bytes to ready only after render and
// export have both completed. ready is never called on failure.
func (g *Generator) PrintWhenReady(ctx context.Context, key, kind string, render RenderFunc, ready func([]byte) error) error {
	out, err := g.Generate(ctx, key, kind, render)
	if err != nil {
		return err
	}
	return ready(out)
}
