package scanner

// concurrent.go — worker pool para evaluación paralela de símbolos.
//
// Cada símbolo necesita su propio fetch de velas + evaluación del engine;
// con varios símbolos configurados, paralelizar recorta el ciclo de
// segundos a fracciones. El rate limiter del proveedor sigue mandando:
// los workers comparten el mismo client.

import (
	"context"
	"log/slog"
	"runtime"
	"sync"

	"github.com/synqra/aurafx/internal/aura"
	"github.com/synqra/aurafx/internal/domain"
	"github.com/synqra/aurafx/internal/ports"
)

// evaluateSymbolsConcurrent evalúa todos los símbolos en paralelo usando un
// worker pool. Si workers <= 0 usa runtime.NumCPU() × 2.
func evaluateSymbolsConcurrent(
	ctx context.Context,
	engine *aura.Engine,
	provider ports.CandleProvider,
	cfg Config,
) []domain.Snapshot {
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU() * 2
	}
	if workers > len(cfg.Symbols) {
		workers = len(cfg.Symbols)
	}

	workCh := make(chan string, len(cfg.Symbols))
	resultCh := make(chan domain.Snapshot, len(cfg.Symbols))

	// Worker pool: cada worker toma símbolos de workCh y envía snapshots a resultCh.
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for symbol := range workCh {
				candles, err := provider.FetchCandles(ctx, symbol, cfg.Interval, cfg.CandleLimit)
				if err != nil {
					slog.Debug("fetch candles failed", "symbol", symbol, "err", err)
					continue
				}

				snap, err := engine.Evaluate(aura.Input{Symbol: symbol, Candles: candles})
				if err != nil {
					slog.Debug("evaluate failed", "symbol", symbol, "err", err)
					continue
				}
				resultCh <- snap
			}
		}()
	}

	for _, symbol := range cfg.Symbols {
		workCh <- symbol
	}
	close(workCh)

	// Cerrar resultCh cuando todos los workers terminen.
	go func() {
		wg.Wait()
		close(resultCh)
	}()

	snaps := make([]domain.Snapshot, 0, len(cfg.Symbols))
	for snap := range resultCh {
		snaps = append(snaps, snap)
	}

	slog.Debug("concurrent evaluation complete",
		"symbols_queued", len(cfg.Symbols),
		"snapshots", len(snaps),
		"workers", workers,
	)

	return snaps
}
