package scanner

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/synqra/aurafx/internal/aura"
	"github.com/synqra/aurafx/internal/domain"
	"github.com/synqra/aurafx/internal/ports"
)

const (
	defaultInterval    = "15m"
	defaultCandleLimit = 200
)

// Config contiene la configuración del scanner.
type Config struct {
	ScanInterval time.Duration
	Symbols      []string
	Interval     string // intervalo de vela del proveedor, p.ej. "15m"
	CandleLimit  int
	Workers      int
	Filter       FilterConfig
	Engine       aura.Options
	DryRun       bool
}

// DefaultConfig devuelve una configuración sensata para producción.
func DefaultConfig() Config {
	return Config{
		ScanInterval: 60 * time.Second,
		Interval:     defaultInterval,
		CandleLimit:  defaultCandleLimit,
		Filter:       DefaultFilterConfig(),
	}
}

// Scanner es el orquestador principal del loop de evaluación.
type Scanner struct {
	cfg      Config
	candles  ports.CandleProvider
	storage  ports.Storage
	notifier ports.Notifier
	engine   *aura.Engine
	filter   *Filter
}

// New crea un Scanner con todas las dependencias inyectadas.
func New(
	cfg Config,
	candles ports.CandleProvider,
	storage ports.Storage,
	notifier ports.Notifier,
) *Scanner {
	if cfg.Interval == "" {
		cfg.Interval = defaultInterval
	}
	if cfg.CandleLimit <= 0 {
		cfg.CandleLimit = defaultCandleLimit
	}
	return &Scanner{
		cfg:      cfg,
		candles:  candles,
		storage:  storage,
		notifier: notifier,
		engine:   aura.New(cfg.Engine),
		filter:   NewFilter(cfg.Filter),
	}
}

// Run ejecuta el loop de evaluación hasta que el contexto se cancele.
// Si cfg.DryRun está activo, solo ejecuta un ciclo.
func (s *Scanner) Run(ctx context.Context) error {
	slog.Info("scanner starting",
		"interval", s.cfg.ScanInterval,
		"symbols", len(s.cfg.Symbols),
		"dry_run", s.cfg.DryRun,
	)

	if err := s.runCycle(ctx); err != nil {
		slog.Error("scan cycle failed", "err", err)
		if s.cfg.DryRun {
			return err
		}
	}

	if s.cfg.DryRun {
		return nil
	}

	ticker := time.NewTicker(s.cfg.ScanInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("scanner stopped")
			return nil
		case <-ticker.C:
			if err := s.runCycle(ctx); err != nil {
				slog.Error("scan cycle failed", "err", err)
			}
		}
	}
}

// RunOnce ejecuta exactamente un ciclo de evaluación y devuelve los snapshots.
func (s *Scanner) RunOnce(ctx context.Context) ([]domain.Snapshot, error) {
	return s.cycle(ctx)
}

// runCycle ejecuta un ciclo completo y notifica/persiste los resultados.
func (s *Scanner) runCycle(ctx context.Context) error {
	start := time.Now()

	snaps, err := s.cycle(ctx)
	if err != nil {
		return err
	}

	if err := s.notifier.Notify(ctx, snaps); err != nil {
		slog.Warn("notifier error", "err", err)
	}

	if s.storage != nil {
		if err := s.storage.SaveScan(ctx, snaps); err != nil {
			slog.Warn("storage error", "err", err)
		}
	}

	slog.Info("scan cycle complete",
		"snapshots", len(snaps),
		"duration", time.Since(start).Round(time.Millisecond),
	)
	return nil
}

// cycle hace fetch → evaluate → filter → rank y devuelve los snapshots.
func (s *Scanner) cycle(ctx context.Context) ([]domain.Snapshot, error) {
	snaps := evaluateSymbolsConcurrent(ctx, s.engine, s.candles, s.cfg)

	filtered := s.filter.Apply(snaps)
	ranked := rankByScore(filtered)
	return ranked, nil
}

// rankByScore ordena los snapshots por score de confluencia descendente,
// con el estado como desempate: VALID antes que FORMING antes que INVALID.
func rankByScore(snaps []domain.Snapshot) []domain.Snapshot {
	sort.Slice(snaps, func(i, j int) bool {
		if snaps[i].Setup.State != snaps[j].Setup.State {
			return stateRank(snaps[i].Setup.State) < stateRank(snaps[j].Setup.State)
		}
		return snaps[i].Confluence.OverallScore > snaps[j].Confluence.OverallScore
	})
	return snaps
}

func stateRank(s domain.SetupState) int {
	switch s {
	case domain.SetupValid:
		return 0
	case domain.SetupForming:
		return 1
	default:
		return 2
	}
}
