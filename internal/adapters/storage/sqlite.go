package storage

// sqlite.go — histórico de evaluaciones, eficiente y sin ruido.
//
// Estrategia:
//   - `cycles`: resumen ligero por ciclo (valid/forming count, best score). Siempre 1 fila.
//   - `evaluations`: UNA fila por símbolo (UPSERT). Solo VALID y FORMING.
//     INVALID no se persiste — no aporta señal útil como histórico.
//   - Cache en memoria: evita writes si el estado no cambió (> 5% en score,
//     o cambio de estado/bias). En un ciclo normal la mayoría de símbolos
//     no cambia → reducción fuerte de escrituras a disco.
//   - Prune automático al arrancar: cycles > 30d, evaluations no vistas en 14d.
//
// El histórico es solo para el operador: nunca realimenta al engine, que
// evalúa cada ventana desde cero.

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/synqra/aurafx/internal/domain"
)

const schema = `
-- Resumen ligero por ciclo de evaluación
CREATE TABLE IF NOT EXISTS cycles (
    id         TEXT PRIMARY KEY,
    scanned_at DATETIME NOT NULL,
    total      INTEGER  NOT NULL DEFAULT 0,
    valid      INTEGER  NOT NULL DEFAULT 0,
    forming    INTEGER  NOT NULL DEFAULT 0,
    best_score REAL     NOT NULL DEFAULT 0
);

-- Una fila por símbolo VALID/FORMING, sin duplicados
CREATE TABLE IF NOT EXISTS evaluations (
    symbol        TEXT PRIMARY KEY,
    state         TEXT    NOT NULL,
    bias          TEXT    NOT NULL,
    score         REAL    NOT NULL DEFAULT 0,
    confidence    REAL    NOT NULL DEFAULT 0,
    reason        TEXT,
    trend         TEXT    NOT NULL,
    trend_pct     REAL    NOT NULL DEFAULT 0,
    bos_events    INTEGER NOT NULL DEFAULT 0,
    choch_events  INTEGER NOT NULL DEFAULT 0,
    killzone      TEXT,
    regime        TEXT,
    last_close    REAL    NOT NULL DEFAULT 0,
    r_multiple    REAL    NOT NULL DEFAULT 0,
    position_size REAL    NOT NULL DEFAULT 0,
    first_seen    DATETIME NOT NULL,
    last_seen     DATETIME NOT NULL,
    peak_score    REAL    NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_cycles_at   ON cycles(scanned_at DESC);
CREATE INDEX IF NOT EXISTS idx_eval_state  ON evaluations(state);
CREATE INDEX IF NOT EXISTS idx_eval_last   ON evaluations(last_seen DESC);
CREATE INDEX IF NOT EXISTS idx_eval_score  ON evaluations(score DESC);
`

const (
	retentionCycles = 30 * 24 * time.Hour // ciclos: 30 días
	retentionEvals  = 14 * 24 * time.Hour // evaluaciones: 14 días
	scoreChangePct  = 0.05                // 5% de cambio en score → reescribir
)

// cachedState es el snapshot del último estado guardado de un símbolo.
type cachedState struct {
	state string
	bias  string
	score float64
}

// SQLiteStorage implementa ports.Storage usando SQLite (pure Go, sin CGo).
type SQLiteStorage struct {
	db    *sql.DB
	cache map[string]cachedState // symbol → estado guardado
	mu    sync.Mutex
}

// NewSQLiteStorage abre (o crea) la base de datos en la ruta dada.
// Aplica el schema, limpia datos antiguos y precarga la cache.
func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteStorage: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteStorage: apply schema: %w", err)
	}

	s := &SQLiteStorage{
		db:    db,
		cache: make(map[string]cachedState),
	}
	s.pruneOld(context.Background())
	s.warmCache(context.Background())
	return s, nil
}

// SaveScan persiste el resumen del ciclo y hace upsert de los snapshots
// VALID/FORMING que cambiaron respecto al ciclo anterior (usando caché).
func (s *SQLiteStorage) SaveScan(ctx context.Context, snapshots []domain.Snapshot) error {
	if len(snapshots) == 0 {
		return nil
	}

	now := time.Now().UTC()

	// 1. Resumen del ciclo — siempre una fila, pesa poco
	valid, forming, bestScore := cycleSummary(snapshots)
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO cycles (id, scanned_at, total, valid, forming, best_score) VALUES (?, ?, ?, ?, ?, ?)`,
		uuid.New().String(), now, len(snapshots), valid, forming, bestScore,
	); err != nil {
		return fmt.Errorf("storage.SaveScan: insert cycle: %w", err)
	}

	// 2. Upsert de VALID/FORMING que cambiaron
	toWrite := s.filterChanged(snapshots)
	if len(toWrite) == 0 {
		return nil // nada nuevo — la gran mayoría de ciclos terminan aquí
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage.SaveScan: begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO evaluations
			(symbol, state, bias, score, confidence, reason, trend, trend_pct,
			 bos_events, choch_events, killzone, regime, last_close,
			 r_multiple, position_size, first_seen, last_seen, peak_score)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(symbol) DO UPDATE SET
			state         = excluded.state,
			bias          = excluded.bias,
			score         = excluded.score,
			confidence    = excluded.confidence,
			reason        = excluded.reason,
			trend         = excluded.trend,
			trend_pct     = excluded.trend_pct,
			bos_events    = excluded.bos_events,
			choch_events  = excluded.choch_events,
			killzone      = excluded.killzone,
			regime        = excluded.regime,
			last_close    = excluded.last_close,
			r_multiple    = excluded.r_multiple,
			position_size = excluded.position_size,
			last_seen     = excluded.last_seen,
			peak_score    = MAX(peak_score, excluded.score)
	`)
	if err != nil {
		return fmt.Errorf("storage.SaveScan: prepare: %w", err)
	}
	defer stmt.Close()

	for _, snap := range toWrite {
		bos, choch := snap.EventCounts()

		var rMultiple, positionSize float64
		if snap.Risk != nil {
			rMultiple = snap.Risk.RMultiple
			positionSize = snap.Risk.PositionSize
		}

		if _, err := stmt.ExecContext(ctx,
			snap.Symbol,
			snap.Setup.State.String(),
			snap.Confluence.PrimaryBias.String(),
			snap.Confluence.OverallScore,
			snap.Setup.Confidence,
			snap.Setup.Reason,
			snap.Trend.Direction.String(),
			snap.Trend.ChangePct,
			bos,
			choch,
			snap.Session.Killzone.String(),
			snap.Regime.State.String(),
			snap.LastClose,
			rMultiple,
			positionSize,
			now, // first_seen: ignorado en ON CONFLICT (no se sobreescribe)
			now, // last_seen
			snap.Confluence.OverallScore,
		); err != nil {
			return fmt.Errorf("storage.SaveScan: upsert %s: %w", snap.Symbol, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage.SaveScan: commit: %w", err)
	}
	return nil
}

// GetHistory devuelve snapshots VALID/FORMING cuyo last_seen está en el rango
// dado, ordenados por score desc. Es una reconstrucción parcial: solo los
// campos persistidos; estructura y zonas no se guardan.
func (s *SQLiteStorage) GetHistory(ctx context.Context, from, to time.Time) ([]domain.Snapshot, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT symbol, state, bias, score, confidence, reason,
		       trend, trend_pct, killzone, regime, last_close,
		       r_multiple, position_size, last_seen
		FROM evaluations
		WHERE last_seen BETWEEN ? AND ?
		ORDER BY score DESC
	`, from.UTC(), to.UTC())
	if err != nil {
		return nil, fmt.Errorf("storage.GetHistory: query: %w", err)
	}
	defer rows.Close()

	var snaps []domain.Snapshot
	for rows.Next() {
		var snap domain.Snapshot
		var state, bias, trend, killzone, regime, lastSeen string
		var rMultiple, positionSize float64

		if err := rows.Scan(
			&snap.Symbol,
			&state,
			&bias,
			&snap.Confluence.OverallScore,
			&snap.Setup.Confidence,
			&snap.Setup.Reason,
			&trend,
			&snap.Trend.ChangePct,
			&killzone,
			&regime,
			&snap.LastClose,
			&rMultiple,
			&positionSize,
			&lastSeen,
		); err != nil {
			return nil, fmt.Errorf("storage.GetHistory: scan row: %w", err)
		}

		snap.Setup.State = parseState(state)
		snap.Confluence.PrimaryBias = parseBias(bias)
		snap.Trend.Direction = parseDirection(trend)
		snap.EvaluatedAt, _ = time.Parse(time.RFC3339, lastSeen)
		if rMultiple > 0 {
			snap.Risk = &domain.RiskSizing{RMultiple: rMultiple, PositionSize: positionSize}
		}
		snaps = append(snaps, snap)
	}
	return snaps, rows.Err()
}

// Close cierra la base de datos.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// filterChanged devuelve los snapshots VALID/FORMING cuyo estado difiere de
// lo último persistido, y actualiza la caché.
func (s *SQLiteStorage) filterChanged(snapshots []domain.Snapshot) []domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.Snapshot
	for _, snap := range snapshots {
		if snap.Setup.State == domain.SetupInvalid {
			continue
		}

		next := cachedState{
			state: snap.Setup.State.String(),
			bias:  snap.Confluence.PrimaryBias.String(),
			score: snap.Confluence.OverallScore,
		}

		prev, seen := s.cache[snap.Symbol]
		if seen && prev.state == next.state && prev.bias == next.bias && !scoreChanged(prev.score, next.score) {
			continue
		}

		s.cache[snap.Symbol] = next
		out = append(out, snap)
	}
	return out
}

// scoreChanged: cambio relativo mayor al umbral configurado.
func scoreChanged(prev, next float64) bool {
	if prev == 0 {
		return next != 0
	}
	return math.Abs(next-prev)/math.Abs(prev) > scoreChangePct
}

// warmCache precarga el último estado persistido de cada símbolo.
func (s *SQLiteStorage) warmCache(ctx context.Context) {
	rows, err := s.db.QueryContext(ctx, `SELECT symbol, state, bias, score FROM evaluations`)
	if err != nil {
		return
	}
	defer rows.Close()

	s.mu.Lock()
	defer s.mu.Unlock()
	for rows.Next() {
		var symbol string
		var st cachedState
		if err := rows.Scan(&symbol, &st.state, &st.bias, &st.score); err != nil {
			continue
		}
		s.cache[symbol] = st
	}
}

// pruneOld borra ciclos y evaluaciones fuera de la ventana de retención.
func (s *SQLiteStorage) pruneOld(ctx context.Context) {
	now := time.Now().UTC()
	s.db.ExecContext(ctx, `DELETE FROM cycles WHERE scanned_at < ?`, now.Add(-retentionCycles))
	s.db.ExecContext(ctx, `DELETE FROM evaluations WHERE last_seen < ?`, now.Add(-retentionEvals))
}

// cycleSummary cuenta VALID/FORMING y el mejor score del ciclo.
func cycleSummary(snapshots []domain.Snapshot) (valid, forming int, bestScore float64) {
	for _, snap := range snapshots {
		switch snap.Setup.State {
		case domain.SetupValid:
			valid++
		case domain.SetupForming:
			forming++
		}
		if snap.Confluence.OverallScore > bestScore {
			bestScore = snap.Confluence.OverallScore
		}
	}
	return valid, forming, bestScore
}

func parseState(s string) domain.SetupState {
	switch s {
	case "VALID":
		return domain.SetupValid
	case "INVALID":
		return domain.SetupInvalid
	default:
		return domain.SetupForming
	}
}

func parseBias(s string) domain.Bias {
	switch s {
	case "BULLISH":
		return domain.BiasBullish
	case "BEARISH":
		return domain.BiasBearish
	default:
		return domain.BiasNoTrade
	}
}

func parseDirection(s string) domain.Direction {
	switch s {
	case "BULLISH":
		return domain.DirectionBullish
	case "BEARISH":
		return domain.DirectionBearish
	default:
		return domain.DirectionRange
	}
}
