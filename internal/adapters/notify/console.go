package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/synqra/aurafx/internal/domain"
)

// Console implementa ports.Notifier.
type Console struct {
	out   io.Writer
	table bool
}

// NewConsole crea un notificador que escribe a stdout.
func NewConsole(table bool) *Console {
	return &Console{out: os.Stdout, table: table}
}

// NewConsoleWriter crea un notificador para tests.
func NewConsoleWriter(w io.Writer, table bool) *Console {
	return &Console{out: w, table: table}
}

// Notify imprime el output en el modo configurado.
func (c *Console) Notify(_ context.Context, snapshots []domain.Snapshot) error {
	if len(snapshots) == 0 {
		fmt.Fprintf(c.out, "[%s] no setups found\n", time.Now().Format("15:04:05"))
		return nil
	}

	if c.table {
		c.printFull(snapshots)
	} else {
		c.printCompact(snapshots)
	}
	return nil
}

// printCompact imprime lo esencial en una línea.
func (c *Console) printCompact(snaps []domain.Snapshot) {
	now := time.Now().Format("15:04:05")
	valid, forming, invalid := countByState(snaps)

	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] %d symbols → V:%d F:%d I:%d", now, len(snaps), valid, forming, invalid)

	shown := 0
	for _, snap := range snaps {
		if shown >= 4 {
			break
		}
		if snap.Setup.State == domain.SetupInvalid {
			continue
		}

		bos, choch := snap.EventCounts()
		fmt.Fprintf(&sb, " | %s %s %s score %.2f bos:%d choch:%d",
			stateIcon(snap.Setup.State), snap.Symbol,
			snap.Confluence.PrimaryBias, snap.Confluence.OverallScore,
			bos, choch)
		if snap.Risk != nil {
			fmt.Fprintf(&sb, " R%.1f", snap.Risk.RMultiple)
		}
		shown++
	}

	fmt.Fprintln(c.out, sb.String())
}

// printFull imprime la tabla completa con el desglose por símbolo.
func (c *Console) printFull(snaps []domain.Snapshot) {
	now := time.Now().Format("15:04:05")
	valid, forming, invalid := countByState(snaps)

	fmt.Fprintf(c.out, "\n[%s] %d evaluations — V:%d F:%d I:%d\n",
		now, len(snaps), valid, forming, invalid)

	table := tablewriter.NewWriter(c.out)
	table.Header("#", "State", "Symbol", "Trend", "Bias", "Score", "Conf", "BOS", "CHOCH", "Kz", "Regime", "R", "Reason")

	for i, snap := range snaps {
		bos, choch := snap.EventCounts()

		rLabel := "-"
		if snap.Risk != nil {
			rLabel = fmt.Sprintf("%.2f", snap.Risk.RMultiple)
		}

		table.Append(
			fmt.Sprintf("%d", i+1),
			stateIcon(snap.Setup.State)+" "+snap.Setup.State.String(),
			snap.Symbol,
			fmt.Sprintf("%s %+.2f%%", snap.Trend.Direction, snap.Trend.ChangePct),
			snap.Confluence.PrimaryBias.String(),
			fmt.Sprintf("%.2f", snap.Confluence.OverallScore),
			fmt.Sprintf("%.2f", snap.Setup.Confidence),
			fmt.Sprintf("%d", bos),
			fmt.Sprintf("%d", choch),
			snap.Session.Killzone.String(),
			snap.Regime.State.String(),
			rLabel,
			snap.Setup.Reason,
		)
	}

	table.Render()

	fmt.Fprintln(c.out, "  Score = confluencia ponderada | Bias NO_TRADE = setup sin validar")
}

// stateIcon devuelve el icono del estado para el output compacto.
func stateIcon(s domain.SetupState) string {
	switch s {
	case domain.SetupValid:
		return "✅"
	case domain.SetupInvalid:
		return "❌"
	default:
		return "⏳"
	}
}

func countByState(snaps []domain.Snapshot) (valid, forming, invalid int) {
	for _, snap := range snaps {
		switch snap.Setup.State {
		case domain.SetupValid:
			valid++
		case domain.SetupForming:
			forming++
		default:
			invalid++
		}
	}
	return valid, forming, invalid
}
