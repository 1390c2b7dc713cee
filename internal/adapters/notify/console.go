package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/alejandrodnm/putscan/internal/domain"
)

// Console implementa ports.Notifier imprimiendo una tabla en stdout.
type Console struct {
	out io.Writer
}

// NewConsole crea un notificador que escribe a stdout.
func NewConsole() *Console {
	return &Console{out: os.Stdout}
}

// NewConsoleWriter crea un notificador para tests.
func NewConsoleWriter(w io.Writer) *Console {
	return &Console{out: w}
}

// Notify imprime el snapshot y las filas supervivientes.
func (c *Console) Notify(_ context.Context, snap domain.ChainSnapshot, criteria domain.CriteriaSelection, rows []domain.Row) error {
	now := time.Now().Format("15:04:05")
	fmt.Fprintf(c.out, "\n[%s] %s $%.2f — basis=%s minReturn=%.1f%% minSafety=%.1f%% otm=%v — %d candidates\n",
		now,
		snap.Quote.Ticker,
		snap.Quote.CurrentPrice,
		criteria.PriceBasis,
		criteria.MinAnnualizedReturnPct,
		criteria.MinSafetyMarginPct,
		criteria.OTMOnly,
		len(rows),
	)

	for _, skipped := range snap.Skipped {
		fmt.Fprintf(c.out, "  ! expiration %s skipped: %v\n",
			skipped.Expiration.Format("2006-01-02"), skipped.Err)
	}

	if len(rows) == 0 {
		fmt.Fprintf(c.out, "  no contracts matched — try switching the price basis (e.g. last) or lowering the return threshold\n")
		return nil
	}

	c.printTable(rows)
	return nil
}

// printTable imprime las filas con el schema externo.
func (c *Console) printTable(rows []domain.Row) {
	table := tablewriter.NewWriter(c.out)
	table.Header("Expiration", "DTE", "Strike", "Premium", "Ann.Return %", "Safety %", "BreakEven", "Volume", "OpenInt")

	for _, r := range rows {
		table.Append(
			r.Expiration,
			fmt.Sprintf("%d", r.DTE),
			fmt.Sprintf("%.2f", r.Strike),
			fmt.Sprintf("%.2f", r.Premium),
			fmt.Sprintf("%.2f", r.AnnualizedReturnPct),
			fmt.Sprintf("%.2f", r.SafetyMarginPct),
			fmt.Sprintf("%.2f", r.BreakEven),
			fmt.Sprintf("%d", r.Volume),
			fmt.Sprintf("%d", r.OpenInterest),
		)
	}

	table.Render()
}

// PrintError imprime un error del pipeline con la guía que corresponde a su
// kind. Nunca inspecciona el texto del error.
func (c *Console) PrintError(err error) {
	if kind, ok := domain.KindOf(err); ok {
		fmt.Fprintf(c.out, "error: %v\n  hint: %s\n", err, kind.Guidance())
		return
	}
	fmt.Fprintf(c.out, "error: %v\n", err)
}

// PrintHistory imprime los screenings persistidos, del más reciente al más
// antiguo.
func (c *Console) PrintHistory(summaries []domain.ScanSummary) {
	if len(summaries) == 0 {
		fmt.Fprintln(c.out, "  no scan history yet")
		return
	}

	table := tablewriter.NewWriter(c.out)
	table.Header("When", "Ticker", "Basis", "Price", "Contracts", "Rows", "Best Ann.%")

	for _, s := range summaries {
		table.Append(
			s.ScannedAt.Local().Format("2006-01-02 15:04"),
			s.Ticker,
			s.PriceBasis,
			fmt.Sprintf("%.2f", s.CurrentPrice),
			fmt.Sprintf("%d", s.Contracts),
			fmt.Sprintf("%d", s.Candidates),
			fmt.Sprintf("%.2f", s.BestAnnualizedPct),
		)
	}

	table.Render()
}
