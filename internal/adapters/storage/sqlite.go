package storage

// sqlite.go — histórico de screenings en SQLite (pure Go, sin CGo).
//
// Estrategia:
//   - `scans`: una fila de resumen por screening ejecutado.
//   - `scan_rows`: las filas supervivientes de ese screening, para poder
//     reconstruir qué se mostró al usuario.
//   - Prune automático al arrancar: scans de más de 30 días.

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/alejandrodnm/putscan/internal/domain"
)

const schema = `
-- Resumen por screening
CREATE TABLE IF NOT EXISTS scans (
    id              TEXT PRIMARY KEY,
    ticker          TEXT     NOT NULL,
    scanned_at      DATETIME NOT NULL,
    price_basis     TEXT     NOT NULL,
    current_price   REAL     NOT NULL,
    contracts       INTEGER  NOT NULL DEFAULT 0,
    candidates      INTEGER  NOT NULL DEFAULT 0,
    best_annualized REAL     NOT NULL DEFAULT 0
);

-- Filas supervivientes de cada screening
CREATE TABLE IF NOT EXISTS scan_rows (
    scan_id        TEXT    NOT NULL REFERENCES scans(id),
    expiration     TEXT    NOT NULL,
    dte            INTEGER NOT NULL,
    strike         REAL    NOT NULL,
    premium        REAL    NOT NULL,
    annualized_pct REAL    NOT NULL,
    safety_pct     REAL    NOT NULL,
    break_even     REAL    NOT NULL,
    volume         INTEGER NOT NULL DEFAULT 0,
    open_interest  INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_scans_ticker ON scans(ticker, scanned_at DESC);
CREATE INDEX IF NOT EXISTS idx_scans_at     ON scans(scanned_at DESC);
CREATE INDEX IF NOT EXISTS idx_rows_scan    ON scan_rows(scan_id);
`

// retention: los screenings viejos no aportan señal, se podan al abrir.
const retention = 30 * 24 * time.Hour

// SQLiteStorage implementa ports.Storage usando SQLite.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage abre (o crea) la base de datos en la ruta dada,
// aplica el schema y poda los datos antiguos.
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

	s := &SQLiteStorage{db: db}
	s.pruneOld(context.Background())
	return s, nil
}

// SaveScan persiste el resumen del screening y sus filas en una transacción.
func (s *SQLiteStorage) SaveScan(ctx context.Context, snap domain.ChainSnapshot, criteria domain.CriteriaSelection, rows []domain.Row) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage.SaveScan: begin tx: %w", err)
	}
	defer tx.Rollback()

	scanID := uuid.NewString()
	best := 0.0
	for _, r := range rows {
		if r.AnnualizedReturnPct > best {
			best = r.AnnualizedReturnPct
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO scans (id, ticker, scanned_at, price_basis, current_price, contracts, candidates, best_annualized)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		scanID,
		snap.Quote.Ticker,
		snap.FetchedAt.UTC(),
		criteria.PriceBasis.String(),
		snap.Quote.CurrentPrice,
		len(snap.Contracts),
		len(rows),
		best,
	)
	if err != nil {
		return fmt.Errorf("storage.SaveScan: insert scan: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO scan_rows (scan_id, expiration, dte, strike, premium, annualized_pct, safety_pct, break_even, volume, open_interest)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("storage.SaveScan: prepare rows: %w", err)
	}
	defer stmt.Close()

	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx,
			scanID, r.Expiration, r.DTE, r.Strike, r.Premium,
			r.AnnualizedReturnPct, r.SafetyMarginPct, r.BreakEven,
			r.Volume, r.OpenInterest,
		); err != nil {
			return fmt.Errorf("storage.SaveScan: insert row: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage.SaveScan: commit: %w", err)
	}
	return nil
}

// History devuelve los screenings del ticker, del más reciente al más
// antiguo. Ticker vacío devuelve todos.
func (s *SQLiteStorage) History(ctx context.Context, ticker string, limit int) ([]domain.ScanSummary, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, ticker, scanned_at, price_basis, current_price, contracts, candidates, best_annualized
		FROM scans`
	args := []any{}
	if key := domain.NormalizeTicker(ticker); key != "" {
		query += ` WHERE ticker = ?`
		args = append(args, key)
	}
	query += ` ORDER BY scanned_at DESC LIMIT ?`
	args = append(args, limit)

	dbRows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("storage.History: query: %w", err)
	}
	defer dbRows.Close()

	var summaries []domain.ScanSummary
	for dbRows.Next() {
		var sum domain.ScanSummary
		if err := dbRows.Scan(
			&sum.ID, &sum.Ticker, &sum.ScannedAt, &sum.PriceBasis,
			&sum.CurrentPrice, &sum.Contracts, &sum.Candidates, &sum.BestAnnualizedPct,
		); err != nil {
			return nil, fmt.Errorf("storage.History: scan row: %w", err)
		}
		summaries = append(summaries, sum)
	}
	return summaries, dbRows.Err()
}

// Close cierra la conexión limpiamente.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// pruneOld borra screenings más viejos que retention. Best-effort.
func (s *SQLiteStorage) pruneOld(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-retention)

	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM scan_rows WHERE scan_id IN (SELECT id FROM scans WHERE scanned_at < ?)`, cutoff,
	); err != nil {
		slog.Warn("prune scan_rows failed", "err", err)
		return
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM scans WHERE scanned_at < ?`, cutoff); err != nil {
		slog.Warn("prune scans failed", "err", err)
	}
}
