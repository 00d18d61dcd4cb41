package modelstate

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"strings"

	"github.com/jinzhu/inflection"
	"github.com/sirupsen/logrus"

	"github.com/mickamy/modelstate/internal/buffer"
	"github.com/mickamy/modelstate/internal/ident"
)

// RedactFunc defines a function used to sanitize or mask values before they are recorded.
type RedactFunc func(key string, v any) any

// RedactMap maps key names to specific redaction functions.
type RedactMap map[string]RedactFunc

// RedactSensitive wraps v in a SensitiveValue.
func RedactSensitive(_ string, v any) any {
	if _, ok := v.(SensitiveValue); ok {
		return v
	}
	return NewSensitiveValue(v)
}

// Config defines how model changes are recorded.
type Config struct {
	HistorySuffix     string    `yaml:"history_suffix"`     // e.g. "_history" (default)
	Redact            RedactMap `yaml:"-"`                  // optional key-based redaction
	RedactKeys        []string  `yaml:"redact_keys"`        // keys redacted with RedactSensitive
	SkipIfNotExists   bool      `yaml:"skip_if_not_exists"` // skip insertion to history table if it does not exist
	Excludes          []string  `yaml:"excludes"`           // attributes redacted in every recorded entry
	WithoutTimestamps bool      `yaml:"without_timestamps"` // drop timestamp columns from diffs
	LogLevel          string    `yaml:"log_level"`          // logrus level of the default logger
}

func (c Config) HistoryTableName(base string) string {
	parts := ident.HistoryParts(base, c.HistorySuffix)
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, ".")
}

func (c Config) diffOptions() DiffOptions {
	return DiffOptions{Excludes: c.Excludes, WithoutTimestamps: c.WithoutTimestamps}
}

// Handler captures model changes and writes them to history tables.
type Handler struct {
	cfg Config
	log logrus.FieldLogger
}

// Option configures a Handler.
type Option func(*Handler)

// WithLogger sets the logger used by the Handler.
func WithLogger(l logrus.FieldLogger) Option {
	return func(h *Handler) {
		if l != nil {
			h.log = l
		}
	}
}

// New creates a new Handler instance with sensible defaults.
func New(cfg Config, opts ...Option) *Handler {
	if cfg.HistorySuffix == "" {
		cfg.HistorySuffix = "_history"
	}
	redact := make(RedactMap, len(cfg.Redact)+len(cfg.RedactKeys))
	maps.Copy(redact, cfg.Redact)
	// Excludes are redacted on both sides of a recorded change.
	for _, k := range append(append([]string(nil), cfg.RedactKeys...), cfg.Excludes...) {
		if _, ok := redact[k]; !ok {
			redact[k] = RedactSensitive
		}
	}
	cfg.Redact = redact

	h := &Handler{cfg: cfg, log: defaultLogger(cfg.LogLevel)}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func defaultLogger(level string) logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	if lvl, err := logrus.ParseLevel(level); err == nil {
		l.SetLevel(lvl)
	}
	return l
}

// Capture builds an entry from the state of m.
// It reports false when ctx is marked with WithSkip or m has no changes.
func (h *Handler) Capture(ctx context.Context, m Model) (Entry, bool) {
	table := tableName(m)
	log := h.log.WithField("table", table)
	if skipped(ctx) {
		log.Warn("modelstate: capture skipped by context")
		return Entry{}, false
	}

	before, after := ModelState(m, h.cfg.diffOptions())
	if len(after) == 0 {
		log.Debug("modelstate: no changes to capture")
		return Entry{}, false
	}
	op := OpUpdate
	if before == nil {
		op = OpInsert
	}
	e := Entry{
		Table:  table,
		Op:     op,
		ID:     pickID(table, keyName(m), m.Attributes(), m.RawOriginal()),
		Before: h.applyRedact(before),
		After:  h.applyRedact(after),
		Meta:   MetaFromContext(ctx),
	}
	log.WithFields(logrus.Fields{"operation": e.Op, "id": e.ID}).Debug("modelstate: captured entry")
	return e, true
}

// CaptureDelete builds a DELETE entry holding the full current state of m.
// It reports false when m was never persisted.
func (h *Handler) CaptureDelete(ctx context.Context, m Model) (Entry, bool) {
	table := tableName(m)
	log := h.log.WithField("table", table)
	if skipped(ctx) {
		log.Warn("modelstate: capture skipped by context")
		return Entry{}, false
	}
	if !ModelExists(m) {
		log.Debug("modelstate: model does not exist; nothing to delete")
		return Entry{}, false
	}

	hidden := hiddenWith(m, h.cfg.Excludes)
	var drop []string
	if h.cfg.WithoutTimestamps {
		createdAt, updatedAt := timestampColumns(m)
		drop = []string{createdAt, updatedAt}
	}
	e := Entry{
		Table:  table,
		Op:     OpDelete,
		ID:     pickID(table, keyName(m), m.Attributes(), m.RawOriginal()),
		Before: h.applyRedact(SummarizeChanges(except(m.Attributes(), drop), hidden)),
		Meta:   MetaFromContext(ctx),
	}
	log.WithFields(logrus.Fields{"operation": e.Op, "id": e.ID}).Debug("modelstate: captured entry")
	return e, true
}

// applyRedact returns a redacted copy of the given summary using cfg.Redact.
func (h *Handler) applyRedact(s Summary) Summary {
	if s == nil || len(h.cfg.Redact) == 0 {
		return s
	}
	out := make(Summary, len(s))
	for k, v := range s {
		if fn, ok := h.cfg.Redact[k]; ok && fn != nil {
			out[k] = fn(k, v)
		} else {
			out[k] = v
		}
	}
	return out
}

// DB wraps a *sql.DB instance to record model history on transactions.
type DB struct {
	*sql.DB
	h *Handler
}

// WrapDB attaches the handler to a *sql.DB connection.
func (h *Handler) WrapDB(db *sql.DB) *DB {
	return &DB{DB: db, h: h}
}

// Tx wraps a *sql.Tx and buffers history entries within the transaction.
type Tx struct {
	*sql.Tx
	h   *Handler
	buf *buffer.Buffer[Entry]
	ctx context.Context
}

// BeginTx starts a wrapped transaction that records model changes.
func (db *DB) BeginTx(ctx context.Context, opts *sql.TxOptions) (*Tx, error) {
	t, err := db.DB.BeginTx(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &Tx{Tx: t, h: db.h, buf: buffer.New[Entry](), ctx: ctx}, nil
}

// Record captures the current state of m; it is written on Commit.
func (t *Tx) Record(ctx context.Context, m Model) bool {
	e, ok := t.h.Capture(ctx, m)
	if ok {
		t.buf.Add(e)
	}
	return ok
}

// RecordDelete captures m as deleted; it is written on Commit.
func (t *Tx) RecordDelete(ctx context.Context, m Model) bool {
	e, ok := t.h.CaptureDelete(ctx, m)
	if ok {
		t.buf.Add(e)
	}
	return ok
}

// Commit flushes buffered history records into history tables before commit.
func (t *Tx) Commit() error {
	if err := t.flush(); err != nil {
		return err
	}
	return t.Tx.Commit()
}

const insertHistorySQL = `
INSERT INTO %s (id, operation, operated_at, operated_by, trace_id, reason, before, after)
VALUES ($1, $2, now(), $3, $4, $5, $6, $7)
`

// flush writes buffered entries into their history tables within the same transaction.
// With SkipIfNotExists, entries whose history table is missing are dropped.
func (t *Tx) flush() error {
	rows := t.buf.Drain()
	if len(rows) == 0 {
		return nil
	}

	present := map[string]bool{}
	for _, e := range rows {
		historyParts := ident.HistoryParts(e.Table, t.h.cfg.HistorySuffix)
		historyIdent := ident.QuoteQualified(historyParts)
		if historyIdent == "" {
			return fmt.Errorf("modelstate: invalid history table identifier for %q", e.Table)
		}
		log := t.h.log.WithFields(logrus.Fields{"table": historyIdent, "operation": e.Op})

		if t.h.cfg.SkipIfNotExists {
			ok, seen := present[historyIdent]
			if !seen {
				var err error
				if ok, err = t.historyTableExists(historyIdent); err != nil {
					return err
				}
				present[historyIdent] = ok
			}
			if !ok {
				log.Warn("modelstate: history table does not exist; entry dropped")
				continue
			}
		}

		beforeJSON, err := json.Marshal(e.Before)
		if err != nil {
			return fmt.Errorf("modelstate: failed to marshal before: %w", err)
		}
		afterJSON, err := json.Marshal(e.After)
		if err != nil {
			return fmt.Errorf("modelstate: failed to marshal after: %w", err)
		}
		if _, err := t.Tx.ExecContext(
			t.ctx,
			fmt.Sprintf(insertHistorySQL, historyIdent),
			e.ID,
			e.Op,
			e.Meta.Operator,
			e.Meta.TraceID,
			e.Meta.Reason,
			beforeJSON,
			afterJSON,
		); err != nil {
			return fmt.Errorf("modelstate: failed to insert history table: %w", err)
		}
		log.Debug("modelstate: flushed entry")
	}
	return nil
}

func (t *Tx) historyTableExists(historyIdent string) (bool, error) {
	var ok bool
	if err := t.Tx.QueryRowContext(t.ctx, `SELECT to_regclass($1) IS NOT NULL`, historyIdent).Scan(&ok); err != nil {
		return false, fmt.Errorf("modelstate: failed to look up %s: %w", historyIdent, err)
	}
	return ok, nil
}

// Rollback clears buffered history entries and rolls back the transaction.
func (t *Tx) Rollback() error {
	t.buf.Reset()
	return t.Tx.Rollback()
}

// pickID chooses the primary key from the first attribute map that carries it.
func pickID(table, key string, attrs ...map[string]any) any {
	// Heuristics: the model key first; then "id"; then "<singular>_id", else nil.
	singular := inflection.Singular(ident.BaseTableName(table))
	for _, name := range []string{key, "id", singular + "_id"} {
		for _, m := range attrs {
			if v, ok := m[name]; ok && v != nil {
				return NormalizeValue(v)
			}
		}
	}
	return nil
}
