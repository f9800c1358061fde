package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // Драйвер Postgres

	"github.com/xela07ax/thermal-policy-host/internal/audit"
)

type JournalRepo struct {
	db *sql.DB
}

// NewJournalRepo открывает пул database/sql поверх pgx. Соединение проверяется в main через Ping.
func NewJournalRepo(connString string) (*JournalRepo, error) {
	db, err := sql.Open("pgx", connString)
	if err != nil {
		return nil, fmt.Errorf("postgres: open journal db: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)
	return &JournalRepo{db: db}, nil
}

// NewJournalRepoFromDB для уже открытого *sql.DB.
func NewJournalRepoFromDB(db *sql.DB) *JournalRepo {
	return &JournalRepo{db: db}
}

// journalColumns колонки таблицы policy_journal, в порядке плейсхолдеров.
const journalColumns = "id, trace_id, policy, policy_index, category, action, detail, status, error, duration_ms, timestamp"

const journalFields = 11

func (r *JournalRepo) WriteBatch(ctx context.Context, entries []audit.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	var sb strings.Builder
	vals := make([]interface{}, 0, len(entries)*journalFields)

	// Динамически строим запрос для пакетной вставки
	for i, e := range entries {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString("(")
		for f := 1; f <= journalFields; f++ {
			if f > 1 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "$%d", i*journalFields+f)
		}
		sb.WriteString(")")

		detail, err := json.Marshal(e.Detail)
		if err != nil {
			return fmt.Errorf("postgres: marshal detail of %s: %w", e.ID, err)
		}

		vals = append(vals,
			e.ID, e.TraceID, e.Policy, int64(e.PolicyIndex), e.Category, e.Action,
			detail, e.Status, e.Error, e.DurationMs, e.Timestamp,
		)
	}

	query := "INSERT INTO policy_journal (" + journalColumns + ") VALUES " + sb.String()

	if _, err := r.db.ExecContext(ctx, query, vals...); err != nil {
		return fmt.Errorf("postgres: write journal batch: %w", err)
	}
	return nil
}

// Ping проверяет доступность базы при старте
func (r *JournalRepo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *JournalRepo) Close() error {
	return r.db.Close()
}

// EntryFilter фильтры чтения журнала. Пустые поля не фильтруют.
type EntryFilter struct {
	Policy   string
	Category string
	Limit    int
}

const defaultFetchLimit = 100

// FetchEntries возвращает записи журнала, новые первыми.
func (r *JournalRepo) FetchEntries(ctx context.Context, f EntryFilter) ([]audit.Entry, error) {
	if f.Limit <= 0 || f.Limit > 1000 {
		f.Limit = defaultFetchLimit
	}

	query := "SELECT " + journalColumns + " FROM policy_journal " +
		"WHERE ($1 = '' OR policy = $1) AND ($2 = '' OR category = $2) " +
		"ORDER BY timestamp DESC LIMIT $3"

	rows, err := r.db.QueryContext(ctx, query, f.Policy, f.Category, f.Limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: fetch journal: %w", err)
	}
	defer rows.Close()

	var entries []audit.Entry
	for rows.Next() {
		var (
			e      audit.Entry
			index  int64
			detail []byte
		)
		if err := rows.Scan(&e.ID, &e.TraceID, &e.Policy, &index, &e.Category, &e.Action,
			&detail, &e.Status, &e.Error, &e.DurationMs, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("postgres: scan journal: %w", err)
		}
		e.PolicyIndex = uint(index)
		if len(detail) > 0 {
			if err := json.Unmarshal(detail, &e.Detail); err != nil {
				return nil, fmt.Errorf("postgres: decode detail of %s: %w", e.ID, err)
			}
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// JournalSummary сводка журнала за последний час.
type JournalSummary struct {
	Dispatches       int64   `json:"dispatches"`
	FailedDispatches int64   `json:"failed_dispatches"`
	FailedHooks      int64   `json:"failed_hooks"`
	FailedNegotiate  int64   `json:"failed_negotiations"`
	P95DurationMs    float64 `json:"p95_duration_ms"`
}

// Summary считает сводку одним запросом. PERCENTILE_CONT дает честный P95.
func (r *JournalRepo) Summary(ctx context.Context) (JournalSummary, error) {
	var s JournalSummary
	err := r.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE category = 'dispatch'),
			COUNT(*) FILTER (WHERE category = 'dispatch' AND status = 'FAILED'),
			COUNT(*) FILTER (WHERE category = 'transition' AND status = 'FAILED'),
			COUNT(*) FILTER (WHERE category = 'negotiation' AND status = 'FAILED'),
			COALESCE(PERCENTILE_CONT(0.95) WITHIN GROUP (ORDER BY duration_ms), 0)
		FROM policy_journal
		WHERE timestamp > NOW() - INTERVAL '60 minutes'`).Scan(
		&s.Dispatches, &s.FailedDispatches, &s.FailedHooks, &s.FailedNegotiate, &s.P95DurationMs,
	)
	if err != nil {
		return JournalSummary{}, fmt.Errorf("postgres: journal summary: %w", err)
	}
	return s, nil
}
