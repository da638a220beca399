package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/linrh-dut/otc-report/internal/application/port"
	"github.com/linrh-dut/otc-report/internal/domain"
)

// Repo 基于 Postgres 的日报存储，表结构与 SQLite 后端一致（按年分表）。
// 单条写入语句自身即原子，无需显式事务。
type Repo struct {
	db *sql.DB

	mu     sync.Mutex
	tables map[string]struct{}
}

func New(dsn string) (*Repo, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)

	return &Repo{db: db, tables: make(map[string]struct{})}, nil
}

func (r *Repo) Close() error { return r.db.Close() }

func (r *Repo) tableFor(ctx context.Context, date string) (string, error) {
	if !domain.ValidDate(date) {
		return "", fmt.Errorf("invalid trade date %q", date)
	}
	name := "otc_report_" + domain.YearOf(date)

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tables[name]; ok {
		return name, nil
	}
	_, err := r.db.ExecContext(ctx, fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %[1]s (
  date TEXT NOT NULL,
  type TEXT NOT NULL,
  variety_ids TEXT NOT NULL DEFAULT '',
  variety_names TEXT NOT NULL DEFAULT '',
  trade_num BIGINT NOT NULL DEFAULT 0,
  volume DOUBLE PRECISION,
  turnover DOUBLE PRECISION,
  created_at BIGINT NOT NULL,
  updated_at BIGINT NOT NULL,
  PRIMARY KEY(date, type)
)`, name))
	if err != nil {
		return "", fmt.Errorf("create table %s: %w", name, err)
	}
	r.tables[name] = struct{}{}
	return name, nil
}

func (r *Repo) Upsert(ctx context.Context, rep domain.DailyReport) error {
	if !rep.Type.Valid() {
		return fmt.Errorf("invalid report type %q", rep.Type)
	}
	table, err := r.tableFor(ctx, rep.Date)
	if err != nil {
		return err
	}

	q := fmt.Sprintf(`
		INSERT INTO %s(date, type, variety_ids, variety_names, trade_num, volume, turnover, created_at, updated_at)
		VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT(date, type) DO UPDATE SET
		variety_ids=excluded.variety_ids, variety_names=excluded.variety_names,
		trade_num=excluded.trade_num, volume=excluded.volume, updated_at=excluded.updated_at`, table)
	if rep.Type.TurnoverFromCollection() {
		q += ", turnover=excluded.turnover"
	}

	now := time.Now().Unix()
	_, err = r.db.ExecContext(ctx, q,
		rep.Date, string(rep.Type), rep.VarietyIDs, rep.VarietyNames,
		rep.TradeNum, rep.Volume, rep.Turnover, now, now)
	return err
}

func (r *Repo) ApplyCorrection(ctx context.Context, c domain.Correction) error {
	if !c.Type.Correctable() {
		return fmt.Errorf("report type %q does not accept corrections", c.Type)
	}
	table, err := r.tableFor(ctx, c.Date)
	if err != nil {
		return err
	}

	set := "turnover=$1, updated_at=$2"
	args := []any{c.Turnover, time.Now().Unix()}
	if c.TradeNum != nil {
		set += fmt.Sprintf(", trade_num=$%d", len(args)+1)
		args = append(args, *c.TradeNum)
	}
	if c.VarietyNames != nil {
		set += fmt.Sprintf(", variety_names=$%d", len(args)+1)
		args = append(args, *c.VarietyNames)
	}
	where := fmt.Sprintf("date=$%d AND type=$%d", len(args)+1, len(args)+2)
	args = append(args, c.Date, string(c.Type))

	res, err := r.db.ExecContext(ctx, fmt.Sprintf("UPDATE %s SET %s WHERE %s", table, set, where), args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return port.ErrNotFound
	}
	return nil
}

func (r *Repo) Get(ctx context.Context, date string, typ domain.ReportType) (*domain.DailyReport, error) {
	table, err := r.tableFor(ctx, date)
	if err != nil {
		return nil, err
	}

	row := r.db.QueryRowContext(ctx, fmt.Sprintf(
		`SELECT date, type, variety_ids, variety_names, trade_num, volume, turnover FROM %s WHERE date=$1 AND type=$2`, table),
		date, string(typ))
	rep, err := scanReport(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, port.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return rep, nil
}

func (r *Repo) QueryRange(ctx context.Context, from, to string) ([]domain.DailyReport, error) {
	if !domain.ValidDate(from) || !domain.ValidDate(to) {
		return nil, fmt.Errorf("invalid date range %q..%q", from, to)
	}
	if domain.YearOf(from) != domain.YearOf(to) {
		return nil, fmt.Errorf("date range %q..%q crosses year tables", from, to)
	}
	table, err := r.tableFor(ctx, from)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(
		`SELECT date, type, variety_ids, variety_names, trade_num, volume, turnover FROM %s WHERE date>=$1 AND date<=$2 ORDER BY date, type`, table),
		from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.DailyReport
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rep)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanReport(s scanner) (*domain.DailyReport, error) {
	var rep domain.DailyReport
	var typ string
	var volume, turnover sql.NullFloat64
	if err := s.Scan(&rep.Date, &typ, &rep.VarietyIDs, &rep.VarietyNames, &rep.TradeNum, &volume, &turnover); err != nil {
		return nil, err
	}
	rep.Type = domain.ReportType(typ)
	if volume.Valid {
		rep.Volume = domain.Float64(volume.Float64)
	}
	if turnover.Valid {
		rep.Turnover = domain.Float64(turnover.Float64)
	}
	return &rep, nil
}

var _ port.Store = (*Repo)(nil)
