package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/linrh-dut/otc-report/internal/application/port"
	"github.com/linrh-dut/otc-report/internal/domain"
)

// Repo 基于 SQLite 的日报存储，按年分表（otc_report_<year>）。
// 单连接串行化写入，保证单条 (date, type) 的读改写相对其他写入方原子。
type Repo struct {
	db *sql.DB

	mu     sync.Mutex
	tables map[string]struct{} // 已确认存在的分表
}

func New(path string) (*Repo, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		_ = os.MkdirAll(dir, 0o755)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	return &Repo{db: db, tables: make(map[string]struct{})}, nil
}

func (r *Repo) Close() error { return r.db.Close() }

// tableFor 返回日期对应的年度分表名，不存在则建表。
// 表名只由校验过的 4 位年份拼接，不接受其他输入。
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
  trade_num INTEGER NOT NULL DEFAULT 0,
  volume REAL,
  turnover REAL,
  created_at INTEGER NOT NULL,
  updated_at INTEGER NOT NULL,
  PRIMARY KEY(date, type)
);
CREATE INDEX IF NOT EXISTS idx_%[1]s_type ON %[1]s(type);
`, name))
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
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(date, type) DO UPDATE SET
		variety_ids=excluded.variety_ids, variety_names=excluded.variety_names,
		trade_num=excluded.trade_num, volume=excluded.volume, updated_at=excluded.updated_at`, table)
	// swap/opt 的成交额只在首次落库时写入，更新路径保留人工修正值
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

	set := "turnover=?, updated_at=?"
	args := []any{c.Turnover, time.Now().Unix()}
	if c.TradeNum != nil {
		set += ", trade_num=?"
		args = append(args, *c.TradeNum)
	}
	if c.VarietyNames != nil {
		set += ", variety_names=?"
		args = append(args, *c.VarietyNames)
	}
	args = append(args, c.Date, string(c.Type))

	res, err := r.db.ExecContext(ctx, fmt.Sprintf("UPDATE %s SET %s WHERE date=? AND type=?", table, set), args...)
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
		`SELECT date, type, variety_ids, variety_names, trade_num, volume, turnover FROM %s WHERE date=? AND type=?`, table),
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
		`SELECT date, type, variety_ids, variety_names, trade_num, volume, turnover FROM %s WHERE date>=? AND date<=? ORDER BY date, type`, table),
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
