package port

import (
	"context"
	"errors"

	"github.com/linrh-dut/otc-report/internal/domain"
)

// ErrNotFound 目标 (日期, 类型) 记录不存在
var ErrNotFound = errors.New("report not found")

// Store 按年分表的日报存储。实现必须支持采集任务、修正接口与读查询
// 的并发访问：单条 (date, type) 记录的读改写相对其他写入方是原子的。
type Store interface {
	// Upsert 采集侧写入：不存在则新增整行，存在则按字段合并策略更新
	// （turnover 仅在 Type.TurnoverFromCollection() 时覆盖）。
	// 幂等：相同输入重复调用不改变存储结果，也不会产生重复行。
	Upsert(ctx context.Context, rep domain.DailyReport) error

	// ApplyCorrection 修正侧写入：只覆盖修正字段，目标行不存在时
	// 返回 ErrNotFound，不允许凭空建行。
	ApplyCorrection(ctx context.Context, c domain.Correction) error

	// Get 单条记录查询，不存在返回 ErrNotFound
	Get(ctx context.Context, date string, typ domain.ReportType) (*domain.DailyReport, error)

	// QueryRange 返回 [from, to] 闭区间内的全部记录（同一年度分表内）
	QueryRange(ctx context.Context, from, to string) ([]domain.DailyReport, error)

	Close() error
}
