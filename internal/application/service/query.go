package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/linrh-dut/otc-report/internal/application/port"
	"github.com/linrh-dut/otc-report/internal/domain"
)

// QueryService 读侧聚合：日报、近N个交易日、当月、当年。
// 查询范围限定在请求日期所在年度的分表内（与存储分片策略一致）。
type QueryService struct {
	store port.Store
}

func NewQueryService(store port.Store) *QueryService {
	return &QueryService{store: store}
}

// TypeTotal 按类型汇总的量额。NULL 字段按 0 计入。
type TypeTotal struct {
	TradeNum int64
	Volume   float64
	Turnover float64
}

// TrailingGroup 单个交易日按类型分组的成交额
type TrailingGroup struct {
	Date     string
	Turnover map[domain.ReportType]float64
	Total    float64
}

// Daily 返回请求日期各类型的日报记录。缺失的类型不在结果中出现——
// "尚未采集"与"采集为零"是两种可上报状态，不能互相掩盖。
func (s *QueryService) Daily(ctx context.Context, date string) (map[domain.ReportType]domain.DailyReport, error) {
	if !domain.ValidDate(date) {
		return nil, fmt.Errorf("invalid trade date %q", date)
	}
	rows, err := s.store.QueryRange(ctx, date, date)
	if err != nil {
		return nil, err
	}
	out := make(map[domain.ReportType]domain.DailyReport, len(rows))
	for _, r := range rows {
		out[r.Type] = r
	}
	return out, nil
}

// Trailing 返回请求日期向前最近 days 个有成交的交易日（含当日），按
// (日期, 类型) 分组的成交额。合格日期不足 days 个时按实际数量返回，
// 不补零行。asc 控制展示方向。
func (s *QueryService) Trailing(ctx context.Context, date string, days int, asc bool) ([]TrailingGroup, error) {
	if !domain.ValidDate(date) {
		return nil, fmt.Errorf("invalid trade date %q", date)
	}
	if days <= 0 {
		days = 5
	}
	rows, err := s.store.QueryRange(ctx, domain.YearStart(date), date)
	if err != nil {
		return nil, err
	}

	// 有任一类型成交笔数 > 0 的日期才参与窗口
	active := make(map[string]bool)
	for _, r := range rows {
		if r.TradeNum > 0 {
			active[r.Date] = true
		}
	}
	dates := make([]string, 0, len(active))
	for d := range active {
		dates = append(dates, d)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))
	if len(dates) > days {
		dates = dates[:days]
	}

	byDate := make(map[string]*TrailingGroup, len(dates))
	for _, d := range dates {
		byDate[d] = &TrailingGroup{Date: d, Turnover: make(map[domain.ReportType]float64)}
	}
	for _, r := range rows {
		g, ok := byDate[r.Date]
		if !ok {
			continue
		}
		t := domain.ValueOrZero(r.Turnover)
		g.Turnover[r.Type] += t
		g.Total += t
	}

	if asc {
		sort.Sort(sort.StringSlice(dates))
	}
	out := make([]TrailingGroup, 0, len(dates))
	for _, d := range dates {
		out = append(out, *byDate[d])
	}
	return out, nil
}

// MonthToDate 当月首日至请求日期按类型汇总
func (s *QueryService) MonthToDate(ctx context.Context, date string) (map[domain.ReportType]TypeTotal, error) {
	if !domain.ValidDate(date) {
		return nil, fmt.Errorf("invalid trade date %q", date)
	}
	return s.sumRange(ctx, domain.MonthStart(date), date)
}

// YearToDate 当年首日至请求日期按类型汇总
func (s *QueryService) YearToDate(ctx context.Context, date string) (map[domain.ReportType]TypeTotal, error) {
	if !domain.ValidDate(date) {
		return nil, fmt.Errorf("invalid trade date %q", date)
	}
	return s.sumRange(ctx, domain.YearStart(date), date)
}

func (s *QueryService) sumRange(ctx context.Context, from, to string) (map[domain.ReportType]TypeTotal, error) {
	rows, err := s.store.QueryRange(ctx, from, to)
	if err != nil {
		return nil, err
	}
	out := make(map[domain.ReportType]TypeTotal)
	for _, r := range rows {
		t := out[r.Type]
		t.TradeNum += r.TradeNum
		t.Volume += domain.ValueOrZero(r.Volume)
		t.Turnover += domain.ValueOrZero(r.Turnover)
		out[r.Type] = t
	}
	return out, nil
}

// SwapInfo 当日互换业务的笔数与名义本金（单位：亿元）。
// 记录不存在返回 (0, 0)，与平台原有口径一致。
func (s *QueryService) SwapInfo(ctx context.Context, date string) (int64, float64, error) {
	if !domain.ValidDate(date) {
		return 0, 0, fmt.Errorf("invalid trade date %q", date)
	}
	rep, err := s.store.Get(ctx, date, domain.TypeSwap)
	if errors.Is(err, port.ErrNotFound) {
		return 0, 0, nil
	}
	if err != nil {
		return 0, 0, err
	}
	return rep.TradeNum, domain.ValueOrZero(rep.Turnover) / turnoverUnit, nil
}
