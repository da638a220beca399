package rest

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/linrh-dut/otc-report/internal/application/service"
	"github.com/linrh-dut/otc-report/internal/domain"
)

// 展示单位：成交量 万吨，成交额 亿元，保留两位小数
const (
	volumeUnit   = 10000
	turnoverUnit = 100000000
)

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// kindDaily 看板单类型日数据。swap/opt 不展示成交量。
type kindDaily struct {
	Num       int64    `json:"num"`
	Varieties string   `json:"varieties"`
	Volume    *float64 `json:"volume,omitempty"`
	Turnover  float64  `json:"turnover"`
}

type dailyBlock struct {
	DailySum float64    `json:"daily_sum"`
	MonthSum float64    `json:"month_sum"`
	YearSum  float64    `json:"year_sum"`
	Wbill    *kindDaily `json:"wbill"`
	NonWbill *kindDaily `json:"non_wbill"`
	Basis    *kindDaily `json:"index_basis"`
	Swap     *kindDaily `json:"swap"`
	Opt      *kindDaily `json:"opt"`
}

type weeklyBlock struct {
	Dates    []string  `json:"dates"`
	Wbill    []float64 `json:"wbill"`
	NonWbill []float64 `json:"non_wbill"`
	Basis    []float64 `json:"index_basis"`
	Swap     []float64 `json:"swap"`
	Opt      []float64 `json:"opt"`
	Sum      []float64 `json:"sum"`
}

type yearlyKind struct {
	Num      int64    `json:"num"`
	Volume   *float64 `json:"volume,omitempty"`
	Turnover float64  `json:"turnover"`
}

type yearlyBlock struct {
	Wbill    yearlyKind `json:"wbill"`
	NonWbill yearlyKind `json:"non_wbill"`
	Basis    yearlyKind `json:"index_basis"`
	Swap     yearlyKind `json:"swap"`
	Opt      yearlyKind `json:"opt"`
	Sum      yearlyKind `json:"sum"`
}

type reportPayload struct {
	Status int         `json:"status"`
	Daily  dailyBlock  `json:"daily"`
	Weekly weeklyBlock `json:"weekly"`
	Yearly yearlyBlock `json:"yearly"`
}

// buildReport 组装整版看板数据。当日一行都没有视为无数据；个别类型
// 缺行时对应块为 null，与零值成交可区分。
func (h *Handler) buildReport(ctx context.Context, date string) (*reportPayload, bool, error) {
	daily, err := h.queries.Daily(ctx, date)
	if err != nil {
		return nil, false, err
	}
	if len(daily) == 0 {
		return nil, false, nil
	}

	month, err := h.queries.MonthToDate(ctx, date)
	if err != nil {
		return nil, false, err
	}
	year, err := h.queries.YearToDate(ctx, date)
	if err != nil {
		return nil, false, err
	}
	trailing, err := h.queries.Trailing(ctx, date, 5, false)
	if err != nil {
		return nil, false, err
	}

	p := &reportPayload{Status: http.StatusOK}
	p.Daily = h.buildDaily(daily, month, year)
	p.Weekly = buildWeekly(trailing)
	p.Yearly = buildYearly(year)
	return p, true, nil
}

func (h *Handler) buildDaily(daily map[domain.ReportType]domain.DailyReport, month, year map[domain.ReportType]service.TypeTotal) dailyBlock {
	var dailySum float64
	for _, rep := range daily {
		dailySum += domain.ValueOrZero(rep.Turnover)
	}
	var monthSum, yearSum float64
	for _, t := range month {
		monthSum += t.Turnover
	}
	for _, t := range year {
		yearSum += t.Turnover
	}

	return dailyBlock{
		DailySum: round2(dailySum / turnoverUnit),
		MonthSum: round2(monthSum / turnoverUnit),
		YearSum:  round2(yearSum / turnoverUnit),
		Wbill:    kindDailyOf(daily, domain.TypeWbill),
		NonWbill: kindDailyOf(daily, domain.TypeNonWbill),
		Basis:    kindDailyOf(daily, domain.TypeBasis),
		Swap:     kindDailyOf(daily, domain.TypeSwap),
		Opt:      kindDailyOf(daily, domain.TypeOpt),
	}
}

func kindDailyOf(daily map[domain.ReportType]domain.DailyReport, typ domain.ReportType) *kindDaily {
	rep, ok := daily[typ]
	if !ok {
		return nil // 尚未采集
	}
	out := &kindDaily{
		Num:       rep.TradeNum,
		Varieties: rep.VarietyNames,
		Turnover:  round2(domain.ValueOrZero(rep.Turnover) / turnoverUnit),
	}
	if typ.TurnoverFromCollection() {
		out.Volume = domain.Float64(round2(domain.ValueOrZero(rep.Volume) / volumeUnit))
	}
	return out
}

func buildWeekly(groups []service.TrailingGroup) weeklyBlock {
	w := weeklyBlock{
		Dates:    make([]string, 0, len(groups)),
		Wbill:    make([]float64, 0, len(groups)),
		NonWbill: make([]float64, 0, len(groups)),
		Basis:    make([]float64, 0, len(groups)),
		Swap:     make([]float64, 0, len(groups)),
		Opt:      make([]float64, 0, len(groups)),
		Sum:      make([]float64, 0, len(groups)),
	}
	for _, g := range groups {
		w.Dates = append(w.Dates, displayDate(g.Date))
		w.Wbill = append(w.Wbill, round2(g.Turnover[domain.TypeWbill]/turnoverUnit))
		w.NonWbill = append(w.NonWbill, round2(g.Turnover[domain.TypeNonWbill]/turnoverUnit))
		w.Basis = append(w.Basis, round2(g.Turnover[domain.TypeBasis]/turnoverUnit))
		w.Swap = append(w.Swap, round2(g.Turnover[domain.TypeSwap]/turnoverUnit))
		w.Opt = append(w.Opt, round2(g.Turnover[domain.TypeOpt]/turnoverUnit))
		w.Sum = append(w.Sum, round2(g.Total/turnoverUnit))
	}
	return w
}

func buildYearly(year map[domain.ReportType]service.TypeTotal) yearlyBlock {
	var sum yearlyKind
	var sumVolume float64
	for _, t := range year {
		sum.Num += t.TradeNum
		sumVolume += t.Volume
		sum.Turnover += t.Turnover
	}
	sum.Volume = domain.Float64(round2(sumVolume / volumeUnit))
	sum.Turnover = round2(sum.Turnover / turnoverUnit)

	return yearlyBlock{
		Wbill:    yearlyKindOf(year, domain.TypeWbill),
		NonWbill: yearlyKindOf(year, domain.TypeNonWbill),
		Basis:    yearlyKindOf(year, domain.TypeBasis),
		Swap:     yearlyKindOf(year, domain.TypeSwap),
		Opt:      yearlyKindOf(year, domain.TypeOpt),
		Sum:      sum,
	}
}

func yearlyKindOf(year map[domain.ReportType]service.TypeTotal, typ domain.ReportType) yearlyKind {
	t := year[typ]
	out := yearlyKind{
		Num:      t.TradeNum,
		Turnover: round2(t.Turnover / turnoverUnit),
	}
	if typ.TurnoverFromCollection() {
		out.Volume = domain.Float64(round2(t.Volume / volumeUnit))
	}
	return out
}

// displayDate yyyymmdd -> "M月D日"
func displayDate(date string) string {
	if !domain.ValidDate(date) {
		return date
	}
	m, _ := strconv.Atoi(date[4:6])
	d, _ := strconv.Atoi(date[6:8])
	return fmt.Sprintf("%d月%d日", m, d)
}
