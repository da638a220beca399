package service

import (
	"math"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/linrh-dut/otc-report/internal/application/port"
	"github.com/linrh-dut/otc-report/internal/domain"
)

// 各报表类型的归并规则。输入为原始行，输出为待入库的日报记录；
// 空行集是合法输入，产出空记录而不是错误。

// ReduceWbill 标准仓单：品种与量额来自成交列表，成交笔数来自申请
// 列表中操作日期等于交易日的行数（业务口径，不是成交行数）。
func ReduceWbill(date string, rows []port.WbillMatchRow, applies []port.WbillApplyRow) domain.DailyReport {
	if len(rows) == 0 {
		return domain.EmptyReport(date, domain.TypeWbill)
	}

	ids := newStringSet()
	names := domain.NewVarietySet()
	var volume, turnover float64
	for _, row := range rows {
		ids.add(row.VarietyID)
		names.Add(row.VarietyName)
		volume += row.MatchTotWeight
		turnover += row.Turnover
	}

	var tradeNum int64
	for _, a := range applies {
		if a.OpDate == date {
			tradeNum++
		}
	}

	return domain.DailyReport{
		Date:         date,
		Type:         domain.TypeWbill,
		VarietyIDs:   ids.join(),
		VarietyNames: names.Join(),
		TradeNum:     tradeNum,
		Volume:       domain.Float64(volume),
		Turnover:     domain.Float64(turnover),
	}
}

// ReduceNonWbill 非标准仓单：成交额按行计算 applyWeight×price 再求和
func ReduceNonWbill(date string, rows []port.SpotMatchRow) domain.DailyReport {
	if len(rows) == 0 {
		return domain.EmptyReport(date, domain.TypeNonWbill)
	}

	ids := newStringSet()
	names := domain.NewVarietySet()
	var volume, turnover float64
	for _, row := range rows {
		ids.add(row.VarietyID)
		names.Add(row.VarietyName)
		volume += row.ApplyWeight
		turnover += row.ApplyWeight * row.Price
	}

	return domain.DailyReport{
		Date:         date,
		Type:         domain.TypeNonWbill,
		VarietyIDs:   ids.join(),
		VarietyNames: names.Join(),
		TradeNum:     int64(len(rows)),
		Volume:       domain.Float64(volume),
		Turnover:     domain.Float64(turnover),
	}
}

// ReduceBasis 基差交易：名义成交额接口单位为万元，换算为元后取整
func ReduceBasis(date string, rows []port.BasisRow) domain.DailyReport {
	if len(rows) == 0 {
		return domain.EmptyReport(date, domain.TypeBasis)
	}

	ids := newStringSet()
	names := domain.NewVarietySet()
	var volume, nominal float64
	for _, row := range rows {
		ids.add(row.VarietyID)
		names.Add(row.VarietyName)
		volume += row.Qty
		nominal += row.NominalMatchAmt
	}

	return domain.DailyReport{
		Date:         date,
		Type:         domain.TypeBasis,
		VarietyIDs:   ids.join(),
		VarietyNames: names.Join(),
		TradeNum:     int64(len(rows)),
		Volume:       domain.Float64(volume),
		Turnover:     domain.Float64(math.Round(nominal * 10000)),
	}
}

// ReduceSwap 商品互换：量额在采集阶段未定义（名义本金走修正接口），
// 品种名按合约类型从标的编号解析，解析失败的行只告警、不产出品种。
func ReduceSwap(date string, rows []port.SwapRow) domain.DailyReport {
	if len(rows) == 0 {
		return domain.EmptyReport(date, domain.TypeSwap)
	}

	names := domain.NewVarietySet()
	for _, row := range rows {
		name, err := domain.SwapVarietyName(row.ContractType, row.SubjectContractID)
		if err != nil {
			log.Warn().
				Str("contract_type", row.ContractType).
				Str("subject_contract_id", row.SubjectContractID).
				Err(err).
				Msg("swap contract id unparseable")
			continue
		}
		names.Add(name)
	}

	return domain.DailyReport{
		Date:         date,
		Type:         domain.TypeSwap,
		VarietyNames: names.Join(),
		TradeNum:     int64(len(rows)),
	}
}

// ReduceOpt 场外期权：按业务部门要求不记录采集结果，始终落空记录；
// 行集只用于调用方的规模日志。
func ReduceOpt(date string, rows []port.OptRow) domain.DailyReport {
	_ = rows
	return domain.EmptyReport(date, domain.TypeOpt)
}

// stringSet 去重且保持插入顺序的品种ID集合
type stringSet struct {
	vals []string
	seen map[string]struct{}
}

func newStringSet() *stringSet {
	return &stringSet{seen: make(map[string]struct{})}
}

func (s *stringSet) add(v string) {
	if v == "" {
		return
	}
	if _, ok := s.seen[v]; ok {
		return
	}
	s.seen[v] = struct{}{}
	s.vals = append(s.vals, v)
}

func (s *stringSet) join() string { return strings.Join(s.vals, ",") }
