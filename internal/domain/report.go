package domain

// ReportType 日报类型编码，与场外平台的报表类型一一对应
type ReportType string

const (
	TypeWbill    ReportType = "wbill"    // 标准仓单
	TypeNonWbill ReportType = "nonwbill" // 非标准仓单
	TypeBasis    ReportType = "basis"    // 基差交易
	TypeSwap     ReportType = "swap"     // 商品互换
	TypeOpt      ReportType = "opt"      // 场外期权
)

// AllReportTypes 返回固定顺序的全部报表类型
func AllReportTypes() []ReportType {
	return []ReportType{TypeWbill, TypeNonWbill, TypeBasis, TypeSwap, TypeOpt}
}

func (t ReportType) Valid() bool {
	switch t {
	case TypeWbill, TypeNonWbill, TypeBasis, TypeSwap, TypeOpt:
		return true
	}
	return false
}

// TurnoverFromCollection reports whether the daily collection may overwrite
// the stored turnover when it updates an existing row. Swap and option
// notional principal is maintained out-of-band via the correction API, so a
// re-collection must leave it untouched.
//
// 字段合并策略（kind × 字段 × 写入方）:
//
//	wbill/nonwbill/basis: 采集写全部字段
//	swap:                 采集更新时保留 turnover；修正写 turnover
//	opt:                  采集更新时保留 turnover；修正写 turnover/trade_num/variety_names
func (t ReportType) TurnoverFromCollection() bool {
	return t != TypeSwap && t != TypeOpt
}

// Correctable reports whether the type accepts out-of-band corrections.
func (t ReportType) Correctable() bool {
	return t == TypeSwap || t == TypeOpt
}

// DailyReport 单个 (日期, 类型) 的日报汇总记录，存储的基本单元。
// Volume/Turnover 为 nil 表示该类型在采集阶段不产生该字段（swap/opt），
// 落库为 NULL，读侧汇总时按 0 计。
type DailyReport struct {
	Date         string     `json:"date"` // yyyymmdd，始终按字符串处理
	Type         ReportType `json:"type"`
	VarietyIDs   string     `json:"variety_ids"`   // 逗号分隔
	VarietyNames string     `json:"variety_names"` // 顿号分隔，按品种优先级排序
	TradeNum     int64      `json:"trade_num"`     // 成交笔数
	Volume       *float64   `json:"volume"`        // 成交量 单位：吨
	Turnover     *float64   `json:"turnover"`      // 成交额 单位：元
}

// EmptyReport 空日报记录：无成交日或采集失败时落库的占位记录。
// 采集产出成交额的类型记 0 值，swap/opt 的量额保持未定义（NULL）。
func EmptyReport(date string, typ ReportType) DailyReport {
	rep := DailyReport{Date: date, Type: typ}
	if typ.TurnoverFromCollection() {
		rep.Volume = Float64(0)
		rep.Turnover = Float64(0)
	}
	return rep
}

// Correction 人工修正请求。Turnover 单位：元（调用侧负责换算）。
// TradeNum/VarietyNames 仅对场外期权有效，nil 表示不修改。
type Correction struct {
	Date         string
	Type         ReportType
	Turnover     float64
	TradeNum     *int64
	VarietyNames *string
}

// Float64 returns a pointer to v, for building optional report fields.
func Float64(v float64) *float64 { return &v }

// ValueOrZero 读取可空数值字段，NULL 按 0 计
func ValueOrZero(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}
