package port

import "context"

// 平台各报表接口的原始行。字段名与接口返回一致，数值字段可能是
// number 也可能是带引号的字符串，由适配器归一为 float64。

// WbillMatchRow 标准仓单成交行
type WbillMatchRow struct {
	VarietyID      string  `json:"varietyId"`
	VarietyName    string  `json:"varietyName"`
	MatchTotWeight float64 `json:"matchTotWeight"`
	Turnover       float64 `json:"turnover"`
}

// WbillApplyRow 标准仓单申请行，只消费操作日期
type WbillApplyRow struct {
	OpDate string `json:"opDate"`
}

// SpotMatchRow 非标准仓单（现货）成交行
type SpotMatchRow struct {
	VarietyID   string  `json:"varietyId"`
	VarietyName string  `json:"varietyName"`
	ApplyWeight float64 `json:"applyWeight"`
	Price       float64 `json:"price"`
}

// BasisRow 基差交易行，nominalMatchAmt 单位：万元
type BasisRow struct {
	VarietyID       string  `json:"varietyId"`
	VarietyName     string  `json:"varietyName"`
	Qty             float64 `json:"qty"`
	NominalMatchAmt float64 `json:"nominalMatchAmt"`
}

// SwapRow 商品互换行
type SwapRow struct {
	ContractType      string `json:"contractType"`
	SubjectContractID string `json:"subjectContractId"`
}

// OptRow 场外期权行
type OptRow struct {
	SubjectContractID string `json:"subjectContractId"`
}

// ReportSource 上游报表源。每个方法对应一类报表的一次单页拉取；
// 日采集时 startDate == endDate。传输或解析失败返回错误，由调用方
// 决定降级策略。
type ReportSource interface {
	WbillMatches(ctx context.Context, startDate, endDate string) ([]WbillMatchRow, error)
	WbillApplies(ctx context.Context) ([]WbillApplyRow, error)
	SpotMatches(ctx context.Context, startDate, endDate string) ([]SpotMatchRow, error)
	BasisTrades(ctx context.Context, startDate, endDate string) ([]BasisRow, error)
	SwapMatches(ctx context.Context, startDate, endDate string) ([]SwapRow, error)
	OptMatches(ctx context.Context, startDate, endDate string) ([]OptRow, error)
}

// TradingCalendar 交易日历协作方
type TradingCalendar interface {
	IsTradingDay(date string) bool
}

// ReportCache 读接口的日报缓存，可选协作方
type ReportCache interface {
	GetReport(ctx context.Context, date string) ([]byte, bool)
	SetReport(ctx context.Context, date string, payload []byte) error
	InvalidateReport(ctx context.Context, date string) error
}
