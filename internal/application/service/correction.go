package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/linrh-dut/otc-report/internal/application/port"
	"github.com/linrh-dut/otc-report/internal/domain"
)

// turnoverUnit 修正接口与看板的名义本金单位：亿元 -> 元
const turnoverUnit = 100000000

// CorrectionService 人工修正：swap/opt 的名义本金由业务方在盘后提供，
// 采集接口拿不到，只能走此旁路写入既有记录的指定字段。
type CorrectionService struct {
	store port.Store
	cache port.ReportCache // 可为 nil
}

func NewCorrectionService(store port.Store, cache port.ReportCache) *CorrectionService {
	return &CorrectionService{store: store, cache: cache}
}

// CorrectSwap 覆盖 (date, swap) 的成交额。turnover 单位：亿元。
// 目标记录不存在时失败——修正不允许凭空建行，日采集必须先落占位记录。
func (s *CorrectionService) CorrectSwap(ctx context.Context, date string, turnover float64) error {
	if !domain.ValidDate(date) {
		return fmt.Errorf("invalid trade date %q", date)
	}
	err := s.store.ApplyCorrection(ctx, domain.Correction{
		Date:     date,
		Type:     domain.TypeSwap,
		Turnover: turnover * turnoverUnit,
	})
	if err != nil {
		return err
	}
	log.Info().Str("date", date).Float64("turnover_yi", turnover).Msg("swap turnover corrected")
	s.invalidate(ctx, date)
	return nil
}

// CorrectOption 覆盖 (date, opt) 的成交额、成交笔数与品种串。
// turnover 单位：亿元。笔数为 0 表示当日无期权成交，此时成交额一并
// 归零，忽略传入的 turnover（笔数与成交额是联动字段）。
func (s *CorrectionService) CorrectOption(ctx context.Context, date string, turnover float64, tradeNum int64, varieties string) error {
	if !domain.ValidDate(date) {
		return fmt.Errorf("invalid trade date %q", date)
	}
	if tradeNum < 0 {
		return fmt.Errorf("negative trade num %d", tradeNum)
	}
	stored := turnover * turnoverUnit
	if tradeNum == 0 {
		stored = 0
	}
	err := s.store.ApplyCorrection(ctx, domain.Correction{
		Date:         date,
		Type:         domain.TypeOpt,
		Turnover:     stored,
		TradeNum:     &tradeNum,
		VarietyNames: &varieties,
	})
	if err != nil {
		return err
	}
	log.Info().Str("date", date).Int64("trade_num", tradeNum).Float64("turnover_yi", turnover).Msg("opt report corrected")
	s.invalidate(ctx, date)
	return nil
}

func (s *CorrectionService) invalidate(ctx context.Context, date string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateReport(ctx, date); err != nil {
		log.Warn().Str("date", date).Err(err).Msg("report cache invalidation failed")
	}
}
