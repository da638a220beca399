package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/linrh-dut/otc-report/internal/application/port"
	"github.com/linrh-dut/otc-report/internal/domain"
)

// CollectService 日报采集任务：对一个交易日依次采集五类报表并入库。
// 单类报表的拉取失败只降级该类为空记录，不影响其余类型。
type CollectService struct {
	source port.ReportSource
	store  port.Store
	cal    port.TradingCalendar
	cache  port.ReportCache // 可为 nil
	loc    *time.Location
}

func NewCollectService(source port.ReportSource, store port.Store, cal port.TradingCalendar, cache port.ReportCache, loc *time.Location) *CollectService {
	if loc == nil {
		loc = time.Local
	}
	return &CollectService{source: source, store: store, cal: cal, cache: cache, loc: loc}
}

// Run 执行一次日采集。date 为空时取当前日期；非交易日静默跳过。
// 对同一日期重复执行收敛到相同存储结果（幂等），且不会覆盖已人工
// 修正的 swap/opt 成交额（字段合并在存储层完成）。
func (s *CollectService) Run(ctx context.Context, date string) error {
	if date == "" {
		date = time.Now().In(s.loc).Format("20060102")
	}
	if !domain.ValidDate(date) {
		return fmt.Errorf("invalid trade date %q", date)
	}
	if !s.cal.IsTradingDay(date) {
		log.Debug().Str("date", date).Msg("not a trading day, skip collection")
		return nil
	}

	log.Info().Str("date", date).Msg("daily report collection start")

	steps := []struct {
		typ domain.ReportType
		fn  func(context.Context, string) error
	}{
		{domain.TypeWbill, s.collectWbill},
		{domain.TypeNonWbill, s.collectNonWbill},
		{domain.TypeBasis, s.collectBasis},
		{domain.TypeSwap, s.collectSwap},
		{domain.TypeOpt, s.collectOpt},
	}

	var errs []error
	for _, step := range steps {
		if err := step.fn(ctx, date); err != nil {
			log.Error().Str("date", date).Str("type", string(step.typ)).Err(err).Msg("report upsert failed")
			errs = append(errs, fmt.Errorf("%s: %w", step.typ, err))
		}
	}

	if s.cache != nil {
		if err := s.cache.InvalidateReport(ctx, date); err != nil {
			log.Warn().Str("date", date).Err(err).Msg("report cache invalidation failed")
		}
	}

	log.Info().Str("date", date).Int("failed", len(errs)).Msg("daily report collection end")
	return errors.Join(errs...)
}

func (s *CollectService) collectWbill(ctx context.Context, date string) error {
	rows, err := s.source.WbillMatches(ctx, date, date)
	if err != nil {
		log.Error().Str("date", date).Err(err).Msg("wbill match fetch failed, degrade to empty")
		rows = nil
	}
	applies, err := s.source.WbillApplies(ctx)
	if err != nil {
		log.Error().Str("date", date).Err(err).Msg("wbill apply fetch failed, degrade to empty")
		applies = nil
	}
	log.Info().Str("date", date).Int("rows", len(rows)).Msg("wbill match rows collected")
	return s.store.Upsert(ctx, ReduceWbill(date, rows, applies))
}

func (s *CollectService) collectNonWbill(ctx context.Context, date string) error {
	rows, err := s.source.SpotMatches(ctx, date, date)
	if err != nil {
		log.Error().Str("date", date).Err(err).Msg("non-wbill fetch failed, degrade to empty")
		rows = nil
	}
	log.Info().Str("date", date).Int("rows", len(rows)).Msg("non-wbill rows collected")
	return s.store.Upsert(ctx, ReduceNonWbill(date, rows))
}

func (s *CollectService) collectBasis(ctx context.Context, date string) error {
	rows, err := s.source.BasisTrades(ctx, date, date)
	if err != nil {
		log.Error().Str("date", date).Err(err).Msg("basis fetch failed, degrade to empty")
		rows = nil
	}
	log.Info().Str("date", date).Int("rows", len(rows)).Msg("basis rows collected")
	return s.store.Upsert(ctx, ReduceBasis(date, rows))
}

func (s *CollectService) collectSwap(ctx context.Context, date string) error {
	rows, err := s.source.SwapMatches(ctx, date, date)
	if err != nil {
		log.Error().Str("date", date).Err(err).Msg("swap fetch failed, degrade to empty")
		rows = nil
	}
	log.Info().Str("date", date).Int("rows", len(rows)).Msg("swap rows collected")
	return s.store.Upsert(ctx, ReduceSwap(date, rows))
}

func (s *CollectService) collectOpt(ctx context.Context, date string) error {
	rows, err := s.source.OptMatches(ctx, date, date)
	if err != nil {
		log.Error().Str("date", date).Err(err).Msg("opt fetch failed, degrade to empty")
		rows = nil
	}
	// 行数仅做规模记录，采集结果本身不入库
	log.Info().Str("date", date).Int("rows", len(rows)).Msg("opt rows collected, stored as empty by policy")
	return s.store.Upsert(ctx, ReduceOpt(date, rows))
}
