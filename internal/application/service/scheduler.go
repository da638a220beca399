package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Scheduler 周期性触发日采集任务。非交易日的触发在任务内部被跳过，
// 所以这里只需要固定节拍；任务耗时远小于触发间隔。
type Scheduler struct {
	collector *CollectService
	interval  time.Duration
}

func NewScheduler(collector *CollectService, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &Scheduler{collector: collector, interval: interval}
}

// Run 阻塞运行：启动时先执行一次，之后按间隔触发，ctx 取消后退出。
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.runOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("collect scheduler stopped")
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	if err := s.collector.Run(ctx, ""); err != nil {
		log.Error().Err(err).Msg("scheduled collection finished with errors")
	}
}
