package calendar

import (
	"fmt"
	"os"
	"sync"

	"github.com/gocarina/gocsv"

	"github.com/linrh-dut/otc-report/internal/application/port"
	"github.com/linrh-dut/otc-report/internal/domain"
)

// 交易日历：无表头 CSV，每行一个 yyyymmdd 交易日
type tradeDateRow struct {
	Date string `csv:"date"`
}

// Calendar 文件持久化的交易日历。交易所发布新年度日历后替换文件并
// Reload 即可，不需要重启进程。
type Calendar struct {
	path string

	mu   sync.RWMutex
	days map[string]struct{}
}

func Load(path string) (*Calendar, error) {
	c := &Calendar{path: path}
	if err := c.Reload(); err != nil {
		return nil, err
	}
	return c, nil
}

// Reload 重新读取日历文件，整批替换
func (c *Calendar) Reload() error {
	f, err := os.Open(c.path)
	if err != nil {
		return fmt.Errorf("open trade calendar: %w", err)
	}
	defer f.Close()

	var rows []tradeDateRow
	if err := gocsv.UnmarshalWithoutHeaders(f, &rows); err != nil {
		return fmt.Errorf("parse trade calendar: %w", err)
	}

	days := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		if domain.ValidDate(row.Date) {
			days[row.Date] = struct{}{}
		}
	}

	c.mu.Lock()
	c.days = days
	c.mu.Unlock()
	return nil
}

func (c *Calendar) IsTradingDay(date string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.days[date]
	return ok
}

var _ port.TradingCalendar = (*Calendar)(nil)
