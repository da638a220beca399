package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/linrh-dut/otc-report/internal/application/port"
	"github.com/linrh-dut/otc-report/internal/domain"
)

func newTestRepo(t *testing.T) *Repo {
	t.Helper()
	repo, err := New(filepath.Join(t.TempDir(), "otc_report.db"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestUpsertAndGet(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	rep := domain.DailyReport{
		Date:         "20250106",
		Type:         domain.TypeWbill,
		VarietyIDs:   "a,m",
		VarietyNames: "豆粕、玉米",
		TradeNum:     3,
		Volume:       domain.Float64(180),
		Turnover:     domain.Float64(505000),
	}
	if err := repo.Upsert(ctx, rep); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	got, err := repo.Get(ctx, "20250106", domain.TypeWbill)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.TradeNum != 3 || *got.Volume != 180 || *got.Turnover != 505000 {
		t.Fatalf("got %+v", got)
	}
	if got.VarietyNames != "豆粕、玉米" {
		t.Fatalf("variety_names = %q", got.VarietyNames)
	}

	// 同键重复写入覆盖而不是报错
	rep.TradeNum = 4
	if err := repo.Upsert(ctx, rep); err != nil {
		t.Fatalf("second Upsert: %v", err)
	}
	got, err = repo.Get(ctx, "20250106", domain.TypeWbill)
	if err != nil {
		t.Fatalf("Get after update: %v", err)
	}
	if got.TradeNum != 4 {
		t.Fatalf("trade_num = %d, want 4", got.TradeNum)
	}
}

func TestGetMissing(t *testing.T) {
	repo := newTestRepo(t)
	_, err := repo.Get(context.Background(), "20250106", domain.TypeBasis)
	if !errors.Is(err, port.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

// TestSwapTurnoverSurvivesRecollection 修正后的 swap 成交额在重复采集
// 更新时保留，其余字段照常刷新
func TestSwapTurnoverSurvivesRecollection(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	first := domain.DailyReport{
		Date: "20250106", Type: domain.TypeSwap,
		VarietyNames: "豆粕", TradeNum: 2,
	}
	if err := repo.Upsert(ctx, first); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	// 采集阶段 swap 量额未定义
	got, err := repo.Get(ctx, "20250106", domain.TypeSwap)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Turnover != nil || got.Volume != nil {
		t.Fatalf("collected swap should have NULL volume/turnover: %+v", got)
	}

	if err := repo.ApplyCorrection(ctx, domain.Correction{
		Date: "20250106", Type: domain.TypeSwap, Turnover: 2.5e8,
	}); err != nil {
		t.Fatalf("ApplyCorrection: %v", err)
	}

	second := first
	second.TradeNum = 3
	second.VarietyNames = "豆粕、玉米"
	if err := repo.Upsert(ctx, second); err != nil {
		t.Fatalf("re-Upsert: %v", err)
	}

	got, err = repo.Get(ctx, "20250106", domain.TypeSwap)
	if err != nil {
		t.Fatalf("Get after re-collection: %v", err)
	}
	if got.Turnover == nil || *got.Turnover != 2.5e8 {
		t.Fatalf("corrected turnover lost: %v", got.Turnover)
	}
	if got.TradeNum != 3 || got.VarietyNames != "豆粕、玉米" {
		t.Fatalf("collection fields not refreshed: %+v", got)
	}
}

// TestCorrectionRequiresExistingRow 修正不建行
func TestCorrectionRequiresExistingRow(t *testing.T) {
	repo := newTestRepo(t)
	err := repo.ApplyCorrection(context.Background(), domain.Correction{
		Date: "20250106", Type: domain.TypeSwap, Turnover: 1e8,
	})
	if !errors.Is(err, port.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestCorrectionRejectsUncorrectableType(t *testing.T) {
	repo := newTestRepo(t)
	err := repo.ApplyCorrection(context.Background(), domain.Correction{
		Date: "20250106", Type: domain.TypeWbill, Turnover: 1e8,
	})
	if err == nil {
		t.Fatal("wbill should not accept corrections")
	}
}

func TestOptCorrectionFields(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.Upsert(ctx, domain.EmptyReport("20250106", domain.TypeOpt)); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	num := int64(12)
	names := "豆粕、玉米"
	if err := repo.ApplyCorrection(ctx, domain.Correction{
		Date: "20250106", Type: domain.TypeOpt,
		Turnover: 0.8e8, TradeNum: &num, VarietyNames: &names,
	}); err != nil {
		t.Fatalf("ApplyCorrection: %v", err)
	}

	got, err := repo.Get(ctx, "20250106", domain.TypeOpt)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if *got.Turnover != 0.8e8 || got.TradeNum != 12 || got.VarietyNames != names {
		t.Fatalf("got %+v", got)
	}
}

func TestQueryRange(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for _, d := range []string{"20250102", "20250106", "20250107"} {
		if err := repo.Upsert(ctx, domain.DailyReport{
			Date: d, Type: domain.TypeWbill,
			Volume: domain.Float64(1), Turnover: domain.Float64(100),
		}); err != nil {
			t.Fatalf("Upsert %s: %v", d, err)
		}
	}

	rows, err := repo.QueryRange(ctx, "20250101", "20250106")
	if err != nil {
		t.Fatalf("QueryRange: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("len = %d, want 2", len(rows))
	}
	if rows[0].Date != "20250102" || rows[1].Date != "20250106" {
		t.Fatalf("rows out of order: %s, %s", rows[0].Date, rows[1].Date)
	}
}

// TestQueryRangeCrossYear 跨年范围超出单个分表的覆盖范围
func TestQueryRangeCrossYear(t *testing.T) {
	repo := newTestRepo(t)
	if _, err := repo.QueryRange(context.Background(), "20241230", "20250102"); err == nil {
		t.Fatal("cross-year range should fail")
	}
}

func TestUpsertRejectsBadInput(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.Upsert(ctx, domain.DailyReport{Date: "2025", Type: domain.TypeWbill}); err == nil {
		t.Fatal("malformed date should fail")
	}
	if err := repo.Upsert(ctx, domain.DailyReport{Date: "20250106", Type: "bogus"}); err == nil {
		t.Fatal("unknown type should fail")
	}
}
