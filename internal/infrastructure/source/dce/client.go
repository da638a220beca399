package dce

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/linrh-dut/otc-report/internal/application/port"
)

const defaultBaseURL = "http://otc.dce.com.cn/portal/data/app"

// 门户要求带标识后缀的 UA，否则拒绝请求
const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/84.0.4147.105 Safari/537.36DCE@jcb202207otc"

// 单页拉取上限。日采集默认一页覆盖全天数据，超出上限属于已知的
// 规模限制，由调用方负责调整，不做翻页。
const (
	pageLimit      = 100
	applyPageLimit = 1000
)

// Client 场外平台各报表接口的 HTTP 客户端
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// dateRangeQry 各接口共用的日期区间查询体
type dateRangeQry struct {
	StartDate     string   `json:"startDate"`
	EndDate       string   `json:"endDate"`
	VarietyIDList []string `json:"varietyIdList"`
}

func rangeQry(start, end string) dateRangeQry {
	return dateRangeQry{StartDate: start, EndDate: end, VarietyIDList: []string{}}
}

// WbillMatches 标准仓单成交列表
func (c *Client) WbillMatches(ctx context.Context, startDate, endDate string) ([]port.WbillMatchRow, error) {
	payload := map[string]any{
		"wbillMatchQryData": rangeQry(startDate, endDate),
		"page":              1,
		"limit":             pageLimit,
	}
	var env struct {
		Data struct {
			Result struct {
				Rows []wbillMatchWire `json:"rows"`
			} `json:"wbillMatchResultData"`
		} `json:"data"`
	}
	if err := c.post(ctx, "wbillMatchList", payload, &env); err != nil {
		return nil, err
	}
	rows := make([]port.WbillMatchRow, 0, len(env.Data.Result.Rows))
	for _, w := range env.Data.Result.Rows {
		rows = append(rows, port.WbillMatchRow{
			VarietyID:      w.VarietyID,
			VarietyName:    w.VarietyName,
			MatchTotWeight: float64(w.MatchTotWeight),
			Turnover:       float64(w.Turnover),
		})
	}
	return rows, nil
}

// WbillApplies 标准仓单申请列表。接口不支持日期过滤，拉全量后由
// 调用方按操作日期筛选。
func (c *Client) WbillApplies(ctx context.Context) ([]port.WbillApplyRow, error) {
	payload := map[string]any{
		"wbillMatchQryData": map[string]any{"varietyIdList": []string{}},
		"page":              1,
		"limit":             applyPageLimit,
	}
	var env struct {
		Data struct {
			Result struct {
				Rows []port.WbillApplyRow `json:"rows"`
			} `json:"wbillMatchResultData"`
		} `json:"data"`
	}
	if err := c.post(ctx, "wbillApplyList", payload, &env); err != nil {
		return nil, err
	}
	return env.Data.Result.Rows, nil
}

// SpotMatches 非标准仓单（现货）成交列表
func (c *Client) SpotMatches(ctx context.Context, startDate, endDate string) ([]port.SpotMatchRow, error) {
	payload := map[string]any{
		"spotQryData": rangeQry(startDate, endDate),
		"page":        1,
		"limit":       pageLimit,
	}
	var env struct {
		Data struct {
			Result struct {
				Rows []spotMatchWire `json:"rows"`
			} `json:"spotResultData"`
		} `json:"data"`
	}
	if err := c.post(ctx, "nonWbillMatchList", payload, &env); err != nil {
		return nil, err
	}
	rows := make([]port.SpotMatchRow, 0, len(env.Data.Result.Rows))
	for _, w := range env.Data.Result.Rows {
		rows = append(rows, port.SpotMatchRow{
			VarietyID:   w.VarietyID,
			VarietyName: w.VarietyName,
			ApplyWeight: float64(w.ApplyWeight),
			Price:       float64(w.Price),
		})
	}
	return rows, nil
}

// BasisTrades 基差交易列表，只取已成交状态
func (c *Client) BasisTrades(ctx context.Context, startDate, endDate string) ([]port.BasisRow, error) {
	payload := map[string]any{
		"basisQryData": struct {
			OrderStatus string `json:"orderStatus"`
			dateRangeQry
		}{OrderStatus: "c", dateRangeQry: rangeQry(startDate, endDate)},
		"page":  1,
		"limit": pageLimit,
	}
	var env struct {
		Data struct {
			Result struct {
				Rows []basisWire `json:"rows"`
			} `json:"basisResultData"`
		} `json:"data"`
	}
	if err := c.post(ctx, "indexBasis", payload, &env); err != nil {
		return nil, err
	}
	rows := make([]port.BasisRow, 0, len(env.Data.Result.Rows))
	for _, w := range env.Data.Result.Rows {
		rows = append(rows, port.BasisRow{
			VarietyID:       w.VarietyID,
			VarietyName:     w.VarietyName,
			Qty:             float64(w.Qty),
			NominalMatchAmt: float64(w.NominalMatchAmt),
		})
	}
	return rows, nil
}

// SwapMatches 商品互换成交列表
func (c *Client) SwapMatches(ctx context.Context, startDate, endDate string) ([]port.SwapRow, error) {
	payload := map[string]any{
		"swapQryData": struct {
			dateRangeQry
			ContractType string `json:"contractType"`
		}{dateRangeQry: rangeQry(startDate, endDate)},
		"page":  1,
		"limit": pageLimit,
	}
	var env struct {
		Data struct {
			Result struct {
				Rows []port.SwapRow `json:"rows"`
			} `json:"swapResultData"`
		} `json:"data"`
	}
	if err := c.post(ctx, "swapMatch", payload, &env); err != nil {
		return nil, err
	}
	return env.Data.Result.Rows, nil
}

// OptMatches 场外期权成交列表
func (c *Client) OptMatches(ctx context.Context, startDate, endDate string) ([]port.OptRow, error) {
	payload := map[string]any{
		"optQryData": struct {
			dateRangeQry
			ContractType string `json:"contractType"`
		}{dateRangeQry: rangeQry(startDate, endDate)},
		"page":  1,
		"limit": pageLimit,
	}
	var env struct {
		Data struct {
			Result struct {
				Rows []port.OptRow `json:"rows"`
			} `json:"optResultData"`
		} `json:"data"`
	}
	if err := c.post(ctx, "optMatch", payload, &env); err != nil {
		return nil, err
	}
	return env.Data.Result.Rows, nil
}

func (c *Client) post(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json;charset=UTF-8")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s: http %d: %s", path, resp.StatusCode, string(snippet))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode response: %w", path, err)
	}
	return nil
}

var _ port.ReportSource = (*Client)(nil)
