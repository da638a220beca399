package dce

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, path string, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/"+path, r.URL.Path)
		require.Contains(t, r.Header.Get("User-Agent"), "DCE@jcb202207otc")
		require.Equal(t, "application/json;charset=UTF-8", r.Header.Get("Content-Type"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
}

// TestWbillMatches 数值字段可能是 number 也可能是带引号的字符串
func TestWbillMatches(t *testing.T) {
	srv := newTestServer(t, "wbillMatchList", `{
		"data": {"wbillMatchResultData": {"rows": [
			{"varietyId": "a", "varietyName": "玉米", "matchTotWeight": 100.5, "turnover": "251250"},
			{"varietyId": "m", "varietyName": "豆粕", "matchTotWeight": "50", "turnover": 180000}
		]}}
	}`)
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	rows, err := c.WbillMatches(context.Background(), "20250106", "20250106")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "玉米", rows[0].VarietyName)
	assert.Equal(t, 100.5, rows[0].MatchTotWeight)
	assert.Equal(t, 251250.0, rows[0].Turnover)
	assert.Equal(t, 50.0, rows[1].MatchTotWeight)
}

func TestWbillMatchesRequestBody(t *testing.T) {
	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_, _ = w.Write([]byte(`{"data": {"wbillMatchResultData": {"rows": []}}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	_, err := c.WbillMatches(context.Background(), "20250106", "20250106")
	require.NoError(t, err)

	qry, ok := captured["wbillMatchQryData"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "20250106", qry["startDate"])
	assert.Equal(t, "20250106", qry["endDate"])
	assert.Equal(t, float64(100), captured["limit"])
}

func TestWbillApplies(t *testing.T) {
	srv := newTestServer(t, "wbillApplyList", `{
		"data": {"wbillMatchResultData": {"rows": [
			{"opDate": "20250106"}, {"opDate": "20250103"}
		]}}
	}`)
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	rows, err := c.WbillApplies(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "20250106", rows[0].OpDate)
}

func TestBasisTrades(t *testing.T) {
	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_, _ = w.Write([]byte(`{
			"data": {"basisResultData": {"rows": [
				{"varietyId": "i", "varietyName": "铁矿石", "qty": "500", "nominalMatchAmt": 123.456}
			]}}
		}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	rows, err := c.BasisTrades(context.Background(), "20250106", "20250106")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 500.0, rows[0].Qty)
	assert.Equal(t, 123.456, rows[0].NominalMatchAmt)

	// 基差接口只查已成交状态
	qry, ok := captured["basisQryData"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "c", qry["orderStatus"])
}

func TestSwapMatches(t *testing.T) {
	srv := newTestServer(t, "swapMatch", `{
		"data": {"swapResultData": {"rows": [
			{"contractType": "1", "subjectContractId": "豆粕2209"}
		]}}
	}`)
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	rows, err := c.SwapMatches(context.Background(), "20250106", "20250106")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "1", rows[0].ContractType)
	assert.Equal(t, "豆粕2209", rows[0].SubjectContractID)
}

func TestPostHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "portal maintenance", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	_, err := c.OptMatches(context.Background(), "20250106", "20250106")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestPostBadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>not json</html>"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	_, err := c.SpotMatches(context.Background(), "20250106", "20250106")
	require.Error(t, err)
}

func TestNumberUnmarshal(t *testing.T) {
	var w wbillMatchWire
	require.NoError(t, json.Unmarshal([]byte(`{"matchTotWeight": "", "turnover": null}`), &w))
	assert.Equal(t, number(0), w.MatchTotWeight)
	assert.Equal(t, number(0), w.Turnover)

	var bad wbillMatchWire
	require.Error(t, json.Unmarshal([]byte(`{"turnover": "abc"}`), &bad))
}
