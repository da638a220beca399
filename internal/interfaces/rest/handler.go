package rest

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/rs/zerolog/log"

	"github.com/linrh-dut/otc-report/internal/application/port"
	"github.com/linrh-dut/otc-report/internal/application/service"
	"github.com/linrh-dut/otc-report/internal/domain"
)

// Handler 看板只读接口与人工修正接口
type Handler struct {
	queries     *service.QueryService
	corrections *service.CorrectionService
	cache       port.ReportCache // 可为 nil
	loc         *time.Location
}

func NewHandler(queries *service.QueryService, corrections *service.CorrectionService, cache port.ReportCache, loc *time.Location) *Handler {
	if loc == nil {
		loc = time.Local
	}
	return &Handler{queries: queries, corrections: corrections, cache: cache, loc: loc}
}

func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(recoverer)
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/swapTradeInfo", h.SwapTradeInfo)
	r.Get("/optReport", h.OptReport)
	r.Get("/trailingTurnover", h.TrailingTurnover)
	r.Post("/correction/swap", h.CorrectSwap)
	r.Post("/correction/opt", h.CorrectOption)
	return r
}

// recoverer 聚合过程中的任何未处理异常都折叠为通用失败状态
func recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Error().Str("path", r.URL.Path).Interface("panic", rec).Msg("handler panicked")
				w.Header().Set("Content-Type", "application/json; charset=utf-8")
				w.WriteHeader(http.StatusInternalServerError)
				_ = json.NewEncoder(w).Encode(statusPayload{Status: http.StatusInternalServerError, Message: "internal error"})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// dateParam 读取 date 查询参数，缺省为当前日期
func (h *Handler) dateParam(r *http.Request) string {
	if d := r.URL.Query().Get("date"); d != "" {
		return d
	}
	return time.Now().In(h.loc).Format("20060102")
}

// SwapTradeInfo GET /swapTradeInfo?date=
// 当日互换业务笔数与名义本金（亿元）。记录缺失按 (0, 0) 返回。
func (h *Handler) SwapTradeInfo(w http.ResponseWriter, r *http.Request) {
	date := h.dateParam(r)
	if !domain.ValidDate(date) {
		writeBadRequest(w, r, "date must be yyyymmdd")
		return
	}

	num, turnover, err := h.queries.SwapInfo(r.Context(), date)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeOK(w, r, struct {
		Status   int     `json:"status"`
		Num      int64   `json:"num"`
		Turnover float64 `json:"turnover"`
	}{http.StatusOK, num, round2(turnover)})
}

// OptReport GET /optReport?date=
// 整版看板数据：当日各类型 + 近5个交易日 + 当月/当年汇总。
func (h *Handler) OptReport(w http.ResponseWriter, r *http.Request) {
	date := h.dateParam(r)
	if !domain.ValidDate(date) {
		writeBadRequest(w, r, "date must be yyyymmdd")
		return
	}

	if h.cache != nil {
		if b, ok := h.cache.GetReport(r.Context(), date); ok {
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write(b)
			return
		}
	}

	payload, found, err := h.buildReport(r.Context(), date)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	if !found {
		writeNoData(w, r, date)
		return
	}

	if h.cache != nil {
		if b, err := json.Marshal(payload); err == nil {
			if err := h.cache.SetReport(r.Context(), date, b); err != nil {
				log.Warn().Str("date", date).Err(err).Msg("report cache write failed")
			}
		}
	}
	writeOK(w, r, payload)
}

// TrailingTurnover GET /trailingTurnover?date=&order=asc|desc
// 近5个有成交交易日的分类型成交额，方向由调用方指定。
func (h *Handler) TrailingTurnover(w http.ResponseWriter, r *http.Request) {
	date := h.dateParam(r)
	if !domain.ValidDate(date) {
		writeBadRequest(w, r, "date must be yyyymmdd")
		return
	}
	order := r.URL.Query().Get("order")
	if order == "" {
		order = "desc"
	}
	if order != "asc" && order != "desc" {
		writeBadRequest(w, r, "order must be asc or desc")
		return
	}

	groups, err := h.queries.Trailing(r.Context(), date, 5, order == "asc")
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeOK(w, r, struct {
		Status int `json:"status"`
		weeklyBlock
	}{http.StatusOK, buildWeekly(groups)})
}

type swapCorrectionReq struct {
	Date     string  `json:"date"`
	Turnover float64 `json:"turnover"` // 单位：亿元
}

// CorrectSwap POST /correction/swap
// 覆盖当日互换名义本金。目标记录不存在时返回失败，不建行。
func (h *Handler) CorrectSwap(w http.ResponseWriter, r *http.Request) {
	var req swapCorrectionReq
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		writeBadRequest(w, r, "invalid request body")
		return
	}
	if req.Date == "" {
		req.Date = time.Now().In(h.loc).Format("20060102")
	}
	if !domain.ValidDate(req.Date) {
		writeBadRequest(w, r, "date must be yyyymmdd")
		return
	}

	if err := h.corrections.CorrectSwap(r.Context(), req.Date, req.Turnover); err != nil {
		h.writeCorrectionError(w, r, req.Date, err)
		return
	}
	writeOK(w, r, statusPayload{Status: http.StatusOK})
}

type optCorrectionReq struct {
	Date      string    `json:"date"`
	Turnover  float64   `json:"turnover"` // 单位：亿元
	Num       flexInt64 `json:"num"`
	Varieties string    `json:"varieties"`
}

// CorrectOption POST /correction/opt
// 覆盖当日期权的成交额、笔数与品种串；笔数为 0 时成交额强制归零。
func (h *Handler) CorrectOption(w http.ResponseWriter, r *http.Request) {
	var req optCorrectionReq
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		writeBadRequest(w, r, "invalid request body")
		return
	}
	if req.Date == "" {
		req.Date = time.Now().In(h.loc).Format("20060102")
	}
	if !domain.ValidDate(req.Date) {
		writeBadRequest(w, r, "date must be yyyymmdd")
		return
	}
	if req.Num < 0 {
		writeBadRequest(w, r, "num must be non-negative")
		return
	}

	if err := h.corrections.CorrectOption(r.Context(), req.Date, req.Turnover, int64(req.Num), req.Varieties); err != nil {
		h.writeCorrectionError(w, r, req.Date, err)
		return
	}
	writeOK(w, r, statusPayload{Status: http.StatusOK})
}

func (h *Handler) writeCorrectionError(w http.ResponseWriter, r *http.Request, date string, err error) {
	if errors.Is(err, port.ErrNotFound) {
		writeNoData(w, r, date)
		return
	}
	writeFailure(w, r, err)
}
