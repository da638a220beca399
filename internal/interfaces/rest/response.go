package rest

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/render"
	"github.com/rs/zerolog/log"
)

// 读接口统一的顶层 status 字段：200 成功，400 参数错误，404 无数据，
// 500 聚合失败（不向外暴露内部错误细节）。

type statusPayload struct {
	Status  int    `json:"status"`
	Message string `json:"message,omitempty"`
}

func writeOK(w http.ResponseWriter, r *http.Request, payload any) {
	render.Status(r, http.StatusOK)
	render.JSON(w, r, payload)
}

func writeNoData(w http.ResponseWriter, r *http.Request, date string) {
	render.Status(r, http.StatusNotFound)
	render.JSON(w, r, statusPayload{Status: http.StatusNotFound, Message: fmt.Sprintf("no data for date %s", date)})
}

func writeBadRequest(w http.ResponseWriter, r *http.Request, msg string) {
	render.Status(r, http.StatusBadRequest)
	render.JSON(w, r, statusPayload{Status: http.StatusBadRequest, Message: msg})
}

func writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	log.Error().Str("path", r.URL.Path).Err(err).Msg("request failed")
	render.Status(r, http.StatusInternalServerError)
	render.JSON(w, r, statusPayload{Status: http.StatusInternalServerError, Message: "internal error"})
}

// flexInt64 表单来源的整数，兼容 JSON number 与带引号字符串
type flexInt64 int64

func (n *flexInt64) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*n = 0
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("integer field %q: %w", s, err)
	}
	*n = flexInt64(v)
	return nil
}
