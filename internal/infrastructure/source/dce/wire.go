package dce

import (
	"fmt"
	"strconv"
	"strings"
)

// number 门户接口的数值字段，同一字段在不同报表里可能是 JSON number
// 也可能是带引号的字符串，统一归一为 float64
type number float64

func (n *number) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*n = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("numeric field %q: %w", s, err)
	}
	*n = number(v)
	return nil
}

type wbillMatchWire struct {
	VarietyID      string `json:"varietyId"`
	VarietyName    string `json:"varietyName"`
	MatchTotWeight number `json:"matchTotWeight"`
	Turnover       number `json:"turnover"`
}

type spotMatchWire struct {
	VarietyID   string `json:"varietyId"`
	VarietyName string `json:"varietyName"`
	ApplyWeight number `json:"applyWeight"`
	Price       number `json:"price"`
}

type basisWire struct {
	VarietyID       string `json:"varietyId"`
	VarietyName     string `json:"varietyName"`
	Qty             number `json:"qty"`
	NominalMatchAmt number `json:"nominalMatchAmt"`
}
