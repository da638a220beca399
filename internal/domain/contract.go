package domain

import (
	"fmt"
	"strings"
)

// 商品互换合约类型编码（平台口径）
const (
	SwapContractSingle = "1" // 单商品互换
	SwapContractIndex  = "2" // 指数互换
	SwapContractSpread = "3" // 价差互换
)

const (
	swapMonthSuffixLen = 4    // 合约月份后缀，如 2209
	swapIndexPrefixLen = 7    // 指数标的的交易所前缀，如 大连商品交易所
	swapIndexMarker    = "期货" // 指数标的中品种名的结束标记
	swapSpreadPrefix   = 2    // 价差段的业务前缀长度
)

// SwapVarietyName 从互换合约标的编号中解析品种名。
// 标的编号是半结构化文本，按合约类型有三种布局；不满足布局的编号
// 返回错误而不是截出乱码。
//
//	类型1   豆粕2209               -> 豆粕
//	类型2   大连商品交易所豆粕期货价格指数  -> 豆粕
//	类型3   XX豆粕2209-XX豆粕2301   -> 豆粕
func SwapVarietyName(contractType, subjectContractID string) (string, error) {
	id := strings.TrimSpace(subjectContractID)
	if id == "" {
		return "", fmt.Errorf("empty subject contract id")
	}

	switch contractType {
	case SwapContractSingle:
		return stripMonthSuffix(id)

	case SwapContractIndex:
		r := []rune(id)
		if len(r) <= swapIndexPrefixLen {
			return "", fmt.Errorf("index swap contract %q too short", id)
		}
		rest := string(r[swapIndexPrefixLen:])
		name, _, found := strings.Cut(rest, swapIndexMarker)
		if !found || name == "" {
			return "", fmt.Errorf("index swap contract %q missing %q marker", id, swapIndexMarker)
		}
		return name, nil

	case SwapContractSpread:
		leg, _, _ := strings.Cut(id, "-")
		r := []rune(leg)
		if len(r) <= swapSpreadPrefix+swapMonthSuffixLen {
			return "", fmt.Errorf("spread swap contract %q leg too short", id)
		}
		return string(r[swapSpreadPrefix : len(r)-swapMonthSuffixLen]), nil
	}

	return "", fmt.Errorf("unknown swap contract type %q", contractType)
}

func stripMonthSuffix(id string) (string, error) {
	r := []rune(id)
	if len(r) <= swapMonthSuffixLen {
		return "", fmt.Errorf("contract id %q shorter than month suffix", id)
	}
	return string(r[:len(r)-swapMonthSuffixLen]), nil
}
