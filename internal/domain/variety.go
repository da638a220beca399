package domain

import (
	"sort"
	"strings"
)

// varietyRank 品种展示优先级，业务口径固定
var varietyRank = map[string]int{
	"豆一":         1,
	"豆粕":         2,
	"豆油":         3,
	"棕榈油":        4,
	"玉米":         5,
	"玉米淀粉":       6,
	"淀粉":         7,
	"大连商品交易所猪饲料": 8,
	"鸡蛋":         9,
	"乙二醇":        10,
	"苯乙烯":        11,
	"聚乙烯":        12,
	"聚丙烯":        13,
	"聚氯乙烯":       14,
	"铁矿石":        15,
}

const unrankedVariety = 999

// VarietySet 去重且保持首次插入顺序的品种名集合。
// 表外品种排在表内品种之后，相对顺序按插入顺序稳定。
type VarietySet struct {
	names []string
	seen  map[string]struct{}
}

func NewVarietySet() *VarietySet {
	return &VarietySet{seen: make(map[string]struct{})}
}

func (s *VarietySet) Add(name string) {
	if name == "" {
		return
	}
	if _, ok := s.seen[name]; ok {
		return
	}
	s.seen[name] = struct{}{}
	s.names = append(s.names, name)
}

func (s *VarietySet) Len() int { return len(s.names) }

// Sorted 按品种优先级返回稳定排序结果
func (s *VarietySet) Sorted() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	sort.SliceStable(out, func(i, j int) bool {
		return rankOf(out[i]) < rankOf(out[j])
	})
	return out
}

// Join 渲染为顿号分隔的展示串
func (s *VarietySet) Join() string {
	return strings.Join(s.Sorted(), "、")
}

func rankOf(name string) int {
	if r, ok := varietyRank[name]; ok {
		return r
	}
	return unrankedVariety
}
