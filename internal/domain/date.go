package domain

// 日期始终是 yyyymmdd 字符串，不做数值转换（避免前导字符被截断）。

// ValidDate reports whether s is an 8-digit yyyymmdd string.
func ValidDate(s string) bool {
	if len(s) != 8 {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// YearOf 返回日期所属年份（分表键）
func YearOf(date string) string { return date[:4] }

// MonthStart 当月首日
func MonthStart(date string) string { return date[:6] + "01" }

// YearStart 当年首日
func YearStart(date string) string { return date[:4] + "0101" }
