package service

import "time"

// DateFormat 日期在 API 与缓存键中的统一格式
const DateFormat = "2006-01-02"

// normalizeToDate 取 t 所在时区的日历日，存储为 UTC 零点，保证同一天在任意驱动下等值比较一致
func normalizeToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// daysAgo 返回归一化后的 today 往前 n 天
func daysAgo(today time.Time, n int) time.Time {
	return normalizeToDate(today).AddDate(0, 0, -n)
}
