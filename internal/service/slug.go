package service

import (
	"fmt"
	"strings"
	"time"
)

// Slugify 标题转 URL 片段：小写、空白折叠为连字符、
// 去除 [a-z0-9-] 之外的字符、折叠并修剪连字符
func Slugify(s string) string {
	var b strings.Builder
	prevHyphen := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			prevHyphen = false
		case r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '-':
			if !prevHyphen && b.Len() > 0 {
				b.WriteByte('-')
				prevHyphen = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// PostSlug 在标题 slug 后追加毫秒时间戳的后 6 位作为去重后缀。
// 只是降低冲突概率而非保证；插入时由唯一索引兜底，冲突则换后缀重试。
func PostSlug(title string, now time.Time) string {
	ms := fmt.Sprintf("%d", now.UnixMilli())
	if len(ms) > 6 {
		ms = ms[len(ms)-6:]
	}
	return Slugify(title) + "-" + ms
}
