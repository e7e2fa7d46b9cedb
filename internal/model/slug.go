package model

import (
	"strings"
	"unicode"
)

// Slugify は表示名からURL安全なスラッグを生成する。
// 英数字以外の連続はハイフン1つに置き換え、先頭末尾のハイフンを除去する。
// ASCII外の文字（日本語等）はそのまま保持する。
func Slugify(name string) string {
	var b strings.Builder
	prevHyphen := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r > unicode.MaxASCII:
			b.WriteRune(r)
			prevHyphen = false
		default:
			if !prevHyphen && b.Len() > 0 {
				b.WriteByte('-')
				prevHyphen = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}
