package model

import "time"

// PromoKeyword はトップページ等に表示するプロモーションキーワードを表す。
// StartDate/EndDateは公開期間の境界（両端を含む）。nilの場合は無期限。
type PromoKeyword struct {
	ID           int64
	Keyword      string
	ClickCount   int
	IsActive     bool
	DisplayOrder int
	StartDate    *time.Time
	EndDate      *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ActiveOn は指定日にキーワードが公開対象かを返す。
// IsActiveがtrueで、かつStartDate <= day <= EndDate（未設定の境界は無制限）の
// 場合にのみtrueを返す。比較は日付単位で行い、時刻は無視する。
func (k *PromoKeyword) ActiveOn(day time.Time) bool {
	if !k.IsActive {
		return false
	}
	d := truncateToDate(day)
	if k.StartDate != nil && truncateToDate(*k.StartDate).After(d) {
		return false
	}
	if k.EndDate != nil && truncateToDate(*k.EndDate).Before(d) {
		return false
	}
	return true
}

// truncateToDate は時刻を切り捨てて日付のみにする。
func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
