package model

import "time"

// ThemePark はぬりえページのグルーピング単位となるテーマパークを表す。
// PageCountが1以上の間は削除できない（依存ページの保護）。
type ThemePark struct {
	ID           int64
	Name         string
	Slug         string
	Description  string // サニタイズ済みHTML
	Theme        string
	PageCount    int
	IsActive     bool
	DisplayOrder int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
