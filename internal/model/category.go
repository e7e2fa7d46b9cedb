package model

import "time"

// Category はぬりえページの分類カテゴリを表す。
type Category struct {
	ID           int64
	Name         string
	Slug         string
	Description  string // サニタイズ済みHTML
	Color        string // 表示用のカラーコード（例: "#ff9800"）
	IsActive     bool
	DisplayOrder int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// DisplayName は表示用のカテゴリ名を返す。名前が空の場合は "Other" を返す。
func (c *Category) DisplayName() string {
	if c.Name == "" {
		return "Other"
	}
	return c.Name
}
