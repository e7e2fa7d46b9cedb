// Package model はドメインモデルを定義する。
package model

import "time"

// Difficulty はぬりえページの難易度を表す。
type Difficulty string

const (
	// DifficultyEasy は易しい難易度。
	DifficultyEasy Difficulty = "easy"
	// DifficultyMedium は普通の難易度。
	DifficultyMedium Difficulty = "medium"
	// DifficultyHard は難しい難易度。
	DifficultyHard Difficulty = "hard"
)

// Rank は難易度のソート用順序値を返す（easy=1 < medium=2 < hard=3）。
// 未知の値は0を返し、ソートでは先頭に並ぶ。
func (d Difficulty) Rank() int {
	switch d {
	case DifficultyEasy:
		return 1
	case DifficultyMedium:
		return 2
	case DifficultyHard:
		return 3
	default:
		return 0
	}
}

// IsValid は難易度が定義済みの値かを返す。
func (d Difficulty) IsValid() bool {
	return d == DifficultyEasy || d == DifficultyMedium || d == DifficultyHard
}

// ColoringPage は印刷用ぬりえページを表す。
type ColoringPage struct {
	ID           int64
	Title        string
	Slug         string
	Description  string // サニタイズ済みHTML
	ImageURL     string
	Category     string // カテゴリのスラッグ。空の場合は表示時に "Other" に正規化される
	ParkSlug     string // テーマパークのスラッグ。未所属の場合は空
	Difficulty   Difficulty
	IsActive     bool
	DisplayOrder int
	Likes        int
	Downloads    int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CategoryLabel は表示用のカテゴリラベルを返す。
// カテゴリ未設定のページは "Other" として扱う。保存値は変更しない。
func (p *ColoringPage) CategoryLabel() string {
	if p.Category == "" {
		return "Other"
	}
	return p.Category
}
