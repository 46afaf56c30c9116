// Package model はドメインモデルを定義する。
package model

import "time"

// Category はオーディオブックのカテゴリを表す。
type Category struct {
	ID   int64
	Name string
}

// Audiobook はカタログに登録されたオーディオブックを表す。
// このサービスからは読み取り専用。
type Audiobook struct {
	ID              int64
	Title           string
	Author          string
	Description     string // サニタイズ済みHTML
	CoverPath       string
	AudioPath       string
	DurationSeconds int
	CategoryID      int64
	CategoryName    string
	CreatedAt       time.Time
}
