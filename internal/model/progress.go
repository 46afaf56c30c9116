// Package model はドメインモデルを定義する。
package model

import "time"

// ProgressRecord はユーザーごとの再生位置を表す。
// (UserID, AudiobookID) の組につき最大1件。
type ProgressRecord struct {
	UserID          string
	AudiobookID     int64
	CurrentPosition int // 秒
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// LibraryEntry はユーザーが自分のライブラリに追加したオーディオブックを表す。
type LibraryEntry struct {
	UserID      string
	AudiobookID int64
	AddedAt     time.Time
}

// LibraryItem はライブラリのオーディオブックと再生位置を結合したモデル。
// listening_progressテーブルとLEFT JOINして取得される。
// Progressがnilの場合は未再生を表す。
type LibraryItem struct {
	Audiobook
	AddedAt         time.Time
	Progress        *ProgressRecord
	PercentComplete float64
}

// PlayerView はプレイヤー画面を開く際に必要なデータ。
type PlayerView struct {
	Audiobook
	ResumeOffset int // 再生開始位置（秒）
	InLibrary    bool
}
