package books

import (
	"database/sql"
	"time"
)

// Book は books テーブルの1行。available_copies は貸出・返却
// （borrowsパッケージ）だけが増減させる。ここでの編集は蔵書数の変更のみ。
type Book struct {
	BookID          int64
	Title           string
	Author          string
	TotalCopies     int
	AvailableCopies int
	ImageURL        sql.NullString
	PDFURL          sql.NullString
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type SearchQuery struct {
	Title  string
	Author string
}

type Page struct {
	Limit  int
	Offset int
	Order  string
}
