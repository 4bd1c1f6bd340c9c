package applications

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ===== カード番号・学生ID生成 =====
//
// カード番号は「学科コード-整理済み学籍番号-学年コード」の人間可読な形式。
// 同じ入力からは必ず同じ番号が出る（決定的）。一意性は構成上保証しない。

var fieldCodes = map[string]string{
	"Computer Science": "CS",
	"Pre-Medical":      "PM",
	"Pre-Engineering":  "PE",
	"Humanities":       "HU",
	"Commerce":         "CO",
}

var classCodes = map[string]string{
	"Class 11":   "11",
	"Class 12":   "12",
	"ADS I":      "AI",
	"ADS II":     "AII",
	"BSc Part 1": "BI",
	"BSc Part 2": "BII",
}

const unknownCode = "XX"

// 学籍番号の先頭が「英字1文字＋任意のハイフン」ならそれを落とす（A-123 → 123）
var rollPrefixRe = regexp.MustCompile(`^[A-Za-z]-?`)

var upperCaser = cases.Upper(language.Und)

// GenerateCardNumber は申請内容からカード番号を組み立てる。
// 未知の学科・学年は XX に落とす。
func GenerateCardNumber(field, rollNo, studentClass string) string {
	fc, ok := fieldCodes[field]
	if !ok {
		fc = unknownCode
	}
	cc, ok := classCodes[studentClass]
	if !ok {
		cc = unknownCode
	}
	roll := rollPrefixRe.ReplaceAllString(strings.TrimSpace(rollNo), "")
	return fmt.Sprintf("%s-%s-%s", fc, roll, cc)
}

// CanonicalCardNumber はカード番号を保存・照合用の正規形（大文字）に揃える。
// 照合は常にこの正規形同士で行うので大文字小文字は区別されない。
func CanonicalCardNumber(cardNumber string) string {
	return upperCaser.String(strings.TrimSpace(cardNumber))
}

const studentIDPrefix = "LIB-"

// GenerateStudentID は「LIB-」+ 6桁ゼロ埋め乱数の学生IDを返す。
// 低頻度運用前提で一意性チェックはしない。
func GenerateStudentID() string {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		// crypto/rand が失敗する環境では諦めて時刻由来で埋める
		return fmt.Sprintf("%s%06d", studentIDPrefix, time.Now().UnixNano()%1000000)
	}
	return fmt.Sprintf("%s%06d", studentIDPrefix, n.Int64())
}

// ValidityWindow は発行日（当日・日付のみ）と有効期限（発行日+1年）を返す。
func ValidityWindow(now time.Time) (issueDate, validThrough time.Time) {
	issueDate = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	validThrough = issueDate.AddDate(1, 0, 0)
	return issueDate, validThrough
}
