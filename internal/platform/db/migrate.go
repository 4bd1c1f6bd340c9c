package db

import (
	"context"
	"database/sql"
	"fmt"
	"log"
)

// 起動時に足りないテーブルだけ作る。ALTERは扱わない（スキーマ変更は手動）。
var migrations = []struct {
	name string
	ddl  string
}{
	{
		name: "staff_accounts",
		ddl: `CREATE TABLE IF NOT EXISTS staff_accounts (
			id            VARCHAR(64)  NOT NULL PRIMARY KEY,
			password_hash VARCHAR(255) NOT NULL,
			role          VARCHAR(32)  NOT NULL DEFAULT 'staff',
			is_disabled   TINYINT(1)   NOT NULL DEFAULT 0,
			created_at    DATETIME(6)  NOT NULL DEFAULT CURRENT_TIMESTAMP(6)
		)`,
	},
	{
		name: "card_applications",
		ddl: `CREATE TABLE IF NOT EXISTS card_applications (
			application_id   BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
			application_ulid CHAR(26)     NOT NULL,
			account_id       VARCHAR(64)  NULL,
			first_name       VARCHAR(100) NOT NULL,
			last_name        VARCHAR(100) NULL,
			student_class    VARCHAR(50)  NOT NULL DEFAULT '',
			field            VARCHAR(50)  NOT NULL DEFAULT '',
			roll_no          VARCHAR(50)  NOT NULL,
			phone            VARCHAR(30)  NOT NULL,
			email            VARCHAR(255) NULL,
			address          VARCHAR(255) NULL,
			status           ENUM('pending','approved','rejected') NOT NULL DEFAULT 'pending',
			card_number      VARCHAR(50)  NOT NULL,
			student_id       VARCHAR(20)  NOT NULL,
			issue_date       DATE         NOT NULL,
			valid_through    DATE         NOT NULL,
			password_hash    VARCHAR(255) NULL,
			created_at       DATETIME(6)  NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
			updated_at       DATETIME(6)  NOT NULL DEFAULT CURRENT_TIMESTAMP(6) ON UPDATE CURRENT_TIMESTAMP(6),
			UNIQUE KEY uq_application_ulid (application_ulid),
			KEY idx_card_number (card_number)
		)`,
	},
	{
		name: "students",
		ddl: `CREATE TABLE IF NOT EXISTS students (
			student_pk    BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
			account_id    VARCHAR(64)  NOT NULL,
			card_id       VARCHAR(50)  NOT NULL,
			name          VARCHAR(200) NOT NULL,
			student_class VARCHAR(50)  NOT NULL DEFAULT '',
			field         VARCHAR(50)  NOT NULL DEFAULT '',
			roll_no       VARCHAR(50)  NOT NULL,
			created_at    DATETIME(6)  NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
			UNIQUE KEY uq_card_id (card_id)
		)`,
	},
	{
		name: "books",
		ddl: `CREATE TABLE IF NOT EXISTS books (
			book_id          BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
			title            VARCHAR(255) NOT NULL,
			author           VARCHAR(255) NOT NULL DEFAULT '',
			total_copies     INT UNSIGNED NOT NULL DEFAULT 0,
			available_copies INT UNSIGNED NOT NULL DEFAULT 0,
			image_url        VARCHAR(500) NULL,
			pdf_url          VARCHAR(500) NULL,
			created_at       DATETIME(6)  NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
			updated_at       DATETIME(6)  NOT NULL DEFAULT CURRENT_TIMESTAMP(6) ON UPDATE CURRENT_TIMESTAMP(6)
		)`,
	},
	{
		name: "book_borrows",
		ddl: `CREATE TABLE IF NOT EXISTS book_borrows (
			borrow_id      BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
			borrow_ulid    CHAR(26)     NOT NULL,
			book_id        BIGINT UNSIGNED NOT NULL,
			book_title     VARCHAR(255) NOT NULL,
			borrower_id    VARCHAR(64)  NOT NULL,
			borrower_name  VARCHAR(200) NOT NULL,
			borrower_phone VARCHAR(30)  NULL,
			borrower_email VARCHAR(255) NULL,
			borrow_date    DATETIME(6)  NOT NULL,
			due_date       DATETIME(6)  NOT NULL,
			return_date    DATETIME(6)  NULL,
			status         ENUM('borrowed','returned') NOT NULL DEFAULT 'borrowed',
			UNIQUE KEY uq_borrow_ulid (borrow_ulid),
			KEY idx_borrower (borrower_id),
			KEY idx_book (book_id)
		)`,
	},
}

func Migrate(ctx context.Context, db *sql.DB) error {
	for _, m := range migrations {
		if _, err := db.ExecContext(ctx, m.ddl); err != nil {
			return fmt.Errorf("migrate %s: %w", m.name, err)
		}
		log.Printf("[INFO] migrate: %s ok", m.name)
	}
	return nil
}
