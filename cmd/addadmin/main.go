// addadmin は最初の管理者アカウントをDBに直接作るための運用ツール。
// APIのアカウント登録はadmin専用なので、初回だけこれで種を撒く。
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"syscall"

	_ "github.com/go-sql-driver/mysql"
	"golang.org/x/term"

	"LIBRA-backend/internal/platform/auth"
	"LIBRA-backend/internal/platform/db"
)

func readPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	b, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return "", err
	}
	fmt.Println()
	return strings.TrimSpace(string(b)), nil
}

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	id := flag.String("id", "", "account id (required)")
	flag.Parse()

	if *id == "" {
		fmt.Fprintln(os.Stderr, "Usage: addadmin -id <account_id> [-config config/config.yaml]")
		os.Exit(1)
	}

	cfg, err := db.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	conn, err := db.Connect(cfg.DB)
	if err != nil {
		fmt.Fprintf(os.Stderr, "db: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close()

	if err := db.Migrate(context.Background(), conn); err != nil {
		fmt.Fprintf(os.Stderr, "migrate: %v\n", err)
		os.Exit(1)
	}

	password, err := readPassword("Password: ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "read password: %v\n", err)
		os.Exit(1)
	}
	confirm, err := readPassword("Confirm: ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "read password: %v\n", err)
		os.Exit(1)
	}
	if password == "" || password != confirm {
		fmt.Fprintln(os.Stderr, "passwords are empty or do not match")
		os.Exit(1)
	}

	svc := auth.NewService(conn, []byte(cfg.Auth.JWTSecret))
	if err := svc.Register(context.Background(), *id, password, auth.RoleAdmin); err != nil {
		if err == auth.ErrAlreadyExists {
			fmt.Fprintf(os.Stderr, "account %q already exists\n", *id)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "register: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("admin account %q created\n", *id)
}
