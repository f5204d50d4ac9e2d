// Package repo implements the account repository over SQL databases
// (SQLite or MySQL) via sqlx.
package repo

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/mikey/spam-detective/internal/core"
)

// SQLRepository implements core.AccountRepository over sqlx.
type SQLRepository struct {
	db *sqlx.DB
}

var _ core.AccountRepository = (*SQLRepository)(nil)

// accountRow maps the accounts table to a Go struct.
type accountRow struct {
	ID             int64          `db:"id"`
	Username       string         `db:"username"`
	Email          string         `db:"email"`
	DisplayName    sql.NullString `db:"display_name"`
	FirstName      sql.NullString `db:"first_name"`
	LastName       sql.NullString `db:"last_name"`
	RegisteredAt   int64          `db:"registered_at"`
	Roles          sql.NullString `db:"roles"`
	PostCount      int            `db:"post_count"`
	CommentCount   int            `db:"comment_count"`
	RegistrationIP sql.NullString `db:"registration_ip"`
}

const schema = `
CREATE TABLE IF NOT EXISTS accounts (
	id INTEGER PRIMARY KEY,
	username TEXT NOT NULL,
	email TEXT NOT NULL,
	display_name TEXT,
	first_name TEXT,
	last_name TEXT,
	registered_at INTEGER NOT NULL,
	roles TEXT,
	post_count INTEGER NOT NULL DEFAULT 0,
	comment_count INTEGER NOT NULL DEFAULT 0,
	registration_ip TEXT
)`

// New opens a repository for the given driver ("sqlite3" or "mysql")
// and DSN, creating the schema when absent.
func New(driver, dsn string) (*SQLRepository, error) {
	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect account store: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create accounts table: %w", err)
	}
	return &SQLRepository{db: db}, nil
}

// NewFromDB wraps an existing connection (used by tests).
func NewFromDB(db *sqlx.DB) *SQLRepository {
	return &SQLRepository{db: db}
}

// ListAccounts returns accounts newest first; limit <= 0 is unbounded.
func (r *SQLRepository) ListAccounts(ctx context.Context, limit int) ([]*core.Account, error) {
	query := `SELECT * FROM accounts ORDER BY registered_at DESC`
	var rows []accountRow
	var err error
	if limit > 0 {
		err = r.db.SelectContext(ctx, &rows, query+` LIMIT ?`, limit)
	} else {
		err = r.db.SelectContext(ctx, &rows, query)
	}
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}

	accounts := make([]*core.Account, 0, len(rows))
	for i := range rows {
		accounts = append(accounts, rowToAccount(&rows[i]))
	}
	return accounts, nil
}

// GetAccount fetches a single account by ID.
func (r *SQLRepository) GetAccount(ctx context.Context, id int64) (*core.Account, error) {
	var row accountRow
	err := r.db.GetContext(ctx, &row, `SELECT * FROM accounts WHERE id = ?`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, core.ErrNotFound
		}
		return nil, fmt.Errorf("get account %d: %w", id, err)
	}
	return rowToAccount(&row), nil
}

// CountByEmailDomain counts accounts whose email ends in @domain.
func (r *SQLRepository) CountByEmailDomain(ctx context.Context, domain string) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n,
		`SELECT COUNT(*) FROM accounts WHERE email LIKE ?`, "%@"+domain)
	if err != nil {
		return 0, fmt.Errorf("count by email domain: %w", err)
	}
	return n, nil
}

// CountByUsernamePrefix counts accounts whose username starts with prefix.
func (r *SQLRepository) CountByUsernamePrefix(ctx context.Context, prefix string) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n,
		`SELECT COUNT(*) FROM accounts WHERE username LIKE ?`, escapeLike(prefix)+"%")
	if err != nil {
		return 0, fmt.Errorf("count by username prefix: %w", err)
	}
	return n, nil
}

// CountRegisteredBetween counts accounts registered inside [from, to].
func (r *SQLRepository) CountRegisteredBetween(ctx context.Context, from, to time.Time) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n,
		`SELECT COUNT(*) FROM accounts WHERE registered_at BETWEEN ? AND ?`,
		from.Unix(), to.Unix())
	if err != nil {
		return 0, fmt.Errorf("count registered between: %w", err)
	}
	return n, nil
}

// CountByRegistrationIP counts accounts that registered from ip.
func (r *SQLRepository) CountByRegistrationIP(ctx context.Context, ip string) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n,
		`SELECT COUNT(*) FROM accounts WHERE registration_ip = ?`, ip)
	if err != nil {
		return 0, fmt.Errorf("count by registration ip: %w", err)
	}
	return n, nil
}

// CandidatesByUsernameLength returns usernames with length within
// tolerance of length, excluding one account, capped at maxRows.
func (r *SQLRepository) CandidatesByUsernameLength(ctx context.Context, length, tolerance int, exclude string, maxRows int) ([]string, error) {
	minLen := length - tolerance
	if minLen < 1 {
		minLen = 1
	}
	var usernames []string
	err := r.db.SelectContext(ctx, &usernames, `
		SELECT username FROM accounts
		WHERE LENGTH(username) BETWEEN ? AND ? AND username != ?
		LIMIT ?
	`, minLen, length+tolerance, exclude, maxRows)
	if err != nil {
		return nil, fmt.Errorf("candidates by username length: %w", err)
	}
	return usernames, nil
}

// SetRegistrationIP records the IP an account registered from.
func (r *SQLRepository) SetRegistrationIP(ctx context.Context, id int64, ip string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE accounts SET registration_ip = ? WHERE id = ?`, ip, id)
	if err != nil {
		return fmt.Errorf("set registration ip: %w", err)
	}
	return nil
}

// DeleteAccount removes an account.
func (r *SQLRepository) DeleteAccount(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete account %d: %w", id, err)
	}
	return nil
}

// Insert adds an account row (used by imports and tests).
func (r *SQLRepository) Insert(ctx context.Context, acct *core.Account) (int64, error) {
	result, err := r.db.NamedExecContext(ctx, `
		INSERT INTO accounts (username, email, display_name, first_name, last_name,
			registered_at, roles, post_count, comment_count, registration_ip)
		VALUES (:username, :email, :display_name, :first_name, :last_name,
			:registered_at, :roles, :post_count, :comment_count, :registration_ip)
	`, map[string]interface{}{
		"username":        acct.Username,
		"email":           acct.Email,
		"display_name":    acct.DisplayName,
		"first_name":      acct.FirstName,
		"last_name":       acct.LastName,
		"registered_at":   acct.RegisteredAt.Unix(),
		"roles":           strings.Join(acct.Roles, ","),
		"post_count":      acct.PostCount,
		"comment_count":   acct.CommentCount,
		"registration_ip": acct.RegistrationIP,
	})
	if err != nil {
		return 0, fmt.Errorf("insert account: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("get last insert id: %w", err)
	}
	return id, nil
}

// Close releases the underlying connection.
func (r *SQLRepository) Close() error {
	return r.db.Close()
}

func rowToAccount(row *accountRow) *core.Account {
	acct := &core.Account{
		ID:             row.ID,
		Username:       row.Username,
		Email:          row.Email,
		DisplayName:    row.DisplayName.String,
		FirstName:      row.FirstName.String,
		LastName:       row.LastName.String,
		RegisteredAt:   time.Unix(row.RegisteredAt, 0).UTC(),
		PostCount:      row.PostCount,
		CommentCount:   row.CommentCount,
		RegistrationIP: row.RegistrationIP.String,
	}
	if row.Roles.String != "" {
		acct.Roles = strings.Split(row.Roles.String, ",")
	}
	return acct
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}
