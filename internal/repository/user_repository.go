package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/pkg/errors"

	"github.com/iliyamo/incident-report-tracker/internal/model"
	"github.com/iliyamo/incident-report-tracker/internal/utils"
)

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id, name, email, password_hash, role, push_token, created_at"

// NormalizeEmail lower-cases and trims an address the way it is stored.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Create hashes password with the given bcrypt cost, inserts the user and
// populates ID and PasswordHash.  A duplicate email yields ErrEmailExists.
func (r *UserRepo) Create(ctx context.Context, u *model.User, password string, cost int) error {
	u.Email = NormalizeEmail(u.Email)
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (name, email, password_hash, role, push_token) VALUES (?,?,?,?,?)",
		u.Name, u.Email, hash, u.Role, u.PushToken)
	if err != nil {
		err = classify("create user", err)
		if errors.Is(err, ErrConflict) {
			return ErrEmailExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return classify("create user", err)
	}
	u.ID = id
	u.PasswordHash = hash
	return nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.getOne(ctx, "SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", NormalizeEmail(email))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return r.getOne(ctx, "SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id)
}

func (r *UserRepo) getOne(ctx context.Context, q string, arg any) (*model.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx, q, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, classify("get user", err)
	}
	return u, nil
}

// UpdatePushToken stores token for the user; a nil token clears it.
func (r *UserRepo) UpdatePushToken(ctx context.Context, id int64, token *string) error {
	res, err := r.DB.ExecContext(ctx, "UPDATE users SET push_token=? WHERE id=?", token, id)
	if err != nil {
		return classify("update push token", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrUserNotFound
	}
	return nil
}

// ListAdminsWithPushToken returns the admins that can receive push messages.
func (r *UserRepo) ListAdminsWithPushToken(ctx context.Context) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE role=? AND push_token IS NOT NULL AND push_token <> '' ORDER BY id",
		model.RoleAdmin)
	if err != nil {
		return nil, classify("list admins", err)
	}
	defer rows.Close()

	out := []model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, classify("list admins", err)
		}
		out = append(out, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("list admins", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(s rowScanner) (*model.User, error) {
	var (
		u     model.User
		token sql.NullString
	)
	if err := s.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &token, &u.CreatedAt); err != nil {
		return nil, err
	}
	if token.Valid {
		u.PushToken = &token.String
	}
	return &u, nil
}
