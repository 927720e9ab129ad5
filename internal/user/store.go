package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	RoleStudent = "student"
	RoleAdmin   = "admin"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

type Store struct {
	db   *sql.DB
	cost int
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db, cost: 12}
}

// WithCost overrides the bcrypt cost (tests use bcrypt.MinCost).
func (s *Store) WithCost(cost int) *Store {
	s.cost = cost
	return s
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Store) Create(ctx context.Context, email, password, role string) (User, error) {
	email = NormalizeEmail(email)
	if role == "" {
		role = RoleStudent
	}
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM users WHERE email=$1`, email).Scan(&exists)
	switch {
	case err == nil:
		return User{}, ErrEmailTaken
	case !errors.Is(err, sql.ErrNoRows):
		return User{}, fmt.Errorf("user: lookup: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return User{}, fmt.Errorf("user: hash: %w", err)
	}
	u := User{ID: uuid.NewString(), Email: email, Role: role, CreatedAt: time.Now().UTC().Truncate(time.Second)}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO users (id, email, password_hash, role, created_at) VALUES ($1,$2,$3,$4,$5)`,
		u.ID, u.Email, string(hash), u.Role, u.CreatedAt.Unix())
	if err != nil {
		if isUniqueViolation(err) {
			return User{}, ErrEmailTaken
		}
		return User{}, fmt.Errorf("user: insert: %w", err)
	}
	return u, nil
}

// Authenticate returns the user when email and password match.
func (s *Store) Authenticate(ctx context.Context, email, password string) (User, error) {
	var u User
	var hash string
	var created int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id, email, role, password_hash, created_at FROM users WHERE email=$1`, NormalizeEmail(email)).
		Scan(&u.ID, &u.Email, &u.Role, &hash, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrInvalidCredentials
	}
	if err != nil {
		return User{}, fmt.Errorf("user: lookup: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return User{}, ErrInvalidCredentials
	}
	u.CreatedAt = time.Unix(created, 0).UTC()
	return u, nil
}

func (s *Store) GetByID(ctx context.Context, id string) (User, error) {
	var u User
	var created int64
	err := s.db.QueryRowContext(ctx, `SELECT id, email, role, created_at FROM users WHERE id=$1`, id).
		Scan(&u.ID, &u.Email, &u.Role, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrUserNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("user: get: %w", err)
	}
	u.CreatedAt = time.Unix(created, 0).UTC()
	return u, nil
}

func (s *Store) ChangePassword(ctx context.Context, id, oldPassword, newPassword string) error {
	var stored string
	err := s.db.QueryRowContext(ctx, `SELECT password_hash FROM users WHERE id=$1`, id).Scan(&stored)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("user: get hash: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(stored), []byte(oldPassword)) != nil {
		return ErrInvalidCredentials
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.cost)
	if err != nil {
		return fmt.Errorf("user: hash: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `UPDATE users SET password_hash=$1 WHERE id=$2`, string(hash), id); err != nil {
		return fmt.Errorf("user: update hash: %w", err)
	}
	return nil
}

// SetRole promotes or demotes a user by email.
func (s *Store) SetRole(ctx context.Context, email, role string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE users SET role=$1 WHERE email=$2`, role, NormalizeEmail(email))
	if err != nil {
		return fmt.Errorf("user: set role: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (s *Store) List(ctx context.Context, limit, offset int) ([]User, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, email, role, created_at FROM users ORDER BY created_at, email LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("user: list: %w", err)
	}
	defer rows.Close()
	out := []User{}
	for rows.Next() {
		var u User
		var created int64
		if err := rows.Scan(&u.ID, &u.Email, &u.Role, &created); err != nil {
			return nil, err
		}
		u.CreatedAt = time.Unix(created, 0).UTC()
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("user: count: %w", err)
	}
	return n, nil
}

func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || // sqlite
		strings.Contains(msg, "duplicate key value") // postgres
}
