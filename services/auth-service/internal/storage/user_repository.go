package storage

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/md-rashed-zaman/barberbook/libs/db"
)

var (
	ErrNotFound   = errors.New("user not found")
	ErrEmailTaken = errors.New("email already registered")
)

type User struct {
	ID           string
	ShopID       string
	Email        string
	PasswordHash string
	Role         string
}

type UserRepository struct {
	pool *db.Pool
}

func NewUserRepository(pool *db.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// Register creates the owner's shop and the owner in one transaction.
func (r *UserRepository) Register(ctx context.Context, user User, shopName string) error {
	err := r.pool.InTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
			INSERT INTO shops (id, name, email)
			VALUES ($1, $2, $3)
		`, user.ShopID, shopName, user.Email); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `
			INSERT INTO users (id, shop_id, email, password_hash, role)
			VALUES ($1, $2, $3, $4, $5)
		`, user.ID, user.ShopID, user.Email, user.PasswordHash, user.Role)
		return err
	})
	if db.IsUniqueViolation(err, "users_email_uq") {
		return ErrEmailTaken
	}
	return err
}

// GetByEmail matches case-insensitively, like the unique index.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (User, error) {
	var user User
	err := r.pool.QueryRow(ctx, `
		SELECT id::text, shop_id, email, password_hash, role
		FROM users
		WHERE lower(email) = $1
	`, strings.ToLower(email)).Scan(&user.ID, &user.ShopID, &user.Email, &user.PasswordHash, &user.Role)
	if db.IsNoRows(err) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, err
	}
	return user, nil
}
