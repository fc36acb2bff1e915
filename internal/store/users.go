// Package store persists synced users and the localized shop catalog in Postgres.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"bloomery/backend/internal/identity"
)

var ErrNotFound = errors.New("record not found")

type UserRecord struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	ImageURL  string    `json:"image_url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Users struct {
	pool *pgxpool.Pool
}

func NewUsers(pool *pgxpool.Pool) *Users {
	return &Users{pool: pool}
}

// UpsertUser inserts the user or overwrites the row with the same id.
func (u *Users) UpsertUser(ctx context.Context, user identity.User) error {
	if strings.TrimSpace(user.ID) == "" {
		return errors.New("user id is required")
	}
	_, err := u.pool.Exec(
		ctx,
		`INSERT INTO users (id, email, first_name, last_name, image_url, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		 ON CONFLICT (id)
		 DO UPDATE SET
		   email = EXCLUDED.email,
		   first_name = EXCLUDED.first_name,
		   last_name = EXCLUDED.last_name,
		   image_url = EXCLUDED.image_url,
		   updated_at = NOW()`,
		user.ID,
		user.Email,
		nullableText(user.FirstName),
		nullableText(user.LastName),
		nullableText(user.ImageURL),
	)
	if err != nil {
		return fmt.Errorf("upsert user %s: %w", user.ID, err)
	}
	return nil
}

func (u *Users) DeleteUser(ctx context.Context, id string) error {
	if _, err := u.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete user %s: %w", id, err)
	}
	return nil
}

func (u *Users) GetUser(ctx context.Context, id string) (UserRecord, error) {
	var record UserRecord
	err := u.pool.QueryRow(
		ctx,
		`SELECT id, email,
		        COALESCE(first_name, ''), COALESCE(last_name, ''), COALESCE(image_url, ''),
		        created_at, updated_at
		 FROM users
		 WHERE id = $1`,
		id,
	).Scan(
		&record.ID,
		&record.Email,
		&record.FirstName,
		&record.LastName,
		&record.ImageURL,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return UserRecord{}, ErrNotFound
	}
	if err != nil {
		return UserRecord{}, fmt.Errorf("load user %s: %w", id, err)
	}
	return record, nil
}

func (u *Users) Count(ctx context.Context, id string) (int, error) {
	var count int
	if err := u.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE id = $1`, id).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func nullableText(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
