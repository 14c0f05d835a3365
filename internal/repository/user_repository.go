package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/volunteer-credits/internal/model"
	"github.com/iliyamo/volunteer-credits/internal/utils"
)

const userColumns = "id, username, password_hash, name, email, user_type, badge_number, credits, created_at"

// NewUser is the input to UserRepo.Create.  Password is plain text and is
// hashed before it reaches the database.
type NewUser struct {
	Username    string
	Password    string
	Name        string
	Email       string
	UserType    model.UserType
	BadgeNumber *string
}

type UserRepo struct{ db *sqlx.DB }

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{db: db} }

// Create hashes the password and inserts the user with a zero balance.
func (r *UserRepo) Create(ctx context.Context, in NewUser, cost int) (*model.User, error) {
	hash, err := utils.HashPassword(in.Password, cost)
	if err != nil {
		return nil, err
	}
	u := &model.User{
		ID:           uuid.NewString(),
		Username:     strings.TrimSpace(in.Username),
		PasswordHash: hash,
		Name:         strings.TrimSpace(in.Name),
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		UserType:     in.UserType,
		BadgeNumber:  in.BadgeNumber,
		CreatedAt:    time.Now().UTC(),
	}
	_, err = r.db.ExecContext(ctx, r.db.Rebind(
		"INSERT INTO users ("+userColumns+") VALUES (?,?,?,?,?,?,?,?,?)"),
		u.ID, u.Username, u.PasswordHash, u.Name, u.Email, u.UserType, u.BadgeNumber, u.Credits, u.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateUser
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

// GetByUsername fetches a user by exact username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.getOne(ctx, "SELECT "+userColumns+" FROM users WHERE username = ?", strings.TrimSpace(username))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	return r.getOne(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id)
}

func (r *UserRepo) getOne(ctx context.Context, q string, arg any) (*model.User, error) {
	var u model.User
	if err := r.db.GetContext(ctx, &u, r.db.Rebind(q), arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}
