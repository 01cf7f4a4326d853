package repository

import (
	"context"
	"errors"

	"github.com/rehearsal/attendance/internal/database"
	"github.com/rehearsal/attendance/internal/model"
)

// UserRepository reads platform user records
type UserRepository struct {
	db database.Database
}

// NewUserRepository creates a new user repository
func NewUserRepository(db database.Database) *UserRepository {
	return &UserRepository{db: db}
}

// Get retrieves a user by ID. Returns nil when the user does not exist.
func (r *UserRepository) Get(ctx context.Context, userID string) (*model.User, error) {
	query := `SELECT * FROM ONLY type::record($user_id)`
	vars := map[string]interface{}{"user_id": userID}

	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	data, ok := result.(map[string]interface{})
	if !ok {
		return nil, nil
	}

	return &model.User{
		ID:        extractRecordID(data["id"]),
		Name:      getString(data, "name"),
		Email:     getString(data, "email"),
		Role:      getString(data, "role"),
		CreatedAt: getTime(data, "created_at"),
	}, nil
}
