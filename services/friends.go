package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/ksm007/spliteasy-updated/models"
)

var (
	ErrFriendNotFound = errors.New("friend not found")
	ErrFriendExists   = errors.New("friend already saved")
)

type FriendService struct {
	db *sql.DB
}

func NewFriendService(db *sql.DB) *FriendService {
	return &FriendService{db: db}
}

func (s *FriendService) List(ctx context.Context, userID string) ([]models.Friend, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, created_at FROM friends WHERE user_id = $1 ORDER BY name
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list friends: %w", err)
	}
	defer rows.Close()

	friends := []models.Friend{}
	for rows.Next() {
		var f models.Friend
		if err := rows.Scan(&f.ID, &f.Name, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan friend: %w", err)
		}
		f.UserID = userID
		friends = append(friends, f)
	}
	return friends, rows.Err()
}

func (s *FriendService) Create(ctx context.Context, userID, name string) (*models.Friend, error) {
	friend := &models.Friend{
		ID:     uuid.New().String(),
		UserID: userID,
		Name:   name,
	}

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO friends (id, user_id, name)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`, friend.ID, userID, name).Scan(&friend.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return nil, ErrFriendExists
		}
		return nil, fmt.Errorf("failed to save friend: %w", err)
	}
	return friend, nil
}

func (s *FriendService) Delete(ctx context.Context, friendID, userID string) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM friends WHERE id = $1 AND user_id = $2
	`, friendID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete friend: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if rows == 0 {
		return ErrFriendNotFound
	}
	return nil
}
