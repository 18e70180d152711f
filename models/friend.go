package models

import "time"

// Friend is a saved name the user can pull into a split without retyping it.
type Friend struct {
	ID        string    `json:"id"`
	UserID    string    `json:"-"`
	Name      string    `json:"name" binding:"required"`
	CreatedAt time.Time `json:"created_at"`
}

type CreateFriendRequest struct {
	Name string `json:"name" binding:"required"`
}
