package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ksm007/spliteasy-updated/middleware"
	"github.com/ksm007/spliteasy-updated/models"
	"github.com/ksm007/spliteasy-updated/services"
)

type FriendHandler struct {
	Friends *services.FriendService
}

func (h *FriendHandler) List(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	friends, err := h.Friends.List(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch friends"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"friends": friends})
}

func (h *FriendHandler) Create(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.CreateFriendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	friend, err := h.Friends.Create(c.Request.Context(), userID, req.Name)
	if errors.Is(err, services.ErrFriendExists) {
		c.JSON(http.StatusConflict, gin.H{"error": "Friend already saved"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save friend"})
		return
	}

	c.JSON(http.StatusCreated, friend)
}

func (h *FriendHandler) Delete(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	err := h.Friends.Delete(c.Request.Context(), c.Param("id"), userID)
	if errors.Is(err, services.ErrFriendNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Friend not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete friend"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Friend deleted"})
}
