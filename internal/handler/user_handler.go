package handler

import (
	"errors"
	"net/http"

	"taskhub/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// UserHandler covers the admin-only user management surface. The role
// gate in front of these routes is RequireRoles(model.RoleAdmin).
type UserHandler struct {
	users repository.UserRepositoryInterface
}

func NewUserHandler(users repository.UserRepositoryInterface) *UserHandler {
	return &UserHandler{users: users}
}

type UpdateRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=admin user"`
}

// GetAll lists every user with their assigned task count.
func (h *UserHandler) GetAll(c *gin.Context) {
	users, err := h.users.GetAll(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	views := make([]UserView, 0, len(users))
	for i := range users {
		view := toUserView(&users[i])
		count, err := h.users.CountAssignedTasks(c.Request.Context(), users[i].ID)
		if err != nil {
			respondError(c, http.StatusInternalServerError, err.Error())
			return
		}
		view.TaskCount = &count
		views = append(views, view)
	}

	respondList(c, views, len(views))
}

// Delete removes a user. Admins cannot delete their own account.
func (h *UserHandler) Delete(c *gin.Context) {
	caller, ok := currentUser(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid ID format")
		return
	}

	if id == caller.ID {
		respondError(c, http.StatusBadRequest, "Cannot delete your own account")
		return
	}

	if err := h.users.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			respondError(c, http.StatusNotFound, "User not found")
			return
		}
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	respondData(c, http.StatusOK, gin.H{})
}

// UpdateRole changes a user's role.
func (h *UserHandler) UpdateRole(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid ID format")
		return
	}

	var req UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.users.UpdateRole(c.Request.Context(), id, req.Role); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			respondError(c, http.StatusNotFound, "User not found")
			return
		}
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	user, err := h.users.GetByID(c.Request.Context(), id)
	if err != nil || user == nil {
		respondError(c, http.StatusInternalServerError, "Failed to reload user")
		return
	}

	respondData(c, http.StatusOK, toUserView(user))
}
