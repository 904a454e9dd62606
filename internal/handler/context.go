package handler

import (
	"net/http"
	"time"

	"taskhub/internal/middleware"
	"taskhub/internal/model"

	"github.com/gin-gonic/gin"
)

// UserView is the safe user projection returned by the API. The password
// hash never leaves the handler layer.
type UserView struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	TaskCount *int64    `json:"taskCount,omitempty"`
}

func toUserView(user *model.User) UserView {
	return UserView{
		ID:        user.ID.String(),
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
	}
}

// currentUser pulls the user resolved by the auth middleware out of the
// gin context, writing the 401 itself when the middleware never ran.
func currentUser(c *gin.Context) (*model.User, bool) {
	value, exists := c.Get(middleware.UserKey)
	if !exists {
		respondError(c, http.StatusUnauthorized, "Not authorized to access this route")
		return nil, false
	}

	user, ok := value.(*model.User)
	if !ok {
		respondError(c, http.StatusInternalServerError, "Invalid user in context")
		return nil, false
	}
	return user, true
}
