package handler

import (
	"log"
	"net/http"
	"strings"
	"time"

	"taskhub/internal/auth"
	"taskhub/internal/model"
	"taskhub/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type AuthHandler struct {
	users     repository.UserRepositoryInterface
	devices   repository.DeviceRepositoryInterface
	jwtSecret string
	tokenTTL  time.Duration
}

func NewAuthHandler(users repository.UserRepositoryInterface, devices repository.DeviceRepositoryInterface, jwtSecret string, tokenTTL time.Duration) *AuthHandler {
	return &AuthHandler{users: users, devices: devices, jwtSecret: jwtSecret, tokenTTL: tokenTTL}
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required,min=2"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role" binding:"omitempty,oneof=admin user"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UpdateProfileRequest struct {
	Name     string `json:"name" binding:"omitempty,min=2"`
	Email    string `json:"email" binding:"omitempty,email"`
	Password string `json:"password" binding:"omitempty,min=6"`
}

type AuthResponse struct {
	Token string   `json:"token"`
	User  UserView `json:"user"`
}

type DeviceView struct {
	ID         string    `json:"id"`
	UserAgent  string    `json:"userAgent"`
	IP         string    `json:"ip"`
	LastSeenAt time.Time `json:"lastSeenAt"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Register creates a user account and returns a bearer token for it.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	req.Email = strings.ToLower(req.Email)

	existing, err := h.users.FindByEmail(c.Request.Context(), req.Email)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	if existing != nil {
		respondError(c, http.StatusConflict, "User with this email already exists")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	role := req.Role
	if role == "" {
		role = model.RoleUser
	}

	user := &model.User{
		ID:             uuid.New(),
		Email:          req.Email,
		Name:           req.Name,
		HashedPassword: string(hash),
		Role:           role,
		CreatedAt:      time.Now(),
	}

	if err := h.users.Create(c.Request.Context(), user); err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	token, err := auth.GenerateToken(user.ID.String(), h.jwtSecret, h.tokenTTL)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	respondData(c, http.StatusCreated, AuthResponse{Token: token, User: toUserView(user)})
}

// Login exchanges credentials for a bearer token. A wrong email and a
// wrong password are indistinguishable to the caller.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	req.Email = strings.ToLower(req.Email)

	user, err := h.users.FindByEmail(c.Request.Context(), req.Email)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(req.Password)) != nil {
		respondError(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := auth.GenerateToken(user.ID.String(), h.jwtSecret, h.tokenTTL)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	device := &model.Device{
		ID:         uuid.New(),
		UserID:     user.ID,
		UserAgent:  c.Request.UserAgent(),
		IP:         c.ClientIP(),
		LastSeenAt: time.Now(),
	}
	if err := h.devices.Upsert(c.Request.Context(), device); err != nil {
		// Device bookkeeping never blocks a login.
		log.Printf("⚠️  Failed to record login device for %s: %v", user.Email, err)
	}

	respondData(c, http.StatusOK, AuthResponse{Token: token, User: toUserView(user)})
}

// GetProfile returns the authenticated user.
func (h *AuthHandler) GetProfile(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	respondData(c, http.StatusOK, toUserView(user))
}

// UpdateProfile patches name, email and/or password of the caller.
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Email != "" {
		email := strings.ToLower(req.Email)
		if email != user.Email {
			existing, err := h.users.FindByEmail(c.Request.Context(), email)
			if err != nil {
				respondError(c, http.StatusInternalServerError, err.Error())
				return
			}
			if existing != nil {
				respondError(c, http.StatusConflict, "User with this email already exists")
				return
			}
			user.Email = email
		}
	}
	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			respondError(c, http.StatusInternalServerError, err.Error())
			return
		}
		user.HashedPassword = string(hash)
	}

	if err := h.users.Update(c.Request.Context(), user); err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	respondData(c, http.StatusOK, toUserView(user))
}

// GetDevices lists the caller's login devices, most recent first.
func (h *AuthHandler) GetDevices(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	devices, err := h.devices.GetByUser(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	views := make([]DeviceView, 0, len(devices))
	for _, d := range devices {
		views = append(views, DeviceView{
			ID:         d.ID.String(),
			UserAgent:  d.UserAgent,
			IP:         d.IP,
			LastSeenAt: d.LastSeenAt,
			CreatedAt:  d.CreatedAt,
		})
	}

	respondList(c, views, len(views))
}
