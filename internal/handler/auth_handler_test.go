package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"taskhub/internal/handler"
	"taskhub/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
)

type authEnvelope struct {
	Success bool                 `json:"success"`
	Data    handler.AuthResponse `json:"data"`
	Message string               `json:"message"`
}

func setupAuthTest() (*gin.Engine, *MockUserRepository, *MockDeviceRepository) {
	gin.SetMode(gin.TestMode)
	r := gin.Default()
	mockUsers := new(MockUserRepository)
	mockDevices := new(MockDeviceRepository)
	authHandler := handler.NewAuthHandler(mockUsers, mockDevices, "test-secret", 24*time.Hour)

	r.POST("/api/auth/register", authHandler.Register)
	r.POST("/api/auth/login", authHandler.Login)

	return r, mockUsers, mockDevices
}

func TestRegister_Success(t *testing.T) {
	router, mockUsers, _ := setupAuthTest()

	mockUsers.On("FindByEmail", mock.Anything, "test@example.com").Return(nil, nil)
	mockUsers.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)

	reqBody := handler.RegisterRequest{
		Name:     "Test User",
		Email:    "Test@Example.com",
		Password: "password123",
	}
	jsonBody, _ := json.Marshal(reqBody)
	req, _ := http.NewRequest("POST", "/api/auth/register", bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusCreated, resp.Code)

	var envelope authEnvelope
	err := json.Unmarshal(resp.Body.Bytes(), &envelope)
	assert.NoError(t, err)
	assert.True(t, envelope.Success)
	assert.NotEmpty(t, envelope.Data.Token)
	assert.Equal(t, "Test User", envelope.Data.User.Name)
	// Email is lowercased and role defaults to user
	assert.Equal(t, "test@example.com", envelope.Data.User.Email)
	assert.Equal(t, model.RoleUser, envelope.Data.User.Role)

	mockUsers.AssertExpectations(t)
}

func TestRegister_UserAlreadyExists(t *testing.T) {
	router, mockUsers, _ := setupAuthTest()

	existingUser := &model.User{
		ID:             uuid.New(),
		Email:          "existing@example.com",
		HashedPassword: "hashed_password",
		Name:           "Existing User",
		Role:           model.RoleUser,
	}
	mockUsers.On("FindByEmail", mock.Anything, "existing@example.com").Return(existingUser, nil)

	reqBody := handler.RegisterRequest{
		Name:     "Test User",
		Email:    "existing@example.com",
		Password: "password123",
	}
	jsonBody, _ := json.Marshal(reqBody)
	req, _ := http.NewRequest("POST", "/api/auth/register", bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusConflict, resp.Code)

	var envelope authEnvelope
	err := json.Unmarshal(resp.Body.Bytes(), &envelope)
	assert.NoError(t, err)
	assert.False(t, envelope.Success)
	assert.Equal(t, "User with this email already exists", envelope.Message)

	mockUsers.AssertExpectations(t)
}

func TestRegister_InvalidRole(t *testing.T) {
	router, _, _ := setupAuthTest()

	body := []byte(`{"name":"Test User","email":"t@example.com","password":"password123","role":"superadmin"}`)
	req, _ := http.NewRequest("POST", "/api/auth/register", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestLogin_Success(t *testing.T) {
	router, mockUsers, mockDevices := setupAuthTest()

	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	testUser := &model.User{
		ID:             uuid.New(),
		Email:          "test@example.com",
		HashedPassword: string(hashedPassword),
		Name:           "Test User",
		Role:           model.RoleUser,
	}

	mockUsers.On("FindByEmail", mock.Anything, "test@example.com").Return(testUser, nil)
	mockDevices.On("Upsert", mock.Anything, mock.AnythingOfType("*model.Device")).Return(nil)

	reqBody := handler.LoginRequest{
		Email:    "test@example.com",
		Password: "password123",
	}
	jsonBody, _ := json.Marshal(reqBody)
	req, _ := http.NewRequest("POST", "/api/auth/login", bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "taskhub-test/1.0")

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusOK, resp.Code)

	var envelope authEnvelope
	err := json.Unmarshal(resp.Body.Bytes(), &envelope)
	assert.NoError(t, err)
	assert.NotEmpty(t, envelope.Data.Token)
	assert.Equal(t, testUser.Name, envelope.Data.User.Name)
	assert.Equal(t, testUser.Email, envelope.Data.User.Email)
	assert.Equal(t, testUser.ID.String(), envelope.Data.User.ID)

	mockUsers.AssertExpectations(t)
	mockDevices.AssertExpectations(t)
}

func TestLogin_DeviceRecordingFailureTolerated(t *testing.T) {
	router, mockUsers, mockDevices := setupAuthTest()

	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	testUser := &model.User{
		ID:             uuid.New(),
		Email:          "test@example.com",
		HashedPassword: string(hashedPassword),
		Name:           "Test User",
		Role:           model.RoleUser,
	}

	mockUsers.On("FindByEmail", mock.Anything, "test@example.com").Return(testUser, nil)
	mockDevices.On("Upsert", mock.Anything, mock.AnythingOfType("*model.Device")).Return(assert.AnError)

	reqBody := handler.LoginRequest{Email: "test@example.com", Password: "password123"}
	jsonBody, _ := json.Marshal(reqBody)
	req, _ := http.NewRequest("POST", "/api/auth/login", bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusOK, resp.Code)
	mockDevices.AssertExpectations(t)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	router, mockUsers, _ := setupAuthTest()

	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("correct_password"), bcrypt.DefaultCost)
	testUser := &model.User{
		ID:             uuid.New(),
		Email:          "test@example.com",
		HashedPassword: string(hashedPassword),
		Name:           "Test User",
		Role:           model.RoleUser,
	}

	mockUsers.On("FindByEmail", mock.Anything, "test@example.com").Return(testUser, nil)

	reqBody := handler.LoginRequest{
		Email:    "test@example.com",
		Password: "wrong_password",
	}
	jsonBody, _ := json.Marshal(reqBody)
	req, _ := http.NewRequest("POST", "/api/auth/login", bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	var envelope authEnvelope
	err := json.Unmarshal(resp.Body.Bytes(), &envelope)
	assert.NoError(t, err)
	assert.Equal(t, "Invalid credentials", envelope.Message)

	mockUsers.AssertExpectations(t)
}

func TestLogin_UserNotFound(t *testing.T) {
	router, mockUsers, _ := setupAuthTest()

	mockUsers.On("FindByEmail", mock.Anything, "nonexistent@example.com").Return(nil, nil)

	reqBody := handler.LoginRequest{
		Email:    "nonexistent@example.com",
		Password: "password123",
	}
	jsonBody, _ := json.Marshal(reqBody)
	req, _ := http.NewRequest("POST", "/api/auth/login", bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	var envelope authEnvelope
	err := json.Unmarshal(resp.Body.Bytes(), &envelope)
	assert.NoError(t, err)
	// Same message as a wrong password
	assert.Equal(t, "Invalid credentials", envelope.Message)

	mockUsers.AssertExpectations(t)
}

func TestGetDevices(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.Default()
	mockUsers := new(MockUserRepository)
	mockDevices := new(MockDeviceRepository)
	authHandler := handler.NewAuthHandler(mockUsers, mockDevices, "test-secret", 24*time.Hour)

	user := &model.User{ID: uuid.New(), Email: "u@example.com", Name: "U", Role: model.RoleUser}
	r.GET("/api/auth/devices", injectUser(user), authHandler.GetDevices)

	mockDevices.On("GetByUser", mock.Anything, user.ID).Return([]model.Device{
		{ID: uuid.New(), UserID: user.ID, UserAgent: "taskhub-test/1.0", IP: "10.0.0.1", LastSeenAt: time.Now()},
	}, nil)

	req, _ := http.NewRequest("GET", "/api/auth/devices", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusOK, resp.Code)

	var envelope struct {
		Success bool                 `json:"success"`
		Count   int                  `json:"count"`
		Data    []handler.DeviceView `json:"data"`
	}
	err := json.Unmarshal(resp.Body.Bytes(), &envelope)
	assert.NoError(t, err)
	assert.Equal(t, 1, envelope.Count)
	assert.Equal(t, "taskhub-test/1.0", envelope.Data[0].UserAgent)

	mockDevices.AssertExpectations(t)
}
