package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/vibhu2208/Aadhar-Homes/internal/api/handlers"
	"github.com/vibhu2208/Aadhar-Homes/internal/api/middleware"
	"github.com/vibhu2208/Aadhar-Homes/internal/auth"
	"github.com/vibhu2208/Aadhar-Homes/internal/config"
	"github.com/vibhu2208/Aadhar-Homes/internal/models"
	"github.com/vibhu2208/Aadhar-Homes/internal/services"
)

func authTestConfig() *config.Config {
	return &config.Config{
		JwtSecret: "test-secret",
		JwtTTL:    3600 * 1e9,
	}
}

func setupAuthRouter(svc services.IAccountService, cfg *config.Config) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := handlers.NewAuthHandler(svc, cfg)
	r := gin.New()
	r.POST("/api/auth/register", middleware.OptionalAuth(cfg.JwtSecret), h.Register)
	r.POST("/api/auth/login", h.Login)
	r.GET("/api/auth/me", middleware.AuthMiddleware(cfg.JwtSecret), h.Me)
	r.POST("/api/auth/logout", middleware.AuthMiddleware(cfg.JwtSecret), h.Logout)
	return r
}

func TestAuthHandler_Register_FirstUserBecomesAdmin(t *testing.T) {
	cfg := authTestConfig()
	mockSvc := new(MockAccountService)
	r := setupAuthRouter(mockSvc, cfg)

	account := &models.Account{
		Base:  models.NewBase(),
		Name:  "Site Owner",
		Email: "owner@example.com",
		Role:  models.RoleAdmin,
	}
	mockSvc.On("Register", mock.Anything, mock.MatchedBy(func(p services.RegisterParams) bool {
		return p.Email == "owner@example.com" && !p.CallerIsAdmin
	})).Return(account, nil)

	body, _ := json.Marshal(map[string]string{
		"name": "Site Owner", "email": "owner@example.com", "password": "secret123",
	})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/auth/register", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["success"])
	assert.NotEmpty(t, resp["token"])
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "admin", data["role"])
	mockSvc.AssertExpectations(t)
}

func TestAuthHandler_Register_RestrictedWhenAdminExists(t *testing.T) {
	cfg := authTestConfig()
	mockSvc := new(MockAccountService)
	r := setupAuthRouter(mockSvc, cfg)

	mockSvc.On("Register", mock.Anything, mock.Anything).Return(nil, services.ErrRegistrationRestricted)

	body, _ := json.Marshal(map[string]string{
		"name": "Someone", "email": "someone@example.com", "password": "secret123",
	})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/auth/register", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Registration is restricted. Please login as admin.", resp["message"])
}

func TestAuthHandler_Register_NonAdminTokenForbidden(t *testing.T) {
	cfg := authTestConfig()
	mockSvc := new(MockAccountService)
	r := setupAuthRouter(mockSvc, cfg)

	token, err := auth.GenerateJWT(cfg.JwtSecret, "0123456789", "default", cfg.JwtTTL)
	assert.NoError(t, err)

	body, _ := json.Marshal(map[string]string{
		"name": "Someone", "email": "someone@example.com", "password": "secret123",
	})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/auth/register", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Only administrators can create new users", resp["message"])
	mockSvc.AssertNotCalled(t, "Register")
}

func TestAuthHandler_Register_AdminTokenAllowed(t *testing.T) {
	cfg := authTestConfig()
	mockSvc := new(MockAccountService)
	r := setupAuthRouter(mockSvc, cfg)

	account := &models.Account{
		Base:  models.NewBase(),
		Name:  "Editor",
		Email: "editor@example.com",
		Role:  models.RoleAdmin,
	}
	mockSvc.On("Register", mock.Anything, mock.MatchedBy(func(p services.RegisterParams) bool {
		return p.CallerIsAdmin
	})).Return(account, nil)

	token, err := auth.GenerateJWT(cfg.JwtSecret, "0123456789", "admin", cfg.JwtTTL)
	assert.NoError(t, err)

	body, _ := json.Marshal(map[string]string{
		"name": "Editor", "email": "editor@example.com", "password": "secret123",
	})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/auth/register", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	mockSvc.AssertExpectations(t)
}

func TestAuthHandler_Login_Success(t *testing.T) {
	cfg := authTestConfig()
	mockSvc := new(MockAccountService)
	r := setupAuthRouter(mockSvc, cfg)

	account := &models.Account{
		Base:  models.NewBase(),
		Name:  "Site Owner",
		Email: "owner@example.com",
		Role:  models.RoleAdmin,
	}
	mockSvc.On("Authenticate", mock.Anything, "owner@example.com", "secret123").Return(account, nil)

	body, _ := json.Marshal(map[string]string{"email": "owner@example.com", "password": "secret123"})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Login successful", resp["message"])
	assert.NotEmpty(t, resp["token"])

	// Issued token must round-trip through our own validator.
	claims, err := auth.ValidateJWT(cfg.JwtSecret, resp["token"].(string))
	assert.NoError(t, err)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, account.ID.String(), claims.AccountID)
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	cfg := authTestConfig()
	mockSvc := new(MockAccountService)
	r := setupAuthRouter(mockSvc, cfg)

	mockSvc.On("Authenticate", mock.Anything, "owner@example.com", "wrong").
		Return(nil, services.ErrInvalidCredentials)

	body, _ := json.Marshal(map[string]string{"email": "owner@example.com", "password": "wrong"})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Invalid credentials", resp["message"])
}

func TestAuthHandler_Login_MissingFields(t *testing.T) {
	cfg := authTestConfig()
	mockSvc := new(MockAccountService)
	r := setupAuthRouter(mockSvc, cfg)

	body, _ := json.Marshal(map[string]string{"email": "owner@example.com"})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockSvc.AssertNotCalled(t, "Authenticate")
}

func TestAuthHandler_Me_Success(t *testing.T) {
	cfg := authTestConfig()
	mockSvc := new(MockAccountService)
	r := setupAuthRouter(mockSvc, cfg)

	account := &models.Account{
		Base:  models.NewBase(),
		Name:  "Site Owner",
		Email: "owner@example.com",
		Role:  models.RoleAdmin,
	}
	mockSvc.On("FindByID", mock.Anything, account.ID).Return(account, nil)

	token, err := auth.GenerateJWT(cfg.JwtSecret, account.ID.String(), "admin", cfg.JwtTTL)
	assert.NoError(t, err)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "owner@example.com", data["email"])
	mockSvc.AssertExpectations(t)
}

func TestAuthHandler_Me_RequiresToken(t *testing.T) {
	cfg := authTestConfig()
	mockSvc := new(MockAccountService)
	r := setupAuthRouter(mockSvc, cfg)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/auth/me", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	mockSvc.AssertNotCalled(t, "FindByID")
}

func TestAuthHandler_Logout(t *testing.T) {
	cfg := authTestConfig()
	mockSvc := new(MockAccountService)
	r := setupAuthRouter(mockSvc, cfg)

	token, err := auth.GenerateJWT(cfg.JwtSecret, "0123456789", "admin", cfg.JwtTTL)
	assert.NoError(t, err)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Logged out successfully", resp["message"])
}
