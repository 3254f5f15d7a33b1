package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Jostyn07/Asesoriasth-backend/config"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestAuthHandlerLogin(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hashedpass"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	cfg := &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:        "test-secret",
			TokenExpireHours: 24,
		},
		Users: []config.User{
			{Email: "hashed@asesoriasth.com", Password: string(hash), Name: "Hashed", Role: "admin"},
			{Email: "legacy@asesoriasth.com", Password: "plainpass", Name: "Legacy", Role: "agent"},
		},
	}

	handler := NewAuthHandler(cfg)

	tests := []struct {
		name           string
		body           map[string]string
		expectedStatus int
	}{
		{
			name:           "valid login with hashed password",
			body:           map[string]string{"email": "hashed@asesoriasth.com", "password": "hashedpass"},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "valid login with legacy plaintext password",
			body:           map[string]string{"email": "legacy@asesoriasth.com", "password": "plainpass"},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "unknown email",
			body:           map[string]string{"email": "nobody@asesoriasth.com", "password": "plainpass"},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "wrong password against hash",
			body:           map[string]string{"email": "hashed@asesoriasth.com", "password": "wrong"},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "wrong password against plaintext",
			body:           map[string]string{"email": "legacy@asesoriasth.com", "password": "wrong"},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "missing fields",
			body:           map[string]string{"email": "legacy@asesoriasth.com"},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.POST("/login", handler.Login)

			body, _ := json.Marshal(tt.body)
			req := httptest.NewRequest("POST", "/login", bytes.NewBuffer(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}

			if tt.expectedStatus == http.StatusOK {
				var response LoginResponse
				if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
					t.Errorf("Failed to parse response: %v", err)
				}
				if !response.Success {
					t.Error("Expected success=true")
				}
				if response.Token == "" {
					t.Error("Expected token in response")
				}
				if response.User.Email == "" {
					t.Error("Expected user in response")
				}
			}
		})
	}
}

// The 401 body must not reveal whether the account exists.
func TestAuthHandlerLoginUniform401(t *testing.T) {
	cfg := &config.Config{
		Auth:  config.AuthConfig{JWTSecret: "s", TokenExpireHours: 1},
		Users: []config.User{{Email: "known@asesoriasth.com", Password: "pass"}},
	}
	handler := NewAuthHandler(cfg)

	responses := make([]string, 0, 2)
	for _, body := range []map[string]string{
		{"email": "unknown@asesoriasth.com", "password": "pass"},
		{"email": "known@asesoriasth.com", "password": "wrong"},
	} {
		router := gin.New()
		router.POST("/login", handler.Login)

		data, _ := json.Marshal(body)
		req := httptest.NewRequest("POST", "/login", bytes.NewBuffer(data))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Fatalf("Expected 401, got %d", w.Code)
		}
		responses = append(responses, w.Body.String())
	}

	if responses[0] != responses[1] {
		t.Errorf("401 bodies differ between unknown user and wrong password:\n%s\n%s",
			responses[0], responses[1])
	}
}

func TestCheckPassword(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("secreto"), bcrypt.MinCost)

	tests := []struct {
		name     string
		given    string
		stored   string
		expected bool
	}{
		{"bcrypt match", "secreto", string(hash), true},
		{"bcrypt mismatch", "otro", string(hash), false},
		{"plaintext match", "secreto", "secreto", true},
		{"plaintext mismatch", "otro", "secreto", false},
		{"empty stored", "anything", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := checkPassword(tt.given, tt.stored); got != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}
