package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "secreto-de-prueba"

func signToken(t *testing.T, claims *Claims, secret string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func staffClaims(role string) *Claims {
	return &Claims{
		UserID: 1,
		Email:  "rrhh@example.com",
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func authRouter(secret string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/protected", Auth(secret), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": GetUserID(c)})
	})
	return router
}

func TestAuthAcceptsBearerToken(t *testing.T) {
	router := authRouter(testSecret)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, staffClaims("rrhh"), testSecret))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":1`)
}

func TestAuthAcceptsQueryParamToken(t *testing.T) {
	// Download links cannot set headers
	router := authRouter(testSecret)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/protected?token="+signToken(t, staffClaims("rrhh"), testSecret), nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthRejectsMissingToken(t *testing.T) {
	router := authRouter(testSecret)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/protected", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthRejectsWrongSecret(t *testing.T) {
	router := authRouter(testSecret)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, staffClaims("rrhh"), "otro-secreto"))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "invalid token")
}

func TestAuthRejectsExpiredToken(t *testing.T) {
	router := authRouter(testSecret)

	claims := staffClaims("rrhh")
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, claims, testSecret))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "token has expired")
}

func TestRequireRole(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		role     string
		expected int
	}{
		{"admin", http.StatusOK},
		{"rrhh", http.StatusOK},
		{"empleado", http.StatusForbidden},
		{"", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest("GET", "/employees", nil)
			if tt.role != "" {
				c.Set("userRole", tt.role)
			}

			RequireRole("admin", "rrhh")(c)

			if tt.expected == http.StatusOK {
				assert.False(t, c.IsAborted())
			} else {
				assert.True(t, c.IsAborted())
				assert.Equal(t, tt.expected, w.Code)
			}
		})
	}
}

func TestRequireStaffOrSelfEmployee(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		role       string
		employeeID uint
		param      string
		allowed    bool
	}{
		{"RRHH accesses anyone", "rrhh", 0, "9", true},
		{"Admin accesses anyone", "admin", 0, "9", true},
		{"Empleado accesses own record", "empleado", 9, "9", true},
		{"Empleado blocked from others", "empleado", 9, "10", false},
		{"Unlinked empleado blocked", "empleado", 0, "9", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest("GET", "/employees/"+tt.param, nil)
			c.Params = gin.Params{{Key: "employee_id", Value: tt.param}}
			c.Set("userRole", tt.role)
			if tt.employeeID != 0 {
				c.Set("employeeID", tt.employeeID)
			}

			RequireStaffOrSelfEmployee()(c)

			assert.Equal(t, tt.allowed, !c.IsAborted())
			if !tt.allowed {
				assert.Equal(t, http.StatusForbidden, w.Code)
			}
		})
	}
}

func TestRequireAdminOrOwner(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name    string
		role    string
		userID  uint
		param   string
		allowed bool
	}{
		{"Admin passes", "admin", 1, "7", true},
		{"Owner passes", "empleado", 7, "7", true},
		{"Other user blocked", "empleado", 7, "8", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest("GET", "/users/"+tt.param, nil)
			c.Params = gin.Params{{Key: "user_id", Value: tt.param}}
			c.Set("userRole", tt.role)
			c.Set("userID", tt.userID)

			RequireAdminOrOwner()(c)

			assert.Equal(t, tt.allowed, !c.IsAborted())
			if !tt.allowed {
				assert.Equal(t, http.StatusForbidden, w.Code)
			}
		})
	}
}
