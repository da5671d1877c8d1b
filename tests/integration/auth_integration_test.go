// Package integration provides integration testing for the FabMate backend API.
// This file covers authentication and role-based authorization end to end.
package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	identityapp "github.com/fabmate/backend/internal/application/identity"
	"github.com/fabmate/backend/internal/domain/identity"
	"github.com/fabmate/backend/internal/infrastructure/auth"
	"github.com/fabmate/backend/internal/infrastructure/config"
	"github.com/fabmate/backend/internal/infrastructure/persistence"
	"github.com/fabmate/backend/internal/interfaces/http/handler"
	"github.com/fabmate/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testPassword = "TestPass123!"

// authServer wires the auth stack against a test database, plus a few
// role-guarded routes so the hierarchy can be exercised over HTTP.
type authServer struct {
	DB          *TestDB
	Engine      *gin.Engine
	UserRepo    *persistence.GormUserRepository
	CompanyRepo *persistence.GormCompanyRepository
	AuthService *identityapp.AuthService
	JWTService  *auth.JWTService
}

func newAuthServer(t *testing.T) *authServer {
	t.Helper()

	gin.SetMode(gin.TestMode)
	testDB := NewTestDB(t)

	userRepo := persistence.NewGormUserRepository(testDB.DB)
	companyRepo := persistence.NewGormCompanyRepository(testDB.DB)

	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-for-auth-testing-1234567890",
		RefreshSecret:          "test-refresh-secret-key-for-auth-testing",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 7 * 24 * time.Hour,
		Issuer:                 "fabmate-test",
		MaxRefreshCount:        10,
	})

	authService := identityapp.NewAuthService(userRepo, companyRepo, jwtService, identityapp.AuthServiceConfig{
		MaxLoginAttempts: 5,
		LockDuration:     15 * time.Minute,
	}, zap.NewNop())

	authHandler := handler.NewAuthHandler(authService)

	engine := gin.New()
	api := engine.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.POST("/refresh", authHandler.RefreshToken)

	protectedAuth := authGroup.Group("")
	protectedAuth.Use(middleware.JWTAuthMiddleware(jwtService))
	protectedAuth.POST("/logout", authHandler.Logout)
	protectedAuth.GET("/me", authHandler.GetCurrentUser)
	protectedAuth.PUT("/password", authHandler.ChangePassword)

	ok := func(data string) gin.HandlerFunc {
		return func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
		}
	}
	protectedAPI := api.Group("/protected")
	protectedAPI.Use(middleware.JWTAuthMiddleware(jwtService))
	protectedAPI.GET("/work-orders", middleware.RequireRole(middleware.RoleViewer), ok("work orders"))
	protectedAPI.POST("/work-orders", middleware.RequireMember(), ok("created"))
	protectedAPI.DELETE("/users/:id", middleware.RequireAdmin(), ok("deleted"))

	return &authServer{
		DB:          testDB,
		Engine:      engine,
		UserRepo:    userRepo,
		CompanyRepo: companyRepo,
		AuthService: authService,
		JWTService:  jwtService,
	}
}

func (ts *authServer) Request(method, path string, body any, token ...string) *httptest.ResponseRecorder {
	reqBody := bytes.NewBuffer(nil)
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if len(token) > 0 && token[0] != "" {
		req.Header.Set("Authorization", "Bearer "+token[0])
	}

	w := httptest.NewRecorder()
	ts.Engine.ServeHTTP(w, req)
	return w
}

func (ts *authServer) CreateCompany(t *testing.T, code, name string) *identity.Company {
	t.Helper()
	company, err := identity.NewCompany(code, name)
	require.NoError(t, err)
	require.NoError(t, ts.CompanyRepo.Save(context.Background(), company))
	return company
}

func (ts *authServer) CreateUser(t *testing.T, companyID uuid.UUID, email, password string, role identity.UserRole) *identity.User {
	t.Helper()
	user, err := identity.NewActiveUser(companyID, email, password, role)
	require.NoError(t, err)
	user.ClearDomainEvents()
	require.NoError(t, ts.UserRepo.Save(context.Background(), user))
	return user
}

func (ts *authServer) attemptLogin(email, password string) *httptest.ResponseRecorder {
	return ts.Request(http.MethodPost, "/api/v1/auth/login", map[string]any{
		"email":    email,
		"password": password,
	})
}

// Login authenticates over HTTP and returns (accessToken, refreshToken).
func (ts *authServer) Login(t *testing.T, email, password string) (string, string) {
	t.Helper()
	w := ts.attemptLogin(email, password)
	require.Equal(t, http.StatusOK, w.Code, "login failed: %s", w.Body.String())

	data := decodeData(t, w)
	return data["access_token"].(string), data["refresh_token"].(string)
}

// decodeData unwraps the data field of a {success,message,data} envelope.
func decodeData(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data, okFlag := resp["data"].(map[string]any)
	require.True(t, okFlag, "response has no data object: %s", w.Body.String())
	return data
}

func uniqueEmail(prefix string) string {
	return fmt.Sprintf("%s_%s@test.local", prefix, uuid.New().String()[:8])
}

func TestAuth_SignupFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ts := newAuthServer(t)

	t.Run("signup creates company and admin user", func(t *testing.T) {
		email := uniqueEmail("founder")
		w := ts.Request(http.MethodPost, "/api/v1/auth/register", map[string]any{
			"company_code": "ACME_FAB",
			"company_name": "Acme Fabrication",
			"email":        email,
			"password":     testPassword,
			"display_name": "Founder",
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		data := decodeData(t, w)
		assert.NotEmpty(t, data["access_token"])
		assert.NotEmpty(t, data["refresh_token"])

		userInfo := data["user"].(map[string]any)
		assert.Equal(t, email, userInfo["email"])
		assert.Equal(t, "admin", userInfo["role"])
		assert.Equal(t, "active", userInfo["status"])

		company, err := ts.CompanyRepo.FindByCode(context.Background(), "ACME_FAB")
		require.NoError(t, err)
		assert.Equal(t, "Acme Fabrication", company.Name)
	})

	t.Run("duplicate company code returns conflict", func(t *testing.T) {
		ts.CreateCompany(t, "DUP_CODE", "Existing Company")

		w := ts.Request(http.MethodPost, "/api/v1/auth/register", map[string]any{
			"company_code": "DUP_CODE",
			"company_name": "Another Company",
			"email":        uniqueEmail("dup"),
			"password":     testPassword,
		})
		assert.Equal(t, http.StatusConflict, w.Code, w.Body.String())
	})

	t.Run("duplicate email returns conflict", func(t *testing.T) {
		company := ts.CreateCompany(t, "EMAIL_CO", "Email Company")
		email := uniqueEmail("taken")
		ts.CreateUser(t, company.ID, email, testPassword, identity.UserRoleAdmin)

		w := ts.Request(http.MethodPost, "/api/v1/auth/register", map[string]any{
			"company_code": "EMAIL_CO2",
			"company_name": "Second Email Company",
			"email":        email,
			"password":     testPassword,
		})
		assert.Equal(t, http.StatusConflict, w.Code, w.Body.String())
	})
}

func TestAuth_LoginFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ts := newAuthServer(t)
	company := ts.CreateCompany(t, "LOGIN_CO", "Login Test Company")

	t.Run("successful login returns tokens and user info", func(t *testing.T) {
		email := uniqueEmail("member")
		user := ts.CreateUser(t, company.ID, email, testPassword, identity.UserRoleMember)

		w := ts.attemptLogin(email, testPassword)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		data := decodeData(t, w)
		assert.NotEmpty(t, data["access_token"])
		assert.NotEmpty(t, data["refresh_token"])
		assert.Equal(t, "Bearer", data["token_type"])

		userInfo := data["user"].(map[string]any)
		assert.Equal(t, user.ID.String(), userInfo["id"])
		assert.Equal(t, company.ID.String(), userInfo["company_id"])
		assert.Equal(t, "member", userInfo["role"])
	})

	t.Run("unknown email returns 401", func(t *testing.T) {
		w := ts.attemptLogin(uniqueEmail("nobody"), testPassword)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("invalid password returns 401", func(t *testing.T) {
		email := uniqueEmail("wrongpass")
		ts.CreateUser(t, company.ID, email, testPassword, identity.UserRoleMember)

		w := ts.attemptLogin(email, "WrongPass456!")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("deactivated user cannot login", func(t *testing.T) {
		email := uniqueEmail("deact")
		user := ts.CreateUser(t, company.ID, email, testPassword, identity.UserRoleMember)

		require.NoError(t, user.Deactivate())
		require.NoError(t, ts.UserRepo.Save(context.Background(), user))

		w := ts.attemptLogin(email, testPassword)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("pending user cannot login", func(t *testing.T) {
		email := uniqueEmail("pending")
		user, err := identity.NewUser(company.ID, email, testPassword, identity.UserRoleMember)
		require.NoError(t, err)
		user.ClearDomainEvents()
		require.NoError(t, ts.UserRepo.Save(context.Background(), user))

		w := ts.attemptLogin(email, testPassword)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("suspended company blocks login", func(t *testing.T) {
		suspended := ts.CreateCompany(t, "SUSP_CO", "Suspended Company")
		email := uniqueEmail("suspco")
		ts.CreateUser(t, suspended.ID, email, testPassword, identity.UserRoleAdmin)

		require.NoError(t, suspended.Suspend())
		require.NoError(t, ts.CompanyRepo.Save(context.Background(), suspended))

		w := ts.attemptLogin(email, testPassword)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("account locks after max failed attempts", func(t *testing.T) {
		email := uniqueEmail("locked")
		ts.CreateUser(t, company.ID, email, testPassword, identity.UserRoleMember)

		for range 5 {
			w := ts.attemptLogin(email, "WrongPass456!")
			assert.NotEqual(t, http.StatusOK, w.Code)
		}

		// Even the correct password is rejected now
		w := ts.attemptLogin(email, testPassword)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

		user, err := ts.UserRepo.FindByEmail(context.Background(), email)
		require.NoError(t, err)
		assert.True(t, user.IsLocked())
	})

	t.Run("login tracks last login and resets failures", func(t *testing.T) {
		email := uniqueEmail("tracked")
		ts.CreateUser(t, company.ID, email, testPassword, identity.UserRoleMember)

		w := ts.attemptLogin(email, testPassword)
		require.Equal(t, http.StatusOK, w.Code)

		user, err := ts.UserRepo.FindByEmail(context.Background(), email)
		require.NoError(t, err)
		require.NotNil(t, user.LastLoginAt)
		assert.WithinDuration(t, time.Now(), *user.LastLoginAt, time.Minute)
		assert.Equal(t, 0, user.FailedAttempts)
	})
}

func TestAuth_RoleControl(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ts := newAuthServer(t)
	company := ts.CreateCompany(t, "ROLE_CO", "Role Test Company")

	tokens := map[identity.UserRole]string{}
	for _, role := range []identity.UserRole{identity.UserRoleViewer, identity.UserRoleMember, identity.UserRoleAdmin} {
		email := uniqueEmail(string(role))
		ts.CreateUser(t, company.ID, email, testPassword, role)
		tokens[role], _ = ts.Login(t, email, testPassword)
	}

	t.Run("request without auth gets 401", func(t *testing.T) {
		w := ts.Request(http.MethodGet, "/api/v1/protected/work-orders", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("viewer can read but not write", func(t *testing.T) {
		w := ts.Request(http.MethodGet, "/api/v1/protected/work-orders", nil, tokens[identity.UserRoleViewer])
		assert.Equal(t, http.StatusOK, w.Code)

		w = ts.Request(http.MethodPost, "/api/v1/protected/work-orders", map[string]any{"name": "test"}, tokens[identity.UserRoleViewer])
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("member can write but not administer", func(t *testing.T) {
		w := ts.Request(http.MethodPost, "/api/v1/protected/work-orders", map[string]any{"name": "test"}, tokens[identity.UserRoleMember])
		assert.Equal(t, http.StatusOK, w.Code)

		w = ts.Request(http.MethodDelete, "/api/v1/protected/users/123", nil, tokens[identity.UserRoleMember])
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("admin passes all checks", func(t *testing.T) {
		adminToken := tokens[identity.UserRoleAdmin]
		w := ts.Request(http.MethodGet, "/api/v1/protected/work-orders", nil, adminToken)
		assert.Equal(t, http.StatusOK, w.Code)

		w = ts.Request(http.MethodPost, "/api/v1/protected/work-orders", map[string]any{"name": "test"}, adminToken)
		assert.Equal(t, http.StatusOK, w.Code)

		w = ts.Request(http.MethodDelete, "/api/v1/protected/users/123", nil, adminToken)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("malformed authorization headers get 401", func(t *testing.T) {
		for _, header := range []string{"NotBearer " + tokens[identity.UserRoleViewer], "Bearer "} {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/protected/work-orders", nil)
			req.Header.Set("Authorization", header)
			w := httptest.NewRecorder()
			ts.Engine.ServeHTTP(w, req)
			assert.Equal(t, http.StatusUnauthorized, w.Code, "header %q", header)
		}
	})
}

func TestAuth_TokenRefresh(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ts := newAuthServer(t)
	company := ts.CreateCompany(t, "REFRESH_CO", "Refresh Test Company")

	refresh := func(token string) *httptest.ResponseRecorder {
		return ts.Request(http.MethodPost, "/api/v1/auth/refresh", map[string]any{"refresh_token": token})
	}

	t.Run("valid refresh token returns new tokens", func(t *testing.T) {
		email := uniqueEmail("refresh")
		ts.CreateUser(t, company.ID, email, testPassword, identity.UserRoleMember)
		_, refreshToken := ts.Login(t, email, testPassword)

		w := refresh(refreshToken)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		data := decodeData(t, w)
		assert.NotEmpty(t, data["access_token"])
		assert.NotEmpty(t, data["refresh_token"])

		claims, err := ts.JWTService.ValidateAccessToken(data["access_token"].(string))
		require.NoError(t, err)
		assert.Equal(t, company.ID.String(), claims.CompanyID)
	})

	t.Run("invalid refresh token returns 401", func(t *testing.T) {
		w := refresh("not-a-valid-token")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("access token cannot be used as refresh token", func(t *testing.T) {
		email := uniqueEmail("wrongkind")
		ts.CreateUser(t, company.ID, email, testPassword, identity.UserRoleMember)
		accessToken, _ := ts.Login(t, email, testPassword)

		w := refresh(accessToken)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("refresh for deactivated user fails", func(t *testing.T) {
		email := uniqueEmail("refrdeact")
		user := ts.CreateUser(t, company.ID, email, testPassword, identity.UserRoleMember)
		_, refreshToken := ts.Login(t, email, testPassword)

		require.NoError(t, user.Deactivate())
		require.NoError(t, ts.UserRepo.Save(context.Background(), user))

		w := refresh(refreshToken)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("refresh reflects role change", func(t *testing.T) {
		email := uniqueEmail("promoted")
		user := ts.CreateUser(t, company.ID, email, testPassword, identity.UserRoleViewer)
		_, refreshToken := ts.Login(t, email, testPassword)

		require.NoError(t, user.SetRole(identity.UserRoleAdmin))
		require.NoError(t, ts.UserRepo.Save(context.Background(), user))

		w := refresh(refreshToken)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		claims, err := ts.JWTService.ValidateAccessToken(decodeData(t, w)["access_token"].(string))
		require.NoError(t, err)
		assert.Equal(t, "admin", claims.Role)
	})
}

func TestAuth_CurrentUserAndPassword(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ts := newAuthServer(t)
	company := ts.CreateCompany(t, "ME_CO", "Me Test Company")

	t.Run("get current user returns user info", func(t *testing.T) {
		email := uniqueEmail("me")
		user := ts.CreateUser(t, company.ID, email, testPassword, identity.UserRoleMember)
		token, _ := ts.Login(t, email, testPassword)

		w := ts.Request(http.MethodGet, "/api/v1/auth/me", nil, token)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		data := decodeData(t, w)
		assert.Equal(t, user.ID.String(), data["id"])
		assert.Equal(t, company.ID.String(), data["company_id"])
		assert.Equal(t, email, data["email"])
	})

	t.Run("get current user without token returns 401", func(t *testing.T) {
		w := ts.Request(http.MethodGet, "/api/v1/auth/me", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("change password with correct old password succeeds", func(t *testing.T) {
		email := uniqueEmail("chpass")
		ts.CreateUser(t, company.ID, email, testPassword, identity.UserRoleMember)
		token, _ := ts.Login(t, email, testPassword)

		newPassword := "NewPass456!"
		w := ts.Request(http.MethodPut, "/api/v1/auth/password", map[string]any{
			"old_password": testPassword,
			"new_password": newPassword,
		}, token)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		// Old password no longer works, new one does
		w = ts.attemptLogin(email, testPassword)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		ts.Login(t, email, newPassword)
	})

	t.Run("change password with wrong old password fails", func(t *testing.T) {
		email := uniqueEmail("chpassbad")
		ts.CreateUser(t, company.ID, email, testPassword, identity.UserRoleMember)
		token, _ := ts.Login(t, email, testPassword)

		w := ts.Request(http.MethodPut, "/api/v1/auth/password", map[string]any{
			"old_password": "WrongOld456!",
			"new_password": "NewPass456!",
		}, token)
		assert.NotEqual(t, http.StatusOK, w.Code)
	})
}

func TestAuth_TokenSecurity(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ts := newAuthServer(t)
	company := ts.CreateCompany(t, "SEC_CO", "Security Test Company")
	email := uniqueEmail("sec")
	ts.CreateUser(t, company.ID, email, testPassword, identity.UserRoleMember)
	token, _ := ts.Login(t, email, testPassword)

	t.Run("tampered signature is rejected", func(t *testing.T) {
		parts := strings.Split(token, ".")
		require.Len(t, parts, 3)

		w := ts.Request(http.MethodGet, "/api/v1/auth/me", nil, parts[0]+"."+parts[1]+".tampered-signature")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("garbage token is rejected", func(t *testing.T) {
		w := ts.Request(http.MethodGet, "/api/v1/auth/me", nil, "garbage-token")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("logout returns success", func(t *testing.T) {
		w := ts.Request(http.MethodPost, "/api/v1/auth/logout", nil, token)
		assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	})
}

func TestAuth_MultiCompanyIsolation(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ts := newAuthServer(t)
	companyA := ts.CreateCompany(t, "ISO_CO_A", "Isolation Company A")
	companyB := ts.CreateCompany(t, "ISO_CO_B", "Isolation Company B")

	t.Run("tokens carry the issuing company id", func(t *testing.T) {
		emailA, emailB := uniqueEmail("isoa"), uniqueEmail("isob")
		ts.CreateUser(t, companyA.ID, emailA, testPassword, identity.UserRoleMember)
		ts.CreateUser(t, companyB.ID, emailB, testPassword, identity.UserRoleMember)

		tokenA, _ := ts.Login(t, emailA, testPassword)
		tokenB, _ := ts.Login(t, emailB, testPassword)

		claimsA, err := ts.JWTService.ValidateAccessToken(tokenA)
		require.NoError(t, err)
		assert.Equal(t, companyA.ID.String(), claimsA.CompanyID)

		claimsB, err := ts.JWTService.ValidateAccessToken(tokenB)
		require.NoError(t, err)
		assert.Equal(t, companyB.ID.String(), claimsB.CompanyID)
	})

	t.Run("me endpoint is scoped to the caller's company", func(t *testing.T) {
		emailA := uniqueEmail("scopea")
		ts.CreateUser(t, companyA.ID, emailA, testPassword, identity.UserRoleMember)
		tokenA, _ := ts.Login(t, emailA, testPassword)

		w := ts.Request(http.MethodGet, "/api/v1/auth/me", nil, tokenA)
		require.Equal(t, http.StatusOK, w.Code)

		data := decodeData(t, w)
		assert.Equal(t, companyA.ID.String(), data["company_id"])
		assert.NotEqual(t, companyB.ID.String(), data["company_id"])
	})
}
