package tests

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/trezcool/shule/apps/api/echo"
	"github.com/trezcool/shule/core/user"
	emailsvc "github.com/trezcool/shule/services/email"
)

func TestAuthAPI_register(t *testing.T) {
	env := setup(t)

	body := marshallObj(t, user.NewUser{
		FirstName:       "Jane",
		LastName:        "Doe",
		Email:           "jane@test.test",
		Password:        "Str0ngPa$$",
		PasswordConfirm: "Str0ngPa$$",
		Role:            user.RoleTeacher,
	})

	req, rec := newRequest(http.MethodPost, "/api/auth/register", body)
	env.app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	var usr user.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &usr))
	assert.NotZero(t, usr.ID)
	assert.Equal(t, "jane@test.test", usr.Email)
	assert.Equal(t, user.RoleTeacher, usr.Role)

	// welcome email sent
	require.Len(t, emailsvc.SentMessages, 1)
	assert.Equal(t, "jane@test.test", emailsvc.SentMessages[0].To[0].Address)

	t.Run("duplicate email conflicts", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/api/auth/register", body)
		env.app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Contains(t, rec.Body.String(), "already exists")
	})

	t.Run("coordinator role cannot be self-assigned", func(t *testing.T) {
		body := marshallObj(t, user.NewUser{
			FirstName:       "Evil",
			LastName:        "Coordinator",
			Email:           "evil@test.test",
			Password:        "Str0ngPa$$",
			PasswordConfirm: "Str0ngPa$$",
			Role:            user.RoleCoordinator,
		})
		req, rec := newRequest(http.MethodPost, "/api/auth/register", body)
		env.app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestAuthAPI_login(t *testing.T) {
	env := setup(t)
	usr := env.createUser(t, "John", "Doe", "john@test.test", user.RoleStudent)

	tests := []httpTest{
		{
			name:     "valid credentials",
			body:     marshallObj(t, LoginRequest{Email: usr.Email, Password: "Str0ngPa$$"}),
			wantCode: http.StatusOK,
		},
		{
			name:     "wrong password",
			body:     marshallObj(t, LoginRequest{Email: usr.Email, Password: "nope nope"}),
			wantCode: http.StatusUnauthorized,
			wantData: marshallObj(t, httpErr{Message: "authentication failed"}),
		},
		{
			name:     "unknown email",
			body:     marshallObj(t, LoginRequest{Email: "ghost@test.test", Password: "Str0ngPa$$"}),
			wantCode: http.StatusUnauthorized,
			wantData: marshallObj(t, httpErr{Message: "authentication failed"}),
		},
		{
			name:     "missing fields",
			body:     marshallObj(t, LoginRequest{}),
			wantCode: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/api/auth/login", tt.body)
			env.app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)

			if rec.Code == http.StatusOK {
				var resp LoginResponse
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
				assert.NotEmpty(t, resp.Token)
			}
		})
	}
}

func TestAuthAPI_me(t *testing.T) {
	env := setup(t)
	usr := env.createUser(t, "John", "Doe", "john@test.test", user.RoleStudent)

	t.Run("authenticated", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/api/auth/me", getToken(t, usr))
		env.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var me user.User
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &me))
		assert.Equal(t, usr.ID, me.ID)
	})

	t.Run("no token", func(t *testing.T) {
		tt := httpTest{wantCode: http.StatusUnauthorized, wantData: marshallObj(t, errMissingToken)}
		req, rec := newRequest(http.MethodGet, "/api/auth/me")
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})
}

func TestAuthAPI_passwordResetFlow(t *testing.T) {
	env := setup(t)
	usr := env.createUser(t, "John", "Doe", "john@test.test", user.RoleStudent)

	// request a reset link
	body := marshallObj(t, PasswordResetRequest{Email: usr.Email})
	req, rec := newRequest(http.MethodPost, "/api/auth/password-reset", body)
	env.app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, emailsvc.SentMessages, 1)

	// the same response is returned for unknown emails
	body = marshallObj(t, PasswordResetRequest{Email: "ghost@test.test"})
	req2, rec2 := newRequest(http.MethodPost, "/api/auth/password-reset", body)
	env.app.ServeHTTP(rec2, req2)
	require.Equal(t, http.StatusOK, rec2.Code)
	assert.Equal(t, rec.Body.String(), rec2.Body.String())
	assert.Len(t, emailsvc.SentMessages, 1) // no new mail

	// pull uid & token out of the mailed link
	mailBody := emailsvc.SentMessages[0].Body
	idx := strings.Index(mailBody, "password-reset?")
	require.GreaterOrEqual(t, idx, 0)
	link, err := url.Parse(strings.TrimSpace(mailBody[idx:]))
	require.NoError(t, err)
	uid, token := link.Query().Get("uid"), link.Query().Get("token")
	require.NotEmpty(t, uid)
	require.NotEmpty(t, token)

	// confirm with the mailed credentials
	body = marshallObj(t, user.ResetUserPassword{
		UID:             uid,
		Token:           token,
		Password:        "N3wPa$$word",
		PasswordConfirm: "N3wPa$$word",
	})
	req3, rec3 := newRequest(http.MethodPost, "/api/auth/password-reset-confirm", body)
	env.app.ServeHTTP(rec3, req3)
	require.Equal(t, http.StatusOK, rec3.Code)

	// old password no longer works, new one does
	loginBody := marshallObj(t, LoginRequest{Email: usr.Email, Password: "Str0ngPa$$"})
	req4, rec4 := newRequest(http.MethodPost, "/api/auth/login", loginBody)
	env.app.ServeHTTP(rec4, req4)
	assert.Equal(t, http.StatusUnauthorized, rec4.Code)

	loginBody = marshallObj(t, LoginRequest{Email: usr.Email, Password: "N3wPa$$word"})
	req5, rec5 := newRequest(http.MethodPost, "/api/auth/login", loginBody)
	env.app.ServeHTTP(rec5, req5)
	assert.Equal(t, http.StatusOK, rec5.Code)
}
