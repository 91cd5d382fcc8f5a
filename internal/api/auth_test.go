package api_test

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/pageza/foodgram/backend/internal/types"
)

func TestRegisterLoginLogout(t *testing.T) {
	a := newTestAPI(t)

	w := a.do(http.MethodPost, "/api/users/", "", gin.H{
		"email":      "cook@example.com",
		"username":   "cook",
		"first_name": "Ann",
		"last_name":  "Cook",
		"password":   "supersecret",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	registered := decode[types.RegisteredUser](t, w)
	assert.Equal(t, "cook", registered.Username)
	assert.NotContains(t, w.Body.String(), "password")

	w = a.do(http.MethodPost, "/api/auth/token/login/", "", gin.H{"email": "cook@example.com", "password": "supersecret"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	token := decode[map[string]string](t, w)["auth_token"]
	require.NotEmpty(t, token)

	w = a.do(http.MethodGet, "/api/users/me/", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	me := decode[types.UserResponse](t, w)
	assert.Equal(t, registered.ID, me.ID)
	assert.False(t, me.IsSubscribed)

	w = a.do(http.MethodPost, "/api/auth/token/logout/", token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = a.do(http.MethodGet, "/api/users/me/", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoginWithWrongPassword(t *testing.T) {
	a := newTestAPI(t)
	testhelpers.CreateUser(t, a.db, "cook")

	w := a.do(http.MethodPost, "/api/auth/token/login/", "", gin.H{"email": "cook@example.com", "password": "nope"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegisterValidation(t *testing.T) {
	a := newTestAPI(t)
	testhelpers.CreateUser(t, a.db, "taken")

	valid := func() gin.H {
		return gin.H{
			"email":      "new@example.com",
			"username":   "newcook",
			"first_name": "New",
			"last_name":  "Cook",
			"password":   "supersecret",
		}
	}

	tests := []struct {
		name   string
		modify func(gin.H)
		field  string
	}{
		{"bad username", func(b gin.H) { b["username"] = "no spaces" }, "username"},
		{"reserved username", func(b gin.H) { b["username"] = "me" }, "username"},
		{"bad email", func(b gin.H) { b["email"] = "nope" }, "email"},
		{"short password", func(b gin.H) { b["password"] = "short" }, "password"},
		{"missing first name", func(b gin.H) { delete(b, "first_name") }, "first_name"},
		{"duplicate email", func(b gin.H) { b["email"] = "taken@example.com" }, "email"},
		{"duplicate username", func(b gin.H) { b["username"] = "taken" }, "username"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := valid()
			tt.modify(body)

			w := a.do(http.MethodPost, "/api/users/", "", body)
			require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			assert.Equal(t, tt.field, decode[map[string]string](t, w)["field"])
		})
	}
}

func TestSetPassword(t *testing.T) {
	a := newTestAPI(t)
	user := testhelpers.CreateUser(t, a.db, "cook")
	token := a.tokenFor(user)

	w := a.do(http.MethodPost, "/api/users/set_password/", token, gin.H{
		"current_password": "wrong-password",
		"new_password":     "brand-new-secret",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.do(http.MethodPost, "/api/users/set_password/", token, gin.H{
		"current_password": testhelpers.TestPassword,
		"new_password":     "brand-new-secret",
	})
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = a.do(http.MethodPost, "/api/auth/token/login/", "", gin.H{"email": user.Email, "password": "brand-new-secret"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthRequired(t *testing.T) {
	a := newTestAPI(t)

	for _, path := range []string{"/api/users/me/", "/api/users/subscriptions/", "/api/recipes/download_shopping_cart/"} {
		w := a.do(http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}

	w := a.do(http.MethodGet, "/api/recipes/", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
