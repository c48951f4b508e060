package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/Maheshwaran1303/todo-backend-redrf/internal/crypto"
	"github.com/Maheshwaran1303/todo-backend-redrf/internal/repository"
	"github.com/Maheshwaran1303/todo-backend-redrf/internal/service"
	"github.com/Maheshwaran1303/todo-backend-redrf/internal/tokenstore"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	mem := repository.NewMemory()
	hasher := crypto.NewHasher(crypto.HashParams{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32})
	tokens := crypto.NewTokenIssuer("test-secret", 5*time.Minute, 24*time.Hour)

	return NewRouter(ctx, RouterConfig{
		Auth:      service.NewAuthService(mem.Users(), hasher, tokens, tokenstore.NewMemory()),
		Todos:     service.NewTodoService(mem.Todos()),
		AuthRPS:   1000,
		AuthBurst: 1000,
	})
}

// do sends body as JSON, or verbatim when it is already a string.
func do(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), "body: %s", rec.Body.String())
	return v
}

func register(t *testing.T, h http.Handler, username string) {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/api/users/register/", "", map[string]string{
		"username":  username,
		"email":     username + "@x.com",
		"password":  "Secret123!",
		"password2": "Secret123!",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func login(t *testing.T, h http.Handler, username string) (access, refresh string) {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/api/users/login/", "", map[string]string{
		"username": username,
		"password": "Secret123!",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode[map[string]string](t, rec)
	require.Equal(t, username, body["username"])
	require.NotEmpty(t, body["access"])
	require.NotEmpty(t, body["refresh"])
	return body["access"], body["refresh"]
}

func TestHealth(t *testing.T) {
	h := NewRouter(context.Background(), RouterConfig{})
	rec := do(t, h, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", rec.Body.String())

	// Without services only /health is mounted.
	rec = do(t, h, http.MethodPost, "/api/users/login/", "", "{}")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRegister(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/api/users/register/", "", map[string]string{
		"username": "alice", "email": "a@x.com", "password": "Secret123!", "password2": "Secret123!",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	user := decode[map[string]any](t, rec)
	require.Equal(t, "alice", user["username"])
	require.Equal(t, "a@x.com", user["email"])
	require.NotZero(t, user["id"])
	require.NotContains(t, user, "password")
	require.NotContains(t, user, "password2")
	require.NotContains(t, rec.Body.String(), "Secret123!")

	t.Run("mismatch", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/api/users/register/", "", map[string]string{
			"username": "carol", "password": "Secret123!", "password2": "Secret123?",
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, map[string]string{"password": "Passwords do not match."}, decode[map[string]string](t, rec))
	})

	t.Run("duplicate", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/api/users/register", "", map[string]string{
			"username": "alice", "password": "Secret123!", "password2": "Secret123!",
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Contains(t, decode[map[string]string](t, rec), "username")
	})

	t.Run("missing fields", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/api/users/register/", "", map[string]string{})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		body := decode[map[string]string](t, rec)
		require.Equal(t, "This field is required.", body["username"])
		require.Equal(t, "This field is required.", body["password"])
	})

	t.Run("invalid json", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/api/users/register/", "", "{not json")
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, "Invalid request body", decode[map[string]string](t, rec)["detail"])
	})

	t.Run("body too large", func(t *testing.T) {
		big := `{"username":"` + strings.Repeat("a", maxBodyBytes+1) + `"}`
		rec := do(t, h, http.MethodPost, "/api/users/register/", "", big)
		require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
		require.Equal(t, "Request body too large", decode[map[string]string](t, rec)["detail"])
	})
}

func TestLogin(t *testing.T) {
	h := newTestRouter(t)
	register(t, h, "alice")
	login(t, h, "alice")

	for name, body := range map[string]map[string]string{
		"wrong password": {"username": "alice", "password": "nope"},
		"unknown user":   {"username": "mallory", "password": "Secret123!"},
		"empty":          {},
	} {
		t.Run(name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/api/users/login/", "", body)
			require.Equal(t, http.StatusUnauthorized, rec.Code)
			require.Equal(t, map[string]string{"detail": "Invalid credentials"}, decode[map[string]string](t, rec))
		})
	}
}

func TestAuthRequired(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodGet, "/api/todos/", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "Authentication credentials were not provided.", decode[map[string]string](t, rec)["detail"])

	rec = do(t, h, http.MethodGet, "/api/todos/", "not-a-jwt", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "Token is invalid or expired", decode[map[string]string](t, rec)["detail"])

	rec = do(t, h, http.MethodGet, "/api/users/me/", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestTodoOwnership(t *testing.T) {
	h := newTestRouter(t)
	register(t, h, "alice")
	register(t, h, "bobby")
	aliceToken, _ := login(t, h, "alice")
	bobToken, _ := login(t, h, "bobby")

	// Ownership fields in the body are ignored.
	rec := do(t, h, http.MethodPost, "/api/todos/", aliceToken, map[string]any{
		"title": "Buy milk", "owner": "bobby", "user_id": 2,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	item := decode[map[string]any](t, rec)
	require.Equal(t, "alice", item["owner"])
	require.Equal(t, "Buy milk", item["title"])
	require.Equal(t, false, item["completed"])
	itemPath := "/api/todos/" + strconv.Itoa(int(item["id"].(float64))) + "/"

	rec = do(t, h, http.MethodGet, "/api/todos", aliceToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, decode[[]map[string]any](t, rec), 1)

	rec = do(t, h, http.MethodGet, "/api/todos/", bobToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, "[]", rec.Body.String())

	for _, tc := range []struct {
		method string
		body   any
	}{
		{method: http.MethodGet},
		{method: http.MethodPut, body: map[string]any{"title": "hijacked"}},
		{method: http.MethodPatch, body: map[string]any{"completed": true}},
		{method: http.MethodDelete},
	} {
		rec := do(t, h, tc.method, itemPath, bobToken, tc.body)
		require.Equal(t, http.StatusNotFound, rec.Code, "%s by non-owner", tc.method)
		require.Equal(t, map[string]string{"detail": "Not found."}, decode[map[string]string](t, rec))
	}

	// A missing id looks exactly like someone else's item.
	rec = do(t, h, http.MethodGet, "/api/todos/9999/", aliceToken, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, map[string]string{"detail": "Not found."}, decode[map[string]string](t, rec))

	rec = do(t, h, http.MethodGet, itemPath, aliceToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[map[string]any](t, rec)
	require.Equal(t, "Buy milk", got["title"])
	require.Equal(t, false, got["completed"])
}

func TestTodoLifecycle(t *testing.T) {
	h := newTestRouter(t)
	register(t, h, "alice")
	token, _ := login(t, h, "alice")

	rec := do(t, h, http.MethodPost, "/api/todos", token, map[string]any{"title": "Walk dog", "description": "park"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	id := int(decode[map[string]any](t, rec)["id"].(float64))
	itemPath := "/api/todos/" + strconv.Itoa(id)

	rec = do(t, h, http.MethodPatch, itemPath+"/", token, map[string]any{"completed": true})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	patched := decode[map[string]any](t, rec)
	require.Equal(t, true, patched["completed"])
	require.Equal(t, "park", patched["description"])

	rec = do(t, h, http.MethodGet, "/api/todos/?completed=true", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, decode[[]map[string]any](t, rec), 1)

	rec = do(t, h, http.MethodGet, "/api/todos/?completed=false", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, "[]", rec.Body.String())

	rec = do(t, h, http.MethodGet, "/api/todos/?completed=maybe", token, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPut, itemPath, token, map[string]any{"description": "no title"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, map[string]string{"title": "This field is required."}, decode[map[string]string](t, rec))

	rec = do(t, h, http.MethodPut, itemPath, token, map[string]any{"title": "Walk cat"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	replaced := decode[map[string]any](t, rec)
	require.Equal(t, "Walk cat", replaced["title"])
	require.Equal(t, "", replaced["description"])
	require.Equal(t, false, replaced["completed"])

	rec = do(t, h, http.MethodDelete, itemPath+"/", token, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Empty(t, rec.Body.String())

	rec = do(t, h, http.MethodGet, itemPath, token, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	for _, bad := range []string{"abc", "0", "-1", "99999999999999999999"} {
		rec = do(t, h, http.MethodGet, "/api/todos/"+bad+"/", token, nil)
		require.Equal(t, http.StatusNotFound, rec.Code, "id %q", bad)
	}
}

func TestMe(t *testing.T) {
	h := newTestRouter(t)
	register(t, h, "alice")
	token, _ := login(t, h, "alice")

	rec := do(t, h, http.MethodGet, "/api/users/me/", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	me := decode[map[string]any](t, rec)
	require.Equal(t, "alice", me["username"])
	require.NotContains(t, me, "password")
}

func TestRefreshAndLogout(t *testing.T) {
	h := newTestRouter(t)
	register(t, h, "alice")
	access, refresh := login(t, h, "alice")

	rec := do(t, h, http.MethodPost, "/api/users/token/refresh/", "", map[string]string{"refresh": refresh})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	newAccess := decode[map[string]string](t, rec)["access"]
	require.NotEmpty(t, newAccess)

	rec = do(t, h, http.MethodGet, "/api/todos/", newAccess, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/users/token/refresh/", "", map[string]string{"refresh": access})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "Token is invalid or expired", decode[map[string]string](t, rec)["detail"])

	rec = do(t, h, http.MethodPost, "/api/users/token/refresh/", "", map[string]string{})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "This field is required.", decode[map[string]string](t, rec)["refresh"])

	rec = do(t, h, http.MethodPost, "/api/users/logout/", access, map[string]string{"refresh": refresh})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Equal(t, map[string]string{"detail": "Logged out successfully"}, decode[map[string]string](t, rec))

	rec = do(t, h, http.MethodGet, "/api/todos/", access, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "Token is invalid or expired", decode[map[string]string](t, rec)["detail"])

	rec = do(t, h, http.MethodPost, "/api/users/token/refresh/", "", map[string]string{"refresh": refresh})
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	// Only the access token presented at logout is revoked.
	rec = do(t, h, http.MethodGet, "/api/todos/", newAccess, nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestLogoutWithoutBody(t *testing.T) {
	h := newTestRouter(t)
	register(t, h, "alice")
	access, _ := login(t, h, "alice")

	rec := do(t, h, http.MethodPost, "/api/users/logout/", access, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/api/users/me/", access, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMethodNotAllowed(t *testing.T) {
	h := newTestRouter(t)
	rec := do(t, h, http.MethodGet, "/api/users/login/", "", nil)
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestAuthRateLimit(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mem := repository.NewMemory()
	h := NewRouter(ctx, RouterConfig{
		Auth: service.NewAuthService(mem.Users(), crypto.NewHasher(crypto.DefaultHashParams()),
			crypto.NewTokenIssuer("test-secret", time.Minute, time.Hour), tokenstore.NewMemory()),
		Todos:     service.NewTodoService(mem.Todos()),
		AuthRPS:   0.001,
		AuthBurst: 1,
	})

	rec := do(t, h, http.MethodPost, "/api/users/login/", "", map[string]string{})
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/users/login/", "", map[string]string{})
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.NotEmpty(t, rec.Header().Get("Retry-After"))
}
