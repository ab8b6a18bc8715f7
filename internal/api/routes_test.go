package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"LoaderDash/internal/auth"
	"LoaderDash/internal/db"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testAdminKey = "test-admin-key"
	testAPIKey   = "test-api-key"
)

// newTestRouter 创建基于临时数据库的完整路由器
func newTestRouter(t *testing.T) *Router {
	t.Helper()
	database, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return NewRouter(database, auth.NewService(testAdminKey, testAPIKey))
}

// doJSON 发起一次请求并解析 JSON 响应
func doJSON(t *testing.T, r *Router, method, path string, headers map[string]string, body interface{}) (int, map[string]interface{}) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	resp := map[string]interface{}{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return rec.Code, resp
}

func adminHeaders() map[string]string {
	return map[string]string{"X-Admin-Key": testAdminKey}
}

func loaderHeaders() map[string]string {
	return map[string]string{"X-API-Key": testAPIKey}
}

func TestAdminGate(t *testing.T) {
	r := newTestRouter(t)

	// 无密钥
	code, resp := doJSON(t, r, http.MethodGet, "/admin/users", nil, nil)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, false, resp["ok"])
	assert.Equal(t, "INVALID_ADMIN_KEY", resp["code"])

	// 错误密钥
	code, resp = doJSON(t, r, http.MethodGet, "/admin/users", map[string]string{"X-Admin-Key": "wrong"}, nil)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "INVALID_ADMIN_KEY", resp["code"])

	// Loader 密钥不能用于管理端
	code, _ = doJSON(t, r, http.MethodGet, "/admin/users", map[string]string{"X-Admin-Key": testAPIKey}, nil)
	assert.Equal(t, http.StatusForbidden, code)

	// 正确密钥
	code, resp = doJSON(t, r, http.MethodGet, "/admin/users", adminHeaders(), nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, resp["ok"])
}

func TestLoaderGate(t *testing.T) {
	r := newTestRouter(t)

	body := map[string]string{"username": "x", "password": "p", "hwid": "HW1"}

	code, resp := doJSON(t, r, http.MethodPost, "/api/loader/login", nil, body)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, false, resp["ok"])
	assert.Equal(t, "INVALID_API_KEY", resp["code"])

	code, resp = doJSON(t, r, http.MethodPost, "/api/loader/login", map[string]string{"X-API-Key": "wrong"}, body)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "INVALID_API_KEY", resp["code"])
}

func TestAdminLogin(t *testing.T) {
	r := newTestRouter(t)

	// 管理端登录不需要密钥头
	code, resp := doJSON(t, r, http.MethodPost, "/admin/login", nil, map[string]string{"password": testAdminKey})
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, resp["ok"])

	code, resp = doJSON(t, r, http.MethodPost, "/admin/login", nil, map[string]string{"password": "wrong"})
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, false, resp["ok"])
	assert.Equal(t, "INVALID_ADMIN_PASSWORD", resp["code"])
}

// TestLoginBindScenario 完整回放：建号 → 绑定 → 换机被拒 → 重置 → 重新绑定
func TestLoginBindScenario(t *testing.T) {
	r := newTestRouter(t)

	code, resp := doJSON(t, r, http.MethodPost, "/admin/addUser", adminHeaders(),
		map[string]string{"username": "x", "password": "p"})
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, true, resp["ok"])

	// 首次登录：绑定 HW1，附带会话令牌
	code, resp = doJSON(t, r, http.MethodPost, "/api/loader/login", loaderHeaders(),
		map[string]string{"username": "x", "password": "p", "hwid": "HW1"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, resp["ok"])
	assert.Equal(t, "BIND_OK", resp["code"])
	assert.Equal(t, "active", resp["status"])
	assert.Equal(t, "bound", resp["hwid_status"])
	assert.NotEmpty(t, resp["session_token"])

	// 换机：拒绝，信封与成功同形但 ok=false 且无令牌
	code, resp = doJSON(t, r, http.MethodPost, "/api/loader/login", loaderHeaders(),
		map[string]string{"username": "x", "password": "p", "hwid": "HW2"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, false, resp["ok"])
	assert.Equal(t, "HWID_MISMATCH", resp["code"])
	assert.Equal(t, "active", resp["status"])
	assert.Equal(t, "mismatch", resp["hwid_status"])
	assert.NotContains(t, resp, "session_token")

	// 重置绑定
	code, resp = doJSON(t, r, http.MethodPost, "/admin/resetHwid", adminHeaders(),
		map[string]string{"username": "x"})
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, true, resp["ok"])

	// 重新绑定 HW2
	code, resp = doJSON(t, r, http.MethodPost, "/api/loader/login", loaderHeaders(),
		map[string]string{"username": "x", "password": "p", "hwid": "HW2"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, resp["ok"])
	assert.Equal(t, "BIND_OK", resp["code"])
}

func TestLoginFailureCodes(t *testing.T) {
	r := newTestRouter(t)

	code, resp := doJSON(t, r, http.MethodPost, "/api/loader/login", loaderHeaders(),
		map[string]string{"username": "", "password": "p", "hwid": "HW1"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "EMPTY_FIELDS", resp["code"])

	code, resp = doJSON(t, r, http.MethodPost, "/api/loader/login", loaderHeaders(),
		map[string]string{"username": "ghost", "password": "p", "hwid": "HW1"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "INVALID_CREDENTIALS", resp["code"])
}

func TestAddUserValidation(t *testing.T) {
	r := newTestRouter(t)

	code, resp := doJSON(t, r, http.MethodPost, "/admin/addUser", adminHeaders(),
		map[string]string{"username": "alice", "password": ""})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "EMPTY_FIELDS", resp["code"])

	code, resp = doJSON(t, r, http.MethodPost, "/admin/addUser", adminHeaders(),
		map[string]string{"username": "alice", "password": "pw"})
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, true, resp["ok"])

	code, resp = doJSON(t, r, http.MethodPost, "/admin/addUser", adminHeaders(),
		map[string]string{"username": "alice", "password": "pw2"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "USER_EXISTS", resp["code"])
}

func TestAddBulkEndpoint(t *testing.T) {
	r := newTestRouter(t)

	code, resp := doJSON(t, r, http.MethodPost, "/admin/addBulk", adminHeaders(),
		map[string]string{"bulk": ""})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "EMPTY_BULK", resp["code"])

	code, resp = doJSON(t, r, http.MethodPost, "/admin/addBulk", adminHeaders(),
		map[string]string{"bulk": "alice:pw1\nbob|pw2\nbadline\nalice:pw3"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, resp["ok"])
	assert.Equal(t, float64(2), resp["added"])
	assert.Equal(t, float64(2), resp["skipped"])

	code, resp = doJSON(t, r, http.MethodGet, "/admin/users", adminHeaders(), nil)
	require.Equal(t, http.StatusOK, code)
	users := resp["users"].([]interface{})
	assert.Len(t, users, 2)
}

func TestUsernameOps(t *testing.T) {
	r := newTestRouter(t)

	for _, path := range []string{"/admin/deleteUser", "/admin/resetHwid", "/admin/toggleDisable"} {
		code, resp := doJSON(t, r, http.MethodPost, path, adminHeaders(), map[string]string{"username": ""})
		require.Equal(t, http.StatusOK, code, path)
		assert.Equal(t, "EMPTY_USERNAME", resp["code"], path)

		code, resp = doJSON(t, r, http.MethodPost, path, adminHeaders(), map[string]string{"username": "ghost"})
		require.Equal(t, http.StatusOK, code, path)
		assert.Equal(t, "NOT_FOUND", resp["code"], path)
	}
}

func TestToggleDisableEndpoint(t *testing.T) {
	r := newTestRouter(t)

	code, resp := doJSON(t, r, http.MethodPost, "/admin/addUser", adminHeaders(),
		map[string]string{"username": "alice", "password": "pw"})
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, true, resp["ok"])

	code, resp = doJSON(t, r, http.MethodPost, "/admin/toggleDisable", adminHeaders(),
		map[string]string{"username": "alice"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, resp["disabled"])

	// 禁用后登录被拒
	code, resp = doJSON(t, r, http.MethodPost, "/api/loader/login", loaderHeaders(),
		map[string]string{"username": "alice", "password": "pw", "hwid": "HW1"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "DISABLED", resp["code"])

	// 再次反转回到可用状态
	code, resp = doJSON(t, r, http.MethodPost, "/admin/toggleDisable", adminHeaders(),
		map[string]string{"username": "alice"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, false, resp["disabled"])
}

func TestStatsAndExport(t *testing.T) {
	r := newTestRouter(t)

	_, resp := doJSON(t, r, http.MethodPost, "/admin/addBulk", adminHeaders(),
		map[string]string{"bulk": "alice:pw1\nbob:pw2\ncarol:pw3"})
	require.Equal(t, true, resp["ok"])

	// 绑定一个、禁用一个
	_, resp = doJSON(t, r, http.MethodPost, "/api/loader/login", loaderHeaders(),
		map[string]string{"username": "alice", "password": "pw1", "hwid": "HW1"})
	require.Equal(t, true, resp["ok"])
	_, resp = doJSON(t, r, http.MethodPost, "/admin/toggleDisable", adminHeaders(),
		map[string]string{"username": "bob"})
	require.Equal(t, true, resp["ok"])

	code, resp := doJSON(t, r, http.MethodGet, "/admin/stats", adminHeaders(), nil)
	require.Equal(t, http.StatusOK, code)
	stats := resp["stats"].(map[string]interface{})
	assert.Equal(t, float64(3), stats["totalUsers"])
	assert.Equal(t, float64(1), stats["boundUsers"])
	assert.Equal(t, float64(2), stats["unboundUsers"])
	assert.Equal(t, float64(1), stats["disabledUsers"])

	code, resp = doJSON(t, r, http.MethodGet, "/admin/export", adminHeaders(), nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, resp["ok"])
	assert.Len(t, resp["users"], 3)
}

func TestHealth(t *testing.T) {
	r := newTestRouter(t)

	code, resp := doJSON(t, r, http.MethodGet, "/api/health", nil, nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", resp["status"])
}
