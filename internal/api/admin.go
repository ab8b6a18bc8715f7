package api

import (
	"encoding/json"
	"net/http"

	"LoaderDash/internal/auth"
	"LoaderDash/internal/dashboard"
	log "LoaderDash/internal/log"
	"LoaderDash/internal/user"
)

// AdminHandler 管理端处理器
type AdminHandler struct {
	userService      *user.Service
	authService      *auth.Service
	dashboardService *dashboard.Service
}

// NewAdminHandler 创建管理端处理器实例
func NewAdminHandler(userService *user.Service, authService *auth.Service, dashboardService *dashboard.Service) *AdminHandler {
	return &AdminHandler{
		userService:      userService,
		authService:      authService,
		dashboardService: dashboardService,
	}
}

// AdminLoginRequest 管理端登录请求体
type AdminLoginRequest struct {
	Password string `json:"password"`
}

// HandleAdminLogin 处理管理端登录
// 该路由不经过密钥中间件，口令即配置的管理密钥本身
func (h *AdminHandler) HandleAdminLogin(w http.ResponseWriter, r *http.Request) {
	var req AdminLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if !h.authService.CheckAdminKey(req.Password) {
		json.NewEncoder(w).Encode(map[string]interface{}{"ok": false, "code": "INVALID_ADMIN_PASSWORD"})
		return
	}

	json.NewEncoder(w).Encode(map[string]interface{}{"ok": true})
}

// HandleListUsers 获取用户列表
func (h *AdminHandler) HandleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.ListUsers()
	if err != nil {
		h.writeStoreError(w, "查询用户列表失败", err)
		return
	}

	json.NewEncoder(w).Encode(map[string]interface{}{"ok": true, "users": users})
}

// HandleAddUser 创建用户
func (h *AdminHandler) HandleAddUser(w http.ResponseWriter, r *http.Request) {
	var req user.AddUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Username == "" || req.Password == "" {
		json.NewEncoder(w).Encode(map[string]interface{}{"ok": false, "code": user.CodeEmptyFields})
		return
	}

	code, err := h.userService.AddUser(req.Username, req.Password)
	if err != nil {
		h.writeStoreError(w, "创建用户失败", err)
		return
	}
	if code != user.CodeOK {
		json.NewEncoder(w).Encode(map[string]interface{}{"ok": false, "code": code})
		return
	}

	json.NewEncoder(w).Encode(map[string]interface{}{"ok": true})
}

// HandleAddBulk 批量导入用户
func (h *AdminHandler) HandleAddBulk(w http.ResponseWriter, r *http.Request) {
	var req user.BulkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if len(req.Bulk) == 0 {
		json.NewEncoder(w).Encode(map[string]interface{}{"ok": false, "code": user.CodeEmptyBulk})
		return
	}

	added, skipped, err := h.userService.AddBulk(req.Bulk)
	if err != nil {
		h.writeStoreError(w, "批量导入失败", err)
		return
	}

	json.NewEncoder(w).Encode(map[string]interface{}{"ok": true, "added": added, "skipped": skipped})
}

// HandleDeleteUser 删除用户
func (h *AdminHandler) HandleDeleteUser(w http.ResponseWriter, r *http.Request) {
	username, ok := h.decodeUsername(w, r)
	if !ok {
		return
	}

	code, err := h.userService.DeleteUser(username)
	if err != nil {
		h.writeStoreError(w, "删除用户失败", err)
		return
	}
	if code != user.CodeOK {
		json.NewEncoder(w).Encode(map[string]interface{}{"ok": false, "code": code})
		return
	}

	json.NewEncoder(w).Encode(map[string]interface{}{"ok": true})
}

// HandleResetHwid 解除用户的硬件绑定
func (h *AdminHandler) HandleResetHwid(w http.ResponseWriter, r *http.Request) {
	username, ok := h.decodeUsername(w, r)
	if !ok {
		return
	}

	code, err := h.userService.ResetHWID(username)
	if err != nil {
		h.writeStoreError(w, "重置HWID失败", err)
		return
	}
	if code != user.CodeOK {
		json.NewEncoder(w).Encode(map[string]interface{}{"ok": false, "code": code})
		return
	}

	json.NewEncoder(w).Encode(map[string]interface{}{"ok": true})
}

// HandleToggleDisable 反转用户禁用状态
func (h *AdminHandler) HandleToggleDisable(w http.ResponseWriter, r *http.Request) {
	username, ok := h.decodeUsername(w, r)
	if !ok {
		return
	}

	disabled, code, err := h.userService.ToggleDisable(username)
	if err != nil {
		h.writeStoreError(w, "更新禁用状态失败", err)
		return
	}
	if code != user.CodeOK {
		json.NewEncoder(w).Encode(map[string]interface{}{"ok": false, "code": code})
		return
	}

	json.NewEncoder(w).Encode(map[string]interface{}{"ok": true, "disabled": disabled})
}

// HandleStats 获取用户总览统计
func (h *AdminHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.dashboardService.GetStats()
	if err != nil {
		h.writeStoreError(w, "获取统计数据失败", err)
		return
	}

	json.NewEncoder(w).Encode(map[string]interface{}{"ok": true, "stats": stats})
}

// HandleExport 导出用户名单（备份用）
func (h *AdminHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.ListUsers()
	if err != nil {
		h.writeStoreError(w, "导出用户名单失败", err)
		return
	}

	w.Header().Set("Content-Disposition", "attachment; filename=users-export.json")
	json.NewEncoder(w).Encode(map[string]interface{}{"ok": true, "users": users})
}

// decodeUsername 解析仅含用户名的请求体，空用户名直接返回业务错误
func (h *AdminHandler) decodeUsername(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req user.UsernameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return "", false
	}
	if req.Username == "" {
		json.NewEncoder(w).Encode(map[string]interface{}{"ok": false, "code": user.CodeEmptyUsername})
		return "", false
	}
	return req.Username, true
}

// writeStoreError 存储故障统一按运维级错误返回 500
func (h *AdminHandler) writeStoreError(w http.ResponseWriter, msg string, err error) {
	log.Errorf("%s: %v", msg, err)
	w.WriteHeader(http.StatusInternalServerError)
	json.NewEncoder(w).Encode(map[string]interface{}{"ok": false})
}
