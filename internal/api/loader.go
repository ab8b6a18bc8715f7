package api

import (
	"encoding/json"
	"net/http"

	"LoaderDash/internal/auth"
	log "LoaderDash/internal/log"
	"LoaderDash/internal/user"
)

// LoaderHandler Loader 端登录处理器
type LoaderHandler struct {
	userService *user.Service
	authService *auth.Service
}

// NewLoaderHandler 创建 Loader 处理器实例
func NewLoaderHandler(userService *user.Service, authService *auth.Service) *LoaderHandler {
	return &LoaderHandler{
		userService: userService,
		authService: authService,
	}
}

// HandleLogin 处理 Loader 登录与 HWID 绑定请求
func (h *LoaderHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req user.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.userService.Login(req.Username, req.Password, req.HWID)
	if err != nil {
		// 存储故障属于运维级错误，不走业务结果码
		log.Errorf("登录处理失败: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]interface{}{"ok": false})
		return
	}

	resp := user.LoginResponse{
		OK:         result.OK,
		Code:       result.Code,
		Status:     result.Status,
		HWIDStatus: result.HWIDStatus,
	}
	// 令牌仅在登录成功时签发，服务端不保存
	if result.OK {
		resp.SessionToken = h.authService.NewSessionToken()
	}

	json.NewEncoder(w).Encode(resp)
}
