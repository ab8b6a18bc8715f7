package api

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strings"

	"LoaderDash/internal/auth"
	"LoaderDash/internal/dashboard"
	"LoaderDash/internal/user"

	"github.com/gorilla/mux"
)

// Router API 路由器
type Router struct {
	router        *mux.Router
	authService   *auth.Service
	loaderHandler *LoaderHandler
	adminHandler  *AdminHandler
}

// NewRouter 创建路由器实例
func NewRouter(db *sql.DB, authService *auth.Service) *Router {
	// 创建路由器（忽略末尾斜杠差异）
	router := mux.NewRouter()
	router.StrictSlash(true)

	// 创建服务实例
	userService := user.NewService(db)
	dashboardService := dashboard.NewService(db)

	// 创建处理器实例
	loaderHandler := NewLoaderHandler(userService, authService)
	adminHandler := NewAdminHandler(userService, authService, dashboardService)

	r := &Router{
		router:        router,
		authService:   authService,
		loaderHandler: loaderHandler,
		adminHandler:  adminHandler,
	}

	// 注册路由
	r.registerRoutes()

	// 为所有路由添加 CORS 处理
	r.router.Use(corsMiddleware)

	return r
}

// ServeHTTP 实现 http.Handler 接口
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.router.ServeHTTP(w, req)
}

// registerRoutes 注册所有 API 路由
func (r *Router) registerRoutes() {
	// 管理端登录不走密钥网关，必须先于 /admin 子路由注册
	r.router.HandleFunc("/admin/login", r.adminHandler.HandleAdminLogin).Methods("POST")

	// 管理端路由组，统一经过管理密钥网关
	adminRouter := r.router.PathPrefix("/admin").Subrouter()
	adminRouter.Use(adminKeyMiddleware(r.authService))
	adminRouter.HandleFunc("/users", r.adminHandler.HandleListUsers).Methods("GET")
	adminRouter.HandleFunc("/addUser", r.adminHandler.HandleAddUser).Methods("POST")
	adminRouter.HandleFunc("/addBulk", r.adminHandler.HandleAddBulk).Methods("POST")
	adminRouter.HandleFunc("/deleteUser", r.adminHandler.HandleDeleteUser).Methods("POST")
	adminRouter.HandleFunc("/resetHwid", r.adminHandler.HandleResetHwid).Methods("POST")
	adminRouter.HandleFunc("/toggleDisable", r.adminHandler.HandleToggleDisable).Methods("POST")
	adminRouter.HandleFunc("/stats", r.adminHandler.HandleStats).Methods("GET")
	adminRouter.HandleFunc("/export", r.adminHandler.HandleExport).Methods("GET")

	// Loader 端路由组，统一经过 API 密钥网关
	loaderRouter := r.router.PathPrefix("/api/loader").Subrouter()
	loaderRouter.Use(apiKeyMiddleware(r.authService))
	loaderRouter.HandleFunc("/login", r.loaderHandler.HandleLogin).Methods("POST")

	// 健康检查
	r.router.HandleFunc("/api/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "ok"}`))
	}).Methods("GET")
}

// adminKeyMiddleware 管理密钥网关，校验 X-Admin-Key 请求头
func adminKeyMiddleware(authService *auth.Service) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !authService.CheckAdminKey(r.Header.Get("X-Admin-Key")) {
				w.WriteHeader(http.StatusForbidden)
				json.NewEncoder(w).Encode(map[string]interface{}{"ok": false, "code": "INVALID_ADMIN_KEY"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// apiKeyMiddleware Loader 密钥网关，校验 X-API-Key 请求头
func apiKeyMiddleware(authService *auth.Service) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !authService.CheckAPIKey(r.Header.Get("X-API-Key")) {
				w.WriteHeader(http.StatusForbidden)
				json.NewEncoder(w).Encode(map[string]interface{}{"ok": false, "code": "INVALID_API_KEY"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// corsMiddleware 允许跨域请求
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")

		// 如果带 Origin 头，则回显；否则允许所有
		if origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Vary", "Origin")
		} else {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		}

		w.Header().Set("Access-Control-Allow-Credentials", "true")
		// 回显浏览器预检要求的 Headers，如果没有则给常用默认值
		reqHeaders := r.Header.Get("Access-Control-Request-Headers")
		if reqHeaders == "" {
			reqHeaders = "Content-Type, X-Admin-Key, X-API-Key"
		}
		w.Header().Set("Access-Control-Allow-Headers", reqHeaders)

		reqMethod := r.Header.Get("Access-Control-Request-Method")
		if reqMethod == "" {
			reqMethod = "GET, POST"
		}
		w.Header().Set("Access-Control-Allow-Methods", reqMethod)

		// 预检结果缓存 12 小时，减少重复 OPTIONS
		w.Header().Set("Access-Control-Max-Age", "43200")

		// 预检请求直接返回
		if strings.ToUpper(r.Method) == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
