package server

import (
	"context"
	"net/http"
	"strings"

	"LoaderDash/internal/api"

	"github.com/gorilla/mux"
)

// Server HTTP 服务，负责挂载 API 路由与静态面板
type Server struct {
	httpServer *http.Server
}

// New 组装顶层路由并创建 HTTP 服务
func New(addr string, apiRouter *api.Router) *Server {
	rootRouter := mux.NewRouter()
	rootRouter.StrictSlash(true)

	// API 路由
	rootRouter.PathPrefix("/api/").Handler(apiRouter)
	rootRouter.PathPrefix("/admin/").Handler(apiRouter)

	// 静态文件服务（管理面板）
	fs := http.FileServer(http.Dir("dist"))
	rootRouter.PathPrefix("/").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// API 请求理论上不会进入该函数，保险起见仍做转发
		if strings.HasPrefix(r.URL.Path, "/api/") || strings.HasPrefix(r.URL.Path, "/admin/") {
			apiRouter.ServeHTTP(w, r)
			return
		}

		// 检查文件是否存在，不存在则返回 index.html 以支持 SPA
		if _, err := http.Dir("dist").Open(r.URL.Path); err != nil {
			http.ServeFile(w, r, "dist/index.html")
			return
		}

		fs.ServeHTTP(w, r)
	})

	return &Server{
		httpServer: &http.Server{
			Addr:    addr,
			Handler: rootRouter,
		},
	}
}

// Start 启动 HTTP 服务，阻塞直到服务关闭
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown 优雅关闭
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
