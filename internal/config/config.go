package config

import (
	"errors"
	"os"
)

// Config 服务运行配置
type Config struct {
	Port     string // HTTP 监听端口
	AdminKey string // 管理端共享密钥
	APIKey   string // Loader 端共享密钥
	DBPath   string // SQLite 数据库路径
}

// Load 从环境变量加载配置
// portFlag 为命令行 -port 参数，优先级：命令行 > 环境变量 PORT > 默认 5055
// ADMIN_KEY 和 API_KEY 必须显式配置，不提供任何默认值
func Load(portFlag string) (*Config, error) {
	cfg := &Config{
		Port:   "5055",
		DBPath: "public/sqlite.db",
	}

	if env := os.Getenv("PORT"); env != "" {
		cfg.Port = env
	}
	if portFlag != "" {
		cfg.Port = portFlag
	}
	if env := os.Getenv("DB_PATH"); env != "" {
		cfg.DBPath = env
	}

	cfg.AdminKey = os.Getenv("ADMIN_KEY")
	cfg.APIKey = os.Getenv("API_KEY")

	if cfg.AdminKey == "" {
		return nil, errors.New("缺少环境变量 ADMIN_KEY")
	}
	if cfg.APIKey == "" {
		return nil, errors.New("缺少环境变量 API_KEY")
	}

	return cfg, nil
}
