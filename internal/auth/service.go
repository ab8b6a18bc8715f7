package auth

import (
	"crypto/subtle"

	"github.com/google/uuid"
)

// Service 认证服务，持有进程启动时配置的两个静态密钥
type Service struct {
	adminKey string
	apiKey   string
}

// NewService 创建认证服务实例
func NewService(adminKey, apiKey string) *Service {
	return &Service{adminKey: adminKey, apiKey: apiKey}
}

// CheckAdminKey 校验管理端密钥
func (s *Service) CheckAdminKey(key string) bool {
	return secureEqual(key, s.adminKey)
}

// CheckAPIKey 校验 Loader 端密钥
func (s *Service) CheckAPIKey(key string) bool {
	return secureEqual(key, s.apiKey)
}

// NewSessionToken 生成一次性会话令牌
// 令牌为随机不透明值，服务端不保存也不做后续校验
func (s *Service) NewSessionToken() string {
	return uuid.New().String()
}

// secureEqual 恒定时间字符串比较，语义等同于 ==
func secureEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
