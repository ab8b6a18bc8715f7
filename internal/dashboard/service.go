package dashboard

import (
	"database/sql"
	"fmt"
)

// Service 面板统计服务
type Service struct {
	db *sql.DB
}

// NewService 创建面板服务实例
func NewService(db *sql.DB) *Service {
	return &Service{db: db}
}

// GetStats 获取用户总览统计
func (s *Service) GetStats() (*Stats, error) {
	stats := &Stats{}

	err := s.db.QueryRow(`
		SELECT
			COUNT(*) as total_users,
			COUNT(CASE WHEN hwid IS NOT NULL THEN 1 END) as bound_users,
			COUNT(CASE WHEN hwid IS NULL THEN 1 END) as unbound_users,
			COUNT(CASE WHEN disabled = 1 THEN 1 END) as disabled_users
		FROM "User"
	`).Scan(
		&stats.TotalUsers,
		&stats.BoundUsers,
		&stats.UnboundUsers,
		&stats.DisabledUsers,
	)
	if err != nil {
		return nil, fmt.Errorf("获取总览数据失败: %v", err)
	}

	return stats, nil
}
