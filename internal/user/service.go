package user

import (
	"database/sql"
	"strings"
	"sync"
)

// Service 用户管理服务
// 所有读写都经过同一把互斥锁，保证同一时刻只有一个写入者，
// 避免并发请求读改写时的更新丢失
type Service struct {
	db *sql.DB
	mu sync.Mutex
}

// NewService 创建用户服务实例
func NewService(db *sql.DB) *Service {
	return &Service{db: db}
}

// Login 执行登录与 HWID 绑定状态机
// 判定顺序固定：空字段 → 用户查询 → 密码 → 禁用 → HWID 绑定/比对
// 用户不存在与密码错误返回相同的结果码，避免泄露哪一项出错
func (s *Service) Login(username, password, hwid string) (*LoginResult, error) {
	if username == "" || password == "" || hwid == "" {
		return &LoginResult{OK: false, Code: CodeEmptyFields}, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var storedPassword string
	var storedHWID sql.NullString
	var disabled bool
	err := s.db.QueryRow(`SELECT password, hwid, disabled FROM "User" WHERE username = ?`, username).
		Scan(&storedPassword, &storedHWID, &disabled)
	if err == sql.ErrNoRows {
		return &LoginResult{OK: false, Code: CodeInvalidCredentials}, nil
	}
	if err != nil {
		return nil, err
	}

	if storedPassword != password {
		return &LoginResult{OK: false, Code: CodeInvalidCredentials}, nil
	}
	if disabled {
		return &LoginResult{OK: false, Code: CodeDisabled}, nil
	}

	// 首次登录：绑定本次提交的 HWID
	if !storedHWID.Valid {
		if _, err := s.db.Exec(`UPDATE "User" SET hwid = ? WHERE username = ?`, hwid, username); err != nil {
			return nil, err
		}
		return &LoginResult{OK: true, Code: CodeBindOK, Status: "active", HWIDStatus: HWIDStatusBound}, nil
	}

	// 已绑定且不一致：拒绝但不改动存储，信封字段照常填充
	if storedHWID.String != hwid {
		return &LoginResult{OK: false, Code: CodeHWIDMismatch, Status: "active", HWIDStatus: HWIDStatusMismatch}, nil
	}

	return &LoginResult{OK: true, Code: CodeOK, Status: "active", HWIDStatus: HWIDStatusMatch}, nil
}

// ListUsers 获取全部用户记录
func (s *Service) ListUsers() ([]User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(`SELECT username, password, hwid, disabled FROM "User" ORDER BY username`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]User, 0)
	for rows.Next() {
		var u User
		var hwid sql.NullString
		if err := rows.Scan(&u.Username, &u.Password, &hwid, &u.Disabled); err != nil {
			return nil, err
		}
		if hwid.Valid {
			u.HWID = &hwid.String
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// AddUser 创建新用户，初始未绑定 HWID、未禁用
func (s *Service) AddUser(username, password string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	exists, err := s.exists(username)
	if err != nil {
		return "", err
	}
	if exists {
		return CodeUserExists, nil
	}

	if _, err := s.db.Exec(`INSERT INTO "User" (username, password, hwid, disabled) VALUES (?, ?, NULL, 0)`, username, password); err != nil {
		return "", err
	}
	return CodeOK, nil
}

// AddBulk 批量导入，每行一条 user:pass 或 user|pass
// 逐行独立处理：格式错误或用户名重复计入 skipped，其余写入
// 部分成功是正常结果，整批永不失败
func (s *Service) AddBulk(text string) (added, skipped int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		name, pass, ok := strings.Cut(line, ":")
		if !ok {
			name, pass, ok = strings.Cut(line, "|")
		}
		name = strings.TrimSpace(name)
		pass = strings.TrimSpace(pass)
		if !ok || name == "" || pass == "" {
			skipped++
			continue
		}

		exists, err := s.exists(name)
		if err != nil {
			return added, skipped, err
		}
		if exists {
			skipped++
			continue
		}

		if _, err := s.db.Exec(`INSERT INTO "User" (username, password, hwid, disabled) VALUES (?, ?, NULL, 0)`, name, pass); err != nil {
			return added, skipped, err
		}
		added++
	}
	return added, skipped, nil
}

// DeleteUser 删除用户
func (s *Service) DeleteUser(username string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(`DELETE FROM "User" WHERE username = ?`, username)
	if err != nil {
		return "", err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return "", err
	}
	if n == 0 {
		return CodeNotFound, nil
	}
	return CodeOK, nil
}

// ResetHWID 解除硬件绑定，用户回到未绑定状态
func (s *Service) ResetHWID(username string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(`UPDATE "User" SET hwid = NULL WHERE username = ?`, username)
	if err != nil {
		return "", err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return "", err
	}
	if n == 0 {
		return CodeNotFound, nil
	}
	return CodeOK, nil
}

// ToggleDisable 反转禁用标记，返回新值
func (s *Service) ToggleDisable(username string) (bool, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var disabled bool
	err := s.db.QueryRow(`SELECT disabled FROM "User" WHERE username = ?`, username).Scan(&disabled)
	if err == sql.ErrNoRows {
		return false, CodeNotFound, nil
	}
	if err != nil {
		return false, "", err
	}

	if _, err := s.db.Exec(`UPDATE "User" SET disabled = ? WHERE username = ?`, !disabled, username); err != nil {
		return false, "", err
	}
	return !disabled, CodeOK, nil
}

// exists 检查用户名是否已存在，调用方需持有锁
func (s *Service) exists(username string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM "User" WHERE username = ?)`, username).Scan(&exists)
	return exists, err
}
