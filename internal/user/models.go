package user

// 业务结果码，随 200 响应的 JSON 信封返回
const (
	CodeOK                 = "OK"
	CodeBindOK             = "BIND_OK"
	CodeEmptyFields        = "EMPTY_FIELDS"
	CodeEmptyUsername      = "EMPTY_USERNAME"
	CodeEmptyBulk          = "EMPTY_BULK"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeDisabled           = "DISABLED"
	CodeHWIDMismatch       = "HWID_MISMATCH"
	CodeUserExists         = "USER_EXISTS"
	CodeNotFound           = "NOT_FOUND"
)

// HWID 绑定状态
const (
	HWIDStatusBound    = "bound"    // 本次登录完成首次绑定
	HWIDStatusMatch    = "match"    // 与已绑定 HWID 一致
	HWIDStatusMismatch = "mismatch" // 与已绑定 HWID 不一致
)

// User 用户记录
// 密码明文存储、精确比较，沿用既有客户端依赖的行为
type User struct {
	Username string  `json:"username"`
	Password string  `json:"password"`
	HWID     *string `json:"hwid"`
	Disabled bool    `json:"disabled"`
}

// LoginRequest Loader 登录请求
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	HWID     string `json:"hwid"`
}

// LoginResponse Loader 登录响应
// HWID 不匹配时除 ok/code 外其余字段与成功响应同形，但不含会话令牌
type LoginResponse struct {
	OK           bool   `json:"ok"`
	Code         string `json:"code"`
	Status       string `json:"status,omitempty"`
	HWIDStatus   string `json:"hwid_status,omitempty"`
	SessionToken string `json:"session_token,omitempty"`
}

// LoginResult 登录状态机的判定结果
// HWID 不匹配时 OK 为 false，但 Status / HWIDStatus 仍照常填充
type LoginResult struct {
	OK         bool
	Code       string
	Status     string
	HWIDStatus string
}

// AddUserRequest 创建用户请求
type AddUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// BulkRequest 批量导入请求，bulk 为多行文本
// 每行一条记录，格式 user:pass 或 user|pass
type BulkRequest struct {
	Bulk string `json:"bulk"`
}

// UsernameRequest 仅携带用户名的管理请求
type UsernameRequest struct {
	Username string `json:"username"`
}
