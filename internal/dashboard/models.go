package dashboard

// Stats 用户面板统计数据
type Stats struct {
	TotalUsers    int64 `json:"totalUsers"`    // 用户总数
	BoundUsers    int64 `json:"boundUsers"`    // 已绑定 HWID 的用户数
	UnboundUsers  int64 `json:"unboundUsers"`  // 未绑定 HWID 的用户数
	DisabledUsers int64 `json:"disabledUsers"` // 已禁用的用户数
}
