package db

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Open 打开数据库连接并初始化表结构
// 数据库文件不存在时自动创建，首次启动即为空用户表
func Open(path string) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000&_fk=1", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}

	// 仅使用少量连接串行化写，避免锁冲突
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// initSchema 创建必须的表结构（如不存在），幂等安全
func initSchema(db *sql.DB) error {
	createUserTable := `
	CREATE TABLE IF NOT EXISTS "User" (
		username TEXT PRIMARY KEY NOT NULL,
		password TEXT NOT NULL,
		hwid TEXT,
		disabled INTEGER NOT NULL DEFAULT 0
	);`

	_, err := db.Exec(createUserTable)
	return err
}
