package log

import (
	"fmt"
	"log/slog"
	"os"
)

// L 为全局 logger 实例，带时间戳，默认 Debug 级别
var L = newLogger()

// newLogger 初始化 slog.Logger
func newLogger() *slog.Logger {
	// 自定义 TextHandler，使输出格式接近官方文档示例：
	// 2023/08/04 16:09:19 INFO hello, world
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			switch a.Key {
			case slog.TimeKey:
				// 时间格式调整为 yyyy/MM/dd HH:mm:ss
				if a.Value.Kind() == slog.KindTime {
					t := a.Value.Time()
					a.Key = ""
					a.Value = slog.StringValue(t.Format("2006/01/02 15:04:05"))
				}
			case slog.LevelKey:
				// 仅输出 INFO/DEBUG 等，不带 key
				a.Key = ""
			case slog.MessageKey:
				// 不改变，保持默认
			}
			return a
		},
	})
	return slog.New(handler)
}

// Debugf 调试级别日志
func Debugf(format string, args ...interface{}) {
	L.Debug(fmt.Sprintf(format, args...))
}

// Infof 信息级别日志
func Infof(format string, args ...interface{}) {
	L.Info(fmt.Sprintf(format, args...))
}

// Warnf 警告级别日志
func Warnf(format string, args ...interface{}) {
	L.Warn(fmt.Sprintf(format, args...))
}

// Errorf 错误级别日志
func Errorf(format string, args ...interface{}) {
	L.Error(fmt.Sprintf(format, args...))
}
