package logger

import (
	"testing"

	"github.com/maximanoob01/hostel-gate-checkk/config"
)

func TestNewLogger(t *testing.T) {
	for _, format := range []string{"json", "console"} {
		l, err := NewLogger(&config.LogConfig{Level: "debug", Format: format})
		if err != nil {
			t.Fatalf("format=%s: NewLogger 失败: %v", format, err)
		}
		l.Debug("ok")
	}
}

func TestNewLogger_BadLevel(t *testing.T) {
	if _, err := NewLogger(&config.LogConfig{Level: "loud", Format: "json"}); err == nil {
		t.Error("期望非法日志级别返回错误")
	}
}
