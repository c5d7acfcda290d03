package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("GATE_AUTH_JWT_SECRET", "test-secret-key-for-unit-testing")
	t.Setenv("GATE_SERVER_SESSION_SECRET", "session-secret-for-unit-testing")
}

func TestLoad_DefaultsWithEnv(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatalf("显式指定不存在的配置文件应返回错误, cfg=%+v", cfg)
	}

	wd, _ := os.Getwd()
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err = Load("")
	if err != nil {
		t.Fatalf("Load 失败: %v", err)
	}
	if cfg.Server.Port != 8000 {
		t.Errorf("期望默认端口 8000，实际=%d", cfg.Server.Port)
	}
	if cfg.Gate.SearchLimit != 50 || cfg.Gate.LogLimit != 500 {
		t.Errorf("期望 search_limit=50 log_limit=500，实际=%d/%d", cfg.Gate.SearchLimit, cfg.Gate.LogLimit)
	}
	if cfg.Auth.AccessTokenTTL != 12*time.Hour {
		t.Errorf("期望 access_token_ttl=12h，实际=%v", cfg.Auth.AccessTokenTTL)
	}
	if cfg.Auth.Cookie.Name != "gate_token" {
		t.Errorf("期望 cookie 名 gate_token，实际=%s", cfg.Auth.Cookie.Name)
	}
}

func TestLoad_FileAndEnvOverride(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("GATE_GATE_SEARCH_LIMIT", "20")

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte("server:\n  port: 9090\ndb:\n  driver: sqlite\n  path: /tmp/gate.db\ngate:\n  search_limit: 30\n  timezone: Asia/Kolkata\n")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load 失败: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("期望端口 9090，实际=%d", cfg.Server.Port)
	}
	if cfg.Database.Driver != "sqlite" || cfg.Database.Path != "/tmp/gate.db" {
		t.Errorf("期望 sqlite /tmp/gate.db，实际=%s %s", cfg.Database.Driver, cfg.Database.Path)
	}
	if cfg.Gate.SearchLimit != 20 {
		t.Errorf("环境变量应覆盖配置文件，期望 20，实际=%d", cfg.Gate.SearchLimit)
	}
	if cfg.Gate.Location().String() != "Asia/Kolkata" {
		t.Errorf("期望时区 Asia/Kolkata，实际=%s", cfg.Gate.Location())
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:   ServerConfig{Port: 8000, SessionSecret: "0123456789abcdef"},
			Database: DatabaseConfig{Driver: "postgres"},
			Auth:     AuthConfig{JWTSecret: "0123456789abcdef"},
			Gate:     GateConfig{SearchLimit: 50, LogLimit: 500, Timezone: "UTC"},
		}
	}

	if err := valid().Validate(); err != nil {
		t.Fatalf("合法配置不应报错: %v", err)
	}

	cases := map[string]func(c *Config){
		"短 JWT 密钥":   func(c *Config) { c.Auth.JWTSecret = "short" },
		"短 Session 密钥": func(c *Config) { c.Server.SessionSecret = "short" },
		"端口越界":        func(c *Config) { c.Server.Port = 70000 },
		"未知驱动":        func(c *Config) { c.Database.Driver = "mysql" },
		"非法时区":        func(c *Config) { c.Gate.Timezone = "Mars/Olympus" },
		"非正 limit":    func(c *Config) { c.Gate.SearchLimit = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := valid()
			mutate(c)
			if err := c.Validate(); err == nil {
				t.Errorf("%s: 期望校验失败", name)
			}
		})
	}
}
