// Package config 配置加载单元测试
package config

import (
	"testing"
)

func TestParseEnv(t *testing.T) {
	tests := []struct {
		input string
		want  Environment
	}{
		{"dev", EnvDevelopment},
		{"test", EnvTest},
		{"TEST", EnvTest},
		{"prod", EnvProduction},
		{"production", EnvProduction},
		{"", EnvDevelopment},
		{"staging", EnvDevelopment},
	}
	for _, tt := range tests {
		if got := parseEnv(tt.input); got != tt.want {
			t.Errorf("parseEnv(%q) = %q, 期望 %q", tt.input, got, tt.want)
		}
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	t.Setenv("PORT", "19999")
	t.Setenv("DB_NAME", "zensync_unit")
	t.Setenv("SECRET_KEY", "unit-test-secret")
	t.Setenv("MAX_UPLOAD_SIZE", "1048576")

	cfg := Load()

	if cfg.Env != EnvTest || !cfg.IsTest() {
		t.Errorf("Env = %q, 期望 test", cfg.Env)
	}
	if cfg.APIPort != "19999" {
		t.Errorf("APIPort = %q, 期望环境变量覆盖", cfg.APIPort)
	}
	if cfg.DBName != "zensync_unit" {
		t.Errorf("DBName = %q", cfg.DBName)
	}
	if cfg.JWTSecret != "unit-test-secret" {
		t.Errorf("JWTSecret = %q", cfg.JWTSecret)
	}
	if cfg.MaxUploadSize != 1048576 {
		t.Errorf("MaxUploadSize = %d", cfg.MaxUploadSize)
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "dev")

	cfg := Load()

	if cfg.DBURL == "" || cfg.MinIO.Bucket == "" {
		t.Errorf("默认配置缺失: DBURL=%q Bucket=%q", cfg.DBURL, cfg.MinIO.Bucket)
	}
	if cfg.MaxUploadSize <= 0 {
		t.Errorf("MaxUploadSize = %d, 期望正数", cfg.MaxUploadSize)
	}
}

func TestMaskPassword(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"mongodb://admin:hunter2@db:27017", "mongodb://admin:***@db:27017"},
		{"redis://:s3cret@cache:6379/0", "redis://:s3cret@cache:6379/0"}, // 无用户名不匹配
		{"mongodb://localhost:27017", "mongodb://localhost:27017"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := maskPassword(tt.input); got != tt.want {
			t.Errorf("maskPassword(%q) = %q, 期望 %q", tt.input, got, tt.want)
		}
	}
}
