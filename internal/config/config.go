// Package config 统一配置管理
//
// 配置加载策略：
//  1. 从 .env 加载敏感信息（密钥、数据库地址）和 APP_ENV
//  2. 根据 APP_ENV 加载对应的 configs/{env}.yaml 配置文件
//  3. 环境变量覆盖 YAML 配置
//
// 使用方式：
//   - 开发环境: APP_ENV=dev (默认)
//   - 测试环境: APP_ENV=test
//   - 生产环境: APP_ENV=prod
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment 环境类型
type Environment string

const (
	EnvProduction  Environment = "prod"
	EnvTest        Environment = "test"
	EnvDevelopment Environment = "dev"
)

// YAMLConfig YAML 配置文件结构
type YAMLConfig struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	MinIO    MinIOConfig    `yaml:"minio"`
	Upload   UploadConfig   `yaml:"upload"`
}

type ServerConfig struct {
	Port      string `yaml:"port"`
	ClientURL string `yaml:"client_url"`
}

type DatabaseConfig struct {
	URL  string `yaml:"url"`
	Name string `yaml:"name"`
}

type RedisConfig struct {
	URL string `yaml:"url"`
}

// MinIOConfig 对象存储配置
type MinIOConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
	PublicURL string `yaml:"public_url"`
}

// UploadConfig 上传限制配置
type UploadConfig struct {
	MaxSizeMB int64 `yaml:"max_size_mb"`
}

// GoogleConfig Google OAuth / YouTube 配置（仅来自环境变量）
type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
}

// Config 应用配置（最终使用的配置）
type Config struct {
	Env       Environment
	APIPort   string
	ClientURL string

	DBURL  string
	DBName string

	RedisURL string

	JWTSecret string

	MinIO  MinIOConfig
	Google GoogleConfig

	// 单个上传文件大小上限（字节）
	MaxUploadSize int64
}

var configPaths = []string{
	"configs",
	"../configs",
	"../../configs",
	"../../../configs",
}

var envPaths = []string{
	".env",
	"../.env",
	"../../.env",
	"../../../.env",
}

// Load 加载配置
// 1. 加载 .env（敏感信息 + APP_ENV）
// 2. 根据 APP_ENV 加载 configs/{env}.yaml
// 3. 环境变量覆盖
func Load() *Config {
	// 加载 .env
	for _, p := range envPaths {
		if err := godotenv.Load(p); err == nil {
			break
		}
	}

	env := parseEnv(getEnv("APP_ENV", "dev"))
	yamlCfg := loadYAMLConfig(env)

	cfg := &Config{
		Env:       env,
		APIPort:   getEnv("PORT", yamlCfg.Server.Port),
		ClientURL: getEnv("CLIENT_URL", yamlCfg.Server.ClientURL),
		DBURL:     getEnv("DB_URL", yamlCfg.Database.URL),
		DBName:    getEnv("DB_NAME", yamlCfg.Database.Name),
		RedisURL:  getEnv("REDIS_URL", yamlCfg.Redis.URL),
		JWTSecret: os.Getenv("SECRET_KEY"),
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", yamlCfg.MinIO.Endpoint),
			AccessKey: getEnv("MINIO_ACCESS_KEY", yamlCfg.MinIO.AccessKey),
			SecretKey: getEnv("MINIO_SECRET_KEY", yamlCfg.MinIO.SecretKey),
			Bucket:    getEnv("MINIO_BUCKET", yamlCfg.MinIO.Bucket),
			UseSSL:    yamlCfg.MinIO.UseSSL,
			PublicURL: getEnv("MINIO_PUBLIC_URL", yamlCfg.MinIO.PublicURL),
		},
		Google: GoogleConfig{
			ClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
			ClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
			RedirectURI:  os.Getenv("GOOGLE_REDIRECT_URI"),
		},
		MaxUploadSize: yamlCfg.Upload.MaxSizeMB * 1024 * 1024,
	}

	if v := os.Getenv("MAX_UPLOAD_SIZE"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			cfg.MaxUploadSize = n
		}
	}

	return cfg
}

// loadYAMLConfig 加载 YAML 配置文件
// 加载顺序：默认值 → common.yaml → {env}.yaml
func loadYAMLConfig(env Environment) *YAMLConfig {
	cfg := &YAMLConfig{
		Server:   ServerConfig{Port: "8080", ClientURL: "http://localhost:3000"},
		Database: DatabaseConfig{URL: "mongodb://localhost:27017", Name: "zensync"},
		Redis:    RedisConfig{URL: ""},
		MinIO:    MinIOConfig{Endpoint: "localhost:9000", Bucket: "zensync"},
		Upload:   UploadConfig{MaxSizeMB: 512},
	}

	for _, base := range configPaths {
		path := filepath.Join(base, "common.yaml")
		if data, err := os.ReadFile(path); err == nil {
			yaml.Unmarshal(data, cfg)
			break
		}
	}

	filename := fmt.Sprintf("%s.yaml", env)
	for _, base := range configPaths {
		path := filepath.Join(base, filename)
		if data, err := os.ReadFile(path); err == nil {
			yaml.Unmarshal(data, cfg)
			break
		}
	}

	return cfg
}

func parseEnv(env string) Environment {
	switch strings.ToLower(env) {
	case "test":
		return EnvTest
	case "prod", "production":
		return EnvProduction
	default:
		return EnvDevelopment
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// IsTest 是否为测试环境
func (c *Config) IsTest() bool {
	return c.Env == EnvTest
}

// String 返回配置摘要（隐藏凭证）
func (c *Config) String() string {
	return fmt.Sprintf("Config{Env: %s, DB: %s/%s, MinIO: %s, Redis: %s}",
		c.Env, maskPassword(c.DBURL), c.DBName, c.MinIO.Endpoint, maskPassword(c.RedisURL))
}

// maskPassword 隐藏连接串中的密码
func maskPassword(url string) string {
	re := regexp.MustCompile(`(://[^:/@]+:)([^@]+)(@)`)
	return re.ReplaceAllString(url, "${1}***${3}")
}
