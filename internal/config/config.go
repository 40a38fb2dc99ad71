package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 全局配置结构体（完全匹配config.yaml）
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`  // 服务器配置
	Log     LogConfig     `mapstructure:"log"`     // 日志配置
	Osu     OsuConfig     `mapstructure:"osu"`     // osu! API 配置
	Display DisplayConfig `mapstructure:"display"` // 输出视图配置
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port         int      `mapstructure:"port"`          // 服务端口
	Mode         string   `mapstructure:"mode"`          // Gin运行模式：debug/release/test
	AllowOrigins []string `mapstructure:"allow_origins"` // 前端跨域白名单，空则允许所有
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level"`  // trace/debug/info/warn/error
	Format string `mapstructure:"format"` // text/json
}

// OsuConfig osu! API 配置
type OsuConfig struct {
	OAuthURL     string `mapstructure:"oauth_url"`     // 令牌接口地址
	BaseURL      string `mapstructure:"base_url"`      // API v2 基础地址
	ClientID     string `mapstructure:"client_id"`     // OAuth client_id
	ClientSecret string `mapstructure:"client_secret"` // OAuth client_secret
	Scope        string `mapstructure:"scope"`         // 授权范围，默认 public
	Timeout      int    `mapstructure:"timeout"`       // 请求超时（秒），0 表示不设超时
	Proxy        string `mapstructure:"proxy"`         // 代理地址
}

// DisplayConfig 输出视图配置
type DisplayConfig struct {
	// NewestFirst 为 true 时将上游事件顺序反转后输出
	NewestFirst bool `mapstructure:"newest_first"`
}

const (
	DefaultOAuthURL = "https://osu.ppy.sh/oauth/token"
	DefaultBaseURL  = "https://osu.ppy.sh/api/v2"
)

// LoadConfig 加载配置文件（config/config.yaml），敏感项从 .env 覆盖（不提交 git）
func LoadConfig() (*Config, error) {
	// 1. 加载 .env（若存在），env 中的值会覆盖 config.yaml 中同名字段
	_ = godotenv.Load() // 忽略错误（.env 可不存在）

	v := viper.New()
	setDefaults(v)

	// 2. 读取 config.yaml（不存在时完全使用默认值 + 环境变量）
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	// 3. 敏感字段：用 env 覆盖（优先级 env > yaml）
	overrideFromEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("osu.oauth_url", DefaultOAuthURL)
	v.SetDefault("osu.base_url", DefaultBaseURL)
	v.SetDefault("osu.scope", "public")
	v.SetDefault("osu.timeout", 0)
	v.SetDefault("display.newest_first", true)
}

// overrideFromEnv 用环境变量覆盖敏感配置
func overrideFromEnv(cfg *Config) {
	if v := os.Getenv("OSU_CLIENT_ID"); v != "" {
		cfg.Osu.ClientID = v
	}
	if v := os.Getenv("OSU_CLIENT_SECRET"); v != "" {
		cfg.Osu.ClientSecret = v
	}
	if v := os.Getenv("OSU_PROXY"); v != "" {
		cfg.Osu.Proxy = v
	}
	if v := os.Getenv("SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
}

// Validate 启动前校验必填项
func (c *Config) Validate() error {
	if c.Osu.ClientID == "" {
		return errors.New("missing OSU_CLIENT_ID")
	}
	if c.Osu.ClientSecret == "" {
		return errors.New("missing OSU_CLIENT_SECRET")
	}
	if c.Osu.OAuthURL == "" || c.Osu.BaseURL == "" {
		return errors.New("osu.oauth_url and osu.base_url are required")
	}
	if c.Server.Port <= 0 {
		return fmt.Errorf("invalid server.port: %d", c.Server.Port)
	}
	return nil
}
