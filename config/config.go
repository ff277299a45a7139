// config.go

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 服务器配置结构
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Scoreboard ScoreboardConfig `mapstructure:"scoreboard"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Game       GameConfig       `mapstructure:"game"`
}

// ServerConfig 服务器基本配置
type ServerConfig struct {
	GamePort     int    `mapstructure:"game_port"`
	MatchPort    int    `mapstructure:"match_port"`
	GatewayPort  int    `mapstructure:"gateway_port"`
	Debug        bool   `mapstructure:"debug"`
	LogLevel     string `mapstructure:"log_level"`
	MaxRoomCount int    `mapstructure:"max_room_count"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// RedisConfig Redis配置
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// ScoreboardConfig 排行榜存储配置
type ScoreboardConfig struct {
	// Backend 存储后端: file, postgres, redis
	Backend    string `mapstructure:"backend"`
	File       string `mapstructure:"file"`
	MaxEntries int    `mapstructure:"max_entries"`
}

// AuthConfig 令牌配置
type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

// GameConfig 对局运行参数
type GameConfig struct {
	ArenaWidth   float64       `mapstructure:"arena_width"`
	ArenaHeight  float64       `mapstructure:"arena_height"`
	TickInterval time.Duration `mapstructure:"tick_interval"`
	MaxIdle      time.Duration `mapstructure:"max_idle"`
}

// 后端类型
const (
	BackendFile     = "file"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

var (
	// GlobalConfig 全局配置实例
	GlobalConfig Config
)

// LoadConfig 从文件加载配置
func LoadConfig(configPath string) error {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(configPath)
	v.SetEnvPrefix("BASEDEFENDER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("无法读取配置文件: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("无法解析配置文件: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	GlobalConfig = cfg
	return nil
}

// Default 返回只包含默认值的配置，供测试和无配置文件启动使用
func Default() Config {
	v := viper.New()
	setDefaults(v)

	var cfg Config
	// 默认值全部是基础类型，不会解析失败
	_ = v.Unmarshal(&cfg)
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.game_port", 8081)
	v.SetDefault("server.match_port", 8082)
	v.SetDefault("server.gateway_port", 3000)
	v.SetDefault("server.debug", false)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.max_room_count", 200)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.dbname", "basedefender")
	v.SetDefault("database.sslmode", "disable")

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)

	v.SetDefault("scoreboard.backend", BackendFile)
	v.SetDefault("scoreboard.file", "Scoreboard.json")
	v.SetDefault("scoreboard.max_entries", 100)

	v.SetDefault("auth.jwt_secret", "change-me")
	v.SetDefault("auth.token_ttl", 24*time.Hour)

	v.SetDefault("game.arena_width", 1280.0)
	v.SetDefault("game.arena_height", 720.0)
	v.SetDefault("game.tick_interval", 16*time.Millisecond)
	v.SetDefault("game.max_idle", 5*time.Minute)
}

// Validate 检查配置取值
func (c *Config) Validate() error {
	switch c.Scoreboard.Backend {
	case BackendFile, BackendPostgres, BackendRedis:
	default:
		return fmt.Errorf("未知的排行榜存储后端: %q", c.Scoreboard.Backend)
	}
	if c.Scoreboard.MaxEntries <= 0 {
		return fmt.Errorf("scoreboard.max_entries 必须大于0")
	}
	if c.Game.ArenaWidth <= 0 || c.Game.ArenaHeight <= 0 {
		return fmt.Errorf("竞技场尺寸无效: %vx%v", c.Game.ArenaWidth, c.Game.ArenaHeight)
	}
	if c.Game.TickInterval <= 0 {
		return fmt.Errorf("game.tick_interval 必须大于0")
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret 不能为空")
	}
	return nil
}

// GetDSN 获取PostgreSQL连接字符串
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// GetRedisAddr 获取Redis连接地址
func (c *RedisConfig) GetRedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
