package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"account-hub/pkg/common/logging"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

type ServerConfig struct {
	Address string `json:"address"`
}

type SecurityConfig struct {
	MaxBodySize     int64    `json:"maxBodySize"` // 单位：字节
	AllowedHosts    []string `json:"allowedHosts"`
	AllowedMethods  []string `json:"allowedMethods"`
	BodyCheckExempt []string `json:"bodyCheckExempt"` // 不检查表单内容的路径，自由输入的字段会误命中关键字
}

type TimeoutConfig struct {
	RequestTimeout int `json:"requestTimeout"` // 单位：秒
}

type CORSConfig struct {
	AllowOrigins     []string      `json:"allowOrigins"`
	AllowMethods     []string      `json:"allowMethods"`
	AllowHeaders     []string      `json:"allowHeaders"`
	ExposeHeaders    []string      `json:"exposeHeaders"`
	AllowCredentials bool          `json:"allowCredentials"`
	MaxAge           time.Duration `json:"maxAge"`
	TrustedDomains   []string      `json:"trustedDomains"`
}

type RateLimitConfig struct {
	Rate     int           `json:"rate"`
	Interval time.Duration `json:"interval"`
}

type MiddlewareConfig struct {
	Security  SecurityConfig  `json:"security"`
	Timeout   TimeoutConfig   `json:"timeout"`
	CORS      CORSConfig      `json:"cors"`
	RateLimit RateLimitConfig `json:"rateLimit"`
}

type DatabaseConfig struct {
	Host          string        `json:"host"`          // 数据库主机地址
	Port          int           `json:"port"`          // 数据库端口
	Username      string        `json:"username"`      // 数据库用户名
	Password      string        `json:"password"`      // 数据库密码
	DBName        string        `json:"dbname"`        // 数据库名称
	UseUnixSock   bool          `json:"useUnixSock"`   // 是否使用Unix套接字连接
	MinPoolSize   int           `json:"minPoolSize"`   // 连接池最小连接数
	MaxPoolSize   int           `json:"maxPoolSize"`   // 连接池最大连接数
	LogLevel      string        `json:"logLevel"`      // GORM日志级别
	SlowThreshold time.Duration `json:"slowThreshold"` // 慢查询阈值
	AutoMigrate   bool          `json:"autoMigrate"`
}

// UploadConfig 上传文件的临时落盘位置
type UploadConfig struct {
	TempDir     string `json:"tempDir"`
	MaxFileSize int64  `json:"maxFileSize"` // 单位：字节
}

type LocalMediaConfig struct {
	Dir     string `json:"dir"`
	BaseURL string `json:"baseURL"`
	Route   string `json:"route"` // 静态文件路由前缀
}

type S3MediaConfig struct {
	Region       string `json:"region"`
	Endpoint     string `json:"endpoint"`
	Bucket       string `json:"bucket"`
	AccessKey    string `json:"accessKey"`
	SecretKey    string `json:"secretKey"`
	PublicURL    string `json:"publicURL"`
	UsePathStyle bool   `json:"usePathStyle"`
	Prefix       string `json:"prefix"`
}

// MediaConfig 媒体托管配置，Backend 取值 local 或 s3
type MediaConfig struct {
	Backend       string           `json:"backend"`
	MaxDimension  int              `json:"maxDimension"` // 0 表示不缩放
	UploadTimeout time.Duration    `json:"uploadTimeout"`
	Local         LocalMediaConfig `json:"local"`
	S3            S3MediaConfig    `json:"s3"`
}

type LogConfig struct {
	Level      string `json:"level"`
	File       string `json:"file"`
	MaxSizeMB  int    `json:"maxSizeMB"`
	MaxBackups int    `json:"maxBackups"`
	MaxAgeDays int    `json:"maxAgeDays"`
	Compress   bool   `json:"compress"`
}

type Config struct {
	Server     ServerConfig     `json:"server"`
	Database   DatabaseConfig   `json:"database"`
	Middleware MiddlewareConfig `json:"middleware"`
	Upload     UploadConfig     `json:"upload"`
	Media      MediaConfig      `json:"media"`
	Log        LogConfig        `json:"log"`
	Env        string           `json:"env"` // 环境标识
}

const (
	MediaBackendLocal = "local"
	MediaBackendS3    = "s3"
)

// defaultConfig 每次调用都构造新值，切片不会在配置之间共享
func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Address: ":8080",
		},
		Database: DatabaseConfig{
			Host:          "localhost",
			Port:          3306,
			Username:      "root",
			Password:      "root",
			DBName:        "accounts",
			UseUnixSock:   false,
			MinPoolSize:   5,
			MaxPoolSize:   50,
			LogLevel:      "warn",
			SlowThreshold: 200 * time.Millisecond,
			AutoMigrate:   true,
		},
		Middleware: MiddlewareConfig{
			Security: SecurityConfig{
				MaxBodySize:     20 << 20, // 20MB，两张图片加表单
				AllowedMethods:  []string{"GET", "HEAD", "POST", "PUT", "OPTIONS"},
				BodyCheckExempt: []string{"/api/v1/users/register"},
			},
			Timeout: TimeoutConfig{
				RequestTimeout: 30,
			},
			CORS: CORSConfig{
				AllowOrigins:     []string{"http://localhost:3000"},
				AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
				AllowHeaders:     []string{"Content-Type", "Authorization", "X-Requested-With"},
				ExposeHeaders:    []string{"Content-Length"},
				AllowCredentials: true,
				MaxAge:           12 * time.Hour,
			},
			RateLimit: RateLimitConfig{
				Rate:     10,
				Interval: time.Second,
			},
		},
		Upload: UploadConfig{
			TempDir:     "./public/temp",
			MaxFileSize: 8 << 20,
		},
		Media: MediaConfig{
			Backend:       MediaBackendLocal,
			MaxDimension:  1024,
			UploadTimeout: 30 * time.Second,
			Local: LocalMediaConfig{
				Dir:     "./public/media",
				BaseURL: "http://localhost:8080/media",
				Route:   "/media",
			},
			S3: S3MediaConfig{
				Region: "us-east-1",
				Prefix: "accounts",
			},
		},
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  128,
			MaxBackups: 30,
			MaxAgeDays: 30,
		},
		Env: "development",
	}
}

// Default returns a copy of the built-in configuration.
func Default() *Config {
	cfg := defaultConfig()
	return &cfg
}

// IsProd 判断当前是否生产环境
func (c *Config) IsProd() bool {
	return c.Env == "production"
}

// LoggingOptions 转换为 logging 包的初始化参数
func (c *Config) LoggingOptions() logging.Options {
	return logging.Options{
		Level:      c.Log.Level,
		File:       c.Log.File,
		MaxSizeMB:  c.Log.MaxSizeMB,
		MaxBackups: c.Log.MaxBackups,
		MaxAgeDays: c.Log.MaxAgeDays,
		Compress:   c.Log.Compress,
	}
}

// Load 加载配置（优先级：环境变量 > 配置文件 > 默认值）
func Load() *Config {
	config := defaultConfig()

	// 1. 尝试从配置文件加载
	configPath := getConfigPath()
	if configPath != "" {
		if err := loadFromFile(&config, configPath); err != nil {
			hlog.Warnf("Failed to load config file: %v", err)
		}
	}

	// 2. 从环境变量覆盖
	loadFromEnv(&config)

	return &config
}

// Validate 检查启动必需的配置项
func (c *Config) Validate() error {
	switch c.Media.Backend {
	case MediaBackendLocal:
		if c.Media.Local.Dir == "" || c.Media.Local.BaseURL == "" {
			return fmt.Errorf("media.local requires dir and baseURL")
		}
	case MediaBackendS3:
		if c.Media.S3.Bucket == "" {
			return fmt.Errorf("media.s3 requires bucket")
		}
	default:
		return fmt.Errorf("unsupported media backend %q", c.Media.Backend)
	}
	if c.Upload.TempDir == "" {
		return fmt.Errorf("upload.tempDir is required")
	}
	return nil
}

// getConfigPath 获取配置文件路径
func getConfigPath() string {
	// 优先使用环境变量指定的配置文件路径
	if path := os.Getenv("APP_CONFIG"); path != "" {
		return path
	}

	// 依次查找可能的配置文件位置
	searchPaths := []string{
		"./config.json",                // 当前目录
		"../config.json",               // 上级目录
		"/etc/account-hub/config.json", // 系统配置目录
	}

	for _, path := range searchPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// loadFromFile 从文件加载配置
func loadFromFile(config *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, config)
}

// loadFromEnv 从环境变量加载配置
func loadFromEnv(config *Config) {
	// 服务器配置
	if v := os.Getenv("SERVER_ADDR"); v != "" {
		config.Server.Address = v
	}

	// 环境配置
	if v := os.Getenv("APP_ENV"); v != "" {
		config.Env = v
	}

	// 中间件配置
	if v := os.Getenv("MAX_BODY_SIZE"); v != "" {
		if size, err := strconv.ParseInt(v, 10, 64); err == nil {
			config.Middleware.Security.MaxBodySize = size
		}
	}

	if v := os.Getenv("REQUEST_TIMEOUT"); v != "" {
		if timeout, err := strconv.Atoi(v); err == nil {
			config.Middleware.Timeout.RequestTimeout = timeout
		}
	}

	if v := os.Getenv("RATE_LIMIT"); v != "" {
		if rate, err := strconv.Atoi(v); err == nil {
			config.Middleware.RateLimit.Rate = rate
		}
	}

	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		config.Middleware.CORS.AllowOrigins = splitEnvList(v)
	}

	// 数据库配置
	if v := os.Getenv("DB_HOST"); v != "" {
		config.Database.Host = v
	}

	if v := os.Getenv("DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			config.Database.Port = port
		}
	}

	if v := os.Getenv("DB_USER"); v != "" {
		config.Database.Username = v
	}

	if v := os.Getenv("DB_PASSWORD"); v != "" {
		config.Database.Password = v
	}

	if v := os.Getenv("DB_NAME"); v != "" {
		config.Database.DBName = v
	}

	if v := os.Getenv("DB_SOCKET"); v != "" {
		config.Database.UseUnixSock = parseBool(v)
	}

	if v := os.Getenv("DB_MIN_POOL"); v != "" {
		if size, err := strconv.Atoi(v); err == nil {
			config.Database.MinPoolSize = size
		}
	}

	if v := os.Getenv("DB_MAX_POOL"); v != "" {
		if size, err := strconv.Atoi(v); err == nil {
			config.Database.MaxPoolSize = size
		}
	}

	if v := os.Getenv("DB_LOG_LEVEL"); v != "" {
		config.Database.LogLevel = strings.ToLower(v)
	}

	if v := os.Getenv("DB_AUTO_MIGRATE"); v != "" {
		config.Database.AutoMigrate = parseBool(v)
	}

	// 上传与媒体配置
	if v := os.Getenv("UPLOAD_TEMP_DIR"); v != "" {
		config.Upload.TempDir = v
	}

	if v := os.Getenv("UPLOAD_MAX_FILE_SIZE"); v != "" {
		if size, err := strconv.ParseInt(v, 10, 64); err == nil {
			config.Upload.MaxFileSize = size
		}
	}

	if v := os.Getenv("MEDIA_BACKEND"); v != "" {
		config.Media.Backend = strings.ToLower(strings.TrimSpace(v))
	}

	if v := os.Getenv("MEDIA_MAX_DIMENSION"); v != "" {
		if dim, err := strconv.Atoi(v); err == nil {
			config.Media.MaxDimension = dim
		}
	}

	if v := os.Getenv("MEDIA_LOCAL_DIR"); v != "" {
		config.Media.Local.Dir = v
	}

	if v := os.Getenv("MEDIA_LOCAL_BASE_URL"); v != "" {
		config.Media.Local.BaseURL = v
	}

	if v := os.Getenv("S3_REGION"); v != "" {
		config.Media.S3.Region = v
	}

	if v := os.Getenv("S3_ENDPOINT"); v != "" {
		config.Media.S3.Endpoint = v
	}

	if v := os.Getenv("S3_BUCKET"); v != "" {
		config.Media.S3.Bucket = v
	}

	if v := os.Getenv("S3_ACCESS_KEY"); v != "" {
		config.Media.S3.AccessKey = v
	}

	if v := os.Getenv("S3_SECRET_KEY"); v != "" {
		config.Media.S3.SecretKey = v
	}

	if v := os.Getenv("S3_PUBLIC_URL"); v != "" {
		config.Media.S3.PublicURL = strings.TrimRight(v, "/")
	}

	if v := os.Getenv("S3_PATH_STYLE"); v != "" {
		config.Media.S3.UsePathStyle = parseBool(v)
	}

	// 日志配置
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		config.Log.Level = v
	}

	if v := os.Getenv("LOG_FILE"); v != "" {
		config.Log.File = v
	}
}

// 分割环境变量列表（支持逗号分隔的字符串）
func splitEnvList(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// 转换字符串为布尔值
func parseBool(value string) bool {
	value = strings.ToLower(value)
	return value == "true" || value == "1" || value == "yes"
}

// DSN 根据配置拼接 MySQL 连接串
func (c *Config) DSN() string {
	charsetParam := "charset=utf8mb4&parseTime=True&loc=Local"

	// 自动切换连接方式
	if c.Database.UseUnixSock {
		return fmt.Sprintf("%s:%s@unix(%s)/%s?%s",
			c.Database.Username,
			c.Database.Password,
			c.Database.Host, // 这里host存储的是socket路径
			c.Database.DBName,
			charsetParam)
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?%s",
		c.Database.Username,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
		charsetParam)
}

func (c *Config) InitDB() (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger: logging.NewGormLogger(c.Database.LogLevel, c.Database.SlowThreshold),
	}

	// 初始化数据库连接
	db, err := gorm.Open(mysql.Open(c.DSN()), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Connection pool settings
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	// 设置连接池
	sqlDB.SetMaxIdleConns(c.Database.MinPoolSize)
	sqlDB.SetMaxOpenConns(c.Database.MaxPoolSize)

	return db, nil
}
