// Package config 负责加载和管理应用程序的配置。
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 是整个应用程序的配置结构体，与 config.yaml 文件结构对应。
type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Log           LogConfig           `mapstructure:"log"`
	Response      ResponseConfig      `mapstructure:"response"`
	Database      DatabaseConfig      `mapstructure:"database"`
	JWT           JWTConfig           `mapstructure:"jwt"`
	Upload        UploadConfig        `mapstructure:"upload"`
	Storage       StorageConfig       `mapstructure:"storage"`
	MinIO         MinIOConfig         `mapstructure:"minio"`
	Kafka         KafkaConfig         `mapstructure:"kafka"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
}

// ServerConfig 存储服务器相关的配置。
type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

// LogConfig 存储日志相关的配置。
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

// ResponseConfig 控制统一响应体的结构，取值 simple 或 complex。
type ResponseConfig struct {
	Mode string `mapstructure:"mode"`
}

// DatabaseConfig 存储所有数据库连接的配置。
type DatabaseConfig struct {
	Driver   string         `mapstructure:"driver"`
	MySQL    MySQLConfig    `mapstructure:"mysql"`
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

// DSN 返回当前驱动对应的连接串。
func (d DatabaseConfig) DSN() string {
	if d.Driver == "postgres" {
		return d.Postgres.DSN
	}
	return d.MySQL.DSN
}

// MySQLConfig 存储 MySQL 数据库的配置。
type MySQLConfig struct {
	DSN string `mapstructure:"dsn"`
}

// PostgresConfig 存储 PostgreSQL 数据库的配置。
type PostgresConfig struct {
	DSN string `mapstructure:"dsn"`
}

// RedisConfig 存储 Redis 的配置。
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// JWTConfig 存储 JWT 相关的配置。Secret 为空时不启用鉴权。
type JWTConfig struct {
	Secret                 string `mapstructure:"secret"`
	AccessTokenExpireHours int    `mapstructure:"access_token_expire_hours"`
}

// UploadConfig 存储上传限制。MaxFileSize 以字节为单位，<= 0 表示不限制。
type UploadConfig struct {
	MaxFileSize int64         `mapstructure:"max_file_size"`
	MaxFields   int           `mapstructure:"max_fields"`
	MaxFiles    int           `mapstructure:"max_files"`
	ReadTimeout time.Duration `mapstructure:"read_timeout"`
}

// StorageConfig 选择文件落盘的后端。
type StorageConfig struct {
	Type         string `mapstructure:"type"`
	LocalPath    string `mapstructure:"local_path"`
	PublicPrefix string `mapstructure:"public_prefix"`
}

// MinIOConfig 存储 MinIO 对象存储的配置。
type MinIOConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	UseSSL          bool   `mapstructure:"use_ssl"`
	BucketName      string `mapstructure:"bucket_name"`
}

// KafkaConfig 存储 Kafka 相关的配置。
type KafkaConfig struct {
	Brokers string `mapstructure:"brokers"`
	Topic   string `mapstructure:"topic"`
	GroupID string `mapstructure:"group_id"`
}

// BrokerList 将逗号分隔的 broker 地址拆分为切片。
func (k KafkaConfig) BrokerList() []string {
	return splitList(k.Brokers)
}

// ElasticsearchConfig 存储 Elasticsearch 相关的配置。
type ElasticsearchConfig struct {
	Addresses string `mapstructure:"addresses"`
	Username  string `mapstructure:"username"`
	Password  string `mapstructure:"password"`
	IndexName string `mapstructure:"index_name"`
}

// AddressList 将逗号分隔的地址拆分为切片。
func (e ElasticsearchConfig) AddressList() []string {
	return splitList(e.Addresses)
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "release")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.output_path", "")

	v.SetDefault("response.mode", "simple")

	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.mysql.dsn", "")
	v.SetDefault("database.postgres.dsn", "")
	v.SetDefault("database.redis.addr", "")
	v.SetDefault("database.redis.password", "")
	v.SetDefault("database.redis.db", 0)

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.access_token_expire_hours", 24)

	v.SetDefault("upload.max_file_size", 10*1024*1024)
	v.SetDefault("upload.max_fields", 10)
	v.SetDefault("upload.max_files", 10)
	v.SetDefault("upload.read_timeout", "10m")

	v.SetDefault("storage.type", "local")
	v.SetDefault("storage.local_path", "public/upload")
	v.SetDefault("storage.public_prefix", "/upload")

	v.SetDefault("minio.endpoint", "")
	v.SetDefault("minio.access_key_id", "")
	v.SetDefault("minio.secret_access_key", "")
	v.SetDefault("minio.use_ssl", false)
	v.SetDefault("minio.bucket_name", "uploads")

	v.SetDefault("kafka.brokers", "")
	v.SetDefault("kafka.topic", "file-stored")
	v.SetDefault("kafka.group_id", "dome-admin-go-consumer")

	v.SetDefault("elasticsearch.addresses", "")
	v.SetDefault("elasticsearch.username", "")
	v.SetDefault("elasticsearch.password", "")
	v.SetDefault("elasticsearch.index_name", "uploaded_files")
}

// Load 从指定路径读取 YAML 配置，并允许环境变量覆盖（如 UPLOAD_MAX_FILE_SIZE 覆盖 upload.max_file_size）。
// configPath 为空时只使用默认值和环境变量。
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("无法将配置解析到结构体中: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case "mysql", "postgres":
	default:
		return fmt.Errorf("不支持的数据库驱动: %q", c.Database.Driver)
	}
	switch c.Storage.Type {
	case "local", "minio":
	default:
		return fmt.Errorf("不支持的存储类型: %q", c.Storage.Type)
	}
	switch c.Response.Mode {
	case "simple", "complex":
	default:
		return fmt.Errorf("不支持的响应模式: %q", c.Response.Mode)
	}
	if c.Upload.MaxFields < 0 || c.Upload.MaxFiles < 0 {
		return fmt.Errorf("上传数量限制不能为负数")
	}
	return nil
}
