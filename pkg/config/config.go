package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ServerConfig HTTP 服务配置
type ServerConfig struct {
	Listen      string `yaml:"listen"`      // 监听地址，默认 :8080
	JournalDB   string `yaml:"journalDb"`   // 评分流水 SQLite 文件路径
	DebugListen string `yaml:"debugListen"` // expvar/pprof 调试地址，空则不启用
}

// StoreConfig 状态存储配置
type StoreConfig struct {
	Path string `yaml:"path"` // Badger 数据目录
}

// ProtocolConfig 协议配置
type ProtocolConfig struct {
	ChainID    uint64 `yaml:"chainId"`    // 链 ID（部署记录用）
	Deployer   string `yaml:"deployer"`   // 部署者地址
	Receiver   string `yaml:"receiver"`   // 协议收款地址
	MaxRatings int    `yaml:"maxRatings"` // 批量评分条目上限，0 取默认值 100
}

// LogConfig 日志配置
type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSize    int    `yaml:"maxSize"`
	MaxBackups int    `yaml:"maxBackups"`
	MaxAge     int    `yaml:"maxAge"`
	Compress   bool   `yaml:"compress"`
}

// Config 应用配置
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Store    StoreConfig    `yaml:"store"`
	Protocol ProtocolConfig `yaml:"protocol"`
	Log      LogConfig      `yaml:"log"`
}

// Load 从文件加载配置并填充默认值
func Load(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// Default 返回默认配置
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Server.Listen == "" {
		c.Server.Listen = ":8080"
	}
	if c.Server.JournalDB == "" {
		c.Server.JournalDB = "data/journal.db"
	}
	if c.Store.Path == "" {
		c.Store.Path = "data/state"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.MaxSize == 0 {
		c.Log.MaxSize = 100
	}
	if c.Log.MaxBackups == 0 {
		c.Log.MaxBackups = 3
	}
	if c.Log.MaxAge == 0 {
		c.Log.MaxAge = 7
	}
}
