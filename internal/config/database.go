package config

import (
	"time"
)

// DatabaseConfig SQLite 存储后端配置
type DatabaseConfig struct {
	DataDir         string        `json:"dataDir" mapstructure:"dataDir" toml:"dataDir"`                         // 数据库文件存储目录
	DatabaseName    string        `json:"databaseName" mapstructure:"databaseName" toml:"databaseName"`          // 数据库文件名
	MaxOpenConns    int           `json:"maxOpenConns" mapstructure:"maxOpenConns" toml:"maxOpenConns"`          // 最大打开连接数
	MaxIdleConns    int           `json:"maxIdleConns" mapstructure:"maxIdleConns" toml:"maxIdleConns"`          // 最大空闲连接数
	ConnMaxLifetime time.Duration `json:"connMaxLifetime" mapstructure:"connMaxLifetime" toml:"connMaxLifetime"` // 连接最大生命周期
	ConnMaxIdleTime time.Duration `json:"connMaxIdleTime" mapstructure:"connMaxIdleTime" toml:"connMaxIdleTime"` // 连接最大空闲时间
	EnableWAL       bool          `json:"enableWAL" mapstructure:"enableWAL" toml:"enableWAL"`                   // 启用WAL模式
	BusyTimeout     time.Duration `json:"busyTimeout" mapstructure:"busyTimeout" toml:"busyTimeout"`             // 写锁等待时间
}

// DefaultDatabaseConfig 默认数据库配置
func DefaultDatabaseConfig(dataDir string) *DatabaseConfig {
	return &DatabaseConfig{
		DataDir:         dataDir,
		DatabaseName:    "leverage.db",
		MaxOpenConns:    5,
		MaxIdleConns:    3,
		ConnMaxLifetime: 15 * time.Minute,
		ConnMaxIdleTime: 3 * time.Minute, // 连接空闲超过3分钟则关闭
		EnableWAL:       true,
		BusyTimeout:     5 * time.Second,
	}
}
