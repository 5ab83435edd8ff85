// Package database 负责建立关系型数据库与 Redis 连接。
package database

import (
	"fmt"
	"time"

	"dome-admin-go/internal/config"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Dialector 根据驱动名选择 GORM 方言。
func Dialector(cfg config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "", "mysql":
		return mysql.Open(cfg.MySQL.DSN), nil
	case "postgres":
		return postgres.Open(cfg.Postgres.DSN), nil
	}
	return nil, fmt.Errorf("不支持的数据库驱动: %s", cfg.Driver)
}

// OpenGorm 打开数据库连接、配置连接池并迁移 models。
func OpenGorm(cfg config.DatabaseConfig, logger *zap.SugaredLogger, models ...any) (*gorm.DB, error) {
	dialector, err := Dialector(cfg)
	if err != nil {
		return nil, err
	}
	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取 sql.DB 失败: %w", err)
	}
	sqlDB.SetMaxIdleConns(10)           // 设置空闲连接池中连接的最大数量
	sqlDB.SetMaxOpenConns(100)          // 设置打开数据库连接的最大数量
	sqlDB.SetConnMaxLifetime(time.Hour) // 设置了连接可复用的最大时间

	if len(models) > 0 {
		if err := db.AutoMigrate(models...); err != nil {
			return nil, fmt.Errorf("迁移数据表失败: %w", err)
		}
	}

	logger.Infof("%s 数据库连接成功", dialector.Name())
	return db, nil
}
