package mysql

import (
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"catering/internal/app/infra/persistence/entity"
)

// Open 建立 MySQL 连接
func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open mysql failed: %w", err)
	}
	return db, nil
}

// AutoMigrate 同步表结构（开发环境使用，生产走迁移脚本）
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.Restaurant{},
		&entity.Dish{},
		&entity.Order{},
		&entity.OrderItem{},
	)
}
