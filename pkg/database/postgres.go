package database

import (
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InitDB 连接数据库并迁移传入的模型
// 连接失败直接退出：没有库，服务起来也没有意义
func InitDB(dsn string, models ...interface{}) *gorm.DB {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormLogger(),
	})
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}

	if err := tunePool(db); err != nil {
		log.Fatalf("连接池配置失败: %v", err)
	}
	log.Println("数据库连接成功")

	if len(models) > 0 {
		if err := db.AutoMigrate(models...); err != nil {
			log.Fatalf("自动建表出错: %v", err)
		}
	}

	return db
}

// gormLogger 默认打印所有 SQL 方便调试，线上用 DB_LOG_SILENT=1 关掉
func gormLogger() logger.Interface {
	if os.Getenv("DB_LOG_SILENT") == "1" {
		return logger.Default.LogMode(logger.Silent)
	}
	return logger.Default.LogMode(logger.Info)
}

// tunePool 连接池参数
// 向导会话都在内存里，数据库只承担落库和目录读取，连接数不用开太大
func tunePool(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("获取底层 SQL DB 失败: %w", err)
	}
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetConnMaxLifetime(time.Hour)
	return nil
}
