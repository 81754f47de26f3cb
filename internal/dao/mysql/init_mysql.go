// Package mysql 提供数据访问层的初始化
// 负责建立 MySQL 连接、自动迁移表结构、初始化 Repository 层
package mysql

import (
	"fmt"

	"equb_server/internal/config"
	"equb_server/internal/dao/mysql/repository"
	"equb_server/internal/model"

	"go.uber.org/zap"
	mysqldriver "gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// GormConfig 生产与测试共用的 GORM 配置
// TranslateError 让唯一索引冲突统一表现为 gorm.ErrDuplicatedKey
func GormConfig() *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	}
}

// Migrate 自动迁移所有表结构
// 不会删除已有字段或数据
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.UserInfo{},
		&model.EqubGroup{},
		&model.EqubMember{},
		&model.RoundPayment{},
		&model.EqubWinner{},
		&model.EqubPayout{},
	)
}

// Init 初始化数据库连接并返回 Repository 层实例
// 执行步骤：
//  1. 从配置构建 DSN
//  2. 使用 GORM 建立数据库连接并设置连接池
//  3. 执行 AutoMigrate
//  4. 创建并返回 Repository 实例
func Init(conf *config.MysqlConfig) (*repository.Repositories, *gorm.DB, error) {
	// 格式：user:password@tcp(host:port)/database?params
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		conf.User,
		conf.Password,
		conf.Host,
		conf.Port,
		conf.DatabaseName,
	)

	db, err := gorm.Open(mysqldriver.Open(dsn), GormConfig())
	if err != nil {
		return nil, nil, fmt.Errorf("open mysql: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, fmt.Errorf("get sql.DB: %w", err)
	}
	if conf.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(conf.MaxOpenConns)
	}
	if conf.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(conf.MaxIdleConns)
	}

	if err = Migrate(db); err != nil {
		return nil, nil, fmt.Errorf("auto migrate: %w", err)
	}

	zap.L().Info("MySQL 连接成功", zap.String("host", conf.Host), zap.String("database", conf.DatabaseName))
	return repository.NewRepositories(db), db, nil
}
