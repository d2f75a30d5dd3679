// persistence/gorm_sqlite.go
package persistence

import (
	"errors"
	"log"
	"os"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// GormSQLite 使用GORM的SQLite实现
type GormSQLite struct {
	db *gorm.DB
}

// 定义GORM模型
type EntryModel struct {
	ID        uint   `gorm:"primaryKey"`
	Key       string `gorm:"uniqueIndex;not null"`
	Value     []byte `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewGormSQLite 创建GORM SQLite数据库连接
func NewGormSQLite(path string) (*GormSQLite, error) {
	// 配置GORM日志
	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold: time.Second,
			LogLevel:      logger.Silent,
			Colorful:      false,
		},
	)

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	// SQLite writes go through a single connection.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetConnMaxLifetime(time.Hour)

	// 自动迁移表结构
	if err := db.AutoMigrate(&EntryModel{}); err != nil {
		return nil, err
	}

	return &GormSQLite{db: db}, nil
}

// Get 读取键值
func (p *GormSQLite) Get(key string) ([]byte, error) {
	var entry EntryModel
	if err := p.db.Where("key = ?", key).First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return entry.Value, nil
}

// Put 写入键值（UPSERT）
func (p *GormSQLite) Put(key string, value []byte) error {
	var entry EntryModel
	result := p.db.Where("key = ?", key).First(&entry)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		// 创建新记录
		entry = EntryModel{
			Key:   key,
			Value: value,
		}
		return p.db.Create(&entry).Error
	} else if result.Error != nil {
		return result.Error
	}

	// 更新现有记录
	entry.Value = value
	entry.UpdatedAt = time.Now()
	return p.db.Save(&entry).Error
}

// Delete 删除键值
func (p *GormSQLite) Delete(key string) error {
	return p.db.Where("key = ?", key).Delete(&EntryModel{}).Error
}

// Close 关闭数据库连接
func (p *GormSQLite) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
