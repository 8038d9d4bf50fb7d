package database

import (
	"fmt"
	"log"

	"nutriquiz_backend/internal/config"
	"nutriquiz_backend/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.DBName,
		cfg.Database.Charset,
		cfg.Database.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	// release 模式默认不迁移，需要显式 --migrate
	if cfg.Server.Mode != "release" || cfg.ForceMigrate {
		if err := Migrate(db); err != nil {
			return nil, err
		}
		log.Println("Database migration completed")
	}

	return db, nil
}

// Migrate 建表并补齐参考数据
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&model.User{},
		&model.QuizSession{},
		&model.Question{},
		&model.QuestionOption{},
		&model.Chart{},
	)
	if err != nil {
		return err
	}

	return seedCharts(db)
}

// seedCharts 图表为空时补齐 [1600, 3600] 全部 21 个档位。
// 报告引擎按档位精确匹配且缺档即失败，所以部署时必须全量就位。
func seedCharts(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.Chart{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	for value := 1600; value <= 3600; value += 100 {
		chart := &model.Chart{
			Value:       value,
			Image:       fmt.Sprintf("/charts/%d.webp", value),
			Description: fmt.Sprintf("Daily maintenance around %d kcal", value),
		}
		if err := db.Create(chart).Error; err != nil {
			return err
		}
	}
	return nil
}
