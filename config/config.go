package config

import (
	"fmt"
	"os"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// InitDB opens the configured database. MySQL is the production target;
// when DB_HOST is unset a local sqlite file is used so the service can run
// standalone in development.
func InitDB() (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	host := os.Getenv("DB_HOST")
	if host == "" {
		return gorm.Open(sqlite.Open(getEnv("DB_FILE", "restaurant_service.db")), gormConfig)
	}

	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		getEnv("DB_USER", "root"),
		os.Getenv("DB_PASSWORD"),
		host,
		getEnv("DB_PORT", "3306"),
		getEnv("DB_NAME", "restaurant_service"),
	)

	return gorm.Open(mysql.Open(dsn), gormConfig)
}
