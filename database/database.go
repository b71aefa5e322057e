package database

import (
	"fmt"
	"log"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"innova/config"
)

var DB *gorm.DB

func Connect(cfg *config.Config) {
	var (
		db  *gorm.DB
		err error
	)

	if cfg.UsePostgres() {
		db, err = gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	} else {
		db, err = gorm.Open(sqlite.Open(cfg.SQLitePath), &gorm.Config{})
	}
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	DB = db
	fmt.Println("Database connected")
}
