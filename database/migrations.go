package database

import (
	"fmt"
	"log"

	"innova/models"
)

func Migrate() {
	err := DB.AutoMigrate(
		&models.User{},
		&models.Plate{},
	)
	if err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	fmt.Println("Migrations completed")
}
