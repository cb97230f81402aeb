// Command create_admin creates an admin account directly in the database,
// useful for bootstrap and recovery when the API is unreachable.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"navtools/internal/config"
	"navtools/internal/database"
	"navtools/internal/models"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml")
	username := flag.String("username", "", "admin username")
	email := flag.String("email", "", "admin email")
	password := flag.String("password", "", "admin password")
	superuser := flag.Bool("superuser", false, "grant superuser privileges")
	flag.Parse()

	if *username == "" || *email == "" || *password == "" {
		fmt.Println("usage: create_admin -username <name> -email <email> -password <password> [-superuser]")
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	db, err := database.Open(cfg.Database)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}

	var existing models.AdminUser
	if err := db.Where("username = ? OR email = ?", *username, *email).First(&existing).Error; err == nil {
		fmt.Printf("admin %s already exists (id=%d)\n", existing.Username, existing.ID)
		os.Exit(0)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}
	admin := models.AdminUser{
		Username:       *username,
		Email:          *email,
		HashedPassword: hashed,
		IsSuperuser:    *superuser,
		IsActive:       true,
	}
	if err := db.Create(&admin).Error; err != nil {
		log.Fatalf("create admin: %v", err)
	}
	fmt.Printf("created admin %s id=%d superuser=%v\n", admin.Username, admin.ID, admin.IsSuperuser)
}
