// Command admin bootstraps a dashboard account. The login endpoint verifies
// against these rows, so at least one must exist before staff can sign in.
package main

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"careerportal/internal/auth"
	"careerportal/internal/config"
	"careerportal/internal/database"
)

func main() {
	var (
		email  = flag.String("email", "", "admin email (required)")
		name   = flag.String("name", "", "display name (required)")
		dbHost = flag.String("db-host", "", "database host (optional, defaults to DATABASE_HOST)")
		dbPort = flag.Int("db-port", 0, "database port (optional, defaults to DATABASE_PORT)")
		dbName = flag.String("db-name", "", "database name (optional, defaults to POSTGRES_DB)")
		dbUser = flag.String("db-user", "", "database user (optional, defaults to POSTGRES_USER)")
		dbPass = flag.String("db-password", "", "database password (optional, defaults to POSTGRES_PASSWORD)")
		ssl    = flag.String("db-sslmode", "", "database sslmode (optional, defaults to DATABASE_SSLMODE)")
	)
	flag.Parse()

	_ = godotenv.Load()

	adminEmail := strings.ToLower(strings.TrimSpace(*email))
	if adminEmail == "" {
		log.Fatal("missing required flag: --email")
	}
	adminName := strings.TrimSpace(*name)
	if adminName == "" {
		log.Fatal("missing required flag: --name")
	}

	dbCfg, err := loadDatabaseConfig(*dbHost, *dbPort, *dbName, *dbUser, *dbPass, *ssl)
	if err != nil {
		log.Fatalf("load database config: %v", err)
	}

	db, err := database.InitDatabase(dbCfg)
	if err != nil {
		log.Fatalf("init database: %v", err)
	}

	if err := db.AutoMigrate(&database.Admin{}); err != nil {
		log.Fatalf("auto migrate: %v", err)
	}

	var existing database.Admin
	switch err := db.Where("email = ?", adminEmail).First(&existing).Error; {
	case err == nil:
		log.Fatalf("admin %q already exists", adminEmail)
	case errors.Is(err, gorm.ErrRecordNotFound):
	default:
		log.Fatalf("query admin: %v", err)
	}

	password, err := generateRandomPassword(24)
	if err != nil {
		log.Fatalf("generate password: %v", err)
	}

	hashed, err := auth.HashPassword(password)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	admin := database.Admin{
		Email:        adminEmail,
		PasswordHash: hashed,
		Name:         adminName,
	}
	if err := db.Create(&admin).Error; err != nil {
		log.Fatalf("create admin: %v", err)
	}

	fmt.Printf("created admin account:\n")
	fmt.Printf("email: %s\n", adminEmail)
	fmt.Printf("initial password: %s\n", password)
	fmt.Printf("note: this password is shown only once.\n")
}

func loadDatabaseConfig(host string, port int, name, user, password, sslmode string) (config.DatabaseConfig, error) {
	if strings.TrimSpace(host) == "" {
		host = os.Getenv("DATABASE_HOST")
	}
	if port <= 0 {
		if env := strings.TrimSpace(os.Getenv("DATABASE_PORT")); env != "" {
			p, err := strconv.Atoi(env)
			if err != nil {
				return config.DatabaseConfig{}, fmt.Errorf("parse DATABASE_PORT: %w", err)
			}
			port = p
		}
	}
	if strings.TrimSpace(name) == "" {
		name = os.Getenv("POSTGRES_DB")
	}
	if strings.TrimSpace(user) == "" {
		user = os.Getenv("POSTGRES_USER")
	}
	if strings.TrimSpace(password) == "" {
		password = os.Getenv("POSTGRES_PASSWORD")
	}
	if strings.TrimSpace(sslmode) == "" {
		sslmode = os.Getenv("DATABASE_SSLMODE")
	}

	if strings.TrimSpace(host) == "" {
		host = "localhost"
	}
	if port <= 0 {
		port = 5432
	}
	if strings.TrimSpace(sslmode) == "" {
		sslmode = "disable"
	}
	if strings.TrimSpace(name) == "" {
		return config.DatabaseConfig{}, errors.New("database name is required (POSTGRES_DB)")
	}
	if strings.TrimSpace(user) == "" {
		return config.DatabaseConfig{}, errors.New("database user is required (POSTGRES_USER)")
	}
	if strings.TrimSpace(password) == "" {
		return config.DatabaseConfig{}, errors.New("database password is required (POSTGRES_PASSWORD)")
	}

	return config.DatabaseConfig{
		Host:     host,
		Port:     port,
		Name:     name,
		User:     user,
		Password: password,
		SSLMode:  sslmode,
	}, nil
}

func generateRandomPassword(bytesLen int) (string, error) {
	if bytesLen <= 0 {
		bytesLen = 24
	}
	buf := make([]byte, bytesLen)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
