package db

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/darkbyte-app/darkbyte-server/internal/models"
	"github.com/darkbyte-app/darkbyte-server/internal/security"
	log "github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Environment variables consumed when seeding the default admin account.
const (
	EnvAdminUsername = "DARKBYTE_ADMIN_USERNAME"
	EnvAdminPassword = "DARKBYTE_ADMIN_PASSWORD"
)

// Migrate applies schema updates and seeds baseline records.
func Migrate(conn *gorm.DB) error {
	if conn == nil {
		return fmt.Errorf("db: nil connection")
	}
	switch DialectName(conn) {
	case DialectSQLite, DialectPostgres, "":
	default:
		return fmt.Errorf("db: unsupported dialect: %s", DialectName(conn))
	}

	if errAutoMigrate := conn.AutoMigrate(
		&models.Admin{},
		&models.User{},
		&models.Tier{},
		&models.Membership{},
		&models.Server{},
		&models.ServerMember{},
		&models.BoostUnit{},
	); errAutoMigrate != nil {
		return fmt.Errorf("db: migrate: %w", errAutoMigrate)
	}

	if errSeed := ensureDefaultTiers(conn); errSeed != nil {
		return errSeed
	}
	if errSeed := ensureAdminAccount(conn); errSeed != nil {
		return errSeed
	}
	return nil
}

// defaultTierPerks lists perk lines shown for the seeded Byte tier.
var defaultTierPerks = []string{
	"2 server boosts included",
	"Animated avatar and profile banner",
	"Bigger uploads everywhere",
}

// ensureDefaultTiers seeds the qualifying Byte tier when absent.
func ensureDefaultTiers(conn *gorm.DB) error {
	var existing models.Tier
	errFind := conn.Where("name = ?", "Byte").First(&existing).Error
	if errFind == nil {
		return nil
	}
	if !errors.Is(errFind, gorm.ErrRecordNotFound) {
		return fmt.Errorf("db: lookup default tier: %w", errFind)
	}

	perks, errMarshal := json.Marshal(defaultTierPerks)
	if errMarshal != nil {
		return fmt.Errorf("db: marshal default perks: %w", errMarshal)
	}

	now := time.Now().UTC()
	tier := models.Tier{
		Name:        "Byte",
		MonthPrice:  4.99,
		Description: "The DarkByte supporter tier.",
		Perks:       datatypes.JSON(perks),
		SortOrder:   1,
		IsEnabled:   true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if errCreate := conn.Create(&tier).Error; errCreate != nil {
		return fmt.Errorf("db: seed default tier: %w", errCreate)
	}
	log.WithField("tier", tier.Name).Info("seeded default membership tier")
	return nil
}

// ensureAdminAccount seeds an admin account from environment variables.
// Skipped when the variables are unset or any admin already exists.
func ensureAdminAccount(conn *gorm.DB) error {
	username := strings.TrimSpace(os.Getenv(EnvAdminUsername))
	password := os.Getenv(EnvAdminPassword)
	if username == "" || password == "" {
		return nil
	}

	var count int64
	if errCount := conn.Model(&models.Admin{}).Count(&count).Error; errCount != nil {
		return fmt.Errorf("db: count admins: %w", errCount)
	}
	if count > 0 {
		return nil
	}

	hashed, errHash := security.HashPassword(password)
	if errHash != nil {
		return errHash
	}

	now := time.Now().UTC()
	admin := models.Admin{
		Username:  username,
		Password:  hashed,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if errCreate := conn.Create(&admin).Error; errCreate != nil {
		return fmt.Errorf("db: seed admin: %w", errCreate)
	}
	log.WithField("username", username).Info("seeded initial admin account")
	return nil
}
