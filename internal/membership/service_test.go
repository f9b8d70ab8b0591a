package membership

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/darkbyte-app/darkbyte-server/internal/boost"
	"github.com/darkbyte-app/darkbyte-server/internal/models"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if errMigrate := conn.AutoMigrate(
		&models.User{},
		&models.Tier{},
		&models.Membership{},
		&models.Server{},
		&models.ServerMember{},
		&models.BoostUnit{},
	); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}
	return conn
}

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	conn := openTestDB(t)
	return NewService(conn, boost.NewService(conn)), conn
}

func TestActivate_QualifyingTierGrantsBoosts(t *testing.T) {
	svc, conn := newTestService(t)

	user := models.User{Username: "u1", Email: "u1@test.local", Password: "x", Active: true}
	if err := conn.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	tier := models.Tier{Name: boost.QualifyingTierName, IsEnabled: true}
	if err := conn.Create(&tier).Error; err != nil {
		t.Fatalf("create tier: %v", err)
	}

	record, granted, errActivate := svc.Activate(context.Background(), user.ID, tier.ID)
	if errActivate != nil {
		t.Fatalf("activate: %v", errActivate)
	}
	if record.UserID != user.ID || record.TierID != tier.ID {
		t.Fatalf("unexpected membership: %+v", record)
	}
	if record.ExpiresAt == nil || !record.ExpiresAt.After(record.StartedAt) {
		t.Fatalf("expected one-month expiry after start, got %+v", record)
	}
	if record.Tier.Name != boost.QualifyingTierName {
		t.Fatalf("expected tier loaded on result")
	}
	if len(granted) != boost.InitialGrantCount {
		t.Fatalf("expected %d granted units, got %d", boost.InitialGrantCount, len(granted))
	}

	var reloaded models.Membership
	if err := conn.First(&reloaded, record.ID).Error; err != nil {
		t.Fatalf("reload membership: %v", err)
	}
	if !reloaded.BoostsGranted {
		t.Fatalf("expected boosts_granted set after activation")
	}
}

func TestActivate_NonQualifyingTier(t *testing.T) {
	svc, conn := newTestService(t)

	user := models.User{Username: "u1", Email: "u1@test.local", Password: "x", Active: true}
	if err := conn.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	tier := models.Tier{Name: "Basic", IsEnabled: true}
	if err := conn.Create(&tier).Error; err != nil {
		t.Fatalf("create tier: %v", err)
	}

	record, granted, errActivate := svc.Activate(context.Background(), user.ID, tier.ID)
	if errActivate != nil {
		t.Fatalf("activate: %v", errActivate)
	}
	if record == nil {
		t.Fatalf("expected membership created")
	}
	if len(granted) != 0 {
		t.Fatalf("expected no granted units, got %d", len(granted))
	}

	var count int64
	if err := conn.Model(&models.BoostUnit{}).Count(&count).Error; err != nil {
		t.Fatalf("count units: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected zero unit rows, got %d", count)
	}
}

func TestActivate_DisabledOrMissingTier(t *testing.T) {
	svc, conn := newTestService(t)

	user := models.User{Username: "u1", Email: "u1@test.local", Password: "x", Active: true}
	if err := conn.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	disabled := models.Tier{Name: "Legacy", IsEnabled: false}
	if err := conn.Create(&disabled).Error; err != nil {
		t.Fatalf("create tier: %v", err)
	}

	if _, _, err := svc.Activate(context.Background(), user.ID, disabled.ID); !errors.Is(err, ErrTierNotFound) {
		t.Fatalf("expected ErrTierNotFound for disabled tier, got %v", err)
	}
	if _, _, err := svc.Activate(context.Background(), user.ID, disabled.ID+1000); !errors.Is(err, ErrTierNotFound) {
		t.Fatalf("expected ErrTierNotFound for missing tier, got %v", err)
	}
}

func TestListForUser(t *testing.T) {
	svc, conn := newTestService(t)

	user := models.User{Username: "u1", Email: "u1@test.local", Password: "x", Active: true}
	if err := conn.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	other := models.User{Username: "u2", Email: "u2@test.local", Password: "x", Active: true}
	if err := conn.Create(&other).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	tier := models.Tier{Name: "Basic", IsEnabled: true}
	if err := conn.Create(&tier).Error; err != nil {
		t.Fatalf("create tier: %v", err)
	}

	if _, _, err := svc.Activate(context.Background(), user.ID, tier.ID); err != nil {
		t.Fatalf("activate: %v", err)
	}
	if _, _, err := svc.Activate(context.Background(), user.ID, tier.ID); err != nil {
		t.Fatalf("activate: %v", err)
	}
	if _, _, err := svc.Activate(context.Background(), other.ID, tier.ID); err != nil {
		t.Fatalf("activate: %v", err)
	}

	rows, errList := svc.ListForUser(context.Background(), user.ID)
	if errList != nil {
		t.Fatalf("list: %v", errList)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 memberships, got %d", len(rows))
	}
	if rows[0].ID < rows[1].ID {
		t.Fatalf("expected newest first")
	}
	if rows[0].Tier.Name != "Basic" {
		t.Fatalf("expected tier loaded")
	}
}
