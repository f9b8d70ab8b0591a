package admin

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/darkbyte-app/darkbyte-server/internal/config"
	"github.com/darkbyte-app/darkbyte-server/internal/models"
	"github.com/darkbyte-app/darkbyte-server/internal/security"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestEngine(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if errMigrate := conn.AutoMigrate(
		&models.Admin{},
		&models.User{},
		&models.Tier{},
		&models.Membership{},
		&models.Server{},
		&models.ServerMember{},
		&models.BoostUnit{},
	); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}

	gin.SetMode(gin.TestMode)
	engine := gin.New()
	RegisterAdminRoutes(engine, conn, config.JWTConfig{Secret: "test-secret", Expiry: time.Hour})
	return engine, conn
}

func adminToken(t *testing.T, conn *gorm.DB) string {
	t.Helper()

	hashed, errHash := security.HashPassword("s3cret")
	if errHash != nil {
		t.Fatalf("hash password: %v", errHash)
	}
	admin := models.Admin{Username: "root", Password: hashed, Active: true}
	if err := conn.Create(&admin).Error; err != nil {
		t.Fatalf("create admin: %v", err)
	}

	token, errSign := security.SignAdminToken("test-secret", admin.ID, time.Hour)
	if errSign != nil {
		t.Fatalf("sign token: %v", errSign)
	}
	return token
}

func doJSON(t *testing.T, engine *gin.Engine, method, path, token string, body any) (int, map[string]any) {
	t.Helper()

	var raw []byte
	if body != nil {
		var errMarshal error
		raw, errMarshal = json.Marshal(body)
		if errMarshal != nil {
			t.Fatalf("marshal body: %v", errMarshal)
		}
	}

	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	out := map[string]any{}
	if rec.Body.Len() > 0 {
		if errDecode := json.Unmarshal(rec.Body.Bytes(), &out); errDecode != nil {
			t.Fatalf("decode response %q: %v", rec.Body.String(), errDecode)
		}
	}
	return rec.Code, out
}

func TestHealthz(t *testing.T) {
	engine, _ := newTestEngine(t)

	code, _ := doJSON(t, engine, http.MethodGet, "/healthz", "", nil)
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
}

func TestAdminRoutesRequireAuth(t *testing.T) {
	engine, _ := newTestEngine(t)

	code, _ := doJSON(t, engine, http.MethodGet, "/v0/admin/tiers", "", nil)
	if code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", code)
	}

	// A user-audience token must not pass the admin middleware.
	userToken, errSign := security.SignUserToken("test-secret", 1, time.Hour)
	if errSign != nil {
		t.Fatalf("sign token: %v", errSign)
	}
	code, _ = doJSON(t, engine, http.MethodGet, "/v0/admin/tiers", userToken, nil)
	if code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with user token, got %d", code)
	}
}

func TestAdminLogin(t *testing.T) {
	engine, conn := newTestEngine(t)
	adminToken(t, conn)

	code, resp := doJSON(t, engine, http.MethodPost, "/v0/admin/login", "", gin.H{
		"username": "root",
		"password": "s3cret",
	})
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%v)", code, resp)
	}
	if token, _ := resp["token"].(string); token == "" {
		t.Fatalf("missing token in %v", resp)
	}

	code, _ = doJSON(t, engine, http.MethodPost, "/v0/admin/login", "", gin.H{
		"username": "root",
		"password": "wrong",
	})
	if code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad password, got %d", code)
	}
}

func TestTierLifecycle(t *testing.T) {
	engine, conn := newTestEngine(t)
	token := adminToken(t, conn)

	code, created := doJSON(t, engine, http.MethodPost, "/v0/admin/tiers", token, gin.H{
		"name":        "Byte",
		"month_price": 4.99,
		"perks":       []string{"2 boosts included", " ", "custom badge"},
	})
	if code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d (%v)", code, created)
	}
	tierID := int(created["id"].(float64))
	perks, _ := created["perks"].([]any)
	if len(perks) != 2 {
		t.Fatalf("expected blank perks dropped, got %v", created["perks"])
	}

	code, resp := doJSON(t, engine, http.MethodGet, "/v0/admin/tiers?search=byt", token, nil)
	if code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", code)
	}
	if tiers, _ := resp["tiers"].([]any); len(tiers) != 1 {
		t.Fatalf("expected case-insensitive search to match, got %v", resp)
	}

	code, resp = doJSON(t, engine, http.MethodPut, "/v0/admin/tiers/"+itoa(tierID), token, gin.H{
		"month_price": 5.99,
	})
	if code != http.StatusOK {
		t.Fatalf("update: expected 200, got %d (%v)", code, resp)
	}
	if price := resp["month_price"].(float64); price != 5.99 {
		t.Fatalf("expected price updated, got %v", price)
	}

	code, _ = doJSON(t, engine, http.MethodPost, "/v0/admin/tiers/"+itoa(tierID)+"/disable", token, nil)
	if code != http.StatusOK {
		t.Fatalf("disable: expected 200, got %d", code)
	}
	code, resp = doJSON(t, engine, http.MethodGet, "/v0/admin/tiers/"+itoa(tierID), token, nil)
	if code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", code)
	}
	if enabled, _ := resp["is_enabled"].(bool); enabled {
		t.Fatalf("expected tier disabled, got %v", resp)
	}

	code, _ = doJSON(t, engine, http.MethodPut, "/v0/admin/tiers/9999", token, gin.H{"month_price": 1.0})
	if code != http.StatusNotFound {
		t.Fatalf("expected 404 for missing tier, got %d", code)
	}
}

func TestAdminServerList(t *testing.T) {
	engine, conn := newTestEngine(t)
	token := adminToken(t, conn)

	owner := models.User{Username: "owner", Email: "owner@test.local", Password: "x", Active: true}
	if err := conn.Create(&owner).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	for _, s := range []models.Server{
		{Name: "Quiet Corner", OwnerUserID: owner.ID, BoostLevel: 0},
		{Name: "Boosted Hub", OwnerUserID: owner.ID, BoostLevel: 3},
	} {
		if err := conn.Create(&s).Error; err != nil {
			t.Fatalf("create server: %v", err)
		}
	}

	code, resp := doJSON(t, engine, http.MethodGet, "/v0/admin/servers", token, nil)
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	servers, _ := resp["servers"].([]any)
	if len(servers) != 2 {
		t.Fatalf("expected 2 servers, got %v", resp)
	}
	if name := servers[0].(map[string]any)["name"].(string); name != "Boosted Hub" {
		t.Fatalf("expected highest boost level first, got %v", name)
	}
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
