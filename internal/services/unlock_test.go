package services

import (
	"sync"
	"testing"

	"github.com/stackquest/stackquest-api/internal/database"
	"github.com/stackquest/stackquest-api/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Achievement{},
		&models.AchievementGrant{},
		&models.ProgressMarker{},
	)
	if err != nil {
		t.Fatalf("failed to auto migrate: %v", err)
	}

	if err := database.Seed(db); err != nil {
		t.Fatalf("failed to seed catalog: %v", err)
	}

	return db
}

func createTestUser(t *testing.T, db *gorm.DB) models.User {
	t.Helper()
	user := models.User{ExternalID: "test-user", Username: "tester"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}

func grantCount(t *testing.T, db *gorm.DB, userID uint) int64 {
	t.Helper()
	var count int64
	db.Model(&models.AchievementGrant{}).Where("user_id = ?", userID).Count(&count)
	return count
}

func TestUnlockByName_Idempotent(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db)
	service := NewUnlockService(db)

	first, err := service.UnlockByName(user.ID, "Theme Master")
	if err != nil {
		t.Fatalf("first unlock returned error: %v", err)
	}
	if !first.Granted || first.AlreadyHeld {
		t.Errorf("expected first unlock granted, got %+v", first)
	}
	if first.Achievement == nil || first.Achievement.Name != "Theme Master" {
		t.Errorf("expected Theme Master achievement in result, got %+v", first.Achievement)
	}

	second, err := service.UnlockByName(user.ID, "Theme Master")
	if err != nil {
		t.Fatalf("second unlock returned error: %v", err)
	}
	if second.Granted || !second.AlreadyHeld {
		t.Errorf("expected second unlock already held, got %+v", second)
	}

	if count := grantCount(t, db, user.ID); count != 1 {
		t.Errorf("expected 1 grant row, got %d", count)
	}
}

func TestUnlockByID(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db)
	service := NewUnlockService(db)

	var achievement models.Achievement
	if err := db.Where("name = ?", "Code Validator").First(&achievement).Error; err != nil {
		t.Fatalf("failed to load seeded achievement: %v", err)
	}

	result, err := service.UnlockByID(user.ID, achievement.ID)
	if err != nil {
		t.Fatalf("UnlockByID returned error: %v", err)
	}
	if !result.Granted {
		t.Errorf("expected grant, got %+v", result)
	}

	var grant models.AchievementGrant
	err = db.Where("user_id = ? AND achievement_id = ?", user.ID, achievement.ID).First(&grant).Error
	if err != nil {
		t.Fatalf("expected exactly one grant row for the pair: %v", err)
	}
}

func TestUnlock_UnknownReference(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db)
	service := NewUnlockService(db)

	t.Run("ByName", func(t *testing.T) {
		result, err := service.UnlockByName(user.ID, "Nonexistent Badge")
		if err != nil {
			t.Fatalf("unknown name should be a soft no-op, got error: %v", err)
		}
		if result.Granted || result.AlreadyHeld || result.Achievement != nil {
			t.Errorf("expected zero result for unknown name, got %+v", result)
		}
	})

	t.Run("ByID", func(t *testing.T) {
		result, err := service.UnlockByID(user.ID, 99999)
		if err != nil {
			t.Fatalf("unknown id should be a soft no-op, got error: %v", err)
		}
		if result.Granted || result.AlreadyHeld {
			t.Errorf("expected zero result for unknown id, got %+v", result)
		}
	})

	if count := grantCount(t, db, user.ID); count != 0 {
		t.Errorf("expected no grants, got %d", count)
	}
}

func TestTotalPoints_Derived(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db)
	service := NewUnlockService(db)

	points, err := service.TotalPoints(user.ID)
	if err != nil {
		t.Fatalf("TotalPoints returned error: %v", err)
	}
	if points != 0 {
		t.Errorf("expected 0 points before any grant, got %d", points)
	}

	// Theme Master (10) + Code Validator (15)
	if _, err := service.UnlockByName(user.ID, "Theme Master"); err != nil {
		t.Fatalf("unlock failed: %v", err)
	}
	if _, err := service.UnlockByName(user.ID, "Code Validator"); err != nil {
		t.Fatalf("unlock failed: %v", err)
	}
	// Re-unlocking must not double-count.
	if _, err := service.UnlockByName(user.ID, "Theme Master"); err != nil {
		t.Fatalf("unlock failed: %v", err)
	}

	points, err = service.TotalPoints(user.ID)
	if err != nil {
		t.Fatalf("TotalPoints returned error: %v", err)
	}
	if points != 25 {
		t.Errorf("expected 25 points, got %d", points)
	}
}

func TestUnlock_ConcurrentDuplicate(t *testing.T) {
	db := setupTestDB(t)
	// A single pooled connection keeps both goroutines on the same in-memory
	// database while still racing the check-then-insert.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	user := createTestUser(t, db)
	service := NewUnlockService(db)

	var achievement models.Achievement
	if err := db.Where("name = ?", "Welcome Aboard").First(&achievement).Error; err != nil {
		t.Fatalf("failed to load seeded achievement: %v", err)
	}

	var wg sync.WaitGroup
	results := make([]UnlockResult, 2)
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = service.UnlockByID(user.ID, achievement.ID)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("concurrent unlock %d returned error: %v", i, err)
		}
	}

	grantedCount := 0
	for _, r := range results {
		if r.Granted {
			grantedCount++
		}
	}
	if grantedCount != 1 {
		t.Errorf("expected exactly one winner, got %d granted", grantedCount)
	}

	if count := grantCount(t, db, user.ID); count != 1 {
		t.Errorf("expected exactly 1 grant row after race, got %d", count)
	}
}

func TestGrants_NewestFirst(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db)
	service := NewUnlockService(db)

	if _, err := service.UnlockByName(user.ID, "Welcome Aboard"); err != nil {
		t.Fatalf("unlock failed: %v", err)
	}
	if _, err := service.UnlockByName(user.ID, "Theme Master"); err != nil {
		t.Fatalf("unlock failed: %v", err)
	}

	grants, err := service.Grants(user.ID)
	if err != nil {
		t.Fatalf("Grants returned error: %v", err)
	}
	if len(grants) != 2 {
		t.Fatalf("expected 2 grants, got %d", len(grants))
	}
	if grants[0].Achievement.Name != "Theme Master" {
		t.Errorf("expected newest grant first, got %q", grants[0].Achievement.Name)
	}
}
