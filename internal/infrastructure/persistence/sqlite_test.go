package persistence

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/wayfarer/backend/internal/domain/identity"
	"github.com/wayfarer/backend/internal/domain/shared"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// sqliteSchema mirrors the postgres migrations closely enough for the
// repository queries, including every unique index and check constraint.
var sqliteSchema = []string{
	`CREATE TABLE users (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL,
		username TEXT,
		image TEXT NOT NULL DEFAULT '',
		password_hash TEXT NOT NULL,
		interests TEXT NOT NULL DEFAULT '[]',
		onboarding_completed BOOLEAN NOT NULL DEFAULT FALSE,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	)`,
	`CREATE UNIQUE INDEX idx_users_email ON users (email)`,
	`CREATE UNIQUE INDEX idx_users_username ON users (username)`,
	`CREATE TABLE follows (
		id TEXT PRIMARY KEY,
		follower_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		following_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		created_at DATETIME NOT NULL,
		CONSTRAINT chk_follows_not_self CHECK (follower_id <> following_id)
	)`,
	`CREATE UNIQUE INDEX idx_follows_pair ON follows (follower_id, following_id)`,
	`CREATE TABLE saved_places (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		formatted_address TEXT NOT NULL,
		latitude REAL NOT NULL,
		longitude REAL NOT NULL,
		place_id TEXT,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	)`,
	`CREATE UNIQUE INDEX idx_saved_places_user_place ON saved_places (user_id, place_id) WHERE place_id IS NOT NULL`,
	`CREATE TABLE place_reviews (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		place_id TEXT NOT NULL,
		rating INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 5),
		review TEXT NOT NULL CHECK (length(trim(review)) > 0),
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	)`,
	`CREATE UNIQUE INDEX idx_place_reviews_place_user ON place_reviews (place_id, user_id)`,
	`CREATE TABLE review_likes (
		id TEXT PRIMARY KEY,
		review_id TEXT NOT NULL REFERENCES place_reviews(id) ON DELETE CASCADE,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		created_at DATETIME NOT NULL
	)`,
	`CREATE UNIQUE INDEX idx_review_likes_review_user ON review_likes (review_id, user_id)`,
}

// setupTestDB opens a private in-memory database with the schema applied
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), newGormConfig(logger.Default.LogMode(logger.Silent)))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// every pooled connection to :memory: would otherwise see its own empty database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.Exec("PRAGMA foreign_keys = ON").Error)
	for _, stmt := range sqliteSchema {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

var userSeq int

// seedUser inserts a user directly, skipping bcrypt to keep tests fast
func seedUser(t *testing.T, db *gorm.DB, interests ...string) *identity.User {
	t.Helper()
	userSeq++
	u := &identity.User{
		BaseEntity:   shared.NewBaseEntity(),
		Name:         fmt.Sprintf("User %d", userSeq),
		Email:        fmt.Sprintf("user%d@example.com", userSeq),
		Username:     fmt.Sprintf("user_%d", userSeq),
		PasswordHash: "not-a-real-hash",
		Interests:    interests,
	}
	u.CreatedAt = at(userSeq)
	u.UpdatedAt = u.CreatedAt
	require.NoError(t, NewGormUserRepository(db).Create(context.Background(), u))
	return u
}

// at returns a fixed UTC instant offset by minutes, for deterministic ordering
func at(minutes int) time.Time {
	return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC).Add(time.Duration(minutes) * time.Minute)
}
