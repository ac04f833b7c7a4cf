package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wayfarer/backend/internal/domain/shared"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newMockDatabase creates a Database instance with a mocked SQL connection
func newMockDatabase(t *testing.T) (*Database, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, newGormConfig(logger.Default.LogMode(logger.Silent)))
	require.NoError(t, err)

	return &Database{DB: gormDB}, mock, mockDB
}

func TestDatabase_Stats(t *testing.T) {
	db, _, mockDB := newMockDatabase(t)
	defer mockDB.Close()

	stats, err := db.Stats()
	assert.NoError(t, err)
	assert.GreaterOrEqual(t, stats.OpenConnections, 0)
}

func TestDatabase_Ping(t *testing.T) {
	t.Run("successful ping", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		mock.ExpectPing()
		assert.NoError(t, db.Ping(context.Background()))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("failed ping", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		mock.ExpectPing().WillReturnError(errors.New("connection refused"))
		assert.Error(t, db.Ping(context.Background()))
	})
}

func TestDatabase_Transaction(t *testing.T) {
	t.Run("commits on success", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		mock.ExpectBegin()
		mock.ExpectCommit()

		err := db.Transaction(context.Background(), func(tx *gorm.DB) error { return nil })
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back on error", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		mock.ExpectBegin()
		mock.ExpectRollback()

		boom := errors.New("boom")
		err := db.Transaction(context.Background(), func(tx *gorm.DB) error { return boom })
		assert.ErrorIs(t, err, boom)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTranslateError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"nil", nil, nil},
		{"record not found", gorm.ErrRecordNotFound, shared.ErrNotFound},
		{"duplicate key", gorm.ErrDuplicatedKey, shared.ErrConflict},
		{"foreign key", gorm.ErrForeignKeyViolated, shared.ErrNotFound},
		{"check constraint", gorm.ErrCheckConstraintViolated, shared.ErrValidation},
		{"wrapped duplicate", fmt.Errorf("insert: %w", gorm.ErrDuplicatedKey), shared.ErrConflict},
		{"domain error passes through", shared.ErrUnauthorized, shared.ErrUnauthorized},
		{"context canceled stays", context.Canceled, context.Canceled},
		{"unknown driver error", errors.New("disk full"), shared.ErrStorage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := translateError(tt.err, "review")
			if tt.want == nil {
				assert.NoError(t, got)
				return
			}
			assert.ErrorIs(t, got, tt.want)
		})
	}
}

func TestRepositories_StorageFailure(t *testing.T) {
	db, mock, mockDB := newMockDatabase(t)
	defer mockDB.Close()
	ctx := context.Background()

	mock.ExpectQuery(`SELECT .* FROM "place_reviews"`).WillReturnError(errors.New("connection reset by peer"))
	_, err := NewGormReviewRepository(db.DB).FindByUsers(ctx, []uuid.UUID{uuid.New()})
	assert.ErrorIs(t, err, shared.ErrStorage)
	assert.NotContains(t, shared.ErrStorage.Error(), "connection reset")

	mock.ExpectQuery(`SELECT .* FROM "follows"`).WillReturnError(errors.New("connection reset by peer"))
	_, err = NewGormFollowRepository(db.DB).FollowingIDs(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrStorage)

	assert.NoError(t, mock.ExpectationsWereMet())
}
