package persistence

import (
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// scopedPart is a minimal company-scoped model for exercising the wrapper.
type scopedPart struct {
	ID        uint
	CompanyID string
	PartNo    string
}

func newMockDatabase(t *testing.T) (*Database, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)

	return &Database{DB: gormDB}, mock, mockDB
}

func TestDatabase_WithCompany(t *testing.T) {
	t.Run("scopes every query to the company", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		companyID := "550e8400-e29b-41d4-a716-446655440000"
		mock.ExpectQuery(`SELECT \* FROM "scoped_parts" WHERE company_id = \$1`).
			WithArgs(companyID).
			WillReturnRows(sqlmock.NewRows([]string{"id", "company_id", "part_no"}).
				AddRow(1, companyID, "FLG-150"))

		var parts []scopedPart
		require.NoError(t, db.WithCompany(companyID).Find(&parts).Error)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("company id travels as a bind parameter", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		// A hostile id must never reach the SQL text itself.
		companyID := "company'; DROP TABLE users; --"
		mock.ExpectQuery(`SELECT \* FROM "scoped_parts" WHERE company_id = \$1`).
			WithArgs(companyID).
			WillReturnRows(sqlmock.NewRows([]string{"id", "company_id", "part_no"}))

		var parts []scopedPart
		require.NoError(t, db.WithCompany(companyID).Find(&parts).Error)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty company id panics", func(t *testing.T) {
		db, _, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		assert.Panics(t, func() { db.WithCompany("") })
	})

	t.Run("scoping leaves the original handle alone", func(t *testing.T) {
		db, _, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		original := db.DB
		scoped := db.WithCompany("company-acme")

		assert.NotEqual(t, original, scoped)
		assert.Equal(t, original, db.DB)
		assert.NotEqual(t, scoped, db.WithCompany("company-borel"), "each company gets its own scope")
	})
}

func TestDatabase_WithCompany_ComposesWithQueryBuilders(t *testing.T) {
	t.Run("extra where clauses are appended", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		type workCenter struct {
			ID        uint
			CompanyID string
			Code      string
			Active    bool
		}

		companyID := "company-acme"
		mock.ExpectQuery(`SELECT \* FROM "work_centers" WHERE company_id = \$1 AND active = \$2`).
			WithArgs(companyID, true).
			WillReturnRows(sqlmock.NewRows([]string{"id", "company_id", "code", "active"}).
				AddRow(1, companyID, "CUT-01", true))

		var centers []workCenter
		require.NoError(t, db.WithCompany(companyID).Where("active = ?", true).Find(&centers).Error)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ordering and pagination survive scoping", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		companyID := "company-acme"
		mock.ExpectQuery(`SELECT \* FROM "scoped_parts" WHERE company_id = \$1 ORDER BY part_no ASC LIMIT \$2 OFFSET \$3`).
			WithArgs(companyID, 10, 5).
			WillReturnRows(sqlmock.NewRows([]string{"id", "company_id", "part_no"}).
				AddRow(6, companyID, "PIP-200"))

		var parts []scopedPart
		err := db.WithCompany(companyID).Order("part_no ASC").Limit(10).Offset(5).Find(&parts).Error
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDatabase_Stats(t *testing.T) {
	db, _, mockDB := newMockDatabase(t)
	defer mockDB.Close()

	stats, err := db.Stats()
	require.NoError(t, err)

	assert.GreaterOrEqual(t, stats.MaxOpenConnections, 0)
	assert.GreaterOrEqual(t, stats.OpenConnections, 0)
	assert.GreaterOrEqual(t, stats.InUse, 0)
	assert.GreaterOrEqual(t, stats.Idle, 0)
	assert.GreaterOrEqual(t, stats.WaitCount, int64(0))
	assert.GreaterOrEqual(t, stats.WaitDuration, time.Duration(0))
}

func TestDatabase_Ping(t *testing.T) {
	// MonitorPingsOption makes sqlmock verify Ping calls instead of
	// swallowing them. GORM pings once during Open, hence two expectations.
	mockDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer mockDB.Close()

	mock.ExpectPing()

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)

	db := &Database{DB: gormDB}

	mock.ExpectPing()
	assert.NoError(t, db.Ping())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDatabase_Close(t *testing.T) {
	db, mock, _ := newMockDatabase(t)

	mock.ExpectClose()
	assert.NoError(t, db.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDatabase_Transaction(t *testing.T) {
	t.Run("commits when the callback succeeds", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		mock.ExpectBegin()
		// Postgres inserts go through Query because of the RETURNING clause.
		mock.ExpectQuery(`INSERT INTO "scoped_parts"`).
			WithArgs("company-acme", "FLG-150").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
		mock.ExpectCommit()

		err := db.Transaction(func(tx *gorm.DB) error {
			return tx.Create(&scopedPart{CompanyID: "company-acme", PartNo: "FLG-150"}).Error
		})
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back when the callback fails", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		mock.ExpectBegin()
		mock.ExpectRollback()

		err := db.Transaction(func(tx *gorm.DB) error { return assert.AnError })
		assert.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
