package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/ordersystem/config"
	"github.com/yeremiapane/ordersystem/database"
	"github.com/yeremiapane/ordersystem/models"
	"github.com/yeremiapane/ordersystem/utils"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB opens a private in-memory database. A single connection keeps
// the data alive and serialises transactions the way row locks would.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

type fixture struct {
	db         *gorm.DB
	customer   models.Customer
	friend     models.Customer
	restaurant models.Restaurant
	paneer     models.MenuItem
	large      models.Variant
	lassi      models.MenuItem
}

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func seedFixture(t *testing.T, db *gorm.DB) *fixture {
	t.Helper()
	f := &fixture{db: db}

	f.customer = models.Customer{FullName: "Asha Rao", Email: "asha@example.com", EncryptedPhoneNumber: utils.HashPhoneNumber("9845011111")}
	f.friend = models.Customer{FullName: "Vikram Shah", Email: "vikram@example.com", EncryptedPhoneNumber: utils.HashPhoneNumber("9845022222")}
	require.NoError(t, db.Create(&f.customer).Error)
	require.NoError(t, db.Create(&f.friend).Error)

	f.restaurant = models.Restaurant{Name: "Spice Route"}
	require.NoError(t, db.Create(&f.restaurant).Error)

	mains := models.Category{Name: "Mains"}
	drinks := models.Category{Name: "Drinks"}
	require.NoError(t, db.Create(&mains).Error)
	require.NoError(t, db.Create(&drinks).Error)
	curries := models.SubCategory{CategoryID: mains.ID, Name: "Curries"}
	require.NoError(t, db.Create(&curries).Error)

	f.paneer = models.MenuItem{CategoryID: mains.ID, SubCategoryID: &curries.ID, Name: "Paneer Butter Masala", Price: money("12.99"), Available: true}
	require.NoError(t, db.Create(&f.paneer).Error)
	f.large = models.Variant{MenuItemID: f.paneer.ID, VariantName: "Large", VariantType: "Size", Price: money("15.49"), Available: true}
	require.NoError(t, db.Create(&f.large).Error)
	f.lassi = models.MenuItem{CategoryID: drinks.ID, Name: "Mango Lassi", Price: money("4.25"), Available: true}
	require.NoError(t, db.Create(&f.lassi).Error)
	return f
}

// recordingSink keeps archived documents in memory.
type recordingSink struct {
	mu   sync.Mutex
	docs map[string][]byte
	err  error
}

func newRecordingSink() *recordingSink {
	return &recordingSink{docs: map[string][]byte{}}
}

func (r *recordingSink) Put(ctx context.Context, key string, blob []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.docs[key] = blob
	return nil
}

func (r *recordingSink) get(key string) ([]byte, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	blob, ok := r.docs[key]
	return blob, ok
}

type testServices struct {
	*Services
	sink *recordingSink
}

func newTestServices(db *gorm.DB, strict bool) *testServices {
	sink := newRecordingSink()
	return &testServices{
		Services: New(db, Options{
			Schedule:        config.DefaultSchedule(),
			Sink:            sink,
			ArchiveTimeout:  time.Second,
			StrictDiscounts: strict,
		}),
		sink: sink,
	}
}

// tuesdayAt returns a Tuesday in October 2026 at the given local time.
func tuesdayAt(hour, minute int) time.Time {
	return time.Date(2026, 10, 20, hour, minute, 0, 0, time.Local)
}

func mondayAt(hour, minute int) time.Time {
	return time.Date(2026, 10, 19, hour, minute, 0, 0, time.Local)
}
