package service

import (
	"io"
	"log/slog"
	"testing"

	"github.com/Md-FarhadHossain/profit-first-server/internal/infrastructure"
	"github.com/Md-FarhadHossain/profit-first-server/internal/model"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens an isolated in-memory database with the full schema and
// startup defaults applied.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// A single connection keeps the in-memory database alive and serializes
	// concurrent transactions the way the production pool's row locks do.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, infrastructure.MigrateAllSchemas(db))
	require.NoError(t, infrastructure.NewDefaultsManager(db).EnsureAll())
	return db
}

// testLogger discards output.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestOrderService wires an order service with real cart and blocklist
// services over the given database.
func newTestOrderService(t *testing.T, db *gorm.DB, cfg OrderServiceConfig, classifier AddressClassifier) OrderService {
	t.Helper()
	return NewOrderService(db, NewCartService(db), NewBlocklistService(db), classifier, cfg, testLogger())
}

// currentStock reads the stock quantity directly.
func currentStock(t *testing.T, db *gorm.DB) int {
	t.Helper()
	var stock model.StockLevel
	require.NoError(t, db.First(&stock, model.StockLevelID).Error)
	return stock.Quantity
}
