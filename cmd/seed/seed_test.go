package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/arraiapos/pos/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, models.Migrate(db))
	return db
}

func TestLoadFixture_Bundled(t *testing.T) {
	f, err := LoadFixture("fixtures.yaml")
	require.NoError(t, err)

	assert.NotEmpty(t, f.Categories)
	assert.NotEmpty(t, f.Products)
	require.NotNil(t, f.SiteConfig)
	require.NotNil(t, f.SiteConfig.EventDate)
	assert.Equal(t, 2026, f.SiteConfig.EventDate.Year())
}

func TestLoadFixture_Errors(t *testing.T) {
	_, err := LoadFixture(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("products: [unterminated"), 0o600))
	_, err = LoadFixture(bad)
	assert.Error(t, err)
}

func TestApply_Idempotent(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	f, err := LoadFixture("fixtures.yaml")
	require.NoError(t, err)

	res, err := Apply(ctx, db, f)
	require.NoError(t, err)
	assert.Equal(t, len(f.Categories), res.Categories)
	assert.Equal(t, len(f.Products), res.Products)
	assert.True(t, res.SiteConfig)

	_, err = Apply(ctx, db, f)
	require.NoError(t, err)

	var categories, products, configs int64
	require.NoError(t, db.Model(&models.Category{}).Count(&categories).Error)
	require.NoError(t, db.Model(&models.Product{}).Count(&products).Error)
	require.NoError(t, db.Model(&models.SiteConfig{}).Count(&configs).Error)
	assert.Equal(t, int64(len(f.Categories)), categories)
	assert.Equal(t, int64(len(f.Products)), products)
	assert.Equal(t, int64(1), configs)
}

func TestApply_UpdatesExistingRows(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	first := &Fixture{
		Categories: []CategoryFixture{{Name: "Bebidas"}},
		Products:   []ProductFixture{{Name: "Quentão", Price: "8", Stock: 10, Category: "Bebidas"}},
	}
	_, err := Apply(ctx, db, first)
	require.NoError(t, err)

	inactive := false
	second := &Fixture{
		Categories: []CategoryFixture{{Name: "Bebidas"}},
		Products:   []ProductFixture{{Name: "Quentão", Price: "9.50", Stock: 4, Active: &inactive}},
	}
	_, err = Apply(ctx, db, second)
	require.NoError(t, err)

	var p models.Product
	require.NoError(t, db.Where("name = ?", "Quentão").First(&p).Error)
	assert.True(t, decimal.RequireFromString("9.5").Equal(p.Price), p.Price.String())
	assert.Equal(t, 4, p.Stock)
	assert.False(t, p.Active)
	assert.Nil(t, p.CategoryID)
}

func TestApply_Invalid(t *testing.T) {
	testCases := []struct {
		name    string
		fixture *Fixture
	}{
		{name: "Bad price", fixture: &Fixture{Products: []ProductFixture{{Name: "X", Price: "abc"}}}},
		{name: "Negative price", fixture: &Fixture{Products: []ProductFixture{{Name: "X", Price: "-1"}}}},
		{name: "Negative stock", fixture: &Fixture{Products: []ProductFixture{{Name: "X", Price: "1", Stock: -1}}}},
		{name: "Unknown category", fixture: &Fixture{Products: []ProductFixture{{Name: "X", Price: "1", Category: "Nope"}}}},
		{name: "Unnamed category", fixture: &Fixture{Categories: []CategoryFixture{{Icon: "x"}}}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			db := newTestDB(t)
			_, err := Apply(context.Background(), db, tc.fixture)
			assert.Error(t, err)

			var products int64
			require.NoError(t, db.Model(&models.Product{}).Count(&products).Error)
			assert.Zero(t, products)
		})
	}
}
