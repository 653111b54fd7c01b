package models

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSiteConfigRepository(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewSiteConfigRepository(db)

	_, err := repo.GetConfig(ctx)
	assert.ErrorIs(t, err, ErrConfigNotFound)

	cfg := &SiteConfig{Location: "Quadra", HeroTitle: "Arraiá"}
	require.NoError(t, repo.SaveConfig(ctx, cfg))
	require.NotEqual(t, uuid.Nil, cfg.ID)

	got, err := repo.GetConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Quadra", got.Location)
	assert.Nil(t, got.EventDate)

	event := time.Date(2026, 6, 27, 21, 0, 0, 0, time.UTC)
	updated, err := repo.UpdateConfig(ctx, cfg.ID, &SiteConfig{
		Location:     "Praça",
		HeroTitle:    "Arraiá 2026",
		EventDate:    &event,
		PrimaryColor: "#f97316",
	})
	require.NoError(t, err)
	assert.Equal(t, cfg.ID, updated.ID)
	assert.Equal(t, "Praça", updated.Location)
	assert.Equal(t, "#f97316", updated.PrimaryColor)
	require.NotNil(t, updated.EventDate)
	assert.True(t, event.Equal(*updated.EventDate))

	_, err = repo.UpdateConfig(ctx, uuid.New(), &SiteConfig{Location: "x"})
	assert.ErrorIs(t, err, ErrConfigNotFound)
}
