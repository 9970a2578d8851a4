package fragrances

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	pkgerrors "github.com/mmattyV/scentra-backend/pkg/errors"
)

func setupFragrancesTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS fragrances (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  brand TEXT NOT NULL,
  description TEXT,
  image_key TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func newCatalogService(t *testing.T) Service {
	t.Helper()
	svc, err := NewService(NewRepository(setupFragrancesTestDB(t)))
	require.NoError(t, err)
	return svc
}

func TestCreateAndGetFragrance(t *testing.T) {
	svc := newCatalogService(t)
	ctx := context.Background()

	created, err := svc.CreateFragrance(ctx, CreateFragranceInput{
		Name:  "  Oud Wood ",
		Brand: "Tom Ford",
	})
	require.NoError(t, err)
	assert.Equal(t, "Oud Wood", created.Name, "name is trimmed")
	require.NotEqual(t, uuid.Nil, created.ID)

	found, err := svc.GetFragrance(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Tom Ford", found.Brand)

	_, err = svc.GetFragrance(ctx, uuid.New())
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestCreateFragranceValidation(t *testing.T) {
	svc := newCatalogService(t)
	ctx := context.Background()

	for _, input := range []CreateFragranceInput{
		{Name: "  ", Brand: "Creed"},
		{Name: "Aventus", Brand: ""},
	} {
		_, err := svc.CreateFragrance(ctx, input)
		typed := pkgerrors.As(err)
		require.NotNil(t, typed)
		assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	}
}

func TestSearchFragrances(t *testing.T) {
	svc := newCatalogService(t)
	ctx := context.Background()

	seed := []CreateFragranceInput{
		{Name: "Oud Wood", Brand: "Tom Ford"},
		{Name: "Tobacco Vanille", Brand: "Tom Ford"},
		{Name: "Aventus", Brand: "Creed"},
	}
	for _, input := range seed {
		_, err := svc.CreateFragrance(ctx, input)
		require.NoError(t, err)
	}

	byBrand, err := svc.SearchFragrances(ctx, "tom ford", 10)
	require.NoError(t, err)
	require.Len(t, byBrand, 2)
	// Ordered by brand then name.
	assert.Equal(t, "Oud Wood", byBrand[0].Name)
	assert.Equal(t, "Tobacco Vanille", byBrand[1].Name)

	byName, err := svc.SearchFragrances(ctx, "aventus", 10)
	require.NoError(t, err)
	require.Len(t, byName, 1)
	assert.Equal(t, "Creed", byName[0].Brand)

	none, err := svc.SearchFragrances(ctx, "santal", 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}
