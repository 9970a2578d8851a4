package listings

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mmattyV/scentra-backend/pkg/db/models"
	"github.com/mmattyV/scentra-backend/pkg/enums"
	"github.com/mmattyV/scentra-backend/pkg/pagination"
)

func setupListingsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// A unique DSN per test keeps the unfiltered browse assertions from
	// seeing rows seeded by a sibling test.
	db, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	fragrances := `
CREATE TABLE IF NOT EXISTS fragrances (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  brand TEXT NOT NULL,
  description TEXT,
  image_key TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	listings := `
CREATE TABLE IF NOT EXISTS listings (
  id TEXT PRIMARY KEY,
  seller_id TEXT NOT NULL,
  fragrance_id TEXT NOT NULL,
  bottle_size TEXT NOT NULL,
  condition TEXT NOT NULL,
  percent_remaining INTEGER,
  has_original_box INTEGER NOT NULL DEFAULT 0,
  batch_code TEXT,
  asking_price TEXT NOT NULL,
  image_key TEXT,
  status TEXT NOT NULL DEFAULT 'active',
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(fragrances).Error)
	require.NoError(t, db.Exec(listings).Error)
	return db
}

func seedFragrance(t *testing.T, db *gorm.DB, name, brand string) *models.Fragrance {
	t.Helper()
	fragrance := &models.Fragrance{
		ID:    uuid.New(),
		Name:  name,
		Brand: brand,
	}
	require.NoError(t, db.Create(fragrance).Error)
	return fragrance
}

func buildListing(sellerID, fragranceID uuid.UUID, price string, created time.Time) *models.Listing {
	return &models.Listing{
		ID:          uuid.New(),
		SellerID:    sellerID,
		FragranceID: fragranceID,
		BottleSize:  "50ml",
		Condition:   enums.ListingConditionNew,
		AskingPrice: decimal.RequireFromString(price),
		Status:      enums.ListingStatusActive,
		CreatedAt:   created,
		UpdatedAt:   created,
	}
}

func TestRepositoryListingLifecycle(t *testing.T) {
	db := setupListingsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	sellerID := uuid.New()
	fragrance := seedFragrance(t, db, "Oud Wood", "Tom Ford")

	created, err := repo.Create(ctx, buildListing(sellerID, fragrance.ID, "120.00", time.Now().UTC()))
	require.NoError(t, err)

	found, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, sellerID, found.SellerID)
	assert.True(t, found.AskingPrice.Equal(decimal.RequireFromString("120.00")))
	assert.Equal(t, enums.ListingStatusActive, found.Status)

	found.AskingPrice = decimal.RequireFromString("95.00")
	_, err = repo.Update(ctx, found)
	require.NoError(t, err)

	reloaded, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.AskingPrice.Equal(decimal.RequireFromString("95.00")))

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	mine, err := repo.ListBySeller(ctx, sellerID)
	require.NoError(t, err)
	require.Len(t, mine, 1)

	other, err := repo.ListBySeller(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestRepositoryUpdateStatusIf(t *testing.T) {
	db := setupListingsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	fragrance := seedFragrance(t, db, "Aventus", "Creed")
	created, err := repo.Create(ctx, buildListing(uuid.New(), fragrance.ID, "300.00", time.Now().UTC()))
	require.NoError(t, err)

	ok, err := repo.UpdateStatusIf(ctx, nil, created.ID, enums.ListingStatusActive, enums.ListingStatusOnHold)
	require.NoError(t, err)
	assert.True(t, ok)

	reloaded, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.ListingStatusOnHold, reloaded.Status)

	// The guard no longer matches, so a repeat flip must not apply.
	ok, err = repo.UpdateStatusIf(ctx, nil, created.ID, enums.ListingStatusActive, enums.ListingStatusOnHold)
	require.NoError(t, err)
	assert.False(t, ok)

	reloaded, err = repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.ListingStatusOnHold, reloaded.Status)

	ok, err = repo.UpdateStatusIf(ctx, nil, uuid.New(), enums.ListingStatusActive, enums.ListingStatusOnHold)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRepositoryListSummaries(t *testing.T) {
	db := setupListingsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	oud := seedFragrance(t, db, "Oud Wood", "Tom Ford")
	aventus := seedFragrance(t, db, "Aventus", "Creed")

	sellerID := uuid.New()
	base := time.Now().UTC().Add(-time.Hour)

	var seeded []*models.Listing
	for i := 0; i < 3; i++ {
		listing := buildListing(sellerID, oud.ID, "100.00", base.Add(time.Duration(i)*time.Minute))
		_, err := repo.Create(ctx, listing)
		require.NoError(t, err)
		seeded = append(seeded, listing)
	}
	pricey := buildListing(uuid.New(), aventus.ID, "450.00", base.Add(10*time.Minute))
	_, err := repo.Create(ctx, pricey)
	require.NoError(t, err)
	held := buildListing(uuid.New(), aventus.ID, "200.00", base.Add(11*time.Minute))
	held.Status = enums.ListingStatusOnHold
	_, err = repo.Create(ctx, held)
	require.NoError(t, err)

	page, err := repo.ListSummaries(ctx, ListListingsInput{Pagination: pagination.Params{Limit: 3}})
	require.NoError(t, err)
	require.Len(t, page.Listings, 3)
	require.NotEmpty(t, page.NextCursor)
	// Newest first; the join fills catalog fields.
	assert.Equal(t, held.ID, page.Listings[0].ID)
	assert.Equal(t, "Aventus", page.Listings[0].FragranceName)
	assert.Equal(t, "Creed", page.Listings[0].Brand)

	rest, err := repo.ListSummaries(ctx, ListListingsInput{
		Pagination: pagination.Params{Limit: 3, Cursor: page.NextCursor},
	})
	require.NoError(t, err)
	require.Len(t, rest.Listings, 2)
	assert.Empty(t, rest.NextCursor)

	active := enums.ListingStatusActive
	filtered, err := repo.ListSummaries(ctx, ListListingsInput{
		Pagination: pagination.Params{Limit: 10},
		Filters:    ListingListFilters{Status: &active},
	})
	require.NoError(t, err)
	assert.Len(t, filtered.Listings, 4)

	bySeller, err := repo.ListSummaries(ctx, ListListingsInput{
		Pagination: pagination.Params{Limit: 10},
		Filters:    ListingListFilters{SellerID: &sellerID},
	})
	require.NoError(t, err)
	assert.Len(t, bySeller.Listings, 3)

	maxPrice := decimal.RequireFromString("250.00")
	cheap, err := repo.ListSummaries(ctx, ListListingsInput{
		Pagination: pagination.Params{Limit: 10},
		Filters:    ListingListFilters{PriceMax: &maxPrice},
	})
	require.NoError(t, err)
	assert.Len(t, cheap.Listings, 4)

	search, err := repo.ListSummaries(ctx, ListListingsInput{
		Pagination: pagination.Params{Limit: 10},
		Filters:    ListingListFilters{Query: "creed"},
	})
	require.NoError(t, err)
	assert.Len(t, search.Listings, 2)

	_, err = repo.ListSummaries(ctx, ListListingsInput{
		Pagination: pagination.Params{Limit: 10, Cursor: "not-a-cursor"},
	})
	assert.Error(t, err)
}
