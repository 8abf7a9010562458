package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/vibhu2208/Aadhar-Homes/internal/config"
	"github.com/vibhu2208/Aadhar-Homes/internal/db"
	"github.com/vibhu2208/Aadhar-Homes/internal/models"
	"github.com/vibhu2208/Aadhar-Homes/internal/query"
	"github.com/vibhu2208/Aadhar-Homes/internal/utils"
)

func setupListingTestDB(t *testing.T, dbName string) *mongo.Database {
	database := utils.SetupTestDB(t, dbName, "listings", "accounts", "system")
	// Text search and the unique slug constraint need the real indexes.
	require.NoError(t, db.EnsureIndexes(context.Background(), database))
	return database
}

func listingTestConfig() *config.Config {
	return &config.Config{
		DefaultPageSize:    10,
		MaxPageSize:        100,
		UpcomingWindowDays: 30,
		StatsCacheTTL:      5 * time.Minute,
	}
}

func newProject(name, city, status string, minPrice, maxPrice float64) *models.Listing {
	return &models.Listing{
		Name:     name,
		Address:  "Sector 79, " + city,
		Type:     "Residential",
		City:     city,
		Builder:  "ACME Developers",
		Status:   status,
		MinPrice: &minPrice,
		MaxPrice: &maxPrice,
	}
}

func newLaunch(name, city string, launch time.Time) *models.Listing {
	d := models.NewDate(launch)
	return &models.Listing{
		Name:          name,
		Address:       "Sector 12, " + city,
		Type:          "Residential",
		City:          city,
		Builder:       "ACME Developers",
		LaunchingDate: &d,
	}
}

func TestListingService_CreateAppliesDefaults(t *testing.T) {
	database := setupListingTestDB(t, "testdb_listing_create_defaults")
	svc := NewListingService(database, nil, listingTestConfig())
	ctx := context.Background()

	created, err := svc.Create(ctx, models.CategoryProject, newProject("Skyline Towers", "Pune", "", 50, 120))
	require.NoError(t, err)

	assert.False(t, created.ID.IsZero())
	assert.Equal(t, models.CategoryProject, created.Category)
	assert.Equal(t, "India", created.Country)
	assert.Equal(t, "False", created.Luxury)
	assert.Equal(t, "False", created.Spotlight)
	assert.Equal(t, "Under Construction", created.Status)
	assert.Equal(t, "skyline-towers", created.Slug)
	assert.False(t, created.CreatedAt.IsZero())
	assert.Nil(t, created.IsActive, "projects carry no active flag")
}

func TestListingService_CreateNewLaunchDefaults(t *testing.T) {
	database := setupListingTestDB(t, "testdb_listing_create_launch")
	svc := NewListingService(database, nil, listingTestConfig())
	ctx := context.Background()

	created, err := svc.Create(ctx, models.CategoryNewLaunch, newLaunch("Emerald Heights", "Gurgaon", time.Now().AddDate(0, 0, 10)))
	require.NoError(t, err)

	assert.Equal(t, models.CategoryNewLaunch, created.Category)
	assert.Equal(t, "Pre-Launch", created.Status)
	require.NotNil(t, created.IsActive)
	assert.True(t, *created.IsActive)
}

func TestListingService_CreateValidationMessages(t *testing.T) {
	database := setupListingTestDB(t, "testdb_listing_create_invalid")
	svc := NewListingService(database, nil, listingTestConfig())
	ctx := context.Background()

	_, err := svc.Create(ctx, models.CategoryNewLaunch, &models.Listing{})
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
	assert.Equal(t,
		"Project name is required, Project address is required, Project type is required, City is required, Builder name is required, Launching date is required for new launches",
		err.Error())
}

func TestListingService_CreateDuplicateSlug(t *testing.T) {
	database := setupListingTestDB(t, "testdb_listing_create_dup")
	svc := NewListingService(database, nil, listingTestConfig())
	ctx := context.Background()

	_, err := svc.Create(ctx, models.CategoryProject, newProject("Skyline Towers", "Pune", "", 50, 120))
	require.NoError(t, err)

	// Same name derives the same slug, which the unique index rejects.
	_, err = svc.Create(ctx, models.CategoryProject, newProject("Skyline Towers", "Mumbai", "", 60, 130))
	require.Error(t, err)
	assert.True(t, IsDuplicateFieldError(err))
	assert.Equal(t, "project_url already exists", err.Error())
}

func TestListingService_ListFiltersConjunctively(t *testing.T) {
	database := setupListingTestDB(t, "testdb_listing_list_filters")
	svc := NewListingService(database, nil, listingTestConfig())
	ctx := context.Background()

	_, err := svc.Create(ctx, models.CategoryProject, newProject("Pune Cheap", "Pune", "", 30, 60))
	require.NoError(t, err)
	_, err = svc.Create(ctx, models.CategoryProject, newProject("Pune Mid", "Pune", "", 80, 150))
	require.NoError(t, err)
	_, err = svc.Create(ctx, models.CategoryProject, newProject("Mumbai Mid", "Mumbai", "", 80, 150))
	require.NoError(t, err)

	minPrice := 75.0
	params := ListParams{
		City:     "pune", // substring match is case-insensitive
		MinPrice: &minPrice,
		Page:     query.Page{Number: 1, Size: 10},
	}
	listings, total, err := svc.List(ctx, models.CategoryProject, params)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, listings, 1)
	assert.Equal(t, "Pune Mid", listings[0].Name)
}

func TestListingService_ListPagination(t *testing.T) {
	database := setupListingTestDB(t, "testdb_listing_list_pages")
	svc := NewListingService(database, nil, listingTestConfig())
	ctx := context.Background()

	names := []string{"Alpha One", "Beta Two", "Gamma Three", "Delta Four", "Epsilon Five"}
	for _, name := range names {
		_, err := svc.Create(ctx, models.CategoryProject, newProject(name, "Pune", "", 50, 120))
		require.NoError(t, err)
	}

	page := query.Page{Number: 2, Size: 2}
	listings, total, err := svc.List(ctx, models.CategoryProject, ListParams{Page: page})
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
	assert.Len(t, listings, 2)
	assert.Equal(t, 3, page.TotalPages(total))

	// A page past the end is empty, with the total unchanged.
	beyond := query.Page{Number: 99, Size: 2}
	listings, total, err = svc.List(ctx, models.CategoryProject, ListParams{Page: beyond})
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
	assert.Empty(t, listings)
}

func TestListingService_ListSortByPrice(t *testing.T) {
	database := setupListingTestDB(t, "testdb_listing_list_sort")
	svc := NewListingService(database, nil, listingTestConfig())
	ctx := context.Background()

	_, err := svc.Create(ctx, models.CategoryProject, newProject("Cheap Flats", "Pune", "", 30, 60))
	require.NoError(t, err)
	_, err = svc.Create(ctx, models.CategoryProject, newProject("Posh Villas", "Pune", "", 200, 400))
	require.NoError(t, err)

	listings, _, err := svc.List(ctx, models.CategoryProject, ListParams{
		SortBy:    "minPrice",
		SortOrder: "desc",
		Page:      query.Page{Number: 1, Size: 10},
	})
	require.NoError(t, err)
	require.Len(t, listings, 2)
	assert.Equal(t, "Posh Villas", listings[0].Name)
}

func TestListingService_CategoriesAreSeparate(t *testing.T) {
	database := setupListingTestDB(t, "testdb_listing_categories")
	svc := NewListingService(database, nil, listingTestConfig())
	ctx := context.Background()

	project, err := svc.Create(ctx, models.CategoryProject, newProject("Skyline Towers", "Pune", "", 50, 120))
	require.NoError(t, err)
	_, err = svc.Create(ctx, models.CategoryNewLaunch, newLaunch("Emerald Heights", "Pune", time.Now().AddDate(0, 0, 10)))
	require.NoError(t, err)

	_, total, err := svc.List(ctx, models.CategoryProject, ListParams{Page: query.Page{Number: 1, Size: 10}})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)

	// A project ID does not resolve under the other category.
	_, err = svc.FindByID(ctx, models.CategoryNewLaunch, project.ID)
	assert.ErrorIs(t, err, mongo.ErrNoDocuments)
}

func TestListingService_InactiveLaunchesHidden(t *testing.T) {
	database := setupListingTestDB(t, "testdb_listing_inactive")
	svc := NewListingService(database, nil, listingTestConfig())
	ctx := context.Background()

	inactive := false
	launch := newLaunch("Paused Launch", "Pune", time.Now().AddDate(0, 0, 10))
	launch.IsActive = &inactive
	created, err := svc.Create(ctx, models.CategoryNewLaunch, launch)
	require.NoError(t, err)

	_, total, err := svc.List(ctx, models.CategoryNewLaunch, ListParams{Page: query.Page{Number: 1, Size: 10}})
	require.NoError(t, err)
	assert.EqualValues(t, 0, total)

	_, err = svc.FindByID(ctx, models.CategoryNewLaunch, created.ID)
	assert.Error(t, err)
}

func TestListingService_Search(t *testing.T) {
	database := setupListingTestDB(t, "testdb_listing_search")
	svc := NewListingService(database, nil, listingTestConfig())
	ctx := context.Background()

	_, err := svc.Create(ctx, models.CategoryProject, newProject("Skyline Towers", "Pune", "", 50, 120))
	require.NoError(t, err)
	_, err = svc.Create(ctx, models.CategoryProject, newProject("Palm Court", "Mumbai", "", 80, 150))
	require.NoError(t, err)

	page := query.Page{Number: 1, Size: 10}
	listings, total, err := svc.Search(ctx, models.CategoryProject, "Skyline", page)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, listings, 1)
	assert.Equal(t, "Skyline Towers", listings[0].Name)

	// No matches is a success with an empty result, not an error.
	listings, total, err = svc.Search(ctx, models.CategoryProject, "zzzunmatched", page)
	require.NoError(t, err)
	assert.EqualValues(t, 0, total)
	assert.Empty(t, listings)
}

func TestListingService_Upcoming(t *testing.T) {
	database := setupListingTestDB(t, "testdb_listing_upcoming")
	svc := NewListingService(database, nil, listingTestConfig())
	ctx := context.Background()

	_, err := svc.Create(ctx, models.CategoryNewLaunch, newLaunch("Soon Launch", "Pune", time.Now().AddDate(0, 0, 7)))
	require.NoError(t, err)
	_, err = svc.Create(ctx, models.CategoryNewLaunch, newLaunch("Far Launch", "Pune", time.Now().AddDate(0, 0, 90)))
	require.NoError(t, err)
	_, err = svc.Create(ctx, models.CategoryNewLaunch, newLaunch("Past Launch", "Pune", time.Now().AddDate(0, 0, -7)))
	require.NoError(t, err)

	listings, err := svc.Upcoming(ctx, 10)
	require.NoError(t, err)
	require.Len(t, listings, 1)
	assert.Equal(t, "Soon Launch", listings[0].Name)
}

func TestListingService_UpdateRederivesSlug(t *testing.T) {
	database := setupListingTestDB(t, "testdb_listing_update_slug")
	svc := NewListingService(database, nil, listingTestConfig())
	ctx := context.Background()

	created, err := svc.Create(ctx, models.CategoryProject, newProject("Skyline Towers", "Pune", "", 50, 120))
	require.NoError(t, err)

	updated, err := svc.Update(ctx, models.CategoryProject, created.ID, map[string]interface{}{
		"projectName": "Skyline Towers Phase 2",
	})
	require.NoError(t, err)
	assert.Equal(t, "Skyline Towers Phase 2", updated.Name)
	assert.Equal(t, "skyline-towers-phase-2", updated.Slug)
}

func TestListingService_UpdateDropsUnknownFields(t *testing.T) {
	database := setupListingTestDB(t, "testdb_listing_update_unknown")
	svc := NewListingService(database, nil, listingTestConfig())
	ctx := context.Background()

	created, err := svc.Create(ctx, models.CategoryProject, newProject("Skyline Towers", "Pune", "", 50, 120))
	require.NoError(t, err)

	updated, err := svc.Update(ctx, models.CategoryProject, created.ID, map[string]interface{}{
		"city":        "Mumbai",
		"schema_type": "newlaunch", // must not be reachable through updates
		"_id":         "whatever",
	})
	require.NoError(t, err)
	assert.Equal(t, "Mumbai", updated.City)
	assert.Equal(t, models.CategoryProject, updated.Category)
}

func TestListingService_UpdateRejectsInvalidStatus(t *testing.T) {
	database := setupListingTestDB(t, "testdb_listing_update_status")
	svc := NewListingService(database, nil, listingTestConfig())
	ctx := context.Background()

	created, err := svc.Create(ctx, models.CategoryProject, newProject("Skyline Towers", "Pune", "", 50, 120))
	require.NoError(t, err)

	_, err = svc.Update(ctx, models.CategoryProject, created.ID, map[string]interface{}{
		"project_Status": "Imaginary",
	})
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
}

func TestListingService_UpdateRejectsEmptyRequiredField(t *testing.T) {
	database := setupListingTestDB(t, "testdb_listing_update_required")
	svc := NewListingService(database, nil, listingTestConfig())
	ctx := context.Background()

	created, err := svc.Create(ctx, models.CategoryProject, newProject("Skyline Towers", "Pune", "", 50, 120))
	require.NoError(t, err)

	_, err = svc.Update(ctx, models.CategoryProject, created.ID, map[string]interface{}{
		"projectName": "",
	})
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
	assert.Equal(t, "Project name is required", err.Error())

	// The rejected update must not have touched the document.
	found, err := svc.FindByID(ctx, models.CategoryProject, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Skyline Towers", found.Name)
}

func TestListingService_UpdateRejectsMistypedValues(t *testing.T) {
	database := setupListingTestDB(t, "testdb_listing_update_mistyped")
	svc := NewListingService(database, nil, listingTestConfig())
	ctx := context.Background()

	created, err := svc.Create(ctx, models.CategoryProject, newProject("Skyline Towers", "Pune", "", 50, 120))
	require.NoError(t, err)

	_, err = svc.Update(ctx, models.CategoryProject, created.ID, map[string]interface{}{
		"minPrice": "cheap",
	})
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
	assert.Equal(t, "Invalid value for minPrice", err.Error())

	// Structured fields are shape-checked too.
	_, err = svc.Update(ctx, models.CategoryProject, created.ID, map[string]interface{}{
		"frontImage": "just-a-string",
	})
	require.Error(t, err)
	assert.True(t, IsValidationError(err))

	// Nothing bad was stored: reads must still decode.
	listings, total, err := svc.List(ctx, models.CategoryProject, ListParams{Page: query.Page{Number: 1, Size: 10}})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, listings, 1)
	require.NotNil(t, listings[0].MinPrice)
	assert.InDelta(t, 50, *listings[0].MinPrice, 0.001)
}

func TestListingService_UpdateDuplicateSlug(t *testing.T) {
	database := setupListingTestDB(t, "testdb_listing_update_dup_slug")
	svc := NewListingService(database, nil, listingTestConfig())
	ctx := context.Background()

	_, err := svc.Create(ctx, models.CategoryProject, newProject("Skyline Towers", "Pune", "", 50, 120))
	require.NoError(t, err)
	second, err := svc.Create(ctx, models.CategoryProject, newProject("Harbour View", "Mumbai", "", 80, 150))
	require.NoError(t, err)

	// findAndModify reports the collision differently than an insert does;
	// the caller must still get the field-level error.
	_, err = svc.Update(ctx, models.CategoryProject, second.ID, map[string]interface{}{
		"project_url": "skyline-towers",
	})
	require.Error(t, err)
	assert.True(t, IsDuplicateFieldError(err))
	assert.Equal(t, "project_url already exists", err.Error())
}

func TestListingService_Delete(t *testing.T) {
	database := setupListingTestDB(t, "testdb_listing_delete")
	svc := NewListingService(database, nil, listingTestConfig())
	ctx := context.Background()

	created, err := svc.Create(ctx, models.CategoryProject, newProject("Skyline Towers", "Pune", "", 50, 120))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, models.CategoryProject, created.ID))

	_, err = svc.FindByID(ctx, models.CategoryProject, created.ID)
	assert.ErrorIs(t, err, mongo.ErrNoDocuments)

	// Deleting again reports not found.
	err = svc.Delete(ctx, models.CategoryProject, created.ID)
	assert.ErrorIs(t, err, mongo.ErrNoDocuments)
}

func TestListingService_Stats(t *testing.T) {
	database := setupListingTestDB(t, "testdb_listing_stats")
	svc := NewListingService(database, nil, listingTestConfig())
	ctx := context.Background()

	_, err := svc.Create(ctx, models.CategoryProject, newProject("Pune One", "Pune", "Under Construction", 40, 80))
	require.NoError(t, err)
	_, err = svc.Create(ctx, models.CategoryProject, newProject("Pune Two", "Pune", "Ready to Move", 60, 120))
	require.NoError(t, err)
	_, err = svc.Create(ctx, models.CategoryProject, newProject("Mumbai One", "Mumbai", "Under Construction", 100, 200))
	require.NoError(t, err)

	stats, err := svc.Stats(ctx, models.CategoryProject)
	require.NoError(t, err)
	assert.EqualValues(t, 3, stats.Overview.TotalListings)
	require.NotNil(t, stats.Overview.AvgMinPrice)
	assert.InDelta(t, (40.0+60.0+100.0)/3, *stats.Overview.AvgMinPrice, 0.001)

	require.NotEmpty(t, stats.ByStatus)
	assert.Equal(t, "Under Construction", stats.ByStatus[0].Status)
	assert.EqualValues(t, 2, stats.ByStatus[0].Count)

	require.NotEmpty(t, stats.ByCity)
	assert.Equal(t, "Pune", stats.ByCity[0].City)
}

func TestListingService_StatsCountsAllFutureLaunches(t *testing.T) {
	database := setupListingTestDB(t, "testdb_listing_stats_upcoming")
	svc := NewListingService(database, nil, listingTestConfig())
	ctx := context.Background()

	_, err := svc.Create(ctx, models.CategoryNewLaunch, newLaunch("Soon Launch", "Pune", time.Now().AddDate(0, 0, 7)))
	require.NoError(t, err)
	_, err = svc.Create(ctx, models.CategoryNewLaunch, newLaunch("Next Year Launch", "Pune", time.Now().AddDate(1, 1, 0)))
	require.NoError(t, err)
	_, err = svc.Create(ctx, models.CategoryNewLaunch, newLaunch("Past Launch", "Pune", time.Now().AddDate(0, 0, -7)))
	require.NoError(t, err)

	stats, err := svc.Stats(ctx, models.CategoryNewLaunch)
	require.NoError(t, err)

	// Unlike the /upcoming endpoint, the dashboard count is not bounded to
	// the 30-day window: both future launches count.
	require.NotNil(t, stats.UpcomingCount)
	assert.EqualValues(t, 2, *stats.UpcomingCount)
}
