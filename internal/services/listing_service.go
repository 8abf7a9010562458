package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/vibhu2208/Aadhar-Homes/internal/config"
	"github.com/vibhu2208/Aadhar-Homes/internal/db"
	"github.com/vibhu2208/Aadhar-Homes/internal/models"
	"github.com/vibhu2208/Aadhar-Homes/internal/query"
	"github.com/vibhu2208/Aadhar-Homes/internal/utils"
)

// ListParams are the supported filter, sort and pagination parameters for
// listing collection queries.
type ListParams struct {
	City      string
	Type      string
	Status    string
	Builder   string
	Luxury    string
	Spotlight string

	MinPrice *float64
	MaxPrice *float64

	LaunchFrom *time.Time
	LaunchTo   *time.Time

	SortBy    string
	SortOrder string

	Page query.Page
}

// IListingService defines the interface for listing-related operations.
type IListingService interface {
	List(ctx context.Context, category models.Category, params ListParams) ([]models.Listing, int64, error)
	Search(ctx context.Context, category models.Category, q string, page query.Page) ([]models.Listing, int64, error)
	Upcoming(ctx context.Context, limit int) ([]models.Listing, error)
	FindByID(ctx context.Context, category models.Category, id utils.SixID) (*models.Listing, error)
	Create(ctx context.Context, category models.Category, listing *models.Listing) (*models.Listing, error)
	Update(ctx context.Context, category models.Category, id utils.SixID, updates map[string]interface{}) (*models.Listing, error)
	Delete(ctx context.Context, category models.Category, id utils.SixID) error
	Stats(ctx context.Context, category models.Category) (*models.ListingStats, error)
	RefreshStats(ctx context.Context, category models.Category) (*models.ListingStats, error)
	SetThumbnail(ctx context.Context, category models.Category, id utils.SixID, asset models.MediaAsset) error
}

const listingsCollection = "listings"

// listingService implements IListingService.
type listingService struct {
	db       *mongo.Database
	rdb      *redis.Client
	cfg      *config.Config
	validate *validator.Validate
}

// NewListingService creates a new ListingService. rdb may be nil, in which
// case stats are computed on every request instead of served from cache.
func NewListingService(database *mongo.Database, rdb *redis.Client, cfg *config.Config) IListingService {
	return &listingService{
		db:       database,
		rdb:      rdb,
		cfg:      cfg,
		validate: validator.New(),
	}
}

// baseFilter is the category gate every listing query starts from. Inactive
// new launches are hidden from all reads; projects have no such flag.
func baseFilter(category models.Category) []query.Clause {
	clauses := []query.Clause{query.Exact("schema_type", string(category))}
	if category == models.CategoryNewLaunch {
		clauses = append(clauses, query.Exact("isActive", true))
	}
	return clauses
}

func (s *listingService) buildFilter(category models.Category, params ListParams) bson.M {
	clauses := baseFilter(category)
	clauses = append(clauses,
		query.Substring("city", params.City),
		query.Substring("type", params.Type),
		query.Substring("builderName", params.Builder),
		query.Exact("project_Status", params.Status),
		query.Exact("luxury", params.Luxury),
		query.Exact("spotlight", params.Spotlight),
		query.Min("minPrice", params.MinPrice),
		query.Max("maxPrice", params.MaxPrice),
	)
	if params.LaunchFrom != nil {
		clauses = append(clauses, query.Min("launchingDate", *params.LaunchFrom))
	}
	if params.LaunchTo != nil {
		clauses = append(clauses, query.Max("launchingDate", *params.LaunchTo))
	}
	return query.And(clauses...)
}

func defaultSort(category models.Category) bson.D {
	if category == models.CategoryNewLaunch {
		return bson.D{{Key: "priority", Value: -1}, {Key: "launchingDate", Value: 1}}
	}
	return bson.D{{Key: "createdAt", Value: -1}}
}

// List returns one page of listings matching the filter plus the total match
// count across all pages.
func (s *listingService) List(ctx context.Context, category models.Category, params ListParams) ([]models.Listing, int64, error) {
	collection := s.db.Collection(listingsCollection)
	filter := s.buildFilter(category, params)

	total, err := collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count listings: %w", err)
	}

	opts := options.Find().
		SetSort(query.ResolveSort(params.SortBy, params.SortOrder, defaultSort(category))).
		SetSkip(params.Page.Skip()).
		SetLimit(params.Page.Limit())

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query listings: %w", err)
	}
	defer cursor.Close(ctx)

	var listings []models.Listing
	if err := cursor.All(ctx, &listings); err != nil {
		return nil, 0, fmt.Errorf("failed to decode listings: %w", err)
	}
	return listings, total, nil
}

// Search runs a full-text query over the category's listings, ranked by
// text score.
func (s *listingService) Search(ctx context.Context, category models.Category, q string, page query.Page) ([]models.Listing, int64, error) {
	collection := s.db.Collection(listingsCollection)

	clauses := append(baseFilter(category), query.Text(q))
	filter := query.And(clauses...)

	total, err := collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count search results: %w", err)
	}

	opts := options.Find().
		SetProjection(bson.M{"score": bson.M{"$meta": "textScore"}}).
		SetSort(bson.D{{Key: "score", Value: bson.M{"$meta": "textScore"}}}).
		SetSkip(page.Skip()).
		SetLimit(page.Limit())

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search listings: %w", err)
	}
	defer cursor.Close(ctx)

	var listings []models.Listing
	if err := cursor.All(ctx, &listings); err != nil {
		return nil, 0, fmt.Errorf("failed to decode search results: %w", err)
	}
	return listings, total, nil
}

// Upcoming returns active new launches whose launch date falls within the
// configured window from now, soonest first.
func (s *listingService) Upcoming(ctx context.Context, limit int) ([]models.Listing, error) {
	collection := s.db.Collection(listingsCollection)

	now := time.Now().UTC()
	windowEnd := now.AddDate(0, 0, s.cfg.UpcomingWindowDays)

	clauses := append(baseFilter(models.CategoryNewLaunch),
		query.Min("launchingDate", now),
		query.Max("launchingDate", windowEnd),
	)

	opts := options.Find().
		SetSort(bson.D{{Key: "launchingDate", Value: 1}, {Key: "priority", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := collection.Find(ctx, query.And(clauses...), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query upcoming launches: %w", err)
	}
	defer cursor.Close(ctx)

	var listings []models.Listing
	if err := cursor.All(ctx, &listings); err != nil {
		return nil, fmt.Errorf("failed to decode upcoming launches: %w", err)
	}
	return listings, nil
}

// FindByID returns a listing of the given category or mongo.ErrNoDocuments.
func (s *listingService) FindByID(ctx context.Context, category models.Category, id utils.SixID) (*models.Listing, error) {
	collection := s.db.Collection(listingsCollection)

	var listing models.Listing
	err := collection.FindOne(ctx, bson.M{"_id": id, "schema_type": category}).Decode(&listing)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, mongo.ErrNoDocuments
		}
		return nil, fmt.Errorf("error finding listing %s: %w", id.String(), err)
	}
	return &listing, nil
}

// requiredMessages maps missing required fields to client-facing messages,
// in the order they appear in the response.
var requiredMessages = []struct {
	field   string
	message string
}{
	{"Name", "Project name is required"},
	{"Address", "Project address is required"},
	{"Type", "Project type is required"},
	{"City", "City is required"},
	{"Builder", "Builder name is required"},
}

func (s *listingService) validateListing(category models.Category, listing *models.Listing) error {
	var messages []string

	if err := s.validate.Struct(listing); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			failed := make(map[string]bool, len(verrs))
			for _, fe := range verrs {
				failed[fe.StructField()] = true
			}
			for _, rm := range requiredMessages {
				if failed[rm.field] {
					messages = append(messages, rm.message)
				}
			}
		} else {
			return fmt.Errorf("validation failed: %w", err)
		}
	}

	if category == models.CategoryNewLaunch && listing.LaunchingDate == nil {
		messages = append(messages, "Launching date is required for new launches")
	}
	if listing.Status != "" && !category.ValidStatus(listing.Status) {
		messages = append(messages, fmt.Sprintf("Invalid status %q", listing.Status))
	}

	if len(messages) > 0 {
		return &ValidationError{Messages: messages}
	}
	return nil
}

func applyDefaults(category models.Category, listing *models.Listing) {
	listing.Category = category
	if listing.Country == "" {
		listing.Country = "India"
	}
	if listing.Luxury == "" {
		listing.Luxury = "False"
	}
	if listing.Spotlight == "" {
		listing.Spotlight = "False"
	}
	if listing.Status == "" {
		listing.Status = category.DefaultStatus()
	}
	if listing.Slug == "" {
		listing.Slug = utils.Slugify(listing.Name)
	}
	if category == models.CategoryNewLaunch && listing.IsActive == nil {
		active := true
		listing.IsActive = &active
	}
}

// Create validates, defaults and inserts a listing. Inserts retry on _id
// collisions with a fresh ID; a slug collision surfaces as a
// DuplicateFieldError instead.
func (s *listingService) Create(ctx context.Context, category models.Category, listing *models.Listing) (*models.Listing, error) {
	if err := s.validateListing(category, listing); err != nil {
		return nil, err
	}
	applyDefaults(category, listing)

	now := time.Now().UTC()
	listing.CreatedAt = now
	listing.UpdatedAt = now

	collection := s.db.Collection(listingsCollection)
	err := db.Try(func() error {
		listing.GenID()
		_, insertErr := collection.InsertOne(ctx, listing)
		return insertErr
	})
	if err != nil {
		if field := db.DuplicateKeyField(err); field != "" && field != "_id" {
			return nil, &DuplicateFieldError{Field: field}
		}
		return nil, fmt.Errorf("failed to insert listing %q: %w", listing.Name, err)
	}
	return listing, nil
}

// allowedUpdateFields is the set of wire-format field names an update may
// touch. Anything else in the payload is silently dropped.
var allowedUpdateFields = map[string]bool{
	"projectName": true, "projectAddress": true, "project_discripation": true,
	"type": true, "city": true, "state": true, "country": true,
	"builderName": true, "luxury": true, "spotlight": true,
	"project_Status": true, "project_url": true,
	"meta_title": true, "meta_description": true,
	"Amenities": true, "projectBgContent": true, "projectReraNo": true,
	"paymentPlan": true, "AboutDeveloper": true, "projectOverview": true,
	"projectRedefine_Business": true, "projectRedefine_Connectivity": true,
	"projectRedefine_Education": true, "projectRedefine_Entertainment": true,
	"highlight": true, "BhK_Details": true, "about": true,
	"frontImage": true, "thumbnailImage": true, "logo": true,
	"project_locationImage": true, "highlightImage": true,
	"projectMaster_plan": true, "project_Brochure": true,
	"projectGallery": true, "project_floorplan_Image": true,
	"towerNumber": true, "totalUnit": true, "totalLandArea": true,
	"mobileNumber": true, "minPrice": true, "maxPrice": true,
	"launchingDate": true, "possessionDate": true,
	"preBookingAmount": true, "earlyBirdDiscount": true,
	"registrationStartDate": true, "registrationEndDate": true,
	"isActive": true, "priority": true,
}

var dateUpdateFields = map[string]bool{
	"launchingDate": true, "possessionDate": true,
	"registrationStartDate": true, "registrationEndDate": true,
}

// requiredUpdateMessages guards the create-time required fields against being
// emptied or mistyped by a partial update, with the same client-facing
// messages Create uses.
var requiredUpdateMessages = map[string]string{
	"projectName":    "Project name is required",
	"projectAddress": "Project address is required",
	"type":           "Project type is required",
	"city":           "City is required",
	"builderName":    "Builder name is required",
}

var numberUpdateFields = map[string]bool{
	"minPrice": true, "maxPrice": true, "preBookingAmount": true, "priority": true,
}

func numberValue(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// Update applies a partial update and returns the post-update document.
// Renaming a listing re-derives its slug unless the payload sets one
// explicitly.
func (s *listingService) Update(ctx context.Context, category models.Category, id utils.SixID, updates map[string]interface{}) (*models.Listing, error) {
	set := bson.M{}
	var messages []string

	for key, value := range updates {
		if !allowedUpdateFields[key] {
			continue
		}
		if dateUpdateFields[key] {
			str, ok := value.(string)
			if !ok {
				messages = append(messages, fmt.Sprintf("Invalid value for %s", key))
				continue
			}
			parsed, err := models.ParseDate(str)
			if err != nil {
				messages = append(messages, fmt.Sprintf("Invalid date for %s", key))
				continue
			}
			set[key] = parsed.Time
			continue
		}
		if msg, required := requiredUpdateMessages[key]; required {
			str, ok := value.(string)
			if !ok || str == "" {
				messages = append(messages, msg)
				continue
			}
			set[key] = str
			continue
		}
		if numberUpdateFields[key] {
			num, ok := numberValue(value)
			if !ok {
				messages = append(messages, fmt.Sprintf("Invalid value for %s", key))
				continue
			}
			set[key] = num
			continue
		}
		if key == "isActive" {
			b, ok := value.(bool)
			if !ok {
				messages = append(messages, fmt.Sprintf("Invalid value for %s", key))
				continue
			}
			set[key] = b
			continue
		}
		if key == "project_Status" {
			str, _ := value.(string)
			if !category.ValidStatus(str) {
				messages = append(messages, fmt.Sprintf("Invalid status %q", str))
				continue
			}
		}
		set[key] = value
	}

	if len(messages) > 0 {
		return nil, &ValidationError{Messages: messages}
	}

	if name, ok := set["projectName"].(string); ok {
		if _, explicit := set["project_url"]; !explicit {
			set["project_url"] = utils.Slugify(name)
		}
	}
	set["updatedAt"] = time.Now().UTC()

	// Shape-check the patch against the document schema before writing, so a
	// mistyped value can never be stored and break decoding on later reads.
	raw, err := bson.Marshal(set)
	if err != nil {
		return nil, fmt.Errorf("failed to encode update for listing %s: %w", id.String(), err)
	}
	if err := bson.Unmarshal(raw, &models.Listing{}); err != nil {
		return nil, &ValidationError{Messages: []string{"Invalid field value in update"}}
	}

	collection := s.db.Collection(listingsCollection)
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated models.Listing
	err = collection.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "schema_type": category},
		bson.M{"$set": set},
		opts,
	).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, mongo.ErrNoDocuments
		}
		if field := db.DuplicateKeyField(err); field != "" {
			return nil, &DuplicateFieldError{Field: field}
		}
		return nil, fmt.Errorf("failed to update listing %s: %w", id.String(), err)
	}
	return &updated, nil
}

// Delete removes a listing of the given category.
func (s *listingService) Delete(ctx context.Context, category models.Category, id utils.SixID) error {
	collection := s.db.Collection(listingsCollection)

	err := collection.FindOneAndDelete(ctx, bson.M{"_id": id, "schema_type": category}).Err()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return mongo.ErrNoDocuments
		}
		return fmt.Errorf("failed to delete listing %s: %w", id.String(), err)
	}
	return nil
}

// SetThumbnail stores a generated thumbnail reference on a listing.
func (s *listingService) SetThumbnail(ctx context.Context, category models.Category, id utils.SixID, asset models.MediaAsset) error {
	collection := s.db.Collection(listingsCollection)

	res, err := collection.UpdateOne(ctx,
		bson.M{"_id": id, "schema_type": category},
		bson.M{"$set": bson.M{"thumbnailImage": asset, "updatedAt": time.Now().UTC()}},
	)
	if err != nil {
		return fmt.Errorf("failed to set thumbnail on listing %s: %w", id.String(), err)
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func statsCacheKey(category models.Category) string {
	return fmt.Sprintf("stats:%s", category)
}

// Stats returns the admin dashboard snapshot for a category, served from the
// Redis cache when fresh.
func (s *listingService) Stats(ctx context.Context, category models.Category) (*models.ListingStats, error) {
	if s.rdb != nil {
		cached, err := s.rdb.Get(ctx, statsCacheKey(category)).Result()
		if err == nil {
			var stats models.ListingStats
			if jsonErr := json.Unmarshal([]byte(cached), &stats); jsonErr == nil {
				return &stats, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			log.Printf("Stats cache read failed for %s: %v", category, err)
		}
	}
	return s.RefreshStats(ctx, category)
}

// RefreshStats recomputes a category's stats and refreshes the cache.
func (s *listingService) RefreshStats(ctx context.Context, category models.Category) (*models.ListingStats, error) {
	stats, err := s.computeStats(ctx, category)
	if err != nil {
		return nil, err
	}

	if s.rdb != nil {
		payload, jsonErr := json.Marshal(stats)
		if jsonErr == nil {
			if err := s.rdb.Set(ctx, statsCacheKey(category), payload, s.cfg.StatsCacheTTL).Err(); err != nil {
				log.Printf("Stats cache write failed for %s: %v", category, err)
			}
		}
	}
	return stats, nil
}

func (s *listingService) computeStats(ctx context.Context, category models.Category) (*models.ListingStats, error) {
	collection := s.db.Collection(listingsCollection)
	match := bson.M{"schema_type": category}

	overviewPipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.M{
			"_id":           nil,
			"totalListings": bson.M{"$sum": 1},
			"activeListings": bson.M{"$sum": bson.M{
				"$cond": bson.A{bson.M{"$ne": bson.A{"$isActive", false}}, 1, 0},
			}},
			"avgMinPrice": bson.M{"$avg": "$minPrice"},
			"avgMaxPrice": bson.M{"$avg": "$maxPrice"},
		}}},
	}

	cursor, err := collection.Aggregate(ctx, overviewPipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate %s overview: %w", category, err)
	}
	var overviews []models.StatsOverview
	if err := cursor.All(ctx, &overviews); err != nil {
		return nil, fmt.Errorf("failed to decode %s overview: %w", category, err)
	}

	stats := &models.ListingStats{GeneratedAt: time.Now().UTC()}
	if len(overviews) > 0 {
		stats.Overview = overviews[0]
	}

	statusPipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.M{"_id": "$project_Status", "count": bson.M{"$sum": 1}}}},
		{{Key: "$sort", Value: bson.M{"count": -1}}},
	}
	cursor, err = collection.Aggregate(ctx, statusPipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate %s status breakdown: %w", category, err)
	}
	if err := cursor.All(ctx, &stats.ByStatus); err != nil {
		return nil, fmt.Errorf("failed to decode %s status breakdown: %w", category, err)
	}

	switch category {
	case models.CategoryProject:
		cityPipeline := mongo.Pipeline{
			{{Key: "$match", Value: match}},
			{{Key: "$group", Value: bson.M{"_id": "$city", "count": bson.M{"$sum": 1}}}},
			{{Key: "$sort", Value: bson.M{"count": -1}}},
			{{Key: "$limit", Value: 10}},
		}
		cursor, err = collection.Aggregate(ctx, cityPipeline)
		if err != nil {
			return nil, fmt.Errorf("failed to aggregate city breakdown: %w", err)
		}
		if err := cursor.All(ctx, &stats.ByCity); err != nil {
			return nil, fmt.Errorf("failed to decode city breakdown: %w", err)
		}

	case models.CategoryNewLaunch:
		// Counts every future launch, not just the /upcoming endpoint's
		// 30-day window: the dashboard cares about the whole pipeline.
		count, err := collection.CountDocuments(ctx, bson.M{
			"schema_type":   category,
			"isActive":      true,
			"launchingDate": bson.M{"$gte": time.Now().UTC()},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to count upcoming launches: %w", err)
		}
		stats.UpcomingCount = &count
	}

	return stats, nil
}
