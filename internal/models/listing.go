package models

import "time"

// Category discriminates the two kinds of listing stored in the shared
// listings collection. The discriminator lives in the schema_type field.
type Category string

const (
	CategoryProject   Category = "project"
	CategoryNewLaunch Category = "newlaunch"
)

// Valid reports whether c is a known listing category.
func (c Category) Valid() bool {
	return c == CategoryProject || c == CategoryNewLaunch
}

var projectStatuses = []string{
	"Under Construction",
	"Ready to Move",
	"Upcoming",
	"Completed",
}

var newLaunchStatuses = []string{
	"Pre-Launch",
	"Launching Soon",
	"Launched",
	"Sold Out",
}

// Statuses returns the set of lifecycle statuses valid for the category.
func (c Category) Statuses() []string {
	if c == CategoryNewLaunch {
		return newLaunchStatuses
	}
	return projectStatuses
}

// DefaultStatus is the status a listing gets when none is supplied.
func (c Category) DefaultStatus() string {
	if c == CategoryNewLaunch {
		return "Pre-Launch"
	}
	return "Under Construction"
}

// ValidStatus reports whether s is an allowed status for the category.
func (c Category) ValidStatus(s string) bool {
	for _, v := range c.Statuses() {
		if v == s {
			return true
		}
	}
	return false
}

// MediaAsset is an uploaded image or document referenced by a listing.
type MediaAsset struct {
	PublicID string `bson:"public_id,omitempty" json:"public_id,omitempty"`
	URL      string `bson:"url,omitempty" json:"url,omitempty"`
	CDNURL   string `bson:"cdn_url,omitempty" json:"cdn_url,omitempty"`
}

// IsZero reports whether the asset carries no reference at all.
func (m MediaAsset) IsZero() bool {
	return m.PublicID == "" && m.URL == "" && m.CDNURL == ""
}

// UnitPlan describes one unit configuration offered by the project.
type UnitPlan struct {
	BhkType string `bson:"bhk_type,omitempty" json:"bhk_type,omitempty"`
	Price   string `bson:"price,omitempty" json:"price,omitempty"`
	BhkArea string `bson:"bhk_Area,omitempty" json:"bhk_Area,omitempty"`
}

// HighlightPoint is a single marketing highlight line.
type HighlightPoint struct {
	HighlightPoint string `bson:"highlight_Point,omitempty" json:"highlight_Point,omitempty"`
}

// AboutSection holds the imagery used on the listing's about panel.
type AboutSection struct {
	AboutImage        MediaAsset `bson:"about_image,omitempty" json:"about_image,omitempty"`
	MobileBannerImage MediaAsset `bson:"mobile_banner_image,omitempty" json:"mobile_banner_image,omitempty"`
}

// Listing is a property record. Projects and new launches share this shape;
// Category tells them apart and controls which fields are meaningful.
// Field names deliberately match the wire format the public site consumes.
type Listing struct {
	Base `bson:",inline"`

	Category Category `bson:"schema_type" json:"schema_type"`

	Name        string `bson:"projectName" json:"projectName" validate:"required"`
	Address     string `bson:"projectAddress" json:"projectAddress" validate:"required"`
	Description string `bson:"project_discripation,omitempty" json:"project_discripation,omitempty"`
	Type        string `bson:"type" json:"type" validate:"required"`
	City        string `bson:"city" json:"city" validate:"required"`
	State       string `bson:"state,omitempty" json:"state,omitempty"`
	Country     string `bson:"country,omitempty" json:"country,omitempty"`
	Builder     string `bson:"builderName" json:"builderName" validate:"required"`

	Luxury    string `bson:"luxury,omitempty" json:"luxury,omitempty"`
	Spotlight string `bson:"spotlight,omitempty" json:"spotlight,omitempty"`
	Status    string `bson:"project_Status,omitempty" json:"project_Status,omitempty"`
	Slug      string `bson:"project_url,omitempty" json:"project_url,omitempty"`

	MetaTitle       string `bson:"meta_title,omitempty" json:"meta_title,omitempty"`
	MetaDescription string `bson:"meta_description,omitempty" json:"meta_description,omitempty"`

	Amenities        []string         `bson:"Amenities,omitempty" json:"Amenities,omitempty"`
	BgContent        string           `bson:"projectBgContent,omitempty" json:"projectBgContent,omitempty"`
	ReraNo           string           `bson:"projectReraNo,omitempty" json:"projectReraNo,omitempty"`
	PaymentPlan      string           `bson:"paymentPlan,omitempty" json:"paymentPlan,omitempty"`
	AboutDeveloper   string           `bson:"AboutDeveloper,omitempty" json:"AboutDeveloper,omitempty"`
	Overview         string           `bson:"projectOverview,omitempty" json:"projectOverview,omitempty"`
	RedefineBusiness []string         `bson:"projectRedefine_Business,omitempty" json:"projectRedefine_Business,omitempty"`
	RedefineConnect  []string         `bson:"projectRedefine_Connectivity,omitempty" json:"projectRedefine_Connectivity,omitempty"`
	RedefineEdu      []string         `bson:"projectRedefine_Education,omitempty" json:"projectRedefine_Education,omitempty"`
	RedefineEnt      []string         `bson:"projectRedefine_Entertainment,omitempty" json:"projectRedefine_Entertainment,omitempty"`
	Highlights       []HighlightPoint `bson:"highlight,omitempty" json:"highlight,omitempty"`
	UnitPlans        []UnitPlan       `bson:"BhK_Details,omitempty" json:"BhK_Details,omitempty"`
	About            *AboutSection    `bson:"about,omitempty" json:"about,omitempty"`

	FrontImage     MediaAsset   `bson:"frontImage,omitempty" json:"frontImage,omitempty"`
	ThumbnailImage MediaAsset   `bson:"thumbnailImage,omitempty" json:"thumbnailImage,omitempty"`
	Logo           MediaAsset   `bson:"logo,omitempty" json:"logo,omitempty"`
	LocationImage  MediaAsset   `bson:"project_locationImage,omitempty" json:"project_locationImage,omitempty"`
	HighlightImage MediaAsset   `bson:"highlightImage,omitempty" json:"highlightImage,omitempty"`
	MasterPlan     MediaAsset   `bson:"projectMaster_plan,omitempty" json:"projectMaster_plan,omitempty"`
	Brochure       MediaAsset   `bson:"project_Brochure,omitempty" json:"project_Brochure,omitempty"`
	Gallery        []MediaAsset `bson:"projectGallery,omitempty" json:"projectGallery,omitempty"`
	FloorPlans     []MediaAsset `bson:"project_floorplan_Image,omitempty" json:"project_floorplan_Image,omitempty"`

	TowerNumber   string   `bson:"towerNumber,omitempty" json:"towerNumber,omitempty"`
	TotalUnit     string   `bson:"totalUnit,omitempty" json:"totalUnit,omitempty"`
	TotalLandArea string   `bson:"totalLandArea,omitempty" json:"totalLandArea,omitempty"`
	MobileNumber  string   `bson:"mobileNumber,omitempty" json:"mobileNumber,omitempty"`
	MinPrice      *float64 `bson:"minPrice,omitempty" json:"minPrice,omitempty"`
	MaxPrice      *float64 `bson:"maxPrice,omitempty" json:"maxPrice,omitempty"`

	// New-launch specific fields.
	LaunchingDate      *Date    `bson:"launchingDate,omitempty" json:"launchingDate,omitempty"`
	PossessionDate     *Date    `bson:"possessionDate,omitempty" json:"possessionDate,omitempty"`
	PreBookingAmount   *float64 `bson:"preBookingAmount,omitempty" json:"preBookingAmount,omitempty"`
	EarlyBirdDiscount  string   `bson:"earlyBirdDiscount,omitempty" json:"earlyBirdDiscount,omitempty"`
	RegistrationStart  *Date    `bson:"registrationStartDate,omitempty" json:"registrationStartDate,omitempty"`
	RegistrationEnd    *Date    `bson:"registrationEndDate,omitempty" json:"registrationEndDate,omitempty"`
	IsActive           *bool    `bson:"isActive,omitempty" json:"isActive,omitempty"`
	Priority           int      `bson:"priority,omitempty" json:"priority,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// StatusCount is one bucket of the per-status breakdown.
type StatusCount struct {
	Status string `bson:"_id" json:"status"`
	Count  int64  `bson:"count" json:"count"`
}

// CityCount is one bucket of the per-city breakdown.
type CityCount struct {
	City  string `bson:"_id" json:"city"`
	Count int64  `bson:"count" json:"count"`
}

// StatsOverview aggregates headline numbers for one listing category.
type StatsOverview struct {
	TotalListings  int64    `bson:"totalListings" json:"totalListings"`
	ActiveListings int64    `bson:"activeListings" json:"activeListings"`
	AvgMinPrice    *float64 `bson:"avgMinPrice" json:"avgMinPrice"`
	AvgMaxPrice    *float64 `bson:"avgMaxPrice" json:"avgMaxPrice"`
}

// ListingStats is the admin dashboard snapshot for one category.
type ListingStats struct {
	Overview      StatsOverview `json:"overview"`
	ByStatus      []StatusCount `json:"byStatus"`
	ByCity        []CityCount   `json:"byCity,omitempty"`
	UpcomingCount *int64        `json:"upcomingCount,omitempty"`
	GeneratedAt   time.Time     `json:"generatedAt"`
}
