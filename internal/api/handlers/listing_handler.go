package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/vibhu2208/Aadhar-Homes/internal/config"
	"github.com/vibhu2208/Aadhar-Homes/internal/models"
	"github.com/vibhu2208/Aadhar-Homes/internal/query"
	"github.com/vibhu2208/Aadhar-Homes/internal/services"
	"github.com/vibhu2208/Aadhar-Homes/internal/tasks"
	"github.com/vibhu2208/Aadhar-Homes/internal/utils"
)

// TaskEnqueuer is the slice of asynq.Client the handlers use, kept narrow
// so tests can stub it.
type TaskEnqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// ListingHandler serves one listing category's REST endpoints. The same
// implementation is instantiated once for projects and once for new
// launches; only the category and the response wording differ.
type ListingHandler struct {
	listingService services.IListingService
	cfg            *config.Config
	category       models.Category
	singular       string // e.g. "Project"
	taskEnqueuer   TaskEnqueuer
}

// NewProjectHandler creates the handler behind /api/projects.
func NewProjectHandler(listingService services.IListingService, cfg *config.Config, enqueuer TaskEnqueuer) *ListingHandler {
	return &ListingHandler{
		listingService: listingService,
		cfg:            cfg,
		category:       models.CategoryProject,
		singular:       "Project",
		taskEnqueuer:   enqueuer,
	}
}

// NewLaunchHandler creates the handler behind /api/newlaunch.
func NewLaunchHandler(listingService services.IListingService, cfg *config.Config, enqueuer TaskEnqueuer) *ListingHandler {
	return &ListingHandler{
		listingService: listingService,
		cfg:            cfg,
		category:       models.CategoryNewLaunch,
		singular:       "New launch project",
		taskEnqueuer:   enqueuer,
	}
}

func (h *ListingHandler) parsePage(c *gin.Context) query.Page {
	return query.ParsePage(c.Query("page"), c.Query("limit"), h.cfg.DefaultPageSize, h.cfg.MaxPageSize)
}

func (h *ListingHandler) parseListParams(c *gin.Context) services.ListParams {
	params := services.ListParams{
		City:      c.Query("city"),
		Type:      c.Query("type"),
		Status:    c.Query("status"),
		Builder:   c.Query("builder"),
		Luxury:    c.Query("luxury"),
		Spotlight: c.Query("spotlight"),
		SortBy:    c.Query("sortBy"),
		SortOrder: c.Query("sortOrder"),
		Page:      h.parsePage(c),
	}

	// Unparseable numbers and dates are ignored rather than rejected.
	if v, err := strconv.ParseFloat(c.Query("minPrice"), 64); err == nil {
		params.MinPrice = &v
	}
	if v, err := strconv.ParseFloat(c.Query("maxPrice"), 64); err == nil {
		params.MaxPrice = &v
	}
	if d, err := models.ParseDate(c.Query("launchFrom")); err == nil {
		params.LaunchFrom = &d.Time
	}
	if d, err := models.ParseDate(c.Query("launchTo")); err == nil {
		params.LaunchTo = &d.Time
	}
	return params
}

// List handles GET /api/projects and GET /api/newlaunch.
func (h *ListingHandler) List(c *gin.Context) {
	params := h.parseListParams(c)

	listings, total, err := h.listingService.List(c.Request.Context(), h.category, params)
	if err != nil {
		_ = c.Error(err)
		respondError(c, http.StatusInternalServerError, "Failed to fetch listings")
		return
	}

	c.JSON(http.StatusOK, collectionEnvelope(listings, total, params.Page))
}

// Search handles GET /api/projects/search and GET /api/newlaunch/search.
func (h *ListingHandler) Search(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		respondError(c, http.StatusBadRequest, "Search query is required")
		return
	}
	page := h.parsePage(c)

	listings, total, err := h.listingService.Search(c.Request.Context(), h.category, q, page)
	if err != nil {
		_ = c.Error(err)
		respondError(c, http.StatusInternalServerError, "Search failed")
		return
	}

	envelope := collectionEnvelope(listings, total, page)
	envelope["query"] = q
	c.JSON(http.StatusOK, envelope)
}

// Upcoming handles GET /api/newlaunch/upcoming.
func (h *ListingHandler) Upcoming(c *gin.Context) {
	limit := h.cfg.DefaultPageSize
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 && v <= h.cfg.MaxPageSize {
		limit = v
	}

	listings, err := h.listingService.Upcoming(c.Request.Context(), limit)
	if err != nil {
		_ = c.Error(err)
		respondError(c, http.StatusInternalServerError, "Failed to fetch upcoming launches")
		return
	}
	if listings == nil {
		listings = []models.Listing{}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   len(listings),
		"data":    listings,
	})
}

// GetByID handles GET /api/projects/:id and GET /api/newlaunch/:id.
func (h *ListingHandler) GetByID(c *gin.Context) {
	id, err := utils.ParseSixID(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid listing ID format")
		return
	}

	listing, err := h.listingService.FindByID(c.Request.Context(), h.category, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			respondError(c, http.StatusNotFound, h.singular+" not found")
			return
		}
		_ = c.Error(err)
		respondError(c, http.StatusInternalServerError, "Failed to retrieve listing")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": listing})
}

// Create handles POST /api/projects and POST /api/newlaunch (admin only).
func (h *ListingHandler) Create(c *gin.Context) {
	var listing models.Listing
	if err := c.ShouldBindJSON(&listing); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	created, err := h.listingService.Create(c.Request.Context(), h.category, &listing)
	if err != nil {
		if services.IsValidationError(err) || services.IsDuplicateFieldError(err) {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
		_ = c.Error(err)
		respondError(c, http.StatusInternalServerError, "Failed to create "+h.singular)
		return
	}

	h.enqueueThumbnail(created)

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": h.singular + " created successfully",
		"data":    created,
	})
}

// enqueueThumbnail schedules thumbnail generation when a listing has a front
// image but no thumbnail yet. Failures are logged, not surfaced: thumbnails
// are a nicety, the listing itself is already saved.
func (h *ListingHandler) enqueueThumbnail(listing *models.Listing) {
	if h.taskEnqueuer == nil || listing.FrontImage.URL == "" || !listing.ThumbnailImage.IsZero() {
		return
	}
	task, err := tasks.NewThumbnailTask(listing.ID, h.category, listing.FrontImage.URL)
	if err != nil {
		log.Printf("Failed to build thumbnail task for listing %s: %v", listing.ID.String(), err)
		return
	}
	if _, err := h.taskEnqueuer.Enqueue(task); err != nil {
		log.Printf("Failed to enqueue thumbnail task for listing %s: %v", listing.ID.String(), err)
	}
}

// Update handles PUT /api/projects/:id and PUT /api/newlaunch/:id (admin only).
func (h *ListingHandler) Update(c *gin.Context) {
	id, err := utils.ParseSixID(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid listing ID format")
		return
	}

	var updates map[string]interface{}
	if err := c.ShouldBindJSON(&updates); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	updated, err := h.listingService.Update(c.Request.Context(), h.category, id, updates)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			respondError(c, http.StatusNotFound, h.singular+" not found")
			return
		}
		if services.IsValidationError(err) || services.IsDuplicateFieldError(err) {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
		_ = c.Error(err)
		respondError(c, http.StatusInternalServerError, "Failed to update "+h.singular)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": h.singular + " updated successfully",
		"data":    updated,
	})
}

// Delete handles DELETE /api/projects/:id and DELETE /api/newlaunch/:id (admin only).
func (h *ListingHandler) Delete(c *gin.Context) {
	id, err := utils.ParseSixID(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid listing ID format")
		return
	}

	if err := h.listingService.Delete(c.Request.Context(), h.category, id); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			respondError(c, http.StatusNotFound, h.singular+" not found")
			return
		}
		_ = c.Error(err)
		respondError(c, http.StatusInternalServerError, "Failed to delete "+h.singular)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": h.singular + " deleted successfully",
	})
}

// Stats handles GET /api/projects/admin/stats and GET /api/newlaunch/admin/stats.
func (h *ListingHandler) Stats(c *gin.Context) {
	stats, err := h.listingService.Stats(c.Request.Context(), h.category)
	if err != nil {
		_ = c.Error(err)
		respondError(c, http.StatusInternalServerError, "Failed to compute stats")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": stats})
}
