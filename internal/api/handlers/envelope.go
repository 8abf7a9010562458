package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/vibhu2208/Aadhar-Homes/internal/models"
	"github.com/vibhu2208/Aadhar-Homes/internal/query"
)

// respondError writes the uniform error envelope.
func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"message": message,
	})
}

// collectionEnvelope is the paged listing response shape the public site
// consumes. Data is never null, even for an empty page.
func collectionEnvelope(listings []models.Listing, total int64, page query.Page) gin.H {
	if listings == nil {
		listings = []models.Listing{}
	}
	return gin.H{
		"success":     true,
		"count":       len(listings),
		"total":       total,
		"totalPages":  page.TotalPages(total),
		"currentPage": page.Number,
		"data":        listings,
	}
}
