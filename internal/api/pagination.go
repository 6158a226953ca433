package api

import (
	"strconv" // String conversion

	"github.com/gin-gonic/gin" // Gin web framework
)

// pageParams reads page/page_size query params with the usual bounds
func pageParams(c *gin.Context) (page, pageSize int) {
	page = 1      // Default page number
	pageSize = 20 // Default page size
	if p := c.Query("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v // Set page if valid
		}
	}
	// Check and set page size within limits
	if ps := c.Query("page_size"); ps != "" {
		if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= 100 {
			pageSize = v // Set page size
		}
	}
	return page, pageSize
}

// totalPages derives the page count for a result set
func totalPages(total int64, pageSize int) int {
	return (int(total) + pageSize - 1) / pageSize
}
