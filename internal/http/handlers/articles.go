package handlers

import (
	"net/http"

	"querykit/internal/http/middleware"
	"querykit/internal/query"
	"querykit/internal/services"

	"github.com/gin-gonic/gin"
)

// ArticleDefaultSort orders listings newest first when no sort is given.
var ArticleDefaultSort = []query.SortCriterion{{Field: "createdAt", Direction: query.Desc}}

// ListArticles serves GET /api/articles over the given source.
func ListArticles(src query.Source, exp query.Expander) gin.HandlerFunc {
	return func(c *gin.Context) {
		var raw query.RawParams
		if err := c.ShouldBindQuery(&raw); err != nil {
			respondError(c, http.StatusBadRequest, "validation_error", "invalid query string", nil)
			return
		}

		svc := services.ListingService{
			Resource:    "articles",
			Source:      src,
			Expander:    exp,
			DefaultSort: ArticleDefaultSort,
			RequestID:   middleware.GetRequestID(c),
		}
		resp, err := svc.List(c.Request.Context(), raw)
		if err != nil {
			RespondDomainError(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}
