package api

import (
	"log"

	intconfig "querykit/internal/config"
	h "querykit/internal/http/handlers"
	"querykit/internal/http/middleware"
	"querykit/internal/metrics"
	"querykit/internal/query"

	"github.com/gin-gonic/gin"
)

// Deps are the data sources behind the collection endpoints.
type Deps struct {
	Articles         query.Source
	ArticleRelations query.Expander
}

func NewRouter(env intconfig.Env, deps Deps) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), gin.Recovery(), middleware.CORS(env.CORSAllowedOrigins))

	if err := r.SetTrustedProxies(nil); err != nil {
		log.Printf("warning: failed to set trusted proxies: %v", err)
	}

	r.NoRoute(h.NoRoute)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)
		api.GET("/routes", h.Routes)

		api.GET("/articles", h.ListArticles(deps.Articles, deps.ArticleRelations))
	}

	h.SetRouter(r)
	return r
}
