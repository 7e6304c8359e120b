package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	intconfig "querykit/internal/config"
	router "querykit/internal/http"
	"querykit/internal/repositories"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(intconfig.LoadEnv())
		},
	}
}

func buildDeps(env intconfig.Env) (router.Deps, error) {
	if env.DBDSN == "" {
		log.Println("[MAIN] action=source msg=DB_DSN empty, serving in-memory articles")
		return router.Deps{
			Articles:         repositories.DemoArticles(),
			ArticleRelations: repositories.ArticleRelations{Users: repositories.DemoUsers()},
		}, nil
	}

	db, err := intconfig.ConnectDB(env.DBDSN)
	if err != nil {
		return router.Deps{}, err
	}
	return router.Deps{
		Articles:         repositories.ArticleRepository{DB: db, LogQueries: env.LogQueries},
		ArticleRelations: repositories.ArticleRelations{Users: repositories.UserRepository{DB: db}},
	}, nil
}

func serve(env intconfig.Env) error {
	if env.GinMode != "" {
		gin.SetMode(env.GinMode)
	}

	deps, err := buildDeps(env)
	if err != nil {
		return err
	}
	defer intconfig.CloseDB()

	r := router.NewRouter(env, deps)

	srv := &http.Server{
		Addr:              env.AppAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       20 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[MAIN] action=listen addr=%s", env.AppAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	log.Println("[MAIN] action=shutdown msg=stopping server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return err
	}

	log.Println("[MAIN] action=shutdown msg=server stopped")
	return nil
}
