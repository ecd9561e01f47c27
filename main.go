package main

import (
	"context"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"autochart/internal/config"
	"autochart/internal/container"
	"autochart/ui"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	gin.SetMode(appConfig.Server.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	appContainer, err := container.New(appConfig)
	if err != nil {
		log.Fatalf("Failed to create application container: %v", err)
	}
	defer appContainer.Shutdown(context.Background())

	if err := appContainer.InitWithDatabase(ctx); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	svc, err := appContainer.Build(ctx)
	if err != nil {
		log.Fatalf("Failed to restore dashboard: %v", err)
	}

	server := ui.NewServer(svc, ui.ServerConfig{
		MaxUploadBytes: appConfig.Engine.MaxUploadBytes,
		HistogramBins:  appConfig.Engine.HistogramBins,
	})
	app, err := ui.NewApp(svc)
	if err != nil {
		log.Fatalf("Failed to create report app: %v", err)
	}

	if appConfig.Profiling.Enabled {
		go func() {
			log.Printf("Profiling server starting on :%s", appConfig.Profiling.Port)
			if err := http.ListenAndServe(":"+appConfig.Profiling.Port, nil); err != nil {
				log.Printf("Profiling server stopped: %v", err)
			}
		}()
	}

	servers := []*http.Server{
		{Addr: ":" + appConfig.Server.Port, Handler: server.Handler()},
		{Addr: ":" + appConfig.UI.Port, Handler: app.Handler()},
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, srv := range servers {
		srv := srv
		g.Go(func() error {
			log.Printf("Listening on %s", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return err
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		for _, srv := range servers {
			_ = srv.Shutdown(context.Background())
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
	log.Println("Shut down cleanly")
}
