package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"autochart/internal/config"
	"autochart/internal/container"
	"autochart/ui"
)

func main() {
	_ = godotenv.Load()

	file := flag.String("file", "", "dataset to load before serving the report")
	flag.Parse()

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()
	appContainer, err := container.New(appConfig)
	if err != nil {
		log.Fatalf("Failed to create application container: %v", err)
	}
	defer appContainer.Shutdown(ctx)

	if err := appContainer.InitWithDatabase(ctx); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	svc, err := appContainer.Build(ctx)
	if err != nil {
		log.Fatalf("Failed to restore dashboard: %v", err)
	}

	if *file != "" {
		f, err := os.Open(*file)
		if err != nil {
			log.Fatalf("Failed to open %s: %v", *file, err)
		}
		snap, err := svc.Upload(ctx, f, filepath.Base(*file))
		f.Close()
		if err != nil {
			log.Fatalf("Failed to read %s: %v", *file, err)
		}
		log.Printf("Loaded %s (%d rows)", *file, snap.Dataset.Len())
	}

	app, err := ui.NewApp(svc)
	if err != nil {
		log.Fatal("Failed to create UI app:", err)
	}
	log.Fatal(app.Start(":" + appConfig.UI.Port))
}
