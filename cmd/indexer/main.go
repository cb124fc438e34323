package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/blendora/shopsense/backend/internal/adapters/search"
	"github.com/blendora/shopsense/backend/internal/application/services"
	"github.com/blendora/shopsense/backend/internal/domain/entities"
	"github.com/blendora/shopsense/backend/internal/domain/providers"
	"github.com/blendora/shopsense/backend/internal/infrastructure/clients/openai"
	"github.com/blendora/shopsense/backend/internal/infrastructure/clients/typesense"
	"github.com/blendora/shopsense/backend/pkg/config"
)

func main() {
	var reset bool
	var catalogPath string
	var intervalFlag string
	flag.BoolVar(&reset, "reset", false, "delete the existing vector collection before reindexing")
	flag.StringVar(&catalogPath, "catalog", "", "path to the catalog JSON file (or CATALOG_FILE)")
	flag.StringVar(&intervalFlag, "interval", "", "repeat interval for reindexing (e.g. 6h, 30m)")
	flag.Parse()

	if catalogPath == "" {
		catalogPath = strings.TrimSpace(os.Getenv("CATALOG_FILE"))
	}
	if catalogPath == "" {
		log.Fatal("No catalog file given (use -catalog or CATALOG_FILE)")
	}

	intervalValue := strings.TrimSpace(intervalFlag)
	if intervalValue == "" {
		intervalValue = strings.TrimSpace(os.Getenv("REINDEX_INTERVAL"))
	}

	var interval time.Duration
	var err error
	if intervalValue != "" {
		interval, err = time.ParseDuration(intervalValue)
		if err != nil {
			log.Fatalf("Invalid interval %q: %v", intervalValue, err)
		}
		if interval <= 0 {
			log.Fatalf("Interval must be greater than zero")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	for {
		if err := indexOnce(ctx, catalogPath, reset); err != nil {
			log.Printf("Reindex failed: %v", err)
		}

		if interval <= 0 {
			break
		}

		reset = false
		log.Printf("Reindex complete. Next run in %s.", interval)

		select {
		case <-ctx.Done():
			log.Println("Indexer shutting down")
			return
		case <-time.After(interval):
		}
	}
}

// catalogFile is the on-disk shape of the catalog dump: either a bare array
// of items or an object with an "items" key.
type catalogFile struct {
	Items []entities.CatalogItem `json:"items"`
}

func loadCatalog(path string) ([]entities.CatalogItem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}

	var file catalogFile
	if err := json.Unmarshal(data, &file); err == nil && len(file.Items) > 0 {
		return file.Items, nil
	}

	var items []entities.CatalogItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("parse catalog file: %w", err)
	}
	return items, nil
}

func indexOnce(ctx context.Context, catalogPath string, reset bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	items, err := loadCatalog(catalogPath)
	if err != nil {
		return err
	}
	for i := range items {
		if items[i].ContentType == "" {
			items[i].ContentType = entities.ContentTypeRecipe
		}
	}
	log.Printf("Loaded %d catalog items from %s", len(items), catalogPath)

	var vectorIndex providers.VectorIndexProvider
	switch cfg.Vector.Provider {
	case "typesense":
		tsClient, err := typesense.NewClient(&cfg.Typesense)
		if err != nil {
			return err
		}
		adapter := search.NewTypesenseAdapter(tsClient, cfg.Vector.Collection, cfg.OpenAI.EmbeddingDimensions)
		if reset {
			if err := adapter.Reset(ctx); err != nil {
				log.Printf("Warning: Failed to reset collection: %v", err)
			}
		}
		if err := adapter.InitSchema(ctx); err != nil {
			return err
		}
		vectorIndex = adapter
	default:
		if cfg.Vector.PersistDir == "" {
			return fmt.Errorf("chromem backend needs VECTOR_PERSIST_DIR for indexing")
		}
		if reset {
			if err := os.RemoveAll(cfg.Vector.PersistDir); err != nil {
				return fmt.Errorf("reset persist dir: %w", err)
			}
		}
		adapter, err := search.NewPersistentChromemAdapter(cfg.Vector.PersistDir, cfg.Vector.Collection)
		if err != nil {
			return err
		}
		vectorIndex = adapter
	}

	if cfg.OpenAI.APIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required for indexing")
	}
	openaiClient, err := openai.NewClient(&cfg.OpenAI)
	if err != nil {
		return err
	}

	indexing := services.NewIndexingService(openaiClient, vectorIndex, &cfg.Vector)

	result := indexing.EmbedBatch(ctx, items)
	log.Printf("Indexed %d items (%d failed, success=%t)", result.Processed, result.Failed, result.Success)
	for _, e := range result.Errors {
		log.Printf("  %s", e)
	}
	if !result.Success {
		return fmt.Errorf("every embedding batch failed")
	}

	status, err := indexing.Status(ctx)
	if err != nil {
		return err
	}
	log.Printf("Index %s/%s now holds %d documents", status.Provider, status.Collection, status.Documents)
	return nil
}
