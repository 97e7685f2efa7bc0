package api

import (
	"context"
	"strings"

	"github.com/awantoch/flowviz/blob"
	"github.com/awantoch/flowviz/config"
	"github.com/awantoch/flowviz/constants"
	"github.com/awantoch/flowviz/event"
	"github.com/awantoch/flowviz/graph"
	"github.com/awantoch/flowviz/storage"
	"github.com/awantoch/flowviz/style"
	"github.com/awantoch/flowviz/utils"
)

// getStoreFromConfig returns a storage instance based on config, or an error if the driver is unknown.
func getStoreFromConfig(cfg *config.Config) (storage.Storage, error) {
	driver, dsn := constants.StorageDriverSQLite, config.DefaultSQLiteDSN
	if cfg != nil && cfg.Storage.Driver != "" {
		driver, dsn = strings.ToLower(cfg.Storage.Driver), cfg.Storage.DSN
	}
	switch driver {
	case constants.StorageDriverMemory:
		return storage.NewMemoryStorage(), nil
	case constants.StorageDriverSQLite:
		store, err := storage.NewSqliteStorage(dsn)
		if err != nil {
			utils.WarnCtx(context.Background(), "Failed to create sqlite storage, using in-memory fallback", "error", err)
			return storage.NewMemoryStorage(), nil
		}
		return store, nil
	case constants.StorageDriverPostgres:
		store, err := storage.NewPostgresStorage(dsn)
		if err != nil {
			utils.WarnCtx(context.Background(), "Failed to create postgres storage, using in-memory fallback", "error", err)
			return storage.NewMemoryStorage(), nil
		}
		return store, nil
	default:
		return nil, utils.Errorf("unsupported storage driver: %s", driver)
	}
}

// InitializeDependencies builds the default service from config. The
// returned cleanup closes every collaborator that holds resources.
func InitializeDependencies(ctx context.Context, cfg *config.Config) (ConverterService, func(), error) {
	if cfg == nil {
		cfg = &config.Config{}
	}

	table := style.Default()
	if cfg.Styles != "" {
		t, err := style.Load(cfg.Styles)
		if err != nil {
			return nil, nil, utils.Errorf("failed to load style table %s: %w", cfg.Styles, err)
		}
		table = t
	}

	notation := graph.NotationMermaid
	if cfg.DefaultNotation != "" {
		notation = graph.Notation(strings.ToLower(cfg.DefaultNotation))
		if err := graph.CheckNotation(notation); err != nil {
			return nil, nil, err
		}
	}

	store, err := getStoreFromConfig(cfg)
	if err != nil {
		return nil, nil, err
	}

	bus, err := event.NewEventBusFromConfig(&cfg.Event)
	if err != nil {
		utils.WarnCtx(ctx, "Failed to create event bus, using in-memory fallback", "error", err)
		bus = event.NewInProcEventBus()
	}
	if err := bus.Subscribe(ctx, constants.EventTopicRendered, logRendered); err != nil {
		utils.WarnCtx(ctx, "Failed to subscribe to render events", "error", err)
	}

	blobStore, err := blob.NewDefaultBlobStore(ctx, &blob.BlobConfig{
		Driver:    cfg.Blob.Driver,
		Directory: cfg.Blob.Directory,
		Bucket:    cfg.Blob.Bucket,
		Region:    cfg.Blob.Region,
	})
	if err != nil {
		utils.WarnCtx(ctx, "Failed to create blob store, publishing disabled", "error", err)
		blobStore = nil
	}

	svc := NewConverterService(Dependencies{
		Store:           store,
		Blobs:           blobStore,
		Events:          bus,
		Styles:          table,
		DefaultNotation: notation,
	})

	cleanup := func() {
		if err := bus.Close(); err != nil {
			utils.Error("Failed to close event bus: %v", err)
		}
		if err := store.Close(); err != nil {
			utils.Error("Failed to close storage: %v", err)
		}
	}
	return svc, cleanup, nil
}

func logRendered(payload []byte) {
	e, err := event.DecodeRendered(payload)
	if err != nil {
		utils.Warn("Undecodable %s event: %v", constants.EventTopicRendered, err)
		return
	}
	utils.Debug("Rendered %s (%s, %d steps) as %s", e.Name, e.ID, e.StepCount, e.Notation)
}
