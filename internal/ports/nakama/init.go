package nakama

import (
	"context"
	"database/sql"
	"os"

	"github.com/heroiclabs/nakama-common/runtime"

	"bingosink/internal/config"
)

// CatalogDirEnvKey is the runtime environment variable InitModule reads the
// goal catalog directory from: ctx's RUNTIME_CTX_ENV map first, the OS
// environment as a local-testing fallback.
const CatalogDirEnvKey = "bingosink_catalog_dir"

func envOrOs(env map[string]string, key, fallback string) string {
	if value, ok := env[key]; ok && value != "" {
		return value
	}
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// InitModule wires the quick-match RPC and the match handler into the
// Nakama runtime.
func InitModule(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, initializer runtime.Initializer) error {
	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)
	catalogDir := envOrOs(env, CatalogDirEnvKey, "./catalogs")

	if err := config.Load(catalogDir); err != nil {
		logger.Error("InitModule: failed to load goal catalogs from %s: %v", catalogDir, err)
		return err
	}

	if err := initializer.RegisterRpc(RpcQuickMatch, rpcQuickMatch); err != nil {
		return err
	}
	if err := initializer.RegisterMatch(MatchName, NewMatch); err != nil {
		return err
	}

	logger.Info("bingosink Go module loaded.")
	return nil
}
