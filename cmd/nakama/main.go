// Plugin entrypoint for running bingosink inside a Nakama server. Nakama
// loads the built module and calls the exported InitModule, which registers
// the quick_match RPC and the bingosink_match handler after loading the goal
// catalogs named by the bingosink_catalog_dir runtime environment variable.
package main

import (
	"context"
	"database/sql"

	"bingosink/internal/ports/nakama"

	"github.com/heroiclabs/nakama-common/runtime"
)

// InitModule proxies Nakama initialization to the nakama adapter package.
func InitModule(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, initializer runtime.Initializer) error {
	return nakama.InitModule(ctx, logger, db, nk, initializer)
}
