package cli

import (
	"context"

	"github.com/cellops/meld/internal/store"
)

// resolveDSN picks the table store DSN for a run. An explicit --url (or a
// database.url from meld.yaml, applied by the root command) wins; otherwise
// a SQLite results database is placed in the configured location, defaulting
// to the results directory itself so the database lives next to the files it
// was collected from.
func resolveDSN(resultsDir, name string) string {
	if databaseURL != "" {
		return databaseURL
	}

	location := resultsDir
	if meldConfig != nil && meldConfig.Database.Location != "" {
		location = meldConfig.Database.Location
	}
	if name == "" && meldConfig != nil {
		name = meldConfig.Database.Name
	}

	return store.EnsureDSN(location, name)
}

func openStore(ctx context.Context, resultsDir, name string) (*store.Store, error) {
	return store.Open(ctx, store.NewConfig(resolveDSN(resultsDir, name)))
}
