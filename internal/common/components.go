package common

const (
	ComponentEngine     = "engine"
	ComponentDecoder    = "decoder"
	ComponentStore      = "store"
	ComponentRPC        = "rpc"
	ComponentWatcher    = "watcher"
	ComponentAPI        = "api"
	ComponentMigrations = "migrations"
)

var AllComponents = map[string]struct{}{
	ComponentEngine:     {},
	ComponentDecoder:    {},
	ComponentStore:      {},
	ComponentRPC:        {},
	ComponentWatcher:    {},
	ComponentAPI:        {},
	ComponentMigrations: {},
}
