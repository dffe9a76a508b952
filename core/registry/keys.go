package registry

// Core keys for GlobalRegistry.
const (
	// Extension registries stored in GlobalRegistry
	KeyRegistryCmd     = "registry:cmd"
	KeyRegistryCron    = "registry:cron"
	KeyRegistryAPI     = "registry:api"
	KeyRegistryGraphQL = "registry:graphql"
	KeyRegistryRoutes  = "registry:routes"
)
