package config

// GetAuthSkipperPaths returns a list of paths to skip authentication for
func GetAuthSkipperPaths() []string {
	// Read-only catalog/GraphQL paths stay public for the desktop shell
	return []string{"/api/products", "/graphql"}
}
