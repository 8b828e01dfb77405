package dashboard

import "fmt"

// BuildCatalog returns the default catalog extended with every manifest in paths.
func BuildCatalog(paths ...string) (*Registry, error) {
	reg := NewRegistry()
	for _, path := range paths {
		if path == "" {
			continue
		}
		if _, err := reg.LoadManifestFile(path); err != nil {
			return nil, fmt.Errorf("dashboard: load catalog: %w", err)
		}
	}
	return reg, nil
}
