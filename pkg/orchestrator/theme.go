package orchestrator

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	theme "github.com/goliatone/go-theme"
)

// ManifestSelector is a theme.ThemeSelector over manifests registered in
// process, such as the one built from configuration tokens.
type ManifestSelector struct {
	mu             sync.RWMutex
	manifests      map[string]*theme.Manifest
	defaultTheme   string
	defaultVariant string
}

var _ theme.ThemeSelector = (*ManifestSelector)(nil)

// NewManifestSelector registers manifests. The first one becomes the default
// theme.
func NewManifestSelector(manifests ...*theme.Manifest) (*ManifestSelector, error) {
	s := &ManifestSelector{manifests: make(map[string]*theme.Manifest)}
	for _, manifest := range manifests {
		if err := s.Register(manifest); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Register adds manifest under its name.
func (s *ManifestSelector) Register(manifest *theme.Manifest) error {
	if manifest == nil {
		return fmt.Errorf("orchestrator: theme manifest is required")
	}
	key := normalizeTheme(manifest.Name)
	if key == "" {
		return fmt.Errorf("orchestrator: theme manifest name is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.manifests[key]; exists {
		return fmt.Errorf("orchestrator: theme %q already registered", key)
	}
	s.manifests[key] = manifest
	if s.defaultTheme == "" {
		s.defaultTheme = key
	}
	return nil
}

// SetDefaults picks the theme and variant used when Select is called with
// empty names.
func (s *ManifestSelector) SetDefaults(name, variant string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if key := normalizeTheme(name); key != "" {
		s.defaultTheme = key
	}
	s.defaultVariant = strings.TrimSpace(variant)
}

// Names lists the registered themes in sorted order.
func (s *ManifestSelector) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.manifests))
	for name := range s.manifests {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Select returns the named theme. An unknown variant selects the base
// manifest only.
func (s *ManifestSelector) Select(name, variant string, _ ...theme.QueryOption) (*theme.Selection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	key := normalizeTheme(name)
	if key == "" {
		key = s.defaultTheme
	}
	manifest, ok := s.manifests[key]
	if !ok {
		return nil, fmt.Errorf("orchestrator: theme %q not found", key)
	}

	variant = strings.TrimSpace(variant)
	if variant == "" {
		variant = s.defaultVariant
	}
	if _, ok := manifest.Variants[variant]; !ok {
		variant = ""
	}
	return &theme.Selection{Theme: manifest.Name, Variant: variant, Manifest: manifest}, nil
}

func normalizeTheme(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
