package detector

import (
	"fmt"
	"slices"
)

// Factory builds a detector from the session dependencies.
type Factory func(deps Deps) (Detector, error)

// Registry maps detector names to factories.
type Registry map[string]Factory

// DefaultRegistry contains the built-in detectors.
var DefaultRegistry = Registry{
	"credit_cards": func(deps Deps) (Detector, error) { return NewCreditCardDetector(deps) },
	"oracle":       func(deps Deps) (Detector, error) { return NewOracleDetector(deps) },
	"symfony":      func(deps Deps) (Detector, error) { return NewSymfonyDetector(deps) },
}

// Names returns the registered detector names in sorted order.
func (r Registry) Names() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Build instantiates detectors from names, in the given order. An empty
// list builds every registered detector. Duplicate names are ignored.
func (r Registry) Build(names []string, deps Deps) ([]Detector, error) {
	if len(names) == 0 {
		names = r.Names()
	}

	detectors := make([]Detector, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		factory, ok := r[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownDetector, name)
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}

		d, err := factory(deps)
		if err != nil {
			return nil, fmt.Errorf("failed to build detector %s: %w", name, err)
		}
		detectors = append(detectors, d)
	}
	return detectors, nil
}

// Build instantiates detectors from the default registry.
func Build(names []string, deps Deps) ([]Detector, error) {
	return DefaultRegistry.Build(names, deps)
}
