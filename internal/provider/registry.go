package provider

import "sort"

// constructor builds an adapter from its platform's credential bundle.
type constructor func(creds Credentials) (Adapter, error)

// registry maps platform names to adapter constructors. Each adapter file
// registers itself in init(), so the set of buildable platforms is fixed at
// startup and enumerable.
var registry = map[string]constructor{}

func register(platform string, fn constructor) {
	if _, dup := registry[platform]; dup {
		panic("provider: duplicate registration for " + platform)
	}
	registry[platform] = fn
}

// Platforms returns the platform names with a registered adapter type, sorted.
func Platforms() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
