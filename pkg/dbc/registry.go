package dbc

import (
	"fmt"
	"slices"
	"strings"
	"sync"
)

var registry = struct {
	sync.RWMutex
	metas map[string]*Meta
}{metas: make(map[string]*Meta)}

func registryKey(name string) string {
	return strings.ToLower(strings.ReplaceAll(name, "/", `\`))
}

// Register adds a record layout to the process-wide registry. It is meant
// to be called from init functions and panics on an invalid or duplicate
// layout.
func Register(m *Meta) {
	if m.Name == "" {
		panic("dbc: register layout without a name")
	}
	if err := m.Validate(); err != nil {
		panic(fmt.Sprintf("dbc: register %s: %v", m.Name, err))
	}
	key := registryKey(m.Name)

	registry.Lock()
	defer registry.Unlock()
	if _, dup := registry.metas[key]; dup {
		panic("dbc: layout registered twice: " + m.Name)
	}
	registry.metas[key] = m
}

// Lookup returns the layout registered under the canonical file name.
// Matching ignores case and path separator style.
func Lookup(name string) (*Meta, bool) {
	registry.RLock()
	defer registry.RUnlock()
	m, ok := registry.metas[registryKey(name)]
	return m, ok
}

// MustLookup is Lookup for layouts that are known to be compiled in.
func MustLookup(name string) *Meta {
	m, ok := Lookup(name)
	if !ok {
		panic("dbc: layout not registered: " + name)
	}
	return m
}

// Registered returns the canonical names of every registered layout, sorted.
func Registered() []string {
	registry.RLock()
	defer registry.RUnlock()
	names := make([]string, 0, len(registry.metas))
	for _, m := range registry.metas {
		names = append(names, m.Name)
	}
	slices.Sort(names)
	return names
}

// ShortName strips the directory and extension from a canonical name, so
// `DBFilesClient\Vehicle.dbc` becomes `Vehicle`.
func ShortName(name string) string {
	if i := strings.LastIndexAny(name, `\/`); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.LastIndexByte(name, '.'); i > 0 {
		name = name[:i]
	}
	return name
}

// LookupShort finds a layout by its short table name, e.g. "VehicleSeat".
func LookupShort(short string) (*Meta, bool) {
	registry.RLock()
	defer registry.RUnlock()
	for _, m := range registry.metas {
		if strings.EqualFold(ShortName(m.Name), short) {
			return m, true
		}
	}
	return nil, false
}
