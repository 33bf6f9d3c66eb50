package journal

import (
	"fmt"
	"sort"
	"sync"

	"github.com/mitchellh/mapstructure"
)

// Backend names understood by Open.
const (
	BackendMemory   = "memory"
	BackendJSONL    = "jsonl"
	BackendRotating = "rotating"
	BackendSQLite   = "sqlite"
)

// Config selects a backend and carries its raw options.
type Config struct {
	Backend string         `json:"backend"`
	Options map[string]any `json:"options"`
}

// Opener builds a store from raw backend options.
type Opener func(opts map[string]any) (Store, error)

var (
	mu      sync.RWMutex
	openers = map[string]Opener{}
)

// Register adds an opener for the named backend.
func Register(name string, o Opener) error {
	if o == nil {
		return fmt.Errorf("journal: nil opener for %s", name)
	}
	mu.Lock()
	defer mu.Unlock()
	if _, ok := openers[name]; ok {
		return fmt.Errorf("journal: backend %s already registered", name)
	}
	openers[name] = o
	return nil
}

// Backends lists registered backend names in sorted order.
func Backends() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(openers))
	for n := range openers {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Open creates the store described by cfg. An empty backend yields a memory
// store.
func Open(cfg Config) (Store, error) {
	name := cfg.Backend
	if name == "" {
		name = BackendMemory
	}
	mu.RLock()
	o, ok := openers[name]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("journal: unknown backend %q", name)
	}
	return o(cfg.Options)
}

// decode fills out from raw options using json tags.
func decode(data map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(data)
}

type fileOptions struct {
	Path       string `json:"path"`
	MaxSizeMB  int    `json:"max_size_mb"`
	MaxBackups int    `json:"max_backups"`
	MaxAgeDays int    `json:"max_age_days"`
}

func (o fileOptions) path(def string) string {
	if o.Path == "" {
		return def
	}
	return o.Path
}

func init() {
	_ = Register(BackendMemory, func(map[string]any) (Store, error) {
		return NewMemoryStore(), nil
	})
	_ = Register(BackendJSONL, func(raw map[string]any) (Store, error) {
		var o fileOptions
		if err := decode(raw, &o); err != nil {
			return nil, err
		}
		return NewJSONLStore(o.path("journal.jsonl"))
	})
	_ = Register(BackendRotating, func(raw map[string]any) (Store, error) {
		o := fileOptions{MaxSizeMB: 10, MaxBackups: 3, MaxAgeDays: 28}
		if err := decode(raw, &o); err != nil {
			return nil, err
		}
		return NewRotatingStore(o.path("journal.jsonl"), o.MaxSizeMB, o.MaxBackups, o.MaxAgeDays)
	})
	_ = Register(BackendSQLite, func(raw map[string]any) (Store, error) {
		var o fileOptions
		if err := decode(raw, &o); err != nil {
			return nil, err
		}
		return NewSQLiteStore(o.path("journal.db"))
	})
}
