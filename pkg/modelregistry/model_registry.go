package modelregistry

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/bitechdev/DataSpec/pkg/common"
	"github.com/bitechdev/DataSpec/pkg/reflection"
)

// Entity describes a searchable and bulk-updatable model: the struct the
// store rows scan into, the table it lives in, the column configuration
// requests are validated against, and optional per-entity behavior.
type Entity struct {
	// Name is the request-facing entity name, e.g. "products".
	Name string

	// Model is a non-pointer struct with bun tags.
	Model interface{}

	// Table is the table name. Empty means bun derives it from the model.
	Table string

	// Alias qualifies the entity's own columns in generated SQL. Empty
	// derives it from the model's bun alias tag, then the table name.
	Alias string

	// Columns validates filter, search and sort input.
	Columns *common.ColumnConfig

	// TenantColumn is the workspace scoping column. Empty disables tenant
	// filtering for this entity.
	TenantColumn string

	// Preloads are relations loaded with every search result page.
	Preloads []string

	// Enrich is applied to each result item after scanning, before the
	// response is built. Item is a pointer to the model struct.
	Enrich func(item interface{})
}

// EntityRegistry holds registered entities by name.
type EntityRegistry struct {
	entities map[string]*Entity
	mutex    sync.RWMutex
}

// Global default registry instance
var defaultRegistry = &EntityRegistry{
	entities: make(map[string]*Entity),
}

// NewEntityRegistry creates a new empty registry
func NewEntityRegistry() *EntityRegistry {
	return &EntityRegistry{
		entities: make(map[string]*Entity),
	}
}

func GetDefaultRegistry() *EntityRegistry {
	return defaultRegistry
}

// Register validates and stores an entity definition.
func (r *EntityRegistry) Register(e *Entity) error {
	if e == nil {
		return fmt.Errorf("entity cannot be nil")
	}
	if e.Name == "" {
		return fmt.Errorf("entity name cannot be empty")
	}
	if err := validateModel(e.Model); err != nil {
		return fmt.Errorf("entity %s: %w", e.Name, err)
	}
	if e.Columns == nil {
		return fmt.Errorf("entity %s: column config is required", e.Name)
	}
	if err := validateColumns(e.Columns); err != nil {
		return fmt.Errorf("entity %s: %w", e.Name, err)
	}

	if e.Alias == "" {
		e.Alias = reflection.GetTableAlias(e.Model)
	}
	if e.Alias == "" {
		e.Alias = e.Table
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.entities[e.Name]; exists {
		return fmt.Errorf("entity %s already registered", e.Name)
	}

	r.entities[e.Name] = e
	return nil
}

// Get returns a registered entity by name.
func (r *EntityRegistry) Get(name string) (*Entity, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	e, exists := r.entities[name]
	if !exists {
		return nil, fmt.Errorf("entity %s not found", name)
	}
	return e, nil
}

// Names returns the names of all registered entities.
func (r *EntityRegistry) Names() []string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	names := make([]string, 0, len(r.entities))
	for name := range r.entities {
		names = append(names, name)
	}
	return names
}

// Iterate visits each registered entity.
func (r *EntityRegistry) Iterate(fn func(name string, e *Entity)) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	for name, e := range r.entities {
		fn(name, e)
	}
}

// validateModel checks that the model is a non-pointer struct value.
func validateModel(model interface{}) error {
	modelType := reflect.TypeOf(model)
	if modelType == nil {
		return fmt.Errorf("model cannot be nil")
	}

	if modelType.Kind() == reflect.Ptr {
		return fmt.Errorf("model must be a non-pointer struct, got pointer to %s. Use MyModel{} instead of &MyModel{}", modelType.Elem().Name())
	}
	if modelType.Kind() != reflect.Struct {
		return fmt.Errorf("model must be a struct, got %s", modelType.String())
	}
	return nil
}

// validateColumns checks that searchable columns are declared string simple
// columns. Sortable membership is left to request-time resolution, which
// reports the field and entity on misuse.
func validateColumns(cfg *common.ColumnConfig) error {
	for _, name := range cfg.SearchableColumns {
		t, ok := cfg.SimpleColumns[name]
		if !ok {
			return fmt.Errorf("searchable column %q is not a declared simple column", name)
		}
		if t != common.ColString {
			return fmt.Errorf("searchable column %q must be a string column", name)
		}
	}
	return nil
}

// Global convenience functions using the default registry

// Register registers an entity with the default global registry
func Register(e *Entity) error {
	return defaultRegistry.Register(e)
}

// GetEntity retrieves an entity from the default global registry
func GetEntity(name string) (*Entity, error) {
	return defaultRegistry.Get(name)
}

// IterateEntities iterates over all entities in the default global registry
func IterateEntities(fn func(name string, e *Entity)) {
	defaultRegistry.Iterate(fn)
}
