package evalctx

import (
	"sort"
	"time"

	"github.com/JoelKayemba/App-soin-plaie-sub001/internal/models"
)

// Context is the flat evaluation context: every raw answer under its field id
// plus the derived variables. It is rebuilt for each evaluation and is
// read-only once built.
type Context struct {
	values    map[string]models.Value
	kinds     map[string]models.ValueKind
	derived   map[string]bool
	reference time.Time
}

func newContext(reference time.Time) *Context {
	return &Context{
		values:    make(map[string]models.Value),
		kinds:     make(map[string]models.ValueKind),
		derived:   make(map[string]bool),
		reference: reference,
	}
}

func (c *Context) setDerived(name string, v models.Value) {
	c.values[name] = v
	c.derived[name] = true
}

// Lookup implements expr.Resolver.
func (c *Context) Lookup(name string) (models.Value, bool) {
	v, ok := c.values[name]
	return v, ok
}

// DeclaredKind implements expr.Resolver. It knows the kinds of fields whose
// table schemas were loaded while building.
func (c *Context) DeclaredKind(fieldID string) (models.ValueKind, bool) {
	k, ok := c.kinds[fieldID]
	return k, ok
}

// Get returns the value under name, or null.
func (c *Context) Get(name string) models.Value {
	return c.values[name]
}

// Flag returns a boolean risk flag.
func (c *Context) Flag(name string) bool {
	b, _ := c.values[name].AsBool()
	return b
}

// Number returns a numeric entry.
func (c *Context) Number(name string) (float64, bool) {
	return c.values[name].AsNumber()
}

// Derived returns the derived variables only.
func (c *Context) Derived() map[string]models.Value {
	out := make(map[string]models.Value, len(c.derived))
	for name := range c.derived {
		out[name] = c.values[name]
	}
	return out
}

// Names returns every entry name, sorted.
func (c *Context) Names() []string {
	names := make([]string, 0, len(c.values))
	for name := range c.values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of entries.
func (c *Context) Len() int { return len(c.values) }

// ReferenceDate is the date ages were computed against.
func (c *Context) ReferenceDate() time.Time { return c.reference }
