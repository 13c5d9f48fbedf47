package recipe

import (
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
)

//go:embed catalog.json
var defaultCatalog []byte

// ErrNotFound is returned when a recipe id is not part of the catalog.
var ErrNotFound = errors.New("recipe not found")

// catalogFile is the on-disk and embedded catalog format.
type catalogFile struct {
	Version string   `json:"version"`
	Recipes []Recipe `json:"recipes"`
}

// Catalog is an immutable id -> Recipe mapping with a version string.
// A version change means persisted plans may reference stale ids.
type Catalog struct {
	version string
	recipes map[string]Recipe
	byMeal  map[MealType][]Recipe
}

// LoadDefault decodes the catalog bundled with the binary.
func LoadDefault() (*Catalog, error) {
	return Decode(defaultCatalog)
}

// LoadFile decodes a catalog from a JSON file.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	return Decode(data)
}

// Decode parses catalog JSON and validates every recipe.
func Decode(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to unmarshal catalog: %w", err)
	}
	if strings.TrimSpace(f.Version) == "" {
		return nil, fmt.Errorf("catalog has no version")
	}
	return New(f.Version, f.Recipes)
}

// New builds a catalog from a recipe list.
func New(version string, recipes []Recipe) (*Catalog, error) {
	c := &Catalog{
		version: version,
		recipes: make(map[string]Recipe, len(recipes)),
		byMeal:  make(map[MealType][]Recipe),
	}
	for _, r := range recipes {
		if err := r.validate(); err != nil {
			return nil, err
		}
		if _, dup := c.recipes[r.ID]; dup {
			return nil, fmt.Errorf("duplicate recipe id %s", r.ID)
		}
		c.recipes[r.ID] = r
		c.byMeal[r.MealType] = append(c.byMeal[r.MealType], r)
	}
	for m := range c.byMeal {
		pool := c.byMeal[m]
		sort.Slice(pool, func(i, j int) bool { return pool[i].ID < pool[j].ID })
	}
	return c, nil
}

// Merge returns a new catalog with extra recipes added. The version gets a
// suffix derived from the extra ids so that any import bumps it.
func (c *Catalog) Merge(extra []Recipe) (*Catalog, error) {
	if len(extra) == 0 {
		return c, nil
	}
	all := make([]Recipe, 0, len(c.recipes)+len(extra))
	for _, r := range c.recipes {
		all = append(all, r)
	}
	all = append(all, extra...)

	ids := make([]string, 0, len(extra))
	for _, r := range extra {
		ids = append(ids, r.ID)
	}
	sort.Strings(ids)
	sum := sha256.Sum256([]byte(strings.Join(ids, "\n")))

	return New(c.version+"+"+hex.EncodeToString(sum[:])[:8], all)
}

// Version identifies the catalog contents.
func (c *Catalog) Version() string {
	return c.version
}

// Len is the number of recipes.
func (c *Catalog) Len() int {
	return len(c.recipes)
}

// Get looks a recipe up by id.
func (c *Catalog) Get(id string) (Recipe, bool) {
	r, ok := c.recipes[id]
	return r, ok
}

// Lookup is Get with an error for unknown ids.
func (c *Catalog) Lookup(id string) (Recipe, error) {
	r, ok := c.recipes[id]
	if !ok {
		return Recipe{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return r, nil
}

// ByMealType returns the pool for m, sorted by id. The slice must not be modified.
func (c *Catalog) ByMealType(m MealType) []Recipe {
	return c.byMeal[m]
}
