package catalog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/starford/larder/internal/inflector"
	pkgconfig "github.com/starford/larder/pkg/config"
)

// File is the on-disk catalog format:
//
//	ingredients:
//	  - name: Flour (all-purpose)
//	    basis_grams: 30
//	    nutrients: {calories: 110, carbs: 23, protein: 3}
//	    density: {grams: 120, volume: 1, unit: cup}
//	    aisle: Baking
type File struct {
	Ingredients []Profile `yaml:"ingredients"`
}

// Validate normalises every profile and rejects invalid or duplicate entries.
func (f *File) Validate() error {
	seen := make(map[string]struct{}, len(f.Ingredients))
	for i := range f.Ingredients {
		p := &f.Ingredients[i]
		p.Normalize()
		if err := p.Validate(); err != nil {
			return fmt.Errorf("catalog: ingredient %d (%q): %w", i+1, p.Name, err)
		}
		key := strings.ToLower(p.Name)
		if _, dup := seen[key]; dup {
			return fmt.Errorf("catalog: duplicate ingredient %q", p.Name)
		}
		seen[key] = struct{}{}
	}
	return nil
}

// Upsert validates p and replaces the entry with the same name, or appends it.
func (f *File) Upsert(p Profile) error {
	p.Normalize()
	if err := p.Validate(); err != nil {
		return err
	}
	for i := range f.Ingredients {
		if strings.EqualFold(f.Ingredients[i].Name, p.Name) {
			f.Ingredients[i] = p
			return nil
		}
	}
	f.Ingredients = append(f.Ingredients, p)
	return nil
}

// Remove deletes the entry named name and reports whether one existed.
func (f *File) Remove(name string) bool {
	for i := range f.Ingredients {
		if strings.EqualFold(f.Ingredients[i].Name, name) {
			f.Ingredients = append(f.Ingredients[:i], f.Ingredients[i+1:]...)
			return true
		}
	}
	return false
}

// Load reads and validates a catalog file. A missing file is an empty catalog
// when optional is true.
func Load(path string, optional bool) (*File, error) {
	f := &File{}
	if path == "" {
		return f, nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) && optional {
		return f, nil
	}
	if err := pkgconfig.Load(path, f); err != nil {
		return nil, fmt.Errorf("catalog: load: %w", err)
	}
	return f, nil
}

// Parse decodes and validates catalog YAML held in memory.
func Parse(data []byte) (*File, error) {
	f := &File{}
	if err := pkgconfig.Decode(data, f); err != nil {
		return nil, fmt.Errorf("catalog: parse: %w", err)
	}
	return f, nil
}

// Save writes the catalog atomically, entries sorted by name.
func Save(path string, f *File) error {
	out := File{Ingredients: append([]Profile(nil), f.Ingredients...)}
	sort.SliceStable(out.Ingredients, func(i, j int) bool {
		return strings.ToLower(out.Ingredients[i].Name) < strings.ToLower(out.Ingredients[j].Name)
	})
	data, err := yaml.Marshal(&out)
	if err != nil {
		return fmt.Errorf("catalog: save: marshal: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("catalog: save: mkdir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".catalog-*.tmp")
	if err != nil {
		return fmt.Errorf("catalog: save: create temp: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("catalog: save: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("catalog: save: close: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("catalog: save: rename: %w", err)
	}
	return nil
}

// Lookup is an immutable, merged view of the global and kitchen catalogs.
// It is safe for concurrent readers.
type Lookup struct {
	exact map[string]*Profile
	lower map[string]*Profile
	base  []*Profile
}

// Merge overlays kitchen entries on global ones by name, then adds singular and
// plural spelling variants for names not already present.
func Merge(global, kitchen []Profile) *Lookup {
	byName := make(map[string]*Profile)
	var order []string
	add := func(list []Profile) {
		for i := range list {
			p := list[i]
			if _, ok := byName[p.Name]; !ok {
				order = append(order, p.Name)
			}
			byName[p.Name] = &p
		}
	}
	add(global)
	add(kitchen)

	l := &Lookup{
		exact: make(map[string]*Profile, len(byName)*2),
		lower: make(map[string]*Profile, len(byName)*2),
	}
	for _, name := range order {
		p := byName[name]
		l.base = append(l.base, p)
		l.exact[name] = p
	}
	for _, p := range l.base {
		l.lower[strings.ToLower(p.Name)] = p
	}
	for _, p := range l.base {
		for _, v := range inflector.IngredientVariants(p.Name) {
			if _, ok := l.exact[v]; !ok {
				l.exact[v] = p
			}
			if _, ok := l.lower[strings.ToLower(v)]; !ok {
				l.lower[strings.ToLower(v)] = p
			}
		}
	}
	return l
}

// Get finds the profile for name, exactly first and then case-insensitively.
func (l *Lookup) Get(name string) (*Profile, bool) {
	if l == nil {
		return nil, false
	}
	if p, ok := l.exact[name]; ok {
		return p, true
	}
	p, ok := l.lower[strings.ToLower(strings.TrimSpace(name))]
	return p, ok
}

// Canonical returns the catalog name that name resolves to.
func (l *Lookup) Canonical(name string) (string, bool) {
	p, ok := l.Get(name)
	if !ok {
		return "", false
	}
	return p.Name, true
}

// Aisle returns the aisle recorded for name.
func (l *Lookup) Aisle(name string) (string, bool) {
	p, ok := l.Get(name)
	if !ok || p.Aisle == "" {
		return "", false
	}
	return p.Aisle, true
}

// Profiles returns the merged entries, without variants, sorted by name.
func (l *Lookup) Profiles() []Profile {
	if l == nil {
		return nil
	}
	out := make([]Profile, 0, len(l.base))
	for _, p := range l.base {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name) })
	return out
}

// OmitNames returns the names of entries filed under the "omit" aisle.
func (l *Lookup) OmitNames() []string {
	if l == nil {
		return nil
	}
	var out []string
	for _, p := range l.base {
		if strings.EqualFold(p.Aisle, "omit") {
			out = append(out, p.Name)
		}
	}
	return out
}

// Len returns the number of merged entries, not counting variants.
func (l *Lookup) Len() int {
	if l == nil {
		return 0
	}
	return len(l.base)
}
