// Package packages holds the launch package price table. Prices are
// integral lamports; fractional SOL never enters the system.
package packages

import (
	"errors"
	"sort"

	"github.com/MintForge/server/internal/config"
)

// ErrNotFound indicates an unknown package id.
var ErrNotFound = errors.New("packages: not found")

// Package is a priced launch tier.
type Package struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Lamports int64  `json:"lamports"`
}

// Table is an immutable lookup of launch packages. It is built once at
// startup from config and is safe for concurrent reads.
type Table struct {
	byID map[string]Package
	list []Package
}

// NewTable builds a package table from configuration.
// The listing order is cheapest first.
func NewTable(cfg map[string]config.Package) *Table {
	t := &Table{byID: make(map[string]Package, len(cfg))}
	for id, p := range cfg {
		pkg := Package{ID: id, Label: p.Label, Lamports: p.Lamports}
		t.byID[id] = pkg
		t.list = append(t.list, pkg)
	}
	sort.Slice(t.list, func(i, j int) bool {
		if t.list[i].Lamports == t.list[j].Lamports {
			return t.list[i].ID < t.list[j].ID
		}
		return t.list[i].Lamports < t.list[j].Lamports
	})
	return t
}

// Get returns the package for id.
func (t *Table) Get(id string) (Package, error) {
	pkg, ok := t.byID[id]
	if !ok {
		return Package{}, ErrNotFound
	}
	return pkg, nil
}

// List returns all packages, cheapest first.
func (t *Table) List() []Package {
	out := make([]Package, len(t.list))
	copy(out, t.list)
	return out
}
