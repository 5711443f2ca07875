package sources

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ormasoftchile/tseq/pkg/registry"
)

// DefaultReserved is the unit name discovery never loads.
const DefaultReserved = "test_functions"

// IsUnitFile reports whether a file name follows the test_*.yaml convention
// and is not the reserved unit.
func IsUnitFile(name, reserved string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	if ext != ".yaml" && ext != ".yml" {
		return false
	}
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	return strings.HasPrefix(stem, "test_") && stem != reserved
}

// Discover lists the YAML units in dir sorted by module name. A missing
// directory has no units.
func Discover(dir, reserved string) ([]registry.Source, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read sources dir %s: %w", dir, err)
	}

	var units []*FileUnit
	for _, entry := range entries {
		if entry.IsDir() || !IsUnitFile(entry.Name(), reserved) {
			continue
		}
		units = append(units, NewFileUnit(filepath.Join(dir, entry.Name())))
	}
	sort.Slice(units, func(i, j int) bool {
		return units[i].Name() < units[j].Name()
	})

	out := make([]registry.Source, len(units))
	for i, u := range units {
		out[i] = u
	}
	return out, nil
}

// NewLoader returns a loader that reloads the given fixed sources followed by
// whatever units dir holds at call time.
func NewLoader(dir, reserved string, fixed ...registry.Source) registry.Loader {
	return func(ctx context.Context) (*registry.Registry, []registry.Diagnostic) {
		found, err := Discover(dir, reserved)
		all := append(append([]registry.Source{}, fixed...), found...)
		reg, diags := registry.Reload(ctx, all)
		if err != nil {
			diags = append([]registry.Diagnostic{{
				Module: dir,
				Err:    fmt.Errorf("%w: %w", registry.ErrModuleLoad, err),
			}}, diags...)
		}
		return reg, diags
	}
}
