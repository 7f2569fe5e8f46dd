package config

import (
	"fmt"
	"strings"
)

// Validate checks the config for:
//   - Duplicate graph names and duplicate node names within a graph
//   - Calc nodes referencing names not declared earlier in the same graph
//     (declaration order is construction order, so a forward reference
//     would be rejected at build time anyway; catching it here reports
//     every problem at once instead of failing on the first)
//   - Required fields
//
// Operation names and arities are not checked here; the graph build
// validates them against the live registry.
func Validate(cfg *GraphsConfig) error {
	if cfg.Version == "" {
		return fmt.Errorf("config: version is required")
	}
	graphNames := make(map[string]struct{})
	var errs []string

	for i, gd := range cfg.Graphs {
		if gd.Name == "" {
			errs = append(errs, fmt.Sprintf("graphs[%d]: name is required", i))
			continue
		}
		if _, ok := graphNames[gd.Name]; ok {
			errs = append(errs, fmt.Sprintf("duplicate graph name %q", gd.Name))
			continue
		}
		graphNames[gd.Name] = struct{}{}
		validateGraphDef(&gd, &errs)
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

func validateGraphDef(gd *GraphDef, errs *[]string) {
	declared := make(map[string]struct{})

	for i, s := range gd.Sources {
		if s.Name == "" {
			*errs = append(*errs, fmt.Sprintf("graph %s: sources[%d]: name is required", gd.Name, i))
			continue
		}
		if _, ok := declared[s.Name]; ok {
			*errs = append(*errs, fmt.Sprintf("graph %s: duplicate node name %q", gd.Name, s.Name))
			continue
		}
		declared[s.Name] = struct{}{}
	}

	for i, c := range gd.Calcs {
		if c.Name == "" {
			*errs = append(*errs, fmt.Sprintf("graph %s: calcs[%d]: name is required", gd.Name, i))
			continue
		}
		if _, ok := declared[c.Name]; ok {
			*errs = append(*errs, fmt.Sprintf("graph %s: duplicate node name %q", gd.Name, c.Name))
			continue
		}
		if c.Op == "" {
			*errs = append(*errs, fmt.Sprintf("graph %s: calc %s: op is required", gd.Name, c.Name))
		}
		for _, u := range c.Upstream {
			if _, ok := declared[u]; !ok {
				*errs = append(*errs, fmt.Sprintf("graph %s: calc %s: upstream %q is not declared earlier", gd.Name, c.Name, u))
			}
		}
		declared[c.Name] = struct{}{}
	}
}
