package legacy

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/agnivade/levenshtein"

	"vdm-generator/internal/naming"
)

// ResolveArgumentSets returns every parameter list member must be generated
// with so that overloads published by an earlier run keep compiling.
//
// Without prior output for className, or without recorded argument sets for
// member, the result is current alone. Otherwise each legacy argument set is
// mapped onto current by parameter name and the sets are ordered by size. If
// current introduces parameters the largest legacy set lacks, one more set is
// appended: the largest legacy set followed by the new parameters in their
// original order.
func ResolveArgumentSets[P any](lookup Lookup, logger *slog.Logger, className, member string, current []P, nameOf func(P) string) ([][]P, error) {
	if logger == nil {
		logger = slog.Default()
	}
	fallback := [][]P{current}
	if lookup == nil {
		return fallback, nil
	}

	sig, err := lookup.Lookup(className)
	switch {
	case errors.Is(err, ErrClassNotFound):
		logger.Debug("no prior output for class", slog.String("class", className))
		return fallback, nil
	case err != nil:
		logger.Warn("ignoring unreadable prior output",
			slog.String("class", className),
			slog.String("error", err.Error()),
		)
		return fallback, nil
	case sig == nil:
		return fallback, nil
	}

	legacySets := sig.ArgumentSets(member)
	if len(legacySets) == 0 {
		return fallback, nil
	}

	byName := make(map[string]P, len(current))
	for _, p := range current {
		byName[nameOf(p)] = p
	}

	resolved := make([][]P, 0, len(legacySets)+1)
	for _, names := range legacySets {
		set := make([]P, 0, len(names))
		for _, name := range names {
			p, ok := byName[name]
			if !ok {
				return nil, missingParameter(className, member, name, current, nameOf)
			}
			set = append(set, p)
		}
		resolved = append(resolved, set)
	}
	sort.SliceStable(resolved, func(i, j int) bool {
		return len(resolved[i]) < len(resolved[j])
	})

	largest := resolved[len(resolved)-1]
	known := make(map[string]bool, len(largest))
	for _, p := range largest {
		known[nameOf(p)] = true
	}
	var added []P
	for _, p := range current {
		if !known[nameOf(p)] {
			added = append(added, p)
		}
	}
	if len(added) == 0 {
		return resolved, nil
	}

	superset := make([]P, 0, len(largest)+len(added))
	superset = append(superset, largest...)
	superset = append(superset, added...)
	logger.Debug("adding overload for new parameters",
		slog.String("class", className),
		slog.String("member", member),
		slog.Int("legacy_sets", len(resolved)),
		slog.Int("new_parameters", len(added)),
	)
	return append(resolved, superset), nil
}

func missingParameter[P any](className, member, name string, current []P, nameOf func(P) string) error {
	detail := fmt.Sprintf("%s.%s was generated with parameter %q which no longer exists", className, member, name)
	if suggestion := closest(name, current, nameOf); suggestion != "" {
		detail += fmt.Sprintf("; did you mean %q?", suggestion)
	}
	return &naming.Error{
		Err:    naming.ErrMissingLegacyParameter,
		Name:   name,
		Kind:   naming.KindMethodParameter,
		Detail: detail,
	}
}

// closest returns the current parameter name nearest to name, if any is
// close enough to be a plausible rename.
func closest[P any](name string, current []P, nameOf func(P) string) string {
	best, bestDist := "", -1
	for _, p := range current {
		candidate := nameOf(p)
		dist := levenshtein.ComputeDistance(name, candidate)
		if bestDist < 0 || dist < bestDist {
			best, bestDist = candidate, dist
		}
	}
	if bestDist < 0 || bestDist > len(name)/2+1 {
		return ""
	}
	return best
}
