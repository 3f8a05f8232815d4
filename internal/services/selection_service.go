package services

import (
	"context"
	"os"
	"sort"
	"strings"

	"github.com/Tomas-vilte/dbts/internal/debian"
	"github.com/Tomas-vilte/dbts/internal/domain/ports"
	apperrors "github.com/Tomas-vilte/dbts/internal/errors"
	"github.com/Tomas-vilte/dbts/internal/logger"
)

// sourcesFor marks selectors resolved locally through apt.
const sourcesFor = "sourcefor"

// selectors maps "key:value" selector names to get_bugs keys.
var selectors = map[string]string{
	"archive":       "archive",
	"commented":     "correspondent",
	"correspondent": "correspondent",
	"maint":         "maintainer",
	"maintainer":    "maintainer",
	"last":          "newest",
	"newest":        "newest",
	"owner":         "owner",
	"package":       "package",
	"pkg":           "package",
	"severity":      "severity",
	"source":        "src",
	"src":           "src",
	"from":          "submitter",
	"submitter":     "submitter",
	"tag":           "tag",
	"sourcefor":     sourcesFor,
	"srcfor":        sourcesFor,
}

// SelectionService turns ls arguments into BTS queries.
type SelectionService struct {
	local ports.LocalPackages
}

func NewSelectionService(local ports.LocalPackages) *SelectionService {
	return &SelectionService{local: local}
}

// Resolve converts every selection into one or more queries. A selection is
// tried as a bug spec, then a "key:value" selector, then a package name, and
// finally a path to a .deb, a .dsc or an unpacked source tree.
func (s *SelectionService) Resolve(ctx context.Context, selections []string) ([]ports.Query, error) {
	var queries []ports.Query
	for _, selection := range selections {
		q, err := s.resolveOne(ctx, selection)
		if err != nil {
			return nil, err
		}
		logger.Debug(ctx, "resolved selection", "selection", selection, "queries", len(q))
		queries = append(queries, q...)
	}
	return queries, nil
}

func (s *SelectionService) resolveOne(ctx context.Context, selection string) ([]ports.Query, error) {
	if id, err := debian.ParseBugSpec(selection); err == nil {
		return []ports.Query{{Bug: id}}, nil
	}

	if name, value, found := strings.Cut(selection, ":"); found {
		key, ok := selectors[name]
		if !ok {
			return nil, apperrors.ErrUnknownSelector.WithContext("argument", name)
		}
		if key != sourcesFor {
			return []ports.Query{{Key: key, Value: value}}, nil
		}
		sources, err := s.local.SourcesFor(ctx, value)
		if err != nil {
			return nil, err
		}
		return srcQueries(sources...), nil
	}

	if debian.IsPackageName(selection) {
		return []ports.Query{{Key: "package", Value: selection}}, nil
	}

	return s.resolvePath(ctx, selection)
}

func (s *SelectionService) resolvePath(ctx context.Context, path string) ([]ports.Query, error) {
	invalid := apperrors.ErrInvalidPackageName.WithContext("argument", path)

	info, err := os.Stat(path)
	if err != nil {
		return nil, invalid
	}

	switch {
	case info.IsDir():
		src, err := s.local.SourceFromUnpacked(path)
		if err != nil {
			return nil, err
		}
		return srcQueries(src), nil
	case strings.HasSuffix(path, ".deb"):
		pkg, err := s.local.PackageFromDeb(ctx, path)
		if err != nil {
			return nil, err
		}
		return []ports.Query{{Key: "package", Value: pkg}}, nil
	case strings.HasSuffix(path, ".dsc"):
		src, err := s.local.SourceFromDsc(path)
		if err != nil {
			return nil, err
		}
		return srcQueries(src), nil
	}
	return nil, invalid
}

func srcQueries(sources ...string) []ports.Query {
	queries := make([]ports.Query, 0, len(sources))
	for _, src := range sources {
		queries = append(queries, ports.Query{Key: "src", Value: src})
	}
	return queries
}

// SelectorNames returns the accepted selector keys, sorted.
func SelectorNames() []string {
	names := make([]string, 0, len(selectors))
	for name := range selectors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
