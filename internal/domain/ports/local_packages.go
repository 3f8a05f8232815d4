package ports

import (
	"context"

	"github.com/Tomas-vilte/dbts/internal/debian"
)

// LocalPackages answers questions about packages known to this machine.
type LocalPackages interface {
	SourceFromDsc(path string) (string, error)
	SourceFromUnpacked(dir string) (string, error)
	PackageFromDeb(ctx context.Context, path string) (string, error)
	SourcesFor(ctx context.Context, pkg string) ([]string, error)
	QueryInstalled(ctx context.Context, pkg string) (*debian.Installed, error)
	QueryVersions(ctx context.Context, pkgs []string) (map[string]debian.PackageVersion, error)
}
