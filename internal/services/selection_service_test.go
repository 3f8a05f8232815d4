package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/Tomas-vilte/dbts/internal/domain/ports"
	apperrors "github.com/Tomas-vilte/dbts/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSelectionService_Resolve(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		selections []string
		want       []ports.Query
	}{
		{
			name:       "bug numbers and urls",
			selections: []string{"123456", "#42", "https://bugs.debian.org/cgi-bin/bugreport.cgi?bug=7"},
			want:       []ports.Query{{Bug: 123456}, {Bug: 42}, {Bug: 7}},
		},
		{
			name:       "selector aliases",
			selections: []string{"maint:debian-dpkg@lists.debian.org", "src:dpkg", "from:jane@example.org", "commented:joe@example.org", "last:10"},
			want: []ports.Query{
				{Key: "maintainer", Value: "debian-dpkg@lists.debian.org"},
				{Key: "src", Value: "dpkg"},
				{Key: "submitter", Value: "jane@example.org"},
				{Key: "correspondent", Value: "joe@example.org"},
				{Key: "newest", Value: "10"},
			},
		},
		{
			name:       "value keeps later colons",
			selections: []string{"tag:a:b"},
			want:       []ports.Query{{Key: "tag", Value: "a:b"}},
		},
		{
			name:       "package name",
			selections: []string{"libc6"},
			want:       []ports.Query{{Key: "package", Value: "libc6"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewSelectionService(&MockLocalPackages{})

			got, err := svc.Resolve(ctx, tt.selections)

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSelectionService_SourcesFor(t *testing.T) {
	local := &MockLocalPackages{}
	local.On("SourcesFor", mock.Anything, "libc6").Return([]string{"glibc", "glibc-ports"}, nil)
	svc := NewSelectionService(local)

	got, err := svc.Resolve(context.Background(), []string{"srcfor:libc6"})

	require.NoError(t, err)
	assert.Equal(t, []ports.Query{{Key: "src", Value: "glibc"}, {Key: "src", Value: "glibc-ports"}}, got)
	local.AssertExpectations(t)
}

func TestSelectionService_SourcesForError(t *testing.T) {
	local := &MockLocalPackages{}
	local.On("SourcesFor", mock.Anything, "nope").Return(nil, errors.New("apt-cache failed"))
	svc := NewSelectionService(local)

	_, err := svc.Resolve(context.Background(), []string{"sourcefor:nope"})

	assert.EqualError(t, err, "apt-cache failed")
}

func TestSelectionService_UnknownSelector(t *testing.T) {
	svc := NewSelectionService(&MockLocalPackages{})

	_, err := svc.Resolve(context.Background(), []string{"colour:blue"})

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUnknownSelector)
	assert.True(t, apperrors.IsUsage(err))
	assert.Equal(t, `"colour" is not a known selector`, apperrors.UsageMessage(err))
}

func TestSelectionService_Paths(t *testing.T) {
	dir := t.TempDir()
	deb := filepath.Join(dir, "hello_1.0_amd64.deb")
	dsc := filepath.Join(dir, "hello_1.0.dsc")
	other := filepath.Join(dir, "README")
	tree := filepath.Join(dir, "Hello-1.0")
	for _, f := range []string{deb, dsc, other} {
		require.NoError(t, os.WriteFile(f, nil, 0o644))
	}
	require.NoError(t, os.Mkdir(tree, 0o755))

	local := &MockLocalPackages{}
	local.On("PackageFromDeb", mock.Anything, deb).Return("hello", nil)
	local.On("SourceFromDsc", dsc).Return("hello-src", nil)
	local.On("SourceFromUnpacked", tree).Return("hello-tree", nil)
	svc := NewSelectionService(local)

	t.Run("deb, dsc and unpacked tree", func(t *testing.T) {
		got, err := svc.Resolve(context.Background(), []string{deb, dsc, tree})

		require.NoError(t, err)
		assert.Equal(t, []ports.Query{
			{Key: "package", Value: "hello"},
			{Key: "src", Value: "hello-src"},
			{Key: "src", Value: "hello-tree"},
		}, got)
	})

	t.Run("other files are rejected", func(t *testing.T) {
		_, err := svc.Resolve(context.Background(), []string{other})

		assert.ErrorIs(t, err, apperrors.ErrInvalidPackageName)
		assert.Equal(t, `"`+other+`" is not a valid package name`, apperrors.UsageMessage(err))
	})

	t.Run("missing paths are rejected", func(t *testing.T) {
		_, err := svc.Resolve(context.Background(), []string{"Not_A_Package"})

		assert.ErrorIs(t, err, apperrors.ErrInvalidPackageName)
	})

	t.Run("control file errors propagate", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.dsc")
		require.NoError(t, os.WriteFile(bad, nil, 0o644))
		local.On("SourceFromDsc", bad).Return("", apperrors.ErrControlFile)

		_, err := svc.Resolve(context.Background(), []string{bad})

		assert.ErrorIs(t, err, apperrors.ErrControlFile)
	})
}

func TestSelectorNames(t *testing.T) {
	names := SelectorNames()

	assert.Len(t, names, 18)
	assert.True(t, sort.StringsAreSorted(names))
	assert.Contains(t, names, "srcfor")
	assert.Contains(t, names, "maint")
}
