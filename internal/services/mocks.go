package services

import (
	"context"

	"github.com/Tomas-vilte/dbts/internal/debian"
	"github.com/Tomas-vilte/dbts/internal/domain/models"
	"github.com/Tomas-vilte/dbts/internal/domain/ports"
	"github.com/Tomas-vilte/dbts/internal/dot"
	"github.com/stretchr/testify/mock"
)

type (
	MockLocalPackages struct {
		mock.Mock
	}

	MockBugTracker struct {
		mock.Mock
	}

	MockReportPage struct {
		mock.Mock
	}
)

func (m *MockLocalPackages) SourceFromDsc(path string) (string, error) {
	args := m.Called(path)
	return args.String(0), args.Error(1)
}

func (m *MockLocalPackages) SourceFromUnpacked(dir string) (string, error) {
	args := m.Called(dir)
	return args.String(0), args.Error(1)
}

func (m *MockLocalPackages) PackageFromDeb(ctx context.Context, path string) (string, error) {
	args := m.Called(ctx, path)
	return args.String(0), args.Error(1)
}

func (m *MockLocalPackages) SourcesFor(ctx context.Context, pkg string) ([]string, error) {
	args := m.Called(ctx, pkg)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockLocalPackages) QueryInstalled(ctx context.Context, pkg string) (*debian.Installed, error) {
	args := m.Called(ctx, pkg)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*debian.Installed), args.Error(1)
}

func (m *MockLocalPackages) QueryVersions(ctx context.Context, pkgs []string) (map[string]debian.PackageVersion, error) {
	args := m.Called(ctx, pkgs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]debian.PackageVersion), args.Error(1)
}

func (m *MockBugTracker) GetBugs(ctx context.Context, queries ...ports.Query) ([]models.Bug, error) {
	args := m.Called(ctx, queries)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Bug), args.Error(1)
}

func (m *MockBugTracker) GetStatus(ctx context.Context, ids ...int) ([]models.Bug, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Bug), args.Error(1)
}

func (m *MockBugTracker) GetBugLog(ctx context.Context, id int) (map[int]models.Message, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int]models.Message), args.Error(1)
}

func (m *MockBugTracker) FetchReportPage(ctx context.Context, id int) (ports.ReportPage, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(ports.ReportPage), args.Error(1)
}

func (m *MockBugTracker) FetchVersionGraph(ctx context.Context, url string) (*dot.Graph, error) {
	args := m.Called(ctx, url)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dot.Graph), args.Error(1)
}

func (m *MockReportPage) Maintainers() []string {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]string)
}

func (m *MockReportPage) VersionGraphURL() string {
	return m.Called().String(0)
}

func (m *MockReportPage) Messages() []ports.PageMessage {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]ports.PageMessage)
}

func (m *MockReportPage) Attachments() map[int][]models.Attachment {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(map[int][]models.Attachment)
}
