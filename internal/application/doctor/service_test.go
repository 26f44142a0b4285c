package doctor

import (
	"context"
	"errors"
	"testing"

	"github.com/doeshing/recogaize/internal/domain"
)

type stubConfigProvider struct {
	cfg domain.Config
	err error
}

func (s stubConfigProvider) Load(context.Context) (domain.Config, error) {
	return s.cfg, s.err
}

type stubClient struct {
	health domain.HealthResponse
	err    error
}

func (s stubClient) GenerateCaption(context.Context, domain.ImageFile) (domain.CaptionResponse, error) {
	return domain.CaptionResponse{}, nil
}

func (s stubClient) CheckHealth(context.Context) (domain.HealthResponse, error) {
	return s.health, s.err
}

type stubArchive struct{ err error }

func (a stubArchive) Save(domain.HistoryRecord) error { return nil }
func (a stubArchive) Records(int, string) ([]domain.HistoryRecord, error) {
	return nil, a.err
}
func (a stubArchive) Clear() error { return nil }
func (a stubArchive) ExportJSON(string) error { return nil }
func (a stubArchive) PruneOlderThan(int) error { return nil }
func (a stubArchive) Path() string { return "/tmp/history.db" }

func statusOf(report domain.HealthReport, name string) domain.HealthStatus {
	for _, c := range report.Checks {
		if c.Name == name {
			return c.Status
		}
	}
	return ""
}

func baseConfig() domain.Config {
	cfg := domain.Config{ConfigFormatVersion: "1"}
	cfg.API.BaseURL = "http://localhost:8000/api"
	cfg.History.Archive = true
	return cfg
}

func TestDoctorHealthyEnvironment(t *testing.T) {
	svc := &Service{
		ConfigProvider: stubConfigProvider{cfg: baseConfig()},
		Client:         stubClient{health: domain.HealthResponse{Status: "healthy", ModelLoaded: true}},
		Archive:        stubArchive{},
	}
	report, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if report.Failed() {
		t.Fatalf("unexpected failure: %+v", report.Checks)
	}
	if got := statusOf(report, "Captioning API"); got != domain.HealthOK {
		t.Fatalf("api status = %s", got)
	}
	if got := statusOf(report, "Caption cache"); got != domain.HealthWarn {
		t.Fatalf("cache status = %s", got)
	}
}

func TestDoctorReportsUnreachableAPI(t *testing.T) {
	svc := &Service{
		ConfigProvider: stubConfigProvider{cfg: baseConfig()},
		Client:         stubClient{err: domain.NewCaptionError("Error: connection refused", nil)},
		Archive:        stubArchive{err: errors.New("disk I/O error")},
	}
	report, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !report.Failed() {
		t.Fatal("expected failed report")
	}
	if got := statusOf(report, "History archive"); got != domain.HealthError {
		t.Fatalf("archive status = %s", got)
	}
}

func TestDoctorModelNotLoadedWarns(t *testing.T) {
	svc := &Service{
		ConfigProvider: stubConfigProvider{cfg: baseConfig()},
		Client:         stubClient{health: domain.HealthResponse{Status: "loading"}},
	}
	report, _ := svc.Run(context.Background())
	if got := statusOf(report, "Captioning API"); got != domain.HealthWarn {
		t.Fatalf("api status = %s", got)
	}
}

func TestDoctorStopsOnConfigError(t *testing.T) {
	svc := &Service{ConfigProvider: stubConfigProvider{err: errors.New("bad yaml")}}
	report, err := svc.Run(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if len(report.Checks) != 1 || report.Checks[0].Status != domain.HealthError {
		t.Fatalf("unexpected checks %+v", report.Checks)
	}
}
