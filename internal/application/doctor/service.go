package doctor

import (
	"context"
	"fmt"
	"time"

	"github.com/doeshing/recogaize/internal/domain"
	"github.com/doeshing/recogaize/internal/ports"
)

const healthTimeout = 5 * time.Second

// Service runs environment diagnostics.
type Service struct {
	ConfigProvider ports.ConfigProvider
	Client         ports.CaptionClient
	Archive        ports.HistoryRepository
	Cache          ports.CacheRepository
}

// Run executes checks and returns a report.
func (s *Service) Run(ctx context.Context) (domain.HealthReport, error) {
	var checks []domain.HealthCheck

	cfg, err := s.ConfigProvider.Load(ctx)
	if err != nil {
		checks = append(checks, fail("Config file", fmt.Sprintf("load failed: %v", err)))
		return domain.HealthReport{Checks: checks}, err
	}
	checks = append(checks, ok("Config file", fmt.Sprintf("loaded %s", cfg.ConfigFormatVersion)))

	checks = append(checks, s.apiCheck(ctx, cfg.API.BaseURL))

	switch {
	case !cfg.History.Archive:
		checks = append(checks, warn("History archive", "disabled in config"))
	case s.Archive == nil:
		checks = append(checks, warn("History archive", "archive not initialized"))
	default:
		if _, err := s.Archive.Records(1, ""); err != nil {
			checks = append(checks, fail("History archive", err.Error()))
		} else {
			checks = append(checks, ok("History archive", s.Archive.Path()))
		}
	}

	if s.Cache == nil {
		checks = append(checks, warn("Caption cache", "disabled"))
	} else if entries, err := s.Cache.Entries(ctx); err != nil {
		checks = append(checks, fail("Caption cache", fmt.Sprintf("%s: %v", s.Cache.Location(), err)))
	} else {
		checks = append(checks, ok("Caption cache", fmt.Sprintf("%s (%d entries)", s.Cache.Location(), len(entries))))
	}

	return domain.HealthReport{Checks: checks}, nil
}

func (s *Service) apiCheck(ctx context.Context, baseURL string) domain.HealthCheck {
	if s.Client == nil {
		return warn("Captioning API", "client not initialized")
	}
	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()

	health, err := s.Client.CheckHealth(ctx)
	if err != nil {
		return fail("Captioning API", fmt.Sprintf("%s: %v", baseURL, err))
	}
	if health.Status != "" && !health.ModelLoaded {
		return warn("Captioning API", fmt.Sprintf("%s reachable, status %q but model not loaded", baseURL, health.Status))
	}
	return ok("Captioning API", fmt.Sprintf("%s reachable", baseURL))
}

func ok(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthOK, Details: details}
}

func warn(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthWarn, Details: details}
}

func fail(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthError, Details: details}
}
