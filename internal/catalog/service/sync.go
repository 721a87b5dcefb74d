package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/viralzap/viralzap/internal/catalog/classify"
	"github.com/viralzap/viralzap/internal/catalog/domain"
	"github.com/viralzap/viralzap/internal/config"
	providerdomain "github.com/viralzap/viralzap/internal/provider/domain"
	settingsdomain "github.com/viralzap/viralzap/internal/settings/domain"
	"github.com/viralzap/viralzap/pkg/db"
	"go.uber.org/zap"
)

const maxErrorSamples = 5

// SyncAll pulls the full service list from every configured provider,
// classifies and prices each entry and upserts it. A provider whose list call
// fails is reported and skipped; a single bad entry never aborts the batch.
// Re-running against an unchanged upstream catalog only refreshes timestamps.
func (s *Service) SyncAll(ctx context.Context) (*domain.SyncReport, error) {
	pricing := s.pricing.Get()
	classifier := classify.New(toRules(pricing.Platforms), toRules(pricing.Kinds))
	fxRate := s.fxRates.Rate(ctx)
	seedMarkup := s.seedMarkup(ctx, pricing.DefaultMarkupPercent)

	report := &domain.SyncReport{
		ProviderFailures: map[string]string{},
	}

	for _, provider := range providerdomain.KnownProviders() {
		result := s.gateway.ListServices(ctx, provider)
		if !result.OK() {
			// Distinguishes "nothing to import" from "import failed";
			// an unconfigured provider just skips its portion.
			report.ProviderFailures[provider] = result.Err
			s.log.Warn("provider sync skipped",
				zap.String("provider", provider),
				zap.String("reason", result.Err),
			)
			continue
		}

		s.log.Info("syncing provider catalog",
			zap.String("provider", provider),
			zap.Int("services", len(result.Services)),
		)

		for _, remote := range result.Services {
			inserted, err := s.upsertRemote(ctx, provider, remote, classifier, seedMarkup, fxRate)
			if err != nil {
				report.Failed++
				if len(report.Errors) < maxErrorSamples {
					report.Errors = append(report.Errors, fmt.Sprintf("%s/%s: %v", provider, remote.Service, err))
				}
				s.log.Warn("service upsert failed",
					zap.String("provider", provider),
					zap.String("provider_service_id", remote.Service.String()),
					zap.Error(err),
				)
				continue
			}
			if inserted {
				report.Imported++
			} else {
				report.Updated++
			}
		}
	}

	s.log.Info("catalog sync finished",
		zap.Int("imported", report.Imported),
		zap.Int("updated", report.Updated),
		zap.Int("failed", report.Failed),
	)
	return report, nil
}

func (s *Service) upsertRemote(
	ctx context.Context,
	provider string,
	remote providerdomain.RemoteService,
	classifier *classify.Classifier,
	defaultMarkup float64,
	fxRate float64,
) (bool, error) {
	providerServiceID := strings.TrimSpace(remote.Service.String())
	if providerServiceID == "" {
		return false, fmt.Errorf("entry without a service id")
	}

	platform, kind := classifier.Classify(remote.Name, remote.Category, domain.PlatformOther, domain.KindOther)
	now := s.clock.Now()

	existing, err := s.repo.FindByProviderKey(ctx, s.db, provider, providerServiceID)
	if err != nil {
		return false, err
	}
	if existing != nil {
		return false, s.refreshExisting(ctx, existing, remote, platform, kind, fxRate, now)
	}

	providerRate := remote.Rate.Float()
	svc := &domain.Service{
		ID:                s.genID.Generate().Int64(),
		Provider:          provider,
		ProviderServiceID: providerServiceID,
		Name:              remote.Name,
		Description:       remote.Category,
		Platform:          platform,
		Kind:              kind,
		ProviderRate:      providerRate,
		Rate:              domain.LocalRate(providerRate, fxRate, domain.MarkupPercentage, defaultMarkup),
		MarkupType:        domain.MarkupPercentage,
		MarkupValue:       defaultMarkup,
		Min:               remote.Min.Int(),
		Max:               remote.Max.Int(),
		Dripfeed:          bool(remote.Dripfeed),
		Refill:            bool(remote.Refill),
		Cancel:            bool(remote.Cancel),
		Status:            domain.StatusActive,
		LastSyncAt:        now,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	err = s.repo.Insert(ctx, s.db, svc)
	if err == nil {
		return true, nil
	}
	if !db.IsDuplicateKeyErr(err) {
		return false, err
	}

	// A concurrent sync inserted the same (provider, provider_service_id)
	// between our lookup and the insert; take the update path instead.
	existing, findErr := s.repo.FindByProviderKey(ctx, s.db, provider, providerServiceID)
	if findErr != nil {
		return false, findErr
	}
	if existing == nil {
		return false, err
	}
	return false, s.refreshExisting(ctx, existing, remote, platform, kind, fxRate, now)
}

// refreshExisting overwrites the upstream-owned columns and reprices; the
// stored markup stays authoritative.
func (s *Service) refreshExisting(
	ctx context.Context,
	existing *domain.Service,
	remote providerdomain.RemoteService,
	platform, kind string,
	fxRate float64,
	now time.Time,
) error {
	existing.Name = remote.Name
	existing.Description = remote.Category
	existing.Platform = platform
	existing.Kind = kind
	existing.ProviderRate = remote.Rate.Float()
	existing.Rate = domain.LocalRate(existing.ProviderRate, fxRate, existing.MarkupType, existing.MarkupValue)
	existing.Min = remote.Min.Int()
	existing.Max = remote.Max.Int()
	existing.Dripfeed = bool(remote.Dripfeed)
	existing.Refill = bool(remote.Refill)
	existing.Cancel = bool(remote.Cancel)
	existing.LastSyncAt = now
	existing.UpdatedAt = now
	return s.repo.Update(ctx, s.db, existing)
}

// seedMarkup prefers the admin's markup_percentage setting for newly imported
// rows; the pricing config value is the fallback. Stored rows keep their own
// markup either way.
func (s *Service) seedMarkup(ctx context.Context, fallback float64) float64 {
	if s.settings == nil {
		return fallback
	}
	row, err := s.settings.Get(ctx, settingsdomain.KeyMarkupPercentage)
	if err != nil || row == nil {
		return fallback
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(row.Value), 64)
	if err != nil || value < 0 {
		return fallback
	}
	return value
}

func toRules(rules []config.KeywordRule) []classify.Rule {
	out := make([]classify.Rule, 0, len(rules))
	for _, rule := range rules {
		out = append(out, classify.Rule{Keyword: rule.Keyword, Label: rule.Label})
	}
	return out
}
