package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/viralzap/viralzap/internal/clock"
	"github.com/viralzap/viralzap/internal/credential/domain"
	providerdomain "github.com/viralzap/viralzap/internal/provider/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("credential.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Save(ctx context.Context, req domain.SaveRequest) (*domain.Response, error) {
	provider := strings.TrimSpace(req.Provider)
	if !providerdomain.IsKnownProvider(provider) {
		return nil, domain.ErrUnknownProvider
	}

	key := strings.TrimSpace(req.APIKey)
	if key == "" {
		return nil, domain.ErrInvalidKey
	}

	endpoint := strings.TrimSpace(req.Endpoint)
	if endpoint == "" || !strings.HasPrefix(endpoint, "http") {
		return nil, domain.ErrInvalidEndpoint
	}

	now := s.clock.Now()
	existing, err := s.repo.FindByProvider(ctx, s.db, provider)
	if err != nil {
		return nil, err
	}

	if existing != nil {
		existing.APIKey = key
		existing.Endpoint = endpoint
		existing.Active = true
		existing.UpdatedAt = now
		if err := s.repo.Update(ctx, s.db, existing); err != nil {
			return nil, err
		}
		resp := s.toResponse(existing)
		return &resp, nil
	}

	cred := &domain.Credential{
		ID:        s.genID.Generate().Int64(),
		Provider:  provider,
		APIKey:    key,
		Endpoint:  endpoint,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Insert(ctx, s.db, cred); err != nil {
		return nil, err
	}

	s.log.Info("credential saved", zap.String("provider", provider))
	resp := s.toResponse(cred)
	return &resp, nil
}

func (s *Service) Toggle(ctx context.Context, provider string, active bool) (*domain.Response, error) {
	cred, err := s.repo.FindByProvider(ctx, s.db, provider)
	if err != nil {
		return nil, err
	}
	if cred == nil {
		return nil, domain.ErrNotFound
	}

	if err := s.repo.UpdateActive(ctx, s.db, provider, active); err != nil {
		return nil, err
	}
	cred.Active = active

	resp := s.toResponse(cred)
	return &resp, nil
}

func (s *Service) Remove(ctx context.Context, provider string) error {
	cred, err := s.repo.FindByProvider(ctx, s.db, provider)
	if err != nil {
		return err
	}
	if cred == nil {
		return domain.ErrNotFound
	}
	return s.repo.Delete(ctx, s.db, provider)
}

func (s *Service) List(ctx context.Context) ([]domain.Response, error) {
	items, err := s.repo.FindAll(ctx, s.db)
	if err != nil {
		return nil, err
	}

	resp := make([]domain.Response, 0, len(items))
	for _, item := range items {
		resp = append(resp, s.toResponse(&item))
	}
	return resp, nil
}

func (s *Service) StoreBalance(ctx context.Context, provider string, balance float64, currency string) error {
	cred, err := s.repo.FindByProvider(ctx, s.db, provider)
	if err != nil {
		return err
	}
	if cred == nil {
		return domain.ErrNotFound
	}

	now := s.clock.Now()
	cred.Balance = &balance
	currency = strings.ToUpper(strings.TrimSpace(currency))
	cred.BalanceCurrency = &currency
	cred.BalanceCheckedAt = &now
	cred.UpdatedAt = now
	return s.repo.UpdateBalance(ctx, s.db, cred)
}

// ActiveClientCredentials feeds the provider gateway. This is the only path
// where the raw key leaves the credential store.
func (s *Service) ActiveClientCredentials(ctx context.Context) ([]providerdomain.ClientCredential, error) {
	items, err := s.repo.FindActive(ctx, s.db)
	if err != nil {
		return nil, err
	}

	creds := make([]providerdomain.ClientCredential, 0, len(items))
	for _, item := range items {
		creds = append(creds, providerdomain.ClientCredential{
			Provider: item.Provider,
			Endpoint: item.Endpoint,
			Key:      item.APIKey,
		})
	}
	return creds, nil
}

func (s *Service) toResponse(cred *domain.Credential) domain.Response {
	return domain.Response{
		ID:               snowflake.ID(cred.ID).String(),
		Provider:         cred.Provider,
		MaskedKey:        MaskKey(cred.APIKey),
		Endpoint:         cred.Endpoint,
		Active:           cred.Active,
		Balance:          cred.Balance,
		BalanceCurrency:  cred.BalanceCurrency,
		BalanceCheckedAt: cred.BalanceCheckedAt,
		CreatedAt:        cred.CreatedAt,
		UpdatedAt:        cred.UpdatedAt,
	}
}

// MaskKey keeps the first and last four characters of a key and hides the
// rest. Short keys are fully hidden.
func MaskKey(key string) string {
	key = strings.TrimSpace(key)
	if len(key) <= 8 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + strings.Repeat("*", len(key)-8) + key[len(key)-4:]
}
