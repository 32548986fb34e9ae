package syncing

import (
	"context"
	"time"

	metadomain "github.com/lfvieira/ads-sync-api/infrastructure/integrator/meta/domain"
	"github.com/lfvieira/ads-sync-api/infrastructure/repository"
	"github.com/lfvieira/ads-sync-api/internal/domain"
)

// Connector é a visão do orquestrador sobre o integrador remoto. O conector
// real (infrastructure/integrator/meta) satisfaz esta interface; os testes
// usam uma implementação fake com registro de chamadas.
type Connector interface {
	FetchBusinessAccounts(ctx context.Context) ([]metadomain.AdAccount, error)
	FetchCampaigns(ctx context.Context, accountID string) ([]metadomain.Campaign, error)
	FetchAdSets(ctx context.Context, accountID string) ([]metadomain.AdSet, error)
	FetchAds(ctx context.Context, accountID string) ([]metadomain.Ad, error)
	FetchInsights(ctx context.Context, accountID string, startDate, endDate time.Time) ([]metadomain.Insight, error)
	FetchYesterdayInsights(ctx context.Context, accountID string) ([]metadomain.Insight, error)
	TestConnectivity(ctx context.Context) bool
}

// Storage agrupa os repositórios, um por tipo de entidade.
type Storage struct {
	Accounts  repository.AccountRepository
	Campaigns repository.CampaignRepository
	AdSets    repository.AdSetRepository
	Ads       repository.AdRepository
	Insights  repository.InsightRepository
}

// Orchestrator dirige a caminhada pela hierarquia e a sincronização de
// métricas de desempenho.
type Orchestrator interface {
	SyncAccountHierarchy(ctx context.Context) *domain.SyncReport
	SyncYesterdayPerformanceData(ctx context.Context) *domain.SyncReport
	PerformFullSync(ctx context.Context) *domain.SyncReport
	SyncStatus(ctx context.Context) domain.SyncStatus
}
