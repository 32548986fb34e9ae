package syncing

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lfvieira/ads-sync-api/internal/domain"
)

// Service implementa o orquestrador de sincronização. Execuções sobrepostas
// são serializadas pelo runMutex: duas caminhadas pela hierarquia nunca se
// entrelaçam contra o mesmo armazenamento e a mesma cota.
type Service struct {
	connector Connector
	storage   Storage
	runMutex  sync.Mutex
}

func NewService(connector Connector, storage Storage) *Service {
	return &Service{
		connector: connector,
		storage:   storage,
	}
}

// SyncAccountHierarchy busca todas as contas e, para cada uma de forma
// independente, sincroniza conta, campanhas, conjuntos e anúncios nessa ordem.
// Uma falha em qualquer nível aborta apenas o restante daquela conta.
func (s *Service) SyncAccountHierarchy(ctx context.Context) *domain.SyncReport {
	s.runMutex.Lock()
	defer s.runMutex.Unlock()

	return s.syncAccountHierarchy(ctx)
}

// SyncYesterdayPerformanceData busca os insights de ontem de cada conta
// conhecida e persiste em lote. Busca vazia não gera chamada de persistência.
func (s *Service) SyncYesterdayPerformanceData(ctx context.Context) *domain.SyncReport {
	s.runMutex.Lock()
	defer s.runMutex.Unlock()

	return s.syncYesterdayPerformanceData(ctx)
}

// PerformFullSync compõe a sincronização da hierarquia seguida da de
// desempenho sobre o mesmo conjunto de contas, sob uma única serialização.
func (s *Service) PerformFullSync(ctx context.Context) *domain.SyncReport {
	s.runMutex.Lock()
	defer s.runMutex.Unlock()

	hierarchy := s.syncAccountHierarchy(ctx)
	performance := s.syncYesterdayPerformanceData(ctx)

	return &domain.SyncReport{
		StartedAt:      hierarchy.StartedAt,
		FinishedAt:     performance.FinishedAt,
		AccountsTotal:  hierarchy.AccountsTotal,
		AccountsSynced: hierarchy.AccountsSynced,
		Failures:       append(hierarchy.Failures, performance.Failures...),
	}
}

// SyncStatus nunca retorna erro: falhas de contagem ou de sondagem viram
// zeros e is_connected = false.
func (s *Service) SyncStatus(ctx context.Context) domain.SyncStatus {
	status := domain.SyncStatus{
		IsConnected: s.connector.TestConnectivity(ctx),
	}

	counters := []struct {
		name  string
		count func() (int64, error)
		dest  *int64
	}{
		{"accounts", s.storage.Accounts.Count, &status.AccountCount},
		{"campaigns", s.storage.Campaigns.Count, &status.CampaignCount},
		{"adsets", s.storage.AdSets.Count, &status.AdSetCount},
		{"ads", s.storage.Ads.Count, &status.AdCount},
		{"insights", s.storage.Insights.Count, &status.ReportingCount},
	}

	for _, counter := range counters {
		count, err := counter.count()
		if err != nil {
			logrus.WithError(err).Warnf("Erro ao contar %s para o status de sincronização", counter.name)
			continue
		}
		*counter.dest = count
	}

	return status
}

func (s *Service) syncAccountHierarchy(ctx context.Context) *domain.SyncReport {
	report := &domain.SyncReport{StartedAt: time.Now()}

	logrus.Info("Iniciando sincronização da hierarquia de contas")

	dtos, err := s.connector.FetchBusinessAccounts(ctx)
	if err != nil {
		logrus.WithError(err).Error("Erro ao buscar contas de anúncio do negócio")
		report.Failures = append(report.Failures, domain.SyncFailure{
			Stage: domain.SyncStageAccounts,
			Err:   err,
		})
		report.FinishedAt = time.Now()
		return report
	}

	accounts := TransformAccounts(dtos)
	report.AccountsTotal = len(accounts)

	for _, account := range accounts {
		stage, err := s.syncAccountTree(ctx, account)
		if err != nil {
			// A falha é registrada e contida na fronteira da conta: as
			// contas irmãs seguem normalmente.
			logrus.WithFields(logrus.Fields{
				"account_id": account.ExternalID,
				"stage":      stage,
				"error":      err.Error(),
			}).Error("Erro ao sincronizar subárvore da conta")

			report.Failures = append(report.Failures, domain.SyncFailure{
				AccountID: account.ExternalID,
				Stage:     stage,
				Err:       err,
			})
			continue
		}

		report.AccountsSynced++
	}

	report.FinishedAt = time.Now()

	logrus.WithFields(logrus.Fields{
		"accounts_total":  report.AccountsTotal,
		"accounts_synced": report.AccountsSynced,
		"failures":        len(report.Failures),
		"duration":        report.FinishedAt.Sub(report.StartedAt).String(),
	}).Info("Sincronização da hierarquia de contas concluída")

	return report
}

// syncAccountTree sincroniza a subárvore de uma conta na ordem
// conta -> campanhas -> conjuntos -> anúncios, garantindo que todo filho
// persista depois do pai.
func (s *Service) syncAccountTree(ctx context.Context, account *domain.AdAccount) (domain.SyncStage, error) {
	if err := s.upsertAccount(account); err != nil {
		return domain.SyncStageAccounts, err
	}

	campaignDTOs, err := s.connector.FetchCampaigns(ctx, account.ExternalID)
	if err != nil {
		return domain.SyncStageCampaigns, err
	}

	campaigns := TransformCampaigns(account.ExternalID, campaignDTOs)
	syncedCampaigns := make(map[string]struct{}, len(campaigns))
	for _, campaign := range campaigns {
		if err := s.upsertCampaign(campaign); err != nil {
			return domain.SyncStageCampaigns, err
		}
		syncedCampaigns[campaign.ExternalID] = struct{}{}
	}

	adSetDTOs, err := s.connector.FetchAdSets(ctx, account.ExternalID)
	if err != nil {
		return domain.SyncStageAdSets, err
	}

	adSets := TransformAdSets(account.ExternalID, adSetDTOs)
	syncedAdSets := make(map[string]struct{}, len(adSets))
	for _, adSet := range adSets {
		if _, ok := syncedCampaigns[adSet.CampaignID]; !ok {
			logrus.WithFields(logrus.Fields{
				"adset_id":    adSet.ExternalID,
				"campaign_id": adSet.CampaignID,
			}).Warn("Conjunto de anúncios sem campanha sincronizada. Pulando.")
			continue
		}

		if err := s.upsertAdSet(adSet); err != nil {
			return domain.SyncStageAdSets, err
		}
		syncedAdSets[adSet.ExternalID] = struct{}{}
	}

	adDTOs, err := s.connector.FetchAds(ctx, account.ExternalID)
	if err != nil {
		return domain.SyncStageAds, err
	}

	ads := TransformAds(account.ExternalID, adDTOs)
	for _, ad := range ads {
		if _, ok := syncedAdSets[ad.AdSetID]; !ok {
			logrus.WithFields(logrus.Fields{
				"ad_id":    ad.ExternalID,
				"adset_id": ad.AdSetID,
			}).Warn("Anúncio sem conjunto sincronizado. Pulando.")
			continue
		}

		if err := s.upsertAd(ad); err != nil {
			return domain.SyncStageAds, err
		}
	}

	return "", nil
}

func (s *Service) syncYesterdayPerformanceData(ctx context.Context) *domain.SyncReport {
	report := &domain.SyncReport{StartedAt: time.Now()}

	logrus.Info("Iniciando sincronização de métricas de desempenho de ontem")

	accounts, err := s.storage.Accounts.ListAccounts()
	if err != nil {
		logrus.WithError(err).Error("Erro ao listar contas conhecidas para sincronização de desempenho")
		report.Failures = append(report.Failures, domain.SyncFailure{
			Stage: domain.SyncStageInsights,
			Err:   err,
		})
		report.FinishedAt = time.Now()
		return report
	}

	report.AccountsTotal = len(accounts)

	for _, account := range accounts {
		if err := s.syncAccountInsights(ctx, account.ExternalID); err != nil {
			logrus.WithFields(logrus.Fields{
				"account_id": account.ExternalID,
				"error":      err.Error(),
			}).Error("Erro ao sincronizar métricas da conta")

			report.Failures = append(report.Failures, domain.SyncFailure{
				AccountID: account.ExternalID,
				Stage:     domain.SyncStageInsights,
				Err:       err,
			})
			continue
		}

		report.AccountsSynced++
	}

	report.FinishedAt = time.Now()

	logrus.WithFields(logrus.Fields{
		"accounts_total":  report.AccountsTotal,
		"accounts_synced": report.AccountsSynced,
		"failures":        len(report.Failures),
		"duration":        report.FinishedAt.Sub(report.StartedAt).String(),
	}).Info("Sincronização de métricas de desempenho concluída")

	return report
}

func (s *Service) syncAccountInsights(ctx context.Context, accountID string) error {
	dtos, err := s.connector.FetchYesterdayInsights(ctx, accountID)
	if err != nil {
		return err
	}

	records, malformed := TransformInsightsList(accountID, dtos)
	for _, m := range malformed {
		logrus.WithFields(logrus.Fields{
			"account_id": accountID,
			"error":      m.Error(),
		}).Warn("Registro de insight malformado descartado")
	}

	if len(records) == 0 {
		logrus.WithField("account_id", accountID).Debug("Nenhum insight para persistir")
		return nil
	}

	return s.storage.Insights.BatchInsert(records)
}

// A regra de upsert é a mesma em todos os níveis da hierarquia: a existência
// no armazenamento decide entre insert e update. Não há diff em memória.

func (s *Service) upsertAccount(account *domain.AdAccount) error {
	exists, err := s.storage.Accounts.ExistsByID(account.ExternalID)
	if err != nil {
		return err
	}
	if exists {
		return s.storage.Accounts.Update(account)
	}
	return s.storage.Accounts.Insert(account)
}

func (s *Service) upsertCampaign(campaign *domain.Campaign) error {
	exists, err := s.storage.Campaigns.ExistsByID(campaign.ExternalID)
	if err != nil {
		return err
	}
	if exists {
		return s.storage.Campaigns.Update(campaign)
	}
	return s.storage.Campaigns.Insert(campaign)
}

func (s *Service) upsertAdSet(adSet *domain.AdSet) error {
	exists, err := s.storage.AdSets.ExistsByID(adSet.ExternalID)
	if err != nil {
		return err
	}
	if exists {
		return s.storage.AdSets.Update(adSet)
	}
	return s.storage.AdSets.Insert(adSet)
}

func (s *Service) upsertAd(ad *domain.Ad) error {
	exists, err := s.storage.Ads.ExistsByID(ad.ExternalID)
	if err != nil {
		return err
	}
	if exists {
		return s.storage.Ads.Update(ad)
	}
	return s.storage.Ads.Insert(ad)
}
