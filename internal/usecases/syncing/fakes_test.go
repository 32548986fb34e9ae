package syncing

import (
	"context"
	"sync"
	"time"

	metadomain "github.com/lfvieira/ads-sync-api/infrastructure/integrator/meta/domain"
	"github.com/lfvieira/ads-sync-api/internal/domain"
)

// fakeConnector responde a partir de mapas pré-carregados e registra cada
// chamada recebida, permitindo asserções sobre a ordem e a quantidade de
// buscas sem nenhum servidor de verdade.
type fakeConnector struct {
	mu    sync.Mutex
	calls []string

	accounts    []metadomain.AdAccount
	accountsErr error

	campaignsByAccount map[string][]metadomain.Campaign
	campaignsErr       map[string]error

	adSetsByAccount map[string][]metadomain.AdSet
	adSetsErr       map[string]error

	adsByAccount map[string][]metadomain.Ad
	adsErr       map[string]error

	insightsByAccount map[string][]metadomain.Insight
	insightsErr       map[string]error

	connected bool
}

func newFakeConnector() *fakeConnector {
	return &fakeConnector{
		campaignsByAccount: map[string][]metadomain.Campaign{},
		campaignsErr:       map[string]error{},
		adSetsByAccount:    map[string][]metadomain.AdSet{},
		adSetsErr:          map[string]error{},
		adsByAccount:       map[string][]metadomain.Ad{},
		adsErr:             map[string]error{},
		insightsByAccount:  map[string][]metadomain.Insight{},
		insightsErr:        map[string]error{},
		connected:          true,
	}
}

func (f *fakeConnector) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeConnector) FetchBusinessAccounts(_ context.Context) ([]metadomain.AdAccount, error) {
	f.record("FetchBusinessAccounts")
	if f.accountsErr != nil {
		return nil, f.accountsErr
	}
	return f.accounts, nil
}

func (f *fakeConnector) FetchCampaigns(_ context.Context, accountID string) ([]metadomain.Campaign, error) {
	f.record("FetchCampaigns:" + accountID)
	if err := f.campaignsErr[accountID]; err != nil {
		return nil, err
	}
	return f.campaignsByAccount[accountID], nil
}

func (f *fakeConnector) FetchAdSets(_ context.Context, accountID string) ([]metadomain.AdSet, error) {
	f.record("FetchAdSets:" + accountID)
	if err := f.adSetsErr[accountID]; err != nil {
		return nil, err
	}
	return f.adSetsByAccount[accountID], nil
}

func (f *fakeConnector) FetchAds(_ context.Context, accountID string) ([]metadomain.Ad, error) {
	f.record("FetchAds:" + accountID)
	if err := f.adsErr[accountID]; err != nil {
		return nil, err
	}
	return f.adsByAccount[accountID], nil
}

func (f *fakeConnector) FetchInsights(_ context.Context, accountID string, _, _ time.Time) ([]metadomain.Insight, error) {
	f.record("FetchInsights:" + accountID)
	if err := f.insightsErr[accountID]; err != nil {
		return nil, err
	}
	return f.insightsByAccount[accountID], nil
}

func (f *fakeConnector) FetchYesterdayInsights(_ context.Context, accountID string) ([]metadomain.Insight, error) {
	f.record("FetchYesterdayInsights:" + accountID)
	if err := f.insightsErr[accountID]; err != nil {
		return nil, err
	}
	return f.insightsByAccount[accountID], nil
}

func (f *fakeConnector) TestConnectivity(_ context.Context) bool {
	f.record("TestConnectivity")
	return f.connected
}

// fakeAccountRepo guarda as contas em memória, indexadas pelo ID externo.
type fakeAccountRepo struct {
	mu      sync.Mutex
	calls   []string
	records map[string]*domain.AdAccount

	existsErr error
	insertErr error
	updateErr error
	countErr  error
	listErr   error
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{records: map[string]*domain.AdAccount{}}
}

func (f *fakeAccountRepo) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeAccountRepo) ExistsByID(externalID string) (bool, error) {
	f.record("ExistsByID:" + externalID)
	if f.existsErr != nil {
		return false, f.existsErr
	}
	_, ok := f.records[externalID]
	return ok, nil
}

func (f *fakeAccountRepo) Insert(account *domain.AdAccount) error {
	f.record("Insert:" + account.ExternalID)
	if f.insertErr != nil {
		return f.insertErr
	}
	f.records[account.ExternalID] = account
	return nil
}

func (f *fakeAccountRepo) Update(account *domain.AdAccount) error {
	f.record("Update:" + account.ExternalID)
	if f.updateErr != nil {
		return f.updateErr
	}
	f.records[account.ExternalID] = account
	return nil
}

func (f *fakeAccountRepo) Count() (int64, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	return int64(len(f.records)), nil
}

func (f *fakeAccountRepo) ListAccounts() ([]*domain.AdAccount, error) {
	f.record("ListAccounts")
	if f.listErr != nil {
		return nil, f.listErr
	}
	accounts := make([]*domain.AdAccount, 0, len(f.records))
	for _, account := range f.records {
		accounts = append(accounts, account)
	}
	return accounts, nil
}

type fakeCampaignRepo struct {
	mu      sync.Mutex
	calls   []string
	records map[string]*domain.Campaign

	existsErr error
	insertErr error
	updateErr error
}

func newFakeCampaignRepo() *fakeCampaignRepo {
	return &fakeCampaignRepo{records: map[string]*domain.Campaign{}}
}

func (f *fakeCampaignRepo) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeCampaignRepo) ExistsByID(externalID string) (bool, error) {
	f.record("ExistsByID:" + externalID)
	if f.existsErr != nil {
		return false, f.existsErr
	}
	_, ok := f.records[externalID]
	return ok, nil
}

func (f *fakeCampaignRepo) Insert(campaign *domain.Campaign) error {
	f.record("Insert:" + campaign.ExternalID)
	if f.insertErr != nil {
		return f.insertErr
	}
	f.records[campaign.ExternalID] = campaign
	return nil
}

func (f *fakeCampaignRepo) Update(campaign *domain.Campaign) error {
	f.record("Update:" + campaign.ExternalID)
	if f.updateErr != nil {
		return f.updateErr
	}
	f.records[campaign.ExternalID] = campaign
	return nil
}

func (f *fakeCampaignRepo) Count() (int64, error) {
	return int64(len(f.records)), nil
}

type fakeAdSetRepo struct {
	mu      sync.Mutex
	calls   []string
	records map[string]*domain.AdSet

	existsErr error
	insertErr error
	updateErr error
}

func newFakeAdSetRepo() *fakeAdSetRepo {
	return &fakeAdSetRepo{records: map[string]*domain.AdSet{}}
}

func (f *fakeAdSetRepo) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeAdSetRepo) ExistsByID(externalID string) (bool, error) {
	f.record("ExistsByID:" + externalID)
	if f.existsErr != nil {
		return false, f.existsErr
	}
	_, ok := f.records[externalID]
	return ok, nil
}

func (f *fakeAdSetRepo) Insert(adSet *domain.AdSet) error {
	f.record("Insert:" + adSet.ExternalID)
	if f.insertErr != nil {
		return f.insertErr
	}
	f.records[adSet.ExternalID] = adSet
	return nil
}

func (f *fakeAdSetRepo) Update(adSet *domain.AdSet) error {
	f.record("Update:" + adSet.ExternalID)
	if f.updateErr != nil {
		return f.updateErr
	}
	f.records[adSet.ExternalID] = adSet
	return nil
}

func (f *fakeAdSetRepo) Count() (int64, error) {
	return int64(len(f.records)), nil
}

type fakeAdRepo struct {
	mu      sync.Mutex
	calls   []string
	records map[string]*domain.Ad

	existsErr error
	insertErr error
	updateErr error
}

func newFakeAdRepo() *fakeAdRepo {
	return &fakeAdRepo{records: map[string]*domain.Ad{}}
}

func (f *fakeAdRepo) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeAdRepo) ExistsByID(externalID string) (bool, error) {
	f.record("ExistsByID:" + externalID)
	if f.existsErr != nil {
		return false, f.existsErr
	}
	_, ok := f.records[externalID]
	return ok, nil
}

func (f *fakeAdRepo) Insert(ad *domain.Ad) error {
	f.record("Insert:" + ad.ExternalID)
	if f.insertErr != nil {
		return f.insertErr
	}
	f.records[ad.ExternalID] = ad
	return nil
}

func (f *fakeAdRepo) Update(ad *domain.Ad) error {
	f.record("Update:" + ad.ExternalID)
	if f.updateErr != nil {
		return f.updateErr
	}
	f.records[ad.ExternalID] = ad
	return nil
}

func (f *fakeAdRepo) Count() (int64, error) {
	return int64(len(f.records)), nil
}

// fakeInsightRepo indexa pelo par (entity_id, date), a mesma chave de negócio
// do banco, de modo que BatchInsert repetido sobrescreve em vez de duplicar.
type fakeInsightRepo struct {
	mu      sync.Mutex
	calls   []string
	records map[string]*domain.InsightRecord

	batchErr error
}

func newFakeInsightRepo() *fakeInsightRepo {
	return &fakeInsightRepo{records: map[string]*domain.InsightRecord{}}
}

func insightKey(record *domain.InsightRecord) string {
	return record.EntityID + "|" + record.Date.Format("2006-01-02")
}

func (f *fakeInsightRepo) BatchInsert(records []*domain.InsightRecord) error {
	f.mu.Lock()
	f.calls = append(f.calls, "BatchInsert")
	f.mu.Unlock()

	if f.batchErr != nil {
		return f.batchErr
	}
	for _, record := range records {
		f.records[insightKey(record)] = record
	}
	return nil
}

func (f *fakeInsightRepo) Count() (int64, error) {
	return int64(len(f.records)), nil
}

func (f *fakeInsightRepo) GetByEntityIDAndDate(entityID string, date time.Time) (*domain.InsightRecord, error) {
	return f.records[entityID+"|"+date.Format("2006-01-02")], nil
}

func newFakeStorage() (Storage, *fakeAccountRepo, *fakeCampaignRepo, *fakeAdSetRepo, *fakeAdRepo, *fakeInsightRepo) {
	accounts := newFakeAccountRepo()
	campaigns := newFakeCampaignRepo()
	adSets := newFakeAdSetRepo()
	ads := newFakeAdRepo()
	insights := newFakeInsightRepo()

	storage := Storage{
		Accounts:  accounts,
		Campaigns: campaigns,
		AdSets:    adSets,
		Ads:       ads,
		Insights:  insights,
	}

	return storage, accounts, campaigns, adSets, ads, insights
}
