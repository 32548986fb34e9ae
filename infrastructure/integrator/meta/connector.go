package meta

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	metadomain "github.com/lfvieira/ads-sync-api/infrastructure/integrator/meta/domain"
	"github.com/lfvieira/ads-sync-api/infrastructure/integrator/meta/metaclient"
	"github.com/lfvieira/ads-sync-api/internal/config"
	"github.com/lfvieira/ads-sync-api/pkg/utils"
)

// Connector expõe uma operação de busca por tipo de entidade. Toda operação
// segue os cursores de paginação até o fim e devolve o resultado concatenado:
// o chamador nunca vê página parcial. Ausência de dados devolve coleção vazia,
// nunca nil.
type Connector interface {
	FetchBusinessAccounts(ctx context.Context) ([]metadomain.AdAccount, error)
	FetchCampaigns(ctx context.Context, accountID string) ([]metadomain.Campaign, error)
	FetchAdSets(ctx context.Context, accountID string) ([]metadomain.AdSet, error)
	FetchAds(ctx context.Context, accountID string) ([]metadomain.Ad, error)
	FetchInsights(ctx context.Context, accountID string, startDate, endDate time.Time) ([]metadomain.Insight, error)
	FetchYesterdayInsights(ctx context.Context, accountID string) ([]metadomain.Insight, error)
	TestConnectivity(ctx context.Context) bool
}

type MetaConnector struct {
	cfg    *config.Config
	client metaclient.Executor
	now    func() time.Time
}

func NewConnector(cfg *config.Config, client metaclient.Executor) *MetaConnector {
	return &MetaConnector{
		cfg:    cfg,
		client: client,
		now:    time.Now,
	}
}

func (c *MetaConnector) FetchBusinessAccounts(ctx context.Context) ([]metadomain.AdAccount, error) {
	params := url.Values{}
	params.Add("fields", "id,name,currency,account_status,capabilities")
	params.Add("limit", "100")
	params.Add("access_token", c.cfg.Meta.AccessToken)

	firstURL := fmt.Sprintf("%s/%s/owned_ad_accounts?%s", c.cfg.Meta.URL, c.cfg.Meta.BusinessID, params.Encode())

	accounts := make([]metadomain.AdAccount, 0)
	err := c.forEachPage(ctx, firstURL, func(data jsoniter.RawMessage) error {
		var page []metadomain.AdAccount
		if err := jsoniter.Unmarshal(data, &page); err != nil {
			return errors.Wrap(err, "erro ao decodificar contas de anúncio")
		}
		accounts = append(accounts, page...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return accounts, nil
}

func (c *MetaConnector) FetchCampaigns(ctx context.Context, accountID string) ([]metadomain.Campaign, error) {
	params := url.Values{}
	params.Add("fields", "id,name,status,objective")
	params.Add("limit", "100")
	params.Add("access_token", c.cfg.Meta.AccessToken)

	firstURL := fmt.Sprintf("%s/act_%s/campaigns?%s", c.cfg.Meta.URL, accountID, params.Encode())

	campaigns := make([]metadomain.Campaign, 0)
	err := c.forEachPage(ctx, firstURL, func(data jsoniter.RawMessage) error {
		var page []metadomain.Campaign
		if err := jsoniter.Unmarshal(data, &page); err != nil {
			return errors.Wrap(err, "erro ao decodificar campanhas")
		}
		campaigns = append(campaigns, page...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return campaigns, nil
}

func (c *MetaConnector) FetchAdSets(ctx context.Context, accountID string) ([]metadomain.AdSet, error) {
	params := url.Values{}
	params.Add("fields", "id,name,status,campaign_id")
	params.Add("limit", "100")
	params.Add("access_token", c.cfg.Meta.AccessToken)

	firstURL := fmt.Sprintf("%s/act_%s/adsets?%s", c.cfg.Meta.URL, accountID, params.Encode())

	adSets := make([]metadomain.AdSet, 0)
	err := c.forEachPage(ctx, firstURL, func(data jsoniter.RawMessage) error {
		var page []metadomain.AdSet
		if err := jsoniter.Unmarshal(data, &page); err != nil {
			return errors.Wrap(err, "erro ao decodificar conjuntos de anúncios")
		}
		adSets = append(adSets, page...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return adSets, nil
}

func (c *MetaConnector) FetchAds(ctx context.Context, accountID string) ([]metadomain.Ad, error) {
	params := url.Values{}
	params.Add("fields", "id,name,status,adset_id")
	params.Add("limit", "100")
	params.Add("access_token", c.cfg.Meta.AccessToken)

	firstURL := fmt.Sprintf("%s/act_%s/ads?%s", c.cfg.Meta.URL, accountID, params.Encode())

	ads := make([]metadomain.Ad, 0)
	err := c.forEachPage(ctx, firstURL, func(data jsoniter.RawMessage) error {
		var page []metadomain.Ad
		if err := jsoniter.Unmarshal(data, &page); err != nil {
			return errors.Wrap(err, "erro ao decodificar anúncios")
		}
		ads = append(ads, page...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return ads, nil
}

func (c *MetaConnector) FetchInsights(ctx context.Context, accountID string, startDate, endDate time.Time) ([]metadomain.Insight, error) {
	timeRange := fmt.Sprintf(`{"since":"%s","until":"%s"}`,
		startDate.Format(time.DateOnly), endDate.Format(time.DateOnly))

	params := url.Values{}
	params.Add("fields", "ad_id,account_id,spend,impressions,clicks,reach")
	params.Add("level", "ad")
	params.Add("time_increment", "1")
	params.Add("time_range", timeRange)
	params.Add("limit", "100")
	params.Add("access_token", c.cfg.Meta.AccessToken)

	firstURL := fmt.Sprintf("%s/act_%s/insights?%s", c.cfg.Meta.URL, accountID, params.Encode())

	insights := make([]metadomain.Insight, 0)
	err := c.forEachPage(ctx, firstURL, func(data jsoniter.RawMessage) error {
		var page []metadomain.Insight
		if err := jsoniter.Unmarshal(data, &page); err != nil {
			return errors.Wrap(err, "erro ao decodificar insights")
		}
		insights = append(insights, page...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return insights, nil
}

// FetchYesterdayInsights fixa as duas datas em "ontem" relativo ao momento da
// invocação.
func (c *MetaConnector) FetchYesterdayInsights(ctx context.Context, accountID string) ([]metadomain.Insight, error) {
	yesterday := utils.Yesterday(c.now())
	return c.FetchInsights(ctx, accountID, yesterday, yesterday)
}

// TestConnectivity nunca retorna erro: qualquer falha vira false.
func (c *MetaConnector) TestConnectivity(ctx context.Context) bool {
	params := url.Values{}
	params.Add("fields", "id")
	params.Add("access_token", c.cfg.Meta.AccessToken)

	url := fmt.Sprintf("%s/%s?%s", c.cfg.Meta.URL, c.cfg.Meta.BusinessID, params.Encode())

	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		logrus.WithError(err).Warn("Erro ao criar requisição de teste de conectividade")
		return false
	}

	if _, err := c.client.Execute(ctx, req); err != nil {
		logrus.WithError(err).Warn("Teste de conectividade com a API do Meta falhou")
		return false
	}

	return true
}

// forEachPage segue os cursores de paginação até a exaustão, entregando o
// bloco "data" cru de cada página ao handler.
func (c *MetaConnector) forEachPage(ctx context.Context, firstURL string, handle func(data jsoniter.RawMessage) error) error {
	pageURL := firstURL

	for pageURL != "" {
		req, err := http.NewRequest(http.MethodGet, pageURL, nil)
		if err != nil {
			return errors.Wrap(err, "erro ao criar a requisição")
		}

		resp, err := c.client.Execute(ctx, req)
		if err != nil {
			return err
		}

		var page struct {
			Data   jsoniter.RawMessage `json:"data"`
			Paging metadomain.Paging   `json:"paging"`
		}
		if err := jsoniter.Unmarshal(resp.Body, &page); err != nil {
			return errors.Wrap(err, "erro ao decodificar JSON da página")
		}

		if len(page.Data) > 0 {
			if err := handle(page.Data); err != nil {
				return err
			}
		}

		pageURL = page.Paging.Next
	}

	return nil
}
