package syncing

import (
	"fmt"
	"strconv"
	"time"

	metadomain "github.com/lfvieira/ads-sync-api/infrastructure/integrator/meta/domain"
	"github.com/lfvieira/ads-sync-api/internal/domain"
	"github.com/lfvieira/ads-sync-api/pkg/utils"
)

// Funções puras de mapeamento DTO -> entidade persistente. Nenhum acesso a
// rede ou armazenamento acontece aqui.

// Valores padrão para campos opcionais ausentes no DTO.
const (
	defaultCurrency  = "BRL"
	defaultObjective = "UNKNOWN"
)

// MalformedRecordError marca um registro individual que falhou na coerção
// numérica. A falha é isolada ao registro, nunca ao lote inteiro.
type MalformedRecordError struct {
	EntityID string
	Field    string
	Value    string
	Err      error
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("registro malformado (entidade %s, campo %s, valor %q): %v", e.EntityID, e.Field, e.Value, e.Err)
}

func (e *MalformedRecordError) Unwrap() error {
	return e.Err
}

// Mapeamento do account_status numérico da API para o status persistido.
var accountStatusByCode = map[int]domain.AdAccountStatus{
	1: domain.AdAccountStatusActive,
	2: domain.AdAccountStatusDisabled,
	3: domain.AdAccountStatusDisabled,
}

func TransformAccounts(dtos []metadomain.AdAccount) []*domain.AdAccount {
	accounts := make([]*domain.AdAccount, 0, len(dtos))

	for _, dto := range dtos {
		status, ok := accountStatusByCode[dto.AccountStatus]
		if !ok {
			status = domain.AdAccountStatusUnknown
		}

		currency := dto.Currency
		if currency == "" {
			currency = defaultCurrency
		}

		accounts = append(accounts, &domain.AdAccount{
			ExternalID:              dto.ID,
			Name:                    dto.Name,
			Currency:                currency,
			Status:                  status,
			CanCreateAds:            hasCapability(dto.Capabilities, "CAN_CREATE_ADS"),
			CanUseReachAndFrequency: hasCapability(dto.Capabilities, "CAN_USE_REACH_AND_FREQUENCY"),
		})
	}

	return accounts
}

func TransformCampaigns(accountID string, dtos []metadomain.Campaign) []*domain.Campaign {
	campaigns := make([]*domain.Campaign, 0, len(dtos))

	for _, dto := range dtos {
		objective := dto.Objective
		if objective == "" {
			objective = defaultObjective
		}

		campaigns = append(campaigns, &domain.Campaign{
			ExternalID: dto.ID,
			AccountID:  accountID,
			Name:       dto.Name,
			Status:     dto.Status,
			Objective:  objective,
		})
	}

	return campaigns
}

func TransformAdSets(accountID string, dtos []metadomain.AdSet) []*domain.AdSet {
	adSets := make([]*domain.AdSet, 0, len(dtos))

	for _, dto := range dtos {
		adSets = append(adSets, &domain.AdSet{
			ExternalID: dto.ID,
			CampaignID: dto.CampaignID,
			AccountID:  accountID,
			Name:       dto.Name,
			Status:     dto.Status,
		})
	}

	return adSets
}

func TransformAds(accountID string, dtos []metadomain.Ad) []*domain.Ad {
	ads := make([]*domain.Ad, 0, len(dtos))

	for _, dto := range dtos {
		ads = append(ads, &domain.Ad{
			ExternalID: dto.ID,
			AdSetID:    dto.AdSetID,
			AccountID:  accountID,
			Name:       dto.Name,
			Status:     dto.Status,
		})
	}

	return ads
}

// TransformInsightsList converte a lista de insights coagindo os campos
// numéricos textuais. Um registro que falha na coerção é descartado e
// reportado individualmente; o restante do lote segue.
func TransformInsightsList(accountID string, dtos []metadomain.Insight) ([]*domain.InsightRecord, []error) {
	records := make([]*domain.InsightRecord, 0, len(dtos))
	malformed := make([]error, 0)

	for _, dto := range dtos {
		record, err := transformInsight(accountID, dto)
		if err != nil {
			malformed = append(malformed, err)
			continue
		}
		records = append(records, record)
	}

	return records, malformed
}

func transformInsight(accountID string, dto metadomain.Insight) (*domain.InsightRecord, error) {
	date, err := time.Parse(time.DateOnly, dto.DateStart)
	if err != nil {
		return nil, &MalformedRecordError{EntityID: dto.AdID, Field: "date_start", Value: dto.DateStart, Err: err}
	}

	spend, err := coerceFloat(dto.AdID, "spend", dto.Spend)
	if err != nil {
		return nil, err
	}

	impressions, err := coerceInt(dto.AdID, "impressions", dto.Impressions)
	if err != nil {
		return nil, err
	}

	clicks, err := coerceInt(dto.AdID, "clicks", dto.Clicks)
	if err != nil {
		return nil, err
	}

	reach, err := coerceInt(dto.AdID, "reach", dto.Reach)
	if err != nil {
		return nil, err
	}

	return &domain.InsightRecord{
		EntityID:    dto.AdID,
		AccountID:   accountID,
		Date:        date,
		Spend:       spend,
		Impressions: impressions,
		Clicks:      clicks,
		Reach:       reach,
	}, nil
}

// coerceFloat converte um campo monetário textual em float64 com duas casas
// decimais. Campo ausente (vazio) recebe o padrão zero sem erro.
func coerceFloat(entityID, field, value string) (float64, error) {
	if value == "" {
		return 0, nil
	}

	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, &MalformedRecordError{EntityID: entityID, Field: field, Value: value, Err: err}
	}

	return utils.RoundWithTwoDecimalPlace(f), nil
}

func coerceInt(entityID, field, value string) (int64, error) {
	if value == "" {
		return 0, nil
	}

	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, &MalformedRecordError{EntityID: entityID, Field: field, Value: value, Err: err}
	}

	return n, nil
}

func hasCapability(capabilities []string, capability string) bool {
	for _, c := range capabilities {
		if c == capability {
			return true
		}
	}
	return false
}
