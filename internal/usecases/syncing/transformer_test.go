package syncing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	metadomain "github.com/lfvieira/ads-sync-api/infrastructure/integrator/meta/domain"
	"github.com/lfvieira/ads-sync-api/internal/domain"
)

func TestTransformAccounts(t *testing.T) {
	tests := []struct {
		name     string
		dto      metadomain.AdAccount
		expected *domain.AdAccount
	}{
		{
			name: "Conta ativa com capacidades",
			dto: metadomain.AdAccount{
				ID:            "act_1",
				Name:          "Loja A",
				Currency:      "USD",
				AccountStatus: 1,
				Capabilities:  []string{"CAN_CREATE_ADS", "CAN_USE_REACH_AND_FREQUENCY"},
			},
			expected: &domain.AdAccount{
				ExternalID:              "act_1",
				Name:                    "Loja A",
				Currency:                "USD",
				Status:                  domain.AdAccountStatusActive,
				CanCreateAds:            true,
				CanUseReachAndFrequency: true,
			},
		},
		{
			name: "Moeda ausente recebe o padrão BRL",
			dto:  metadomain.AdAccount{ID: "act_2", Name: "Loja B", AccountStatus: 2},
			expected: &domain.AdAccount{
				ExternalID: "act_2",
				Name:       "Loja B",
				Currency:   "BRL",
				Status:     domain.AdAccountStatusDisabled,
			},
		},
		{
			name: "Código de status desconhecido vira UNKNOWN",
			dto:  metadomain.AdAccount{ID: "act_3", Name: "Loja C", Currency: "BRL", AccountStatus: 99},
			expected: &domain.AdAccount{
				ExternalID: "act_3",
				Name:       "Loja C",
				Currency:   "BRL",
				Status:     domain.AdAccountStatusUnknown,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := TransformAccounts([]metadomain.AdAccount{tt.dto})
			require.Len(t, result, 1)
			assert.Equal(t, tt.expected, result[0])
		})
	}
}

func TestTransformAccounts_EmptyInput(t *testing.T) {
	result := TransformAccounts(nil)
	assert.NotNil(t, result)
	assert.Empty(t, result)
}

func TestTransformCampaigns(t *testing.T) {
	dtos := []metadomain.Campaign{
		{ID: "cmp_1", Name: "Campanha Verão", Status: "ACTIVE", Objective: "CONVERSIONS"},
		{ID: "cmp_2", Name: "Campanha Inverno", Status: "PAUSED"},
	}

	result := TransformCampaigns("act_1", dtos)

	require.Len(t, result, 2)
	assert.Equal(t, "act_1", result[0].AccountID)
	assert.Equal(t, "CONVERSIONS", result[0].Objective)

	// Objetivo ausente recebe o padrão.
	assert.Equal(t, "UNKNOWN", result[1].Objective)
	assert.Equal(t, "PAUSED", result[1].Status)
}

func TestTransformAdSetsAndAds_CarryParentIDs(t *testing.T) {
	adSets := TransformAdSets("act_1", []metadomain.AdSet{
		{ID: "set_1", CampaignID: "cmp_1", Name: "Conjunto", Status: "ACTIVE"},
	})
	require.Len(t, adSets, 1)
	assert.Equal(t, "cmp_1", adSets[0].CampaignID)
	assert.Equal(t, "act_1", adSets[0].AccountID)

	ads := TransformAds("act_1", []metadomain.Ad{
		{ID: "ad_1", AdSetID: "set_1", Name: "Anúncio", Status: "ACTIVE"},
	})
	require.Len(t, ads, 1)
	assert.Equal(t, "set_1", ads[0].AdSetID)
	assert.Equal(t, "act_1", ads[0].AccountID)
}

func TestTransformInsightsList(t *testing.T) {
	t.Run("Coerção numérica dos campos textuais", func(t *testing.T) {
		dtos := []metadomain.Insight{
			{AdID: "ad_1", DateStart: "2024-01-15", Spend: "12.34", Impressions: "1000", Clicks: "25", Reach: "800"},
		}

		records, malformed := TransformInsightsList("act_1", dtos)

		require.Empty(t, malformed)
		require.Len(t, records, 1)
		assert.Equal(t, "ad_1", records[0].EntityID)
		assert.Equal(t, "act_1", records[0].AccountID)
		assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), records[0].Date)
		assert.Equal(t, 12.34, records[0].Spend)
		assert.Equal(t, int64(1000), records[0].Impressions)
		assert.Equal(t, int64(25), records[0].Clicks)
		assert.Equal(t, int64(800), records[0].Reach)
	})

	t.Run("Campos ausentes viram zero sem erro", func(t *testing.T) {
		dtos := []metadomain.Insight{
			{AdID: "ad_1", DateStart: "2024-01-15"},
		}

		records, malformed := TransformInsightsList("act_1", dtos)

		require.Empty(t, malformed)
		require.Len(t, records, 1)
		assert.Zero(t, records[0].Spend)
		assert.Zero(t, records[0].Impressions)
	})

	t.Run("Registro malformado é isolado do restante do lote", func(t *testing.T) {
		dtos := []metadomain.Insight{
			{AdID: "ad_ok", DateStart: "2024-01-15", Spend: "1.00"},
			{AdID: "ad_ruim", DateStart: "2024-01-15", Spend: "não-é-número"},
			{AdID: "ad_data_ruim", DateStart: "15/01/2024"},
			{AdID: "ad_tambem_ok", DateStart: "2024-01-15", Clicks: "3"},
		}

		records, malformed := TransformInsightsList("act_1", dtos)

		require.Len(t, records, 2)
		assert.Equal(t, "ad_ok", records[0].EntityID)
		assert.Equal(t, "ad_tambem_ok", records[1].EntityID)

		require.Len(t, malformed, 2)

		var badSpend *MalformedRecordError
		require.ErrorAs(t, malformed[0], &badSpend)
		assert.Equal(t, "ad_ruim", badSpend.EntityID)
		assert.Equal(t, "spend", badSpend.Field)

		var badDate *MalformedRecordError
		require.ErrorAs(t, malformed[1], &badDate)
		assert.Equal(t, "ad_data_ruim", badDate.EntityID)
		assert.Equal(t, "date_start", badDate.Field)
	})

	t.Run("Lista vazia produz fatia vazia e nenhum erro", func(t *testing.T) {
		records, malformed := TransformInsightsList("act_1", nil)
		assert.NotNil(t, records)
		assert.Empty(t, records)
		assert.Empty(t, malformed)
	})
}
