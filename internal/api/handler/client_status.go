package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"

	metadomain "github.com/lfvieira/ads-sync-api/infrastructure/integrator/meta/domain"
	"github.com/lfvieira/ads-sync-api/pkg/apiErrors"
)

// ClientStatusProvider expõe os contadores vivos do cliente da API do Meta.
type ClientStatusProvider interface {
	Status(ctx context.Context) metadomain.ClientStatus
}

// GetClientStatus reporta a autenticação junto ao Meta (com sondagem remota do
// token, que consome o orçamento como qualquer chamada) e os contadores do
// cliente limitado.
func GetClientStatus(client ClientStatusProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if client == nil {
			apiErrors.WriteError(w, apiErrors.ErrSyncUnavailable, "Cliente da API do Meta não disponível", nil)
			return
		}

		status := client.Status(r.Context())

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(status); err != nil {
			logrus.WithError(err).Error("Erro ao serializar status do cliente")
		}
	}
}
