package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/lfvieira/ads-sync-api/internal/usecases/authenticating"
	"github.com/lfvieira/ads-sync-api/pkg/apiErrors"
)

type tokenRequest struct {
	Secret string `json:"secret"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

// IssueToken troca o segredo compartilhado por um token de administrador.
func IssueToken(service authenticating.Authenticator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req tokenRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Corpo da requisição inválido", nil)
			return
		}

		token, err := service.IssueToken(req.Secret)
		if err != nil {
			if authenticating.IsCredentialsError(err) {
				apiErrors.WriteError(w, apiErrors.ErrInvalidCredentials, "Segredo incorreto", nil)
				return
			}

			var authErr *authenticating.AuthError
			if errors.As(err, &authErr) && authErr.Code == apiErrors.ErrMissingRequiredData {
				apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "Segredo é obrigatório", nil)
				return
			}

			logrus.WithError(err).Error("Erro ao emitir token")
			apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Erro ao emitir token", nil)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(tokenResponse{Token: token}); err != nil {
			logrus.WithError(err).Error("Erro ao serializar resposta do token")
		}
	}
}
