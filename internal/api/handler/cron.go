package handler

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/lfvieira/ads-sync-api/pkg/apiErrors"
)

// GetCronStatus retorna o status de todos os agendadores registrados.
func GetCronStatus(services *SyncServices) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := map[string]any{}

		if services.PerformanceSync != nil {
			status["performance_sync"] = services.PerformanceSync.GetStatus()
		}
		if services.HierarchySync != nil {
			status["hierarchy_sync"] = services.HierarchySync.GetStatus()
		}

		if len(status) == 0 {
			apiErrors.WriteError(w, apiErrors.ErrSyncUnavailable, "Nenhum agendador disponível", nil)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(status); err != nil {
			logrus.WithError(err).Error("Erro ao serializar status dos agendadores")
		}
	}
}
