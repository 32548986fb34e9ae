package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"

	"github.com/julienschmidt/httprouter"
	"github.com/sirupsen/logrus"

	"github.com/lfvieira/ads-sync-api/internal/scheduler"
	"github.com/lfvieira/ads-sync-api/internal/usecases/syncing"
	"github.com/lfvieira/ads-sync-api/pkg/apiErrors"
)

// Tipos de sincronização aceitos pela rota de disparo manual.
const (
	SyncTypeHierarchy   = "hierarchy"
	SyncTypePerformance = "performance"
	SyncTypeFull        = "full"
)

// SyncServices agrupa o orquestrador e os agendadores expostos pela API.
type SyncServices struct {
	Orchestrator    syncing.Orchestrator
	PerformanceSync *scheduler.PerformanceSyncService
	HierarchySync   *scheduler.HierarchySyncService

	fullSyncRunning atomic.Bool
}

type syncTriggerResponse struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// TriggerSync dispara manualmente uma sincronização do tipo pedido na URL.
// Responde 202 quando a execução foi aceita e SYNC_001 quando já há uma
// execução do mesmo tipo em andamento.
func TriggerSync(services *SyncServices) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		syncType := httprouter.ParamsFromContext(r.Context()).ByName("type")
		if syncType == "" {
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "Tipo de sincronização não especificado", nil)
			return
		}

		var started bool

		switch syncType {
		case SyncTypeHierarchy:
			if services.HierarchySync == nil {
				apiErrors.WriteError(w, apiErrors.ErrSyncUnavailable, "Serviço de sincronização da hierarquia não disponível", nil)
				return
			}
			started = services.HierarchySync.TriggerManualSync()

		case SyncTypePerformance:
			if services.PerformanceSync == nil {
				apiErrors.WriteError(w, apiErrors.ErrSyncUnavailable, "Serviço de sincronização de desempenho não disponível", nil)
				return
			}
			started = services.PerformanceSync.TriggerManualSync()

		case SyncTypeFull:
			started = services.triggerFullSync()

		default:
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Tipo de sincronização desconhecido: "+syncType, nil)
			return
		}

		if !started {
			apiErrors.WriteError(w, apiErrors.ErrSyncAlreadyRunning, "Sincronização já em andamento", nil)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		if err := json.NewEncoder(w).Encode(syncTriggerResponse{
			Message: "Sincronização iniciada",
			Type:    syncType,
		}); err != nil {
			logrus.WithError(err).Error("Erro ao serializar resposta do disparo de sincronização")
		}
	}
}

func (s *SyncServices) triggerFullSync() bool {
	if !s.fullSyncRunning.CompareAndSwap(false, true) {
		logrus.Info("Sincronização completa já em andamento, ignorando solicitação manual")
		return false
	}

	logrus.Info("Iniciando sincronização completa manual")
	go func() {
		defer s.fullSyncRunning.Store(false)

		report := s.Orchestrator.PerformFullSync(context.Background())
		if !report.Succeeded() {
			logrus.WithField("failures", len(report.Failures)).Warn("Sincronização completa terminou com falhas")
		}
	}()

	return true
}

// GetSyncStatus expõe contagens locais e o teste de conectividade remota.
func GetSyncStatus(services *SyncServices) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := services.Orchestrator.SyncStatus(r.Context())

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(status); err != nil {
			logrus.WithError(err).Error("Erro ao serializar status de sincronização")
		}
	}
}
