package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"

	"github.com/lfvieira/ads-sync-api/internal/config"
	"github.com/lfvieira/ads-sync-api/internal/usecases/syncing"
)

// HierarchySyncConfig representa a configuração do agendador da hierarquia de contas
type HierarchySyncConfig struct {
	CronSchedule string
	SyncEnabled  bool
}

// HierarchySyncService gerencia o agendamento da caminhada semanal pela
// hierarquia de contas, campanhas, conjuntos e anúncios.
type HierarchySyncService struct {
	scheduler           *gocron.Scheduler
	config              HierarchySyncConfig
	orchestrator        syncing.Orchestrator
	syncRunning         bool
	syncMutex           sync.Mutex
	lastSyncStartedAt   time.Time
	lastSyncCompletedAt time.Time
	lastSyncFailures    int
}

func NewHierarchySyncService(orchestrator syncing.Orchestrator, appConfig *config.Config) *HierarchySyncService {
	syncConfig := HierarchySyncConfig{
		CronSchedule: appConfig.HierarchySync.CronSchedule,
		SyncEnabled:  appConfig.HierarchySync.Enabled,
	}

	logrus.WithFields(logrus.Fields{
		"cron_schedule": syncConfig.CronSchedule,
		"sync_enabled":  syncConfig.SyncEnabled,
	}).Info("Configuração do agendador da hierarquia de contas carregada")

	return &HierarchySyncService{
		scheduler:    gocron.NewScheduler(time.Local),
		config:       syncConfig,
		orchestrator: orchestrator,
	}
}

// Start inicia o agendador
func (s *HierarchySyncService) Start(ctx context.Context) error {
	if !s.config.SyncEnabled {
		logrus.Info("Sincronização da hierarquia de contas desabilitada por configuração")
		return nil
	}

	logrus.WithField("cron", s.config.CronSchedule).Info("Iniciando agendador da hierarquia de contas")

	_, err := s.scheduler.Cron(s.config.CronSchedule).Do(func() {
		s.runSync(context.Background())
	})
	if err != nil {
		return fmt.Errorf("erro ao agendar sincronização da hierarquia de contas: %w", err)
	}

	s.scheduler.StartAsync()

	go func() {
		<-ctx.Done()
		logrus.Info("Parando agendador da hierarquia de contas")
		s.scheduler.Stop()
	}()

	return nil
}

func (s *HierarchySyncService) runSync(ctx context.Context) {
	s.syncMutex.Lock()
	if s.syncRunning {
		s.syncMutex.Unlock()
		logrus.Info("Sincronização da hierarquia já em andamento, ignorando")
		return
	}
	s.syncRunning = true
	s.lastSyncStartedAt = time.Now()
	s.syncMutex.Unlock()

	defer func() {
		s.syncMutex.Lock()
		s.syncRunning = false
		s.lastSyncCompletedAt = time.Now()
		s.syncMutex.Unlock()
	}()

	report := s.orchestrator.SyncAccountHierarchy(ctx)

	s.syncMutex.Lock()
	s.lastSyncFailures = len(report.Failures)
	s.syncMutex.Unlock()

	if !report.Succeeded() {
		logrus.WithField("failures", len(report.Failures)).Warn("Sincronização da hierarquia terminou com falhas")
	}
}

// TriggerManualSync inicia manualmente uma caminhada pela hierarquia.
// Retorna false se já houver uma execução em andamento.
func (s *HierarchySyncService) TriggerManualSync() bool {
	s.syncMutex.Lock()
	if s.syncRunning {
		s.syncMutex.Unlock()
		logrus.Info("Sincronização da hierarquia já em andamento, ignorando solicitação manual")
		return false
	}
	s.syncMutex.Unlock()

	logrus.Info("Iniciando sincronização manual da hierarquia de contas")
	go s.runSync(context.Background())
	return true
}

// GetStatus retorna o status atual do agendador
func (s *HierarchySyncService) GetStatus() map[string]any {
	s.syncMutex.Lock()
	defer s.syncMutex.Unlock()

	return map[string]any{
		"sync_enabled":           s.config.SyncEnabled,
		"sync_cron":              s.config.CronSchedule,
		"sync_running":           s.syncRunning,
		"last_sync_started_at":   s.lastSyncStartedAt,
		"last_sync_completed_at": s.lastSyncCompletedAt,
		"last_sync_failures":     s.lastSyncFailures,
	}
}
