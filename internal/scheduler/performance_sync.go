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

// PerformanceSyncConfig representa a configuração do agendador de métricas de desempenho
type PerformanceSyncConfig struct {
	CronSchedule string
	SyncEnabled  bool
}

// PerformanceSyncService gerencia o agendamento da sincronização diária das
// métricas de desempenho de ontem.
type PerformanceSyncService struct {
	scheduler           *gocron.Scheduler
	config              PerformanceSyncConfig
	orchestrator        syncing.Orchestrator
	syncRunning         bool
	syncMutex           sync.Mutex
	lastSyncStartedAt   time.Time
	lastSyncCompletedAt time.Time
	lastSyncFailures    int
}

func NewPerformanceSyncService(orchestrator syncing.Orchestrator, appConfig *config.Config) *PerformanceSyncService {
	syncConfig := PerformanceSyncConfig{
		CronSchedule: appConfig.PerformanceSync.CronSchedule,
		SyncEnabled:  appConfig.PerformanceSync.Enabled,
	}

	logrus.WithFields(logrus.Fields{
		"cron_schedule": syncConfig.CronSchedule,
		"sync_enabled":  syncConfig.SyncEnabled,
	}).Info("Configuração do agendador de métricas de desempenho carregada")

	return &PerformanceSyncService{
		scheduler:    gocron.NewScheduler(time.Local),
		config:       syncConfig,
		orchestrator: orchestrator,
	}
}

// Start inicia o agendador
func (s *PerformanceSyncService) Start(ctx context.Context) error {
	if !s.config.SyncEnabled {
		logrus.Info("Sincronização de métricas de desempenho desabilitada por configuração")
		return nil
	}

	logrus.WithField("cron", s.config.CronSchedule).Info("Iniciando agendador de métricas de desempenho")

	_, err := s.scheduler.Cron(s.config.CronSchedule).Do(func() {
		s.runSync(context.Background())
	})
	if err != nil {
		return fmt.Errorf("erro ao agendar sincronização de métricas de desempenho: %w", err)
	}

	s.scheduler.StartAsync()

	go func() {
		<-ctx.Done()
		logrus.Info("Parando agendador de métricas de desempenho")
		s.scheduler.Stop()
	}()

	return nil
}

func (s *PerformanceSyncService) runSync(ctx context.Context) {
	s.syncMutex.Lock()
	if s.syncRunning {
		s.syncMutex.Unlock()
		logrus.Info("Sincronização de métricas de desempenho já em andamento, ignorando")
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

	report := s.orchestrator.SyncYesterdayPerformanceData(ctx)

	s.syncMutex.Lock()
	s.lastSyncFailures = len(report.Failures)
	s.syncMutex.Unlock()

	if !report.Succeeded() {
		logrus.WithField("failures", len(report.Failures)).Warn("Sincronização de métricas de desempenho terminou com falhas")
	}
}

// TriggerManualSync inicia manualmente uma sincronização de métricas de
// desempenho. Retorna false se já houver uma execução em andamento.
func (s *PerformanceSyncService) TriggerManualSync() bool {
	s.syncMutex.Lock()
	if s.syncRunning {
		s.syncMutex.Unlock()
		logrus.Info("Sincronização de métricas de desempenho já em andamento, ignorando solicitação manual")
		return false
	}
	s.syncMutex.Unlock()

	logrus.Info("Iniciando sincronização manual de métricas de desempenho")
	go s.runSync(context.Background())
	return true
}

// GetStatus retorna o status atual do agendador
func (s *PerformanceSyncService) GetStatus() map[string]any {
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
