package main

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lfvieira/ads-sync-api/infrastructure/database/postgres"
	"github.com/lfvieira/ads-sync-api/infrastructure/integrator/meta"
	"github.com/lfvieira/ads-sync-api/infrastructure/integrator/meta/metaclient"
	"github.com/lfvieira/ads-sync-api/infrastructure/repository"
	"github.com/lfvieira/ads-sync-api/internal/api"
	"github.com/lfvieira/ads-sync-api/internal/config"
	"github.com/lfvieira/ads-sync-api/internal/scheduler"
	"github.com/lfvieira/ads-sync-api/internal/usecases/authenticating"
	"github.com/lfvieira/ads-sync-api/internal/usecases/syncing"
)

func main() {
	configureLogger()

	cfg, err := config.NewConfig()
	if err != nil {
		logrus.Fatal(err)
	}

	logLevel, err := logrus.ParseLevel(cfg.App.LogLevel)
	if err != nil {
		logrus.Warnf("Nível de log inválido: %s, usando 'info'", cfg.App.LogLevel)
		logLevel = logrus.InfoLevel
	}
	logrus.SetLevel(logLevel)
	logrus.Infof("Nível de log configurado para: %s", logLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pgConn := pgconn(ctx, cfg.Database)
	defer pgConn.Close()

	storage := syncing.Storage{
		Accounts:  repository.NewAccountRepository(pgConn),
		Campaigns: repository.NewCampaignRepository(pgConn),
		AdSets:    repository.NewAdSetRepository(pgConn),
		Ads:       repository.NewAdRepository(pgConn),
		Insights:  repository.NewInsightRepository(pgConn),
	}

	authenticator := authenticating.NewService(cfg)

	metaAuth := metaclient.NewAuthenticator(cfg)
	metaClient := metaclient.NewRateLimitedClient(cfg, metaAuth)
	connector := meta.NewConnector(cfg, metaClient)

	orchestrator := syncing.NewService(connector, storage)

	performanceSyncService := scheduler.NewPerformanceSyncService(orchestrator, cfg)
	hierarchySyncService := scheduler.NewHierarchySyncService(orchestrator, cfg)

	if err := performanceSyncService.Start(ctx); err != nil {
		logrus.WithError(err).Error("Erro ao iniciar o agendador de métricas de desempenho")
	} else {
		logrus.Info("Agendador de métricas de desempenho iniciado com sucesso")
	}

	if err := hierarchySyncService.Start(ctx); err != nil {
		logrus.WithError(err).Error("Erro ao iniciar o agendador da hierarquia de contas")
	} else {
		logrus.Info("Agendador da hierarquia de contas iniciado com sucesso")
	}

	server, err := api.New(
		cfg,
		authenticator,
		orchestrator,
		metaClient,
		performanceSyncService,
		hierarchySyncService,
	)
	if err != nil {
		logrus.Fatal(err)
	}

	if err := server.Run(ctx); err != nil {
		logrus.Error(err)
	}
}

// configureLogger configura o formato e comportamento dos logs
func configureLogger() {
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})
}

// pgconn cria uma conexão com o banco de dados
func pgconn(ctx context.Context, dbConfig config.Database) *postgres.Connection {
	conn, err := postgres.NewConnection(ctx, dbConfig)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao conectar ao PostgreSQL")
	}

	err = conn.Ping(ctx)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao testar conexão com PostgreSQL")
	}

	logrus.Info("Conexão com PostgreSQL estabelecida com sucesso")
	return conn
}
