package server

import (
	"context"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"

	"github.com/xrpyield/bridge-backend/contracts/custody"
	"github.com/xrpyield/bridge-backend/contracts/xrpbridge"
	"github.com/xrpyield/bridge-backend/internal/chainclient"
	"github.com/xrpyield/bridge-backend/internal/handler"
	"github.com/xrpyield/bridge-backend/internal/ledger"
	"github.com/xrpyield/bridge-backend/internal/monitoring"
	"github.com/xrpyield/bridge-backend/internal/orchestrator"
	"github.com/xrpyield/bridge-backend/internal/relayer"
	"github.com/xrpyield/bridge-backend/internal/store"
	pgstore "github.com/xrpyield/bridge-backend/internal/store/postgres"
	"github.com/xrpyield/bridge-backend/internal/transport/http"
	"github.com/xrpyield/bridge-backend/internal/utils/config"
	"github.com/xrpyield/bridge-backend/internal/utils/logger"
	"github.com/xrpyield/bridge-backend/internal/utils/vault"
	"github.com/xrpyield/bridge-backend/internal/utils/webhook"
)

func Init() {
	appConfig := config.New()
	logger := logger.New(appConfig.Environment)

	db := pgstore.New(appConfig, logger)
	s := store.New()

	sourceClient, err := chainclient.New("source_chain", appConfig.SourceChain, appConfig.Bridge, custody.MustParsedABI(), logger)
	if err != nil {
		logger.Fatal("failed to init source chain client", map[string]string{
			"error": err.Error(),
		})
	}

	destClient, err := chainclient.New("destination_chain", appConfig.DestChain, appConfig.Bridge, xrpbridge.MustParsedABI(), logger)
	if err != nil {
		logger.Fatal("failed to init destination chain client", map[string]string{
			"error": err.Error(),
		})
	}

	metricsRegistry := prometheus.NewRegistry()
	bridgeMetrics := monitoring.NewBridgeMetrics()
	bridgeMetrics.MustRegister(metricsRegistry)
	httpMetrics := monitoring.NewHTTPMetrics()
	httpMetrics.MustRegister(metricsRegistry)

	sourceChain := monitoring.NewCircuitBreakerChainClient("source_chain", sourceClient,
		monitoring.CircuitBreakerConfigs["source_chain"], bridgeMetrics, logger)
	destChain := monitoring.NewCircuitBreakerChainClient("destination_chain", destClient,
		monitoring.CircuitBreakerConfigs["destination_chain"], bridgeMetrics, logger)

	relayerBackend, err := ethclient.Dial(appConfig.DestChain.RPCEndpoint)
	if err != nil {
		logger.Fatal("failed to dial destination rpc for relayer", map[string]string{
			"error": err.Error(),
		})
	}

	signer, err := relayer.New(relayerKey(appConfig, logger), appConfig.DestChain, appConfig.Relayer, relayerBackend, logger)
	if err != nil {
		logger.Fatal("failed to init relayer signer", map[string]string{
			"error": err.Error(),
		})
	}
	defer signer.Stop()

	depositLedger := ledger.New(sourceChain, logger)
	webhookClient := webhook.New(logger)

	orch := orchestrator.New(db, s, sourceChain, destChain, signer, depositLedger,
		webhookClient, bridgeMetrics, logger, appConfig)

	// sweep requests stranded by the previous run before serving traffic
	if err := orch.ReconcileInFlight(context.Background()); err != nil {
		logger.Error("[Init][ReconcileInFlight]", map[string]string{
			"error": err.Error(),
		})
	}

	c := cron.New()
	c.AddFunc(appConfig.Bridge.ReconcilePeriod, func() {
		bridgeMetrics.SetRelayerQueueDepth(signer.QueueDepth())
		if err := orch.ReconcileInFlight(context.Background()); err != nil {
			logger.Error("[cron][ReconcileInFlight]", map[string]string{
				"error": err.Error(),
			})
		}
	})
	c.Start()
	defer c.Stop()

	h := handler.New(appConfig, logger, orch, depositLedger, sourceChain, destChain, db, metricsRegistry)
	httpServer := http.NewHttpServer(appConfig, logger, h, httpMetrics)

	httpServer.Run(":" + appConfig.ApiServer.Port)
}

// relayerKey resolves the custodial signing key, preferring Vault when it
// is configured and falling back to the environment otherwise.
func relayerKey(appConfig *config.AppConfig, logger *logger.Logger) string {
	if appConfig.Vault.Addr == "" {
		return appConfig.Relayer.PrivateKey
	}

	vc, err := vault.New(appConfig.Vault.Addr, appConfig.Vault.KVSecretPath, appConfig.Vault.Role)
	if err != nil {
		logger.Error("[relayerKey][vault.New]", map[string]string{
			"error": err.Error(),
		})
		return appConfig.Relayer.PrivateKey
	}

	key, err := vc.GetKV(appConfig.Vault.RelayerKeyKey)
	if err != nil {
		logger.Error("[relayerKey][GetKV]", map[string]string{
			"error": err.Error(),
		})
		return appConfig.Relayer.PrivateKey
	}

	return key
}
