package handler

import (
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"

	"github.com/xrpyield/bridge-backend/internal/chainclient"
	"github.com/xrpyield/bridge-backend/internal/handler/bridge"
	"github.com/xrpyield/bridge-backend/internal/handler/health"
	"github.com/xrpyield/bridge-backend/internal/handler/metrics"
	"github.com/xrpyield/bridge-backend/internal/ledger"
	"github.com/xrpyield/bridge-backend/internal/orchestrator"
	"github.com/xrpyield/bridge-backend/internal/utils/config"
	"github.com/xrpyield/bridge-backend/internal/utils/logger"
)

type Handler struct {
	BridgeHandler  bridge.IHandler
	HealthHandler  health.IHealthHandler
	MetricsHandler *metrics.MetricsHandler
}

func New(appConfig *config.AppConfig, logger *logger.Logger,
	orch orchestrator.IOrchestrator,
	depositLedger ledger.IDepositLedger,
	sourceChain, destChain chainclient.Client,
	db *gorm.DB,
	metricsRegistry *prometheus.Registry) *Handler {
	return &Handler{
		BridgeHandler:  bridge.New(orch, depositLedger, logger, appConfig),
		HealthHandler:  health.New(appConfig, logger, db, sourceChain, destChain),
		MetricsHandler: metrics.NewMetricsHandler(metricsRegistry),
	}
}
