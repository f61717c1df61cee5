package bridge

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/xrpyield/bridge-backend/internal/consts"
	"github.com/xrpyield/bridge-backend/internal/ledger"
	"github.com/xrpyield/bridge-backend/internal/model"
	"github.com/xrpyield/bridge-backend/internal/orchestrator"
	"github.com/xrpyield/bridge-backend/internal/utils/config"
	"github.com/xrpyield/bridge-backend/internal/utils/logger"
	"github.com/xrpyield/bridge-backend/internal/view"
)

type ExecuteRequest struct {
	UserAddress        string `json:"user_address" binding:"required"`
	DestinationAddress string `json:"destination_address" binding:"required"`
	Amount             string `json:"amount" binding:"required"`
	SignedSourceTx     string `json:"signed_source_tx" binding:"required"`
	RetryOfRequestID   string `json:"retry_of_request_id"`
	// Async returns immediately after the request is recorded; callers
	// poll the status endpoint for the terminal outcome.
	Async bool `json:"async"`
}

type handler struct {
	orchestrator orchestrator.IOrchestrator
	ledger       ledger.IDepositLedger
	logger       *logger.Logger
	appConfig    *config.AppConfig
}

func New(orchestrator orchestrator.IOrchestrator, ledger ledger.IDepositLedger, logger *logger.Logger, appConfig *config.AppConfig) IHandler {
	return &handler{
		orchestrator: orchestrator,
		ledger:       ledger,
		logger:       logger,
		appConfig:    appConfig,
	}
}

// Execute godoc
// @Summary Execute a bridge transfer
// @Description Locks funds on the source chain and credits the destination chain
// @id executeBridge
// @Tags Bridge
// @Accept json
// @Produce json
// @Param request body ExecuteRequest true "Bridge transfer parameters"
// @Success 200 {object} view.MessageResponse
// @Failure 400 {object} view.ErrorResponse
// @Failure 500 {object} view.ErrorResponse
// @Failure 503 {object} view.ErrorResponse
// @Router /bridge [post]
func (h *handler) Execute(c *gin.Context) {
	var req ExecuteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("[Execute][ShouldBindJSON]", map[string]string{
			"error": err.Error(),
		})
		c.JSON(http.StatusBadRequest, view.CreateResponse[any](nil, err, req, "invalid request"))
		return
	}

	if err := validator.New().Struct(req); err != nil {
		h.logger.Error("[Execute][Validator]", map[string]string{
			"error": err.Error(),
		})
		c.JSON(http.StatusBadRequest, view.CreateResponse[any](nil, err, req, "invalid request"))
		return
	}

	params := orchestrator.ExecuteParams{
		UserAddress:        req.UserAddress,
		DestinationAddress: req.DestinationAddress,
		Amount: &model.Web3BigInt{
			Value:   req.Amount,
			Decimal: consts.XRP_DECIMALS,
		},
		SignedSourceTx:   req.SignedSourceTx,
		RetryOfRequestID: req.RetryOfRequestID,
	}

	var result *model.BridgeRequest
	var err error
	if req.Async {
		result, err = h.orchestrator.ExecuteAsync(c.Request.Context(), params)
	} else {
		result, err = h.orchestrator.Execute(c.Request.Context(), params)
	}
	if err != nil {
		h.respondExecutionError(c, result, err, "[Execute]")
		return
	}

	c.JSON(http.StatusOK, view.CreateResponse[any](result, nil, nil, ""))
}

// GetStatus godoc
// @Summary Get bridge request status
// @Description Returns the full state of one bridge request
// @id getBridgeStatus
// @Tags Bridge
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} view.MessageResponse
// @Failure 404 {object} view.ErrorResponse
// @Failure 500 {object} view.ErrorResponse
// @Router /bridge/{id} [get]
func (h *handler) GetStatus(c *gin.Context) {
	requestID := c.Param("id")

	req, err := h.orchestrator.GetStatus(requestID)
	if err != nil {
		if errors.Is(err, model.ErrRequestNotFound) {
			c.JSON(http.StatusNotFound, view.CreateResponse[any](nil, err, nil, "bridge request not found"))
			return
		}
		h.logger.Error("[GetStatus][GetByRequestID]", map[string]string{
			"request_id": requestID,
			"error":      err.Error(),
		})
		c.JSON(http.StatusInternalServerError, view.CreateResponse[any](nil, err, nil, "failed to load bridge request"))
		return
	}

	c.JSON(http.StatusOK, view.CreateResponse[any](req, nil, nil, ""))
}

// GetHistory godoc
// @Summary List bridge requests for an address
// @Description Returns all bridge requests initiated by one user address, newest first
// @id getBridgeHistory
// @Tags Bridge
// @Produce json
// @Param address path string true "User address"
// @Success 200 {object} view.MessageResponse
// @Failure 400 {object} view.ErrorResponse
// @Failure 500 {object} view.ErrorResponse
// @Router /bridge/history/{address} [get]
func (h *handler) GetHistory(c *gin.Context) {
	address := c.Param("address")

	history, err := h.orchestrator.ListHistory(address)
	if err != nil {
		if model.IsValidationError(err) {
			c.JSON(http.StatusBadRequest, view.CreateResponse[any](nil, err, nil, "invalid address"))
			return
		}
		h.logger.Error("[GetHistory][ListByUserAddress]", map[string]string{
			"address": address,
			"error":   err.Error(),
		})
		c.JSON(http.StatusInternalServerError, view.CreateResponse[any](nil, err, nil, "failed to load history"))
		return
	}

	c.JSON(http.StatusOK, view.CreateResponse[any](history, nil, nil, ""))
}

// Resume godoc
// @Summary Resume a partially completed bridge request
// @Description Re-drives only the destination leg; the confirmed source leg is never touched
// @id resumeBridge
// @Tags Bridge
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} view.MessageResponse
// @Failure 400 {object} view.ErrorResponse
// @Failure 404 {object} view.ErrorResponse
// @Failure 500 {object} view.ErrorResponse
// @Failure 503 {object} view.ErrorResponse
// @Router /bridge/{id}/resume [post]
func (h *handler) Resume(c *gin.Context) {
	requestID := c.Param("id")

	result, err := h.orchestrator.Resume(c.Request.Context(), requestID)
	if err != nil {
		if errors.Is(err, model.ErrRequestNotFound) {
			c.JSON(http.StatusNotFound, view.CreateResponse[any](nil, err, nil, "bridge request not found"))
			return
		}
		h.respondExecutionError(c, result, err, "[Resume]")
		return
	}

	c.JSON(http.StatusOK, view.CreateResponse[any](result, nil, nil, ""))
}

// Cancel godoc
// @Summary Cancel a bridge request
// @Description Aborts a request whose source leg has not confirmed; refused once funds moved
// @id cancelBridge
// @Tags Bridge
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} view.MessageResponse
// @Failure 400 {object} view.ErrorResponse
// @Failure 404 {object} view.ErrorResponse
// @Failure 500 {object} view.ErrorResponse
// @Router /bridge/{id}/cancel [post]
func (h *handler) Cancel(c *gin.Context) {
	requestID := c.Param("id")

	result, err := h.orchestrator.Cancel(c.Request.Context(), requestID)
	if err != nil {
		if errors.Is(err, model.ErrRequestNotFound) {
			c.JSON(http.StatusNotFound, view.CreateResponse[any](nil, err, nil, "bridge request not found"))
			return
		}
		if model.IsValidationError(err) {
			c.JSON(http.StatusBadRequest, view.CreateResponse[any](nil, err, nil, "request cannot be cancelled"))
			return
		}
		h.logger.Error("[Cancel]", map[string]string{
			"request_id": requestID,
			"error":      err.Error(),
		})
		c.JSON(http.StatusInternalServerError, view.CreateResponse[any](nil, err, nil, "failed to cancel request"))
		return
	}

	c.JSON(http.StatusOK, view.CreateResponse[any](result, nil, nil, ""))
}

// GetDepositBalance godoc
// @Summary Get custody deposit balance
// @Description Reads the bridgeable balance held in the source-chain custody contract
// @id getDepositBalance
// @Tags Deposits
// @Produce json
// @Param address path string true "User address"
// @Success 200 {object} view.MessageResponse
// @Failure 400 {object} view.ErrorResponse
// @Failure 500 {object} view.ErrorResponse
// @Router /deposits/{address} [get]
func (h *handler) GetDepositBalance(c *gin.Context) {
	address := c.Param("address")
	if !common.IsHexAddress(address) {
		c.JSON(http.StatusBadRequest, view.CreateResponse[any](nil,
			model.NewValidationError("address", "not a valid address"), nil, "invalid address"))
		return
	}

	balance, err := h.ledger.AvailableBalance(c.Request.Context(), address)
	if err != nil {
		h.logger.Error("[GetDepositBalance][AvailableBalance]", map[string]string{
			"address": address,
			"error":   err.Error(),
		})
		c.JSON(http.StatusInternalServerError, view.CreateResponse[any](nil, err, nil, "failed to read deposit balance"))
		return
	}

	c.JSON(http.StatusOK, view.CreateResponse[any](gin.H{
		"address": address,
		"balance": balance,
	}, nil, nil, ""))
}

// respondExecutionError maps the orchestrator's error taxonomy onto HTTP
// statuses. A leg failure still carries the request record so callers can
// see exactly where the transfer stopped.
func (h *handler) respondExecutionError(c *gin.Context, result *model.BridgeRequest, err error, logTag string) {
	h.logger.Error(logTag, map[string]string{
		"error": err.Error(),
	})

	switch {
	case model.IsValidationError(err):
		c.JSON(http.StatusBadRequest, view.CreateResponse[any](nil, err, nil, "invalid request"))
	case errors.Is(err, model.ErrRequestInFlight):
		c.JSON(http.StatusConflict, view.CreateResponse[any](result, err, nil, "request is already being processed"))
	case errors.Is(err, model.ErrRelayerUnavailable):
		c.JSON(http.StatusServiceUnavailable, view.CreateResponse[any](result, err, nil, "relayer unavailable, retry with backoff"))
	case errors.Is(err, model.ErrSourceLegFailure), errors.Is(err, model.ErrDestinationLegFailure):
		c.JSON(http.StatusUnprocessableEntity, view.CreateResponse[any](result, err, nil, "bridge transfer did not complete"))
	default:
		c.JSON(http.StatusInternalServerError, view.CreateResponse[any](result, err, nil, "bridge transfer failed"))
	}
}
