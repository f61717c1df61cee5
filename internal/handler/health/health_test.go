package health

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xrpyield/bridge-backend/internal/chainclient"
	"github.com/xrpyield/bridge-backend/internal/types/environments"
	"github.com/xrpyield/bridge-backend/internal/utils/config"
	"github.com/xrpyield/bridge-backend/internal/utils/logger"
)

type stubChain struct {
	block uint64
	err   error
}

func (s *stubChain) SubmitTransaction(ctx context.Context, signedTxHex string) (*chainclient.PendingTx, error) {
	return nil, nil
}

func (s *stubChain) WaitForConfirmation(ctx context.Context, txHash string) (*chainclient.ConfirmationResult, error) {
	return nil, nil
}

func (s *stubChain) ReadContractValue(ctx context.Context, out *[]interface{}, method string, args ...interface{}) error {
	return nil
}

func (s *stubChain) LatestBlock(ctx context.Context) (uint64, error) {
	return s.block, s.err
}

func setupHealthRouter(source, dest chainclient.Client) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := New(&config.AppConfig{}, logger.New(environments.Test), nil, source, dest)

	r := gin.New()
	r.GET("/healthz", h.Basic)
	r.GET("/api/v1/health/db", h.Database)
	r.GET("/api/v1/health/external", h.External)
	return r
}

func TestBasicHealthCheck(t *testing.T) {
	router := setupHealthRouter(&stubChain{block: 1}, &stubChain{block: 1})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/healthz", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")
}

func TestDatabaseHealthCheckNoConnection(t *testing.T) {
	router := setupHealthRouter(&stubChain{}, &stubChain{})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/health/db", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "database connection not available")
}

func TestExternalHealthCheckBothChainsUp(t *testing.T) {
	router := setupHealthRouter(&stubChain{block: 500}, &stubChain{block: 900})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/health/external", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "source_chain_rpc")
	assert.Contains(t, w.Body.String(), "destination_chain_rpc")
}

func TestExternalHealthCheckChainDown(t *testing.T) {
	router := setupHealthRouter(&stubChain{block: 500}, &stubChain{err: chainclient.ErrNetworkUnreachable})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/health/external", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
