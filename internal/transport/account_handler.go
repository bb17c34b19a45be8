// Package transport exposes the read-only balance API over the gateway mux.
package transport

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/goodnatureofminers/blockinsight7000-balance/internal/balance/model"
	gwruntime "github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"go.uber.org/zap"
)

type accountResponse struct {
	Address        string           `json:"address"`
	Balances       model.Balances   `json:"balances"`
	LastBlockCheck int64            `json:"lastBlockCheck"`
	LastTxs        model.TrackedTxs `json:"lastTxs"`
}

type balanceResponse struct {
	Address string `json:"address"`
	Block   *int64 `json:"block,omitempty"`
	Balance int64  `json:"balance"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// AccountHandler serves stored accounts and on-demand balances.
type AccountHandler struct {
	accounts  AccountReader
	summer    BalanceSummer
	marshaler gwruntime.Marshaler
	logger    *zap.Logger
}

func NewAccountHandler(accounts AccountReader, summer BalanceSummer, logger *zap.Logger) *AccountHandler {
	return &AccountHandler{
		accounts:  accounts,
		summer:    summer,
		marshaler: &gwruntime.JSONBuiltin{},
		logger:    logger.Named("accountHandler"),
	}
}

// Register mounts the account routes on mux.
func (h *AccountHandler) Register(mux *gwruntime.ServeMux) error {
	routes := []struct {
		pattern string
		handler gwruntime.HandlerFunc
	}{
		{pattern: "/v1/accounts/{address}", handler: h.getAccount},
		{pattern: "/v1/accounts/{address}/balance", handler: h.getBalance},
	}
	for _, route := range routes {
		if err := mux.HandlePath(http.MethodGet, route.pattern, route.handler); err != nil {
			return fmt.Errorf("register %s: %w", route.pattern, err)
		}
	}
	return nil
}

func (h *AccountHandler) getAccount(w http.ResponseWriter, r *http.Request, params map[string]string) {
	address := params["address"]
	account, err := h.accounts.FindByAddress(r.Context(), address)
	if err != nil {
		h.fail(w, address, err)
		return
	}

	h.write(w, http.StatusOK, accountResponse{
		Address:        account.Address,
		Balances:       account.Balances,
		LastBlockCheck: account.LastBlockCheck,
		LastTxs:        account.LastTxs,
	})
}

// getBalance sums the address coins now, or as of ?block=N when given.
func (h *AccountHandler) getBalance(w http.ResponseWriter, r *http.Request, params map[string]string) {
	address := params["address"]

	var asOf *int64
	if raw := r.URL.Query().Get("block"); raw != "" {
		block, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || block < 0 {
			h.write(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("invalid block %q", raw)})
			return
		}
		asOf = &block
	}

	balance, err := h.summer.SumBalance(r.Context(), address, asOf)
	if err != nil {
		h.fail(w, address, err)
		return
	}

	h.write(w, http.StatusOK, balanceResponse{Address: address, Block: asOf, Balance: balance})
}

func (h *AccountHandler) fail(w http.ResponseWriter, address string, err error) {
	if errors.Is(err, model.ErrNotFound) {
		h.write(w, http.StatusNotFound, errorResponse{Error: fmt.Sprintf("account %s not found", address)})
		return
	}
	h.logger.Error("account request failed", zap.String("address", address), zap.Error(err))
	h.write(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
}

func (h *AccountHandler) write(w http.ResponseWriter, status int, body any) {
	payload, err := h.marshaler.Marshal(body)
	if err != nil {
		h.logger.Error("encode response failed", zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", h.marshaler.ContentType(body))
	w.WriteHeader(status)
	_, _ = w.Write(payload)
}
