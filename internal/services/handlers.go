package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"cosmossdk.io/math"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/stakepool-labs/staking-pool/internal/observability/metrics"
	"github.com/stakepool-labs/staking-pool/internal/observability/tracing"
	"github.com/stakepool-labs/staking-pool/internal/pool"
)

const defaultAccountsPageSize = 50

type depositRequest struct {
	Token   string   `json:"token"`
	Account string   `json:"account"`
	Amount  math.Int `json:"amount"`
}

type depositResponse struct {
	// Unused mirrors the token-transfer hook convention: the portion of the
	// notified amount the pool did not keep. The pool always keeps all of it.
	Unused math.Int `json:"unused"`
}

type unstakeRequest struct {
	Account  string   `json:"account"`
	Amount   math.Int `json:"amount"`
	Attached math.Int `json:"attached"`
}

type unstakeResponse struct {
	Remaining math.Int `json:"remaining"`
	RequestID string   `json:"request_id,omitempty"`
}

type closeRequest struct {
	Account  string   `json:"account"`
	Attached math.Int `json:"attached"`
}

type closeResponse struct {
	Refund    math.Int `json:"refund"`
	RequestID string   `json:"request_id,omitempty"`
}

type registerRequest struct {
	Account  string   `json:"account"`
	Attached math.Int `json:"attached"`
}

type registerResponse struct {
	Refund math.Int `json:"refund"`
}

type unregisterRequest struct {
	Account  string   `json:"account"`
	Force    bool     `json:"force"`
	Attached math.Int `json:"attached"`
}

type unregisterResponse struct {
	Closed    bool     `json:"closed"`
	Refund    math.Int `json:"refund"`
	RequestID string   `json:"request_id,omitempty"`
}

type statusResponse struct {
	Account string   `json:"account"`
	Staked  math.Int `json:"staked"`
}

type storageBalanceResponse struct {
	Registered bool     `json:"registered"`
	Total      math.Int `json:"total"`
	Available  math.Int `json:"available"`
}

type setActiveRequest struct {
	Caller string `json:"caller"`
	Active bool   `json:"active"`
}

type setClosingDateRequest struct {
	Caller      string `json:"caller"`
	ClosingDate int64  `json:"closing_date"`
}

type sweepRequest struct {
	Caller string `json:"caller"`
}

type sweepResponse struct {
	RequestID string `json:"request_id,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Service) router() http.Handler {
	r := chi.NewRouter()
	r.Use(requestTracing)

	r.Get("/healthcheck", s.handleHealthcheck)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/deposits", s.handleDeposit)
		r.Post("/unstake", s.handleUnstake)
		r.Post("/close", s.handleClose)
		r.Route("/storage", func(r chi.Router) {
			r.Post("/register", s.handleRegister)
			r.Post("/unregister", s.handleUnregister)
			r.Post("/withdraw", s.handleStorageWithdraw)
			r.Get("/balance", s.handleStorageBalance)
		})
		r.Get("/params", s.handleParams)
		r.Get("/status", s.handleStatus)
		r.Get("/accounts", s.handleAccounts)
		r.Route("/admin", func(r chi.Router) {
			r.Post("/active", s.handleSetActive)
			r.Post("/closing-date", s.handleSetClosingDate)
			r.Post("/sweep", s.handleSweep)
		})
	})
	return r
}

func (s *Service) startServer(ctx context.Context) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port),
		Handler:      s.router(),
		WriteTimeout: s.cfg.Server.WriteTimeout,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Failed to shut down API server")
		}
	}()

	log.Info().Str("address", srv.Addr).Msg("Starting staking pool API server")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// requestTracing gives every request its own trace ID so log lines from one
// call can be correlated.
func requestTracing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(tracing.InjectTraceID(r.Context())))
	})
}

func (s *Service) handleHealthcheck(w http.ResponseWriter, r *http.Request) {
	if err := s.db.Ping(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleDeposit is the token service's deposit hook: the tokens already
// moved, this call tells the pool who to credit. A rejected deposit means
// the token service must return the full amount to the sender.
func (s *Service) handleDeposit(w http.ResponseWriter, r *http.Request) {
	req := depositRequest{Amount: math.ZeroInt()}
	if !decode(w, r, &req) {
		return
	}

	err := s.pool.Deposit(r.Context(), req.Token, req.Account, req.Amount)
	metrics.RecordPoolOperation("deposit", err != nil)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, depositResponse{Unused: math.ZeroInt()})
}

func (s *Service) handleUnstake(w http.ResponseWriter, r *http.Request) {
	req := unstakeRequest{Amount: math.ZeroInt(), Attached: math.ZeroInt()}
	if !decode(w, r, &req) {
		return
	}

	remaining, transfer, err := s.pool.Unstake(r.Context(), req.Account, req.Amount, req.Attached)
	metrics.RecordPoolOperation("unstake", err != nil)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	go s.submitTransfer(context.WithoutCancel(r.Context()), transfer)

	resp := unstakeResponse{Remaining: remaining}
	if transfer != nil {
		resp.RequestID = transfer.ID
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Service) handleClose(w http.ResponseWriter, r *http.Request) {
	req := closeRequest{Attached: math.ZeroInt()}
	if !decode(w, r, &req) {
		return
	}

	refund, transfer, err := s.pool.Close(r.Context(), req.Account, req.Attached)
	metrics.RecordPoolOperation("close", err != nil)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	go s.submitTransfer(context.WithoutCancel(r.Context()), transfer)

	resp := closeResponse{Refund: refund}
	if transfer != nil {
		resp.RequestID = transfer.ID
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Service) handleRegister(w http.ResponseWriter, r *http.Request) {
	req := registerRequest{Attached: math.ZeroInt()}
	if !decode(w, r, &req) {
		return
	}

	refund, err := s.pool.Register(r.Context(), req.Account, req.Attached)
	metrics.RecordPoolOperation("register", err != nil)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, registerResponse{Refund: refund})
}

func (s *Service) handleUnregister(w http.ResponseWriter, r *http.Request) {
	req := unregisterRequest{Attached: math.ZeroInt()}
	if !decode(w, r, &req) {
		return
	}

	closed, refund, transfer, err := s.pool.Unregister(r.Context(), req.Account, req.Force, req.Attached)
	metrics.RecordPoolOperation("unregister", err != nil)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	go s.submitTransfer(context.WithoutCancel(r.Context()), transfer)

	resp := unregisterResponse{Closed: closed, Refund: refund}
	if transfer != nil {
		resp.RequestID = transfer.ID
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Service) handleStorageWithdraw(w http.ResponseWriter, r *http.Request) {
	err := s.pool.WithdrawRegistrationDeposit()
	metrics.RecordPoolOperation("storage_withdraw", err != nil)
	writeError(w, statusFor(err), err)
}

func (s *Service) handleStorageBalance(w http.ResponseWriter, r *http.Request) {
	account := r.URL.Query().Get("account")
	total, registered, err := s.pool.StorageBalanceOf(r.Context(), account)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	if !registered {
		total = math.ZeroInt()
	}
	// The deposit is fully locked while the account is registered.
	writeJSON(w, http.StatusOK, storageBalanceResponse{
		Registered: registered,
		Total:      total,
		Available:  math.ZeroInt(),
	})
}

func (s *Service) handleParams(w http.ResponseWriter, r *http.Request) {
	params, err := s.pool.Params(r.Context())
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, params)
}

func (s *Service) handleStatus(w http.ResponseWriter, r *http.Request) {
	account := r.URL.Query().Get("account")
	staked, err := s.pool.Status(r.Context(), account)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Account: account, Staked: staked})
}

func (s *Service) handleAccounts(w http.ResponseWriter, r *http.Request) {
	fromIndex, err := queryUint(r, "from_index", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	limit, err := queryUint(r, "limit", defaultAccountsPageSize)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	accounts, err := s.pool.RegisteredAccounts(r.Context(), fromIndex, limit)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	if accounts == nil {
		accounts = []string{}
	}
	writeJSON(w, http.StatusOK, accounts)
}

func (s *Service) handleSetActive(w http.ResponseWriter, r *http.Request) {
	var req setActiveRequest
	if !decode(w, r, &req) {
		return
	}

	err := s.pool.SetActive(r.Context(), req.Caller, req.Active)
	metrics.RecordPoolOperation("set_active", err != nil)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"is_active": req.Active})
}

func (s *Service) handleSetClosingDate(w http.ResponseWriter, r *http.Request) {
	var req setClosingDateRequest
	if !decode(w, r, &req) {
		return
	}

	err := s.pool.SetClosingDate(r.Context(), req.Caller, req.ClosingDate)
	metrics.RecordPoolOperation("set_closing_date", err != nil)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"closing_date": req.ClosingDate})
}

func (s *Service) handleSweep(w http.ResponseWriter, r *http.Request) {
	var req sweepRequest
	if !decode(w, r, &req) {
		return
	}

	transfer, err := s.pool.SweepToTreasury(r.Context(), req.Caller)
	metrics.RecordPoolOperation("sweep", err != nil)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	go s.submitTransfer(context.WithoutCancel(r.Context()), transfer)

	var resp sweepResponse
	if transfer != nil {
		resp.RequestID = transfer.ID
	}
	writeJSON(w, http.StatusOK, resp)
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return false
	}
	return true
}

func queryUint(r *http.Request, name string, fallback uint64) (uint64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	return value, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

// statusFor maps the pool's sentinel errors onto HTTP statuses: bad input is
// a 400, missing authority a 403, unknown entities a 404, and preconditions
// about pool state a 409.
func statusFor(err error) int {
	switch {
	case errors.Is(err, pool.ErrZeroAmount),
		errors.Is(err, pool.ErrWrongToken),
		errors.Is(err, pool.ErrInsufficientStake),
		errors.Is(err, pool.ErrInsufficientDeposit):
		return http.StatusBadRequest
	case errors.Is(err, pool.ErrNotOwner),
		errors.Is(err, pool.ErrNoAuthToken):
		return http.StatusForbidden
	case errors.Is(err, pool.ErrAccountNotRegistered),
		errors.Is(err, pool.ErrTransferNotFound),
		errors.Is(err, pool.ErrLedgerNotFound):
		return http.StatusNotFound
	case errors.Is(err, pool.ErrPoolNotActive),
		errors.Is(err, pool.ErrPoolClosed),
		errors.Is(err, pool.ErrPoolNotClosed),
		errors.Is(err, pool.ErrPoolReturnable),
		errors.Is(err, pool.ErrStorageWithdraw):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
