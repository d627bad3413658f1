package pool

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"cosmossdk.io/math"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	memoUnstake  = "unstaking"
	memoTreasury = "withdrawing all to treasury"
)

// Params are the static pool identity fields written into the ledger at
// initialization time.
type Params struct {
	Owner        string
	StakingToken string
	Treasury     string
	Returnable   bool
	ClosingDate  int64
}

// Pool owns the staking ledger. Every top-level operation takes the pool
// lock and runs to completion, reading the latest persisted state; nothing
// is cached across the dispatch point of an outbound transfer, so an outcome
// notification arriving later always sees whatever intervening calls left
// behind.
type Pool struct {
	mu    sync.Mutex
	store Store
	fee   math.Int
	now   func() time.Time
}

// New creates a pool over the given store. fee is the fixed registration
// deposit. A nil clock defaults to time.Now.
func New(store Store, fee math.Int, now func() time.Time) *Pool {
	if now == nil {
		now = time.Now
	}
	return &Pool{store: store, fee: fee, now: now}
}

// Init seeds the ledger singleton unless one already exists.
func (p *Pool) Init(ctx context.Context, params Params) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	_, err := p.store.GetLedger(ctx)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrLedgerNotFound) {
		return err
	}

	ledger := &Ledger{
		Owner:        params.Owner,
		StakingToken: params.StakingToken,
		Treasury:     params.Treasury,
		Returnable:   params.Returnable,
		IsActive:     true,
		ClosingDate:  params.ClosingDate,
		Total:        math.ZeroInt(),
	}
	if err := p.store.PutLedger(ctx, ledger); err != nil {
		return fmt.Errorf("failed to initialize ledger: %w", err)
	}
	log.Info().
		Str("owner", params.Owner).
		Str("stakingToken", params.StakingToken).
		Bool("returnable", params.Returnable).
		Msg("Pool ledger initialized")
	return nil
}

// RegistrationFee returns the fixed registration deposit.
func (p *Pool) RegistrationFee() math.Int {
	return p.fee
}

// Deposit credits a confirmed incoming token transfer to the sender's vault.
// The transfer has already happened on the token side, so this path makes no
// external call; it only records the credit.
func (p *Pool) Deposit(ctx context.Context, token, account string, amount math.Int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	ledger, err := p.store.GetLedger(ctx)
	if err != nil {
		return err
	}
	if !ledger.IsActive {
		return ErrPoolNotActive
	}
	// Deposits are never allowed after the closing date, returnable or not.
	if p.closed(ledger) {
		return ErrPoolClosed
	}
	if token != ledger.StakingToken {
		return fmt.Errorf("%w: got %q, want %q", ErrWrongToken, token, ledger.StakingToken)
	}
	if !amount.IsPositive() {
		return ErrZeroAmount
	}
	vault, err := p.store.GetVault(ctx, account)
	if err != nil {
		return err
	}

	vault.Staked = vault.Staked.Add(amount)
	if err := p.store.PutVault(ctx, account, vault); err != nil {
		return err
	}
	ledger.Total = ledger.Total.Add(amount)
	if err := p.store.PutLedger(ctx, ledger); err != nil {
		return err
	}

	log.Info().
		Str("account", account).
		Str("amount", amount.String()).
		Msg("Staked")
	return nil
}

// Unstake debits the given amount from the caller's vault and dispatches an
// outbound transfer for it. The returned remaining balance reflects the
// optimistic local state only; the transfer outcome arrives later through
// Resolve. Unstaking the full balance degenerates into Close, so a vault is
// never left at exactly zero.
func (p *Pool) Unstake(ctx context.Context, account string, amount, attached math.Int) (math.Int, *TransferRequest, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	ledger, err := p.store.GetLedger(ctx)
	if err != nil {
		return math.Int{}, nil, err
	}
	if err := p.checkWithdrawGates(ledger, attached); err != nil {
		return math.Int{}, nil, err
	}
	if !amount.IsPositive() {
		return math.Int{}, nil, ErrZeroAmount
	}
	vault, err := p.store.GetVault(ctx, account)
	if err != nil {
		return math.Int{}, nil, err
	}
	if amount.GT(vault.Staked) {
		return math.Int{}, nil, fmt.Errorf("%w: staked %s, requested %s",
			ErrInsufficientStake, vault.Staked, amount)
	}

	if amount.Equal(vault.Staked) {
		// Unstake-all closes the account; the caller re-registers to stake
		// again.
		_, req, err := p.closeVault(ctx, ledger, account, vault)
		if err != nil {
			return math.Int{}, nil, err
		}
		return math.ZeroInt(), req, nil
	}

	vault.Staked = vault.Staked.Sub(amount)
	if err := p.store.PutVault(ctx, account, vault); err != nil {
		return math.Int{}, nil, err
	}
	ledger.Total = ledger.Total.Sub(amount)
	if err := p.store.PutLedger(ctx, ledger); err != nil {
		return math.Int{}, nil, err
	}

	req, err := p.dispatch(ctx, account, amount, TransferUnstake, memoUnstake)
	if err != nil {
		return math.Int{}, nil, err
	}
	log.Info().
		Str("account", account).
		Str("amount", amount.String()).
		Str("remaining", vault.Staked.String()).
		Str("requestId", req.ID).
		Msg("Unstake dispatched")
	return vault.Staked, req, nil
}

// Close removes the caller's vault, dispatching an outbound transfer for any
// staked balance. A zero-balance vault is removed on the spot and the fixed
// registration deposit is refunded.
func (p *Pool) Close(ctx context.Context, account string, attached math.Int) (math.Int, *TransferRequest, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	ledger, err := p.store.GetLedger(ctx)
	if err != nil {
		return math.Int{}, nil, err
	}
	if err := p.checkWithdrawGates(ledger, attached); err != nil {
		return math.Int{}, nil, err
	}
	vault, err := p.store.GetVault(ctx, account)
	if err != nil {
		return math.Int{}, nil, err
	}
	return p.closeVault(ctx, ledger, account, vault)
}

// closeVault performs the close after all gates have passed. Callers hold
// the pool lock.
func (p *Pool) closeVault(ctx context.Context, ledger *Ledger, account string, vault *Vault) (math.Int, *TransferRequest, error) {
	log.Info().Str("account", account).Msg("Closing account")

	if vault.Staked.IsZero() {
		// Nothing staked: remove the vault and hand back the registration
		// deposit. The registered-accounts counter is intentionally left
		// untouched here, matching the long-observed behavior of the pool.
		if err := p.store.RemoveVault(ctx, account); err != nil {
			return math.Int{}, nil, err
		}
		return p.fee, nil, nil
	}

	amount := vault.Staked
	ledger.Total = ledger.Total.Sub(amount)
	ledger.AccountsRegistered--

	// The vault is removed before the transfer outcome is known; Resolve
	// recreates it if the transfer fails.
	if err := p.store.RemoveVault(ctx, account); err != nil {
		return math.Int{}, nil, err
	}
	if err := p.store.PutLedger(ctx, ledger); err != nil {
		return math.Int{}, nil, err
	}

	req, err := p.dispatch(ctx, account, amount, TransferClose, memoUnstake)
	if err != nil {
		return math.Int{}, nil, err
	}
	return math.ZeroInt(), req, nil
}

// Register creates a zero-staked vault for the account against the attached
// native deposit. Re-registering is a no-op that refunds the full attachment.
// The returned amount is what the caller gets back.
func (p *Pool) Register(ctx context.Context, account string, attached math.Int) (math.Int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	ledger, err := p.store.GetLedger(ctx)
	if err != nil {
		return math.Int{}, err
	}
	if !ledger.IsActive {
		return math.Int{}, ErrPoolNotActive
	}
	if p.closed(ledger) {
		return math.Int{}, ErrPoolClosed
	}

	if _, err := p.store.GetVault(ctx, account); err == nil {
		log.Info().Str("account", account).Msg("Account already registered, refunding the deposit")
		return attached, nil
	} else if !errors.Is(err, ErrAccountNotRegistered) {
		return math.Int{}, err
	}

	if attached.LT(p.fee) {
		return math.Int{}, fmt.Errorf("%w (%s)", ErrInsufficientDeposit, p.fee)
	}
	if err := p.store.PutVault(ctx, account, NewVault()); err != nil {
		return math.Int{}, err
	}
	ledger.AccountsRegistered++
	if err := p.store.PutLedger(ctx, ledger); err != nil {
		return math.Int{}, err
	}

	log.Info().Str("account", account).Msg("Account registered")
	return attached.Sub(p.fee), nil
}

// Unregister with force is equivalent to Close; without force it is a no-op
// reporting false. The boolean reports whether the vault was removed.
func (p *Pool) Unregister(ctx context.Context, account string, force bool, attached math.Int) (bool, math.Int, *TransferRequest, error) {
	if !force {
		return false, math.ZeroInt(), nil, nil
	}
	refund, req, err := p.Close(ctx, account, attached)
	if err != nil {
		return false, math.Int{}, nil, err
	}
	return true, refund, req, nil
}

// WithdrawRegistrationDeposit is always rejected; closing the account is the
// only way to reclaim the registration deposit.
func (p *Pool) WithdrawRegistrationDeposit() error {
	return ErrStorageWithdraw
}

// SetActive opens or suspends all mutating pool operations.
func (p *Pool) SetActive(ctx context.Context, caller string, active bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	ledger, err := p.store.GetLedger(ctx)
	if err != nil {
		return err
	}
	if caller != ledger.Owner {
		return ErrNotOwner
	}
	ledger.IsActive = active
	if err := p.store.PutLedger(ctx, ledger); err != nil {
		return err
	}
	log.Info().Bool("active", active).Msg("Pool active flag updated")
	return nil
}

// SetClosingDate updates the deadline after which deposits are rejected.
func (p *Pool) SetClosingDate(ctx context.Context, caller string, date int64) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	ledger, err := p.store.GetLedger(ctx)
	if err != nil {
		return err
	}
	if caller != ledger.Owner {
		return ErrNotOwner
	}
	ledger.ClosingDate = date
	if err := p.store.PutLedger(ctx, ledger); err != nil {
		return err
	}
	log.Info().Int64("closingDate", date).Msg("Pool closing date updated")
	return nil
}

// SweepToTreasury dispatches the whole pool total to the treasury. Allowed
// only for the owner, only after the closing date, and never on a returnable
// pool. The total is zeroed optimistically; a failure outcome restores it.
// Returns nil without dispatching when there is nothing to sweep.
func (p *Pool) SweepToTreasury(ctx context.Context, caller string) (*TransferRequest, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	ledger, err := p.store.GetLedger(ctx)
	if err != nil {
		return nil, err
	}
	if ledger.Returnable {
		return nil, ErrPoolReturnable
	}
	if !p.closed(ledger) {
		return nil, ErrPoolNotClosed
	}
	if caller != ledger.Owner {
		return nil, ErrNotOwner
	}
	if ledger.Total.IsZero() {
		return nil, nil
	}

	amount := ledger.Total
	ledger.Total = math.ZeroInt()
	if err := p.store.PutLedger(ctx, ledger); err != nil {
		return nil, err
	}

	req, err := p.dispatch(ctx, ledger.Treasury, amount, TransferSweep, memoTreasury)
	if err != nil {
		return nil, err
	}
	log.Info().
		Str("treasury", ledger.Treasury).
		Str("amount", amount.String()).
		Str("requestId", req.ID).
		Msg("Treasury sweep dispatched")
	return req, nil
}

// Resolve is the continuation for a dispatched transfer. It fires exactly
// once per request: a success leaves the optimistic debit final, a failure
// credits the amount back, resurrecting the vault if the account was closed
// in the meantime. Resolving an unknown or already-resolved ID returns
// ErrTransferNotFound.
func (p *Pool) Resolve(ctx context.Context, requestID string, outcome Outcome) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	req, err := p.store.GetPendingTransfer(ctx, requestID)
	if err != nil {
		return err
	}

	if outcome == OutcomeSuccess {
		log.Info().
			Str("requestId", req.ID).
			Str("account", req.Account).
			Str("amount", req.Amount.String()).
			Msg("Tokens returned")
		return p.store.DeletePendingTransfer(ctx, requestID)
	}

	log.Warn().
		Str("requestId", req.ID).
		Str("account", req.Account).
		Str("amount", req.Amount.String()).
		Str("kind", req.Kind.String()).
		Msg("Token transfer failed, recovering state")

	ledger, err := p.store.GetLedger(ctx)
	if err != nil {
		return err
	}

	switch req.Kind {
	case TransferSweep:
		// The sweep has no vault behind it; restoring the total is the
		// whole compensation.
		ledger.Total = ledger.Total.Add(req.Amount)
	default:
		if err := p.recoverVault(ctx, ledger, req.Account, req.Amount); err != nil {
			return err
		}
		ledger.Total = ledger.Total.Add(req.Amount)
	}
	if err := p.store.PutLedger(ctx, ledger); err != nil {
		return err
	}
	return p.store.DeletePendingTransfer(ctx, requestID)
}

// recoverVault credits amount back to the account's vault. If the vault was
// removed by an intervening close, it is recreated and counted again.
func (p *Pool) recoverVault(ctx context.Context, ledger *Ledger, account string, amount math.Int) error {
	vault, err := p.store.GetVault(ctx, account)
	switch {
	case err == nil:
		vault.Staked = vault.Staked.Add(amount)
	case errors.Is(err, ErrAccountNotRegistered):
		vault = &Vault{Staked: amount}
		ledger.AccountsRegistered++
	default:
		return err
	}
	return p.store.PutVault(ctx, account, vault)
}

// dispatch persists the pending transfer request that Resolve will consume.
// Callers hold the pool lock; the actual send happens outside it.
func (p *Pool) dispatch(ctx context.Context, account string, amount math.Int, kind TransferKind, memo string) (*TransferRequest, error) {
	req := &TransferRequest{
		ID:        uuid.New().String(),
		Account:   account,
		Amount:    amount,
		Kind:      kind,
		Memo:      memo,
		CreatedAt: p.now().UTC(),
	}
	if err := p.store.SavePendingTransfer(ctx, req); err != nil {
		return nil, fmt.Errorf("failed to persist pending transfer: %w", err)
	}
	return req, nil
}

// checkWithdrawGates applies the shared unstake/close preconditions: the
// pool is active, the closing date has not passed (waived on returnable
// pools), and the caller attached the exact one-unit confirmation.
func (p *Pool) checkWithdrawGates(ledger *Ledger, attached math.Int) error {
	if !ledger.IsActive {
		return ErrPoolNotActive
	}
	if !ledger.Returnable && p.closed(ledger) {
		return ErrPoolClosed
	}
	if !attached.Equal(math.OneInt()) {
		return ErrNoAuthToken
	}
	return nil
}

func (p *Pool) closed(ledger *Ledger) bool {
	return ledger.ClosingDate > 0 && p.now().UnixMilli() > ledger.ClosingDate
}
