package pool

import (
	"context"
	"fmt"
	"sync"
)

// MemStore is a map-backed Store. It keeps accounts in registration order so
// paginated listings are stable, matching the persistent store.
type MemStore struct {
	mu      sync.RWMutex
	ledger  *Ledger
	vaults  map[string]Vault
	order   []string
	pending map[string]TransferRequest
}

func NewMemStore() *MemStore {
	return &MemStore{
		vaults:  make(map[string]Vault),
		pending: make(map[string]TransferRequest),
	}
}

func (s *MemStore) GetLedger(_ context.Context) (*Ledger, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.ledger == nil {
		return nil, ErrLedgerNotFound
	}
	ledger := *s.ledger
	return &ledger, nil
}

func (s *MemStore) PutLedger(_ context.Context, ledger *Ledger) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *ledger
	s.ledger = &cp
	return nil
}

func (s *MemStore) GetVault(_ context.Context, account string) (*Vault, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.vaults[account]
	if !ok {
		return nil, fmt.Errorf("vault %q: %w", account, ErrAccountNotRegistered)
	}
	return &v, nil
}

func (s *MemStore) PutVault(_ context.Context, account string, vault *Vault) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.vaults[account]; !ok {
		s.order = append(s.order, account)
	}
	s.vaults[account] = *vault
	return nil
}

func (s *MemStore) RemoveVault(_ context.Context, account string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.vaults[account]; !ok {
		return fmt.Errorf("vault %q: %w", account, ErrAccountNotRegistered)
	}
	delete(s.vaults, account)
	for i, a := range s.order {
		if a == account {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *MemStore) CountVaults(_ context.Context) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return uint64(len(s.vaults)), nil
}

func (s *MemStore) ListAccounts(_ context.Context, fromIndex, limit uint64) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := uint64(len(s.order))
	if fromIndex >= total {
		return nil, nil
	}
	end := fromIndex + limit
	if end > total {
		end = total
	}
	out := make([]string, 0, end-fromIndex)
	out = append(out, s.order[fromIndex:end]...)
	return out, nil
}

func (s *MemStore) SavePendingTransfer(_ context.Context, req *TransferRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[req.ID] = *req
	return nil
}

func (s *MemStore) GetPendingTransfer(_ context.Context, id string) (*TransferRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	req, ok := s.pending[id]
	if !ok {
		return nil, fmt.Errorf("transfer %q: %w", id, ErrTransferNotFound)
	}
	return &req, nil
}

func (s *MemStore) DeletePendingTransfer(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.pending[id]; !ok {
		return fmt.Errorf("transfer %q: %w", id, ErrTransferNotFound)
	}
	delete(s.pending, id)
	return nil
}

func (s *MemStore) CountPendingTransfers(_ context.Context) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return uint64(len(s.pending)), nil
}
