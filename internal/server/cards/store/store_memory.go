package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"carddemo/internal/server/cards/models"
	"carddemo/pkg/sentinel"
)

// MemoryStore holds accounts, cards, and transactions in memory.
type MemoryStore struct {
	mu           sync.RWMutex
	accounts     map[string]*models.Account
	cards        map[string]*models.CreditCard
	transactions map[string]*models.Transaction
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accounts:     make(map[string]*models.Account),
		cards:        make(map[string]*models.CreditCard),
		transactions: make(map[string]*models.Transaction),
	}
}

func (s *MemoryStore) SaveAccount(ctx context.Context, a *models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *a
	s.accounts[a.AccountID] = &clone
	return nil
}

func (s *MemoryStore) GetAccount(ctx context.Context, accountID string) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[accountID]
	if !ok {
		return nil, fmt.Errorf("account %s: %w", accountID, sentinel.ErrNotFound)
	}
	clone := *a
	return &clone, nil
}

// ListAccounts returns one page of accounts ordered by account ID, plus the
// total count for the pager.
func (s *MemoryStore) ListAccounts(ctx context.Context, page models.Page) ([]*models.Account, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]*models.Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		clone := *a
		all = append(all, &clone)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].AccountID < all[j].AccountID })
	return paginate(all, page)
}

func (s *MemoryStore) SaveCard(ctx context.Context, c *models.CreditCard) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *c
	s.cards[c.CardNumber] = &clone
	return nil
}

func (s *MemoryStore) GetCard(ctx context.Context, cardNumber string) (*models.CreditCard, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.cards[cardNumber]
	if !ok {
		return nil, fmt.Errorf("card %s: %w", cardNumber, sentinel.ErrNotFound)
	}
	clone := *c
	return &clone, nil
}

func (s *MemoryStore) ListCards(ctx context.Context, accountID string, page models.Page) ([]*models.CreditCard, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]*models.CreditCard, 0, len(s.cards))
	for _, c := range s.cards {
		if accountID != "" && c.AccountID != accountID {
			continue
		}
		clone := *c
		all = append(all, &clone)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CardNumber < all[j].CardNumber })
	return paginate(all, page)
}

func (s *MemoryStore) SaveTransaction(ctx context.Context, t *models.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.transactions[t.TransactionID]; exists {
		return fmt.Errorf("transaction %s: %w", t.TransactionID, sentinel.ErrAlreadyUsed)
	}
	clone := *t
	s.transactions[t.TransactionID] = &clone
	return nil
}

func (s *MemoryStore) GetTransaction(ctx context.Context, id string) (*models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.transactions[id]
	if !ok {
		return nil, fmt.Errorf("transaction %s: %w", id, sentinel.ErrNotFound)
	}
	clone := *t
	return &clone, nil
}

// ListTransactions returns a page of transactions, newest first.
func (s *MemoryStore) ListTransactions(ctx context.Context, accountID string, page models.Page) ([]*models.Transaction, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]*models.Transaction, 0, len(s.transactions))
	for _, t := range s.transactions {
		if accountID != "" && t.AccountID != accountID {
			continue
		}
		clone := *t
		all = append(all, &clone)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].OrigTimestamp.Equal(all[j].OrigTimestamp) {
			return all[i].TransactionID > all[j].TransactionID
		}
		return all[i].OrigTimestamp.After(all[j].OrigTimestamp)
	})
	return paginate(all, page)
}

func paginate[T any](all []*T, page models.Page) ([]*T, int, error) {
	page = page.Normalize()
	total := len(all)
	start := page.Offset()
	if start >= total {
		return []*T{}, total, nil
	}
	end := start + page.Size
	if end > total {
		end = total
	}
	return all[start:end], total, nil
}
