package cards

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"carddemo/internal/server/cards/models"
	"carddemo/pkg/apierrors"
	"carddemo/pkg/sentinel"
)

// Store is the persistence interface the card service works against.
type Store interface {
	SaveAccount(ctx context.Context, a *models.Account) error
	GetAccount(ctx context.Context, accountID string) (*models.Account, error)
	ListAccounts(ctx context.Context, page models.Page) ([]*models.Account, int, error)
	SaveCard(ctx context.Context, c *models.CreditCard) error
	GetCard(ctx context.Context, cardNumber string) (*models.CreditCard, error)
	ListCards(ctx context.Context, accountID string, page models.Page) ([]*models.CreditCard, int, error)
	SaveTransaction(ctx context.Context, t *models.Transaction) error
	GetTransaction(ctx context.Context, id string) (*models.Transaction, error)
	ListTransactions(ctx context.Context, accountID string, page models.Page) ([]*models.Transaction, int, error)
}

// Service exposes the account, card, transaction, and bill payment
// operations behind the CardDemo screens.
type Service struct {
	store  Store
	logger *slog.Logger
	now    func() time.Time
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(store Store, opts ...Option) *Service {
	svc := &Service{
		store: store,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	if svc.logger == nil {
		svc.logger = slog.Default()
	}
	return svc
}

func (s *Service) GetAccount(ctx context.Context, accountID string) (*models.Account, error) {
	if accountID == "" {
		return nil, apierrors.New(apierrors.CodeBadRequest, "account ID is required")
	}
	a, err := s.store.GetAccount(ctx, accountID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, apierrors.New(apierrors.CodeNotFound, "account not found")
		}
		return nil, apierrors.Wrap(apierrors.CodeInternal, "load account", err)
	}
	return a, nil
}

func (s *Service) ListAccounts(ctx context.Context, page models.Page) ([]*models.Account, int, error) {
	accounts, total, err := s.store.ListAccounts(ctx, page)
	if err != nil {
		return nil, 0, apierrors.Wrap(apierrors.CodeInternal, "list accounts", err)
	}
	return accounts, total, nil
}

// UpdateAccount applies the editable fields of an account update screen.
func (s *Service) UpdateAccount(ctx context.Context, a *models.Account) (*models.Account, error) {
	current, err := s.GetAccount(ctx, a.AccountID)
	if err != nil {
		return nil, err
	}
	if a.ActiveStatus != "Y" && a.ActiveStatus != "N" {
		return nil, apierrors.New(apierrors.CodeValidation, "active status must be Y or N")
	}
	if a.CreditLimit < 0 {
		return nil, apierrors.New(apierrors.CodeValidation, "credit limit must not be negative")
	}

	current.ActiveStatus = a.ActiveStatus
	current.CreditLimit = a.CreditLimit
	current.CashCreditLimit = a.CashCreditLimit
	if err := s.store.SaveAccount(ctx, current); err != nil {
		return nil, apierrors.Wrap(apierrors.CodeInternal, "save account", err)
	}
	return current, nil
}

func (s *Service) GetCard(ctx context.Context, cardNumber string) (*models.CreditCard, error) {
	if cardNumber == "" {
		return nil, apierrors.New(apierrors.CodeBadRequest, "card number is required")
	}
	c, err := s.store.GetCard(ctx, cardNumber)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, apierrors.New(apierrors.CodeNotFound, "card not found")
		}
		return nil, apierrors.Wrap(apierrors.CodeInternal, "load card", err)
	}
	return c, nil
}

func (s *Service) ListCards(ctx context.Context, accountID string, page models.Page) ([]*models.CreditCard, int, error) {
	cards, total, err := s.store.ListCards(ctx, accountID, page)
	if err != nil {
		return nil, 0, apierrors.Wrap(apierrors.CodeInternal, "list cards", err)
	}
	return cards, total, nil
}

func (s *Service) GetTransaction(ctx context.Context, id string) (*models.Transaction, error) {
	if id == "" {
		return nil, apierrors.New(apierrors.CodeBadRequest, "transaction ID is required")
	}
	t, err := s.store.GetTransaction(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, apierrors.New(apierrors.CodeNotFound, "transaction not found")
		}
		return nil, apierrors.Wrap(apierrors.CodeInternal, "load transaction", err)
	}
	return t, nil
}

func (s *Service) ListTransactions(ctx context.Context, accountID string, page models.Page) ([]*models.Transaction, int, error) {
	txns, total, err := s.store.ListTransactions(ctx, accountID, page)
	if err != nil {
		return nil, 0, apierrors.Wrap(apierrors.CodeInternal, "list transactions", err)
	}
	return txns, total, nil
}

// AddTransactionInput carries the add-transaction screen fields.
type AddTransactionInput struct {
	CardNumber   string
	TypeCode     string
	CategoryCode string
	Description  string
	Amount       int64
	MerchantName string
	MerchantCity string
	MerchantZip  string
}

// AddTransaction posts a transaction against a card and adjusts the
// account balance.
func (s *Service) AddTransaction(ctx context.Context, in AddTransactionInput) (*models.Transaction, error) {
	if in.CardNumber == "" {
		return nil, apierrors.New(apierrors.CodeValidation, "card number is required")
	}
	if in.Amount == 0 {
		return nil, apierrors.New(apierrors.CodeValidation, "amount must not be zero")
	}
	if in.Description == "" {
		return nil, apierrors.New(apierrors.CodeValidation, "description is required")
	}

	card, err := s.GetCard(ctx, in.CardNumber)
	if err != nil {
		return nil, err
	}
	account, err := s.GetAccount(ctx, card.AccountID)
	if err != nil {
		return nil, err
	}
	if account.ActiveStatus != "Y" {
		return nil, apierrors.New(apierrors.CodeValidation, "account is not active")
	}
	if in.Amount > 0 && account.CurrentBalance+in.Amount > account.CreditLimit {
		return nil, apierrors.New(apierrors.CodeValidation, "transaction exceeds credit limit")
	}

	now := s.now()
	txn := &models.Transaction{
		TransactionID: uuid.NewString(),
		CardNumber:    card.CardNumber,
		AccountID:     account.AccountID,
		TypeCode:      in.TypeCode,
		CategoryCode:  in.CategoryCode,
		Source:        "POS TERM",
		Description:   in.Description,
		Amount:        in.Amount,
		MerchantName:  in.MerchantName,
		MerchantCity:  in.MerchantCity,
		MerchantZip:   in.MerchantZip,
		OrigTimestamp: now,
		ProcTimestamp: now,
	}
	if err := s.store.SaveTransaction(ctx, txn); err != nil {
		return nil, apierrors.Wrap(apierrors.CodeInternal, "save transaction", err)
	}

	account.CurrentBalance += in.Amount
	if err := s.store.SaveAccount(ctx, account); err != nil {
		return nil, apierrors.Wrap(apierrors.CodeInternal, "update balance", err)
	}

	s.logger.InfoContext(ctx, "transaction posted",
		"transaction_id", txn.TransactionID,
		"account_id", account.AccountID,
		"amount_cents", in.Amount,
	)
	return txn, nil
}

// PayBalance pays the account's current balance in full, posting a payment
// transaction and zeroing the balance.
func (s *Service) PayBalance(ctx context.Context, accountID string) (*models.Transaction, error) {
	account, err := s.GetAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account.CurrentBalance <= 0 {
		return nil, apierrors.New(apierrors.CodeValidation, "no balance due")
	}

	cardsOnAccount, _, err := s.store.ListCards(ctx, accountID, models.Page{Number: 1, Size: 1})
	if err != nil {
		return nil, apierrors.Wrap(apierrors.CodeInternal, "list cards", err)
	}
	cardNumber := ""
	if len(cardsOnAccount) > 0 {
		cardNumber = cardsOnAccount[0].CardNumber
	}

	now := s.now()
	payment := &models.Transaction{
		TransactionID: uuid.NewString(),
		CardNumber:    cardNumber,
		AccountID:     account.AccountID,
		TypeCode:      "02",
		CategoryCode:  "05",
		Source:        "BILL PAY",
		Description:   "BILL PAYMENT - FULL BALANCE",
		Amount:        -account.CurrentBalance,
		OrigTimestamp: now,
		ProcTimestamp: now,
	}
	if err := s.store.SaveTransaction(ctx, payment); err != nil {
		return nil, apierrors.Wrap(apierrors.CodeInternal, "save payment", err)
	}

	account.CurrentBalance = 0
	if err := s.store.SaveAccount(ctx, account); err != nil {
		return nil, apierrors.Wrap(apierrors.CodeInternal, "update balance", err)
	}

	s.logger.InfoContext(ctx, "bill paid in full",
		"account_id", account.AccountID,
		"amount_cents", -payment.Amount,
	)
	return payment, nil
}
