package seeder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	authmodels "carddemo/internal/server/auth/models"
	cardmodels "carddemo/internal/server/cards/models"
)

// UserStore is the slice of the user store the seeder writes to.
type UserStore interface {
	Create(ctx context.Context, u *authmodels.User) error
}

// CardStore is the slice of the card store the seeder writes to.
type CardStore interface {
	SaveAccount(ctx context.Context, a *cardmodels.Account) error
	SaveCard(ctx context.Context, c *cardmodels.CreditCard) error
	SaveTransaction(ctx context.Context, t *cardmodels.Transaction) error
}

// Seed loads the demo fixtures: the two well-known sign-ons plus a small
// set of accounts, cards, and transactions to page through.
func Seed(ctx context.Context, users UserStore, cards CardStore, logger *slog.Logger) error {
	if err := seedUsers(ctx, users); err != nil {
		return fmt.Errorf("seed users: %w", err)
	}
	if err := seedCards(ctx, cards); err != nil {
		return fmt.Errorf("seed card data: %w", err)
	}
	logger.InfoContext(ctx, "demo data seeded", "users", 2, "accounts", 2)
	return nil
}

func seedUsers(ctx context.Context, users UserStore) error {
	hash, err := bcrypt.GenerateFromPassword([]byte("PASSWORD"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	now := time.Now()

	for _, u := range []*authmodels.User{
		{
			UserID:       "ADMIN001",
			FirstName:    "Arthur",
			LastName:     "Hughes",
			PasswordHash: hash,
			UserType:     authmodels.UserTypeAdmin,
			CreatedAt:    now,
			IsActive:     true,
		},
		{
			UserID:       "USER001",
			FirstName:    "Nora",
			LastName:     "Patel",
			PasswordHash: hash,
			UserType:     authmodels.UserTypeStandard,
			CreatedAt:    now,
			IsActive:     true,
		},
	} {
		if err := users.Create(ctx, u); err != nil {
			return err
		}
	}
	return nil
}

func seedCards(ctx context.Context, cards CardStore) error {
	open := time.Date(2022, 6, 1, 0, 0, 0, 0, time.UTC)

	accounts := []*cardmodels.Account{
		{
			AccountID:       "00000000001",
			UserID:          "USER001",
			ActiveStatus:    "Y",
			CurrentBalance:  1245_50,
			CreditLimit:     5000_00,
			CashCreditLimit: 1000_00,
			CurrencyCode:    "USD",
			OpenDate:        open,
			ExpirationDate:  open.AddDate(5, 0, 0),
		},
		{
			AccountID:       "00000000002",
			UserID:          "USER001",
			ActiveStatus:    "Y",
			CurrentBalance:  0,
			CreditLimit:     2500_00,
			CashCreditLimit: 500_00,
			CurrencyCode:    "USD",
			OpenDate:        open.AddDate(1, 0, 0),
			ExpirationDate:  open.AddDate(6, 0, 0),
		},
	}
	for _, a := range accounts {
		if err := cards.SaveAccount(ctx, a); err != nil {
			return err
		}
	}

	demoCards := []*cardmodels.CreditCard{
		{
			CardNumber:     "4111111111111111",
			AccountID:      "00000000001",
			CardholderName: "NORA PATEL",
			ActiveStatus:   "Y",
			ExpiryMonth:    6,
			ExpiryYear:     2027,
		},
		{
			CardNumber:     "5500000000000004",
			AccountID:      "00000000002",
			CardholderName: "NORA PATEL",
			ActiveStatus:   "Y",
			ExpiryMonth:    6,
			ExpiryYear:     2028,
		},
	}
	for _, c := range demoCards {
		if err := cards.SaveCard(ctx, c); err != nil {
			return err
		}
	}

	merchants := []struct {
		name, city string
		amount     int64
	}{
		{"CORNER MARKET", "SPRINGFIELD", 42_17},
		{"CITY TRANSIT", "SPRINGFIELD", 2_75},
		{"BOOKS AND MORE", "SHELBYVILLE", 18_99},
		{"GAS N GO", "SPRINGFIELD", 55_00},
		{"DINER 22", "CAPITAL CITY", 31_40},
	}
	when := time.Now().Add(-30 * 24 * time.Hour)
	for i, m := range merchants {
		ts := when.Add(time.Duration(i) * 36 * time.Hour)
		txn := &cardmodels.Transaction{
			TransactionID: uuid.NewString(),
			CardNumber:    "4111111111111111",
			AccountID:     "00000000001",
			TypeCode:      "01",
			CategoryCode:  "01",
			Source:        "POS TERM",
			Description:   m.name,
			Amount:        m.amount,
			MerchantName:  m.name,
			MerchantCity:  m.city,
			OrigTimestamp: ts,
			ProcTimestamp: ts,
		}
		if err := cards.SaveTransaction(ctx, txn); err != nil {
			return err
		}
	}
	return nil
}
