package cards

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"carddemo/internal/server/cards/models"
	"carddemo/internal/server/cards/store"
	"carddemo/pkg/apierrors"
)

type CardsSuite struct {
	suite.Suite
	ctx     context.Context
	store   *store.MemoryStore
	service *Service
	now     time.Time
}

func (s *CardsSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = store.NewMemoryStore()
	s.now = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	s.service = NewService(s.store, WithClock(func() time.Time { return s.now }))

	s.Require().NoError(s.store.SaveAccount(s.ctx, &models.Account{
		AccountID:      "00000000001",
		UserID:         "USER001",
		ActiveStatus:   "Y",
		CurrentBalance: 50_00,
		CreditLimit:    1000_00,
		CurrencyCode:   "USD",
	}))
	s.Require().NoError(s.store.SaveCard(s.ctx, &models.CreditCard{
		CardNumber:     "4111111111111111",
		AccountID:      "00000000001",
		CardholderName: "JOHN DOE",
		ActiveStatus:   "Y",
		ExpiryMonth:    12,
		ExpiryYear:     2028,
	}))
}

func TestCardsSuite(t *testing.T) {
	suite.Run(t, new(CardsSuite))
}

func (s *CardsSuite) TestGetAccount() {
	a, err := s.service.GetAccount(s.ctx, "00000000001")
	s.Require().NoError(err)
	s.Equal(int64(50_00), a.CurrentBalance)

	_, err = s.service.GetAccount(s.ctx, "99999999999")
	s.True(apierrors.HasCode(err, apierrors.CodeNotFound))

	_, err = s.service.GetAccount(s.ctx, "")
	s.True(apierrors.HasCode(err, apierrors.CodeBadRequest))
}

func (s *CardsSuite) TestUpdateAccountValidation() {
	_, err := s.service.UpdateAccount(s.ctx, &models.Account{
		AccountID: "00000000001", ActiveStatus: "X",
	})
	s.True(apierrors.HasCode(err, apierrors.CodeValidation))

	_, err = s.service.UpdateAccount(s.ctx, &models.Account{
		AccountID: "00000000001", ActiveStatus: "N", CreditLimit: -1,
	})
	s.True(apierrors.HasCode(err, apierrors.CodeValidation))

	updated, err := s.service.UpdateAccount(s.ctx, &models.Account{
		AccountID: "00000000001", ActiveStatus: "N", CreditLimit: 2000_00,
	})
	s.Require().NoError(err)
	s.Equal("N", updated.ActiveStatus)
	s.Equal(int64(2000_00), updated.CreditLimit)
	s.Equal(int64(50_00), updated.CurrentBalance, "balance is not editable")
}

func (s *CardsSuite) TestAddTransactionAdjustsBalance() {
	txn, err := s.service.AddTransaction(s.ctx, AddTransactionInput{
		CardNumber:   "4111111111111111",
		TypeCode:     "01",
		CategoryCode: "01",
		Description:  "GROCERIES",
		Amount:       25_50,
		MerchantName: "CORNER MARKET",
	})
	s.Require().NoError(err)
	s.NotEmpty(txn.TransactionID)
	s.Equal("00000000001", txn.AccountID)
	s.Equal(s.now, txn.OrigTimestamp)

	a, err := s.service.GetAccount(s.ctx, "00000000001")
	s.Require().NoError(err)
	s.Equal(int64(75_50), a.CurrentBalance)
}

func (s *CardsSuite) TestAddTransactionValidation() {
	_, err := s.service.AddTransaction(s.ctx, AddTransactionInput{
		CardNumber: "4111111111111111", Description: "X",
	})
	s.True(apierrors.HasCode(err, apierrors.CodeValidation), "zero amount")

	_, err = s.service.AddTransaction(s.ctx, AddTransactionInput{
		CardNumber: "4111111111111111", Amount: 100,
	})
	s.True(apierrors.HasCode(err, apierrors.CodeValidation), "missing description")

	_, err = s.service.AddTransaction(s.ctx, AddTransactionInput{
		CardNumber: "0000", Description: "X", Amount: 100,
	})
	s.True(apierrors.HasCode(err, apierrors.CodeNotFound), "unknown card")
}

func (s *CardsSuite) TestAddTransactionRespectsCreditLimit() {
	_, err := s.service.AddTransaction(s.ctx, AddTransactionInput{
		CardNumber:  "4111111111111111",
		Description: "BIG TICKET",
		Amount:      1000_00,
	})
	s.True(apierrors.HasCode(err, apierrors.CodeValidation))
}

func (s *CardsSuite) TestPayBalanceInFull() {
	payment, err := s.service.PayBalance(s.ctx, "00000000001")
	s.Require().NoError(err)

	s.Equal(int64(-50_00), payment.Amount)
	s.Equal("02", payment.TypeCode)
	s.Equal("4111111111111111", payment.CardNumber)

	a, err := s.service.GetAccount(s.ctx, "00000000001")
	s.Require().NoError(err)
	s.Zero(a.CurrentBalance)

	_, err = s.service.PayBalance(s.ctx, "00000000001")
	s.True(apierrors.HasCode(err, apierrors.CodeValidation), "nothing due after payment")
}

func (s *CardsSuite) TestTransactionListPaginationNewestFirst() {
	for i, desc := range []string{"FIRST", "SECOND", "THIRD"} {
		s.now = s.now.Add(time.Minute)
		_, err := s.service.AddTransaction(s.ctx, AddTransactionInput{
			CardNumber:  "4111111111111111",
			Description: desc,
			Amount:      int64(i + 1),
		})
		s.Require().NoError(err)
	}

	page1, total, err := s.service.ListTransactions(s.ctx, "00000000001", models.Page{Number: 1, Size: 2})
	s.Require().NoError(err)
	s.Equal(3, total)
	s.Require().Len(page1, 2)
	s.Equal("THIRD", page1[0].Description)
	s.Equal("SECOND", page1[1].Description)

	page2, _, err := s.service.ListTransactions(s.ctx, "00000000001", models.Page{Number: 2, Size: 2})
	s.Require().NoError(err)
	s.Require().Len(page2, 1)
	s.Equal("FIRST", page2[0].Description)

	empty, _, err := s.service.ListTransactions(s.ctx, "00000000001", models.Page{Number: 9, Size: 2})
	s.Require().NoError(err)
	s.Empty(empty)
}
