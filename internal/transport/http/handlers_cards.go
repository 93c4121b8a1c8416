package httptransport

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"carddemo/internal/server/cards"
	"carddemo/internal/server/cards/models"
)

// CardService is the slice of the card domain the transport needs.
type CardService interface {
	GetAccount(ctx context.Context, accountID string) (*models.Account, error)
	ListAccounts(ctx context.Context, page models.Page) ([]*models.Account, int, error)
	UpdateAccount(ctx context.Context, a *models.Account) (*models.Account, error)
	GetCard(ctx context.Context, cardNumber string) (*models.CreditCard, error)
	ListCards(ctx context.Context, accountID string, page models.Page) ([]*models.CreditCard, int, error)
	GetTransaction(ctx context.Context, id string) (*models.Transaction, error)
	ListTransactions(ctx context.Context, accountID string, page models.Page) ([]*models.Transaction, int, error)
	AddTransaction(ctx context.Context, in cards.AddTransactionInput) (*models.Transaction, error)
	PayBalance(ctx context.Context, accountID string) (*models.Transaction, error)
}

type CardHandler struct {
	cards CardService
}

func NewCardHandler(cards CardService) *CardHandler {
	return &CardHandler{cards: cards}
}

type accountResponse struct {
	AccountID       string `json:"accountId"`
	ActiveStatus    string `json:"activeStatus"`
	CurrentBalance  int64  `json:"currentBalanceCents"`
	CreditLimit     int64  `json:"creditLimitCents"`
	CashCreditLimit int64  `json:"cashCreditLimitCents"`
	CurrencyCode    string `json:"currencyCode"`
	OpenDate        string `json:"openDate"`
	ExpirationDate  string `json:"expirationDate"`
}

func toAccountResponse(a *models.Account) accountResponse {
	return accountResponse{
		AccountID:       a.AccountID,
		ActiveStatus:    a.ActiveStatus,
		CurrentBalance:  a.CurrentBalance,
		CreditLimit:     a.CreditLimit,
		CashCreditLimit: a.CashCreditLimit,
		CurrencyCode:    a.CurrencyCode,
		OpenDate:        a.OpenDate.Format(time.DateOnly),
		ExpirationDate:  a.ExpirationDate.Format(time.DateOnly),
	}
}

type pagedResponse struct {
	Items      any `json:"items"`
	TotalCount int `json:"totalCount"`
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
}

func pageFromQuery(r *http.Request) models.Page {
	number, _ := strconv.Atoi(r.URL.Query().Get("page"))
	size, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))
	return models.Page{Number: number, Size: size}.Normalize()
}

func (h *CardHandler) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	page := pageFromQuery(r)
	accounts, total, err := h.cards.ListAccounts(r.Context(), page)
	if err != nil {
		writeError(w, err)
		return
	}
	items := make([]accountResponse, 0, len(accounts))
	for _, a := range accounts {
		items = append(items, toAccountResponse(a))
	}
	writeJSON(w, http.StatusOK, pagedResponse{
		Items: items, TotalCount: total, Page: page.Number, PageSize: page.Size,
	})
}

func (h *CardHandler) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	a, err := h.cards.GetAccount(r.Context(), chi.URLParam(r, "accountID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAccountResponse(a))
}

type updateAccountRequest struct {
	ActiveStatus    string `json:"activeStatus"`
	CreditLimit     int64  `json:"creditLimitCents"`
	CashCreditLimit int64  `json:"cashCreditLimitCents"`
}

func (h *CardHandler) handleUpdateAccount(w http.ResponseWriter, r *http.Request) {
	var req updateAccountRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	a, err := h.cards.UpdateAccount(r.Context(), &models.Account{
		AccountID:       chi.URLParam(r, "accountID"),
		ActiveStatus:    req.ActiveStatus,
		CreditLimit:     req.CreditLimit,
		CashCreditLimit: req.CashCreditLimit,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAccountResponse(a))
}

type cardResponse struct {
	CardNumber     string `json:"cardNumber"`
	AccountID      string `json:"accountId"`
	CardholderName string `json:"cardholderName"`
	ActiveStatus   string `json:"activeStatus"`
	ExpiryMonth    int    `json:"expiryMonth"`
	ExpiryYear     int    `json:"expiryYear"`
}

func toCardResponse(c *models.CreditCard) cardResponse {
	return cardResponse{
		CardNumber:     c.CardNumber,
		AccountID:      c.AccountID,
		CardholderName: c.CardholderName,
		ActiveStatus:   c.ActiveStatus,
		ExpiryMonth:    c.ExpiryMonth,
		ExpiryYear:     c.ExpiryYear,
	}
}

func (h *CardHandler) handleListCards(w http.ResponseWriter, r *http.Request) {
	page := pageFromQuery(r)
	cards, total, err := h.cards.ListCards(r.Context(), r.URL.Query().Get("accountId"), page)
	if err != nil {
		writeError(w, err)
		return
	}
	items := make([]cardResponse, 0, len(cards))
	for _, c := range cards {
		items = append(items, toCardResponse(c))
	}
	writeJSON(w, http.StatusOK, pagedResponse{
		Items: items, TotalCount: total, Page: page.Number, PageSize: page.Size,
	})
}

func (h *CardHandler) handleGetCard(w http.ResponseWriter, r *http.Request) {
	c, err := h.cards.GetCard(r.Context(), chi.URLParam(r, "cardNumber"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCardResponse(c))
}

type transactionResponse struct {
	TransactionID string `json:"transactionId"`
	CardNumber    string `json:"cardNumber"`
	AccountID     string `json:"accountId"`
	TypeCode      string `json:"typeCode"`
	CategoryCode  string `json:"categoryCode"`
	Source        string `json:"source"`
	Description   string `json:"description"`
	Amount        int64  `json:"amountCents"`
	MerchantName  string `json:"merchantName"`
	MerchantCity  string `json:"merchantCity"`
	MerchantZip   string `json:"merchantZip"`
	OrigTimestamp string `json:"origTimestamp"`
	ProcTimestamp string `json:"procTimestamp"`
}

func toTransactionResponse(t *models.Transaction) transactionResponse {
	return transactionResponse{
		TransactionID: t.TransactionID,
		CardNumber:    t.CardNumber,
		AccountID:     t.AccountID,
		TypeCode:      t.TypeCode,
		CategoryCode:  t.CategoryCode,
		Source:        t.Source,
		Description:   t.Description,
		Amount:        t.Amount,
		MerchantName:  t.MerchantName,
		MerchantCity:  t.MerchantCity,
		MerchantZip:   t.MerchantZip,
		OrigTimestamp: t.OrigTimestamp.Format(time.RFC3339),
		ProcTimestamp: t.ProcTimestamp.Format(time.RFC3339),
	}
}

func (h *CardHandler) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	page := pageFromQuery(r)
	txns, total, err := h.cards.ListTransactions(r.Context(), r.URL.Query().Get("accountId"), page)
	if err != nil {
		writeError(w, err)
		return
	}
	items := make([]transactionResponse, 0, len(txns))
	for _, t := range txns {
		items = append(items, toTransactionResponse(t))
	}
	writeJSON(w, http.StatusOK, pagedResponse{
		Items: items, TotalCount: total, Page: page.Number, PageSize: page.Size,
	})
}

func (h *CardHandler) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	t, err := h.cards.GetTransaction(r.Context(), chi.URLParam(r, "transactionID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionResponse(t))
}

type addTransactionRequest struct {
	CardNumber   string `json:"cardNumber"`
	TypeCode     string `json:"typeCode"`
	CategoryCode string `json:"categoryCode"`
	Description  string `json:"description"`
	Amount       int64  `json:"amountCents"`
	MerchantName string `json:"merchantName"`
	MerchantCity string `json:"merchantCity"`
	MerchantZip  string `json:"merchantZip"`
}

func (h *CardHandler) handleAddTransaction(w http.ResponseWriter, r *http.Request) {
	var req addTransactionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	t, err := h.cards.AddTransaction(r.Context(), cards.AddTransactionInput{
		CardNumber:   req.CardNumber,
		TypeCode:     req.TypeCode,
		CategoryCode: req.CategoryCode,
		Description:  req.Description,
		Amount:       req.Amount,
		MerchantName: req.MerchantName,
		MerchantCity: req.MerchantCity,
		MerchantZip:  req.MerchantZip,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTransactionResponse(t))
}

func (h *CardHandler) handlePayBalance(w http.ResponseWriter, r *http.Request) {
	t, err := h.cards.PayBalance(r.Context(), chi.URLParam(r, "accountID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTransactionResponse(t))
}
