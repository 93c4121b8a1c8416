package models

import "time"

// Amounts are stored as cents so arithmetic stays exact.

// Account is a card account record.
type Account struct {
	AccountID       string
	UserID          string
	ActiveStatus    string // "Y" or "N"
	CurrentBalance  int64
	CreditLimit     int64
	CashCreditLimit int64
	CurrencyCode    string
	OpenDate        time.Time
	ExpirationDate  time.Time
}

// CreditCard is a card attached to an account.
type CreditCard struct {
	CardNumber     string
	AccountID      string
	CardholderName string
	ActiveStatus   string
	ExpiryMonth    int
	ExpiryYear     int
}

// Transaction is a posted card transaction.
type Transaction struct {
	TransactionID string
	CardNumber    string
	AccountID     string
	TypeCode      string // "01" purchase, "02" payment
	CategoryCode  string
	Source        string
	Description   string
	Amount        int64 // negative for credits
	MerchantName  string
	MerchantCity  string
	MerchantZip   string
	OrigTimestamp time.Time
	ProcTimestamp time.Time
}

// Page carries pagination inputs. Page numbers start at 1.
type Page struct {
	Number int
	Size   int
}

// Normalize clamps a page request into usable bounds.
func (p Page) Normalize() Page {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Size < 1 || p.Size > 100 {
		p.Size = 10
	}
	return p
}

// Offset is the index of the first item on the page.
func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}
