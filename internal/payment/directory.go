package payment

import (
	"context"
	"errors"
)

// ErrAccountNotFound is returned when a CID resolves to no subscription.
var ErrAccountNotFound = errors.New("subscription account not found")

// Plan is one purchasable subscription tier.
type Plan struct {
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Currency string `json:"currency"`
}

// Account is the subscription record behind a CID.
type Account struct {
	CurrentSubscription string `json:"current_subscription"`
	ExpiryDate          string `json:"expiry_date"`
	AvailablePlans      []Plan `json:"available_plans"`
	TransferAddress     string `json:"transfer_address"`
	IDRRate             int64  `json:"idr_rate"`
}

// Directory resolves CIDs to subscription accounts.
type Directory interface {
	Lookup(ctx context.Context, cid string) (Account, error)
}

// StaticDirectory serves a fixed catalog. It stands in until the billing
// backend exposes a lookup endpoint.
type StaticDirectory struct {
	account Account
}

// NewStaticDirectory builds the stock catalog directory.
func NewStaticDirectory() *StaticDirectory {
	return &StaticDirectory{
		account: Account{
			CurrentSubscription: "Premium Monthly",
			ExpiryDate:          "2024-02-15",
			AvailablePlans: []Plan{
				{Name: "Premium Monthly", Price: 125, Currency: "USDT"},
				{Name: "Premium Yearly", Price: 1200, Currency: "USDT"},
				{Name: "Business Monthly", Price: 250, Currency: "USDT"},
				{Name: "Business Yearly", Price: 2400, Currency: "USDT"},
			},
			TransferAddress: "0x1dC45622D4ba8B70e11190873cbEB03408Df3f08",
			IDRRate:         15600,
		},
	}
}

// Lookup returns the catalog for any well-formed CID.
func (d *StaticDirectory) Lookup(_ context.Context, cid string) (Account, error) {
	if cid == "" {
		return Account{}, ErrAccountNotFound
	}
	return d.account, nil
}
