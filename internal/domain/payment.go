package domain

import "time"

type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodCreditCard   PaymentMethod = "credit_card"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodBankTransfer, PaymentMethodCreditCard:
		return true
	}
	return false
}

type PaymentType string

const (
	PaymentTypeDeposit    PaymentType = "deposit"
	PaymentTypeRentalFee  PaymentType = "rental_fee"
	PaymentTypeDamageFine PaymentType = "damage_fine"
	PaymentTypeRefund     PaymentType = "refund"
	PaymentTypeOther      PaymentType = "other"
)

// Payment is one money movement against a transaction. Amount is signed:
// negative amounts are refunds. TransactionDate is set at creation and
// never updated.
type Payment struct {
	ID              int64         `json:"id"`
	RentalID        int64         `json:"rental_id"`
	AmountCents     int64         `json:"amount_cents"`
	Method          PaymentMethod `json:"payment_method"`
	Type            PaymentType   `json:"payment_type"`
	SlipReference   string        `json:"slip_reference,omitempty"` // proof-of-payment pointer, storage is external
	DamageReportID  *int64        `json:"damage_report_id,omitempty"`
	TransactionDate time.Time     `json:"transaction_date"`
	ReferenceNumber string        `json:"reference_number,omitempty"`
	Notes           string        `json:"notes,omitempty"`
}
