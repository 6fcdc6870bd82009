package enum

// PaymentMethod represents how a bill is (or will be) paid. The tax rate
// applied during recomputation depends on it.
type PaymentMethod string

const (
	PaymentMethodCash          PaymentMethod = "cash"
	PaymentMethodCard          PaymentMethod = "card"
	PaymentMethodDigitalWallet PaymentMethod = "digital_wallet"
	PaymentMethodBankTransfer  PaymentMethod = "bank_transfer"
	PaymentMethodPending       PaymentMethod = "pending"
)

// Valid reports whether m is a known payment method.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodDigitalWallet,
		PaymentMethodBankTransfer, PaymentMethodPending:
		return true
	}
	return false
}
