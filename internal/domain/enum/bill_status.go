package enum

// BillStatus represents the lifecycle status of a bill. The values are
// persisted and exchanged over the API verbatim.
type BillStatus string

const (
	BillStatusPending        BillStatus = "pending"
	BillStatusConfirmed      BillStatus = "confirmed"
	BillStatusPreparing      BillStatus = "preparing"
	BillStatusReady          BillStatus = "ready"
	BillStatusOutForDelivery BillStatus = "out_for_delivery"
	BillStatusDelivered      BillStatus = "delivered"
	BillStatusCancelled      BillStatus = "cancelled"
)

// Valid reports whether s is a known bill status.
func (s BillStatus) Valid() bool {
	switch s {
	case BillStatusPending, BillStatusConfirmed, BillStatusPreparing,
		BillStatusReady, BillStatusOutForDelivery, BillStatusDelivered,
		BillStatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further status transitions are allowed.
func (s BillStatus) Terminal() bool {
	return s == BillStatusDelivered || s == BillStatusCancelled
}

// CanTransitionTo reports whether the fulfilment flow allows moving from s
// to next. Cancellation is handled by the explicit cancel action, not here.
func (s BillStatus) CanTransitionTo(next BillStatus) bool {
	switch s {
	case BillStatusPending:
		return next == BillStatusConfirmed
	case BillStatusConfirmed:
		return next == BillStatusPreparing
	case BillStatusPreparing:
		return next == BillStatusReady
	case BillStatusReady:
		return next == BillStatusOutForDelivery || next == BillStatusDelivered
	case BillStatusOutForDelivery:
		return next == BillStatusDelivered
	}
	return false
}
