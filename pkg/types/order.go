package types

import "time"

// OrderStatus is the lifecycle state of a PendingOrder.
type OrderStatus string

const (
	OrderStatusNew       OrderStatus = "NEW"
	OrderStatusFilled    OrderStatus = "FILLED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
	OrderStatusRejected  OrderStatus = "REJECTED"
)

// PendingOrder is a live order owned exclusively by the order lifecycle
// manager.
type PendingOrder struct {
	ID         string
	Symbol     string
	Side       Side
	Price      float64
	Quantity   float64
	Value      float64
	PlacedAt   time.Time
	InitialRSI float64
	Reason     OrderReason
	Tag        string
	Status     OrderStatus
	CancelNote string
}

// Fill links back to a pending order and records the economics of a
// bar-synchronous limit fill.
type Fill struct {
	OrderID      string
	Symbol       string
	Side         Side
	FillPrice    float64
	FillQty      float64
	Fee          float64
	FeeAsset     string
	RealizedPnL  float64
	CumulativePnL float64
	Timestamp    time.Time
	Reason       OrderReason
}
