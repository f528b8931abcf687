package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus represents the fulfilment status of an order
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "Pending"
	OrderStatusProcessing OrderStatus = "Processing"
	OrderStatusDispatched OrderStatus = "Dispatched"
	OrderStatusDelivered  OrderStatus = "Delivered"
	OrderStatusCancelled  OrderStatus = "Cancelled"
	OrderStatusReturned   OrderStatus = "Returned"
)

// OrderStatuses lists every order status in lifecycle order
var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusProcessing,
	OrderStatusDispatched,
	OrderStatusDelivered,
	OrderStatusCancelled,
	OrderStatusReturned,
}

// Valid reports whether s is a known order status
func (s OrderStatus) Valid() bool {
	for _, known := range OrderStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// PaymentStatus represents the payment status of an order
type PaymentStatus string

const (
	PaymentStatusPaid     PaymentStatus = "Paid"
	PaymentStatusUnpaid   PaymentStatus = "Unpaid"
	PaymentStatusRefunded PaymentStatus = "Refunded"
)

// Valid reports whether s is a known payment status
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPaid, PaymentStatusUnpaid, PaymentStatusRefunded:
		return true
	}
	return false
}

// PaymentMethod is how the customer pays
type PaymentMethod string

const (
	PaymentMethodCOD    PaymentMethod = "COD"
	PaymentMethodOnline PaymentMethod = "Online"
	PaymentMethodBank   PaymentMethod = "Bank"
	PaymentMethodUPI    PaymentMethod = "UPI"
)

// Valid reports whether m is a known payment method
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCOD, PaymentMethodOnline, PaymentMethodBank, PaymentMethodUPI:
		return true
	}
	return false
}

// Customer is embedded in an order
type Customer struct {
	Name     string
	Email    string
	Phone    string
	Province string
	City     string
	Address  string
	Landmark string
}

// Item is one order line. Price is the unit price at order time.
type Item struct {
	ProductID string
	Quantity  int
	Price     decimal.Decimal
}

// Order represents the order domain entity
type Order struct {
	ID              string
	Customer        Customer
	Items           []Item
	TotalAmount     decimal.Decimal
	Discount        decimal.Decimal
	AdditionalPrice decimal.Decimal
	OrderStatus     OrderStatus
	PaymentStatus   PaymentStatus
	PaymentMethod   PaymentMethod
	OrderNote       string
	CreatedDate     time.Time
	ModifiedDate    time.Time
}

// ComputeTotal returns sum(quantity*price) - discount + additionalPrice
func ComputeTotal(items []Item, discount, additionalPrice decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total.Sub(discount).Add(additionalPrice)
}

// Recalculate derives TotalAmount from the items and adjustments
func (o *Order) Recalculate() {
	o.TotalAmount = ComputeTotal(o.Items, o.Discount, o.AdditionalPrice)
}

// Fulfilled reports whether the order consumes stock: delivered and paid
func (o *Order) Fulfilled() bool {
	return o.OrderStatus == OrderStatusDelivered && o.PaymentStatus == PaymentStatusPaid
}

// QuantityOf sums the quantity of every line referencing the product
func (o *Order) QuantityOf(productID string) int {
	n := 0
	for _, item := range o.Items {
		if item.ProductID == productID {
			n += item.Quantity
		}
	}
	return n
}

// ProductIDs returns the distinct products referenced by the order, in line order
func (o *Order) ProductIDs() []string {
	seen := make(map[string]struct{}, len(o.Items))
	ids := make([]string, 0, len(o.Items))
	for _, item := range o.Items {
		if item.ProductID == "" {
			continue
		}
		if _, ok := seen[item.ProductID]; ok {
			continue
		}
		seen[item.ProductID] = struct{}{}
		ids = append(ids, item.ProductID)
	}
	return ids
}

// NewOrderInput holds the client supplied fields of a new order
type NewOrderInput struct {
	Customer        Customer
	Items           []Item
	Discount        decimal.Decimal
	AdditionalPrice decimal.Decimal
	OrderStatus     OrderStatus
	PaymentStatus   PaymentStatus
	PaymentMethod   PaymentMethod
	OrderNote       string
}

// NewOrder creates an order, applying status defaults and deriving the total before validation
func NewOrder(in NewOrderInput) (*Order, error) {
	now := time.Now().UTC()
	order := &Order{
		Customer:        in.Customer,
		Items:           in.Items,
		Discount:        in.Discount,
		AdditionalPrice: in.AdditionalPrice,
		OrderStatus:     in.OrderStatus,
		PaymentStatus:   in.PaymentStatus,
		PaymentMethod:   in.PaymentMethod,
		OrderNote:       in.OrderNote,
		CreatedDate:     now,
		ModifiedDate:    now,
	}
	if order.OrderStatus == "" {
		order.OrderStatus = OrderStatusPending
	}
	if order.PaymentStatus == "" {
		order.PaymentStatus = PaymentStatusUnpaid
	}
	order.Recalculate()

	if err := Validate(order); err != nil {
		return nil, err
	}
	return order, nil
}

// OrderPatch carries the fields of a partial order update.
// A non-nil Customer or Items replaces the stored value as a whole.
type OrderPatch struct {
	Customer        *Customer
	Items           *[]Item
	Discount        *decimal.Decimal
	AdditionalPrice *decimal.Decimal
	OrderStatus     *OrderStatus
	PaymentStatus   *PaymentStatus
	PaymentMethod   *PaymentMethod
	OrderNote       *string
}

// Apply merges the patch onto the order and re-derives the total
func (o *Order) Apply(patch OrderPatch) {
	if patch.Customer != nil {
		o.Customer = *patch.Customer
	}
	if patch.Items != nil {
		o.Items = *patch.Items
	}
	if patch.Discount != nil {
		o.Discount = *patch.Discount
	}
	if patch.AdditionalPrice != nil {
		o.AdditionalPrice = *patch.AdditionalPrice
	}
	if patch.OrderStatus != nil {
		o.OrderStatus = *patch.OrderStatus
	}
	if patch.PaymentStatus != nil {
		o.PaymentStatus = *patch.PaymentStatus
	}
	if patch.PaymentMethod != nil {
		o.PaymentMethod = *patch.PaymentMethod
	}
	if patch.OrderNote != nil {
		o.OrderNote = *patch.OrderNote
	}
	o.Recalculate()
	o.ModifiedDate = time.Now().UTC()
}
