package domain

import (
	"testing"

	"github.com/shopspring/decimal"

	"backoffice/pkg/errors"
)

func validOrder() *Order {
	o := &Order{
		Customer: Customer{Name: "Asha", Email: "asha@example.com", Phone: "9800000000"},
		Items: []Item{
			{ProductID: "p1", Quantity: 2, Price: decimal.NewFromInt(500)},
			{ProductID: "p2", Quantity: 1, Price: decimal.NewFromInt(600)},
		},
		Discount:        decimal.NewFromInt(100),
		AdditionalPrice: decimal.NewFromInt(50),
		OrderStatus:     OrderStatusPending,
		PaymentStatus:   PaymentStatusUnpaid,
		PaymentMethod:   PaymentMethodCOD,
	}
	o.Recalculate()
	return o
}

func fieldErrors(t *testing.T, err error) errors.FieldErrors {
	t.Helper()
	var appErr *errors.AppError
	if !errors.As(err, &appErr) || appErr.Code != errors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	fields, ok := appErr.Details.(errors.FieldErrors)
	if !ok {
		t.Fatalf("expected field errors, got %T", appErr.Details)
	}
	return fields
}

func TestComputeTotal(t *testing.T) {
	items := []Item{
		{ProductID: "p1", Quantity: 2, Price: decimal.NewFromInt(500)},
		{ProductID: "p2", Quantity: 1, Price: decimal.NewFromInt(600)},
	}

	total := ComputeTotal(items, decimal.NewFromInt(100), decimal.NewFromInt(50))

	if !total.Equal(decimal.NewFromInt(1550)) {
		t.Errorf("expected 1550, got %s", total)
	}
}

func TestComputeTotal_Fractional(t *testing.T) {
	items := []Item{{ProductID: "p1", Quantity: 3, Price: decimal.RequireFromString("19.99")}}

	total := ComputeTotal(items, decimal.RequireFromString("0.97"), decimal.Zero)

	if total.StringFixed(2) != "59.00" {
		t.Errorf("expected 59.00, got %s", total.StringFixed(2))
	}
}

func TestValidate_Valid(t *testing.T) {
	if err := Validate(validOrder()); err != nil {
		t.Errorf("expected valid order, got %v", err)
	}
}

func TestValidate_Phone(t *testing.T) {
	tests := []struct {
		phone string
		valid bool
	}{
		{"9800000000", true},
		{"12345", false},
		{"98000000001", false},
		{"98000abc00", false},
		{"", false},
	}

	for _, tt := range tests {
		o := validOrder()
		o.Customer.Phone = tt.phone

		err := Validate(o)

		if tt.valid && err != nil {
			t.Errorf("phone %q: expected valid, got %v", tt.phone, err)
		}
		if !tt.valid {
			if _, ok := fieldErrors(t, err)["customer.phone"]; !ok {
				t.Errorf("phone %q: expected customer.phone error", tt.phone)
			}
		}
	}
}

func TestValidate_Email(t *testing.T) {
	for _, email := range []string{"asha", "asha@", "asha@example", "as ha@example.com"} {
		o := validOrder()
		o.Customer.Email = email

		if _, ok := fieldErrors(t, Validate(o))["customer.email"]; !ok {
			t.Errorf("email %q: expected customer.email error", email)
		}
	}
}

func TestValidate_CollectsEveryField(t *testing.T) {
	o := &Order{
		Items: []Item{{ProductID: "", Quantity: 0, Price: decimal.Zero}},
	}

	fields := fieldErrors(t, Validate(o))

	for _, key := range []string{
		"customer.name",
		"customer.email",
		"customer.phone",
		"items[0].product",
		"items[0].quantity",
		"items[0].price",
		"totalAmount",
		"orderStatus",
		"paymentStatus",
		"paymentMethod",
	} {
		if _, ok := fields[key]; !ok {
			t.Errorf("expected %s error, got %v", key, fields)
		}
	}
}

func TestValidate_UnknownEnums(t *testing.T) {
	o := validOrder()
	o.OrderStatus = "Shipped"
	o.PaymentStatus = "Partial"
	o.PaymentMethod = "Cheque"

	fields := fieldErrors(t, Validate(o))

	if len(fields) != 3 {
		t.Errorf("expected 3 field errors, got %v", fields)
	}
}

func TestValidate_NoItems(t *testing.T) {
	o := validOrder()
	o.Items = nil
	o.Recalculate()

	fields := fieldErrors(t, Validate(o))

	if _, ok := fields["items"]; !ok {
		t.Errorf("expected items error, got %v", fields)
	}
}

func TestValidate_DiscountBeyondSubtotal(t *testing.T) {
	o := validOrder()
	o.Discount = decimal.NewFromInt(5000)
	o.Recalculate()

	if _, ok := fieldErrors(t, Validate(o))["totalAmount"]; !ok {
		t.Error("expected totalAmount error for a non-positive total")
	}
}

func TestNewOrder_Defaults(t *testing.T) {
	o, err := NewOrder(NewOrderInput{
		Customer:      Customer{Name: "Asha", Email: "asha@example.com", Phone: "9800000000"},
		Items:         []Item{{ProductID: "p1", Quantity: 1, Price: decimal.NewFromInt(10)}},
		PaymentMethod: PaymentMethodUPI,
	})

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if o.OrderStatus != OrderStatusPending || o.PaymentStatus != PaymentStatusUnpaid {
		t.Errorf("expected Pending/Unpaid, got %s/%s", o.OrderStatus, o.PaymentStatus)
	}
	if o.CreatedDate.IsZero() {
		t.Error("expected created date set")
	}
}

func TestOrder_QuantityOfSumsEveryLine(t *testing.T) {
	o := &Order{Items: []Item{
		{ProductID: "p1", Quantity: 2},
		{ProductID: "p2", Quantity: 5},
		{ProductID: "p1", Quantity: 3},
	}}

	if got := o.QuantityOf("p1"); got != 5 {
		t.Errorf("expected 5, got %d", got)
	}
	if ids := o.ProductIDs(); len(ids) != 2 || ids[0] != "p1" || ids[1] != "p2" {
		t.Errorf("expected [p1 p2], got %v", ids)
	}
}

func TestOrder_Fulfilled(t *testing.T) {
	tests := []struct {
		status  OrderStatus
		payment PaymentStatus
		want    bool
	}{
		{OrderStatusDelivered, PaymentStatusPaid, true},
		{OrderStatusDelivered, PaymentStatusUnpaid, false},
		{OrderStatusPending, PaymentStatusPaid, false},
		{OrderStatusReturned, PaymentStatusPaid, false},
	}

	for _, tt := range tests {
		o := &Order{OrderStatus: tt.status, PaymentStatus: tt.payment}
		if got := o.Fulfilled(); got != tt.want {
			t.Errorf("%s/%s: expected %v, got %v", tt.status, tt.payment, tt.want, got)
		}
	}
}
