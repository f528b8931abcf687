package domain

import (
	"fmt"
	"regexp"
	"strings"

	"backoffice/pkg/errors"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^[0-9]{10}$`)
)

// Validate checks every order field and reports all violations at once,
// keyed by field path (customer.phone, items[1].quantity, ...).
// Status values are not checked against transitions; any status may follow any other.
func Validate(o *Order) error {
	fields := errors.FieldErrors{}

	validateCustomer(o.Customer, fields)

	if len(o.Items) == 0 {
		fields["items"] = "at least one item is required"
	}
	for i, item := range o.Items {
		prefix := fmt.Sprintf("items[%d].", i)
		if strings.TrimSpace(item.ProductID) == "" {
			fields[prefix+"product"] = "product is required"
		}
		if item.Quantity <= 0 {
			fields[prefix+"quantity"] = "quantity must be greater than 0"
		}
		if !item.Price.IsPositive() {
			fields[prefix+"price"] = "price must be greater than 0"
		}
	}

	if o.Discount.IsNegative() {
		fields["discount"] = "discount must not be negative"
	}
	if o.AdditionalPrice.IsNegative() {
		fields["additionalPrice"] = "additionalPrice must not be negative"
	}
	if !o.TotalAmount.IsPositive() {
		fields["totalAmount"] = "totalAmount must be greater than 0"
	}

	switch {
	case o.OrderStatus == "":
		fields["orderStatus"] = "orderStatus is required"
	case !o.OrderStatus.Valid():
		fields["orderStatus"] = fmt.Sprintf("unknown orderStatus %q", o.OrderStatus)
	}
	switch {
	case o.PaymentStatus == "":
		fields["paymentStatus"] = "paymentStatus is required"
	case !o.PaymentStatus.Valid():
		fields["paymentStatus"] = fmt.Sprintf("unknown paymentStatus %q", o.PaymentStatus)
	}
	switch {
	case o.PaymentMethod == "":
		fields["paymentMethod"] = "paymentMethod is required"
	case !o.PaymentMethod.Valid():
		fields["paymentMethod"] = fmt.Sprintf("unknown paymentMethod %q", o.PaymentMethod)
	}

	if len(fields) > 0 {
		return errors.NewFieldValidation(fields)
	}
	return nil
}

func validateCustomer(c Customer, fields errors.FieldErrors) {
	if strings.TrimSpace(c.Name) == "" {
		fields["customer.name"] = "customer name is required"
	}

	email := strings.TrimSpace(c.Email)
	switch {
	case email == "":
		fields["customer.email"] = "customer email is required"
	case !emailPattern.MatchString(email):
		fields["customer.email"] = "customer email is not a valid address"
	}

	phone := strings.TrimSpace(c.Phone)
	switch {
	case phone == "":
		fields["customer.phone"] = "customer phone is required"
	case !phonePattern.MatchString(phone):
		fields["customer.phone"] = "customer phone must be exactly 10 digits"
	}
}
