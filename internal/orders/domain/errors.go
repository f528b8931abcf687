package domain

import (
	"fmt"

	"backoffice/pkg/errors"
)

// NewOrderNotFound creates a not found error with the order ID
func NewOrderNotFound(id string) error {
	return errors.NewNotFound("order", id)
}

// NewInvalidOrderID is returned when an id is not valid for the configured store
func NewInvalidOrderID(id string) error {
	return errors.NewValidation("invalid order id", errors.FieldErrors{
		"id": "'" + id + "' is not a valid order id",
	})
}

// NewInvalidProductRef is returned when an item references a malformed product id
func NewInvalidProductRef(index int, id string) error {
	return errors.NewFieldValidation(errors.FieldErrors{
		fmt.Sprintf("items[%d].product", index): "'" + id + "' is not a valid product id",
	})
}
