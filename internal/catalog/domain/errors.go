package domain

import "backoffice/pkg/errors"

// Domain-specific errors
var (
	ErrCategoryInUse = errors.NewConflict("category is referenced by existing products")
	ErrProductInUse  = errors.NewConflict("product is referenced by existing orders")
)

// NewCategoryNotFound creates a not found error with the category ID
func NewCategoryNotFound(id string) error {
	return errors.NewNotFound("category", id)
}

// NewProductNotFound creates a not found error with the product ID
func NewProductNotFound(id string) error {
	return errors.NewNotFound("product", id)
}

// NewInvalidID is returned when an id is not valid for the configured store
func NewInvalidID(resource, id string) error {
	return errors.NewValidation("invalid "+resource+" id", errors.FieldErrors{
		"id": "'" + id + "' is not a valid " + resource + " id",
	})
}
