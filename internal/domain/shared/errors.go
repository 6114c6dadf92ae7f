package shared

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrProductNotFound indicates the referenced product does not exist
type ErrProductNotFound struct {
	ProductID uuid.UUID
	Message   string
}

func (e ErrProductNotFound) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "product not found: " + e.ProductID.String()
}

// Is implements the errors.Is interface for ErrProductNotFound
func (e ErrProductNotFound) Is(target error) bool {
	t, ok := target.(ErrProductNotFound)
	if !ok {
		return false
	}
	return t.ProductID == uuid.Nil || t.ProductID == e.ProductID
}

// ErrInsufficientBalance indicates balance or credit cannot cover amount plus fees
type ErrInsufficientBalance struct {
	ProductID uuid.UUID
	Available decimal.Decimal
	Required  decimal.Decimal
	Message   string
}

func (e ErrInsufficientBalance) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("insufficient balance: available %s, required %s",
		e.Available.StringFixed(2), e.Required.StringFixed(2))
}

func (e ErrInsufficientBalance) Is(target error) bool {
	t, ok := target.(ErrInsufficientBalance)
	if !ok {
		return false
	}
	return t.ProductID == uuid.Nil || t.ProductID == e.ProductID
}

// ErrInvalidTransaction indicates a business rule violation
type ErrInvalidTransaction struct {
	Reason string
}

func (e ErrInvalidTransaction) Error() string {
	return e.Reason
}

func (e ErrInvalidTransaction) Is(target error) bool {
	t, ok := target.(ErrInvalidTransaction)
	if !ok {
		return false
	}
	return t.Reason == "" || t.Reason == e.Reason
}

// ErrOverdueDebt blocks an operation because of the customer's credit standing
type ErrOverdueDebt struct {
	CustomerID string
	ProductID  uuid.UUID
}

func (e ErrOverdueDebt) Error() string {
	if e.CustomerID != "" {
		return "customer " + e.CustomerID + " has overdue debt"
	}
	return "product " + e.ProductID.String() + " has overdue debt"
}

func (e ErrOverdueDebt) Is(target error) bool {
	_, ok := target.(ErrOverdueDebt)
	return ok
}

// Invalid is shorthand for building an ErrInvalidTransaction
func Invalid(format string, args ...interface{}) error {
	return ErrInvalidTransaction{Reason: fmt.Sprintf(format, args...)}
}
