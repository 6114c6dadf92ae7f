package mongo

import (
	"fmt"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Monetary values are stored as Decimal128 so they keep their exact scale.

func toDecimal128(d decimal.Decimal) (primitive.Decimal128, error) {
	v, err := primitive.ParseDecimal128(d.String())
	if err != nil {
		return primitive.Decimal128{}, fmt.Errorf("failed to encode decimal %s: %w", d.String(), err)
	}
	return v, nil
}

func fromDecimal128(v primitive.Decimal128) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(v.String())
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to decode decimal %s: %w", v.String(), err)
	}
	return d, nil
}
