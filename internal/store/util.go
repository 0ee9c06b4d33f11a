package store

import (
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func primitiveRegex(pattern string) primitive.Regex {
	return primitive.Regex{Pattern: pattern, Options: ""}
}

func decimalFromFloat(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}
