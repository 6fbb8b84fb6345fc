package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Price is a decimal amount. It is written as a plain JSON number and as a
// BSON Decimal128; on read it also accepts quoted JSON strings and BSON
// doubles, integers and strings left behind by older writers.
type Price struct {
	decimal.Decimal
}

func NewPrice(v float64) Price {
	return Price{decimal.NewFromFloat(v)}
}

func ParsePrice(s string) (Price, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Price{}, fmt.Errorf("parse price %q: %w", s, err)
	}
	return Price{d}, nil
}

func (p Price) Equal(o Price) bool {
	return p.Decimal.Equal(o.Decimal)
}

func (p Price) MarshalJSON() ([]byte, error) {
	return []byte(p.Decimal.String()), nil
}

func (p *Price) UnmarshalJSON(data []byte) error {
	return p.Decimal.UnmarshalJSON(data)
}

func (p Price) MarshalBSONValue() (bsontype.Type, []byte, error) {
	d, err := primitive.ParseDecimal128(p.Decimal.String())
	if err != nil {
		return 0, nil, fmt.Errorf("encode price %s: %w", p.Decimal.String(), err)
	}
	return bson.MarshalValue(d)
}

func (p *Price) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	raw := bson.RawValue{Type: t, Value: data}

	switch t {
	case bson.TypeDecimal128:
		d, err := decimal.NewFromString(raw.Decimal128().String())
		if err != nil {
			return fmt.Errorf("decode price: %w", err)
		}
		p.Decimal = d
	case bson.TypeDouble:
		p.Decimal = decimal.NewFromFloat(raw.Double())
	case bson.TypeInt32:
		p.Decimal = decimal.NewFromInt32(raw.Int32())
	case bson.TypeInt64:
		p.Decimal = decimal.NewFromInt(raw.Int64())
	case bson.TypeString:
		d, err := decimal.NewFromString(raw.StringValue())
		if err != nil {
			return fmt.Errorf("decode price: %w", err)
		}
		p.Decimal = d
	case bson.TypeNull, bson.TypeUndefined:
		p.Decimal = decimal.Zero
	default:
		return fmt.Errorf("decode price: unsupported bson type %s", t)
	}
	return nil
}
