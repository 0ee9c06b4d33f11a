package store

import (
	"reflect"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/bsoncodec"
	"go.mongodb.org/mongo-driver/bson/bsonrw"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

var decimalType = reflect.TypeOf(decimal.Decimal{})

// decimalCodec round-trips shopspring/decimal.Decimal through bson as a
// string, so every amount kept in the store carries exactly the precision
// decimalutil produced — never a float64's binary rounding.
type decimalCodec struct{}

func (decimalCodec) EncodeValue(_ bsoncodec.EncodeContext, vw bsonrw.ValueWriter, val reflect.Value) error {
	if !val.IsValid() || val.Type() != decimalType {
		return bsoncodec.ValueEncoderError{Name: "DecimalEncodeValue", Types: []reflect.Type{decimalType}, Received: val}
	}
	d := val.Interface().(decimal.Decimal)
	s := d.String()
	if d.Exponent() < 0 {
		s = d.StringFixed(-d.Exponent())
	}
	return vw.WriteString(s)
}

func (decimalCodec) DecodeValue(_ bsoncodec.DecodeContext, vr bsonrw.ValueReader, val reflect.Value) error {
	if !val.CanSet() || val.Type() != decimalType {
		return bsoncodec.ValueDecoderError{Name: "DecimalDecodeValue", Types: []reflect.Type{decimalType}, Received: val}
	}

	var s string
	switch vr.Type() {
	case bsontype.String:
		v, err := vr.ReadString()
		if err != nil {
			return err
		}
		s = v
	case bsontype.Null:
		if err := vr.ReadNull(); err != nil {
			return err
		}
		val.Set(reflect.ValueOf(decimal.Zero))
		return nil
	default:
		d, err := vr.ReadDouble()
		if err != nil {
			return err
		}
		val.Set(reflect.ValueOf(decimal.NewFromFloat(d)))
		return nil
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return err
	}
	val.Set(reflect.ValueOf(d))
	return nil
}

func registerDecimalCodec(rb *bsoncodec.RegistryBuilder) {
	rb.RegisterCodec(decimalType, decimalCodec{})
}
