// internal/validator/validator.go
package validator

import (
	"expense-ledger/internal/domain"
	"reflect"
	"regexp"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var Validate *validator.Validate

var nonSpace = regexp.MustCompile(`\S`)

// maxAmount is the first value that no longer fits NUMERIC(10,2).
var maxAmount = decimal.New(1, 8)

func init() {
	Validate = validator.New()

	// decimal.Decimal is validated through its string form
	Validate.RegisterCustomTypeFunc(func(v reflect.Value) interface{} {
		if d, ok := v.Interface().(decimal.Decimal); ok {
			return d.String()
		}
		return nil
	}, decimal.Decimal{})

	// Дата в формате "2024-12-31"
	_ = Validate.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		_, err := time.Parse(domain.DateLayout, fl.Field().String())
		return err == nil
	})

	// Строка не пустая и не только пробелы
	_ = Validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return nonSpace.MatchString(fl.Field().String())
	})

	// Положительная сумма, не больше двух знаков после запятой
	_ = Validate.RegisterValidation("money", func(fl validator.FieldLevel) bool {
		return IsMoney(fl.Field().String())
	})
}

// IsMoney reports whether s is a positive amount with at most two decimal
// places that fits NUMERIC(10,2).
func IsMoney(s string) bool {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return false
	}
	return d.IsPositive() && d.Equal(d.Round(2)) && d.LessThan(maxAmount)
}
