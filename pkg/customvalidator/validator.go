package customvalidator

import (
	"reflect"
	"regexp"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/go-playground/validator/v10"
)

var (
	emailRegex   = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	brPhoneRegex = regexp.MustCompile(`^\(?\d{2}\)?\s?9?\d{4}-?\d{4}$`)
	digitsRegex  = regexp.MustCompile(`\D`)
)

// RegisterCustomValidations registers the project rules and teaches the validator
// to look inside aarondl/null wrappers.
func RegisterCustomValidations(v *validator.Validate) error {
	if err := v.RegisterValidation("email", isGoodEmailFormat); err != nil {
		return err
	}
	if err := v.RegisterValidation("br_phone", isBrazilianPhone); err != nil {
		return err
	}
	if err := v.RegisterValidation("cpf_cnpj", isCpfOrCnpj); err != nil {
		return err
	}
	if err := v.RegisterValidation("date_ymd", isDateYMD); err != nil {
		return err
	}
	registerNullTypes(v)
	return nil
}

func isGoodEmailFormat(fl validator.FieldLevel) bool {
	return emailRegex.MatchString(fl.Field().String())
}

func isBrazilianPhone(fl validator.FieldLevel) bool {
	return brPhoneRegex.MatchString(fl.Field().String())
}

// isCpfOrCnpj checks length and check digits of an 11-digit CPF or 14-digit CNPJ.
func isCpfOrCnpj(fl validator.FieldLevel) bool {
	digits := digitsRegex.ReplaceAllString(fl.Field().String(), "")
	switch len(digits) {
	case 11:
		return validCPF(digits)
	case 14:
		return validCNPJ(digits)
	default:
		return false
	}
}

func isDateYMD(fl validator.FieldLevel) bool {
	_, err := time.Parse("2006-01-02", fl.Field().String())
	return err == nil
}

func allSame(d string) bool {
	for i := 1; i < len(d); i++ {
		if d[i] != d[0] {
			return false
		}
	}
	return true
}

func checkDigit(d string, weights []int) int {
	sum := 0
	for i, w := range weights {
		sum += int(d[i]-'0') * w
	}
	r := sum % 11
	if r < 2 {
		return 0
	}
	return 11 - r
}

func validCPF(d string) bool {
	if allSame(d) {
		return false
	}
	w1 := []int{10, 9, 8, 7, 6, 5, 4, 3, 2}
	w2 := []int{11, 10, 9, 8, 7, 6, 5, 4, 3, 2}
	return checkDigit(d, w1) == int(d[9]-'0') && checkDigit(d, w2) == int(d[10]-'0')
}

func validCNPJ(d string) bool {
	if allSame(d) {
		return false
	}
	w1 := []int{5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
	w2 := []int{6, 5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
	return checkDigit(d, w1) == int(d[12]-'0') && checkDigit(d, w2) == int(d[13]-'0')
}

func registerNullTypes(v *validator.Validate) {
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if val, ok := field.Interface().(null.String); ok && val.Valid {
			return val.String
		}
		return nil
	}, null.String{})

	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if val, ok := field.Interface().(null.Int); ok && val.Valid {
			return val.Int
		}
		return nil
	}, null.Int{})

	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if val, ok := field.Interface().(null.Uint64); ok && val.Valid {
			return val.Uint64
		}
		return nil
	}, null.Uint64{})

	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if val, ok := field.Interface().(null.Float64); ok && val.Valid {
			return val.Float64
		}
		return nil
	}, null.Float64{})

	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if val, ok := field.Interface().(null.Bool); ok && val.Valid {
			return val.Bool
		}
		return nil
	}, null.Bool{})

	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if val, ok := field.Interface().(null.Time); ok && val.Valid {
			return val.Time
		}
		return nil
	}, null.Time{})
}
