package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/DanielPopoola/banza-wallet-proxy/internal/domain"
	"github.com/go-playground/validator"
	"github.com/shopspring/decimal"
)

const maxBodyBytes = 1 << 20

// Amount is a request quantity given as a JSON number or a numeric string.
// Anything else is reported as a type error on the field that carried it.
type Amount struct {
	decimal.Decimal
}

func (a *Amount) UnmarshalJSON(b []byte) error {
	if err := a.Decimal.UnmarshalJSON(b); err != nil {
		return &json.UnmarshalTypeError{
			Value: strings.Trim(string(b), `"`),
			Type:  reflect.TypeOf(a.Decimal),
		}
	}
	return nil
}

// Validator checks request bodies. Field names in errors are the JSON names.
type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New()

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		switch d := field.Interface().(type) {
		case decimal.Decimal:
			return d.String()
		case Amount:
			return d.String()
		}
		return nil
	}, decimal.Decimal{}, Amount{})

	_ = v.RegisterValidation("whole_amount", amountRule(0))
	_ = v.RegisterValidation("cent_amount", amountRule(2))

	return &Validator{validate: v}
}

func amountRule(precision int32) validator.Func {
	return func(fl validator.FieldLevel) bool {
		d, err := decimal.NewFromString(fl.Field().String())
		return err == nil && domain.CheckAmount(d, precision) == nil
	}
}

// Decode reads a JSON body into dst and validates it. Unknown fields are rejected.
func (v *Validator) Decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		return decodeError(err)
	}
	return v.Struct(dst)
}

func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return domain.NewValidationError("", nil, err.Error())
	}

	fe := fieldErrs[0]
	return domain.NewValidationError(fe.Field(), fe.Value(), fieldMessage(fe))
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%q is required", field)
	case "email":
		return fmt.Sprintf("%q must be a valid email", field)
	case "whole_amount", "cent_amount":
		precision := int32(0)
		if fe.Tag() == "cent_amount" {
			precision = 2
		}
		d, err := decimal.NewFromString(fmt.Sprint(fe.Value()))
		if err != nil {
			return fmt.Sprintf("%q must be a number", field)
		}
		var domainErr *domain.DomainError
		if errors.As(domain.CheckAmount(d, precision), &domainErr) {
			return domainErr.Message
		}
	}
	return fmt.Sprintf("%q failed on the %q rule", field, fe.Tag())
}

func decodeError(err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		if typeErr.Type == reflect.TypeOf(decimal.Decimal{}) {
			return domain.NewValidationError(typeErr.Field, typeErr.Value, fmt.Sprintf("%q must be a number", typeErr.Field))
		}
		return domain.NewValidationError(typeErr.Field, typeErr.Value, fmt.Sprintf("%q has the wrong type", typeErr.Field))
	}

	msg := err.Error()
	if field, ok := strings.CutPrefix(msg, "json: unknown field "); ok {
		field = strings.Trim(field, `"`)
		return domain.NewValidationError(field, nil, fmt.Sprintf("%q is not allowed", field))
	}

	if errors.Is(err, io.EOF) {
		return domain.NewValidationError("", nil, "request body is required")
	}
	return domain.NewValidationError("", nil, "request body is not valid JSON")
}
