package checkout

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/angelmondragon/storefront-engine/pkg/authority"
	pkgerrors "github.com/angelmondragon/storefront-engine/pkg/errors"
)

// ShippingAddress is the address collected at the shipping step. It must
// pass the fixed schema below before being accepted into checkout state.
type ShippingAddress struct {
	Email       string `json:"email" validate:"required,email"`
	FirstName   string `json:"first_name" validate:"required"`
	LastName    string `json:"last_name" validate:"required"`
	Company     string `json:"company,omitempty"`
	Address1    string `json:"address1" validate:"required"`
	Address2    string `json:"address2,omitempty"`
	City        string `json:"city" validate:"required"`
	State       string `json:"state" validate:"required"`
	PostalCode  string `json:"postal_code" validate:"required"`
	Country     string `json:"country" validate:"required"`
	Phone       string `json:"phone" validate:"required"`
	SaveAddress bool   `json:"save_address,omitempty"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" {
			return f.Name
		}
		return tag
	})
	return v
}

// ValidateSchema checks the address against the fixed schema.
func (a ShippingAddress) ValidateSchema() error {
	if err := validate.Struct(a); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok {
			details := map[string]string{}
			for _, fieldErr := range errs {
				details[fieldErr.Field()] = "is invalid"
				if fieldErr.Tag() == "required" {
					details[fieldErr.Field()] = "is required"
				}
				if fieldErr.Tag() == "email" {
					details[fieldErr.Field()] = "must be a valid email"
				}
			}
			return pkgerrors.New(pkgerrors.CodeValidation, "address validation failed").WithDetails(details)
		}
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "address validation failed")
	}
	return nil
}

func (a ShippingAddress) toWire() authority.Address {
	return authority.Address{
		Email:      a.Email,
		FirstName:  a.FirstName,
		LastName:   a.LastName,
		Company:    a.Company,
		Address1:   a.Address1,
		Address2:   a.Address2,
		City:       a.City,
		State:      a.State,
		PostalCode: a.PostalCode,
		Country:    a.Country,
		Phone:      a.Phone,
	}
}
