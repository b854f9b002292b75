package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"solvectl/internal/domain"
)

// Input validation happens before any network call; a rejected input never
// reaches the gateway.
var validate = validator.New(validator.WithRequiredStructEnabled())

type loginInput struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

type registerInput struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=8"`
}

type depositInput struct {
	Amount float64 `validate:"required,gte=1"`
}

func validateInput(input any) error {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if errors.As(err, &fieldErrors) && len(fieldErrors) > 0 {
		first := fieldErrors[0]
		return fmt.Errorf("%w: %s fails %q", domain.ErrInvalidInput, strings.ToLower(first.Field()), first.Tag())
	}

	return err
}
