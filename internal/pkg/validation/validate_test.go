package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/your-org/marketflow-backend/internal/pkg/apperror"
)

type signup struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name" validate:"required,max=5"`
	Age   int    `json:"age" validate:"gte=18"`
}

func TestStruct_Valid(t *testing.T) {
	assert.NoError(t, Struct(signup{Email: "a@b.co", Name: "Ana", Age: 30}))
}

func TestStruct_ReportsJSONFieldNames(t *testing.T) {
	err := Struct(signup{Email: "nope", Name: "Bartholomew", Age: 3})

	assert.ErrorIs(t, err, apperror.ErrValidation)
	assert.Equal(t,
		"age must be greater than or equal to 18; email must be a valid email address; name must be at most 5",
		err.Error())
}

func TestFormatValidationError_NonValidatorError(t *testing.T) {
	assert.Empty(t, FormatValidationError(assert.AnError))
}
