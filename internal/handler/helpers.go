package handler

import (
	"anoa.com/kirimpesan/pkg/validator"
)

func formatValidationError(err error) string {
	return validator.FormatValidationError(err)
}
