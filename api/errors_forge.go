package api

import (
	"errors"

	"github.com/xraph/forge"

	"github.com/xraph/herald"
)

// mapError converts herald sentinel errors to Forge HTTP errors.
func mapError(err error) error {
	switch {
	case errors.Is(err, herald.ErrRecordNotFound):
		return forge.NotFound(err.Error())
	case errors.Is(err, herald.ErrCorrelationNotFound):
		return forge.NotFound(err.Error())
	case errors.Is(err, herald.ErrStoreClosed):
		return forge.InternalError(err)
	default:
		return forge.InternalError(err)
	}
}
