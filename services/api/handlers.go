package main

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/rentfolio/go-rental-management/shared/utils"
	"github.com/rentfolio/go-rental-management/tenancy"
)

// parseIDParam parses the :id (or named) path parameter as a uuid. On failure
// it writes a 400 response and reports false.
func parseIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

// respondTenancyError maps tenancy error kinds onto HTTP statuses. Unexpected
// storage errors are never exposed verbatim.
func respondTenancyError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, tenancy.ErrNotFound):
		utils.NotFoundResponse(c, err.Error())
	case errors.Is(err, tenancy.ErrInvalidInput):
		utils.BadRequestResponse(c, err.Error())
	default:
		utils.InternalServerErrorResponse(c, fallback)
	}
}
