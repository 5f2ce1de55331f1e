package v1

import (
	"errors"
	"net/http"

	"github.com/erikmagkekse/nfs-manager/exports"

	"github.com/labstack/echo/v5"
)

var codeStatus = map[string]int{
	exports.ErrInvalidArgument: http.StatusBadRequest,
	exports.ErrUsage:           http.StatusBadRequest,
}

func ExportError(c *echo.Context, err error) error {
	var ee *exports.Error
	if errors.As(err, &ee) {
		status, found := codeStatus[ee.Code]
		if !found {
			status = http.StatusInternalServerError
		}
		return c.JSON(status, ErrorResponse{Error: ee.Error(), Code: ee.Code})
	}
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error(), Code: "INTERNAL_ERROR"})
}
