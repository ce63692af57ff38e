package response

import (
	"net/http"

	"shelfkeeper/pkg/apperrors"
	"shelfkeeper/pkg/logger"

	"github.com/gin-gonic/gin"
)

func RespondJSON(c *gin.Context, status string, code int, message string, data interface{}, errors interface{}) {
	c.JSON(code, StandardApiResponse{
		Status:     status,
		StatusCode: code,
		Message:    message,
		Data:       data,
		Errors:     errors,
	})
}

func RespondSuccess(c *gin.Context, code int, message string, data interface{}) {
	RespondJSON(c, "success", code, message, data, nil)
}

// RespondError renders err through the envelope. Internal causes are logged,
// never returned.
func RespondError(c *gin.Context, err error) {
	appErr := apperrors.From(err)
	status := appErr.HTTPStatus
	if status == 0 {
		status = http.StatusInternalServerError
	}

	if status >= http.StatusInternalServerError {
		logger.GetDefault().LogHTTPError(c, err, status)
	}

	RespondJSON(c, "error", status, appErr.Message, nil, ErrorBody{
		Code:    appErr.Code,
		Details: appErr.Details,
	})
}

// RespondBindError reports a request that failed typed binding
func RespondBindError(c *gin.Context, err error) {
	RespondJSON(c, "error", http.StatusBadRequest, "invalid request data", nil, ErrorBody{
		Code:    apperrors.CodeValidation,
		Details: map[string]any{"binding": err.Error()},
	})
}
