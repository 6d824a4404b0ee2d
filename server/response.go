package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/souadELmaazouzi/audio-processing-and-ui/errors"
	"github.com/souadELmaazouzi/audio-processing-and-ui/logger"
)

// DataResponse is the standard success envelope.
type DataResponse struct {
	Data any   `json:"data"`
	Meta *Meta `json:"meta,omitempty"`
}

// Meta carries list totals and run identifiers.
type Meta struct {
	Total int    `json:"total,omitempty"`
	RunID string `json:"runId,omitempty"`
}

// RespondWithError inspects err: if it is an *apperrors.AppError the status and
// structured body are derived automatically; otherwise a generic 500 is sent.
func RespondWithError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		appErr = apperrors.Internal(err)
	}
	if appErr.HTTPStatus >= http.StatusInternalServerError {
		logger.Get("server").WithContext(c.Request.Context()).
			WithError(err).Error("request failed", logger.Fields("path", c.Request.URL.Path))
	}
	c.JSON(appErr.HTTPStatus, appErr.ToResponse())
}

// RespondOK sends a 200 response wrapping data.
func RespondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, DataResponse{Data: data})
}

// RespondOKWithMeta sends a 200 response with data and metadata.
func RespondOKWithMeta(c *gin.Context, data any, meta *Meta) {
	c.JSON(http.StatusOK, DataResponse{Data: data, Meta: meta})
}

// RespondAccepted sends a 202 response wrapping data.
func RespondAccepted(c *gin.Context, data any, meta *Meta) {
	c.JSON(http.StatusAccepted, DataResponse{Data: data, Meta: meta})
}

// RespondNoContent sends a 204 with no body.
func RespondNoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
