package handlers

import (
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/faizi-7/graveyard-back/internal/application"
	"github.com/faizi-7/graveyard-back/internal/domain/errs"
	"github.com/faizi-7/graveyard-back/pkg/helpers"
	"github.com/faizi-7/graveyard-back/pkg/response"
	"github.com/faizi-7/graveyard-back/pkg/validation"
)

// respondError maps a domain error to the envelope. Causes of internal
// failures go to the log only.
func respondError(c *gin.Context, logger *logrus.Logger, err error) {
	status := errs.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		helpers.LogError(logger, "request failed", err, logrus.Fields{
			"route":      c.FullPath(),
			"request_id": c.GetString("request_id"),
		})
	}
	response.Fail(c, status, errs.PublicMessage(err), response.ErrorBody{Kind: errs.KindOf(err).String()})
}

func respondInvalid(c *gin.Context, err error) {
	response.Fail(c, http.StatusBadRequest, "invalid payload", response.ErrorBody{
		Kind:    errs.KindBadRequest.String(),
		Details: validation.ToDetails(err),
	})
}

func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "multipart/form-data")
}

// formImage opens an optional uploaded file. The caller closes the returned
// file when it is non-nil.
func formImage(c *gin.Context, field string) (*application.Image, multipart.File, error) {
	if !isMultipart(c) {
		return nil, nil, nil
	}
	fh, err := c.FormFile(field)
	if err != nil {
		if err == http.ErrMissingFile {
			return nil, nil, nil
		}
		return nil, nil, errs.BadRequest("unreadable " + field + " upload")
	}
	f, err := fh.Open()
	if err != nil {
		return nil, nil, errs.BadRequest("unreadable " + field + " upload")
	}
	return &application.Image{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Body:        f,
	}, f, nil
}
