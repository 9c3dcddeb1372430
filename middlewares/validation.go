package middlewares

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/pastelaria-api/utils"
	"github.com/yeremiapane/pastelaria-api/validation"
)

const ContextValidatedKey = "validatedData"

var (
	errContentType = utils.NewBadRequest("INVALID_CONTENT_TYPE", "Content-Type deve ser application/json")
	errInvalidJSON = utils.NewBadRequest("INVALID_JSON", "JSON inválido")
)

// ValidateJSON checks the body against schema.
func ValidateJSON(schema validation.Schema) gin.HandlerFunc {
	return ValidateBody(func(data map[string]interface{}) []string {
		return validation.Validate(data, schema)
	})
}

// ValidateBody decodes a JSON object body and runs check on it. On success
// the coerced map is stored under validatedData and re-installed as the
// request body, so handlers can bind typed structs from it.
func ValidateBody(check func(map[string]interface{}) []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
		default:
			c.Next()
			return
		}

		if !strings.HasPrefix(c.ContentType(), "application/json") {
			utils.AbortWithError(c, http.StatusBadRequest, errContentType)
			return
		}

		raw, err := io.ReadAll(c.Request.Body)
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				utils.AbortWithError(c, http.StatusRequestEntityTooLarge, errTooLarge)
				return
			}
			utils.AbortWithError(c, http.StatusBadRequest, errInvalidJSON)
			return
		}

		var data map[string]interface{}
		if err := json.Unmarshal(raw, &data); err != nil || data == nil {
			utils.AbortWithError(c, http.StatusBadRequest, errInvalidJSON)
			return
		}

		if errs := check(data); len(errs) > 0 {
			utils.AbortWithError(c, http.StatusBadRequest, utils.NewValidationError(errs))
			return
		}

		coerced, err := json.Marshal(data)
		if err != nil {
			utils.AbortWithError(c, http.StatusInternalServerError, err)
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(coerced))
		c.Request.ContentLength = int64(len(coerced))
		c.Set(ContextValidatedKey, data)
		c.Next()
	}
}

// RequireJSON only checks that the body is a JSON object. Handlers bind and
// check the fields themselves.
func RequireJSON() gin.HandlerFunc {
	return ValidateBody(func(map[string]interface{}) []string { return nil })
}

// ValidateParams rejects non-numeric ids in the named path parameters.
func ValidateParams(names ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		params := make(map[string]string, len(names))
		for _, name := range names {
			params[name] = c.Param(name)
		}
		if errs := validation.ValidateParams(params, names...); len(errs) > 0 {
			err := utils.NewBadRequest("INVALID_ID", "ID inválido")
			err.Details = errs
			utils.AbortWithError(c, http.StatusBadRequest, err)
			return
		}
		c.Next()
	}
}

// ValidatedData returns the map stored by ValidateBody.
func ValidatedData(c *gin.Context) map[string]interface{} {
	if v, ok := c.Get(ContextValidatedKey); ok {
		if data, ok := v.(map[string]interface{}); ok {
			return data
		}
	}
	return nil
}
