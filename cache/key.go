package cache

import (
	"encoding/json"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	keySeparator = "|"
	unknownValue = "unknown"
)

// Key builds method|path|?query|device|version|params. Empty headers
// become "unknown" so every key has the same number of segments.
func Key(method, path, rawQuery, deviceType, appVersion string, params map[string]string) string {
	query := ""
	if rawQuery != "" {
		query = "?" + rawQuery
	}

	paramsJSON := "{}"
	if len(params) > 0 {
		// map keys are marshalled in sorted order
		if b, err := json.Marshal(params); err == nil {
			paramsJSON = string(b)
		}
	}

	return strings.Join([]string{
		method,
		path,
		query,
		orUnknown(deviceType),
		orUnknown(appVersion),
		paramsJSON,
	}, keySeparator)
}

// RequestKey derives the key for a gin request.
func RequestKey(c *gin.Context) string {
	params := make(map[string]string, len(c.Params))
	for _, p := range c.Params {
		params[p.Key] = p.Value
	}
	return Key(
		c.Request.Method,
		c.Request.URL.Path,
		c.Request.URL.RawQuery,
		c.GetHeader("X-Device-Type"),
		c.GetHeader("X-App-Version"),
		params,
	)
}

// EntityPattern matches every cached GET whose path starts with path.
func EntityPattern(path string) string {
	return "GET" + keySeparator + path + "%"
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return unknownValue
	}
	return s
}
