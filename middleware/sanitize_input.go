package middleware

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
)

// freeTextFields hold prose and are stored exactly as sent; "<" and ">" are
// ordinary characters there. Output is escaped by the JSON encoder and the
// mail template.
var freeTextFields = map[string]bool{
	"title":             true,
	"abstract":          true,
	"keywords":          true,
	"comments":          true,
	"detailed_feedback": true,
	"admin_notes":       true,
	"reviewer_comments": true,
	"review_comments":   true,
}

// SanitizeInputMiddleware rejects JSON bodies whose identifying fields (names,
// emails, affiliations, enum values) carry HTML markup. It never rewrites the
// body: accepted requests reach the handler byte for byte.
func SanitizeInputMiddleware() gin.HandlerFunc {
	policy := bluemonday.StrictPolicy()

	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost &&
			c.Request.Method != http.MethodPut &&
			c.Request.Method != http.MethodPatch {
			c.Next()
			return
		}
		if c.Request.Body == nil {
			c.Next()
			return
		}

		buf, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, errorBody("Invalid body"))
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(buf))
		if len(bytes.TrimSpace(buf)) == 0 {
			c.Next()
			return
		}

		dec := json.NewDecoder(bytes.NewReader(buf))
		dec.UseNumber()
		var body interface{}
		if err := dec.Decode(&body); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, errorBody("Malformed JSON"))
			return
		}

		if field := markupField(policy, body, ""); field != "" {
			resp := errorBody(fmt.Sprintf("Field %s must not contain HTML markup", field))
			resp["code"] = "invalid_field"
			resp["field"] = field
			c.AbortWithStatusJSON(http.StatusBadRequest, resp)
			return
		}

		c.Next()
	}
}

// markupField returns the path of the first string the policy would alter,
// or "" when the value is clean. Object keys are visited in sorted order.
func markupField(policy *bluemonday.Policy, v interface{}, path string) string {
	switch val := v.(type) {
	case string:
		if html.UnescapeString(policy.Sanitize(val)) != html.UnescapeString(val) {
			return path
		}
	case map[string]interface{}:
		keys := make([]string, 0, len(val))
		for k := range val {
			if !freeTextFields[k] {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		for _, k := range keys {
			child := k
			if path != "" {
				child = path + "." + k
			}
			if field := markupField(policy, val[k], child); field != "" {
				return field
			}
		}
	case []interface{}:
		for i, item := range val {
			if field := markupField(policy, item, fmt.Sprintf("%s[%d]", path, i)); field != "" {
				return field
			}
		}
	}
	return ""
}
