package response

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRequestIDMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, "%s", RequestID(c)) })

	tests := map[string]struct {
		upstream string
		keep     bool
	}{
		"absent":        {"", false},
		"token":         {"lb-7f3a.01_x", true},
		"too long":      {strings.Repeat("a", 65), false},
		"html":          {"<script>", false},
		"line break":    {"abc\r\nSet-Cookie: x", false},
		"max length ok": {strings.Repeat("b", 64), true},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.upstream != "" {
				req.Header.Set(HeaderRequestID, tc.upstream)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			got := w.Body.String()
			assert.Equal(t, got, w.Header().Get(HeaderRequestID))
			if tc.keep {
				assert.Equal(t, tc.upstream, got)
			} else {
				assert.NotEqual(t, tc.upstream, got)
				assert.Len(t, got, 36)
			}
		})
	}
}

func TestGetMessage_KnownCodes(t *testing.T) {
	assert.Equal(t, "Code must be a number", GetMessage(ErrRollNoNotNumeric))
	assert.Equal(t, "Upload JPG or PNG photo only", GetMessage(ErrUnsupportedPhoto))
	assert.Equal(t, "An unexpected error occurred.", GetMessage(ErrCode("NOPE")))
}
