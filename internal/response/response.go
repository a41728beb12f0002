package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/exstem-enroll/internal/session"
)

// Page renders an HTML template with the data every layout needs: queued
// flash messages, whether a student is logged in and the request ID.
func Page(c *gin.Context, statusCode int, name string, sess *session.Session, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	if sess != nil {
		data["Flashes"] = sess.PopFlashes()
		data["LoggedIn"] = sess.LoggedIn()
	}
	data["RequestID"] = requestID(c)
	c.HTML(statusCode, name, data)
}

// RedirectWithFlash queues the message for code and redirects with 303 so a
// POST is never replayed by the browser.
func RedirectWithFlash(c *gin.Context, sess *session.Session, code ErrCode, location string) {
	if sess != nil {
		sess.AddFlash(GetMessage(code))
	}
	Redirect(c, location)
}

// RedirectWithMessage queues a free-form notice and redirects.
func RedirectWithMessage(c *gin.Context, sess *session.Session, msg, location string) {
	if sess != nil {
		sess.AddFlash(msg)
	}
	Redirect(c, location)
}

// Redirect sends a See Other redirect.
func Redirect(c *gin.Context, location string) {
	c.Redirect(http.StatusSeeOther, location)
}

// AbortRedirect stops the middleware chain and redirects.
func AbortRedirect(c *gin.Context, location string) {
	c.Redirect(http.StatusSeeOther, location)
	c.Abort()
}

// ServerError renders the generic error page.
func ServerError(c *gin.Context, sess *session.Session) {
	Page(c, http.StatusInternalServerError, "error.html", sess, gin.H{
		"Message": GetMessage(ErrInternal),
	})
}

// Text writes a plain-text acknowledgement, used by script endpoints.
func Text(c *gin.Context, statusCode int, msg string) {
	c.String(statusCode, "%s", msg)
}

// AbortText stops the middleware chain with a plain-text error.
func AbortText(c *gin.Context, statusCode int, code ErrCode) {
	c.String(statusCode, "%s", GetMessage(code))
	c.Abort()
}

func requestID(c *gin.Context) string {
	id, _ := c.Get(ContextKeyRequestID)
	s, _ := id.(string)
	return s
}
