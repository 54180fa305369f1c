package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/akhilesheragolla2056/Vidhya-sub000/pkg/errors"
	"github.com/akhilesheragolla2056/Vidhya-sub000/pkg/response"
)

// Identity headers populated by the upstream auth gateway. This core never
// issues or validates credentials itself; it trusts the boundary in front of
// it and only requires that an identity is present.
const (
	HeaderUserID   = "X-User-ID"
	HeaderUserName = "X-User-Name"

	CtxUserIDKey   = "userID"
	CtxUserNameKey = "userName"
)

// Identity extracts the authenticated caller identity from gateway headers
// and rejects requests that arrive without one.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := strings.TrimSpace(c.GetHeader(HeaderUserID))
		if userID == "" {
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}

		c.Set(CtxUserIDKey, userID)
		if name := strings.TrimSpace(c.GetHeader(HeaderUserName)); name != "" {
			c.Set(CtxUserNameKey, name)
		}

		c.Next()
	}
}
