package router

import (
	"net/http"
	"strings"
	"time"

	"piogold-backend/storage"
	"piogold-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const tokenValidity = 24 * time.Hour

func createToken(secret []byte, adminId, username string) (string, error) {
	claims := jwt.MapClaims{
		"sub":      adminId,
		"username": username,
		"exp":      time.Now().Add(tokenValidity).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// Authorize validates the bearer token and loads the admin row into the
// context under "admin_id".
func (r *AdminRouter) Authorize() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, &utils.HttpResult{Code: 401, Msg: "not authenticated"})
			return
		}

		token, err := jwt.Parse(strings.TrimPrefix(header, "Bearer "), func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return r.jwtSecret, nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, &utils.HttpResult{Code: 401, Msg: "invalid token"})
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, &utils.HttpResult{Code: 401, Msg: "invalid token"})
			return
		}
		adminId, _ := claims["sub"].(string)
		if adminId == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, &utils.HttpResult{Code: 401, Msg: "invalid token"})
			return
		}

		if _, err := r.dbc.AdminById(adminId); err != nil {
			if err == storage.ErrNotFound {
				c.AbortWithStatusJSON(http.StatusUnauthorized, &utils.HttpResult{Code: 401, Msg: "admin not found"})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, &utils.HttpResult{Code: 500, Msg: "server error"})
			return
		}

		c.Set("admin_id", adminId)
		c.Next()
	}
}
