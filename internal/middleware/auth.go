package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/TuanAnh-P/TuuShop/internal/model"
	"github.com/TuanAnh-P/TuuShop/internal/repository"
)

// TokenCookieName is the cookie carrying the session token.
const TokenCookieName = "jwt"

const userContextKey = "user"

// Protect verifies the session cookie and loads the identity into the
// request context. The password hash never travels past this point.
func Protect(secret string, users repository.UserRepository) gin.HandlerFunc {
	key := []byte(secret)
	return func(c *gin.Context) {
		tokenStr, err := c.Cookie(TokenCookieName)
		if err != nil || tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "not authorized, no token"})
			return
		}

		token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return key, nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "not authorized, token failed"})
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "not authorized, token failed"})
			return
		}

		sub, _ := claims["userId"].(string)
		userID, err := primitive.ObjectIDFromHex(sub)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "not authorized, token failed"})
			return
		}

		user, err := users.GetByID(c.Request.Context(), userID)
		if err != nil || user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "not authorized, token failed"})
			return
		}

		user.Password = ""
		c.Set(userContextKey, user)
		c.Next()
	}
}

// AdminOnly requires Protect to have run earlier in the chain.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := GetUser(c)
		if user == nil || !user.IsAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "not authorized as admin"})
			return
		}
		c.Next()
	}
}

func GetUser(c *gin.Context) *model.User {
	v, _ := c.Get(userContextKey)
	user, _ := v.(*model.User)
	return user
}
