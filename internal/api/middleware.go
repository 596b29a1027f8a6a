package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/motogarage/motogarage-server/internal/apperr"
	"github.com/motogarage/motogarage-server/internal/models"
	"github.com/motogarage/motogarage-server/internal/service"
	"go.uber.org/zap"
)

// Context keys set by the middlewares below.
const (
	ctxUserID     = "userId"
	ctxExternalID = "externalId"
	ctxProvider   = "provider"
	ctxEmail      = "email"
)

// verifyToken checks the Bearer token issued by the identity provider and
// returns the external subject id and email claim. The provider signs HS256
// tokens with the shared secret injected into the gin context.
func verifyToken(c *gin.Context) (externalID, email string, err error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", "", errors.New("authentication required")
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", "", errors.New("invalid token format")
	}

	secret := c.MustGet("authSecret").([]byte)
	token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return "", "", errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", "", errors.New("invalid token claims")
	}

	externalID, ok = claims["sub"].(string)
	if !ok || externalID == "" {
		return "", "", errors.New("invalid subject in token")
	}

	email, _ = claims["email"].(string)
	return externalID, email, nil
}

func abortUnauthorized(c *gin.Context, message string) {
	c.JSON(http.StatusUnauthorized, models.ErrorResponse{
		Status:  "error",
		Code:    "UNAUTHORIZED",
		Message: message,
	})
	c.Abort()
}

// IdentityMiddleware only verifies the identity-provider token and exposes
// the external subject. Used by registration, where no internal user exists
// yet.
func IdentityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		externalID, email, err := verifyToken(c)
		if err != nil {
			abortUnauthorized(c, err.Error())
			return
		}

		c.Set(ctxExternalID, externalID)
		c.Set(ctxEmail, email)
		c.Set(ctxProvider, c.MustGet("authProvider").(string))
		c.Next()
	}
}

// AuthMiddleware verifies the token and resolves the external subject to the
// internal user id. Subjects without a completed registration get 403.
func AuthMiddleware(svc service.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		externalID, _, err := verifyToken(c)
		if err != nil {
			abortUnauthorized(c, err.Error())
			return
		}

		provider := c.MustGet("authProvider").(string)
		userID, err := svc.ResolveUser(c.Request.Context(), provider, externalID)
		if err != nil {
			if apperr.IsNotFound(err) {
				c.JSON(http.StatusForbidden, models.ErrorResponse{
					Status:  "error",
					Code:    "USER_NOT_REGISTERED",
					Message: "user registration is not completed",
				})
				c.Abort()
				return
			}
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Status:  "error",
				Code:    string(apperr.KindInternal),
				Message: "failed to resolve user",
			})
			c.Abort()
			return
		}

		c.Set(ctxUserID, userID)
		c.Next()
	}
}

// RequestLogger logs one line per request.
func RequestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}
