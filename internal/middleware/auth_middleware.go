package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"hr-calendar/internal/domain"
	"hr-calendar/internal/shared/apperror"
	"hr-calendar/internal/shared/contextutil"
	"hr-calendar/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const principalKey = "principal"

var (
	ErrTokenNotFound = apperror.New(apperror.CodeUnauthorized, "Token not found", http.StatusUnauthorized)
	ErrInvalidToken  = apperror.New(apperror.CodeUnauthorized, "Invalid token", http.StatusUnauthorized)
	ErrTokenExpired  = apperror.New(apperror.CodeUnauthorized, "Token expired", http.StatusUnauthorized)
)

// TokenFromRequest looks for the access token in the Authorization header,
// then the access_token cookie, then the token query parameter. Browsers
// cannot set headers on websocket upgrades, hence the query fallback.
func TokenFromRequest(c *gin.Context) string {
	if tokenString, found := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer "); found && tokenString != "" {
		return tokenString
	}
	if cookie, err := c.Cookie("access_token"); err == nil && cookie != "" {
		return cookie
	}
	return c.Query("token")
}

// ParsePrincipal validates an HMAC-signed token and extracts the caller.
func ParsePrincipal(secret, tokenString string) (domain.Principal, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return domain.Principal{}, ErrTokenExpired
		}
		return domain.Principal{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return domain.Principal{}, ErrInvalidToken
	}

	userID, err := uuidClaim(claims, "user_id")
	if err != nil {
		return domain.Principal{}, err
	}
	companyID, err := uuidClaim(claims, "company_id")
	if err != nil {
		return domain.Principal{}, err
	}
	role, _ := claims["role"].(string)
	if !domain.ValidRole(role) {
		return domain.Principal{}, ErrInvalidToken
	}

	return domain.Principal{UserID: userID, CompanyID: companyID, Role: role}, nil
}

func uuidClaim(claims jwt.MapClaims, name string) (uuid.UUID, error) {
	raw, ok := claims[name].(string)
	if !ok || raw == "" {
		return uuid.Nil, ErrInvalidToken
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}
	return id, nil
}

func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := TokenFromRequest(c)
		if tokenString == "" {
			response.AbortError(c, ErrTokenNotFound.HTTPStatus, ErrTokenNotFound.Code, ErrTokenNotFound.Message)
			return
		}

		p, err := ParsePrincipal(secret, tokenString)
		if err != nil {
			httpErr := apperror.ToHTTP(err)
			response.AbortError(c, httpErr.Status, httpErr.Code, httpErr.Message)
			return
		}

		c.Set(principalKey, p)
		c.Set("user_id", p.UserID.String())
		c.Set("company_id", p.CompanyID.String())
		c.Set("role", p.Role)

		ctx := contextutil.WithPrincipal(c.Request.Context(), p)
		ctx = contextutil.WithUserID(ctx, p.UserID.String())
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// GetPrincipal returns the caller stored by AuthMiddleware.
func GetPrincipal(c *gin.Context) (domain.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return domain.Principal{}, false
	}
	p, ok := v.(domain.Principal)
	return p, ok
}

// SetPrincipal stores p the same way AuthMiddleware does.
func SetPrincipal(c *gin.Context, p domain.Principal) {
	c.Set(principalKey, p)
	c.Set("user_id", p.UserID.String())
	c.Set("company_id", p.CompanyID.String())
	c.Set("role", p.Role)
	c.Request = c.Request.WithContext(contextutil.WithPrincipal(c.Request.Context(), p))
}

func RoleMiddleware(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole := c.GetString("role")
		for _, role := range allowedRoles {
			if userRole == role {
				c.Next()
				return
			}
		}
		response.AbortError(c, apperror.ErrForbidden.HTTPStatus, apperror.ErrForbidden.Code, apperror.ErrForbidden.Message)
	}
}
