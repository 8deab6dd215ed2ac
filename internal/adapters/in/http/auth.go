package http

import (
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"fleet/internal/core/domain/model/kernel"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// Capability is a permission carried in the access token.
type Capability string

const (
	CapabilityReadRoutes      Capability = "routes:read"
	CapabilityManageRoutes    Capability = "routes:manage"
	CapabilityDriveRoutes     Capability = "routes:drive"
	CapabilityReportIncidents Capability = "incidents:report"
)

const callerContextKey = "caller"

var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid token")
)

// Claims is the token payload. Tokens are issued by the identity service; this
// service only verifies them.
type Claims struct {
	DriverID     string   `json:"driver_id,omitempty"`
	Capabilities []string `json:"caps"`
	jwt.RegisteredClaims
}

// Caller is the authenticated principal of a request.
type Caller struct {
	Subject      string
	DriverID     *kernel.UUID
	Capabilities []Capability
}

func (c Caller) Can(capability Capability) bool {
	return slices.Contains(c.Capabilities, capability)
}

// Authenticator verifies HMAC signed bearer tokens.
type Authenticator struct {
	secret []byte
	parser *jwt.Parser
}

func NewAuthenticator(secret []byte) *Authenticator {
	return &Authenticator{
		secret: secret,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{
				jwt.SigningMethodHS256.Alg(),
				jwt.SigningMethodHS384.Alg(),
				jwt.SigningMethodHS512.Alg(),
			}),
			jwt.WithExpirationRequired(),
		),
	}
}

// Issue signs a token for caller. The HTTP API never issues tokens; this is
// used by tooling and tests.
func (a *Authenticator) Issue(caller Caller, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Capabilities: make([]string, 0, len(caller.Capabilities)),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   caller.Subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	if caller.DriverID != nil {
		claims.DriverID = caller.DriverID.String()
	}
	for _, capability := range caller.Capabilities {
		claims.Capabilities = append(claims.Capabilities, string(capability))
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// Parse verifies the token and extracts the caller.
func (a *Authenticator) Parse(tokenString string) (Caller, error) {
	claims := &Claims{}
	_, err := a.parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	})
	if err != nil {
		return Caller{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	caller := Caller{Subject: claims.Subject}
	if claims.DriverID != "" {
		driverID, err := kernel.UUIDFromString(claims.DriverID)
		if err != nil {
			return Caller{}, fmt.Errorf("%w: driver_id: %w", ErrInvalidToken, err)
		}
		caller.DriverID = &driverID
	}
	for _, capability := range claims.Capabilities {
		caller.Capabilities = append(caller.Capabilities, Capability(capability))
	}
	return caller, nil
}

// Middleware rejects requests without a valid bearer token and stores the
// caller in the echo context.
func (a *Authenticator) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			header := ctx.Request().Header.Get(echo.HeaderAuthorization)
			tokenString, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || tokenString == "" {
				return ctx.JSON(http.StatusUnauthorized, Error{
					Code:    http.StatusUnauthorized,
					Kind:    KindUnauthorized,
					Message: ErrMissingToken.Error(),
				})
			}

			caller, err := a.Parse(tokenString)
			if err != nil {
				return ctx.JSON(http.StatusUnauthorized, Error{
					Code:    http.StatusUnauthorized,
					Kind:    KindUnauthorized,
					Message: ErrInvalidToken.Error(),
				})
			}

			ctx.Set(callerContextKey, caller)
			return next(ctx)
		}
	}
}

// Require allows the request only when the caller holds capability.
func Require(capability Capability) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			if !callerFrom(ctx).Can(capability) {
				return forbidden(ctx, fmt.Sprintf("capability %q is required", capability))
			}
			return next(ctx)
		}
	}
}

func callerFrom(ctx echo.Context) Caller {
	caller, _ := ctx.Get(callerContextKey).(Caller)
	return caller
}
