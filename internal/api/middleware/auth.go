package middleware

import (
	"crypto/rsa"
	"crypto/subtle"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/nextup-labs/nxt-ledger/internal/api/shared/constants"
	apierrors "github.com/nextup-labs/nxt-ledger/internal/api/shared/errors"
	"github.com/nextup-labs/nxt-ledger/internal/domain"
	"github.com/nextup-labs/nxt-ledger/internal/logger"
)

type contextKey string

const (
	AUTH_SCHEME_KEY contextKey = "auth_scheme"
	CALLER_KEY      contextKey = "caller"
)

const (
	SCHEME_JWT    = "jwt"
	SCHEME_APIKEY = "apikey"

	jwtLeeway = 30 * time.Second
)

// AuthConfig holds authentication configuration
type AuthConfig struct {
	JWTPublicKey string // RSA public key in PEM format
	APIKeys      []string
}

// credentials is a verified Authorization header
type credentials struct {
	scheme  string
	subject string
}

// verifier checks Authorization headers against keys prepared once at startup
type verifier struct {
	publicKey *rsa.PublicKey
	keyErr    error
	apiKeys   [][]byte
	parser    *jwt.Parser
}

func newVerifier(cfg AuthConfig) *verifier {
	v := &verifier{
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{"RS256", "RS384", "RS512"}),
			jwt.WithLeeway(jwtLeeway),
		),
	}

	if cfg.JWTPublicKey != "" {
		v.publicKey, v.keyErr = parseRSAPublicKey(cfg.JWTPublicKey)
		if v.keyErr != nil {
			logger.Error(fmt.Errorf("failed to parse JWT public key: %w", v.keyErr))
		}
	}

	for _, key := range cfg.APIKeys {
		if key != "" {
			v.apiKeys = append(v.apiKeys, []byte(key))
		}
	}

	return v
}

func (v *verifier) verify(authHeader string) (credentials, error) {
	if authHeader == "" {
		return credentials{}, errors.New("missing Authorization header")
	}

	scheme, token, ok := strings.Cut(authHeader, " ")
	if !ok || token == "" {
		return credentials{}, errors.New("invalid Authorization header format")
	}

	switch strings.ToLower(scheme) {
	case "bearer":
		subject, err := v.verifyJWT(token)
		if err != nil {
			return credentials{}, err
		}
		return credentials{scheme: SCHEME_JWT, subject: subject}, nil
	case "apikey":
		if err := v.verifyAPIKey(token); err != nil {
			return credentials{}, err
		}
		return credentials{scheme: SCHEME_APIKEY}, nil
	default:
		return credentials{}, fmt.Errorf("unsupported authorization type: %s", scheme)
	}
}

// verifyJWT checks the signature and time claims and returns the subject
func (v *verifier) verifyJWT(token string) (string, error) {
	if v.publicKey == nil {
		if v.keyErr != nil {
			return "", errors.New("JWT public key is invalid")
		}
		return "", errors.New("JWT public key not configured")
	}

	claims := &jwt.RegisteredClaims{}
	if _, err := v.parser.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return v.publicKey, nil
	}); err != nil {
		return "", fmt.Errorf("failed to parse token: %w", err)
	}

	return claims.Subject, nil
}

func (v *verifier) verifyAPIKey(key string) error {
	if len(v.apiKeys) == 0 {
		return errors.New("no API keys configured")
	}
	for _, valid := range v.apiKeys {
		if subtle.ConstantTimeCompare(valid, []byte(key)) == 1 {
			return nil
		}
	}
	return errors.New("invalid API key")
}

// Auth returns a gin middleware that authenticates the request and resolves the ledger caller.
// The caller is the JWT subject, or for API keys the address in the caller header.
func Auth(cfg AuthConfig) gin.HandlerFunc {
	v := newVerifier(cfg)

	return func(c *gin.Context) {
		ctx := c.Request.Context()

		creds, err := v.verify(c.GetHeader("Authorization"))
		if err != nil {
			logger.WarnCtx(ctx, "Authentication failed",
				zap.Error(err),
				zap.String("path", c.Request.URL.Path),
				zap.String("client_ip", c.ClientIP()),
			)
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierrors.NewUnauthorizedError("Authentication failed", err.Error()))
			return
		}

		caller, err := resolveCaller(creds, c.GetHeader(constants.CALLER_HEADER))
		if err != nil {
			logger.WarnCtx(ctx, "Caller resolution failed",
				zap.Error(err),
				zap.String("auth_scheme", creds.scheme),
				zap.String("path", c.Request.URL.Path),
			)
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierrors.NewUnauthorizedError("Caller could not be resolved", err.Error()))
			return
		}

		c.Set(AUTH_SCHEME_KEY, creds.scheme)
		c.Set(CALLER_KEY, caller)

		logger.DebugCtx(ctx, "Authenticated",
			zap.String("auth_scheme", creds.scheme),
			zap.String("caller", caller.Hex()),
		)

		c.Next()
	}
}

// Caller returns the ledger caller resolved by Auth
func Caller(c *gin.Context) (common.Address, bool) {
	v, ok := c.Get(CALLER_KEY)
	if !ok {
		return common.Address{}, false
	}
	addr, ok := v.(common.Address)
	return addr, ok
}

// resolveCaller maps verified credentials to the address that submits ledger transactions.
// API key clients are trusted relayers and name the caller explicitly.
func resolveCaller(creds credentials, callerHeader string) (common.Address, error) {
	switch creds.scheme {
	case SCHEME_JWT:
		if creds.subject == "" {
			return common.Address{}, errors.New("token has no subject")
		}
		addr, err := domain.ParseAddress(creds.subject)
		if err != nil {
			return common.Address{}, fmt.Errorf("token subject is not an address: %w", err)
		}
		return addr, nil
	case SCHEME_APIKEY:
		if callerHeader == "" {
			return common.Address{}, fmt.Errorf("missing %s header", constants.CALLER_HEADER)
		}
		addr, err := domain.ParseAddress(callerHeader)
		if err != nil {
			return common.Address{}, fmt.Errorf("invalid %s header: %w", constants.CALLER_HEADER, err)
		}
		return addr, nil
	default:
		return common.Address{}, fmt.Errorf("unsupported authorization type: %s", creds.scheme)
	}
}

// parseRSAPublicKey accepts PKIX or PKCS1 PEM
func parseRSAPublicKey(publicKeyPEM string) (*rsa.PublicKey, error) {
	block, _ := pem.Decode([]byte(publicKeyPEM))
	if block == nil {
		return nil, errors.New("failed to parse PEM block containing public key")
	}

	pub, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return x509.ParsePKCS1PublicKey(block.Bytes)
	}

	rsaKey, ok := pub.(*rsa.PublicKey)
	if !ok {
		return nil, errors.New("public key is not an RSA key")
	}

	return rsaKey, nil
}
