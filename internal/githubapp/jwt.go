package githubapp

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/majorcontext/ghapp/internal/pemkey"
)

const (
	// clockSkew backdates iat so a freshly issued JWT is already valid
	// on API servers whose clocks trail ours.
	clockSkew = 60 * time.Second

	// jwtLifetime is the maximum App JWT validity GitHub accepts.
	jwtLifetime = 10 * time.Minute
)

// signAppJWT builds the compact RS256 JWT GitHub requires for App
// authentication: iat backdated by clockSkew, exp at the 10 minute
// maximum, iss set to the App id.
func signAppJWT(appID, pemKey string, now time.Time) (string, error) {
	key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(pemKey))
	if err != nil {
		return "", invalidKey(pemKey, err)
	}

	claims := jwt.RegisteredClaims{
		IssuedAt:  jwt.NewNumericDate(now.Add(-clockSkew)),
		ExpiresAt: jwt.NewNumericDate(now.Add(jwtLifetime)),
		Issuer:    appID,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	if err != nil {
		return "", invalidKey(pemKey, err)
	}
	return signed, nil
}

// ValidateKey reports whether pemKey is a structurally valid RSA
// private key for App JWT signing. Returns *InvalidKeyError when not.
func ValidateKey(pemKey string) error {
	if _, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(pemKey)); err != nil {
		return invalidKey(pemKey, err)
	}
	return nil
}

func invalidKey(pemKey string, cause error) *InvalidKeyError {
	return &InvalidKeyError{
		KeyLength: len(pemKey),
		HasArmor:  strings.HasPrefix(pemKey, "-----BEGIN"),
		Format:    pemkey.Detect(pemKey),
		Cause:     cause,
	}
}
