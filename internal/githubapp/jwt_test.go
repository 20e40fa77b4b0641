package githubapp

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/majorcontext/ghapp/internal/pemkey"
)

var (
	testKeyOnce sync.Once
	testKey     *rsa.PrivateKey
)

// testKeyPEM returns a PKCS#8 PEM encoding of a shared test RSA key.
func testKeyPEM(t *testing.T) string {
	t.Helper()
	testKeyOnce.Do(func() {
		key, err := rsa.GenerateKey(rand.Reader, 2048)
		if err != nil {
			panic(err)
		}
		testKey = key
	})

	der, err := x509.MarshalPKCS8PrivateKey(testKey)
	if err != nil {
		t.Fatalf("marshaling test key: %v", err)
	}
	return string(pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der}))
}

func TestSignAppJWT_Claims(t *testing.T) {
	keyPEM := testKeyPEM(t)
	now := time.Now().Truncate(time.Second)

	signed, err := signAppJWT("12345", keyPEM, now)
	if err != nil {
		t.Fatalf("signAppJWT: %v", err)
	}

	var claims jwt.RegisteredClaims
	parsed, err := jwt.ParseWithClaims(signed, &claims, func(token *jwt.Token) (any, error) {
		return &testKey.PublicKey, nil
	}, jwt.WithValidMethods([]string{"RS256"}))
	if err != nil {
		t.Fatalf("parsing signed JWT: %v", err)
	}
	if !parsed.Valid {
		t.Fatal("JWT did not verify against the signing key")
	}

	if claims.Issuer != "12345" {
		t.Errorf("iss = %q, want %q", claims.Issuer, "12345")
	}
	if got, want := claims.IssuedAt.Time, now.Add(-60*time.Second); !got.Equal(want) {
		t.Errorf("iat = %v, want %v", got, want)
	}
	if got, want := claims.ExpiresAt.Time, now.Add(10*time.Minute); !got.Equal(want) {
		t.Errorf("exp = %v, want %v", got, want)
	}
}

func TestSignAppJWT_InvalidKey(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name string
		key  string
	}{
		{"empty string", ""},
		{"not pem", "this is not a key"},
		{"garbage in valid armor", string(pem.EncodeToMemory(&pem.Block{
			Type:  "PRIVATE KEY",
			Bytes: []byte("random bytes that are not a key"),
		}))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := signAppJWT("12345", tt.key, now)
			if err == nil {
				t.Fatal("expected an error")
			}

			var invalid *InvalidKeyError
			if !errors.As(err, &invalid) {
				t.Fatalf("error type = %T, want *InvalidKeyError", err)
			}
			if invalid.KeyLength != len(tt.key) {
				t.Errorf("KeyLength = %d, want %d", invalid.KeyLength, len(tt.key))
			}
			if invalid.Cause == nil {
				t.Error("Cause should carry the underlying parse error")
			}
		})
	}
}

func TestSignAppJWT_InvalidKeyContext(t *testing.T) {
	armored := string(pem.EncodeToMemory(&pem.Block{
		Type:  "PRIVATE KEY",
		Bytes: []byte("random bytes that are not a key"),
	}))

	_, err := signAppJWT("12345", armored, time.Now())
	var invalid *InvalidKeyError
	if !errors.As(err, &invalid) {
		t.Fatalf("error type = %T, want *InvalidKeyError", err)
	}
	if !invalid.HasArmor {
		t.Error("HasArmor = false, want true for armored input")
	}
	if invalid.Format != pemkey.FormatPKCS8 {
		t.Errorf("Format = %q, want %q", invalid.Format, pemkey.FormatPKCS8)
	}
}

func TestValidateKey(t *testing.T) {
	if err := ValidateKey(testKeyPEM(t)); err != nil {
		t.Errorf("ValidateKey(valid key) = %v, want nil", err)
	}

	err := ValidateKey("nope")
	var invalid *InvalidKeyError
	if !errors.As(err, &invalid) {
		t.Errorf("ValidateKey(garbage) error type = %T, want *InvalidKeyError", err)
	}
}
