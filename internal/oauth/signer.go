package oauth

import (
	"crypto/rsa"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"sentinelmind/internal/clock"
)

// AssertionLifetime is the validity window of a client assertion.
const AssertionLifetime = 300 * time.Second

// AssertionSigner builds RS256-signed JWT client assertions.
type AssertionSigner struct {
	clientID string
	keyID    string
	key      *rsa.PrivateKey
	clock    clock.Clock
	newID    func() string
}

// SignerOption configures an AssertionSigner.
type SignerOption func(*AssertionSigner)

// WithSignerClock sets the time source used for iat and exp.
func WithSignerClock(c clock.Clock) SignerOption {
	return func(s *AssertionSigner) {
		s.clock = c
	}
}

// WithAssertionIDFunc overrides the jti generator.
func WithAssertionIDFunc(fn func() string) SignerOption {
	return func(s *AssertionSigner) {
		s.newID = fn
	}
}

// NewAssertionSigner creates a signer for clientID using the RSA key
// registered under keyID.
func NewAssertionSigner(clientID, keyID string, key *rsa.PrivateKey, opts ...SignerOption) (*AssertionSigner, error) {
	if clientID == "" {
		return nil, fmt.Errorf("client id is required")
	}
	if keyID == "" {
		return nil, fmt.Errorf("key id is required")
	}
	if key == nil {
		return nil, fmt.Errorf("private key is required")
	}

	s := &AssertionSigner{
		clientID: clientID,
		keyID:    keyID,
		key:      key,
		clock:    clock.Real{},
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Sign returns a compact JWT with header {alg: RS256, typ: JWT, kid} and
// claims {iss, sub, aud, iat, exp, jti}, audience set to the token endpoint.
func (s *AssertionSigner) Sign(audience string) (string, error) {
	now := s.clock.Now()

	claims := jwt.MapClaims{
		"iss": s.clientID,
		"sub": s.clientID,
		"aud": audience,
		"iat": now.Unix(),
		"exp": now.Add(AssertionLifetime).Unix(),
		"jti": s.newID(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = s.keyID

	signed, err := token.SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign client assertion: %w", err)
	}
	return signed, nil
}

// LoadRSAPrivateKey reads a PEM encoded RSA private key (PKCS#1 or PKCS#8).
func LoadRSAPrivateKey(path string) (*rsa.PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read private key %s: %w", path, err)
	}

	key, err := jwt.ParseRSAPrivateKeyFromPEM(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key %s: %w", path, err)
	}
	return key, nil
}
