// Package auth provides support for issuing and validating the tokens handed
// out after a successful registration or login.
package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"slices"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v4"
)

// Claims represents the authorization claims. The subject is the person's
// email, the only identity the directory knows.
type Claims struct {
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

// Keystore represents the set of behaviours required by the auth package to
// look up private and public keys.
type Keystore interface {
	PrivateKey(kid string) (string, error)
	PublicKey(kid string) (string, error)
}

// Auth represents the set of APIs used for token issuance and validation.
type Auth struct {
	keystore Keystore
}

// New creates an auth instance with the provided keystore.
func New(ks Keystore) *Auth {
	return &Auth{
		keystore: ks,
	}
}

// GenerateToken generates a jwt token with the given claims, signed with the
// key behind kid.
func (a *Auth) GenerateToken(kid string, claims Claims) (string, error) {
	method := jwt.GetSigningMethod(jwt.SigningMethodRS256.Name)

	tkn := jwt.NewWithClaims(method, claims)
	tkn.Header["kid"] = kid

	privatePEM, err := a.keystore.PrivateKey(kid)
	if err != nil {
		return "", fmt.Errorf("fetching private key: %w", err)
	}

	pemBlock, _ := pem.Decode([]byte(privatePEM))
	if pemBlock == nil || pemBlock.Type != "PRIVATE KEY" {
		return "", errors.New("failed to decode private key into pem block")
	}

	//PKCS8 so other key types stay possible
	privateKey, err := x509.ParsePKCS8PrivateKey(pemBlock.Bytes)
	if err != nil {
		return "", fmt.Errorf("parse private key: %w", err)
	}

	rsaPrivateKey, ok := privateKey.(*rsa.PrivateKey)
	if !ok {
		return "", errors.New("invalid key algorithm")
	}

	tokenString, err := tkn.SignedString(rsaPrivateKey)
	if err != nil {
		return "", fmt.Errorf("signed string: %w", err)
	}
	return tokenString, nil
}

// ValidateToken validates a jwt bearer token and returns the claims inside
// on success.
func (a *Auth) ValidateToken(bearerToken string) (Claims, error) {
	prefix := "Bearer "

	if !strings.HasPrefix(bearerToken, prefix) {
		return Claims{}, errors.New("invalid authorization header format: Bearer <token>")
	}

	tknString := bearerToken[len(prefix):]

	keyFn := func(t *jwt.Token) (interface{}, error) {
		key, ok := t.Header["kid"]
		if !ok {
			return nil, errors.New("kid (key id) not found in token header")
		}

		kid, ok := key.(string)
		if !ok {
			return nil, errors.New("kid (key id) malformed")
		}

		publicPEM, err := a.keystore.PublicKey(kid)
		if err != nil {
			return nil, fmt.Errorf("fetching public key: %w", err)
		}

		pemBlock, _ := pem.Decode([]byte(publicPEM))
		if pemBlock == nil || pemBlock.Type != "PUBLIC KEY" {
			return nil, errors.New("failed to decode public key into pem block")
		}

		publicKey, err := x509.ParsePKIXPublicKey(pemBlock.Bytes)
		if err != nil {
			return nil, fmt.Errorf("parse public key: %w", err)
		}

		return publicKey, nil
	}

	var claims Claims
	tkn, err := jwt.ParseWithClaims(tknString, &claims, keyFn)
	if err != nil {
		return Claims{}, fmt.Errorf("parse with claims: %w", err)
	}

	if !tkn.Valid {
		return Claims{}, errors.New("invalid token")
	}

	return claims, nil
}

// Authorized returns nil when the claims carry one of the allowed roles.
func (a *Auth) Authorized(claims Claims, roles []string) error {
	for _, have := range claims.Roles {
		if slices.Contains(roles, have) {
			return nil
		}
	}
	return errors.New("not authorized")
}

type mockKeyStore struct {
	privateKey string
	publicKey  string
}

// NewMockKeyStore generates a throwaway key pair for tests.
func NewMockKeyStore(t *testing.T) mockKeyStore {
	private, public := generateKeys(t)
	return mockKeyStore{
		privateKey: private,
		publicKey:  public,
	}
}

func (m mockKeyStore) PrivateKey(kid string) (string, error) {
	return m.privateKey, nil
}

func (m mockKeyStore) PublicKey(kid string) (string, error) {
	return m.publicKey, nil
}

func generateKeys(t *testing.T) (string, string) {
	private, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("expected to generate random private key: %s", err)
	}

	pkcs8Private, err := x509.MarshalPKCS8PrivateKey(private)
	if err != nil {
		t.Fatalf("expected to marshal key into pkcs8 format: %s", err)
	}

	privatePemBlock := pem.Block{
		Type:  "PRIVATE KEY",
		Bytes: pkcs8Private,
	}

	var privatePEM strings.Builder
	if err := pem.Encode(&privatePEM, &privatePemBlock); err != nil {
		t.Fatalf("expected to encode into privatePEM: %s", err)
	}

	publicBytes, err := x509.MarshalPKIXPublicKey(&private.PublicKey)
	if err != nil {
		t.Fatalf("expected to marshal public key into PKIX format: %s", err)
	}

	publicPemBlock := pem.Block{
		Type:  "PUBLIC KEY",
		Bytes: publicBytes,
	}

	var publicPEM strings.Builder
	if err := pem.Encode(&publicPEM, &publicPemBlock); err != nil {
		t.Fatalf("expected to encode into publicPEM: %s", err)
	}

	return privatePEM.String(), publicPEM.String()
}
