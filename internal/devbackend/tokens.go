package devbackend

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dgrijalva/jwt-go"
)

var (
	errTokenInvalid = errors.New("token is invalid")
	errTokenExpired = errors.New("token has expired")
	errTokenRevoked = errors.New("token was revoked")
)

type tokenClaims struct {
	Role string `json:"role"`
	jwt.StandardClaims
}

// issuer signs and verifies HS256 bearer tokens and remembers revoked ids.
type issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
	newID  func() string

	mu      sync.Mutex
	revoked map[string]time.Time
}

func (i *issuer) issue(userID, role string) (string, time.Time, error) {
	issued := i.now().UTC()
	expires := issued.Add(i.ttl)
	claims := tokenClaims{
		Role: role,
		StandardClaims: jwt.StandardClaims{
			Id:        i.newID(),
			Subject:   userID,
			IssuedAt:  issued.Unix(),
			ExpiresAt: expires.Unix(),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expires, nil
}

func (i *issuer) verify(token string) (tokenClaims, error) {
	var claims tokenClaims
	parser := jwt.Parser{ValidMethods: []string{jwt.SigningMethodHS256.Alg()}, SkipClaimsValidation: true}
	if _, err := parser.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return i.secret, nil
	}); err != nil {
		return tokenClaims{}, fmt.Errorf("%w: %v", errTokenInvalid, err)
	}
	if claims.Subject == "" || claims.Id == "" {
		return tokenClaims{}, errTokenInvalid
	}
	if !claims.VerifyExpiresAt(i.now().Unix(), true) {
		return tokenClaims{}, errTokenExpired
	}

	i.mu.Lock()
	_, revoked := i.revoked[claims.Id]
	i.mu.Unlock()
	if revoked {
		return tokenClaims{}, errTokenRevoked
	}
	return claims, nil
}

// revoke forgets the token id until it would have expired anyway.
func (i *issuer) revoke(claims tokenClaims) {
	i.mu.Lock()
	defer i.mu.Unlock()
	now := i.now()
	for id, until := range i.revoked {
		if now.After(until) {
			delete(i.revoked, id)
		}
	}
	i.revoked[claims.Id] = time.Unix(claims.ExpiresAt, 0)
}
