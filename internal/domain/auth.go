package domain

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Права оператора
const (
	ScopePolicyRead  = "policy.read"  // статусы политик
	ScopePolicyWrite = "policy.write" // enable/disable, подписки, колбэки
	ScopeNotify      = "platform.notify"
	ScopeAdmin       = "admin"
)

var (
	ErrNoOperator   = errors.New("token does not name an operator")
	ErrNoScopes     = errors.New("token grants no scopes")
	ErrUnknownScope = errors.New("token grants an unknown scope")
)

var knownScopes = map[string]bool{
	ScopePolicyRead:  true,
	ScopePolicyWrite: true,
	ScopeNotify:      true,
	ScopeAdmin:       true,
}

type OperatorClaims struct {
	UserID string          `json:"user_id"`
	Scopes map[string]bool `json:"scopes"` // "admin": true или "policy.read": true
	jwt.RegisteredClaims
}

// HasScope — admin покрывает любое право.
func (c *OperatorClaims) HasScope(scope string) bool {
	if c == nil {
		return false
	}
	return c.Scopes[ScopeAdmin] || c.Scopes[scope]
}

// Validate вызывается jwt после проверки стандартных claims (exp, nbf).
// Токен без оператора или с неизвестным правом не принимается целиком.
func (c *OperatorClaims) Validate() error {
	if c.UserID == "" {
		return ErrNoOperator
	}
	granted := 0
	for scope, on := range c.Scopes {
		if !knownScopes[scope] {
			return fmt.Errorf("%w: %q", ErrUnknownScope, scope)
		}
		if on {
			granted++
		}
	}
	if granted == 0 {
		return ErrNoScopes
	}
	return nil
}
