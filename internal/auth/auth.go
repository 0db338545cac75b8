// Package auth checks session login credentials.
package auth

import (
	"crypto/subtle"
	"errors"
	"strings"
)

var ErrUnauthorized = errors.New("auth: invalid credentials")

// Validator decides whether a login name and password may open a session.
type Validator interface {
	Validate(loginName, password string) error
}

// Static accepts exactly one login. An empty LoginName accepts nobody.
type Static struct {
	LoginName string
	Password  string
}

func (s Static) Validate(loginName, password string) error {
	if s.LoginName == "" {
		return ErrUnauthorized
	}
	// Fields arrive space padded to their wire width.
	nameOK := subtle.ConstantTimeCompare([]byte(s.LoginName), []byte(strings.TrimRight(loginName, " ")))
	passOK := subtle.ConstantTimeCompare([]byte(s.Password), []byte(strings.TrimRight(password, " ")))
	if nameOK&passOK != 1 {
		return ErrUnauthorized
	}
	return nil
}

// FuncValidator adapts a function into a Validator.
type FuncValidator func(loginName, password string) error

func (f FuncValidator) Validate(loginName, password string) error {
	return f(loginName, password)
}
