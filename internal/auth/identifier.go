package auth

import (
	"strings"

	"ctchen222/Task-Tracker/internal/validator"
)

// IdentifierKind tells which user field a login identifier refers to.
type IdentifierKind int

const (
	IdentifierUsername IdentifierKind = iota
	IdentifierEmail
)

func (k IdentifierKind) String() string {
	if k == IdentifierEmail {
		return "email"
	}
	return "username"
}

// ClassifyIdentifier decides whether identifier is an email address or a username.
// Anything that is not a syntactically valid email is a username.
func ClassifyIdentifier(identifier string) IdentifierKind {
	if strings.TrimSpace(identifier) == "" {
		return IdentifierUsername
	}
	if err := validator.GetValidator().Var(identifier, "email"); err != nil {
		return IdentifierUsername
	}
	return IdentifierEmail
}
