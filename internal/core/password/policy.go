// Package password evaluates password strength for registration.
//
// The hard gate (MeetsMinimum) and the advisory score are separate: a
// password can score "strong" and still be rejected for its length.
package password

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/aquario/identity-service/internal/core/domain"
)

const (
	MinLength = 8
	MaxLength = 128
)

// Reasons reported when a rule is not met.
const (
	ReasonLength    = "length"
	ReasonLowercase = "lowercase"
	ReasonUppercase = "uppercase"
	ReasonDigit     = "digit"
)

// Strength is the advisory label derived from the score.
type Strength string

const (
	StrengthWeak       Strength = "weak"
	StrengthMedium     Strength = "medium"
	StrengthStrong     Strength = "strong"
	StrengthVeryStrong Strength = "very strong"
)

// Result is the outcome of evaluating one password.
type Result struct {
	MeetsMinimum bool
	Score        int
	Strength     Strength
	Reasons      []string
}

// Policy holds the server-side password rules.
type Policy struct {
	requireComposition bool
}

// NewPolicy returns a Policy. With requireComposition the presence of a
// lowercase letter, an uppercase letter and a digit becomes a hard
// requirement in addition to the length bounds.
func NewPolicy(requireComposition bool) Policy {
	return Policy{requireComposition: requireComposition}
}

// Evaluate checks pw against the policy and scores it.
func (p Policy) Evaluate(pw string) Result {
	var lower, upper, digit, symbol bool
	for _, r := range pw {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		case !unicode.IsLetter(r):
			symbol = true
		}
	}

	n := utf8.RuneCountInString(pw)
	res := Result{MeetsMinimum: true}

	if n < MinLength || n > MaxLength {
		res.MeetsMinimum = false
		res.Reasons = append(res.Reasons, ReasonLength)
	}
	if p.requireComposition {
		for _, rule := range []struct {
			ok     bool
			reason string
		}{
			{lower, ReasonLowercase},
			{upper, ReasonUppercase},
			{digit, ReasonDigit},
		} {
			if !rule.ok {
				res.MeetsMinimum = false
				res.Reasons = append(res.Reasons, rule.reason)
			}
		}
	}

	// Too-short passwords score zero regardless of composition.
	if n >= MinLength {
		for _, ok := range []bool{true, lower, upper, digit, symbol} {
			if ok {
				res.Score++
			}
		}
	}
	res.Strength = strengthFor(res.Score)

	return res
}

// Validate evaluates pw and reports every failed rule as an issue on field.
func (p Policy) Validate(field, pw string) error {
	res := p.Evaluate(pw)
	if res.MeetsMinimum {
		return nil
	}
	verr := &domain.ValidationError{}
	for _, reason := range res.Reasons {
		verr.Add(field, Message(field, reason))
	}
	return verr
}

// Message renders a failed rule for the caller.
func Message(field, reason string) string {
	switch reason {
	case ReasonLength:
		return fmt.Sprintf("%s must be between %d and %d characters", field, MinLength, MaxLength)
	case ReasonLowercase:
		return field + " must contain a lowercase letter"
	case ReasonUppercase:
		return field + " must contain an uppercase letter"
	case ReasonDigit:
		return field + " must contain a digit"
	default:
		return field + " is too weak"
	}
}

func strengthFor(score int) Strength {
	switch {
	case score >= 5:
		return StrengthVeryStrong
	case score == 4:
		return StrengthStrong
	case score == 3:
		return StrengthMedium
	default:
		return StrengthWeak
	}
}
