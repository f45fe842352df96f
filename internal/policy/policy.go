// Package policy evaluates per-organization password-composition rules
// before a Login item may be shared or updated.
package policy

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/nbutton23/zxcvbn-go"
)

// PasswordPolicy mirrors the policy document fetched per organization.
// Zero values disable the corresponding rule.
type PasswordPolicy struct {
	MinLength        int  `json:"min_length"`
	MaxLength        int  `json:"max_length"`
	RequireLowercase bool `json:"require_lowercase"`
	RequireUppercase bool `json:"require_uppercase"`
	RequireDigit     bool `json:"require_digit"`
	RequireSpecial   bool `json:"require_special"`
	AvoidAmbiguous   bool `json:"avoid_ambiguous"`
	MinScore         int  `json:"min_score"` // zxcvbn score 0-4
}

// Violation names one violated rule. Share operations surface the complete
// list, never just the first hit.
type Violation struct {
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

var (
	reLower = regexp.MustCompile(`[a-z]`)
	reUpper = regexp.MustCompile(`[A-Z]`)
	reDigit = regexp.MustCompile(`[0-9]`)
	reSym   = regexp.MustCompile(`[^A-Za-z0-9]`)
)

// Characters that read alike in common fonts.
const ambiguous = "lI1O0"

// Evaluate checks password against every rule of p and returns all
// violations. An empty result means the password passes.
func (p PasswordPolicy) Evaluate(password string) []Violation {
	var out []Violation
	add := func(rule, msg string) { out = append(out, Violation{Rule: rule, Message: msg}) }

	if p.MinLength > 0 && len(password) < p.MinLength {
		add("min_length", fmt.Sprintf("password must be at least %d characters", p.MinLength))
	}
	if p.MaxLength > 0 && len(password) > p.MaxLength {
		add("max_length", fmt.Sprintf("password must be at most %d characters", p.MaxLength))
	}
	if p.RequireLowercase && !reLower.MatchString(password) {
		add("require_lowercase", "password must include a lowercase letter")
	}
	if p.RequireUppercase && !reUpper.MatchString(password) {
		add("require_uppercase", "password must include an uppercase letter")
	}
	if p.RequireDigit && !reDigit.MatchString(password) {
		add("require_digit", "password must include a digit")
	}
	if p.RequireSpecial && !reSym.MatchString(password) {
		add("require_special", "password must include a special character")
	}
	if p.AvoidAmbiguous && strings.ContainsAny(password, ambiguous) {
		add("avoid_ambiguous", "password must not contain ambiguous characters (lI1O0)")
	}
	if p.MinScore > 0 {
		if score := zxcvbn.PasswordStrength(password, nil).Score; score < p.MinScore {
			add("min_score", fmt.Sprintf("password strength %d is below the required %d", score, p.MinScore))
		}
	}
	return out
}
