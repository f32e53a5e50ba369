package compiler

import (
	"fmt"
	"sort"
)

// ---------------------------------------------------------------------------
// Dialect: the configurable parts of the BL language
// ---------------------------------------------------------------------------

// Dialect fixes the primitive instruction names and the surface syntax of
// IF and WHILE. A Dialect is immutable once built and safe to share.
type Dialect struct {
	primitives map[string]bool

	// Connectives selects the classic form "IF c THEN ... END IF" and
	// "WHILE c DO ... END WHILE". THEN and DO are keywords only when set.
	connectives bool
}

var (
	// DefaultDialect is the BugsWorld language: move, turnleft, turnright,
	// infect, skip.
	DefaultDialect = mustDialect([]string{"move", "turnleft", "turnright", "infect", "skip"}, false)

	// TurnbackDialect replaces infect with turnback.
	TurnbackDialect = mustDialect([]string{"move", "turnleft", "turnright", "turnback", "skip"}, false)
)

func mustDialect(primitives []string, connectives bool) *Dialect {
	d, err := NewDialect(primitives, connectives)
	if err != nil {
		panic(err)
	}
	return d
}

// NewDialect builds a dialect. Every primitive must be an identifier and must
// not collide with a keyword or condition name.
func NewDialect(primitives []string, connectives bool) (*Dialect, error) {
	d := &Dialect{
		primitives:  make(map[string]bool, len(primitives)),
		connectives: connectives,
	}
	for _, name := range primitives {
		if !IsIdentifier(name) {
			return nil, fmt.Errorf("primitive %q is not an identifier", name)
		}
		if d.isKeyword(name) {
			return nil, fmt.Errorf("primitive %q is a reserved word", name)
		}
		if _, ok := ParseCondition(name); ok {
			return nil, fmt.Errorf("primitive %q is a condition name", name)
		}
		d.primitives[name] = true
	}
	return d, nil
}

// Connectives reports whether IF and WHILE take THEN and DO.
func (d *Dialect) Connectives() bool {
	return d.connectives
}

// IsPrimitive reports whether name is a primitive instruction.
func (d *Dialect) IsPrimitive(name string) bool {
	return d.primitives[name]
}

// Primitives returns the primitive names in sorted order.
func (d *Dialect) Primitives() []string {
	names := make([]string, 0, len(d.primitives))
	for name := range d.primitives {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Keywords returns the reserved words of the dialect in sorted order.
func (d *Dialect) Keywords() []string {
	names := make([]string, 0, len(baseKeywords)+2)
	for kw := range baseKeywords {
		names = append(names, kw)
	}
	if d.connectives {
		names = append(names, KwThen, KwDo)
	}
	sort.Strings(names)
	return names
}

func (d *Dialect) isKeyword(s string) bool {
	if baseKeywords[s] {
		return true
	}
	return d.connectives && (s == KwThen || s == KwDo)
}

// Classify returns the kind of literal. Keywords win over conditions, which
// win over identifiers; anything else is an ERROR token.
func (d *Dialect) Classify(literal string) TokenKind {
	switch {
	case d.isKeyword(literal):
		return TokenKeyword
	case isConditionName(literal):
		return TokenCondition
	case IsIdentifier(literal):
		return TokenIdentifier
	default:
		return TokenError
	}
}
