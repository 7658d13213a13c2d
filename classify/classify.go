package classify

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Errors returned by the parsers.
var (
	ErrInvalidType    = errors.New("classify: invalid spectral type")
	ErrInvalidGravity = errors.New("classify: invalid gravity code")
)

// SpectralType is an ordered spectral subclass.
type SpectralType int

// Spectral subclasses in temperature order.
const (
	M7 SpectralType = iota
	M8
	M9
	L0
	L1
	L2
	L3
	L4
	L5
	L6
	L7
	L8
	L9
	T0
	T1
	T2
	T3
	T4
	T5
	T6
	T7
	T8
)

var typeClasses = []struct {
	letter byte
	first  int
	base   SpectralType
	count  int
}{
	{'M', 7, M7, 3},
	{'L', 0, L0, 10},
	{'T', 0, T0, 9},
}

func (t SpectralType) String() string {
	for _, c := range typeClasses {
		if t >= c.base && int(t-c.base) < c.count {
			return string(c.letter) + strconv.Itoa(c.first+int(t-c.base))
		}
	}
	return fmt.Sprintf("SpectralType(%d)", int(t))
}

// Valid reports whether t is a known subclass.
func (t SpectralType) Valid() bool { return t >= M7 && t <= T8 }

// TemplateTypes returns the subclasses templates are built for, L0 through L9.
func TemplateTypes() []SpectralType {
	out := make([]SpectralType, 0, 10)
	for t := L0; t <= L9; t++ {
		out = append(out, t)
	}
	return out
}

// ParseType parses a bare subclass such as "L3".
func ParseType(s string) (SpectralType, error) {
	t, _, err := ParseSpectralType(s)
	return t, err
}

// Gravity is a surface-gravity class. Unspecified selects every class when
// used as a request.
type Gravity int

// Gravity classes.
const (
	Unspecified Gravity = iota
	Field
	Beta
	Gamma
	Young
)

var gravityNames = [...]string{"unspecified", "field", "beta", "gamma", "young"}

var gravityCodes = [...]string{"", "f", "b", "g", "y"}

func (g Gravity) String() string {
	if g < 0 || int(g) >= len(gravityNames) {
		return fmt.Sprintf("Gravity(%d)", int(g))
	}
	return gravityNames[g]
}

// Code returns the one-letter code used in file names: f, b, g, y, or the
// empty string for Unspecified.
func (g Gravity) Code() string {
	if g < 0 || int(g) >= len(gravityCodes) {
		return ""
	}
	return gravityCodes[g]
}

// ParseGravityCode parses a one-letter gravity code, case-insensitively.
// The empty string yields Unspecified.
func ParseGravityCode(code string) (Gravity, error) {
	c := strings.ToLower(strings.TrimSpace(code))
	for g, gc := range gravityCodes {
		if c == gc {
			return Gravity(g), nil
		}
	}
	for g, name := range gravityNames {
		if c == name {
			return Gravity(g), nil
		}
	}
	return Unspecified, fmt.Errorf("%w: %q", ErrInvalidGravity, code)
}

// Key identifies a template: spectral subclass and gravity class.
type Key struct {
	Type    SpectralType
	Gravity Gravity
}

func (k Key) String() string {
	if k.Gravity == Unspecified {
		return k.Type.String()
	}
	return k.Type.String() + "_" + k.Gravity.Code()
}

// ParseSpectralType parses catalog type text such as "L3", "L3.5", "L4γ" or
// "L1.5β:". Half subclasses round down. The gravity is Gamma or Beta when the
// text ends in γ or β, otherwise Field.
func ParseSpectralType(text string) (SpectralType, Gravity, error) {
	s := strings.TrimSpace(text)
	if len(s) < 2 {
		return 0, Unspecified, fmt.Errorf("%w: %q", ErrInvalidType, text)
	}

	grav := Field
	// Trailing ':' and '?' mark uncertain types.
	if r, _ := utf8.DecodeLastRuneInString(strings.TrimRight(s, ":?")); r == 'γ' {
		grav = Gamma
	} else if r == 'β' {
		grav = Beta
	}

	letter := byte(unicode.ToUpper(rune(s[0])))
	digit := s[1]
	if digit < '0' || digit > '9' {
		return 0, Unspecified, fmt.Errorf("%w: %q", ErrInvalidType, text)
	}

	for _, c := range typeClasses {
		if c.letter != letter {
			continue
		}
		sub := int(digit-'0') - c.first
		if sub < 0 || sub >= c.count {
			break
		}
		return c.base + SpectralType(sub), grav, nil
	}

	return 0, Unspecified, fmt.Errorf("%w: %q", ErrInvalidType, text)
}
