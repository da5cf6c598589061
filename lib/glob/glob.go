package glob

import "fmt"

// --------------------------------------------------------------------------
// Pattern Type
// --------------------------------------------------------------------------

// tokenType describes one element of a compiled pattern
type tokenType int

const (
	tokenLiteral tokenType = iota // a single literal byte
	tokenAny                     // '?' - exactly one byte
	tokenStar                    // '*' - any run of bytes
	tokenClass                   // '[...]' - one byte out of a class
)

// token is one compiled pattern element
type token struct {
	typ     tokenType
	literal byte      // for tokenLiteral
	class   [256]bool // for tokenClass: class[b] == true means b matches
}

// Pattern is a compiled glob pattern. The zero value matches nothing;
// use Compile to create a valid Pattern.
type Pattern struct {
	tokens []token
	source string
}

// String returns the pattern source text.
func (p *Pattern) String() string {
	return p.source
}

// --------------------------------------------------------------------------
// Compilation
// --------------------------------------------------------------------------

// Compile parses a glob pattern into a Pattern. It returns an error for
// malformed patterns, currently only an unterminated character class.
func Compile(pattern string) (*Pattern, error) {
	tokens := make([]token, 0, len(pattern))

	for i := 0; i < len(pattern); i++ {
		switch c := pattern[i]; c {
		case '*':
			// collapse runs of stars, they are equivalent to a single one
			if len(tokens) > 0 && tokens[len(tokens)-1].typ == tokenStar {
				continue
			}
			tokens = append(tokens, token{typ: tokenStar})
		case '?':
			tokens = append(tokens, token{typ: tokenAny})
		case '[':
			tok, rest, err := compileClass(pattern[i+1:])
			if err != nil {
				return nil, fmt.Errorf("glob: %w in pattern %q", err, pattern)
			}
			tokens = append(tokens, tok)
			i = len(pattern) - len(rest) - 1
		case '\\':
			if i+1 < len(pattern) {
				i++
				tokens = append(tokens, token{typ: tokenLiteral, literal: pattern[i]})
			} else {
				// trailing backslash matches itself, mirroring Redis
				tokens = append(tokens, token{typ: tokenLiteral, literal: '\\'})
			}
		default:
			tokens = append(tokens, token{typ: tokenLiteral, literal: c})
		}
	}

	return &Pattern{tokens: tokens, source: pattern}, nil
}

// MustCompile is like Compile but panics on malformed patterns.
// It is intended for patterns known to be valid at compile time.
func MustCompile(pattern string) *Pattern {
	p, err := Compile(pattern)
	if err != nil {
		panic(err)
	}
	return p
}

// compileClass parses the remainder of a '[...]' class (the leading '['
// is already consumed) and returns the class token and the unparsed rest.
func compileClass(s string) (token, string, error) {
	tok := token{typ: tokenClass}

	i := 0
	negate := false
	if i < len(s) && s[i] == '^' {
		negate = true
		i++
	}

	closed := false
	for i < len(s) {
		c := s[i]
		if c == ']' {
			closed = true
			i++
			break
		}

		if c == '\\' && i+1 < len(s) {
			i++
			c = s[i]
		}

		// range like a-z, but a trailing '-' is a literal
		if i+2 < len(s) && s[i+1] == '-' && s[i+2] != ']' {
			lo, hi := c, s[i+2]
			if lo > hi {
				lo, hi = hi, lo
			}
			for b := int(lo); b <= int(hi); b++ {
				tok.class[b] = true
			}
			i += 3
			continue
		}

		tok.class[c] = true
		i++
	}

	if !closed {
		return token{}, "", fmt.Errorf("unterminated character class")
	}

	if negate {
		for b := 0; b < 256; b++ {
			tok.class[b] = !tok.class[b]
		}
	}

	return tok, s[i:], nil
}

// --------------------------------------------------------------------------
// Matching
// --------------------------------------------------------------------------

// Match reports whether the whole key matches the whole pattern.
// It is a pure function with no side effects and safe for concurrent use.
func (p *Pattern) Match(key string) bool {
	return match(p.tokens, key)
}

// match implements anchored matching with backtracking over '*' tokens.
// The classic two-pointer formulation keeps the common case (no stars)
// strictly linear and avoids recursion on the hot path.
func match(tokens []token, key string) bool {
	var (
		ti, ki         = 0, 0
		starTi, starKi = -1, 0
	)

	for ki < len(key) {
		if ti < len(tokens) {
			switch tok := tokens[ti]; tok.typ {
			case tokenStar:
				// remember the star position, try to match it empty first
				starTi, starKi = ti, ki
				ti++
				continue
			case tokenAny:
				ti++
				ki++
				continue
			case tokenLiteral:
				if key[ki] == tok.literal {
					ti++
					ki++
					continue
				}
			case tokenClass:
				if tok.class[key[ki]] {
					ti++
					ki++
					continue
				}
			}
		}

		// mismatch: backtrack to the last star and let it eat one more byte
		if starTi >= 0 {
			starKi++
			ti, ki = starTi+1, starKi
			continue
		}

		return false
	}

	// key consumed, only trailing stars may remain
	for ti < len(tokens) && tokens[ti].typ == tokenStar {
		ti++
	}
	return ti == len(tokens)
}

// MatchString compiles pattern and matches key in one step. Prefer
// Compile + Match when the same pattern is applied to many keys.
func MatchString(pattern, key string) (bool, error) {
	p, err := Compile(pattern)
	if err != nil {
		return false, err
	}
	return p.Match(key), nil
}
