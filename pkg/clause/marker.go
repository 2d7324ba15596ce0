package clause

import (
	"regexp"
	"strings"
)

// TokenType represents the type of a marker token
type TokenType int

const (
	TokenText TokenType = iota
	TokenField
	TokenCond
)

func (t TokenType) String() string {
	switch t {
	case TokenText:
		return "text"
	case TokenField:
		return "field"
	case TokenCond:
		return "cond"
	default:
		return "unknown"
	}
}

// Token is one piece of a marked document. Raw always holds the exact source
// text, so a token stream can be joined back into its input.
type Token struct {
	Type TokenType
	Raw  string
	ID   string
	Hint string
}

const (
	fieldPrefix = "FIELD:"
	condPrefix  = "COND:"
)

var (
	// condRegex matches {{COND:<id>}}; the id excludes '}'.
	condRegex = regexp.MustCompile(`\{\{COND:([^}]+)\}\}`)

	// fieldRegex matches {{FIELD:<id>:<hint>}}; the id excludes ':' and '}',
	// the hint excludes '}'.
	fieldRegex = regexp.MustCompile(`\{\{FIELD:([^:}]+):([^}]*)\}\}`)
)

// TokenizeConditionals splits input into text and conditional tokens. Field
// markers, well-formed or not, stay inside text tokens. This is the first
// render pass, so an unterminated field marker never hides a conditional.
func TokenizeConditionals(input string) []Token {
	return scanMarkers(input, condRegex, TokenCond)
}

// TokenizeFields splits input into text and field tokens. Conditional markers
// stay inside text tokens.
func TokenizeFields(input string) []Token {
	return scanMarkers(input, fieldRegex, TokenField)
}

// Tokenize splits input into text, field and conditional tokens with the
// precedence used by rendering: conditional markers are found over the whole
// input first, field markers only in the text between them.
// Malformed markers are never an error: they stay inside text tokens verbatim.
func Tokenize(input string) []Token {
	var tokens []Token
	for _, t := range TokenizeConditionals(input) {
		if t.Type == TokenText {
			tokens = append(tokens, TokenizeFields(t.Raw)...)
			continue
		}
		tokens = append(tokens, t)
	}
	return tokens
}

func scanMarkers(input string, re *regexp.Regexp, kind TokenType) []Token {
	var tokens []Token
	lastEnd := 0

	logger := GetLogger()
	debug := logger.IsDebugMode()
	if debug {
		logger.WithFields(Fields{"input_length": len(input), "kind": kind}).Debug("Starting tokenization")
	}

	for _, m := range re.FindAllStringSubmatchIndex(input, -1) {
		if m[0] > lastEnd {
			tokens = append(tokens, Token{Type: TokenText, Raw: input[lastEnd:m[0]]})
		}

		token := Token{Type: kind, Raw: input[m[0]:m[1]], ID: input[m[2]:m[3]]}
		if kind == TokenField {
			token.Hint = input[m[4]:m[5]]
		}

		if debug {
			logger.WithFields(Fields{
				"type": token.Type,
				"id":   token.ID,
			}).Debug("Found marker")
		}
		tokens = append(tokens, token)
		lastEnd = m[1]
	}

	if lastEnd < len(input) {
		tokens = append(tokens, Token{Type: TokenText, Raw: input[lastEnd:]})
	}

	if debug {
		logger.WithField("token_count", len(tokens)).Debug("Tokenization complete")
	}

	return tokens
}

// Join concatenates the raw text of tokens.
func Join(tokens []Token) string {
	var sb strings.Builder
	for _, t := range tokens {
		sb.WriteString(t.Raw)
	}
	return sb.String()
}

// FieldMarker builds a field marker. It does not validate its arguments.
func FieldMarker(id, hint string) string {
	return "{{" + fieldPrefix + id + ":" + hint + "}}"
}

// CondMarker builds a conditional marker.
func CondMarker(id string) string {
	return "{{" + condPrefix + id + "}}"
}

// ValidFieldID reports whether id can be used inside a field marker.
func ValidFieldID(id string) bool {
	return id != "" && !strings.ContainsAny(id, ":}")
}

// ValidCondID reports whether id can be used inside a conditional marker.
func ValidCondID(id string) bool {
	return id != "" && !strings.Contains(id, "}")
}

// FindMarkers returns every well-formed marker in input, in order.
// This is a utility function for debugging and analysis
func FindMarkers(input string) []string {
	markers := []string{}
	for _, t := range Tokenize(input) {
		if t.Type != TokenText {
			markers = append(markers, t.Raw)
		}
	}
	return markers
}

// findMalformedMarkers returns the "{{" sequences that are not part of a valid
// marker: up to the first "}}", or up to the next "{{" when unterminated.
func findMalformedMarkers(input string) []string {
	var out []string
	for _, t := range Tokenize(input) {
		if t.Type != TokenText {
			continue
		}
		text := t.Raw
		for {
			i := strings.Index(text, "{{")
			if i < 0 {
				break
			}
			for i+2 < len(text) && text[i+2] == '{' {
				i++
			}
			rest := text[i+2:]
			end := len(rest)
			if next := strings.Index(rest, "{{"); next >= 0 {
				end = next
			}
			if stop := strings.Index(rest[:end], "}}"); stop >= 0 {
				end = stop + 2
			}
			out = append(out, strings.TrimSpace(text[i:i+2+end]))
			text = rest[end:]
		}
	}
	return out
}
