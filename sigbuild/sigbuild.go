// ════════════════════════════════════════════════════════════════════════════════════════════════
// ⚡ SIGNATURE BUILDER
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Project: Selector Mining Engine
// Component: Canonical Signature Construction & Validation
//
// Description:
//   Builds canonical signature strings — name(type1,type2,...) with no whitespace and
//   no return type — from a base function name, an ordered parameter-type list and a
//   candidate variant token. Validation happens once per search; per-candidate
//   rendering is a byte-copy into a caller buffer with a charset check.
//
// Design Principles:
//   - Validate-once, render-many: Template front-loads all invariant checks
//   - The parameter-type vocabulary is injected configuration, not a hard-coded
//     ABI version — it tracks compiler releases externally
//   - Append mode joins tokens with a configurable separator (default "_") so a
//     plain alphanumeric alphabet still reaches names like deposit_ps2
//
// ════════════════════════════════════════════════════════════════════════════════════════════════

package sigbuild

import (
	"errors"
	"fmt"
	"os"

	"github.com/sugawarayuuta/sonnet"

	"selmine/utils"
)

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// ERROR TAXONOMY
// ═══════════════════════════════════════════════════════════════════════════════════════════════

var (
	// ErrInvalidIdentifier marks a base name or variant token that would not
	// form a valid identifier-like name. Fatal, surfaced, never retried.
	ErrInvalidIdentifier = errors.New("invalid identifier")

	// ErrInvalidParamType marks a parameter type outside the configured
	// canonical vocabulary. Fatal, surfaced, never retried.
	ErrInvalidParamType = errors.New("invalid parameter type")
)

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// IDENTIFIER CHARSET
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// identByte reports whether c may appear anywhere in an identifier.
//
//go:nosplit
//go:inline
func identByte(c byte) bool {
	return c == '_' ||
		(c >= '0' && c <= '9') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= 'a' && c <= 'z')
}

// identStart reports whether c may open an identifier (no digits).
//
//go:nosplit
//go:inline
func identStart(c byte) bool {
	return identByte(c) && !(c >= '0' && c <= '9')
}

// ValidIdentifier checks the full identifier rule: non-empty, allowed
// charset, must not start with a digit.
func ValidIdentifier(s string) bool {
	if len(s) == 0 || !identStart(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !identByte(s[i]) {
			return false
		}
	}
	return true
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// BUILDER CONFIGURATION
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// appendMode is the internal splice sentinel selecting append mode.
const appendMode = -1

// Config parameterizes a Builder. The zero value means: default vocabulary,
// empty separator, append mode.
type Config struct {
	// Vocab lists recognized canonical elementary type names. Empty selects
	// DefaultVocabulary(). Array suffixes ([] and [N]) and tuple forms are
	// derived, not listed.
	Vocab []string

	// Separator joins base name and token in append mode. May be empty for
	// direct concatenation; must itself be identifier charset.
	Separator string

	// Insert switches from append mode to splicing the raw token into the
	// base name at byte offset InsertAt (0 = prefix position).
	Insert   bool
	InsertAt int
}

// Builder validates signatures against one vocabulary configuration.
// Side-effect-free and safe for concurrent use once constructed.
type Builder struct {
	vocab    map[string]struct{}
	sep      string
	insertAt int
}

// New constructs a Builder from cfg, substituting defaults for zero fields.
func New(cfg Config) *Builder {
	vocab := cfg.Vocab
	if len(vocab) == 0 {
		vocab = DefaultVocabulary()
	}
	set := make(map[string]struct{}, len(vocab))
	for _, v := range vocab {
		set[v] = struct{}{}
	}
	insertAt := appendMode
	if cfg.Insert && cfg.InsertAt >= 0 {
		insertAt = cfg.InsertAt
	}
	return &Builder{vocab: set, sep: cfg.Separator, insertAt: insertAt}
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// PARAMETER TYPE VALIDATION
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// checkParamType validates one canonical parameter type: an elementary type
// from the vocabulary, a tuple "(t1,t2,...)" of valid types, either form
// followed by any run of array suffixes "[]" or "[N]".
func (b *Builder) checkParamType(p string) error {
	base, ok := stripArraySuffixes(p)
	if !ok {
		return fmt.Errorf("%w: %q (malformed array suffix)", ErrInvalidParamType, p)
	}
	if len(base) == 0 {
		return fmt.Errorf("%w: empty type", ErrInvalidParamType)
	}
	if base[0] == '(' {
		if base[len(base)-1] != ')' {
			return fmt.Errorf("%w: %q (unterminated tuple)", ErrInvalidParamType, p)
		}
		for _, member := range splitTopLevel(base[1 : len(base)-1]) {
			if err := b.checkParamType(member); err != nil {
				return err
			}
		}
		return nil
	}
	if _, ok := b.vocab[base]; !ok {
		return fmt.Errorf("%w: %q", ErrInvalidParamType, p)
	}
	return nil
}

// stripArraySuffixes removes trailing "[]" / "[N]" runs and reports whether
// every stripped suffix was well-formed (digits only, no leading zero run
// like [01] is tolerated — the compiler canonicalizes sizes upstream).
func stripArraySuffixes(p string) (string, bool) {
	for len(p) > 0 && p[len(p)-1] == ']' {
		open := -1
		depth := 0
		for i := len(p) - 1; i >= 0; i-- {
			if p[i] == ']' {
				depth++
			} else if p[i] == '[' {
				depth--
				if depth == 0 {
					open = i
					break
				}
			}
		}
		if open <= 0 {
			return p, false
		}
		for i := open + 1; i < len(p)-1; i++ {
			if p[i] < '0' || p[i] > '9' {
				return p, false
			}
		}
		p = p[:open]
	}
	return p, true
}

// splitTopLevel splits a tuple body on commas at parenthesis depth zero.
func splitTopLevel(s string) []string {
	var parts []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	parts = append(parts, s[start:])
	return parts
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// TEMPLATE — VALIDATED RENDER PLAN
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// Template is a validated, immutable render plan for one (base, params)
// pair. The canonical string for a token is head + token + tail, with all
// invariant parts precomputed so per-candidate rendering is two copies.
type Template struct {
	head   []byte // base[:splice] + separator (append mode) or base[:splice]
	tail   []byte // base[splice:] + "(" + join(params, ",") + ")"
	base   string
	params string // "(" + join(params, ",") + ")"
	// digitStartOk: whether a token beginning with a digit is acceptable at
	// the splice point (true when an identifier byte precedes it).
	digitStartOk bool
}

// Template validates base and params against the builder configuration and
// returns the render plan. Fails with ErrInvalidIdentifier or
// ErrInvalidParamType; never mutates the builder.
func (b *Builder) Template(base string, params []string) (*Template, error) {
	if !ValidIdentifier(base) {
		return nil, fmt.Errorf("%w: base name %q", ErrInvalidIdentifier, base)
	}
	for _, sep := range b.sep {
		if !identByte(byte(sep)) {
			return nil, fmt.Errorf("%w: separator %q", ErrInvalidIdentifier, b.sep)
		}
	}
	for _, p := range params {
		if err := b.checkParamType(p); err != nil {
			return nil, err
		}
	}

	splice := len(base)
	sep := b.sep
	if b.insertAt != appendMode {
		if b.insertAt > len(base) {
			return nil, fmt.Errorf("%w: insert offset %d beyond name %q",
				ErrInvalidIdentifier, b.insertAt, base)
		}
		splice = b.insertAt
		sep = "" // insert mode splices the raw token
	}

	paramPart := make([]byte, 0, 2+paramsLen(params))
	paramPart = append(paramPart, '(')
	for i, p := range params {
		if i > 0 {
			paramPart = append(paramPart, ',')
		}
		paramPart = append(paramPart, p...)
	}
	paramPart = append(paramPart, ')')

	head := make([]byte, 0, splice+len(sep))
	head = append(head, base[:splice]...)
	head = append(head, sep...)

	tail := make([]byte, 0, len(base)-splice+len(paramPart))
	tail = append(tail, base[splice:]...)
	tail = append(tail, paramPart...)

	return &Template{
		head:         head,
		tail:         tail,
		base:         base,
		params:       string(paramPart),
		digitStartOk: len(head) > 0,
	}, nil
}

func paramsLen(params []string) int {
	n := 0
	for _, p := range params {
		n += len(p) + 1
	}
	return n
}

// BaseSignature returns the canonical signature without any variant token,
// e.g. "deposit(uint256)". Used for reporting the unmodified selector.
func (t *Template) BaseSignature() string {
	return t.base + t.params
}

// MaxRenderLen bounds the rendered length for a given maximum token length,
// letting workers size their signature buffers once.
//
//go:nosplit
//go:inline
func (t *Template) MaxRenderLen(maxTokenLen int) int {
	return len(t.head) + maxTokenLen + len(t.tail)
}

// Render writes head+token+tail into dst[:0] and returns the extended
// slice. The token is charset-checked here because a misconfigured alphabet
// may feed bytes that are illegal in identifiers; such candidates abort
// individually with ErrInvalidIdentifier and the search skips them.
// Zero-alloc when dst capacity covers MaxRenderLen.
//
//go:nosplit
func (t *Template) Render(dst, token []byte) ([]byte, error) {
	if len(token) == 0 {
		return dst, ErrInvalidIdentifier
	}
	for _, c := range token {
		if !identByte(c) {
			return dst, ErrInvalidIdentifier
		}
	}
	if !t.digitStartOk && !identStart(token[0]) {
		return dst, ErrInvalidIdentifier
	}
	dst = dst[:0]
	dst = append(dst, t.head...)
	dst = append(dst, token...)
	dst = append(dst, t.tail...)
	return dst, nil
}

// RenderString is the cold-path convenience form used by the CLI and tests.
func (t *Template) RenderString(token string) (string, error) {
	out, err := t.Render(nil, []byte(token))
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// ONE-SHOT BUILD
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// Build is the direct contract form: validate everything and produce the
// canonical string for a single (base, params, token) triple. An empty
// token yields the unmodified signature.
func (b *Builder) Build(base string, params []string, token string) (string, error) {
	t, err := b.Template(base, params)
	if err != nil {
		return "", err
	}
	if token == "" {
		return t.BaseSignature(), nil
	}
	return t.RenderString(token)
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// TYPE VOCABULARY
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// DefaultVocabulary generates the canonical elementary type set: address,
// bool, string, bytes, function, uint8..uint256, int8..int256 and
// bytes1..bytes32. Aliases like "uint" are deliberately absent — canonical
// signatures require the widened form and a miss here is the caller's bug.
func DefaultVocabulary() []string {
	vocab := make([]string, 0, 5+32+32+32)
	vocab = append(vocab, "address", "bool", "string", "bytes", "function")
	for bits := 8; bits <= 256; bits += 8 {
		vocab = append(vocab, "uint"+utils.Itoa(bits), "int"+utils.Itoa(bits))
	}
	for n := 1; n <= 32; n++ {
		vocab = append(vocab, "bytes"+utils.Itoa(n))
	}
	return vocab
}

// LoadVocabulary reads a JSON array of type names, letting deployments track
// compiler-version vocabularies without rebuilding the tool.
func LoadVocabulary(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var vocab []string
	if err := sonnet.Unmarshal(data, &vocab); err != nil {
		return nil, fmt.Errorf("vocabulary %s: %w", path, err)
	}
	if len(vocab) == 0 {
		return nil, fmt.Errorf("vocabulary %s: empty type list", path)
	}
	return vocab, nil
}
