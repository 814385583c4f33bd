// Package preproc defines the preprocessor collaborator spec.md describes
// as an external component: something CompileOptions hands a filename and
// a macro table to, and gets back expanded source text. hlslxc treats full
// C-preprocessor semantics (#include, #if, conditional compilation) as the
// caller's responsibility; this package supplies the interface plus two
// reference implementations useful for tests and for simple sources that
// only need #define substitution.
package preproc

import (
	"fmt"
	"strings"

	"github.com/gogpu/hlslxc/intern"
)

// Macro is a single (lhs, rhs) substitution pair, matching spec.md §6's
// fetch_preproc macro list.
type Macro struct {
	Name  string
	Value string
}

// Result is what Fetch returns: the expanded source, any error text
// surfaced to the caller verbatim, a debug trace, and a success flag.
type Result struct {
	Output string
	Errors string
	Debug  string
	OK     bool
}

// Preprocessor fetches and expands a named source file against a macro
// table. filename is opaque to this package; a Preprocessor implementation
// decides how to resolve it (disk, embedded FS, in-memory map).
type Preprocessor interface {
	Fetch(filename string, macros []Macro) Result
}

// PassthroughPreprocessor returns the requested source unchanged. It is
// used by callers that already ran a real preprocessor externally, and by
// tests that want the pipeline's Tokenize/Parse stages exercised without
// macro semantics in the way.
type PassthroughPreprocessor struct {
	// Sources maps filename to already-loaded source text.
	Sources map[string]string
}

func (p PassthroughPreprocessor) Fetch(filename string, _ []Macro) Result {
	src, ok := p.Sources[filename]
	if !ok {
		return Result{Errors: fmt.Sprintf("preproc: unknown file %q", filename), OK: false}
	}
	return Result{Output: src, OK: true}
}

// MacroPreprocessor performs textual #define substitution only. It is not a
// C preprocessor: #include and conditional directives (#if/#ifdef/#ifndef)
// are rejected rather than silently ignored, so callers relying on real
// preprocessing fail loudly instead of getting wrong output.
type MacroPreprocessor struct {
	Sources map[string]string

	names *intern.Pool
}

func NewMacroPreprocessor(sources map[string]string) *MacroPreprocessor {
	return &MacroPreprocessor{Sources: sources, names: intern.NewPool()}
}

func (p *MacroPreprocessor) Fetch(filename string, macros []Macro) Result {
	if p.names == nil {
		p.names = intern.NewPool()
	}
	src, ok := p.Sources[filename]
	if !ok {
		return Result{Errors: fmt.Sprintf("preproc: unknown file %q", filename), OK: false}
	}

	table := map[string]string{}
	for _, m := range macros {
		p.names.Intern(m.Name)
		table[m.Name] = m.Value
	}

	var errs []string
	var debug strings.Builder
	lines := strings.Split(src, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "#define"):
			name, value, ok := parseDefine(trimmed)
			if !ok {
				errs = append(errs, fmt.Sprintf("%s:%d: malformed #define", filename, i+1))
				continue
			}
			p.names.Intern(name)
			table[name] = value
			lines[i] = ""
		case strings.HasPrefix(trimmed, "#include"):
			errs = append(errs, fmt.Sprintf("%s:%d: #include requires a full preprocessor", filename, i+1))
		case strings.HasPrefix(trimmed, "#if"), strings.HasPrefix(trimmed, "#ifdef"), strings.HasPrefix(trimmed, "#ifndef"):
			errs = append(errs, fmt.Sprintf("%s:%d: conditional compilation requires a full preprocessor", filename, i+1))
		}
	}
	if len(errs) > 0 {
		return Result{Errors: strings.Join(errs, "\n"), Debug: debug.String(), OK: false}
	}

	out := strings.Join(lines, "\n")
	for name, value := range table {
		out = substituteWord(out, name, value)
	}
	fmt.Fprintf(&debug, "expanded %d macro(s)", p.names.Len())
	return Result{Output: out, Debug: debug.String(), OK: true}
}

func parseDefine(line string) (name, value string, ok bool) {
	rest := strings.TrimSpace(strings.TrimPrefix(line, "#define"))
	if rest == "" {
		return "", "", false
	}
	fields := strings.SplitN(rest, " ", 2)
	name = fields[0]
	if name == "" {
		return "", "", false
	}
	if len(fields) == 2 {
		value = strings.TrimSpace(fields[1])
	}
	return name, value, true
}

// substituteWord replaces whole-word occurrences of name with value,
// leaving substrings of larger identifiers untouched.
func substituteWord(src, name, value string) string {
	var out strings.Builder
	for i := 0; i < len(src); {
		j := strings.Index(src[i:], name)
		if j < 0 {
			out.WriteString(src[i:])
			break
		}
		start := i + j
		end := start + len(name)
		beforeOK := start == 0 || !isIdentByte(src[start-1])
		afterOK := end == len(src) || !isIdentByte(src[end])
		out.WriteString(src[i:start])
		if beforeOK && afterOK {
			out.WriteString(value)
		} else {
			out.WriteString(name)
		}
		i = end
	}
	return out.String()
}

func isIdentByte(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}
