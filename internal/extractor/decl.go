package extractor

// PatternKind classifies how a parameter binds its value.
type PatternKind int

const (
	// PatternIdent is a plain (optionally mutable) identifier binding.
	PatternIdent PatternKind = iota
	// PatternReceiver is a self parameter.
	PatternReceiver
	// PatternRef binds by reference, as in `ref x`.
	PatternRef
	// PatternDestructure binds through a sub-pattern, as in `x @ 1..=9`
	// or `(a, b)`.
	PatternDestructure
	// PatternWildcard is `_`.
	PatternWildcard
	// PatternVariadic is a C-variadic `...` parameter.
	PatternVariadic
)

func (k PatternKind) String() string {
	switch k {
	case PatternIdent:
		return "ident"
	case PatternReceiver:
		return "receiver"
	case PatternRef:
		return "ref"
	case PatternDestructure:
		return "destructure"
	case PatternWildcard:
		return "wildcard"
	case PatternVariadic:
		return "variadic"
	default:
		return "unknown"
	}
}

// TypeRef is a type as spelled in source.
type TypeRef struct {
	Spelling string
	Span     Span
}

// ParamDecl is one declared parameter. PatternSpan points at the part of the
// binding a diagnostic should highlight; Type is empty for receivers.
type ParamDecl struct {
	Kind        PatternKind
	Name        string
	Type        TypeRef
	Span        Span
	PatternSpan Span
}

// FunctionDecl is a native function declaration as seen by a frontend.
// Return is nil when the declaration has no return annotation.
type FunctionDecl struct {
	Name     string
	NameSpan Span
	Params   []ParamDecl
	Return   *TypeRef
	Span     Span
}
