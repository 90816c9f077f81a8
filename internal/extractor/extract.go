package extractor

import (
	"dotnet-bindgen/internal/ffi"
)

const (
	msgMethods       = "methods are not supported"
	msgRefBinding    = "reference bindings are not supported"
	msgDestructuring = "destructuring is not supported"
	msgUnnamed       = "unnamed parameters are not supported"
	msgBadIdent      = "parameter name is not a valid identifier"
	msgBadFuncName   = "function name is not a valid identifier"
	msgUnsupported   = "unsupported type"
	msgVariadic      = "variadic parameters are not supported"
)

type intSpelling struct {
	bits   int
	signed bool
}

// intTypes is the closed vocabulary of accepted integer spellings.
var intTypes = map[string]intSpelling{
	"i8":  {8, true},
	"i16": {16, true},
	"i32": {32, true},
	"i64": {64, true},
	"u8":  {8, false},
	"u16": {16, false},
	"u32": {32, false},
	"u64": {64, false},
}

const unitSpelling = "()"

// Extract converts one declaration into a binding descriptor. It stops at the
// first problem and returns it as a *Diagnostic.
func Extract(decl FunctionDecl) (ffi.Function, error) {
	if !ffi.ValidIdentifier(decl.Name) {
		return ffi.Function{}, errorAt(decl.NameSpan, msgBadFuncName)
	}

	args := make([]ffi.Argument, 0, len(decl.Params))
	for _, p := range decl.Params {
		arg, err := extractParam(p)
		if err != nil {
			return ffi.Function{}, err
		}
		args = append(args, arg)
	}

	ret := ffi.Void()
	if decl.Return != nil && canonicalize(decl.Return.Spelling) != unitSpelling {
		t, err := translateType(*decl.Return)
		if err != nil {
			return ffi.Function{}, err
		}
		ret = t
	}

	return ffi.Function{
		Name:   decl.Name,
		Args:   args,
		Return: ret,
	}, nil
}

// ExtractInto extracts decl and appends it to prog. On failure prog is left
// unchanged.
func ExtractInto(prog *ffi.Program, decl FunctionDecl) error {
	fn, err := Extract(decl)
	if err != nil {
		return err
	}
	prog.Append(ffi.FuncExport{Func: fn})
	return nil
}

func extractParam(p ParamDecl) (ffi.Argument, error) {
	switch p.Kind {
	case PatternReceiver:
		return ffi.Argument{}, errorAt(p.PatternSpan, msgMethods)
	case PatternRef:
		return ffi.Argument{}, errorAt(p.PatternSpan, msgRefBinding)
	case PatternDestructure:
		return ffi.Argument{}, errorAt(p.PatternSpan, msgDestructuring)
	case PatternWildcard:
		return ffi.Argument{}, errorAt(p.PatternSpan, msgUnnamed)
	case PatternVariadic:
		return ffi.Argument{}, errorAt(p.PatternSpan, msgVariadic)
	case PatternIdent:
	default:
		return ffi.Argument{}, errorAt(p.Span, msgDestructuring)
	}

	if !ffi.ValidIdentifier(p.Name) {
		return ffi.Argument{}, errorAt(p.PatternSpan, msgBadIdent)
	}

	t, err := translateType(p.Type)
	if err != nil {
		return ffi.Argument{}, err
	}
	return ffi.Argument{Type: t, Name: p.Name}, nil
}

// translateType maps a source spelling to an ffi.Type. The unit type is only
// accepted in return position, which Extract handles before calling this.
func translateType(ref TypeRef) (ffi.Type, error) {
	want, ok := intTypes[canonicalize(ref.Spelling)]
	if !ok {
		return ffi.Type{}, errorAt(ref.Span, msgUnsupported)
	}
	t, err := ffi.NewInt(want.bits, want.signed)
	if err != nil {
		return ffi.Type{}, errorAt(ref.Span, err.Error())
	}
	return t, nil
}
