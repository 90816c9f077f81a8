package csharp

import "github.com/iancoleman/strcase"

// ToTypeCase converts a native identifier to PascalCase for type and method
// names.
func ToTypeCase(s string) string {
	return usable(strcase.ToCamel(s), s)
}

// ToParamCase converts a native identifier to camelCase for parameter names,
// escaping the result with @ when it collides with a C# keyword.
func ToParamCase(s string) string {
	name := usable(strcase.ToLowerCamel(s), s)
	if keywords[name] {
		return "@" + name
	}
	return name
}

// usable repairs a converted name that strcase emptied or left starting
// with a digit by dropping leading underscores, e.g. "__" or "_1f".
func usable(converted, original string) string {
	switch {
	case converted == "":
		return original
	case converted[0] >= '0' && converted[0] <= '9':
		return "_" + converted
	}
	return converted
}

var keywords = map[string]bool{
	"abstract": true, "as": true, "base": true, "bool": true, "break": true,
	"byte": true, "case": true, "catch": true, "char": true, "checked": true,
	"class": true, "const": true, "continue": true, "decimal": true, "default": true,
	"delegate": true, "do": true, "double": true, "else": true, "enum": true,
	"event": true, "explicit": true, "extern": true, "false": true, "finally": true,
	"fixed": true, "float": true, "for": true, "foreach": true, "goto": true,
	"if": true, "implicit": true, "in": true, "int": true, "interface": true,
	"internal": true, "is": true, "lock": true, "long": true, "namespace": true,
	"new": true, "null": true, "object": true, "operator": true, "out": true,
	"override": true, "params": true, "private": true, "protected": true, "public": true,
	"readonly": true, "ref": true, "return": true, "sbyte": true, "sealed": true,
	"short": true, "sizeof": true, "stackalloc": true, "static": true, "string": true,
	"struct": true, "switch": true, "this": true, "throw": true, "true": true,
	"try": true, "typeof": true, "uint": true, "ulong": true, "unchecked": true,
	"unsafe": true, "ushort": true, "using": true, "virtual": true, "void": true,
	"volatile": true, "while": true,
}
