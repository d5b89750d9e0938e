package ast

// ImportTracker is the per-file view of which modules contribute which
// names: explicit exposing, open (exposing-all) imports, and aliases.
// All three are seeded with the implicit prelude every Elm file gets.
type ImportTracker struct {
	// ExplicitExposing maps a bare name to the modules that expose it
	// to this file, in import order (prelude first).
	ExplicitExposing map[string][]string

	// UnknownImports lists modules imported with exposing (..), in
	// import order. Names from these modules are visible unqualified
	// but the owner is only known by consulting the module itself.
	UnknownImports []string

	// AliasMapping maps an alias to the real modules it denotes.
	AliasMapping map[string][]string
}

// PreludeModules is the fixed set of modules implicitly available in
// every file without an import line.
var PreludeModules = []string{
	"Basics", "List", "Maybe", "Result", "String", "Char",
	"Tuple", "Debug", "Platform", "Platform.Cmd", "Platform.Sub",
}

// IsPreludeModule reports whether moduleName is implicitly imported.
func IsPreludeModule(moduleName string) bool {
	for _, m := range PreludeModules {
		if m == moduleName {
			return true
		}
	}
	return false
}

// preludeExposing is the implicit exposing every file starts with.
var preludeExposing = []struct {
	name   string
	module string
}{
	{"List", "List"},
	{"::", "List"},
	{"Maybe", "Maybe"},
	{"Just", "Maybe"},
	{"Nothing", "Maybe"},
	{"Result", "Result"},
	{"Ok", "Result"},
	{"Err", "Result"},
	{"String", "String"},
	{"Char", "Char"},
	{"Program", "Platform"},
	{"Cmd", "Platform.Cmd"},
	{"Sub", "Platform.Sub"},
}

// NewImportTracker derives the tracker for a parsed file. The prelude
// entries are seeded first so that import lines can only add to them.
func NewImportTracker(file *File) *ImportTracker {
	t := &ImportTracker{
		ExplicitExposing: make(map[string][]string),
		AliasMapping:     make(map[string][]string),
	}

	for _, seed := range preludeExposing {
		t.addExposed(seed.name, seed.module)
	}
	t.UnknownImports = append(t.UnknownImports, "Basics")
	t.addAlias("Cmd", "Platform.Cmd")
	t.addAlias("Sub", "Platform.Sub")

	if file == nil {
		return t
	}

	for _, imp := range file.Imports {
		if imp.Alias != "" {
			t.addAlias(imp.Alias, imp.ModuleName)
		}
		if imp.Exposing == nil {
			continue
		}
		if imp.Exposing.All {
			t.addUnknown(imp.ModuleName)
			continue
		}
		for _, item := range imp.Exposing.Items {
			t.addExposed(item.Name, imp.ModuleName)
			// A type exposed with (..) also exposes its constructors,
			// but their names live in the imported module; callers fall
			// back to UnknownImports-style lookups for those.
		}
	}

	return t
}

// ResolveAlias maps a qualifier to the real modules it may denote.
// A qualifier that is not an alias denotes itself.
func (t *ImportTracker) ResolveAlias(qualifier string) []string {
	if modules, ok := t.AliasMapping[qualifier]; ok {
		return modules
	}
	return []string{qualifier}
}

// ExposedBy returns the modules that explicitly expose name to this file.
func (t *ImportTracker) ExposedBy(name string) []string {
	return t.ExplicitExposing[name]
}

func (t *ImportTracker) addExposed(name, module string) {
	for _, m := range t.ExplicitExposing[name] {
		if m == module {
			return
		}
	}
	t.ExplicitExposing[name] = append(t.ExplicitExposing[name], module)
}

func (t *ImportTracker) addUnknown(module string) {
	for _, m := range t.UnknownImports {
		if m == module {
			return
		}
	}
	t.UnknownImports = append(t.UnknownImports, module)
}

func (t *ImportTracker) addAlias(alias, module string) {
	for _, m := range t.AliasMapping[alias] {
		if m == module {
			return
		}
	}
	t.AliasMapping[alias] = append(t.AliasMapping[alias], module)
}
