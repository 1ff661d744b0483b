package manifest

import (
	"fmt"
	"os"

	"github.com/ZebulonRouseFrantzich/relpack/internal/platform"
	lua "github.com/yuin/gopher-lua"
)

// Parser parses Lua manifests for a fixed packaging target.
type Parser struct {
	target platform.Target
}

// NewParser creates a manifest parser. The target is injected into every
// manifest as the read-only "target" table.
func NewParser(target platform.Target) *Parser {
	return &Parser{target: target}
}

// ParseFile parses a Lua manifest from disk.
func (p *Parser) ParseFile(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return p.ParseString(string(data))
}

// ParseString parses a Lua manifest from a string.
func (p *Parser) ParseString(luaCode string) (*Manifest, error) {
	L := newSandboxedVM()
	defer L.Close()

	if err := platform.InjectTargetTable(L, p.target); err != nil {
		return nil, fmt.Errorf("inject target table: %w", err)
	}

	if err := L.DoString(luaCode); err != nil {
		return nil, &ParseError{
			Message: "Lua syntax error",
			Detail:  err.Error(),
		}
	}

	m, err := extractManifest(L)
	if err != nil {
		return nil, err
	}

	if err := m.Validate(); err != nil {
		return nil, &ParseError{
			Message: "invalid manifest",
			Detail:  err.Error(),
		}
	}

	return m, nil
}

// ParseError represents a manifest parsing error with a friendly message.
type ParseError struct {
	Message string // User-friendly message
	Detail  string // Technical details (raw Lua error)
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Message, e.Detail)
}

// extractManifest extracts the manifest from a Lua state.
// It expects a global "relpack" table with the manifest structure.
func extractManifest(L *lua.LState) (*Manifest, error) {
	root := L.GetGlobal("relpack")
	if root.Type() != lua.LTTable {
		return nil, &ParseError{
			Message: "missing or invalid 'relpack' table",
			Detail:  fmt.Sprintf("expected table, got %s", root.Type()),
		}
	}

	m := &Manifest{}
	table := root.(*lua.LTable)

	if pkgVal := table.RawGetString("package"); pkgVal.Type() == lua.LTTable {
		pkg, err := extractPackage(pkgVal.(*lua.LTable))
		if err != nil {
			return nil, err
		}
		m.Package = pkg
	} else {
		return nil, &ParseError{
			Message: "missing 'relpack.package' table",
			Detail:  fmt.Sprintf("expected table, got %s", pkgVal.Type()),
		}
	}

	if dirVal := table.RawGetString("scripts_dir"); dirVal.Type() == lua.LTString {
		m.ScriptsDir = dirVal.String()
	}

	return m, nil
}

func extractPackage(table *lua.LTable) (Package, error) {
	pkg := Package{}

	stringFields := map[string]*string{
		"name":        &pkg.Name,
		"vendor":      &pkg.Vendor,
		"description": &pkg.Description,
		"url":         &pkg.URL,
		"maintainer":  &pkg.Maintainer,
		"license":     &pkg.License,
	}
	for field, dst := range stringFields {
		val := table.RawGetString(field)
		switch val.Type() {
		case lua.LTString:
			*dst = val.String()
		case lua.LTNil:
			// optional
		default:
			return Package{}, &ParseError{
				Message: fmt.Sprintf("invalid 'package.%s'", field),
				Detail:  fmt.Sprintf("expected string, got %s", val.Type()),
			}
		}
	}

	listFields := map[string]*[]string{
		"depends":     &pkg.Depends,
		"recommends":  &pkg.Recommends,
		"conflicts":   &pkg.Conflicts,
		"directories": &pkg.Directories,
		"rpm_attrs":   &pkg.RPMAttrs,
	}
	for field, dst := range listFields {
		val := table.RawGetString(field)
		switch val.Type() {
		case lua.LTTable:
			list, err := extractStringList(field, val.(*lua.LTable))
			if err != nil {
				return Package{}, err
			}
			*dst = list
		case lua.LTNil:
			// optional
		default:
			return Package{}, &ParseError{
				Message: fmt.Sprintf("invalid 'package.%s'", field),
				Detail:  fmt.Sprintf("expected table, got %s", val.Type()),
			}
		}
	}

	return pkg, nil
}

// extractStringList converts a Lua array table to a string slice.
// Nil entries (from target.when with a false condition) are skipped so
// manifests can write conditional relationships inline.
func extractStringList(field string, table *lua.LTable) ([]string, error) {
	var list []string
	var extractErr error

	table.ForEach(func(_, value lua.LValue) {
		if extractErr != nil {
			return
		}
		switch value.Type() {
		case lua.LTString:
			list = append(list, value.String())
		case lua.LTNil:
			// skipped conditional entry
		default:
			extractErr = &ParseError{
				Message: fmt.Sprintf("invalid entry in 'package.%s'", field),
				Detail:  fmt.Sprintf("expected string, got %s", value.Type()),
			}
		}
	})

	return list, extractErr
}
