package settings

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Neumenon/gvtext/gvtext"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
)

// Schema groups the keys stored under one settings path.
type Schema struct {
	ID   string
	Path string // Absolute, with leading and trailing slash, e.g. /org/gnome/shell/
	Keys []*Key
}

// Key declares one setting: its type and optional default.
type Key struct {
	Name    string
	Type    *gvtext.Type
	Default *gvtext.Value // nil when the schema declares no default
	Summary string
}

// Key returns the key with the given name, or nil.
func (s *Schema) Key(name string) *Key {
	for _, k := range s.Keys {
		if k.Name == name {
			return k
		}
	}
	return nil
}

// Schemas is a set of schemas indexed by path.
type Schemas struct {
	list   []*Schema
	byPath map[string]*Schema
}

// NewSchemas returns an empty schema set.
func NewSchemas() *Schemas {
	return &Schemas{byPath: make(map[string]*Schema)}
}

// Add registers s. Two schemas may not share a path.
func (ss *Schemas) Add(s *Schema) error {
	if prev, ok := ss.byPath[s.Path]; ok {
		return fmt.Errorf("settings: schemas %q and %q both use path %s", prev.ID, s.ID, s.Path)
	}
	ss.list = append(ss.list, s)
	ss.byPath[s.Path] = s
	return nil
}

// Merge adds every schema of other.
func (ss *Schemas) Merge(other *Schemas) error {
	for _, s := range other.list {
		if err := ss.Add(s); err != nil {
			return err
		}
	}
	return nil
}

// Lookup returns the schema registered for path.
func (ss *Schemas) Lookup(path string) (*Schema, bool) {
	s, ok := ss.byPath[path]
	return s, ok
}

// List returns the schemas in the order they were added.
func (ss *Schemas) List() []*Schema {
	return ss.list
}

// Len returns the number of schemas.
func (ss *Schemas) Len() int {
	return len(ss.list)
}

// ============================================================
// HCL Schema Files
// ============================================================

// schemaFile is the root of a schema file.
//
//	schema "org.gnome.shell" {
//	  path = "/org/gnome/shell/"
//
//	  key "favorite-apps" {
//	    type    = "as"
//	    default = ["org.gnome.Nautilus.desktop"]
//	    summary = "Pinned applications"
//	  }
//
//	  key "app-picker-layout" {
//	    type         = "aa{sv}"
//	    default_text = "[{'org.gnome.Geary.desktop': <{'position': <0>}>}]"
//	  }
//	}
type schemaFile struct {
	Schemas []*schemaBlock `hcl:"schema,block"`
}

type schemaBlock struct {
	ID   string      `hcl:"id,label"`
	Path string      `hcl:"path"`
	Keys []*keyBlock `hcl:"key,block"`
}

type keyBlock struct {
	Name        string         `hcl:"name,label"`
	Type        hcl.Expression `hcl:"type"`
	Default     hcl.Expression `hcl:"default,optional"`
	DefaultText hcl.Expression `hcl:"default_text,optional"`
	Summary     string         `hcl:"summary,optional"`
}

// LoadSchemaFile parses the HCL schema file at path.
func LoadSchemaFile(path string) (*Schemas, error) {
	f, diags := hclparse.NewParser().ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", path, diags)
	}
	return decodeSchemas(f.Body, path)
}

// ParseSchemas parses HCL schema source. filename is used in diagnostics.
func ParseSchemas(src []byte, filename string) (*Schemas, error) {
	f, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", filename, diags)
	}
	return decodeSchemas(f.Body, filename)
}

func decodeSchemas(body hcl.Body, filename string) (*Schemas, error) {
	var root schemaFile
	if diags := gohcl.DecodeBody(body, nil, &root); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", filename, diags)
	}

	out := NewSchemas()
	for _, b := range root.Schemas {
		s, diags := b.schema()
		if diags.HasErrors() {
			return nil, fmt.Errorf("schema %q in %s: %w", b.ID, filename, diags)
		}
		if err := out.Add(s); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (b *schemaBlock) schema() (*Schema, hcl.Diagnostics) {
	var diags hcl.Diagnostics
	if !strings.HasPrefix(b.Path, "/") || !strings.HasSuffix(b.Path, "/") || strings.Contains(b.Path, "//") {
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Invalid schema path",
			Detail:   fmt.Sprintf("Path %q must start and end with a slash and contain no empty segments.", b.Path),
		})
	}

	s := &Schema{ID: b.ID, Path: b.Path}
	seen := make(map[string]bool, len(b.Keys))
	for _, kb := range b.Keys {
		if seen[kb.Name] {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Duplicate key",
				Detail:   fmt.Sprintf("Key %q is declared more than once.", kb.Name),
			})
			continue
		}
		seen[kb.Name] = true

		k, keyDiags := kb.key()
		diags = append(diags, keyDiags...)
		if k != nil {
			s.Keys = append(s.Keys, k)
		}
	}
	sort.SliceStable(s.Keys, func(i, j int) bool { return s.Keys[i].Name < s.Keys[j].Name })
	return s, diags
}

func (kb *keyBlock) key() (*Key, hcl.Diagnostics) {
	var sig string
	diags := gohcl.DecodeExpression(kb.Type, nil, &sig)
	if diags.HasErrors() {
		return nil, diags
	}
	typ, err := gvtext.ParseSignature(sig)
	if err != nil {
		return nil, hcl.Diagnostics{exprDiag(kb.Type, "Invalid key type", err)}
	}
	k := &Key{Name: kb.Name, Type: typ, Summary: kb.Summary}

	def, diags := kb.Default.Value(nil)
	if diags.HasErrors() {
		return nil, diags
	}
	defText, diags := kb.DefaultText.Value(nil)
	if diags.HasErrors() {
		return nil, diags
	}

	switch {
	case !def.IsNull() && !defText.IsNull():
		return nil, hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Conflicting defaults",
			Detail:   fmt.Sprintf("Key %q sets both default and default_text.", kb.Name),
			Subject:  kb.DefaultText.Range().Ptr(),
		}}
	case !def.IsNull():
		raw, err := gvtext.FromCty(def)
		if err != nil {
			return nil, hcl.Diagnostics{exprDiag(kb.Default, "Invalid default", err)}
		}
		if k.Default, err = gvtext.Coerce(raw, typ); err != nil {
			return nil, hcl.Diagnostics{exprDiag(kb.Default, "Invalid default", err)}
		}
	case !defText.IsNull():
		if !defText.Type().Equals(cty.String) {
			return nil, hcl.Diagnostics{exprDiag(kb.DefaultText, "Invalid default_text", fmt.Errorf("expected a string, got %s", defText.Type().FriendlyName()))}
		}
		if k.Default, err = gvtext.DecodeType(defText.AsString(), typ); err != nil {
			return nil, hcl.Diagnostics{exprDiag(kb.DefaultText, "Invalid default_text", err)}
		}
	}
	return k, nil
}

func exprDiag(expr hcl.Expression, summary string, err error) *hcl.Diagnostic {
	return &hcl.Diagnostic{
		Severity: hcl.DiagError,
		Summary:  summary,
		Detail:   err.Error(),
		Subject:  expr.Range().Ptr(),
	}
}
