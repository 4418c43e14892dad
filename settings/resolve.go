package settings

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Neumenon/gvtext/gvtext"
)

// Setting is a keyfile entry decoded against its schema.
type Setting struct {
	Schema  string // Schema ID
	Path    string
	Key     string
	Type    *gvtext.Type
	Value   *gvtext.Value
	Default *gvtext.Value

	// Changed is true when Value differs from Default, or there is no default.
	Changed bool
	// FromDefault is true when the keyfile did not set the key.
	FromDefault bool
}

// KeyError is the failure to decode one keyfile entry.
type KeyError struct {
	Path string
	Key  string
	Line int
	Err  error
}

func (e *KeyError) Error() string {
	return fmt.Sprintf("%s%s (line %d): %v", e.Path, e.Key, e.Line, e.Err)
}

func (e *KeyError) Unwrap() error {
	return e.Err
}

// ResolveError lists every key that failed to resolve.
type ResolveError struct {
	Keys []*KeyError
}

func (e *ResolveError) Error() string {
	if len(e.Keys) == 1 {
		return "settings: " + e.Keys[0].Error()
	}
	msgs := make([]string, len(e.Keys))
	for i, k := range e.Keys {
		msgs[i] = "  " + k.Error()
	}
	return fmt.Sprintf("settings: %d keys failed to resolve:\n%s", len(e.Keys), strings.Join(msgs, "\n"))
}

// Unwrap returns the individual key errors for errors.Is and errors.As.
func (e *ResolveError) Unwrap() []error {
	errs := make([]error, len(e.Keys))
	for i, k := range e.Keys {
		errs[i] = k
	}
	return errs
}

// Resolver decodes keyfiles against a set of schemas.
type Resolver struct {
	Schemas *Schemas
	Logger  *slog.Logger // nil means slog.Default()
}

func (r *Resolver) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}

// Resolve decodes every entry of kf with the signature its schema declares.
// Sections and keys without a schema are skipped with a warning. With
// withDefaults, keys the keyfile does not set are filled in from schema
// defaults, after all of the keyfile's own keys.
//
// Every entry is attempted. If any fail, the settings that did resolve are
// returned together with a *ResolveError.
func (r *Resolver) Resolve(kf *Keyfile, withDefaults bool) ([]*Setting, error) {
	log := r.logger()
	var (
		out    []*Setting
		failed []*KeyError
	)

	// Section names that differ in slashes share a path, so keys set under
	// any of them count as set for that schema.
	set := make(map[string]map[string]bool)
	var order []*Schema
	for _, sec := range kf.Sections {
		path := sec.Path()
		schema, ok := r.Schemas.Lookup(path)
		if !ok {
			log.Warn("No schema for section, skipping.", "section", sec.Name, "line", sec.Line)
			continue
		}
		if set[path] == nil {
			set[path] = make(map[string]bool, len(sec.Entries))
			order = append(order, schema)
		}

		for _, line := range sec.Entries {
			key := schema.Key(line.Key)
			if key == nil {
				log.Warn("Key not in schema, skipping.", "schema", schema.ID, "key", line.Key, "line", line.Line)
				continue
			}

			set[path][line.Key] = true
			v, err := gvtext.DecodeType(line.Value, key.Type)
			if err != nil {
				failed = append(failed, &KeyError{Path: path, Key: line.Key, Line: line.Line, Err: err})
				continue
			}

			s := &Setting{
				Schema:  schema.ID,
				Path:    path,
				Key:     key.Name,
				Type:    key.Type,
				Value:   v,
				Default: key.Default,
				Changed: differs(v, key.Default),
			}
			log.Debug("Resolved key.", "path", path, "key", key.Name, "type", key.Type.String(), "changed", s.Changed)
			out = appendSetting(out, s)
		}
	}

	if withDefaults {
		for _, schema := range order {
			out = append(out, defaults(schema, set[schema.Path])...)
		}
		for _, schema := range r.Schemas.List() {
			if set[schema.Path] == nil {
				out = append(out, defaults(schema, nil)...)
			}
		}
	}

	if len(failed) > 0 {
		return out, &ResolveError{Keys: failed}
	}
	return out, nil
}

// appendSetting adds s, replacing an earlier setting of the same key so the
// last assignment in the keyfile wins.
func appendSetting(out []*Setting, s *Setting) []*Setting {
	for i, prev := range out {
		if prev.Path == s.Path && prev.Key == s.Key {
			out[i] = s
			return out
		}
	}
	return append(out, s)
}

func defaults(schema *Schema, set map[string]bool) []*Setting {
	var out []*Setting
	for _, k := range schema.Keys {
		if set[k.Name] || k.Default == nil {
			continue
		}
		out = append(out, &Setting{
			Schema:      schema.ID,
			Path:        schema.Path,
			Key:         k.Name,
			Type:        k.Type,
			Value:       k.Default,
			Default:     k.Default,
			FromDefault: true,
		})
	}
	return out
}

// differs compares by fingerprint. Values without a canonical text form
// count as changed.
func differs(v, def *gvtext.Value) bool {
	if def == nil {
		return true
	}
	a, err := gvtext.Fingerprint(v)
	if err != nil {
		return true
	}
	b, err := gvtext.Fingerprint(def)
	if err != nil {
		return true
	}
	return a != b
}

// IsKeyError reports whether err carries a *KeyError for path and key.
func IsKeyError(err error, path, key string) bool {
	var re *ResolveError
	if !errors.As(err, &re) {
		return false
	}
	for _, k := range re.Keys {
		if k.Path == path && k.Key == key {
			return true
		}
	}
	return false
}
