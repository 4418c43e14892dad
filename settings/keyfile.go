package settings

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/Neumenon/gvtext/gvtext"
)

// Keyfile is a parsed dconf dump: sections of key=value lines. Values are
// kept as raw GVariant text.
type Keyfile struct {
	Sections []*Section
}

// Section is one [path] group of a keyfile.
type Section struct {
	Name    string // As written between the brackets, e.g. org/gnome/shell
	Line    int
	Entries []*Line
}

// Line is one key=value entry.
type Line struct {
	Key   string
	Value string
	Line  int
}

// Path returns the absolute settings path of the section: [a/b] is /a/b/
// and [/] is /.
func (s *Section) Path() string {
	return SectionPath(s.Name)
}

// SectionPath converts a keyfile section name to a settings path.
func SectionPath(name string) string {
	name = strings.Trim(name, "/")
	if name == "" {
		return "/"
	}
	return "/" + name + "/"
}

// SectionName converts a settings path to a keyfile section name.
func SectionName(path string) string {
	name := strings.Trim(path, "/")
	if name == "" {
		return "/"
	}
	return name
}

// Section returns the section with the given name, or nil.
func (kf *Keyfile) Section(name string) *Section {
	for _, s := range kf.Sections {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// KeyfileError reports a malformed keyfile line.
type KeyfileError struct {
	Line    int
	Message string
}

func (e *KeyfileError) Error() string {
	return fmt.Sprintf("settings: keyfile line %d: %s", e.Line, e.Message)
}

// ReadKeyfile parses a dconf dump. Blank lines and lines starting with # or
// ; are ignored. A repeated section header continues the earlier section.
func ReadKeyfile(r io.Reader) (*Keyfile, error) {
	kf := &Keyfile{}
	var cur *Section

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for n := 1; sc.Scan(); n++ {
		line := sc.Text()
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "", trimmed[0] == '#', trimmed[0] == ';':
			continue

		case trimmed[0] == '[':
			if !strings.HasSuffix(trimmed, "]") {
				return nil, &KeyfileError{Line: n, Message: "unterminated section header"}
			}
			name := strings.TrimSpace(trimmed[1 : len(trimmed)-1])
			if name == "" {
				return nil, &KeyfileError{Line: n, Message: "empty section name"}
			}
			if cur = kf.Section(name); cur == nil {
				cur = &Section{Name: name, Line: n}
				kf.Sections = append(kf.Sections, cur)
			}

		default:
			if cur == nil {
				return nil, &KeyfileError{Line: n, Message: "key outside of a section"}
			}
			eq := strings.IndexByte(line, '=')
			if eq < 0 {
				return nil, &KeyfileError{Line: n, Message: "expected key=value"}
			}
			key := strings.TrimSpace(line[:eq])
			if key == "" {
				return nil, &KeyfileError{Line: n, Message: "empty key"}
			}
			cur.Entries = append(cur.Entries, &Line{Key: key, Value: line[eq+1:], Line: n})
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("settings: reading keyfile: %w", err)
	}
	return kf, nil
}

// WriteKeyfile writes settings as a dconf dump in canonical value text.
// Sections appear in the order their first setting appears.
func WriteKeyfile(w io.Writer, settings []*Setting) error {
	var order []string
	groups := make(map[string][]*Setting)
	for _, s := range settings {
		if _, ok := groups[s.Path]; !ok {
			order = append(order, s.Path)
		}
		groups[s.Path] = append(groups[s.Path], s)
	}

	bw := bufio.NewWriter(w)
	for i, path := range order {
		if i > 0 {
			bw.WriteByte('\n')
		}
		fmt.Fprintf(bw, "[%s]\n", SectionName(path))
		for _, s := range groups[path] {
			text, err := gvtext.Encode(s.Value)
			if err != nil {
				return fmt.Errorf("settings: %s%s: %w", s.Path, s.Key, err)
			}
			fmt.Fprintf(bw, "%s=%s\n", s.Key, text)
		}
	}
	return bw.Flush()
}
