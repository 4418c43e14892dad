package main

import (
	"errors"

	"github.com/Neumenon/gvtext/gvtext"
	"github.com/Neumenon/gvtext/settings"
	"github.com/spf13/cobra"
	"golang.org/x/mod/semver"
)

// version is set at build time with
// -ldflags "-X main.version=v1.2.3".
var version = "v0.1.0"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version info",
		Args:  argsBetween(0, 0),
		Run: func(cmd *cobra.Command, _ []string) {
			v := "(devel)"
			if semver.IsValid(version) {
				v = semver.Canonical(version)
			}
			cmd.Printf("gvtext %s\n", v)
		},
	}
}

// sig: validate a signature and print its canonical form or tree
func newSigCmd() *cobra.Command {
	var tree bool
	cmd := &cobra.Command{
		Use:   "sig SIGNATURE",
		Short: "Validate a type signature and print it in canonical form",
		Args:  argsBetween(1, 1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := gvtext.ParseSignature(args[0])
			if err != nil {
				return failure("%v", err)
			}
			if tree {
				cmd.Print(t.Describe())
				return nil
			}
			cmd.Println(t.String())
			return nil
		},
	}
	cmd.Flags().BoolVar(&tree, "tree", false, "Print the descriptor tree instead of the signature")
	return cmd
}

// decode: value text -> canonical text or JSON
func newDecodeCmd(g *globalFlags) *cobra.Command {
	var (
		sig    string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "decode -t SIG [TEXT]",
		Short: "Decode value text against a signature",
		Long: `Decode value text against a signature and print it in canonical form.

Reads TEXT from the argument, or from stdin when it is omitted or "-".`,
		Args: argsBetween(0, 1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := parseTypeFlag(sig)
			if err != nil {
				return err
			}

			var text string
			if len(args) == 1 && args[0] != "-" {
				text = args[0]
			} else {
				data, err := readInput(cmd, "")
				if err != nil {
					return err
				}
				text = string(data)
			}

			v, err := gvtext.DecodeType(text, t)
			if err != nil {
				return failure("decode: %v", err)
			}
			g.logger.Debug("Decoded value.", "signature", t.String(), "kind", v.Kind().String())

			if asJSON {
				out, err := gvtext.ToJSON(v)
				if err != nil {
					return failure("to json: %v", err)
				}
				cmd.Println(string(out))
				return nil
			}
			out, err := gvtext.Encode(v)
			if err != nil {
				return failure("encode: %v", err)
			}
			cmd.Println(out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&sig, "type", "t", "", "Type signature of the value (required)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of value text")
	return cmd
}

// encode: JSON -> canonical text
func newEncodeCmd(g *globalFlags) *cobra.Command {
	var sig string
	cmd := &cobra.Command{
		Use:   "encode -t SIG [FILE]",
		Short: "Encode a JSON document as value text",
		Args:  argsBetween(0, 1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := parseTypeFlag(sig)
			if err != nil {
				return err
			}
			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			data, err := readInput(cmd, name)
			if err != nil {
				return err
			}

			v, err := gvtext.DecodeJSON(data, t)
			if err != nil {
				return failure("from json: %v", err)
			}
			out, err := gvtext.Encode(v)
			if err != nil {
				return failure("encode: %v", err)
			}
			g.logger.Debug("Encoded value.", "signature", t.String(), "bytes", len(out))
			cmd.Println(out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&sig, "type", "t", "", "Type signature of the value (required)")
	return cmd
}

// check: resolve a dconf dump against HCL schemas
func newCheckCmd(g *globalFlags) *cobra.Command {
	var (
		schemaFiles  []string
		withDefaults bool
		changedOnly  bool
	)
	cmd := &cobra.Command{
		Use:   "check -s SCHEMA.hcl [DUMP]",
		Short: "Decode a dconf dump against settings schemas",
		Long: `Decode every key of a dconf dump with the signature its schema declares
and print the dump in canonical form. Exits with status 1 if any key fails.

Reads DUMP from the argument, or from stdin when it is omitted or "-".`,
		Args: argsBetween(0, 1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(schemaFiles) == 0 {
				return usageError("check: at least one --schema is required")
			}
			schemas := settings.NewSchemas()
			for _, path := range schemaFiles {
				ss, err := settings.LoadSchemaFile(path)
				if err != nil {
					return failure("%v", err)
				}
				if err := schemas.Merge(ss); err != nil {
					return failure("%v", err)
				}
			}
			g.logger.Info("Loaded schemas.", "files", len(schemaFiles), "schemas", schemas.Len())

			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			r, err := openInput(cmd, name)
			if err != nil {
				return err
			}
			defer r.Close()
			kf, err := settings.ReadKeyfile(r)
			if err != nil {
				return failure("%v", err)
			}

			resolver := &settings.Resolver{Schemas: schemas, Logger: g.logger}
			resolved, resolveErr := resolver.Resolve(kf, withDefaults)
			if changedOnly {
				resolved = filterChanged(resolved)
			}
			if err := settings.WriteKeyfile(cmd.OutOrStdout(), resolved); err != nil {
				return failure("%v", err)
			}

			var rerr *settings.ResolveError
			if errors.As(resolveErr, &rerr) {
				return failure("%v", rerr)
			}
			return resolveErr
		},
	}
	cmd.Flags().StringArrayVarP(&schemaFiles, "schema", "s", nil, "HCL schema file (repeatable)")
	cmd.Flags().BoolVar(&withDefaults, "defaults", false, "Include schema defaults for keys the dump does not set")
	cmd.Flags().BoolVar(&changedOnly, "changed", false, "Only print keys whose value differs from the default")
	return cmd
}

func parseTypeFlag(sig string) (*gvtext.Type, error) {
	if sig == "" {
		return nil, usageError("required flag --type not set")
	}
	t, err := gvtext.ParseSignature(sig)
	if err != nil {
		return nil, usageError("%v", err)
	}
	return t, nil
}

func filterChanged(in []*settings.Setting) []*settings.Setting {
	out := in[:0]
	for _, s := range in {
		if s.Changed {
			out = append(out, s)
		}
	}
	return out
}
