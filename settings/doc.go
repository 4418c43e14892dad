// Package settings reads dconf-style keyfiles and decodes their GVariant
// text values against typed schemas.
//
// Schemas are declared in HCL:
//
//	schema "org.gnome.desktop.interface" {
//	  path = "/org/gnome/desktop/interface/"
//
//	  key "clock-format" {
//	    type    = "s"
//	    default = "24h"
//	  }
//	}
//
// A keyfile is the output of dconf dump:
//
//	[org/gnome/desktop/interface]
//	clock-format='12h'
//
// Resolver.Resolve matches each [section] to the schema with the same path
// and decodes every value with the signature of its key.
package settings
