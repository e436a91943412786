// Package stdlib embeds the slip prelude, loaded into every runtime unless
// disabled.
package stdlib

import _ "embed"

//go:embed prelude.slip
var Prelude string
