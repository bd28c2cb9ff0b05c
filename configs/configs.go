// Package configs embeds the pattern files shipped with MelodyDNA so they can be
// referenced as "builtin:<name>" without a checkout of the repository.
package configs

import "embed"

//go:embed patterns/*.json patterns/*.yaml
var Patterns embed.FS
