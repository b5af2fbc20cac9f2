// Copyright © 2024 The cstlint authors

// Package docs embeds reference text shown by the CLI.
package docs

import _ "embed"

//go:embed config.md
var ConfigGuide string
