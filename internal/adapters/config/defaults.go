package config

import _ "embed"

// DefaultTaskfile is the built-in task file. It reproduces the stylesheet,
// font, image and share-button tasks of a Pelican theme and is also what
// `glaze init` writes.
//
//go:embed default.yaml
var DefaultTaskfile []byte
