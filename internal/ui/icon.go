package ui

import _ "embed"

//go:embed assets/icon.png
var iconBytes []byte
