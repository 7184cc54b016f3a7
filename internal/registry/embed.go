package registry

import _ "embed"

// demoSnapshot is the bundled reference-case snapshot used when no operator
// snapshot is configured. It keeps demo mode fully offline.
//
//go:embed snapshot/cases.yaml
var demoSnapshot []byte
