// Package api holds the OpenAPI description of the custody HTTP surface.
package api

import _ "embed"

// OpenAPI is the OpenAPI 3 document in YAML. Requests are validated against it
// and it is served under /swagger.
//
//go:embed openapi.yaml
var OpenAPI []byte
