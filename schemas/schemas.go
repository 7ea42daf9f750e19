// Package schemas embeds the OpenAPI contract enforced by the vellum server.
package schemas

import _ "embed"

// OpenAPISpec is the raw openapi.yaml document. The server validates inbound
// requests against it at the routing layer.
//
//go:embed openapi.yaml
var OpenAPISpec []byte
