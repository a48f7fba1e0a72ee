// Пакет openapi - OpenAPI-контракт clinic-api.
package openapi

import _ "embed"

// Spec - OpenAPI 3 документ clinic-api (YAML).
//
//go:embed openapi.yaml
var Spec []byte
