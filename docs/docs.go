// Package docs registers the OpenAPI document served by the swagger UI.
package docs

import (
	_ "embed"

	"github.com/swaggo/swag/v2"
)

//go:embed swagger.json
var document string

// Document is the swag instance backing /swagger and /api-docs
type Document struct{}

// ReadDoc returns the OpenAPI document as JSON
func (Document) ReadDoc() string {
	return document
}

// SwaggerInfo is registered under the default swag instance name
var SwaggerInfo = Document{}

func init() {
	swag.Register(swag.Name, SwaggerInfo)
}
