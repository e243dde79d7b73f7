package api

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed api.yaml
var rawSpec []byte

var (
	swaggerOnce sync.Once
	swagger     *openapi3.T
	swaggerErr  error
)

// GetSwagger returns the parsed OpenAPI document describing this API.
func GetSwagger() (*openapi3.T, error) {
	swaggerOnce.Do(func() {
		loader := openapi3.NewLoader()

		swagger, swaggerErr = loader.LoadFromData(rawSpec)
		if swaggerErr != nil {
			swaggerErr = fmt.Errorf("error loading openapi document: %w", swaggerErr)
		}
	})

	return swagger, swaggerErr
}
