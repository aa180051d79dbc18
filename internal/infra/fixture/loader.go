package fixture

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"storefront/internal/domain/model"

	"github.com/xeipuuv/gojsonschema"
)

var (
	schemaOnce sync.Once
	schema     *gojsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*gojsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = gojsonschema.NewSchema(gojsonschema.NewStringLoader(productSchema))
	})
	return schema, schemaErr
}

// Parse はスキーマ検証してから商品に変換する。
// isActive が無い行は公開扱い。
func Parse(data []byte) ([]model.Product, error) {
	s, err := compiledSchema()
	if err != nil {
		return nil, fmt.Errorf("invalid json schema: %w", err)
	}

	result, err := s.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("schema validation error: %w", err)
	}
	if !result.Valid() {
		errs := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			errs = append(errs, desc.String())
		}
		return nil, fmt.Errorf("fixture invalid against schema: %s", strings.Join(errs, "; "))
	}

	var rows []row
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("decode fixture: %w", err)
	}

	products := make([]model.Product, 0, len(rows))
	for _, r := range rows {
		p := r.Product
		p.IsActive = r.IsActive == nil || *r.IsActive
		products = append(products, p)
	}
	return products, nil
}

// LoadFile はファイルを読んで Parse する
func LoadFile(path string) ([]model.Product, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	products, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return products, nil
}

// isActive の省略と false を区別する
type row struct {
	model.Product
	IsActive *bool `json:"isActive"`
}
