package fixture

// 商品フィクスチャ（JSON 配列）のスキーマ
const productSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "array",
  "items": {
    "type": "object",
    "required": ["id", "name", "price"],
    "properties": {
      "id":            {"type": "string", "minLength": 1},
      "name":          {"type": "string"},
      "description":   {"type": "string"},
      "brand":         {"type": "string"},
      "category":      {"type": "string"},
      "price":         {"type": "integer", "minimum": 0},
      "discountPrice": {"type": ["integer", "null"]},
      "rating":        {"type": ["number", "null"], "minimum": 0, "maximum": 5},
      "reviewCount":   {"type": "integer", "minimum": 0},
      "stock":         {"type": "integer"},
      "sales":         {"type": "integer", "minimum": 0},
      "featured":      {"type": "boolean"},
      "isActive":      {"type": "boolean"},
      "tags":          {"type": ["array", "null"], "items": {"type": "string"}},
      "createdAt":     {"type": "string"},
      "updatedAt":     {"type": "string"}
    }
  }
}`
