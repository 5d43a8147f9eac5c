package upstream

import (
	"encoding/json"

	"github.com/xeipuuv/gojsonschema"
)

// errorBodySchema describes the upstream error envelope:
//
//	{"error": {"code": "...", "description": "..."}}
const errorBodySchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["error"],
	"properties": {
		"error": {"type": "object"}
	}
}`

var errorSchema = mustCompileSchema(errorBodySchema)

func mustCompileSchema(source string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(source))
	if err != nil {
		panic("upstream: invalid error body schema: " + err.Error())
	}
	return schema
}

// nestedErrorObject returns the "error" member of body when body is an
// upstream error envelope.
func nestedErrorObject(body []byte) (json.RawMessage, bool) {
	if len(body) == 0 {
		return nil, false
	}

	result, err := errorSchema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil || !result.Valid() {
		return nil, false
	}

	var envelope struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, false
	}
	return envelope.Error, true
}
