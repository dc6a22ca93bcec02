package plugins

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"
)

// toolSpecToToolInfo converts a ToolSpec to an Eino schema.ToolInfo.
func toolSpecToToolInfo(spec *ToolSpec) *schema.ToolInfo {
	info := &schema.ToolInfo{
		Name: spec.Name,
		Desc: spec.Description,
	}

	if len(spec.Parameters) > 0 {
		params := make(map[string]*schema.ParameterInfo, len(spec.Parameters))
		for name, p := range spec.Parameters {
			params[name] = paramSpecToParameterInfo(p)
		}
		info.ParamsOneOf = schema.NewParamsOneOfByParams(params)
	}

	return info
}

func paramSpecToParameterInfo(p ParamSpec) *schema.ParameterInfo {
	info := &schema.ParameterInfo{
		Type:     paramTypeToDataType(p.Type),
		Desc:     p.Description,
		Required: p.Required,
		Enum:     p.Enum,
	}
	if p.Items != nil {
		info.ElemInfo = paramSpecToParameterInfo(*p.Items)
	}
	if len(p.Properties) > 0 {
		info.SubParams = make(map[string]*schema.ParameterInfo, len(p.Properties))
		for name, sub := range p.Properties {
			info.SubParams[name] = paramSpecToParameterInfo(sub)
		}
	}
	return info
}

// paramTypeToDataType maps string type names to Eino DataType constants.
func paramTypeToDataType(t string) schema.DataType {
	switch t {
	case "string":
		return schema.String
	case "number":
		return schema.Number
	case "integer":
		return schema.Integer
	case "boolean":
		return schema.Boolean
	case "array":
		return schema.Array
	case "object":
		return schema.Object
	default:
		return schema.String
	}
}

// parseInput decodes tool arguments. Empty arguments decode to the zero value.
// Numbers in untyped fields stay json.Number so large integers keep every digit.
func parseInput(toolName, argumentsInJSON string, v any) error {
	if argumentsInJSON == "" || argumentsInJSON == "null" {
		return nil
	}
	dec := json.NewDecoder(strings.NewReader(argumentsInJSON))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%s: parse input: %w", toolName, err)
	}
	if dec.More() {
		return fmt.Errorf("%s: parse input: unexpected data after arguments", toolName)
	}
	return nil
}
