package qdrant

import (
	"fmt"

	"github.com/qdrant/go-client/qdrant"
)

// PayloadToMap converts a point payload into plain Go values. Nested
// struct values (e.g. a "metadata" mapping) become map[string]any so
// callers can inspect them without touching protobuf types.
func PayloadToMap(payload map[string]*qdrant.Value) map[string]any {
	result := make(map[string]any, len(payload))
	for k, v := range payload {
		result[k] = valueToInterface(v)
	}
	return result
}

func valueToInterface(v *qdrant.Value) any {
	if v == nil {
		return nil
	}
	switch val := v.Kind.(type) {
	case *qdrant.Value_StringValue:
		return val.StringValue
	case *qdrant.Value_IntegerValue:
		return val.IntegerValue
	case *qdrant.Value_DoubleValue:
		return val.DoubleValue
	case *qdrant.Value_BoolValue:
		return val.BoolValue
	case *qdrant.Value_StructValue:
		return PayloadToMap(val.StructValue.GetFields())
	case *qdrant.Value_ListValue:
		items := make([]any, 0, len(val.ListValue.GetValues()))
		for _, item := range val.ListValue.GetValues() {
			items = append(items, valueToInterface(item))
		}
		return items
	default:
		return fmt.Sprintf("%v", v)
	}
}

// MapToPayload is the inverse of PayloadToMap, used by tests to build
// realistic point payloads.
func MapToPayload(m map[string]any) map[string]*qdrant.Value {
	result := make(map[string]*qdrant.Value, len(m))
	for k, v := range m {
		result[k] = interfaceToValue(v)
	}
	return result
}

func interfaceToValue(i any) *qdrant.Value {
	switch v := i.(type) {
	case string:
		return &qdrant.Value{Kind: &qdrant.Value_StringValue{StringValue: v}}
	case int:
		return &qdrant.Value{Kind: &qdrant.Value_IntegerValue{IntegerValue: int64(v)}}
	case int64:
		return &qdrant.Value{Kind: &qdrant.Value_IntegerValue{IntegerValue: v}}
	case float64:
		return &qdrant.Value{Kind: &qdrant.Value_DoubleValue{DoubleValue: v}}
	case bool:
		return &qdrant.Value{Kind: &qdrant.Value_BoolValue{BoolValue: v}}
	case map[string]any:
		return &qdrant.Value{Kind: &qdrant.Value_StructValue{
			StructValue: &qdrant.Struct{Fields: MapToPayload(v)},
		}}
	case []any:
		values := make([]*qdrant.Value, 0, len(v))
		for _, item := range v {
			values = append(values, interfaceToValue(item))
		}
		return &qdrant.Value{Kind: &qdrant.Value_ListValue{
			ListValue: &qdrant.ListValue{Values: values},
		}}
	default:
		return &qdrant.Value{Kind: &qdrant.Value_StringValue{StringValue: fmt.Sprintf("%v", v)}}
	}
}
