package streams

// JSON schema fragment helpers. Every property admits null: Linnworks
// omits or nulls most optional fields.

func objectSchema(properties map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"type":       "object",
		"properties": properties,
	}
}

func prop(types ...string) map[string]interface{} {
	return map[string]interface{}{"type": append(types, "null")}
}

func datetimeProp() map[string]interface{} {
	return map[string]interface{}{
		"type":   []string{"string", "null"},
		"format": "date-time",
	}
}

func objectProp() map[string]interface{} {
	return prop("object", "string")
}

func arrayProp() map[string]interface{} {
	return prop("array", "string")
}
