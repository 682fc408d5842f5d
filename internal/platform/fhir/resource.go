package fhir

// Accessors for resources decoded as map[string]interface{}. All of them
// tolerate missing keys and wrong shapes, returning zero values instead of
// panicking, since resource content comes from an external system.

// Str returns the string at the given key, or "".
func Str(m map[string]interface{}, key string) string {
	if m == nil {
		return ""
	}
	s, _ := m[key].(string)
	return s
}

// Map returns the nested object at the given key, or nil.
func Map(m map[string]interface{}, key string) map[string]interface{} {
	if m == nil {
		return nil
	}
	v, _ := m[key].(map[string]interface{})
	return v
}

// Slice returns the array at the given key as a slice of objects, skipping
// entries that are not objects.
func Slice(m map[string]interface{}, key string) []map[string]interface{} {
	if m == nil {
		return nil
	}
	raw, _ := m[key].([]interface{})
	if raw == nil {
		return nil
	}
	out := make([]map[string]interface{}, 0, len(raw))
	for _, v := range raw {
		if obj, ok := v.(map[string]interface{}); ok {
			out = append(out, obj)
		}
	}
	return out
}

// Num returns the numeric value at the given key, or 0. JSON numbers decode
// as float64; int is accepted for resources built in-process.
func Num(m map[string]interface{}, key string) float64 {
	if m == nil {
		return 0
	}
	switch v := m[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	default:
		return 0
	}
}

// Reference builds a relative reference map, e.g. {"reference": "Patient/1"}.
func Reference(ref string) map[string]interface{} {
	return map[string]interface{}{"reference": ref}
}

// ResourceRef returns the relative reference for a stored resource
// ("Type/id"), or "" when the resource has no id.
func ResourceRef(resource map[string]interface{}) string {
	resourceType := Str(resource, "resourceType")
	id := Str(resource, "id")
	if resourceType == "" || id == "" {
		return ""
	}
	return resourceType + "/" + id
}

// HumanName renders the first name entry of a Patient or Practitioner as
// "Given Family". It falls back to the name's text field, then to the
// resource id.
func HumanName(resource map[string]interface{}) string {
	names := Slice(resource, "name")
	if len(names) > 0 {
		n := names[0]
		full := ""
		if given, _ := n["given"].([]interface{}); len(given) > 0 {
			if g, ok := given[0].(string); ok {
				full = g
			}
		}
		if family := Str(n, "family"); family != "" {
			if full != "" {
				full += " "
			}
			full += family
		}
		if full != "" {
			return full
		}
		if text := Str(n, "text"); text != "" {
			return text
		}
	}
	return Str(resource, "id")
}

// ContactEmail scans telecom entries for one matching the given system and
// use, returning its value or "".
func ContactEmail(resource map[string]interface{}, system, use string) string {
	for _, t := range Slice(resource, "telecom") {
		if Str(t, "system") == system && Str(t, "use") == use {
			return Str(t, "value")
		}
	}
	return ""
}

// HasCoding reports whether the CodeableConcept at the given key contains a
// coding with the exact system and code.
func HasCoding(resource map[string]interface{}, key, system, code string) bool {
	concept := Map(resource, key)
	for _, coding := range Slice(concept, "coding") {
		if Str(coding, "system") == system && Str(coding, "code") == code {
			return true
		}
	}
	return false
}
