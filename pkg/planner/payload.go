package planner

import "github.com/opshound/ec2-rca/pkg/model"

// Payload field accessors tolerant of the type variety JSON and YAML
// decoding produce (float64 vs int, []any of map[string]any).

func payloadString(p model.Payload, key string) (string, bool) {
	v, ok := p[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func payloadBool(p model.Payload, key string) (bool, bool) {
	v, ok := p[key]
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

func payloadNumber(p model.Payload, key string) (float64, bool) {
	v, ok := p[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

func payloadList(p model.Payload, key string) ([]model.Payload, bool) {
	v, ok := p[key]
	if !ok {
		return nil, false
	}
	raw, ok := v.([]any)
	if !ok {
		// Direct construction in tests and stubs.
		if typed, ok := v.([]model.Payload); ok {
			return typed, true
		}
		if maps, ok := v.([]map[string]any); ok {
			out := make([]model.Payload, len(maps))
			for i, m := range maps {
				out[i] = model.Payload(m)
			}
			return out, true
		}
		return nil, false
	}
	out := make([]model.Payload, 0, len(raw))
	for _, item := range raw {
		if m, ok := item.(map[string]any); ok {
			out = append(out, model.Payload(m))
		}
	}
	return out, true
}
