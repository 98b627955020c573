package planner

import "encoding/json"

// extractLargestJSONObject scans text for balanced-brace substrings and
// returns the longest one that parses as a JSON object. Model replies are
// rarely clean JSON — they're wrapped in prose or markdown fences — so
// rather than requiring a specific format, every candidate object is
// tried and the largest valid one wins.
func extractLargestJSONObject(text string) map[string]any {
	var best map[string]any
	bestLen := -1

	depth := 0
	start := -1
	for i, ch := range text {
		switch ch {
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 && start >= 0 {
				candidate := text[start : i+1]
				var obj map[string]any
				if err := json.Unmarshal([]byte(candidate), &obj); err == nil {
					if len(candidate) > bestLen {
						best = obj
						bestLen = len(candidate)
					}
				}
				start = -1
			}
		}
	}
	return best
}
