package license

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// DefaultIncludedUsers — количество пользователей, если ни одна фича не
// распознана как лимит пользователей. При смене схемы фич наверху это
// значение может молча занижать стоимость, поэтому выбор по умолчанию
// логируется на уровне каталога.
const DefaultIncludedUsers = 1

var legacyUsersRe = regexp.MustCompile(`(?i)(\d+)\s*users?`)

type seatCandidate struct {
	key      string
	value    float64
	priority int
}

// IncludedUsers извлекает количество пользователей плана из списка фич.
// Без кандидатов возвращается DefaultIncludedUsers.
func IncludedUsers(features FeatureList) int {
	n, _ := ExtractIncludedUsers(features)
	return n
}

// ExtractIncludedUsers извлекает количество пользователей плана из списка
// фич и сообщает, нашлась ли подходящая фича. Кандидаты собираются по
// эвристикам для каждой формы списка, сортируются по приоритету (точные
// ключи user-limit/users выше), затем по значению по убыванию.
// Функция детерминирована и никогда не завершается ошибкой.
func ExtractIncludedUsers(features FeatureList) (int, bool) {
	var candidates []seatCandidate

	switch features.Shape {
	case ShapeArray:
		candidates = arrayCandidates(features.Entries)
	case ShapeMap:
		candidates = mapCandidates(features.Values)
	}

	if len(candidates) == 0 {
		return DefaultIncludedUsers, false
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].priority != candidates[j].priority {
			return candidates[i].priority < candidates[j].priority
		}
		return candidates[i].value > candidates[j].value
	})
	return int(candidates[0].value), true
}

func arrayCandidates(entries []FeatureEntry) []seatCandidate {
	var candidates []seatCandidate

	for _, entry := range entries {
		if entry.IsText {
			// Legacy-формат: "Includes 10 users".
			m := legacyUsersRe.FindStringSubmatch(entry.Text)
			if m == nil {
				continue
			}
			n, err := strconv.Atoi(m[1])
			if err != nil {
				continue
			}
			candidates = append(candidates, seatCandidate{
				key:      "string-match",
				value:    float64(n),
				priority: 1,
			})
			continue
		}

		// Кандидатами считаются только лимиты с числовым значением.
		if entry.FeatureType != "limit" {
			continue
		}
		value := entry.LimitValue
		if value == nil {
			value = entry.Value
		}
		n, ok := numericValue(value)
		if !ok {
			continue
		}

		label := strings.ToLower(firstNonEmpty(entry.UILabel, entry.DisplayName))
		key := strings.ToLower(entry.FeatureKey)
		slug := strings.ToLower(entry.FeatureSlug)

		isUserFeature := slug == "user-limit" ||
			key == "user-limit" ||
			strings.Contains(slug, "user") ||
			strings.Contains(key, "user") ||
			strings.Contains(key, "seat") ||
			strings.Contains(slug, "seat") ||
			strings.Contains(label, "user") ||
			strings.Contains(label, "seat") ||
			(strings.Contains(label, "includes") && strings.Contains(label, "user"))
		if !isUserFeature {
			continue
		}

		priority := 2
		if slug == "user-limit" || key == "user-limit" || slug == "users" || key == "users" {
			priority = 1
		}
		candidates = append(candidates, seatCandidate{
			key:      firstNonEmpty(slug, key, label),
			value:    n,
			priority: priority,
		})
	}
	return candidates
}

func mapCandidates(values map[string]any) []seatCandidate {
	var candidates []seatCandidate

	for slug, raw := range values {
		slugLower := strings.ToLower(slug)

		// Ключи вида admin-panel-users исключаются, чтобы лимит
		// админ-панели не был принят за количество пользователей.
		isUserFeature := slugLower == "user-limit" ||
			slugLower == "users" ||
			slugLower == "user" ||
			slugLower == "seats" ||
			strings.Contains(slugLower, "user-limit") ||
			strings.Contains(slugLower, "user-count") ||
			(strings.Contains(slugLower, "user") &&
				!strings.Contains(slugLower, "admin") &&
				!strings.Contains(slugLower, "panel"))
		if !isUserFeature {
			continue
		}

		n, ok := numericValue(raw)
		if !ok || n <= 0 {
			continue
		}

		priority := 2
		if slugLower == "user-limit" || slugLower == "users" {
			priority = 1
		}
		candidates = append(candidates, seatCandidate{
			key:      slug,
			value:    n,
			priority: priority,
		})
	}
	return candidates
}

func firstNonEmpty(ss ...string) string {
	for _, s := range ss {
		if s != "" {
			return s
		}
	}
	return ""
}
