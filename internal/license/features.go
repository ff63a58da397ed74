// Package license реализует клиент внешней системы лицензий и разбор её
// ответов: каталог тарифов, активная лицензия клиента и создание записи
// покупки. Система лицензий не гарантирует стабильную форму списка фич,
// поэтому список декодируется на границе как размеченное объединение.
package license

import "encoding/json"

// Shape — форма, в которой система лицензий прислала список фич.
type Shape int

// Возможные формы списка фич.
const (
	ShapeEmpty Shape = iota // фичи отсутствуют или не распознаны
	ShapeArray              // обогащённый список (v1, feature registry)
	ShapeMap                // сырая карта slug -> значение (v2, validatedFeatureMap)
)

// FeatureEntry — элемент обогащённого списка фич. Элемент приходит либо
// структурой из реестра фич, либо строкой legacy-формата
// ("Includes 10 users") — тогда заполнено только поле Text.
type FeatureEntry struct {
	FeatureType string `json:"featureType"`
	FeatureKey  string `json:"featureKey"`
	FeatureSlug string `json:"featureSlug"`
	UILabel     string `json:"uiLabel"`
	DisplayName string `json:"displayName"`
	LimitValue  any    `json:"limitValue"`
	Value       any    `json:"value"`

	Text   string `json:"-"`
	IsText bool   `json:"-"`
}

// UnmarshalJSON принимает как структурный элемент, так и legacy-строку.
func (e *FeatureEntry) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*e = FeatureEntry{Text: s, IsText: true}
		return nil
	}

	type alias FeatureEntry
	var a alias
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	*e = FeatureEntry(a)
	return nil
}

// FeatureList — размеченное объединение двух форм списка фич.
// Декодирование никогда не возвращает ошибку: сначала пробуем форму
// массива, затем форму карты, иначе список считается пустым. Благодаря
// этому ветки извлечения количества пользователей исчерпывающие.
type FeatureList struct {
	Shape   Shape
	Entries []FeatureEntry
	Values  map[string]any
}

// UnmarshalJSON пробует обе формы и деградирует до пустого списка.
func (f *FeatureList) UnmarshalJSON(b []byte) error {
	var entries []FeatureEntry
	if err := json.Unmarshal(b, &entries); err == nil {
		*f = FeatureList{Shape: ShapeArray, Entries: entries}
		return nil
	}

	var values map[string]any
	if err := json.Unmarshal(b, &values); err == nil && values != nil {
		*f = FeatureList{Shape: ShapeMap, Values: values}
		return nil
	}

	*f = FeatureList{Shape: ShapeEmpty}
	return nil
}

// numericValue приводит нестрого типизированное значение фичи к числу.
// JSON-числа декодируются в float64, но на всякий случай принимаются
// и целочисленные значения.
func numericValue(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
