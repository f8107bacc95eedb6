package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// FieldValue значение заполненного поля. Конкретный тип зависит от FieldKind:
//
//	BOOLEAN                                  -> BoolValue
//	SELECT_SIMPLE, SELECT_PRICE              -> ChoiceValue
//	MULTI_SELECT                             -> ChoicesValue
//	PHOTO                                    -> PhotoValue
//	TEXT, NUMBER, DATE, MANUAL_PRICE, AI_*   -> TextValue
type FieldValue interface {
	isFieldValue()
}

// BoolValue три состояния: не задано, true, false
type BoolValue struct {
	set   bool
	value bool
}

// UnsetBool возвращает незаданное логическое значение
func UnsetBool() BoolValue { return BoolValue{} }

// BoolOf возвращает заданное логическое значение
func BoolOf(b bool) BoolValue { return BoolValue{set: true, value: b} }

// Get возвращает значение и признак того, что оно задано
func (v BoolValue) Get() (value bool, ok bool) { return v.value, v.set }

func (v BoolValue) MarshalJSON() ([]byte, error) {
	if !v.set {
		return []byte("null"), nil
	}
	return json.Marshal(v.value)
}

func (v *BoolValue) UnmarshalJSON(data []byte) error {
	var b *bool
	if err := json.Unmarshal(data, &b); err != nil {
		return err
	}
	if b == nil {
		*v = UnsetBool()
		return nil
	}
	*v = BoolOf(*b)
	return nil
}

// TextValue текстовый ответ; для NUMBER и MANUAL_PRICE хранит число в виде текста
type TextValue string

// ChoiceValue идентификатор выбранной опции, пустая строка означает отсутствие выбора
type ChoiceValue string

// ChoicesValue идентификаторы выбранных опций
type ChoicesValue []string

// PhotoValue ссылки на прикрепленные изображения
type PhotoValue []string

func (BoolValue) isFieldValue()    {}
func (TextValue) isFieldValue()    {}
func (ChoiceValue) isFieldValue()  {}
func (ChoicesValue) isFieldValue() {}
func (PhotoValue) isFieldValue()   {}

func (v ChoicesValue) MarshalJSON() ([]byte, error) {
	if v == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(v))
}

func (v PhotoValue) MarshalJSON() ([]byte, error) {
	if v == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(v))
}

// EmptyValue начальное значение поля при создании инспекции
func EmptyValue(kind FieldKind) FieldValue {
	switch kind {
	case FieldBoolean:
		return UnsetBool()
	case FieldMultiSelect:
		return ChoicesValue{}
	case FieldSelectSimple, FieldSelectPrice:
		return ChoiceValue("")
	case FieldPhoto:
		return PhotoValue{}
	default:
		return TextValue("")
	}
}

// Accepts проверяет, что значение имеет тип, ожидаемый для kind
func (k FieldKind) Accepts(v FieldValue) bool {
	switch v.(type) {
	case BoolValue:
		return k == FieldBoolean
	case ChoiceValue:
		return k == FieldSelectSimple || k == FieldSelectPrice
	case ChoicesValue:
		return k == FieldMultiSelect
	case PhotoValue:
		return k == FieldPhoto
	case TextValue:
		return k.IsTextual()
	default:
		return false
	}
}

// DecodeValue разбирает JSON значение в тип, соответствующий kind.
// null и пустой ввод дают EmptyValue(kind).
func DecodeValue(kind FieldKind, raw json.RawMessage) (FieldValue, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return EmptyValue(kind), nil
	}

	mismatch := func(err error) error {
		return fmt.Errorf("%w: %s: %v", ErrValueKindMismatch, kind, err)
	}

	switch kind {
	case FieldBoolean:
		var v BoolValue
		if err := json.Unmarshal(trimmed, &v); err != nil {
			return nil, mismatch(err)
		}
		return v, nil
	case FieldSelectSimple, FieldSelectPrice:
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return nil, mismatch(err)
		}
		return ChoiceValue(s), nil
	case FieldMultiSelect:
		var ids []string
		if err := json.Unmarshal(trimmed, &ids); err != nil {
			return nil, mismatch(err)
		}
		return ChoicesValue(ids), nil
	case FieldPhoto:
		// Допускаем одну ссылку строкой или список ссылок
		var single string
		if err := json.Unmarshal(trimmed, &single); err == nil {
			if single == "" {
				return PhotoValue{}, nil
			}
			return PhotoValue{single}, nil
		}
		var refs []string
		if err := json.Unmarshal(trimmed, &refs); err != nil {
			return nil, mismatch(err)
		}
		return PhotoValue(refs), nil
	default:
		if !kind.Valid() {
			return nil, fmt.Errorf("%w: %s", ErrInvalidFieldKind, kind)
		}
		var s string
		if err := json.Unmarshal(trimmed, &s); err == nil {
			return TextValue(s), nil
		}
		// Числовые поля могут прийти числом JSON
		var n json.Number
		if err := json.Unmarshal(trimmed, &n); err != nil {
			return nil, mismatch(err)
		}
		return TextValue(n.String()), nil
	}
}
