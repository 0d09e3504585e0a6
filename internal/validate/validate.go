// Package validate はozzo-validationの検証結果を統一エラーフォーマットに変換する。
package validate

import (
	"errors"
	"fmt"
	"sort"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/hitoshi/devconnect/internal/model"
)

// locationBody はフィールドエラーの発生箇所（リクエストボディ）を示す。
const locationBody = "body"

// dateLayouts は日付入力として受け付ける書式。
var dateLayouts = []string{"2006-01-02", time.RFC3339}

// Struct はvalidation.ValidateStructを実行し、検証エラーを*model.APIErrorに変換する。
// フィールド名はjsonタグの値を使用し、名前順に並べる。
func Struct(structPtr any, fields ...*validation.FieldRules) error {
	err := validation.ValidateStruct(structPtr, fields...)
	if err == nil {
		return nil
	}

	var errs validation.Errors
	if !errors.As(err, &errs) {
		// InternalError 等はルール定義の誤りでありクライアント起因ではない
		return fmt.Errorf("failed to validate request: %w", err)
	}

	keys := make([]string, 0, len(errs))
	for k := range errs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fieldErrs := make([]model.FieldError, 0, len(keys))
	for _, k := range keys {
		fieldErrs = append(fieldErrs, model.FieldError{
			Msg:      errs[k].Error(),
			Param:    k,
			Location: locationBody,
		})
	}
	return model.NewValidationError(fieldErrs)
}

// ParseDate は受け付け可能な書式で日付文字列を解析する。
func ParseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date: %q", s)
}

// PastDate は日付文字列が解析可能で、かつ未来日でないことを検証するルールを返す。
// 空文字列は検証しない（Requiredと組み合わせて使用する）。違反時はmsgを返す。
func PastDate(now func() time.Time, msg string) validation.Rule {
	return validation.By(func(value interface{}) error {
		s, _ := value.(string)
		if s == "" {
			return nil
		}
		t, err := ParseDate(s)
		if err != nil || t.After(now()) {
			return errors.New(msg)
		}
		return nil
	})
}

// OptionalDate は日付文字列が空か解析可能であることを検証するルールを返す。
func OptionalDate(msg string) validation.Rule {
	return validation.By(func(value interface{}) error {
		s, _ := value.(string)
		if s == "" {
			return nil
		}
		if _, err := ParseDate(s); err != nil {
			return errors.New(msg)
		}
		return nil
	})
}
