package profile

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/hitoshi/devconnect/internal/validate"
)

// Skills はJSON配列またはカンマ区切り文字列のどちらでも受け付けるスキル一覧。
// 復号時に各要素の前後空白を除去し、空要素を取り除く。
type Skills []string

// UnmarshalJSON はJSON配列またはカンマ区切り文字列からSkillsを復号する。
func (s *Skills) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*s = normalizeSkills(list)
		return nil
	}

	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("skills must be a string or an array of strings: %w", err)
	}
	*s = ParseSkills(raw)
	return nil
}

// ParseSkills はカンマ区切り文字列をスキル一覧に変換する。
func ParseSkills(raw string) Skills {
	return normalizeSkills(strings.Split(raw, ","))
}

func normalizeSkills(list []string) Skills {
	out := Skills{}
	for _, s := range list {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// ProfileInput はプロフィール作成・更新リクエストの入力。
// SNSリンクはリクエストのトップレベルで受け取る。
type ProfileInput struct {
	Company        string `json:"company"`
	Website        string `json:"website"`
	Location       string `json:"location"`
	Status         string `json:"status"`
	Skills         Skills `json:"skills"`
	Bio            string `json:"bio"`
	GitHubUsername string `json:"githubusername"`
	YouTube        string `json:"youtube"`
	Twitter        string `json:"twitter"`
	Facebook       string `json:"facebook"`
	LinkedIn       string `json:"linkedin"`
	Instagram      string `json:"instagram"`
}

// Validate はステータスとスキルが指定されていることを検証する。
func (in *ProfileInput) Validate() error {
	return validate.Struct(in,
		validation.Field(&in.Status, validation.Required.Error("Status is required")),
		validation.Field(&in.Skills, validation.Required.Error("Skills is required")),
	)
}

// ExperienceInput は職歴追加リクエストの入力。日付は文字列で受け取る。
type ExperienceInput struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	From        string `json:"from"`
	To          string `json:"to"`
	Current     bool   `json:"current"`
	Description string `json:"description"`
}

// Validate は職歴入力を検証する。開始日は未来日であってはならない。
func (in *ExperienceInput) Validate(now func() time.Time) error {
	const fromMsg = "From date is required and needs to be from the past"
	return validate.Struct(in,
		validation.Field(&in.Title, validation.Required.Error("Title is required")),
		validation.Field(&in.Company, validation.Required.Error("Company is required")),
		validation.Field(&in.From, validation.Required.Error(fromMsg), validate.PastDate(now, fromMsg)),
		validation.Field(&in.To, validate.OptionalDate("To date must be a valid date")),
	)
}

// EducationInput は学歴追加リクエストの入力。
type EducationInput struct {
	School       string `json:"school"`
	Degree       string `json:"degree"`
	FieldOfStudy string `json:"fieldofstudy"`
	From         string `json:"from"`
	To           string `json:"to"`
	Current      bool   `json:"current"`
	Description  string `json:"description"`
}

// Validate は学歴入力を検証する。
func (in *EducationInput) Validate(now func() time.Time) error {
	const fromMsg = "From date is required and needs to be from the past"
	return validate.Struct(in,
		validation.Field(&in.School, validation.Required.Error("School is required")),
		validation.Field(&in.Degree, validation.Required.Error("Degree is required")),
		validation.Field(&in.FieldOfStudy, validation.Required.Error("Field of study is required")),
		validation.Field(&in.From, validation.Required.Error(fromMsg), validate.PastDate(now, fromMsg)),
		validation.Field(&in.To, validate.OptionalDate("To date must be a valid date")),
	)
}

// parseRange は検証済みの開始日・終了日文字列を解析する。
func parseRange(from, to string) (time.Time, *time.Time, error) {
	f, err := validate.ParseDate(from)
	if err != nil {
		return time.Time{}, nil, err
	}
	if to == "" {
		return f.UTC(), nil, nil
	}
	t, err := validate.ParseDate(to)
	if err != nil {
		return time.Time{}, nil, err
	}
	t = t.UTC()
	return f.UTC(), &t, nil
}
