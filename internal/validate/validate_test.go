package validate

import (
	"errors"
	"testing"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/hitoshi/devconnect/internal/model"
)

type sampleRequest struct {
	Title   string `json:"title"`
	Company string `json:"company"`
	From    string `json:"from"`
}

func fixedNow() time.Time {
	return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
}

func validateSample(req *sampleRequest) error {
	return Struct(req,
		validation.Field(&req.Title, validation.Required.Error("Title is required")),
		validation.Field(&req.Company, validation.Required.Error("Company is required")),
		validation.Field(&req.From,
			validation.Required.Error("From date is required"),
			PastDate(fixedNow, "From date is required"),
		),
	)
}

func TestStruct_Valid_ReturnsNil(t *testing.T) {
	req := &sampleRequest{Title: "Engineer", Company: "Acme", From: "2020-01-01"}
	if err := validateSample(req); err != nil {
		t.Errorf("err = %v, want nil", err)
	}
}

func TestStruct_MissingFields_ReturnsFieldErrorsSortedByName(t *testing.T) {
	req := &sampleRequest{Title: "Engineer"}

	err := validateSample(req)
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *model.APIError", err)
	}
	if apiErr.Code != model.ErrCodeValidationFailed {
		t.Errorf("Code = %q, want %q", apiErr.Code, model.ErrCodeValidationFailed)
	}
	if len(apiErr.Errors) != 2 {
		t.Fatalf("len(Errors) = %d, want 2", len(apiErr.Errors))
	}
	if apiErr.Errors[0].Param != "company" || apiErr.Errors[0].Msg != "Company is required" {
		t.Errorf("Errors[0] = %+v, want company / Company is required", apiErr.Errors[0])
	}
	if apiErr.Errors[1].Param != "from" {
		t.Errorf("Errors[1].Param = %q, want from", apiErr.Errors[1].Param)
	}
	if apiErr.Errors[0].Location != "body" {
		t.Errorf("Location = %q, want body", apiErr.Errors[0].Location)
	}
}

func TestPastDate(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{name: "過去日は許可", value: "2020-01-01", wantErr: false},
		{name: "RFC3339も許可", value: "2020-01-01T10:00:00Z", wantErr: false},
		{name: "未来日は拒否", value: "2030-01-01", wantErr: true},
		{name: "不正な形式は拒否", value: "yesterday", wantErr: true},
		{name: "空文字列は検証しない", value: "", wantErr: false},
	}

	rule := PastDate(fixedNow, "bad date")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validation.Validate(tt.value, rule)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate(%q) = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
			if err != nil && err.Error() != "bad date" {
				t.Errorf("message = %q, want %q", err.Error(), "bad date")
			}
		})
	}
}

func TestOptionalDate(t *testing.T) {
	rule := OptionalDate("bad date")
	if err := validation.Validate("", rule); err != nil {
		t.Errorf("empty: err = %v, want nil", err)
	}
	if err := validation.Validate("2021-03-04", rule); err != nil {
		t.Errorf("valid: err = %v, want nil", err)
	}
	if err := validation.Validate("03/04/2021", rule); err == nil {
		t.Error("invalid: want error")
	}
}
