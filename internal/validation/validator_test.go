// Clubzones - Cannabis Club Eligible Zone Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clubzones

package validation

import (
	"strings"
	"testing"

	"github.com/tomtom215/clubzones/internal/models"
)

func TestGetValidator_Singleton(t *testing.T) {
	v1 := GetValidator()
	v2 := GetValidator()

	if v1 == nil {
		t.Fatal("GetValidator() should not return nil")
	}
	if v1 != v2 {
		t.Error("GetValidator() should return the same singleton instance")
	}
}

type zonesInput struct {
	Viewport     models.BoundingBox
	BufferMeters float64 `validate:"gte=1,lte=5000"`
	Mode         string  `validate:"zonemode"`
	Categories   string  `validate:"omitempty,category"`
	Query        string  `validate:"omitempty,min=2,max=100"`
}

func validInput() zonesInput {
	return zonesInput{
		Viewport:     models.BoundingBox{West: 13.40, South: 52.51, East: 13.41, North: 52.52},
		BufferMeters: 200,
		Mode:         "balanced",
	}
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*zonesInput)
		wantField string
		wantTag   string
	}{
		{name: "valid", mutate: func(*zonesInput) {}},
		{name: "valid categories", mutate: func(in *zonesInput) { in.Categories = "school, playground" }},
		{name: "buffer too small", mutate: func(in *zonesInput) { in.BufferMeters = 0 }, wantField: "BufferMeters", wantTag: "gte"},
		{name: "buffer too large", mutate: func(in *zonesInput) { in.BufferMeters = 9000 }, wantField: "BufferMeters", wantTag: "lte"},
		{name: "unknown mode", mutate: func(in *zonesInput) { in.Mode = "turbo" }, wantField: "Mode", wantTag: "zonemode"},
		{name: "unknown category", mutate: func(in *zonesInput) { in.Categories = "school,bar" }, wantField: "Categories", wantTag: "category"},
		{name: "query too short", mutate: func(in *zonesInput) { in.Query = "a" }, wantField: "Query", wantTag: "min"},
		{name: "inverted longitude", mutate: func(in *zonesInput) { in.Viewport.West, in.Viewport.East = 13.41, 13.40 }, wantField: "east", wantTag: "gtfield"},
		{name: "inverted latitude", mutate: func(in *zonesInput) { in.Viewport.South = 52.53 }, wantField: "north", wantTag: "gtfield"},
		{name: "latitude out of range", mutate: func(in *zonesInput) { in.Viewport.North = 91 }, wantField: "north", wantTag: "latitude"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)

			verr := ValidateStruct(&in)
			if tt.wantField == "" {
				if verr != nil {
					t.Fatalf("ValidateStruct() = %v, want nil", verr)
				}
				return
			}
			if verr == nil {
				t.Fatal("ValidateStruct() = nil, want error")
			}
			errs := verr.Errors()
			if len(errs) != 1 {
				t.Fatalf("len(Errors()) = %d, want 1: %v", len(errs), verr)
			}
			if errs[0].Field() != tt.wantField || errs[0].Tag() != tt.wantTag {
				t.Errorf("error = %s/%s, want %s/%s", errs[0].Field(), errs[0].Tag(), tt.wantField, tt.wantTag)
			}
		})
	}
}

func TestToAPIError_Single(t *testing.T) {
	in := validInput()
	in.BufferMeters = 9000

	apiErr := ValidateStruct(&in).ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("Code = %q, want VALIDATION_ERROR", apiErr.Code)
	}
	if apiErr.Message != "BufferMeters must be less than or equal to 5000" {
		t.Errorf("Message = %q", apiErr.Message)
	}
	if apiErr.Details["field"] != "BufferMeters" {
		t.Errorf("Details[field] = %v, want BufferMeters", apiErr.Details["field"])
	}
}

func TestToAPIError_Multiple(t *testing.T) {
	in := validInput()
	in.BufferMeters = 0
	in.Mode = "turbo"

	verr := ValidateStruct(&in)
	if verr == nil {
		t.Fatal("ValidateStruct() = nil, want error")
	}
	apiErr := verr.ToAPIError()
	fields, ok := apiErr.Details["fields"].([]map[string]interface{})
	if !ok || len(fields) != 2 {
		t.Fatalf("Details[fields] = %v, want 2 entries", apiErr.Details["fields"])
	}
	if !strings.Contains(apiErr.Message, "BufferMeters:") || !strings.Contains(apiErr.Message, "Mode:") {
		t.Errorf("Message = %q, want both fields", apiErr.Message)
	}
	if !strings.Contains(verr.Error(), "; ") {
		t.Errorf("Error() = %q, want joined messages", verr.Error())
	}
}

func TestToAPIError_Empty(t *testing.T) {
	verr := &RequestValidationError{}
	if got := verr.Error(); got != "validation failed" {
		t.Errorf("Error() = %q", got)
	}
	if got := verr.ToAPIError().Message; got != "Validation failed" {
		t.Errorf("Message = %q", got)
	}
}

func TestValidateStruct_NonStruct(t *testing.T) {
	verr := ValidateStruct(42)
	if verr == nil {
		t.Fatal("ValidateStruct(42) = nil, want error")
	}
	if verr.Errors()[0].Field() != "unknown" {
		t.Errorf("Field() = %q, want unknown", verr.Errors()[0].Field())
	}
}

func TestTranslateMinMax(t *testing.T) {
	type lengths struct {
		Name  string `validate:"max=3"`
		Limit int    `validate:"min=1"`
	}
	verr := ValidateStruct(&lengths{Name: "toolong", Limit: 0})
	if verr == nil {
		t.Fatal("ValidateStruct() = nil, want error")
	}
	want := map[string]string{
		"Name":  "Name must be at most 3 characters",
		"Limit": "Limit must be at least 1",
	}
	for _, e := range verr.Errors() {
		if want[e.Field()] != e.Error() {
			t.Errorf("%s message = %q, want %q", e.Field(), e.Error(), want[e.Field()])
		}
	}
}
