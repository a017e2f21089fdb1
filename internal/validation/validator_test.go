// RecSim - Recommendation Agent Simulation and Offline Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsim

package validation

import (
	"strings"
	"testing"
)

type runRequest struct {
	Name     string `json:"name" validate:"omitempty,max=32,runname"`
	Episodes int    `json:"episodes" validate:"omitempty,min=1,max=1000"`
	KValues  []int  `json:"k_values,omitempty" validate:"omitempty,max=4,unique,dive,min=1"`
	Backend  string `json:"backend" validate:"omitempty,oneof=memory nats"`
	Internal string `json:"-" validate:"omitempty,max=1"`
	Plain    int    `validate:"gte=0"`
}

func TestGetValidator_Singleton(t *testing.T) {
	v1 := GetValidator()
	v2 := GetValidator()
	if v1 == nil || v1 != v2 {
		t.Error("GetValidator() should return one shared instance")
	}
}

func TestValidateStruct_Valid(t *testing.T) {
	tests := []struct {
		name  string
		input runRequest
	}{
		{"zero value", runRequest{}},
		{"full", runRequest{Name: "nightly-2026.05_a b", Episodes: 250, KValues: []int{5, 10}, Backend: "nats"}},
		{"bounds", runRequest{Episodes: 1000, KValues: []int{1, 2, 3, 4}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidateStruct(&tt.input); err != nil {
				t.Errorf("ValidateStruct() = %v", err)
			}
		})
	}
}

func TestValidateStruct_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		input     runRequest
		wantField string
		wantTag   string
		wantMsg   string
	}{
		{"episodes too small", runRequest{Episodes: -1}, "episodes", "min", "episodes must be at least 1"},
		{"episodes too large", runRequest{Episodes: 1001}, "episodes", "max", "episodes must be at most 1000"},
		{"name chars", runRequest{Name: "bad/name"}, "name", "runname", "name may only contain"},
		{"name leading space", runRequest{Name: " x"}, "name", "runname", "name may only contain"},
		{"name too long", runRequest{Name: strings.Repeat("a", 33)}, "name", "max", "name must have at most 32 characters"},
		{"too many k", runRequest{KValues: []int{1, 2, 3, 4, 5}}, "k_values", "max", "k_values must have at most 4 elements"},
		{"duplicate k", runRequest{KValues: []int{5, 5}}, "k_values", "unique", "k_values must not contain duplicates"},
		{"zero k", runRequest{KValues: []int{0}}, "k_values[0]", "min", "k_values[0] must be at least 1"},
		{"backend", runRequest{Backend: "kafka"}, "backend", "oneof", "backend must be one of: memory nats"},
		{"untagged field", runRequest{Plain: -1}, "Plain", "gte", "Plain must be greater than or equal to 0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verr := ValidateStruct(&tt.input)
			if verr == nil {
				t.Fatal("expected validation error")
			}
			errs := verr.Errors()
			if len(errs) != 1 {
				t.Fatalf("got %d errors: %v", len(errs), verr)
			}
			if errs[0].Field() != tt.wantField || errs[0].Tag() != tt.wantTag {
				t.Errorf("field/tag = %s/%s, want %s/%s", errs[0].Field(), errs[0].Tag(), tt.wantField, tt.wantTag)
			}
			if !strings.Contains(errs[0].Error(), tt.wantMsg) {
				t.Errorf("message = %q, want containing %q", errs[0].Error(), tt.wantMsg)
			}
		})
	}
}

func TestValidateStruct_NonStruct(t *testing.T) {
	verr := ValidateStruct("not a struct")
	if verr == nil {
		t.Fatal("expected error")
	}
	if verr.Errors()[0].Field() != "unknown" {
		t.Errorf("field = %q", verr.Errors()[0].Field())
	}
}

func TestToAPIError(t *testing.T) {
	t.Run("single", func(t *testing.T) {
		apiErr := ValidateStruct(&runRequest{Episodes: -3}).ToAPIError()
		if apiErr.Code != CodeValidationError {
			t.Errorf("Code = %q", apiErr.Code)
		}
		if apiErr.Details["field"] != "episodes" || apiErr.Details["value"] != -3 {
			t.Errorf("Details = %v", apiErr.Details)
		}
	})

	t.Run("multiple", func(t *testing.T) {
		verr := ValidateStruct(&runRequest{Episodes: -3, Backend: "kafka"})
		apiErr := verr.ToAPIError()
		fields, ok := apiErr.Details["fields"].([]map[string]interface{})
		if !ok || len(fields) != 2 {
			t.Fatalf("Details = %v", apiErr.Details)
		}
		if !strings.Contains(apiErr.Message, "episodes") || !strings.Contains(apiErr.Message, "backend") {
			t.Errorf("Message = %q", apiErr.Message)
		}
	})

	t.Run("empty", func(t *testing.T) {
		apiErr := (&RequestValidationError{}).ToAPIError()
		if apiErr.Message != "Validation failed" {
			t.Errorf("Message = %q", apiErr.Message)
		}
	})
}
