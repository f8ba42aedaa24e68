/*
   Copyright 2025 The DIRPX Authors

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestParseError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *ParseError
		want string
	}{
		{
			"version",
			&ParseError{Type: "Version", Value: "1.x"},
			"dxrev: invalid Version value: 1.x",
		},
		{
			"kind",
			&ParseError{Type: "Kind", Value: "union"},
			"dxrev: invalid Kind value: union",
		},
		{
			"empty value",
			&ParseError{Type: "Format", Value: ""},
			"dxrev: invalid Format value: ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("ParseError.Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMarshalError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *MarshalError
		want string
	}{
		{
			"positive value",
			&MarshalError{Type: "Kind", Value: 7},
			"dxrev: cannot marshal invalid Kind value: 7",
		},
		{
			"negative value",
			&MarshalError{Type: "Kind", Value: -1},
			"dxrev: cannot marshal invalid Kind value: -1",
		},
		{
			"value 42 should be decimal not unicode",
			&MarshalError{Type: "Test", Value: 42},
			"dxrev: cannot marshal invalid Test value: 42",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("MarshalError.Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUnmarshalError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *UnmarshalError
		want string
	}{
		{
			"empty data",
			&UnmarshalError{Type: "Version", Data: []byte{}, Reason: "empty data"},
			"dxrev: cannot unmarshal Version: empty data",
		},
		{
			"data is not part of the message",
			&UnmarshalError{Type: "ID", Data: []byte(`"secret"`), Reason: "not a number"},
			"dxrev: cannot unmarshal ID: not a number",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("UnmarshalError.Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidationError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *ValidationError
		want string
	}{
		{
			"with field",
			&ValidationError{Type: "Window", Field: "End", Reason: "must be greater than Start"},
			"dxrev: invalid Window.End: must be greater than Start",
		},
		{
			"without field",
			&ValidationError{Type: "Schema", Reason: "no fields"},
			"dxrev: invalid Schema: no fields",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("ValidationError.Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestErrors_As_ThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("loading schema: %w", &ParseError{Type: "Kind", Value: "x"})

	var pe *ParseError
	if !stderrors.As(wrapped, &pe) {
		t.Fatal("errors.As did not find *ParseError")
	}
	if pe.Value != "x" {
		t.Errorf("Value = %q, want %q", pe.Value, "x")
	}
}

func TestErrors_Implements_Error_Interface(t *testing.T) {
	var _ error = (*ParseError)(nil)
	var _ error = (*MarshalError)(nil)
	var _ error = (*UnmarshalError)(nil)
	var _ error = (*ValidationError)(nil)
}
