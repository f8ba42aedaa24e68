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

package format

import (
	"fmt"

	dxerrors "dirpx.dev/dxrev/dxcore/errors"
	"dirpx.dev/dxrev/dxcore/model/typeid"
	"dirpx.dev/dxrev/dxcore/model/version"
	"gopkg.in/yaml.v3"
)

// YAML encodes an envelope as a mapping with type_id, version and content
// keys. The version is written as a "major.minor.patch" scalar.
type YAML struct{}

type yamlEnvelope struct {
	TypeID  typeid.ID       `yaml:"type_id"`
	Version version.Version `yaml:"version"`
	Content any             `yaml:"content"`
}

type yamlTag struct {
	TypeID  *typeid.ID       `yaml:"type_id"`
	Version *version.Version `yaml:"version"`
}

// yamlContent keeps the payload as a node until the caller picks a type.
type yamlContent struct {
	Content yaml.Node `yaml:"content"`
}

// Name returns "yaml".
func (YAML) Name() string { return "yaml" }

// Encode writes a type_id, version and content mapping.
func (YAML) Encode(tag Tag, payload any) ([]byte, error) {
	data, err := yaml.Marshal(yamlEnvelope{TypeID: tag.ID, Version: tag.Version, Content: payload})
	if err != nil {
		return nil, fmt.Errorf("yaml: encoding envelope: %w", err)
	}
	return data, nil
}

// PeekTag decodes type_id and version and leaves content undecoded.
func (YAML) PeekTag(data []byte) (Tag, error) {
	var t yamlTag
	if err := yaml.Unmarshal(data, &t); err != nil {
		return Tag{}, &dxerrors.UnmarshalError{Type: "Envelope", Data: data, Reason: err.Error()}
	}
	if t.TypeID == nil {
		return Tag{}, &dxerrors.UnmarshalError{Type: "Envelope", Data: data, Reason: "missing type_id"}
	}
	if t.Version == nil {
		return Tag{}, &dxerrors.UnmarshalError{Type: "Envelope", Data: data, Reason: "missing version"}
	}
	return Tag{ID: *t.TypeID, Version: *t.Version}, nil
}

// DecodePayload decodes content into into.
func (YAML) DecodePayload(data []byte, into any) error {
	var c yamlContent
	if err := yaml.Unmarshal(data, &c); err != nil {
		return &dxerrors.UnmarshalError{Type: "Envelope", Data: data, Reason: err.Error()}
	}
	if c.Content.Kind == 0 {
		return &dxerrors.UnmarshalError{Type: "Envelope", Data: data, Reason: "missing content"}
	}
	if err := c.Content.Decode(into); err != nil {
		return fmt.Errorf("yaml: decoding content: %w", err)
	}
	return nil
}

var _ Format = YAML{}
