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
	"encoding/json"
	"fmt"

	dxerrors "dirpx.dev/dxrev/dxcore/errors"
	"dirpx.dev/dxrev/dxcore/model/typeid"
	"dirpx.dev/dxrev/dxcore/model/version"
)

// JSON encodes an envelope as the object
//
//	{"type_id": 123, "version": {"major": 2, "minor": 0, "patch": 0}, "content": ...}
type JSON struct{}

type jsonEnvelope struct {
	TypeID  typeid.ID       `json:"type_id"`
	Version version.Version `json:"version"`
	Content any             `json:"content"`
}

// jsonTag has no content field: the payload is skipped, not decoded.
type jsonTag struct {
	TypeID  *typeid.ID       `json:"type_id"`
	Version *version.Version `json:"version"`
}

type jsonContent struct {
	Content json.RawMessage `json:"content"`
}

// Name returns "json".
func (JSON) Name() string { return "json" }

// Encode writes {"type_id","version","content"} with payload as content.
func (JSON) Encode(tag Tag, payload any) ([]byte, error) {
	data, err := json.Marshal(jsonEnvelope{TypeID: tag.ID, Version: tag.Version, Content: payload})
	if err != nil {
		return nil, fmt.Errorf("json: encoding envelope: %w", err)
	}
	return data, nil
}

// PeekTag decodes type_id and version and skips content.
func (JSON) PeekTag(data []byte) (Tag, error) {
	var t jsonTag
	if err := json.Unmarshal(data, &t); err != nil {
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
func (JSON) DecodePayload(data []byte, into any) error {
	var c jsonContent
	if err := json.Unmarshal(data, &c); err != nil {
		return &dxerrors.UnmarshalError{Type: "Envelope", Data: data, Reason: err.Error()}
	}
	if len(c.Content) == 0 {
		return &dxerrors.UnmarshalError{Type: "Envelope", Data: data, Reason: "missing content"}
	}
	if err := json.Unmarshal(c.Content, into); err != nil {
		return fmt.Errorf("json: decoding content: %w", err)
	}
	return nil
}

var _ Format = JSON{}
