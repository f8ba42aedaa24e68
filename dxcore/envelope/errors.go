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

package envelope

import (
	"fmt"

	"dirpx.dev/dxrev/dxcore/model/typeid"
	"dirpx.dev/dxrev/dxcore/model/version"
)

// TypeIDMismatchError is returned when an envelope holds another type.
type TypeIDMismatchError struct {
	Got  typeid.ID
	Want typeid.ID
}

func (e *TypeIDMismatchError) Error() string {
	return fmt.Sprintf("dxrev: envelope type id %s, want %s", e.Got.Hex(), e.Want.Hex())
}

// VersionTooNewError is returned when an envelope was written by a newer
// revision than the reader knows.
type VersionTooNewError struct {
	Got        version.Version
	CurrentMax version.Version
}

func (e *VersionTooNewError) Error() string {
	return fmt.Sprintf("dxrev: envelope version %s is newer than %s", e.Got, e.CurrentMax)
}

// UnknownRevisionError is returned when an envelope version does not name
// a revision: major 0, or a non-zero minor or patch.
type UnknownRevisionError struct {
	Version version.Version
}

func (e *UnknownRevisionError) Error() string {
	return fmt.Sprintf("dxrev: envelope version %s names no revision", e.Version)
}
