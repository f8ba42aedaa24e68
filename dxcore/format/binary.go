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
	"bytes"
	"encoding/binary"
	"fmt"

	dxerrors "dirpx.dev/dxrev/dxcore/errors"
	"dirpx.dev/dxrev/dxcore/model/typeid"
	"dirpx.dev/dxrev/dxcore/model/version"
	"github.com/fxamacker/cbor/v2"
)

// Binary layout, all integers little-endian:
//
//	offset  size  field
//	0       4     magic "DXRV"
//	4       1     layout version
//	5       8     type identifier
//	13      24    version major, minor, patch
//	37      4     payload offset
//	41      4     payload length
//	45      3     padding
//	48      n     payload, canonical CBOR
//
// The tag sits at a fixed offset and the payload is only reached through
// the offset field, so a reader can check the tag without touching the
// payload and future layouts may move the payload without moving the tag.
const (
	binaryLayout     = 1
	binaryHeaderSize = 45
	binaryPayloadAt  = 48
)

var binaryMagic = [4]byte{'D', 'X', 'R', 'V'}

var (
	cborEnc cbor.EncMode
	cborDec cbor.DecMode
)

func init() {
	var err error
	if cborEnc, err = cbor.CanonicalEncOptions().EncMode(); err != nil {
		panic(err)
	}
	if cborDec, err = (cbor.DecOptions{}).DecMode(); err != nil {
		panic(err)
	}
}

// Binary is the fixed-layout archive encoding.
type Binary struct{}

// Name returns "binary".
func (Binary) Name() string { return "binary" }

// Encode writes the fixed header for tag followed by payload in canonical
// CBOR, so equal values always produce equal bytes.
func (Binary) Encode(tag Tag, payload any) ([]byte, error) {
	body, err := cborEnc.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("binary: encoding payload: %w", err)
	}

	out := make([]byte, binaryPayloadAt, binaryPayloadAt+len(body))
	copy(out[0:4], binaryMagic[:])
	out[4] = binaryLayout
	binary.LittleEndian.PutUint64(out[5:13], uint64(tag.ID))
	vb := tag.Version.Bytes()
	copy(out[13:37], vb[:])
	binary.LittleEndian.PutUint32(out[37:41], binaryPayloadAt)
	binary.LittleEndian.PutUint32(out[41:45], uint32(len(body)))
	return append(out, body...), nil
}

// PeekTag reads the header only. The payload bytes are not inspected.
func (Binary) PeekTag(data []byte) (Tag, error) {
	if err := checkHeader(data); err != nil {
		return Tag{}, err
	}
	v, err := version.FromBytes(data[13:37])
	if err != nil {
		return Tag{}, err
	}
	return Tag{ID: typeid.ID(binary.LittleEndian.Uint64(data[5:13])), Version: v}, nil
}

// DecodePayload decodes the CBOR payload named by the header into into.
func (Binary) DecodePayload(data []byte, into any) error {
	if err := checkHeader(data); err != nil {
		return err
	}
	off := uint64(binary.LittleEndian.Uint32(data[37:41]))
	n := uint64(binary.LittleEndian.Uint32(data[41:45]))
	if off < binaryHeaderSize || off+n > uint64(len(data)) {
		return &dxerrors.UnmarshalError{
			Type:   "Envelope",
			Data:   data,
			Reason: fmt.Sprintf("payload [%d, %d) outside %d bytes", off, off+n, len(data)),
		}
	}
	if err := cborDec.Unmarshal(data[off:off+n], into); err != nil {
		return fmt.Errorf("binary: decoding payload: %w", err)
	}
	return nil
}

func checkHeader(data []byte) error {
	switch {
	case len(data) < binaryHeaderSize:
		return &dxerrors.UnmarshalError{Type: "Envelope", Data: data, Reason: "short header"}
	case !bytes.Equal(data[0:4], binaryMagic[:]):
		return &dxerrors.UnmarshalError{Type: "Envelope", Data: data, Reason: "bad magic"}
	case data[4] != binaryLayout:
		return &dxerrors.UnmarshalError{
			Type:   "Envelope",
			Data:   data,
			Reason: fmt.Sprintf("unsupported layout %d", data[4]),
		}
	}
	return nil
}

var _ Format = Binary{}
