//  Copyright (c) 2026 Uber Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package facts

import (
	"bytes"
	"encoding/gob"
	"errors"

	"github.com/klauspost/compress/s2"
)

// Snapshot serializes the store so the host can cache fact finding for an
// unchanged unit instead of re-walking every method body. The snapshot never
// crosses unit boundaries semantically: restoring it reproduces the same
// per-unit store that pass 1 would have built.
func (s *Store) Snapshot() (b []byte, err error) {
	var buf bytes.Buffer
	writer := s2.NewWriter(&buf)
	defer func() {
		if cerr := writer.Close(); cerr != nil {
			err = errors.Join(err, cerr)
		}
	}()

	if err := gob.NewEncoder(writer).Encode(s.classes); err != nil {
		return nil, err
	}

	// Close the s2 writer before getting the bytes such that we have complete
	// information.
	if err := writer.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// RestoreSnapshot rebuilds a store from a Snapshot payload.
func RestoreSnapshot(input []byte) (*Store, error) {
	s := NewStore()
	buf := bytes.NewBuffer(input)
	if err := gob.NewDecoder(s2.NewReader(buf)).Decode(&s.classes); err != nil {
		return nil, err
	}
	return s, nil
}
