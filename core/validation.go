// Copyright 2025 Poiesic Systems
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


package core

import (
	"encoding/hex"
	"fmt"
)

// ValidateHash validates that h is a well-formed content hash:
// the hex encoding of a 256-bit digest.
func ValidateHash(h Hash) error {
	if len(h) != HashSize*2 {
		return fmt.Errorf("%w: expected %d hex characters, got %d", ErrInvalidHash, HashSize*2, len(h))
	}
	if _, err := hex.DecodeString(string(h)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidHash, err)
	}
	return nil
}

// ValidateImageRecord validates an ImageRecord according to domain rules.
//
// Validation rules:
//   - Hash must be a well-formed content hash
//   - Filepath must not be empty
//   - Size must not be negative
//
// NOT validated (best-effort metadata):
//   - Width/Height (nil is valid when the image could not be decoded)
//   - Description (empty until captioning runs)
func ValidateImageRecord(record *ImageRecord) error {
	if record == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidImageRecord)
	}

	if err := ValidateHash(record.Hash); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidImageRecord, err)
	}

	if record.Filepath == "" {
		return fmt.Errorf("%w: %w", ErrInvalidImageRecord, ErrEmptyFilepath)
	}

	if record.Size < 0 {
		return fmt.Errorf("%w: %w", ErrInvalidImageRecord, ErrNegativeSize)
	}

	return nil
}

// ValidateDescription validates a Description according to domain rules.
//
// Validation rules:
//   - ImageHash must be a well-formed content hash
//   - Text must not be empty
//
// NOT validated:
//   - Vector (nil is valid until embedding runs)
func ValidateDescription(desc *Description) error {
	if desc == nil {
		return fmt.Errorf("%w: description is nil", ErrInvalidDescription)
	}

	if err := ValidateHash(desc.ImageHash); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDescription, err)
	}

	if desc.Text == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDescription, ErrEmptyDescriptionText)
	}

	return nil
}
