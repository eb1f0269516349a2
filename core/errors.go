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

import "errors"

// Domain validation errors
var (
	// ErrInvalidImageRecord indicates an ImageRecord failed validation.
	ErrInvalidImageRecord = errors.New("invalid image record")

	// ErrInvalidDescription indicates a Description failed validation.
	ErrInvalidDescription = errors.New("invalid description")

	// ErrInvalidHash indicates a malformed content hash.
	ErrInvalidHash = errors.New("invalid content hash")

	// ErrEmptyFilepath indicates the Filepath field is empty.
	ErrEmptyFilepath = errors.New("filepath cannot be empty")

	// ErrNegativeSize indicates a negative file size.
	ErrNegativeSize = errors.New("file size cannot be negative")

	// ErrEmptyDescriptionText indicates the description Text field is empty.
	ErrEmptyDescriptionText = errors.New("description text cannot be empty")
)
