package core

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func validHash() Hash {
	return HashFromBytes([]byte("fixture"))
}

func TestValidateHash(t *testing.T) {
	tests := []struct {
		name    string
		hash    Hash
		wantErr bool
	}{
		{
			name:    "valid hash",
			hash:    validHash(),
			wantErr: false,
		},
		{
			name:    "empty hash",
			hash:    "",
			wantErr: true,
		},
		{
			name:    "too short",
			hash:    "abcdef",
			wantErr: true,
		},
		{
			name:    "right length but not hex",
			hash:    Hash(strings.Repeat("z", HashSize*2)),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateHash(tt.hash)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateHash() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidHash) {
				t.Errorf("ValidateHash() error = %v, want ErrInvalidHash", err)
			}
		})
	}
}

func TestValidateImageRecord(t *testing.T) {
	valid := func() *ImageRecord {
		return &ImageRecord{
			Hash:        validHash(),
			Filepath:    "/photos/cat.jpg",
			Filename:    "cat.jpg",
			Size:        1024,
			CreatedAt:   time.Now().UTC(),
			ProcessedAt: time.Now().UTC(),
		}
	}

	tests := []struct {
		name    string
		mutate  func(*ImageRecord)
		wantErr error
	}{
		{
			name:    "valid record",
			mutate:  func(*ImageRecord) {},
			wantErr: nil,
		},
		{
			name:    "bad hash",
			mutate:  func(r *ImageRecord) { r.Hash = "nope" },
			wantErr: ErrInvalidHash,
		},
		{
			name:    "empty filepath",
			mutate:  func(r *ImageRecord) { r.Filepath = "" },
			wantErr: ErrEmptyFilepath,
		},
		{
			name:    "negative size",
			mutate:  func(r *ImageRecord) { r.Size = -1 },
			wantErr: ErrNegativeSize,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := valid()
			tt.mutate(record)

			err := ValidateImageRecord(record)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateImageRecord() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateImageRecord() error = %v, want %v", err, tt.wantErr)
			}
			if !errors.Is(err, ErrInvalidImageRecord) {
				t.Errorf("ValidateImageRecord() error = %v, want wrapped ErrInvalidImageRecord", err)
			}
		})
	}

	if err := ValidateImageRecord(nil); !errors.Is(err, ErrInvalidImageRecord) {
		t.Errorf("ValidateImageRecord(nil) error = %v, want ErrInvalidImageRecord", err)
	}
}

func TestValidateDescription(t *testing.T) {
	if err := ValidateDescription(&Description{ImageHash: validHash(), Text: "a cat"}); err != nil {
		t.Errorf("ValidateDescription() unexpected error: %v", err)
	}

	if err := ValidateDescription(&Description{ImageHash: validHash()}); !errors.Is(err, ErrEmptyDescriptionText) {
		t.Errorf("ValidateDescription() error = %v, want ErrEmptyDescriptionText", err)
	}

	if err := ValidateDescription(&Description{ImageHash: "bad", Text: "a cat"}); !errors.Is(err, ErrInvalidHash) {
		t.Errorf("ValidateDescription() error = %v, want ErrInvalidHash", err)
	}

	if err := ValidateDescription(nil); !errors.Is(err, ErrInvalidDescription) {
		t.Errorf("ValidateDescription(nil) error = %v, want ErrInvalidDescription", err)
	}
}
