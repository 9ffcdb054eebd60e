// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"io/fs"
	"reflect"
	"testing"

	"github.com/telekom/netping/pkg/config/test"
	"gopkg.in/yaml.v3"
)

func TestNewFileLoader(t *testing.T) {
	l := NewFileLoader("targets.yaml")

	if l.path != "targets.yaml" {
		t.Errorf("Expected path to be targets.yaml, got %s", l.path)
	}
	if l.fsys == nil {
		t.Errorf("Expected filesystem to be not nil")
	}
}

func TestFileLoader_Load(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		mockFS  func(t *testing.T) fs.FS
		want    []string
		wantErr bool
	}{
		{
			name: "Loads targets from file",
			path: "test/data/targets.yaml",
			want: []string{"192.0.2.1", "example.com", "2001:db8::1"},
		},
		{
			name:    "Invalid File Path",
			path:    "test/data/nonexistent.yaml",
			wantErr: true,
		},
		{
			name: "Malformed Targets File",
			path: "test/data/malformed.yaml",
			mockFS: func(_ *testing.T) fs.FS {
				return &test.MockFS{
					OpenFunc: func(name string) (fs.File, error) {
						content := []byte("this is not a valid yaml content")
						return &test.MockFile{Content: content}, nil
					},
				}
			},
			wantErr: true,
		},
		{
			name: "Failed to close file",
			path: "test/data/valid.yaml",
			mockFS: func(t *testing.T) fs.FS {
				b, err := yaml.Marshal(TargetsFile{Targets: []string{"192.0.2.1"}})
				if err != nil {
					t.Fatalf("Failed marshaling targets to bytes: %v", err)
				}

				return &test.MockFS{
					OpenFunc: func(name string) (fs.File, error) {
						return &test.MockFile{
							Content: b,
							CloseFunc: func() error {
								return fmt.Errorf("failed to close file")
							},
						}, nil
					},
				}
			},
			wantErr: true,
		},
		{
			name:    "Directory",
			path:    "test/data",
			wantErr: true,
		},
		{
			name: "Empty file",
			path: "test/data/empty.yaml",
			mockFS: func(_ *testing.T) fs.FS {
				return &test.MockFS{
					OpenFunc: func(name string) (fs.File, error) {
						return &test.MockFile{}, nil
					},
				}
			},
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewFileLoader(tt.path)
			if tt.mockFS != nil {
				f.fsys = tt.mockFS(t)
			}

			got, err := f.Load(t.Context())
			if (err != nil) != tt.wantErr {
				t.Errorf("Load() error %v, want %v", err, tt.wantErr)
			}

			if !tt.wantErr {
				if !reflect.DeepEqual(got, tt.want) {
					t.Errorf("Expected targets to be %v, got %v", tt.want, got)
				}
			}
		})
	}
}
