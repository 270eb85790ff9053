// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"strings"
	"testing"
)

const testSchema = `
#Launcher: {
	executable: string & !=""
	retries:    int & >=0 | *1
	verbose?:   bool
}
`

type launcher struct {
	Executable string `json:"executable"`
	Retries    int    `json:"retries"`
	Verbose    bool   `json:"verbose"`
}

func TestParseAndDecode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		data    string
		opts    []Option
		want    launcher
		wantErr string
	}{
		{
			name: "defaults applied",
			data: `executable: "wsl.exe"`,
			want: launcher{Executable: "wsl.exe", Retries: 1},
		},
		{
			name: "all fields",
			data: "executable: \"podman\"\nretries: 3\nverbose: true",
			want: launcher{Executable: "podman", Retries: 3, Verbose: true},
		},
		{
			name:    "constraint violation has path",
			data:    "executable: \"docker\"\nretries: -1",
			opts:    []Option{WithFilename("launcher.cue")},
			wantErr: "launcher.cue: retries",
		},
		{
			name:    "unknown field rejected",
			data:    "executable: \"docker\"\nshell: \"/bin/sh\"",
			wantErr: "shell",
		},
		{
			name:    "syntax error",
			data:    "executable: ",
			wantErr: "<input>",
		},
		{
			name:    "too large",
			data:    `executable: "wsl.exe"`,
			opts:    []Option{WithMaxFileSize(4)},
			wantErr: "exceeds maximum 4 bytes",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			res, err := ParseAndDecode[launcher]([]byte(testSchema), []byte(tt.data), "#Launcher", tt.opts...)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("ParseAndDecode() error = %v, want containing %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseAndDecode() error = %v", err)
			}
			if *res.Value != tt.want {
				t.Errorf("ParseAndDecode() = %+v, want %+v", *res.Value, tt.want)
			}
		})
	}
}

func TestParseAndDecode_NonConcreteMap(t *testing.T) {
	t.Parallel()

	schema := []byte(`#Config: { name?: string, engine?: "docker" | "podman" }`)
	res, err := ParseAndDecode[map[string]any](schema, []byte(`engine: "docker"`), "#Config", WithConcrete(false))
	if err != nil {
		t.Fatalf("ParseAndDecode() error = %v", err)
	}
	if (*res.Value)["engine"] != "docker" || len(*res.Value) != 1 {
		t.Errorf("ParseAndDecode() = %v", *res.Value)
	}
}

func TestParseAndDecode_MissingDefinition(t *testing.T) {
	t.Parallel()

	_, err := ParseAndDecode[map[string]any]([]byte(testSchema), []byte(`{}`), "#Nope")
	if err == nil || !strings.Contains(err.Error(), "#Nope") {
		t.Errorf("ParseAndDecode() error = %v", err)
	}
}
