package backups

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResolve(t *testing.T) {
	dir := t.TempDir()
	name := "fastwell-20240601-120000.db"
	full := filepath.Join(dir, name)
	if err := os.WriteFile(full, []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{"absolute", full, full, false},
		{"file name in backup dir", name, full, false},
		{"missing absolute", filepath.Join(dir, "nope.db"), "", true},
		{"missing name", "nope.db", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolve(tt.in, dir)
			if (err != nil) != tt.wantErr {
				t.Fatalf("resolve() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("resolve() = %q, want %q", got, tt.want)
			}
		})
	}
}
