package filter

import (
	"runtime"
	"testing"
)

func TestLookup(t *testing.T) {
	tests := []struct {
		goarch     string
		wantErr    bool
		auditArch  uint32
		socket     uint32
		socketpair uint32
	}{
		{goarch: "amd64", auditArch: 0xc000003e, socket: 41, socketpair: 53},
		{goarch: "arm64", auditArch: 0xc00000b7, socket: 198, socketpair: 199},
		{goarch: "riscv64", auditArch: 0xc00000f3, socket: 198, socketpair: 199},
		{goarch: "386", wantErr: true},
		{goarch: "s390x", wantErr: true},
		{goarch: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.goarch, func(t *testing.T) {
			a, err := Lookup(tt.goarch)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Lookup(%q) error = %v, wantErr %v", tt.goarch, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if a.Name != tt.goarch {
				t.Errorf("Name = %q, want %q", a.Name, tt.goarch)
			}
			if a.AuditArch != tt.auditArch {
				t.Errorf("AuditArch = %#x, want %#x", a.AuditArch, tt.auditArch)
			}
			if a.Socket != tt.socket {
				t.Errorf("Socket = %d, want %d", a.Socket, tt.socket)
			}
			if a.Socketpair != tt.socketpair {
				t.Errorf("Socketpair = %d, want %d", a.Socketpair, tt.socketpair)
			}
		})
	}
}

func TestNativeMatchesLookup(t *testing.T) {
	want, wantErr := Lookup(runtime.GOARCH)
	got, err := Native()
	if (err != nil) != (wantErr != nil) {
		t.Fatalf("Native() error = %v, Lookup(%q) error = %v", err, runtime.GOARCH, wantErr)
	}
	if err == nil && got != want {
		t.Errorf("Native() = %+v, want %+v", got, want)
	}
}
