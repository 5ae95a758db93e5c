//go:build linux

package filter

import (
	"golang.org/x/net/bpf"
	"golang.org/x/sys/unix"
)

// SockFilter assembles the program for a into the kernel's sock_filter
// layout.
func SockFilter(a Arch) ([]unix.SockFilter, error) {
	raw, err := Assemble(a)
	if err != nil {
		return nil, err
	}
	return toSockFilter(raw), nil
}

// SockFprog assembles the program for a into the sock_fprog form consumed
// by seccomp(2). The returned struct points into a freshly allocated
// instruction slice.
func SockFprog(a Arch) (*unix.SockFprog, error) {
	insns, err := SockFilter(a)
	if err != nil {
		return nil, err
	}
	return &unix.SockFprog{
		Len:    uint16(len(insns)),
		Filter: &insns[0],
	}, nil
}

func toSockFilter(raw []bpf.RawInstruction) []unix.SockFilter {
	insns := make([]unix.SockFilter, 0, len(raw))
	for _, in := range raw {
		insns = append(insns, unix.SockFilter{
			Code: in.Op,
			Jt:   in.Jt,
			Jf:   in.Jf,
			K:    in.K,
		})
	}
	return insns
}
