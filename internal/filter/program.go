package filter

import "golang.org/x/net/bpf"

// Offsets into struct seccomp_data (linux/seccomp.h). nr and arch are
// 32-bit; the six argument slots are 64-bit each, so a 4-byte load at the
// slot offset reads the low word on little-endian architectures.
const (
	seccompDataNr   = 0
	seccompDataArch = 4
	seccompDataArg0 = 16
)

// Kernel constants from linux/seccomp.h and linux/socket.h. The program
// embeds the Linux values directly; nothing here round-trips through libc.
const (
	SECCOMP_RET_ALLOW = 0x7fff0000
	SECCOMP_RET_ERRNO = 0x00050000

	AF_UNIX = 1

	EACCES = 0xd
)

// The two dispositions the program can return. A blocked call fails with
// EACCES rather than killing the process, so the target sees an ordinary
// error return from socket(2).
const (
	RetAllow uint32 = SECCOMP_RET_ALLOW
	RetDeny  uint32 = SECCOMP_RET_ERRNO | EACCES
)

// Program returns the filter program for one architecture. It is a pure
// function of the layout: same input, byte-for-byte same program.
//
// The decision procedure, evaluated by the kernel on every syscall:
//
//  1. If the calling convention is not arch's, allow. The check is
//     defensive; the program is selected per build architecture, but some
//     platforms let a process switch calling conventions.
//  2. If the syscall is neither socket(2) nor socketpair(2), allow.
//  3. If the domain argument is AF_UNIX, deny with EACCES; otherwise allow.
//
// All jumps are forward skips and every path ends in a return, so the
// program is a loop-free DAG with no fall-through.
func Program(a Arch) []bpf.Instruction {
	return []bpf.Instruction{
		// [0..1] architecture gate
		bpf.LoadAbsolute{Off: seccompDataArch, Size: 4},
		bpf.JumpIf{Cond: bpf.JumpEqual, Val: a.AuditArch, SkipTrue: 0, SkipFalse: 7},

		// [2..5] syscall number dispatch
		bpf.LoadAbsolute{Off: seccompDataNr, Size: 4},
		bpf.JumpIf{Cond: bpf.JumpEqual, Val: a.Socket, SkipTrue: 2, SkipFalse: 0},
		bpf.JumpIf{Cond: bpf.JumpEqual, Val: a.Socketpair, SkipTrue: 1, SkipFalse: 0},
		bpf.RetConstant{Val: RetAllow},

		// [6..9] domain check for socket/socketpair
		bpf.LoadAbsolute{Off: seccompDataArg0, Size: 4},
		bpf.JumpIf{Cond: bpf.JumpEqual, Val: AF_UNIX, SkipTrue: 0, SkipFalse: 1},
		bpf.RetConstant{Val: RetDeny},
		bpf.RetConstant{Val: RetAllow},
	}
}

// Assemble lowers the program to raw instructions, the single serialization
// boundary between the decision logic and the kernel encoding.
func Assemble(a Arch) ([]bpf.RawInstruction, error) {
	return bpf.Assemble(Program(a))
}
