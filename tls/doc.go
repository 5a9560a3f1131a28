// Package tls implements thread-local storage on top of the heap.
//
// A Template is the read-only default image of every thread-local
// variable; a Layout assigns variables their offsets and defaults and
// produces one. The Manager installs a Template once and materializes a
// private Block for each thread the first time that thread asks for it.
// Every Block starts with a reserved errno slot followed by a copy of the
// Template:
//
//	+0                 errno (int64, default 0)
//	+dataOff           template image (dataOff aligned to the template alignment)
//
// Threads are identified through an Identity. OSIdentity uses the kernel
// thread id, so goroutines using it must be pinned with
// runtime.LockOSThread. FixedIdentity maps every caller to one thread,
// which is the single-threaded case: a single registry entry, the same code
// path as N threads.
//
// Steady-state access is a lock-free registry lookup; only creating and
// destroying a Block take the Manager's mutex.
package tls
