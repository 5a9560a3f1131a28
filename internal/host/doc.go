// Package host is the thin syscall layer the runtime core sits on: anonymous
// memory mappings for heap growth, descriptor writes for stream sinks, clock
// reads, sleeping, and the OS thread identity used by thread-local storage.
//
// Everything here forwards to golang.org/x/sys/unix on unix platforms. The
// fallback files keep the package buildable elsewhere with the closest
// portable behaviour.
package host
