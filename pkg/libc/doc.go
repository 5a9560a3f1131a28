/*
Package libc is the process-facing runtime: one heap, one thread-local
storage manager and the formatting engine, exposed under the conventional C
names.

# Quick Start

	if err := libc.Init(nil); err != nil {
	    log.Fatal(err)
	}
	defer libc.Shutdown()

	p := libc.Malloc(64)
	if p == heap.Nil {
	    log.Fatalf("malloc: errno %d", libc.Errno())
	}
	defer libc.Free(p)
	libc.Printf("block at %p\n", p)

# Error Reporting

Functions follow C conventions: failure is signalled by the return value
(heap.Nil, -1) and the cause is stored in the calling thread's errno slot.
Errno values are the Linux numbers (ENOMEM, EINVAL, EOVERFLOW, ...).

# Startup

Init creates the heap, installs the thread-local template and materializes
the calling thread's block before returning, so errno and thread-locals are
usable immediately. The package-level functions initialize the runtime with
default options on first use if Init was not called.

# Configuration

ParseConfig reads a JSON document:

	{
	  "heap": {"grow_quantum": 65536, "initial_size": 0, "size_classes": "balanced",
	           "limit": 0, "backend": "mmap", "max_align": 1048576},
	  "tls":  {"identity": "fixed"},
	  "log":  {"level": "debug", "format": "json"}
	}

and Config.Options turns it into Options.
*/
package libc
