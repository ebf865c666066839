// Package vfs provides the instrumented virtual filesystem the harness
// exercises under fault injection.
//
// The FS interface mirrors the operation surface of an embedded
// database's OS layer: positional reads and writes, explicit sync with a
// full/data-only distinction, an in-process lock ladder, and a
// shared-memory sidecar file split into fixed-size regions. The OS
// implementation backs all of it with real files in a directory and
// threads every instrumented operation through a fault.State:
//
//   - Open and Close move the open-file count.
//   - Access and WriteAt consult the io-error countdown; WriteAt also
//     consults the disk-full countdown. An injected fault overrides the
//     outcome of the real operation.
//   - Sync bumps the sync count, and the fullsync count for full syncs.
//   - Now substitutes the simulated clock when one is set.
//
// Reads, truncates and deletes are deliberately uninstrumented: they
// pass through to the host filesystem unchanged.
package vfs
