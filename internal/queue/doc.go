// Package queue serves the item queue on top of a storage loader.
//
// The Manager owns the operating mode. In cached mode the active content is
// read once at initialization and every later operation works on that private
// copy; nothing is written back. In passthrough mode each operation reads and
// writes the loader directly and no copy survives between calls. Both modes
// sit behind one sequence store so every Manager method looks the same.
//
// Pushed items are validated against the item template before any state
// changes. The template is the configured one when present, otherwise the
// loader's inferred schema, fixed the first time it becomes available.
//
// Manager methods are safe for concurrent use; calls are serialized.
package queue
