// Package store persists one small file in SPI NOR flash.
//
// The file lives in a single [FileEntry] at a fixed address. [Store.Replace]
// rewrites it as a whole; [Store.AppendLine] keeps it as a ring log of the
// last [RingLines] lines, newest first. [Store.Load] takes a [Snapshot] of
// the file and substitutes a diagnostic file when the flash is absent, is
// the wrong part, or holds no valid entry.
package store
