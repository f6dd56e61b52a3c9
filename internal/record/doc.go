// Package record provides the record types shared by the propagation engine
// and the collection stores.
//
// This package contains type definitions and the collaborator contracts only.
// All other internal packages import record; record imports nothing internal.
//
// Key design constraints:
//   - Field order is the record type's declared schema order
//   - Field values are stored raw (markup included); normalization happens elsewhere
//   - Flattened form joins values with FieldSeparator (0x1f), the lookup boundary marker
package record
