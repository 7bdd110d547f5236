// Package persistence serializes the device-state snapshot to flash
// and back.
//
// Snapshots are CBOR with integer keys, stamped with a schema version
// on save and gated on load: a snapshot that fails to decode or whose
// version is below the minimum is discarded wholesale and the caller
// installs defaults. There is no field-level migration; minimum and
// current version are equal on purpose.
//
// Save stages the encoded snapshot in a temporary file and replaces
// the canonical file with a remove-then-rename sequence. A crash
// between the remove and the rename leaves no canonical file; this is
// an accepted, documented risk, and Load reports a missing file as
// "install defaults" rather than an error.
package persistence
