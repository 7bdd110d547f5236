// Package channel normalizes channel configuration and derives the
// active encryption key.
//
// Channel settings arrive in an abbreviated persisted form: the name
// may be empty (meaning "derive one from the modem profile") and the
// pre-shared key may be a single index byte selecting a variant of the
// well-known default key. Apply expands both into their usable forms
// and canonicalizes the stored configuration so that repeated saves
// stabilize.
//
// The derivation is pure: the active name and key are always a
// function of the current ChannelSettings, never independently
// mutable state.
package channel
