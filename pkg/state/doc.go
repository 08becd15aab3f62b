// Package state loads and saves the shared project state document.
//
// The document is a single JSON file describing the project lifecycle:
// foundation progress, the planning checklist and the active sprint. It is
// created and advanced by external planning and sprint commands. The gate
// only ever reads it, bumps the active sprint's iteration counter and
// stamps its execution context.
//
// Readers tolerate a missing document (ErrNotFound) and a malformed one
// (*CorruptError); what to do in either case is the caller's decision. Keys
// this package does not know about are carried through a load/save cycle
// untouched.
//
// Saves are atomic: the document is written to a temporary file in the same
// directory and renamed over the target, so a concurrent reader sees either
// the old or the new document. Two concurrent writers race and the last
// rename wins; Store is an interface so a locking or versioned
// implementation can replace FileStore where that matters.
package state
