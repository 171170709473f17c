// Package session keeps every piece of per-visitor state: the book being edited,
// the viewer position, an in-progress drag and the obfuscated Gemini credential.
//
// State lives in scs sessions. The default memory store forgets everything on
// restart; the SQLite store (SESSION_STORE=sqlite) keeps sessions until they expire.
// Nothing outlives the session cookie, which is not persisted by the browser.
package session
