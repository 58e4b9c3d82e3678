// Package conductor runs user actions against a courier and tracks their
// status.
//
// # Status Machine
//
// The status starts at IDLE and has no terminal state:
//
//	requested   allowed from
//	WAITING     IDLE, SUCCESS, HAS_DATA, HAS_ERROR
//	SUCCESS     WAITING
//	HAS_DATA    SUCCESS
//
// Any other request leaves the status unchanged and logs
// "status transition rejected" at warn level. Nothing transitions into
// HAS_ERROR today; the value exists so a renderer can handle it.
// WAITING from SUCCESS is what lets the suggestion fetch in step 5 run
// between the book fetch and HAS_DATA.
//
// # SUBMIT_FORM
//
// The only action. Each step finishes before the next starts:
//
//  1. WAITING
//  2. courier.Post(payload)
//  3. SUCCESS
//  4. courier.FetchAll() -> books
//  5. if books is non-empty: WAITING, courier.Suggest(), SUCCESS,
//     store.UpdateAll("suggestedBooks", ...)
//  6. store.UpdateAll("books", books)
//  7. HAS_DATA
//
// A courier error stops the sequence and is returned from Dispatch; the status
// stays where it was (WAITING for a failed Post). Dispatching an unknown
// action type panics.
//
// # Concurrency
//
// Dispatch blocks until the sequence finishes. Nothing serializes concurrent
// dispatches: two overlapping submits interleave their status requests, and
// the machine rejects (and logs) whichever ones do not fit. The store and
// machine are individually safe for concurrent readers.
package conductor
