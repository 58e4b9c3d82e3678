// Package courier provides the book backends the conductor calls.
//
// # Overview
//
// A Courier exposes three calls:
//
//   - Post: store a book, returning it with a newly assigned integer id
//   - FetchAll: every stored book, normalized by id
//   - Suggest: a fixed two-item suggestion list, normalized by position
//
// Two implementations exist:
//
//   - Simulated: in-process. Every call waits a fixed latency (500ms by
//     default) before resolving. Ids come from a counter that starts at
//     FirstID (0 unless restored from persistent storage) and is advanced
//     when Post is called, before the latency elapses. Books are kept in a
//     library.Repository, in memory unless shelfd wires Postgres.
//   - Client: HTTP/JSON client for shelfd, the daemon that serves a Simulated
//     backend to several terminals.
//
// # API Endpoints (Client)
//
//	GET  /api/health       liveness, used by Ping
//	POST /api/books        body: {"title","author"} -> {"id","title","author"}
//	GET  /api/books        {"byId": {"0": {...}}, "ids": [0]}
//	GET  /api/suggestions  same shape, keyed 0..n-1
//
// # Error Handling
//
// Client returns errors for request construction, transport failures, HTTP
// status >= 400 ("api /api/books returned status 500") and JSON decoding
// ("decode response: ..."). Simulated returns ctx.Err() when the context ends
// during the latency wait and wraps repository failures.
//
// Neither implementation retries.
//
// # Suggestion Ids
//
// Suggestions carry no id of their own. They are keyed by their index in the
// response, so suggestion 0 and book 0 are unrelated entities. They never
// collide only because the store keeps them in separate collections.
package courier
