// Package aof implements the append-only log that makes writes of an rKV
// server durable.
//
// Only SET requests are logged. Each record is the request frame exactly as
// it would be sent on the wire, so the file can be inspected with any RESP
// tool and replayed with the same decoder the server uses for the network:
//
//	*3\r\n$3\r\nSET\r\n$3\r\nfoo\r\n$3\r\nbar\r\n
//
// Writing:
//
//	Log.Commit applies a write to the store and appends the record under one
//	lock, which keeps the record order identical to the apply order. Appends
//	are written with a single write call; with fsync enabled the file is
//	synced before the call returns. A failed append is reported to the caller
//	but the in-memory write stays applied. Open checks the existing records
//	and cuts off a torn tail, so appends never follow a partial record.
//
// Replay:
//
//	Replay re-applies all records in file order. Replaying a log into an
//	empty store reproduces the state that the logged writes produced. A torn
//	final record is cut off; there is no compaction, so the log grows with
//	every write.
package aof
