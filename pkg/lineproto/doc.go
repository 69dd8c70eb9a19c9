// Package lineproto implements the rollcall line protocol.
//
// Requests are single lines:
//
//	OPCODE[ HEXPAYLOAD]\n
//
// The payload is the hex encoding of UTF-8 text whose fields are joined with '|'.
// Responses are either one status line ("OK" or "ERR:<code>") or a row stream:
// zero or more "f1 | f2 | ..." lines terminated by a sentinel line ".".
//
// The legacy attendance framing is also understood:
//
//	ATT|HEXROLL|HEXCOURSE|HEXTIMESTAMP|HEXSTATUS\n
//
// Each field is hex-encoded on its own and the reply is "OK|Recorded" or "ERR|<code>".
//
// Usage:
//
//	cmd, err := lineproto.Parse("ADD_STUDENT 53317c416c696365")
//	// cmd.Op == OpAddStudent, cmd.Fields == []string{"S1", "Alice"}
//
//	line, _ := lineproto.FormatRequest(lineproto.OpListStudents)
//	// "LIST_STUDENTS\n"
//
// The package is shared by the server and by clients and has no dependencies
// outside the standard library.
package lineproto
