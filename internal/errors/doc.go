// Package errors provides coded, structured errors for elementsize.
//
// Every error carries a short code (e.g. "E101") that maps to a registered
// template with a category, a one-line message and a longer explanation:
//
//	err := errors.New("E201").Wrap(io.ErrUnexpectedEOF)
//	fmt.Println(err.Format())
//	// ERROR E201: Malformed protocol frame
//	//
//	//   A frame or payload received from a client could not be decoded.
//	//
//	//   Caused by: unexpected EOF
//
// # Error Categories
//
//   - runtime: hook and tracker misuse (missing collaborators, hook order)
//   - protocol: wire decoding failures from remote clients
//   - config: invalid elementsize.json values
//   - cli: command line failures
package errors
