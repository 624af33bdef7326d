/*
Package errors implements the error model shared by the whole node.

Every failure returned by a handler, decorator or store should wrap one of the
registered root errors. A root error carries an ABCI code so that a client can
tell failures apart without parsing the message.

Reuse the root errors declared in this package whenever possible. An
extension that needs its own category registers it once, during package
initialization, with Register(code, description). Codes must be unique and
Register panics on reuse.

Create instances with ErrXyz.New/Newf or Wrap/Wrapf at the point where the
failure happens so that the stack trace points at the right frame.

	%s  the error message
	%v  the message followed by [file:line] of the creation point
	%+v the message and the full stack trace
*/
package errors
