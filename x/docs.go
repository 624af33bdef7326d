/*
Package x contains the standard extensions of the node.

Extensions implement common functionality (Handler, Decorator,
Ticker, etc.) and are combined together by the application.

This package itself only defines how extensions learn who signed a
transaction. Authenticator implementations live in sub-packages and are
passed into handler constructors.
*/
package x
