// Package weavetest provides test doubles for the framework interfaces:
// authenticators, handlers, decorators, tickers, transactions and keys.
package weavetest
