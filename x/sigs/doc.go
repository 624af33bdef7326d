/*
Package sigs provides basic authentication
middleware to verify the ed25519 signatures on the transaction,
and maintain per-signer sequences for replay protection.
*/
package sigs
