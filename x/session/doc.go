/*
Package session binds operating keys to accounts and applies the validator
set to the consensus engine at session boundaries.

An account binds its ed25519 operating key with SetKeysMsg. When the
governance admits the account, the Keeper queues the bound key for the next
session; when it removes the account, the key is dropped from the queue.

The Ticker runs at the beginning of every block. A session ends every
SessionLength blocks, or at the next block when the governance requested a
rotation. At the boundary the validator set is read back from the
governance and compared with the active set, and the difference is returned
as validator updates.
*/
package session
