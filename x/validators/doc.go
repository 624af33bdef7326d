/*
Package validators governs membership of the validator set through unanimous
consent.

A current validator proposes to admit a candidate; once every current
validator voted for it, anybody may resolve the proposal and the candidate
is admitted. Removal works the same way, except the candidate itself does
not take part in the vote, so every other validator must agree. The
configured administrator can admit or remove a validator without any vote.

Admission and removal are handed to a KeyRotator, which schedules the
operating key of the account for the next session. At a session boundary the
rotator reads the set back with Controller.CurrentValidators.

Every successful operation is reported with tags on the deliver result:

	poa.event      ValidatorProposed, ValidatorRemovalProposed,
	               ValidatorAdded or ValidatorRemoved
	poa.proposer   hex address of the voter (proposal events only)
	poa.candidate  hex address of the candidate
	poa.pubkey     hex operating key of the candidate, if known
*/
package validators
