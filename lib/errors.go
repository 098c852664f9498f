package lib

import "golang.org/x/xerrors"

// Failures of the election stages. Operations wrap one of these with some
// context; use xerrors.Is to test for them.
var (
	// ErrKeyGeneration is returned when no valid key pair could be built.
	ErrKeyGeneration = xerrors.New("key generation error")
	// ErrEncryption is returned for an invalid public key or a plaintext
	// out of range.
	ErrEncryption = xerrors.New("encryption error")
	// ErrDecryption is returned for a ciphertext that the private key cannot
	// decrypt.
	ErrDecryption = xerrors.New("decryption error")
	// ErrMix is returned for an empty or already mixed set of ballots.
	ErrMix = xerrors.New("mix error")
	// ErrTally is returned when the ballots cannot be counted.
	ErrTally = xerrors.New("tally error")
	// ErrInvalidProof is returned for a malformed or non-matching shuffle
	// proof.
	ErrInvalidProof = xerrors.New("invalid proof")
)

// Bookkeeping failures of an election.
var (
	// ErrElectionClosed is returned for any change to a tallied election.
	ErrElectionClosed = xerrors.New("election is closed")
	// ErrNotParticipant is returned when a user who did not join casts a
	// ballot.
	ErrNotParticipant = xerrors.New("user is not a participant")
	// ErrAlreadyVoted is returned for a second ballot of the same user.
	ErrAlreadyVoted = xerrors.New("user has already voted")
	// ErrUnknownCandidate is returned for a choice that is not on the list.
	ErrUnknownCandidate = xerrors.New("unknown candidate")
)
