package service

import (
	"math/big"

	"go.dedis.ch/mixvote/lib"
)

// Register message. It creates or updates a user.
type Register struct {
	// Email identifies the user.
	Email string
	// Name is shown to other participants.
	Name string
	// Subject is the identifier given by the identity provider. A random
	// one is assigned when it is empty.
	Subject string
}

// RegisterReply message.
type RegisterReply struct {
	// Created is false if the user existed already.
	Created bool
	Subject string
}

// Open message. It creates an election with a fresh key pair.
type Open struct {
	Owner      string
	Title      string
	Candidates []string
}

// OpenReply message.
type OpenReply struct {
	// ID of the election.
	ID string
	// Code is handed to voters to join the election.
	Code string
	// Key is the public key the ballots are encrypted under.
	Key *lib.PublicKey
}

// Join message.
type Join struct {
	User string
	Code string
}

// JoinReply message.
type JoinReply struct {
	ID string
	// Joined is false if the user was a participant already.
	Joined bool
}

// Cast message. The vote is encrypted for the user.
type Cast struct {
	User      string
	ID        string
	Candidate string
}

// CastReply message.
type CastReply struct {
	// Ballot is the encrypted vote as it appears on the board.
	Ballot *big.Int
}

// VerifyEncryption message. It encrypts a choice without casting it so that
// the user can check the computation.
type VerifyEncryption struct {
	User      string
	ID        string
	Candidate string
}

// VerifyEncryptionReply message.
type VerifyEncryptionReply struct {
	N         *big.Int
	NSquared  *big.Int
	G         *big.Int
	Plaintext *big.Int
	Random    *big.Int
	Ballot    *big.Int
	// Decrypted is the plaintext recovered from Ballot.
	Decrypted *big.Int
}

// Shuffle message. Only the owner can mix the ballots.
type Shuffle struct {
	User string
	ID   string
}

// ShuffleReply message.
type ShuffleReply struct {
	// Round is the number of the mix round, starting at 1.
	Round int
	// Ballots is the number of ballots that were mixed.
	Ballots int
	Proof   *lib.Proof
}

// Tally message. Only the owner can close the election.
type Tally struct {
	User string
	ID   string
}

// TallyReply message.
type TallyReply struct {
	Results lib.TallyResult
}

// GetBox message.
type GetBox struct {
	ID string
}

// GetBoxReply message.
type GetBoxReply struct {
	// Ballots are the cast ballots in board order.
	Ballots []*big.Int
	// Shuffled is the output of the last mix round, nil before any mix.
	Shuffled []*big.Int
}

// GetProofs message.
type GetProofs struct {
	ID string
}

// GetProofsReply message.
type GetProofsReply struct {
	Proofs []*lib.Proof
}

// RevealProofs message. A Depth of 0 uses the configured depth.
type RevealProofs struct {
	ID    string
	Depth int
}

// RevealProofsReply message.
type RevealProofsReply struct {
	// Disclosures holds the text of every mix round, oldest first.
	Disclosures []string
	// Verified tells for every mix round if the disclosure matches the
	// board.
	Verified []bool
}

// GetElections message.
type GetElections struct {
	User string
}

// GetElectionsReply message.
type GetElectionsReply struct {
	// Owned are the elections the user created.
	Owned []*Summary
	// Joined are the elections the user participates in without owning
	// them.
	Joined []*Summary
}

// Summary describes an election from the point of view of one user.
type Summary struct {
	ID      string
	Code    string
	Title   string
	Owner   string
	Stage   lib.ElectionState
	Ballots int
	Voted   bool
	Results lib.TallyResult
}

// GetArchive message.
type GetArchive struct {
	ID string
}

// GetArchiveReply message.
type GetArchiveReply struct {
	Record *Record
}
