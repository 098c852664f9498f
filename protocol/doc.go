/*
Package protocol implements the tallying pipeline of an election.

Mix: Every mix round re-encrypts the cast ballots with a fresh randomizer and
permutes them. A second, independent shuffle of the same ballots is hashed and
the hash serves as a Fiat-Shamir challenge.

Reveal: Each challenge bit decides which secrets of the round are disclosed.
A set bit discloses the secrets of both shuffles, an unset bit only those of
the committed one.

Verify: An auditor recomputes the committed shuffle from the disclosed secrets
and compares it with the commitment, and the published shuffle when it was
disclosed.

Tally: The shuffled ballots are decrypted and counted per candidate.

Schema:

          [Mix]              [Reveal]             [Tally]
  Board ---------> Shuffled ----------> Proofs ----------> Result
*/
package protocol
