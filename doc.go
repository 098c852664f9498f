/*
Package mixvote holds the pieces shared by every stage of a mixvote election:
the configuration of the cryptographic parameters and the error wrapper used
by the service.

An election goes through three stages. While it is running, voters encrypt
the index of their candidate with the election's Paillier key and append the
ciphertext to the bulletin board. The owner then mixes the board: every
ballot is re-encrypted and the list is permuted, and a cut-and-choose proof
is recorded. Finally the shuffled ballots are decrypted one by one and
counted, which closes the election.

The cryptography lives in lib (Paillier cipher, bulletin board, election
record) and protocol (mix, reveal, verify, tally). The service package keeps
users and elections in explicit stores and drives the stages; mixvote-admin
is a command line front end for it.
*/
package mixvote
