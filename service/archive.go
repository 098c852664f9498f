package service

import (
	"math/big"
	"time"

	"go.dedis.ch/mixvote/lib"
	"go.dedis.ch/onet/v3/log"
	"go.dedis.ch/protobuf"
	bbolt "go.etcd.io/bbolt"
	"golang.org/x/xerrors"
)

// archiveBucket holds one record per closed election, keyed by id.
var archiveBucket = []byte("mixvote-archive")

// Record is the audit trail of a closed election. Integers are stored as
// big-endian magnitudes.
type Record struct {
	ID         string
	Code       string
	Title      string
	Owner      string
	Candidates []string
	// Counts are the tallied votes in candidate order.
	Counts []uint32
	// N is the modulus of the election key.
	N       []byte
	Ballots [][]byte
	Mixes   []*MixRecord
	// Closed is the unix time of the tally.
	Closed int64
}

// MixRecord is one archived mix round.
type MixRecord struct {
	Shuffled        [][]byte
	PrimaryRandom   []byte
	SecondaryRandom []byte
	PrimarySwaps    []uint32
	SecondarySwaps  []uint32
	CommitmentHash  []byte
}

// NewRecord builds the audit record of a closed election.
func NewRecord(e *lib.Election) *Record {
	results := e.Results()
	r := &Record{
		ID:         e.ID,
		Code:       e.Code,
		Title:      e.Title,
		Owner:      e.Owner,
		Candidates: append([]string{}, e.Candidates...),
		Counts:     make([]uint32, len(e.Candidates)),
		N:          e.Key.Public.N.Bytes(),
		Ballots:    intsToBytes(e.Board.Ballots()),
		Closed:     time.Now().Unix(),
	}
	for i, c := range e.Candidates {
		r.Counts[i] = uint32(results[c])
	}
	for _, m := range e.Mixes() {
		r.Mixes = append(r.Mixes, &MixRecord{
			Shuffled:        intsToBytes(m.Ballots),
			PrimaryRandom:   m.Proof.PrimaryRandom.Bytes(),
			SecondaryRandom: m.Proof.SecondaryRandom.Bytes(),
			PrimarySwaps:    swapsToUint(m.Proof.PrimarySwaps),
			SecondarySwaps:  swapsToUint(m.Proof.SecondarySwaps),
			CommitmentHash:  m.Proof.CommitmentHash,
		})
	}
	return r
}

// Results returns the archived tally.
func (r *Record) Results() lib.TallyResult {
	res := make(lib.TallyResult, len(r.Candidates))
	for i, c := range r.Candidates {
		if i < len(r.Counts) {
			res[c] = int(r.Counts[i])
		}
	}
	return res
}

// Proofs returns the archived proofs, oldest first.
func (r *Record) Proofs() []*lib.Proof {
	proofs := make([]*lib.Proof, len(r.Mixes))
	for i, m := range r.Mixes {
		proofs[i] = &lib.Proof{
			PrimaryRandom:   new(big.Int).SetBytes(m.PrimaryRandom),
			SecondaryRandom: new(big.Int).SetBytes(m.SecondaryRandom),
			PrimarySwaps:    uintToSwaps(m.PrimarySwaps),
			SecondarySwaps:  uintToSwaps(m.SecondarySwaps),
			CommitmentHash:  m.CommitmentHash,
		}
	}
	return proofs
}

// Archive is a bbolt database of election records.
type Archive struct {
	db *bbolt.DB
}

// OpenArchive opens or creates the archive at path.
func OpenArchive(path string) (*Archive, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, xerrors.Errorf("opening archive: %w", err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(archiveBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, xerrors.Errorf("creating bucket: %w", err)
	}
	log.Lvl2("opened archive", path)
	return &Archive{db: db}, nil
}

// Close releases the database.
func (a *Archive) Close() error {
	return a.db.Close()
}

// Store writes r, replacing an earlier record of the same election.
func (a *Archive) Store(r *Record) error {
	buf, err := protobuf.Encode(r)
	if err != nil {
		return xerrors.Errorf("encoding record: %w", err)
	}
	return a.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(archiveBucket).Put([]byte(r.ID), buf)
	})
}

// Load reads the record of election id.
func (a *Archive) Load(id string) (*Record, error) {
	var r *Record
	err := a.db.View(func(tx *bbolt.Tx) error {
		buf := tx.Bucket(archiveBucket).Get([]byte(id))
		if buf == nil {
			return xerrors.Errorf("%s not archived: %w", id, ErrUnknownElection)
		}
		r = &Record{}
		return protobuf.Decode(buf, r)
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

// List returns all records, ordered by id.
func (a *Archive) List() ([]*Record, error) {
	var records []*Record
	err := a.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(archiveBucket).ForEach(func(k, v []byte) error {
			r := &Record{}
			if err := protobuf.Decode(v, r); err != nil {
				return xerrors.Errorf("decoding %s: %w", k, err)
			}
			records = append(records, r)
			return nil
		})
	})
	return records, err
}

func intsToBytes(ints []*big.Int) [][]byte {
	out := make([][]byte, len(ints))
	for i, c := range ints {
		out[i] = c.Bytes()
	}
	return out
}

// BytesToInts reads back integers stored in a record.
func BytesToInts(bs [][]byte) []*big.Int {
	out := make([]*big.Int, len(bs))
	for i, b := range bs {
		out[i] = new(big.Int).SetBytes(b)
	}
	return out
}

func swapsToUint(swaps []int) []uint32 {
	out := make([]uint32, len(swaps))
	for i, s := range swaps {
		out[i] = uint32(s)
	}
	return out
}

func uintToSwaps(swaps []uint32) []int {
	out := make([]int, len(swaps))
	for i, s := range swaps {
		out[i] = int(s)
	}
	return out
}
