package journal

import (
	"encoding/binary"

	"golang.org/x/crypto/sha3"

	"github.com/rpggio/sciledger/internal/ledger"
)

// ComputeHash returns SHA3-256 over the previous hash followed by the
// entry's canonical encoding. The entry's own Hash field is ignored.
func ComputeHash(e Entry) ledger.Digest {
	h := sha3.New256()
	h.Write(e.PrevHash[:])
	h.Write(canonical(e))

	var out ledger.Digest
	copy(out[:], h.Sum(nil))
	return out
}

// Link chains e onto head, filling Seq, PrevHash and Hash.
func Link(head Head, e Entry) Entry {
	e.Seq = head.Length + 1
	e.PrevHash = head.Hash
	e.Hash = ComputeHash(e)
	return e
}

// Advance returns the head after e has been appended.
func (h Head) Advance(e Entry) Head {
	return Head{Length: e.Seq, Hash: e.Hash}
}

// Check verifies that entries continue the chain at head and returns the new head.
func Check(head Head, entries []Entry) (Head, error) {
	for _, e := range entries {
		if e.Seq != head.Length+1 || e.PrevHash != head.Hash || ComputeHash(e) != e.Hash {
			return head, ErrIntegrity
		}
		head = head.Advance(e)
	}
	return head, nil
}

func canonical(e Entry) []byte {
	buf := make([]byte, 0, 128)
	buf = binary.BigEndian.AppendUint64(buf, e.Seq)
	buf = appendString(buf, e.CallID)
	buf = appendString(buf, e.Registry)
	buf = appendString(buf, e.Operation)
	buf = appendString(buf, string(e.Principal))
	buf = binary.BigEndian.AppendUint64(buf, e.EntityID)
	buf = binary.BigEndian.AppendUint64(buf, uint64(e.At.UTC().UnixNano()))
	return buf
}

func appendString(buf []byte, s string) []byte {
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(s)))
	return append(buf, s...)
}
