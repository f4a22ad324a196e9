// Package vocab holds the character vocabulary a trained sequence model
// was built against: a dense bidirectional mapping between runes and
// integer ids.
package vocab

import (
	"fmt"
	"slices"
)

// Vocabulary is an immutable rune<->id mapping. Ids are dense in
// [0, Size()) and every id maps to exactly one rune and back.
type Vocabulary struct {
	charToID map[rune]int
	idToChar []rune
}

// New builds a vocabulary from an explicit, ordered character set.
// Duplicate runes are an error since they would break the bijection.
func New(chars []rune) (*Vocabulary, error) {
	charToID := make(map[rune]int, len(chars))
	for i, r := range chars {
		if _, dup := charToID[r]; dup {
			return nil, fmt.Errorf("vocab: duplicate character %q at index %d", string(r), i)
		}
		charToID[r] = i
	}
	return &Vocabulary{
		charToID: charToID,
		idToChar: slices.Clone(chars),
	}, nil
}

// FromCorpus builds a vocabulary from training text: the sorted set of
// unique runes in the corpus. Sorting keeps the id assignment
// deterministic across runs.
func FromCorpus(text string) *Vocabulary {
	seen := make(map[rune]struct{})
	for _, r := range text {
		seen[r] = struct{}{}
	}

	runes := make([]rune, 0, len(seen))
	for r := range seen {
		runes = append(runes, r)
	}
	slices.Sort(runes)

	charToID := make(map[rune]int, len(runes))
	for i, r := range runes {
		charToID[r] = i
	}
	return &Vocabulary{
		charToID: charToID,
		idToChar: runes,
	}
}

// Size returns the number of characters in the vocabulary.
func (v *Vocabulary) Size() int {
	return len(v.idToChar)
}

// CharToID returns the id for a rune, or false if the rune is unknown.
func (v *Vocabulary) CharToID(r rune) (int, bool) {
	id, ok := v.charToID[r]
	return id, ok
}

// IDToChar returns the rune for an id, or false if the id is out of range.
func (v *Vocabulary) IDToChar(id int) (rune, bool) {
	if id < 0 || id >= len(v.idToChar) {
		return 0, false
	}
	return v.idToChar[id], true
}

// Runes returns a copy of the vocabulary characters in id order.
func (v *Vocabulary) Runes() []rune {
	return slices.Clone(v.idToChar)
}

// String returns the vocabulary characters in id order as a string,
// the form stored in checkpoints.
func (v *Vocabulary) String() string {
	return string(v.idToChar)
}

// Encode maps each rune of s to its id. Runes not in the vocabulary are
// dropped from the id sequence and returned separately so the caller can
// report them; the caller keeps the original text for display.
func (v *Vocabulary) Encode(s string) (ids []int, dropped []rune) {
	for _, r := range s {
		id, ok := v.charToID[r]
		if !ok {
			dropped = append(dropped, r)
			continue
		}
		ids = append(ids, id)
	}
	return ids, dropped
}

// Decode maps ids back to a string. Out-of-range ids are an error.
func (v *Vocabulary) Decode(ids []int) (string, error) {
	runes := make([]rune, 0, len(ids))
	for _, id := range ids {
		r, ok := v.IDToChar(id)
		if !ok {
			return "", fmt.Errorf("vocab: id %d out of range [0,%d)", id, v.Size())
		}
		runes = append(runes, r)
	}
	return string(runes), nil
}
