// Package vocab maps tokens to integer IDs and back, with frequency counts.
// It bridges raw token strings and the numeric representation the model
// trains on.
package vocab

import "github.com/pkg/errors"

var (
	// ErrTokenNotFound is returned when a token is not in the vocabulary.
	ErrTokenNotFound = errors.New("token not found in vocabulary")
	// ErrIDOutOfRange is returned when a token ID has no assigned token.
	ErrIDOutOfRange = errors.New("token id out of range")
)

// Vocabulary assigns each distinct token a unique 0-based ID in first-seen
// corpus order, so ID assignment is stable for a given token stream.
type Vocabulary struct {
	TokenToID map[string]int
	IDToToken []string
	Counts    []int // occurrence count by ID
}

// Build constructs a Vocabulary from an ordered token stream.
func Build(tokens []string) *Vocabulary {
	v := &Vocabulary{TokenToID: make(map[string]int)}
	for _, tok := range tokens {
		id, ok := v.TokenToID[tok]
		if !ok {
			id = len(v.IDToToken)
			v.TokenToID[tok] = id
			v.IDToToken = append(v.IDToToken, tok)
			v.Counts = append(v.Counts, 0)
		}
		v.Counts[id]++
	}
	return v
}

// Size returns the number of distinct tokens.
func (v *Vocabulary) Size() int {
	return len(v.IDToToken)
}

// TokenID looks up the ID for a token.
func (v *Vocabulary) TokenID(tok string) (int, error) {
	id, ok := v.TokenToID[tok]
	if !ok {
		return 0, errors.Wrapf(ErrTokenNotFound, "%q", tok)
	}
	return id, nil
}

// TokenByID looks up the token for an ID.
func (v *Vocabulary) TokenByID(id int) (string, error) {
	if id < 0 || id >= len(v.IDToToken) {
		return "", errors.Wrapf(ErrIDOutOfRange, "id %d with vocab size %d", id, len(v.IDToToken))
	}
	return v.IDToToken[id], nil
}

// Frequency returns the occurrence count for a token, 0 if unknown.
func (v *Vocabulary) Frequency(tok string) int {
	id, ok := v.TokenToID[tok]
	if !ok {
		return 0
	}
	return v.Counts[id]
}

// IDs converts a token stream to its ID sequence. Every token must be in
// the vocabulary.
func (v *Vocabulary) IDs(tokens []string) ([]int, error) {
	ids := make([]int, len(tokens))
	for i, tok := range tokens {
		id, err := v.TokenID(tok)
		if err != nil {
			return nil, err
		}
		ids[i] = id
	}
	return ids, nil
}
