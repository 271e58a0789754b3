package IO

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	tk "github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/model"
	"github.com/sugarme/tokenizer/model/bpe"
	"github.com/sugarme/tokenizer/normalizer"
	"github.com/sugarme/tokenizer/pretokenizer"
	"github.com/sugarme/tokenizer/pretrained"
)

// BPETokenizer segments raw text into subword piece strings using a trained
// BPE tokenizer. The pipeline consumes the piece strings exactly like
// whitespace word tokens; the model core never knows which tokenizer ran.
type BPETokenizer struct {
	t       *tk.Tokenizer
	idToTok []string
}

// TrainOrLoadBPE loads a saved tokenizer from tokPath, or trains one on
// corpusPath (and saves it) if none exists yet.
func TrainOrLoadBPE(corpusPath, tokPath string, vocabSize int) (*BPETokenizer, error) {
	if fileExists(tokPath) {
		t, err := pretrained.FromFile(tokPath)
		if err != nil {
			return nil, errors.Wrapf(err, "loading tokenizer %q", tokPath)
		}
		return newBPETokenizer(t)
	}

	bpeModel := bpe.NewBPE(model.Vocab{}, bpe.Merges{})
	t := tk.NewTokenizer(bpeModel)

	// Normalize to NFKC lowercase so pieces merge case-insensitively.
	t.WithNormalizer(normalizer.NewSequence([]normalizer.Normalizer{
		normalizer.NewNFKC(),
		normalizer.Lowercase(),
	}))
	// Whitespace pretokenization keeps pieces word-internal, matching the
	// word-level pipeline's notion of a token boundary.
	t.WithPreTokenizer(pretokenizer.NewWhitespaceSplit())

	tr := bpe.NewBpeTrainer(0, 0)
	tr.VocabSize = vocabSize

	if err := t.Train(tr, []string{corpusPath}); err != nil {
		return nil, errors.Wrapf(err, "training BPE tokenizer on %q", corpusPath)
	}
	if err := os.MkdirAll(filepath.Dir(tokPath), 0o755); err != nil {
		return nil, errors.Wrapf(err, "creating tokenizer directory for %q", tokPath)
	}
	if err := t.Save(tokPath, false); err != nil {
		return nil, errors.Wrapf(err, "saving tokenizer %q", tokPath)
	}
	return newBPETokenizer(t)
}

func newBPETokenizer(t *tk.Tokenizer) (*BPETokenizer, error) {
	vocab := t.GetVocab(true)
	idToTok := make([]string, len(vocab))
	for tok, id := range vocab {
		if id < 0 || id >= len(idToTok) {
			return nil, errors.Errorf("tokenizer vocab has non-contiguous id %d for %q", id, tok)
		}
		idToTok[id] = tok
	}
	return &BPETokenizer{t: t, idToTok: idToTok}, nil
}

// Segment encodes text and returns the piece strings in order.
func (b *BPETokenizer) Segment(text string) ([]string, error) {
	enc, err := b.t.EncodeSingle(text)
	if err != nil {
		return nil, errors.Wrap(err, "encoding text")
	}
	out := make([]string, 0, len(enc.Ids))
	for _, id := range enc.Ids {
		i := int(id)
		if i < 0 || i >= len(b.idToTok) {
			return nil, errors.Errorf("tokenizer produced unknown id %d", i)
		}
		out = append(out, b.idToTok[i])
	}
	return out, nil
}

// SegmentFile reads a corpus file and segments its contents.
func (b *BPETokenizer) SegmentFile(path string) ([]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading corpus %q", path)
	}
	return b.Segment(string(raw))
}
