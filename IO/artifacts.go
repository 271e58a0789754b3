package IO

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/manningwu07/toyGPT/context2"
	"github.com/manningwu07/toyGPT/params"
	"github.com/manningwu07/toyGPT/vocab"
)

// ErrMissingArtifact is returned when a required persisted file is absent
// at inference time.
var ErrMissingArtifact = errors.New("required artifact not found")

// Meta is the run metadata record persisted alongside the vocabulary and
// weights. It is the only place hyperparameters cross the process boundary.
type Meta struct {
	RepoName     string  `json:"repo_name"`
	ModelKind    string  `json:"model_kind"`
	RunID        string  `json:"run_id"`
	CorpusPath   string  `json:"corpus_path"`
	Tokenizer    string  `json:"tokenizer"`
	VocabSize    int     `json:"vocab_size"`
	LearningRate float64 `json:"learning_rate"`
	Epochs       int     `json:"epochs"`
	CreatedAt    string  `json:"created_at"`
}

// WriteArtifacts persists a training run: metadata JSON, the vocabulary
// table, the flattened weight table, and a small 2-D token projection for
// plotting. The bundle is written once after training and is immutable
// until the next run overwrites it.
func WriteArtifacts(dir string, meta Meta, v *vocab.Vocabulary, m *context2.Model) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "creating artifacts directory %q", dir)
	}
	if err := writeMeta(filepath.Join(dir, params.MetaFile), meta); err != nil {
		return err
	}
	if err := writeVocabCSV(filepath.Join(dir, params.VocabFile), v); err != nil {
		return err
	}
	if err := writeWeightsCSV(filepath.Join(dir, params.WeightsFile), m); err != nil {
		return err
	}
	return writeEmbeddingsCSV(filepath.Join(dir, params.EmbeddingsFile), v, m)
}

func writeMeta(path string, meta Meta) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating %q", path)
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return errors.Wrapf(err, "writing %q", path)
	}
	return nil
}

func writeVocabCSV(path string, v *vocab.Vocabulary) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating %q", path)
	}
	defer f.Close()
	w := csv.NewWriter(f)
	if err := w.Write([]string{"token_id", "token", "frequency"}); err != nil {
		return errors.Wrapf(err, "writing %q", path)
	}
	for id, tok := range v.IDToToken {
		rec := []string{strconv.Itoa(id), tok, strconv.Itoa(v.Counts[id])}
		if err := w.Write(rec); err != nil {
			return errors.Wrapf(err, "writing %q", path)
		}
	}
	w.Flush()
	return errors.Wrapf(w.Error(), "flushing %q", path)
}

// writeWeightsCSV writes the raw score table: vocabSize² rows of vocabSize
// columns, full precision so a reload reproduces forward() exactly.
func writeWeightsCSV(path string, m *context2.Model) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating %q", path)
	}
	defer f.Close()
	w := csv.NewWriter(f)

	weights := m.Weights()
	rows, cols := weights.Dims()
	rec := make([]string, cols)
	for r := 0; r < rows; r++ {
		row := weights.RawRowView(r)
		for c, x := range row {
			rec[c] = strconv.FormatFloat(x, 'g', -1, 64)
		}
		if err := w.Write(rec); err != nil {
			return errors.Wrapf(err, "writing %q row %d", path, r)
		}
	}
	w.Flush()
	return errors.Wrapf(w.Error(), "flushing %q", path)
}

// writeEmbeddingsCSV writes a crude 2-D projection per token for plotting:
// dim0 is the mean raw score the table assigns *to* the token across all
// contexts, dim1 the mean score of the rows where the token is the previous
// context slot. Not a learned embedding, just a visualization aid.
func writeEmbeddingsCSV(path string, v *vocab.Vocabulary, m *context2.Model) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating %q", path)
	}
	defer f.Close()
	w := csv.NewWriter(f)
	if err := w.Write([]string{"token_id", "token", "dim0", "dim1"}); err != nil {
		return errors.Wrapf(err, "writing %q", path)
	}

	weights := m.Weights()
	V := m.VocabSize()
	for t := 0; t < V; t++ {
		var in, out float64
		for r := 0; r < V*V; r++ {
			in += weights.At(r, t)
		}
		for r := t * V; r < (t+1)*V; r++ {
			for c := 0; c < V; c++ {
				out += weights.At(r, c)
			}
		}
		in /= float64(V * V)
		out /= float64(V * V)
		rec := []string{
			strconv.Itoa(t),
			v.IDToToken[t],
			strconv.FormatFloat(in, 'g', -1, 64),
			strconv.FormatFloat(out, 'g', -1, 64),
		}
		if err := w.Write(rec); err != nil {
			return errors.Wrapf(err, "writing %q", path)
		}
	}
	w.Flush()
	return errors.Wrapf(w.Error(), "flushing %q", path)
}

// WriteTrainingLog writes the per-epoch history CSV.
func WriteTrainingLog(path string, history []context2.EpochStats) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating %q", path)
	}
	defer f.Close()
	w := csv.NewWriter(f)
	if err := w.Write([]string{"epoch", "accuracy", "loss"}); err != nil {
		return errors.Wrapf(err, "writing %q", path)
	}
	for _, st := range history {
		rec := []string{
			strconv.Itoa(st.Epoch),
			strconv.FormatFloat(st.Accuracy, 'g', -1, 64),
			strconv.FormatFloat(st.Loss, 'g', -1, 64),
		}
		if err := w.Write(rec); err != nil {
			return errors.Wrapf(err, "writing %q", path)
		}
	}
	w.Flush()
	return errors.Wrapf(w.Error(), "flushing %q", path)
}

// LoadArtifacts reads a persisted bundle back into memory. All three of
// meta, vocabulary and weights must be present; the weight table must have
// vocabSize² rows of vocabSize columns.
func LoadArtifacts(dir string) (Meta, *vocab.Vocabulary, *context2.Model, error) {
	var meta Meta
	for _, name := range []string{params.MetaFile, params.VocabFile, params.WeightsFile} {
		p := filepath.Join(dir, name)
		if !fileExists(p) {
			return meta, nil, nil, errors.Wrapf(ErrMissingArtifact,
				"%q (run `toygpt train` first)", p)
		}
	}

	meta, err := loadMeta(filepath.Join(dir, params.MetaFile))
	if err != nil {
		return meta, nil, nil, err
	}
	v, err := loadVocabCSV(filepath.Join(dir, params.VocabFile))
	if err != nil {
		return meta, nil, nil, err
	}
	m, err := loadWeightsCSV(filepath.Join(dir, params.WeightsFile), v.Size())
	if err != nil {
		return meta, nil, nil, err
	}
	return meta, v, m, nil
}

func loadMeta(path string) (Meta, error) {
	var meta Meta
	raw, err := os.ReadFile(path)
	if err != nil {
		return meta, errors.Wrapf(err, "reading %q", path)
	}
	if err := json.Unmarshal(raw, &meta); err != nil {
		return meta, errors.Wrapf(err, "parsing %q", path)
	}
	return meta, nil
}

func loadVocabCSV(path string) (*vocab.Vocabulary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %q", path)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %q", path)
	}
	if len(rows) < 1 {
		return nil, errors.Errorf("vocabulary %q is empty", path)
	}
	rows = rows[1:] // header

	v := &vocab.Vocabulary{
		TokenToID: make(map[string]int, len(rows)),
		IDToToken: make([]string, len(rows)),
		Counts:    make([]int, len(rows)),
	}
	for _, rec := range rows {
		if len(rec) != 3 {
			return nil, errors.Errorf("vocabulary %q: want 3 columns, got %d", path, len(rec))
		}
		id, err := strconv.Atoi(rec[0])
		if err != nil {
			return nil, errors.Wrapf(err, "vocabulary %q: bad token_id %q", path, rec[0])
		}
		if id < 0 || id >= len(rows) {
			return nil, errors.Errorf("vocabulary %q: token_id %d out of range", path, id)
		}
		freq, err := strconv.Atoi(rec[2])
		if err != nil {
			return nil, errors.Wrapf(err, "vocabulary %q: bad frequency %q", path, rec[2])
		}
		v.IDToToken[id] = rec[1]
		v.Counts[id] = freq
		v.TokenToID[rec[1]] = id
	}
	if len(v.TokenToID) != len(v.IDToToken) {
		return nil, errors.Errorf("vocabulary %q: token/id mapping is not a bijection", path)
	}
	return v, nil
}

func loadWeightsCSV(path string, vocabSize int) (*context2.Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %q", path)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // shape is validated below
	rows, err := r.ReadAll()
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %q", path)
	}

	wantRows := vocabSize * vocabSize
	if len(rows) != wantRows {
		return nil, errors.Wrapf(context2.ErrShapeMismatch,
			"%q has %d rows, want %d for vocab size %d", path, len(rows), wantRows, vocabSize)
	}
	data := make([]float64, 0, wantRows*vocabSize)
	for i, rec := range rows {
		if len(rec) != vocabSize {
			return nil, errors.Wrapf(context2.ErrShapeMismatch,
				"%q row %d has %d columns, want %d", path, i, len(rec), vocabSize)
		}
		for _, s := range rec {
			x, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, errors.Wrapf(err, "%q row %d: bad weight %q", path, i, s)
			}
			data = append(data, x)
		}
	}

	m, err := context2.New(vocabSize)
	if err != nil {
		return nil, err
	}
	if err := m.SetWeights(mat.NewDense(wantRows, vocabSize, data)); err != nil {
		return nil, err
	}
	return m, nil
}
