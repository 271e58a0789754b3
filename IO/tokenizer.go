// Package IO holds the pipeline's collaborators: tokenization of raw text
// and reading/writing of the persisted training artifacts.
package IO

import (
	"os"
	"strings"

	"github.com/pkg/errors"
)

// Tokenize splits text into whitespace-delimited word tokens. Deliberately
// simple so every token stays inspectable; subword tokenization is the
// BPE tokenizer's job.
func Tokenize(text string) []string {
	return strings.Fields(text)
}

// TokenizeFile reads a corpus file and tokenizes its contents.
func TokenizeFile(path string) ([]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading corpus %q", path)
	}
	return Tokenize(string(raw)), nil
}

// fileExists is true if path exists.
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
