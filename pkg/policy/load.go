package policy

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"io/fs"
	"os"
	"regexp"
	"strconv"

	"gopkg.in/yaml.v3"
)

// MaxDocumentSize bounds the policy file read.
const MaxDocumentSize = 1 << 20

var yamlLine = regexp.MustCompile(`line (\d+)`)

// Parse decodes a policy document on top of the defaults. Unknown keys are
// rejected so a misspelt list name does not silently keep the default.
func Parse(data []byte, path string) (*Document, error) {
	doc := Default()
	if len(bytes.TrimSpace(data)) == 0 {
		return doc, nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(doc); err != nil && !errors.Is(err, io.EOF) {
		pe := &ParseError{FilePath: path, Message: err.Error(), Cause: err}
		if m := yamlLine.FindStringSubmatch(err.Error()); m != nil {
			pe.Line, _ = strconv.Atoi(m[1])
		}
		return nil, pe
	}
	return doc, nil
}

// Load reads, validates and compiles the policy at path. A missing file
// yields the built-in rules.
func Load(path string) (*Rules, error) {
	if path == "" {
		return MustDefaultRules(), nil
	}

	data, err := readLimited(path)
	if errors.Is(err, fs.ErrNotExist) {
		return MustDefaultRules(), nil
	}
	if err != nil {
		return nil, err
	}

	doc, err := Parse(data, path)
	if err != nil {
		return nil, err
	}
	rules, err := doc.Compile()
	if err != nil {
		return nil, err
	}

	sum := sha256.Sum256(data)
	rules.Source = path
	rules.Digest = hex.EncodeToString(sum[:8])
	return rules, nil
}

func readLimited(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		return nil, &LoadError{FilePath: path, Message: "cannot open", Cause: err}
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxDocumentSize+1))
	if err != nil {
		return nil, &LoadError{FilePath: path, Message: "cannot read", Cause: err}
	}
	if len(data) > MaxDocumentSize {
		return nil, &LoadError{FilePath: path, Message: "file exceeds 1 MiB"}
	}
	return data, nil
}
