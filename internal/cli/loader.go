package cli

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"

	"github.com/roach88/fpstore/internal/model"
)

//go:embed fingerprint.cue
var fingerprintSchema string

// LoadError represents an error that occurred while loading a fingerprint
// document.
type LoadError struct {
	Code     string
	Message  string
	Document int // 1-based index in the YAML stream; 0 when not document specific
}

func (e *LoadError) Error() string {
	if e.Document > 0 {
		return fmt.Sprintf("document %d: %s: %s", e.Document, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// DocumentLoader decodes YAML fingerprint documents and validates each one
// against the embedded CUE schema before it is converted to a model value.
type DocumentLoader struct {
	ctx    *cue.Context
	schema cue.Value
}

// NewDocumentLoader compiles the fingerprint schema.
func NewDocumentLoader() (*DocumentLoader, error) {
	ctx := cuecontext.New()
	v := ctx.CompileString(fingerprintSchema, cue.Filename("fingerprint.cue"))
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("compile fingerprint schema: %w", err)
	}
	def := v.LookupPath(cue.ParsePath("#Fingerprint"))
	if !def.Exists() {
		return nil, errors.New("fingerprint schema: #Fingerprint not defined")
	}
	return &DocumentLoader{ctx: ctx, schema: def}, nil
}

// LoadFile reads every document in a YAML file.
func (l *DocumentLoader) LoadFile(path string) ([]*model.Fingerprint, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("document file not found: %s", path)}
		}
		return nil, &LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("reading %s: %v", path, err)}
	}
	return l.Load(data)
}

// Load decodes a YAML stream holding one or more "---" separated
// fingerprint documents. The first invalid document aborts the load.
func (l *DocumentLoader) Load(data []byte) ([]*model.Fingerprint, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	var out []*model.Fingerprint
	for n := 1; ; n++ {
		var node yaml.Node
		if err := dec.Decode(&node); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, &LoadError{Code: ErrCodeInvalidDocument, Message: err.Error(), Document: n}
		}
		fp, err := l.decode(&node)
		if err != nil {
			return nil, &LoadError{Code: ErrCodeInvalidDocument, Message: err.Error(), Document: n}
		}
		out = append(out, fp)
	}
	if len(out) == 0 {
		return nil, &LoadError{Code: ErrCodeNoDocuments, Message: "no fingerprint documents found"}
	}
	return out, nil
}

func (l *DocumentLoader) decode(node *yaml.Node) (*model.Fingerprint, error) {
	var raw any
	if err := node.Decode(&raw); err != nil {
		return nil, err
	}
	v := l.ctx.Encode(raw)
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	if err := l.schema.Unify(v).Validate(cue.Concrete(true)); err != nil {
		return nil, fmt.Errorf("schema violation: %s", cueerrors.Details(err, nil))
	}

	var doc model.Fingerprint
	if err := node.Decode(&doc); err != nil {
		return nil, err
	}

	// Empty collections, never nil, the same shape a store read returns.
	m := model.NewMeasurement(doc.Measurement.Timestamp.UTC())
	m.WiFi = append(m.WiFi, doc.Measurement.WiFi...)
	m.GSM = append(m.GSM, doc.Measurement.GSM...)
	m.Bluetooth = append(m.Bluetooth, doc.Measurement.Bluetooth...)
	return &model.Fingerprint{Location: doc.Location, Measurement: m}, nil
}
