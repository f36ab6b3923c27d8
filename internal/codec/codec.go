package codec

import (
	"bytes"
	"encoding/json"
	"io"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/copyleftdev/trialcore/internal/errors"
)

// Format is a document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat returns the Format named by name, ignoring case. "yml" is
// accepted for YAML.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", errors.Value("ParseFormat", "unknown document format %q", name).WithComponent(component)
	}
}

// FormatFromPath picks a Format from the extension of path.
func FormatFromPath(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", errors.Value("FormatFromPath", "cannot infer document format of %q", path).WithComponent(component)
	}
	return ParseFormat(ext)
}

// Encode writes docs to w as a single list.
func Encode(w io.Writer, format Format, docs ...*TrialDocument) error {
	const op = "Encode"
	if docs == nil {
		docs = []*TrialDocument{}
	}

	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(docs); err != nil {
			return errors.Wrap(err, "encode json").WithOperation(op).WithComponent(component)
		}
		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(docs); err != nil {
			return errors.Wrap(err, "encode yaml").WithOperation(op).WithComponent(component)
		}
		return enc.Close()
	default:
		return errors.Value(op, "unknown document format %q", format).WithComponent(component)
	}
}

// Decode reads trial documents from r. The input is either a list of
// documents or a single document.
func Decode(r io.Reader, format Format) ([]*TrialDocument, error) {
	const op = "Decode"

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "read documents").WithOperation(op).WithComponent(component)
	}

	switch format {
	case FormatJSON:
		return decodeJSON(data)
	case FormatYAML:
		return decodeYAML(data)
	default:
		return nil, errors.Value(op, "unknown document format %q", format).WithComponent(component)
	}
}

func decodeJSON(data []byte) ([]*TrialDocument, error) {
	const op = "Decode"

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()

	if trimmed[0] == '{' {
		var doc TrialDocument
		if err := dec.Decode(&doc); err != nil {
			return nil, errors.Wrap(err, "decode json").WithOperation(op).WithComponent(component)
		}
		return []*TrialDocument{&doc}, nil
	}

	var docs []*TrialDocument
	if err := dec.Decode(&docs); err != nil {
		return nil, errors.Wrap(err, "decode json").WithOperation(op).WithComponent(component)
	}
	return docs, nil
}

func decodeYAML(data []byte) ([]*TrialDocument, error) {
	const op = "Decode"

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, errors.Wrap(err, "decode yaml").WithOperation(op).WithComponent(component)
	}
	if root.Kind == 0 || len(root.Content) == 0 {
		return nil, nil
	}

	node := root.Content[0]
	if node.Kind == yaml.MappingNode {
		var doc TrialDocument
		if err := node.Decode(&doc); err != nil {
			return nil, errors.Wrap(err, "decode yaml").WithOperation(op).WithComponent(component)
		}
		return []*TrialDocument{&doc}, nil
	}

	var docs []*TrialDocument
	if err := node.Decode(&docs); err != nil {
		return nil, errors.Wrap(err, "decode yaml").WithOperation(op).WithComponent(component)
	}
	return docs, nil
}
