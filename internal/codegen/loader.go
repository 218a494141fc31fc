package codegen

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"
)

// LoadDocument reads a ruleset or test document and returns it as JSON.
// The format follows the extension: .json is returned as read, .yaml and
// .yml are converted with key order preserved, and .cue is evaluated and
// exported.
func LoadDocument(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &LoadError{Code: ErrCodeNotFound, Path: path, Message: "file not found", Err: err}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeGeneric, Path: path, Message: err.Error(), Err: err}
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return data, nil
	case ".yaml", ".yml":
		return yamlToJSON(path, data)
	case ".cue":
		return cueToJSON(path, data)
	default:
		return nil, &LoadError{
			Code:    ErrCodeUnsupported,
			Path:    path,
			Message: fmt.Sprintf("unsupported extension %q (want .json, .yaml, .yml or .cue)", filepath.Ext(path)),
		}
	}
}

func cueToJSON(path string, data []byte) ([]byte, error) {
	ctx := cuecontext.New()
	value := ctx.CompileBytes(data, cue.Filename(path))
	if err := value.Err(); err != nil {
		return nil, cueLoadError(path, err)
	}
	if err := value.Validate(cue.Concrete(true)); err != nil {
		return nil, cueLoadError(path, err)
	}
	out, err := value.MarshalJSON()
	if err != nil {
		return nil, cueLoadError(path, err)
	}
	return out, nil
}

func cueLoadError(path string, err error) *LoadError {
	le := &LoadError{Code: ErrCodeBuildFailed, Path: path, Message: err.Error(), Err: err}
	if positions := cueerrors.Positions(err); len(positions) > 0 {
		le.Pos = positions[0]
	}
	return le
}

func yamlToJSON(path string, data []byte) ([]byte, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, &LoadError{Code: ErrCodeDecodeFailed, Path: path, Message: err.Error(), Err: err}
	}
	var buf bytes.Buffer
	if err := writeYAMLNode(&buf, &root); err != nil {
		return nil, &LoadError{Code: ErrCodeDecodeFailed, Path: path, Message: err.Error(), Err: err}
	}
	return buf.Bytes(), nil
}

// writeYAMLNode encodes n as JSON. Mapping order is kept, which matters
// for rule discriminators and test parameter order.
func writeYAMLNode(buf *bytes.Buffer, n *yaml.Node) error {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			buf.WriteString("null")
			return nil
		}
		return writeYAMLNode(buf, n.Content[0])
	case yaml.AliasNode:
		return writeYAMLNode(buf, n.Alias)
	case yaml.MappingNode:
		buf.WriteByte('{')
		for i := 0; i+1 < len(n.Content); i += 2 {
			if i > 0 {
				buf.WriteByte(',')
			}
			key := n.Content[i]
			if key.Kind != yaml.ScalarNode {
				return fmt.Errorf("line %d: mapping keys must be scalars", key.Line)
			}
			writeJSONString(buf, key.Value)
			buf.WriteByte(':')
			if err := writeYAMLNode(buf, n.Content[i+1]); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	case yaml.SequenceNode:
		buf.WriteByte('[')
		for i, item := range n.Content {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeYAMLNode(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case yaml.ScalarNode:
		return writeYAMLScalar(buf, n)
	default:
		return fmt.Errorf("line %d: unsupported YAML node", n.Line)
	}
	return nil
}

func writeYAMLScalar(buf *bytes.Buffer, n *yaml.Node) error {
	switch n.ShortTag() {
	case "!!null":
		buf.WriteString("null")
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return err
		}
		buf.WriteString(strconv.FormatBool(b))
	case "!!int":
		var i int64
		if err := n.Decode(&i); err != nil {
			return err
		}
		buf.WriteString(strconv.FormatInt(i, 10))
	case "!!float":
		if json.Valid([]byte(n.Value)) {
			buf.WriteString(n.Value)
			return nil
		}
		var f float64
		if err := n.Decode(&f); err != nil {
			return err
		}
		if math.IsInf(f, 0) || math.IsNaN(f) {
			return fmt.Errorf("line %d: %s has no JSON form", n.Line, n.Value)
		}
		buf.WriteString(strconv.FormatFloat(f, 'g', -1, 64))
	default:
		writeJSONString(buf, n.Value)
	}
	return nil
}

func writeJSONString(buf *bytes.Buffer, s string) {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	// Encode appends a newline; strings never fail to encode.
	_ = enc.Encode(s)
	buf.Truncate(buf.Len() - 1)
}
