package load

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/syssam/typestate/schema"
)

func loadYAML(path string) ([]*schema.Record, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return parseYAML(path, content)
}

// parseYAML decodes a YAML schema document. Unknown keys are rejected.
func parseYAML(path string, content []byte) ([]*schema.Record, error) {
	var d Document
	dec := yaml.NewDecoder(bytes.NewReader(content))
	dec.KnownFields(true)
	if err := dec.Decode(&d); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	var root yaml.Node
	if err := yaml.Unmarshal(content, &root); err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return d.records(path, recordPositions(path, &root))
}

// recordPositions returns the "file:line" position of each record node.
func recordPositions(path string, root *yaml.Node) []string {
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	if root.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, value := root.Content[i], root.Content[i+1]
		if key.Value != "records" || value.Kind != yaml.SequenceNode {
			continue
		}
		pos := make([]string, len(value.Content))
		for j, n := range value.Content {
			pos[j] = fmt.Sprintf("%s:%d", path, n.Line)
		}
		return pos
	}
	return nil
}
