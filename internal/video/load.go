package video

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

type taskFile struct {
	Videos []Task `yaml:"videos"`
}

// LoadTasks reads a YAML or JSON task file. The file may hold a top-level list
// of tasks or a mapping with a "videos" list.
func LoadTasks(path string) ([]Task, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open task file: %w", err)
	}
	defer f.Close()

	tasks, err := DecodeTasks(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return tasks, nil
}

// DecodeTasks parses and validates tasks from r.
func DecodeTasks(r io.Reader) ([]Task, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read tasks: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("failed to parse tasks: %w", err)
	}

	var tasks []Task
	root := &node
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	switch root.Kind {
	case yaml.SequenceNode:
		if err := root.Decode(&tasks); err != nil {
			return nil, fmt.Errorf("failed to decode task list: %w", err)
		}
	case yaml.MappingNode:
		var tf taskFile
		if err := root.Decode(&tf); err != nil {
			return nil, fmt.Errorf("failed to decode task file: %w", err)
		}
		tasks = tf.Videos
	default:
		return nil, fmt.Errorf("unexpected task file layout: want a list or a 'videos' mapping")
	}

	for i := range tasks {
		if tasks[i].ID == "" {
			tasks[i].ID = fmt.Sprintf("#%d", i+1)
		}
		if err := tasks[i].Validate(); err != nil {
			return nil, err
		}
	}
	return tasks, nil
}
