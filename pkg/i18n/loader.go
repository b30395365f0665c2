package i18n

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"
)

// LoadFS adds every <lang>.json, <lang>.yaml or <lang>.yml file found under
// fsys to the bundle. Files that fail to parse are reported together; the
// others are still loaded.
func (b *Bundle) LoadFS(fsys fs.FS) error {
	if fsys == nil {
		return nil
	}

	var result *multierror.Error
	err := fs.WalkDir(fsys, ".", func(name string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() {
			return nil
		}
		ext := strings.ToLower(path.Ext(name))
		if ext != ".json" && ext != ".yaml" && ext != ".yml" {
			return nil
		}
		lang := strings.TrimSuffix(path.Base(name), path.Ext(name))

		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("i18n: read %s: %w", name, err))
			return nil
		}
		messages, err := decodeMessages(data, ext)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("i18n: parse %s: %w", name, err))
			return nil
		}
		if err := b.Add(lang, messages); err != nil {
			result = multierror.Append(result, fmt.Errorf("i18n: %s: %w", name, err))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("i18n: walk bundle directory: %w", err)
	}
	return result.ErrorOrNil()
}

func decodeMessages(data []byte, ext string) (map[string]any, error) {
	var messages map[string]any
	if ext == ".json" {
		if err := json.Unmarshal(data, &messages); err != nil {
			return nil, err
		}
		return messages, nil
	}
	if err := yaml.Unmarshal(data, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}
