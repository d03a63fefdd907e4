package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"latte/pkg/logging"
)

// ErrConfigExists is returned by Init when the config file is already there.
var ErrConfigExists = errors.New("config file already exists")

// Path returns the config file location for root. An explicit path wins;
// a relative one is resolved against root.
func Path(root, explicit string) string {
	if explicit == "" {
		return filepath.Join(root, FileName)
	}
	if filepath.IsAbs(explicit) {
		return explicit
	}
	return filepath.Join(root, explicit)
}

// Load returns the defaults overlaid with the config file. A missing file
// is not an error unless it was named explicitly. The returned path is
// empty when no file was read.
func Load(root, explicit string) (Options, string, error) {
	opts := Default()
	path := Path(root, explicit)

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && explicit == "" {
			logging.Debug("Config", "No %s found at %s, using defaults", FileName, path)
			return opts, "", nil
		}
		return Options{}, "", &ConfigurationError{FilePath: path, ErrorType: "io", Message: err.Error(), Err: err}
	}

	if err := decode(data, &opts); err != nil {
		return Options{}, "", newParseError(path, err)
	}
	logging.Info("Config", "Loaded configuration from %s", path)
	return opts, path, nil
}

func decode(data []byte, opts *Options) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(opts); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Init writes the defaults to the config file of root. It never
// overwrites an existing file.
func Init(root string) (string, error) {
	path := Path(root, "")
	data, err := yaml.Marshal(Default())
	if err != nil {
		return "", fmt.Errorf("failed to encode default configuration: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return "", fmt.Errorf("%w: %s", ErrConfigExists, path)
		}
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()
	if _, err := f.Write(data); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	logging.Info("Config", "Wrote default configuration to %s", path)
	return path, f.Close()
}
