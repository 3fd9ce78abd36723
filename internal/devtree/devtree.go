// Package devtree resolves Open Firmware paths against the
// filesystem-exposed device tree. Its only consumer here is NVRAM size
// discovery, but the resolver handles the general abbreviation rules: in
// a tree with a single child "foo@0", the names "foo@0", "foo" and "@0"
// all refer to that child.
package devtree

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const (
	// DefaultRoot is where Linux exposes the device tree.
	DefaultRoot = "/proc/device-tree"

	// DefaultSize is the store capacity assumed when discovery fails.
	DefaultSize = 1024 * 1024
)

var (
	ErrNotFound  = errors.New("devtree: node not found")
	ErrAmbiguous = errors.New("devtree: ambiguous node name")
)

// Resolver resolves abbreviated Open Firmware paths under a device tree
// root. The zero value uses DefaultRoot.
type Resolver struct {
	Root string
}

func (r Resolver) root() string {
	if r.Root != "" {
		return r.Root
	}
	return DefaultRoot
}

// Resolve walks ofpath segment by segment and opens the final node
// read-only.
//
// Each segment is first tried as an exact child name. Only when that child
// does not exist is pattern matching attempted: a segment starting with an
// address marker ("@0") matches any child containing it, any other segment
// ("pci") matches children of the form "pci@*". Zero pattern matches fail
// with ErrNotFound, more than one with ErrAmbiguous; any other filesystem
// error aborts resolution as is.
func (r Resolver) Resolve(ofpath string) (*os.File, error) {
	resolved := r.root()

	for _, node := range strings.Split(ofpath, "/") {
		if node == "" {
			continue
		}
		next, err := r.resolveNode(resolved, node)
		if err != nil {
			return nil, err
		}
		resolved = next
	}

	return os.Open(resolved)
}

func (r Resolver) resolveNode(parent, node string) (string, error) {
	exact := filepath.Join(parent, node)
	if _, err := os.Stat(exact); err == nil {
		return exact, nil
	} else if !os.IsNotExist(err) {
		return "", err
	}

	var pattern string
	if strings.HasPrefix(node, "@") {
		// A unit address: match any child carrying it.
		pattern = filepath.Join(parent, "*"+node+"*")
	} else {
		// A node name: match any unit address.
		pattern = filepath.Join(parent, node+"@*")
	}

	matches, err := filepath.Glob(pattern)
	if err != nil {
		return "", err
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%w: %q under %q", ErrNotFound, node, parent)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%w: %q under %q", ErrAmbiguous, node, parent)
	}
}

// NVRAMSize reads the store capacity from the nvram node's #bytes leaf.
//
// The well-known node is tried first; failing that, the aliases entry is
// read and resolved as an Open Firmware path. Callers substitute
// DefaultSize on any error.
func (r Resolver) NVRAMSize() (int, error) {
	f, err := os.Open(filepath.Join(r.root(), "nvram", "#bytes"))
	if err != nil {
		alias, aerr := os.ReadFile(filepath.Join(r.root(), "aliases", "nvram"))
		if aerr != nil {
			return 0, fmt.Errorf("cannot determine nvram size: %w", aerr)
		}
		ofpath := strings.TrimRight(string(alias), "\x00\n ") + "/#bytes"
		f, err = r.Resolve(ofpath)
		if err != nil {
			return 0, fmt.Errorf("cannot open nvram node %q: %w", ofpath, err)
		}
	}
	defer func() { _ = f.Close() }()

	var buf [4]byte
	if _, err := io.ReadFull(f, buf[:]); err != nil {
		return 0, fmt.Errorf("odd size for nvram node: %w", err)
	}
	return int(binary.BigEndian.Uint32(buf[:])), nil
}
