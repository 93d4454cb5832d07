package sensor

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// SysfsSource reads raw counts from a sysfs attribute file.
// The file is reopened on every read; sysfs triggers a fresh conversion per read.
type SysfsSource struct {
	path string
}

// NewSysfsSource checks the attribute is readable and returns a source for it.
func NewSysfsSource(path string) (*SysfsSource, error) {
	s := &SysfsSource{path: path}
	if _, err := s.ReadRaw(); err != nil {
		return nil, fmt.Errorf("open temperature sensor: %w", err)
	}
	return s, nil
}

// ReadRaw reads and parses one count.
func (s *SysfsSource) ReadRaw() (uint16, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", s.path, err)
	}
	v, err := strconv.ParseUint(strings.TrimSpace(string(data)), 10, 16)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", s.path, err)
	}
	return uint16(v), nil
}

// Close is a no-op; nothing is held open between reads.
func (s *SysfsSource) Close() error {
	return nil
}
