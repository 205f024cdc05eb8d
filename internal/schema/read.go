package schema

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ReadFile reads a service description, choosing the reader by extension.
// Unknown extensions are sniffed: documents starting with '<' are EDMX.
func ReadFile(path, serviceID string) (*Service, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read service description: %w", err)
	}

	var svc *Service
	switch strings.ToLower(filepath.Ext(path)) {
	case ".edmx", ".xml":
		svc, err = ReadEDMX(bytes.NewReader(data), serviceID)
	case ".json", ".yaml", ".yml":
		svc, err = ReadOpenAPI(bytes.NewReader(data), serviceID)
	default:
		if bytes.HasPrefix(bytes.TrimSpace(data), []byte("<")) {
			svc, err = ReadEDMX(bytes.NewReader(data), serviceID)
		} else {
			svc, err = ReadOpenAPI(bytes.NewReader(data), serviceID)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	if svc.Identifier == "" {
		base := filepath.Base(path)
		svc.Identifier = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return svc, nil
}
