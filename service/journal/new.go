package journal

import (
	"context"
	"fmt"
	"log/slog"
)

// New creates and migrates a journal for vendor
func New(ctx context.Context, vendor Vendor, dbPath string, logger *slog.Logger) (Journal, error) {
	switch vendor {
	case VendorMemory, "":
		return NewMemory(), nil
	case VendorSQLite:
		if dbPath == "" {
			return nil, fmt.Errorf("sqlite journal requires a database path")
		}
		ret, err := NewSQLite(dbPath, logger)
		if err != nil {
			return nil, err
		}
		if err = ret.Migrate(ctx); err != nil {
			_ = ret.Close()
			return nil, err
		}
		return ret, nil
	}
	return nil, fmt.Errorf("unsupported journal vendor: %s", vendor)
}
