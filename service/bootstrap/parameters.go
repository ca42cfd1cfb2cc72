package bootstrap

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/viant/afs"
	"github.com/viant/evalrt/model"
	"github.com/viant/scy"
)

// Parameters are the job submission parameters of an Azure Batch driver
type Parameters struct {
	AzureBatchAccountName     string `json:"AzureBatchAccountName"`
	AzureBatchAccountKey      string `json:"AzureBatchAccountKey"`
	AzureBatchAccountUri      string `json:"AzureBatchAccountUri"`
	AzureBatchPoolId          string `json:"AzureBatchPoolId"`
	AzureStorageAccountName   string `json:"AzureStorageAccountName"`
	AzureStorageAccountKey    string `json:"AzureStorageAccountKey"`
	AzureStorageContainerName string `json:"AzureStorageContainerName"`
	AzureBatchIsWindows       bool   `json:"AzureBatchIsWindows"`
	// SecretKey decrypts account keys given as secret URLs, e.g. blowfish://default
	SecretKey string `json:"SecretKey,omitempty"`
}

// Validate checks required parameters
func (p *Parameters) Validate() error {
	var errs []error
	required := []struct {
		name  string
		value string
	}{
		{"AzureBatchAccountName", p.AzureBatchAccountName},
		{"AzureBatchAccountKey", p.AzureBatchAccountKey},
		{"AzureBatchAccountUri", p.AzureBatchAccountUri},
		{"AzureBatchPoolId", p.AzureBatchPoolId},
		{"AzureStorageAccountName", p.AzureStorageAccountName},
		{"AzureStorageAccountKey", p.AzureStorageAccountKey},
		{"AzureStorageContainerName", p.AzureStorageContainerName},
	}
	for _, field := range required {
		if strings.TrimSpace(field.value) == "" {
			errs = append(errs, fmt.Errorf("%w: %v is required", model.ErrInvalidArgument, field.name))
		}
	}
	return errors.Join(errs...)
}

// Platform returns the evaluator platform selected by the parameters
func (p *Parameters) Platform() model.Platform {
	if p.AzureBatchIsWindows {
		return model.PlatformWindows
	}
	return model.PlatformLinux
}

// Decoder reads job submission parameters
type Decoder struct {
	fs      afs.Service
	secrets *scy.Service
}

// Decode loads parameters from URL, rejecting unknown fields, and reveals
// account keys given as secret URLs.
func (d *Decoder) Decode(ctx context.Context, URL string) (*Parameters, error) {
	data, err := d.fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to read job submission parameters %v: %w", URL, err)
	}
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	ret := &Parameters{}
	if err = decoder.Decode(ret); err != nil {
		return nil, fmt.Errorf("%w: failed to decode job submission parameters %v: %v", model.ErrInvalidArgument, URL, err)
	}
	if err = ret.Validate(); err != nil {
		return nil, err
	}
	if ret.AzureBatchAccountKey, err = d.reveal(ctx, ret.AzureBatchAccountKey, ret.SecretKey); err != nil {
		return nil, err
	}
	if ret.AzureStorageAccountKey, err = d.reveal(ctx, ret.AzureStorageAccountKey, ret.SecretKey); err != nil {
		return nil, err
	}
	return ret, nil
}

func (d *Decoder) reveal(ctx context.Context, value, key string) (string, error) {
	if !strings.Contains(value, "://") {
		return value, nil
	}
	secret, err := d.secrets.Load(ctx, scy.NewResource(nil, value, key))
	if err != nil {
		return "", fmt.Errorf("failed to reveal secret %v: %w", value, err)
	}
	return strings.TrimSpace(secret.String()), nil
}

// NewDecoder creates a decoder
func NewDecoder(fs afs.Service) *Decoder {
	if fs == nil {
		fs = afs.New()
	}
	return &Decoder{fs: fs, secrets: scy.New()}
}

// Decode loads parameters with a default decoder
func Decode(ctx context.Context, URL string) (*Parameters, error) {
	return NewDecoder(nil).Decode(ctx, URL)
}
