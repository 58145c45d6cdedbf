package cloudinit

import (
	"bytes"
	"fmt"
	"os"

	"github.com/kdomanski/iso9660"

	"github.com/jbweber/kvmctl/internal/config"
)

// VolumeLabel is the label the NoCloud datasource looks for.
const VolumeLabel = "CIDATA"

// GenerateISO creates a NoCloud seed image from the guest configuration.
//
// The image holds user-data, meta-data and network-config in its root
// directory, under the VolumeLabel label.
//
// See https://cloudinit.readthedocs.io/en/latest/reference/datasources/nocloud.html
func GenerateISO(cfg *config.GuestConfig) ([]byte, error) {
	if cfg == nil {
		return nil, fmt.Errorf("guest configuration cannot be nil")
	}

	userData, err := GenerateUserData(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to generate user-data: %w", err)
	}

	metaData, err := GenerateMetaData(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to generate meta-data: %w", err)
	}

	networkConfig, err := GenerateNetworkConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to generate network-config: %w", err)
	}

	writer, err := iso9660.NewWriter()
	if err != nil {
		return nil, fmt.Errorf("failed to create ISO writer: %w", err)
	}
	defer func() {
		// The image is already built; cleanup only removes the writer's staging files
		_ = writer.Cleanup()
	}()

	files := []struct {
		name    string
		content string
	}{
		{"user-data", userData},
		{"meta-data", metaData},
		{"network-config", networkConfig},
	}
	for _, f := range files {
		if err := writer.AddFile(bytes.NewReader([]byte(f.content)), f.name); err != nil {
			return nil, fmt.Errorf("failed to add %s: %w", f.name, err)
		}
	}

	var buf bytes.Buffer
	if err := writer.WriteTo(&buf, VolumeLabel); err != nil {
		return nil, fmt.Errorf("failed to write ISO image: %w", err)
	}

	return buf.Bytes(), nil
}

// WriteISO generates the seed image and writes it to path.
func WriteISO(path string, cfg *config.GuestConfig) error {
	data, err := GenerateISO(cfg)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write seed image %s: %w", path, err)
	}

	return nil
}
