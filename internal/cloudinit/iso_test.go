package cloudinit

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/kdomanski/iso9660"
)

func TestGenerateISO(t *testing.T) {
	cfg := testGuest()

	isoBytes, err := GenerateISO(cfg)
	if err != nil {
		t.Fatalf("GenerateISO() error: %v", err)
	}

	img, err := iso9660.OpenImage(bytes.NewReader(isoBytes))
	if err != nil {
		t.Fatalf("failed to open ISO image: %v", err)
	}

	volumeID, err := img.Label()
	if err != nil {
		t.Fatalf("failed to get volume label: %v", err)
	}
	if volumeID != VolumeLabel {
		t.Errorf("ISO volume identifier = %q, want %q", volumeID, VolumeLabel)
	}

	rootDir, err := img.RootDir()
	if err != nil {
		t.Fatalf("failed to get root directory: %v", err)
	}
	children, err := rootDir.GetChildren()
	if err != nil {
		t.Fatalf("failed to get children: %v", err)
	}

	generators := map[string]func() (string, error){
		"user-data":      func() (string, error) { return GenerateUserData(cfg) },
		"meta-data":      func() (string, error) { return GenerateMetaData(cfg) },
		"network-config": func() (string, error) { return GenerateNetworkConfig(cfg) },
	}

	if len(children) != len(generators) {
		t.Errorf("ISO contains %d files, want %d", len(children), len(generators))
	}

	for name, generate := range generators {
		var file *iso9660.File
		for _, child := range children {
			if child.Name() == name {
				file = child
				break
			}
		}
		if file == nil {
			t.Errorf("required file %q not found in ISO", name)
			continue
		}

		content, err := readISOFile(file)
		if err != nil {
			t.Errorf("failed to read %s: %v", name, err)
			continue
		}
		expected, err := generate()
		if err != nil {
			t.Errorf("failed to generate expected %s: %v", name, err)
			continue
		}
		if content != expected {
			t.Errorf("%s content mismatch:\ngot:\n%s\n\nwant:\n%s", name, content, expected)
		}
	}
}

func TestGenerateISO_Errors(t *testing.T) {
	if _, err := GenerateISO(nil); err == nil {
		t.Error("Expected error for nil config")
	}

	cfg := testGuest()
	cfg.Interfaces = nil
	if _, err := GenerateISO(cfg); err == nil {
		t.Error("Expected error when network-config cannot be generated")
	}
}

func TestWriteISO(t *testing.T) {
	path := filepath.Join(t.TempDir(), "web01_seed.iso")

	if err := WriteISO(path, testGuest()); err != nil {
		t.Fatalf("WriteISO() error: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("failed to open written ISO: %v", err)
	}
	defer func() { _ = f.Close() }()

	img, err := iso9660.OpenImage(f)
	if err != nil {
		t.Fatalf("written file is not an ISO image: %v", err)
	}
	if label, err := img.Label(); err != nil || label != VolumeLabel {
		t.Errorf("Label() = %q, %v", label, err)
	}

	if err := WriteISO(filepath.Join(t.TempDir(), "missing", "seed.iso"), testGuest()); err == nil {
		t.Error("Expected error writing into a missing directory")
	}
}

// readISOFile reads the content of a file from the ISO image
func readISOFile(file *iso9660.File) (string, error) {
	content, err := io.ReadAll(file.Reader())
	if err != nil {
		return "", err
	}
	return string(content), nil
}
