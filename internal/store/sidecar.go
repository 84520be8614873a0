package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// sidecar is the persisted metadata document for an object, stored
// alongside its blob as <key>.s3rver_metadata.json.
type sidecar struct {
	ContentType        string            `json:"content-type"`
	ContentEncoding    string            `json:"content-encoding,omitempty"`
	ContentDisposition string            `json:"content-disposition,omitempty"`
	CacheControl       string            `json:"cache-control,omitempty"`
	Expires            string            `json:"expires,omitempty"`
	ETag               string            `json:"etag"`
	LastModified       string            `json:"last-modified"`
	Metadata           map[string]string `json:"metadata,omitempty"`
}

func sidecarPath(blobPath string) string {
	return blobPath + sidecarSuffix
}

func readSidecar(blobPath string) (sidecar, error) {
	var sc sidecar
	data, err := os.ReadFile(sidecarPath(blobPath))
	if err != nil {
		return sc, err
	}
	if err := json.Unmarshal(data, &sc); err != nil {
		return sc, fmt.Errorf("%w: corrupt sidecar: %v", ErrInternal, err)
	}
	return sc, nil
}

// writeFileAtomic writes data to a temp file in dir and renames it
// into place at finalPath, so a concurrent reader sees either the
// whole previous file or the whole new one.
func writeFileAtomic(dir, finalPath string, data []byte) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp := filepath.Join(dir, ".tmp-"+uuid.NewString())
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, finalPath); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

func writeSidecarAtomic(blobPath string, sc sidecar) error {
	data, err := json.Marshal(sc)
	if err != nil {
		return err
	}
	return writeFileAtomic(filepath.Dir(blobPath), sidecarPath(blobPath), data)
}

func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
