package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/promptkeep/promptkeep/internal/common"
)

// Meta carries the non-record state that rides along the backup envelope.
type Meta struct {
	ExportedAt time.Time `json:"exportedAt"`
	UsageCount int64     `json:"usageCount"`
	LicenseKey string    `json:"licenseKey"`
	DeviceID   string    `json:"deviceId"`
}

// Envelope is the single JSON structure exchanged with the cloud transport:
// all records plus metadata. There is no per-record cloud API.
type Envelope struct {
	Prompts []Record `json:"prompts"`
	Meta    Meta     `json:"meta"`
}

// DecodeEnvelope parses a backup payload. Two shapes are accepted: the
// current {prompts, meta} object and the legacy bare array of records (which
// yields a zero Meta). The variant is chosen by the leading JSON token, not
// by probing fields. Malformed payloads return common.ErrInvalidImport.
func DecodeEnvelope(data []byte) (*Envelope, error) {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty payload", common.ErrInvalidImport)
	}

	switch trimmed[0] {
	case '[':
		var prompts []Record
		if err := json.Unmarshal(trimmed, &prompts); err != nil {
			return nil, fmt.Errorf("%w: %v", common.ErrInvalidImport, err)
		}
		return &Envelope{Prompts: prompts}, nil
	case '{':
		var env Envelope
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return nil, fmt.Errorf("%w: %v", common.ErrInvalidImport, err)
		}
		return &env, nil
	default:
		return nil, fmt.Errorf("%w: expected JSON object or array", common.ErrInvalidImport)
	}
}

// Encode renders the envelope as indented JSON, the format written to the
// cloud backup and to export files.
func (e *Envelope) Encode() ([]byte, error) {
	return json.MarshalIndent(e, "", "  ")
}
