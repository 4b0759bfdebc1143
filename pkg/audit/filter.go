package audit

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/bpmonitor/idvault/pkg/contact"
)

// FilterAction is what happens to a matched metadata key.
type FilterAction string

const (
	FilterActionRemove FilterAction = "remove"
	FilterActionHash   FilterAction = "hash"
	FilterActionMask   FilterAction = "mask"
)

var defaultSensitiveKeys = map[string]FilterAction{
	"password":        FilterActionRemove,
	"new_password":    FilterActionRemove,
	"password_digest": FilterActionRemove,
	"code":            FilterActionRemove,
	"otp":             FilterActionRemove,
	"otp_code":        FilterActionRemove,
	"secret":          FilterActionRemove,
	"token":           FilterActionRemove,
	"api_key":         FilterActionRemove,
	"email":           FilterActionMask,
	"phone":           FilterActionMask,
	"contact":         FilterActionMask,
	"full_name":       FilterActionHash,
	"citizen_id":      FilterActionHash,
	"medical_license": FilterActionHash,
	"date_of_birth":   FilterActionHash,
}

// MetadataFilter strips personal data from event metadata. Keys match
// case-insensitively.
type MetadataFilter struct {
	rules map[string]FilterAction
}

type FilterOption func(*MetadataFilter)

// WithFilterRule adds or overrides the action for key.
func WithFilterRule(key string, action FilterAction) FilterOption {
	return func(f *MetadataFilter) {
		f.rules[strings.ToLower(key)] = action
	}
}

func NewMetadataFilter(opts ...FilterOption) *MetadataFilter {
	f := &MetadataFilter{rules: make(map[string]FilterAction, len(defaultSensitiveKeys))}
	for k, a := range defaultSensitiveKeys {
		f.rules[k] = a
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Apply returns a filtered copy of metadata. The input is not modified.
func (f *MetadataFilter) Apply(metadata map[string]any) map[string]any {
	if len(metadata) == 0 {
		return nil
	}
	out := make(map[string]any, len(metadata))
	for k, v := range metadata {
		action, ok := f.rules[strings.ToLower(k)]
		if !ok {
			out[k] = v
			continue
		}
		switch action {
		case FilterActionRemove:
		case FilterActionMask:
			out[k] = contact.Mask(fmt.Sprint(v))
		case FilterActionHash:
			sum := sha256.Sum256([]byte(fmt.Sprint(v)))
			out[k] = hex.EncodeToString(sum[:8])
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
