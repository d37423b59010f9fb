package wpdb

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/elliotchance/phpserialize"

	"learnpress-facade/internal/domain/model"
)

// DecodeArray decodes a PHP-serialized associative array into a map keyed by
// the string form of each key. Scalars keep the types phpserialize produces.
func DecodeArray(value string) (fields map[string]any, err error) {
	value = strings.TrimSpace(value)
	if !strings.HasPrefix(value, "a:") {
		return nil, ErrMalformed
	}
	// phpserialize can index past the end of truncated input.
	defer func() {
		if r := recover(); r != nil {
			fields, err = nil, fmt.Errorf("%w: %v", ErrMalformed, r)
		}
	}()
	raw, err := phpserialize.UnmarshalAssociativeArray([]byte(value))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	fields = make(map[string]any, len(raw))
	for k, v := range raw {
		fields[keyString(k)] = v
	}
	return fields, nil
}

func keyString(k any) string {
	switch t := k.(type) {
	case string:
		return t
	case int64:
		return strconv.FormatInt(t, 10)
	default:
		return fmt.Sprint(t)
	}
}

// IsAdministrator reports whether a serialized capabilities map grants the
// administrator role.
func IsAdministrator(capabilities string) bool {
	roles, err := DecodeArray(capabilities)
	if err != nil {
		return false
	}
	return model.CoerceBool(roles["administrator"])
}

// EncodeCertificate serializes a certificate option value the way LearnPress
// stores it. certID is omitted when zero.
func EncodeCertificate(userID, courseID, certID int64) (string, error) {
	fields := map[interface{}]interface{}{
		"user_id":   userID,
		"course_id": courseID,
	}
	if certID > 0 {
		fields["cert_id"] = certID
	}
	b, err := phpserialize.Marshal(fields, nil)
	if err != nil {
		return "", fmt.Errorf("encode certificate: %w", err)
	}
	return string(b), nil
}
