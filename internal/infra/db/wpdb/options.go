package wpdb

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"learnpress-facade/internal/config"
	"learnpress-facade/internal/domain/model"
)

// CertificatePrefix is the option_name prefix under which LearnPress stores certificates.
const CertificatePrefix = "user_cert_"

const certificateFileDir = "learn-press-cert"

// ErrMalformed reports an option value that is not a serialized associative array.
var ErrMalformed = errors.New("malformed serialized value")

// OptionRow is one row of the options table.
type OptionRow struct {
	ID    int64
	Name  string
	Value string
}

// Tables holds the prefixed WordPress table names.
type Tables struct {
	Options         string
	Users           string
	UserMeta        string
	Posts           string
	CapabilitiesKey string
}

func NewTables(prefix string) Tables {
	return Tables{
		Options:         prefix + "options",
		Users:           prefix + "users",
		UserMeta:        prefix + "usermeta",
		Posts:           prefix + "posts",
		CapabilitiesKey: prefix + "capabilities",
	}
}

// Settings is what the store engines need to know about the site.
type Settings struct {
	Tables        Tables
	SiteURL       string
	UploadBaseURL string
	CourseBase    string
	QueryTimeout  time.Duration
}

func NewSettings(store config.StoreConfig, site config.SiteConfig) Settings {
	return Settings{
		Tables:        NewTables(store.TablePrefix),
		SiteURL:       site.URL,
		UploadBaseURL: site.UploadBaseURL,
		CourseBase:    strings.Trim(site.CourseBase, "/"),
		QueryTimeout:  store.QueryTimeout,
	}
}

// CertificateKey returns the option_name for a verification code.
// Codes that already carry the prefix are used as-is.
func CertificateKey(code string) string {
	if strings.HasPrefix(code, CertificatePrefix) {
		return code
	}
	return CertificatePrefix + code
}

// CodeFromKey strips the certificate prefix from an option_name.
func CodeFromKey(name string) string {
	return strings.TrimPrefix(name, CertificatePrefix)
}

// CertificateNamePattern is the LIKE pattern matching every certificate option.
func CertificateNamePattern() string {
	return escapeLike(CertificatePrefix) + "%"
}

// UserToken is the LIKE pattern selecting serialized values that contain the
// given integer user_id. It is a pre-filter only; callers must compare the
// decoded user_id.
func UserToken(userID int64) string {
	return "%" + escapeLike(`s:7:"user_id";i:`+strconv.FormatInt(userID, 10)+";") + "%"
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }

// FileURL builds the public image URL of a certificate.
func FileURL(uploadBaseURL, code string) string {
	base := strings.TrimRight(uploadBaseURL, "/")
	if base == "" || code == "" {
		return ""
	}
	return fmt.Sprintf("%s/%s/%s.png", base, certificateFileDir, code)
}

// DecodeCertificate turns an options row into a certificate. The id is cert_id
// when present, otherwise the option id. A record without a positive user_id
// is malformed.
func DecodeCertificate(row OptionRow, uploadBaseURL string) (*model.Certificate, error) {
	fields, err := DecodeArray(row.Value)
	if err != nil {
		return nil, fmt.Errorf("option %d: %w", row.ID, err)
	}
	userID := model.CoerceInt(fields["user_id"])
	if len(fields) == 0 || userID <= 0 {
		return nil, fmt.Errorf("option %d: %w: no user_id", row.ID, ErrMalformed)
	}
	code := CodeFromKey(row.Name)
	id := model.CoerceInt(fields["cert_id"])
	if id <= 0 {
		id = row.ID
	}
	return &model.Certificate{
		ID:       id,
		UserID:   userID,
		CourseID: model.CoerceInt(fields["course_id"]),
		Code:     code,
		FileURL:  FileURL(uploadBaseURL, code),
		Status:   model.CertificateStatusActive,
	}, nil
}
