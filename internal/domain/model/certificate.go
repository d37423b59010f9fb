package model

type CertificateStatus string

const CertificateStatusActive CertificateStatus = "active"

// Certificate is a LearnPress certificate as stored by the issuing plugin.
// Code is the verification code; it is unique and owned by the issuer.
type Certificate struct {
	ID       int64
	UserID   int64
	CourseID int64
	Code     string
	FileURL  string // derived from the upload base URL, empty when none is configured
	Status   CertificateStatus
}

func (c *Certificate) IsZero() bool { return c == nil || c.Code == "" }
