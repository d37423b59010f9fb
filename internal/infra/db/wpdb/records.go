package wpdb

import (
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"learnpress-facade/internal/domain/model"
	"learnpress-facade/internal/infra/metrics"
)

// CoursePostType is the post_type of LearnPress courses.
const CoursePostType = "lp_course"

// CollectForUser decodes rows returned by the user pre-filter and keeps only
// certificates whose decoded user_id equals userID. Malformed rows are logged
// and skipped.
func CollectForUser(rows []OptionRow, userID int64, uploadBaseURL string, log *zerolog.Logger) []*model.Certificate {
	out := make([]*model.Certificate, 0, len(rows))
	for _, row := range rows {
		cert, err := DecodeCertificate(row, uploadBaseURL)
		if err != nil {
			metrics.IncCertificateDecode("skipped")
			log.Warn().Err(err).Int64("option_id", row.ID).Str("option_name", row.Name).Msg("skipping undecodable certificate")
			continue
		}
		metrics.IncCertificateDecode("ok")
		if cert.UserID != userID {
			continue
		}
		out = append(out, cert)
	}
	return out
}

// CourseURL returns the stored slug and the course permalink. Drafts have no
// post_name and get the plain ?post_type=lp_course&p=<id> link.
func CourseURL(s Settings, id int64, postName string) (string, string) {
	sl := strings.TrimSpace(postName)
	if s.SiteURL == "" {
		return sl, ""
	}
	site := strings.TrimRight(s.SiteURL, "/")
	if sl == "" {
		return "", site + "/?post_type=" + CoursePostType + "&p=" + strconv.FormatInt(id, 10)
	}
	parts := []string{site}
	if s.CourseBase != "" {
		parts = append(parts, s.CourseBase)
	}
	parts = append(parts, sl)
	return sl, strings.Join(parts, "/") + "/"
}

// DisplayName falls back to the login when display_name is blank.
func DisplayName(display, login string) string {
	if strings.TrimSpace(display) != "" {
		return display
	}
	return login
}
