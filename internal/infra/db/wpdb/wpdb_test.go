//go:build !integration

package wpdb

import (
	"errors"
	"testing"

	"learnpress-facade/internal/infra/logging"
)

func certValue(userID, courseID, certID string) string {
	return `a:3:{s:7:"user_id";i:` + userID + `;s:9:"course_id";i:` + courseID + `;s:7:"cert_id";i:` + certID + `;}`
}

func TestCertificateKey(t *testing.T) {
	cases := map[string]string{
		"ABC123":           "user_cert_ABC123",
		"user_cert_ABC123": "user_cert_ABC123",
		"user_certX":       "user_cert_user_certX",
	}
	for in, want := range cases {
		if got := CertificateKey(in); got != want {
			t.Errorf("CertificateKey(%q): wanted %q, got %q", in, want, got)
		}
	}
	if got := CodeFromKey("user_cert_ABC"); got != "ABC" {
		t.Errorf("CodeFromKey mismatch: %q", got)
	}
}

func TestLikePatterns(t *testing.T) {
	if got := CertificateNamePattern(); got != `user\_cert\_%` {
		t.Errorf("unexpected name pattern %q", got)
	}
	if got := UserToken(12); got != `%s:7:"user\_id";i:12;%` {
		t.Errorf("unexpected user token %q", got)
	}
}

func TestFileURL(t *testing.T) {
	if got := FileURL("https://x.test/wp-content/uploads/", "ABC"); got != "https://x.test/wp-content/uploads/learn-press-cert/ABC.png" {
		t.Errorf("unexpected file url %q", got)
	}
	if got := FileURL("", "ABC"); got != "" {
		t.Errorf("expected empty url without base, got %q", got)
	}
}

func TestDecodeCertificate(t *testing.T) {
	t.Run("uses cert_id when present", func(t *testing.T) {
		c, err := DecodeCertificate(OptionRow{ID: 90, Name: "user_cert_ABC", Value: certValue("12", "34", "5")}, "https://x.test/up")
		if err != nil {
			t.Fatalf("DecodeCertificate: %v", err)
		}
		if c.ID != 5 || c.UserID != 12 || c.CourseID != 34 {
			t.Errorf("unexpected ids: %+v", c)
		}
		if c.Code != "ABC" || c.Status != "active" {
			t.Errorf("unexpected code/status: %+v", c)
		}
		if c.FileURL != "https://x.test/up/learn-press-cert/ABC.png" {
			t.Errorf("unexpected file url %q", c.FileURL)
		}
	})

	t.Run("falls back to option id", func(t *testing.T) {
		v := `a:2:{s:7:"user_id";s:2:"12";s:9:"course_id";i:34;}`
		c, err := DecodeCertificate(OptionRow{ID: 90, Name: "user_cert_ABC", Value: v}, "")
		if err != nil {
			t.Fatalf("DecodeCertificate: %v", err)
		}
		if c.ID != 90 || c.UserID != 12 {
			t.Errorf("unexpected ids: %+v", c)
		}
		if c.FileURL != "" {
			t.Errorf("expected empty file url, got %q", c.FileURL)
		}
	})

	t.Run("rejects records without a user", func(t *testing.T) {
		for _, v := range []string{
			`a:0:{}`,
			`a:2:{s:9:"course_id";i:34;s:7:"cert_id";i:5;}`,
			`a:2:{s:7:"user_id";i:0;s:9:"course_id";i:34;}`,
			`a:1:{s:7:"user_id";s:3:"abc";}`,
		} {
			_, err := DecodeCertificate(OptionRow{ID: 9, Name: "user_cert_ZZ", Value: v}, "")
			if !errors.Is(err, ErrMalformed) {
				t.Errorf("value %q: expected ErrMalformed, got %v", v, err)
			}
		}
	})

	t.Run("rejects non-array values", func(t *testing.T) {
		for _, v := range []string{"", "s:3:\"abc\";", "i:4;", "garbage", "a:3:{s:7:\"user_id\";i:1"} {
			_, err := DecodeCertificate(OptionRow{ID: 1, Name: "user_cert_X", Value: v}, "")
			if !errors.Is(err, ErrMalformed) {
				t.Errorf("value %q: expected ErrMalformed, got %v", v, err)
			}
		}
	})
}

func TestCollectForUser_ExactUserMatch(t *testing.T) {
	rows := []OptionRow{
		{ID: 4, Name: "user_cert_D", Value: `a:0:{}`},
		{ID: 3, Name: "user_cert_C", Value: certValue("12", "7", "3")},
		{ID: 2, Name: "user_cert_B", Value: "corrupted"},
		{ID: 1, Name: "user_cert_A", Value: certValue("1", "7", "1")},
	}
	got := CollectForUser(rows, 12, "", logging.Nop())
	if len(got) != 1 || got[0].Code != "C" {
		t.Fatalf("expected only certificate C for user 12, got %+v", got)
	}
	got = CollectForUser(rows, 1, "", logging.Nop())
	if len(got) != 1 || got[0].Code != "A" {
		t.Fatalf("expected only certificate A for user 1, got %+v", got)
	}
}

func TestIsAdministrator(t *testing.T) {
	cases := []struct {
		caps string
		want bool
	}{
		{`a:1:{s:13:"administrator";b:1;}`, true},
		{`a:2:{s:10:"subscriber";b:1;s:13:"administrator";b:1;}`, true},
		{`a:1:{s:13:"administrator";b:0;}`, false},
		{`a:1:{s:10:"subscriber";b:1;}`, false},
		{``, false},
	}
	for _, c := range cases {
		if got := IsAdministrator(c.caps); got != c.want {
			t.Errorf("IsAdministrator(%q): wanted %v, got %v", c.caps, c.want, got)
		}
	}
}

func TestCourseURL(t *testing.T) {
	s := Settings{SiteURL: "https://x.test/", CourseBase: "courses"}
	cases := []struct {
		name     string
		id       int64
		postName string
		wantSlug string
		wantURL  string
	}{
		{"published", 34, "intro-to-go", "intro-to-go", "https://x.test/courses/intro-to-go/"},
		{"draft keeps empty slug", 35, "", "", "https://x.test/?post_type=lp_course&p=35"},
		{"encoded slug kept as stored", 36, "%d8%a7%d9%84", "%d8%a7%d9%84", "https://x.test/courses/%d8%a7%d9%84/"},
	}
	for _, c := range cases {
		sl, url := CourseURL(s, c.id, c.postName)
		if sl != c.wantSlug || url != c.wantURL {
			t.Errorf("%s: wanted %q %q, got %q %q", c.name, c.wantSlug, c.wantURL, sl, url)
		}
	}
	if _, url := CourseURL(Settings{}, 1, "a"); url != "" {
		t.Errorf("expected empty url without site, got %q", url)
	}
}

func TestEncodeCertificate_DecodesBack(t *testing.T) {
	v, err := EncodeCertificate(12, 34, 5)
	if err != nil {
		t.Fatalf("EncodeCertificate: %v", err)
	}
	c, err := DecodeCertificate(OptionRow{ID: 90, Name: "user_cert_ABC", Value: v}, "")
	if err != nil {
		t.Fatalf("DecodeCertificate(%q): %v", v, err)
	}
	if c.ID != 5 || c.UserID != 12 || c.CourseID != 34 {
		t.Errorf("unexpected certificate %+v from %q", c, v)
	}

	v, err = EncodeCertificate(12, 34, 0)
	if err != nil {
		t.Fatalf("EncodeCertificate: %v", err)
	}
	if c, err = DecodeCertificate(OptionRow{ID: 90, Name: "user_cert_ABC", Value: v}, ""); err != nil || c.ID != 90 {
		t.Errorf("expected option id fallback, got %+v (%v)", c, err)
	}
}
