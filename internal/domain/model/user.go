package model

// User is a read-only projection of a WordPress account.
type User struct {
	ID          int64
	DisplayName string
	Email       string
}

func (u *User) IsZero() bool { return u == nil || u.ID == 0 }

// Course is a read-only projection of a LearnPress course post.
type Course struct {
	ID    int64
	Title string
	Slug  string
	URL   string
}

func (c *Course) IsZero() bool { return c == nil || c.ID == 0 }

// Principal is the authenticated caller of a request.
type Principal struct {
	UserID int64
}

func (p *Principal) IsZero() bool { return p == nil || p.UserID <= 0 }
