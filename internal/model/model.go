package model

import "time"

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// BootstrapAdminID is the identity that receives RoleAdmin when it is created.
const BootstrapAdminID int64 = 1

// PostDateLayout renders creation dates as e.g. "August 24, 2021".
const PostDateLayout = "January 02, 2006"

type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

type Post struct {
	ID          int64  `json:"id"`
	AuthorID    int64  `json:"author_id"`
	AuthorName  string `json:"author_name,omitempty"`
	AuthorEmail string `json:"-"`
	Title       string `json:"title"`
	Subtitle    string `json:"subtitle"`
	Date        string `json:"date"`
	Body        string `json:"body"`
	ImgURL      string `json:"img_url"`
}

type Comment struct {
	ID          int64  `json:"id"`
	PostID      int64  `json:"post_id"`
	AuthorID    int64  `json:"author_id"`
	AuthorName  string `json:"author_name,omitempty"`
	AuthorEmail string `json:"-"`
	Text        string `json:"text"`
}
