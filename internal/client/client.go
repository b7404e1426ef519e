// Package client drives the blog through its HTML forms, the same way a
// browser does. It keeps the session cookie in a jar and never follows
// redirects, so callers can tell a successful submission from a bounced one.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	ErrAlreadyRegistered = errors.New("email already registered")
	ErrLoginFailed       = errors.New("login failed")
	ErrForbidden         = errors.New("forbidden")
	ErrNotFound          = errors.New("not found")
)

// Client is a blog client bound to one browser session.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// Response is the part of an HTTP response the callers look at.
type Response struct {
	StatusCode int
	Location   string
	Body       string
}

// PostInput is the content of the create and edit forms.
type PostInput struct {
	Title    string
	Subtitle string
	ImgURL   string
	Body     string
	// AuthorID is only sent on edit; zero keeps the current author.
	AuthorID int64
}

// New creates a client with an empty cookie jar.
func New(baseURL string) *Client {
	jar, _ := cookiejar.New(nil)
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
			Jar:     jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// Get fetches path.
func (c *Client) Get(ctx context.Context, path string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return nil, err
	}
	return c.do(req)
}

// PostForm submits values to path as application/x-www-form-urlencoded.
func (c *Client) PostForm(ctx context.Context, path string, values url.Values) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, strings.NewReader(values.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

func (c *Client) do(req *http.Request) (*Response, error) {
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return &Response{
		StatusCode: resp.StatusCode,
		Location:   resp.Header.Get("Location"),
		Body:       string(body),
	}, nil
}

// Register signs up and, on success, leaves the client signed in.
func (c *Client) Register(ctx context.Context, email, name, password string) error {
	resp, err := c.PostForm(ctx, "/register", url.Values{
		"email":    {email},
		"name":     {name},
		"password": {password},
	})
	if err != nil {
		return err
	}
	switch {
	case resp.StatusCode == http.StatusFound && resp.Location == "/":
		return nil
	case resp.StatusCode == http.StatusFound && resp.Location == "/login":
		return ErrAlreadyRegistered
	default:
		return unexpected("register", resp)
	}
}

// Login signs in with existing credentials.
func (c *Client) Login(ctx context.Context, email, password string) error {
	resp, err := c.PostForm(ctx, "/login", url.Values{
		"email":    {email},
		"password": {password},
	})
	if err != nil {
		return err
	}
	switch {
	case resp.StatusCode == http.StatusFound && resp.Location == "/":
		return nil
	case resp.StatusCode == http.StatusFound && resp.Location == "/login":
		return ErrLoginFailed
	default:
		return unexpected("login", resp)
	}
}

func (c *Client) Logout(ctx context.Context) error {
	resp, err := c.Get(ctx, "/logout")
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusFound {
		return unexpected("logout", resp)
	}
	return nil
}

// Home returns the rendered front page.
func (c *Client) Home(ctx context.Context) (string, error) {
	resp, err := c.Get(ctx, "/")
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", unexpected("home", resp)
	}
	return resp.Body, nil
}

var postLink = regexp.MustCompile(`href="/post/(\d+)"`)

// PostIDs lists the post ids linked from the front page, in page order.
func (c *Client) PostIDs(ctx context.Context) ([]int64, error) {
	body, err := c.Home(ctx)
	if err != nil {
		return nil, err
	}
	var ids []int64
	seen := make(map[int64]bool)
	for _, m := range postLink.FindAllStringSubmatch(body, -1) {
		id, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids, nil
}

// CreatePost requires an admin session.
func (c *Client) CreatePost(ctx context.Context, in PostInput) error {
	resp, err := c.PostForm(ctx, "/new-post", in.Values())
	if err != nil {
		return err
	}
	if resp.StatusCode == http.StatusFound {
		return nil
	}
	return unexpected("create post", resp)
}

func (c *Client) EditPost(ctx context.Context, id int64, in PostInput) error {
	resp, err := c.PostForm(ctx, fmt.Sprintf("/edit-post/%d", id), in.Values())
	if err != nil {
		return err
	}
	if resp.StatusCode == http.StatusFound {
		return nil
	}
	return unexpected("edit post", resp)
}

func (c *Client) DeletePost(ctx context.Context, id int64) error {
	resp, err := c.Get(ctx, fmt.Sprintf("/delete/%d", id))
	if err != nil {
		return err
	}
	if resp.StatusCode == http.StatusFound {
		return nil
	}
	return unexpected("delete post", resp)
}

// Comment posts text under the post. The server answers with the refreshed
// post page.
func (c *Client) Comment(ctx context.Context, postID int64, text string) error {
	resp, err := c.PostForm(ctx, fmt.Sprintf("/post/%d", postID), url.Values{"comment_text": {text}})
	if err != nil {
		return err
	}
	switch {
	case resp.StatusCode == http.StatusOK:
		return nil
	case resp.StatusCode == http.StatusFound && resp.Location == "/login":
		return ErrLoginFailed
	default:
		return unexpected("comment", resp)
	}
}

// Values encodes the input as the create and edit forms expect it.
func (in PostInput) Values() url.Values {
	v := url.Values{
		"title":    {in.Title},
		"subtitle": {in.Subtitle},
		"img_url":  {in.ImgURL},
		"body":     {in.Body},
	}
	if in.AuthorID > 0 {
		v.Set("author_id", strconv.FormatInt(in.AuthorID, 10))
	}
	return v
}

func unexpected(op string, resp *Response) error {
	switch resp.StatusCode {
	case http.StatusForbidden:
		return fmt.Errorf("%s: %w", op, ErrForbidden)
	case http.StatusNotFound:
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	body := resp.Body
	if len(body) > 200 {
		body = body[:200]
	}
	return fmt.Errorf("%s failed (%d): %s", op, resp.StatusCode, body)
}
