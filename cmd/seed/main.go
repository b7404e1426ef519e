package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"math/rand"

	"github.com/alphabot-ai/blog/internal/client"
)

var readers = []struct {
	email string
	name  string
}{
	{"ada@example.com", "Ada"},
	{"brian@example.com", "Brian"},
	{"chen@example.com", "Chen"},
}

var posts = []client.PostInput{
	{
		Title:    "The Life of Cactus",
		Subtitle: "Who knew that cacti lived such interesting lives.",
		ImgURL:   "https://images.unsplash.com/photo-1530482054429-cc491f61333b",
		Body:     "Nori grape silver beet broccoli kombu beet greens fava bean potato quandong celery.\n\nBunya nuts black-eyed pea prairie turnip leek lentil turnip greens parsnip.",
	},
	{
		Title:    "Top 15 Things to Do When You Are Bored",
		Subtitle: "Are you bored? Don't know what to do? Try these top 15 activities.",
		ImgURL:   "https://images.unsplash.com/photo-1468779036391-52341f60b55d",
		Body:     "1. **Go for a walk.** Fresh air helps.\n2. *Read a book.*\n3. Call a friend.",
	},
	{
		Title:    "Introducing Dobi",
		Subtitle: "Dobi the puppy goes on her very first road trip.",
		ImgURL:   "https://images.unsplash.com/photo-1543466835-00a7907e9de1",
		Body:     "Meet Dobi. She is curious about everything and afraid of nothing, except the vacuum cleaner.",
	},
}

var comments = []string{
	"Great post, thanks for writing it up.",
	"I had no idea. Learned something today!",
	"Could you write a follow-up on this?",
	"This made my morning.",
	"Not sure I agree, but interesting perspective.",
}

func main() {
	baseURL := flag.String("url", "http://localhost:5000", "blog server URL")
	adminEmail := flag.String("admin-email", "admin@example.com", "email of the first (admin) account")
	adminPassword := flag.String("admin-password", "admin-password", "password of the admin account")
	flag.Parse()

	ctx := context.Background()
	log.Printf("Seeding blog at %s...", *baseURL)

	// The first account registered on an empty database becomes the admin.
	admin := client.New(*baseURL)
	err := admin.Register(ctx, *adminEmail, "Admin", *adminPassword)
	if errors.Is(err, client.ErrAlreadyRegistered) {
		err = admin.Login(ctx, *adminEmail, *adminPassword)
	}
	if err != nil {
		log.Fatalf("admin sign-in: %v", err)
	}
	log.Printf("✓ Signed in as %s", *adminEmail)

	for _, p := range posts {
		if err := admin.CreatePost(ctx, p); err != nil {
			if errors.Is(err, client.ErrForbidden) {
				log.Fatalf("%s is not an admin; seed an empty database or promote it with `blog users promote`", *adminEmail)
			}
			log.Printf("✗ Failed to create %q: %v", p.Title, err)
			continue
		}
		log.Printf("✓ Created post: %s", p.Title)
	}

	postIDs, err := admin.PostIDs(ctx)
	if err != nil {
		log.Fatalf("list posts: %v", err)
	}

	var clients []*client.Client
	for _, r := range readers {
		c := client.New(*baseURL)
		err := c.Register(ctx, r.email, r.name, "reader-password")
		if errors.Is(err, client.ErrAlreadyRegistered) {
			err = c.Login(ctx, r.email, "reader-password")
		}
		if err != nil {
			log.Printf("✗ Failed to sign in %s: %v", r.email, err)
			continue
		}
		log.Printf("✓ Signed in reader: %s", r.name)
		clients = append(clients, c)
	}

	total := 0
	for _, id := range postIDs {
		if len(clients) == 0 {
			break
		}
		// 1-3 comments per post
		n := rand.Intn(3) + 1
		for range n {
			c := clients[rand.Intn(len(clients))]
			if err := c.Comment(ctx, id, comments[rand.Intn(len(comments))]); err != nil {
				log.Printf("✗ Failed to comment on post #%d: %v", id, err)
				continue
			}
			total++
		}
	}
	log.Printf("✓ Added %d comments", total)

	fmt.Println("\n=== Seed Complete ===")
	fmt.Printf("Posts:    %d\n", len(postIDs))
	fmt.Printf("Readers:  %d\n", len(clients))
	fmt.Printf("Comments: %d\n", total)
	fmt.Println("\nView at:", *baseURL)
}
