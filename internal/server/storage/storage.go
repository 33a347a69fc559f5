// Package storage implements the two durable JSON documents behind the
// server: the users document (username -> record) and the global post feed.
//
// Every mutation follows the same discipline: take the document lock, read
// the whole file, change the one record that matters, write the whole file
// back, release the lock. The lock is scoped to the entire document, so all
// mutations of a document serialize against each other, including I/O. That
// trades throughput for a simple crash-consistency story.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"distsocial/internal/common"
)

const (
	usersFile = "users.json"
	postsFile = "posts.json"
)

// feedDocument is the on-disk shape of the posts document.
type feedDocument struct {
	Posts []Post `json:"posts"`
}

// Store owns the two documents. One lock per document; the locks are
// independent and never held together.
type Store struct {
	usersPath string
	postsPath string

	usersMu sync.Mutex
	postsMu sync.Mutex
}

// Open prepares the store directory, seeding empty documents when absent,
// and reconciles the global feed with the per-user post copies (a crash
// between the two writes of a post can leave the feed behind).
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o770); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", dir, err)
	}

	s := &Store{
		usersPath: filepath.Join(dir, usersFile),
		postsPath: filepath.Join(dir, postsFile),
	}

	if err := seedFile(s.usersPath, map[string]*User{}); err != nil {
		return nil, err
	}
	if err := seedFile(s.postsPath, feedDocument{Posts: []Post{}}); err != nil {
		return nil, err
	}

	if err := s.reconcileFeed(); err != nil {
		return nil, fmt.Errorf("reconcile feed: %w", err)
	}
	return s, nil
}

func seedFile(path string, empty any) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	b, err := json.MarshalIndent(empty, "", "    ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, b, 0o660); err != nil {
		return fmt.Errorf("seed %s: %w", path, err)
	}
	return nil
}

// loadUsers reads the whole users document. Callers must hold usersMu.
func (s *Store) loadUsers() (map[string]*User, error) {
	b, err := os.ReadFile(s.usersPath)
	if err != nil {
		return nil, fmt.Errorf("read users document: %w", err)
	}
	users := map[string]*User{}
	if err := json.Unmarshal(b, &users); err != nil {
		return nil, fmt.Errorf("decode users document: %w", err)
	}
	return users, nil
}

// saveUsers writes the whole users document back. Callers must hold usersMu.
func (s *Store) saveUsers(users map[string]*User) error {
	b, err := json.Marshal(users)
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.usersPath, b, 0o660); err != nil {
		return fmt.Errorf("write users document: %w", err)
	}
	return nil
}

func (s *Store) loadFeed() (*feedDocument, error) {
	b, err := os.ReadFile(s.postsPath)
	if err != nil {
		return nil, fmt.Errorf("read posts document: %w", err)
	}
	doc := &feedDocument{}
	if err := json.Unmarshal(b, doc); err != nil {
		return nil, fmt.Errorf("decode posts document: %w", err)
	}
	return doc, nil
}

func (s *Store) saveFeed(doc *feedDocument) error {
	b, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.postsPath, b, 0o660); err != nil {
		return fmt.Errorf("write posts document: %w", err)
	}
	return nil
}

// GetOrCreateUser looks up a user record, creating an empty one with the
// given password when the username is unknown. Returns a copy of the record
// and whether it was just created.
func (s *Store) GetOrCreateUser(username, password string) (User, bool, error) {
	s.usersMu.Lock()
	defer s.usersMu.Unlock()

	users, err := s.loadUsers()
	if err != nil {
		return User{}, false, err
	}

	if u, ok := users[username]; ok {
		return *u, false, nil
	}

	u := &User{
		Password: password,
		Posts:    []Post{},
		Messages: []MailboxEntry{},
	}
	users[username] = u
	if err := s.saveUsers(users); err != nil {
		return User{}, false, err
	}
	return *u, true, nil
}

// GetUser returns a copy of the record for username.
func (s *Store) GetUser(username string) (User, error) {
	s.usersMu.Lock()
	defer s.usersMu.Unlock()

	users, err := s.loadUsers()
	if err != nil {
		return User{}, err
	}
	u, ok := users[username]
	if !ok {
		return User{}, common.ErrUnknownUser
	}
	return *u, nil
}

// UpdateBio overwrites the user's bio entry and timestamp.
func (s *Store) UpdateBio(username, entry, timestamp string) error {
	s.usersMu.Lock()
	defer s.usersMu.Unlock()

	users, err := s.loadUsers()
	if err != nil {
		return err
	}
	u, ok := users[username]
	if !ok {
		return common.ErrUnknownUser
	}
	u.Bio = Bio{Entry: entry, Timestamp: timestamp}
	return s.saveUsers(users)
}

// CreatePost prepends the post to the author's own list and to the global
// feed. The two documents are updated under their own locks, one after the
// other; Open's reconcile pass repairs a feed left behind by a crash between
// the two writes.
func (s *Store) CreatePost(author, entry, timestamp string) error {
	post := Post{Author: author, Entry: entry, Timestamp: timestamp}

	s.usersMu.Lock()
	users, err := s.loadUsers()
	if err != nil {
		s.usersMu.Unlock()
		return err
	}
	u, ok := users[author]
	if !ok {
		s.usersMu.Unlock()
		return common.ErrUnknownUser
	}
	u.Posts = append([]Post{post}, u.Posts...)
	if err := s.saveUsers(users); err != nil {
		s.usersMu.Unlock()
		return err
	}
	s.usersMu.Unlock()

	s.postsMu.Lock()
	defer s.postsMu.Unlock()
	doc, err := s.loadFeed()
	if err != nil {
		return err
	}
	doc.Posts = append([]Post{post}, doc.Posts...)
	return s.saveFeed(doc)
}

// GlobalFeed returns the global posts document, newest first.
func (s *Store) GlobalFeed() ([]Post, error) {
	s.postsMu.Lock()
	defer s.postsMu.Unlock()

	doc, err := s.loadFeed()
	if err != nil {
		return nil, err
	}
	return doc.Posts, nil
}

// SendMessage delivers one direct message: a sent copy appended to the
// sender's mailbox and a new entry appended to the recipient's mailbox, both
// with the same entry text and timestamp. Both records must already exist.
func (s *Store) SendMessage(sender, recipient, entry, timestamp string) error {
	s.usersMu.Lock()
	defer s.usersMu.Unlock()

	users, err := s.loadUsers()
	if err != nil {
		return err
	}
	from, ok := users[sender]
	if !ok {
		return common.ErrUnknownUser
	}
	to, ok := users[recipient]
	if !ok {
		return common.ErrUnknownRecipient
	}

	from.Messages = append(from.Messages, MailboxEntry{
		Entry: entry, Recipient: recipient, Timestamp: timestamp, Status: StatusSent,
	})
	to.Messages = append(to.Messages, MailboxEntry{
		Entry: entry, From: sender, Timestamp: timestamp, Status: StatusNew,
	})
	return s.saveUsers(users)
}

// ReadNewMessages returns the user's unread entries, oldest first, and marks
// every returned entry read. A second call with no intervening send returns
// an empty list.
func (s *Store) ReadNewMessages(username string) ([]MailboxEntry, error) {
	s.usersMu.Lock()
	defer s.usersMu.Unlock()

	users, err := s.loadUsers()
	if err != nil {
		return nil, err
	}
	u, ok := users[username]
	if !ok {
		return nil, common.ErrUnknownUser
	}

	result := []MailboxEntry{}
	for i := range u.Messages {
		if u.Messages[i].Status != StatusNew {
			continue
		}
		result = append(result, u.Messages[i])
		u.Messages[i].Status = StatusRead
	}
	if err := s.saveUsers(users); err != nil {
		return nil, err
	}

	sortByTimestamp(result)
	return result, nil
}

// ReadAllMessages returns every mailbox entry, sent and received, oldest
// first. Any entry still marked new is marked read as a side effect; that
// coupling is part of the published behavior and is kept deliberately.
func (s *Store) ReadAllMessages(username string) ([]MailboxEntry, error) {
	s.usersMu.Lock()
	defer s.usersMu.Unlock()

	users, err := s.loadUsers()
	if err != nil {
		return nil, err
	}
	u, ok := users[username]
	if !ok {
		return nil, common.ErrUnknownUser
	}

	result := make([]MailboxEntry, len(u.Messages))
	copy(result, u.Messages)
	for i := range u.Messages {
		if u.Messages[i].Status == StatusNew {
			u.Messages[i].Status = StatusRead
		}
	}
	if err := s.saveUsers(users); err != nil {
		return nil, err
	}

	sortByTimestamp(result)
	return result, nil
}

func sortByTimestamp(entries []MailboxEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return common.ParseTimestamp(entries[i].Timestamp) < common.ParseTimestamp(entries[j].Timestamp)
	})
}

// reconcileFeed re-inserts any per-user post copies missing from the global
// feed and restores newest-first order. Runs once at startup.
func (s *Store) reconcileFeed() error {
	s.usersMu.Lock()
	users, err := s.loadUsers()
	s.usersMu.Unlock()
	if err != nil {
		return err
	}

	s.postsMu.Lock()
	defer s.postsMu.Unlock()

	doc, err := s.loadFeed()
	if err != nil {
		return err
	}

	seen := make(map[Post]struct{}, len(doc.Posts))
	for _, p := range doc.Posts {
		seen[p] = struct{}{}
	}

	changed := false
	for _, u := range users {
		for _, p := range u.Posts {
			if _, ok := seen[p]; ok {
				continue
			}
			doc.Posts = append(doc.Posts, p)
			seen[p] = struct{}{}
			changed = true
		}
	}
	if !changed {
		return nil
	}

	sort.SliceStable(doc.Posts, func(i, j int) bool {
		return common.ParseTimestamp(doc.Posts[i].Timestamp) > common.ParseTimestamp(doc.Posts[j].Timestamp)
	})
	return s.saveFeed(doc)
}
