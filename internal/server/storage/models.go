package storage

// Mailbox entry status values. Received messages start as StatusNew and move
// to StatusRead when retrieved; sent copies stay StatusSent forever. Entries
// are never deleted.
const (
	StatusNew  = "new"
	StatusRead = "read"
	StatusSent = "sent"
)

// User is one record in the users document, keyed by username (case
// sensitive). Records are created on first successful join and never deleted.
type User struct {
	// Password is compared verbatim on join. Credential hashing is a known
	// hardening gap, out of scope while wire compatibility is required.
	Password string         `json:"password"`
	Bio      Bio            `json:"bio"`
	Posts    []Post         `json:"posts"`
	Messages []MailboxEntry `json:"messages"`
}

type Bio struct {
	Entry     string `json:"entry"`
	Timestamp string `json:"timestamp"`
}

// Post lives in two places: the author's own record and the global feed.
// Both keep newest first.
type Post struct {
	Author    string `json:"author"`
	Entry     string `json:"entry"`
	Timestamp string `json:"timestamp"`
}

// MailboxEntry is one direct-message record. Exactly one of From and
// Recipient is set: From on received entries, Recipient on sent copies.
type MailboxEntry struct {
	Entry     string `json:"entry"`
	Timestamp string `json:"timestamp"`
	Status    string `json:"status"`
	From      string `json:"from,omitempty"`
	Recipient string `json:"recipient,omitempty"`
}

// Received reports whether the entry is an inbound message.
func (m MailboxEntry) Received() bool {
	return m.From != ""
}
