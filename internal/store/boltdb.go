// Package store persists loaded documents and per-session turn transcripts
// in a bbolt database. The engine itself is purely in-memory; this adapter
// lets the CLI resume a document by label and audit what a session did.
package store

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"go.etcd.io/bbolt"
)

var (
	bucketDocuments   = []byte("documents")
	bucketTranscripts = []byte("transcripts")
)

// SessionStore wraps a bbolt database.
type SessionStore struct {
	db  *bbolt.DB
	log *slog.Logger
}

// Open opens (or creates) the store at path.
func Open(path string, log *slog.Logger) (*SessionStore, error) {
	if log == nil {
		log = slog.Default()
	}
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		for _, b := range [][]byte{bucketDocuments, bucketTranscripts} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", b, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &SessionStore{db: db, log: log}, nil
}

// Close releases the database.
func (s *SessionStore) Close() error { return s.db.Close() }

type docMeta struct {
	Label  string `json:"label"`
	Text   string `json:"text"`
	Stored int64  `json:"stored"`
}

// PutDocument saves text under label, replacing any previous content.
func (s *SessionStore) PutDocument(label, text string) error {
	meta := docMeta{Label: label, Text: text, Stored: time.Now().Unix()}
	data, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	err = s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketDocuments).Put([]byte(label), data)
	})
	if err == nil {
		s.log.Debug("stored document", "label", label, "bytes", len(text))
	}
	return err
}

// GetDocument loads the text stored under label.
func (s *SessionStore) GetDocument(label string) (string, error) {
	var text string
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketDocuments).Get([]byte(label))
		if data == nil {
			return fmt.Errorf("document not found: %s", label)
		}
		var meta docMeta
		if err := json.Unmarshal(data, &meta); err != nil {
			return err
		}
		text = meta.Text
		return nil
	})
	return text, err
}

// Documents lists every stored label.
func (s *SessionStore) Documents() ([]string, error) {
	var out []string
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketDocuments).ForEach(func(k, _ []byte) error {
			out = append(out, string(k))
			return nil
		})
	})
	return out, err
}

// TurnRecord is one transcript entry.
type TurnRecord struct {
	Turn    int    `json:"turn"`
	Source  string `json:"source"`
	Preview string `json:"preview,omitempty"`
	ErrKind string `json:"err_kind,omitempty"`
	ErrMsg  string `json:"err_msg,omitempty"`
	At      int64  `json:"at"`
}

// AppendTurn records one executed turn of a session. Keys are
// sessionID/turn so a session's transcript reads back in order.
func (s *SessionStore) AppendTurn(sessionID string, rec TurnRecord) error {
	rec.At = time.Now().Unix()
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	key := make([]byte, 0, len(sessionID)+9)
	key = append(key, sessionID...)
	key = append(key, '/')
	key = binary.BigEndian.AppendUint64(key, uint64(rec.Turn))
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketTranscripts).Put(key, data)
	})
}

// Turns reads back the transcript of one session in turn order.
func (s *SessionStore) Turns(sessionID string) ([]TurnRecord, error) {
	prefix := append([]byte(sessionID), '/')
	var out []TurnRecord
	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(bucketTranscripts).Cursor()
		for k, v := c.Seek(prefix); k != nil && hasPrefix(k, prefix); k, v = c.Next() {
			var rec TurnRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return err
			}
			out = append(out, rec)
		}
		return nil
	})
	return out, err
}

func hasPrefix(k, prefix []byte) bool {
	if len(k) < len(prefix) {
		return false
	}
	for i := range prefix {
		if k[i] != prefix[i] {
			return false
		}
	}
	return true
}
