package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"log"
	"time"

	"github.com/deemkeen/plaza/domain"
	"modernc.org/sqlite"
	sqlitelib "modernc.org/sqlite/lib"
)

// Store persists the session (token pair + user snapshot) across runs.
// Single-row table, last write wins.
type Store struct {
	db *sql.DB
}

const (
	sqlCreateSessionTable = `CREATE TABLE IF NOT EXISTS session(
                        id int NOT NULL PRIMARY KEY CHECK (id = 1),
                        token text NOT NULL,
                        refresh_token text NOT NULL,
                        user_json text NOT NULL,
                        saved_at timestamp default current_timestamp
                        )`
	sqlUpsertSession = `INSERT INTO session(id, token, refresh_token, user_json, saved_at) VALUES (1, ?, ?, ?, ?)
                        ON CONFLICT(id) DO UPDATE SET
                        token = excluded.token,
                        refresh_token = excluded.refresh_token,
                        user_json = excluded.user_json,
                        saved_at = excluded.saved_at`
	sqlSelectSession     = `SELECT token, refresh_token, user_json FROM session WHERE id = 1`
	sqlDeleteSession     = `DELETE FROM session`
	sqlUpdateSessionUser = `UPDATE session SET user_json = ? WHERE id = 1`
)

// Open opens (or creates) the session database at the given path.
// The store is handed to whoever needs it, there is no package-level
// instance.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	var journalMode string
	if err := db.QueryRow("PRAGMA journal_mode=WAL").Scan(&journalMode); err != nil {
		log.Printf("Warning: Failed to enable WAL mode: %v", err)
	}
	db.Exec("PRAGMA synchronous = NORMAL")
	db.Exec("PRAGMA busy_timeout = 5000")

	s := &Store{db: db}
	if err := s.createSessionTable(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Save persists the session, overwriting any prior one.
func (s *Store) Save(sess domain.Session) error {
	userJson, err := json.Marshal(sess.User)
	if err != nil {
		return err
	}

	return s.wrapTransaction(func(tx *sql.Tx) error {
		_, err := tx.Exec(sqlUpsertSession, sess.Token, sess.RefreshToken, string(userJson), time.Now())
		return err
	})
}

// Load returns the persisted session, or nil when none exists.
func (s *Store) Load() (*domain.Session, error) {
	var sess domain.Session
	var userJson string

	err := s.db.QueryRow(sqlSelectSession).Scan(&sess.Token, &sess.RefreshToken, &userJson)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(userJson), &sess.User); err != nil {
		return nil, err
	}

	return &sess, nil
}

// Clear removes all session data. Used on logout, on refresh failure
// and on account deletion.
func (s *Store) Clear() error {
	return s.wrapTransaction(func(tx *sql.Tx) error {
		_, err := tx.Exec(sqlDeleteSession)
		return err
	})
}

// UpdateUser replaces only the cached user snapshot, preserving the
// token pair.
func (s *Store) UpdateUser(u domain.User) error {
	userJson, err := json.Marshal(u)
	if err != nil {
		return err
	}

	return s.wrapTransaction(func(tx *sql.Tx) error {
		_, err := tx.Exec(sqlUpdateSessionUser, string(userJson))
		return err
	})
}

func (s *Store) createSessionTable() error {
	return s.wrapTransaction(func(tx *sql.Tx) error {
		_, err := tx.Exec(sqlCreateSessionTable)
		return err
	})
}

func (s *Store) wrapTransaction(f func(tx *sql.Tx) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Printf("error starting transaction: %s", err)
		return err
	}
	for {
		err = f(tx)
		if err != nil {
			serr, ok := err.(*sqlite.Error)
			if ok && serr.Code() == sqlitelib.SQLITE_BUSY {
				continue
			}
			log.Printf("error in transaction: %s", err)
			tx.Rollback()
			return err
		}
		err = tx.Commit()
		if err != nil {
			log.Printf("error committing transaction: %s", err)
			return err
		}
		break
	}
	return nil
}
