package storage

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/andybalholm/brotli"
	bolt "go.etcd.io/bbolt"
)

var (
	responsesBucket = []byte("responses")
	downloadsBucket = []byte("downloads")
	metaBucket      = []byte("metadata")
)

var ErrNotFound = errors.New("not found")

// lastPurgeKey holds the RFC 3339 time of the most recent PurgeExpired.
const lastPurgeKey = "cache.last_purge"

type Store struct {
	db  *bolt.DB
	now func() time.Time
}

func NewStore(dbPath string, timeout time.Duration) (*Store, error) {
	if timeout <= 0 {
		timeout = time.Second
	}
	db, err := bolt.Open(dbPath, 0o600, &bolt.Options{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{responsesBucket, downloadsBucket, metaBucket} {
			if _, createErr := tx.CreateBucketIfNotExists(bucket); createErr != nil {
				return createErr
			}
		}
		return nil
	})

	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// PutResponse stores body under key until ttl elapses. A zero ttl never expires.
func (s *Store) PutResponse(key string, body []byte, ttl time.Duration) error {
	compressed, err := compress(body)
	if err != nil {
		return fmt.Errorf("compressing response: %w", err)
	}

	now := s.now()
	entry := CachedResponse{
		Key:      key,
		Body:     compressed,
		RawSize:  len(body),
		StoredAt: now,
	}
	if ttl > 0 {
		entry.ExpiresAt = now.Add(ttl)
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		data, err := json.Marshal(entry)
		if err != nil {
			return err
		}
		return tx.Bucket(responsesBucket).Put([]byte(key), data)
	})
}

// GetResponse returns the decompressed body for key. Expired entries are
// reported as misses and left for PurgeExpired.
func (s *Store) GetResponse(key string) ([]byte, bool, error) {
	var entry CachedResponse
	found := false
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(responsesBucket).Get([]byte(key))
		if data == nil {
			return nil
		}
		found = true
		return json.Unmarshal(data, &entry)
	})
	if err != nil || !found {
		return nil, false, err
	}
	if entry.Expired(s.now()) {
		return nil, false, nil
	}

	body, err := decompress(entry.Body)
	if err != nil {
		return nil, false, fmt.Errorf("decompressing response: %w", err)
	}
	return body, true, nil
}

// PurgeExpired drops expired and unreadable cache entries and reports how
// many were removed.
func (s *Store) PurgeExpired() (int, error) {
	now := s.now()
	removed := 0
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(responsesBucket)
		var stale [][]byte
		err := b.ForEach(func(k, v []byte) error {
			var entry CachedResponse
			if err := json.Unmarshal(v, &entry); err != nil || entry.Expired(now) {
				stale = append(stale, append([]byte(nil), k...))
			}
			return nil
		})
		if err != nil {
			return err
		}
		for _, k := range stale {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		removed = len(stale)
		return nil
	})
	if err != nil {
		return removed, err
	}
	return removed, s.SetMeta(lastPurgeKey, now.UTC().Format(time.RFC3339))
}

// LastPurge returns when PurgeExpired last ran, or the zero time if never.
func (s *Store) LastPurge() (time.Time, error) {
	v, err := s.GetMeta(lastPurgeKey)
	if errors.Is(err, ErrNotFound) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		// A corrupt marker is treated as never purged.
		return time.Time{}, nil
	}
	return t, nil
}

// PurgeIfDue runs PurgeExpired when the last purge is older than interval.
// ran reports whether a purge happened.
func (s *Store) PurgeIfDue(interval time.Duration) (removed int, ran bool, err error) {
	last, err := s.LastPurge()
	if err != nil {
		return 0, false, err
	}
	if !last.IsZero() && s.now().Sub(last) < interval {
		return 0, false, nil
	}
	removed, err = s.PurgeExpired()
	return removed, err == nil, err
}

// CacheStats reports entry count and total compressed and raw sizes.
func (s *Store) CacheStats() (entries int, compressed int64, raw int64, err error) {
	err = s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(responsesBucket).ForEach(func(_, v []byte) error {
			var entry CachedResponse
			if jsonErr := json.Unmarshal(v, &entry); jsonErr != nil {
				return nil
			}
			entries++
			compressed += int64(len(entry.Body))
			raw += int64(entry.RawSize)
			return nil
		})
	})
	return entries, compressed, raw, err
}

// RecordDownload appends d to the download history and assigns its ID.
func (s *Store) RecordDownload(d *Download) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(downloadsBucket)
		id, err := b.NextSequence()
		if err != nil {
			return err
		}
		d.ID = id
		if d.DownloadedAt.IsZero() {
			d.DownloadedAt = s.now()
		}
		data, err := json.Marshal(d)
		if err != nil {
			return err
		}
		return b.Put(itob(id), data)
	})
}

// GetDownloads returns the history newest first. limit <= 0 returns all.
func (s *Store) GetDownloads(limit int) ([]*Download, error) {
	var downloads []*Download
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(downloadsBucket).ForEach(func(_, v []byte) error {
			var d Download
			if err := json.Unmarshal(v, &d); err != nil {
				return nil
			}
			downloads = append(downloads, &d)
			return nil
		})
	})
	sort.Slice(downloads, func(i, j int) bool {
		return downloads[i].ID > downloads[j].ID
	})
	if limit > 0 && len(downloads) > limit {
		downloads = downloads[:limit]
	}
	return downloads, err
}

func (s *Store) SetMeta(key, value string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(metaBucket).Put([]byte(key), []byte(value))
	})
}

func (s *Store) GetMeta(key string) (string, error) {
	var value string
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(metaBucket).Get([]byte(key))
		if data == nil {
			return ErrNotFound
		}
		value = string(data)
		return nil
	})
	return value, err
}

func itob(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}

func compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := brotli.NewWriterLevel(&buf, brotli.DefaultCompression)
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decompress(data []byte) ([]byte, error) {
	return io.ReadAll(brotli.NewReader(bytes.NewReader(data)))
}
