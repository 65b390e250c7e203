package economy

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"

	"github.com/zeusync/warehouse/internal/core/models"
)

// Entry is one journal line.
type Entry struct {
	At      time.Time      `json:"at"`
	Agent   models.AgentID `json:"agent"`
	Amount  int64          `json:"amount"`
	Balance int64          `json:"balance"`
	Source  string         `json:"source,omitempty"`
}

type Journal interface {
	Append(e Entry) error
	Close() error
}

// ZstdJournal appends entries as zstd-compressed JSON lines, one file per UTC
// hour.
type ZstdJournal struct {
	dir    string
	prefix string
	now    func() time.Time

	mu      sync.Mutex
	curHour string
	f       *os.File
	enc     *zstd.Encoder
	w       *bufio.Writer
}

func NewZstdJournal(dir, prefix string) *ZstdJournal {
	return &ZstdJournal{dir: dir, prefix: prefix, now: time.Now}
}

func (j *ZstdJournal) Append(e Entry) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if e.At.IsZero() {
		e.At = j.now()
	}
	hour := e.At.UTC().Format("2006-01-02-15")
	if hour != j.curHour {
		if err := j.rotateLocked(hour); err != nil {
			return err
		}
	}
	b, err := json.Marshal(e)
	if err != nil {
		return errors.Wrap(err, "economy: encode journal entry")
	}
	if _, err = j.w.Write(b); err != nil {
		return err
	}
	if err = j.w.WriteByte('\n'); err != nil {
		return err
	}
	return j.w.Flush()
}

func (j *ZstdJournal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.closeLocked()
}

// Path is the file entries for the given instant go to.
func (j *ZstdJournal) Path(at time.Time) string {
	return filepath.Join(j.dir, fmt.Sprintf("%s-%s.jsonl.zst", j.prefix, at.UTC().Format("2006-01-02-15")))
}

func (j *ZstdJournal) rotateLocked(hour string) error {
	if err := j.closeLocked(); err != nil {
		return err
	}
	if err := os.MkdirAll(j.dir, 0o755); err != nil {
		return errors.Wrap(err, "economy: create journal dir")
	}
	path := filepath.Join(j.dir, fmt.Sprintf("%s-%s.jsonl.zst", j.prefix, hour))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return errors.Wrapf(err, "economy: open journal %s", path)
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return errors.Wrap(err, "economy: zstd writer")
	}
	j.f, j.enc, j.w = f, enc, bufio.NewWriterSize(enc, 64*1024)
	j.curHour = hour
	return nil
}

func (j *ZstdJournal) closeLocked() error {
	var err error
	if j.w != nil {
		_ = j.w.Flush()
	}
	if j.enc != nil {
		err = j.enc.Close()
		j.enc = nil
	}
	if j.f != nil {
		_ = j.f.Close()
		j.f = nil
	}
	j.w = nil
	j.curHour = ""
	return err
}

// ReadJournal decodes every entry of one journal file.
func ReadJournal(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return DecodeJournal(f)
}

func DecodeJournal(r io.Reader) ([]Entry, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, errors.Wrap(err, "economy: zstd reader")
	}
	defer dec.Close()

	var out []Entry
	sc := bufio.NewScanner(dec)
	for sc.Scan() {
		var e Entry
		if err = json.Unmarshal(sc.Bytes(), &e); err != nil {
			return out, errors.Wrap(err, "economy: decode journal entry")
		}
		out = append(out, e)
	}
	return out, sc.Err()
}

type nopJournal struct{}

func (nopJournal) Append(Entry) error { return nil }
func (nopJournal) Close() error       { return nil }

// NopJournal drops every entry.
var NopJournal Journal = nopJournal{}
