package aof

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/ValentinKolb/rKV/lib/command"
	"github.com/ValentinKolb/rKV/lib/resp"
	"github.com/ValentinKolb/rKV/lib/store"
	"github.com/ValentinKolb/rKV/rpc/connection"
	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("aof")

// ErrClosed is returned by writes to a closed log
var ErrClosed = errors.New("aof: log is closed")

// Log is an append-only file of SET requests. All methods are safe for
// concurrent use; appends are serialized by a single writer lock.
type Log struct {
	mu      sync.Mutex
	path    string
	file    *os.File
	size    int64
	fsync   bool
	scratch []byte
}

// Open opens (or creates) the log at path for appending. With fsync set,
// every append is forced to stable storage before it returns. A torn record
// at the end of the file is cut off first, so new records start on a frame
// boundary even if the log was not replayed.
func Open(path string, fsync bool) (*Log, error) {
	file, err := os.OpenFile(path, os.O_RDWR|os.O_APPEND|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open append-only log: %w", err)
	}

	valid, torn, _, err := scan(file, nil)
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("check append-only log %s: %w", path, err)
	}
	if torn {
		Logger.Warningf("torn record at the end of %s, truncating to %d bytes", path, valid)
		if err := file.Truncate(valid); err != nil {
			_ = file.Close()
			return nil, fmt.Errorf("truncate torn record: %w", err)
		}
	}

	Logger.Infof("opened append-only log %s (%d bytes, fsync=%t)", path, valid, fsync)
	return &Log{
		path:  path,
		file:  file,
		size:  valid,
		fsync: fsync,
	}, nil
}

// Path returns the location of the log file
func (l *Log) Path() string {
	return l.path
}

// Append writes cmd to the log if it is a Set. Other commands are not
// persisted and Append returns nil for them.
func (l *Log) Append(cmd command.Command) error {
	set, ok := cmd.(command.Set)
	if !ok {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	return l.appendLocked(set)
}

// Commit applies set to st and appends it to the log while holding the
// writer lock, so the order of records in the log equals the order in which
// the writes were applied. The store is updated even if the append fails.
func (l *Log) Commit(st store.IStore, set command.Set) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	st.Set(set.Key, set.Value)
	return l.appendLocked(set)
}

func (l *Log) appendLocked(set command.Set) error {
	if l.file == nil {
		return ErrClosed
	}

	encoded, err := resp.AppendFrame(l.scratch[:0], set.Frame())
	if err != nil {
		return err
	}
	l.scratch = encoded

	if _, err := l.file.Write(encoded); err != nil {
		// cut off the partial record so the next append starts on a frame boundary
		if terr := l.file.Truncate(l.size); terr != nil {
			Logger.Errorf("failed to truncate partial record in %s: %v", l.path, terr)
		}
		return fmt.Errorf("append to %s: %w", l.path, err)
	}
	l.size += int64(len(encoded))

	if l.fsync {
		if err := l.file.Sync(); err != nil {
			return fmt.Errorf("sync %s: %w", l.path, err)
		}
	}
	return nil
}

// Close closes the log file. Further appends fail with ErrClosed.
func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// --------------------------------------------------------------------------
// Replay
// --------------------------------------------------------------------------

// countingReader counts the bytes read from the underlying reader
type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

// scan reads the records of r and calls fn (if not nil) for each of them. It
// returns the length of the valid prefix and whether a torn record follows
// it. Malformed or non-SET records are an error.
func scan(r io.Reader, fn func(command.Set)) (valid int64, torn bool, records int, err error) {
	counter := &countingReader{r: r}
	conn := connection.New(counter)

	for {
		frame, err := conn.ReadFrame()
		if errors.Is(err, io.EOF) {
			return counter.n, false, records, nil
		}
		if errors.Is(err, connection.ErrConnectionReset) {
			return counter.n - int64(conn.Buffered()), true, records, nil
		}
		if err != nil {
			return 0, false, records, fmt.Errorf("record %d: %w", records+1, err)
		}

		cmd, err := command.FromFrame(frame)
		if err != nil {
			return 0, false, records, fmt.Errorf("record %d: %w", records+1, err)
		}
		set, ok := cmd.(command.Set)
		if !ok {
			return 0, false, records, fmt.Errorf("record %d: unexpected %s command", records+1, cmd.Name())
		}

		if fn != nil {
			fn(set)
		}
		records++
	}
}

// Replay reads the log at path from start to end and applies every record to
// st. It returns the number of applied records. A missing file is an empty
// log. A torn record at the end of the file (left by a crash during an append)
// is cut off and ignored; any other malformed or non-SET record is an error.
func Replay(path string, st store.IStore) (int, error) {
	file, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("open append-only log: %w", err)
	}
	defer file.Close()

	valid, torn, applied, err := scan(file, func(set command.Set) {
		st.Set(set.Key, set.Value)
	})
	if err != nil {
		return applied, fmt.Errorf("replay %s, %w", path, err)
	}
	if torn {
		Logger.Warningf("torn record at the end of %s, truncating to %d bytes", path, valid)
		if err := os.Truncate(path, valid); err != nil {
			return applied, fmt.Errorf("truncate torn record: %w", err)
		}
	}

	Logger.Infof("replayed %d records from %s", applied, path)
	return applied, nil
}
