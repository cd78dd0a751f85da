package replay

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"time"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/zstd"

	"tankduel/engine/internal/events"
)

// ErrWriterClosed is returned when appending to a writer after Close.
var ErrWriterClosed = errors.New("replay writer closed")

var writerMatchCleaner = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

const (
	frameInterval = 200 * time.Millisecond
	// maxPendingFrames flushes early when a fast headless run outpaces the wall clock cadence.
	maxPendingFrames = 64
	// frameRecordHeader is tick, clock bits, capture time and payload length.
	frameRecordHeader = 8 + 8 + 8 + 4

	eventsFile   = "events.jsonl.sz"
	framesFile   = "frames.bin.zst"
	manifestFile = "manifest.json"
	headerFile   = "header.json"
)

// frameBlob stores an encoded frame before it is persisted to disk.
type frameBlob struct {
	Tick       uint64
	Clock      float64
	CapturedAt time.Time
	Payload    []byte
}

// Writer streams a match to a replay bundle: snappy framed JSONL events and zstd framed terrain snapshots.
type Writer struct {
	mu          sync.Mutex
	dir         string
	now         func() time.Time
	eventFile   *os.File
	eventStream *snappy.Writer
	frameFile   *os.File
	frameStream *zstd.Encoder
	pending     []frameBlob
	lastFlush   time.Time
	header      Header
	closed      bool
	events      int
	frames      int
}

// Manifest describes the replay bundle layout so tooling can locate artefacts.
type Manifest struct {
	Version         int    `json:"version"`
	CreatedAt       string `json:"created_at"`
	FrameIntervalMs int    `json:"frame_interval_ms"`
	EventsPath      string `json:"events_path"`
	FramesPath      string `json:"frames_path"`
}

// NewWriter prepares the replay directory and opens compressed sinks.
func NewWriter(root, matchID string, clock func() time.Time) (*Writer, Manifest, error) {
	if root == "" {
		return nil, Manifest{}, fmt.Errorf("replay root must be provided")
	}
	if clock == nil {
		clock = time.Now
	}

	cleaned := writerMatchCleaner.ReplaceAllString(matchID, "")
	if cleaned == "" {
		cleaned = "match"
	}
	created := clock().UTC()
	path := filepath.Join(root, fmt.Sprintf("%s-%s", cleaned, created.Format("20060102T150405Z")))
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, Manifest{}, fmt.Errorf("create replay dir: %w", err)
	}

	eventFile, err := os.Create(filepath.Join(path, eventsFile))
	if err != nil {
		return nil, Manifest{}, err
	}
	eventStream := snappy.NewBufferedWriter(eventFile)

	frameFile, err := os.Create(filepath.Join(path, framesFile))
	if err != nil {
		eventFile.Close()
		return nil, Manifest{}, err
	}
	frameStream, err := zstd.NewWriter(frameFile)
	if err != nil {
		eventStream.Close()
		eventFile.Close()
		frameFile.Close()
		return nil, Manifest{}, err
	}

	manifest := Manifest{
		Version:         1,
		CreatedAt:       created.Format(time.RFC3339Nano),
		FrameIntervalMs: int(frameInterval / time.Millisecond),
		EventsPath:      eventsFile,
		FramesPath:      framesFile,
	}
	closeAll := func() {
		frameStream.Close()
		frameFile.Close()
		eventStream.Close()
		eventFile.Close()
	}
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		closeAll()
		return nil, Manifest{}, err
	}
	if err := os.WriteFile(filepath.Join(path, manifestFile), data, 0o644); err != nil {
		closeAll()
		return nil, Manifest{}, err
	}

	writer := &Writer{
		dir:         path,
		now:         clock,
		eventFile:   eventFile,
		eventStream: eventStream,
		frameFile:   frameFile,
		frameStream: frameStream,
		header:      Header{SchemaVersion: HeaderSchemaVersion, MatchID: matchID, FilePointer: manifestFile},
	}
	return writer, manifest, nil
}

// Directory exposes the directory backing the replay bundle.
func (w *Writer) Directory() string {
	if w == nil {
		return ""
	}
	return w.dir
}

// AppendEvent writes one gameplay event as a JSON line to the compressed event log.
func (w *Writer) AppendEvent(env events.Envelope) error {
	if w == nil {
		return fmt.Errorf("writer not initialised")
	}
	line, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encode event %d: %w", env.Sequence, err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrWriterClosed
	}
	if _, err := w.eventStream.Write(append(line, '\n')); err != nil {
		return err
	}
	w.events++
	return w.eventStream.Flush()
}

// AppendFrame stages a terrain snapshot and persists staged frames at the wall clock cadence.
func (w *Writer) AppendFrame(frame TerrainFrame) error {
	if w == nil {
		return fmt.Errorf("writer not initialised")
	}
	captured := w.now().UTC()
	payload := EncodeTerrainFrame(frame)

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrWriterClosed
	}

	//1.- Stage the frame so cadence enforcement can persist batches together.
	w.pending = append(w.pending, frameBlob{Tick: frame.Tick, Clock: frame.Clock, CapturedAt: captured, Payload: payload})
	if w.lastFlush.IsZero() {
		w.lastFlush = captured
	}
	if captured.Sub(w.lastFlush) >= frameInterval || len(w.pending) >= maxPendingFrames {
		if err := w.flushLocked(); err != nil {
			return err
		}
		w.lastFlush = captured
	}
	return nil
}

// SetHeader configures the header persisted when the writer closes.
func (w *Writer) SetHeader(header Header) {
	if w == nil {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	header.SchemaVersion = HeaderSchemaVersion
	header.FilePointer = manifestFile
	if header.MatchID == "" {
		header.MatchID = w.header.MatchID
	}
	header.Players = append([]string(nil), header.Players...)
	header.TerrainParams = header.TerrainParams.Clone()
	w.header = header
}

// Counts reports how many events and frames have been accepted.
func (w *Writer) Counts() (eventCount, frameCount int) {
	if w == nil {
		return 0, 0
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.events, w.frames + len(w.pending)
}

// Flush forces pending frames to be written regardless of cadence.
func (w *Writer) Flush() error {
	if w == nil {
		return fmt.Errorf("writer not initialised")
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrWriterClosed
	}
	if err := w.flushLocked(); err != nil {
		return err
	}
	w.lastFlush = w.now().UTC()
	return nil
}

// Close writes the header, flushes every buffer and releases file handles. Closing twice is a no-op.
func (w *Writer) Close() error {
	if w == nil {
		return nil
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true

	//1.- Attempt every flush and close, surfacing the first failure.
	var firstErr error
	if err := WriteHeader(filepath.Join(w.dir, headerFile), w.header); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := w.flushLocked(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := w.eventStream.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := w.eventFile.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := w.frameStream.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := w.frameFile.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// flushLocked writes staged frames to the zstd stream; callers must hold the mutex.
func (w *Writer) flushLocked() error {
	if len(w.pending) == 0 {
		return nil
	}
	//1.- Length-prefixed records let readers step frame by frame.
	for _, frame := range w.pending {
		header := make([]byte, frameRecordHeader)
		binary.LittleEndian.PutUint64(header[0:8], frame.Tick)
		binary.LittleEndian.PutUint64(header[8:16], math.Float64bits(frame.Clock))
		binary.LittleEndian.PutUint64(header[16:24], uint64(frame.CapturedAt.UnixNano()))
		binary.LittleEndian.PutUint32(header[24:28], uint32(len(frame.Payload)))
		if _, err := w.frameStream.Write(header); err != nil {
			return err
		}
		if _, err := w.frameStream.Write(frame.Payload); err != nil {
			return err
		}
	}
	w.frames += len(w.pending)
	w.pending = w.pending[:0]
	return nil
}
